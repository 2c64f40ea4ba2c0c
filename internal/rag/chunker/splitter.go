package chunker

import (
	"strings"
	"unicode/utf8"
)

// Separators ordered from "best" to "worst" boundary: paragraph, line,
// sentence end (latin and japanese), japanese clause break, whitespace,
// then a hard cut.
var defaultSeparators = []string{"\n\n", "\n", ". ", "。", "、", " ", ""}

type splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// textChunk is a split result before metadata stamping. Start is the
// character offset of the chunk in its source section.
type textChunk struct {
	Text  string
	Start int
}

// piece is an atomic fragment produced by recursive splitting; pieces
// concatenate back to the original text exactly, so offsets stay exact.
type piece struct {
	text string
	off  int
}

func newSplitter(chunkSize, overlap int) *splitter {
	return &splitter{chunkSize: chunkSize, overlap: overlap, separators: defaultSeparators}
}

func (s *splitter) split(text string) []textChunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.merge(s.fragments(text, 0, s.separators))
}

// fragments breaks text into pieces no longer than chunkSize, always
// preferring the highest-priority separator present. Separators stay
// attached to the preceding piece so nothing is lost.
func (s *splitter) fragments(text string, off int, seps []string) []piece {
	if len(text) <= s.chunkSize {
		return []piece{{text: text, off: off}}
	}

	sep := ""
	var rest []string
	for i, candidate := range seps {
		if candidate == "" {
			sep = ""
			rest = nil
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			rest = seps[i+1:]
			break
		}
	}

	if sep == "" {
		// no boundary available: fall back to per-rune pieces so merge
		// still carries the overlap between adjacent chunks, and no
		// multi-byte rune is ever cut in half
		var out []piece
		for i := 0; i < len(text); {
			_, size := utf8.DecodeRuneInString(text[i:])
			out = append(out, piece{text: text[i : i+size], off: off + i})
			i += size
		}
		return out
	}

	var out []piece
	cursor := off
	for _, part := range strings.SplitAfter(text, sep) {
		if part == "" {
			continue
		}
		if len(part) > s.chunkSize {
			out = append(out, s.fragments(part, cursor, rest)...)
		} else {
			out = append(out, piece{text: part, off: cursor})
		}
		cursor += len(part)
	}
	return out
}

// merge packs pieces into chunks of at most chunkSize characters,
// carrying roughly overlap characters of trailing pieces into the next
// chunk.
func (s *splitter) merge(pieces []piece) []textChunk {
	var chunks []textChunk
	var window []piece
	total := 0

	flush := func() {
		if total == 0 {
			return
		}
		var b strings.Builder
		for _, p := range window {
			b.WriteString(p.text)
		}
		text := b.String()
		trimmedLeft := strings.TrimLeft(text, " \t\n")
		start := window[0].off + (len(text) - len(trimmedLeft))
		final := strings.TrimRight(trimmedLeft, " \t\n")
		if final != "" {
			chunks = append(chunks, textChunk{Text: final, Start: start})
		}
	}

	for _, p := range pieces {
		if total+len(p.text) > s.chunkSize && total > 0 {
			flush()
			for total > s.overlap || (total+len(p.text) > s.chunkSize && total > 0) {
				total -= len(window[0].text)
				window = window[1:]
			}
		}
		window = append(window, p)
		total += len(p.text)
	}
	flush()

	return chunks
}
