package chunker

import (
	"path/filepath"

	"github.com/akolanti/LectureRAG/internal/config"
	"github.com/akolanti/LectureRAG/internal/domain/docModel"
	"github.com/akolanti/LectureRAG/pkg/logger_i"
)

var logger = logger_i.NewLogger("Chunker")

// Process loads a single file and splits it into chunks with stable
// identities. It never returns an error: unsupported extensions,
// unreadable files and files that produce no text all resolve to an
// empty slice with a logged warning. Callers treat zero chunks as a
// recoverable per-document outcome.
func Process(path string) []docModel.Chunk {
	docType := getDocType(path)
	if docType == ERR {
		logger.Warn("Unsupported file type, skipping", "path", path)
		return nil
	}

	sections, err := extractText(path, docType)
	if err != nil {
		logger.Error("Error extracting document content", "path", path, "error", err)
		return nil
	}
	if len(sections) == 0 {
		logger.Warn("No text sections loaded from document", "path", path)
		return nil
	}

	source := docModel.SanitizeSource(filepath.Base(path))
	split := newSplitter(config.ChunkSize, config.ChunkOverlap)

	var chunks []docModel.Chunk
	counter := 0
	for _, sec := range sections {
		for _, tc := range split.split(sec.Text) {
			start := tc.Start
			identity, pointID := docModel.NewChunkIdentity(source, counter, tc.Text)
			chunks = append(chunks, docModel.Chunk{
				Identity: identity,
				PointID:  pointID,
				Text:     tc.Text,
				Meta: docModel.ChunkMeta{
					Source:     source,
					Page:       sec.Page,
					StartIndex: &start,
				},
			})
			counter++
		}
	}

	if len(chunks) == 0 {
		logger.Warn("Document produced no chunks", "path", path)
		return nil
	}

	logger.Debug("Processed document", "source", source, "sections", len(sections), "chunks", len(chunks))
	return chunks
}
