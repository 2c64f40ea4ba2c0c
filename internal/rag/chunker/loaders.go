package chunker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/akolanti/LectureRAG/internal/config"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// DocType is the closed set of supported input formats.
type DocType string

const (
	PDF       DocType = "PDF"
	DOCX      DocType = "DOCX"
	PlainText DocType = "TXT"
	ERR       DocType = "ERROR"
)

// section is one ordered unit of loaded text: a PDF page, or the whole
// body for formats without page structure.
type section struct {
	Text string
	Page *int //0-based, nil when the format has no pages
}

func getDocType(docPath string) DocType {
	switch strings.ToLower(filepath.Ext(docPath)) {
	case ".pdf":
		return PDF
	case ".docx":
		return DOCX
	case ".txt":
		return PlainText
	default:
		return ERR
	}
}

func extractText(path string, contentType DocType) ([]section, error) {
	switch contentType {
	case PDF:
		return extractPDF(path)
	case DOCX:
		return extractDocx(path)
	case PlainText:
		return extractPlainText(path)
	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
}

func extractPDF(path string) ([]section, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var sections []section
	numPages := f.NumPage()
	logger.Debug("extractPDF", "path", path, "pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// keep going with the remaining pages
			logger.Error("Error parsing page content", "page", i, "error", err)
			continue
		}

		pageNum := i - 1 //loaders report pages 0-based
		sections = append(sections, section{Text: content, Page: &pageNum})
	}
	return sections, nil
}

func extractDocx(path string) ([]section, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract docx: %w", err)
	}
	return []section{{Text: text}}, nil
}

// extractPlainText reads the file as UTF-8 and falls back to Shift-JIS
// (cp932) when the bytes are not valid UTF-8.
func extractPlainText(path string) ([]section, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}

	if utf8.Valid(raw) {
		return []section{{Text: string(raw)}}, nil
	}

	logger.Warn("File is not valid UTF-8, retrying with Shift-JIS", "path", path)
	decoded, _, err := transform.String(japanese.ShiftJIS.NewDecoder(), string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode text file with fallback encoding: %w", err)
	}
	return []section{{Text: decoded}}, nil
}

// protectExtract runs GetPlainText behind a timeout; malformed PDFs can
// hang the parser.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(config.PageExtractTimeout):
		return "", errors.New("timeout")
	}
}
