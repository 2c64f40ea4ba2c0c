package docModel

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChunkMeta is the closed set of metadata a chunk can carry. Source is
// always set; Page and StartIndex are present only when the loader or
// splitter produced them. Page is 0-based as loaded.
type ChunkMeta struct {
	Source     string `json:"source"`
	Page       *int   `json:"page,omitempty"`
	StartIndex *int   `json:"start_index,omitempty"`
}

// Chunk is one retrievable unit of extracted document text. Immutable
// once created; Identity is deterministic for unchanged content so a
// re-ingest overwrites instead of duplicating.
type Chunk struct {
	Identity string
	PointID  string //deterministic UUID form of Identity, the vector index key
	Text     string
	Meta     ChunkMeta
}

// Match is one retrieval hit. Distance is cosine distance, lower is
// more relevant.
type Match struct {
	Text     string
	Meta     ChunkMeta
	Distance float32
}

// Answer is the composed chat result.
type Answer struct {
	Response string
	Sources  []string
}

// CatalogEntry records one ingested document in the catalog.
type CatalogEntry struct {
	Source     string    `json:"source"`
	ChunkCount int       `json:"chunk_count"`
	IngestedAt time.Time `json:"ingested_at"`
}

var chunkNamespace = uuid.MustParse("9f2c1a40-7b3e-4c11-8a52-0d6e5f4b9c01")

// NewChunkIdentity derives a chunk's stable identity from its source
// file, its running counter within the document, and a content hash.
// The hash makes changed content produce a new identity and breaks any
// counter collision between distinct chunks.
func NewChunkIdentity(source string, counter int, text string) (identity string, pointID string) {
	sum := sha256.Sum256([]byte(text))
	identity = fmt.Sprintf("doc_%s_c%d_%x", SanitizeSource(source), counter, sum[:4])
	pointID = uuid.NewSHA1(chunkNamespace, []byte(identity)).String()
	return identity, pointID
}

// SanitizeSource keeps alphanumerics plus '-', '_' and '.'; everything
// else becomes '_'. Mirrors the sanitization applied to uploaded
// filenames so identities stay stable across upload and re-upload.
func SanitizeSource(source string) string {
	var b strings.Builder
	for _, r := range source {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
