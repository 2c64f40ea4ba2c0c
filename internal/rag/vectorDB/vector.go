package vectorDB

import (
	"context"

	"github.com/akolanti/LectureRAG/internal/domain/docModel"
)

// DataProcessor is the vector index the rag service talks to. Writes
// are keyed by each chunk's point ID, so an unchanged re-ingest
// replaces instead of duplicating.
type DataProcessor interface {
	// Upsert writes chunk/vector pairs; lengths must match 1:1 in order.
	Upsert(ctx context.Context, chunks []docModel.Chunk, vectors [][]float32) error
	// Search returns up to k nearest neighbors ordered by ascending
	// distance. An empty result is a valid outcome, not an error.
	Search(ctx context.Context, queryVector []float32, k int) ([]docModel.Match, error)
	// Count reports the stored chunk total; 0 when the collection does
	// not exist yet.
	Count(ctx context.Context) (int, error)
	// DropAll deletes the whole collection. Irreversible; the next
	// write lazily recreates an empty one.
	DropAll(ctx context.Context) error
}
