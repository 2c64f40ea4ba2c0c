package catalog

import (
	"context"

	"github.com/akolanti/LectureRAG/internal/domain/docModel"
)

// Catalog records which documents have been ingested. Best effort: a
// catalog failure never fails the ingestion that triggered it.
type Catalog interface {
	Record(ctx context.Context, entry docModel.CatalogEntry) error
	List(ctx context.Context) ([]docModel.CatalogEntry, error)
	Clear(ctx context.Context) error
}
