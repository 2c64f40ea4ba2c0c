package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/LectureRAG/internal/domain/docModel"
	"github.com/akolanti/LectureRAG/internal/metrics"
)

func (s *service) executeEmbeddingStep(ctx context.Context, batch []docModel.Chunk) ([][]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	texts := make([]string, 0, len(batch))
	for _, c := range batch {
		texts = append(texts, c.Text)
	}

	vectors, err := s.embedder.EmbedPassages(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding batch failed: %w", err)
	}
	return vectors, nil
}

func (s *service) executeUpsertStep(ctx context.Context, batch []docModel.Chunk, vectors [][]float32) error {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_upsert", time.Since(start)) }()

	if err := s.vectorDB.Upsert(ctx, batch, vectors); err != nil {
		return fmt.Errorf("upserting batch failed: %w", err)
	}
	return nil
}

func (s *service) executeQueryEmbeddingStep(ctx context.Context, query string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("query_embedding", time.Since(start)) }()

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}
	return vector, nil
}

func (s *service) executeVectorSearchStep(ctx context.Context, queryVector []float32, k int) ([]docModel.Match, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	matches, err := s.vectorDB.Search(ctx, queryVector, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	return matches, nil
}
