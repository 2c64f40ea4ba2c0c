package rag

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/akolanti/LectureRAG/internal/config"
	"github.com/akolanti/LectureRAG/internal/domain/docModel"
	"github.com/akolanti/LectureRAG/internal/metrics"
	"github.com/akolanti/LectureRAG/internal/rag/chunker"
	"github.com/akolanti/LectureRAG/internal/rag/embedding"
	"github.com/akolanti/LectureRAG/internal/rag/llm"
	"github.com/akolanti/LectureRAG/internal/rag/vectorDB"
	"github.com/akolanti/LectureRAG/pkg/logger_i"
)

// ErrEmptyQuery rejects whitespace-only chat input before any model
// call.
var ErrEmptyQuery = errors.New("query must not be empty")

// ErrNoChunks means a document yielded no indexable text. Recoverable
// per-document outcome, distinct from an I/O or store failure.
var ErrNoChunks = errors.New("no content could be extracted from document")

// Service is the contract the HTTP layer consumes. It hides the vector
// index, embedder and LLM provider behind one ingestion/retrieval
// surface.
type Service interface {
	// IngestDocument chunks, embeds and indexes one file, returning the
	// number of chunks written. The file at filePath is removed on
	// every exit path.
	IngestDocument(ctx context.Context, filePath string) (int, error)
	Chat(ctx context.Context, query string, k int) (docModel.Answer, error)
	Count(ctx context.Context) (int, error)
	// DeleteAll drops the whole collection and returns the prior count.
	DeleteAll(ctx context.Context) (int, error)
}

type service struct {
	vectorDB    vectorDB.DataProcessor
	llmProvider llm.Provider
	embedder    embedding.Embedder
	logger      *logger_i.Logger
	sleep       func(time.Duration)
	chunk       func(string) []docModel.Chunk
}

// Option adjusts service internals; used by tests to fake the clock
// and the file chunker.
type Option func(*service)

func WithSleep(fn func(time.Duration)) Option {
	return func(s *service) { s.sleep = fn }
}

func WithChunker(fn func(string) []docModel.Chunk) Option {
	return func(s *service) { s.chunk = fn }
}

// NewService constructor; dependencies are injected so tests can swap
// real clients for mocks.
func NewService(vector vectorDB.DataProcessor, llmP llm.Provider, em embedding.Embedder, opts ...Option) Service {
	s := &service{
		vectorDB:    vector,
		llmProvider: llmP,
		embedder:    em,
		logger:      logger_i.NewLogger("RAG Service"),
		sleep:       time.Sleep,
		chunk:       chunker.Process,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) IngestDocument(ctx context.Context, filePath string) (int, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "path", filePath)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	// scratch file must not outlive the request, success or not
	defer func() {
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			log.Error("Error removing scratch file", "error", err)
		}
	}()

	chunks := s.chunk(filePath)
	if len(chunks) == 0 {
		log.Warn("Document produced no chunks")
		return 0, ErrNoChunks
	}
	log.Debug("Processing document", "chunks", len(chunks))

	for i := 0; i < len(chunks); i += config.EmbeddingBatchSize {
		end := i + config.EmbeddingBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		currentBatch := chunks[i:end]

		vectors, err := s.executeEmbeddingStep(ctx, currentBatch)
		if err != nil {
			return 0, err
		}
		if err := s.executeUpsertStep(ctx, currentBatch, vectors); err != nil {
			return 0, err
		}
	}

	metrics.AddChunksIndexed(len(chunks))
	log.Info("Document indexed", "chunks", len(chunks))
	return len(chunks), nil
}

func (s *service) Chat(ctx context.Context, query string, k int) (docModel.Answer, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if isBlankQuery(query) {
		return docModel.Answer{}, ErrEmptyQuery
	}
	if k < 1 {
		k = config.DefaultSearchK
	}
	if k > config.MaxSearchK {
		k = config.MaxSearchK
	}

	queryVector, err := s.executeQueryEmbeddingStep(ctx, query)
	if err != nil {
		return docModel.Answer{}, err
	}

	matches, err := s.executeVectorSearchStep(ctx, queryVector, k)
	if err != nil {
		return docModel.Answer{}, err
	}
	log.Debug("Retrieved context", "matches", len(matches), "k", k)

	answer, err := s.compose(ctx, query, matches)
	if err != nil {
		return docModel.Answer{}, err
	}
	return answer, nil
}

func (s *service) Count(ctx context.Context) (int, error) {
	return s.vectorDB.Count(ctx)
}

func (s *service) DeleteAll(ctx context.Context) (int, error) {
	priorCount, err := s.vectorDB.Count(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.vectorDB.DropAll(ctx); err != nil {
		return 0, err
	}
	s.logger.Warn("Vector collection deleted", "priorCount", priorCount)
	return priorCount, nil
}
