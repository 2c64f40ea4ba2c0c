package rag_test

import (
	"context"
	"sort"
	"sync"

	"github.com/akolanti/LectureRAG/internal/domain/docModel"
)

// MockVectorDB implements vectorDB.DataProcessor
type MockVectorDB struct {
	// Control fields to simulate different behaviors
	OnUpsert  func(ctx context.Context, chunks []docModel.Chunk, vectors [][]float32) error
	OnSearch  func(ctx context.Context, queryVector []float32, k int) ([]docModel.Match, error)
	OnCount   func(ctx context.Context) (int, error)
	OnDropAll func(ctx context.Context) error
}

func (m *MockVectorDB) Upsert(ctx context.Context, chunks []docModel.Chunk, vectors [][]float32) error {
	if m.OnUpsert != nil {
		return m.OnUpsert(ctx, chunks, vectors)
	}
	return nil
}

func (m *MockVectorDB) Search(ctx context.Context, queryVector []float32, k int) ([]docModel.Match, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, queryVector, k)
	}
	return []docModel.Match{{Text: "default context", Meta: docModel.ChunkMeta{Source: "default.pdf"}}}, nil
}

func (m *MockVectorDB) Count(ctx context.Context) (int, error) {
	if m.OnCount != nil {
		return m.OnCount(ctx)
	}
	return 0, nil
}

func (m *MockVectorDB) DropAll(ctx context.Context) error {
	if m.OnDropAll != nil {
		return m.OnDropAll(ctx)
	}
	return nil
}

// InMemoryVectorDB keys points by PointID the same way the real store
// does, so re-upserting the same chunks replaces them in place.
type InMemoryVectorDB struct {
	mu     sync.Mutex
	points map[string]docModel.Chunk
}

func NewInMemoryVectorDB() *InMemoryVectorDB {
	return &InMemoryVectorDB{points: make(map[string]docModel.Chunk)}
}

func (m *InMemoryVectorDB) Upsert(ctx context.Context, chunks []docModel.Chunk, vectors [][]float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chunks {
		m.points[c.PointID] = c
	}
	return nil
}

func (m *InMemoryVectorDB) Search(ctx context.Context, queryVector []float32, k int) ([]docModel.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.points))
	for id := range m.points {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	matches := []docModel.Match{}
	for i, id := range ids {
		if i >= k {
			break
		}
		c := m.points[id]
		matches = append(matches, docModel.Match{Text: c.Text, Meta: c.Meta, Distance: float32(i) * 0.1})
	}
	return matches, nil
}

func (m *InMemoryVectorDB) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.points), nil
}

func (m *InMemoryVectorDB) DropAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.points = make(map[string]docModel.Chunk)
	return nil
}

type MockEmbedder struct {
	OnEmbedPassages func(ctx context.Context, texts []string) ([][]float32, error)
	OnEmbedQuery    func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockEmbedder) EmbedPassages(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnEmbedPassages != nil {
		return m.OnEmbedPassages(ctx, texts)
	}
	// Return dummy vectors matching input size
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{0.1, 0.2}
	}
	return vectors, nil
}

func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if m.OnEmbedQuery != nil {
		return m.OnEmbedQuery(ctx, text)
	}
	return []float32{0.1, 0.2}, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, prompt string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, prompt)
	}
	return "mocked llm response", nil
}
