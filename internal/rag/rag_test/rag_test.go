package rag_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/akolanti/LectureRAG/internal/domain/docModel"
	"github.com/akolanti/LectureRAG/internal/rag"
	"github.com/akolanti/LectureRAG/internal/rag/llm"
	"google.golang.org/genai"
)

func intPtr(v int) *int { return &v }

func fakeChunks(source string, texts ...string) []docModel.Chunk {
	chunks := make([]docModel.Chunk, 0, len(texts))
	for i, text := range texts {
		identity, pointID := docModel.NewChunkIdentity(source, i, text)
		chunks = append(chunks, docModel.Chunk{
			Identity: identity,
			PointID:  pointID,
			Text:     text,
			Meta:     docModel.ChunkMeta{Source: source, StartIndex: intPtr(i * 10)},
		})
	}
	return chunks
}

func writeScratchFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("scratch content"), 0644); err != nil {
		t.Fatalf("could not write scratch file: %v", err)
	}
	return path
}

func TestChat_Scenarios(t *testing.T) {
	tests := []struct {
		name            string
		query           string
		k               int
		setupMocks      func(e *MockEmbedder, v *MockVectorDB, l *MockLLM)
		expectedErr     error
		expectedAnswer  string
		expectedSources []string
	}{
		{
			name:  "Success_Full_Flow",
			query: "what is a heap?",
			k:     3,
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnSearch = func(ctx context.Context, qv []float32, k int) ([]docModel.Match, error) {
					return []docModel.Match{
						{Text: "a heap is a tree", Meta: docModel.ChunkMeta{Source: "ds.pdf", Page: intPtr(3)}},
						{Text: "heaps back priority queues", Meta: docModel.ChunkMeta{Source: "algo.pdf"}},
						{Text: "more heap text", Meta: docModel.ChunkMeta{Source: "ds.pdf", Page: intPtr(4)}},
					}, nil
				}
				l.OnGenerate = func(ctx context.Context, prompt string) (string, error) {
					return "  a heap is a tree shaped structure  ", nil
				}
			},
			expectedAnswer:  "a heap is a tree shaped structure",
			expectedSources: []string{"algo.pdf", "ds.pdf"},
		},
		{
			name:        "Failure_Empty_Query",
			query:       "   \n\t ",
			k:           3,
			setupMocks:  func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {},
			expectedErr: rag.ErrEmptyQuery,
		},
		{
			name:  "Failure_Query_Embedding",
			query: "anything",
			k:     3,
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				e.OnEmbedQuery = func(ctx context.Context, text string) ([]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			expectedErr: errors.New("api limit"),
		},
		{
			name:  "Failure_Vector_Search",
			query: "anything",
			k:     3,
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnSearch = func(ctx context.Context, qv []float32, k int) ([]docModel.Match, error) {
					return nil, errors.New("db timeout")
				}
			},
			expectedErr: errors.New("db timeout"),
		},
		{
			name:  "Failure_Blocked_Terminal",
			query: "blocked question",
			k:     3,
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, prompt string) (string, error) {
					return "", &llm.BlockedError{Reason: "SAFETY"}
				}
			},
			expectedErr: &llm.BlockedError{Reason: "SAFETY"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mVec := &MockVectorDB{}
			mLLM := &MockLLM{}

			tt.setupMocks(mEmbed, mVec, mLLM)

			s := rag.NewService(mVec, mLLM, mEmbed, rag.WithSleep(func(time.Duration) {}))

			answer, err := s.Chat(context.Background(), tt.query, tt.k)

			if tt.expectedErr != nil {
				if err == nil {
					t.Fatalf("expected error %v, got nil", tt.expectedErr)
				}
				var blocked *llm.BlockedError
				if errors.As(tt.expectedErr, &blocked) && !errors.As(err, &blocked) {
					t.Errorf("expected a BlockedError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if answer.Response != tt.expectedAnswer {
				t.Errorf("Answer got %q, want %q", answer.Response, tt.expectedAnswer)
			}
			if len(answer.Sources) != len(tt.expectedSources) {
				t.Fatalf("Sources got %v, want %v", answer.Sources, tt.expectedSources)
			}
			for i := range answer.Sources {
				if answer.Sources[i] != tt.expectedSources[i] {
					t.Errorf("Sources got %v, want %v", answer.Sources, tt.expectedSources)
					break
				}
			}
		})
	}
}

func TestChat_KBounds(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		expected  int
	}{
		{"Zero_Defaults_To_Three", 0, 3},
		{"Within_Range_Passthrough", 5, 5},
		{"Above_Max_Clamped", 50, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotK int
			mVec := &MockVectorDB{
				OnSearch: func(ctx context.Context, qv []float32, k int) ([]docModel.Match, error) {
					gotK = k
					return nil, nil
				},
			}
			s := rag.NewService(mVec, &MockLLM{}, &MockEmbedder{})

			if _, err := s.Chat(context.Background(), "question", tt.requested); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotK != tt.expected {
				t.Errorf("Search got k=%d, want %d", gotK, tt.expected)
			}
		})
	}
}

func TestChat_EmptyCollection_GroundedRefusalPrompt(t *testing.T) {
	var gotPrompt string
	mVec := &MockVectorDB{
		OnSearch: func(ctx context.Context, qv []float32, k int) ([]docModel.Match, error) {
			return nil, nil
		},
	}
	mLLM := &MockLLM{
		OnGenerate: func(ctx context.Context, prompt string) (string, error) {
			gotPrompt = prompt
			return "the information was not found in the reference material", nil
		},
	}

	s := rag.NewService(mVec, mLLM, &MockEmbedder{})

	answer, err := s.Chat(context.Background(), "what is a heap?", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(gotPrompt, "No reference material is available.") {
		t.Errorf("prompt should state missing context, got:\n%s", gotPrompt)
	}
	if !strings.Contains(gotPrompt, "what is a heap?") {
		t.Errorf("prompt should contain the query, got:\n%s", gotPrompt)
	}
	if len(answer.Sources) != 0 {
		t.Errorf("Sources should be empty without context, got %v", answer.Sources)
	}
}

func TestChat_PromptCitesRetrievedContext(t *testing.T) {
	var gotPrompt string
	mVec := &MockVectorDB{
		OnSearch: func(ctx context.Context, qv []float32, k int) ([]docModel.Match, error) {
			return []docModel.Match{
				{Text: "heap chunk", Meta: docModel.ChunkMeta{Source: "ds.pdf", Page: intPtr(3)}},
				{Text: "plain chunk", Meta: docModel.ChunkMeta{Source: "notes.txt"}},
			}, nil
		},
	}
	mLLM := &MockLLM{
		OnGenerate: func(ctx context.Context, prompt string) (string, error) {
			gotPrompt = prompt
			return "answer", nil
		},
	}

	s := rag.NewService(mVec, mLLM, &MockEmbedder{})
	if _, err := s.Chat(context.Background(), "question", 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	//pages are shown 1-based
	if !strings.Contains(gotPrompt, "ds.pdf (p.4)") {
		t.Errorf("prompt should cite the paged source, got:\n%s", gotPrompt)
	}
	if !strings.Contains(gotPrompt, "notes.txt") {
		t.Errorf("prompt should cite the pageless source, got:\n%s", gotPrompt)
	}
	if !strings.Contains(gotPrompt, "heap chunk") || !strings.Contains(gotPrompt, "plain chunk") {
		t.Errorf("prompt should embed the chunk text, got:\n%s", gotPrompt)
	}
}

func TestChat_RetryCeiling(t *testing.T) {
	attempts := 0
	var sleeps []time.Duration

	mLLM := &MockLLM{
		OnGenerate: func(ctx context.Context, prompt string) (string, error) {
			attempts++
			return "", genai.APIError{Code: 503, Message: "overloaded"}
		},
	}
	s := rag.NewService(&MockVectorDB{}, mLLM, &MockEmbedder{},
		rag.WithSleep(func(d time.Duration) { sleeps = append(sleeps, d) }))

	_, err := s.Chat(context.Background(), "question", 3)
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if attempts != 3 {
		t.Errorf("attempts got %d, want 3", attempts)
	}
	if len(sleeps) != 2 || sleeps[0] != 2*time.Second || sleeps[1] != 4*time.Second {
		t.Errorf("backoff got %v, want [2s 4s]", sleeps)
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Errorf("error should report the attempt budget, got %v", err)
	}
}

func TestChat_TransientThenSuccess(t *testing.T) {
	attempts := 0
	var sleeps []time.Duration

	mLLM := &MockLLM{
		OnGenerate: func(ctx context.Context, prompt string) (string, error) {
			attempts++
			if attempts == 1 {
				return "", genai.APIError{Code: 429, Message: "rate limited"}
			}
			return "recovered answer", nil
		},
	}
	s := rag.NewService(&MockVectorDB{}, mLLM, &MockEmbedder{},
		rag.WithSleep(func(d time.Duration) { sleeps = append(sleeps, d) }))

	answer, err := s.Chat(context.Background(), "question", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Response != "recovered answer" {
		t.Errorf("Answer got %q, want %q", answer.Response, "recovered answer")
	}
	if attempts != 2 {
		t.Errorf("attempts got %d, want 2", attempts)
	}
	if len(sleeps) != 1 || sleeps[0] != 2*time.Second {
		t.Errorf("backoff got %v, want [2s]", sleeps)
	}
}

func TestIngestDocument_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		chunks         []docModel.Chunk
		setupMocks     func(e *MockEmbedder, v *MockVectorDB)
		expectedCount  int
		expectedErr    error
		expectAnyError bool
	}{
		{
			name:          "Ingestion_Success",
			chunks:        fakeChunks("lecture.pdf", "first chunk", "second chunk"),
			setupMocks:    func(e *MockEmbedder, v *MockVectorDB) {},
			expectedCount: 2,
		},
		{
			name:        "Failure_No_Chunks",
			chunks:      nil,
			setupMocks:  func(e *MockEmbedder, v *MockVectorDB) {},
			expectedErr: rag.ErrNoChunks,
		},
		{
			name:   "Failure_Embedding",
			chunks: fakeChunks("lecture.pdf", "first chunk"),
			setupMocks: func(e *MockEmbedder, v *MockVectorDB) {
				e.OnEmbedPassages = func(ctx context.Context, texts []string) ([][]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			expectAnyError: true,
		},
		{
			name:   "Failure_Upsert",
			chunks: fakeChunks("lecture.pdf", "first chunk"),
			setupMocks: func(e *MockEmbedder, v *MockVectorDB) {
				v.OnUpsert = func(ctx context.Context, chunks []docModel.Chunk, vectors [][]float32) error {
					return errors.New("disk full")
				}
			},
			expectAnyError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mVec := &MockVectorDB{}
			tt.setupMocks(mEmbed, mVec)

			scratchPath := writeScratchFile(t, "lecture.pdf")

			s := rag.NewService(mVec, &MockLLM{}, mEmbed,
				rag.WithChunker(func(path string) []docModel.Chunk { return tt.chunks }))

			count, err := s.IngestDocument(context.Background(), scratchPath)

			if tt.expectedErr != nil && !errors.Is(err, tt.expectedErr) {
				t.Errorf("error got %v, want %v", err, tt.expectedErr)
			}
			if tt.expectAnyError && err == nil {
				t.Error("expected an error, got nil")
			}
			if tt.expectedErr == nil && !tt.expectAnyError {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if count != tt.expectedCount {
					t.Errorf("count got %d, want %d", count, tt.expectedCount)
				}
			}

			// scratch file must be gone on every exit path
			if _, statErr := os.Stat(scratchPath); !os.IsNotExist(statErr) {
				t.Errorf("scratch file should have been removed, stat err: %v", statErr)
			}
		})
	}
}

func TestIngestDocument_IdempotentUpsert(t *testing.T) {
	store := NewInMemoryVectorDB()
	chunks := fakeChunks("lecture.pdf", "first chunk", "second chunk", "third chunk")

	s := rag.NewService(store, &MockLLM{}, &MockEmbedder{},
		rag.WithChunker(func(path string) []docModel.Chunk { return chunks }))

	for i := 0; i < 2; i++ {
		scratchPath := writeScratchFile(t, "lecture.pdf")
		count, err := s.IngestDocument(context.Background(), scratchPath)
		if err != nil {
			t.Fatalf("ingest %d failed: %v", i+1, err)
		}
		if count != 3 {
			t.Fatalf("ingest %d count got %d, want 3", i+1, count)
		}
	}

	stored, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if stored != 3 {
		t.Errorf("re-ingesting the same document should not grow the store, got %d points", stored)
	}
}

func TestDeleteAll_ReturnsPriorCount(t *testing.T) {
	store := NewInMemoryVectorDB()
	chunks := fakeChunks("lecture.pdf", "a", "b")

	s := rag.NewService(store, &MockLLM{}, &MockEmbedder{},
		rag.WithChunker(func(path string) []docModel.Chunk { return chunks }))

	scratchPath := writeScratchFile(t, "lecture.pdf")
	if _, err := s.IngestDocument(context.Background(), scratchPath); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	prior, err := s.DeleteAll(context.Background())
	if err != nil {
		t.Fatalf("delete all failed: %v", err)
	}
	if prior != 2 {
		t.Errorf("prior count got %d, want 2", prior)
	}

	after, err := s.Count(context.Background())
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if after != 0 {
		t.Errorf("store should be empty after delete, got %d", after)
	}
}
