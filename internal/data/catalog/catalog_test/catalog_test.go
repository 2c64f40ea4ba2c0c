package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/akolanti/LectureRAG/internal/config"
	"github.com/akolanti/LectureRAG/internal/data/catalog"
	"github.com/akolanti/LectureRAG/internal/data/redisStore"
	"github.com/akolanti/LectureRAG/internal/domain/docModel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisCatalog(t *testing.T) (*catalog.RedisCatalog, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return catalog.TestCatalog(redisStore.NewTestStore(client)), mr
}

func TestRedisCatalog_Lifecycle(t *testing.T) {
	documentCatalog, mr := newRedisCatalog(t)
	ctx := context.Background()

	entry := docModel.CatalogEntry{
		Source:     "lecture01.pdf",
		ChunkCount: 42,
		IngestedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}

	t.Run("Record and List Roundtrip", func(t *testing.T) {
		if err := documentCatalog.Record(ctx, entry); err != nil {
			t.Fatalf("Record failed: %v", err)
		}

		entries, err := documentCatalog.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("entries got %d, want 1", len(entries))
		}
		if entries[0].Source != entry.Source || entries[0].ChunkCount != entry.ChunkCount {
			t.Errorf("Data mismatch! Got %+v, want %+v", entries[0], entry)
		}
	})

	t.Run("Record Same Source Replaces", func(t *testing.T) {
		updated := entry
		updated.ChunkCount = 50
		if err := documentCatalog.Record(ctx, updated); err != nil {
			t.Fatalf("Record failed: %v", err)
		}

		entries, err := documentCatalog.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("re-recording the same source should not add entries, got %d", len(entries))
		}
		if entries[0].ChunkCount != 50 {
			t.Errorf("ChunkCount got %d, want 50", entries[0].ChunkCount)
		}
	})

	t.Run("List Is Sorted By Source", func(t *testing.T) {
		documentCatalog.Record(ctx, docModel.CatalogEntry{Source: "zebra.txt", ChunkCount: 1})
		documentCatalog.Record(ctx, docModel.CatalogEntry{Source: "algebra.pdf", ChunkCount: 2})

		entries, err := documentCatalog.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("entries got %d, want 3", len(entries))
		}
		for i := 1; i < len(entries); i++ {
			if entries[i-1].Source > entries[i].Source {
				t.Errorf("entries not sorted: %q before %q", entries[i-1].Source, entries[i].Source)
			}
		}
	})

	t.Run("Clear Empties The Catalog", func(t *testing.T) {
		if err := documentCatalog.Clear(ctx); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		if mr.Exists(config.CatalogRedisKey) {
			t.Error("catalog hash still exists in Redis after Clear")
		}
		entries, err := documentCatalog.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("entries got %d after Clear, want 0", len(entries))
		}
	})
}

func TestRedisCatalog_SkipsCorruptEntries(t *testing.T) {
	documentCatalog, mr := newRedisCatalog(t)
	ctx := context.Background()

	if err := documentCatalog.Record(ctx, docModel.CatalogEntry{Source: "good.pdf", ChunkCount: 3}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	mr.HSet(config.CatalogRedisKey, "bad.pdf", "{not json")

	entries, err := documentCatalog.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Source != "good.pdf" {
		t.Errorf("expected only the valid entry, got %+v", entries)
	}
}

func TestInMemoryCatalog_Lifecycle(t *testing.T) {
	documentCatalog := catalog.InitInMemoryCatalog()
	ctx := context.Background()

	documentCatalog.Record(ctx, docModel.CatalogEntry{Source: "b.txt", ChunkCount: 1})
	documentCatalog.Record(ctx, docModel.CatalogEntry{Source: "a.txt", ChunkCount: 2})
	documentCatalog.Record(ctx, docModel.CatalogEntry{Source: "b.txt", ChunkCount: 9})

	entries, err := documentCatalog.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries got %d, want 2", len(entries))
	}
	if entries[0].Source != "a.txt" || entries[1].Source != "b.txt" {
		t.Errorf("entries not sorted by source: %+v", entries)
	}
	if entries[1].ChunkCount != 9 {
		t.Errorf("re-recording should replace, ChunkCount got %d, want 9", entries[1].ChunkCount)
	}

	if err := documentCatalog.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	entries, _ = documentCatalog.List(ctx)
	if len(entries) != 0 {
		t.Errorf("entries got %d after Clear, want 0", len(entries))
	}
}
