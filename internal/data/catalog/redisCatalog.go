package catalog

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/akolanti/LectureRAG/internal/config"
	"github.com/akolanti/LectureRAG/internal/data/redisStore"
	"github.com/akolanti/LectureRAG/internal/domain/docModel"
	"github.com/akolanti/LectureRAG/pkg/logger_i"
)

type RedisCatalog struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisCatalog(ctx context.Context) *RedisCatalog {
	store := redisStore.GetRedisStore(ctx, config.RedisCatalogDB)
	if store == nil {
		return nil
	}
	return &RedisCatalog{
		store:  store,
		logger: logger_i.NewLogger("Document Catalog"),
	}
}

func (c *RedisCatalog) Record(ctx context.Context, entry docModel.CatalogEntry) error {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "source", entry.Source)
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	if err := c.store.HashSet(ctx, config.CatalogRedisKey, entry.Source, data); err != nil {
		return err
	}
	log.Debug("Recorded document in catalog", "chunks", entry.ChunkCount)
	return nil
}

func (c *RedisCatalog) List(ctx context.Context) ([]docModel.CatalogEntry, error) {
	raw, err := c.store.HashGetAll(ctx, config.CatalogRedisKey)
	if err != nil {
		return nil, err
	}

	entries := make([]docModel.CatalogEntry, 0, len(raw))
	for source, data := range raw {
		var entry docModel.CatalogEntry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			c.logger.Error("Corrupt catalog entry, skipping", "source", source, "error", err)
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Source < entries[j].Source })
	return entries, nil
}

func (c *RedisCatalog) Clear(ctx context.Context) error {
	return c.store.Del(ctx, config.CatalogRedisKey)
}

// TestCatalog builds a catalog over an injected store, for tests.
func TestCatalog(store *redisStore.Store) *RedisCatalog {
	return &RedisCatalog{
		store:  store,
		logger: logger_i.NewLogger("test catalog"),
	}
}
