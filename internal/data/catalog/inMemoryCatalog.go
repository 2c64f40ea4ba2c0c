package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/akolanti/LectureRAG/internal/domain/docModel"
	"github.com/akolanti/LectureRAG/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem Catalog")

// InMemoryCatalog is the fallback when Redis is offline at startup.
// Entries do not survive a restart.
type InMemoryCatalog struct {
	mutex   *sync.RWMutex
	entries map[string]docModel.CatalogEntry
}

func InitInMemoryCatalog() *InMemoryCatalog {
	return &InMemoryCatalog{
		mutex:   new(sync.RWMutex),
		entries: make(map[string]docModel.CatalogEntry),
	}
}

func (c *InMemoryCatalog) Record(ctx context.Context, entry docModel.CatalogEntry) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries[entry.Source] = entry
	inMemLogger.Debug("Recorded document", "source", entry.Source)
	return nil
}

func (c *InMemoryCatalog) List(ctx context.Context) ([]docModel.CatalogEntry, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entries := make([]docModel.CatalogEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Source < entries[j].Source })
	return entries, nil
}

func (c *InMemoryCatalog) Clear(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[string]docModel.CatalogEntry)
	return nil
}
