package trainer

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"
	"github.com/example/vocabtrainer/pkg/models"
)

// Catalog supplies vocabulary items
type Catalog interface {
	GetByID(ctx context.Context, id int64) (*models.VocabularyItem, error)
	NextUnseen(ctx context.Context, userID int64) (*models.VocabularyItem, error)
	Count(ctx context.Context) (int, error)
}

// CachedCatalog keeps recently used catalog items in memory. Items are immutable
// from the trainer's point of view, so entries are never invalidated.
type CachedCatalog struct {
	Catalog
	cache *ristretto.Cache
}

// NewCachedCatalog wraps catalog with a cache holding up to maxItems entries
func NewCachedCatalog(catalog Catalog, maxItems int64) (*CachedCatalog, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        maxItems * 10,
		MaxCost:            maxItems,
		BufferItems:        64,
		IgnoreInternalCost: true, // cost counts items, not bytes
	})
	if err != nil {
		return nil, fmt.Errorf("create catalog cache: %w", err)
	}
	return &CachedCatalog{Catalog: catalog, cache: cache}, nil
}

// GetByID returns the cached item or loads it from the wrapped catalog
func (c *CachedCatalog) GetByID(ctx context.Context, id int64) (*models.VocabularyItem, error) {
	if v, ok := c.cache.Get(id); ok {
		item := *v.(*models.VocabularyItem)
		return &item, nil
	}

	item, err := c.Catalog.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stored := *item
	c.cache.Set(id, &stored, 1)
	return item, nil
}

// Close releases the cache goroutines
func (c *CachedCatalog) Close() {
	c.cache.Close()
}
