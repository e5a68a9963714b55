package embedding

import (
	"time"

	"github.com/hupe1980/semcache/cache"
	"github.com/hupe1980/semcache/internal/norm"
)

// Cache maps normalized query text to its embedding vector. Two spellings of
// the same query ("What properties? " vs "what properties?") share one entry.
//
// Vectors are stored as returned by the provider; callers must treat them as
// read-only.
type Cache struct {
	store *cache.Cache[string, []float32]
}

// NewCache creates an embedding cache holding at most maxSize vectors, each
// live for ttl after insertion.
func NewCache(maxSize int, ttl time.Duration) (*Cache, error) {
	store, err := cache.New[string, []float32](maxSize, ttl)
	if err != nil {
		return nil, err
	}
	return &Cache{store: store}, nil
}

// Get returns the cached vector for query, if present and live.
func (c *Cache) Get(query string) ([]float32, bool) {
	return c.store.Get(norm.Query(query))
}

// Set caches the vector for query.
func (c *Cache) Set(query string, vector []float32) {
	c.store.Set(norm.Query(query), vector)
}

// Clear removes all entries and resets counters.
func (c *Cache) Clear() {
	c.store.Clear()
}

// Stats returns hit/miss counters and the live entry count.
func (c *Cache) Stats() cache.Stats {
	return c.store.Stats()
}
