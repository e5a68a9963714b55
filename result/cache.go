// Package result caches ranked result lists per (agent, query) pair.
//
// Entries are scoped to one agent's document corpus, so a corpus change (a
// new document upload, a deletion) must drop every entry for that agent and
// only that agent: serving stale ranked answers after an upload is a
// functional bug, not a tuning problem. InvalidateAgent does that bulk drop
// via a per-agent posting index, the same roaring-bitmap role the filter
// posting lists play in a vector index.
package result

import (
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/semcache/cache"
)

// Cache is an LRU+TTL cache of ranked result lists, keyed by (agent, query).
// The item type T is an opaque payload; the cache never inspects it.
type Cache[T any] struct {
	store *cache.Cache[Key, []T]

	mu     sync.Mutex
	nextID uint32
	ids    map[Key]uint32
	keys   map[uint32]Key
	agents map[string]*roaring.Bitmap
}

// New creates a result cache holding at most maxSize entries, each live for
// ttl after its most recent Set.
func New[T any](maxSize int, ttl time.Duration) (*Cache[T], error) {
	c := &Cache[T]{
		ids:    make(map[Key]uint32),
		keys:   make(map[uint32]Key),
		agents: make(map[string]*roaring.Bitmap),
	}

	store, err := cache.New(maxSize, ttl, cache.WithOnRemove(func(key Key, _ []T) {
		c.forget(key)
	}))
	if err != nil {
		return nil, err
	}
	c.store = store

	return c, nil
}

// Get returns the cached result list for the agent's query, if present and
// live.
func (c *Cache[T]) Get(agentID, query string) ([]T, bool) {
	return c.store.Get(NewKey(agentID, query))
}

// Set caches the result list for the agent's query.
func (c *Cache[T]) Set(agentID, query string, items []T) {
	key := NewKey(agentID, query)
	c.store.Set(key, items)
	c.index(key)
}

// InvalidateAgent removes every entry keyed to agentID and returns the number
// removed. Entries for other agents are untouched even when the query text
// collides.
func (c *Cache[T]) InvalidateAgent(agentID string) int {
	c.mu.Lock()
	bitmap, ok := c.agents[agentID]
	var keys []Key
	if ok {
		keys = make([]Key, 0, bitmap.GetCardinality())
		bitmap.Iterate(func(id uint32) bool {
			keys = append(keys, c.keys[id])
			return true
		})
	}
	c.mu.Unlock()

	removed := 0
	for _, key := range keys {
		if c.store.Remove(key) {
			removed++
		}
	}
	return removed
}

// Clear removes all entries and resets counters.
func (c *Cache[T]) Clear() {
	c.store.Clear()
}

// Stats returns hit/miss counters and the live entry count.
func (c *Cache[T]) Stats() cache.Stats {
	return c.store.Stats()
}

// index registers a key in the per-agent posting index.
func (c *Cache[T]) index(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.ids[key]; ok {
		return
	}

	id := c.nextID
	c.nextID++

	c.ids[key] = id
	c.keys[id] = key

	bitmap, ok := c.agents[key.AgentID]
	if !ok {
		bitmap = roaring.New()
		c.agents[key.AgentID] = bitmap
	}
	bitmap.Add(id)
}

// forget drops a key from the posting index. Called from the store's removal
// hook for evictions, expiries and invalidations alike.
func (c *Cache[T]) forget(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.ids[key]
	if !ok {
		return
	}

	delete(c.ids, key)
	delete(c.keys, id)

	if bitmap, ok := c.agents[key.AgentID]; ok {
		bitmap.Remove(id)
		if bitmap.IsEmpty() {
			delete(c.agents, key.AgentID)
		}
	}
}
