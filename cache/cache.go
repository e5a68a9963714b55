// Package cache provides a generic in-memory LRU cache with per-entry TTL.
//
// Both the embedding cache and the result cache are built on the same Cache
// type, so eviction and expiry semantics are defined exactly once. Entries are
// expired lazily on read; no background sweeper runs. Memory held by stale,
// unread keys is reclaimed under capacity pressure, which is acceptable
// because the cache is bounded by maxSize.
package cache

import (
	"container/list"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrInvalidCapacity is returned when a cache is constructed with a
// non-positive maxSize.
var ErrInvalidCapacity = errors.New("cache capacity must be positive")

// Stats is a snapshot of cache counters.
//
// Size counts live (non-expired) entries only. HitRate is hits/(hits+misses),
// or 0 before the first lookup.
type Stats struct {
	Hits    int64
	Misses  int64
	HitRate float64
	Size    int
}

// Cache is a thread-safe LRU cache with TTL-based expiry.
//
// A lookup of an expired entry counts as a miss and removes the entry.
// Recency is updated on both Get and Set. When an insert of a new key would
// exceed capacity, exactly one least-recently-used live entry is evicted
// (expired entries found at the LRU end are purged first and do not count as
// evictions).
type Cache[K comparable, V any] struct {
	mu        sync.Mutex
	maxSize   int
	ttl       time.Duration
	items     map[K]*list.Element
	evictList *list.List
	onRemove  func(key K, value V)

	hits   atomic.Int64
	misses atomic.Int64
}

type entry[K comparable, V any] struct {
	key          K
	value        V
	expiresAt    time.Time
	lastAccessed time.Time
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithOnRemove registers a callback invoked whenever an entry leaves the
// cache: eviction, lazy expiry, invalidation or Clear. The callback runs with
// the cache lock held and must not call back into the cache.
func WithOnRemove[K comparable, V any](fn func(key K, value V)) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.onRemove = fn
	}
}

// New creates a Cache holding at most maxSize entries, each live for ttl
// after its most recent Set. A ttl of 0 makes entries stale immediately after
// insertion.
func New[K comparable, V any](maxSize int, ttl time.Duration, optFns ...Option[K, V]) (*Cache[K, V], error) {
	if maxSize <= 0 {
		return nil, ErrInvalidCapacity
	}

	c := &Cache[K, V]{
		maxSize:   maxSize,
		ttl:       ttl,
		items:     make(map[K]*list.Element),
		evictList: list.New(),
	}

	for _, fn := range optFns {
		if fn != nil {
			fn(c)
		}
	}

	return c, nil
}

// Get returns the value for key. ok is false for unseen keys and for keys
// whose TTL has elapsed; an expired entry is purged and counted as a miss.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V

	element, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		return zero, false
	}

	ent := element.Value.(*entry[K, V])
	if time.Now().After(ent.expiresAt) {
		c.removeElement(element)
		c.misses.Add(1)
		return zero, false
	}

	ent.lastAccessed = time.Now()
	c.evictList.MoveToFront(element)
	c.hits.Add(1)
	return ent.value, true
}

// Set stores value under key, overwriting any existing entry. Overwrites
// reset the TTL and mark the entry most-recently-used. Inserting a new key at
// capacity evicts one least-recently-used live entry first.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()

	if element, ok := c.items[key]; ok {
		ent := element.Value.(*entry[K, V])
		ent.value = value
		ent.expiresAt = now.Add(c.ttl)
		ent.lastAccessed = now
		c.evictList.MoveToFront(element)
		return
	}

	if c.evictList.Len() >= c.maxSize {
		c.makeRoom(now)
	}

	element := c.evictList.PushFront(&entry[K, V]{
		key:          key,
		value:        value,
		expiresAt:    now.Add(c.ttl),
		lastAccessed: now,
	})
	c.items[key] = element
}

// makeRoom frees one slot. Expired entries at the LRU end are purged first;
// only if none are found is a live entry evicted.
func (c *Cache[K, V]) makeRoom(now time.Time) {
	// Purge expired entries from the cold end.
	for element := c.evictList.Back(); element != nil; {
		prev := element.Prev()
		if now.After(element.Value.(*entry[K, V]).expiresAt) {
			c.removeElement(element)
		}
		element = prev
	}

	if c.evictList.Len() < c.maxSize {
		return
	}

	if element := c.evictList.Back(); element != nil {
		c.removeElement(element)
	}
}

// Remove deletes the entry for key, reporting whether it was present.
// Removal is not an eviction and does not touch the hit/miss counters.
func (c *Cache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeElement(element)
	return true
}

// Invalidate removes all entries whose key matches the predicate and returns
// the number removed.
func (c *Cache[K, V]) Invalidate(predicate func(key K) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var toRemove []*list.Element
	for key, element := range c.items {
		if predicate(key) {
			toRemove = append(toRemove, element)
		}
	}

	for _, element := range toRemove {
		c.removeElement(element)
	}

	return len(toRemove)
}

// Clear removes all entries and resets the hit/miss counters.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for element := c.evictList.Back(); element != nil; element = c.evictList.Back() {
		c.removeElement(element)
	}

	c.hits.Store(0)
	c.misses.Store(0)
}

// Len returns the number of live (non-expired) entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.liveLen(time.Now())
}

func (c *Cache[K, V]) liveLen(now time.Time) int {
	n := 0
	for element := c.evictList.Front(); element != nil; element = element.Next() {
		if !now.After(element.Value.(*entry[K, V]).expiresAt) {
			n++
		}
	}
	return n
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	size := c.liveLen(time.Now())
	c.mu.Unlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Hits:    hits,
		Misses:  misses,
		HitRate: hitRate,
		Size:    size,
	}
}

func (c *Cache[K, V]) removeElement(element *list.Element) {
	c.evictList.Remove(element)
	ent := element.Value.(*entry[K, V])
	delete(c.items, ent.key)
	if c.onRemove != nil {
		c.onRemove(ent.key, ent.value)
	}
}
