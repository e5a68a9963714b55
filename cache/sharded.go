package cache

import (
	"hash/maphash"
	"time"
)

const numShards = 64

// Sharded is an LRU+TTL cache partitioned across 64 shards to reduce lock
// contention under high concurrency. The capacity is divided evenly across
// shards, so eviction is local to a shard rather than globally exact LRU.
//
// Use the plain Cache unless lock contention has actually been measured.
type Sharded[K comparable, V any] struct {
	shards [numShards]*Cache[K, V]
	seed   maphash.Seed
}

// NewSharded creates a sharded cache with the given total capacity.
func NewSharded[K comparable, V any](maxSize int, ttl time.Duration, optFns ...Option[K, V]) (*Sharded[K, V], error) {
	if maxSize <= 0 {
		return nil, ErrInvalidCapacity
	}

	shardCapacity := maxSize / numShards
	if shardCapacity < 1 {
		shardCapacity = 1
	}

	s := &Sharded[K, V]{
		seed: maphash.MakeSeed(),
	}

	for i := range numShards {
		c, err := New(shardCapacity, ttl, optFns...)
		if err != nil {
			return nil, err
		}
		s.shards[i] = c
	}

	return s, nil
}

func (s *Sharded[K, V]) shard(key K) *Cache[K, V] {
	return s.shards[maphash.Comparable(s.seed, key)%numShards]
}

// Get returns the value for key from its shard.
func (s *Sharded[K, V]) Get(key K) (V, bool) {
	return s.shard(key).Get(key)
}

// Set stores value under key in its shard.
func (s *Sharded[K, V]) Set(key K, value V) {
	s.shard(key).Set(key, value)
}

// Invalidate removes matching entries from every shard and returns the total
// number removed.
func (s *Sharded[K, V]) Invalidate(predicate func(key K) bool) int {
	removed := 0
	for _, c := range s.shards {
		removed += c.Invalidate(predicate)
	}
	return removed
}

// Clear removes all entries and resets counters on every shard.
func (s *Sharded[K, V]) Clear() {
	for _, c := range s.shards {
		c.Clear()
	}
}

// Len returns the number of live entries across all shards.
func (s *Sharded[K, V]) Len() int {
	n := 0
	for _, c := range s.shards {
		n += c.Len()
	}
	return n
}

// Stats aggregates counters across all shards.
func (s *Sharded[K, V]) Stats() Stats {
	var agg Stats
	for _, c := range s.shards {
		st := c.Stats()
		agg.Hits += st.Hits
		agg.Misses += st.Misses
		agg.Size += st.Size
	}
	if total := agg.Hits + agg.Misses; total > 0 {
		agg.HitRate = float64(agg.Hits) / float64(total)
	}
	return agg
}
