package semcache

import (
	"sync/atomic"
	"time"
)

// CacheKind identifies which cache a hit/miss counter belongs to.
type CacheKind uint8

const (
	CacheKindUnknown   CacheKind = iota
	CacheKindEmbedding           // query text -> vector
	CacheKindResult              // (agent, query) -> ranked results
	CacheKindRemote              // external shared result store
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordEmbedBatch is called after each batched embedding-provider call.
	// queries is the number of texts submitted, chunks the number of
	// provider calls issued, err is nil if successful.
	RecordEmbedBatch(queries, chunks int, duration time.Duration, err error)

	// RecordSearch is called after each backend similarity search.
	RecordSearch(topK int, duration time.Duration, err error)

	// RecordCacheHit is called for every cache hit.
	RecordCacheHit(kind CacheKind)

	// RecordCacheMiss is called for every cache miss.
	RecordCacheMiss(kind CacheKind)

	// RecordFiltered is called when a query is answered from the filler
	// allow-list without any cache or network access.
	RecordFiltered()

	// RecordTaskFailure is called when a parallel search task's failure is
	// absorbed into an empty result.
	RecordTaskFailure()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordEmbedBatch(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordSearch(int, time.Duration, error)         {}
func (NoopMetricsCollector) RecordCacheHit(CacheKind)                       {}
func (NoopMetricsCollector) RecordCacheMiss(CacheKind)                      {}
func (NoopMetricsCollector) RecordFiltered()                                {}
func (NoopMetricsCollector) RecordTaskFailure()                             {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	EmbedBatchCount      atomic.Int64
	EmbedBatchQueries    atomic.Int64
	EmbedBatchChunks     atomic.Int64
	EmbedBatchErrors     atomic.Int64
	EmbedBatchTotalNanos atomic.Int64
	SearchCount          atomic.Int64
	SearchErrors         atomic.Int64
	SearchTotalNanos     atomic.Int64
	EmbeddingCacheHits   atomic.Int64
	EmbeddingCacheMisses atomic.Int64
	ResultCacheHits      atomic.Int64
	ResultCacheMisses    atomic.Int64
	RemoteCacheHits      atomic.Int64
	RemoteCacheMisses    atomic.Int64
	FilteredCount        atomic.Int64
	TaskFailures         atomic.Int64
}

// RecordEmbedBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEmbedBatch(queries, chunks int, duration time.Duration, err error) {
	b.EmbedBatchCount.Add(1)
	b.EmbedBatchQueries.Add(int64(queries))
	b.EmbedBatchChunks.Add(int64(chunks))
	b.EmbedBatchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.EmbedBatchErrors.Add(1)
	}
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(topK int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordCacheHit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheHit(kind CacheKind) {
	switch kind {
	case CacheKindEmbedding:
		b.EmbeddingCacheHits.Add(1)
	case CacheKindResult:
		b.ResultCacheHits.Add(1)
	case CacheKindRemote:
		b.RemoteCacheHits.Add(1)
	}
}

// RecordCacheMiss implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheMiss(kind CacheKind) {
	switch kind {
	case CacheKindEmbedding:
		b.EmbeddingCacheMisses.Add(1)
	case CacheKindResult:
		b.ResultCacheMisses.Add(1)
	case CacheKindRemote:
		b.RemoteCacheMisses.Add(1)
	}
}

// RecordFiltered implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFiltered() {
	b.FilteredCount.Add(1)
}

// RecordTaskFailure implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTaskFailure() {
	b.TaskFailures.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		EmbedBatchCount:      b.EmbedBatchCount.Load(),
		EmbedBatchQueries:    b.EmbedBatchQueries.Load(),
		EmbedBatchChunks:     b.EmbedBatchChunks.Load(),
		EmbedBatchErrors:     b.EmbedBatchErrors.Load(),
		EmbedBatchAvgNanos:   b.getAvgEmbedNanos(),
		SearchCount:          b.SearchCount.Load(),
		SearchErrors:         b.SearchErrors.Load(),
		SearchAvgNanos:       b.getAvgSearchNanos(),
		EmbeddingCacheHits:   b.EmbeddingCacheHits.Load(),
		EmbeddingCacheMisses: b.EmbeddingCacheMisses.Load(),
		ResultCacheHits:      b.ResultCacheHits.Load(),
		ResultCacheMisses:    b.ResultCacheMisses.Load(),
		RemoteCacheHits:      b.RemoteCacheHits.Load(),
		RemoteCacheMisses:    b.RemoteCacheMisses.Load(),
		FilteredCount:        b.FilteredCount.Load(),
		TaskFailures:         b.TaskFailures.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgEmbedNanos() int64 {
	count := b.EmbedBatchCount.Load()
	if count == 0 {
		return 0
	}
	return b.EmbedBatchTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	EmbedBatchCount      int64
	EmbedBatchQueries    int64
	EmbedBatchChunks     int64
	EmbedBatchErrors     int64
	EmbedBatchAvgNanos   int64
	SearchCount          int64
	SearchErrors         int64
	SearchAvgNanos       int64
	EmbeddingCacheHits   int64
	EmbeddingCacheMisses int64
	ResultCacheHits      int64
	ResultCacheMisses    int64
	RemoteCacheHits      int64
	RemoteCacheMisses    int64
	FilteredCount        int64
	TaskFailures         int64
}
