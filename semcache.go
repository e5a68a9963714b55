package semcache

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/semcache/cache"
	"github.com/hupe1980/semcache/classifier"
	"github.com/hupe1980/semcache/codec"
	"github.com/hupe1980/semcache/embedding"
	"github.com/hupe1980/semcache/internal/norm"
	"github.com/hupe1980/semcache/parallel"
	"github.com/hupe1980/semcache/remote"
	"github.com/hupe1980/semcache/resource"
	"github.com/hupe1980/semcache/result"
)

// SearchBackend executes a vector-similarity search over one agent's corpus.
type SearchBackend[T any] interface {
	// Search returns up to topK items ranked by similarity to vector.
	Search(ctx context.Context, agentID string, vector []float32, topK int) ([]T, error)
}

// Source reports which layer produced a response.
type Source string

const (
	// SourceFilter means the query was answered from the filler allow-list
	// without touching any cache or network.
	SourceFilter Source = "filter"

	// SourceResultCache means the ranked list came straight from the local
	// result cache.
	SourceResultCache Source = "result-cache"

	// SourceRemoteCache means the ranked list came from the external shared
	// store on a local miss.
	SourceRemoteCache Source = "remote-cache"

	// SourceEmbeddingCache means the backend was searched with a cached
	// vector, skipping the embedding provider.
	SourceEmbeddingCache Source = "embedding-cache"

	// SourceProvider means a full pass: fresh embedding, then backend search.
	SourceProvider Source = "provider"
)

// Response is the outcome of a Search call.
type Response[T any] struct {
	// Source reports which layer produced the response.
	Source Source

	// Answer holds the canned reply when Source is SourceFilter, empty
	// otherwise.
	Answer string

	// Results holds the ranked items for every non-filter source.
	Results []T
}

// SemCache layers query classification, an embedding cache, a result cache
// and batched provider calls in front of a vector-search backend. The item
// type T is whatever the backend returns per hit.
type SemCache[T any] struct {
	provider embedding.Provider
	backend  SearchBackend[T]

	filter      *classifier.Filter
	embedCache  *embedding.Cache
	resultCache *result.Cache[T]
	batcher     *embedding.Batcher
	coordinator *parallel.Coordinator[T]

	remoteStore remote.Store
	codec       codec.Codec
	compressor  codec.Compressor

	ctrl    *resource.Controller
	logger  *Logger
	metrics MetricsCollector

	embedGroup singleflight.Group
}

// New creates a SemCache in front of provider and backend.
func New[T any](provider embedding.Provider, backend SearchBackend[T], optFns ...Option) (*SemCache[T], error) {
	if backend == nil {
		return nil, ErrNoBackend
	}

	opts := applyOptions(optFns)

	batcher, err := embedding.NewBatcher(provider, func(o *embedding.BatcherOptions) {
		o.Concurrency = opts.embedConcurrency
		o.Controller = opts.controller
	})
	if err != nil {
		return nil, err
	}

	embedCache, err := embedding.NewCache(opts.embeddingCacheSize, opts.ttl)
	if err != nil {
		return nil, err
	}

	resultCache, err := result.New[T](opts.resultCacheSize, opts.ttl)
	if err != nil {
		return nil, err
	}

	s := &SemCache[T]{
		provider:    provider,
		backend:     backend,
		filter:      opts.classifier,
		embedCache:  embedCache,
		resultCache: resultCache,
		batcher:     batcher,
		remoteStore: opts.remoteStore,
		codec:       opts.codec,
		compressor:  opts.compressor,
		ctrl:        opts.controller,
		logger:      opts.logger,
		metrics:     opts.metricsCollector,
	}

	s.coordinator = parallel.NewCoordinator[T](func(o *parallel.Options) {
		o.MaxConcurrent = opts.maxConcurrentSearches
		o.TaskTimeout = opts.searchTimeout
		o.Logger = opts.logger.Logger
		o.OnTaskFailure = func(_ int, _ parallel.Task, _ error) {
			s.metrics.RecordTaskFailure()
		}
		o.Controller = opts.controller
	})

	return s, nil
}

// Search answers query for agentID, consulting each layer in turn: the
// classifier, the result cache (local, then remote if configured), the
// embedding cache, the provider, and finally the backend. Successful backend
// results populate both caches on the way out.
func (s *SemCache[T]) Search(ctx context.Context, agentID, query string, topK int) (*Response[T], error) {
	if topK < 1 {
		return nil, ErrInvalidTopK
	}

	if !s.filter.NeedsSearch(query) {
		s.metrics.RecordFiltered()
		s.logger.LogFiltered(ctx, agentID)

		return &Response[T]{
			Source: SourceFilter,
			Answer: s.filter.DefaultResponse(query),
		}, nil
	}

	if items, ok := s.resultCache.Get(agentID, query); ok {
		s.metrics.RecordCacheHit(CacheKindResult)
		s.logger.LogSearch(ctx, agentID, SourceResultCache, topK, len(items), nil)

		return &Response[T]{Source: SourceResultCache, Results: items}, nil
	}
	s.metrics.RecordCacheMiss(CacheKindResult)

	if items, ok := s.remoteGet(ctx, agentID, query); ok {
		s.metrics.RecordCacheHit(CacheKindRemote)
		s.logger.LogSearch(ctx, agentID, SourceRemoteCache, topK, len(items), nil)

		// Pull the entry into the local cache so the next lookup stays
		// in-process.
		s.resultCache.Set(agentID, query, items)

		return &Response[T]{Source: SourceRemoteCache, Results: items}, nil
	}

	vector, source, err := s.vectorFor(ctx, query)
	if err != nil {
		s.logger.LogSearch(ctx, agentID, source, topK, 0, err)
		return nil, err
	}

	items, err := s.searchBackend(ctx, agentID, vector, topK)
	s.logger.LogSearch(ctx, agentID, source, topK, len(items), err)

	if err != nil {
		return nil, err
	}

	s.resultCache.Set(agentID, query, items)
	s.remotePut(ctx, agentID, query, items)

	return &Response[T]{Source: source, Results: items}, nil
}

// SearchMany runs tasks concurrently through the full Search pipeline and
// returns one item list per task, in task order. A failed task yields an
// empty list; SearchMany itself never fails.
func (s *SemCache[T]) SearchMany(ctx context.Context, tasks []parallel.Task) [][]T {
	return s.coordinator.SearchMultiple(ctx, tasks, s.taskSearch)
}

// SearchManyResults is SearchMany with the per-task failure reason preserved.
func (s *SemCache[T]) SearchManyResults(ctx context.Context, tasks []parallel.Task) []parallel.TaskResult[T] {
	return s.coordinator.SearchMultipleResults(ctx, tasks, s.taskSearch)
}

// taskSearch adapts Search to the coordinator's task shape. A filler match
// yields an empty list; there is nothing to rank.
func (s *SemCache[T]) taskSearch(ctx context.Context, task parallel.Task) ([]T, error) {
	resp, err := s.Search(ctx, task.AgentID, task.Query, task.TopK)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// InvalidateAgent removes every cached result list for agentID, locally and
// in the remote store if one is configured, and returns the number of local
// entries removed. Call it whenever the agent's corpus changes. Cached
// embeddings are untouched; they depend only on query text.
func (s *SemCache[T]) InvalidateAgent(ctx context.Context, agentID string) int {
	removed := s.resultCache.InvalidateAgent(agentID)
	s.logger.LogInvalidate(ctx, agentID, removed)

	if s.remoteStore != nil {
		err := s.remoteStore.DeleteAgent(ctx, agentID)
		s.logger.LogRemote(ctx, "delete-agent", agentID, err)
	}

	return removed
}

// Clear drops every entry from both caches. The remote store is untouched.
func (s *SemCache[T]) Clear() {
	s.embedCache.Clear()
	s.resultCache.Clear()
}

// Stats reports hit/miss counters for both caches.
func (s *SemCache[T]) Stats() Stats {
	return Stats{
		EmbeddingCache: s.embedCache.Stats(),
		ResultCache:    s.resultCache.Stats(),
	}
}

// vectorFor resolves query to its embedding, from the cache when possible.
// Concurrent misses for the same normalized text share one provider call.
func (s *SemCache[T]) vectorFor(ctx context.Context, query string) ([]float32, Source, error) {
	if vector, ok := s.embedCache.Get(query); ok {
		s.metrics.RecordCacheHit(CacheKindEmbedding)
		return vector, SourceEmbeddingCache, nil
	}
	s.metrics.RecordCacheMiss(CacheKindEmbedding)

	v, err, _ := s.embedGroup.Do(norm.Query(query), func() (any, error) {
		start := time.Now()

		vectors, err := s.batcher.Embed(ctx, []string{query})

		s.metrics.RecordEmbedBatch(1, 1, time.Since(start), err)
		s.logger.LogEmbedBatch(ctx, 1, 1, err)

		if err != nil {
			return nil, err
		}

		s.embedCache.Set(query, vectors[0])
		return vectors[0], nil
	})
	if err != nil {
		return nil, SourceProvider, err
	}

	return v.([]float32), SourceProvider, nil
}

// searchBackend runs one backend search under the shared budget.
func (s *SemCache[T]) searchBackend(ctx context.Context, agentID string, vector []float32, topK int) ([]T, error) {
	if err := s.ctrl.AcquireSearch(ctx); err != nil {
		return nil, err
	}
	defer s.ctrl.ReleaseSearch()

	start := time.Now()
	items, err := s.backend.Search(ctx, agentID, vector, topK)
	s.metrics.RecordSearch(topK, time.Since(start), err)

	return items, err
}

// remoteGet reads a result list through the external store. Any failure is a
// miss; the remote layer must never break a search.
func (s *SemCache[T]) remoteGet(ctx context.Context, agentID, query string) ([]T, bool) {
	if s.remoteStore == nil {
		return nil, false
	}

	key := result.NewKey(agentID, query).Hash()

	data, err := s.remoteStore.Get(ctx, agentID, key)
	if err != nil {
		if !errors.Is(err, remote.ErrNotFound) {
			s.logger.LogRemote(ctx, "get", agentID, err)
		}
		s.metrics.RecordCacheMiss(CacheKindRemote)
		return nil, false
	}

	decoded, err := s.compressor.Decompress(data)
	if err != nil {
		s.logger.LogRemote(ctx, "get", agentID, err)
		s.metrics.RecordCacheMiss(CacheKindRemote)
		return nil, false
	}

	var items []T
	if err := s.codec.Unmarshal(decoded, &items); err != nil {
		s.logger.LogRemote(ctx, "get", agentID, err)
		s.metrics.RecordCacheMiss(CacheKindRemote)
		return nil, false
	}

	return items, true
}

// remotePut mirrors a freshly computed result list to the external store,
// best-effort and off the request path.
func (s *SemCache[T]) remotePut(ctx context.Context, agentID, query string, items []T) {
	if s.remoteStore == nil {
		return
	}

	data, err := s.codec.Marshal(items)
	if err != nil {
		s.logger.LogRemote(ctx, "put", agentID, err)
		return
	}

	data, err = s.compressor.Compress(data)
	if err != nil {
		s.logger.LogRemote(ctx, "put", agentID, err)
		return
	}

	key := result.NewKey(agentID, query).Hash()

	go func() {
		putCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()

		if err := s.remoteStore.Put(putCtx, agentID, key, data); err != nil {
			s.logger.LogRemote(putCtx, "put", agentID, err)
		}
	}()
}

// Stats aggregates per-cache counters.
type Stats struct {
	EmbeddingCache cache.Stats
	ResultCache    cache.Stats
}
