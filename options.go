package semcache

import (
	"log/slog"
	"time"

	"github.com/hupe1980/semcache/classifier"
	"github.com/hupe1980/semcache/codec"
	"github.com/hupe1980/semcache/remote"
	"github.com/hupe1980/semcache/resource"
)

type options struct {
	embeddingCacheSize    int
	resultCacheSize       int
	ttl                   time.Duration
	classifier            *classifier.Filter
	metricsCollector      MetricsCollector
	logger                *Logger
	codec                 codec.Codec
	compressor            codec.Compressor
	remoteStore           remote.Store
	controller            *resource.Controller
	maxConcurrentSearches int
	searchTimeout         time.Duration
	embedConcurrency      int
}

// Option configures SemCache constructor behavior.
type Option func(*options)

// WithEmbeddingCacheSize sets the maximum number of cached embedding
// vectors. Must be positive.
func WithEmbeddingCacheSize(size int) Option {
	return func(o *options) {
		o.embeddingCacheSize = size
	}
}

// WithResultCacheSize sets the maximum number of cached result lists.
// Must be positive.
func WithResultCacheSize(size int) Option {
	return func(o *options) {
		o.resultCacheSize = size
	}
}

// WithTTL sets how long cache entries stay live after insertion. Applies to
// both the embedding cache and the result cache.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
	}
}

// WithClassifier replaces the default query classifier, e.g. to extend the
// filler allow-list with domain-specific phrases.
func WithClassifier(f *classifier.Filter) Option {
	return func(o *options) {
		if f != nil {
			o.classifier = f
		}
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithCodec configures the codec used for remote-store entries.
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompressor configures compression for remote-store entries.
// Defaults to none.
func WithCompressor(c codec.Compressor) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Noop{}
		}
		o.compressor = c
	}
}

// WithRemoteStore layers an external shared result store behind the
// in-memory result cache, keeping multiple processes coherent. Reads fall
// through to it on a local miss; writes and invalidations are mirrored to it
// best-effort.
func WithRemoteStore(store remote.Store) Option {
	return func(o *options) {
		o.remoteStore = store
	}
}

// WithResourceController applies shared rate and concurrency budgets to
// embedding-provider and search-backend calls.
func WithResourceController(ctrl *resource.Controller) Option {
	return func(o *options) {
		o.controller = ctrl
	}
}

// WithMaxConcurrentSearches caps tasks in flight during SearchMany.
func WithMaxConcurrentSearches(n int) Option {
	return func(o *options) {
		o.maxConcurrentSearches = n
	}
}

// WithSearchTimeout bounds each task in SearchMany so one hung backend call
// degrades to an empty result instead of stalling the batch.
func WithSearchTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.searchTimeout = timeout
	}
}

// WithEmbedConcurrency sets how many provider chunks a batched embed call
// issues in parallel.
func WithEmbedConcurrency(n int) Option {
	return func(o *options) {
		o.embedConcurrency = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		embeddingCacheSize:    1024,
		resultCacheSize:       1024,
		ttl:                   time.Hour,
		classifier:            classifier.New(),
		metricsCollector:      NoopMetricsCollector{},
		logger:                NoopLogger(),
		codec:                 codec.Default,
		compressor:            codec.Noop{},
		maxConcurrentSearches: 16,
		embedConcurrency:      4,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
