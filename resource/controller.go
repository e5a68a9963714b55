// Package resource bounds the caching layer's use of external services.
//
// The embedding provider and the search backend both meter by request; an
// unbounded fan-out can trip provider rate limits or exhaust backend
// connections. The Controller centralizes those budgets so every component
// draws from the same pool.
package resource

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits. Zero values mean unlimited.
type Config struct {
	// MaxConcurrentEmbeds caps in-flight embedding-provider calls.
	MaxConcurrentEmbeds int64

	// MaxConcurrentSearches caps in-flight search-backend calls.
	MaxConcurrentSearches int64

	// EmbedRatePerSec limits embedding-provider calls per second.
	EmbedRatePerSec float64

	// EmbedRateBurst is the limiter burst size. Defaults to 1 when a rate
	// is configured.
	EmbedRateBurst int
}

// Controller manages shared budgets for provider and backend calls.
// A nil *Controller is valid and enforces no limits.
type Controller struct {
	embedSem     *semaphore.Weighted // nil if unlimited
	searchSem    *semaphore.Weighted // nil if unlimited
	embedLimiter *rate.Limiter       // nil if unlimited
}

// NewController creates a resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{}

	if cfg.MaxConcurrentEmbeds > 0 {
		c.embedSem = semaphore.NewWeighted(cfg.MaxConcurrentEmbeds)
	}
	if cfg.MaxConcurrentSearches > 0 {
		c.searchSem = semaphore.NewWeighted(cfg.MaxConcurrentSearches)
	}
	if cfg.EmbedRatePerSec > 0 {
		burst := cfg.EmbedRateBurst
		if burst < 1 {
			burst = 1
		}
		c.embedLimiter = rate.NewLimiter(rate.Limit(cfg.EmbedRatePerSec), burst)
	}

	return c
}

// AcquireEmbed reserves a provider-call slot, waiting for the rate limiter
// first. Blocks until a slot is available or ctx is canceled.
func (c *Controller) AcquireEmbed(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.embedLimiter != nil {
		if err := c.embedLimiter.Wait(ctx); err != nil {
			return err
		}
	}
	if c.embedSem != nil {
		return c.embedSem.Acquire(ctx, 1)
	}
	return nil
}

// ReleaseEmbed releases a provider-call slot.
func (c *Controller) ReleaseEmbed() {
	if c == nil || c.embedSem == nil {
		return
	}
	c.embedSem.Release(1)
}

// AcquireSearch reserves a backend-call slot.
func (c *Controller) AcquireSearch(ctx context.Context) error {
	if c == nil || c.searchSem == nil {
		return nil
	}
	return c.searchSem.Acquire(ctx, 1)
}

// ReleaseSearch releases a backend-call slot.
func (c *Controller) ReleaseSearch() {
	if c == nil || c.searchSem == nil {
		return
	}
	c.searchSem.Release(1)
}
