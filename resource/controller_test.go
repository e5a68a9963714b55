package resource

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_NilIsUnlimited(t *testing.T) {
	var c *Controller
	ctx := context.Background()

	require.NoError(t, c.AcquireEmbed(ctx))
	c.ReleaseEmbed()
	require.NoError(t, c.AcquireSearch(ctx))
	c.ReleaseSearch()
}

func TestController_ConcurrentEmbedLimit(t *testing.T) {
	c := NewController(Config{MaxConcurrentEmbeds: 2})
	ctx := context.Background()

	var inFlight, peak atomic.Int64
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, c.AcquireEmbed(ctx))
			defer c.ReleaseEmbed()

			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int64(2))
}

func TestController_AcquireRespectsContext(t *testing.T) {
	c := NewController(Config{MaxConcurrentSearches: 1})
	ctx := context.Background()

	require.NoError(t, c.AcquireSearch(ctx))

	canceled, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()

	err := c.AcquireSearch(canceled)
	assert.Error(t, err)

	c.ReleaseSearch()
}

func TestController_EmbedRate(t *testing.T) {
	c := NewController(Config{EmbedRatePerSec: 100, EmbedRateBurst: 1})
	ctx := context.Background()

	start := time.Now()
	for range 3 {
		require.NoError(t, c.AcquireEmbed(ctx))
		c.ReleaseEmbed()
	}

	// Burst 1 at 100/s means the 3rd acquire waits roughly 20ms.
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}
