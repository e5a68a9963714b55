package embedding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/semcache/cache"
)

func TestCache_Normalization(t *testing.T) {
	c, err := NewCache(10, time.Hour)
	require.NoError(t, err)

	c.Set("What Properties? ", []float32{1, 2})

	v, ok := c.Get("what properties?")
	require.True(t, ok, "spellings of the same query share one entry")
	assert.Equal(t, []float32{1, 2}, v)

	assert.Equal(t, 1, c.Stats().Size)
}

func TestCache_InvalidSize(t *testing.T) {
	_, err := NewCache(0, time.Hour)
	assert.ErrorIs(t, err, cache.ErrInvalidCapacity)
}

func TestCache_TTL(t *testing.T) {
	c, err := NewCache(10, 20*time.Millisecond)
	require.NoError(t, err)

	c.Set("q", []float32{1})
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("q")
	assert.False(t, ok)
}
