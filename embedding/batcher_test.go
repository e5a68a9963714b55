package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider derives a deterministic vector from each text so order
// preservation is observable.
type fakeProvider struct {
	mu           sync.Mutex
	maxBatch     int
	calls        int
	batchSizes   []int
	failOnChunk  int // 1-based call number to fail on; 0 = never
	failWith     error
	shortMeasure bool // return one vector too few
}

func (p *fakeProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	p.mu.Lock()
	p.calls++
	call := p.calls
	p.batchSizes = append(p.batchSizes, len(texts))
	p.mu.Unlock()

	if p.failOnChunk != 0 && call == p.failOnChunk {
		return nil, p.failWith
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{float32(len(text)), float32(text[0])}
	}
	if p.shortMeasure {
		vectors = vectors[:len(vectors)-1]
	}
	return vectors, nil
}

func (p *fakeProvider) MaxBatchSize() int { return p.maxBatch }

func queries(n int) []string {
	qs := make([]string, n)
	for i := range qs {
		qs[i] = fmt.Sprintf("query-%04d", i)
	}
	return qs
}

func TestBatcher_New(t *testing.T) {
	t.Run("NilProvider", func(t *testing.T) {
		_, err := NewBatcher(nil)
		assert.ErrorIs(t, err, ErrNoProvider)
	})

	t.Run("InvalidBatchSize", func(t *testing.T) {
		_, err := NewBatcher(&fakeProvider{maxBatch: 0})
		assert.ErrorIs(t, err, ErrInvalidBatchSize)
	})
}

func TestBatcher_SingleChunk(t *testing.T) {
	provider := &fakeProvider{maxBatch: 100}
	b, err := NewBatcher(provider)
	require.NoError(t, err)

	vectors, err := b.Embed(context.Background(), queries(42))
	require.NoError(t, err)

	assert.Len(t, vectors, 42)
	assert.Equal(t, 1, provider.calls, "42 queries fit in one batch of 100")
}

func TestBatcher_Partitioning(t *testing.T) {
	provider := &fakeProvider{maxBatch: 100}
	b, err := NewBatcher(provider)
	require.NoError(t, err)

	qs := queries(150)
	vectors, err := b.Embed(context.Background(), qs)
	require.NoError(t, err)

	require.Len(t, vectors, 150)
	assert.Equal(t, 2, provider.calls, "150 queries need exactly 2 calls at max 100")
	assert.ElementsMatch(t, []int{100, 50}, provider.batchSizes)

	// Output order matches input order across chunk boundaries.
	for i, q := range qs {
		assert.Equal(t, []float32{float32(len(q)), float32(q[0])}, vectors[i], "vector %d", i)
	}
}

func TestBatcher_ExactMultiple(t *testing.T) {
	provider := &fakeProvider{maxBatch: 50}
	b, err := NewBatcher(provider)
	require.NoError(t, err)

	_, err = b.Embed(context.Background(), queries(100))
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}

func TestBatcher_Empty(t *testing.T) {
	provider := &fakeProvider{maxBatch: 10}
	b, err := NewBatcher(provider)
	require.NoError(t, err)

	vectors, err := b.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Equal(t, 0, provider.calls)
}

func TestBatcher_ChunkFailurePropagates(t *testing.T) {
	providerErr := errors.New("provider unavailable")
	provider := &fakeProvider{maxBatch: 10, failOnChunk: 2, failWith: providerErr}
	b, err := NewBatcher(provider, func(o *BatcherOptions) {
		o.Concurrency = 1 // deterministic chunk order
	})
	require.NoError(t, err)

	vectors, err := b.Embed(context.Background(), queries(25))
	require.Error(t, err)
	assert.Nil(t, vectors, "no silent partial success")

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 1, batchErr.Chunk)
	assert.Equal(t, 10, batchErr.Offset)
	assert.Equal(t, 10, batchErr.Size)
	assert.ErrorIs(t, err, providerErr)
}

func TestBatcher_VectorCountMismatch(t *testing.T) {
	provider := &fakeProvider{maxBatch: 10, shortMeasure: true}
	b, err := NewBatcher(provider)
	require.NoError(t, err)

	_, err = b.Embed(context.Background(), queries(5))
	assert.ErrorIs(t, err, ErrVectorCountMismatch)
}
