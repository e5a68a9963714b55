package embedding

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/semcache/resource"
)

// BatcherOptions configures a Batcher.
type BatcherOptions struct {
	// Concurrency is the number of provider chunks issued in parallel.
	// Defaults to 4.
	Concurrency int

	// Controller applies shared rate/concurrency budgets to provider calls.
	// Nil enforces no limits.
	Controller *resource.Controller
}

// Batcher turns N query strings into N vectors, partitioning the input into
// chunks no larger than the provider's maximum batch size. The returned slice
// preserves input order and length: ceil(N/maxBatchSize) provider calls, one
// when N fits in a single batch.
type Batcher struct {
	provider     Provider
	maxBatchSize int
	concurrency  int
	ctrl         *resource.Controller
}

// NewBatcher creates a Batcher for the given provider.
func NewBatcher(provider Provider, optFns ...func(o *BatcherOptions)) (*Batcher, error) {
	if provider == nil {
		return nil, ErrNoProvider
	}

	maxBatchSize := provider.MaxBatchSize()
	if maxBatchSize < 1 {
		return nil, ErrInvalidBatchSize
	}

	opts := BatcherOptions{
		Concurrency: 4,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	return &Batcher{
		provider:     provider,
		maxBatchSize: maxBatchSize,
		concurrency:  opts.Concurrency,
		ctrl:         opts.Controller,
	}, nil
}

// Embed returns one vector per query, in input order. Any chunk failure fails
// the whole call with a *BatchError; there is no partial result.
func (b *Batcher) Embed(ctx context.Context, queries []string) ([][]float32, error) {
	if len(queries) == 0 {
		return [][]float32{}, nil
	}

	vectors := make([][]float32, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	chunk := 0
	for offset := 0; offset < len(queries); offset += b.maxBatchSize {
		end := offset + b.maxBatchSize
		if end > len(queries) {
			end = len(queries)
		}

		chunkIndex := chunk
		chunkQueries := queries[offset:end]
		chunkOffset := offset
		chunk++

		g.Go(func() error {
			if err := b.ctrl.AcquireEmbed(gctx); err != nil {
				return &BatchError{Chunk: chunkIndex, Offset: chunkOffset, Size: len(chunkQueries), cause: err}
			}
			defer b.ctrl.ReleaseEmbed()

			chunkVectors, err := b.provider.Embed(gctx, chunkQueries)
			if err != nil {
				return &BatchError{Chunk: chunkIndex, Offset: chunkOffset, Size: len(chunkQueries), cause: err}
			}
			if len(chunkVectors) != len(chunkQueries) {
				return &BatchError{Chunk: chunkIndex, Offset: chunkOffset, Size: len(chunkQueries), cause: ErrVectorCountMismatch}
			}

			// Disjoint region per chunk; no lock needed.
			copy(vectors[chunkOffset:end], chunkVectors)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return vectors, nil
}

// MaxBatchSize returns the provider ceiling the Batcher partitions by.
func (b *Batcher) MaxBatchSize() int {
	return b.maxBatchSize
}
