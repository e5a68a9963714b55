// Package embedding turns query text into vectors, caching and batching the
// calls to the embedding provider.
//
// The provider is the expensive hop of the whole request path (network
// latency plus per-call cost), so everything here exists to call it as
// rarely, and as full, as possible.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNoProvider is returned when a Batcher is constructed without a provider.
	ErrNoProvider = errors.New("embedding provider must not be nil")

	// ErrInvalidBatchSize is returned when a provider reports a non-positive
	// maximum batch size.
	ErrInvalidBatchSize = errors.New("provider max batch size must be positive")

	// ErrVectorCountMismatch is returned when a provider responds with a
	// different number of vectors than queries submitted.
	ErrVectorCountMismatch = errors.New("provider returned wrong number of vectors")
)

// Provider is the embedding backend contract. Implementations enforce their
// own request timeouts; MaxBatchSize is the hard ceiling on queries per call.
type Provider interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// MaxBatchSize returns the provider-imposed ceiling on texts per call.
	MaxBatchSize() int
}

// BatchError reports the failure of one provider chunk. The aggregate Embed
// call fails as a whole: no silent partial success. Retry or fallback is the
// caller's decision.
//
// The provider's original error can be accessed via errors.Unwrap.
type BatchError struct {
	Chunk  int // zero-based chunk index
	Offset int // index of the chunk's first query in the original input
	Size   int // number of queries in the chunk
	cause  error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("embedding batch chunk %d (queries %d-%d) failed: %v",
		e.Chunk, e.Offset, e.Offset+e.Size-1, e.cause)
}

func (e *BatchError) Unwrap() error { return e.cause }
