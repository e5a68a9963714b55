// Package remote defines an external shared store for cached result lists.
//
// The in-memory caches are single-process; a multi-process deployment keeps
// them coherent by layering one of these stores behind the result cache. A
// remote entry is still a cache entry: losing it costs one backend search,
// nothing more, so implementations favor simplicity over durability.
//
// Entries are grouped per agent so an agent's corpus change can drop all of
// its remote entries in one call, mirroring the in-memory invalidation.
package remote

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an entry does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`.
var ErrNotFound = errors.New("remote: entry not found")

// Store holds encoded result lists keyed by (agentID, key). Keys are opaque
// fixed-format strings (the result cache passes a hex digest); agentID is the
// grouping used by DeleteAgent.
type Store interface {
	// Get returns the stored entry, or ErrNotFound.
	Get(ctx context.Context, agentID, key string) ([]byte, error)
	// Put writes an entry, overwriting any previous value.
	Put(ctx context.Context, agentID, key string, data []byte) error
	// Delete removes a single entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, agentID, key string) error
	// DeleteAgent removes every entry stored for agentID.
	DeleteAgent(ctx context.Context, agentID string) error
}
