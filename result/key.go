package result

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/hupe1980/semcache/internal/norm"
)

// Key identifies a cached result list. AgentID is a structural part of the
// key: two agents asking the identical question never share an entry, because
// each agent searches its own document corpus.
type Key struct {
	AgentID string
	Query   string // normalized
}

// NewKey builds the key for an agent/query pair. The query is normalized so
// spelling variants collapse to one entry, consistent with the embedding
// cache.
func NewKey(agentID, query string) Key {
	return Key{
		AgentID: agentID,
		Query:   norm.Query(query),
	}
}

// String renders the key deterministically. The unit separator keeps the
// agent id from ever merging ambiguously with the query text.
func (k Key) String() string {
	return k.AgentID + "\x1f" + k.Query
}

// Hash returns a fixed-length hex digest of the key, safe for use as a
// remote-store object name.
func (k Key) Hash() string {
	sum := sha256.Sum256([]byte(k.String()))
	return hex.EncodeToString(sum[:])
}
