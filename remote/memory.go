package remote

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store, useful for tests and as a reference
// implementation of the Store contract.
type MemoryStore struct {
	mu     sync.RWMutex
	agents map[string]map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		agents: make(map[string]map[string][]byte),
	}
}

// Get returns the stored entry, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, agentID, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.agents[agentID][key]
	if !ok {
		return nil, ErrNotFound
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Put writes an entry, overwriting any previous value.
func (s *MemoryStore) Put(_ context.Context, agentID, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.agents[agentID]
	if !ok {
		entries = make(map[string][]byte)
		s.agents[agentID] = entries
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	entries[key] = stored
	return nil
}

// Delete removes a single entry.
func (s *MemoryStore) Delete(_ context.Context, agentID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entries, ok := s.agents[agentID]; ok {
		delete(entries, key)
		if len(entries) == 0 {
			delete(s.agents, agentID)
		}
	}
	return nil
}

// DeleteAgent removes every entry stored for agentID.
func (s *MemoryStore) DeleteAgent(_ context.Context, agentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.agents, agentID)
	return nil
}

// Len returns the total number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, entries := range s.agents {
		n += len(entries)
	}
	return n
}
