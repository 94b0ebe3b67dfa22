package app

import (
	"context"
	"sync"
)

// MemoryStore implements StateStore in process memory
type MemoryStore struct {
	data map[string]ReloadState
	mu   sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]ReloadState),
	}
}

// Get retrieves the state stored under key
func (s *MemoryStore) Get(ctx context.Context, key string) (ReloadState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.data[key]
	return state, ok, nil
}

// Set stores state under key
func (s *MemoryStore) Set(ctx context.Context, key string, state ReloadState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = state
	return nil
}
