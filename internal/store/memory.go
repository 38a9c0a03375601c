package store

import (
	"context"
	"sync"
)

// MemoryStore keeps the token in process memory. Useful for tests and for
// embedders that manage persistence themselves.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore creates an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the stored token, or ErrNoToken when none was set.
func (s *MemoryStore) Get(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", ErrNoToken
	}
	return s.token, nil
}

// Set replaces the stored token.
func (s *MemoryStore) Set(_ context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}
