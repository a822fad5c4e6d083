package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

// Load returns the stored session or a fresh one.
func (s *MemoryStore) Load(_ context.Context, userID string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess, nil
	}
	return NewSession(userID), nil
}

// Save replaces the stored session.
func (s *MemoryStore) Save(_ context.Context, userID string, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = sess
	return nil
}

// Reset discards the stored session.
func (s *MemoryStore) Reset(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

var _ Store = (*MemoryStore)(nil)
