package session

import (
	"context"
	"sync"
)

// MemoryStore keeps the session in process memory. It is the default when
// no Redis address is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	current *Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(_ context.Context, sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess == nil {
		m.current = nil
		return nil
	}
	cp := *sess
	m.current = &cp
	return nil
}

func (m *MemoryStore) Load(_ context.Context) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil, nil
	}
	cp := *m.current
	return &cp, nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	return nil
}
