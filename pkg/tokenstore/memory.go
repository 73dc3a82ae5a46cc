package tokenstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryStore is the session-scoped tier: credentials vanish with the
// process, mirroring browser session storage.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens Tokens
	user   json.RawMessage
	visits map[string]time.Time
}

// NewMemoryStore builds an empty session-scoped store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{visits: make(map[string]time.Time)}
}

func (m *MemoryStore) SetTokens(_ context.Context, tokens Tokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = tokens
	return nil
}

func (m *MemoryStore) Tokens(_ context.Context) (Tokens, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens, nil
}

func (m *MemoryStore) SetAccess(_ context.Context, access string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens.Access = access
	return nil
}

func (m *MemoryStore) SetUser(_ context.Context, raw json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = append(json.RawMessage(nil), raw...)
	return nil
}

func (m *MemoryStore) User(_ context.Context) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil, nil
	}
	return append(json.RawMessage(nil), m.user...), nil
}

func (m *MemoryStore) SetVisitMark(_ context.Context, name string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visits[name] = at
	return nil
}

func (m *MemoryStore) VisitMark(_ context.Context, name string) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.visits[name], nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = Tokens{}
	m.user = nil
	return nil
}
