package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	userID  uint
	expires time.Time
}

// MemoryStore is a process-local Store. Expired entries are dropped on
// lookup and by Purge.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]entry
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, sessions: make(map[string]entry), now: time.Now}
}

func (m *MemoryStore) Create(_ context.Context, userID uint) (string, error) {
	id := uuid.NewString()
	m.mu.Lock()
	m.sessions[id] = entry{userID: userID, expires: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return id, nil
}

func (m *MemoryStore) Lookup(_ context.Context, id string) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return 0, ErrNotFound
	}
	if !m.now().Before(e.expires) {
		delete(m.sessions, id)
		return 0, ErrNotFound
	}
	return e.userID, nil
}

func (m *MemoryStore) Revoke(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) RevokeUser(_ context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.sessions {
		if e.userID == userID {
			delete(m.sessions, id)
		}
	}
	return nil
}

// Purge drops expired sessions and returns how many were removed.
func (m *MemoryStore) Purge() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for id, e := range m.sessions {
		if !now.Before(e.expires) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Len reports the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
