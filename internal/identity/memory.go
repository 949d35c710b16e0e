package identity

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore keeps users in process memory. It backs the memory DB
// adapter and the test suites.
type MemoryStore struct {
	mu      sync.RWMutex
	seq     int64
	byID    map[int64]*User
	byEmail map[string]int64
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[int64]*User),
		byEmail: make(map[string]int64),
	}
}

func (m *MemoryStore) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, ok := m.byEmail[key]; ok {
		return ErrEmailTaken
	}
	m.seq++
	u.ID = m.seq
	clone := *u
	m.byID[u.ID] = &clone
	m.byEmail[key] = u.ID
	return nil
}

func (m *MemoryStore) ByID(_ context.Context, id int64) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *MemoryStore) ByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *m.byID[id]
	return &clone, nil
}

func (m *MemoryStore) Update(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return ErrNotFound
	}
	clone := *u
	m.byID[u.ID] = &clone
	return nil
}
