package assistant

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemorySessionStore keeps sessions in process memory.
type MemorySessionStore struct {
	mu   sync.RWMutex
	seq  int64
	rows map[int64]*Session
}

// NewMemorySessionStore constructs an empty MemorySessionStore.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{rows: make(map[int64]*Session)}
}

func (m *MemorySessionStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	s.ID = m.seq
	clone := *s
	m.rows[s.ID] = &clone
	return nil
}

func (m *MemorySessionStore) ByIDForUser(_ context.Context, id, userID int64) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.rows[id]
	if !ok || s.UserID != userID {
		return nil, ErrNotFound
	}
	clone := *s
	return &clone, nil
}

func (m *MemorySessionStore) ListByUser(_ context.Context, userID int64) ([]*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Session
	for _, s := range m.rows {
		if s.UserID != userID {
			continue
		}
		clone := *s
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastMessageAt.After(out[j].LastMessageAt) })
	return out, nil
}

func (m *MemorySessionStore) Touch(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return ErrNotFound
	}
	s.LastMessageAt = at
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

// MemoryMessageStore keeps chat turns in process memory.
type MemoryMessageStore struct {
	mu   sync.RWMutex
	seq  int64
	rows map[int64]*Message
}

// NewMemoryMessageStore constructs an empty MemoryMessageStore.
func NewMemoryMessageStore() *MemoryMessageStore {
	return &MemoryMessageStore{rows: make(map[int64]*Message)}
}

func (m *MemoryMessageStore) Create(_ context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	msg.ID = m.seq
	clone := *msg
	m.rows[msg.ID] = &clone
	return nil
}

func (m *MemoryMessageStore) ListBySession(_ context.Context, sessionID int64) ([]*Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Message
	for _, msg := range m.rows {
		if msg.SessionID != sessionID {
			continue
		}
		clone := *msg
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryMessageStore) DeleteBySession(_ context.Context, sessionID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, msg := range m.rows {
		if msg.SessionID == sessionID {
			delete(m.rows, id)
		}
	}
	return nil
}
