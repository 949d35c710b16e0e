package scheduling

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps appointments in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	seq  int64
	rows map[int64]*Appointment
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[int64]*Appointment)}
}

func (m *MemoryStore) Create(_ context.Context, a *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	a.ID = m.seq
	clone := *a
	m.rows[a.ID] = &clone
	return nil
}

func (m *MemoryStore) ByIDForUser(_ context.Context, id, userID int64) (*Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.rows[id]
	if !ok || a.UserID != userID {
		return nil, ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (m *MemoryStore) ListByUser(_ context.Context, userID int64, status Status, skip, limit int) ([]*Appointment, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []*Appointment
	for _, a := range m.rows {
		if a.UserID != userID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		clone := *a
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].DateTime.Before(all[j].DateTime) })
	total := len(all)
	if skip < 0 {
		skip = 0
	}
	if skip >= len(all) {
		return nil, total, nil
	}
	all = all[skip:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *MemoryStore) ListByDoctor(_ context.Context, doctorID int64, from, to time.Time) ([]*Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Appointment
	for _, a := range m.rows {
		if a.DoctorID != doctorID {
			continue
		}
		if !from.IsZero() && a.DateTime.Before(from) {
			continue
		}
		if !to.IsZero() && a.DateTime.After(to) {
			continue
		}
		clone := *a
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateTime.Before(out[j].DateTime) })
	return out, nil
}

func (m *MemoryStore) CountUpcoming(_ context.Context, userID int64, after time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, a := range m.rows {
		if a.UserID == userID && a.Status == StatusScheduled && a.DateTime.After(after) {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Update(_ context.Context, a *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[a.ID]; !ok {
		return ErrNotFound
	}
	clone := *a
	m.rows[a.ID] = &clone
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}
