package medical

import (
	"context"
	"sort"
	"sync"
)

// MemoryDoctorStore keeps doctor profiles in process memory.
type MemoryDoctorStore struct {
	mu   sync.RWMutex
	seq  int64
	rows map[int64]*Doctor
}

// NewMemoryDoctorStore constructs an empty MemoryDoctorStore.
func NewMemoryDoctorStore() *MemoryDoctorStore {
	return &MemoryDoctorStore{rows: make(map[int64]*Doctor)}
}

func (m *MemoryDoctorStore) Create(_ context.Context, d *Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	d.ID = m.seq
	clone := *d
	m.rows[d.ID] = &clone
	return nil
}

func (m *MemoryDoctorStore) ByID(_ context.Context, id int64) (*Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *d
	return &clone, nil
}

func (m *MemoryDoctorStore) ByUserID(_ context.Context, userID int64) (*Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.rows {
		if d.UserID == userID {
			clone := *d
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryDoctorStore) List(_ context.Context, f DoctorFilter) ([]*Doctor, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []*Doctor
	for _, d := range m.rows {
		if f.Specialization != "" && d.Specialization != f.Specialization {
			continue
		}
		if f.HospitalID > 0 && d.HospitalID != f.HospitalID {
			continue
		}
		if f.IsAvailableOnline != nil && d.IsAvailableOnline != *f.IsAvailableOnline {
			continue
		}
		clone := *d
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, f.Skip, f.Limit), len(all), nil
}

func (m *MemoryDoctorStore) Update(_ context.Context, d *Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[d.ID]; !ok {
		return ErrNotFound
	}
	clone := *d
	m.rows[d.ID] = &clone
	return nil
}

func (m *MemoryDoctorStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

// MemoryHospitalStore keeps hospitals in process memory.
type MemoryHospitalStore struct {
	mu   sync.RWMutex
	seq  int64
	rows map[int64]*Hospital
}

// NewMemoryHospitalStore constructs an empty MemoryHospitalStore.
func NewMemoryHospitalStore() *MemoryHospitalStore {
	return &MemoryHospitalStore{rows: make(map[int64]*Hospital)}
}

func (m *MemoryHospitalStore) Create(_ context.Context, h *Hospital) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	h.ID = m.seq
	clone := *h
	m.rows[h.ID] = &clone
	return nil
}

func (m *MemoryHospitalStore) ByID(_ context.Context, id int64) (*Hospital, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *h
	return &clone, nil
}

func (m *MemoryHospitalStore) List(_ context.Context, f HospitalFilter) ([]*Hospital, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []*Hospital
	for _, h := range m.rows {
		if f.City != "" && h.City != f.City {
			continue
		}
		if f.HasEmergency != nil && h.HasEmergency != *f.HasEmergency {
			continue
		}
		clone := *h
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, f.Skip, f.Limit), len(all), nil
}

// MemoryRecordStore keeps medical records in process memory.
type MemoryRecordStore struct {
	mu   sync.RWMutex
	seq  int64
	rows map[int64]*MedicalRecord
}

// NewMemoryRecordStore constructs an empty MemoryRecordStore.
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{rows: make(map[int64]*MedicalRecord)}
}

func (m *MemoryRecordStore) Create(_ context.Context, r *MedicalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	r.ID = m.seq
	clone := *r
	m.rows[r.ID] = &clone
	return nil
}

func (m *MemoryRecordStore) ByIDForPatient(_ context.Context, id, userID int64) (*MedicalRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rows[id]
	if !ok || r.UserID != userID {
		return nil, ErrNotFound
	}
	clone := *r
	return &clone, nil
}

func (m *MemoryRecordStore) ByIDForDoctor(_ context.Context, id, doctorID int64) (*MedicalRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rows[id]
	if !ok || r.DoctorID != doctorID {
		return nil, ErrNotFound
	}
	clone := *r
	return &clone, nil
}

func (m *MemoryRecordStore) ListByPatient(_ context.Context, userID int64, skip, limit int) ([]*MedicalRecord, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []*MedicalRecord
	for _, r := range m.rows {
		if r.UserID != userID {
			continue
		}
		clone := *r
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].VisitDate.After(all[j].VisitDate) })
	return paginate(all, skip, limit), len(all), nil
}

func (m *MemoryRecordStore) ListByDoctor(_ context.Context, doctorID int64, skip, limit int) ([]*MedicalRecord, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []*MedicalRecord
	for _, r := range m.rows {
		if r.DoctorID != doctorID {
			continue
		}
		clone := *r
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].VisitDate.After(all[j].VisitDate) })
	return paginate(all, skip, limit), len(all), nil
}

func (m *MemoryRecordStore) Update(_ context.Context, r *MedicalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[r.ID]; !ok {
		return ErrNotFound
	}
	clone := *r
	m.rows[r.ID] = &clone
	return nil
}

func (m *MemoryRecordStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func paginate[T any](rows []*T, skip, limit int) []*T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(rows) {
		return nil
	}
	rows = rows[skip:]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
