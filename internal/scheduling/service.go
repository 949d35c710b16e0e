package scheduling

import (
	"context"
	"fmt"
	"time"

	"seha.health/internal/auth"
)

// Service enforces booking rules on top of the appointment store. All
// single-appointment operations are scoped to the authenticated patient,
// so one principal can never read or mutate another's bookings.
type Service struct {
	store AppointmentStore
	now   func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the scheduling service.
func NewService(store AppointmentStore, opts ...ServiceOption) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput is the booking payload. The patient is always the caller;
// there is no way to book on someone else's behalf.
type CreateInput struct {
	DoctorID int64     `json:"doctor_id"`
	DateTime time.Time `json:"datetime"`
	Reason   string    `json:"reason"`
	Notes    string    `json:"notes"`
}

// Create books an appointment at a strictly future instant. Overlapping
// bookings for the same doctor are allowed; only the time direction is
// checked here.
func (s *Service) Create(ctx context.Context, ident auth.Identity, in CreateInput) (*Appointment, error) {
	if in.DoctorID <= 0 {
		return nil, fmt.Errorf("%w: doctor_id is required", ErrInvalidInput)
	}
	if in.DateTime.IsZero() {
		return nil, fmt.Errorf("%w: datetime is required", ErrInvalidInput)
	}
	if !in.DateTime.After(s.now()) {
		return nil, ErrPastAppointment
	}

	a := &Appointment{
		UserID:    ident.UserID,
		DoctorID:  in.DoctorID,
		DateTime:  in.DateTime.UTC(),
		Status:    StatusScheduled,
		Reason:    in.Reason,
		Notes:     in.Notes,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// List returns the caller's appointments, optionally filtered by status.
func (s *Service) List(ctx context.Context, ident auth.Identity, statusFilter string, skip, limit int) ([]*Appointment, int, error) {
	var status Status
	if statusFilter != "" {
		parsed, err := ParseStatus(statusFilter)
		if err != nil {
			return nil, 0, err
		}
		status = parsed
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.store.ListByUser(ctx, ident.UserID, status, skip, limit)
}

// Get fetches one of the caller's appointments. An appointment booked
// by someone else reads as not found.
func (s *Service) Get(ctx context.Context, ident auth.Identity, id int64) (*Appointment, error) {
	return s.store.ByIDForUser(ctx, id, ident.UserID)
}

// UpdateInput patches mutable booking fields.
type UpdateInput struct {
	DateTime *time.Time `json:"datetime"`
	Status   *string    `json:"status"`
	Reason   *string    `json:"reason"`
	Notes    *string    `json:"notes"`
}

// Update modifies one of the caller's appointments. A rescheduled time
// must again lie in the future; a status change may move the lifecycle
// in any direction as long as the value itself is recognized.
func (s *Service) Update(ctx context.Context, ident auth.Identity, id int64, upd UpdateInput) (*Appointment, error) {
	a, err := s.store.ByIDForUser(ctx, id, ident.UserID)
	if err != nil {
		return nil, err
	}
	if upd.DateTime != nil {
		if !upd.DateTime.After(s.now()) {
			return nil, ErrPastAppointment
		}
		a.DateTime = upd.DateTime.UTC()
	}
	if upd.Status != nil {
		status, err := ParseStatus(*upd.Status)
		if err != nil {
			return nil, err
		}
		a.Status = status
	}
	if upd.Reason != nil {
		a.Reason = *upd.Reason
	}
	if upd.Notes != nil {
		a.Notes = *upd.Notes
	}
	if err := s.store.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Cancel marks one of the caller's appointments cancelled. Cancelling
// an already-cancelled appointment is a no-op, not an error.
func (s *Service) Cancel(ctx context.Context, ident auth.Identity, id int64) (*Appointment, error) {
	a, err := s.store.ByIDForUser(ctx, id, ident.UserID)
	if err != nil {
		return nil, err
	}
	if a.Status == StatusCancelled {
		return a, nil
	}
	a.Status = StatusCancelled
	if err := s.store.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes one of the caller's appointments entirely.
func (s *Service) Delete(ctx context.Context, ident auth.Identity, id int64) error {
	a, err := s.store.ByIDForUser(ctx, id, ident.UserID)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, a.ID)
}

// DoctorSchedule lists a doctor's appointments in a window. This is a
// read view for building availability calendars; patient identities in
// the result are limited to their numeric ids.
func (s *Service) DoctorSchedule(ctx context.Context, doctorID int64, from, to time.Time) ([]*Appointment, error) {
	if doctorID <= 0 {
		return nil, fmt.Errorf("%w: doctor_id is required", ErrInvalidInput)
	}
	return s.store.ListByDoctor(ctx, doctorID, from, to)
}

// UpcomingCount reports how many scheduled appointments the caller has
// ahead of now.
func (s *Service) UpcomingCount(ctx context.Context, ident auth.Identity) (int, error) {
	return s.store.CountUpcoming(ctx, ident.UserID, s.now())
}
