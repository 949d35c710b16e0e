package scheduling

import (
	"context"
	"time"
)

// AppointmentStore persists bookings. Single-row lookups are scoped to
// the owning patient so out-of-scope ids surface as ErrNotFound at the
// query layer.
type AppointmentStore interface {
	Create(ctx context.Context, a *Appointment) error
	ByIDForUser(ctx context.Context, id, userID int64) (*Appointment, error)
	ListByUser(ctx context.Context, userID int64, status Status, skip, limit int) ([]*Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID int64, from, to time.Time) ([]*Appointment, error)
	CountUpcoming(ctx context.Context, userID int64, after time.Time) (int, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id int64) error
}
