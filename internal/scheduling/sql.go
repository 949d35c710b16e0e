package scheduling

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLStore persists appointments over database/sql with $N
// placeholders, accepted by both the pgx and modernc sqlite drivers.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps an open database handle.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const appointmentColumns = `appointment_id, user_id, doctor_id, datetime, status, reason, notes, created_at`

func (s *SQLStore) Create(ctx context.Context, a *Appointment) error {
	return s.db.QueryRowContext(ctx, `
		insert into appointments (user_id, doctor_id, datetime, status, reason, notes, created_at)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning appointment_id`,
		a.UserID, a.DoctorID, a.DateTime, string(a.Status), a.Reason, a.Notes, a.CreatedAt,
	).Scan(&a.ID)
}

func (s *SQLStore) ByIDForUser(ctx context.Context, id, userID int64) (*Appointment, error) {
	return scanAppointment(s.db.QueryRowContext(ctx,
		`select `+appointmentColumns+` from appointments where appointment_id = $1 and user_id = $2`, id, userID))
}

func (s *SQLStore) ListByUser(ctx context.Context, userID int64, status Status, skip, limit int) ([]*Appointment, int, error) {
	where := " where user_id = $1"
	args := []any{userID}
	if status != "" {
		args = append(args, string(status))
		where += fmt.Sprintf(" and status = $%d", len(args))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `select count(*) from appointments`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`select `+appointmentColumns+` from appointments%s order by datetime limit $%d offset $%d`,
		where, len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, skip)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectAppointments(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *SQLStore) ListByDoctor(ctx context.Context, doctorID int64, from, to time.Time) ([]*Appointment, error) {
	where := " where doctor_id = $1"
	args := []any{doctorID}
	if !from.IsZero() {
		args = append(args, from)
		where += fmt.Sprintf(" and datetime >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		where += fmt.Sprintf(" and datetime <= $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx,
		`select `+appointmentColumns+` from appointments`+where+` order by datetime`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (s *SQLStore) CountUpcoming(ctx context.Context, userID int64, after time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`select count(*) from appointments where user_id = $1 and status = $2 and datetime > $3`,
		userID, string(StatusScheduled), after,
	).Scan(&n)
	return n, err
}

func (s *SQLStore) Update(ctx context.Context, a *Appointment) error {
	res, err := s.db.ExecContext(ctx, `
		update appointments
		set datetime = $1, status = $2, reason = $3, notes = $4
		where appointment_id = $5`,
		a.DateTime, string(a.Status), a.Reason, a.Notes, a.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from appointments where appointment_id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func scanAppointment(row *sql.Row) (*Appointment, error) {
	var (
		a      Appointment
		status string
	)
	err := row.Scan(&a.ID, &a.UserID, &a.DoctorID, &a.DateTime, &status, &a.Reason, &a.Notes, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Status = Status(status)
	return &a, nil
}

func collectAppointments(rows *sql.Rows) ([]*Appointment, error) {
	var out []*Appointment
	for rows.Next() {
		var (
			a      Appointment
			status string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.DoctorID, &a.DateTime, &status, &a.Reason, &a.Notes, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Status = Status(status)
		out = append(out, &a)
	}
	return out, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
