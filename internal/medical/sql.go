package medical

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQL store implementations over database/sql with $N placeholders,
// accepted by both the pgx and modernc sqlite drivers.

// SQLDoctorStore persists doctor profiles.
type SQLDoctorStore struct {
	db *sql.DB
}

// NewSQLDoctorStore wraps an open database handle.
func NewSQLDoctorStore(db *sql.DB) *SQLDoctorStore {
	return &SQLDoctorStore{db: db}
}

const doctorColumns = `doctor_id, user_id, specialization, license_number, hospital_id, qualifications, years_experience, profile_picture, availability_schedule, is_available_online, created_at`

func (s *SQLDoctorStore) Create(ctx context.Context, d *Doctor) error {
	return s.db.QueryRowContext(ctx, `
		insert into doctors (user_id, specialization, license_number, hospital_id, qualifications, years_experience, profile_picture, availability_schedule, is_available_online, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		returning doctor_id`,
		d.UserID, d.Specialization, d.LicenseNumber, d.HospitalID, d.Qualifications,
		d.YearsExperience, d.ProfilePicture, d.AvailabilitySchedule, d.IsAvailableOnline, d.CreatedAt,
	).Scan(&d.ID)
}

func (s *SQLDoctorStore) ByID(ctx context.Context, id int64) (*Doctor, error) {
	return scanDoctor(s.db.QueryRowContext(ctx, `select `+doctorColumns+` from doctors where doctor_id = $1`, id))
}

func (s *SQLDoctorStore) ByUserID(ctx context.Context, userID int64) (*Doctor, error) {
	return scanDoctor(s.db.QueryRowContext(ctx, `select `+doctorColumns+` from doctors where user_id = $1`, userID))
}

func (s *SQLDoctorStore) List(ctx context.Context, f DoctorFilter) ([]*Doctor, int, error) {
	where, args := doctorFilterClause(f)

	var total int
	if err := s.db.QueryRowContext(ctx, `select count(*) from doctors`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`select `+doctorColumns+` from doctors%s order by doctor_id limit $%d offset $%d`,
		where, len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, f.Limit, f.Skip)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.UserID, &d.Specialization, &d.LicenseNumber, &d.HospitalID,
			&d.Qualifications, &d.YearsExperience, &d.ProfilePicture, &d.AvailabilitySchedule,
			&d.IsAvailableOnline, &d.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &d)
	}
	return out, total, rows.Err()
}

func (s *SQLDoctorStore) Update(ctx context.Context, d *Doctor) error {
	res, err := s.db.ExecContext(ctx, `
		update doctors
		set specialization = $1, hospital_id = $2, qualifications = $3, years_experience = $4,
		    profile_picture = $5, availability_schedule = $6, is_available_online = $7
		where doctor_id = $8`,
		d.Specialization, d.HospitalID, d.Qualifications, d.YearsExperience,
		d.ProfilePicture, d.AvailabilitySchedule, d.IsAvailableOnline, d.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *SQLDoctorStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from doctors where doctor_id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func doctorFilterClause(f DoctorFilter) (string, []any) {
	var conds []string
	var args []any
	if f.Specialization != "" {
		args = append(args, f.Specialization)
		conds = append(conds, fmt.Sprintf("specialization = $%d", len(args)))
	}
	if f.HospitalID > 0 {
		args = append(args, f.HospitalID)
		conds = append(conds, fmt.Sprintf("hospital_id = $%d", len(args)))
	}
	if f.IsAvailableOnline != nil {
		args = append(args, *f.IsAvailableOnline)
		conds = append(conds, fmt.Sprintf("is_available_online = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " where " + strings.Join(conds, " and "), args
}

func scanDoctor(row *sql.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.UserID, &d.Specialization, &d.LicenseNumber, &d.HospitalID,
		&d.Qualifications, &d.YearsExperience, &d.ProfilePicture, &d.AvailabilitySchedule,
		&d.IsAvailableOnline, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// SQLHospitalStore persists hospitals.
type SQLHospitalStore struct {
	db *sql.DB
}

// NewSQLHospitalStore wraps an open database handle.
func NewSQLHospitalStore(db *sql.DB) *SQLHospitalStore {
	return &SQLHospitalStore{db: db}
}

const hospitalColumns = `hospital_id, name, address, city, phone, latitude, longitude, image, logo, departments, working_hours, has_emergency, is_government, created_at`

func (s *SQLHospitalStore) Create(ctx context.Context, h *Hospital) error {
	return s.db.QueryRowContext(ctx, `
		insert into hospitals (name, address, city, phone, latitude, longitude, image, logo, departments, working_hours, has_emergency, is_government, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		returning hospital_id`,
		h.Name, h.Address, h.City, h.Phone, h.Latitude, h.Longitude, h.Image, h.Logo,
		h.Departments, h.WorkingHours, h.HasEmergency, h.IsGovernment, h.CreatedAt,
	).Scan(&h.ID)
}

func (s *SQLHospitalStore) ByID(ctx context.Context, id int64) (*Hospital, error) {
	var h Hospital
	err := s.db.QueryRowContext(ctx, `select `+hospitalColumns+` from hospitals where hospital_id = $1`, id).
		Scan(&h.ID, &h.Name, &h.Address, &h.City, &h.Phone, &h.Latitude, &h.Longitude,
			&h.Image, &h.Logo, &h.Departments, &h.WorkingHours, &h.HasEmergency, &h.IsGovernment, &h.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *SQLHospitalStore) List(ctx context.Context, f HospitalFilter) ([]*Hospital, int, error) {
	var conds []string
	var args []any
	if f.City != "" {
		args = append(args, f.City)
		conds = append(conds, fmt.Sprintf("city = $%d", len(args)))
	}
	if f.HasEmergency != nil {
		args = append(args, *f.HasEmergency)
		conds = append(conds, fmt.Sprintf("has_emergency = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " where " + strings.Join(conds, " and ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `select count(*) from hospitals`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`select `+hospitalColumns+` from hospitals%s order by hospital_id limit $%d offset $%d`,
		where, len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, f.Limit, f.Skip)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Hospital
	for rows.Next() {
		var h Hospital
		if err := rows.Scan(&h.ID, &h.Name, &h.Address, &h.City, &h.Phone, &h.Latitude, &h.Longitude,
			&h.Image, &h.Logo, &h.Departments, &h.WorkingHours, &h.HasEmergency, &h.IsGovernment, &h.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &h)
	}
	return out, total, rows.Err()
}

// SQLRecordStore persists medical records.
type SQLRecordStore struct {
	db *sql.DB
}

// NewSQLRecordStore wraps an open database handle.
func NewSQLRecordStore(db *sql.DB) *SQLRecordStore {
	return &SQLRecordStore{db: db}
}

const recordColumns = `record_id, user_id, appointment_id, doctor_id, diagnosis, prescription, tests_ordered, doctor_notes, attachments, visit_date, created_at`

func (s *SQLRecordStore) Create(ctx context.Context, r *MedicalRecord) error {
	return s.db.QueryRowContext(ctx, `
		insert into medical_records (user_id, appointment_id, doctor_id, diagnosis, prescription, tests_ordered, doctor_notes, attachments, visit_date, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		returning record_id`,
		r.UserID, r.AppointmentID, r.DoctorID, r.Diagnosis, r.Prescription,
		r.TestsOrdered, r.DoctorNotes, r.Attachments, r.VisitDate, r.CreatedAt,
	).Scan(&r.ID)
}

func (s *SQLRecordStore) ByIDForPatient(ctx context.Context, id, userID int64) (*MedicalRecord, error) {
	return scanRecord(s.db.QueryRowContext(ctx,
		`select `+recordColumns+` from medical_records where record_id = $1 and user_id = $2`, id, userID))
}

func (s *SQLRecordStore) ByIDForDoctor(ctx context.Context, id, doctorID int64) (*MedicalRecord, error) {
	return scanRecord(s.db.QueryRowContext(ctx,
		`select `+recordColumns+` from medical_records where record_id = $1 and doctor_id = $2`, id, doctorID))
}

func (s *SQLRecordStore) ListByPatient(ctx context.Context, userID int64, skip, limit int) ([]*MedicalRecord, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `select count(*) from medical_records where user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`select `+recordColumns+` from medical_records where user_id = $1 order by visit_date desc limit $2 offset $3`,
		userID, limit, skip)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*MedicalRecord
	for rows.Next() {
		r, err := scanRecordRows(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

func (s *SQLRecordStore) ListByDoctor(ctx context.Context, doctorID int64, skip, limit int) ([]*MedicalRecord, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `select count(*) from medical_records where doctor_id = $1`, doctorID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`select `+recordColumns+` from medical_records where doctor_id = $1 order by visit_date desc limit $2 offset $3`,
		doctorID, limit, skip)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*MedicalRecord
	for rows.Next() {
		r, err := scanRecordRows(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

func (s *SQLRecordStore) Update(ctx context.Context, r *MedicalRecord) error {
	res, err := s.db.ExecContext(ctx, `
		update medical_records
		set diagnosis = $1, prescription = $2, tests_ordered = $3, doctor_notes = $4, attachments = $5, visit_date = $6
		where record_id = $7`,
		r.Diagnosis, r.Prescription, r.TestsOrdered, r.DoctorNotes, r.Attachments, r.VisitDate, r.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *SQLRecordStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from medical_records where record_id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func scanRecord(row *sql.Row) (*MedicalRecord, error) {
	var (
		r    MedicalRecord
		appt sql.NullInt64
	)
	err := row.Scan(&r.ID, &r.UserID, &appt, &r.DoctorID, &r.Diagnosis, &r.Prescription,
		&r.TestsOrdered, &r.DoctorNotes, &r.Attachments, &r.VisitDate, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if appt.Valid {
		v := appt.Int64
		r.AppointmentID = &v
	}
	return &r, nil
}

func scanRecordRows(rows *sql.Rows) (*MedicalRecord, error) {
	var (
		r    MedicalRecord
		appt sql.NullInt64
	)
	if err := rows.Scan(&r.ID, &r.UserID, &appt, &r.DoctorID, &r.Diagnosis, &r.Prescription,
		&r.TestsOrdered, &r.DoctorNotes, &r.Attachments, &r.VisitDate, &r.CreatedAt); err != nil {
		return nil, err
	}
	if appt.Valid {
		v := appt.Int64
		r.AppointmentID = &v
	}
	return &r, nil
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
