package medical

import (
	"context"
	"fmt"
	"strings"
	"time"

	"seha.health/internal/auth"
)

// Service enforces the per-operation authorization rules in front of
// the clinical stores. Authentication has already happened by the time
// a call lands here; every method receives the verified identity and
// decides allow/deny from role-free ownership edges.
type Service struct {
	doctors   DoctorStore
	hospitals HospitalStore
	records   RecordStore
	now       func() time.Time
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

// NewService constructs the clinical records service.
func NewService(doctors DoctorStore, hospitals HospitalStore, records RecordStore, opts ...ServiceOption) *Service {
	s := &Service{doctors: doctors, hospitals: hospitals, records: records, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DoctorInput is the doctor profile creation payload.
type DoctorInput struct {
	UserID               int64  `json:"user_id"`
	Specialization       string `json:"specialization"`
	LicenseNumber        string `json:"license_number"`
	HospitalID           int64  `json:"hospital_id"`
	Qualifications       string `json:"qualifications"`
	YearsExperience      int    `json:"years_experience"`
	ProfilePicture       string `json:"profile_picture"`
	AvailabilitySchedule string `json:"availability_schedule"`
	IsAvailableOnline    bool   `json:"is_available_online"`
}

// CreateDoctor registers a clinician profile. Principals may only
// create their own profile, and only one profile per principal exists.
func (s *Service) CreateDoctor(ctx context.Context, ident auth.Identity, in DoctorInput) (*Doctor, error) {
	if in.UserID != ident.UserID {
		return nil, fmt.Errorf("%w: you can only create your own profile", ErrForbidden)
	}
	if _, err := s.doctors.ByUserID(ctx, ident.UserID); err == nil {
		return nil, ErrDoctorExists
	}
	if strings.TrimSpace(in.Specialization) == "" {
		return nil, fmt.Errorf("%w: specialization is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.LicenseNumber) == "" {
		return nil, fmt.Errorf("%w: license number is required", ErrInvalidInput)
	}
	if in.HospitalID <= 0 {
		return nil, fmt.Errorf("%w: hospital_id is required", ErrInvalidInput)
	}

	d := &Doctor{
		UserID:               ident.UserID,
		Specialization:       strings.TrimSpace(in.Specialization),
		LicenseNumber:        strings.TrimSpace(in.LicenseNumber),
		HospitalID:           in.HospitalID,
		Qualifications:       in.Qualifications,
		YearsExperience:      in.YearsExperience,
		ProfilePicture:       in.ProfilePicture,
		AvailabilitySchedule: in.AvailabilitySchedule,
		IsAvailableOnline:    in.IsAvailableOnline,
		CreatedAt:            s.now().UTC(),
	}
	if err := s.doctors.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Doctors lists clinician profiles; a public read.
func (s *Service) Doctors(ctx context.Context, f DoctorFilter) ([]*Doctor, int, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 100
	}
	return s.doctors.List(ctx, f)
}

// Doctor fetches a single profile; a public read.
func (s *Service) Doctor(ctx context.Context, id int64) (*Doctor, error) {
	return s.doctors.ByID(ctx, id)
}

// DoctorByUser resolves the caller's own profile, if any.
func (s *Service) DoctorByUser(ctx context.Context, userID int64) (*Doctor, error) {
	return s.doctors.ByUserID(ctx, userID)
}

// DoctorUpdate patches mutable profile fields. UserID and LicenseNumber
// stay fixed after creation.
type DoctorUpdate struct {
	Specialization       *string `json:"specialization"`
	HospitalID           *int64  `json:"hospital_id"`
	Qualifications       *string `json:"qualifications"`
	YearsExperience      *int    `json:"years_experience"`
	ProfilePicture       *string `json:"profile_picture"`
	AvailabilitySchedule *string `json:"availability_schedule"`
	IsAvailableOnline    *bool   `json:"is_available_online"`
}

// UpdateDoctor modifies a profile owned by the caller.
func (s *Service) UpdateDoctor(ctx context.Context, ident auth.Identity, id int64, upd DoctorUpdate) (*Doctor, error) {
	d, err := s.doctors.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.UserID != ident.UserID {
		return nil, fmt.Errorf("%w: not your profile", ErrForbidden)
	}
	if upd.Specialization != nil {
		sp := strings.TrimSpace(*upd.Specialization)
		if sp == "" {
			return nil, fmt.Errorf("%w: specialization cannot be empty", ErrInvalidInput)
		}
		d.Specialization = sp
	}
	if upd.HospitalID != nil {
		if *upd.HospitalID <= 0 {
			return nil, fmt.Errorf("%w: hospital_id is required", ErrInvalidInput)
		}
		d.HospitalID = *upd.HospitalID
	}
	if upd.Qualifications != nil {
		d.Qualifications = *upd.Qualifications
	}
	if upd.YearsExperience != nil {
		d.YearsExperience = *upd.YearsExperience
	}
	if upd.ProfilePicture != nil {
		d.ProfilePicture = *upd.ProfilePicture
	}
	if upd.AvailabilitySchedule != nil {
		d.AvailabilitySchedule = *upd.AvailabilitySchedule
	}
	if upd.IsAvailableOnline != nil {
		d.IsAvailableOnline = *upd.IsAvailableOnline
	}
	if err := s.doctors.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteDoctor removes a profile owned by the caller.
func (s *Service) DeleteDoctor(ctx context.Context, ident auth.Identity, id int64) error {
	d, err := s.doctors.ByID(ctx, id)
	if err != nil {
		return err
	}
	if d.UserID != ident.UserID {
		return fmt.Errorf("%w: not your profile", ErrForbidden)
	}
	return s.doctors.Delete(ctx, id)
}

// HospitalInput is the hospital creation payload.
type HospitalInput struct {
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	Phone        string  `json:"phone"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Image        string  `json:"image"`
	Logo         string  `json:"logo"`
	Departments  string  `json:"departments"`
	WorkingHours string  `json:"working_hours"`
	HasEmergency bool    `json:"has_emergency"`
	IsGovernment bool    `json:"is_government"`
}

// CreateHospital registers a facility. Any authenticated principal may
// do this; there is no admin gate.
func (s *Service) CreateHospital(ctx context.Context, _ auth.Identity, in HospitalInput) (*Hospital, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Address) == "" || strings.TrimSpace(in.City) == "" {
		return nil, fmt.Errorf("%w: address and city are required", ErrInvalidInput)
	}
	h := &Hospital{
		Name:         strings.TrimSpace(in.Name),
		Address:      strings.TrimSpace(in.Address),
		City:         strings.TrimSpace(in.City),
		Phone:        in.Phone,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		Image:        in.Image,
		Logo:         in.Logo,
		Departments:  in.Departments,
		WorkingHours: in.WorkingHours,
		HasEmergency: in.HasEmergency,
		IsGovernment: in.IsGovernment,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.hospitals.Create(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Hospitals lists facilities; a public read.
func (s *Service) Hospitals(ctx context.Context, f HospitalFilter) ([]*Hospital, int, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 100
	}
	return s.hospitals.List(ctx, f)
}

// Hospital fetches a single facility; a public read.
func (s *Service) Hospital(ctx context.Context, id int64) (*Hospital, error) {
	return s.hospitals.ByID(ctx, id)
}

// RecordInput is the medical record creation payload.
type RecordInput struct {
	UserID        int64     `json:"user_id"`
	AppointmentID *int64    `json:"appointment_id"`
	DoctorID      int64     `json:"doctor_id"`
	Diagnosis     string    `json:"diagnosis"`
	Prescription  string    `json:"prescription"`
	TestsOrdered  string    `json:"tests_ordered"`
	DoctorNotes   string    `json:"doctor_notes"`
	Attachments   string    `json:"attachments"`
	VisitDate     time.Time `json:"visit_date"`
}

// CreateRecord authors a medical record. The caller must hold a doctor
// profile and the payload's doctor_id must be that profile. Whether
// the named doctor_id exists elsewhere is irrelevant.
func (s *Service) CreateRecord(ctx context.Context, ident auth.Identity, in RecordInput) (*MedicalRecord, error) {
	prof, err := s.doctors.ByUserID(ctx, ident.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: only the attending doctor can create this record", ErrForbidden)
	}
	if in.DoctorID != prof.ID {
		return nil, fmt.Errorf("%w: only the attending doctor can create this record", ErrForbidden)
	}
	if in.UserID <= 0 {
		return nil, fmt.Errorf("%w: patient user_id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Diagnosis) == "" {
		return nil, fmt.Errorf("%w: diagnosis is required", ErrInvalidInput)
	}
	visit := in.VisitDate
	if visit.IsZero() {
		visit = s.now().UTC()
	}

	r := &MedicalRecord{
		UserID:        in.UserID,
		AppointmentID: in.AppointmentID,
		DoctorID:      prof.ID,
		Diagnosis:     strings.TrimSpace(in.Diagnosis),
		Prescription:  in.Prescription,
		TestsOrdered:  in.TestsOrdered,
		DoctorNotes:   in.DoctorNotes,
		Attachments:   in.Attachments,
		VisitDate:     visit,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.records.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// MyRecords lists the caller's own records. Scoping happens by
// filtering the query, never by fetching and denying.
func (s *Service) MyRecords(ctx context.Context, ident auth.Identity, skip, limit int) ([]*MedicalRecord, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.records.ListByPatient(ctx, ident.UserID, skip, limit)
}

// AuthoredRecords lists records authored under the caller's doctor
// profile. Callers without a profile are denied.
func (s *Service) AuthoredRecords(ctx context.Context, ident auth.Identity, skip, limit int) ([]*MedicalRecord, int, error) {
	prof, err := s.doctors.ByUserID(ctx, ident.UserID)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: only doctors can list authored records", ErrForbidden)
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.records.ListByDoctor(ctx, prof.ID, skip, limit)
}

// Record fetches one record visible to the caller as its patient. A
// record owned by someone else reads as not found.
func (s *Service) Record(ctx context.Context, ident auth.Identity, id int64) (*MedicalRecord, error) {
	return s.records.ByIDForPatient(ctx, id, ident.UserID)
}

// RecordUpdate patches the clinical fields of a record.
type RecordUpdate struct {
	Diagnosis    *string    `json:"diagnosis"`
	Prescription *string    `json:"prescription"`
	TestsOrdered *string    `json:"tests_ordered"`
	DoctorNotes  *string    `json:"doctor_notes"`
	Attachments  *string    `json:"attachments"`
	VisitDate    *time.Time `json:"visit_date"`
}

// UpdateRecord modifies a record authored by the caller's doctor
// profile. Non-doctors are denied outright; a record authored by a
// different doctor reads as not found.
func (s *Service) UpdateRecord(ctx context.Context, ident auth.Identity, id int64, upd RecordUpdate) (*MedicalRecord, error) {
	prof, err := s.doctors.ByUserID(ctx, ident.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: only doctors can update records", ErrForbidden)
	}
	r, err := s.records.ByIDForDoctor(ctx, id, prof.ID)
	if err != nil {
		return nil, err
	}
	if upd.Diagnosis != nil {
		diag := strings.TrimSpace(*upd.Diagnosis)
		if diag == "" {
			return nil, fmt.Errorf("%w: diagnosis cannot be empty", ErrInvalidInput)
		}
		r.Diagnosis = diag
	}
	if upd.Prescription != nil {
		r.Prescription = *upd.Prescription
	}
	if upd.TestsOrdered != nil {
		r.TestsOrdered = *upd.TestsOrdered
	}
	if upd.DoctorNotes != nil {
		r.DoctorNotes = *upd.DoctorNotes
	}
	if upd.Attachments != nil {
		r.Attachments = *upd.Attachments
	}
	if upd.VisitDate != nil {
		r.VisitDate = *upd.VisitDate
	}
	if err := s.records.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// DeleteRecord removes a record authored by the caller's doctor profile.
func (s *Service) DeleteRecord(ctx context.Context, ident auth.Identity, id int64) error {
	prof, err := s.doctors.ByUserID(ctx, ident.UserID)
	if err != nil {
		return fmt.Errorf("%w: only doctors can delete records", ErrForbidden)
	}
	r, err := s.records.ByIDForDoctor(ctx, id, prof.ID)
	if err != nil {
		return err
	}
	return s.records.Delete(ctx, r.ID)
}
