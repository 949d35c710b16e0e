package medical

import "context"

// DoctorStore persists clinician profiles.
type DoctorStore interface {
	Create(ctx context.Context, d *Doctor) error
	ByID(ctx context.Context, id int64) (*Doctor, error)
	ByUserID(ctx context.Context, userID int64) (*Doctor, error)
	List(ctx context.Context, f DoctorFilter) ([]*Doctor, int, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id int64) error
}

// HospitalStore persists care facilities.
type HospitalStore interface {
	Create(ctx context.Context, h *Hospital) error
	ByID(ctx context.Context, id int64) (*Hospital, error)
	List(ctx context.Context, f HospitalFilter) ([]*Hospital, int, error)
}

// RecordStore persists medical records. The scoped lookups bake the
// ownership edge into the query itself, so a caller can never fetch a
// row outside their scope in the first place.
type RecordStore interface {
	Create(ctx context.Context, r *MedicalRecord) error
	ByIDForPatient(ctx context.Context, id, userID int64) (*MedicalRecord, error)
	ByIDForDoctor(ctx context.Context, id, doctorID int64) (*MedicalRecord, error)
	ListByPatient(ctx context.Context, userID int64, skip, limit int) ([]*MedicalRecord, int, error)
	ListByDoctor(ctx context.Context, doctorID int64, skip, limit int) ([]*MedicalRecord, int, error)
	Update(ctx context.Context, r *MedicalRecord) error
	Delete(ctx context.Context, id int64) error
}
