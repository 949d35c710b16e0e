package medical

import "time"

// Doctor is a clinician profile tied one-to-one to a principal from the
// identity service (UserID is the ownership edge).
type Doctor struct {
	ID                   int64     `json:"doctor_id"`
	UserID               int64     `json:"user_id"`
	Specialization       string    `json:"specialization"`
	LicenseNumber        string    `json:"license_number"`
	HospitalID           int64     `json:"hospital_id"`
	Qualifications       string    `json:"qualifications,omitempty"`
	YearsExperience      int       `json:"years_experience,omitempty"`
	ProfilePicture       string    `json:"profile_picture,omitempty"`
	AvailabilitySchedule string    `json:"availability_schedule,omitempty"`
	IsAvailableOnline    bool      `json:"is_available_online"`
	CreatedAt            time.Time `json:"created_at"`
}

// Hospital is a care facility record.
type Hospital struct {
	ID           int64     `json:"hospital_id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	Phone        string    `json:"phone,omitempty"`
	Latitude     float64   `json:"latitude,omitempty"`
	Longitude    float64   `json:"longitude,omitempty"`
	Image        string    `json:"image,omitempty"`
	Logo         string    `json:"logo,omitempty"`
	Departments  string    `json:"departments,omitempty"`
	WorkingHours string    `json:"working_hours,omitempty"`
	HasEmergency bool      `json:"has_emergency"`
	IsGovernment bool      `json:"is_government"`
	CreatedAt    time.Time `json:"created_at"`
}

// MedicalRecord documents a patient visit. Two ownership edges govern
// access: UserID (the patient, read-only) and DoctorID (the authoring
// clinician, full access).
type MedicalRecord struct {
	ID            int64     `json:"record_id"`
	UserID        int64     `json:"user_id"`
	AppointmentID *int64    `json:"appointment_id,omitempty"`
	DoctorID      int64     `json:"doctor_id"`
	Diagnosis     string    `json:"diagnosis"`
	Prescription  string    `json:"prescription,omitempty"`
	TestsOrdered  string    `json:"tests_ordered,omitempty"`
	DoctorNotes   string    `json:"doctor_notes,omitempty"`
	Attachments   string    `json:"attachments,omitempty"`
	VisitDate     time.Time `json:"visit_date"`
	CreatedAt     time.Time `json:"created_at"`
}

// DoctorFilter narrows doctor listings.
type DoctorFilter struct {
	Specialization    string
	HospitalID        int64
	IsAvailableOnline *bool
	Skip              int
	Limit             int
}

// HospitalFilter narrows hospital listings.
type HospitalFilter struct {
	City         string
	HasEmergency *bool
	Skip         int
	Limit        int
}
