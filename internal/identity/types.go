package identity

import "time"

// Roles a principal can register with. Admin exists in the data model
// but no endpoint grants it special treatment.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

// User is a registered principal. The identity established here is
// immutable for the principal's lifetime: email and role never change
// after registration. PasswordHash never leaves the service.
type User struct {
	ID             int64      `json:"user_id"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	FullName       string     `json:"full_name"`
	Phone          string     `json:"phone,omitempty"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Gender         string     `json:"gender,omitempty"`
	Address        string     `json:"address,omitempty"`
	ProfilePicture string     `json:"profile_picture,omitempty"`
	Role           string     `json:"role"`
	CreatedAt      time.Time  `json:"created_at"`
}
