package medical

import "errors"

var (
	// ErrNotFound also covers records that exist but sit outside the
	// caller's visibility scope; the two are deliberately
	// indistinguishable.
	ErrNotFound     = errors.New("medical: not found")
	ErrForbidden    = errors.New("medical: forbidden")
	ErrDoctorExists = errors.New("medical: doctor profile already exists")
	ErrInvalidInput = errors.New("medical: invalid input")
)
