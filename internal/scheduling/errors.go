package scheduling

import "errors"

var (
	// ErrNotFound covers both a missing appointment and one outside the
	// caller's scope; the two are indistinguishable on purpose.
	ErrNotFound = errors.New("scheduling: appointment not found")

	// ErrInvalidStatus marks an unrecognized lifecycle state.
	ErrInvalidStatus = errors.New("scheduling: invalid status")

	// ErrPastAppointment marks a booking time that is not in the future.
	ErrPastAppointment = errors.New("scheduling: appointment time must be in the future")

	// ErrInvalidInput marks a payload that fails validation.
	ErrInvalidInput = errors.New("scheduling: invalid input")
)
