package assistant

import "errors"

var (
	// ErrNotFound covers both a missing session and one owned by another
	// user; the two are indistinguishable on purpose.
	ErrNotFound = errors.New("assistant: session not found")

	// ErrInvalidInput marks a payload that fails validation.
	ErrInvalidInput = errors.New("assistant: invalid input")
)
