package identity

import "errors"

var (
	ErrNotFound       = errors.New("identity: user not found")
	ErrEmailTaken     = errors.New("identity: email already registered")
	ErrBadCredentials = errors.New("identity: incorrect email or password")
	ErrInvalidInput   = errors.New("identity: invalid input")
)
