package auth

import (
	"errors"
	"fmt"
)

// ErrInvalidToken is the umbrella failure for any token that cannot be
// accepted. The wrapped variants below let tests and logs tell the cases
// apart; HTTP responses never do, every one of them surfaces as the same
// "not authenticated" outcome.
var (
	ErrInvalidToken     = errors.New("auth: invalid token")
	ErrTokenExpired     = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrTokenMalformed   = fmt.Errorf("%w: malformed claims", ErrInvalidToken)
	ErrSignatureInvalid = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
)
