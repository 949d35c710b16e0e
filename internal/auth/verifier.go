package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks a bearer token and recovers the identity claims.
// Resource-owning services verify locally with the shared secret; the
// assistant service delegates to the identity service over HTTP instead
// and never holds the secret. The two strategies are chosen per service
// at start-up, never mixed within one.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// LocalVerifier validates tokens offline against the locally configured
// HS256 secret. Expiry checks assume reasonable clock agreement with the
// issuing service; skew beyond the token TTL is an operational fault.
type LocalVerifier struct {
	secret []byte
	now    func() time.Time
}

// LocalVerifierOption configures LocalVerifier behavior.
type LocalVerifierOption func(*LocalVerifier)

// WithVerifierClock overrides the time source (useful for tests).
func WithVerifierClock(fn func() time.Time) LocalVerifierOption {
	return func(v *LocalVerifier) {
		if fn != nil {
			v.now = fn
		}
	}
}

// NewLocalVerifier constructs a LocalVerifier for the shared secret.
func NewLocalVerifier(secret string, opts ...LocalVerifierOption) (*LocalVerifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	v := &LocalVerifier{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Verify validates signature and expiry and extracts the identity. A
// well-signed token without a user_id claim is malformed, not merely
// unauthorized.
func (v *LocalVerifier) Verify(_ context.Context, token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrTokenMalformed
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrSignatureInvalid
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Identity{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Identity{}, ErrSignatureInvalid
		default:
			return Identity{}, ErrTokenMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Identity{}, ErrTokenMalformed
	}
	if claims.UserID <= 0 || strings.TrimSpace(claims.Subject) == "" {
		return Identity{}, ErrTokenMalformed
	}
	return Identity{UserID: claims.UserID, Email: claims.Subject}, nil
}
