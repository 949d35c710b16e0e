package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL bounds token lifetime when no explicit TTL is configured.
const DefaultTTL = 30 * time.Minute

// Identity is the verified principal every service works from once a
// bearer token has been accepted. Role is only populated on paths that
// consult the identity service; the token itself does not carry it.
type Identity struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
}

// Claims is the JWT payload minted at registration and login: the
// subject carries the email, user_id the numeric principal identifier.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Issuer mints signed, time-bounded bearer tokens for verified
// principals. The signing secret must match the one configured into
// every verifying service; a divergent secret or algorithm is a
// deployment fault, not something issuance can detect.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// IssuerOption configures Issuer behavior.
type IssuerOption func(*Issuer)

// WithIssuerClock overrides the time source (useful for tests).
func WithIssuerClock(fn func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if fn != nil {
			i.now = fn
		}
	}
}

// NewIssuer constructs an Issuer signing with the shared HS256 secret.
func NewIssuer(secret string, ttl time.Duration, opts ...IssuerOption) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	iss := &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(iss)
	}
	return iss, nil
}

// Issue signs a token asserting the given principal. Issuance has no
// side effects: credentials are checked one layer up, at login and
// registration time.
func (i *Issuer) Issue(userID int64, email string) (string, time.Time, error) {
	email = strings.TrimSpace(email)
	if userID <= 0 || email == "" {
		return "", time.Time{}, errors.New("auth: user id and email are required")
	}

	now := i.now().UTC()
	expiresAt := now.Add(i.ttl)
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// TTL returns the configured token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}
