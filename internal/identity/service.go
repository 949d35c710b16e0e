package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"seha.health/internal/auth"
)

// Service owns registration, login, profile maintenance, and the remote
// verification endpoint other services can delegate to.
type Service struct {
	store    UserStore
	issuer   *auth.Issuer
	verifier auth.Verifier
	now      func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the identity service. The verifier must be a
// local one: this service owns the signing secret by definition.
func NewService(store UserStore, issuer *auth.Issuer, verifier auth.Verifier, opts ...ServiceOption) *Service {
	s := &Service{store: store, issuer: issuer, verifier: verifier, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterInput carries the registration payload. The plaintext
// password is hashed immediately and never stored or logged.
type RegisterInput struct {
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	FullName    string     `json:"full_name"`
	Phone       string     `json:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Gender      string     `json:"gender"`
	Address     string     `json:"address"`
	Role        string     `json:"role"`
}

// Session is the issuance result handed back at registration and login.
type Session struct {
	Token     string    `json:"access_token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

// Register creates a principal and issues its first token. A duplicate
// email is a conflict and leaves the existing credential untouched.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	if err := validateRegistration(email, in); err != nil {
		return nil, err
	}
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role == "" {
		role = RolePatient
	}
	if role != RolePatient && role != RoleDoctor {
		return nil, fmt.Errorf("%w: role must be patient or doctor", ErrInvalidInput)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        strings.TrimSpace(in.Phone),
		DateOfBirth:  in.DateOfBirth,
		Gender:       strings.TrimSpace(in.Gender),
		Address:      strings.TrimSpace(in.Address),
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.startSession(u)
}

// Login verifies credentials and issues a token. Unknown email and bad
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrBadCredentials
	}
	u, err := s.store.ByEmail(ctx, email)
	if err != nil {
		return nil, ErrBadCredentials
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	return s.startSession(u)
}

// User returns the principal by id.
func (s *Service) User(ctx context.Context, id int64) (*User, error) {
	return s.store.ByID(ctx, id)
}

// ProfileUpdate patches mutable contact fields. Email, role, and the
// credential hash are not reachable from here.
type ProfileUpdate struct {
	FullName       *string    `json:"full_name"`
	Phone          *string    `json:"phone"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	Gender         *string    `json:"gender"`
	Address        *string    `json:"address"`
	ProfilePicture *string    `json:"profile_picture"`
}

// UpdateProfile applies a partial update to the caller's own profile.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) (*User, error) {
	u, err := s.store.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if upd.FullName != nil {
		name := strings.TrimSpace(*upd.FullName)
		if len(name) < 2 {
			return nil, fmt.Errorf("%w: full name must be at least 2 characters", ErrInvalidInput)
		}
		u.FullName = name
	}
	if upd.Phone != nil {
		u.Phone = strings.TrimSpace(*upd.Phone)
	}
	if upd.DateOfBirth != nil {
		u.DateOfBirth = upd.DateOfBirth
	}
	if upd.Gender != nil {
		u.Gender = strings.TrimSpace(*upd.Gender)
	}
	if upd.Address != nil {
		u.Address = strings.TrimSpace(*upd.Address)
	}
	if upd.ProfilePicture != nil {
		u.ProfilePicture = strings.TrimSpace(*upd.ProfilePicture)
	}
	if err := s.store.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// VerifyToken backs GET /verify-token for services that delegate
// verification. Beyond the signature and expiry checks it confirms the
// principal still exists, and fills in the role from the user row since
// tokens do not carry it.
func (s *Service) VerifyToken(ctx context.Context, rawToken string) (auth.Identity, error) {
	ident, err := s.verifier.Verify(ctx, rawToken)
	if err != nil {
		return auth.Identity{}, err
	}
	u, err := s.store.ByID(ctx, ident.UserID)
	if err != nil {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	return auth.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}, nil
}

func (s *Service) startSession(u *User) (*Session, error) {
	token, expiresAt, err := s.issuer.Issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, TokenType: "bearer", ExpiresAt: expiresAt, User: u}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(email string, in RegisterInput) error {
	if email == "" || !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if len(in.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}
	if len(strings.TrimSpace(in.FullName)) < 2 {
		return fmt.Errorf("%w: full name must be at least 2 characters", ErrInvalidInput)
	}
	return nil
}
