package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"seha.health/internal/auth"
)

func newTestService(t *testing.T) (*Service, *MemoryStore) {
	t.Helper()
	issuer, err := auth.NewIssuer("test-secret", 30*time.Minute)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	verifier, err := auth.NewLocalVerifier("test-secret")
	if err != nil {
		t.Fatalf("NewLocalVerifier: %v", err)
	}
	store := NewMemoryStore()
	return NewService(store, issuer, verifier), store
}

func TestRegisterIssuesToken(t *testing.T) {
	svc, _ := newTestService(t)

	sess, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Pat@Example.com",
		Password: "secret123",
		FullName: "Pat Doe",
		Role:     "patient",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if sess.User.ID == 0 {
		t.Fatalf("expected assigned user id")
	}
	if sess.User.Email != "pat@example.com" {
		t.Fatalf("expected normalized email, got %q", sess.User.Email)
	}
	if sess.User.PasswordHash == "secret123" {
		t.Fatalf("plaintext password must never be stored")
	}
	if sess.Token == "" || sess.TokenType != "bearer" {
		t.Fatalf("expected bearer token, got %+v", sess)
	}

	ident, err := svc.VerifyToken(context.Background(), sess.Token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if ident.UserID != sess.User.ID || ident.Role != RolePatient {
		t.Fatalf("unexpected identity: %+v", ident)
	}
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	svc, store := newTestService(t)

	first, err := svc.Register(context.Background(), RegisterInput{
		Email: "dup@example.com", Password: "secret123", FullName: "First One",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err = svc.Register(context.Background(), RegisterInput{
		Email: "dup@example.com", Password: "other-pass", FullName: "Second One",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// The first principal's credential is unaffected.
	kept, err := store.ByEmail(context.Background(), "dup@example.com")
	if err != nil {
		t.Fatalf("ByEmail: %v", err)
	}
	if kept.FullName != "First One" || !auth.CheckPassword(kept.PasswordHash, "secret123") {
		t.Fatalf("first registration was disturbed: %+v", kept)
	}
	if kept.ID != first.User.ID {
		t.Fatalf("expected original user id %d, got %d", first.User.ID, kept.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)
	cases := []RegisterInput{
		{Email: "not-an-email", Password: "secret123", FullName: "Pat Doe"},
		{Email: "p@example.com", Password: "short", FullName: "Pat Doe"},
		{Email: "p@example.com", Password: "secret123", FullName: "X"},
		{Email: "p@example.com", Password: "secret123", FullName: "Pat Doe", Role: "admin-of-everything"},
	}
	for i, in := range cases {
		if _, err := svc.Register(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Register(context.Background(), RegisterInput{
		Email: "p@example.com", Password: "secret123", FullName: "Pat Doe",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	sess, err := svc.Login(context.Background(), "P@Example.com", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.Token == "" {
		t.Fatalf("expected token on login")
	}

	// Wrong password and unknown email fail identically.
	if _, err := svc.Login(context.Background(), "p@example.com", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "ghost@example.com", "secret123"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
}

func TestVerifyTokenDeletedUser(t *testing.T) {
	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	verifier, err := auth.NewLocalVerifier("test-secret")
	if err != nil {
		t.Fatalf("NewLocalVerifier: %v", err)
	}
	svc := NewService(NewMemoryStore(), issuer, verifier)

	// Well-signed token for a principal the store has never seen.
	token, _, err := issuer.Issue(999, "gone@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.VerifyToken(context.Background(), token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for unknown principal, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestService(t)
	sess, err := svc.Register(context.Background(), RegisterInput{
		Email: "p@example.com", Password: "secret123", FullName: "Pat Doe",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	name := "Patricia Doe"
	phone := "+1-555-0100"
	updated, err := svc.UpdateProfile(context.Background(), sess.User.ID, ProfileUpdate{
		FullName: &name,
		Phone:    &phone,
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.FullName != name || updated.Phone != phone {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.Email != "p@example.com" || updated.Role != RolePatient {
		t.Fatalf("immutable identity fields changed: %+v", updated)
	}

	short := "X"
	if _, err := svc.UpdateProfile(context.Background(), sess.User.ID, ProfileUpdate{FullName: &short}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
