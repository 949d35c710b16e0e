package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	iss, err := NewIssuer("unit-secret", 30*time.Minute)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	token, expiresAt, err := iss.Issue(42, "doc@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiry, got %v", expiresAt)
	}

	ver, err := NewLocalVerifier("unit-secret")
	if err != nil {
		t.Fatalf("NewLocalVerifier: %v", err)
	}
	ident, err := ver.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ident.UserID != 42 || ident.Email != "doc@example.com" {
		t.Fatalf("unexpected identity: %+v", ident)
	}
	if ident.Role != "" {
		t.Fatalf("local verification must not invent a role, got %q", ident.Role)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	iss, err := NewIssuer("unit-secret", time.Minute, WithIssuerClock(func() time.Time { return issuedAt }))
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	token, _, err := iss.Issue(7, "p@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	accept, err := NewLocalVerifier("unit-secret", WithVerifierClock(func() time.Time { return issuedAt }))
	if err != nil {
		t.Fatalf("NewLocalVerifier: %v", err)
	}
	if _, err := accept.Verify(context.Background(), token); err != nil {
		t.Fatalf("token should verify at t+0: %v", err)
	}

	reject, err := NewLocalVerifier("unit-secret", WithVerifierClock(func() time.Time { return issuedAt.Add(61 * time.Second) }))
	if err != nil {
		t.Fatalf("NewLocalVerifier: %v", err)
	}
	_, err = reject.Verify(context.Background(), token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired must still match ErrInvalidToken")
	}
}

func TestVerifySecretMismatch(t *testing.T) {
	iss, err := NewIssuer("secret-x", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	token, _, err := iss.Issue(9, "p@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	ver, err := NewLocalVerifier("secret-y")
	if err != nil {
		t.Fatalf("NewLocalVerifier: %v", err)
	}
	if _, err := ver.Verify(context.Background(), token); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerifyRejectsMissingUserID(t *testing.T) {
	// Well signed but carrying no user_id claim: an authentication
	// failure, not an authorization one.
	claims := jwt.MapClaims{
		"sub": "p@example.com",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unit-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	ver, err := NewLocalVerifier("unit-secret")
	if err != nil {
		t.Fatalf("NewLocalVerifier: %v", err)
	}
	if _, err := ver.Verify(context.Background(), token); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestVerifyRejectsWrongAlgorithm(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub":     "p@example.com",
		"user_id": 3,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("unit-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	ver, err := NewLocalVerifier("unit-secret")
	if err != nil {
		t.Fatalf("NewLocalVerifier: %v", err)
	}
	if _, err := ver.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected rejection for non-HS256 token, got %v", err)
	}
}

func TestVerifyGarbageToken(t *testing.T) {
	ver, err := NewLocalVerifier("unit-secret")
	if err != nil {
		t.Fatalf("NewLocalVerifier: %v", err)
	}
	for _, raw := range []string{"", "   ", "a.b", "not-a-jwt-at-all"} {
		if _, err := ver.Verify(context.Background(), raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected rejection for %q, got %v", raw, err)
		}
	}
}

func TestIdentityContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	if _, ok := IdentityFromContext(ctx); ok {
		t.Fatalf("empty context must not carry an identity")
	}

	ctx = ContextWithIdentity(ctx, Identity{UserID: 5, Email: "p@example.com", Role: "patient"})
	ident, ok := IdentityFromContext(ctx)
	if !ok || ident.UserID != 5 || ident.Role != "patient" {
		t.Fatalf("unexpected identity: %+v ok=%v", ident, ok)
	}

	ctx = ContextWithToken(ctx, "raw-token")
	token, ok := TokenFromContext(ctx)
	if !ok || token != "raw-token" {
		t.Fatalf("unexpected token: %q ok=%v", token, ok)
	}
}
