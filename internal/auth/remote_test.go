package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRemoteVerifierAcceptsValidResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/verify-token" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"valid":true,"user_id":11,"email":"doc@example.com","user_type":"doctor"}`))
	}))
	defer srv.Close()

	ver, err := NewRemoteVerifier(srv.URL, nil)
	if err != nil {
		t.Fatalf("NewRemoteVerifier: %v", err)
	}
	ident, err := ver.Verify(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ident.UserID != 11 || ident.Email != "doc@example.com" || ident.Role != "doctor" {
		t.Fatalf("unexpected identity: %+v", ident)
	}
}

func TestRemoteVerifierRejectsNonSuccess(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		ver, err := NewRemoteVerifier(srv.URL, nil)
		if err != nil {
			t.Fatalf("NewRemoteVerifier: %v", err)
		}
		if _, err := ver.Verify(context.Background(), "token"); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("status %d: expected ErrInvalidToken, got %v", status, err)
		}
		srv.Close()
	}
}

func TestRemoteVerifierRejectsInvalidFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"valid":false,"user_id":0}`))
	}))
	defer srv.Close()

	ver, err := NewRemoteVerifier(srv.URL, nil)
	if err != nil {
		t.Fatalf("NewRemoteVerifier: %v", err)
	}
	if _, err := ver.Verify(context.Background(), "token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRemoteVerifierFailsClosedWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	ver, err := NewRemoteVerifier(srv.URL, nil)
	if err != nil {
		t.Fatalf("NewRemoteVerifier: %v", err)
	}
	if _, err := ver.Verify(context.Background(), "token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken when verifier is down, got %v", err)
	}
}

func TestRemoteVerifierTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		srv.Close()
	}()

	ver, err := NewRemoteVerifier(srv.URL, &http.Client{Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewRemoteVerifier: %v", err)
	}
	if _, err := ver.Verify(context.Background(), "token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected timeout to fail closed, got %v", err)
	}
}

func TestRemoteVerifierEmptyToken(t *testing.T) {
	ver, err := NewRemoteVerifier("http://identity.internal", nil)
	if err != nil {
		t.Fatalf("NewRemoteVerifier: %v", err)
	}
	if _, err := ver.Verify(context.Background(), "  "); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}
