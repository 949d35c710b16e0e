package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"seha.health/internal/auth"
)

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", false},
		{"bearer abc.def.ghi", "abc.def.ghi", false},
		{"  Bearer   token  ", "token", false},
		{"", "", true},
		{"Basic dXNlcjpwYXNz", "", true},
		{"Bearer ", "", true},
		{"abc.def.ghi", "", true},
	}
	for _, tc := range cases {
		got, err := extractBearerToken(tc.header)
		if tc.wantErr {
			if err == nil {
				t.Errorf("header %q: expected error", tc.header)
			}
			continue
		}
		if err != nil {
			t.Errorf("header %q: %v", tc.header, err)
			continue
		}
		if got != tc.want {
			t.Errorf("header %q: got %q want %q", tc.header, got, tc.want)
		}
	}
}

func mustIssuer(t *testing.T, secret string) *auth.Issuer {
	t.Helper()
	issuer, err := auth.NewIssuer(secret, 0)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	return issuer
}

func mustVerifier(t *testing.T, secret string) *auth.LocalVerifier {
	t.Helper()
	verifier, err := auth.NewLocalVerifier(secret)
	if err != nil {
		t.Fatalf("NewLocalVerifier: %v", err)
	}
	return verifier
}

func TestAuthenticateMiddleware(t *testing.T) {
	issuer := mustIssuer(t, "secret")
	verifier := mustVerifier(t, "secret")
	token, _, err := issuer.Issue(42, "a@b.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var seen auth.Identity
	handler := Authenticate(verifier, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if seen.UserID != 42 || seen.Email != "a@b.com" {
			t.Fatalf("identity = %+v", seen)
		}
	})

	t.Run("missing header is 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("garbage token is 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("wrong secret is 401", func(t *testing.T) {
		otherIssuer := mustIssuer(t, "different-secret")
		forged, _, err := otherIssuer.Issue(42, "a@b.com")
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}
