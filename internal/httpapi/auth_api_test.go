package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"seha.health/internal/identity"
)

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	issuer := mustIssuer(t, "test-secret")
	verifier := mustVerifier(t, "test-secret")
	svc := identity.NewService(identity.NewMemoryStore(), issuer, verifier)
	api := NewAuthAPI(svc, verifier, ReadyProbe{}, "test")
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, payload
}

func register(t *testing.T, srv *httptest.Server, email string) (token string) {
	t.Helper()
	resp, payload := postJSON(t, srv.URL+"/register",
		`{"email":"`+email+`","password":"secret1","full_name":"Test User"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d: %v", resp.StatusCode, payload)
	}
	token, _ = payload["access_token"].(string)
	if token == "" {
		t.Fatal("no access token in register response")
	}
	return token
}

func TestRegisterLoginMe(t *testing.T) {
	srv := newAuthServer(t)

	token := register(t, srv, "Alice@Example.com")

	// Duplicate registration conflicts and leaves the credential intact.
	resp, _ := postJSON(t, srv.URL+"/register",
		`{"email":"alice@example.com","password":"other66","full_name":"Eve"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register status = %d", resp.StatusCode)
	}

	resp, payload := postJSON(t, srv.URL+"/login",
		`{"email":"alice@example.com","password":"secret1"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d: %v", resp.StatusCode, payload)
	}

	resp, payload = postJSON(t, srv.URL+"/login",
		`{"email":"alice@example.com","password":"wrong"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad-password login status = %d", resp.StatusCode)
	}
	wrongPassword := payload["error"]

	resp, payload = postJSON(t, srv.URL+"/login",
		`{"email":"nobody@example.com","password":"secret1"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unknown-email login status = %d", resp.StatusCode)
	}
	// Unknown email and wrong password must be indistinguishable.
	if payload["error"] != wrongPassword {
		t.Fatalf("login failure messages differ: %v vs %v", payload["error"], wrongPassword)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	meResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /me: %v", err)
	}
	defer meResp.Body.Close()
	if meResp.StatusCode != http.StatusOK {
		t.Fatalf("/me status = %d", meResp.StatusCode)
	}
	var me map[string]any
	if err := json.NewDecoder(meResp.Body).Decode(&me); err != nil {
		t.Fatalf("decode /me: %v", err)
	}
	if me["email"] != "alice@example.com" {
		t.Fatalf("email not normalized: %v", me["email"])
	}
	if _, leaked := me["password_hash"]; leaked {
		t.Fatal("password hash leaked in /me response")
	}
}

func TestVerifyTokenEndpoint(t *testing.T) {
	srv := newAuthServer(t)
	token := register(t, srv, "bob@example.com")

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/verify-token", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /verify-token: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["valid"] != true {
		t.Fatalf("valid = %v", payload["valid"])
	}
	if payload["email"] != "bob@example.com" {
		t.Fatalf("email = %v", payload["email"])
	}
	if payload["user_type"] != "patient" {
		t.Fatalf("user_type = %v", payload["user_type"])
	}

	// No token, bad token: both 401.
	for _, header := range []string{"", "Bearer garbage"} {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/verify-token", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET /verify-token: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d", header, resp.StatusCode)
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	srv := newAuthServer(t)

	cases := map[string]string{
		"bad email":      `{"email":"not-an-email","password":"secret1","full_name":"Test"}`,
		"short password": `{"email":"a@b.com","password":"abc","full_name":"Test"}`,
		"short name":     `{"email":"a@b.com","password":"secret1","full_name":"T"}`,
		"admin role":     `{"email":"a@b.com","password":"secret1","full_name":"Test","role":"admin"}`,
		"unknown field":  `{"email":"a@b.com","password":"secret1","full_name":"Test","is_admin":true}`,
	}
	for name, body := range cases {
		resp, _ := postJSON(t, srv.URL+"/register", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, resp.StatusCode)
		}
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newAuthServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status = %d", path, resp.StatusCode)
		}
	}
}
