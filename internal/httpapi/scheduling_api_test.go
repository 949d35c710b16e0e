package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"seha.health/internal/scheduling"
)

type schedulingFixture struct {
	srv    *httptest.Server
	tokens map[string]string
}

func newSchedulingFixture(t *testing.T) *schedulingFixture {
	t.Helper()
	issuer := mustIssuer(t, "test-secret")
	verifier := mustVerifier(t, "test-secret")
	svc := scheduling.NewService(scheduling.NewMemoryStore())
	api := NewSchedulingAPI(svc, verifier, ReadyProbe{}, "test")
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	tokens := make(map[string]string)
	for name, id := range map[string]int64{"alice": 1, "mallory": 2} {
		token, _, err := issuer.Issue(id, name+"@example.com")
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		tokens[name] = token
	}
	return &schedulingFixture{srv: srv, tokens: tokens}
}

func (f *schedulingFixture) do(t *testing.T, method, path, token, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	var payload map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return resp, payload
}

func (f *schedulingFixture) book(t *testing.T, token string) map[string]any {
	t.Helper()
	at := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	resp, payload := f.do(t, http.MethodPost, "/appointments", token,
		`{"doctor_id":7,"datetime":"`+at+`","reason":"checkup"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("book status = %d: %v", resp.StatusCode, payload)
	}
	return payload
}

func TestAppointmentBookingValidation(t *testing.T) {
	f := newSchedulingFixture(t)

	past := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	resp, payload := f.do(t, http.MethodPost, "/appointments", f.tokens["alice"],
		`{"doctor_id":7,"datetime":"`+past+`"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("past booking status = %d: %v", resp.StatusCode, payload)
	}

	resp, _ = f.do(t, http.MethodPost, "/appointments", "", `{"doctor_id":7}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated booking status = %d", resp.StatusCode)
	}

	appt := f.book(t, f.tokens["alice"])
	if appt["status"] != "scheduled" {
		t.Fatalf("new booking status = %v", appt["status"])
	}
}

func TestCancelRouteIdempotent(t *testing.T) {
	f := newSchedulingFixture(t)
	f.book(t, f.tokens["alice"])

	for i := 0; i < 2; i++ {
		resp, payload := f.do(t, http.MethodPatch, "/appointments/1/cancel", f.tokens["alice"], "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("cancel #%d status = %d: %v", i+1, resp.StatusCode, payload)
		}
		if payload["status"] != "cancelled" {
			t.Fatalf("cancel #%d status field = %v", i+1, payload["status"])
		}
	}

	// Someone else's cancel hits a 404, not 403: the appointment may as
	// well not exist for them.
	resp, _ := f.do(t, http.MethodPatch, "/appointments/1/cancel", f.tokens["mallory"], "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign cancel status = %d, want 404", resp.StatusCode)
	}
}

func TestAppointmentScoping(t *testing.T) {
	f := newSchedulingFixture(t)
	f.book(t, f.tokens["alice"])
	f.book(t, f.tokens["alice"])
	f.book(t, f.tokens["mallory"])

	resp, payload := f.do(t, http.MethodGet, "/appointments", f.tokens["alice"], "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	if payload["total"] != float64(2) {
		t.Fatalf("total = %v, want 2", payload["total"])
	}

	resp, _ = f.do(t, http.MethodGet, "/appointments/3", f.tokens["alice"], "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign get status = %d, want 404", resp.StatusCode)
	}

	resp, payload = f.do(t, http.MethodGet, "/appointments/upcoming/count", f.tokens["alice"], "")
	if resp.StatusCode != http.StatusOK || payload["count"] != float64(2) {
		t.Fatalf("upcoming count status = %d, count = %v", resp.StatusCode, payload["count"])
	}
}

func TestDoctorScheduleRoute(t *testing.T) {
	f := newSchedulingFixture(t)
	f.book(t, f.tokens["alice"])
	f.book(t, f.tokens["mallory"])

	resp, payload := f.do(t, http.MethodGet, "/doctors/7/appointments", f.tokens["alice"], "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("schedule status = %d", resp.StatusCode)
	}
	items, ok := payload["items"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("schedule items = %v", payload["items"])
	}

	resp, _ = f.do(t, http.MethodGet, "/doctors/7/appointments?from=yesterday", f.tokens["alice"], "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad window status = %d", resp.StatusCode)
	}
}

func TestStatusFilterValidation(t *testing.T) {
	f := newSchedulingFixture(t)
	f.book(t, f.tokens["alice"])

	resp, _ := f.do(t, http.MethodGet, "/appointments?status=archived", f.tokens["alice"], "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad status filter = %d, want 400", resp.StatusCode)
	}

	resp, payload := f.do(t, http.MethodGet, "/appointments?status=scheduled", f.tokens["alice"], "")
	if resp.StatusCode != http.StatusOK || payload["total"] != float64(1) {
		t.Fatalf("filtered list status = %d, total = %v", resp.StatusCode, payload["total"])
	}
}
