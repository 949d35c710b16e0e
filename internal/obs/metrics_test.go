package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                               "/",
		"/metrics":                       "/metrics",
		"/doctors/123":                   "/doctors/:id",
		"/doctors/123/appointments":      "/doctors/:id/appointments",
		"/appointments/42/cancel":        "/appointments/:id/cancel",
		"/appointments/upcoming/count":   "/appointments/upcoming/count",
		"/medical-records/my-records":    "/medical-records/my-records",
		"/sessions/7/messages":           "/sessions/:id/messages",
		"/appointments?status=cancelled": "/appointments",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
