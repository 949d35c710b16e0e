package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"seha.health/internal/audit"
	"seha.health/internal/auth"
	"seha.health/internal/obs"
	"seha.health/internal/scheduling"
)

// SchedulingAPI is the HTTP surface of the appointment service.
type SchedulingAPI struct {
	mux     *http.ServeMux
	svc     *scheduling.Service
	version string
}

// NewSchedulingAPI wires the booking routes behind the given verifier.
func NewSchedulingAPI(svc *scheduling.Service, verifier auth.Verifier, probe ReadyProbe, version string) *SchedulingAPI {
	a := &SchedulingAPI{
		mux:     http.NewServeMux(),
		svc:     svc,
		version: version,
	}

	mountOps(a.mux, "scheduling-api", version, probe)

	protect := func(h http.HandlerFunc) http.Handler {
		return Authenticate(verifier, h)
	}
	a.mux.Handle("/appointments", protect(a.handleAppointments))
	a.mux.Handle("/appointments/", protect(a.handleAppointmentResource))
	a.mux.Handle("/doctors/", protect(a.handleDoctorSchedule))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the full middleware-wrapped handler.
func (a *SchedulingAPI) Handler() http.Handler {
	var h http.Handler = a.mux
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = Logging("scheduling-api", h)
	h = RequestID(h)
	return obs.Instrument("scheduling-api", h)
}

func (a *SchedulingAPI) handleAppointments(w http.ResponseWriter, r *http.Request) {
	ident, ok := principal(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		skip, err := parsePositiveInt(q.Get("skip"), 0, 0, 1<<30)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "skip "+err.Error())
			return
		}
		limit, err := parsePositiveInt(q.Get("limit"), 10, 1, 100)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "limit "+err.Error())
			return
		}
		items, total, err := a.svc.List(r.Context(), ident, q.Get("status"), skip, limit)
		if err != nil {
			handleSchedulingError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
	case http.MethodPost:
		var req scheduling.CreateInput
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		appt, err := a.svc.Create(r.Context(), ident, req)
		if err != nil {
			handleSchedulingError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "appointment.create", map[string]any{"appointment_id": appt.ID})
		w.Header().Set("Location", "/appointments/"+strconv.FormatInt(appt.ID, 10))
		writeJSON(w, http.StatusCreated, appt)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *SchedulingAPI) handleAppointmentResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/appointments/")
	if path == "upcoming/count" {
		a.upcomingCount(w, r)
		return
	}

	if cancelID, found := strings.CutSuffix(path, "/cancel"); found {
		id, err := pathID(cancelID)
		if err != nil {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		a.cancelAppointment(w, r, id)
		return
	}

	id, err := pathID(path)
	if err != nil || strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	ident, ok := principal(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		appt, err := a.svc.Get(r.Context(), ident, id)
		if err != nil {
			handleSchedulingError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, appt)
	case http.MethodPut:
		var req scheduling.UpdateInput
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		appt, err := a.svc.Update(r.Context(), ident, id, req)
		if err != nil {
			handleSchedulingError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "appointment.update", map[string]any{"appointment_id": id})
		writeJSON(w, http.StatusOK, appt)
	case http.MethodDelete:
		if err := a.svc.Delete(r.Context(), ident, id); err != nil {
			handleSchedulingError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "appointment.delete", map[string]any{"appointment_id": id})
		writeJSON(w, http.StatusOK, map[string]any{"detail": "appointment deleted"})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *SchedulingAPI) cancelAppointment(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodPatch {
		methodNotAllowed(w, r, http.MethodPatch)
		return
	}
	ident, ok := principal(w, r)
	if !ok {
		return
	}
	appt, err := a.svc.Cancel(r.Context(), ident, id)
	if err != nil {
		handleSchedulingError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "appointment.cancel", map[string]any{"appointment_id": id})
	writeJSON(w, http.StatusOK, appt)
}

func (a *SchedulingAPI) upcomingCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	ident, ok := principal(w, r)
	if !ok {
		return
	}
	n, err := a.svc.UpcomingCount(r.Context(), ident)
	if err != nil {
		handleSchedulingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": n})
}

// handleDoctorSchedule serves GET /doctors/{id}/appointments, a read
// view of one doctor's bookings for calendar building.
func (a *SchedulingAPI) handleDoctorSchedule(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/doctors/")
	docID, found := strings.CutSuffix(path, "/appointments")
	if !found {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	id, err := pathID(docID)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	q := r.URL.Query()
	var from, to time.Time
	if raw := q.Get("from"); raw != "" {
		from, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "from must be RFC3339")
			return
		}
	}
	if raw := q.Get("to"); raw != "" {
		to, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "to must be RFC3339")
			return
		}
	}

	items, err := a.svc.DoctorSchedule(r.Context(), id, from, to)
	if err != nil {
		handleSchedulingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func handleSchedulingError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, scheduling.ErrInvalidInput),
		errors.Is(err, scheduling.ErrInvalidStatus),
		errors.Is(err, scheduling.ErrPastAppointment):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, scheduling.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
