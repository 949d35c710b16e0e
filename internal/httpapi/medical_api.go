package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"seha.health/internal/audit"
	"seha.health/internal/auth"
	"seha.health/internal/medical"
	"seha.health/internal/obs"
)

// MedicalAPI is the HTTP surface of the clinical records service.
type MedicalAPI struct {
	mux     *http.ServeMux
	svc     *medical.Service
	version string
}

// NewMedicalAPI wires the clinical routes behind the given verifier.
func NewMedicalAPI(svc *medical.Service, verifier auth.Verifier, probe ReadyProbe, version string) *MedicalAPI {
	a := &MedicalAPI{
		mux:     http.NewServeMux(),
		svc:     svc,
		version: version,
	}

	mountOps(a.mux, "medical-api", version, probe)

	protect := func(h http.HandlerFunc) http.Handler {
		return Authenticate(verifier, h)
	}
	a.mux.Handle("/doctors", protect(a.handleDoctors))
	a.mux.Handle("/doctors/", protect(a.handleDoctorResource))
	a.mux.Handle("/hospitals", protect(a.handleHospitals))
	a.mux.Handle("/hospitals/", protect(a.handleHospitalResource))
	a.mux.Handle("/medical-records", protect(a.handleRecords))
	a.mux.Handle("/medical-records/", protect(a.handleRecordResource))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the full middleware-wrapped handler.
func (a *MedicalAPI) Handler() http.Handler {
	var h http.Handler = a.mux
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = Logging("medical-api", h)
	h = RequestID(h)
	return obs.Instrument("medical-api", h)
}

func (a *MedicalAPI) handleDoctors(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listDoctors(w, r)
	case http.MethodPost:
		a.createDoctor(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *MedicalAPI) listDoctors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	skip, err := parsePositiveInt(q.Get("skip"), 0, 0, 1<<30)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "skip "+err.Error())
		return
	}
	limit, err := parsePositiveInt(q.Get("limit"), 100, 1, 100)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "limit "+err.Error())
		return
	}
	f := medical.DoctorFilter{
		Specialization: strings.TrimSpace(q.Get("specialization")),
		Skip:           skip,
		Limit:          limit,
	}
	if raw := q.Get("hospital_id"); raw != "" {
		id, err := pathID(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid hospital_id")
			return
		}
		f.HospitalID = id
	}
	if raw := q.Get("is_available_online"); raw != "" {
		online, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid is_available_online")
			return
		}
		f.IsAvailableOnline = &online
	}

	doctors, total, err := a.svc.Doctors(r.Context(), f)
	if err != nil {
		handleMedicalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": doctors, "total": total})
}

func (a *MedicalAPI) createDoctor(w http.ResponseWriter, r *http.Request) {
	ident, ok := principal(w, r)
	if !ok {
		return
	}
	var req medical.DoctorInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	d, err := a.svc.CreateDoctor(r.Context(), ident, req)
	if err != nil {
		handleMedicalError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "doctor.create", map[string]any{"doctor_id": d.ID})
	w.Header().Set("Location", "/doctors/"+strconv.FormatInt(d.ID, 10))
	writeJSON(w, http.StatusCreated, d)
}

func (a *MedicalAPI) handleDoctorResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/doctors/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if path == "me" {
		a.myDoctorProfile(w, r)
		return
	}
	id, err := pathID(path)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		d, err := a.svc.Doctor(r.Context(), id)
		if err != nil {
			handleMedicalError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	case http.MethodPut:
		ident, ok := principal(w, r)
		if !ok {
			return
		}
		var req medical.DoctorUpdate
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		d, err := a.svc.UpdateDoctor(r.Context(), ident, id, req)
		if err != nil {
			handleMedicalError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "doctor.update", map[string]any{"doctor_id": id})
		writeJSON(w, http.StatusOK, d)
	case http.MethodDelete:
		ident, ok := principal(w, r)
		if !ok {
			return
		}
		if err := a.svc.DeleteDoctor(r.Context(), ident, id); err != nil {
			handleMedicalError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "doctor.delete", map[string]any{"doctor_id": id})
		writeJSON(w, http.StatusOK, map[string]any{"detail": "doctor profile deleted"})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *MedicalAPI) myDoctorProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	ident, ok := principal(w, r)
	if !ok {
		return
	}
	d, err := a.svc.DoctorByUser(r.Context(), ident.UserID)
	if err != nil {
		handleMedicalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *MedicalAPI) handleHospitals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listHospitals(w, r)
	case http.MethodPost:
		a.createHospital(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *MedicalAPI) listHospitals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	skip, err := parsePositiveInt(q.Get("skip"), 0, 0, 1<<30)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "skip "+err.Error())
		return
	}
	limit, err := parsePositiveInt(q.Get("limit"), 100, 1, 100)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "limit "+err.Error())
		return
	}
	f := medical.HospitalFilter{
		City:  strings.TrimSpace(q.Get("city")),
		Skip:  skip,
		Limit: limit,
	}
	if raw := q.Get("has_emergency"); raw != "" {
		has, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid has_emergency")
			return
		}
		f.HasEmergency = &has
	}

	hospitals, total, err := a.svc.Hospitals(r.Context(), f)
	if err != nil {
		handleMedicalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": hospitals, "total": total})
}

func (a *MedicalAPI) createHospital(w http.ResponseWriter, r *http.Request) {
	ident, ok := principal(w, r)
	if !ok {
		return
	}
	var req medical.HospitalInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h, err := a.svc.CreateHospital(r.Context(), ident, req)
	if err != nil {
		handleMedicalError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "hospital.create", map[string]any{"hospital_id": h.ID})
	w.Header().Set("Location", "/hospitals/"+strconv.FormatInt(h.ID, 10))
	writeJSON(w, http.StatusCreated, h)
}

func (a *MedicalAPI) handleHospitalResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/hospitals/")
	id, err := pathID(path)
	if err != nil || strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	h, err := a.svc.Hospital(r.Context(), id)
	if err != nil {
		handleMedicalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (a *MedicalAPI) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	ident, ok := principal(w, r)
	if !ok {
		return
	}
	var req medical.RecordInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := a.svc.CreateRecord(r.Context(), ident, req)
	if err != nil {
		handleMedicalError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "record.create", map[string]any{"record_id": rec.ID})
	w.Header().Set("Location", "/medical-records/"+strconv.FormatInt(rec.ID, 10))
	writeJSON(w, http.StatusCreated, rec)
}

func (a *MedicalAPI) handleRecordResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/medical-records/")
	if path == "my-records" {
		a.myRecords(w, r)
		return
	}
	if path == "authored" {
		a.authoredRecords(w, r)
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
		rec, err := a.svc.Record(r.Context(), ident, id)
		if err != nil {
			handleMedicalError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	case http.MethodPut:
		var req medical.RecordUpdate
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		rec, err := a.svc.UpdateRecord(r.Context(), ident, id, req)
		if err != nil {
			handleMedicalError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "record.update", map[string]any{"record_id": id})
		writeJSON(w, http.StatusOK, rec)
	case http.MethodDelete:
		if err := a.svc.DeleteRecord(r.Context(), ident, id); err != nil {
			handleMedicalError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "record.delete", map[string]any{"record_id": id})
		writeJSON(w, http.StatusOK, map[string]any{"detail": "medical record deleted"})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *MedicalAPI) myRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	ident, ok := principal(w, r)
	if !ok {
		return
	}
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
	records, total, err := a.svc.MyRecords(r.Context(), ident, skip, limit)
	if err != nil {
		handleMedicalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": records, "total": total})
}

func (a *MedicalAPI) authoredRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	ident, ok := principal(w, r)
	if !ok {
		return
	}
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
	records, total, err := a.svc.AuthoredRecords(r.Context(), ident, skip, limit)
	if err != nil {
		handleMedicalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": records, "total": total})
}

func handleMedicalError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, medical.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, medical.ErrForbidden):
		writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, medical.ErrDoctorExists):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, medical.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
