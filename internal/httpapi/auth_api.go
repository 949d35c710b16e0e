package httpapi

import (
	"errors"
	"net/http"

	"seha.health/internal/audit"
	"seha.health/internal/auth"
	"seha.health/internal/identity"
	"seha.health/internal/obs"
)

// AuthAPI is the HTTP surface of the identity service. Registration
// and login are public; everything else requires a bearer token.
type AuthAPI struct {
	mux      *http.ServeMux
	svc      *identity.Service
	verifier auth.Verifier
	version  string
}

// NewAuthAPI wires the identity routes.
func NewAuthAPI(svc *identity.Service, verifier auth.Verifier, probe ReadyProbe, version string) *AuthAPI {
	a := &AuthAPI{
		mux:      http.NewServeMux(),
		svc:      svc,
		verifier: verifier,
		version:  version,
	}

	mountOps(a.mux, "auth-api", version, probe)

	a.mux.HandleFunc("/register", a.handleRegister)
	a.mux.HandleFunc("/login", a.handleLogin)
	a.mux.Handle("/me", Authenticate(verifier, http.HandlerFunc(a.handleMe)))
	a.mux.Handle("/verify-token", Authenticate(verifier, http.HandlerFunc(a.handleVerifyToken)))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the full middleware-wrapped handler.
func (a *AuthAPI) Handler() http.Handler {
	var h http.Handler = a.mux
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = Logging("auth-api", h)
	h = RequestID(h)
	return obs.Instrument("auth-api", h)
}

func (a *AuthAPI) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req identity.RegisterInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	sess, err := a.svc.Register(r.Context(), req)
	if err != nil {
		handleIdentityError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "user.register", map[string]any{"email": sess.User.Email})
	writeJSON(w, http.StatusCreated, sess)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *AuthAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	sess, err := a.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleIdentityError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "user.login", map[string]any{"email": sess.User.Email})
	writeJSON(w, http.StatusOK, sess)
}

func (a *AuthAPI) handleMe(w http.ResponseWriter, r *http.Request) {
	ident, ok := principal(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		u, err := a.svc.User(r.Context(), ident.UserID)
		if err != nil {
			handleIdentityError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	case http.MethodPut:
		var req identity.ProfileUpdate
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		u, err := a.svc.UpdateProfile(r.Context(), ident.UserID, req)
		if err != nil {
			handleIdentityError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "user.profile.update", nil)
		writeJSON(w, http.StatusOK, u)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}

// handleVerifyToken serves delegated verification for other services.
// Authenticate has already validated the signature; this re-checks the
// principal row and reports the role alongside.
func (a *AuthAPI) handleVerifyToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	token, ok := auth.TokenFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}
	ident, err := a.svc.VerifyToken(r.Context(), token)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "invalid or expired token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":     true,
		"user_id":   ident.UserID,
		"email":     ident.Email,
		"user_type": ident.Role,
	})
}

func handleIdentityError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, identity.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, identity.ErrEmailTaken):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, identity.ErrBadCredentials):
		writeError(w, r, http.StatusUnauthorized, "incorrect email or password")
	case errors.Is(err, identity.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
