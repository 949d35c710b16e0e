package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"seha.health/internal/assistant"
	"seha.health/internal/audit"
	"seha.health/internal/auth"
	"seha.health/internal/obs"
)

// AssistantAPI is the HTTP surface of the conversational assistant
// service. Its verifier is expected to be a remote one; this service
// never sees the signing secret.
type AssistantAPI struct {
	mux     *http.ServeMux
	svc     *assistant.Service
	version string
}

// NewAssistantAPI wires the chat routes behind the given verifier.
func NewAssistantAPI(svc *assistant.Service, verifier auth.Verifier, probe ReadyProbe, version string) *AssistantAPI {
	a := &AssistantAPI{
		mux:     http.NewServeMux(),
		svc:     svc,
		version: version,
	}

	mountOps(a.mux, "assistant-api", version, probe)

	protect := func(h http.HandlerFunc) http.Handler {
		return Authenticate(verifier, h)
	}
	a.mux.Handle("/sessions", protect(a.handleSessions))
	a.mux.Handle("/sessions/", protect(a.handleSessionResource))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the full middleware-wrapped handler.
func (a *AssistantAPI) Handler() http.Handler {
	var h http.Handler = a.mux
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = Logging("assistant-api", h)
	h = RequestID(h)
	return obs.Instrument("assistant-api", h)
}

type createSessionRequest struct {
	Title string `json:"title"`
}

func (a *AssistantAPI) handleSessions(w http.ResponseWriter, r *http.Request) {
	ident, ok := principal(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		sessions, err := a.svc.ListSessions(r.Context(), ident)
		if err != nil {
			handleAssistantError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": sessions})
	case http.MethodPost:
		var req createSessionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		sess, err := a.svc.CreateSession(r.Context(), ident, req.Title)
		if err != nil {
			handleAssistantError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "chat.session.create", map[string]any{"session_id": sess.ID})
		w.Header().Set("Location", "/sessions/"+strconv.FormatInt(sess.ID, 10))
		writeJSON(w, http.StatusCreated, sess)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

type postMessageRequest struct {
	Content string `json:"content"`
}

func (a *AssistantAPI) handleSessionResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	ident, ok := principal(w, r)
	if !ok {
		return
	}

	if msgID, found := strings.CutSuffix(path, "/messages"); found {
		id, err := pathID(msgID)
		if err != nil {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		a.handleMessages(w, r, ident, id)
		return
	}

	id, err := pathID(path)
	if err != nil || strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		sess, err := a.svc.GetSession(r.Context(), ident, id)
		if err != nil {
			handleAssistantError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	case http.MethodDelete:
		if err := a.svc.DeleteSession(r.Context(), ident, id); err != nil {
			handleAssistantError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "chat.session.delete", map[string]any{"session_id": id})
		writeJSON(w, http.StatusOK, map[string]any{"detail": "session deleted"})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
	}
}

func (a *AssistantAPI) handleMessages(w http.ResponseWriter, r *http.Request, ident auth.Identity, sessionID int64) {
	switch r.Method {
	case http.MethodGet:
		history, err := a.svc.History(r.Context(), ident, sessionID)
		if err != nil {
			handleAssistantError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": history})
	case http.MethodPost:
		var req postMessageRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		userMsg, reply, err := a.svc.Post(r.Context(), ident, sessionID, req.Content)
		if err != nil {
			handleAssistantError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"message": userMsg,
			"reply":   reply,
		})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func handleAssistantError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, assistant.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, assistant.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
