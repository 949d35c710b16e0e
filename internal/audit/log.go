package audit

import (
	"context"
	"errors"
	"strings"
	"time"

	"seha.health/internal/auth"
	"seha.health/internal/obs"
)

// logSink yields the destination logger; swappable in tests.
var logSink = obs.Logger

type ctxKey string

const requestIDKey ctxKey = "audit_request_id"

// WithRequestID attaches the request identifier to the context for audit logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// requestIDFromContext extracts the audit request id from context if present.
func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// LogEvent writes an audit entry enriched with request and principal
// context. Mutating endpoints call this after the operation succeeds.
func LogEvent(ctx context.Context, event string, fields map[string]any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}
	sink := logSink()
	entry := sink.Info().
		Str("type", "audit").
		Str("event", event).
		Time("at", time.Now().UTC())
	if rid := requestIDFromContext(ctx); rid != "" {
		entry = entry.Str("request_id", rid)
	}
	if ident, ok := auth.IdentityFromContext(ctx); ok {
		entry = entry.Int64("user_id", ident.UserID)
	}
	if len(fields) > 0 {
		entry = entry.Fields(fields)
	}
	entry.Msg(event)
	return nil
}
