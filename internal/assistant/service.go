package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"seha.health/internal/auth"
)

// Responder produces the assistant's reply to a user message. The
// conversational model itself lives behind this seam.
type Responder interface {
	Respond(ctx context.Context, ident auth.Identity, history []*Message, userMessage string) (string, error)
}

// CannedResponder answers every message with a fixed triage reply. It
// stands in wherever no model backend is configured.
type CannedResponder struct{}

func (CannedResponder) Respond(_ context.Context, _ auth.Identity, _ []*Message, _ string) (string, error) {
	return "I can help you find a doctor, book an appointment, or review your records. What do you need?", nil
}

// Service manages chat sessions scoped to the authenticated user.
type Service struct {
	sessions  SessionStore
	messages  MessageStore
	responder Responder
	now       func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the assistant service.
func NewService(sessions SessionStore, messages MessageStore, responder Responder, opts ...ServiceOption) *Service {
	if responder == nil {
		responder = CannedResponder{}
	}
	s := &Service{sessions: sessions, messages: messages, responder: responder, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession opens a new conversation for the caller.
func (s *Service) CreateSession(ctx context.Context, ident auth.Identity, title string) (*Session, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "New conversation"
	}
	now := s.now().UTC()
	sess := &Session{
		UserID:        ident.UserID,
		Title:         title,
		CreatedAt:     now,
		LastMessageAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ListSessions returns the caller's conversations, most recent first.
func (s *Service) ListSessions(ctx context.Context, ident auth.Identity) ([]*Session, error) {
	return s.sessions.ListByUser(ctx, ident.UserID)
}

// GetSession fetches one of the caller's conversations. A session owned
// by someone else reads as not found.
func (s *Service) GetSession(ctx context.Context, ident auth.Identity, id int64) (*Session, error) {
	return s.sessions.ByIDForUser(ctx, id, ident.UserID)
}

// DeleteSession removes a conversation and its messages.
func (s *Service) DeleteSession(ctx context.Context, ident auth.Identity, id int64) error {
	sess, err := s.sessions.ByIDForUser(ctx, id, ident.UserID)
	if err != nil {
		return err
	}
	if err := s.messages.DeleteBySession(ctx, sess.ID); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, sess.ID)
}

// History returns the full turn list of one of the caller's sessions.
func (s *Service) History(ctx context.Context, ident auth.Identity, sessionID int64) ([]*Message, error) {
	sess, err := s.sessions.ByIDForUser(ctx, sessionID, ident.UserID)
	if err != nil {
		return nil, err
	}
	return s.messages.ListBySession(ctx, sess.ID)
}

// Post stores the user's message, obtains a reply, stores it, and
// bumps the session's last-message time. Both turns are returned.
func (s *Service) Post(ctx context.Context, ident auth.Identity, sessionID int64, content string) (*Message, *Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil, fmt.Errorf("%w: message content is required", ErrInvalidInput)
	}
	sess, err := s.sessions.ByIDForUser(ctx, sessionID, ident.UserID)
	if err != nil {
		return nil, nil, err
	}

	history, err := s.messages.ListBySession(ctx, sess.ID)
	if err != nil {
		return nil, nil, err
	}

	userMsg := &Message{
		SessionID: sess.ID,
		Role:      RoleUser,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	if err := s.messages.Create(ctx, userMsg); err != nil {
		return nil, nil, err
	}

	replyText, err := s.responder.Respond(ctx, ident, history, content)
	if err != nil {
		return nil, nil, fmt.Errorf("assistant: responder: %w", err)
	}

	reply := &Message{
		SessionID: sess.ID,
		Role:      RoleAssistant,
		Content:   replyText,
		CreatedAt: s.now().UTC(),
	}
	if err := s.messages.Create(ctx, reply); err != nil {
		return nil, nil, err
	}
	if err := s.sessions.Touch(ctx, sess.ID, reply.CreatedAt); err != nil {
		return nil, nil, err
	}
	return userMsg, reply, nil
}
