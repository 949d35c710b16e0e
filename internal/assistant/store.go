package assistant

import (
	"context"
	"time"
)

// SessionStore persists chat sessions. Single-row lookups are scoped
// to the owning user at the query layer.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	ByIDForUser(ctx context.Context, id, userID int64) (*Session, error)
	ListByUser(ctx context.Context, userID int64) ([]*Session, error)
	Touch(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
}

// MessageStore persists chat turns. Deleting a session removes its
// messages with it.
type MessageStore interface {
	Create(ctx context.Context, m *Message) error
	ListBySession(ctx context.Context, sessionID int64) ([]*Message, error)
	DeleteBySession(ctx context.Context, sessionID int64) error
}
