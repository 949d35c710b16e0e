package assistant

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLSessionStore persists sessions over database/sql with $N
// placeholders, accepted by both the pgx and modernc sqlite drivers.
type SQLSessionStore struct {
	db *sql.DB
}

// NewSQLSessionStore wraps an open database handle.
func NewSQLSessionStore(db *sql.DB) *SQLSessionStore {
	return &SQLSessionStore{db: db}
}

const sessionColumns = `session_id, user_id, title, created_at, last_message_at`

func (s *SQLSessionStore) Create(ctx context.Context, row *Session) error {
	return s.db.QueryRowContext(ctx, `
		insert into chat_sessions (user_id, title, created_at, last_message_at)
		values ($1, $2, $3, $4)
		returning session_id`,
		row.UserID, row.Title, row.CreatedAt, row.LastMessageAt,
	).Scan(&row.ID)
}

func (s *SQLSessionStore) ByIDForUser(ctx context.Context, id, userID int64) (*Session, error) {
	var row Session
	err := s.db.QueryRowContext(ctx,
		`select `+sessionColumns+` from chat_sessions where session_id = $1 and user_id = $2`, id, userID).
		Scan(&row.ID, &row.UserID, &row.Title, &row.CreatedAt, &row.LastMessageAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *SQLSessionStore) ListByUser(ctx context.Context, userID int64) ([]*Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+sessionColumns+` from chat_sessions where user_id = $1 order by last_message_at desc`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Session
	for rows.Next() {
		var row Session
		if err := rows.Scan(&row.ID, &row.UserID, &row.Title, &row.CreatedAt, &row.LastMessageAt); err != nil {
			return nil, err
		}
		out = append(out, &row)
	}
	return out, rows.Err()
}

func (s *SQLSessionStore) Touch(ctx context.Context, id int64, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`update chat_sessions set last_message_at = $1 where session_id = $2`, at, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *SQLSessionStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from chat_sessions where session_id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// SQLMessageStore persists chat turns.
type SQLMessageStore struct {
	db *sql.DB
}

// NewSQLMessageStore wraps an open database handle.
func NewSQLMessageStore(db *sql.DB) *SQLMessageStore {
	return &SQLMessageStore{db: db}
}

func (s *SQLMessageStore) Create(ctx context.Context, m *Message) error {
	return s.db.QueryRowContext(ctx, `
		insert into chat_messages (session_id, role, content, created_at)
		values ($1, $2, $3, $4)
		returning message_id`,
		m.SessionID, m.Role, m.Content, m.CreatedAt,
	).Scan(&m.ID)
}

func (s *SQLMessageStore) ListBySession(ctx context.Context, sessionID int64) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`select message_id, session_id, role, content, created_at from chat_messages where session_id = $1 order by message_id`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (s *SQLMessageStore) DeleteBySession(ctx context.Context, sessionID int64) error {
	_, err := s.db.ExecContext(ctx, `delete from chat_messages where session_id = $1`, sessionID)
	return err
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
