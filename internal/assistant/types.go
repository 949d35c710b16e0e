package assistant

import "time"

// Message roles within a chat session.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session is a chat conversation owned by one user.
type Session struct {
	ID            int64     `json:"session_id"`
	UserID        int64     `json:"user_id"`
	Title         string    `json:"title"`
	CreatedAt     time.Time `json:"created_at"`
	LastMessageAt time.Time `json:"last_message_at"`
}

// Message is one turn inside a session.
type Message struct {
	ID        int64     `json:"message_id"`
	SessionID int64     `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
