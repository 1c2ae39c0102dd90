package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned for unknown or expired tokens.
var ErrNotFound = errors.New("session not found")

// MaxHistory is how many chat messages a session keeps.
const MaxHistory = 20

// Message is one chat turn.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// PendingAction is an assistant action waiting for the user to fill a gap.
type PendingAction struct {
	Action    string          `json:"action"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
}

// Session is per-user conversational state, keyed by a server-issued token.
type Session struct {
	Token   string         `json:"token"`
	UserID  uint           `json:"user_id"`
	History []Message      `json:"history"`
	Pending *PendingAction `json:"pending,omitempty"`
}

// AppendMessage records a chat turn, keeping only the newest MaxHistory.
func (s *Session) AppendMessage(role, content string, at time.Time) {
	s.History = append(s.History, Message{Role: role, Content: content, At: at})
	if n := len(s.History); n > MaxHistory {
		s.History = append([]Message(nil), s.History[n-MaxHistory:]...)
	}
}

// Store persists sessions. Save refreshes the expiry.
type Store interface {
	Create(ctx context.Context, userID uint) (*Session, error)
	Load(ctx context.Context, token string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, token string) error
}
