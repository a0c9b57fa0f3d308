package models

import (
	"time"
)

// Message roles. The assistant role is translated to each AI backend's own
// vocabulary at the provider boundary.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Preferences holds per-user UI and provider settings.
type Preferences struct {
	AIProvider  string `db:"ai_provider" json:"aiProvider"`
	Theme       string `db:"theme" json:"theme"`
	AccentColor string `db:"accent_color" json:"accentColor"`
}

// User represents an authenticated user of the system.
type User struct {
	ID           string      `db:"id" json:"id"`
	Name         string      `db:"name" json:"name"`
	Email        string      `db:"email" json:"email"`
	PasswordHash string      `db:"password_hash" json:"-"`
	Preferences  Preferences `json:"preferences"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updatedAt"`
}

// Message is a single turn within a chat. Immutable once appended.
type Message struct {
	ID        string    `db:"id" json:"id"`
	Role      string    `db:"role" json:"role"`
	Content   string    `db:"content" json:"content"`
	Timestamp time.Time `db:"created_at" json:"timestamp"`
}

// Chat is one conversation owned by a single user. Messages are append-only
// and ordered chronologically.
type Chat struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"userId"`
	Title      string    `db:"title" json:"title"`
	Messages   []Message `json:"messages"`
	AIProvider string    `db:"ai_provider" json:"aiProvider"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// ChatSummary is the history-list projection of a chat, without message bodies.
type ChatSummary struct {
	ID         string    `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	AIProvider string    `db:"ai_provider" json:"aiProvider"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// UserMessageCount returns how many user-authored turns the chat contains.
func (c *Chat) UserMessageCount() int {
	n := 0
	for _, m := range c.Messages {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}
