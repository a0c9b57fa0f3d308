package core

import (
	"context"

	"github.com/princekumar9234/DarkBot/internal/models"
)

// Store defines all persistence operations the services need. It abstracts
// Postgres so higher layers never depend on a specific DB.
//
// Chat lookups are always scoped to the owning user: an ownership mismatch is
// indistinguishable from a missing row (both return ErrNotFound) so the
// existence of another user's data is never leaked.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id, name, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdatePreferences(ctx context.Context, id string, prefs models.Preferences) (*models.User, error)
	// DeleteUser removes the user and cascades to all owned chats.
	DeleteUser(ctx context.Context, id string) error

	GetChat(ctx context.Context, id, userID string) (*models.Chat, error)
	ListChats(ctx context.Context, userID string, limit int) ([]models.ChatSummary, error)
	// SaveExchange persists one send-message exchange atomically: the chat row
	// (inserted when isNew), the freshly appended turns, and the updated
	// title, provider and timestamp. Nothing is written before this call, so
	// a failure mid-flow loses the whole exchange, never half of it.
	SaveExchange(ctx context.Context, chat *models.Chat, isNew bool, turns []models.Message) error
	DeleteChat(ctx context.Context, id, userID string) error
	DeleteChatsByUser(ctx context.Context, userID string) error

	Close() error
}
