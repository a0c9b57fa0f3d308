package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/princekumar9234/DarkBot/internal/core"
	"github.com/princekumar9234/DarkBot/internal/models"
)

func newTestUser(t *testing.T, s *MemoryStore, email string) *models.User {
	t.Helper()
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         "Tester",
		Email:        email,
		PasswordHash: "$2a$10$fakehash",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func newTestChat(t *testing.T, s *MemoryStore, userID, title string) *models.Chat {
	t.Helper()
	chat := &models.Chat{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      title,
		AIProvider: "gemini",
		Messages: []models.Message{
			{ID: uuid.NewString(), Role: models.RoleUser, Content: "hello", Timestamp: time.Now()},
			{ID: uuid.NewString(), Role: models.RoleAssistant, Content: "hi", Timestamp: time.Now()},
		},
	}
	require.NoError(t, s.SaveExchange(context.Background(), chat, true, chat.Messages))
	return chat
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	newTestUser(t, s, "a@example.com")

	err := s.CreateUser(context.Background(), &models.User{ID: uuid.NewString(), Email: "a@example.com"})
	assert.ErrorIs(t, err, core.ErrDuplicateEmail)
}

func TestGetChatOwnershipIndistinguishable(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	owner := newTestUser(t, s, "owner@example.com")
	other := newTestUser(t, s, "other@example.com")
	chat := newTestChat(t, s, owner.ID, "Owned")

	_, err := s.GetChat(context.Background(), chat.ID, other.ID)
	notOwned := err

	_, err = s.GetChat(context.Background(), uuid.NewString(), other.ID)
	missing := err

	assert.ErrorIs(t, notOwned, core.ErrNotFound)
	assert.Equal(t, missing, notOwned)
}

func TestListChatsOrderAndProjection(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	u := newTestUser(t, s, "list@example.com")

	var last *models.Chat
	for i := 0; i < 3; i++ {
		last = newTestChat(t, s, u.ID, fmt.Sprintf("chat %d", i))
		time.Sleep(2 * time.Millisecond)
	}

	chats, err := s.ListChats(context.Background(), u.ID, 50)
	require.NoError(t, err)
	require.Len(t, chats, 3)
	assert.Equal(t, last.ID, chats[0].ID)
	assert.True(t, chats[0].UpdatedAt.After(chats[2].UpdatedAt) || chats[0].UpdatedAt.Equal(chats[2].UpdatedAt))

	limited, err := s.ListChats(context.Background(), u.ID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestDeleteUserCascades(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	u := newTestUser(t, s, "cascade@example.com")
	chat := newTestChat(t, s, u.ID, "Doomed")

	require.NoError(t, s.DeleteUser(context.Background(), u.ID))

	_, err := s.GetUserByID(context.Background(), u.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	// The chat is gone for everyone, including its former owner.
	_, err = s.GetChat(context.Background(), chat.ID, u.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSaveExchangePreservesCreatedAt(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	u := newTestUser(t, s, "save@example.com")
	chat := newTestChat(t, s, u.ID, "First")
	created := chat.CreatedAt

	chat.Messages = append(chat.Messages,
		models.Message{ID: uuid.NewString(), Role: models.RoleUser, Content: "more"},
		models.Message{ID: uuid.NewString(), Role: models.RoleAssistant, Content: "reply"},
	)
	require.NoError(t, s.SaveExchange(context.Background(), chat, false, chat.Messages[2:]))

	got, err := s.GetChat(context.Background(), chat.ID, u.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 4)
	assert.Equal(t, created, got.CreatedAt)
	assert.False(t, got.UpdatedAt.Before(created))
}

func TestUpdateProfileDuplicateEmail(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	a := newTestUser(t, s, "a@dup.com")
	newTestUser(t, s, "b@dup.com")

	_, err := s.UpdateProfile(context.Background(), a.ID, "", "b@dup.com")
	assert.ErrorIs(t, err, core.ErrDuplicateEmail)
}
