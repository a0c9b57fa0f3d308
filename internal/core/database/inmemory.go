package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/princekumar9234/DarkBot/internal/core"
	"github.com/princekumar9234/DarkBot/internal/models"
)

// MemoryStore is a map-backed core.Store used by tests and local runs
// without a database.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*models.User
	chats map[string]*models.Chat
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*models.User),
		chats: make(map[string]*models.Chat),
	}
}

func (s *MemoryStore) Close() error { return nil }

func cloneUser(u *models.User) *models.User {
	cp := *u
	return &cp
}

func cloneChat(c *models.Chat) *models.Chat {
	cp := *c
	cp.Messages = append([]models.Message(nil), c.Messages...)
	return &cp
}

// Users

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return core.ErrDuplicateEmail
		}
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *MemoryStore) UpdateProfile(_ context.Context, id, name, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	if email != "" && email != u.Email {
		for _, other := range s.users {
			if other.Email == email {
				return nil, core.ErrDuplicateEmail
			}
		}
		u.Email = email
	}
	if name != "" {
		u.Name = name
	}
	u.UpdatedAt = time.Now()
	return cloneUser(u), nil
}

func (s *MemoryStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) UpdatePreferences(_ context.Context, id string, prefs models.Preferences) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	if prefs.AIProvider != "" {
		u.Preferences.AIProvider = prefs.AIProvider
	}
	if prefs.Theme != "" {
		u.Preferences.Theme = prefs.Theme
	}
	if prefs.AccentColor != "" {
		u.Preferences.AccentColor = prefs.AccentColor
	}
	u.UpdatedAt = time.Now()
	return cloneUser(u), nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.users, id)
	for cid, c := range s.chats {
		if c.UserID == id {
			delete(s.chats, cid)
		}
	}
	return nil
}

// Chats

func (s *MemoryStore) GetChat(_ context.Context, id, userID string) (*models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chats[id]
	if !ok || c.UserID != userID {
		return nil, core.ErrNotFound
	}
	return cloneChat(c), nil
}

func (s *MemoryStore) ListChats(_ context.Context, userID string, limit int) ([]models.ChatSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ChatSummary
	for _, c := range s.chats {
		if c.UserID != userID {
			continue
		}
		out = append(out, models.ChatSummary{
			ID:         c.ID,
			Title:      c.Title,
			AIProvider: c.AIProvider,
			CreatedAt:  c.CreatedAt,
			UpdatedAt:  c.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) SaveExchange(_ context.Context, chat *models.Chat, isNew bool, _ []models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneChat(chat)
	now := time.Now()
	if isNew {
		cp.CreatedAt = now
	} else if existing, ok := s.chats[chat.ID]; ok {
		cp.CreatedAt = existing.CreatedAt
	}
	cp.UpdatedAt = now
	s.chats[chat.ID] = cp
	chat.CreatedAt = cp.CreatedAt
	chat.UpdatedAt = cp.UpdatedAt
	return nil
}

func (s *MemoryStore) DeleteChat(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[id]
	if !ok || c.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.chats, id)
	return nil
}

func (s *MemoryStore) DeleteChatsByUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.chats {
		if c.UserID == userID {
			delete(s.chats, id)
		}
	}
	return nil
}

var _ core.Store = (*MemoryStore)(nil)
