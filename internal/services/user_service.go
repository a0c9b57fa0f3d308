package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/princekumar9234/DarkBot/internal/auth"
	"github.com/princekumar9234/DarkBot/internal/core"
	"github.com/princekumar9234/DarkBot/internal/models"
)

// UserService owns signup, login and profile maintenance.
type UserService struct {
	store core.Store
}

func NewUserService(store core.Store) *UserService {
	return &UserService{store: store}
}

// SignupInput carries the raw signup form fields.
type SignupInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Signup validates the form, hashes the password and creates the user with
// default preferences. Fails with core.ErrDuplicateEmail when the email is
// taken.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, core.NewValidationError("please provide all required fields")
	}
	if len(in.Password) < auth.MinPasswordLength {
		return nil, core.NewValidationError("password must be at least 6 characters")
	}
	if in.Password != in.ConfirmPassword {
		return nil, core.NewValidationError("passwords do not match")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Preferences: models.Preferences{
			AIProvider:  "gemini",
			Theme:       "dark",
			AccentColor: "purple",
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials via a one-way comparison. A missing account
// and a wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, core.NewValidationError("please provide email and password")
	}
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, core.ErrInvalidCredentials
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, core.ErrInvalidCredentials
	}
	return user, nil
}

// Get returns the user record by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.store.GetUserByID(ctx, id)
}

// UpdateProfile changes name and/or email. Fails with core.ErrDuplicateEmail
// when the new email belongs to another account.
func (s *UserService) UpdateProfile(ctx context.Context, id, name, email string) (*models.User, error) {
	return s.store.UpdateProfile(ctx, id, strings.TrimSpace(name), normalizeEmail(email))
}

// ChangePassword verifies the current password before storing a new hash.
func (s *UserService) ChangePassword(ctx context.Context, id, current, newPassword, confirm string) error {
	if current == "" || newPassword == "" {
		return core.NewValidationError("please provide current and new password")
	}
	if len(newPassword) < auth.MinPasswordLength {
		return core.NewValidationError("new password must be at least 6 characters")
	}
	if newPassword != confirm {
		return core.NewValidationError("new passwords do not match")
	}

	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, current) {
		return core.ErrWrongPassword
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.store.UpdatePassword(ctx, id, hash)
}

// UpdatePreferences applies the provided fields; empty fields keep their
// current values.
func (s *UserService) UpdatePreferences(ctx context.Context, id string, prefs models.Preferences) (*models.User, error) {
	return s.store.UpdatePreferences(ctx, id, prefs)
}

// DeleteAccount removes the user and every chat they own.
func (s *UserService) DeleteAccount(ctx context.Context, id string) error {
	if err := s.store.DeleteChatsByUser(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteUser(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
