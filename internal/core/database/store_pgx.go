package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/princekumar9234/DarkBot/internal/config"
	"github.com/princekumar9234/DarkBot/internal/core"
	"github.com/princekumar9234/DarkBot/internal/models"
)

const uniqueViolation = "23505"

// PostgresStore implements core.Store on top of Postgres via the pgx stdlib
// driver.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(ctx context.Context, cfg *config.Config) (*PostgresStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("store configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// isValidID keeps malformed identifiers from reaching the UUID columns, where
// they would surface as query errors instead of not-found.
func isValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Users

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, name, email, password_hash, ai_provider, theme, accent_color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, now()), COALESCE($8, now()))
	`
	_, err := s.db.ExecContext(ctx, q,
		user.ID, user.Name, user.Email, user.PasswordHash,
		user.Preferences.AIProvider, user.Preferences.Theme, user.Preferences.AccentColor,
		user.CreatedAt)
	if isUniqueViolation(err) {
		return core.ErrDuplicateEmail
	}
	return err
}

const userColumns = `id, name, email, password_hash, ai_provider, theme, accent_color, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&u.Preferences.AIProvider, &u.Preferences.Theme, &u.Preferences.AccentColor,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(s.db.QueryRowContext(ctx, q, email))
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if !isValidID(id) {
		return nil, core.ErrNotFound
	}
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.db.QueryRowContext(ctx, q, id))
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, id, name, email string) (*models.User, error) {
	if !isValidID(id) {
		return nil, core.ErrNotFound
	}
	const q = `
		UPDATE users
		SET name = COALESCE(NULLIF($2, ''), name),
		    email = COALESCE(NULLIF($3, ''), email),
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns
	u, err := scanUser(s.db.QueryRowContext(ctx, q, id, name, email))
	if isUniqueViolation(err) {
		return nil, core.ErrDuplicateEmail
	}
	return u, err
}

func (s *PostgresStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if !isValidID(id) {
		return core.ErrNotFound
	}
	const q = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	res, err := s.db.ExecContext(ctx, q, id, passwordHash)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdatePreferences(ctx context.Context, id string, prefs models.Preferences) (*models.User, error) {
	if !isValidID(id) {
		return nil, core.ErrNotFound
	}
	const q = `
		UPDATE users
		SET ai_provider = COALESCE(NULLIF($2, ''), ai_provider),
		    theme = COALESCE(NULLIF($3, ''), theme),
		    accent_color = COALESCE(NULLIF($4, ''), accent_color),
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(s.db.QueryRowContext(ctx, q, id, prefs.AIProvider, prefs.Theme, prefs.AccentColor))
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id string) error {
	if !isValidID(id) {
		return core.ErrNotFound
	}
	// Chats and messages go with the user via ON DELETE CASCADE.
	const q = `DELETE FROM users WHERE id = $1`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Chats

func (s *PostgresStore) GetChat(ctx context.Context, id, userID string) (*models.Chat, error) {
	if !isValidID(id) || !isValidID(userID) {
		return nil, core.ErrNotFound
	}
	const q = `
		SELECT id, user_id, title, ai_provider, created_at, updated_at
		FROM chats
		WHERE id = $1 AND user_id = $2
	`
	var c models.Chat
	err := s.db.QueryRowContext(ctx, q, id, userID).Scan(
		&c.ID, &c.UserID, &c.Title, &c.AIProvider, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	const mq = `
		SELECT id, role, content, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY position ASC, created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, mq, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		c.Messages = append(c.Messages, m)
	}
	return &c, rows.Err()
}

func (s *PostgresStore) ListChats(ctx context.Context, userID string, limit int) ([]models.ChatSummary, error) {
	if !isValidID(userID) {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	const q = `
		SELECT id, title, ai_provider, created_at, updated_at
		FROM chats
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatSummary
	for rows.Next() {
		var c models.ChatSummary
		if err := rows.Scan(&c.ID, &c.Title, &c.AIProvider, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SaveExchange(ctx context.Context, chat *models.Chat, isNew bool, turns []models.Message) error {
	if chat == nil {
		return errors.New("nil chat")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if isNew {
		const q = `
			INSERT INTO chats (id, user_id, title, ai_provider, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
		`
		if _, err := tx.ExecContext(ctx, q, chat.ID, chat.UserID, chat.Title, chat.AIProvider); err != nil {
			return err
		}
	} else {
		const q = `
			UPDATE chats SET title = $2, ai_provider = $3, updated_at = now()
			WHERE id = $1
		`
		if _, err := tx.ExecContext(ctx, q, chat.ID, chat.Title, chat.AIProvider); err != nil {
			return err
		}
	}

	const mq = `
		INSERT INTO messages (id, chat_id, position, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	base := len(chat.Messages) - len(turns)
	for i, m := range turns {
		if _, err := tx.ExecContext(ctx, mq, m.ID, chat.ID, base+i, m.Role, m.Content, m.Timestamp); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) DeleteChat(ctx context.Context, id, userID string) error {
	if !isValidID(id) || !isValidID(userID) {
		return core.ErrNotFound
	}
	const q = `DELETE FROM chats WHERE id = $1 AND user_id = $2`
	res, err := s.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteChatsByUser(ctx context.Context, userID string) error {
	if !isValidID(userID) {
		return nil
	}
	const q = `DELETE FROM chats WHERE user_id = $1`
	_, err := s.db.ExecContext(ctx, q, userID)
	return err
}

var _ core.Store = (*PostgresStore)(nil)
