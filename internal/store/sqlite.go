// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides user persistence with automatic schema creation and cascade delete

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timeLayout is a fixed-width UTC timestamp format. Unlike RFC3339Nano it
// always emits nine fractional digits, so string comparison in SQL orders
// rows chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			chat_id TEXT NOT NULL UNIQUE,
			email TEXT,
			phone TEXT,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_users_chat_id ON users(chat_id);

		CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_conversations_user_created
			ON conversations(user_id, created_at);

		CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			sender TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE,

			CHECK (sender IN ('user', 'bot', 'manager', 'action'))
		);

		CREATE INDEX IF NOT EXISTS idx_messages_conversation_created
			ON messages(conversation_id, created_at);

		CREATE TABLE IF NOT EXISTS provider_threads (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			provider_thread_id TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_provider_threads_user ON provider_threads(user_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// isConstraintViolation checks if the error is a SQLite UNIQUE constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed")
}

// nullString returns nil for empty strings, otherwise the string itself
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// EnsureUser returns the user with the given chat ID, creating one if absent.
// Safe under concurrent first contact: a lost insert race falls back to
// re-reading the row the winner created.
func (s *SQLiteStore) EnsureUser(ctx context.Context, chatID string) (*User, error) {
	user, err := s.GetUserByChatID(ctx, chatID)
	if err == nil {
		return user, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	user = &User{
		ID:        uuid.New().String(),
		ChatID:    chatID,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO users (id, chat_id, email, phone, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		user.ID,
		user.ChatID,
		nullString(user.Email),
		nullString(user.Phone),
		user.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		if isConstraintViolation(err) {
			// Another connection created the user first
			return s.GetUserByChatID(ctx, chatID)
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}

	s.logger.Debug("created user", "id", user.ID, "chat_id", chatID)
	return user, nil
}

// GetUserByChatID retrieves a user by their external chat ID.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) GetUserByChatID(ctx context.Context, chatID string) (*User, error) {
	query := `
		SELECT id, chat_id, email, phone, created_at
		FROM users
		WHERE chat_id = ?
	`

	row := s.db.QueryRowContext(ctx, query, chatID)
	return scanUser(row)
}

// scanUser scans a single user row, handling nullable columns.
func scanUser(row *sql.Row) (*User, error) {
	var user User
	var email, phone sql.NullString
	var createdAtStr string

	err := row.Scan(&user.ID, &user.ChatID, &email, &phone, &createdAtStr)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	user.Email = email.String
	user.Phone = phone.String
	user.CreatedAt, err = time.Parse(timeLayout, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &user, nil
}

// ListUsers returns all users ordered by creation time.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*User, error) {
	query := `
		SELECT id, chat_id, email, phone, created_at
		FROM users
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var user User
		var email, phone sql.NullString
		var createdAtStr string

		if err := rows.Scan(&user.ID, &user.ChatID, &email, &phone, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}

		user.Email = email.String
		user.Phone = phone.String
		user.CreatedAt, err = time.Parse(timeLayout, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}

	return users, nil
}

// DeleteUser removes a user and everything hanging off them: conversations,
// messages, and the provider thread binding. The statement order matters;
// children go before the user row. Returns ErrNotFound if the user doesn't
// exist.
func (s *SQLiteStore) DeleteUser(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM messages WHERE conversation_id IN
			(SELECT id FROM conversations WHERE user_id = ?)
	`, userID); err != nil {
		return fmt.Errorf("deleting messages: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("deleting conversations: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM provider_threads WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("deleting provider thread binding: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}

	s.logger.Info("deleted user", "id", userID)
	return nil
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
