// ABOUTME: Provider thread binding persistence for the SQLite store
// ABOUTME: Maps each user to at most one remote AI provider thread

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreateThreadBinding records that a user's conversation is backed by a
// provider thread. Returns ErrDuplicateBinding if the user already has one.
func (s *SQLiteStore) CreateThreadBinding(ctx context.Context, binding *ThreadBinding) error {
	query := `
		INSERT INTO provider_threads (id, user_id, provider_thread_id, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		binding.ID,
		binding.UserID,
		binding.ProviderThreadID,
		binding.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateBinding
		}
		return fmt.Errorf("inserting thread binding: %w", err)
	}

	s.logger.Debug("created thread binding",
		"user_id", binding.UserID,
		"provider_thread_id", binding.ProviderThreadID,
	)
	return nil
}

// GetThreadBinding returns the provider thread binding for a user.
// Returns ErrNotFound if the user has no binding.
func (s *SQLiteStore) GetThreadBinding(ctx context.Context, userID string) (*ThreadBinding, error) {
	query := `
		SELECT id, user_id, provider_thread_id, created_at
		FROM provider_threads
		WHERE user_id = ?
	`

	var binding ThreadBinding
	var createdAtStr string

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&binding.ID,
		&binding.UserID,
		&binding.ProviderThreadID,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying thread binding: %w", err)
	}

	binding.CreatedAt, err = time.Parse(timeLayout, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &binding, nil
}
