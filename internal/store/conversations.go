// ABOUTME: Conversation and message persistence for the SQLite store
// ABOUTME: Latest-conversation selection, idempotent creation, ordered history

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LatestConversation returns the user's most recently created conversation.
// Returns ErrNotFound if the user has no conversations.
func (s *SQLiteStore) LatestConversation(ctx context.Context, userID string) (*Conversation, error) {
	query := `
		SELECT id, user_id, created_at
		FROM conversations
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`

	return scanConversation(s.db.QueryRowContext(ctx, query, userID))
}

// EnsureConversation returns the user's most recently created conversation,
// creating one if none exists. Select and insert run in one transaction;
// callers that can race on first contact for the same user must serialize
// per user (the router's sequence lock does this).
func (s *SQLiteStore) EnsureConversation(ctx context.Context, userID string) (*Conversation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning conversation transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		SELECT id, user_id, created_at
		FROM conversations
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`

	conv, err := scanConversation(tx.QueryRowContext(ctx, query, userID))
	if err == nil {
		return conv, tx.Commit()
	}
	if err != ErrNotFound {
		return nil, err
	}

	conv = &Conversation{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversations (id, user_id, created_at)
		VALUES (?, ?, ?)
	`, conv.ID, conv.UserID, conv.CreatedAt.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("inserting conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing conversation: %w", err)
	}

	s.logger.Debug("created conversation", "id", conv.ID, "user_id", userID)
	return conv, nil
}

// scanConversation scans a single conversation row.
func scanConversation(row *sql.Row) (*Conversation, error) {
	var conv Conversation
	var createdAtStr string

	err := row.Scan(&conv.ID, &conv.UserID, &createdAtStr)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning conversation: %w", err)
	}

	conv.CreatedAt, err = time.Parse(timeLayout, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &conv, nil
}

// AppendMessage persists a message to its conversation.
func (s *SQLiteStore) AppendMessage(ctx context.Context, msg *Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, sender, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		msg.ID,
		msg.ConversationID,
		msg.Sender,
		msg.Content,
		msg.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	s.logger.Debug("appended message",
		"id", msg.ID,
		"conversation_id", msg.ConversationID,
		"sender", msg.Sender,
	)
	return nil
}

// Messages retrieves messages for a conversation in chronological order
// (oldest first). If limit is positive, only the most recent `limit`
// messages are returned, still in chronological order.
func (s *SQLiteStore) Messages(ctx context.Context, conversationID string, limit int) ([]*Message, error) {
	var query string
	var args []any

	if limit > 0 {
		query = `
			SELECT id, conversation_id, sender, content, created_at
			FROM (
				SELECT id, conversation_id, sender, content, created_at
				FROM messages
				WHERE conversation_id = ?
				ORDER BY created_at DESC
				LIMIT ?
			)
			ORDER BY created_at ASC
		`
		args = []any{conversationID, limit}
	} else {
		query = `
			SELECT id, conversation_id, sender, content, created_at
			FROM messages
			WHERE conversation_id = ?
			ORDER BY created_at ASC
		`
		args = []any{conversationID}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var msg Message
		var createdAtStr string

		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Sender, &msg.Content, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}

		msg.CreatedAt, err = time.Parse(timeLayout, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing message created_at: %w", err)
		}

		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating message rows: %w", err)
	}

	return messages, nil
}
