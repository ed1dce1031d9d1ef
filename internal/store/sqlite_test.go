// ABOUTME: Tests for SQLite store implementation
// ABOUTME: Covers user CRUD, idempotent creation, and cascade delete

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewSQLiteStore(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	// Verify the database file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "nested", "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	// Verify the database file was created in the nested directory
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created in nested directory")
	}
}

func TestEnsureUser(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	user, err := store.EnsureUser(ctx, "chat-abc123")
	if err != nil {
		t.Fatalf("EnsureUser failed: %v", err)
	}

	if user.ID == "" {
		t.Error("expected generated user ID, got empty string")
	}
	if user.ChatID != "chat-abc123" {
		t.Errorf("ChatID mismatch: got %q, want %q", user.ChatID, "chat-abc123")
	}
	if user.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestEnsureUser_ReturnsExisting(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	first, err := store.EnsureUser(ctx, "chat-abc123")
	if err != nil {
		t.Fatalf("first EnsureUser failed: %v", err)
	}

	second, err := store.EnsureUser(ctx, "chat-abc123")
	if err != nil {
		t.Fatalf("second EnsureUser failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("expected same user ID, got %q and %q", first.ID, second.ID)
	}
}

func TestGetUserByChatID(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	created, err := store.EnsureUser(ctx, "chat-xyz789")
	if err != nil {
		t.Fatalf("EnsureUser failed: %v", err)
	}

	got, err := store.GetUserByChatID(ctx, "chat-xyz789")
	if err != nil {
		t.Fatalf("GetUserByChatID failed: %v", err)
	}

	if got.ID != created.ID {
		t.Errorf("ID mismatch: got %q, want %q", got.ID, created.ID)
	}
	if got.ChatID != created.ChatID {
		t.Errorf("ChatID mismatch: got %q, want %q", got.ChatID, created.ChatID)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt mismatch: got %v, want %v", got.CreatedAt, created.CreatedAt)
	}
}

func TestGetUserByChatID_NotFound(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	_, err := store.GetUserByChatID(ctx, "nonexistent")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListUsers(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	for _, chatID := range []string{"chat-first", "chat-second", "chat-third"} {
		if _, err := store.EnsureUser(ctx, chatID); err != nil {
			t.Fatalf("EnsureUser(%q) failed: %v", chatID, err)
		}
		// Fixed-width timestamps order at nanosecond granularity, but two
		// inserts can still land on the same clock reading
		time.Sleep(time.Millisecond)
	}

	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}

	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	if users[0].ChatID != "chat-first" || users[2].ChatID != "chat-third" {
		t.Errorf("users not in creation order: got %q, %q, %q",
			users[0].ChatID, users[1].ChatID, users[2].ChatID)
	}
}

func TestDeleteUser(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	user, err := store.EnsureUser(ctx, "chat-doomed")
	if err != nil {
		t.Fatalf("EnsureUser failed: %v", err)
	}

	conv, err := store.EnsureConversation(ctx, user.ID)
	if err != nil {
		t.Fatalf("EnsureConversation failed: %v", err)
	}

	msg := &Message{
		ID:             "msg-1",
		ConversationID: conv.ID,
		Sender:         SenderUser,
		Content:        "hello",
		CreatedAt:      time.Now().UTC(),
	}
	if err := store.AppendMessage(ctx, msg); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	binding := &ThreadBinding{
		ID:               "binding-1",
		UserID:           user.ID,
		ProviderThreadID: "thread_remote_1",
		CreatedAt:        time.Now().UTC(),
	}
	if err := store.CreateThreadBinding(ctx, binding); err != nil {
		t.Fatalf("CreateThreadBinding failed: %v", err)
	}

	if err := store.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	// Everything hanging off the user must be gone too
	if _, err := store.GetUserByChatID(ctx, "chat-doomed"); err != ErrNotFound {
		t.Errorf("expected user gone, got %v", err)
	}
	if _, err := store.LatestConversation(ctx, user.ID); err != ErrNotFound {
		t.Errorf("expected conversation gone, got %v", err)
	}
	if _, err := store.GetThreadBinding(ctx, user.ID); err != ErrNotFound {
		t.Errorf("expected binding gone, got %v", err)
	}
	messages, err := store.Messages(ctx, conv.ID, 0)
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("expected 0 messages after delete, got %d", len(messages))
	}
}

func TestDeleteUser_NotFound(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	if err := store.DeleteUser(ctx, "nonexistent"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// newTestStore creates a SQLite store backed by a temp directory.
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}

	return store
}
