// ABOUTME: Store interface and data types for switchboard persistence
// ABOUTME: Defines User, Conversation, Message, ThreadBinding and the Store interface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateBinding is returned when a user already has a provider thread binding
var ErrDuplicateBinding = errors.New("provider thread binding already exists")

// Sender role constants for messages
const (
	SenderUser    = "user"    // End user message
	SenderBot     = "bot"     // AI or echo reply
	SenderManager = "manager" // Human operator message
	SenderAction  = "action"  // Operator-triggered action event
)

// User represents one end user, identified externally by their chat ID.
// The chat ID is stable across reconnects for the lifetime of the relationship.
type User struct {
	ID        string
	ChatID    string
	Email     string
	Phone     string
	CreatedAt time.Time
}

// Conversation is one message thread belonging to a user. A user may
// accumulate several conversations over time; the current one is always the
// most recently created.
type Conversation struct {
	ID        string
	UserID    string
	CreatedAt time.Time
}

// Message is a single message within a conversation. Immutable once saved.
type Message struct {
	ID             string
	ConversationID string
	Sender         string
	Content        string
	CreatedAt      time.Time
}

// ThreadBinding maps a user to their AI provider conversation handle.
// At most one binding exists per user.
type ThreadBinding struct {
	ID               string
	UserID           string
	ProviderThreadID string
	CreatedAt        time.Time
}

// Store defines the interface for user, conversation and message persistence
type Store interface {
	// Users
	EnsureUser(ctx context.Context, chatID string) (*User, error)
	GetUserByChatID(ctx context.Context, chatID string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	DeleteUser(ctx context.Context, userID string) error

	// Conversations
	EnsureConversation(ctx context.Context, userID string) (*Conversation, error)
	LatestConversation(ctx context.Context, userID string) (*Conversation, error)

	// Messages
	AppendMessage(ctx context.Context, msg *Message) error
	Messages(ctx context.Context, conversationID string, limit int) ([]*Message, error)

	// Provider thread bindings
	CreateThreadBinding(ctx context.Context, binding *ThreadBinding) error
	GetThreadBinding(ctx context.Context, userID string) (*ThreadBinding, error)

	// Close releases any resources held by the store
	Close() error
}
