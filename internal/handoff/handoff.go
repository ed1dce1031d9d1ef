// ABOUTME: Tracks which chats a human manager has claimed.
// ABOUTME: While claimed, automated replies for the chat are suppressed.

package handoff

import (
	"log/slog"
	"sync"
)

// Tracker is a thread-safe set of claimed chat IDs. Claiming a chat hands
// the conversation to a human manager; releasing it hands the conversation
// back to the automated responder. Claims live in memory only and reset on
// restart.
type Tracker struct {
	mu      sync.RWMutex
	claimed map[string]struct{}
	logger  *slog.Logger
}

// New creates an empty handoff tracker.
func New(logger *slog.Logger) *Tracker {
	return &Tracker{
		claimed: make(map[string]struct{}),
		logger:  logger,
	}
}

// Claim marks the chat as handled by a manager. Claiming an already
// claimed chat is a no-op.
func (t *Tracker) Claim(chatID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.claimed[chatID]; ok {
		return
	}

	t.claimed[chatID] = struct{}{}
	t.logger.Info("chat claimed by manager", "chat_id", chatID, "claimed_total", len(t.claimed))
}

// Release hands the chat back to the automated responder. Releasing an
// unclaimed chat is a no-op.
func (t *Tracker) Release(chatID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.claimed[chatID]; !ok {
		return
	}

	delete(t.claimed, chatID)
	t.logger.Info("chat released to responder", "chat_id", chatID, "claimed_total", len(t.claimed))
}

// IsClaimed reports whether a manager currently handles the chat.
func (t *Tracker) IsClaimed(chatID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.claimed[chatID]
	return ok
}
