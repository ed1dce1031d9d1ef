// ABOUTME: Registry of currently connected users, keyed by chat ID.
// ABOUTME: Last connection wins; delivery to absent users is a silent no-op.

package hub

import (
	"log/slog"
	"sync"
)

// UserRegistry tracks the live connection for each user. A user has at most
// one registered connection; connecting again replaces the previous one.
type UserRegistry struct {
	conns  map[string]Conn
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewUserRegistry creates an empty user registry.
func NewUserRegistry(logger *slog.Logger) *UserRegistry {
	return &UserRegistry{
		conns:  make(map[string]Conn),
		logger: logger,
	}
}

// Connect registers conn as the live connection for chatID, replacing any
// previous connection. The replaced connection is not closed here; its own
// read loop notices the dead socket and cleans up.
func (r *UserRegistry) Connect(chatID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, replaced := r.conns[chatID]
	r.conns[chatID] = conn

	r.logger.Info("=== USER CONNECTED ===",
		"chat_id", chatID,
		"replaced", replaced,
		"total_users", len(r.conns),
	)
}

// Disconnect removes the registration for chatID, but only if conn is still
// the registered connection. A stale connection's teardown must not evict a
// newer connection for the same user.
func (r *UserRegistry) Disconnect(chatID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.conns[chatID]
	if !ok || current != conn {
		return
	}

	delete(r.conns, chatID)
	r.logger.Info("=== USER DISCONNECTED ===",
		"chat_id", chatID,
		"total_users", len(r.conns),
	)
}

// Send delivers data to the user's live connection. Delivery is best-effort:
// if the user is not connected, or the write fails, the frame is dropped.
func (r *UserRegistry) Send(chatID string, data []byte) {
	r.mu.RLock()
	conn, ok := r.conns[chatID]
	r.mu.RUnlock()

	if !ok {
		r.logger.Debug("user not connected, dropping frame", "chat_id", chatID)
		return
	}

	if err := conn.Send(data); err != nil {
		r.logger.Warn("failed to deliver frame to user", "chat_id", chatID, "error", err)
	}
}

// Connected reports whether chatID has a live connection.
func (r *UserRegistry) Connected(chatID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.conns[chatID]
	return ok
}

// Count returns the number of connected users.
func (r *UserRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}
