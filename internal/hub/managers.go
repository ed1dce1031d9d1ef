// ABOUTME: Registry of connected manager dashboards.
// ABOUTME: Broadcasts every frame to all managers, skipping failed writes.

package hub

import (
	"log/slog"
	"sync"
)

// ManagerRegistry tracks all connected manager dashboards. Unlike users,
// managers are anonymous peers; each connection gets a caller-assigned ID.
type ManagerRegistry struct {
	conns  map[string]Conn
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewManagerRegistry creates an empty manager registry.
func NewManagerRegistry(logger *slog.Logger) *ManagerRegistry {
	return &ManagerRegistry{
		conns:  make(map[string]Conn),
		logger: logger,
	}
}

// Add registers a manager connection under the given ID.
func (r *ManagerRegistry) Add(id string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[id] = conn
	r.logger.Info("=== MANAGER CONNECTED ===",
		"manager_id", id,
		"total_managers", len(r.conns),
	)
}

// Remove unregisters a manager connection.
func (r *ManagerRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[id]; !ok {
		return
	}

	delete(r.conns, id)
	r.logger.Info("=== MANAGER DISCONNECTED ===",
		"manager_id", id,
		"total_managers", len(r.conns),
	)
}

// Broadcast delivers data to every connected manager. A failed write to one
// manager does not stop delivery to the rest.
func (r *ManagerRegistry) Broadcast(data []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, conn := range r.conns {
		if err := conn.Send(data); err != nil {
			r.logger.Warn("failed to deliver frame to manager", "manager_id", id, "error", err)
		}
	}
}

// Count returns the number of connected managers.
func (r *ManagerRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}
