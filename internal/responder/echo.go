// ABOUTME: Echo responder used when no AI provider is configured.
// ABOUTME: Replies with the user's own text after a fixed delay.

package responder

import (
	"context"
	"log/slog"
	"time"

	"github.com/helpline/switchboard/internal/store"
)

// Echo replies to every message with the message itself, after a delay that
// imitates a thinking assistant. It needs no provider and no thread state.
type Echo struct {
	delay  time.Duration
	logger *slog.Logger
}

// NewEcho creates an echo responder with the given reply delay.
func NewEcho(delay time.Duration, logger *slog.Logger) *Echo {
	return &Echo{
		delay:  delay,
		logger: logger.With("component", "echo"),
	}
}

// Reply waits for the configured delay, then echoes the message text.
func (e *Echo) Reply(ctx context.Context, user *store.User, text string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(e.delay):
	}

	e.logger.Debug("echoing message", "chat_id", user.ChatID)
	return "echo: " + text, nil
}

var _ Responder = (*Echo)(nil)
