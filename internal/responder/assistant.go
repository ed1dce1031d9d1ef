// ABOUTME: Assistant responder backed by a remote AI provider thread per user.
// ABOUTME: Handles thread creation, busy retries, and force-completion of stuck runs.

package responder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/helpline/switchboard/internal/store"
)

// maxAppendAttempts bounds how often an append is retried while the
// provider thread reports a run still active.
const maxAppendAttempts = 5

// Provider is the remote AI surface the assistant drives. Implementations
// map provider-specific failures to ErrThreadBusy where retrying applies.
type Provider interface {
	// CreateThread starts a provider thread seeded with the first user
	// message and returns the provider's thread ID.
	CreateThread(ctx context.Context, seed string) (string, error)

	// AppendMessage adds a user message to an existing thread.
	AppendMessage(ctx context.Context, threadID, text string) error

	// Run executes the assistant against the thread and returns the
	// reply text once the run completes.
	Run(ctx context.Context, threadID string) (string, error)

	// ForceComplete resolves runs stuck waiting on tool outputs and
	// blocks until no run is active on the thread.
	ForceComplete(ctx context.Context, threadID string) error
}

// Assistant produces replies by maintaining one provider thread per user.
// The thread binding is stored so the conversation context survives
// reconnects and restarts.
type Assistant struct {
	store      store.Store
	provider   Provider
	logger     *slog.Logger
	retryDelay time.Duration
}

// NewAssistant creates an assistant responder.
func NewAssistant(st store.Store, provider Provider, logger *slog.Logger) *Assistant {
	return &Assistant{
		store:      st,
		provider:   provider,
		logger:     logger.With("component", "assistant"),
		retryDelay: time.Second,
	}
}

// Reply ensures the user's provider thread exists, appends the message, and
// runs the assistant. A thread created on this turn is seeded with the
// message, so the append is skipped.
func (a *Assistant) Reply(ctx context.Context, user *store.User, text string) (string, error) {
	threadID, seeded, err := a.ensureThread(ctx, user, text)
	if err != nil {
		return "", err
	}

	if !seeded {
		if err := a.append(ctx, user, threadID, text); err != nil {
			return "", &ProviderError{Err: err}
		}
	}

	reply, err := a.provider.Run(ctx, threadID)
	if err != nil {
		return "", &ProviderError{Err: err}
	}

	a.logger.Info("assistant replied", "chat_id", user.ChatID, "length", len(reply))
	return stripCitations(reply), nil
}

// ensureThread returns the user's provider thread ID, creating the thread
// and its binding on first contact. seeded reports whether the thread was
// created just now with text as its first message.
func (a *Assistant) ensureThread(ctx context.Context, user *store.User, text string) (threadID string, seeded bool, err error) {
	binding, err := a.store.GetThreadBinding(ctx, user.ID)
	if err == nil {
		return binding.ProviderThreadID, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", false, err
	}

	threadID, err = a.provider.CreateThread(ctx, text)
	if err != nil {
		return "", false, &ProviderError{Err: fmt.Errorf("creating provider thread: %w", err)}
	}

	binding = &store.ThreadBinding{
		ID:               uuid.New().String(),
		UserID:           user.ID,
		ProviderThreadID: threadID,
		CreatedAt:        time.Now().UTC(),
	}
	err = a.store.CreateThreadBinding(ctx, binding)
	if errors.Is(err, store.ErrDuplicateBinding) {
		// Lost a creation race; use the winner's thread. The orphaned
		// provider thread already holds text, so it must not be reused.
		existing, getErr := a.store.GetThreadBinding(ctx, user.ID)
		if getErr != nil {
			return "", false, getErr
		}
		a.logger.Warn("discarding provider thread from lost binding race",
			"chat_id", user.ChatID, "orphaned_thread", threadID)
		return existing.ProviderThreadID, false, nil
	}
	if err != nil {
		return "", false, err
	}

	a.logger.Info("created provider thread", "chat_id", user.ChatID, "provider_thread_id", threadID)
	return threadID, true, nil
}

// append adds the message to the thread, retrying while the thread is busy.
// After the attempts are exhausted the outstanding runs are force-completed
// and the append is tried one final time.
func (a *Assistant) append(ctx context.Context, user *store.User, threadID, text string) error {
	for attempt := 1; attempt <= maxAppendAttempts; attempt++ {
		err := a.provider.AppendMessage(ctx, threadID, text)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrThreadBusy) {
			return err
		}

		a.logger.Warn("thread busy, retrying append",
			"chat_id", user.ChatID,
			"attempt", attempt,
			"max_attempts", maxAppendAttempts,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(a.retryDelay):
		}
	}

	a.logger.Warn("append attempts exhausted, force-completing outstanding runs",
		"chat_id", user.ChatID, "provider_thread_id", threadID)
	if err := a.provider.ForceComplete(ctx, threadID); err != nil {
		return fmt.Errorf("force-completing runs: %w", err)
	}

	return a.provider.AppendMessage(ctx, threadID, text)
}

var _ Responder = (*Assistant)(nil)
