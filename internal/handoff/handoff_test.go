// ABOUTME: Tests for the manager handoff tracker.
// ABOUTME: Validates claim, release, and idempotency of both.

package handoff

import (
	"log/slog"
	"testing"
)

func TestTracker(t *testing.T) {
	t.Run("unclaimed by default", func(t *testing.T) {
		tracker := New(slog.Default())

		if tracker.IsClaimed("chat-1") {
			t.Error("fresh chat should not be claimed")
		}
	})

	t.Run("claim then release", func(t *testing.T) {
		tracker := New(slog.Default())

		tracker.Claim("chat-1")
		if !tracker.IsClaimed("chat-1") {
			t.Error("expected chat to be claimed")
		}

		tracker.Release("chat-1")
		if tracker.IsClaimed("chat-1") {
			t.Error("expected chat to be released")
		}
	})

	t.Run("claims are per chat", func(t *testing.T) {
		tracker := New(slog.Default())

		tracker.Claim("chat-1")
		if tracker.IsClaimed("chat-2") {
			t.Error("claiming one chat should not claim another")
		}
	})

	t.Run("double claim and double release are no-ops", func(t *testing.T) {
		tracker := New(slog.Default())

		tracker.Claim("chat-1")
		tracker.Claim("chat-1")
		if !tracker.IsClaimed("chat-1") {
			t.Error("expected chat to stay claimed")
		}

		tracker.Release("chat-1")
		tracker.Release("chat-1")
		if tracker.IsClaimed("chat-1") {
			t.Error("expected chat to stay released")
		}
	})
}
