// ABOUTME: Tests for provider thread binding store operations
// ABOUTME: Covers creation, the one-binding-per-user constraint, and lookup

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateThreadBinding(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user, err := store.EnsureUser(ctx, "chat-bind-1")
	require.NoError(t, err)

	binding := &ThreadBinding{
		ID:               "binding-create",
		UserID:           user.ID,
		ProviderThreadID: "thread_abc123",
		CreatedAt:        time.Now().UTC(),
	}
	require.NoError(t, store.CreateThreadBinding(ctx, binding))

	got, err := store.GetThreadBinding(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "binding-create", got.ID)
	assert.Equal(t, user.ID, got.UserID)
	assert.Equal(t, "thread_abc123", got.ProviderThreadID)
	assert.True(t, got.CreatedAt.Equal(binding.CreatedAt))
}

func TestCreateThreadBinding_Duplicate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user, err := store.EnsureUser(ctx, "chat-bind-2")
	require.NoError(t, err)

	first := &ThreadBinding{
		ID:               "binding-first",
		UserID:           user.ID,
		ProviderThreadID: "thread_one",
		CreatedAt:        time.Now().UTC(),
	}
	require.NoError(t, store.CreateThreadBinding(ctx, first))

	second := &ThreadBinding{
		ID:               "binding-second",
		UserID:           user.ID,
		ProviderThreadID: "thread_two",
		CreatedAt:        time.Now().UTC(),
	}
	err = store.CreateThreadBinding(ctx, second)
	assert.ErrorIs(t, err, ErrDuplicateBinding)

	// The original binding survives
	got, err := store.GetThreadBinding(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "thread_one", got.ProviderThreadID)
}

func TestGetThreadBinding_NotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user, err := store.EnsureUser(ctx, "chat-bind-3")
	require.NoError(t, err)

	_, err = store.GetThreadBinding(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
