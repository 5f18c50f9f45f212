package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore(time.Hour)

	token, err := store.Create(ctx, 42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)

	require.NoError(t, store.Destroy(ctx, token))

	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionStoreUnknownToken(t *testing.T) {
	store := NewMemorySessionStore(time.Hour)
	_, err := store.Resolve(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore(-time.Minute)

	token, err := store.Create(ctx, 7)
	require.NoError(t, err)

	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionTokensAreUnique(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore(time.Hour)

	a, err := store.Create(ctx, 1)
	require.NoError(t, err)
	b, err := store.Create(ctx, 1)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
