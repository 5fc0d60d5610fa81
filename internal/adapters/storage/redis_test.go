package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escolaweb/portal-core/internal/ports"
	"github.com/escolaweb/portal-core/internal/testutil"
)

func TestRedisRoundTrip(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer func() {
		if err := client.Close(); err != nil {
			t.Logf("warning: failed to close redis client: %v", err)
		}
	}()

	ctx := context.Background()
	store := NewRedis(client)

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "session.access_token", "tok"))
	got, err := store.Get(ctx, "session.access_token")
	require.NoError(t, err)
	assert.Equal(t, "tok", got)

	require.NoError(t, store.Delete(ctx, "session.access_token"))
	_, err = store.Get(ctx, "session.access_token")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)

	assert.NoError(t, store.Delete(ctx, "session.access_token"))
}

func TestRedisKeyPrefix(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer func() {
		if err := client.Close(); err != nil {
			t.Logf("warning: failed to close redis client: %v", err)
		}
	}()

	ctx := context.Background()
	store := NewRedisWithPrefix(client, "kiosk:")
	require.NoError(t, store.Set(ctx, "k", "v"))

	raw, err := client.Get(ctx, "kiosk:k").Result()
	require.NoError(t, err)
	assert.Equal(t, "v", raw)

	// A store with a different prefix cannot see the key.
	other := NewRedisWithPrefix(client, "other:")
	_, err = other.Get(ctx, "k")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)
}
