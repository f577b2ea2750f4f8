package identity

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newOverrideStore(t *testing.T) (OverrideStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisOverrideStore(client, zap.NewNop()), mr
}

func TestRedisOverrideStoreLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stored overrides", func(t *testing.T) {
		store, mr := newOverrideStore(t)
		require.NoError(t, mr.Set("perm_overrides:u1", `{"can_create":true,"can_delete":false}`))

		overrides, err := store.Lookup(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, overrides)
		require.NotNil(t, overrides.CanCreate)
		assert.True(t, *overrides.CanCreate)
		require.NotNil(t, overrides.CanDelete)
		assert.False(t, *overrides.CanDelete)
		assert.Nil(t, overrides.CanEdit)
	})

	t.Run("absent record means no overrides", func(t *testing.T) {
		store, _ := newOverrideStore(t)

		overrides, err := store.Lookup(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, overrides)
	})

	t.Run("malformed record treated as absent", func(t *testing.T) {
		store, mr := newOverrideStore(t)
		require.NoError(t, mr.Set("perm_overrides:u2", "{not json"))

		overrides, err := store.Lookup(ctx, "u2")
		require.NoError(t, err)
		assert.Nil(t, overrides)
	})

	t.Run("surfaces connection errors", func(t *testing.T) {
		store, mr := newOverrideStore(t)
		mr.Close()

		_, err := store.Lookup(ctx, "u3")
		assert.Error(t, err)
	})
}
