package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redislib.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func TestLoginAttempts_WindowBudget(t *testing.T) {
	mr, client := newTestClient(t)
	repo := NewLoginAttemptRepository(client, 3, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		allowed, err := repo.Allowed(ctx, "alice@x.com")
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d", i)

		count, err := repo.Fail(ctx, "alice@x.com")
		require.NoError(t, err)
		assert.Equal(t, int64(i), count)
	}

	allowed, err := repo.Allowed(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.False(t, allowed)

	ttl := mr.TTL("login_attempts:alice@x.com")
	assert.Equal(t, time.Minute, ttl)

	mr.FastForward(time.Minute + time.Second)
	allowed, err = repo.Allowed(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLoginAttempts_ResetAndIsolation(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewLoginAttemptRepository(client, 1, time.Minute)
	ctx := context.Background()

	_, err := repo.Fail(ctx, "alice@x.com")
	require.NoError(t, err)

	allowed, err := repo.Allowed(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = repo.Allowed(ctx, "bob@x.com")
	require.NoError(t, err)
	assert.True(t, allowed)

	require.NoError(t, repo.Reset(ctx, "alice@x.com"))
	allowed, err = repo.Allowed(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLoginAttempts_Disabled(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewLoginAttemptRepository(client, 0, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repo.Fail(ctx, "alice@x.com")
		require.NoError(t, err)
	}
	allowed, err := repo.Allowed(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.True(t, allowed)
}
