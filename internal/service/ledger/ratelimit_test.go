package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisRateLimiter_WindowEnforced(t *testing.T) {
	mr, client := newMiniredisClient(t)
	limiter := NewRedisRateLimiter(client, time.Minute)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "net-1", false)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "net-1", false)
	require.NoError(t, err)
	assert.False(t, allowed)

	// A different network has its own window.
	allowed, err = limiter.Allow(ctx, "net-2", false)
	require.NoError(t, err)
	assert.True(t, allowed)

	// Once the window elapses, the network may notify again.
	mr.FastForward(time.Minute + time.Second)
	allowed, err = limiter.Allow(ctx, "net-1", false)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisRateLimiter_BypassSkipsWindow(t *testing.T) {
	_, client := newMiniredisClient(t)
	limiter := NewRedisRateLimiter(client, time.Minute)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "net-1", false)
	require.NoError(t, err)
	require.True(t, allowed)

	// Critical actions (delete_node, main-switch) bypass the throttle even
	// inside an open window — and don't consume it either.
	allowed, err = limiter.Allow(ctx, "net-1", true)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestInMemoryRateLimiter_WindowEnforced(t *testing.T) {
	limiter := NewInMemoryRateLimiter(time.Minute)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "net-1", false)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "net-1", false)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = limiter.Allow(ctx, "net-1", true)
	require.NoError(t, err)
	assert.True(t, allowed)
}
