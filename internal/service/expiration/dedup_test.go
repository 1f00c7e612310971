package expiration

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowFor_SpansUntilNextThreshold(t *testing.T) {
	// First observed at 22 days remaining: the 30-day threshold's window
	// must cover the 8 days until the 14-day threshold is due.
	assert.Equal(t, 8*24*time.Hour, windowFor(22, 30))
	assert.Equal(t, 3*24*time.Hour, windowFor(10, 14))
	// Observed exactly at a threshold boundary.
	assert.Equal(t, 16*24*time.Hour, windowFor(30, 30))
}

func TestWindowFor_DailyBelowSevenAndExpired(t *testing.T) {
	assert.Equal(t, dedupWindow, windowFor(6, 7))
	assert.Equal(t, dedupWindow, windowFor(1, 1))
	assert.Equal(t, dedupWindow, windowFor(-3, -3))
}

func TestRedisDeduper_ThresholdAlertsOnceUntilNextThresholdDue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	dedup := NewRedisDeduper(client)
	ctx := context.Background()

	allowed, err := dedup.ShouldAlert(ctx, "dom-1", "registrar", 22, 30)
	require.NoError(t, err)
	assert.True(t, allowed)

	// The next day the domain is still inside the 30-day band: the alert
	// must stay suppressed, not re-fire daily.
	mr.FastForward(25 * time.Hour)
	allowed, err = dedup.ShouldAlert(ctx, "dom-1", "registrar", 21, 30)
	require.NoError(t, err)
	assert.False(t, allowed)

	// Once the 14-day threshold is crossed it has its own key and fires.
	mr.FastForward(7 * 24 * time.Hour)
	allowed, err = dedup.ShouldAlert(ctx, "dom-1", "registrar", 14, 14)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestInMemoryDeduper_ThresholdStaysSuppressedInsideBand(t *testing.T) {
	dedup := NewInMemoryDeduper()
	ctx := context.Background()

	allowed, err := dedup.ShouldAlert(ctx, "dom-1", "registrar", 22, 30)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = dedup.ShouldAlert(ctx, "dom-1", "registrar", 21, 30)
	require.NoError(t, err)
	assert.False(t, allowed)

	// A different threshold is a different key.
	allowed, err = dedup.ShouldAlert(ctx, "dom-1", "registrar", 14, 14)
	require.NoError(t, err)
	assert.True(t, allowed)
}
