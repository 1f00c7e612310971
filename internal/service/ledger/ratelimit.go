package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/seo-noc/internal/pkg/distlock"
)

// RateLimiter enforces the 1-chat-notification-per-network-per-60s
// rule, with a bypass for critical actions (delete_node, main-switch).
type RateLimiter interface {
	Allow(ctx context.Context, networkID string, bypass bool) (bool, error)
}

// redisRateLimiter takes a one-shot distlock window per network: the lock
// is acquired with TTL=window and never released, turning mutual exclusion
// into a sliding throttle shared across every instance of the service.
type redisRateLimiter struct {
	client *redis.Client
	window time.Duration
}

// NewRedisRateLimiter builds a cluster-wide rate limiter backed by Redis.
func NewRedisRateLimiter(client *redis.Client, window time.Duration) RateLimiter {
	return &redisRateLimiter{client: client, window: window}
}

func (r *redisRateLimiter) Allow(ctx context.Context, networkID string, bypass bool) (bool, error) {
	if bypass {
		return true, nil
	}
	lock := distlock.NewRedisLock(r.client, "ledger:ratelimit:"+networkID, r.window)
	return lock.Acquire(ctx)
}

// inMemoryRateLimiter is the single-process fallback used in tests and when
// no Redis client is configured.
type inMemoryRateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
}

// NewInMemoryRateLimiter builds a process-local rate limiter.
func NewInMemoryRateLimiter(window time.Duration) RateLimiter {
	return &inMemoryRateLimiter{window: window, last: make(map[string]time.Time)}
}

func (r *inMemoryRateLimiter) Allow(ctx context.Context, networkID string, bypass bool) (bool, error) {
	if bypass {
		return true, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if last, ok := r.last[networkID]; ok && now.Sub(last) < r.window {
		return false, nil
	}
	r.last[networkID] = now
	return true, nil
}
