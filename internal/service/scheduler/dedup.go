package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/seo-noc/internal/pkg/distlock"
)

const unmonitoredDedupWindow = 24 * time.Hour

// ReminderDeduper enforces the daily 24h dedup window for
// unmonitored-domain reminders. Same one-shot distlock window as the
// ledger rate limiter and the availability/expiration dedupers, keyed per
// domain with a 24h window.
type ReminderDeduper interface {
	ShouldRemind(ctx context.Context, assetDomainID string) (bool, error)
}

type redisReminderDeduper struct {
	client *redis.Client
}

// NewRedisReminderDeduper builds a cluster-wide reminder deduper backed by
// Redis.
func NewRedisReminderDeduper(client *redis.Client) ReminderDeduper {
	return &redisReminderDeduper{client: client}
}

func (d *redisReminderDeduper) ShouldRemind(ctx context.Context, assetDomainID string) (bool, error) {
	lock := distlock.NewRedisLock(d.client, "scheduler:unmonitored:"+assetDomainID, unmonitoredDedupWindow)
	return lock.Acquire(ctx)
}

type inMemoryReminderDeduper struct {
	mu   sync.Mutex
	last map[string]time.Time
}

// NewInMemoryReminderDeduper builds a process-local reminder deduper for
// tests and single-instance deployments without Redis.
func NewInMemoryReminderDeduper() ReminderDeduper {
	return &inMemoryReminderDeduper{last: make(map[string]time.Time)}
}

func (d *inMemoryReminderDeduper) ShouldRemind(ctx context.Context, assetDomainID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := time.Now()
	if last, ok := d.last[assetDomainID]; ok && now.Sub(last) < unmonitoredDedupWindow {
		return false, nil
	}
	d.last[assetDomainID] = now
	return true, nil
}
