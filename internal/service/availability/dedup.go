package availability

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/seo-noc/internal/pkg/distlock"
)

const dedupWindow = 24 * time.Hour

// AlertDeduper enforces the "max 1 alert per (domain, alert_type) per
// 24h" rule. Same one-shot distlock window as the ledger's rate limiter
// (internal/service/ledger.RateLimiter), repurposed here with a per-key
// rather than per-network scope and a 24h instead of 60s window.
type AlertDeduper interface {
	ShouldAlert(ctx context.Context, assetDomainID, alertType string) (bool, error)
}

type redisDeduper struct {
	client *redis.Client
}

// NewRedisDeduper builds a cluster-wide alert deduper backed by Redis.
func NewRedisDeduper(client *redis.Client) AlertDeduper {
	return &redisDeduper{client: client}
}

func (d *redisDeduper) ShouldAlert(ctx context.Context, assetDomainID, alertType string) (bool, error) {
	lock := distlock.NewRedisLock(d.client, "availability:alert:"+assetDomainID+":"+alertType, dedupWindow)
	return lock.Acquire(ctx)
}

type inMemoryDeduper struct {
	mu   sync.Mutex
	last map[string]time.Time
}

// NewInMemoryDeduper builds a process-local alert deduper for tests and
// single-instance deployments without Redis.
func NewInMemoryDeduper() AlertDeduper {
	return &inMemoryDeduper{last: make(map[string]time.Time)}
}

func (d *inMemoryDeduper) ShouldAlert(ctx context.Context, assetDomainID, alertType string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := assetDomainID + ":" + alertType
	now := time.Now()
	if last, ok := d.last[key]; ok && now.Sub(last) < dedupWindow {
		return false, nil
	}
	d.last[key] = now
	return true, nil
}
