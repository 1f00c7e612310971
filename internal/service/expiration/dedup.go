package expiration

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/seo-noc/internal/pkg/distlock"
)

const dedupWindow = 24 * time.Hour

// thresholds is the alert-threshold table: {30,14,7,3,1,0} days
// remaining, plus (handled separately) every day thereafter once expired.
var thresholds = []int{30, 14, 7, 3, 1, 0}

// thresholdFor returns the threshold bucket daysRemaining falls into; the
// bool is false if it isn't at or past any threshold yet. Once expired
// (daysRemaining < 0), every day is its own bucket.
func thresholdFor(daysRemaining int) (int, bool) {
	if daysRemaining < 0 {
		return daysRemaining, true
	}
	best, found := 0, false
	for _, t := range thresholds {
		if daysRemaining <= t && (!found || t < best) {
			best, found = t, true
		}
	}
	return best, found
}

// Deduper enforces two dedup rules: at days_remaining >= 7, each crossed
// threshold alerts once, staying silenced until the next threshold is due;
// below 7, at most one alert per domain (any threshold) per 24h, so a
// fast-approaching or already-past deadline doesn't re-alert on every
// scheduler tick within the same day.
type Deduper interface {
	ShouldAlert(ctx context.Context, assetDomainID, clock string, daysRemaining, threshold int) (bool, error)
}

type redisDeduper struct {
	client *redis.Client
}

// NewRedisDeduper builds a cluster-wide expiration-alert deduper.
func NewRedisDeduper(client *redis.Client) Deduper {
	return &redisDeduper{client: client}
}

func (d *redisDeduper) ShouldAlert(ctx context.Context, assetDomainID, clock string, daysRemaining, threshold int) (bool, error) {
	key := dedupKey(assetDomainID, clock, daysRemaining, threshold)
	lock := distlock.NewRedisLock(d.client, key, windowFor(daysRemaining, threshold))
	return lock.Acquire(ctx)
}

type inMemoryDeduper struct {
	mu    sync.Mutex
	until map[string]time.Time
}

// NewInMemoryDeduper builds a process-local expiration-alert deduper for
// tests and single-instance deployments without Redis.
func NewInMemoryDeduper() Deduper {
	return &inMemoryDeduper{until: make(map[string]time.Time)}
}

func (d *inMemoryDeduper) ShouldAlert(ctx context.Context, assetDomainID, clock string, daysRemaining, threshold int) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := dedupKey(assetDomainID, clock, daysRemaining, threshold)
	now := time.Now()
	if until, ok := d.until[key]; ok && now.Before(until) {
		return false, nil
	}
	d.until[key] = now.Add(windowFor(daysRemaining, threshold))
	return true, nil
}

func dedupKey(assetDomainID, clock string, daysRemaining, threshold int) string {
	if daysRemaining < 7 {
		return "expiration:" + clock + ":" + assetDomainID
	}
	return "expiration:" + clock + ":" + assetDomainID + ":" + strconv.Itoa(threshold)
}

// windowFor sizes a threshold's dedup window. Above 7 days remaining, a
// crossed threshold stays silenced until the next lower threshold is due —
// a domain first seen at 22 days remaining alerts once for the 30-day
// threshold and then stays quiet until it reaches 14. Below 7 days (and
// once expired) the window is a flat 24h, giving those bands their daily
// cadence.
func windowFor(daysRemaining, threshold int) time.Duration {
	if daysRemaining < 7 {
		return dedupWindow
	}
	next := 0
	for _, t := range thresholds {
		if t < threshold && t > next {
			next = t
		}
	}
	days := daysRemaining - next
	if days < 1 {
		days = 1
	}
	return time.Duration(days) * 24 * time.Hour
}
