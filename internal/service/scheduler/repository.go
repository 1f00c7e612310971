package scheduler

import (
	"context"
	"time"

	"github.com/ignite/seo-noc/internal/domain"
)

// DomainSEOUsage is the per-domain SEO-context summary included in
// reminder bodies.
type DomainSEOUsage struct {
	NetworksCount int
	IsMainNode    bool
}

// Repository is the data-access contract the reminder and digest loops need.
type Repository interface {
	// ListUnmonitoredDomains returns every asset domain referenced by at
	// least one structure entry with monitoring_enabled=false.
	ListUnmonitoredDomains(ctx context.Context) ([]domain.AssetDomain, error)
	ListInProgressOptimizations(ctx context.Context) ([]domain.Optimization, error)
	GetNetwork(ctx context.Context, networkID string) (*domain.Network, error)
	MarkOptimizationReminderSent(ctx context.Context, optimizationID string, at time.Time) error

	ListExpiringDomains(ctx context.Context, thresholdDays int) ([]domain.AssetDomain, error)
	ListDownDomains(ctx context.Context) ([]domain.AssetDomain, error)
	ListSoftBlockedDomains(ctx context.Context) ([]domain.AssetDomain, error)
	DomainSEOUsage(ctx context.Context, assetDomainID string) (DomainSEOUsage, error)
	MarkDigestSent(ctx context.Context, at time.Time) error
}

// Renderer produces a rendered notification body for a single-event alert
// (unmonitored/optimization reminders, which stay inside the
// allow-listed template system, unlike the digest below).
type Renderer interface {
	Render(ctx context.Context, channel domain.Channel, event domain.EventType, ctxData map[string]interface{}) (string, error)
}

// Notifier delivers rendered messages over chat and email.
type Notifier interface {
	SendEvent(ctx context.Context, event domain.EventType, recipient, rendered string) (bool, error)
	SendEmail(ctx context.Context, recipient, rendered string) (bool, error)
}

// ImpactScorer supplies blast-radius severity for SEO-context enrichment inside
// reminder bodies. Satisfied by enrich.Service.
type ImpactScorer interface {
	DomainSeverity(ctx context.Context, assetDomainID string) (domain.Severity, error)
}
