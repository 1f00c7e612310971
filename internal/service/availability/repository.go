package availability

import (
	"context"
	"time"

	"github.com/ignite/seo-noc/internal/domain"
)

// Repository persists probe results and lists domains due for a check.
type Repository interface {
	// ListDueForProbe returns every monitored domain whose
	// last_checked_at + monitoring_interval <= now.
	ListDueForProbe(ctx context.Context, now time.Time) ([]*domain.AssetDomain, error)
	UpdateProbeResult(ctx context.Context, domainID string, result ProbeResult) error
}

// Renderer produces a rendered notification body. Bound to the templates
// package's concrete Service at wiring time (duck-typed).
type Renderer interface {
	Render(ctx context.Context, channel domain.Channel, event domain.EventType, ctxData map[string]interface{}) (string, error)
}

// Notifier delivers a rendered alert to the monitoring channel/email.
// Bound to the notify package's concrete Service at wiring time.
type Notifier interface {
	SendEvent(ctx context.Context, event domain.EventType, recipient, rendered string) (bool, error)
	SendEmail(ctx context.Context, recipient, rendered string) (bool, error)
}

// ImpactScorer computes a domain's blast-radius severity. Bound to
// the enrich package's concrete Service at wiring time.
type ImpactScorer interface {
	DomainSeverity(ctx context.Context, assetDomainID string) (domain.Severity, error)
}
