package ledger

import (
	"context"

	"github.com/ignite/seo-noc/internal/domain"
)

// Repository persists immutable change-ledger rows.
type Repository interface {
	InsertChangeLog(ctx context.Context, row *domain.ChangeLog) error
	UpdateNotificationStatus(ctx context.Context, id string, status domain.NotificationStatus) error
}

// GraphWriter is the subset of the graph engine's Service the ledger
// pipeline drives. Declared here (consumer-owned) rather than imported as a
// concrete type so tests can substitute a fake.
type GraphWriter interface {
	CreateNetwork(ctx context.Context, n *domain.Network) error
	CreateEntry(ctx context.Context, e *domain.StructureEntry) error
	UpdateEntry(ctx context.Context, e *domain.StructureEntry) error
	DeleteEntry(ctx context.Context, entryID string) error
	// MainSwitch returns the demoted main's entry id so the pipeline can
	// write one ledger row per step (demotion and promotion) under the
	// shared rationale.
	MainSwitch(ctx context.Context, networkID, newMainEntryID string) (string, error)
}

// Renderer produces a rendered notification body for a change event. Bound
// to the templates package's concrete renderer at wiring time.
type Renderer interface {
	RenderChange(ctx context.Context, networkID string, eventType domain.EventType, context map[string]interface{}) (string, error)
}

// Notifier delivers a rendered message. Bound to the notify package's
// concrete dispatcher at wiring time.
type Notifier interface {
	NotifyChange(ctx context.Context, networkID string, rendered string) (bool, error)
}

// AuditRecorder is the narrow audit-log contract, satisfied by
// audit.Service without importing that package. The ledger records an SEO
// change event for every committed write and a notification-failed event
// whenever the notification leg of the pipeline doesn't end in success.
type AuditRecorder interface {
	Record(ctx context.Context, eventType, actorEmail, resource, details string, severity domain.AuditSeverity, success bool) error
}

// GraphReader is the read side of the graph engine the ledger needs to
// assemble a change notification's render context (network, node,
// structure). Satisfied by the same graph.Service instance already wired in
// as GraphWriter — one object, two narrow roles. May be nil, in which case
// the rendered context falls back to bare ids for everything it would have
// supplied.
type GraphReader interface {
	GetNetwork(ctx context.Context, networkID string) (*domain.Network, error)
	DomainNames(ctx context.Context, networkID string) (map[string]string, error)
	ComputeTiers(ctx context.Context, networkID string) ([]domain.NodeTier, error)
	BuildStructureSnapshot(ctx context.Context, networkID string) ([]domain.StructureSnapshotGroup, error)
}

// BrandReader resolves a brand's display name for notification context.
// Satisfied by postgres.BrandRepo. May be nil, in which case brand.name
// falls back to the bare brand id.
type BrandReader interface {
	Get(ctx context.Context, brandID string) (*domain.Brand, error)
}

// ImpactScorer computes a domain's blast-radius severity and
// downstream reach for the notification's impact.* fields. Satisfied by
// enrich.Service. May be nil, in which case impact.* renders empty.
type ImpactScorer interface {
	DomainSeverity(ctx context.Context, assetDomainID string) (domain.Severity, error)
	Enrich(ctx context.Context, assetDomainID string) (*domain.DomainEnrichment, error)
}
