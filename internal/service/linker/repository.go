package linker

import (
	"context"
	"time"

	"github.com/ignite/seo-noc/internal/domain"
)

// Repository is the data-access contract the linker needs.
type Repository interface {
	GetNetwork(ctx context.Context, networkID string) (*domain.Network, error)
	// ListConflicts returns every stored conflict for a network, used to
	// index by fingerprint at the start of an ingest batch.
	ListConflicts(ctx context.Context, networkID string) ([]domain.Conflict, error)
	GetConflict(ctx context.Context, conflictID string) (*domain.Conflict, error)
	InsertConflict(ctx context.Context, c *domain.Conflict) error
	UpdateConflict(ctx context.Context, c *domain.Conflict) error
	InsertOptimization(ctx context.Context, o *domain.Optimization) error
	GetOptimization(ctx context.Context, optimizationID string) (*domain.Optimization, error)
	UpdateOptimizationStatus(ctx context.Context, optimizationID string, status domain.OptimizationStatus) error
	// ConflictsSince returns every conflict detected at or after since,
	// optionally scoped to one network, for metrics aggregation.
	ConflictsSince(ctx context.Context, networkID *string, since time.Time) ([]domain.Conflict, error)
}

// Notifier delivers a rendered message to the SEO chat channel. Bound to
// the notify package's concrete dispatcher at wiring time.
type Notifier interface {
	SendEvent(ctx context.Context, event domain.EventType, recipient, rendered string) (bool, error)
}

// SuggestionGenerator is the optional AI-assisted suggestion drafter
// (bedrockruntime-backed). A nil
// SuggestionGenerator leaves a detector-less suggestion field empty, never
// blocking ingestion.
type SuggestionGenerator interface {
	Suggest(ctx context.Context, conflictType domain.ConflictType, description string) (string, error)
}
