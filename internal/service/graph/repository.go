package graph

import (
	"context"
	"time"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/pkg/distlock"
)

// Repository is the data-access contract the graph engine needs. It is
// deliberately narrow: whole-network reads for tier/conflict computation,
// and single-entry writes guarded by the invariants in invariants.go.
type Repository interface {
	GetNetwork(ctx context.Context, networkID string) (*domain.Network, error)
	ListEntries(ctx context.Context, networkID string) ([]domain.StructureEntry, error)
	GetEntry(ctx context.Context, entryID string) (*domain.StructureEntry, error)
	GetDomainBrand(ctx context.Context, assetDomainID string) (string, error)
	// DomainNames returns asset_domain_id -> domain_name for every domain
	// referenced by the network's entries, used to render human labels in
	// conflicts and structure snapshots without a per-node join.
	DomainNames(ctx context.Context, networkID string) (map[string]string, error)

	InsertNetwork(ctx context.Context, n *domain.Network) error
	InsertEntry(ctx context.Context, e *domain.StructureEntry) error
	UpdateEntry(ctx context.Context, e *domain.StructureEntry) error
	DeleteEntry(ctx context.Context, entryID string) error
}

// LockFactory mints a distributed lock guarding a multi-write operation,
// keyed by operation and network. Wired to distlock.NewLock at startup
// (Redis preferred, Postgres advisory fallback); nil disables the guard
// for tests and single-writer deployments.
type LockFactory func(key string, ttl time.Duration) distlock.DistLock

// TierCache is an optional write-through cache for computed tiers, keyed by
// network id. A nil TierCache disables caching (tiers recomputed on every
// call). Any write to a network must invalidate its cached tiers.
type TierCache interface {
	Get(networkID string) ([]domain.NodeTier, bool)
	Set(networkID string, tiers []domain.NodeTier)
	Invalidate(networkID string)
}
