package enrich

import (
	"context"

	"github.com/ignite/seo-noc/internal/domain"
)

// Repository is the data-access contract the enricher needs.
type Repository interface {
	// ListEntriesByAssetDomain returns every structure entry (across every
	// network) that references assetDomainID.
	ListEntriesByAssetDomain(ctx context.Context, assetDomainID string) ([]domain.StructureEntry, error)
	// ListEntries returns every entry in a single network, the same
	// contract the graph package's Repository exposes — needed here to
	// walk upstream chains and compute downstream impact sets.
	ListEntries(ctx context.Context, networkID string) ([]domain.StructureEntry, error)
	// DomainName resolves an asset domain's hostname, needed only to hand
	// off to an optional CDNResolver.
	DomainName(ctx context.Context, assetDomainID string) (string, error)
}

// TierComputer computes per-network tiers. Satisfied by graph.Service
// (duck-typed, no import of the graph package's Repository/TierCache
// required) so the enricher never re-derives tier BFS itself.
type TierComputer interface {
	ComputeTiers(ctx context.Context, networkID string) ([]domain.NodeTier, error)
}

// CDNResolver is the optional CloudFront metadata lookup. A nil CDNResolver leaves DomainEnrichment.CDNFronted false;
// a lookup failure is logged and treated the same way, never blocking
// enrichment.
type CDNResolver interface {
	IsCDNFronted(ctx context.Context, domainName string) (bool, error)
}
