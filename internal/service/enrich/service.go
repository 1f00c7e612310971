package enrich

import (
	"context"
	"fmt"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/pkg/logger"
)

// Service implements the SEO Context Enricher.
type Service struct {
	repo  Repository
	tiers TierComputer
	cdn   CDNResolver
}

// NewService builds an enricher. cdn may be nil, in which case
// DomainEnrichment.CDNFronted is always false.
func NewService(repo Repository, tiers TierComputer, cdn CDNResolver) *Service {
	return &Service{repo: repo, tiers: tiers, cdn: cdn}
}

// Enrich computes the full enrichment for a single domain: its upstream
// chain and downstream impact set in every network it appears in, and the
// aggregate impact score and severity derived from them.
func (s *Service) Enrich(ctx context.Context, assetDomainID string) (*domain.DomainEnrichment, error) {
	refs, err := s.repo.ListEntriesByAssetDomain(ctx, assetDomainID)
	if err != nil {
		return nil, fmt.Errorf("enrich: list entries for domain %s: %w", assetDomainID, err)
	}
	if len(refs) == 0 {
		return &domain.DomainEnrichment{
			AssetDomainID: assetDomainID,
			Severity:      domain.SeverityLow,
			CDNFronted:    s.cdnFronted(ctx, assetDomainID),
		}, nil
	}

	networkEntries := make(map[string][]domain.StructureEntry)
	networkByID := make(map[string]map[string]*domain.StructureEntry)
	networkTiers := make(map[string]map[string]domain.NodeTier)

	networksSeen := make(map[string]bool)
	var impact domain.ImpactScore
	impact.HighestTierImpacted = -1

	entries := make([]domain.EntryEnrichment, 0, len(refs))

	for i := range refs {
		ref := refs[i]
		networksSeen[ref.NetworkID] = true

		all, ok := networkEntries[ref.NetworkID]
		if !ok {
			all, err = s.repo.ListEntries(ctx, ref.NetworkID)
			if err != nil {
				return nil, fmt.Errorf("enrich: list entries for network %s: %w", ref.NetworkID, err)
			}
			networkEntries[ref.NetworkID] = all

			byID := make(map[string]*domain.StructureEntry, len(all))
			for j := range all {
				byID[all[j].ID] = &all[j]
			}
			networkByID[ref.NetworkID] = byID

			tierList, err := s.tiers.ComputeTiers(ctx, ref.NetworkID)
			if err != nil {
				return nil, fmt.Errorf("enrich: compute tiers for network %s: %w", ref.NetworkID, err)
			}
			byTierID := make(map[string]domain.NodeTier, len(tierList))
			for _, nt := range tierList {
				byTierID[nt.Entry.ID] = nt
			}
			networkTiers[ref.NetworkID] = byTierID
		}

		byID := networkByID[ref.NetworkID]
		entry := byID[ref.ID]
		if entry == nil {
			entry = &ref
		}

		chain := buildUpstreamChain(entry, byID)
		downstream := downstreamImpact(ref.ID, all)

		nt := networkTiers[ref.NetworkID][ref.ID]
		tier := nt.Tier
		orphan := nt.Orphan

		entries = append(entries, domain.EntryEnrichment{
			Entry:              entry,
			UpstreamChain:      chain,
			DownstreamEntryIDs: downstream,
			Tier:               tier,
			Orphan:             orphan,
		})

		if entry.IsMain() {
			impact.IsMainNode = true
		}
		if reachesMoneySite(chain) {
			impact.ReachesMoneySite = true
		}
		impact.DownstreamNodesCount += len(downstream)
		if !orphan && (impact.HighestTierImpacted == -1 || tier < impact.HighestTierImpacted) {
			impact.HighestTierImpacted = tier
		}
	}

	if impact.HighestTierImpacted == -1 {
		impact.HighestTierImpacted = domain.OrphanTier
	}
	impact.NetworksAffected = len(networksSeen)

	return &domain.DomainEnrichment{
		AssetDomainID: assetDomainID,
		References:    entries,
		Impact:        impact,
		Severity:      severityFor(impact),
		CDNFronted:    s.cdnFronted(ctx, assetDomainID),
	}, nil
}

// cdnFronted consults the optional CDNResolver, never failing enrichment:
// a nil resolver or a lookup error both resolve to false.
func (s *Service) cdnFronted(ctx context.Context, assetDomainID string) bool {
	if s.cdn == nil {
		return false
	}
	name, err := s.repo.DomainName(ctx, assetDomainID)
	if err != nil {
		logger.Warn("enrich: domain name lookup failed, skipping CDN check", "asset_domain_id", assetDomainID, "error", err.Error())
		return false
	}
	fronted, err := s.cdn.IsCDNFronted(ctx, name)
	if err != nil {
		logger.Warn("enrich: cloudfront lookup failed", "asset_domain_id", assetDomainID, "error", err.Error())
		return false
	}
	return fronted
}

// severityFor implements the strict severity table.
func severityFor(impact domain.ImpactScore) domain.Severity {
	switch {
	case impact.IsMainNode:
		return domain.SeverityCritical
	case impact.HighestTierImpacted == 1 && impact.ReachesMoneySite:
		return domain.SeverityCritical
	case impact.HighestTierImpacted == 1 || impact.DownstreamNodesCount >= 3:
		return domain.SeverityHigh
	case impact.HighestTierImpacted >= 2 && impact.ReachesMoneySite:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

// DomainSeverity satisfies the availability and expiration packages'
// ImpactScorer.DomainSeverity contract.
func (s *Service) DomainSeverity(ctx context.Context, assetDomainID string) (domain.Severity, error) {
	enrichment, err := s.Enrich(ctx, assetDomainID)
	if err != nil {
		return "", err
	}
	return enrichment.Severity, nil
}

// IsSEOImpacting satisfies the expiration package's ImpactScorer contract:
// a domain is SEO-impacting if it's referenced by at least one structure
// entry.
func (s *Service) IsSEOImpacting(ctx context.Context, assetDomainID string) (bool, error) {
	refs, err := s.repo.ListEntriesByAssetDomain(ctx, assetDomainID)
	if err != nil {
		return false, fmt.Errorf("enrich: list entries for domain %s: %w", assetDomainID, err)
	}
	return len(refs) > 0, nil
}
