// Package graph implements the SEO Graph Engine: tier computation,
// structural invariant enforcement, conflict detection, and structure
// snapshot rendering for a network of linked domains.
package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/pkg/logger"
)

// mainSwitchLockTTL bounds how long a crashed holder can block other
// switches on the same network before the lock expires.
const mainSwitchLockTTL = 30 * time.Second

// Service is the SEO Graph Engine. It does not write ledger rows, render
// templates, or send notifications — callers (the ledger package) own that
// transactional envelope around entity writes.
type Service struct {
	repo  Repository
	cache TierCache
	locks LockFactory
}

// NewService builds a graph Service. cache may be nil to disable caching;
// locks may be nil to disable the main-switch serialization guard.
func NewService(repo Repository, cache TierCache, locks LockFactory) *Service {
	return &Service{repo: repo, cache: cache, locks: locks}
}

// ComputeTiers returns the computed tier for every entry in a network,
// consulting the cache first when one is configured.
func (s *Service) ComputeTiers(ctx context.Context, networkID string) ([]domain.NodeTier, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(networkID); ok {
			return cached, nil
		}
	}
	entries, err := s.repo.ListEntries(ctx, networkID)
	if err != nil {
		return nil, err
	}
	tiers := computeTiers(entries)
	if s.cache != nil {
		s.cache.Set(networkID, tiers)
	}
	return tiers, nil
}

// GetNetwork resolves a network's stored metadata. Exposed as a read
// alongside the write methods so the ledger package can populate a change
// notification's network.* context without a separate network repository
// dependency.
func (s *Service) GetNetwork(ctx context.Context, networkID string) (*domain.Network, error) {
	return s.repo.GetNetwork(ctx, networkID)
}

// DomainNames returns asset_domain_id -> domain_name for a network. Exposed
// for the same reason as GetNetwork: the ledger package renders node labels
// without its own copy of this lookup.
func (s *Service) DomainNames(ctx context.Context, networkID string) (map[string]string, error) {
	return s.repo.DomainNames(ctx, networkID)
}

// GetEntry resolves a single structure entry by id. Exposed so API handlers
// can load the "before" half of an update without a separate repository
// dependency.
func (s *Service) GetEntry(ctx context.Context, entryID string) (*domain.StructureEntry, error) {
	return s.repo.GetEntry(ctx, entryID)
}

// DetectConflicts runs all ten structural detectors over the current state
// of a network and returns them ordered by severity, type, then node label.
func (s *Service) DetectConflicts(ctx context.Context, networkID string) ([]domain.DetectedConflict, error) {
	entries, err := s.repo.ListEntries(ctx, networkID)
	if err != nil {
		return nil, err
	}
	names, err := s.repo.DomainNames(ctx, networkID)
	if err != nil {
		return nil, err
	}
	return detectConflicts(entries, names), nil
}

// BuildStructureSnapshot renders the tier-grouped, authority-chain view of a
// network used by operator UIs and change notifications.
func (s *Service) BuildStructureSnapshot(ctx context.Context, networkID string) ([]domain.StructureSnapshotGroup, error) {
	entries, err := s.repo.ListEntries(ctx, networkID)
	if err != nil {
		return nil, err
	}
	names, err := s.repo.DomainNames(ctx, networkID)
	if err != nil {
		return nil, err
	}
	return buildStructureSnapshot(entries, names), nil
}

// CreateNetwork inserts a new, empty network container. The single-main
// invariant is enforced on entry writes, so a freshly created network holds
// no nodes until its main is added.
func (s *Service) CreateNetwork(ctx context.Context, n *domain.Network) error {
	if n.Name == "" {
		return ErrNetworkNameRequired
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Status == "" {
		n.Status = domain.NetworkStatusActive
	}
	if n.VisibilityMode == "" {
		n.VisibilityMode = domain.VisibilityBrandBased
	}
	now := time.Now()
	n.CreatedAt, n.UpdatedAt = now, now
	if err := s.repo.InsertNetwork(ctx, n); err != nil {
		return err
	}
	logger.Info("graph: network created", "network_id", n.ID, "brand_id", n.BrandID)
	return nil
}

// CreateEntry validates and inserts a new structure entry, invalidating the
// tier cache on success.
func (s *Service) CreateEntry(ctx context.Context, e *domain.StructureEntry) error {
	net, err := s.repo.GetNetwork(ctx, e.NetworkID)
	if err != nil {
		return err
	}
	if net == nil {
		return ErrNetworkNotFound
	}
	domainBrand, err := s.repo.GetDomainBrand(ctx, e.AssetDomainID)
	if err != nil {
		return err
	}
	others, err := s.repo.ListEntries(ctx, e.NetworkID)
	if err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.OptimizedPath = domain.NormalizePath(e.PathOrRoot())
	if err := validateInvariants(e, others, net.BrandID, domainBrand); err != nil {
		return err
	}
	now := time.Now()
	e.CreatedAt, e.UpdatedAt = now, now
	if err := s.repo.InsertEntry(ctx, e); err != nil {
		return err
	}
	s.invalidate(e.NetworkID)
	logger.Info("graph: entry created", "network_id", e.NetworkID, "entry_id", e.ID)
	return nil
}

// UpdateEntry validates and persists changes to an existing entry.
// ErrNoChange is returned when the candidate is identical to stored state.
func (s *Service) UpdateEntry(ctx context.Context, e *domain.StructureEntry) error {
	existing, err := s.repo.GetEntry(ctx, e.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrEntryNotFound
	}
	net, err := s.repo.GetNetwork(ctx, e.NetworkID)
	if err != nil {
		return err
	}
	if net == nil {
		return ErrNetworkNotFound
	}
	domainBrand, err := s.repo.GetDomainBrand(ctx, e.AssetDomainID)
	if err != nil {
		return err
	}
	all, err := s.repo.ListEntries(ctx, e.NetworkID)
	if err != nil {
		return err
	}
	e.OptimizedPath = domain.NormalizePath(e.PathOrRoot())
	if entriesEqual(existing, e) {
		return ErrNoChange
	}
	if err := validateInvariants(e, all, net.BrandID, domainBrand); err != nil {
		return err
	}
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = time.Now()
	if err := s.repo.UpdateEntry(ctx, e); err != nil {
		return err
	}
	s.invalidate(e.NetworkID)
	logger.Info("graph: entry updated", "network_id", e.NetworkID, "entry_id", e.ID)
	return nil
}

// DeleteEntry removes an entry, refusing to delete a main node while any
// other node remains in the network.
func (s *Service) DeleteEntry(ctx context.Context, entryID string) error {
	existing, err := s.repo.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrEntryNotFound
	}
	all, err := s.repo.ListEntries(ctx, existing.NetworkID)
	if err != nil {
		return err
	}
	if existing.IsMain() && !canDeleteMain(all) {
		return ErrDeleteMainWithChildren
	}
	if err := s.repo.DeleteEntry(ctx, entryID); err != nil {
		return err
	}
	s.invalidate(existing.NetworkID)
	logger.Info("graph: entry deleted", "network_id", existing.NetworkID, "entry_id", entryID)
	return nil
}

// MainSwitch atomically reassigns which node in a network is the main node:
// the current main is demoted to supporting/canonical pointing at the new
// main, and the new main is promoted to rootless primary. Both writes
// invalidate the tier cache together since they change the graph's root.
// The whole sequence runs under a per-network distributed lock so two
// concurrent switches can't interleave and leave zero or two mains; the
// demoted main's id is returned so the caller can ledger both steps.
func (s *Service) MainSwitch(ctx context.Context, networkID, newMainEntryID string) (string, error) {
	if s.locks != nil {
		lock := s.locks("main-switch:"+networkID, mainSwitchLockTTL)
		acquired, err := lock.Acquire(ctx)
		if err != nil {
			return "", fmt.Errorf("acquire main-switch lock for %s: %w", networkID, err)
		}
		if !acquired {
			return "", ErrMainSwitchContended
		}
		defer lock.Release(ctx)
	}

	all, err := s.repo.ListEntries(ctx, networkID)
	if err != nil {
		return "", err
	}
	var oldMain, newMain *domain.StructureEntry
	for i := range all {
		if all[i].IsMain() {
			oldMain = &all[i]
		}
		if all[i].ID == newMainEntryID {
			newMain = &all[i]
		}
	}
	if newMain == nil {
		return "", ErrEntryNotFound
	}
	if oldMain == nil {
		return "", ErrNoMain
	}
	if oldMain.ID == newMain.ID {
		return "", ErrNoChange
	}

	oldMainID := oldMain.ID
	oldMain.DomainRole = domain.RoleSupporting
	oldMain.DomainStatus = domain.StatusCanonical
	oldMain.TargetEntryID = &newMain.ID
	oldMain.UpdatedAt = time.Now()

	newMain.DomainRole = domain.RoleMain
	newMain.DomainStatus = domain.StatusPrimary
	newMain.TargetEntryID = nil
	newMain.UpdatedAt = time.Now()

	if err := s.repo.UpdateEntry(ctx, oldMain); err != nil {
		return "", fmt.Errorf("demote previous main %s: %w", oldMainID, err)
	}
	if err := s.repo.UpdateEntry(ctx, newMain); err != nil {
		return "", fmt.Errorf("promote new main %s: %w", newMain.ID, err)
	}
	s.invalidate(networkID)
	logger.Info("graph: main switched", "network_id", networkID, "old_main_id", oldMainID, "new_main_id", newMain.ID)
	return oldMainID, nil
}

func (s *Service) invalidate(networkID string) {
	if s.cache != nil {
		s.cache.Invalidate(networkID)
	}
}

func entriesEqual(a, b *domain.StructureEntry) bool {
	if a.AssetDomainID != b.AssetDomainID ||
		a.DomainRole != b.DomainRole ||
		a.DomainStatus != b.DomainStatus ||
		a.IndexStatus != b.IndexStatus ||
		a.PrimaryKeyword != b.PrimaryKeyword ||
		a.RankingURL != b.RankingURL ||
		a.Notes != b.Notes {
		return false
	}
	if !samePath(a.OptimizedPath, b.OptimizedPath) {
		return false
	}
	if (a.TargetEntryID == nil) != (b.TargetEntryID == nil) {
		return false
	}
	if a.TargetEntryID != nil && *a.TargetEntryID != *b.TargetEntryID {
		return false
	}
	if (a.RankingPosition == nil) != (b.RankingPosition == nil) {
		return false
	}
	if a.RankingPosition != nil && *a.RankingPosition != *b.RankingPosition {
		return false
	}
	return true
}
