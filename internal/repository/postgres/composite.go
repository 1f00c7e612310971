package postgres

import (
	"context"
	"time"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/service/scheduler"
)

// The graph, enrich, linker, and scheduler services each declare a narrow,
// consumer-owned Repository interface that spans columns living in more
// than one table. Rather than widen any single table-scoped repo to cover
// every consumer, these composites embed the table-scoped repos and let Go's
// embedding promote their methods; the methods of a repo held in a named
// field rather than embedded are forwarded by short hand-written wrappers.

// GraphRepo satisfies graph.Repository by combining the network, structure
// entry, and asset domain tables.
type GraphRepo struct {
	*NetworkRepo
	*StructureEntryRepo
	domains *AssetDomainRepo
}

// NewGraphRepo builds the composite repository the graph engine needs.
func NewGraphRepo(networks *NetworkRepo, entries *StructureEntryRepo, domains *AssetDomainRepo) *GraphRepo {
	return &GraphRepo{NetworkRepo: networks, StructureEntryRepo: entries, domains: domains}
}

// GetDomainBrand satisfies graph.Repository and enrich.Repository's shared
// need to resolve a domain's owning brand from the asset domain table.
func (r *GraphRepo) GetDomainBrand(ctx context.Context, assetDomainID string) (string, error) {
	return r.domains.GetDomainBrand(ctx, assetDomainID)
}

// InsertNetwork satisfies graph.Repository by delegating to the network
// table repo's Create.
func (r *GraphRepo) InsertNetwork(ctx context.Context, n *domain.Network) error {
	return r.NetworkRepo.Create(ctx, n)
}

// EnrichRepo satisfies enrich.Repository by combining the structure entry
// and asset domain tables.
type EnrichRepo struct {
	*StructureEntryRepo
	domains *AssetDomainRepo
}

// NewEnrichRepo builds the composite repository the impact enricher needs.
func NewEnrichRepo(entries *StructureEntryRepo, domains *AssetDomainRepo) *EnrichRepo {
	return &EnrichRepo{StructureEntryRepo: entries, domains: domains}
}

// DomainName satisfies enrich.Repository's single-domain hostname lookup,
// distinct from StructureEntryRepo.DomainNames' per-network batch lookup.
func (r *EnrichRepo) DomainName(ctx context.Context, assetDomainID string) (string, error) {
	return r.domains.DomainName(ctx, assetDomainID)
}

// LinkerRepo satisfies linker.Repository by combining the network, conflict,
// and optimization tables.
type LinkerRepo struct {
	*NetworkRepo
	*ConflictRepo
	optimizations *OptimizationRepo
}

// NewLinkerRepo builds the composite repository the conflict linker needs.
func NewLinkerRepo(networks *NetworkRepo, conflicts *ConflictRepo, optimizations *OptimizationRepo) *LinkerRepo {
	return &LinkerRepo{NetworkRepo: networks, ConflictRepo: conflicts, optimizations: optimizations}
}

func (r *LinkerRepo) InsertOptimization(ctx context.Context, o *domain.Optimization) error {
	return r.optimizations.InsertOptimization(ctx, o)
}

func (r *LinkerRepo) GetOptimization(ctx context.Context, optimizationID string) (*domain.Optimization, error) {
	return r.optimizations.GetOptimization(ctx, optimizationID)
}

func (r *LinkerRepo) UpdateOptimizationStatus(ctx context.Context, optimizationID string, status domain.OptimizationStatus) error {
	return r.optimizations.UpdateOptimizationStatus(ctx, optimizationID, status)
}

// ComplaintsRepo satisfies complaints.Repository by combining the
// complaint, optimization, and network tables.
type ComplaintsRepo struct {
	*ComplaintRepo
	*NetworkRepo
	optimizations *OptimizationRepo
}

// NewComplaintsRepo builds the composite repository the complaint service needs.
func NewComplaintsRepo(complaints *ComplaintRepo, networks *NetworkRepo, optimizations *OptimizationRepo) *ComplaintsRepo {
	return &ComplaintsRepo{ComplaintRepo: complaints, NetworkRepo: networks, optimizations: optimizations}
}

func (r *ComplaintsRepo) GetOptimization(ctx context.Context, optimizationID string) (*domain.Optimization, error) {
	return r.optimizations.GetOptimization(ctx, optimizationID)
}

func (r *ComplaintsRepo) UpdateOptimizationComplaintStatus(ctx context.Context, optimizationID string, status domain.ComplaintStatus) error {
	return r.optimizations.UpdateOptimizationComplaintStatus(ctx, optimizationID, status)
}

// SchedulerRepo satisfies scheduler.Repository by combining the network,
// optimization, and asset domain tables.
type SchedulerRepo struct {
	*NetworkRepo
	optimizations *OptimizationRepo
	domains       *AssetDomainRepo
}

// NewSchedulerRepo builds the composite repository the reminder and digest
// loops need.
func NewSchedulerRepo(networks *NetworkRepo, optimizations *OptimizationRepo, domains *AssetDomainRepo) *SchedulerRepo {
	return &SchedulerRepo{NetworkRepo: networks, optimizations: optimizations, domains: domains}
}

func (r *SchedulerRepo) ListUnmonitoredDomains(ctx context.Context) ([]domain.AssetDomain, error) {
	return r.domains.ListUnmonitoredDomains(ctx)
}

func (r *SchedulerRepo) ListInProgressOptimizations(ctx context.Context) ([]domain.Optimization, error) {
	return r.optimizations.ListInProgressOptimizations(ctx)
}

func (r *SchedulerRepo) MarkOptimizationReminderSent(ctx context.Context, optimizationID string, at time.Time) error {
	return r.optimizations.MarkOptimizationReminderSent(ctx, optimizationID, at)
}

func (r *SchedulerRepo) ListExpiringDomains(ctx context.Context, thresholdDays int) ([]domain.AssetDomain, error) {
	return r.domains.ListExpiringDomains(ctx, thresholdDays)
}

func (r *SchedulerRepo) ListDownDomains(ctx context.Context) ([]domain.AssetDomain, error) {
	return r.domains.ListDownDomains(ctx)
}

func (r *SchedulerRepo) ListSoftBlockedDomains(ctx context.Context) ([]domain.AssetDomain, error) {
	return r.domains.ListSoftBlockedDomains(ctx)
}

func (r *SchedulerRepo) DomainSEOUsage(ctx context.Context, assetDomainID string) (scheduler.DomainSEOUsage, error) {
	return r.domains.DomainSEOUsage(ctx, assetDomainID)
}

func (r *SchedulerRepo) MarkDigestSent(ctx context.Context, at time.Time) error {
	return r.domains.MarkDigestSent(ctx, at)
}
