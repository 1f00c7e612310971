package graph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/pkg/distlock"
)

type fakeRepo struct {
	network       *domain.Network
	entries       map[string]*domain.StructureEntry
	domainBrands  map[string]string
	domainNamesMap map[string]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		entries:        make(map[string]*domain.StructureEntry),
		domainBrands:   make(map[string]string),
		domainNamesMap: make(map[string]string),
	}
}

func (f *fakeRepo) GetNetwork(ctx context.Context, networkID string) (*domain.Network, error) {
	if f.network == nil || f.network.ID != networkID {
		return nil, nil
	}
	return f.network, nil
}

func (f *fakeRepo) ListEntries(ctx context.Context, networkID string) ([]domain.StructureEntry, error) {
	var out []domain.StructureEntry
	for _, e := range f.entries {
		if e.NetworkID == networkID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetEntry(ctx context.Context, entryID string) (*domain.StructureEntry, error) {
	e, ok := f.entries[entryID]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (f *fakeRepo) GetDomainBrand(ctx context.Context, assetDomainID string) (string, error) {
	return f.domainBrands[assetDomainID], nil
}

func (f *fakeRepo) DomainNames(ctx context.Context, networkID string) (map[string]string, error) {
	return f.domainNamesMap, nil
}

func (f *fakeRepo) InsertNetwork(ctx context.Context, n *domain.Network) error {
	cp := *n
	f.network = &cp
	return nil
}

func (f *fakeRepo) InsertEntry(ctx context.Context, e *domain.StructureEntry) error {
	cp := *e
	f.entries[e.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateEntry(ctx context.Context, e *domain.StructureEntry) error {
	cp := *e
	f.entries[e.ID] = &cp
	return nil
}

func (f *fakeRepo) DeleteEntry(ctx context.Context, entryID string) error {
	delete(f.entries, entryID)
	return nil
}

type fakeCache struct {
	data map[string][]domain.NodeTier
}

func newFakeCache() *fakeCache { return &fakeCache{data: make(map[string][]domain.NodeTier)} }

func (c *fakeCache) Get(networkID string) ([]domain.NodeTier, bool) {
	t, ok := c.data[networkID]
	return t, ok
}
func (c *fakeCache) Set(networkID string, tiers []domain.NodeTier) { c.data[networkID] = tiers }
func (c *fakeCache) Invalidate(networkID string)                   { delete(c.data, networkID) }

func strPtr(s string) *string { return &s }

func setupNetwork(repo *fakeRepo) {
	repo.network = &domain.Network{ID: "net-1", BrandID: "brand-1", Name: "Test Network"}
	repo.domainBrands["dom-main"] = "brand-1"
	repo.domainBrands["dom-a"] = "brand-1"
	repo.domainBrands["dom-b"] = "brand-1"
	repo.domainNamesMap["dom-main"] = "money-site.com"
	repo.domainNamesMap["dom-a"] = "supporting-a.com"
	repo.domainNamesMap["dom-b"] = "supporting-b.com"

	repo.entries["main"] = &domain.StructureEntry{
		ID: "main", NetworkID: "net-1", AssetDomainID: "dom-main",
		DomainRole: domain.RoleMain, DomainStatus: domain.StatusPrimary, IndexStatus: domain.IndexIndex,
	}
	repo.entries["a"] = &domain.StructureEntry{
		ID: "a", NetworkID: "net-1", AssetDomainID: "dom-a",
		DomainRole: domain.RoleSupporting, DomainStatus: domain.StatusCanonical, IndexStatus: domain.IndexIndex,
		TargetEntryID: strPtr("main"),
	}
}

func TestComputeTiers(t *testing.T) {
	repo := newFakeRepo()
	setupNetwork(repo)
	repo.entries["b"] = &domain.StructureEntry{
		ID: "b", NetworkID: "net-1", AssetDomainID: "dom-b",
		DomainRole: domain.RoleSupporting, DomainStatus: domain.StatusCanonical, IndexStatus: domain.IndexIndex,
		TargetEntryID: strPtr("a"),
	}
	svc := NewService(repo, nil, nil)

	tiers, err := svc.ComputeTiers(context.Background(), "net-1")
	require.NoError(t, err)

	byID := tierByID(tiers)
	assert.Equal(t, 0, byID["main"].Tier)
	assert.Equal(t, 1, byID["a"].Tier)
	assert.Equal(t, 2, byID["b"].Tier)
	assert.False(t, byID["b"].Orphan)
}

func TestComputeTiersOrphan(t *testing.T) {
	repo := newFakeRepo()
	setupNetwork(repo)
	repo.entries["orphan"] = &domain.StructureEntry{
		ID: "orphan", NetworkID: "net-1", AssetDomainID: "dom-b",
		DomainRole: domain.RoleSupporting, DomainStatus: domain.StatusCanonical, IndexStatus: domain.IndexNoindex,
	}
	svc := NewService(repo, nil, nil)

	tiers, err := svc.ComputeTiers(context.Background(), "net-1")
	require.NoError(t, err)

	byID := tierByID(tiers)
	assert.True(t, byID["orphan"].Orphan)
	assert.Equal(t, domain.OrphanTier, byID["orphan"].Tier)
}

func TestComputeTiersUsesCache(t *testing.T) {
	repo := newFakeRepo()
	setupNetwork(repo)
	cache := newFakeCache()
	svc := NewService(repo, cache, nil)

	_, err := svc.ComputeTiers(context.Background(), "net-1")
	require.NoError(t, err)

	delete(repo.entries, "a") // mutate underlying repo directly, bypassing the service
	tiers, err := svc.ComputeTiers(context.Background(), "net-1")
	require.NoError(t, err)
	assert.Len(t, tiers, 2, "cached result should still reflect the pre-mutation entry count")
}

func TestCreateNetwork_DefaultsApplied(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, nil)

	n := &domain.Network{Name: "Net-1", BrandID: "brand-1"}
	require.NoError(t, svc.CreateNetwork(context.Background(), n))
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, domain.NetworkStatusActive, n.Status)
	assert.Equal(t, domain.VisibilityBrandBased, n.VisibilityMode)
	require.NotNil(t, repo.network)
	assert.Equal(t, n.ID, repo.network.ID)
}

func TestCreateNetwork_NameRequired(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)

	err := svc.CreateNetwork(context.Background(), &domain.Network{BrandID: "brand-1"})
	assert.ErrorIs(t, err, ErrNetworkNameRequired)
}

func TestCreateEntry_DuplicatePath(t *testing.T) {
	repo := newFakeRepo()
	setupNetwork(repo)
	repo.entries["a"].OptimizedPath = strPtr("/blog")
	svc := NewService(repo, nil, nil)

	err := svc.CreateEntry(context.Background(), &domain.StructureEntry{
		NetworkID: "net-1", AssetDomainID: "dom-a", OptimizedPath: strPtr("/blog"),
		DomainRole: domain.RoleSupporting, DomainStatus: domain.StatusCanonical, IndexStatus: domain.IndexIndex,
		TargetEntryID: strPtr("main"),
	})
	assert.ErrorIs(t, err, ErrDuplicatePath)
}

func TestCreateEntry_CrossBrandDomain(t *testing.T) {
	repo := newFakeRepo()
	setupNetwork(repo)
	repo.domainBrands["dom-other"] = "brand-2"
	svc := NewService(repo, nil, nil)

	err := svc.CreateEntry(context.Background(), &domain.StructureEntry{
		NetworkID: "net-1", AssetDomainID: "dom-other",
		DomainRole: domain.RoleSupporting, DomainStatus: domain.StatusCanonical, IndexStatus: domain.IndexIndex,
		TargetEntryID: strPtr("main"),
	})
	assert.ErrorIs(t, err, ErrCrossBrandDomain)
}

func TestCreateEntry_SecondMainRejected(t *testing.T) {
	repo := newFakeRepo()
	setupNetwork(repo)
	svc := NewService(repo, nil, nil)

	err := svc.CreateEntry(context.Background(), &domain.StructureEntry{
		NetworkID: "net-1", AssetDomainID: "dom-b",
		DomainRole: domain.RoleMain, DomainStatus: domain.StatusPrimary, IndexStatus: domain.IndexIndex,
	})
	assert.ErrorIs(t, err, ErrMultipleMains)
}

func TestUpdateEntry_NoChangeRejected(t *testing.T) {
	repo := newFakeRepo()
	setupNetwork(repo)
	svc := NewService(repo, nil, nil)

	existing, err := repo.GetEntry(context.Background(), "a")
	require.NoError(t, err)

	err = svc.UpdateEntry(context.Background(), existing)
	assert.ErrorIs(t, err, ErrNoChange)
}

func TestDeleteEntry_MainWithChildrenRejected(t *testing.T) {
	repo := newFakeRepo()
	setupNetwork(repo)
	svc := NewService(repo, nil, nil)

	err := svc.DeleteEntry(context.Background(), "main")
	assert.ErrorIs(t, err, ErrDeleteMainWithChildren)
}

func TestDeleteEntry_SoleMainAllowed(t *testing.T) {
	repo := newFakeRepo()
	repo.network = &domain.Network{ID: "net-1", BrandID: "brand-1"}
	repo.entries["main"] = &domain.StructureEntry{
		ID: "main", NetworkID: "net-1", AssetDomainID: "dom-main",
		DomainRole: domain.RoleMain, DomainStatus: domain.StatusPrimary, IndexStatus: domain.IndexIndex,
	}
	svc := NewService(repo, nil, nil)

	err := svc.DeleteEntry(context.Background(), "main")
	assert.NoError(t, err)
}

func TestMainSwitch(t *testing.T) {
	repo := newFakeRepo()
	setupNetwork(repo)
	svc := NewService(repo, nil, nil)

	oldMainID, err := svc.MainSwitch(context.Background(), "net-1", "a")
	require.NoError(t, err)
	assert.Equal(t, "main", oldMainID)

	newMain, err := repo.GetEntry(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, newMain.IsMain())
	assert.Nil(t, newMain.TargetEntryID)

	oldMain, err := repo.GetEntry(context.Background(), "main")
	require.NoError(t, err)
	assert.False(t, oldMain.IsMain())
	require.NotNil(t, oldMain.TargetEntryID)
	assert.Equal(t, "a", *oldMain.TargetEntryID)
}

// fakeLock simulates a held distributed lock.
type fakeLock struct{ free bool }

func (l *fakeLock) Acquire(ctx context.Context) (bool, error) { return l.free, nil }
func (l *fakeLock) Release(ctx context.Context) error         { return nil }

func TestMainSwitch_ContendedLockRejected(t *testing.T) {
	repo := newFakeRepo()
	setupNetwork(repo)
	svc := NewService(repo, nil, func(key string, ttl time.Duration) distlock.DistLock {
		return &fakeLock{free: false}
	})

	_, err := svc.MainSwitch(context.Background(), "net-1", "a")
	assert.ErrorIs(t, err, ErrMainSwitchContended)

	// The held lock must prevent any entry write.
	oldMain, err := repo.GetEntry(context.Background(), "main")
	require.NoError(t, err)
	assert.True(t, oldMain.IsMain())
}

func TestDetectConflicts_NoFalseTierInversion(t *testing.T) {
	repo := newFakeRepo()
	setupNetwork(repo)
	repo.entries["b"] = &domain.StructureEntry{
		ID: "b", NetworkID: "net-1", AssetDomainID: "dom-b",
		DomainRole: domain.RoleSupporting, DomainStatus: domain.StatusCanonical, IndexStatus: domain.IndexIndex,
		TargetEntryID: strPtr("a"),
	}
	svc := NewService(repo, nil, nil)

	conflicts, err := svc.DetectConflicts(context.Background(), "net-1")
	require.NoError(t, err)

	for _, c := range conflicts {
		assert.NotEqual(t, domain.ConflictTierInversion, c.ConflictType, "a clean authority chain must not report tier_inversion")
	}
}

func TestDetectConflicts_Orphan(t *testing.T) {
	repo := newFakeRepo()
	setupNetwork(repo)
	repo.entries["orphan"] = &domain.StructureEntry{
		ID: "orphan", NetworkID: "net-1", AssetDomainID: "dom-b",
		DomainRole: domain.RoleSupporting, DomainStatus: domain.StatusCanonical, IndexStatus: domain.IndexIndex,
	}
	svc := NewService(repo, nil, nil)

	conflicts, err := svc.DetectConflicts(context.Background(), "net-1")
	require.NoError(t, err)

	var found bool
	for _, c := range conflicts {
		if c.ConflictType == domain.ConflictOrphan && c.NodeAID == "orphan" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestBuildStructureSnapshot_GroupOrder(t *testing.T) {
	repo := newFakeRepo()
	setupNetwork(repo)
	svc := NewService(repo, nil, nil)

	groups, err := svc.BuildStructureSnapshot(context.Background(), "net-1")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "LP/Money Site", groups[0].Label)
	assert.Equal(t, "Tier 1", groups[1].Label)
	require.Len(t, groups[1].Nodes[0].Chain, 1)
	assert.Equal(t, "MONEY SITE", groups[1].Nodes[0].Chain[0].EndReason)
}
