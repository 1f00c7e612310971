package linker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/seo-noc/internal/domain"
)

type fakeRepo struct {
	network       *domain.Network
	conflicts     map[string]*domain.Conflict
	optimizations map[string]*domain.Optimization
}

func newFakeRepo(network *domain.Network) *fakeRepo {
	return &fakeRepo{
		network:       network,
		conflicts:     make(map[string]*domain.Conflict),
		optimizations: make(map[string]*domain.Optimization),
	}
}

func (f *fakeRepo) GetNetwork(ctx context.Context, networkID string) (*domain.Network, error) {
	return f.network, nil
}

func (f *fakeRepo) ListConflicts(ctx context.Context, networkID string) ([]domain.Conflict, error) {
	out := make([]domain.Conflict, 0, len(f.conflicts))
	for _, c := range f.conflicts {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeRepo) GetConflict(ctx context.Context, conflictID string) (*domain.Conflict, error) {
	return f.conflicts[conflictID], nil
}

func (f *fakeRepo) InsertConflict(ctx context.Context, c *domain.Conflict) error {
	cp := *c
	f.conflicts[c.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateConflict(ctx context.Context, c *domain.Conflict) error {
	cp := *c
	f.conflicts[c.ID] = &cp
	return nil
}

func (f *fakeRepo) InsertOptimization(ctx context.Context, o *domain.Optimization) error {
	cp := *o
	f.optimizations[o.ID] = &cp
	return nil
}

func (f *fakeRepo) GetOptimization(ctx context.Context, optimizationID string) (*domain.Optimization, error) {
	return f.optimizations[optimizationID], nil
}

func (f *fakeRepo) UpdateOptimizationStatus(ctx context.Context, optimizationID string, status domain.OptimizationStatus) error {
	if o, ok := f.optimizations[optimizationID]; ok {
		o.Status = status
	}
	return nil
}

func (f *fakeRepo) ConflictsSince(ctx context.Context, networkID *string, since time.Time) ([]domain.Conflict, error) {
	out := make([]domain.Conflict, 0, len(f.conflicts))
	for _, c := range f.conflicts {
		if !c.DetectedAt.Before(since) {
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	sentCount int
	lastMsg   string
}

func (f *fakeNotifier) SendEvent(ctx context.Context, event domain.EventType, recipient, rendered string) (bool, error) {
	f.sentCount++
	f.lastMsg = rendered
	return true, nil
}

func testNetwork() *domain.Network {
	return &domain.Network{ID: "net1", BrandID: "brand1", Name: "Acme Network", ManagerIDs: []string{"mgr1"}, CreatedBy: "owner1"}
}

func testDetected() domain.DetectedConflict {
	return domain.DetectedConflict{
		ConflictType: domain.ConflictKeywordCannibalization,
		Severity:     domain.SeverityHigh,
		NodeAID:      "entry-a",
		NodeALabel:   "/blog/post-a",
		DomainName:   "support.com",
		DomainID:     "domain-a",
		NodePath:     "/blog/post-a",
		Description:  "Two nodes target the same keyword.",
	}
}

func TestIngestDetectionBatch_UnknownFingerprintCreatesConflictAndOptimization(t *testing.T) {
	repo := newFakeRepo(testNetwork())
	notifier := &fakeNotifier{}
	svc := NewService(repo, notifier, nil, "chat-1")

	summary, err := svc.IngestDetectionBatch(context.Background(), "net1", []domain.DetectedConflict{testDetected()})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.NewConflicts)
	assert.Equal(t, 1, summary.OptimizationsCreated)
	assert.Equal(t, 1, summary.NotificationsSent)
	assert.Equal(t, 1, notifier.sentCount)
	assert.Contains(t, notifier.lastMsg, "NEW SEO CONFLICT DETECTED")

	require.Len(t, repo.conflicts, 1)
	for _, c := range repo.conflicts {
		assert.Equal(t, domain.ConflictUnderReview, c.Status)
		assert.True(t, c.IsActive)
		require.NotNil(t, c.OptimizationID)
		opt := repo.optimizations[*c.OptimizationID]
		require.NotNil(t, opt)
		assert.Equal(t, "[Conflict Resolution] Keyword Cannibalization", opt.Title)
		assert.Equal(t, domain.OptimizationPlanned, opt.Status)
		assert.Equal(t, "high", opt.Priority)
		require.NotNil(t, opt.AssignedTo)
		assert.Equal(t, "mgr1", *opt.AssignedTo)
	}
}

func TestIngestDetectionBatch_SameBatchTwiceOnlyTouchesSecondTime(t *testing.T) {
	repo := newFakeRepo(testNetwork())
	notifier := &fakeNotifier{}
	svc := NewService(repo, notifier, nil, "chat-1")

	_, err := svc.IngestDetectionBatch(context.Background(), "net1", []domain.DetectedConflict{testDetected()})
	require.NoError(t, err)

	summary, err := svc.IngestDetectionBatch(context.Background(), "net1", []domain.DetectedConflict{testDetected()})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.NewConflicts)
	assert.Equal(t, 0, summary.RecurringConflicts)
	assert.Equal(t, 0, summary.OptimizationsCreated)
	require.Len(t, repo.conflicts, 1)
}

func TestIngestDetectionBatch_ResolvedFingerprintRecurs(t *testing.T) {
	repo := newFakeRepo(testNetwork())
	notifier := &fakeNotifier{}
	svc := NewService(repo, notifier, nil, "chat-1")

	_, err := svc.IngestDetectionBatch(context.Background(), "net1", []domain.DetectedConflict{testDetected()})
	require.NoError(t, err)

	var conflictID string
	for id, c := range repo.conflicts {
		conflictID = id
		c.Status = domain.ConflictResolved
		c.IsActive = false
	}

	summary, err := svc.IngestDetectionBatch(context.Background(), "net1", []domain.DetectedConflict{testDetected()})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.RecurringConflicts)
	assert.Equal(t, 1, summary.OptimizationsCreated)

	recurred := repo.conflicts[conflictID]
	assert.Equal(t, 1, recurred.RecurrenceCount)
	assert.Equal(t, domain.ConflictUnderReview, recurred.Status)
	assert.True(t, recurred.IsActive)
	require.NotNil(t, recurred.OptimizationID)

	opt := repo.optimizations[*recurred.OptimizationID]
	require.NotNil(t, opt)
	assert.Contains(t, opt.Title, "[RECURRING #1]")
	assert.Contains(t, notifier.lastMsg, "RECURRING SEO CONFLICT #1")
}

func TestSyncOptimizationStatus_CompletedResolvesConflict(t *testing.T) {
	repo := newFakeRepo(testNetwork())
	notifier := &fakeNotifier{}
	svc := NewService(repo, notifier, nil, "chat-1")

	_, err := svc.IngestDetectionBatch(context.Background(), "net1", []domain.DetectedConflict{testDetected()})
	require.NoError(t, err)

	var conflictID, optID string
	for id, c := range repo.conflicts {
		conflictID = id
		optID = *c.OptimizationID
	}

	err = svc.SyncOptimizationStatus(context.Background(), optID, domain.OptimizationCompleted, "user-1", "Jane Doe")
	require.NoError(t, err)

	resolved := repo.conflicts[conflictID]
	assert.Equal(t, domain.ConflictResolved, resolved.Status)
	assert.False(t, resolved.IsActive)
	require.NotNil(t, resolved.ResolvedAt)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, "user-1", *resolved.ResolvedBy)
	assert.Contains(t, notifier.lastMsg, "SEO CONFLICT RESOLVED")
}

func TestSyncOptimizationStatus_RevertedReopensConflict(t *testing.T) {
	repo := newFakeRepo(testNetwork())
	svc := NewService(repo, &fakeNotifier{}, nil, "chat-1")

	_, err := svc.IngestDetectionBatch(context.Background(), "net1", []domain.DetectedConflict{testDetected()})
	require.NoError(t, err)

	var conflictID, optID string
	for id, c := range repo.conflicts {
		conflictID = id
		optID = *c.OptimizationID
		c.Status = domain.ConflictResolved
		c.IsActive = false
		now := time.Now()
		c.ResolvedAt = &now
	}

	err = svc.SyncOptimizationStatus(context.Background(), optID, domain.OptimizationReverted, "", "")
	require.NoError(t, err)

	reopened := repo.conflicts[conflictID]
	assert.Equal(t, domain.ConflictDetected, reopened.Status)
	assert.True(t, reopened.IsActive)
	assert.Nil(t, reopened.ResolvedAt)
}

func TestApproveConflict_SetsApprovedAndCompletesOptimization(t *testing.T) {
	repo := newFakeRepo(testNetwork())
	svc := NewService(repo, &fakeNotifier{}, nil, "chat-1")

	_, err := svc.IngestDetectionBatch(context.Background(), "net1", []domain.DetectedConflict{testDetected()})
	require.NoError(t, err)

	var conflictID, optID string
	for id, c := range repo.conflicts {
		conflictID = id
		optID = *c.OptimizationID
		c.RecurrenceCount = 3
	}

	err = svc.ApproveConflict(context.Background(), conflictID, "super-admin-1")
	require.NoError(t, err)

	approved := repo.conflicts[conflictID]
	assert.Equal(t, domain.ConflictApproved, approved.Status)
	assert.False(t, approved.IsActive)
	assert.Equal(t, 0, approved.RecurrenceCount)
	require.NotNil(t, approved.ResolvedBy)
	assert.Equal(t, "super-admin-1", *approved.ResolvedBy)
	assert.Equal(t, domain.OptimizationCompleted, repo.optimizations[optID].Status)
}

func TestUnlinkOnOptimizationDeleted_RevertsToDetectedUnlinked(t *testing.T) {
	repo := newFakeRepo(testNetwork())
	svc := NewService(repo, &fakeNotifier{}, nil, "chat-1")

	_, err := svc.IngestDetectionBatch(context.Background(), "net1", []domain.DetectedConflict{testDetected()})
	require.NoError(t, err)

	var conflictID string
	for id := range repo.conflicts {
		conflictID = id
	}

	err = svc.UnlinkOnOptimizationDeleted(context.Background(), conflictID)
	require.NoError(t, err)

	unlinked := repo.conflicts[conflictID]
	assert.Equal(t, domain.ConflictDetected, unlinked.Status)
	assert.Nil(t, unlinked.OptimizationID)
}

func TestConflictMetrics_RecurringCountExcludesResolvedApprovedIgnored(t *testing.T) {
	repo := newFakeRepo(testNetwork())
	now := time.Now()

	repo.conflicts["active-recurring"] = &domain.Conflict{
		ID: "active-recurring", Severity: domain.SeverityHigh, ConflictType: domain.ConflictOrphan,
		Status: domain.ConflictDetected, IsActive: true, RecurrenceCount: 2, DetectedAt: now,
	}
	repo.conflicts["resolved-but-recurred"] = &domain.Conflict{
		ID: "resolved-but-recurred", Severity: domain.SeverityHigh, ConflictType: domain.ConflictOrphan,
		Status: domain.ConflictResolved, IsActive: false, RecurrenceCount: 3, DetectedAt: now, ResolvedAt: &now,
	}
	ignoredResolver := "resolver-1"
	repo.conflicts["resolved-but-recurred"].ResolvedBy = &ignoredResolver

	svc := NewService(repo, &fakeNotifier{}, nil, "chat-1")
	metrics, err := svc.ConflictMetrics(context.Background(), nil, 30)
	require.NoError(t, err)

	assert.Equal(t, 2, metrics.TotalConflicts)
	assert.Equal(t, 1, metrics.ResolvedCount)
	assert.Equal(t, 1, metrics.OpenCount)
	// CRITICAL FIX: only the active, still-open recurrence counts.
	assert.Equal(t, 1, metrics.RecurringConflicts)
	assert.Equal(t, 1, metrics.ByResolver["resolver-1"])
}

func TestFingerprint_IsStableAcrossRepeatedCalls(t *testing.T) {
	tier := 1
	fp1 := Fingerprint("net1", "keyword_cannibalization", "domain-a", "/Blog/Post-A/", &tier, "/target/")
	fp2 := Fingerprint("net1", "keyword_cannibalization", "domain-a", "/blog/post-a", &tier, "target")
	assert.Equal(t, fp1, fp2)
	assert.Len(t, fp1, 32)
}

func TestFingerprint_DiffersByType(t *testing.T) {
	fp1 := Fingerprint("net1", "keyword_cannibalization", "domain-a", "/blog", nil, "")
	fp2 := Fingerprint("net1", "tier_inversion", "domain-a", "/blog", nil, "")
	assert.NotEqual(t, fp1, fp2)
}
