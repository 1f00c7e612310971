package complaints

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/seo-noc/internal/domain"
)

type fakeRepo struct {
	optimizations map[string]*domain.Optimization
	networks      map[string]*domain.Network
	complaints    map[string]*domain.OptimizationComplaint
	project       []*domain.ProjectComplaint

	rollups map[string]domain.ComplaintStatus
	updates int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		optimizations: make(map[string]*domain.Optimization),
		networks:      make(map[string]*domain.Network),
		complaints:    make(map[string]*domain.OptimizationComplaint),
		rollups:       make(map[string]domain.ComplaintStatus),
	}
}

func (r *fakeRepo) GetOptimization(ctx context.Context, id string) (*domain.Optimization, error) {
	return r.optimizations[id], nil
}

func (r *fakeRepo) UpdateOptimizationComplaintStatus(ctx context.Context, id string, status domain.ComplaintStatus) error {
	r.rollups[id] = status
	return nil
}

func (r *fakeRepo) InsertComplaint(ctx context.Context, c *domain.OptimizationComplaint) error {
	cp := *c
	r.complaints[c.ID] = &cp
	return nil
}

func (r *fakeRepo) GetComplaint(ctx context.Context, id string) (*domain.OptimizationComplaint, error) {
	if c, ok := r.complaints[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeRepo) UpdateComplaint(ctx context.Context, c *domain.OptimizationComplaint) error {
	cp := *c
	r.complaints[c.ID] = &cp
	r.updates++
	return nil
}

func (r *fakeRepo) InsertProjectComplaint(ctx context.Context, c *domain.ProjectComplaint) error {
	cp := *c
	r.project = append(r.project, &cp)
	return nil
}

func (r *fakeRepo) GetNetwork(ctx context.Context, id string) (*domain.Network, error) {
	return r.networks[id], nil
}

type fakeRenderer struct{ rendered []map[string]interface{} }

func (f *fakeRenderer) Render(ctx context.Context, channel domain.Channel, event domain.EventType, ctxData map[string]interface{}) (string, error) {
	f.rendered = append(f.rendered, ctxData)
	return "rendered complaint body", nil
}

type fakeNotifier struct {
	sent []domain.EventType
	fail bool
}

func (f *fakeNotifier) SendEvent(ctx context.Context, event domain.EventType, recipient, rendered string) (bool, error) {
	f.sent = append(f.sent, event)
	if f.fail {
		return false, nil
	}
	return true, nil
}

func seedRepo(t *testing.T) *fakeRepo {
	t.Helper()
	repo := newFakeRepo()
	repo.networks["net-1"] = &domain.Network{ID: "net-1", Name: "Net One", BrandID: "brand-1"}
	repo.optimizations["opt-1"] = &domain.Optimization{
		ID: "opt-1", NetworkID: "net-1", Title: "Fix keyword overlap",
		Status: domain.OptimizationInProgress, ComplaintStatus: domain.OptComplaintNone,
	}
	return repo
}

func TestFile_PersistsAndRollsUpAndNotifies(t *testing.T) {
	repo := seedRepo(t)
	renderer := &fakeRenderer{}
	notifier := &fakeNotifier{}
	svc := NewService(repo, renderer, notifier)

	c, err := svc.File(context.Background(), "opt-1", "wrong keyword targeted", "high", []string{"u-1"})
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, domain.ComplaintCaseOpen, c.Status)
	assert.Equal(t, "high", c.Priority)
	assert.Equal(t, domain.OptComplaintFiled, repo.rollups["opt-1"])
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, domain.EventComplaint, notifier.sent[0])

	require.Len(t, renderer.rendered, 1)
	ctxData := renderer.rendered[0]
	network := ctxData["network"].(map[string]interface{})
	assert.Equal(t, "Net One", network["name"])
	complaint := ctxData["complaint"].(map[string]interface{})
	assert.Equal(t, "High", complaint["priority_label"])
}

func TestFile_EmptyReasonRejected(t *testing.T) {
	repo := seedRepo(t)
	svc := NewService(repo, nil, nil)

	_, err := svc.File(context.Background(), "opt-1", "   ", "", nil)
	assert.ErrorIs(t, err, ErrReasonRequired)
	assert.Empty(t, repo.complaints)
	assert.Empty(t, repo.rollups)
}

func TestFile_UnknownOptimization(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)

	_, err := svc.File(context.Background(), "missing", "real reason", "", nil)
	assert.ErrorIs(t, err, ErrOptimizationNotFound)
}

func TestFile_DefaultPriority(t *testing.T) {
	repo := seedRepo(t)
	svc := NewService(repo, nil, nil)

	c, err := svc.File(context.Background(), "opt-1", "something is off", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "medium", c.Priority)
}

func TestFile_NotificationFailureDoesNotRollBack(t *testing.T) {
	repo := seedRepo(t)
	svc := NewService(repo, &fakeRenderer{}, &fakeNotifier{fail: true})

	c, err := svc.File(context.Background(), "opt-1", "notification will fail", "", nil)
	require.NoError(t, err)
	assert.NotNil(t, repo.complaints[c.ID])
	assert.Equal(t, domain.OptComplaintFiled, repo.rollups["opt-1"])
}

func TestStartReview_SyncsOptimization(t *testing.T) {
	repo := seedRepo(t)
	svc := NewService(repo, nil, nil)

	c, err := svc.File(context.Background(), "opt-1", "needs a second look", "", nil)
	require.NoError(t, err)

	reviewed, err := svc.StartReview(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintCaseUnderReview, reviewed.Status)
	assert.Equal(t, domain.OptComplaintUnderReview, repo.rollups["opt-1"])
}

func TestResolve_NoteTooShortRejected(t *testing.T) {
	repo := seedRepo(t)
	svc := NewService(repo, nil, nil)

	c, err := svc.File(context.Background(), "opt-1", "needs fixing", "", nil)
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), c.ID, "fixed")
	assert.ErrorIs(t, err, ErrResolutionNoteTooShort)
	stored, _ := repo.GetComplaint(context.Background(), c.ID)
	assert.Equal(t, domain.ComplaintCaseOpen, stored.Status)
}

func TestResolve_SetsTimingAndRollsUp(t *testing.T) {
	repo := seedRepo(t)
	svc := NewService(repo, nil, nil)

	c, err := svc.File(context.Background(), "opt-1", "needs fixing", "", nil)
	require.NoError(t, err)
	// Backdate creation so time-to-resolution is measurable.
	stored := repo.complaints[c.ID]
	stored.CreatedAt = time.Now().Add(-2 * time.Hour)

	resolved, err := svc.Resolve(context.Background(), c.ID, "rewrote the targeting plan")
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintCaseResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)
	require.NotNil(t, resolved.TimeToResolutionHours)
	assert.InDelta(t, 2.0, *resolved.TimeToResolutionHours, 0.1)
	assert.Equal(t, domain.OptComplaintResolved, repo.rollups["opt-1"])
}

func TestResolve_SecondResolveIsNoOp(t *testing.T) {
	repo := seedRepo(t)
	svc := NewService(repo, nil, nil)

	c, err := svc.File(context.Background(), "opt-1", "needs fixing", "", nil)
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), c.ID, "rewrote the targeting plan")
	require.NoError(t, err)
	updatesAfterFirst := repo.updates

	again, err := svc.Resolve(context.Background(), c.ID, "rewrote the targeting plan")
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintCaseResolved, again.Status)
	assert.Equal(t, updatesAfterFirst, repo.updates)
}

func TestResolve_UnknownComplaint(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)

	_, err := svc.Resolve(context.Background(), "missing", "a long enough note")
	assert.ErrorIs(t, err, ErrComplaintNotFound)
}

func TestFileProjectComplaint(t *testing.T) {
	repo := seedRepo(t)
	renderer := &fakeRenderer{}
	notifier := &fakeNotifier{}
	svc := NewService(repo, renderer, notifier)

	c, err := svc.FileProjectComplaint(context.Background(), "net-1", "whole network slipped", "critical")
	require.NoError(t, err)
	assert.Equal(t, "net-1", c.NetworkID)
	assert.Equal(t, "critical", c.Priority)
	require.Len(t, repo.project, 1)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, domain.EventProjectComplaint, notifier.sent[0])
}

func TestFileProjectComplaint_UnknownNetwork(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)

	_, err := svc.FileProjectComplaint(context.Background(), "missing", "real reason", "")
	assert.ErrorIs(t, err, ErrNetworkNotFound)
}
