package expiration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/seo-noc/internal/domain"
)

type fakeRepo struct {
	registrar []*domain.AssetDomain
	cert      []*domain.AssetDomain
}

func (f *fakeRepo) ListWithExpirationDate(ctx context.Context) ([]*domain.AssetDomain, error) {
	return f.registrar, nil
}

func (f *fakeRepo) ListWithCertExpirationDate(ctx context.Context) ([]*domain.AssetDomain, error) {
	return f.cert, nil
}

type fakeRenderer struct {
	renderCount int
	lastCtx     map[string]interface{}
}

func (f *fakeRenderer) Render(ctx context.Context, channel domain.Channel, event domain.EventType, ctxData map[string]interface{}) (string, error) {
	f.renderCount++
	f.lastCtx = ctxData
	return "rendered", nil
}

type fakeNotifier struct {
	sentCount int
}

func (f *fakeNotifier) SendEvent(ctx context.Context, event domain.EventType, recipient, rendered string) (bool, error) {
	f.sentCount++
	return true, nil
}

type fakeScorer struct {
	severity  domain.Severity
	impacting bool
}

func (f *fakeScorer) DomainSeverity(ctx context.Context, assetDomainID string) (domain.Severity, error) {
	return f.severity, nil
}

func (f *fakeScorer) IsSEOImpacting(ctx context.Context, assetDomainID string) (bool, error) {
	return f.impacting, nil
}

func daysFromNow(days int) *time.Time {
	t := time.Now().Add(time.Duration(days) * 24 * time.Hour)
	return &t
}

func TestThresholdFor_PicksTightestThresholdAtOrAboveRemaining(t *testing.T) {
	th, due := thresholdFor(25)
	require.True(t, due)
	assert.Equal(t, 30, th)

	th, due = thresholdFor(10)
	require.True(t, due)
	assert.Equal(t, 14, th)

	th, due = thresholdFor(0)
	require.True(t, due)
	assert.Equal(t, 0, th)

	_, due = thresholdFor(45)
	assert.False(t, due)
}

func TestThresholdFor_ExpiredIsItsOwnBucketPerDay(t *testing.T) {
	th, due := thresholdFor(-1)
	require.True(t, due)
	assert.Equal(t, -1, th)

	th, due = thresholdFor(-5)
	require.True(t, due)
	assert.Equal(t, -5, th)
}

func TestRunOnce_AlertsOnRegistrarExpirationAtThreshold(t *testing.T) {
	d := &domain.AssetDomain{ID: "dom_1", DomainName: "example.com", ExpirationDate: daysFromNow(7)}
	repo := &fakeRepo{registrar: []*domain.AssetDomain{d}}
	renderer := &fakeRenderer{}
	notifier := &fakeNotifier{}
	svc := NewService(repo, renderer, notifier, nil, NewInMemoryDeduper(), time.Hour)

	svc.RunOnce(context.Background())

	assert.Equal(t, 1, renderer.renderCount)
	assert.Equal(t, 1, notifier.sentCount)
}

func TestRunOnce_NoAlertWhenNotAtThreshold(t *testing.T) {
	d := &domain.AssetDomain{ID: "dom_1", DomainName: "example.com", ExpirationDate: daysFromNow(45)}
	repo := &fakeRepo{registrar: []*domain.AssetDomain{d}}
	notifier := &fakeNotifier{}
	svc := NewService(repo, &fakeRenderer{}, notifier, nil, NewInMemoryDeduper(), time.Hour)

	svc.RunOnce(context.Background())

	assert.Equal(t, 0, notifier.sentCount)
}

func TestRunOnce_RegistrarAndCertClocksAreIndependentDedupNamespaces(t *testing.T) {
	reg := &domain.AssetDomain{ID: "dom_1", DomainName: "example.com", ExpirationDate: daysFromNow(0)}
	cert := &domain.AssetDomain{ID: "dom_1", DomainName: "example.com", CertExpirationDate: daysFromNow(0)}
	repo := &fakeRepo{registrar: []*domain.AssetDomain{reg}, cert: []*domain.AssetDomain{cert}}
	notifier := &fakeNotifier{}
	svc := NewService(repo, &fakeRenderer{}, notifier, nil, NewInMemoryDeduper(), time.Hour)

	svc.RunOnce(context.Background())

	assert.Equal(t, 2, notifier.sentCount, "registrar and cert clocks must alert independently even for the same domain")
}

func TestRunOnce_DedupSuppressesRepeatedAlertAtSameThreshold(t *testing.T) {
	d := &domain.AssetDomain{ID: "dom_1", DomainName: "example.com", ExpirationDate: daysFromNow(14)}
	repo := &fakeRepo{registrar: []*domain.AssetDomain{d}}
	notifier := &fakeNotifier{}
	svc := NewService(repo, &fakeRenderer{}, notifier, nil, NewInMemoryDeduper(), time.Hour)

	svc.RunOnce(context.Background())
	svc.RunOnce(context.Background())

	assert.Equal(t, 1, notifier.sentCount)
}

func TestSeverityFor_ExpiredIsAlwaysCritical(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeRenderer{}, &fakeNotifier{}, &fakeScorer{severity: domain.SeverityLow, impacting: false}, NewInMemoryDeduper(), time.Hour)
	sev := svc.severityFor(context.Background(), &domain.AssetDomain{ID: "dom_1"}, -1)
	assert.Equal(t, domain.SeverityCritical, sev)
}

func TestSeverityFor_CloseAndImpactingIsCritical(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeRenderer{}, &fakeNotifier{}, &fakeScorer{severity: domain.SeverityLow, impacting: true}, NewInMemoryDeduper(), time.Hour)
	sev := svc.severityFor(context.Background(), &domain.AssetDomain{ID: "dom_1"}, 2)
	assert.Equal(t, domain.SeverityCritical, sev)
}

func TestSeverityFor_CloseButNotImpactingUsesBandFloor(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeRenderer{}, &fakeNotifier{}, &fakeScorer{severity: domain.SeverityLow, impacting: false}, NewInMemoryDeduper(), time.Hour)
	sev := svc.severityFor(context.Background(), &domain.AssetDomain{ID: "dom_1"}, 2)
	assert.Equal(t, domain.SeverityHigh, sev)
}

func TestSeverityFor_FarOutKeepsBaseSeverityWhenHigherThanBand(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeRenderer{}, &fakeNotifier{}, &fakeScorer{severity: domain.SeverityCritical, impacting: false}, NewInMemoryDeduper(), time.Hour)
	sev := svc.severityFor(context.Background(), &domain.AssetDomain{ID: "dom_1"}, 20)
	assert.Equal(t, domain.SeverityCritical, sev)
}
