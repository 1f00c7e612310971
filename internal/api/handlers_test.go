package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/service/complaints"
	"github.com/ignite/seo-noc/internal/service/linker"
)

type fakeDetector struct {
	conflicts []domain.DetectedConflict
	err       error
}

func (f *fakeDetector) DetectConflicts(ctx context.Context, networkID string) ([]domain.DetectedConflict, error) {
	return f.conflicts, f.err
}

type fakeIngester struct {
	summary *linker.IngestSummary
	err     error
}

func (f *fakeIngester) IngestDetectionBatch(ctx context.Context, networkID string, detected []domain.DetectedConflict) (*linker.IngestSummary, error) {
	return f.summary, f.err
}

type fakeNetworkLister struct {
	networks []domain.Network
}

func (f *fakeNetworkLister) ListAll(ctx context.Context) ([]domain.Network, error) {
	return f.networks, nil
}

type fakeTemplatePreviewer struct{}

func (f *fakeTemplatePreviewer) Preview(channel domain.Channel, event domain.EventType, body string) (string, error) {
	return "rendered: " + body, nil
}

type fakeDigestPreviewer struct{}

func (f *fakeDigestPreviewer) Preview(ctx context.Context, now time.Time) (string, error) {
	return "<html>digest</html>", nil
}

type fakeStructureWriter struct {
	row *domain.ChangeLog
	err error
}

func (f *fakeStructureWriter) CreateNetwork(ctx context.Context, actor domain.ActorRef, n *domain.Network, changeNote string) (*domain.ChangeLog, error) {
	return f.row, f.err
}

func (f *fakeStructureWriter) CreateNode(ctx context.Context, actor domain.ActorRef, brandID string, e *domain.StructureEntry, changeNote string) (*domain.ChangeLog, error) {
	return f.row, f.err
}

func (f *fakeStructureWriter) UpdateNode(ctx context.Context, actor domain.ActorRef, brandID string, before, after *domain.StructureEntry, changeNote string) (*domain.ChangeLog, error) {
	return f.row, f.err
}

func (f *fakeStructureWriter) DeleteNode(ctx context.Context, actor domain.ActorRef, brandID string, e *domain.StructureEntry, changeNote string) (*domain.ChangeLog, error) {
	return f.row, f.err
}

func (f *fakeStructureWriter) MainSwitch(ctx context.Context, actor domain.ActorRef, brandID, networkID, newMainEntryID, changeNote string) (*domain.ChangeLog, error) {
	return f.row, f.err
}

type fakeEntryReader struct {
	entry *domain.StructureEntry
	err   error
}

func (f *fakeEntryReader) GetEntry(ctx context.Context, entryID string) (*domain.StructureEntry, error) {
	return f.entry, f.err
}

type fakeComplaintManager struct {
	complaint *domain.OptimizationComplaint
	project   *domain.ProjectComplaint
	err       error
}

func (f *fakeComplaintManager) File(ctx context.Context, optimizationID, reason, priority string, responsibleUserIDs []string) (*domain.OptimizationComplaint, error) {
	return f.complaint, f.err
}

func (f *fakeComplaintManager) StartReview(ctx context.Context, complaintID string) (*domain.OptimizationComplaint, error) {
	return f.complaint, f.err
}

func (f *fakeComplaintManager) Resolve(ctx context.Context, complaintID, resolutionNote string) (*domain.OptimizationComplaint, error) {
	return f.complaint, f.err
}

func (f *fakeComplaintManager) FileProjectComplaint(ctx context.Context, networkID, reason, priority string) (*domain.ProjectComplaint, error) {
	return f.project, f.err
}

type fakeImpactEnricher struct{ enrichment *domain.DomainEnrichment }

func (f *fakeImpactEnricher) Enrich(ctx context.Context, assetDomainID string) (*domain.DomainEnrichment, error) {
	return f.enrichment, nil
}

type fakeEventRenderer struct{}

func (f *fakeEventRenderer) Render(ctx context.Context, channel domain.Channel, event domain.EventType, ctxData map[string]interface{}) (string, error) {
	return "test alert body", nil
}

type fakeEventNotifier struct{ sent []domain.EventType }

func (f *fakeEventNotifier) SendEvent(ctx context.Context, event domain.EventType, recipient, rendered string) (bool, error) {
	f.sent = append(f.sent, event)
	return true, nil
}

type fakeDomainNameResolver struct{ names map[string]string }

func (f *fakeDomainNameResolver) DomainName(ctx context.Context, assetDomainID string) (string, error) {
	return f.names[assetDomainID], nil
}

func newTestHandlers() *Handlers {
	return &Handlers{
		Graph:     &fakeDetector{conflicts: []domain.DetectedConflict{{ConflictType: domain.ConflictKeywordCannibalization}}},
		Linker:    &fakeIngester{summary: &linker.IngestSummary{Processed: 1, NewConflicts: 1}},
		Networks:  &fakeNetworkLister{networks: []domain.Network{{ID: "net-1"}, {ID: "net-2"}}},
		Templates: &fakeTemplatePreviewer{},
		Digest:    &fakeDigestPreviewer{},
		Ledger:    &fakeStructureWriter{row: &domain.ChangeLog{ID: "log-1"}},
		Entries:   &fakeEntryReader{entry: &domain.StructureEntry{ID: "entry-1"}},
		Complaints: &fakeComplaintManager{
			complaint: &domain.OptimizationComplaint{ID: "complaint-1", Status: domain.ComplaintCaseOpen},
			project:   &domain.ProjectComplaint{ID: "project-complaint-1"},
		},
		Enrich: &fakeImpactEnricher{enrichment: &domain.DomainEnrichment{
			Severity: domain.SeverityHigh,
			Impact:   domain.ImpactScore{DownstreamNodesCount: 2},
		}},
		Renderer: &fakeEventRenderer{},
		Notifier: &fakeEventNotifier{},
		Domains:  &fakeDomainNameResolver{names: map[string]string{"dom-a": "support.com"}},
		Health:   NewHealthChecker(nil, nil),
	}
}

func TestTriggerDetection(t *testing.T) {
	h := newTestHandlers()
	r := SetupRoutes(h)

	req := httptest.NewRequest(http.MethodPost, "/api/networks/net-1/detect", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"NewConflicts":1`)
}

func TestTriggerDetectionAll(t *testing.T) {
	h := newTestHandlers()
	r := SetupRoutes(h)

	req := httptest.NewRequest(http.MethodPost, "/api/networks/detect-all", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"net-1"`)
	assert.Contains(t, rec.Body.String(), `"net-2"`)
}

func TestPreviewTemplate(t *testing.T) {
	h := newTestHandlers()
	r := SetupRoutes(h)

	body := `{"channel":"chat","event_type":"seo_change","body":"{{node.domain}}"}`
	req := httptest.NewRequest(http.MethodPost, "/api/templates/preview", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rendered: {{node.domain}}")
}

func TestPreviewDigest(t *testing.T) {
	h := newTestHandlers()
	r := SetupRoutes(h)

	req := httptest.NewRequest(http.MethodGet, "/api/digest/preview", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "digest")
}

func TestCreateNetwork(t *testing.T) {
	h := newTestHandlers()
	r := SetupRoutes(h)

	body := `{"actor":{"user_id":"u1","display_name":"Op"},"brand_id":"brand-1","name":"Net-1","change_note":"spinning up the Q3 network"}`
	req := httptest.NewRequest(http.MethodPost, "/api/networks/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"log-1"`)
}

func TestCreateStructureNode(t *testing.T) {
	h := newTestHandlers()
	r := SetupRoutes(h)

	body := `{"actor":{"user_id":"u1","display_name":"Op"},"brand_id":"brand-1","change_note":"adding a page for Q3","asset_domain_id":"dom-a"}`
	req := httptest.NewRequest(http.MethodPost, "/api/networks/net-1/nodes", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"log-1"`)
}

func TestUpdateStructureNode(t *testing.T) {
	h := newTestHandlers()
	r := SetupRoutes(h)

	body := `{"actor":{"user_id":"u1","display_name":"Op"},"brand_id":"brand-1","change_note":"renaming path","asset_domain_id":"dom-a"}`
	req := httptest.NewRequest(http.MethodPut, "/api/networks/net-1/nodes/entry-1", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"log-1"`)
}

func TestUpdateStructureNode_NotFound(t *testing.T) {
	h := newTestHandlers()
	h.Entries = &fakeEntryReader{}
	r := SetupRoutes(h)

	body := `{"actor":{"user_id":"u1","display_name":"Op"},"brand_id":"brand-1","change_note":"renaming path"}`
	req := httptest.NewRequest(http.MethodPut, "/api/networks/net-1/nodes/missing", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteStructureNode(t *testing.T) {
	h := newTestHandlers()
	r := SetupRoutes(h)

	body := `{"actor":{"user_id":"u1","display_name":"Op"},"brand_id":"brand-1","change_note":"removing stale duplicate page"}`
	req := httptest.NewRequest(http.MethodDelete, "/api/networks/net-1/nodes/entry-1", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"log-1"`)
}

func TestSwitchMainNode(t *testing.T) {
	h := newTestHandlers()
	r := SetupRoutes(h)

	body := `{"actor":{"user_id":"u1","display_name":"Op"},"brand_id":"brand-1","change_note":"promoting this node to main","new_main_entry_id":"entry-2"}`
	req := httptest.NewRequest(http.MethodPost, "/api/networks/net-1/main-switch", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"log-1"`)
}

func TestFileComplaint(t *testing.T) {
	h := newTestHandlers()
	r := SetupRoutes(h)

	body := `{"reason":"wrong keyword targeted","priority":"high"}`
	req := httptest.NewRequest(http.MethodPost, "/api/optimizations/opt-1/complaints", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"complaint-1"`)
}

func TestFileComplaint_UnknownOptimization(t *testing.T) {
	h := newTestHandlers()
	h.Complaints = &fakeComplaintManager{err: complaints.ErrOptimizationNotFound}
	r := SetupRoutes(h)

	body := `{"reason":"wrong keyword targeted"}`
	req := httptest.NewRequest(http.MethodPost, "/api/optimizations/missing/complaints", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResolveComplaint_NoteTooShort(t *testing.T) {
	h := newTestHandlers()
	h.Complaints = &fakeComplaintManager{err: complaints.ErrResolutionNoteTooShort}
	r := SetupRoutes(h)

	body := `{"resolution_note":"fixed"}`
	req := httptest.NewRequest(http.MethodPost, "/api/complaints/complaint-1/resolve", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFileProjectComplaint(t *testing.T) {
	h := newTestHandlers()
	r := SetupRoutes(h)

	body := `{"reason":"whole network slipped","priority":"critical"}`
	req := httptest.NewRequest(http.MethodPost, "/api/networks/net-1/complaints", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"project-complaint-1"`)
}

func TestSendTestAlert(t *testing.T) {
	h := newTestHandlers()
	notifier := &fakeEventNotifier{}
	h.Notifier = notifier
	r := SetupRoutes(h)

	body := `{"asset_domain_id":"dom-a"}`
	req := httptest.NewRequest(http.MethodPost, "/api/test-alert", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sent":true`)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, domain.EventTest, notifier.sent[0])
}

func TestSendTestAlert_UnknownDomain(t *testing.T) {
	h := newTestHandlers()
	r := SetupRoutes(h)

	body := `{"asset_domain_id":"missing"}`
	req := httptest.NewRequest(http.MethodPost, "/api/test-alert", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	h := newTestHandlers()
	r := SetupRoutes(h)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzNotConfiguredIsHealthy(t *testing.T) {
	h := newTestHandlers()
	r := SetupRoutes(h)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}
