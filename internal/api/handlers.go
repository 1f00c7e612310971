package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/pkg/httputil"
	"github.com/ignite/seo-noc/internal/service/linker"
)

// NetworkLister is the narrow read the "detect everywhere" trigger needs,
// satisfied by postgres.NetworkRepo.ListAll.
type NetworkLister interface {
	ListAll(ctx context.Context) ([]domain.Network, error)
}

// Detector is the narrow read from the graph engine the detection trigger
// needs, satisfied by graph.Service (duck-typed, consistent with every
// other package's consumer-owned interfaces).
type Detector interface {
	DetectConflicts(ctx context.Context, networkID string) ([]domain.DetectedConflict, error)
}

// Ingester is the narrow write into the linker the detection trigger needs,
// satisfied by linker.Service.
type Ingester interface {
	IngestDetectionBatch(ctx context.Context, networkID string, detected []domain.DetectedConflict) (*linker.IngestSummary, error)
}

// TemplatePreviewer is the narrow read the template preview endpoint needs,
// satisfied by templates.Service.
type TemplatePreviewer interface {
	Preview(channel domain.Channel, event domain.EventType, body string) (string, error)
}

// DigestPreviewer is the narrow read the digest preview endpoint needs,
// satisfied by scheduler.DigestService.
type DigestPreviewer interface {
	Preview(ctx context.Context, now time.Time) (string, error)
}

// Handlers holds the engine references the operator surface drives.
type Handlers struct {
	Graph      Detector
	Linker     Ingester
	Networks   NetworkLister
	Templates  TemplatePreviewer
	Digest     DigestPreviewer
	Ledger     StructureWriter
	Entries    EntryReader
	Complaints ComplaintManager
	Enrich     ImpactEnricher
	Renderer   EventRenderer
	Notifier   EventNotifier
	Domains    DomainNameResolver
	Health     *HealthChecker
}

// detectResult reports one network's manual detection run.
type detectResult struct {
	NetworkID string `json:"network_id"`
	Error     string `json:"error,omitempty"`
	*linker.IngestSummary
}

// TriggerDetection runs the detector suite and reconciles it against stored
// conflicts for one network.
//
//	POST /api/networks/{id}/detect
func (h *Handlers) TriggerDetection(w http.ResponseWriter, r *http.Request) {
	networkID := chi.URLParam(r, "id")
	if networkID == "" {
		httputil.BadRequest(w, "missing network id")
		return
	}
	result := h.detectOne(r.Context(), networkID)
	if result.Error != "" {
		httputil.Error(w, http.StatusInternalServerError, result.Error)
		return
	}
	httputil.OK(w, result)
}

// TriggerDetectionAll runs the detector suite across every network,
// aggregating per-network results. Used by operators after a bulk import or
// suspected data drift, where triggering network-by-network is impractical.
//
//	POST /api/networks/detect-all
func (h *Handlers) TriggerDetectionAll(w http.ResponseWriter, r *http.Request) {
	networks, err := h.Networks.ListAll(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	results := make([]detectResult, 0, len(networks))
	for _, n := range networks {
		results = append(results, h.detectOne(r.Context(), n.ID))
	}
	httputil.OK(w, results)
}

func (h *Handlers) detectOne(ctx context.Context, networkID string) detectResult {
	detected, err := h.Graph.DetectConflicts(ctx, networkID)
	if err != nil {
		return detectResult{NetworkID: networkID, Error: err.Error()}
	}
	summary, err := h.Linker.IngestDetectionBatch(ctx, networkID, detected)
	if err != nil {
		return detectResult{NetworkID: networkID, Error: err.Error()}
	}
	return detectResult{NetworkID: networkID, IngestSummary: summary}
}

// templatePreviewRequest is the body for the template preview endpoint.
type templatePreviewRequest struct {
	Channel   domain.Channel   `json:"channel"`
	EventType domain.EventType `json:"event_type"`
	Body      string           `json:"body"`
}

// PreviewTemplate renders an operator-supplied template body against a
// fixed sample context, without saving it, so the allow-list and output can
// be checked before committing to SaveTemplate.
//
//	POST /api/templates/preview
func (h *Handlers) PreviewTemplate(w http.ResponseWriter, r *http.Request) {
	var req templatePreviewRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	rendered, err := h.Templates.Preview(req.Channel, req.EventType, req.Body)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.OK(w, map[string]string{"rendered": rendered})
}

// PreviewDigest renders the weekly digest an operator would currently
// receive, without sending it or marking it sent.
//
//	GET /api/digest/preview
func (h *Handlers) PreviewDigest(w http.ResponseWriter, r *http.Request) {
	html, err := h.Digest.Preview(r.Context(), time.Now())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]string{"html": html})
}

