package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/pkg/httputil"
)

// ImpactEnricher is the narrow read from the context enricher the test-alert
// path needs. Satisfied by enrich.Service.
type ImpactEnricher interface {
	Enrich(ctx context.Context, assetDomainID string) (*domain.DomainEnrichment, error)
}

// EventRenderer renders a (channel, event) template against a context.
// Satisfied by templates.Service.
type EventRenderer interface {
	Render(ctx context.Context, channel domain.Channel, event domain.EventType, ctxData map[string]interface{}) (string, error)
}

// EventNotifier delivers a rendered message. Satisfied by notify.Service.
type EventNotifier interface {
	SendEvent(ctx context.Context, event domain.EventType, recipient, rendered string) (bool, error)
}

// DomainNameResolver resolves an asset domain id to its hostname.
// Satisfied by postgres.AssetDomainRepo.
type DomainNameResolver interface {
	DomainName(ctx context.Context, assetDomainID string) (string, error)
}

// testAlertRequest is the body for the test-alert simulation.
type testAlertRequest struct {
	AssetDomainID string `json:"asset_domain_id"`
}

// SendTestAlert runs the full enrichment + template-render + notifier
// pipeline against a given domain without persisting any conflict or ledger
// row — an operator's way to verify channel configuration end to end.
//
//	POST /api/test-alert
func (h *Handlers) SendTestAlert(w http.ResponseWriter, r *http.Request) {
	var req testAlertRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.AssetDomainID == "" {
		httputil.BadRequest(w, "missing asset_domain_id")
		return
	}

	name, err := h.Domains.DomainName(r.Context(), req.AssetDomainID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if name == "" {
		httputil.NotFound(w, "asset domain not found")
		return
	}

	enrichment, err := h.Enrich.Enrich(r.Context(), req.AssetDomainID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	ctxData := map[string]interface{}{
		"domain": map[string]interface{}{
			"name":   name,
			"status": "test",
		},
		"impact": map[string]interface{}{
			"severity":       string(enrichment.Severity),
			"severity_emoji": enrichment.Severity.Emoji(),
			"affected_count": fmt.Sprintf("%d", enrichment.Impact.DownstreamNodesCount),
		},
		"structure": map[string]interface{}{
			"upstream_chain":    formatTestChain(enrichment),
			"downstream_impact": fmt.Sprintf("%d nodes", enrichment.Impact.DownstreamNodesCount),
		},
	}

	rendered, err := h.Renderer.Render(r.Context(), domain.ChannelChat, domain.EventTest, ctxData)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	sent, err := h.Notifier.SendEvent(r.Context(), domain.EventTest, "", rendered)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]interface{}{"sent": sent, "rendered": rendered})
}

// formatTestChain renders the first reference's upstream authority chain in
// the same bracket-and-arrow shape change notifications use.
func formatTestChain(enrichment *domain.DomainEnrichment) string {
	if len(enrichment.References) == 0 {
		return ""
	}
	chain := enrichment.References[0].UpstreamChain
	if len(chain) == 0 {
		return ""
	}
	parts := []string{fmt.Sprintf("%s [%s]", chain[0].NodeLabel, chain[0].StatusLabel)}
	for _, hop := range chain {
		if hop.TargetLabel == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s [%s]", hop.TargetLabel, hop.TargetStatusLabel))
	}
	return strings.Join(parts, " → ")
}
