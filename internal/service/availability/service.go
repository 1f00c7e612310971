package availability

import (
	"context"
	"sync"
	"time"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/pkg/logger"
)

const defaultPollInterval = 60 * time.Second

// Service is the availability engine: an interval scheduler that
// probes every domain due for a check and alerts on up/down/soft_blocked
// state transitions.
type Service struct {
	repo     Repository
	prober   Prober
	renderer Renderer
	notifier Notifier
	enricher ImpactScorer
	dedup    AlertDeduper

	recoveryAlertsEnabled bool
	pollInterval          time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewService builds an availability Service. enricher may be nil, in which
// case down-transition alerts use a flat HIGH severity instead of the
// enrichment-derived, floor-adjusted one.
func NewService(repo Repository, prober Prober, renderer Renderer, notifier Notifier, enricher ImpactScorer, dedup AlertDeduper, recoveryAlertsEnabled bool, pollInterval time.Duration) *Service {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	if dedup == nil {
		dedup = NewInMemoryDeduper()
	}
	return &Service{
		repo: repo, prober: prober, renderer: renderer, notifier: notifier,
		enricher: enricher, dedup: dedup,
		recoveryAlertsEnabled: recoveryAlertsEnabled, pollInterval: pollInterval,
	}
}

// Start begins the background polling loop. Safe to call once; a second
// call on an already-running Service is a no-op.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	logger.Info("availability: engine started", "poll_interval", s.pollInterval.String())

	go func() {
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.RunOnce(ctx)
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop gracefully shuts down the polling loop.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
	logger.Info("availability: engine stopped")
}

// RunOnce probes every domain currently due for a check. Exported so tests
// can drive a single cycle without the ticker.
func (s *Service) RunOnce(ctx context.Context) {
	due, err := s.repo.ListDueForProbe(ctx, time.Now())
	if err != nil {
		logger.Error("availability: listing due domains failed", "error", err.Error())
		return
	}
	for _, d := range due {
		s.probeOne(ctx, d)
	}
}

func (s *Service) probeOne(ctx context.Context, d *domain.AssetDomain) {
	result := s.prober.Probe(ctx, d.DomainName)
	previous := d.PingStatus

	if err := s.repo.UpdateProbeResult(ctx, d.ID, result); err != nil {
		logger.Error("availability: recording probe result failed", "domain_id", d.ID, "error", err.Error())
		return
	}

	switch {
	case result.Status == domain.PingDown && previous != domain.PingDown:
		s.alertTransition(ctx, d, result, "down", domain.EventDomainDown)
	case result.Status == domain.PingSoftBlocked && previous != domain.PingSoftBlocked:
		s.alertTransition(ctx, d, result, "soft_blocked", domain.EventDomainDown)
	case result.Status == domain.PingUp && (previous == domain.PingDown || previous == domain.PingSoftBlocked):
		if s.recoveryAlertsEnabled {
			s.alertTransition(ctx, d, result, "recovery", domain.EventDomainDown)
		}
	}
}

// alertTransition renders and sends a notification for a state transition,
// deduped per (domain, alert_type) to at most once per 24h.
func (s *Service) alertTransition(ctx context.Context, d *domain.AssetDomain, result ProbeResult, alertType string, event domain.EventType) {
	allowed, err := s.dedup.ShouldAlert(ctx, d.ID, alertType)
	if err != nil {
		logger.Warn("availability: dedup check failed, alert skipped", "domain_id", d.ID, "error", err.Error())
		return
	}
	if !allowed {
		return
	}

	severity, emoji := s.severityFor(ctx, d, alertType)
	ctxData := map[string]interface{}{
		"domain": map[string]interface{}{
			"name":          d.DomainName,
			"status":        string(result.Status),
			"http_code":     result.HTTPCode,
			"http_status":   result.HTTPCode,
			"response_time": result.Reason,
		},
		"impact": map[string]interface{}{
			"severity":       severity,
			"severity_emoji": emoji,
		},
	}

	if s.renderer == nil || s.notifier == nil {
		return
	}

	body, err := s.renderer.Render(ctx, domain.ChannelChat, event, ctxData)
	if err != nil {
		logger.Warn("availability: render failed", "domain_id", d.ID, "error", err.Error())
		return
	}
	if _, err := s.notifier.SendEvent(ctx, event, "", body); err != nil {
		logger.Warn("availability: send failed", "domain_id", d.ID, "error", err.Error())
	}
}

// severityFor maps an alert type onto the severity scale: a down
// transition uses the enrichment-derived severity floored at HIGH (never
// lower, per "Any → down: alert... floored at HIGH"); soft_blocked and
// recovery are WARNING-class and never participate in the CRITICAL..LOW
// scale (soft_blocked never counts against availability SLA).
func (s *Service) severityFor(ctx context.Context, d *domain.AssetDomain, alertType string) (string, string) {
	if alertType != "down" {
		return "warning", "🟡"
	}
	sev := domain.SeverityHigh
	if s.enricher != nil {
		if computed, err := s.enricher.DomainSeverity(ctx, d.ID); err == nil && computed.Rank() < sev.Rank() {
			sev = computed
		}
	}
	return string(sev), sev.Emoji()
}
