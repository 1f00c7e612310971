package expiration

import (
	"context"
	"sync"
	"time"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/pkg/logger"
)

const defaultCheckInterval = time.Hour

// Service is the expiration engine: two independent clocks
// (registrar expiration_date, TLS cert_expiration_date) sharing the same
// threshold table and scheduler shape, distinguished only by which
// Repository listing and which dedup "clock" namespace they use.
type Service struct {
	repo     Repository
	renderer Renderer
	notifier Notifier
	scorer   ImpactScorer
	dedup    Deduper

	checkInterval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewService builds an expiration Service.
func NewService(repo Repository, renderer Renderer, notifier Notifier, scorer ImpactScorer, dedup Deduper, checkInterval time.Duration) *Service {
	if checkInterval <= 0 {
		checkInterval = defaultCheckInterval
	}
	if dedup == nil {
		dedup = NewInMemoryDeduper()
	}
	return &Service{repo: repo, renderer: renderer, notifier: notifier, scorer: scorer, dedup: dedup, checkInterval: checkInterval}
}

// Start runs an immediate pass before entering the ticker loop, then
// checks hourly thereafter; the 24h dedup windows keep actual alert
// delivery to at most once per calendar day per domain/threshold even
// though the scheduler itself polls more often, so effective work runs at
// most once per calendar day per domain without wall-clock day-boundary
// bookkeeping of its own.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	logger.Info("expiration: engine started")
	s.RunOnce(ctx)

	go func() {
		ticker := time.NewTicker(s.checkInterval)
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

// Stop gracefully shuts down the scheduler.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
	logger.Info("expiration: engine stopped")
}

// RunOnce runs a single pass of both clocks. Exported for the startup call
// above and for tests.
func (s *Service) RunOnce(ctx context.Context) {
	s.runClock(ctx, "registrar", domain.EventDomainExpiration, func(d *domain.AssetDomain) *time.Time { return d.ExpirationDate }, s.listRegistrar)
	s.runClock(ctx, "cert", domain.EventDomainExpiration, func(d *domain.AssetDomain) *time.Time { return d.CertExpirationDate }, s.listCert)
}

func (s *Service) listRegistrar(ctx context.Context) ([]*domain.AssetDomain, error) {
	return s.repo.ListWithExpirationDate(ctx)
}

func (s *Service) listCert(ctx context.Context) ([]*domain.AssetDomain, error) {
	return s.repo.ListWithCertExpirationDate(ctx)
}

func (s *Service) runClock(ctx context.Context, clock string, event domain.EventType, dateOf func(*domain.AssetDomain) *time.Time, list func(context.Context) ([]*domain.AssetDomain, error)) {
	domains, err := list(ctx)
	if err != nil {
		logger.Error("expiration: listing domains failed", "clock", clock, "error", err.Error())
		return
	}
	for _, d := range domains {
		date := dateOf(d)
		if date == nil {
			continue
		}
		daysRemaining := daysUntil(*date)
		threshold, due := thresholdFor(daysRemaining)
		if !due {
			continue
		}
		s.alert(ctx, d, clock, event, daysRemaining, threshold)
	}
}

func daysUntil(date time.Time) int {
	now := time.Now()
	return int(date.Sub(now).Hours() / 24)
}

func (s *Service) alert(ctx context.Context, d *domain.AssetDomain, clock string, event domain.EventType, daysRemaining, threshold int) {
	allowed, err := s.dedup.ShouldAlert(ctx, d.ID, clock, daysRemaining, threshold)
	if err != nil {
		logger.Warn("expiration: dedup check failed, alert skipped", "domain_id", d.ID, "error", err.Error())
		return
	}
	if !allowed {
		return
	}

	severity := s.severityFor(ctx, d, daysRemaining)
	ctxData := map[string]interface{}{
		"domain": map[string]interface{}{
			"name":              d.DomainName,
			"days_until_expiry": daysRemaining,
			"registrar":         d.RegistrarID,
			"status":            string(d.Status),
		},
		"impact": map[string]interface{}{
			"severity":       string(severity),
			"severity_emoji": severity.Emoji(),
		},
	}

	if s.renderer == nil || s.notifier == nil {
		return
	}
	body, err := s.renderer.Render(ctx, domain.ChannelChat, event, ctxData)
	if err != nil {
		logger.Warn("expiration: render failed", "domain_id", d.ID, "clock", clock, "error", err.Error())
		return
	}
	if _, err := s.notifier.SendEvent(ctx, event, "", body); err != nil {
		logger.Warn("expiration: send failed", "domain_id", d.ID, "clock", clock, "error", err.Error())
	}
}

// severityFor: CRITICAL if expired or <=3 days and SEO-impacting;
// otherwise elevated from the base SEO severity according to
// days-remaining bands. The base severity comes from the context
// enricher (or MEDIUM if no enricher is wired); bands only ever raise it,
// never lower it, matching the same floor pattern as the availability
// engine's down-transition severity.
func (s *Service) severityFor(ctx context.Context, d *domain.AssetDomain, daysRemaining int) domain.Severity {
	base := domain.SeverityMedium
	impacting := false
	if s.scorer != nil {
		if computed, err := s.scorer.DomainSeverity(ctx, d.ID); err == nil {
			base = computed
		}
		if imp, err := s.scorer.IsSEOImpacting(ctx, d.ID); err == nil {
			impacting = imp
		}
	}

	if daysRemaining < 0 || (daysRemaining <= 3 && impacting) {
		return domain.SeverityCritical
	}

	floor := domain.SeverityLow
	switch {
	case daysRemaining <= 7:
		floor = domain.SeverityHigh
	case daysRemaining <= 14:
		floor = domain.SeverityMedium
	}
	if floor.Rank() < base.Rank() {
		return floor
	}
	return base
}
