package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/pkg/logger"
)

const defaultUnmonitoredCheckInterval = 24 * time.Hour

// UnmonitoredReminderService is the daily "MONITORING NOT ENABLED"
// reminder loop: it continues firing for a domain every day until
// monitoring is enabled or the domain leaves every SEO network.
type UnmonitoredReminderService struct {
	repo     Repository
	renderer Renderer
	notifier Notifier
	enricher ImpactScorer
	dedup    ReminderDeduper

	seoChatRecipient string
	checkInterval    time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewUnmonitoredReminderService builds the unmonitored-domain reminder loop.
func NewUnmonitoredReminderService(repo Repository, renderer Renderer, notifier Notifier, enricher ImpactScorer, dedup ReminderDeduper, seoChatRecipient string, checkInterval time.Duration) *UnmonitoredReminderService {
	if checkInterval <= 0 {
		checkInterval = defaultUnmonitoredCheckInterval
	}
	if dedup == nil {
		dedup = NewInMemoryReminderDeduper()
	}
	return &UnmonitoredReminderService{
		repo: repo, renderer: renderer, notifier: notifier, enricher: enricher, dedup: dedup,
		seoChatRecipient: seoChatRecipient, checkInterval: checkInterval,
	}
}

// Start begins the background loop. It runs once immediately, then re-enters
// every checkInterval (default daily), matching the expiration engine's
// startup-plus-ticker shape.
func (s *UnmonitoredReminderService) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	logger.Info("scheduler: unmonitored-domain reminder loop started", "check_interval", s.checkInterval.String())

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

// Stop gracefully shuts down the loop.
func (s *UnmonitoredReminderService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
	logger.Info("scheduler: unmonitored-domain reminder loop stopped")
}

// RunOnce sends one reminder pass over every domain referenced in an SEO
// network with monitoring disabled, deduped to at most one send per domain
// per 24h.
func (s *UnmonitoredReminderService) RunOnce(ctx context.Context) {
	domains, err := s.repo.ListUnmonitoredDomains(ctx)
	if err != nil {
		logger.Error("scheduler: failed to list unmonitored domains", "error", err)
		return
	}

	for i := range domains {
		d := &domains[i]

		due, err := s.dedup.ShouldRemind(ctx, d.ID)
		if err != nil {
			logger.Error("scheduler: dedup check failed", "asset_domain_id", d.ID, "error", err)
			continue
		}
		if !due {
			continue
		}

		ctxData := map[string]interface{}{
			"domain.name":   d.DomainName,
			"domain.status": string(d.Status),
		}
		if s.enricher != nil {
			if sev, err := s.enricher.DomainSeverity(ctx, d.ID); err == nil {
				ctxData["impact.severity"] = string(sev)
				ctxData["impact.severity_emoji"] = sev.Emoji()
			}
		}

		if s.renderer == nil || s.notifier == nil {
			continue
		}
		rendered, err := s.renderer.Render(ctx, domain.ChannelChat, domain.EventReminder, ctxData)
		if err != nil {
			logger.Error("scheduler: failed to render unmonitored reminder", "asset_domain_id", d.ID, "error", err)
			continue
		}
		if _, err := s.notifier.SendEvent(ctx, domain.EventReminder, s.seoChatRecipient, rendered); err != nil {
			logger.Error("scheduler: failed to send unmonitored reminder", "asset_domain_id", d.ID, "error", err)
		}
	}
}
