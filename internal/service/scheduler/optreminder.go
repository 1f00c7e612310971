package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/pkg/logger"
)

const (
	defaultOptimizationReminderCheckInterval = time.Hour
	defaultOptimizationReminderIntervalDays  = 2
)

// OptimizationSettingsProvider resolves the globally configured reminder
// interval, optionally overridden per network within the 1-30 day range.
type OptimizationSettingsProvider interface {
	OptimizationReminderSettings(ctx context.Context, networkID string) (domain.OptimizationReminderSettings, error)
}

// OptimizationReminderService is the in-progress-optimization reminder
// loop: it nudges assigned managers when an optimization has sat in
// progress without attention for longer than the configured interval.
type OptimizationReminderService struct {
	repo     Repository
	renderer Renderer
	notifier Notifier
	settings OptimizationSettingsProvider

	checkInterval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewOptimizationReminderService builds the optimization reminder loop.
func NewOptimizationReminderService(repo Repository, renderer Renderer, notifier Notifier, settings OptimizationSettingsProvider, checkInterval time.Duration) *OptimizationReminderService {
	if checkInterval <= 0 {
		checkInterval = defaultOptimizationReminderCheckInterval
	}
	return &OptimizationReminderService{
		repo: repo, renderer: renderer, notifier: notifier, settings: settings,
		checkInterval: checkInterval,
	}
}

// Start begins the background loop.
func (s *OptimizationReminderService) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	logger.Info("scheduler: optimization reminder loop started", "check_interval", s.checkInterval.String())

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
func (s *OptimizationReminderService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
	logger.Info("scheduler: optimization reminder loop stopped")
}

func (s *OptimizationReminderService) intervalFor(ctx context.Context, networkID string) time.Duration {
	days := defaultOptimizationReminderIntervalDays
	if s.settings != nil {
		if cfg, err := s.settings.OptimizationReminderSettings(ctx, networkID); err == nil && cfg.Enabled {
			if cfg.IntervalDays >= 1 && cfg.IntervalDays <= 30 {
				days = cfg.IntervalDays
			}
		} else if err == nil && !cfg.Enabled {
			return 0
		}
	}
	return time.Duration(days) * 24 * time.Hour
}

// RunOnce walks every in-progress optimization and reminds its assigned
// manager(s) once the configured interval has elapsed since the last
// reminder (or since creation, if none has been sent yet).
func (s *OptimizationReminderService) RunOnce(ctx context.Context) {
	opts, err := s.repo.ListInProgressOptimizations(ctx)
	if err != nil {
		logger.Error("scheduler: failed to list in-progress optimizations", "error", err)
		return
	}

	now := time.Now()
	for i := range opts {
		o := &opts[i]

		interval := s.intervalFor(ctx, o.NetworkID)
		if interval <= 0 {
			continue
		}

		last := o.CreatedAt
		if o.LastReminderSentAt != nil {
			last = *o.LastReminderSentAt
		}
		if now.Sub(last) < interval {
			continue
		}

		network, err := s.repo.GetNetwork(ctx, o.NetworkID)
		if err != nil {
			logger.Error("scheduler: failed to load network for optimization reminder", "optimization_id", o.ID, "error", err)
			continue
		}

		recipients := network.ManagerIDs
		if len(recipients) == 0 && network.CreatedBy != "" {
			recipients = []string{network.CreatedBy}
		}
		if len(recipients) == 0 {
			continue
		}

		ctxData := map[string]interface{}{
			"optimization.title":  o.Title,
			"optimization.status": string(o.Status),
			"network.name":        network.Name,
		}

		sent := false
		if s.renderer != nil && s.notifier != nil {
			rendered, err := s.renderer.Render(ctx, domain.ChannelChat, domain.EventReminder, ctxData)
			if err != nil {
				logger.Error("scheduler: failed to render optimization reminder", "optimization_id", o.ID, "error", err)
			} else {
				for _, recipient := range recipients {
					if _, err := s.notifier.SendEvent(ctx, domain.EventReminder, recipient, rendered); err != nil {
						logger.Error("scheduler: failed to send optimization reminder", "optimization_id", o.ID, "recipient", recipient, "error", err)
						continue
					}
					sent = true
				}
			}
		}

		if !sent {
			continue
		}

		if err := s.repo.MarkOptimizationReminderSent(ctx, o.ID, now); err != nil {
			logger.Error("scheduler: failed to mark optimization reminder sent", "optimization_id", o.ID, "error", err)
			continue
		}

		logger.Info("scheduler: sent optimization in-progress reminder",
			"optimization_id", o.ID, "network_id", o.NetworkID, "recipients", len(recipients))
	}
}
