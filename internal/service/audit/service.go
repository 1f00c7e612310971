package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/pkg/logger"
)

// Service is the audit log: every caller across the system funnels
// privileged-action records through Record rather than writing rows
// directly, so the primary-write / best-effort-mirror discipline lives in
// one place.
type Service struct {
	repo   Repository
	mirror Mirror
}

// NewService builds the audit log service. mirror may be nil when no
// secondary store is configured.
func NewService(repo Repository, mirror Mirror) *Service {
	return &Service{repo: repo, mirror: mirror}
}

// Record appends one audit row. The write to the primary store is
// synchronous and its error propagates; the mirror write is best-effort and
// only logged on failure — surface an error and note the inconsistency
// rather than attempt a rollback that might itself fail.
func (s *Service) Record(ctx context.Context, eventType, actorEmail, resource, details string, severity domain.AuditSeverity, success bool) error {
	row := &domain.AuditLog{
		ID:         uuid.NewString(),
		EventType:  eventType,
		ActorEmail: actorEmail,
		Resource:   resource,
		Details:    details,
		Severity:   severity,
		Success:    success,
		Timestamp:  time.Now(),
	}

	if err := s.repo.Insert(ctx, row); err != nil {
		return err
	}

	if s.mirror != nil {
		if err := s.mirror.Insert(ctx, row); err != nil {
			logger.Error("audit: mirror write failed", "event_type", eventType, "resource", resource, "error", err)
		}
	}

	return nil
}

// Query lists audit rows matching filter, paginated, alongside the total
// matching count (for the caller to compute remaining pages).
func (s *Service) Query(ctx context.Context, filter Filter, page Page) ([]domain.AuditLog, int, error) {
	if page.Limit <= 0 || page.Limit > 500 {
		page.Limit = 100
	}
	if page.Offset < 0 {
		page.Offset = 0
	}
	return s.repo.Query(ctx, filter, page)
}

// Stats computes the stats-over-N-days rollup.
func (s *Service) Stats(ctx context.Context, days int) (Stats, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)
	return s.repo.Stats(ctx, since)
}
