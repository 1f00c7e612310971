package audit

import (
	"context"
	"time"

	"github.com/ignite/seo-noc/internal/domain"
)

// Filter narrows a Query to a subset of audit rows. Zero-value fields are
// left unfiltered.
type Filter struct {
	EventType  string
	ActorEmail string
	Resource   string
	Severity   domain.AuditSeverity
	Success    *bool
	Since      *time.Time
	Until      *time.Time
}

// Page is a pagination window over Query's results.
type Page struct {
	Limit  int
	Offset int
}

// Stats is the stats-over-the-last-N-days rollup.
type Stats struct {
	PeriodDays   int
	Total        int
	FailureCount int
	BySeverity   map[domain.AuditSeverity]int
	ByEventType  map[string]int
}

// Repository is the primary (Postgres) audit store.
type Repository interface {
	Insert(ctx context.Context, row *domain.AuditLog) error
	Query(ctx context.Context, filter Filter, page Page) ([]domain.AuditLog, int, error)
	Stats(ctx context.Context, since time.Time) (Stats, error)
}

// Mirror is a secondary store (DynamoDB) that receives a best-effort copy
// of every audit row for coarse-key, high-volume queries. A nil or
// failing Mirror never blocks the primary write.
type Mirror interface {
	Insert(ctx context.Context, row *domain.AuditLog) error
}
