package linker

import "github.com/ignite/seo-noc/internal/domain"

// SeverityBucket tallies conflicts of one severity within a metrics window.
type SeverityBucket struct {
	Total    int
	Resolved int
}

// TypeBucket tallies conflicts of one type within a metrics window.
type TypeBucket struct {
	Total    int
	Resolved int
}

// Metrics is the conflict-resolution metrics payload: time-to-resolution,
// per-severity/per-type breakdowns, per-resolver counts, and active-only
// recurrence counting.
type Metrics struct {
	PeriodDays             int
	TotalConflicts         int
	ResolvedCount          int
	OpenCount              int
	AvgResolutionTimeHours float64
	RecurringConflicts     int
	BySeverity             map[domain.Severity]*SeverityBucket
	ByType                 map[domain.ConflictType]*TypeBucket
	ByResolver             map[string]int
}

func isResolvedStatus(status domain.ConflictStatus) bool {
	return status == domain.ConflictResolved || status == domain.ConflictApproved
}
