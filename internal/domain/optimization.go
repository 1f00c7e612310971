package domain

import "time"

// OptimizationStatus tracks the lifecycle of a remediation task.
type OptimizationStatus string

const (
	OptimizationPlanned    OptimizationStatus = "planned"
	OptimizationInProgress OptimizationStatus = "in_progress"
	OptimizationCompleted  OptimizationStatus = "completed"
	OptimizationReverted   OptimizationStatus = "reverted"
)

// AffectedScope describes the blast radius an optimization targets.
type AffectedScope string

const (
	ScopeMoneySite    AffectedScope = "money_site"
	ScopeDomain       AffectedScope = "domain"
	ScopePath         AffectedScope = "path"
	ScopeWholeNetwork AffectedScope = "whole_network"
	ScopeSpecificDomain AffectedScope = "specific_domain"
)

// ImpactArea is one dimension of expected/observed business impact.
type ImpactArea string

const (
	ImpactRanking    ImpactArea = "ranking"
	ImpactAuthority  ImpactArea = "authority"
	ImpactCrawl      ImpactArea = "crawl"
	ImpactConversion ImpactArea = "conversion"
)

// ComplaintStatus tracks whether stakeholders have objected to an optimization.
type ComplaintStatus string

const (
	OptComplaintNone         ComplaintStatus = "none"
	OptComplaintFiled        ComplaintStatus = "complained"
	OptComplaintUnderReview  ComplaintStatus = "under_review"
	OptComplaintResolved     ComplaintStatus = "resolved"
)

// Individual complaint records track their own lifecycle, distinct from the
// optimization-level ComplaintStatus rollup above.
const (
	ComplaintCaseOpen        = "open"
	ComplaintCaseUnderReview = "under_review"
	ComplaintCaseResolved    = "resolved"
)

// ReportURL is a supporting reference document for an optimization.
type ReportURL struct {
	URL       string    `json:"url"`
	StartDate time.Time `json:"start_date"`
}

// ActorRef identifies who performed an action, kept denormalized so ledger
// and optimization records remain readable without joining to a user table
// this system does not own (user storage lives in an external system).
type ActorRef struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// ResponseEntry is one team member's response logged against an optimization.
type ResponseEntry struct {
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Optimization is a work-tracking record for a planned SEO intervention,
// optionally linked to a detected conflict.
type Optimization struct {
	ID                string              `json:"id" db:"id"`
	NetworkID         string              `json:"network_id" db:"network_id"`
	BrandID           string              `json:"brand_id,omitempty" db:"brand_id"`
	Title             string              `json:"title" db:"title"`
	Description       string              `json:"description" db:"description"`
	ReasonNote        string              `json:"reason_note" db:"reason_note"`
	ActivityType      string              `json:"activity_type" db:"activity_type"`
	AffectedScope     AffectedScope       `json:"affected_scope" db:"affected_scope"`
	TargetDomains     []string            `json:"target_domains" db:"target_domains"`
	Keywords          []string            `json:"keywords" db:"keywords"`
	ReportURLs        []ReportURL         `json:"report_urls" db:"report_urls"`
	ExpectedImpact    []ImpactArea        `json:"expected_impact" db:"expected_impact"`
	ObservedImpact    []ImpactArea        `json:"observed_impact,omitempty" db:"observed_impact"`
	Status            OptimizationStatus  `json:"status" db:"status"`
	ComplaintStatus   ComplaintStatus     `json:"complaint_status" db:"complaint_status"`
	LinkedConflictID  *string             `json:"linked_conflict_id,omitempty" db:"linked_conflict_id"`
	Priority          string              `json:"priority" db:"priority"`
	AssignedTo        *string             `json:"assigned_to,omitempty" db:"assigned_to"`
	CreatedBy         ActorRef            `json:"created_by" db:"created_by"`
	CreatedAt         time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at" db:"updated_at"`
	ClosedAt          *time.Time          `json:"closed_at,omitempty" db:"closed_at"`
	ClosedBy          *string             `json:"closed_by,omitempty" db:"closed_by"`
	LastReminderSentAt *time.Time         `json:"last_reminder_sent_at,omitempty" db:"last_reminder_sent_at"`
	Responses         []ResponseEntry     `json:"responses" db:"responses"`
}

// OptimizationComplaint is a complaint filed against a specific optimization.
type OptimizationComplaint struct {
	ID                     string     `json:"id" db:"id"`
	OptimizationID         string     `json:"optimization_id" db:"optimization_id"`
	Reason                 string     `json:"reason" db:"reason"`
	Priority               string     `json:"priority" db:"priority"`
	ResponsibleUserIDs     []string   `json:"responsible_user_ids" db:"responsible_user_ids"`
	Status                 string     `json:"status" db:"status"`
	ResolvedAt             *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
	ResolutionNote         string     `json:"resolution_note,omitempty" db:"resolution_note"`
	TimeToResolutionHours  *float64   `json:"time_to_resolution_hours,omitempty" db:"time_to_resolution_hours"`
	CreatedAt              time.Time  `json:"created_at" db:"created_at"`
}

// ProjectComplaint is a network-level complaint not tied to a single optimization.
type ProjectComplaint struct {
	ID        string    `json:"id" db:"id"`
	NetworkID string    `json:"network_id" db:"network_id"`
	Reason    string    `json:"reason" db:"reason"`
	Priority  string    `json:"priority" db:"priority"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
