package linker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/pkg/logger"
)

// IngestSummary tallies the outcome of one detection-batch ingest.
type IngestSummary struct {
	Processed            int
	NewConflicts         int
	RecurringConflicts   int
	OptimizationsCreated int
	NotificationsSent    int
}

// Service implements the conflict-optimization linker.
type Service struct {
	repo      Repository
	notifier  Notifier
	suggester SuggestionGenerator
	seoChatID string
}

// NewService builds a linker Service. suggester may be nil to disable
// AI-assisted suggestion drafting (a detector-less conflict is then left
// with an empty Suggestion field, never blocking ingestion).
func NewService(repo Repository, notifier Notifier, suggester SuggestionGenerator, seoChatID string) *Service {
	return &Service{repo: repo, notifier: notifier, suggester: suggester, seoChatID: seoChatID}
}

// IngestDetectionBatch reconciles a fresh detector run against
// stored conflicts for a network: unknown fingerprints are inserted and
// linked to a new optimization, known-but-dormant fingerprints recur, and
// known-and-open fingerprints are merely touched.
func (s *Service) IngestDetectionBatch(ctx context.Context, networkID string, detected []domain.DetectedConflict) (*IngestSummary, error) {
	network, err := s.repo.GetNetwork(ctx, networkID)
	if err != nil {
		return nil, fmt.Errorf("linker: get network %s: %w", networkID, err)
	}

	existing, err := s.repo.ListConflicts(ctx, networkID)
	if err != nil {
		return nil, fmt.Errorf("linker: list conflicts for network %s: %w", networkID, err)
	}
	byFingerprint := make(map[string]*domain.Conflict, len(existing))
	for i := range existing {
		byFingerprint[existing[i].Fingerprint] = &existing[i]
	}

	summary := &IngestSummary{Processed: len(detected)}
	now := time.Now()

	for _, dc := range detected {
		fp := Fingerprint(networkID, string(dc.ConflictType), dc.DomainID, dc.NodePath, dc.Tier, dc.TargetPath)

		current, ok := byFingerprint[fp]
		switch {
		case !ok:
			c := s.newConflict(ctx, networkID, fp, dc, now)
			if err := s.repo.InsertConflict(ctx, c); err != nil {
				return nil, fmt.Errorf("linker: insert conflict: %w", err)
			}
			summary.NewConflicts++
			s.linkOptimization(ctx, network, c, false, summary)
			byFingerprint[fp] = c

		case current.Status.IsDormant():
			current.RecurrenceCount++
			current.LastRecurrenceAt = &now
			current.Status = domain.ConflictDetected
			current.IsActive = true
			current.OptimizationID = nil
			current.UpdatedAt = now
			if err := s.repo.UpdateConflict(ctx, current); err != nil {
				return nil, fmt.Errorf("linker: update recurring conflict: %w", err)
			}
			summary.RecurringConflicts++
			s.linkOptimization(ctx, network, current, true, summary)

		default:
			current.UpdatedAt = now
			if err := s.repo.UpdateConflict(ctx, current); err != nil {
				return nil, fmt.Errorf("linker: touch open conflict: %w", err)
			}
		}
	}

	return summary, nil
}

func (s *Service) newConflict(ctx context.Context, networkID, fingerprint string, dc domain.DetectedConflict, now time.Time) *domain.Conflict {
	suggestion := dc.Suggestion
	if suggestion == "" && s.suggester != nil {
		drafted, err := s.suggester.Suggest(ctx, dc.ConflictType, dc.Description)
		if err != nil {
			logger.Warn("linker: suggestion generation failed, leaving suggestion empty", "conflict_type", dc.ConflictType, "error", err)
		} else {
			suggestion = drafted
		}
	}

	c := &domain.Conflict{
		ID:              uuid.NewString(),
		NetworkID:       networkID,
		ConflictType:    dc.ConflictType,
		Severity:        dc.Severity,
		Status:          domain.ConflictDetected,
		IsActive:        true,
		Fingerprint:     fingerprint,
		NodeAID:         dc.NodeAID,
		NodeALabel:      dc.NodeALabel,
		DomainName:      dc.DomainName,
		Description:     dc.Description,
		DetectedAt:      now,
		FirstDetectedAt: now,
		RecurrenceCount: 0,
		UpdatedAt:       now,
	}
	if dc.NodeBID != "" {
		c.NodeBID = &dc.NodeBID
	}
	if dc.NodeBLabel != "" {
		c.NodeBLabel = &dc.NodeBLabel
	}
	if suggestion != "" {
		c.Suggestion = &suggestion
	}
	return c
}

// linkOptimization creates and links a remediation optimization for a
// (new or recurring) conflict, then sends the detection notification. Best
// effort for the notification leg: a failed send is logged, never returned
// as an ingest error.
func (s *Service) linkOptimization(ctx context.Context, network *domain.Network, c *domain.Conflict, recurring bool, summary *IngestSummary) {
	opt := s.buildOptimization(network, c, recurring)
	if err := s.repo.InsertOptimization(ctx, opt); err != nil {
		logger.Warn("linker: failed to create linked optimization", "conflict_id", c.ID, "error", err)
		return
	}
	summary.OptimizationsCreated++

	c.OptimizationID = &opt.ID
	c.Status = domain.ConflictUnderReview
	if err := s.repo.UpdateConflict(ctx, c); err != nil {
		logger.Warn("linker: failed to link optimization to conflict", "conflict_id", c.ID, "error", err)
	}

	msg := buildDetectionMessage(c, network.Name, recurring)
	if s.send(ctx, msg) {
		summary.NotificationsSent++
	}
}

func (s *Service) buildOptimization(network *domain.Network, c *domain.Conflict, recurring bool) *domain.Optimization {
	typeLabel := c.ConflictType.Label()
	title := fmt.Sprintf("[Conflict Resolution] %s", typeLabel)
	if recurring {
		title += fmt.Sprintf(" [RECURRING #%d]", c.RecurrenceCount)
	}

	var desc strings.Builder
	fmt.Fprintln(&desc, "**Auto-generated from detected SEO conflict**")
	fmt.Fprintln(&desc)
	fmt.Fprintf(&desc, "**Conflict Type:** %s\n", typeLabel)
	fmt.Fprintf(&desc, "**Severity:** %s\n", strings.ToUpper(string(c.Severity)))
	fmt.Fprintf(&desc, "**Network:** %s\n", network.Name)
	fmt.Fprintf(&desc, "**Domain:** %s\n", orNA(c.DomainName))
	fmt.Fprintln(&desc)
	fmt.Fprintln(&desc, "**Description:**")
	if c.Description != "" {
		fmt.Fprintln(&desc, c.Description)
	} else {
		fmt.Fprintln(&desc, "No description provided.")
	}
	fmt.Fprintln(&desc)
	fmt.Fprintln(&desc, "**Affected Nodes:**")
	fmt.Fprintf(&desc, "- %s\n", c.NodeALabel)
	if c.NodeBLabel != nil && *c.NodeBLabel != "" {
		fmt.Fprintf(&desc, "- %s\n", *c.NodeBLabel)
	}
	if c.Suggestion != nil && *c.Suggestion != "" {
		fmt.Fprintln(&desc)
		fmt.Fprintln(&desc, "**Suggested Fix:**")
		fmt.Fprintln(&desc, *c.Suggestion)
	}

	reasonNote := fmt.Sprintf("Automatically created to resolve %s conflict detected in %s. Severity: %s.", typeLabel, network.Name, strings.ToUpper(string(c.Severity)))
	if recurring {
		reasonNote += fmt.Sprintf(" This conflict has recurred %d time(s).", c.RecurrenceCount)
	}

	var assignedTo *string
	if len(network.ManagerIDs) > 0 {
		assignedTo = &network.ManagerIDs[0]
	} else if network.CreatedBy != "" {
		assignedTo = &network.CreatedBy
	}

	var targetDomains []string
	if c.DomainName != "" {
		targetDomains = []string{c.DomainName}
	}

	now := time.Now()
	return &domain.Optimization{
		ID:               uuid.NewString(),
		NetworkID:        network.ID,
		BrandID:          network.BrandID,
		Title:            title,
		Description:      desc.String(),
		ReasonNote:       reasonNote,
		ActivityType:     "conflict_resolution",
		AffectedScope:    domain.ScopeSpecificDomain,
		TargetDomains:    targetDomains,
		ExpectedImpact:   []domain.ImpactArea{domain.ImpactAuthority},
		Status:           domain.OptimizationPlanned,
		ComplaintStatus:  domain.OptComplaintNone,
		LinkedConflictID: &c.ID,
		Priority:         string(c.Severity),
		AssignedTo:       assignedTo,
		CreatedBy: domain.ActorRef{
			UserID:      "system",
			DisplayName: "System (Auto)",
			Email:       "system@seo-noc.local",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SyncOptimizationStatus applies the cross-sync rules when the linked
// optimization's status changes. resolvedBy/resolverName are only consulted
// for a transition into completed.
func (s *Service) SyncOptimizationStatus(ctx context.Context, optimizationID string, status domain.OptimizationStatus, resolvedBy, resolverName string) error {
	opt, err := s.repo.GetOptimization(ctx, optimizationID)
	if err != nil {
		return fmt.Errorf("linker: get optimization %s: %w", optimizationID, err)
	}
	if opt.LinkedConflictID == nil {
		return nil
	}
	conflict, err := s.repo.GetConflict(ctx, *opt.LinkedConflictID)
	if err != nil {
		return fmt.Errorf("linker: get conflict %s: %w", *opt.LinkedConflictID, err)
	}

	switch status {
	case domain.OptimizationCompleted:
		now := time.Now()
		conflict.Status = domain.ConflictResolved
		conflict.IsActive = false
		conflict.ResolvedAt = &now
		if resolvedBy != "" {
			conflict.ResolvedBy = &resolvedBy
		}
		if err := s.repo.UpdateConflict(ctx, conflict); err != nil {
			return fmt.Errorf("linker: resolve conflict %s: %w", conflict.ID, err)
		}
		network, err := s.repo.GetNetwork(ctx, conflict.NetworkID)
		if err != nil {
			return fmt.Errorf("linker: get network %s: %w", conflict.NetworkID, err)
		}
		if resolverName == "" {
			resolverName = "Unknown"
		}
		s.send(ctx, buildResolutionMessage(conflict, network.Name, resolverName))

	case domain.OptimizationInProgress:
		conflict.Status = domain.ConflictUnderReview
		if err := s.repo.UpdateConflict(ctx, conflict); err != nil {
			return fmt.Errorf("linker: mark conflict under review %s: %w", conflict.ID, err)
		}

	case domain.OptimizationReverted:
		conflict.Status = domain.ConflictDetected
		conflict.IsActive = true
		conflict.ResolvedAt = nil
		if err := s.repo.UpdateConflict(ctx, conflict); err != nil {
			return fmt.Errorf("linker: reopen conflict %s: %w", conflict.ID, err)
		}
	}

	return nil
}

// ApproveConflict is the super-admin approval action: it resolves the
// conflict outside the optimization lifecycle and auto-completes the
// linked optimization, if any.
func (s *Service) ApproveConflict(ctx context.Context, conflictID, approvedBy string) error {
	conflict, err := s.repo.GetConflict(ctx, conflictID)
	if err != nil {
		return fmt.Errorf("linker: get conflict %s: %w", conflictID, err)
	}
	now := time.Now()
	conflict.Status = domain.ConflictApproved
	conflict.IsActive = false
	conflict.RecurrenceCount = 0
	conflict.ResolvedAt = &now
	conflict.ResolvedBy = &approvedBy
	if err := s.repo.UpdateConflict(ctx, conflict); err != nil {
		return fmt.Errorf("linker: approve conflict %s: %w", conflictID, err)
	}
	if conflict.OptimizationID != nil {
		if err := s.repo.UpdateOptimizationStatus(ctx, *conflict.OptimizationID, domain.OptimizationCompleted); err != nil {
			logger.Warn("linker: failed to auto-complete linked optimization on approval", "conflict_id", conflictID, "error", err)
		}
	}
	return nil
}

// UnlinkOnOptimizationDeleted reverts a conflict to detected/unlinked state
// when its linked optimization is deleted by a super-admin, readying it for
// a fresh optimization.
func (s *Service) UnlinkOnOptimizationDeleted(ctx context.Context, conflictID string) error {
	conflict, err := s.repo.GetConflict(ctx, conflictID)
	if err != nil {
		return fmt.Errorf("linker: get conflict %s: %w", conflictID, err)
	}
	conflict.Status = domain.ConflictDetected
	conflict.OptimizationID = nil
	if err := s.repo.UpdateConflict(ctx, conflict); err != nil {
		return fmt.Errorf("linker: unlink conflict %s: %w", conflictID, err)
	}
	return nil
}

// ConflictMetrics aggregates the conflict-resolution metrics over the
// trailing days window, optionally scoped to one network.
func (s *Service) ConflictMetrics(ctx context.Context, networkID *string, days int) (*Metrics, error) {
	since := time.Now().AddDate(0, 0, -days)
	conflicts, err := s.repo.ConflictsSince(ctx, networkID, since)
	if err != nil {
		return nil, fmt.Errorf("linker: list conflicts since %s: %w", since, err)
	}

	m := &Metrics{
		PeriodDays: days,
		BySeverity: make(map[domain.Severity]*SeverityBucket),
		ByType:     make(map[domain.ConflictType]*TypeBucket),
		ByResolver: make(map[string]int),
	}
	if len(conflicts) == 0 {
		return m, nil
	}
	m.TotalConflicts = len(conflicts)

	var resolutionHours []float64
	for i := range conflicts {
		c := &conflicts[i]

		resolved := isResolvedStatus(c.Status)
		if resolved {
			m.ResolvedCount++
			if c.ResolvedAt != nil {
				resolutionHours = append(resolutionHours, c.ResolvedAt.Sub(c.DetectedAt).Hours())
			}
			resolver := "unknown"
			if c.ResolvedBy != nil && *c.ResolvedBy != "" {
				resolver = *c.ResolvedBy
			}
			m.ByResolver[resolver]++
		}

		// Recurrence counting must exclude resolved/approved/ignored and
		// inactive conflicts, or a since-resolved recurrence inflates the
		// count of conflicts that are actually still open.
		if c.RecurrenceCount > 0 && c.IsActive &&
			c.Status != domain.ConflictResolved && c.Status != domain.ConflictApproved && c.Status != domain.ConflictIgnored {
			m.RecurringConflicts++
		}

		sevBucket, ok := m.BySeverity[c.Severity]
		if !ok {
			sevBucket = &SeverityBucket{}
			m.BySeverity[c.Severity] = sevBucket
		}
		sevBucket.Total++
		if resolved {
			sevBucket.Resolved++
		}

		typeBucket, ok := m.ByType[c.ConflictType]
		if !ok {
			typeBucket = &TypeBucket{}
			m.ByType[c.ConflictType] = typeBucket
		}
		typeBucket.Total++
		if resolved {
			typeBucket.Resolved++
		}
	}
	m.OpenCount = m.TotalConflicts - m.ResolvedCount

	if len(resolutionHours) > 0 {
		var sum float64
		for _, h := range resolutionHours {
			sum += h
		}
		m.AvgResolutionTimeHours = sum / float64(len(resolutionHours))
	}

	return m, nil
}

func (s *Service) send(ctx context.Context, message string) bool {
	if s.notifier == nil {
		logger.Warn("linker: no notifier configured, dropping conflict notification")
		return false
	}
	ok, err := s.notifier.SendEvent(ctx, domain.EventOptimization, s.seoChatID, message)
	if err != nil {
		logger.Warn("linker: conflict notification failed", "error", err)
		return false
	}
	return ok
}
