package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/seo-noc/internal/domain"
)

const optimizationColumns = `
	id, network_id, brand_id, title, description, reason_note, activity_type,
	affected_scope, target_domains, keywords, report_urls, expected_impact,
	observed_impact, status, complaint_status, linked_conflict_id, priority,
	assigned_to, created_by, created_at, updated_at, closed_at, closed_by,
	last_reminder_sent_at, responses`

// OptimizationRepo implements linker.Repository's optimization methods and
// scheduler.Repository's in-progress-optimization listing against a single
// seo_optimizations table.
type OptimizationRepo struct{ db *sql.DB }

// NewOptimizationRepo builds a Postgres-backed optimization repository.
func NewOptimizationRepo(db *sql.DB) *OptimizationRepo { return &OptimizationRepo{db: db} }

func scanOptimization(row interface{ Scan(...interface{}) error }) (domain.Optimization, error) {
	var o domain.Optimization
	var targetDomains, keywords, reportURLs, expectedImpact, observedImpact, createdBy, responses []byte

	err := row.Scan(
		&o.ID, &o.NetworkID, &o.BrandID, &o.Title, &o.Description, &o.ReasonNote, &o.ActivityType,
		&o.AffectedScope, &targetDomains, &keywords, &reportURLs, &expectedImpact,
		&observedImpact, &o.Status, &o.ComplaintStatus, &o.LinkedConflictID, &o.Priority,
		&o.AssignedTo, &createdBy, &o.CreatedAt, &o.UpdatedAt, &o.ClosedAt, &o.ClosedBy,
		&o.LastReminderSentAt, &responses,
	)
	if err != nil {
		return o, err
	}

	for _, pair := range []struct {
		raw []byte
		out interface{}
	}{
		{targetDomains, &o.TargetDomains},
		{keywords, &o.Keywords},
		{reportURLs, &o.ReportURLs},
		{expectedImpact, &o.ExpectedImpact},
		{observedImpact, &o.ObservedImpact},
		{createdBy, &o.CreatedBy},
		{responses, &o.Responses},
	} {
		if len(pair.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.raw, pair.out); err != nil {
			return o, fmt.Errorf("decode optimization field: %w", err)
		}
	}
	return o, nil
}

// GetOptimization satisfies linker.Repository.
func (r *OptimizationRepo) GetOptimization(ctx context.Context, optimizationID string) (*domain.Optimization, error) {
	o, err := scanOptimization(r.db.QueryRowContext(ctx, `SELECT `+optimizationColumns+` FROM seo_optimizations WHERE id = $1`, optimizationID))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get optimization: %w", err)
	}
	return &o, nil
}

// InsertOptimization satisfies linker.Repository.
func (r *OptimizationRepo) InsertOptimization(ctx context.Context, o *domain.Optimization) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	targetDomains, err := json.Marshal(o.TargetDomains)
	if err != nil {
		return fmt.Errorf("encode target_domains: %w", err)
	}
	keywords, err := json.Marshal(o.Keywords)
	if err != nil {
		return fmt.Errorf("encode keywords: %w", err)
	}
	reportURLs, err := json.Marshal(o.ReportURLs)
	if err != nil {
		return fmt.Errorf("encode report_urls: %w", err)
	}
	expectedImpact, err := json.Marshal(o.ExpectedImpact)
	if err != nil {
		return fmt.Errorf("encode expected_impact: %w", err)
	}
	observedImpact, err := json.Marshal(o.ObservedImpact)
	if err != nil {
		return fmt.Errorf("encode observed_impact: %w", err)
	}
	createdBy, err := json.Marshal(o.CreatedBy)
	if err != nil {
		return fmt.Errorf("encode created_by: %w", err)
	}
	responses, err := json.Marshal(o.Responses)
	if err != nil {
		return fmt.Errorf("encode responses: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO seo_optimizations
			(id, network_id, brand_id, title, description, reason_note, activity_type,
			 affected_scope, target_domains, keywords, report_urls, expected_impact,
			 observed_impact, status, complaint_status, linked_conflict_id, priority,
			 assigned_to, created_by, created_at, updated_at, responses)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,NOW(),NOW(),$20)
	`, o.ID, o.NetworkID, o.BrandID, o.Title, o.Description, o.ReasonNote, o.ActivityType,
		o.AffectedScope, targetDomains, keywords, reportURLs, expectedImpact,
		observedImpact, o.Status, o.ComplaintStatus, o.LinkedConflictID, o.Priority,
		o.AssignedTo, createdBy, responses)
	if err != nil {
		return fmt.Errorf("insert optimization: %w", err)
	}
	return nil
}

// UpdateOptimizationStatus satisfies linker.Repository.
func (r *OptimizationRepo) UpdateOptimizationStatus(ctx context.Context, optimizationID string, status domain.OptimizationStatus) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE seo_optimizations SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, optimizationID)
	if err != nil {
		return fmt.Errorf("update optimization status: %w", err)
	}
	return nil
}

// UpdateOptimizationComplaintStatus satisfies complaints.Repository: the
// complaint service rolls each complaint transition up onto the owning
// optimization's complaint_status field.
func (r *OptimizationRepo) UpdateOptimizationComplaintStatus(ctx context.Context, optimizationID string, status domain.ComplaintStatus) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE seo_optimizations SET complaint_status = $1, updated_at = NOW() WHERE id = $2
	`, status, optimizationID)
	if err != nil {
		return fmt.Errorf("update optimization complaint status: %w", err)
	}
	return nil
}

// ListInProgressOptimizations satisfies scheduler.Repository.
func (r *OptimizationRepo) ListInProgressOptimizations(ctx context.Context) ([]domain.Optimization, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+optimizationColumns+` FROM seo_optimizations WHERE status = $1
	`, domain.OptimizationInProgress)
	if err != nil {
		return nil, fmt.Errorf("list in-progress optimizations: %w", err)
	}
	defer rows.Close()

	var out []domain.Optimization
	for rows.Next() {
		o, err := scanOptimization(rows)
		if err != nil {
			return nil, fmt.Errorf("scan optimization: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// MarkOptimizationReminderSent satisfies scheduler.Repository.
func (r *OptimizationRepo) MarkOptimizationReminderSent(ctx context.Context, optimizationID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE seo_optimizations SET last_reminder_sent_at = $1 WHERE id = $2
	`, at, optimizationID)
	if err != nil {
		return fmt.Errorf("mark optimization reminder sent: %w", err)
	}
	return nil
}
