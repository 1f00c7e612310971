package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/seo-noc/internal/domain"
)

const conflictColumns = `
	id, network_id, conflict_type, severity, status, is_active, fingerprint,
	node_a_id, node_a_label, node_b_id, node_b_label, domain_name, description,
	suggestion, detected_at, first_detected_at, last_recurrence_at, recurrence_count,
	optimization_id, resolved_at, resolved_by, resolution_note, updated_at`

// ConflictRepo implements linker.Repository's conflict methods against the
// seo_conflicts table.
type ConflictRepo struct{ db *sql.DB }

// NewConflictRepo builds a Postgres-backed conflict repository.
func NewConflictRepo(db *sql.DB) *ConflictRepo { return &ConflictRepo{db: db} }

func scanConflict(row interface{ Scan(...interface{}) error }) (domain.Conflict, error) {
	var c domain.Conflict
	err := row.Scan(
		&c.ID, &c.NetworkID, &c.ConflictType, &c.Severity, &c.Status, &c.IsActive, &c.Fingerprint,
		&c.NodeAID, &c.NodeALabel, &c.NodeBID, &c.NodeBLabel, &c.DomainName, &c.Description,
		&c.Suggestion, &c.DetectedAt, &c.FirstDetectedAt, &c.LastRecurrenceAt, &c.RecurrenceCount,
		&c.OptimizationID, &c.ResolvedAt, &c.ResolvedBy, &c.ResolutionNote, &c.UpdatedAt,
	)
	return c, err
}

// ListConflicts satisfies linker.Repository.
func (r *ConflictRepo) ListConflicts(ctx context.Context, networkID string) ([]domain.Conflict, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+conflictColumns+` FROM seo_conflicts WHERE network_id = $1`, networkID)
	if err != nil {
		return nil, fmt.Errorf("list conflicts: %w", err)
	}
	defer rows.Close()

	var out []domain.Conflict
	for rows.Next() {
		c, err := scanConflict(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conflict: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetConflict satisfies linker.Repository.
func (r *ConflictRepo) GetConflict(ctx context.Context, conflictID string) (*domain.Conflict, error) {
	c, err := scanConflict(r.db.QueryRowContext(ctx, `SELECT `+conflictColumns+` FROM seo_conflicts WHERE id = $1`, conflictID))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conflict: %w", err)
	}
	return &c, nil
}

// InsertConflict satisfies linker.Repository.
func (r *ConflictRepo) InsertConflict(ctx context.Context, c *domain.Conflict) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO seo_conflicts
			(id, network_id, conflict_type, severity, status, is_active, fingerprint,
			 node_a_id, node_a_label, node_b_id, node_b_label, domain_name, description,
			 suggestion, detected_at, first_detected_at, last_recurrence_at, recurrence_count,
			 optimization_id, resolved_at, resolved_by, resolution_note, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,NOW())
	`, c.ID, c.NetworkID, c.ConflictType, c.Severity, c.Status, c.IsActive, c.Fingerprint,
		c.NodeAID, c.NodeALabel, c.NodeBID, c.NodeBLabel, c.DomainName, c.Description,
		c.Suggestion, c.DetectedAt, c.FirstDetectedAt, c.LastRecurrenceAt, c.RecurrenceCount,
		c.OptimizationID, c.ResolvedAt, c.ResolvedBy, c.ResolutionNote)
	if err != nil {
		return fmt.Errorf("insert conflict: %w", err)
	}
	return nil
}

// UpdateConflict satisfies linker.Repository.
func (r *ConflictRepo) UpdateConflict(ctx context.Context, c *domain.Conflict) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE seo_conflicts
		SET severity = $1, status = $2, is_active = $3, description = $4, suggestion = $5,
		    last_recurrence_at = $6, recurrence_count = $7, optimization_id = $8,
		    resolved_at = $9, resolved_by = $10, resolution_note = $11, updated_at = NOW()
		WHERE id = $12
	`, c.Severity, c.Status, c.IsActive, c.Description, c.Suggestion,
		c.LastRecurrenceAt, c.RecurrenceCount, c.OptimizationID,
		c.ResolvedAt, c.ResolvedBy, c.ResolutionNote, c.ID)
	if err != nil {
		return fmt.Errorf("update conflict: %w", err)
	}
	return nil
}

// ConflictsSince satisfies linker.Repository, backing both ConflictMetrics
// and the daily Snowflake export job.
func (r *ConflictRepo) ConflictsSince(ctx context.Context, networkID *string, since time.Time) ([]domain.Conflict, error) {
	query := `SELECT ` + conflictColumns + ` FROM seo_conflicts WHERE detected_at >= $1`
	args := []interface{}{since}
	if networkID != nil {
		query += " AND network_id = $2"
		args = append(args, *networkID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("conflicts since: %w", err)
	}
	defer rows.Close()

	var out []domain.Conflict
	for rows.Next() {
		c, err := scanConflict(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conflict: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
