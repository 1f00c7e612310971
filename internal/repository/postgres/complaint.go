package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/ignite/seo-noc/internal/domain"
)

// ComplaintRepo implements complaints.Repository's complaint methods against
// the seo_optimization_complaints and seo_project_complaints tables.
type ComplaintRepo struct{ db *sql.DB }

// NewComplaintRepo builds a Postgres-backed complaint repository.
func NewComplaintRepo(db *sql.DB) *ComplaintRepo { return &ComplaintRepo{db: db} }

const complaintColumns = `
	id, optimization_id, reason, priority, responsible_user_ids, status,
	resolved_at, resolution_note, time_to_resolution_hours, created_at`

func scanComplaint(row interface{ Scan(...interface{}) error }) (domain.OptimizationComplaint, error) {
	var c domain.OptimizationComplaint
	var responsible []byte
	var resolutionNote sql.NullString

	err := row.Scan(
		&c.ID, &c.OptimizationID, &c.Reason, &c.Priority, &responsible, &c.Status,
		&c.ResolvedAt, &resolutionNote, &c.TimeToResolutionHours, &c.CreatedAt,
	)
	if err != nil {
		return c, err
	}
	c.ResolutionNote = resolutionNote.String
	if len(responsible) > 0 {
		if err := json.Unmarshal(responsible, &c.ResponsibleUserIDs); err != nil {
			return c, fmt.Errorf("decode responsible_user_ids: %w", err)
		}
	}
	return c, nil
}

// InsertComplaint satisfies complaints.Repository.
func (r *ComplaintRepo) InsertComplaint(ctx context.Context, c *domain.OptimizationComplaint) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	responsible, err := json.Marshal(c.ResponsibleUserIDs)
	if err != nil {
		return fmt.Errorf("encode responsible_user_ids: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO seo_optimization_complaints
			(id, optimization_id, reason, priority, responsible_user_ids, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, c.ID, c.OptimizationID, c.Reason, c.Priority, responsible, c.Status)
	if err != nil {
		return fmt.Errorf("insert complaint: %w", err)
	}
	return nil
}

// GetComplaint satisfies complaints.Repository.
func (r *ComplaintRepo) GetComplaint(ctx context.Context, complaintID string) (*domain.OptimizationComplaint, error) {
	c, err := scanComplaint(r.db.QueryRowContext(ctx, `SELECT `+complaintColumns+` FROM seo_optimization_complaints WHERE id = $1`, complaintID))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get complaint: %w", err)
	}
	return &c, nil
}

// UpdateComplaint satisfies complaints.Repository, writing the mutable
// lifecycle fields (status, resolution) back in one statement.
func (r *ComplaintRepo) UpdateComplaint(ctx context.Context, c *domain.OptimizationComplaint) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE seo_optimization_complaints
		SET status = $1, resolved_at = $2, resolution_note = $3, time_to_resolution_hours = $4
		WHERE id = $5
	`, c.Status, c.ResolvedAt, c.ResolutionNote, c.TimeToResolutionHours, c.ID)
	if err != nil {
		return fmt.Errorf("update complaint: %w", err)
	}
	return nil
}

// ListOpenComplaints returns every complaint not yet resolved, oldest first,
// for the operator review queue.
func (r *ComplaintRepo) ListOpenComplaints(ctx context.Context) ([]domain.OptimizationComplaint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+complaintColumns+` FROM seo_optimization_complaints
		WHERE status != $1 ORDER BY created_at ASC
	`, domain.ComplaintCaseResolved)
	if err != nil {
		return nil, fmt.Errorf("list open complaints: %w", err)
	}
	defer rows.Close()

	var out []domain.OptimizationComplaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan complaint: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// InsertProjectComplaint satisfies complaints.Repository for the parallel
// network-level complaint collection.
func (r *ComplaintRepo) InsertProjectComplaint(ctx context.Context, c *domain.ProjectComplaint) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO seo_project_complaints
			(id, network_id, reason, priority, status, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, c.ID, c.NetworkID, c.Reason, c.Priority, c.Status)
	if err != nil {
		return fmt.Errorf("insert project complaint: %w", err)
	}
	return nil
}
