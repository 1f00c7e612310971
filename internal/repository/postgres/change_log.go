package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/ignite/seo-noc/internal/domain"
)

// ChangeLogRepo implements ledger.Repository against the append-only
// seo_change_logs table.
type ChangeLogRepo struct{ db *sql.DB }

// NewChangeLogRepo builds a Postgres-backed change-log repository.
func NewChangeLogRepo(db *sql.DB) *ChangeLogRepo { return &ChangeLogRepo{db: db} }

// InsertChangeLog satisfies ledger.Repository.
func (r *ChangeLogRepo) InsertChangeLog(ctx context.Context, row *domain.ChangeLog) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}

	before, err := json.Marshal(row.BeforeSnapshot)
	if err != nil {
		return fmt.Errorf("encode before_snapshot: %w", err)
	}
	after, err := json.Marshal(row.AfterSnapshot)
	if err != nil {
		return fmt.Errorf("encode after_snapshot: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO seo_change_logs
			(id, network_id, brand_id, entry_id, action_type, affected_node,
			 actor_user_id, actor_email, change_note, before_snapshot, after_snapshot,
			 created_at, notification_status, archived)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), $12, false)
	`, row.ID, row.NetworkID, row.BrandID, row.EntryID, row.ActionType, row.AffectedNode,
		row.ActorUserID, row.ActorEmail, row.ChangeNote, before, after, row.NotificationStatus)
	if err != nil {
		return fmt.Errorf("insert change log: %w", err)
	}
	return nil
}

// UpdateNotificationStatus satisfies ledger.Repository.
func (r *ChangeLogRepo) UpdateNotificationStatus(ctx context.Context, id string, status domain.NotificationStatus) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE seo_change_logs SET notification_status = $1 WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("update notification status: %w", err)
	}
	return nil
}

// ListByNetwork returns a network's change ledger in strict arrival order,
// for the operator-facing history view.
func (r *ChangeLogRepo) ListByNetwork(ctx context.Context, networkID string, limit, offset int) ([]domain.ChangeLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, network_id, brand_id, entry_id, action_type, affected_node,
		       actor_user_id, actor_email, change_note, before_snapshot, after_snapshot,
		       created_at, notification_status, archived
		FROM seo_change_logs
		WHERE network_id = $1 AND archived = false
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`, networkID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list change logs: %w", err)
	}
	defer rows.Close()

	var out []domain.ChangeLog
	for rows.Next() {
		var row domain.ChangeLog
		var before, after []byte
		if err := rows.Scan(
			&row.ID, &row.NetworkID, &row.BrandID, &row.EntryID, &row.ActionType, &row.AffectedNode,
			&row.ActorUserID, &row.ActorEmail, &row.ChangeNote, &before, &after,
			&row.CreatedAt, &row.NotificationStatus, &row.Archived,
		); err != nil {
			return nil, fmt.Errorf("scan change log: %w", err)
		}
		if len(before) > 0 {
			if err := json.Unmarshal(before, &row.BeforeSnapshot); err != nil {
				return nil, fmt.Errorf("decode before_snapshot: %w", err)
			}
		}
		if len(after) > 0 {
			if err := json.Unmarshal(after, &row.AfterSnapshot); err != nil {
				return nil, fmt.Errorf("decode after_snapshot: %w", err)
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
