package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/seo-noc/internal/feed"
)

// FeedRepo satisfies feed.Repository: the registrar status-feed sources
// table plus a seen-items dedup table guarded by ON CONFLICT DO NOTHING.
type FeedRepo struct{ db *sql.DB }

// NewFeedRepo builds a Postgres-backed feed repository.
func NewFeedRepo(db *sql.DB) *FeedRepo { return &FeedRepo{db: db} }

func (r *FeedRepo) ListEnabledSources(ctx context.Context) ([]feed.Source, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, registrar_id, feed_url, enabled FROM registrar_feed_sources WHERE enabled = true
	`)
	if err != nil {
		return nil, fmt.Errorf("list feed sources: %w", err)
	}
	defer rows.Close()

	var out []feed.Source
	for rows.Next() {
		var s feed.Source
		if err := rows.Scan(&s.ID, &s.RegistrarID, &s.FeedURL, &s.Enabled); err != nil {
			return nil, fmt.Errorf("scan feed source: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *FeedRepo) RecordItem(ctx context.Context, sourceID, itemGUID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO registrar_feed_seen_items (source_id, item_guid, seen_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (source_id, item_guid) DO NOTHING
	`, sourceID, itemGUID)
	if err != nil {
		return false, fmt.Errorf("record feed item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record feed item rows affected: %w", err)
	}
	return n > 0, nil
}
