package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/service/audit"
)

// AuditRepo implements audit.Repository (the primary Postgres store) against
// the append-only audit_logs table.
type AuditRepo struct{ db *sql.DB }

// NewAuditRepo builds a Postgres-backed audit log repository.
func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

// Insert satisfies audit.Repository.
func (r *AuditRepo) Insert(ctx context.Context, row *domain.AuditLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, event_type, actor_email, resource, details, severity, success, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, row.ID, row.EventType, row.ActorEmail, row.Resource, row.Details, row.Severity, row.Success, row.Timestamp)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// Query satisfies audit.Repository.
func (r *AuditRepo) Query(ctx context.Context, filter audit.Filter, page audit.Page) ([]domain.AuditLog, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	idx := 1
	add := func(cond string, val interface{}) {
		where += fmt.Sprintf(" AND %s $%d", cond, idx)
		args = append(args, val)
		idx++
	}

	if filter.EventType != "" {
		add("event_type =", filter.EventType)
	}
	if filter.ActorEmail != "" {
		add("actor_email =", filter.ActorEmail)
	}
	if filter.Resource != "" {
		add("resource =", filter.Resource)
	}
	if filter.Severity != "" {
		add("severity =", filter.Severity)
	}
	if filter.Success != nil {
		add("success =", *filter.Success)
	}
	if filter.Since != nil {
		add("timestamp >=", *filter.Since)
	}
	if filter.Until != nil {
		add("timestamp <=", *filter.Until)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_logs "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}

	limitArgs := append(append([]interface{}{}, args...), page.Limit, page.Offset)
	query := fmt.Sprintf(`
		SELECT id, event_type, actor_email, resource, details, severity, success, timestamp
		FROM audit_logs %s ORDER BY timestamp DESC LIMIT $%d OFFSET $%d
	`, where, idx, idx+1)

	rows, err := r.db.QueryContext(ctx, query, limitArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	var out []domain.AuditLog
	for rows.Next() {
		var row domain.AuditLog
		if err := rows.Scan(&row.ID, &row.EventType, &row.ActorEmail, &row.Resource, &row.Details, &row.Severity, &row.Success, &row.Timestamp); err != nil {
			return nil, 0, fmt.Errorf("scan audit log: %w", err)
		}
		out = append(out, row)
	}
	return out, total, rows.Err()
}

// Stats satisfies audit.Repository.
func (r *AuditRepo) Stats(ctx context.Context, since time.Time) (audit.Stats, error) {
	stats := audit.Stats{
		BySeverity:  make(map[domain.AuditSeverity]int),
		ByEventType: make(map[string]int),
	}

	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE success = false)
		FROM audit_logs WHERE timestamp >= $1
	`, since).Scan(&stats.Total, &stats.FailureCount); err != nil {
		return audit.Stats{}, fmt.Errorf("audit stats: %w", err)
	}

	severityRows, err := r.db.QueryContext(ctx, `
		SELECT severity, COUNT(*) FROM audit_logs WHERE timestamp >= $1 GROUP BY severity
	`, since)
	if err != nil {
		return audit.Stats{}, fmt.Errorf("audit stats by severity: %w", err)
	}
	defer severityRows.Close()
	for severityRows.Next() {
		var sev domain.AuditSeverity
		var count int
		if err := severityRows.Scan(&sev, &count); err != nil {
			return audit.Stats{}, fmt.Errorf("scan audit stats by severity: %w", err)
		}
		stats.BySeverity[sev] = count
	}

	eventRows, err := r.db.QueryContext(ctx, `
		SELECT event_type, COUNT(*) FROM audit_logs WHERE timestamp >= $1 GROUP BY event_type
	`, since)
	if err != nil {
		return audit.Stats{}, fmt.Errorf("audit stats by event type: %w", err)
	}
	defer eventRows.Close()
	for eventRows.Next() {
		var eventType string
		var count int
		if err := eventRows.Scan(&eventType, &count); err != nil {
			return audit.Stats{}, fmt.Errorf("scan audit stats by event type: %w", err)
		}
		stats.ByEventType[eventType] = count
	}

	return stats, nil
}
