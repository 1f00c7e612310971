package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/seo-noc/internal/domain"
)

// NotificationTemplateRepo implements templates.Repository against an
// operator-editable overrides table, keyed by (channel, event_type).
type NotificationTemplateRepo struct{ db *sql.DB }

// NewNotificationTemplateRepo builds a Postgres-backed template repository.
func NewNotificationTemplateRepo(db *sql.DB) *NotificationTemplateRepo {
	return &NotificationTemplateRepo{db: db}
}

// GetTemplate satisfies templates.Repository: nil, nil means "no stored
// override", and the caller falls back to the code-embedded default.
func (r *NotificationTemplateRepo) GetTemplate(ctx context.Context, key domain.TemplateKey) (*domain.NotificationTemplate, error) {
	var t domain.NotificationTemplate
	err := r.db.QueryRowContext(ctx, `
		SELECT channel, event_type, title, template_body, default_template_body,
		       enabled, updated_by, created_at, updated_at
		FROM notification_templates WHERE channel = $1 AND event_type = $2
	`, key.Channel, key.EventType).Scan(
		&t.Channel, &t.EventType, &t.Title, &t.TemplateBody, &t.DefaultTemplateBody,
		&t.Enabled, &t.UpdatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return &t, nil
}

// SaveTemplate satisfies templates.Repository.
func (r *NotificationTemplateRepo) SaveTemplate(ctx context.Context, tpl *domain.NotificationTemplate) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_templates
			(channel, event_type, title, template_body, default_template_body, enabled, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (channel, event_type) DO UPDATE SET
			title = $3, template_body = $4, enabled = $6, updated_by = $7, updated_at = NOW()
	`, tpl.Channel, tpl.EventType, tpl.Title, tpl.TemplateBody, tpl.DefaultTemplateBody, tpl.Enabled, tpl.UpdatedBy)
	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}
