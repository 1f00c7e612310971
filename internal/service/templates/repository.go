package templates

import (
	"context"

	"github.com/ignite/seo-noc/internal/domain"
)

// Repository persists operator-edited notification templates. A nil result
// with a nil error means "no stored override", and the caller falls back to
// the code-embedded default.
type Repository interface {
	GetTemplate(ctx context.Context, key domain.TemplateKey) (*domain.NotificationTemplate, error)
	SaveTemplate(ctx context.Context, tpl *domain.NotificationTemplate) error
}

// AuditRecorder is the narrow audit-log contract this package depends
// on, satisfied by audit.Service without an import of that package. Template
// change and reset are both privileged, audited actions.
type AuditRecorder interface {
	Record(ctx context.Context, eventType, actorEmail, resource, details string, severity domain.AuditSeverity, success bool) error
}
