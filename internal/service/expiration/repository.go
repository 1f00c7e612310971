package expiration

import (
	"context"

	"github.com/ignite/seo-noc/internal/domain"
)

// Repository lists domains with an active expiration clock.
type Repository interface {
	// ListWithExpirationDate returns every domain with a non-null
	// expiration_date, for the registrar-expiry clock.
	ListWithExpirationDate(ctx context.Context) ([]*domain.AssetDomain, error)
	// ListWithCertExpirationDate returns every domain with a non-null
	// cert_expiration_date, for the independent TLS-certificate clock.
	ListWithCertExpirationDate(ctx context.Context) ([]*domain.AssetDomain, error)
}

// Renderer produces a rendered notification body. Satisfied by
// templates.Service (duck-typed).
type Renderer interface {
	Render(ctx context.Context, channel domain.Channel, event domain.EventType, ctxData map[string]interface{}) (string, error)
}

// Notifier delivers a rendered alert. Satisfied by notify.Service (duck-typed).
type Notifier interface {
	SendEvent(ctx context.Context, event domain.EventType, recipient, rendered string) (bool, error)
}

// ImpactScorer reports whether a domain is currently referenced by any SEO
// structure entry ("SEO-impacting") and its blast-radius severity.
// Satisfied by enrich.Service (duck-typed).
type ImpactScorer interface {
	DomainSeverity(ctx context.Context, assetDomainID string) (domain.Severity, error)
	IsSEOImpacting(ctx context.Context, assetDomainID string) (bool, error)
}
