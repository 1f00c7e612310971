package feed

import (
	"context"

	"github.com/ignite/seo-noc/internal/domain"
)

// Source is one registrar-exposed status RSS/Atom feed to poll.
type Source struct {
	ID          string
	RegistrarID string
	FeedURL     string
	Enabled     bool
}

// Repository is the data-access contract the feed poller needs.
type Repository interface {
	// ListEnabledSources returns every feed source currently enabled for
	// polling.
	ListEnabledSources(ctx context.Context) ([]Source, error)
	// RecordItem persists a seen feed item keyed by (sourceID, itemGUID),
	// returning isNew=false if the item was already recorded — the same
	// dedup contract the seen-items table provides via
	// ON CONFLICT DO NOTHING.
	RecordItem(ctx context.Context, sourceID, itemGUID string) (isNew bool, err error)
}

// Renderer produces a rendered notification body. Satisfied by
// templates.Service (duck-typed).
type Renderer interface {
	Render(ctx context.Context, channel domain.Channel, event domain.EventType, ctxData map[string]interface{}) (string, error)
}

// Notifier delivers a rendered alert. Satisfied by notify.Service
// (duck-typed).
type Notifier interface {
	SendEvent(ctx context.Context, event domain.EventType, recipient, rendered string) (bool, error)
}
