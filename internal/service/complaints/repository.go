package complaints

import (
	"context"

	"github.com/ignite/seo-noc/internal/domain"
)

// Repository is the data-access contract the complaint service needs,
// spanning the complaint and optimization tables plus a network name
// lookup for notification context.
type Repository interface {
	GetOptimization(ctx context.Context, optimizationID string) (*domain.Optimization, error)
	UpdateOptimizationComplaintStatus(ctx context.Context, optimizationID string, status domain.ComplaintStatus) error

	InsertComplaint(ctx context.Context, c *domain.OptimizationComplaint) error
	GetComplaint(ctx context.Context, complaintID string) (*domain.OptimizationComplaint, error)
	UpdateComplaint(ctx context.Context, c *domain.OptimizationComplaint) error

	InsertProjectComplaint(ctx context.Context, c *domain.ProjectComplaint) error

	GetNetwork(ctx context.Context, networkID string) (*domain.Network, error)
}

// Renderer produces a rendered notification body through the allow-listed
// template engine. Bound to templates.Service at wiring time.
type Renderer interface {
	Render(ctx context.Context, channel domain.Channel, event domain.EventType, ctxData map[string]interface{}) (string, error)
}

// Notifier delivers a rendered complaint notification to the SEO chat
// channel. Bound to notify.Service at wiring time.
type Notifier interface {
	SendEvent(ctx context.Context, event domain.EventType, recipient, rendered string) (bool, error)
}
