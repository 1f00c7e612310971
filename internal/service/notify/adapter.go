package notify

import (
	"context"

	"github.com/ignite/seo-noc/internal/domain"
)

// Adapter is the single-method contract every channel adapter implements,
// shared by every channel: send(recipient_addr, rendered_message,
// topic?) returning success/failure. topic is advisory — adapters that
// don't support sub-routing (email) simply ignore it.
type Adapter interface {
	Send(ctx context.Context, recipient, message, topic string) (bool, error)
}

// eventFamily groups event types into the notification "families" spec
// used for chat sub-thread routing: seo_change, seo_optimization,
// seo_complaint, seo_reminder. Domain availability/expiration events route
// to the dedicated monitoring channel instead (see Service.SendEvent) and
// have no family/topic of their own.
func eventFamily(event domain.EventType) string {
	switch event {
	case domain.EventSEOChange, domain.EventNetworkCreated, domain.EventNodeDeleted:
		return "seo_change"
	case domain.EventOptimization, domain.EventOptimizationStatus:
		return "seo_optimization"
	case domain.EventComplaint, domain.EventProjectComplaint:
		return "seo_complaint"
	case domain.EventReminder:
		return "seo_reminder"
	default:
		return "seo_change"
	}
}

// isMonitoringEvent reports whether event belongs on the dedicated
// monitoring channel (telegram_monitoring, no fallback to telegram_seo)
// rather than the general SEO channel.
func isMonitoringEvent(event domain.EventType) bool {
	return event == domain.EventDomainExpiration || event == domain.EventDomainDown
}
