package domain

import (
	"errors"
	"time"
)

// ErrNotificationDisabled is returned by a template renderer when the
// (channel, event_type) pair is disabled: the notification is intentionally
// skipped, not a failure.
var ErrNotificationDisabled = errors.New("notification template disabled for this event type")

// Channel is the delivery mechanism a notification template renders for.
type Channel string

const (
	ChannelChat   Channel = "chat"
	ChannelEmail  Channel = "email"
)

// EventType identifies which event a template renders, matching the event
// families the system alerts on.
type EventType string

const (
	EventSEOChange            EventType = "seo_change"
	EventNetworkCreated       EventType = "seo_network_created"
	EventOptimization         EventType = "seo_optimization"
	EventOptimizationStatus   EventType = "seo_optimization_status"
	EventComplaint            EventType = "seo_complaint"
	EventProjectComplaint     EventType = "seo_project_complaint"
	EventReminder             EventType = "seo_reminder"
	EventDomainExpiration     EventType = "domain_expiration"
	EventDomainDown           EventType = "domain_down"
	EventNodeDeleted          EventType = "seo_node_deleted"
	EventTest                 EventType = "test"
)

// NotificationTemplate is the unique-per-(channel,event_type) template row.
type NotificationTemplate struct {
	Channel             Channel   `json:"channel" db:"channel"`
	EventType           EventType `json:"event_type" db:"event_type"`
	Title               string    `json:"title" db:"title"`
	TemplateBody        string    `json:"template_body" db:"template_body"`
	DefaultTemplateBody string    `json:"default_template_body" db:"default_template_body"`
	Enabled             bool      `json:"enabled" db:"enabled"`
	UpdatedBy           string    `json:"updated_by,omitempty" db:"updated_by"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// Key uniquely identifies a template row.
func (t *NotificationTemplate) Key() TemplateKey {
	return TemplateKey{Channel: t.Channel, EventType: t.EventType}
}

// TemplateKey is the (channel, event_type) composite key used for lookup and caching.
type TemplateKey struct {
	Channel   Channel
	EventType EventType
}
