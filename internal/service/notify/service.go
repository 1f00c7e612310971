package notify

import (
	"context"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/pkg/logger"
)

// Service dispatches rendered notifications to the configured channel
// adapters: chat messages go to the SEO channel with per-family
// sub-thread routing, except
// domain availability/expiration events, which go to the dedicated
// monitoring channel with no fallback to the SEO channel.
type Service struct {
	chat       Adapter
	monitoring Adapter
	email      Adapter

	seo        domain.TelegramSEOSettings
	monitoringCfg domain.TelegramMonitoringSettings
}

// NewService builds a notify Service. monitoring may be the same Adapter as
// chat when no dedicated monitoring channel is configured; either may be
// nil, in which case sends for that path simply fail closed rather than
// panic — failures surface as boolean false.
func NewService(chat, monitoring, email Adapter, seo domain.TelegramSEOSettings, monitoringCfg domain.TelegramMonitoringSettings) *Service {
	return &Service{chat: chat, monitoring: monitoring, email: email, seo: seo, monitoringCfg: monitoringCfg}
}

// NotifyChange satisfies the ledger package's Notifier interface (duck
// typed, no import required). The ledger only ever drives chat-change
// events through this path, so it always routes to the seo_change family
// on the main SEO channel.
func (s *Service) NotifyChange(ctx context.Context, networkID string, rendered string) (bool, error) {
	return s.SendEvent(ctx, domain.EventSEOChange, s.seo.ChatID, rendered)
}

// SendEvent routes rendered to the correct adapter/recipient/topic for
// event, the general entry point schedulers (availability, expiration,
// reminders) use outside the ledger's narrower Notifier contract.
func (s *Service) SendEvent(ctx context.Context, event domain.EventType, recipient, rendered string) (bool, error) {
	if isMonitoringEvent(event) {
		if s.monitoring == nil {
			logger.Warn("notify: monitoring channel not configured, dropping event", "event_type", string(event))
			return false, nil
		}
		return s.monitoring.Send(ctx, orDefault(recipient, s.monitoringCfg.ChatID), rendered, "")
	}

	if s.chat == nil {
		logger.Warn("notify: chat channel not configured, dropping event", "event_type", string(event))
		return false, nil
	}
	topic := ""
	if s.seo.TopicRouting {
		topic = s.seo.TopicIDs[eventFamily(event)]
	}
	return s.chat.Send(ctx, orDefault(recipient, s.seo.ChatID), rendered, topic)
}

// SendEmail delivers rendered as an HTML email to recipient, independent of
// the chat routing above. Its caller is the weekly digest, which sends to
// the admin email list.
func (s *Service) SendEmail(ctx context.Context, recipient, rendered string) (bool, error) {
	if s.email == nil {
		logger.Warn("notify: email adapter not configured, dropping message")
		return false, nil
	}
	return s.email.Send(ctx, recipient, rendered, "")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
