package templates

import (
	"context"
	"fmt"
	"time"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/pkg/logger"
)

// Service is the notification template engine: storage-backed overrides
// with a code-embedded default fallback, an in-memory write-invalidated
// cache, allow-list enforcement on save, and preview rendering.
type Service struct {
	repo  Repository
	cache *cache
	audit AuditRecorder
}

// NewService builds a templates Service. audit may be nil, in which case
// template changes are not audited (tests, backfills).
func NewService(repo Repository, audit AuditRecorder) *Service {
	return &Service{repo: repo, cache: newCache(), audit: audit}
}

// recordAudit writes a best-effort audit row for a template mutation.
// A failure here never blocks the template write itself — losing an audit
// row is not worse than losing the template change, and the audit log is the
// secondary record of this action, not its source of truth.
func (s *Service) recordAudit(ctx context.Context, eventType, updatedBy string, key domain.TemplateKey, details string) {
	if s.audit == nil {
		return
	}
	resource := fmt.Sprintf("notification_template:%s:%s", key.Channel, key.EventType)
	if err := s.audit.Record(ctx, eventType, updatedBy, resource, details, domain.AuditInfo, true); err != nil {
		logger.Warn("templates: audit record failed", "resource", resource, "error", err.Error())
	}
}

// resolve returns the effective template row for a (channel, event_type)
// pair: the cached/stored override if one exists, else the code default.
func (s *Service) resolve(ctx context.Context, key domain.TemplateKey) (*domain.NotificationTemplate, error) {
	if cached, ok := s.cache.get(key); ok {
		return cached, nil
	}
	stored, err := s.repo.GetTemplate(ctx, key)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		s.cache.set(key, stored)
		return stored, nil
	}
	def, ok := DefaultTemplates[key]
	if !ok {
		return nil, nil
	}
	s.cache.set(key, &def)
	return &def, nil
}

// Render resolves and renders the template for (channel, event_type)
// against ctxData. Returns domain.ErrNotificationDisabled if the resolved
// template is disabled — the notifier must then skip send
// entirely, not that rendering failed.
func (s *Service) Render(ctx context.Context, channel domain.Channel, event domain.EventType, ctxData map[string]interface{}) (string, error) {
	key := domain.TemplateKey{Channel: channel, EventType: event}
	tpl, err := s.resolve(ctx, key)
	if err != nil {
		return "", err
	}
	if tpl == nil {
		return "", nil
	}
	if !tpl.Enabled {
		return "", domain.ErrNotificationDisabled
	}
	return Render(tpl.TemplateBody, ctxData), nil
}

// RenderChange satisfies the ledger package's Renderer interface
// (duck-typed, no import of ledger required): it renders the chat-channel
// body for the ledger's change-notification events.
func (s *Service) RenderChange(ctx context.Context, networkID string, eventType domain.EventType, ctxData map[string]interface{}) (string, error) {
	return s.Render(ctx, domain.ChannelChat, eventType, ctxData)
}

// SaveTemplate validates the new body against the allow-list, persists it,
// and invalidates the cache entry so the very next render picks it up.
func (s *Service) SaveTemplate(ctx context.Context, channel domain.Channel, event domain.EventType, body, updatedBy string) error {
	if len(body) == 0 {
		return ErrEmptyBody
	}
	if invalid := Validate(body); len(invalid) > 0 {
		return &ValidationError{Invalid: invalid}
	}
	key := domain.TemplateKey{Channel: channel, EventType: event}
	existing, err := s.resolve(ctx, key)
	if err != nil {
		return err
	}
	def := DefaultTemplates[key]
	tpl := &domain.NotificationTemplate{
		Channel:             channel,
		EventType:           event,
		Title:               def.Title,
		TemplateBody:        body,
		DefaultTemplateBody: def.TemplateBody,
		Enabled:             true,
		UpdatedBy:           updatedBy,
		UpdatedAt:           time.Now(),
	}
	if existing != nil {
		tpl.CreatedAt = existing.CreatedAt
	}
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = tpl.UpdatedAt
	}
	if err := s.repo.SaveTemplate(ctx, tpl); err != nil {
		return err
	}
	s.cache.invalidate(key)
	s.recordAudit(ctx, "template_change", updatedBy, key, "template body updated")
	return nil
}

// SetEnabled toggles a template pair without changing its body.
func (s *Service) SetEnabled(ctx context.Context, channel domain.Channel, event domain.EventType, enabled bool, updatedBy string) error {
	key := domain.TemplateKey{Channel: channel, EventType: event}
	existing, err := s.resolve(ctx, key)
	if err != nil {
		return err
	}
	body := DefaultTemplates[key].TemplateBody
	if existing != nil {
		body = existing.TemplateBody
	}
	def := DefaultTemplates[key]
	tpl := &domain.NotificationTemplate{
		Channel: channel, EventType: event, Title: def.Title,
		TemplateBody: body, DefaultTemplateBody: def.TemplateBody,
		Enabled: enabled, UpdatedBy: updatedBy, UpdatedAt: time.Now(),
	}
	if existing != nil {
		tpl.CreatedAt = existing.CreatedAt
	} else {
		tpl.CreatedAt = tpl.UpdatedAt
	}
	if err := s.repo.SaveTemplate(ctx, tpl); err != nil {
		return err
	}
	s.cache.invalidate(key)
	return nil
}

// ResetTemplate replaces a stored override's body with the code default,
// re-enabling it.
func (s *Service) ResetTemplate(ctx context.Context, channel domain.Channel, event domain.EventType, updatedBy string) error {
	key := domain.TemplateKey{Channel: channel, EventType: event}
	def, ok := DefaultTemplates[key]
	if !ok {
		return nil
	}
	if err := s.SaveTemplate(ctx, channel, event, def.TemplateBody, updatedBy); err != nil {
		return err
	}
	s.recordAudit(ctx, "template_reset", updatedBy, key, "template reset to default body")
	return nil
}

// Preview renders body (not necessarily a stored template) against a fixed
// sample context so operators can verify output before saving.
func (s *Service) Preview(channel domain.Channel, event domain.EventType, body string) (string, error) {
	if invalid := Validate(body); len(invalid) > 0 {
		return "", &ValidationError{Invalid: invalid}
	}
	return Render(body, SampleContext()), nil
}

// AllowedVariableList returns the allow-list, sorted, for operator-facing
// UI/API display.
func AllowedVariableList() []string {
	out := make([]string, 0, len(AllowedVariables))
	for v := range AllowedVariables {
		out = append(out, v)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
