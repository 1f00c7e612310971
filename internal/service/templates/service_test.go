package templates

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/seo-noc/internal/domain"
)

type fakeRepo struct {
	rows map[domain.TemplateKey]*domain.NotificationTemplate
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[domain.TemplateKey]*domain.NotificationTemplate)}
}

func (f *fakeRepo) GetTemplate(ctx context.Context, key domain.TemplateKey) (*domain.NotificationTemplate, error) {
	return f.rows[key], nil
}

func (f *fakeRepo) SaveTemplate(ctx context.Context, tpl *domain.NotificationTemplate) error {
	cp := *tpl
	f.rows[tpl.Key()] = &cp
	return nil
}

func TestAllDefaultTemplatesValidateAgainstAllowList(t *testing.T) {
	for key, tpl := range DefaultTemplates {
		invalid := Validate(tpl.TemplateBody)
		assert.Empty(t, invalid, "default template %+v references variables outside the allow-list: %v", key, invalid)
	}
}

func TestRender_NestedPathAndListJoin(t *testing.T) {
	ctx := map[string]interface{}{
		"node": map[string]interface{}{"domain": "example.com"},
		"optimization": map[string]interface{}{
			"targets": []string{"a.com", "b.com"},
		},
	}
	out := Render("Domain: {{node.domain}}, Targets: {{optimization.targets}}", ctx)
	assert.Equal(t, "Domain: example.com, Targets: a.com, b.com", out)
}

func TestRender_MissingPathRendersEmpty(t *testing.T) {
	out := Render("Value: [{{node.domain}}]", map[string]interface{}{})
	assert.Equal(t, "Value: []", out)
}

func TestValidate_RejectsUnknownVariable(t *testing.T) {
	invalid := Validate("{{node.domain}} {{totally.unknown}}")
	assert.Equal(t, []string{"totally.unknown"}, invalid)
}

func TestRender_DisabledTemplateReturnsSentinel(t *testing.T) {
	repo := newFakeRepo()
	repo.rows[domain.TemplateKey{Channel: domain.ChannelChat, EventType: domain.EventTest}] = &domain.NotificationTemplate{
		Channel: domain.ChannelChat, EventType: domain.EventTest, TemplateBody: "hi", Enabled: false,
	}
	svc := NewService(repo, nil)

	_, err := svc.Render(context.Background(), domain.ChannelChat, domain.EventTest, nil)
	assert.ErrorIs(t, err, domain.ErrNotificationDisabled)
}

func TestRender_FallsBackToDefault(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)
	out, err := svc.Render(context.Background(), domain.ChannelChat, domain.EventTest, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Test notification")
}

func TestSaveTemplate_RejectsUnknownVariable(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)
	err := svc.SaveTemplate(context.Background(), domain.ChannelChat, domain.EventTest, "{{not.allowed}}", "admin")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"not.allowed"}, verr.Invalid)
}

func TestSaveTemplate_InvalidatesCacheImmediately(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.Render(ctx, domain.ChannelChat, domain.EventTest, nil)
	require.NoError(t, err)

	err = svc.SaveTemplate(ctx, domain.ChannelChat, domain.EventTest, "Updated: {{user.display_name}}", "admin")
	require.NoError(t, err)

	out, err := svc.Render(ctx, domain.ChannelChat, domain.EventTest, map[string]interface{}{
		"user": map[string]interface{}{"display_name": "Sam"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Updated: Sam", out)
}

func TestResetTemplate_RestoresDefaultBody(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	require.NoError(t, svc.SaveTemplate(ctx, domain.ChannelChat, domain.EventTest, "custom body", "admin"))
	require.NoError(t, svc.ResetTemplate(ctx, domain.ChannelChat, domain.EventTest, "admin"))

	out, err := svc.Render(ctx, domain.ChannelChat, domain.EventTest, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Test notification")
}

type fakeAuditRecorder struct {
	events []string
}

func (f *fakeAuditRecorder) Record(ctx context.Context, eventType, actorEmail, resource, details string, severity domain.AuditSeverity, success bool) error {
	f.events = append(f.events, eventType)
	return nil
}

func TestSaveTemplate_RecordsAuditEvent(t *testing.T) {
	audit := &fakeAuditRecorder{}
	svc := NewService(newFakeRepo(), audit)
	require.NoError(t, svc.SaveTemplate(context.Background(), domain.ChannelChat, domain.EventTest, "custom body", "admin"))
	assert.Equal(t, []string{"template_change"}, audit.events)
}

func TestResetTemplate_RecordsAuditEvent(t *testing.T) {
	audit := &fakeAuditRecorder{}
	svc := NewService(newFakeRepo(), audit)
	ctx := context.Background()
	require.NoError(t, svc.SaveTemplate(ctx, domain.ChannelChat, domain.EventTest, "custom body", "admin"))
	require.NoError(t, svc.ResetTemplate(ctx, domain.ChannelChat, domain.EventTest, "admin"))
	assert.Equal(t, []string{"template_change", "template_change", "template_reset"}, audit.events)
}

func TestPreview_RendersAgainstSampleContext(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)
	out, err := svc.Preview(domain.ChannelChat, domain.EventSEOChange, DefaultTemplates[domain.TemplateKey{Channel: domain.ChannelChat, EventType: domain.EventSEOChange}].TemplateBody)
	require.NoError(t, err)
	assert.Contains(t, out, "Comparison Hub Network")
}
