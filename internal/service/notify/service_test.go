package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/seo-noc/internal/domain"
)

type fakeAdapter struct {
	calls []struct{ recipient, message, topic string }
	ok    bool
	err   error
}

func (f *fakeAdapter) Send(ctx context.Context, recipient, message, topic string) (bool, error) {
	f.calls = append(f.calls, struct{ recipient, message, topic string }{recipient, message, topic})
	return f.ok, f.err
}

func TestService_NotifyChange_RoutesToSEOChannel(t *testing.T) {
	chat := &fakeAdapter{ok: true}
	seo := domain.TelegramSEOSettings{ChatID: "-100123", TopicRouting: true, TopicIDs: map[string]string{"seo_change": "42"}}
	svc := NewService(chat, nil, nil, seo, domain.TelegramMonitoringSettings{})

	sent, err := svc.NotifyChange(context.Background(), "net_1", "hello")
	require.NoError(t, err)
	assert.True(t, sent)
	require.Len(t, chat.calls, 1)
	assert.Equal(t, "-100123", chat.calls[0].recipient)
	assert.Equal(t, "42", chat.calls[0].topic)
}

func TestService_SendEvent_MonitoringEventUsesDedicatedChannel(t *testing.T) {
	chat := &fakeAdapter{ok: true}
	monitoring := &fakeAdapter{ok: true}
	seo := domain.TelegramSEOSettings{ChatID: "-100123"}
	monCfg := domain.TelegramMonitoringSettings{ChatID: "-100999"}
	svc := NewService(chat, monitoring, nil, seo, monCfg)

	sent, err := svc.SendEvent(context.Background(), domain.EventDomainDown, "", "domain is down")
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Empty(t, chat.calls)
	require.Len(t, monitoring.calls, 1)
	assert.Equal(t, "-100999", monitoring.calls[0].recipient)
}

func TestService_SendEvent_NoMonitoringChannelFailsClosed(t *testing.T) {
	chat := &fakeAdapter{ok: true}
	svc := NewService(chat, nil, nil, domain.TelegramSEOSettings{}, domain.TelegramMonitoringSettings{})

	sent, err := svc.SendEvent(context.Background(), domain.EventDomainExpiration, "", "expiring soon")
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestService_SendEvent_RoutesOptimizationFamily(t *testing.T) {
	chat := &fakeAdapter{ok: true}
	seo := domain.TelegramSEOSettings{ChatID: "-100123", TopicRouting: true, TopicIDs: map[string]string{"seo_optimization": "7"}}
	svc := NewService(chat, nil, nil, seo, domain.TelegramMonitoringSettings{})

	_, err := svc.SendEvent(context.Background(), domain.EventOptimization, "", "new optimization")
	require.NoError(t, err)
	require.Len(t, chat.calls, 1)
	assert.Equal(t, "7", chat.calls[0].topic)
}

func TestEventFamily_GroupsKnownEvents(t *testing.T) {
	assert.Equal(t, "seo_change", eventFamily(domain.EventSEOChange))
	assert.Equal(t, "seo_change", eventFamily(domain.EventNodeDeleted))
	assert.Equal(t, "seo_optimization", eventFamily(domain.EventOptimizationStatus))
	assert.Equal(t, "seo_complaint", eventFamily(domain.EventProjectComplaint))
	assert.Equal(t, "seo_reminder", eventFamily(domain.EventReminder))
}

func TestIsMonitoringEvent(t *testing.T) {
	assert.True(t, isMonitoringEvent(domain.EventDomainDown))
	assert.True(t, isMonitoringEvent(domain.EventDomainExpiration))
	assert.False(t, isMonitoringEvent(domain.EventSEOChange))
}

func TestChatAdapter_RetriesWithoutThreadOnThreadError(t *testing.T) {
	var requests []map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		decodeJSONBody(t, r, &body)
		requests = append(requests, body)

		if _, hasThread := body["message_thread_id"]; hasThread {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"ok":false,"description":"Bad Request: message thread not found"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	adapter := NewChatAdapter(server.URL, "test-token", http.DefaultClient)
	sent, err := adapter.Send(context.Background(), "-100123", "hello", "99")
	require.NoError(t, err)
	assert.True(t, sent)
	require.Len(t, requests, 2)
	assert.Equal(t, "99", requests[0]["message_thread_id"])
	_, secondHasThread := requests[1]["message_thread_id"]
	assert.False(t, secondHasThread)
}

func TestChatAdapter_SucceedsWithoutRetryOnCleanSend(t *testing.T) {
	var requests []map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		decodeJSONBody(t, r, &body)
		requests = append(requests, body)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	adapter := NewChatAdapter(server.URL, "test-token", http.DefaultClient)
	sent, err := adapter.Send(context.Background(), "-100123", "hello", "")
	require.NoError(t, err)
	assert.True(t, sent)
	require.Len(t, requests, 1)
}

func decodeJSONBody(t *testing.T, r *http.Request, out *map[string]interface{}) {
	t.Helper()
	defer r.Body.Close()
	require.NoError(t, json.NewDecoder(r.Body).Decode(out))
}
