package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/seo-noc/internal/domain"
)

const fixtureFeed = `<?xml version="1.0"?>
<rss version="2.0"><channel>
<title>Registrar Status</title>
<item><guid>item-1</guid><title>Domain example.com placed on registrar HOLD</title><link>https://registrar.example/1</link><description>status change</description></item>
<item><guid>item-2</guid><title>Routine newsletter</title><link>https://registrar.example/2</link><description>nothing actionable</description></item>
</channel></rss>`

type fakeRepo struct {
	sources []Source
	seen    map[string]bool
}

func (f *fakeRepo) ListEnabledSources(ctx context.Context) ([]Source, error) {
	return f.sources, nil
}

func (f *fakeRepo) RecordItem(ctx context.Context, sourceID, itemGUID string) (bool, error) {
	key := sourceID + "|" + itemGUID
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

type fakeRenderer struct{ calls int }

func (f *fakeRenderer) Render(ctx context.Context, channel domain.Channel, event domain.EventType, ctxData map[string]interface{}) (string, error) {
	f.calls++
	return "rendered", nil
}

type fakeNotifier struct{ calls int }

func (f *fakeNotifier) SendEvent(ctx context.Context, event domain.EventType, recipient, rendered string) (bool, error) {
	f.calls++
	return true, nil
}

func TestIsStatusAlert(t *testing.T) {
	assert.True(t, isStatusAlert(&gofeed.Item{Title: "Domain placed on HOLD"}))
	assert.True(t, isStatusAlert(&gofeed.Item{Description: "account suspended"}))
	assert.False(t, isStatusAlert(&gofeed.Item{Title: "Routine newsletter"}))
}

func TestRunOnce_AlertsOnlyForNewKeywordMatchingItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(fixtureFeed))
	}))
	defer server.Close()

	repo := &fakeRepo{sources: []Source{{ID: "src-1", RegistrarID: "reg-1", FeedURL: server.URL, Enabled: true}}}
	renderer := &fakeRenderer{}
	notifier := &fakeNotifier{}
	poller := NewPoller(repo, renderer, notifier, time.Minute)

	poller.RunOnce(context.Background())

	assert.Equal(t, 1, renderer.calls)
	assert.Equal(t, 1, notifier.calls)

	// Second run: both items already recorded, no new alerts.
	poller.RunOnce(context.Background())
	assert.Equal(t, 1, renderer.calls)
}

func TestNewPoller_DefaultsPollInterval(t *testing.T) {
	p := NewPoller(&fakeRepo{}, &fakeRenderer{}, &fakeNotifier{}, 0)
	require.Equal(t, defaultPollInterval, p.pollInterval)
}
