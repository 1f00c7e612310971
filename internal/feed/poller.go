// Package feed implements the optional registrar status-feed poller: a
// supplementary expiration/status signal, off by default, consulted
// alongside the registrar-date-based expiration check. Feeds are fetched
// and parsed with gofeed on a periodic polling loop.
package feed

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/pkg/logger"
)

const defaultPollInterval = 15 * time.Minute

// statusKeywords are the terms that promote a feed item from "informational"
// to "alert-worthy" — mirroring the kind of registrar status language this
// feed is meant to catch (suspension, hold, transfer notices).
var statusKeywords = []string{"suspend", "hold", "transfer", "expir", "lock"}

// Poller periodically fetches every enabled registrar feed and alerts on
// any new item whose title or description mentions a status keyword.
type Poller struct {
	repo     Repository
	renderer Renderer
	notifier Notifier
	parser   *gofeed.Parser

	pollInterval time.Duration
	mu           sync.Mutex
	running      bool
	stopCh       chan struct{}
}

// NewPoller builds a Poller. pollInterval defaults to 15m.
func NewPoller(repo Repository, renderer Renderer, notifier Notifier, pollInterval time.Duration) *Poller {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &Poller{
		repo: repo, renderer: renderer, notifier: notifier,
		parser: gofeed.NewParser(), pollInterval: pollInterval,
	}
}

// Start begins the background polling loop.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.mu.Unlock()

	logger.Info("feed: registrar status poller started", "poll_interval", p.pollInterval.String())

	go func() {
		ticker := time.NewTicker(p.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				p.RunOnce(ctx)
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop gracefully shuts down the polling loop.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.running = false
	close(p.stopCh)
	logger.Info("feed: registrar status poller stopped")
}

// RunOnce polls every enabled source once. Exported so tests can drive a
// single poll without the ticker.
func (p *Poller) RunOnce(ctx context.Context) {
	sources, err := p.repo.ListEnabledSources(ctx)
	if err != nil {
		logger.Error("feed: listing feed sources failed", "error", err.Error())
		return
	}
	for _, source := range sources {
		p.pollOne(ctx, source)
	}
}

func (p *Poller) pollOne(ctx context.Context, source Source) {
	parsed, err := p.parser.ParseURLWithContext(source.FeedURL, ctx)
	if err != nil {
		logger.Warn("feed: fetching feed failed", "registrar_id", source.RegistrarID, "url", source.FeedURL, "error", err.Error())
		return
	}

	for _, item := range parsed.Items {
		guid := item.GUID
		if guid == "" {
			guid = item.Link
		}

		isNew, err := p.repo.RecordItem(ctx, source.ID, guid)
		if err != nil {
			logger.Warn("feed: recording item failed", "source_id", source.ID, "error", err.Error())
			continue
		}
		if !isNew || !isStatusAlert(item) {
			continue
		}

		p.alert(ctx, source, item)
	}
}

// isStatusAlert reports whether a feed item's title or description
// mentions one of the registrar status keywords worth surfacing.
func isStatusAlert(item *gofeed.Item) bool {
	text := strings.ToLower(item.Title + " " + item.Description)
	for _, keyword := range statusKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func (p *Poller) alert(ctx context.Context, source Source, item *gofeed.Item) {
	ctxData := map[string]interface{}{
		"feed": map[string]interface{}{
			"registrar_id": source.RegistrarID,
			"title":        item.Title,
			"link":         item.Link,
			"description":  item.Description,
		},
	}

	body, err := p.renderer.Render(ctx, domain.ChannelChat, domain.EventDomainExpiration, ctxData)
	if err != nil {
		logger.Warn("feed: render failed", "source_id", source.ID, "error", err.Error())
		return
	}
	if _, err := p.notifier.SendEvent(ctx, domain.EventDomainExpiration, "", body); err != nil {
		logger.Warn("feed: send failed", "source_id", source.ID, "error", err.Error())
	}
}
