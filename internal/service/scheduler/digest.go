package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/pkg/logger"
	"github.com/osteele/liquid"
)

const defaultDigestCheckInterval = time.Minute

// DigestSettingsProvider resolves the configured weekly digest schedule and
// its recipient list.
type DigestSettingsProvider interface {
	WeeklyDigestSettings(ctx context.Context) (domain.WeeklyDigestSettings, error)
	AdminEmails(ctx context.Context) ([]string, error)
}

// healthStatus mirrors _format_digest_email's Needs Attention / Warning /
// Minor Issues / All Clear ladder.
type healthStatus struct {
	Label string
	Color string
	Emoji string
}

var (
	healthNeedsAttention = healthStatus{"Needs Attention", "red", "🔴"}
	healthWarning        = healthStatus{"Warning", "yellow", "🟡"}
	healthMinorIssues    = healthStatus{"Minor Issues", "blue", "🔵"}
	healthAllClear       = healthStatus{"All Clear", "green", "✅"}
)

// expiringBucket groups expiring domains by urgency the way
// _collect_expiring_domains does: critical <=7 days, high 8-14, medium 15-30.
type expiringBucket struct {
	Label   string
	Domains []digestDomain
}

// digestDomain is one domain row enriched with its SEO usage, ready to bind
// into the Liquid template.
type digestDomain struct {
	AssetDomainID string
	DomainName    string
	DaysRemaining int
	NetworksCount int
	IsMainNode    bool
}

const digestTemplateSource = `
<html>
<body style="font-family: Arial, sans-serif;">
  <h1 style="color: {{ color }};">{{ emoji }} SEO-NOC Weekly Digest</h1>
  <p>Week of {{ week_start }} &ndash; {{ week_end }}</p>
  <h2>Status: {{ status }}</h2>

  {% if critical.size > 0 %}
  <h3>Critical &ndash; expiring within 7 days</h3>
  <ul>
    {% for d in critical %}
    <li>{{ d.DomainName }} &mdash; {{ d.DaysRemaining }} day(s), {{ d.NetworksCount }} network(s){% if d.IsMainNode %} (MAIN NODE){% endif %}</li>
    {% endfor %}
  </ul>
  {% endif %}

  {% if high.size > 0 %}
  <h3>High &ndash; expiring in 8-14 days</h3>
  <ul>
    {% for d in high %}
    <li>{{ d.DomainName }} &mdash; {{ d.DaysRemaining }} day(s), {{ d.NetworksCount }} network(s){% if d.IsMainNode %} (MAIN NODE){% endif %}</li>
    {% endfor %}
  </ul>
  {% endif %}

  {% if medium.size > 0 %}
  <h3>Medium &ndash; expiring in 15-30 days</h3>
  <ul>
    {% for d in medium %}
    <li>{{ d.DomainName }} &mdash; {{ d.DaysRemaining }} day(s), {{ d.NetworksCount }} network(s)</li>
    {% endfor %}
  </ul>
  {% endif %}

  {% if down.size > 0 %}
  <h3>Down</h3>
  <ul>
    {% for d in down %}
    <li>{{ d.DomainName }}</li>
    {% endfor %}
  </ul>
  {% endif %}

  {% if soft_blocked.size > 0 %}
  <h3>Soft-blocked</h3>
  <ul>
    {% for d in soft_blocked %}
    <li>{{ d.DomainName }}</li>
    {% endfor %}
  </ul>
  {% endif %}
</body>
</html>
`

// DigestService is the weekly digest loop.
type DigestService struct {
	repo     Repository
	settings DigestSettingsProvider
	notifier Notifier
	engine   *liquid.Engine

	checkInterval time.Duration

	mu           sync.Mutex
	running      bool
	stopCh       chan struct{}
	lastSentDate string // "YYYY-MM-DD", guards against double-sends within the fire minute
}

// NewDigestService builds the weekly digest loop.
func NewDigestService(repo Repository, settings DigestSettingsProvider, notifier Notifier, checkInterval time.Duration) *DigestService {
	if checkInterval <= 0 {
		checkInterval = defaultDigestCheckInterval
	}
	return &DigestService{
		repo: repo, settings: settings, notifier: notifier,
		engine:        liquid.NewEngine(),
		checkInterval: checkInterval,
	}
}

// Start begins the background loop, checking every tick whether the
// configured weekday/hour/minute has arrived.
func (s *DigestService) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	logger.Info("scheduler: weekly digest loop started", "check_interval", s.checkInterval.String())

	go func() {
		ticker := time.NewTicker(s.checkInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.tick(ctx)
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop gracefully shuts down the loop.
func (s *DigestService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
	logger.Info("scheduler: weekly digest loop stopped")
}

func (s *DigestService) tick(ctx context.Context) {
	cfg, err := s.settings.WeeklyDigestSettings(ctx)
	if err != nil {
		logger.Error("scheduler: failed to load digest settings", "error", err)
		return
	}
	if !cfg.Enabled {
		return
	}

	now := time.Now()
	if int(now.Weekday()) != cfg.Weekday || now.Hour() != cfg.Hour || now.Minute() != cfg.Minute {
		return
	}

	today := now.Format("2006-01-02")
	s.mu.Lock()
	if s.lastSentDate == today {
		s.mu.Unlock()
		return
	}
	s.lastSentDate = today
	s.mu.Unlock()

	if err := s.RunOnce(ctx, cfg, now); err != nil {
		logger.Error("scheduler: digest send failed", "error", err)
	}
}

// RunOnce collects, formats, and sends one digest immediately, bypassing the
// schedule check. tick calls it once the schedule matches; it is exported
// for tests.
func (s *DigestService) RunOnce(ctx context.Context, cfg domain.WeeklyDigestSettings, now time.Time) error {
	html, status, err := s.build(ctx, cfg, now)
	if err != nil {
		return err
	}

	recipients, err := s.settings.AdminEmails(ctx)
	if err != nil {
		return fmt.Errorf("load admin emails: %w", err)
	}

	subject := fmt.Sprintf("[SEO-NOC] Weekly Domain Health Digest - %s %s", status.Emoji, status.Label)
	sentCount := 0
	for _, recipient := range recipients {
		if _, err := s.notifier.SendEmail(ctx, recipient, subject+"\n"+html); err != nil {
			logger.Error("scheduler: failed to send weekly digest", "recipient", recipient, "error", err)
			continue
		}
		sentCount++
	}

	if err := s.repo.MarkDigestSent(ctx, now); err != nil {
		logger.Error("scheduler: failed to mark digest sent", "error", err)
	}

	logger.Info("scheduler: weekly digest sent", "status", status.Label, "recipients", sentCount)
	return nil
}

// Preview renders the digest an operator would currently receive without
// sending it or marking it sent, for the manual preview endpoint.
func (s *DigestService) Preview(ctx context.Context, now time.Time) (string, error) {
	cfg, err := s.settings.WeeklyDigestSettings(ctx)
	if err != nil {
		return "", fmt.Errorf("load digest settings: %w", err)
	}
	html, _, err := s.build(ctx, cfg, now)
	return html, err
}

// build collects and renders the digest body, without sending or marking it
// sent; shared by RunOnce and Preview.
func (s *DigestService) build(ctx context.Context, cfg domain.WeeklyDigestSettings, now time.Time) (string, healthStatus, error) {
	thresholdDays := cfg.ExpirationThresholdDays
	if thresholdDays <= 0 {
		thresholdDays = 30
	}

	expiring, err := s.repo.ListExpiringDomains(ctx, thresholdDays)
	if err != nil {
		return "", healthStatus{}, fmt.Errorf("list expiring domains: %w", err)
	}
	critical, high, medium := bucketExpiring(expiring, now)

	var down, softBlocked []digestDomain
	if cfg.IncludeDown {
		domains, err := s.repo.ListDownDomains(ctx)
		if err != nil {
			return "", healthStatus{}, fmt.Errorf("list down domains: %w", err)
		}
		down = toDigestDomains(domains)
	}
	if cfg.IncludeSoftBlocked {
		domains, err := s.repo.ListSoftBlockedDomains(ctx)
		if err != nil {
			return "", healthStatus{}, fmt.Errorf("list soft-blocked domains: %w", err)
		}
		softBlocked = toDigestDomains(domains)
	}

	for i := range critical {
		s.enrich(ctx, &critical[i])
	}
	for i := range high {
		s.enrich(ctx, &high[i])
	}
	for i := range medium {
		s.enrich(ctx, &medium[i])
	}

	status := determineHealthStatus(critical, high, down, softBlocked, medium)
	weekStart, weekEnd := weekBounds(now)

	bindings := map[string]interface{}{
		"status":       status.Label,
		"color":        status.Color,
		"emoji":        status.Emoji,
		"week_start":   weekStart.Format("Jan 2, 2006"),
		"week_end":     weekEnd.Format("Jan 2, 2006"),
		"critical":     toBindings(critical),
		"high":         toBindings(high),
		"medium":       toBindings(medium),
		"down":         toBindings(down),
		"soft_blocked": toBindings(softBlocked),
	}

	html, err := s.engine.ParseAndRenderString(digestTemplateSource, bindings)
	if err != nil {
		return "", healthStatus{}, fmt.Errorf("render digest template: %w", err)
	}
	return html, status, nil
}

func (s *DigestService) enrich(ctx context.Context, d *digestDomain) {
	usage, err := s.repo.DomainSEOUsage(ctx, d.AssetDomainID)
	if err != nil {
		return
	}
	d.NetworksCount = usage.NetworksCount
	d.IsMainNode = usage.IsMainNode
}

func bucketExpiring(domains []domain.AssetDomain, now time.Time) (critical, high, medium []digestDomain) {
	for _, d := range domains {
		if d.ExpirationDate == nil {
			continue
		}
		days := int(d.ExpirationDate.Sub(now).Hours() / 24)
		row := digestDomain{AssetDomainID: d.ID, DomainName: d.DomainName, DaysRemaining: days}
		switch {
		case days <= 7:
			critical = append(critical, row)
		case days <= 14:
			high = append(high, row)
		case days <= 30:
			medium = append(medium, row)
		}
	}
	return critical, high, medium
}

func toDigestDomains(domains []domain.AssetDomain) []digestDomain {
	out := make([]digestDomain, 0, len(domains))
	for _, d := range domains {
		out = append(out, digestDomain{AssetDomainID: d.ID, DomainName: d.DomainName})
	}
	return out
}

func toBindings(rows []digestDomain) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(rows))
	for _, r := range rows {
		out = append(out, map[string]interface{}{
			"DomainName":    r.DomainName,
			"DaysRemaining": r.DaysRemaining,
			"NetworksCount": r.NetworksCount,
			"IsMainNode":    r.IsMainNode,
		})
	}
	return out
}

// determineHealthStatus ports _format_digest_email's ladder: any
// critical-expiring-or-down escalates to red, else any high-expiring-or-
// soft-blocked to yellow, else any issue at all to blue, else green.
func determineHealthStatus(critical, high, down, softBlocked, medium []digestDomain) healthStatus {
	if len(critical) > 0 || len(down) > 0 {
		return healthNeedsAttention
	}
	if len(high) > 0 || len(softBlocked) > 0 {
		return healthWarning
	}
	if len(medium) > 0 {
		return healthMinorIssues
	}
	return healthAllClear
}

// weekBounds computes the Monday-start week containing now.
func weekBounds(now time.Time) (start, end time.Time) {
	weekday := int(now.Weekday())
	// time.Weekday: Sunday=0 .. Saturday=6; Python's weekday(): Monday=0 .. Sunday=6.
	offset := (weekday + 6) % 7
	start = now.AddDate(0, 0, -offset)
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	end = start.AddDate(0, 0, 6)
	return start, end
}
