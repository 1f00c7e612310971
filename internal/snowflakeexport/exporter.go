package snowflakeexport

import (
	"context"
	"sync"
	"time"

	"github.com/ignite/seo-noc/internal/pkg/logger"
	"github.com/ignite/seo-noc/internal/service/linker"
)

const (
	defaultExportInterval = 24 * time.Hour
	defaultMetricsDays    = 1
)

// MetricsSource is the narrow contract the exporter needs from the linker.
// Satisfied by linker.Service (duck-typed).
type MetricsSource interface {
	ConflictMetrics(ctx context.Context, networkID *string, days int) (*linker.Metrics, error)
}

// Exporter runs the daily, best-effort export job: a failure here is
// logged and never propagates back into the conflict-ingestion path,
// matching the DOMAIN STACK wiring note. Shaped like the other engines'
// mutex+stopCh+ticker loop.
type Exporter struct {
	client   *Client
	source   MetricsSource
	days     int
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewExporter builds an Exporter. interval defaults to 24h, days (the
// trailing metrics window requested each run) defaults to 1.
func NewExporter(client *Client, source MetricsSource, days int, interval time.Duration) *Exporter {
	if interval <= 0 {
		interval = defaultExportInterval
	}
	if days <= 0 {
		days = defaultMetricsDays
	}
	return &Exporter{client: client, source: source, days: days, interval: interval}
}

// Start begins the background export loop.
func (e *Exporter) Start(ctx context.Context) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.stopCh = make(chan struct{})
	e.mu.Unlock()

	logger.Info("snowflakeexport: exporter started", "interval", e.interval.String())

	go func() {
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				e.RunOnce(ctx)
			case <-e.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop gracefully shuts down the export loop.
func (e *Exporter) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	e.running = false
	close(e.stopCh)
	logger.Info("snowflakeexport: exporter stopped")
}

// RunOnce fetches the current conflict metrics and exports them. Exported
// so tests can drive a single cycle without the ticker.
func (e *Exporter) RunOnce(ctx context.Context) {
	metrics, err := e.source.ConflictMetrics(ctx, nil, e.days)
	if err != nil {
		logger.Error("snowflakeexport: fetching conflict metrics failed", "error", err.Error())
		return
	}

	if err := e.client.ExportMetrics(ctx, metrics, time.Now()); err != nil {
		logger.Error("snowflakeexport: export failed", "error", err.Error())
		return
	}
	logger.Info("snowflakeexport: export succeeded", "total_conflicts", metrics.TotalConflicts)
}
