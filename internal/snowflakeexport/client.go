package snowflakeexport

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/snowflakedb/gosnowflake" // Snowflake driver

	"github.com/ignite/seo-noc/internal/service/linker"
)

// Client writes conflict-resolution metrics snapshots to Snowflake.
type Client struct {
	config Config
	db     *sql.DB
}

// NewClient opens a Snowflake connection through the gosnowflake driver's
// DSN with conservative pool settings.
func NewClient(cfg Config) (*Client, error) {
	dsn := fmt.Sprintf("%s:%s@%s/%s/%s", cfg.User, cfg.Password, cfg.Account, cfg.Database, cfg.Schema)
	if cfg.Warehouse != "" {
		dsn += "?warehouse=" + cfg.Warehouse
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("open snowflake connection: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Client{config: cfg, db: db}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Ping tests the connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// ExportMetrics writes one snapshot row per severity bucket and one per
// conflict-type bucket, all stamped with the same exportedAt timestamp, so
// a single export run is identifiable as one batch in the BI table.
func (c *Client) ExportMetrics(ctx context.Context, m *linker.Metrics, exportedAt time.Time) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snowflake export tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO CONFLICT_METRICS_SUMMARY
			(EXPORTED_AT, PERIOD_DAYS, TOTAL_CONFLICTS, RESOLVED_COUNT, OPEN_COUNT,
			 AVG_RESOLUTION_HOURS, RECURRING_CONFLICTS)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, exportedAt, m.PeriodDays, m.TotalConflicts, m.ResolvedCount, m.OpenCount,
		m.AvgResolutionTimeHours, m.RecurringConflicts)
	if err != nil {
		return fmt.Errorf("insert metrics summary: %w", err)
	}

	for severity, bucket := range m.BySeverity {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO CONFLICT_METRICS_BY_SEVERITY (EXPORTED_AT, SEVERITY, TOTAL, RESOLVED)
			VALUES (?, ?, ?, ?)
		`, exportedAt, string(severity), bucket.Total, bucket.Resolved)
		if err != nil {
			return fmt.Errorf("insert metrics by severity: %w", err)
		}
	}

	for conflictType, bucket := range m.ByType {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO CONFLICT_METRICS_BY_TYPE (EXPORTED_AT, CONFLICT_TYPE, TOTAL, RESOLVED)
			VALUES (?, ?, ?, ?)
		`, exportedAt, string(conflictType), bucket.Total, bucket.Resolved)
		if err != nil {
			return fmt.Errorf("insert metrics by type: %w", err)
		}
	}

	for resolver, count := range m.ByResolver {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO CONFLICT_METRICS_BY_RESOLVER (EXPORTED_AT, RESOLVER, COUNT)
			VALUES (?, ?, ?)
		`, exportedAt, resolver, count)
		if err != nil {
			return fmt.Errorf("insert metrics by resolver: %w", err)
		}
	}

	return tx.Commit()
}
