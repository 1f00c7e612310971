package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ignite/seo-noc/internal/domain"
)

// SettingsRepo persists the named, mutable settings rows
// (telegram_seo, telegram_monitoring, email_alerts, weekly_digest,
// optimization_reminders, monitoring_config, system_timezone) in a single
// key/value table, each row's value stored as a JSON blob. It satisfies
// scheduler.DigestSettingsProvider and scheduler.OptimizationSettingsProvider
// directly; main.go reads the remaining rows at startup to build the
// notify/availability/expiration services' config structs.
type SettingsRepo struct{ db *sql.DB }

// NewSettingsRepo builds a Postgres-backed settings repository.
func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

func (r *SettingsRepo) get(ctx context.Context, key string, out interface{}) error {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&raw)
	if isNoRows(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get setting %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode setting %s: %w", key, err)
	}
	return nil
}

func (r *SettingsRepo) set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()
	`, key, raw)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// TelegramSEOSettings loads the telegram_seo row.
func (r *SettingsRepo) TelegramSEOSettings(ctx context.Context) (domain.TelegramSEOSettings, error) {
	var s domain.TelegramSEOSettings
	err := r.get(ctx, "telegram_seo", &s)
	return s, err
}

// TelegramMonitoringSettings loads the telegram_monitoring row.
func (r *SettingsRepo) TelegramMonitoringSettings(ctx context.Context) (domain.TelegramMonitoringSettings, error) {
	var s domain.TelegramMonitoringSettings
	err := r.get(ctx, "telegram_monitoring", &s)
	return s, err
}

// EmailAlertSettings loads the email_alerts row.
func (r *SettingsRepo) EmailAlertSettings(ctx context.Context) (domain.EmailAlertSettings, error) {
	var s domain.EmailAlertSettings
	err := r.get(ctx, "email_alerts", &s)
	return s, err
}

// MonitoringConfigSettings loads the monitoring_config row.
func (r *SettingsRepo) MonitoringConfigSettings(ctx context.Context) (domain.MonitoringConfigSettings, error) {
	var s domain.MonitoringConfigSettings
	err := r.get(ctx, "monitoring_config", &s)
	return s, err
}

// SystemTimezoneSettings loads the system_timezone row.
func (r *SettingsRepo) SystemTimezoneSettings(ctx context.Context) (domain.SystemTimezoneSettings, error) {
	var s domain.SystemTimezoneSettings
	err := r.get(ctx, "system_timezone", &s)
	return s, err
}

// WeeklyDigestSettings satisfies scheduler.DigestSettingsProvider.
func (r *SettingsRepo) WeeklyDigestSettings(ctx context.Context) (domain.WeeklyDigestSettings, error) {
	var s domain.WeeklyDigestSettings
	err := r.get(ctx, "weekly_digest", &s)
	return s, err
}

// AdminEmails satisfies scheduler.DigestSettingsProvider, reading the
// global admin recipient list off the email_alerts row.
func (r *SettingsRepo) AdminEmails(ctx context.Context) ([]string, error) {
	settings, err := r.EmailAlertSettings(ctx)
	if err != nil {
		return nil, err
	}
	return settings.GlobalAdminEmails, nil
}

// globalOptimizationReminderSettings loads the process-wide default row.
func (r *SettingsRepo) globalOptimizationReminderSettings(ctx context.Context) (domain.OptimizationReminderSettings, error) {
	var s domain.OptimizationReminderSettings
	err := r.get(ctx, "optimization_reminders", &s)
	return s, err
}

// OptimizationReminderSettings satisfies scheduler.OptimizationSettingsProvider:
// the global row, overridden per network when the network has its own
// interval_days row (key "optimization_reminders:<network_id>"), clamped
// to the 1-30 day per-network override range.
func (r *SettingsRepo) OptimizationReminderSettings(ctx context.Context, networkID string) (domain.OptimizationReminderSettings, error) {
	global, err := r.globalOptimizationReminderSettings(ctx)
	if err != nil {
		return domain.OptimizationReminderSettings{}, err
	}

	var override domain.OptimizationReminderSettings
	if err := r.get(ctx, "optimization_reminders:"+networkID, &override); err != nil {
		return domain.OptimizationReminderSettings{}, err
	}
	if override.IntervalDays >= 1 && override.IntervalDays <= 30 {
		global.IntervalDays = override.IntervalDays
	}
	return global, nil
}

// SaveSetting persists an arbitrary named settings row, used by the
// operator-facing settings API.
func (r *SettingsRepo) SaveSetting(ctx context.Context, key string, value interface{}) error {
	return r.set(ctx, key, value)
}
