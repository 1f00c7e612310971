// Package config holds the process-wide, load-once-at-startup
// configuration: a YAML defaults file overridden by environment
// variables, with a best-effort .env load ahead of both
// (godotenv.Load() first, then yaml.Unmarshal, then os.Getenv
// overrides).
//
// The mutable, frequently-changing settings rows (telegram_seo,
// email_alerts, weekly_digest, ...) are NOT modeled here — those live in
// internal/domain/settings.go and are read fresh from Postgres on every
// event via internal/repository/postgres.SettingsRepo, so an admin edit
// takes effect immediately without a process restart.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all process-wide configuration for the SEO NOC service.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Storage     StorageConfig     `yaml:"storage"`
	Redis       RedisConfig       `yaml:"redis"`
	AWS         AWSConfig         `yaml:"aws"`
	Chat        ChatConfig        `yaml:"chat"`
	SES         SESConfig         `yaml:"ses"`
	OAuthEmail  OAuthEmailConfig  `yaml:"oauth_email"`
	Snowflake   SnowflakeConfig   `yaml:"snowflake"`
	Feed        FeedConfig        `yaml:"feed"`
	Monitoring  MonitoringConfig  `yaml:"monitoring"`
	Auth        AuthConfig        `yaml:"auth"`
	LogLevel    string            `yaml:"log_level"`
}

// ServerConfig holds the thin operator-surface HTTP listener's settings
// (internal/api — manual detection trigger, template preview, digest
// preview, health/readiness; NOT the out-of-scope CRUD/auth API).
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the configured host, with an ECS/container override,
// binding to all interfaces when running inside ECS.
func (c ServerConfig) GetHost() string {
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// StorageConfig holds the primary Postgres connection string").
type StorageConfig struct {
	PostgresDSN string `yaml:"postgres_dsn"`
}

// RedisConfig holds the shared rate-limit/dedup/lock backend. Addr empty disables Redis:
// every rate limiter and deduper then falls back to its in-memory
// implementation, accepting at most one duplicate notification after a
// restart.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AWSConfig holds the shared aws.Config inputs threaded into every
// AWS-backed adapter (sesv2, route53, acm, cloudfront, bedrockruntime,
// dynamodb), built once at startup and threaded into each client.
type AWSConfig struct {
	Region                string `yaml:"region"`
	Profile               string `yaml:"profile"`
	DynamoDBAuditTable    string `yaml:"dynamodb_audit_table"`
	BedrockModelID        string `yaml:"bedrock_model_id"`
	EnableRoute53Prober   bool   `yaml:"enable_route53_prober"`
	EnableCertPoller      bool   `yaml:"enable_cert_poller"`
	EnableCDNResolver     bool   `yaml:"enable_cdn_resolver"`
	EnableSuggestionModel bool   `yaml:"enable_suggestion_model"`
}

// ChatConfig holds the process-wide default bot credentials"). The effective per-event chat config is the
// telegram_seo/telegram_monitoring settings rows; these are only the
// fallback used to construct the adapter before any settings row exists.
type ChatConfig struct {
	BaseURL          string `yaml:"base_url"`
	BotTokenDefault  string `yaml:"bot_token_default"`
	ChatIDDefault    string `yaml:"chat_id_default"`
}

// SESConfig configures the primary (AWS SES) email adapter backend.
type SESConfig struct {
	Enabled bool   `yaml:"enabled"`
	Region  string `yaml:"region"`
	From    string `yaml:"from"`
}

// OAuthEmailConfig configures the second, OAuth2-authenticated
// transactional email backend, selectable alongside SES via config.
type OAuthEmailConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Endpoint     string `yaml:"endpoint"`
	From         string `yaml:"from"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	TokenURL     string `yaml:"token_url"`
}

// SnowflakeConfig is the conflict-metrics export sink (internal/snowflakeexport).
type SnowflakeConfig struct {
	Account          string `yaml:"account"`
	User             string `yaml:"user"`
	Password         string `yaml:"password"`
	Database         string `yaml:"database"`
	Schema           string `yaml:"schema"`
	Warehouse        string `yaml:"warehouse"`
	Enabled          bool   `yaml:"enabled"`
	IntervalHours    int    `yaml:"interval_hours"`
	MetricsWindowDays int   `yaml:"metrics_window_days"`
}

// FeedConfig configures the optional registrar status-feed poller
// (internal/feed), off by default.
type FeedConfig struct {
	Enabled             bool `yaml:"enabled"`
	PollIntervalMinutes int  `yaml:"poll_interval_minutes"`
}

// MonitoringConfig sets the availability and expiration engines' loop
// intervals. RecoveryAlertsEnabled is not read by main.go: the availability
// engine takes that flag from the monitoring_config settings row, read once
// at startup.
type MonitoringConfig struct {
	AvailabilityIntervalSeconds int  `yaml:"availability_interval_seconds"`
	ExpirationCheckIntervalHours int `yaml:"expiration_check_interval_hours"`
	RecoveryAlertsEnabled       bool `yaml:"recovery_alerts_enabled"`
}

// AuthConfig holds the external-auth secret"). The core never validates tokens
// itself — user auth/role storage is explicitly out of scope — this
// field exists only so the secret can be threaded to the external
// collaborator process via shared environment/config if co-deployed.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// Load reads and parses the YAML configuration file, applying defaults
// for anything left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Chat.BaseURL == "" {
		cfg.Chat.BaseURL = "https://api.telegram.org"
	}
	if cfg.SES.Region == "" {
		cfg.SES.Region = "us-west-2"
	}
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = "us-west-2"
	}
	if cfg.AWS.DynamoDBAuditTable == "" {
		cfg.AWS.DynamoDBAuditTable = "seo_noc_audit_log"
	}
	if cfg.AWS.BedrockModelID == "" {
		cfg.AWS.BedrockModelID = "anthropic.claude-3-haiku-20240307-v1:0"
	}
	if cfg.Snowflake.IntervalHours == 0 {
		cfg.Snowflake.IntervalHours = 24
	}
	if cfg.Snowflake.MetricsWindowDays == 0 {
		cfg.Snowflake.MetricsWindowDays = 1
	}
	if cfg.Feed.PollIntervalMinutes == 0 {
		cfg.Feed.PollIntervalMinutes = 15
	}
	if cfg.Monitoring.AvailabilityIntervalSeconds == 0 {
		cfg.Monitoring.AvailabilityIntervalSeconds = 60
	}
	if cfg.Monitoring.ExpirationCheckIntervalHours == 0 {
		cfg.Monitoring.ExpirationCheckIntervalHours = 1
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// AvailabilityInterval returns the configured polling interval as a duration.
func (c MonitoringConfig) AvailabilityInterval() time.Duration {
	return time.Duration(c.AvailabilityIntervalSeconds) * time.Second
}

// ExpirationCheckInterval returns the configured polling interval as a duration.
func (c MonitoringConfig) ExpirationCheckInterval() time.Duration {
	return time.Duration(c.ExpirationCheckIntervalHours) * time.Hour
}

// FeedPollInterval returns the configured feed-poll interval as a duration.
func (c FeedConfig) FeedPollInterval() time.Duration {
	return time.Duration(c.PollIntervalMinutes) * time.Minute
}

// SnowflakeInterval returns the configured export interval as a duration.
func (c SnowflakeConfig) SnowflakeInterval() time.Duration {
	return time.Duration(c.IntervalHours) * time.Hour
}

// LoadFromEnv loads configuration with environment variable overrides,
// best-effort-loading a .env file first (ignored if absent), matching
// environment variables override YAML values.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.AWS.Region = v
	}
	if v := os.Getenv("AWS_PROFILE"); v != "" {
		cfg.AWS.Profile = v
	}
	if v := os.Getenv("CHAT_BOT_TOKEN_DEFAULT"); v != "" {
		cfg.Chat.BotTokenDefault = v
	}
	if v := os.Getenv("CHAT_CHAT_ID_DEFAULT"); v != "" {
		cfg.Chat.ChatIDDefault = v
	}
	if v := os.Getenv("CHAT_BASE_URL"); v != "" {
		cfg.Chat.BaseURL = v
	}
	if v := os.Getenv("SES_FROM"); v != "" {
		cfg.SES.From = v
	}
	if v := os.Getenv("OAUTH_EMAIL_CLIENT_SECRET"); v != "" {
		cfg.OAuthEmail.ClientSecret = v
	}
	if v := os.Getenv("SNOWFLAKE_PASSWORD"); v != "" {
		cfg.Snowflake.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}

	return cfg, nil
}
