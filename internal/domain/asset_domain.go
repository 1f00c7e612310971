package domain

import "time"

// DomainStatus is the registrar/account-level lifecycle state of an asset domain.
type DomainStatus string

const (
	DomainStatusActive   DomainStatus = "active"
	DomainStatusInactive DomainStatus = "inactive"
	DomainStatusExpired  DomainStatus = "expired"
	DomainStatusPending  DomainStatus = "pending"
)

// PingStatus is the most recent availability-probe classification.
type PingStatus string

const (
	PingUp          PingStatus = "up"
	PingDown        PingStatus = "down"
	PingSoftBlocked PingStatus = "soft_blocked"
	PingUnknown     PingStatus = "unknown"
)

// SoftBlockType narrows a PingSoftBlocked classification to its cause.
type SoftBlockType string

const (
	SoftBlockCloudflareChallenge SoftBlockType = "cloudflare_challenge"
	SoftBlockCaptcha             SoftBlockType = "captcha"
	SoftBlockGeoBlocked          SoftBlockType = "geo_blocked"
	SoftBlockBotProtection       SoftBlockType = "bot_protection"
)

// MonitoringInterval controls how often the availability engine probes a domain.
type MonitoringInterval string

const (
	Interval5m   MonitoringInterval = "5m"
	Interval15m  MonitoringInterval = "15m"
	Interval1h   MonitoringInterval = "1h"
	IntervalDaily MonitoringInterval = "daily"
)

// Duration returns the Go duration corresponding to the monitoring interval,
// defaulting to 1 hour for an unrecognized or empty value.
func (m MonitoringInterval) Duration() time.Duration {
	switch m {
	case Interval5m:
		return 5 * time.Minute
	case Interval15m:
		return 15 * time.Minute
	case Interval1h:
		return time.Hour
	case IntervalDaily:
		return 24 * time.Hour
	default:
		return time.Hour
	}
}

// DomainLifecycleStatus is a finer-grained lifecycle state than DomainStatus,
// used to decide whether monitoring is required (see AssetDomain.RequiresMonitoring).
type DomainLifecycleStatus string

const (
	LifecycleActive         DomainLifecycleStatus = "active"
	LifecycleExpiredPending DomainLifecycleStatus = "expired_pending"
	LifecycleExpiredReleased DomainLifecycleStatus = "expired_released"
	LifecycleInactive       DomainLifecycleStatus = "inactive"
	LifecycleArchived       DomainLifecycleStatus = "archived"
)

// QuarantineCategory marks a domain as deliberately excluded from compliance checks.
type QuarantineCategory struct {
	Category     string     `json:"category" db:"quarantine_category"`
	QuarantinedBy string    `json:"quarantined_by,omitempty" db:"quarantined_by"`
	QuarantinedAt *time.Time `json:"quarantined_at,omitempty" db:"quarantined_at"`
	ReleasedBy   string     `json:"released_by,omitempty" db:"released_by"`
	ReleasedAt   *time.Time `json:"released_at,omitempty" db:"released_at"`
}

// AssetDomain is a registered DNS name tracked by the NOC.
type AssetDomain struct {
	ID                     string                `json:"id" db:"id"`
	DomainName             string                `json:"domain_name" db:"domain_name"`
	BrandID                string                `json:"brand_id" db:"brand_id"`
	CategoryID             string                `json:"category_id,omitempty" db:"category_id"`
	RegistrarID            string                `json:"registrar_id,omitempty" db:"registrar_id"`
	Status                 DomainStatus          `json:"status" db:"status"`
	ExpirationDate         *time.Time            `json:"expiration_date,omitempty" db:"expiration_date"`
	CertExpirationDate     *time.Time            `json:"cert_expiration_date,omitempty" db:"cert_expiration_date"`
	AutoRenew              bool                  `json:"auto_renew" db:"auto_renew"`
	MonitoringEnabled      bool                  `json:"monitoring_enabled" db:"monitoring_enabled"`
	MonitoringInterval     MonitoringInterval    `json:"monitoring_interval" db:"monitoring_interval"`
	PingStatus             PingStatus            `json:"ping_status" db:"ping_status"`
	LastHTTPCode           int                   `json:"last_http_code,omitempty" db:"last_http_code"`
	LastCheckedAt          *time.Time            `json:"last_checked_at,omitempty" db:"last_checked_at"`
	SoftBlockType          SoftBlockType         `json:"soft_block_type,omitempty" db:"soft_block_type"`
	DomainLifecycleStatus  DomainLifecycleStatus `json:"domain_lifecycle_status" db:"domain_lifecycle_status"`
	Quarantine             *QuarantineCategory   `json:"quarantine,omitempty" db:"-"`
	CreatedAt              time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time             `json:"updated_at" db:"updated_at"`
}

// RequiresMonitoring reports whether a domain whose lifecycle is still
// active or pending expiry, and that is not quarantined, must have
// monitoring enabled. Whether the domain is used in an SEO structure entry
// is not checked here.
func (d *AssetDomain) RequiresMonitoring() bool {
	if d.Quarantine != nil && d.Quarantine.ReleasedAt == nil {
		return false
	}
	switch d.DomainLifecycleStatus {
	case LifecycleActive, LifecycleExpiredPending:
		return true
	default:
		return false
	}
}

// IsCompliant reports whether the domain satisfies the monitoring-required invariant.
func (d *AssetDomain) IsCompliant() bool {
	return !d.RequiresMonitoring() || d.MonitoringEnabled
}
