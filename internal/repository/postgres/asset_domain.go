package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/service/availability"
	"github.com/ignite/seo-noc/internal/service/scheduler"
)

const assetDomainColumns = `
	id, domain_name, brand_id, category_id, registrar_id, status,
	expiration_date, cert_expiration_date, auto_renew, monitoring_enabled,
	monitoring_interval, ping_status, last_http_code, last_checked_at,
	soft_block_type, domain_lifecycle_status, created_at, updated_at`

// AssetDomainRepo implements availability.Repository, expiration.Repository,
// scheduler.Repository's domain-listing methods, and graph.Repository's
// GetDomainBrand against a single asset_domains table.
type AssetDomainRepo struct{ db *sql.DB }

// NewAssetDomainRepo builds a Postgres-backed asset domain repository.
func NewAssetDomainRepo(db *sql.DB) *AssetDomainRepo { return &AssetDomainRepo{db: db} }

func scanAssetDomain(row interface{ Scan(...interface{}) error }) (*domain.AssetDomain, error) {
	d := &domain.AssetDomain{}
	err := row.Scan(
		&d.ID, &d.DomainName, &d.BrandID, &d.CategoryID, &d.RegistrarID, &d.Status,
		&d.ExpirationDate, &d.CertExpirationDate, &d.AutoRenew, &d.MonitoringEnabled,
		&d.MonitoringInterval, &d.PingStatus, &d.LastHTTPCode, &d.LastCheckedAt,
		&d.SoftBlockType, &d.DomainLifecycleStatus, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ListDueForProbe satisfies availability.Repository.
func (r *AssetDomainRepo) ListDueForProbe(ctx context.Context, now time.Time) ([]*domain.AssetDomain, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+assetDomainColumns+`
		FROM asset_domains
		WHERE monitoring_enabled = true
		  AND (last_checked_at IS NULL OR last_checked_at + (CASE monitoring_interval
		        WHEN '5m' THEN interval '5 minutes'
		        WHEN '15m' THEN interval '15 minutes'
		        WHEN 'daily' THEN interval '1 day'
		        ELSE interval '1 hour' END) <= $1)
	`, now)
	if err != nil {
		return nil, fmt.Errorf("list due for probe: %w", err)
	}
	defer rows.Close()

	var out []*domain.AssetDomain
	for rows.Next() {
		d, err := scanAssetDomain(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset domain: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateProbeResult satisfies availability.Repository.
func (r *AssetDomainRepo) UpdateProbeResult(ctx context.Context, domainID string, result availability.ProbeResult) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE asset_domains
		SET ping_status = $1, last_http_code = $2, soft_block_type = $3,
		    last_checked_at = $4, updated_at = NOW()
		WHERE id = $5
	`, result.Status, result.HTTPCode, result.SoftBlockType, result.CheckedAt, domainID)
	if err != nil {
		return fmt.Errorf("update probe result: %w", err)
	}
	return nil
}

// ListWithExpirationDate satisfies expiration.Repository.
func (r *AssetDomainRepo) ListWithExpirationDate(ctx context.Context) ([]*domain.AssetDomain, error) {
	return r.listWherePtr(ctx, "expiration_date IS NOT NULL")
}

// ListWithCertExpirationDate satisfies expiration.Repository.
func (r *AssetDomainRepo) ListWithCertExpirationDate(ctx context.Context) ([]*domain.AssetDomain, error) {
	return r.listWherePtr(ctx, "cert_expiration_date IS NOT NULL")
}

func (r *AssetDomainRepo) listWherePtr(ctx context.Context, where string) ([]*domain.AssetDomain, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+assetDomainColumns+` FROM asset_domains WHERE `+where)
	if err != nil {
		return nil, fmt.Errorf("list asset domains: %w", err)
	}
	defer rows.Close()

	var out []*domain.AssetDomain
	for rows.Next() {
		d, err := scanAssetDomain(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset domain: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *AssetDomainRepo) listWhereVal(ctx context.Context, where string, args ...interface{}) ([]domain.AssetDomain, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+assetDomainColumns+` FROM asset_domains WHERE `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list asset domains: %w", err)
	}
	defer rows.Close()

	var out []domain.AssetDomain
	for rows.Next() {
		d, err := scanAssetDomain(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset domain: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// ListUnmonitoredDomains satisfies scheduler.Repository: every asset domain
// referenced by at least one structure entry with monitoring disabled.
func (r *AssetDomainRepo) ListUnmonitoredDomains(ctx context.Context) ([]domain.AssetDomain, error) {
	return r.listWhereVal(ctx, `
		monitoring_enabled = false
		AND EXISTS (SELECT 1 FROM seo_structure_entries e WHERE e.asset_domain_id = asset_domains.id)
	`)
}

// ListExpiringDomains satisfies scheduler.Repository.
func (r *AssetDomainRepo) ListExpiringDomains(ctx context.Context, thresholdDays int) ([]domain.AssetDomain, error) {
	return r.listWhereVal(ctx, `
		expiration_date IS NOT NULL
		AND expiration_date <= NOW() + ($1 || ' days')::interval
	`, thresholdDays)
}

// ListDownDomains satisfies scheduler.Repository.
func (r *AssetDomainRepo) ListDownDomains(ctx context.Context) ([]domain.AssetDomain, error) {
	return r.listWhereVal(ctx, `ping_status = $1`, domain.PingDown)
}

// ListSoftBlockedDomains satisfies scheduler.Repository.
func (r *AssetDomainRepo) ListSoftBlockedDomains(ctx context.Context) ([]domain.AssetDomain, error) {
	return r.listWhereVal(ctx, `ping_status = $1`, domain.PingSoftBlocked)
}

// DomainSEOUsage satisfies scheduler.Repository, porting
// _get_domain_seo_usage: how many distinct networks reference the domain,
// and whether it plays the main role in any of them.
func (r *AssetDomainRepo) DomainSEOUsage(ctx context.Context, assetDomainID string) (scheduler.DomainSEOUsage, error) {
	var usage scheduler.DomainSEOUsage
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT network_id), COALESCE(BOOL_OR(domain_role = 'main'), false)
		FROM seo_structure_entries
		WHERE asset_domain_id = $1
	`, assetDomainID).Scan(&usage.NetworksCount, &usage.IsMainNode)
	if err != nil {
		return scheduler.DomainSEOUsage{}, fmt.Errorf("domain seo usage: %w", err)
	}
	return usage, nil
}

// MarkDigestSent satisfies scheduler.Repository.
func (r *AssetDomainRepo) MarkDigestSent(ctx context.Context, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scheduler_state (key, last_sent_at) VALUES ('weekly_digest', $1)
		ON CONFLICT (key) DO UPDATE SET last_sent_at = $1
	`, at)
	if err != nil {
		return fmt.Errorf("mark digest sent: %w", err)
	}
	return nil
}

// DomainName satisfies enrich.Repository's optional CDNResolver hand-off.
func (r *AssetDomainRepo) DomainName(ctx context.Context, assetDomainID string) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx, `SELECT domain_name FROM asset_domains WHERE id = $1`, assetDomainID).Scan(&name)
	if err != nil {
		return "", fmt.Errorf("get domain name: %w", err)
	}
	return name, nil
}

// ListDomainNames satisfies awsintegrations.CertRepository: every monitored
// domain name, for matching against ACM's ListCertificates output.
func (r *AssetDomainRepo) ListDomainNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT domain_name FROM asset_domains`)
	if err != nil {
		return nil, fmt.Errorf("list domain names: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan domain name: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// UpdateCertExpiration satisfies awsintegrations.CertRepository, persisting
// the TLS certificate's independent expiration clock.
func (r *AssetDomainRepo) UpdateCertExpiration(ctx context.Context, domainName string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE asset_domains SET cert_expiration_date = $1, updated_at = NOW() WHERE domain_name = $2
	`, expiresAt, domainName)
	if err != nil {
		return fmt.Errorf("update cert expiration: %w", err)
	}
	return nil
}

// GetDomainBrand satisfies graph.Repository.
func (r *AssetDomainRepo) GetDomainBrand(ctx context.Context, assetDomainID string) (string, error) {
	var brandID string
	err := r.db.QueryRowContext(ctx, `SELECT brand_id FROM asset_domains WHERE id = $1`, assetDomainID).Scan(&brandID)
	if err != nil {
		return "", fmt.Errorf("get domain brand: %w", err)
	}
	return brandID, nil
}
