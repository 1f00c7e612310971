package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/ignite/seo-noc/internal/domain"
)

const structureEntryColumns = `
	id, network_id, asset_domain_id, optimized_path, domain_role, domain_status,
	index_status, target_entry_id, ranking_position, primary_keyword, ranking_url,
	notes, created_at, updated_at`

// StructureEntryRepo implements graph.Repository's entry methods and
// enrich.Repository against a single seo_structure_entries table.
type StructureEntryRepo struct{ db *sql.DB }

// NewStructureEntryRepo builds a Postgres-backed structure entry repository.
func NewStructureEntryRepo(db *sql.DB) *StructureEntryRepo { return &StructureEntryRepo{db: db} }

func scanStructureEntry(row interface{ Scan(...interface{}) error }) (domain.StructureEntry, error) {
	var e domain.StructureEntry
	err := row.Scan(
		&e.ID, &e.NetworkID, &e.AssetDomainID, &e.OptimizedPath, &e.DomainRole, &e.DomainStatus,
		&e.IndexStatus, &e.TargetEntryID, &e.RankingPosition, &e.PrimaryKeyword, &e.RankingURL,
		&e.Notes, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// ListEntries satisfies both graph.Repository and enrich.Repository.
func (r *StructureEntryRepo) ListEntries(ctx context.Context, networkID string) ([]domain.StructureEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+structureEntryColumns+` FROM seo_structure_entries WHERE network_id = $1
	`, networkID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []domain.StructureEntry
	for rows.Next() {
		e, err := scanStructureEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListEntriesByAssetDomain satisfies enrich.Repository.
func (r *StructureEntryRepo) ListEntriesByAssetDomain(ctx context.Context, assetDomainID string) ([]domain.StructureEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+structureEntryColumns+` FROM seo_structure_entries WHERE asset_domain_id = $1
	`, assetDomainID)
	if err != nil {
		return nil, fmt.Errorf("list entries by asset domain: %w", err)
	}
	defer rows.Close()

	var out []domain.StructureEntry
	for rows.Next() {
		e, err := scanStructureEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetEntry satisfies graph.Repository.
func (r *StructureEntryRepo) GetEntry(ctx context.Context, entryID string) (*domain.StructureEntry, error) {
	e, err := scanStructureEntry(r.db.QueryRowContext(ctx, `
		SELECT `+structureEntryColumns+` FROM seo_structure_entries WHERE id = $1
	`, entryID))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return &e, nil
}

// DomainNames satisfies graph.Repository.
func (r *StructureEntryRepo) DomainNames(ctx context.Context, networkID string) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT ad.id, ad.domain_name
		FROM asset_domains ad
		JOIN seo_structure_entries e ON e.asset_domain_id = ad.id
		WHERE e.network_id = $1
	`, networkID)
	if err != nil {
		return nil, fmt.Errorf("domain names: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan domain name: %w", err)
		}
		out[id] = name
	}
	return out, rows.Err()
}

// InsertEntry satisfies graph.Repository.
func (r *StructureEntryRepo) InsertEntry(ctx context.Context, e *domain.StructureEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO seo_structure_entries
			(id, network_id, asset_domain_id, optimized_path, domain_role, domain_status,
			 index_status, target_entry_id, ranking_position, primary_keyword, ranking_url,
			 notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	`, e.ID, e.NetworkID, e.AssetDomainID, e.OptimizedPath, e.DomainRole, e.DomainStatus,
		e.IndexStatus, e.TargetEntryID, e.RankingPosition, e.PrimaryKeyword, e.RankingURL, e.Notes)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// UpdateEntry satisfies graph.Repository.
func (r *StructureEntryRepo) UpdateEntry(ctx context.Context, e *domain.StructureEntry) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE seo_structure_entries
		SET optimized_path = $1, domain_role = $2, domain_status = $3, index_status = $4,
		    target_entry_id = $5, ranking_position = $6, primary_keyword = $7,
		    ranking_url = $8, notes = $9, updated_at = NOW()
		WHERE id = $10
	`, e.OptimizedPath, e.DomainRole, e.DomainStatus, e.IndexStatus,
		e.TargetEntryID, e.RankingPosition, e.PrimaryKeyword, e.RankingURL, e.Notes, e.ID)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	return nil
}

// DeleteEntry satisfies graph.Repository.
func (r *StructureEntryRepo) DeleteEntry(ctx context.Context, entryID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM seo_structure_entries WHERE id = $1`, entryID)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}
