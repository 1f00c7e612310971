package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/ignite/seo-noc/internal/domain"
)

// NetworkRepo implements GetNetwork (and basic CRUD) for every package that
// needs seo_networks: graph.Repository, linker.Repository, and
// scheduler.Repository all declare a GetNetwork method with this same
// signature, so one concrete type satisfies all three by structural typing.
type NetworkRepo struct{ db *sql.DB }

// NewNetworkRepo builds a Postgres-backed network repository.
func NewNetworkRepo(db *sql.DB) *NetworkRepo { return &NetworkRepo{db: db} }

func (r *NetworkRepo) GetNetwork(ctx context.Context, networkID string) (*domain.Network, error) {
	var n domain.Network
	var managerIDs []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT id, brand_id, name, status, visibility_mode, manager_ids, created_by, created_at, updated_at
		FROM seo_networks WHERE id = $1
	`, networkID).Scan(
		&n.ID, &n.BrandID, &n.Name, &n.Status, &n.VisibilityMode, &managerIDs, &n.CreatedBy, &n.CreatedAt, &n.UpdatedAt,
	)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get network: %w", err)
	}
	if err := json.Unmarshal(managerIDs, &n.ManagerIDs); err != nil {
		return nil, fmt.Errorf("decode manager_ids: %w", err)
	}
	return &n, nil
}

func (r *NetworkRepo) ListByBrand(ctx context.Context, brandID string) ([]domain.Network, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, brand_id, name, status, visibility_mode, manager_ids, created_by, created_at, updated_at
		FROM seo_networks WHERE brand_id = $1 ORDER BY created_at DESC
	`, brandID)
	if err != nil {
		return nil, fmt.Errorf("list networks: %w", err)
	}
	defer rows.Close()

	var out []domain.Network
	for rows.Next() {
		var n domain.Network
		var managerIDs []byte
		if err := rows.Scan(&n.ID, &n.BrandID, &n.Name, &n.Status, &n.VisibilityMode, &managerIDs, &n.CreatedBy, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan network: %w", err)
		}
		if err := json.Unmarshal(managerIDs, &n.ManagerIDs); err != nil {
			return nil, fmt.Errorf("decode manager_ids: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// ListAll returns every network, used by the operator-triggered
// "detect conflicts everywhere" API action (internal/api).
func (r *NetworkRepo) ListAll(ctx context.Context) ([]domain.Network, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, brand_id, name, status, visibility_mode, manager_ids, created_by, created_at, updated_at
		FROM seo_networks ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list all networks: %w", err)
	}
	defer rows.Close()

	var out []domain.Network
	for rows.Next() {
		var n domain.Network
		var managerIDs []byte
		if err := rows.Scan(&n.ID, &n.BrandID, &n.Name, &n.Status, &n.VisibilityMode, &managerIDs, &n.CreatedBy, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan network: %w", err)
		}
		if err := json.Unmarshal(managerIDs, &n.ManagerIDs); err != nil {
			return nil, fmt.Errorf("decode manager_ids: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NetworkRepo) Create(ctx context.Context, n *domain.Network) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	managerIDs, err := json.Marshal(n.ManagerIDs)
	if err != nil {
		return fmt.Errorf("encode manager_ids: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO seo_networks (id, brand_id, name, status, visibility_mode, manager_ids, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`, n.ID, n.BrandID, n.Name, n.Status, n.VisibilityMode, managerIDs, n.CreatedBy)
	if err != nil {
		return fmt.Errorf("create network: %w", err)
	}
	return nil
}

func (r *NetworkRepo) Update(ctx context.Context, n *domain.Network) error {
	managerIDs, err := json.Marshal(n.ManagerIDs)
	if err != nil {
		return fmt.Errorf("encode manager_ids: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE seo_networks
		SET name = $1, status = $2, visibility_mode = $3, manager_ids = $4, updated_at = NOW()
		WHERE id = $5
	`, n.Name, n.Status, n.VisibilityMode, managerIDs, n.ID)
	if err != nil {
		return fmt.Errorf("update network: %w", err)
	}
	return nil
}
