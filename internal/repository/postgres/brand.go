package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/ignite/seo-noc/internal/domain"
)

// BrandRepo is the thin CRUD layer behind the operator-facing brand
// listing/creation surface; no service package depends on it directly.
type BrandRepo struct{ db *sql.DB }

// NewBrandRepo builds a Postgres-backed brand repository.
func NewBrandRepo(db *sql.DB) *BrandRepo { return &BrandRepo{db: db} }

func (r *BrandRepo) Get(ctx context.Context, id string) (*domain.Brand, error) {
	var b domain.Brand
	err := r.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM brands WHERE id = $1`, id).
		Scan(&b.ID, &b.Name, &b.CreatedAt)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get brand: %w", err)
	}
	return &b, nil
}

func (r *BrandRepo) List(ctx context.Context) ([]domain.Brand, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM brands ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	var out []domain.Brand
	for rows.Next() {
		var b domain.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BrandRepo) Create(ctx context.Context, b *domain.Brand) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO brands (id, name, created_at) VALUES ($1, $2, NOW())`, b.ID, b.Name)
	if err != nil {
		return fmt.Errorf("create brand: %w", err)
	}
	return nil
}
