package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var _ repository.VariantRepository = (*VariantRepo)(nil)

// VariantRepo lectura de product_variants.
type VariantRepo struct {
	q Querier
}

// NewVariantRepository construye el adaptador.
func NewVariantRepository(q Querier) *VariantRepo {
	return &VariantRepo{q: q}
}

func (r *VariantRepo) GetByID(ctx context.Context, id int64) (*entity.ProductVariant, error) {
	query := `
		SELECT id, product_id, sku, product_name, name, is_active, created_at
		FROM product_variants WHERE id = $1`
	var v entity.ProductVariant
	err := r.q.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.ProductID, &v.SKU, &v.ProductName, &v.Name, &v.IsActive, &v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get variant: %w", err)
	}
	return &v, nil
}

// GetByIDs una sola consulta con ANY($1).
func (r *VariantRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]*entity.ProductVariant, error) {
	out := make(map[int64]*entity.ProductVariant, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := `
		SELECT id, product_id, sku, product_name, name, is_active, created_at
		FROM product_variants WHERE id = ANY($1)`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v entity.ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.ProductName, &v.Name, &v.IsActive, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		out[v.ID] = &v
	}
	return out, rows.Err()
}
