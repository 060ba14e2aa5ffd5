package repository

import (
	"context"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

// VariantRepository lectura del catálogo de variantes.
type VariantRepository interface {
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id int64) (*entity.ProductVariant, error)
	// GetByIDs devuelve solo las variantes encontradas, indexadas por ID.
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*entity.ProductVariant, error)
}
