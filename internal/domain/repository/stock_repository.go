package repository

import (
	"context"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

// StockRecordRepository puerto para leer y persistir saldos por variante+bodega.
// Las implementaciones atadas a una transacción son las únicas que deben escribir.
type StockRecordRepository interface {
	// Get devuelve el registro o nil si el par nunca se ha tocado.
	Get(ctx context.Context, variantID, warehouseID int64) (*entity.StockRecord, error)
	// GetForUpdate carga o crea (en cero) el registro y toma un bloqueo exclusivo de fila
	// hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, variantID, warehouseID int64) (*entity.StockRecord, error)
	Save(ctx context.Context, rec *entity.StockRecord) error
	ListByVariant(ctx context.Context, variantID int64) ([]*entity.StockRecord, error)
	// SumAvailable suma on_hand - reserved de los registros de la variante (todas las bodegas si warehouseID es nil).
	SumAvailable(ctx context.Context, variantID int64, warehouseID *int64) (int64, error)
}
