package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

// LedgerFilter criterios de consulta del historial. Campos nil/vacíos no filtran.
type LedgerFilter struct {
	VariantID     *int64
	WarehouseID   *int64
	Type          string
	TransactionID *uuid.UUID
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

// LedgerRepository puerto del libro de stock (solo inserción).
type LedgerRepository interface {
	Append(ctx context.Context, entries ...*entity.LedgerEntry) error
	// List devuelve las entradas más recientes primero.
	List(ctx context.Context, filter LedgerFilter) ([]*entity.LedgerEntry, error)
}
