package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

// UnitOfWork repositorios atados a una transacción abierta.
// Todo lo escrito a través de ellos se confirma o se descarta junto.
type UnitOfWork interface {
	Stock() repository.StockRecordRepository
	Ledger() repository.LedgerRepository
	// AfterCommit registra fn para ejecutarse solo si la transacción se confirma.
	AfterCommit(fn func(ctx context.Context))
}

// TxRunner ejecuta fn dentro de una transacción de BD. Si fn devuelve error se hace Rollback.
type TxRunner interface {
	Run(ctx context.Context, fn func(uow UnitOfWork) error) error
}

// AvailabilityCache caché de lectura de disponibilidad. warehouseID nil = todas las bodegas.
//
// Cada variante lleva un contador de generación que Invalidate incrementa.
// Set solo escribe si la generación sigue siendo gen; así un lector que consultó
// la BD antes de un commit no puede dejar un valor viejo después de la invalidación.
type AvailabilityCache interface {
	Get(ctx context.Context, variantID int64, warehouseID *int64) (qty int64, ok bool, err error)
	// Generation generación actual de la variante; se lee antes de consultar la BD.
	Generation(ctx context.Context, variantID int64) (int64, error)
	// Set guarda qty si la generación de la variante sigue siendo gen.
	Set(ctx context.Context, variantID int64, warehouseID *int64, gen, qty int64) error
	// Invalidate incrementa la generación y borra las entradas de las bodegas indicadas y el agregado.
	Invalidate(ctx context.Context, variantID int64, warehouseIDs ...int64) error
}

// Recorder métricas de operaciones del libro.
type Recorder interface {
	ObserveOperation(operation, outcome string, d time.Duration)
	CacheResult(hit bool)
}

type nopCache struct{}

func (nopCache) Get(context.Context, int64, *int64) (int64, bool, error) { return 0, false, nil }

func (nopCache) Generation(context.Context, int64) (int64, error) { return 0, nil }

func (nopCache) Set(context.Context, int64, *int64, int64, int64) error { return nil }

func (nopCache) Invalidate(context.Context, int64, ...int64) error { return nil }

type nopRecorder struct{}

func (nopRecorder) ObserveOperation(string, string, time.Duration) {}

func (nopRecorder) CacheResult(bool) {}
