package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
	"github.com/jhoicas/warehouse-ledger/pkg/logger"
	"github.com/jhoicas/warehouse-ledger/pkg/metrics"
)

// Nombres de operación para logs y métricas.
const (
	OpAdjust       = "adjust"
	OpInbound      = "inbound"
	OpReserve      = "reserve"
	OpRelease      = "release"
	OpFulfill      = "fulfill"
	OpTransfer     = "transfer"
	OpReserveOrder = "reserve_order"
	OpReleaseOrder = "release_order"
	OpFulfillOrder = "fulfill_order"
	OpReorderLevel = "reorder_level"
)

// errRejected fuerza el Rollback cuando una operación se rechaza por regla de negocio,
// así no sobreviven registros creados en cero durante la validación.
var errRejected = errors.New("operación rechazada")

// Deps dependencias del caso de uso. Cache, Metrics, Logger y Now son opcionales.
type Deps struct {
	TxRunner   TxRunner
	Stock      repository.StockRecordRepository // lecturas fuera de transacción
	Ledger     repository.LedgerRepository
	Variants   repository.VariantRepository
	Warehouses repository.WarehouseRepository
	Cache      AvailabilityCache
	Metrics    Recorder
	Logger     *logger.Logger
	Now        func() time.Time
}

// StockLedgerUseCase única autoridad para mutar saldos: cada cambio va con su entrada en el libro,
// dentro de la misma transacción y con bloqueo exclusivo de las filas afectadas.
type StockLedgerUseCase struct {
	txRunner   TxRunner
	stock      repository.StockRecordRepository
	ledger     repository.LedgerRepository
	variants   repository.VariantRepository
	warehouses repository.WarehouseRepository
	cache      AvailabilityCache
	metrics    Recorder
	log        *logger.Logger
	now        func() time.Time
}

// NewStockLedgerUseCase construye el caso de uso.
func NewStockLedgerUseCase(d Deps) *StockLedgerUseCase {
	uc := &StockLedgerUseCase{
		txRunner:   d.TxRunner,
		stock:      d.Stock,
		ledger:     d.Ledger,
		variants:   d.Variants,
		warehouses: d.Warehouses,
		cache:      d.Cache,
		metrics:    d.Metrics,
		log:        d.Logger,
		now:        d.Now,
	}
	if uc.cache == nil {
		uc.cache = nopCache{}
	}
	if uc.metrics == nil {
		uc.metrics = nopRecorder{}
	}
	if uc.log == nil {
		uc.log = logger.Nop()
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc
}

// AdjustInput corrección manual. Reason es obligatorio y queda en el libro tal cual.
type AdjustInput struct {
	VariantID   int64
	WarehouseID int64
	Type        string // addition | subtraction | set
	Quantity    int64
	Reason      string
	Notes       string
	Actor       string
}

// AdjustResult saldo resultante y diferencia aplicada (nuevo - anterior).
type AdjustResult struct {
	Record entity.StockRecord
	Delta  int64
	Entry  *entity.LedgerEntry
}

// InboundItem línea de recepción. UnitCost opcional recalcula el costo promedio.
type InboundItem struct {
	VariantID   int64
	WarehouseID int64
	Quantity    int64
	Notes       string
	UnitCost    *decimal.Decimal
}

// InboundInput lote de recepción con referencia (p. ej. número de orden de compra).
type InboundInput struct {
	Items     []InboundItem
	Reference string
	Notes     string
	Actor     string
}

// InboundLineResult resultado por línea, en el mismo orden de entrada.
type InboundLineResult struct {
	VariantID   int64
	WarehouseID int64
	Quantity    int64
	OnHand      int64
	Reserved    int64
	EntryID     uuid.UUID
}

// MovementInput reserva, liberación o despacho de un par variante+bodega.
type MovementInput struct {
	VariantID   int64
	WarehouseID int64
	Quantity    int64
	Reason      string // vacío = motivo por defecto de la operación
	Reference   string
	Notes       string
	Actor       string
}

// MovementResult resultado de un movimiento de una línea.
// Con OK=false, Shortage identifica el artículo y lo que había.
type MovementResult struct {
	OK       bool
	Shortage *Shortage
}

// OrderLine línea de pedido.
type OrderLine struct {
	VariantID   int64
	WarehouseID int64
	Quantity    int64
}

// OrderInput pedido completo; todas las líneas se aplican o ninguna.
type OrderInput struct {
	Lines     []OrderLine
	Reference string
	Notes     string
	Actor     string
}

// TransferInput traslado entre bodegas.
type TransferInput struct {
	VariantID       int64
	FromWarehouseID int64
	ToWarehouseID   int64
	Quantity        int64
	Reference       string
	Notes           string
	Actor           string
}

// TransferResult OK=false si el origen no tenía disponible suficiente (sin cambios).
type TransferResult struct {
	OK            bool
	From          entity.StockRecord
	To            entity.StockRecord
	TransactionID uuid.UUID
}

// WithinTx abre una unidad de trabajo y expone las operaciones del libro atadas a ella.
// Si fn devuelve error no se confirma nada de lo hecho dentro.
func (uc *StockLedgerUseCase) WithinTx(ctx context.Context, fn func(tx *Tx) error) error {
	return uc.txRunner.Run(ctx, func(uow UnitOfWork) error {
		return fn(&Tx{uc: uc, uow: uow, id: uuid.New(), now: uc.now()})
	})
}

// Adjust aplica una corrección manual (suma, resta truncada en cero o valor fijo).
func (uc *StockLedgerUseCase) Adjust(ctx context.Context, in AdjustInput) (*AdjustResult, error) {
	start := time.Now()
	var res *AdjustResult
	err := uc.WithinTx(ctx, func(tx *Tx) error {
		var err error
		res, err = tx.Adjust(ctx, in)
		return err
	})
	ev := uc.finish(OpAdjust, start, err == nil, err).
		Int64("variant_id", in.VariantID).
		Int64("warehouse_id", in.WarehouseID).
		Str("type", in.Type).
		Int64("quantity", in.Quantity)
	if res != nil {
		ev = ev.Int64("delta", res.Delta).Int64("on_hand", res.Record.OnHand)
	}
	ev.Msg("ajuste de inventario")
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Inbound registra un lote de recepción en una sola transacción. Lote vacío no toca nada.
func (uc *StockLedgerUseCase) Inbound(ctx context.Context, in InboundInput) ([]InboundLineResult, error) {
	if len(in.Items) == 0 {
		return []InboundLineResult{}, nil
	}
	start := time.Now()
	var res []InboundLineResult
	err := uc.WithinTx(ctx, func(tx *Tx) error {
		var err error
		res, err = tx.Inbound(ctx, in)
		return err
	})
	uc.finish(OpInbound, start, err == nil, err).
		Int("lines", len(in.Items)).
		Str("reference", in.Reference).
		Msg("recepción de mercancía")
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Reserve compromete unidades disponibles. false = disponible insuficiente, sin cambios.
func (uc *StockLedgerUseCase) Reserve(ctx context.Context, in MovementInput) (bool, error) {
	res, err := uc.ReserveDetailed(ctx, in)
	return res.OK, err
}

// Release devuelve unidades reservadas. false = reservado insuficiente, sin cambios.
func (uc *StockLedgerUseCase) Release(ctx context.Context, in MovementInput) (bool, error) {
	res, err := uc.ReleaseDetailed(ctx, in)
	return res.OK, err
}

// Fulfill despacha unidades reservadas: salen del reservado y del físico a la vez.
func (uc *StockLedgerUseCase) Fulfill(ctx context.Context, in MovementInput) (bool, error) {
	res, err := uc.FulfillDetailed(ctx, in)
	return res.OK, err
}

// ReserveDetailed como Reserve, pero un rechazo trae la línea faltante.
func (uc *StockLedgerUseCase) ReserveDetailed(ctx context.Context, in MovementInput) (MovementResult, error) {
	return uc.runMovement(ctx, OpReserve, reserveOp, in)
}

// ReleaseDetailed como Release, con el detalle del rechazo.
func (uc *StockLedgerUseCase) ReleaseDetailed(ctx context.Context, in MovementInput) (MovementResult, error) {
	return uc.runMovement(ctx, OpRelease, releaseOp, in)
}

// FulfillDetailed como Fulfill, con el detalle del rechazo.
func (uc *StockLedgerUseCase) FulfillDetailed(ctx context.Context, in MovementInput) (MovementResult, error) {
	return uc.runMovement(ctx, OpFulfill, fulfillOp, in)
}

func (uc *StockLedgerUseCase) runMovement(ctx context.Context, name string, op lineOp, in MovementInput) (MovementResult, error) {
	start := time.Now()
	var res MovementResult
	err := uc.WithinTx(ctx, func(tx *Tx) error {
		var err error
		res, err = tx.movement(ctx, op, in)
		if err == nil && !res.OK {
			return errRejected
		}
		return err
	})
	if errors.Is(err, errRejected) {
		err = nil
	}
	uc.finish(name, start, res.OK, err).
		Int64("variant_id", in.VariantID).
		Int64("warehouse_id", in.WarehouseID).
		Int64("quantity", in.Quantity).
		Str("reference", in.Reference).
		Msg("movimiento de stock")
	if err != nil {
		return MovementResult{}, err
	}
	return res, nil
}

// Transfer mueve unidades físicas entre bodegas. Se aplica completo o no se aplica.
func (uc *StockLedgerUseCase) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	start := time.Now()
	var res *TransferResult
	err := uc.WithinTx(ctx, func(tx *Tx) error {
		var err error
		res, err = tx.Transfer(ctx, in)
		if err == nil && !res.OK {
			return errRejected
		}
		return err
	})
	if errors.Is(err, errRejected) {
		err = nil
	}
	uc.finish(OpTransfer, start, err == nil && res != nil && res.OK, err).
		Int64("variant_id", in.VariantID).
		Int64("from_warehouse_id", in.FromWarehouseID).
		Int64("to_warehouse_id", in.ToWarehouseID).
		Int64("quantity", in.Quantity).
		Msg("traslado entre bodegas")
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ReserveOrder reserva todas las líneas o ninguna.
// Si falta stock devuelve *InsufficientStockError con todas las líneas afectadas.
func (uc *StockLedgerUseCase) ReserveOrder(ctx context.Context, in OrderInput) error {
	return uc.runOrder(ctx, OpReserveOrder, in, (*Tx).ReserveOrder)
}

// ReleaseOrder libera todas las líneas de un pedido cancelado.
func (uc *StockLedgerUseCase) ReleaseOrder(ctx context.Context, in OrderInput) error {
	return uc.runOrder(ctx, OpReleaseOrder, in, (*Tx).ReleaseOrder)
}

// FulfillOrder despacha todas las líneas de un pedido.
func (uc *StockLedgerUseCase) FulfillOrder(ctx context.Context, in OrderInput) error {
	return uc.runOrder(ctx, OpFulfillOrder, in, (*Tx).FulfillOrder)
}

func (uc *StockLedgerUseCase) runOrder(
	ctx context.Context,
	op string,
	in OrderInput,
	fn func(*Tx, context.Context, OrderInput) error,
) error {
	start := time.Now()
	err := uc.WithinTx(ctx, func(tx *Tx) error {
		return fn(tx, ctx, in)
	})
	ev := uc.finish(op, start, err == nil, err).
		Int("lines", len(in.Lines)).
		Str("reference", in.Reference)
	var short *InsufficientStockError
	if errors.As(err, &short) {
		ev = ev.Int("short_lines", len(short.Lines))
	}
	ev.Msg("pedido")
	return err
}

// SetReorderLevel fija el umbral de stock bajo del par. No genera entrada en el libro.
func (uc *StockLedgerUseCase) SetReorderLevel(ctx context.Context, variantID, warehouseID, level int64) (*entity.StockRecord, error) {
	start := time.Now()
	var rec *entity.StockRecord
	err := uc.WithinTx(ctx, func(tx *Tx) error {
		var err error
		rec, err = tx.SetReorderLevel(ctx, variantID, warehouseID, level)
		return err
	})
	uc.finish(OpReorderLevel, start, err == nil, err).
		Int64("variant_id", variantID).
		Int64("warehouse_id", warehouseID).
		Int64("reorder_level", level).
		Msg("umbral de reorden")
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// finish registra la métrica y devuelve el evento de log con el nivel según el resultado.
func (uc *StockLedgerUseCase) finish(op string, start time.Time, ok bool, err error) *zerolog.Event {
	var (
		outcome string
		ev      *zerolog.Event
	)
	switch {
	case err == nil && ok:
		outcome, ev = metrics.OutcomeOK, uc.log.Info()
	case err == nil, isShortage(err):
		outcome, ev = metrics.OutcomeRejected, uc.log.Warn().AnErr("reason", err)
	case isCallerError(err):
		outcome, ev = metrics.OutcomeError, uc.log.Warn().Err(err)
	default:
		outcome, ev = metrics.OutcomeError, uc.log.Error().Err(err)
	}
	d := time.Since(start)
	uc.metrics.ObserveOperation(op, outcome, d)
	return ev.Str("operation", op).Str("outcome", outcome).Dur("duration", d)
}

func isShortage(err error) bool {
	return errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrInsufficientReserved)
}

func isCallerError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrInvalidAdjustmentType) ||
		errors.Is(err, domain.ErrBelowReserved)
}
