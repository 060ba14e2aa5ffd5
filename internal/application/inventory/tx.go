package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/warehouse-ledger/internal/domain/inventory"
)

// Motivos por defecto de las entradas del libro.
const (
	reasonInbound  = "Recepción de mercancía"
	reasonReserve  = "Reserva de pedido"
	reasonRelease  = "Liberación de reserva"
	reasonFulfill  = "Despacho de pedido"
	reasonTransfer = "Traslado entre bodegas"
)

// Tx operaciones del libro atadas a una unidad de trabajo abierta con WithinTx.
// Todas las entradas escritas comparten el mismo TransactionID.
type Tx struct {
	uc  *StockLedgerUseCase
	uow UnitOfWork
	id  uuid.UUID
	now time.Time
}

// ID identificador de transacción de las entradas escritas.
func (t *Tx) ID() uuid.UUID { return t.id }

type pairKey struct {
	variantID   int64
	warehouseID int64
}

type entryMeta struct {
	reason    string
	notes     string
	reference string
	actor     string
}

// lineOp describe reserva, liberación o despacho sobre un registro bloqueado.
type lineOp struct {
	entryType string
	reason    string
	cause     error
	capacity  func(rec *entity.StockRecord) int64
	apply     func(rec *entity.StockRecord, q int64) int64 // devuelve quantity_change
}

var (
	reserveOp = lineOp{
		entryType: entity.LedgerTypeReserved,
		reason:    reasonReserve,
		cause:     domain.ErrInsufficientStock,
		capacity:  func(r *entity.StockRecord) int64 { return r.Available() },
		apply: func(r *entity.StockRecord, q int64) int64 {
			r.Reserved += q
			return -q
		},
	}
	releaseOp = lineOp{
		entryType: entity.LedgerTypeReleased,
		reason:    reasonRelease,
		cause:     domain.ErrInsufficientReserved,
		capacity:  func(r *entity.StockRecord) int64 { return r.Reserved },
		apply: func(r *entity.StockRecord, q int64) int64 {
			r.Reserved -= q
			return q
		},
	}
	fulfillOp = lineOp{
		entryType: entity.LedgerTypeOutbound,
		reason:    reasonFulfill,
		cause:     domain.ErrInsufficientReserved,
		capacity:  func(r *entity.StockRecord) int64 { return min(r.Reserved, r.OnHand) },
		apply: func(r *entity.StockRecord, q int64) int64 {
			r.Reserved -= q
			r.OnHand -= q
			return -q
		},
	}
)

// Adjust corrección manual. No toca el reservado; si el nuevo saldo quedara por debajo
// de lo reservado devuelve domain.ErrBelowReserved.
func (t *Tx) Adjust(ctx context.Context, in AdjustInput) (*AdjustResult, error) {
	typ, err := domaininv.ParseAdjustmentType(in.Type)
	if err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: el motivo del ajuste es obligatorio", domain.ErrInvalidInput)
	}
	if in.Quantity < 0 {
		return nil, fmt.Errorf("%w: cantidad negativa", domain.ErrInvalidInput)
	}
	if _, err := t.uc.checkRefs(ctx, []pairKey{{in.VariantID, in.WarehouseID}}); err != nil {
		return nil, err
	}

	rec, err := t.uow.Stock().GetForUpdate(ctx, in.VariantID, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	newOnHand, err := domaininv.ApplyAdjustment(rec.OnHand, typ, in.Quantity)
	if err != nil {
		return nil, err
	}
	if newOnHand < rec.Reserved {
		return nil, fmt.Errorf("%w: reservado %d, nuevo saldo %d", domain.ErrBelowReserved, rec.Reserved, newOnHand)
	}
	delta := newOnHand - rec.OnHand
	rec.OnHand = newOnHand

	entry, err := t.write(ctx, rec, entity.LedgerTypeAdjustment, delta, entryMeta{
		reason: reason,
		notes:  in.Notes,
		actor:  in.Actor,
	})
	if err != nil {
		return nil, err
	}
	return &AdjustResult{Record: *rec, Delta: delta, Entry: entry}, nil
}

// Inbound suma cada línea al físico y escribe una entrada inbound por línea.
func (t *Tx) Inbound(ctx context.Context, in InboundInput) ([]InboundLineResult, error) {
	if len(in.Items) == 0 {
		return []InboundLineResult{}, nil
	}
	keys := make([]pairKey, 0, len(in.Items))
	for i, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: línea %d: la cantidad debe ser mayor que cero", domain.ErrInvalidInput, i+1)
		}
		if it.UnitCost != nil && it.UnitCost.IsNegative() {
			return nil, fmt.Errorf("%w: línea %d: costo unitario negativo", domain.ErrInvalidInput, i+1)
		}
		keys = append(keys, pairKey{it.VariantID, it.WarehouseID})
	}
	if _, err := t.uc.checkRefs(ctx, keys); err != nil {
		return nil, err
	}
	recs, err := t.lockAll(ctx, keys)
	if err != nil {
		return nil, err
	}

	results := make([]InboundLineResult, 0, len(in.Items))
	for _, it := range in.Items {
		rec := recs[pairKey{it.VariantID, it.WarehouseID}]
		if it.UnitCost != nil {
			rec.AverageCost = domaininv.WeightedAverageCost(rec.OnHand, rec.AverageCost, it.Quantity, *it.UnitCost)
		}
		rec.OnHand += it.Quantity

		notes := it.Notes
		if notes == "" {
			notes = in.Notes
		}
		entry, err := t.write(ctx, rec, entity.LedgerTypeInbound, it.Quantity, entryMeta{
			reason:    reasonInbound,
			notes:     notes,
			reference: in.Reference,
			actor:     in.Actor,
		})
		if err != nil {
			return nil, err
		}
		results = append(results, InboundLineResult{
			VariantID:   it.VariantID,
			WarehouseID: it.WarehouseID,
			Quantity:    it.Quantity,
			OnHand:      rec.OnHand,
			Reserved:    rec.Reserved,
			EntryID:     entry.ID,
		})
	}
	return results, nil
}

// Reserve false si available < quantity.
func (t *Tx) Reserve(ctx context.Context, in MovementInput) (bool, error) {
	res, err := t.movement(ctx, reserveOp, in)
	return res.OK, err
}

// Release false si reserved < quantity.
func (t *Tx) Release(ctx context.Context, in MovementInput) (bool, error) {
	res, err := t.movement(ctx, releaseOp, in)
	return res.OK, err
}

// Fulfill false si reserved < quantity u on_hand < quantity.
func (t *Tx) Fulfill(ctx context.Context, in MovementInput) (bool, error) {
	res, err := t.movement(ctx, fulfillOp, in)
	return res.OK, err
}

func (t *Tx) movement(ctx context.Context, op lineOp, in MovementInput) (MovementResult, error) {
	lines := []OrderLine{{VariantID: in.VariantID, WarehouseID: in.WarehouseID, Quantity: in.Quantity}}
	meta := entryMeta{reason: in.Reason, notes: in.Notes, reference: in.Reference, actor: in.Actor}
	short, err := t.applyLines(ctx, op, lines, meta)
	if err != nil {
		return MovementResult{}, err
	}
	if short != nil {
		return MovementResult{Shortage: &short.Lines[0]}, nil
	}
	return MovementResult{OK: true}, nil
}

// ReserveOrder reserva todas las líneas o devuelve *InsufficientStockError sin aplicar ninguna.
func (t *Tx) ReserveOrder(ctx context.Context, in OrderInput) error {
	return t.order(ctx, reserveOp, in)
}

// ReleaseOrder libera todas las líneas o ninguna.
func (t *Tx) ReleaseOrder(ctx context.Context, in OrderInput) error {
	return t.order(ctx, releaseOp, in)
}

// FulfillOrder despacha todas las líneas o ninguna.
func (t *Tx) FulfillOrder(ctx context.Context, in OrderInput) error {
	return t.order(ctx, fulfillOp, in)
}

func (t *Tx) order(ctx context.Context, op lineOp, in OrderInput) error {
	if len(in.Lines) == 0 {
		return fmt.Errorf("%w: el pedido no tiene líneas", domain.ErrInvalidInput)
	}
	short, err := t.applyLines(ctx, op, in.Lines, entryMeta{notes: in.Notes, reference: in.Reference, actor: in.Actor})
	if err != nil {
		return err
	}
	if short != nil {
		return short
	}
	return nil
}

// applyLines valida, bloquea en orden, evalúa todas las líneas (sumando las del mismo par)
// y solo si todas caben aplica y escribe una entrada por línea.
func (t *Tx) applyLines(ctx context.Context, op lineOp, lines []OrderLine, meta entryMeta) (*InsufficientStockError, error) {
	keys := make([]pairKey, 0, len(lines))
	for i, l := range lines {
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: línea %d: la cantidad debe ser mayor que cero", domain.ErrInvalidInput, i+1)
		}
		keys = append(keys, pairKey{l.VariantID, l.WarehouseID})
	}
	variants, err := t.uc.checkRefs(ctx, keys)
	if err != nil {
		return nil, err
	}
	recs, err := t.lockAll(ctx, keys)
	if err != nil {
		return nil, err
	}

	need := make(map[pairKey]int64, len(keys))
	order := make([]pairKey, 0, len(keys))
	for _, l := range lines {
		k := pairKey{l.VariantID, l.WarehouseID}
		if _, ok := need[k]; !ok {
			order = append(order, k)
		}
		need[k] += l.Quantity
	}
	var shortages []Shortage
	for _, k := range order {
		rec := recs[k]
		if capacity := op.capacity(rec); capacity < need[k] {
			s := Shortage{VariantID: k.variantID, WarehouseID: k.warehouseID, Requested: need[k], Available: capacity}
			if v := variants[k.variantID]; v != nil {
				s.SKU, s.ProductName = v.SKU, v.DisplayName()
			}
			shortages = append(shortages, s)
		}
	}
	if len(shortages) > 0 {
		return newShortageError(op.cause, shortages), nil
	}

	if meta.reason == "" {
		meta.reason = op.reason
	}
	for _, l := range lines {
		rec := recs[pairKey{l.VariantID, l.WarehouseID}]
		change := op.apply(rec, l.Quantity)
		if _, err := t.write(ctx, rec, op.entryType, change, meta); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// Transfer descuenta del origen y suma al destino (creándolo si no existe).
// El origen debe tener disponible (no solo físico) suficiente para no romper lo reservado.
func (t *Tx) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if in.FromWarehouseID == in.ToWarehouseID {
		return nil, fmt.Errorf("%w: origen y destino son la misma bodega", domain.ErrInvalidInput)
	}
	from := pairKey{in.VariantID, in.FromWarehouseID}
	to := pairKey{in.VariantID, in.ToWarehouseID}
	if _, err := t.uc.checkRefs(ctx, []pairKey{from, to}); err != nil {
		return nil, err
	}
	recs, err := t.lockAll(ctx, []pairKey{from, to})
	if err != nil {
		return nil, err
	}
	src, dst := recs[from], recs[to]
	if src.Available() < in.Quantity {
		return &TransferResult{OK: false, From: *src, To: *dst, TransactionID: t.id}, nil
	}

	dst.AverageCost = domaininv.WeightedAverageCost(dst.OnHand, dst.AverageCost, in.Quantity, src.AverageCost)
	src.OnHand -= in.Quantity
	dst.OnHand += in.Quantity

	meta := entryMeta{notes: in.Notes, reference: in.Reference, actor: in.Actor}
	meta.reason = fmt.Sprintf("%s: hacia bodega %d", reasonTransfer, in.ToWarehouseID)
	if _, err := t.write(ctx, src, entity.LedgerTypeOutbound, -in.Quantity, meta); err != nil {
		return nil, err
	}
	meta.reason = fmt.Sprintf("%s: desde bodega %d", reasonTransfer, in.FromWarehouseID)
	if _, err := t.write(ctx, dst, entity.LedgerTypeInbound, in.Quantity, meta); err != nil {
		return nil, err
	}
	return &TransferResult{OK: true, From: *src, To: *dst, TransactionID: t.id}, nil
}

// SetReorderLevel actualiza el umbral; el saldo no cambia y no se escribe entrada.
func (t *Tx) SetReorderLevel(ctx context.Context, variantID, warehouseID, level int64) (*entity.StockRecord, error) {
	if level < 0 {
		return nil, fmt.Errorf("%w: umbral negativo", domain.ErrInvalidInput)
	}
	if _, err := t.uc.checkRefs(ctx, []pairKey{{variantID, warehouseID}}); err != nil {
		return nil, err
	}
	rec, err := t.uow.Stock().GetForUpdate(ctx, variantID, warehouseID)
	if err != nil {
		return nil, err
	}
	rec.ReorderLevel = level
	rec.UpdatedAt = t.now
	if err := t.uow.Stock().Save(ctx, rec); err != nil {
		return nil, err
	}
	out := *rec
	return &out, nil
}

// lockAll bloquea los pares sin repetir y en orden (variante, bodega) para evitar interbloqueos.
func (t *Tx) lockAll(ctx context.Context, keys []pairKey) (map[pairKey]*entity.StockRecord, error) {
	unique := make([]pairKey, 0, len(keys))
	seen := make(map[pairKey]bool, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			unique = append(unique, k)
		}
	}
	sort.Slice(unique, func(i, j int) bool {
		if unique[i].variantID != unique[j].variantID {
			return unique[i].variantID < unique[j].variantID
		}
		return unique[i].warehouseID < unique[j].warehouseID
	})
	out := make(map[pairKey]*entity.StockRecord, len(unique))
	for _, k := range unique {
		rec, err := t.uow.Stock().GetForUpdate(ctx, k.variantID, k.warehouseID)
		if err != nil {
			return nil, err
		}
		out[k] = rec
	}
	return out, nil
}

// write persiste el registro y su entrada, y agenda la invalidación de caché tras el Commit.
func (t *Tx) write(ctx context.Context, rec *entity.StockRecord, typ string, change int64, meta entryMeta) (*entity.LedgerEntry, error) {
	rec.UpdatedAt = t.now
	if err := t.uow.Stock().Save(ctx, rec); err != nil {
		return nil, err
	}
	entry := &entity.LedgerEntry{
		ID:              uuid.New(),
		TransactionID:   t.id,
		VariantID:       rec.VariantID,
		WarehouseID:     rec.WarehouseID,
		Type:            typ,
		QuantityChange:  change,
		QuantityAfter:   rec.OnHand,
		ReservedAfter:   rec.Reserved,
		AvailableAfter:  rec.Available(),
		Reason:          meta.reason,
		Notes:           meta.notes,
		ReferenceNumber: meta.reference,
		Actor:           meta.actor,
		CreatedAt:       t.now,
	}
	if err := t.uow.Ledger().Append(ctx, entry); err != nil {
		return nil, err
	}
	variantID, warehouseID := rec.VariantID, rec.WarehouseID
	t.uow.AfterCommit(func(ctx context.Context) {
		t.uc.invalidate(ctx, variantID, warehouseID)
	})
	return entry, nil
}
