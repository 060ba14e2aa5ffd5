package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción en memoria.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el almacén.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run abre la unidad de trabajo, ejecuta fn y confirma. Si fn devuelve error (o entra en pánico)
// se descartan las escrituras y se liberan los bloqueos.
func (r *TxRunner) Run(ctx context.Context, fn func(uow inventory.UnitOfWork) error) error {
	tx := &memTx{
		s:     r.s,
		held:  make(map[key]bool),
		stock: make(map[key]*entity.StockRecord),
	}
	defer tx.releaseAll()

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	r.s.apply(tx.stock, tx.entries)
	tx.releaseAll()
	for _, hook := range tx.hooks {
		hook(ctx)
	}
	return nil
}

// memTx estado de una transacción: filas bloqueadas y escrituras pendientes.
type memTx struct {
	s       *Store
	held    map[key]bool
	order   []key
	stock   map[key]*entity.StockRecord
	entries []*entity.LedgerEntry
	hooks   []func(ctx context.Context)
}

func (t *memTx) Stock() repository.StockRecordRepository { return &txStockRepo{t: t} }

func (t *memTx) Ledger() repository.LedgerRepository { return &txLedgerRepo{t: t} }

func (t *memTx) AfterCommit(fn func(ctx context.Context)) {
	t.hooks = append(t.hooks, fn)
}

func (t *memTx) lock(ctx context.Context, k key) error {
	if t.held[k] {
		return nil
	}
	if err := t.s.acquire(ctx, k); err != nil {
		return err
	}
	t.held[k] = true
	t.order = append(t.order, k)
	return nil
}

func (t *memTx) releaseAll() {
	for _, k := range t.order {
		t.s.release(k)
	}
	t.order = nil
	t.held = map[key]bool{}
}

// view lectura dentro de la transacción: primero lo escrito por ella, luego lo confirmado.
func (t *memTx) view(k key) *entity.StockRecord {
	if rec, ok := t.stock[k]; ok {
		return rec.Clone()
	}
	return t.s.committedStock(k)
}

type txStockRepo struct {
	t *memTx
}

func (r *txStockRepo) Get(_ context.Context, variantID, warehouseID int64) (*entity.StockRecord, error) {
	return r.t.view(key{variantID, warehouseID}), nil
}

func (r *txStockRepo) GetForUpdate(ctx context.Context, variantID, warehouseID int64) (*entity.StockRecord, error) {
	k := key{variantID, warehouseID}
	if err := r.t.lock(ctx, k); err != nil {
		return nil, err
	}
	if rec := r.t.view(k); rec != nil {
		return rec, nil
	}
	rec := entity.NewStockRecord(variantID, warehouseID)
	rec.CreatedAt = r.t.s.now()
	rec.UpdatedAt = rec.CreatedAt
	r.t.stock[k] = rec.Clone()
	return rec, nil
}

func (r *txStockRepo) Save(_ context.Context, rec *entity.StockRecord) error {
	k := key{rec.VariantID, rec.WarehouseID}
	if !r.t.held[k] {
		return fmt.Errorf("save stock (%d,%d): fila no bloqueada en la transacción", k.variantID, k.warehouseID)
	}
	if rec.OnHand < 0 || rec.Reserved < 0 || rec.Reserved > rec.OnHand {
		return fmt.Errorf("save stock (%d,%d): viola 0 <= reserved <= on_hand", k.variantID, k.warehouseID)
	}
	r.t.stock[k] = rec.Clone()
	return nil
}

func (r *txStockRepo) ListByVariant(ctx context.Context, variantID int64) ([]*entity.StockRecord, error) {
	committed, err := r.t.s.Stock().ListByVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	seen := make(map[key]bool, len(committed))
	out := make([]*entity.StockRecord, 0, len(committed))
	for _, rec := range committed {
		k := key{rec.VariantID, rec.WarehouseID}
		seen[k] = true
		out = append(out, r.t.view(k))
	}
	for k, rec := range r.t.stock {
		if k.variantID == variantID && !seen[k] {
			out = append(out, rec.Clone())
		}
	}
	sortRecords(out)
	return out, nil
}

func (r *txStockRepo) SumAvailable(ctx context.Context, variantID int64, warehouseID *int64) (int64, error) {
	recs, err := r.ListByVariant(ctx, variantID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, rec := range recs {
		if warehouseID == nil || rec.WarehouseID == *warehouseID {
			total += rec.Available()
		}
	}
	return total, nil
}

type txLedgerRepo struct {
	t *memTx
}

func (r *txLedgerRepo) Append(_ context.Context, entries ...*entity.LedgerEntry) error {
	for _, e := range entries {
		c := *e
		r.t.entries = append(r.t.entries, &c)
	}
	return nil
}

// List solo ve entradas confirmadas.
func (r *txLedgerRepo) List(ctx context.Context, filter repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	return r.t.s.Ledger().List(ctx, filter)
}
