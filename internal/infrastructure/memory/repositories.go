package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var (
	_ repository.StockRecordRepository = (*StockRepo)(nil)
	_ repository.LedgerRepository      = (*LedgerRepo)(nil)
	_ repository.VariantRepository     = (*VariantRepo)(nil)
	_ repository.WarehouseRepository   = (*WarehouseRepo)(nil)
	_ repository.AnalyticsRepository   = (*AnalyticsRepo)(nil)
)

var errNeedsTx = errors.New("memory: operación de escritura fuera de transacción")

// StockRepo lecturas sobre saldos confirmados. Las escrituras van por TxRunner.
type StockRepo struct {
	s *Store
}

func (r *StockRepo) Get(_ context.Context, variantID, warehouseID int64) (*entity.StockRecord, error) {
	return r.s.committedStock(key{variantID, warehouseID}), nil
}

func (r *StockRepo) GetForUpdate(context.Context, int64, int64) (*entity.StockRecord, error) {
	return nil, errNeedsTx
}

func (r *StockRepo) Save(context.Context, *entity.StockRecord) error {
	return errNeedsTx
}

func (r *StockRepo) ListByVariant(_ context.Context, variantID int64) ([]*entity.StockRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.StockRecord{}
	for k, rec := range r.s.stock {
		if k.variantID == variantID {
			out = append(out, rec.Clone())
		}
	}
	sortRecords(out)
	return out, nil
}

func (r *StockRepo) SumAvailable(_ context.Context, variantID int64, warehouseID *int64) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var total int64
	for k, rec := range r.s.stock {
		if k.variantID != variantID {
			continue
		}
		if warehouseID != nil && k.warehouseID != *warehouseID {
			continue
		}
		total += rec.Available()
	}
	return total, nil
}

// LedgerRepo libro confirmado (solo inserción).
type LedgerRepo struct {
	s *Store
}

// Append agrega entradas directamente como confirmadas.
func (r *LedgerRepo) Append(_ context.Context, entries ...*entity.LedgerEntry) error {
	r.s.apply(nil, entries)
	return nil
}

func (r *LedgerRepo) List(_ context.Context, f repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.LedgerEntry{}
	// recorrido inverso: más recientes primero
	for i := len(r.s.ledger) - 1; i >= 0; i-- {
		e := r.s.ledger[i]
		if !matches(e, f) {
			continue
		}
		c := *e
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*entity.LedgerEntry{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func matches(e *entity.LedgerEntry, f repository.LedgerFilter) bool {
	switch {
	case f.VariantID != nil && e.VariantID != *f.VariantID:
		return false
	case f.WarehouseID != nil && e.WarehouseID != *f.WarehouseID:
		return false
	case f.Type != "" && e.Type != f.Type:
		return false
	case f.TransactionID != nil && e.TransactionID != *f.TransactionID:
		return false
	case f.From != nil && e.CreatedAt.Before(*f.From):
		return false
	case f.To != nil && e.CreatedAt.After(*f.To):
		return false
	}
	return true
}

// VariantRepo catálogo de variantes.
type VariantRepo struct {
	s *Store
}

func (r *VariantRepo) GetByID(_ context.Context, id int64) (*entity.ProductVariant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if v, ok := r.s.variants[id]; ok {
		c := *v
		return &c, nil
	}
	return nil, nil
}

func (r *VariantRepo) GetByIDs(_ context.Context, ids []int64) (map[int64]*entity.ProductVariant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[int64]*entity.ProductVariant, len(ids))
	for _, id := range ids {
		if v, ok := r.s.variants[id]; ok {
			c := *v
			out[id] = &c
		}
	}
	return out, nil
}

// WarehouseRepo directorio de bodegas.
type WarehouseRepo struct {
	s *Store
}

func (r *WarehouseRepo) GetByID(_ context.Context, id int64) (*entity.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if w, ok := r.s.warehouses[id]; ok {
		c := *w
		return &c, nil
	}
	return nil, nil
}

func (r *WarehouseRepo) List(_ context.Context, onlyActive bool) ([]*entity.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Warehouse, 0, len(r.s.warehouses))
	for _, w := range r.s.warehouses {
		if onlyActive && !w.IsActive {
			continue
		}
		c := *w
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AnalyticsRepo agregados sobre los saldos confirmados.
type AnalyticsRepo struct {
	s *Store
}

func (r *AnalyticsRepo) each(warehouseID *int64, fn func(*entity.StockRecord)) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for k, rec := range r.s.stock {
		if warehouseID == nil || k.warehouseID == *warehouseID {
			fn(rec)
		}
	}
}

func (r *AnalyticsRepo) GetStockTotals(_ context.Context, warehouseID *int64) (repository.StockTotals, error) {
	var t repository.StockTotals
	r.each(warehouseID, func(rec *entity.StockRecord) {
		t.Records++
		t.OnHand += rec.OnHand
		t.Reserved += rec.Reserved
	})
	return t, nil
}

func (r *AnalyticsRepo) CountLowStock(_ context.Context, warehouseID *int64) (int64, error) {
	var n int64
	r.each(warehouseID, func(rec *entity.StockRecord) {
		if rec.IsLowStock() {
			n++
		}
	})
	return n, nil
}

func (r *AnalyticsRepo) GetStockValue(_ context.Context, warehouseID *int64) (decimal.Decimal, error) {
	total := decimal.Zero
	r.each(warehouseID, func(rec *entity.StockRecord) {
		total = total.Add(rec.AverageCost.Mul(decimal.NewFromInt(rec.OnHand)))
	})
	return total, nil
}

func (r *AnalyticsRepo) ListLowStock(_ context.Context, warehouseID *int64, limit int) ([]repository.LowStockItem, error) {
	var low []*entity.StockRecord
	r.each(warehouseID, func(rec *entity.StockRecord) {
		if rec.IsLowStock() {
			low = append(low, rec.Clone())
		}
	})
	sort.Slice(low, func(i, j int) bool {
		di, dj := low[i].ReorderLevel-low[i].OnHand, low[j].ReorderLevel-low[j].OnHand
		if di != dj {
			return di > dj
		}
		if low[i].VariantID != low[j].VariantID {
			return low[i].VariantID < low[j].VariantID
		}
		return low[i].WarehouseID < low[j].WarehouseID
	})
	if limit > 0 && len(low) > limit {
		low = low[:limit]
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]repository.LowStockItem, 0, len(low))
	for _, rec := range low {
		item := repository.LowStockItem{
			VariantID:    rec.VariantID,
			WarehouseID:  rec.WarehouseID,
			OnHand:       rec.OnHand,
			Reserved:     rec.Reserved,
			ReorderLevel: rec.ReorderLevel,
			AverageCost:  rec.AverageCost,
		}
		if v, ok := r.s.variants[rec.VariantID]; ok {
			item.SKU = v.SKU
			item.ProductName = v.DisplayName()
		}
		if w, ok := r.s.warehouses[rec.WarehouseID]; ok {
			item.WarehouseName = w.Name
		}
		out = append(out, item)
	}
	return out, nil
}
