package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura sobre stock_records para el dashboard y la reposición.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// GetStockTotals suma saldos. COALESCE devuelve cero si no hay filas.
func (r *AnalyticsRepo) GetStockTotals(ctx context.Context, warehouseID *int64) (repository.StockTotals, error) {
	const query = `
	SELECT
	    COUNT(*)                              AS records,
	    COALESCE(SUM(quantity_on_hand), 0)    AS on_hand,
	    COALESCE(SUM(quantity_reserved), 0)   AS reserved
	FROM stock_records
	WHERE ($1::BIGINT IS NULL OR warehouse_id = $1)`

	var t repository.StockTotals
	if err := r.q.QueryRow(ctx, query, warehouseID).Scan(&t.Records, &t.OnHand, &t.Reserved); err != nil {
		return t, fmt.Errorf("analytics.GetStockTotals: %w", err)
	}
	return t, nil
}

// CountLowStock filas con on_hand <= reorder_level.
func (r *AnalyticsRepo) CountLowStock(ctx context.Context, warehouseID *int64) (int64, error) {
	const query = `
	SELECT COUNT(*)
	FROM stock_records
	WHERE quantity_on_hand <= reorder_level
	  AND ($1::BIGINT IS NULL OR warehouse_id = $1)`

	var n int64
	if err := r.q.QueryRow(ctx, query, warehouseID).Scan(&n); err != nil {
		return 0, fmt.Errorf("analytics.CountLowStock: %w", err)
	}
	return n, nil
}

// GetStockValue valoriza el inventario al costo promedio ponderado.
func (r *AnalyticsRepo) GetStockValue(ctx context.Context, warehouseID *int64) (decimal.Decimal, error) {
	const query = `
	SELECT COALESCE(SUM(quantity_on_hand * average_cost), 0)
	FROM stock_records
	WHERE ($1::BIGINT IS NULL OR warehouse_id = $1)`

	var v decimal.Decimal
	if err := r.q.QueryRow(ctx, query, warehouseID).Scan(&v); err != nil {
		return decimal.Zero, fmt.Errorf("analytics.GetStockValue: %w", err)
	}
	return v, nil
}

// ListLowStock filas bajo umbral con SKU y nombres, mayor déficit primero.
func (r *AnalyticsRepo) ListLowStock(ctx context.Context, warehouseID *int64, limit int) ([]repository.LowStockItem, error) {
	const query = `
	SELECT
	    s.variant_id,
	    s.warehouse_id,
	    v.sku,
	    CASE WHEN v.name = '' THEN v.product_name
	         ELSE v.product_name || ' - ' || v.name END  AS product_name,
	    w.name                                           AS warehouse_name,
	    s.quantity_on_hand,
	    s.quantity_reserved,
	    s.reorder_level,
	    s.average_cost
	FROM stock_records s
	JOIN product_variants v ON v.id = s.variant_id
	JOIN warehouses       w ON w.id = s.warehouse_id
	WHERE s.quantity_on_hand <= s.reorder_level
	  AND ($1::BIGINT IS NULL OR s.warehouse_id = $1)
	ORDER BY (s.reorder_level - s.quantity_on_hand) DESC, s.variant_id, s.warehouse_id
	LIMIT NULLIF($2, 0)`

	rows, err := r.q.Query(ctx, query, warehouseID, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.ListLowStock: %w", err)
	}
	defer rows.Close()

	results := []repository.LowStockItem{}
	for rows.Next() {
		var it repository.LowStockItem
		if err := rows.Scan(
			&it.VariantID,
			&it.WarehouseID,
			&it.SKU,
			&it.ProductName,
			&it.WarehouseName,
			&it.OnHand,
			&it.Reserved,
			&it.ReorderLevel,
			&it.AverageCost,
		); err != nil {
			return nil, fmt.Errorf("analytics.ListLowStock scan: %w", err)
		}
		results = append(results, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics.ListLowStock rows: %w", err)
	}
	return results, nil
}
