package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// StockTotals sumas crudas de saldos para el dashboard.
type StockTotals struct {
	Records  int64
	OnHand   int64
	Reserved int64
}

// LowStockItem fila en o por debajo de su umbral de reorden.
type LowStockItem struct {
	VariantID     int64
	WarehouseID   int64
	SKU           string
	ProductName   string
	WarehouseName string
	OnHand        int64
	Reserved      int64
	ReorderLevel  int64
	AverageCost   decimal.Decimal
}

// AnalyticsRepository consultas de solo lectura sobre stock_records para reportes.
// warehouseID nil = todas las bodegas.
type AnalyticsRepository interface {
	GetStockTotals(ctx context.Context, warehouseID *int64) (StockTotals, error)
	// CountLowStock cuenta registros con on_hand <= reorder_level.
	CountLowStock(ctx context.Context, warehouseID *int64) (int64, error)
	// GetStockValue suma on_hand * average_cost.
	GetStockValue(ctx context.Context, warehouseID *int64) (decimal.Decimal, error)
	// ListLowStock ordena por mayor déficit (reorder_level - on_hand) primero.
	ListLowStock(ctx context.Context, warehouseID *int64, limit int) ([]LowStockItem, error)
}
