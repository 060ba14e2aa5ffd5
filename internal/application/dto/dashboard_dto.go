package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockSummaryDTO respuesta de GET /api/dashboard/stock-summary.
type StockSummaryDTO struct {
	WarehouseID    *int64          `json:"warehouse_id,omitempty"` // nil = todas las bodegas
	Records        int64           `json:"records"`
	TotalOnHand    int64           `json:"total_on_hand"`
	TotalReserved  int64           `json:"total_reserved"`
	TotalAvailable int64           `json:"total_available"`
	LowStockCount  int64           `json:"low_stock_count"` // on_hand <= reorder_level
	StockValue     decimal.Decimal `json:"stock_value"`     // on_hand * costo promedio
	LowStockTop    []LowStockDTO   `json:"low_stock_top"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// LowStockDTO fila del widget de stock bajo.
type LowStockDTO struct {
	VariantID     int64  `json:"variant_id"`
	WarehouseID   int64  `json:"warehouse_id"`
	SKU           string `json:"sku"`
	ProductName   string `json:"product_name"`
	WarehouseName string `json:"warehouse_name"`
	OnHand        int64  `json:"on_hand"`
	Reserved      int64  `json:"reserved"`
	ReorderLevel  int64  `json:"reorder_level"`
}
