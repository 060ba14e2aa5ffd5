package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRecord saldo de una variante en una bodega.
// Clave (VariantID, WarehouseID). Se crea en cero la primera vez que se toca y nunca se elimina.
// Invariante: 0 <= Reserved <= OnHand después de cada operación confirmada.
type StockRecord struct {
	VariantID    int64
	WarehouseID  int64
	OnHand       int64           // unidades físicas en bodega
	Reserved     int64           // unidades comprometidas con pedidos abiertos
	ReorderLevel int64           // umbral de stock bajo (dashboard)
	AverageCost  decimal.Decimal // costo promedio ponderado por unidad
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewStockRecord devuelve un registro vacío para el par indicado.
func NewStockRecord(variantID, warehouseID int64) *StockRecord {
	return &StockRecord{
		VariantID:   variantID,
		WarehouseID: warehouseID,
		AverageCost: decimal.Zero,
	}
}

// Available unidades libres para reservar (OnHand - Reserved).
func (s *StockRecord) Available() int64 {
	return s.OnHand - s.Reserved
}

// IsLowStock indica si el saldo físico está en o por debajo del umbral de reorden.
func (s *StockRecord) IsLowStock() bool {
	return s.OnHand <= s.ReorderLevel
}

// Clone copia el registro (los repositorios en memoria no comparten punteros).
func (s *StockRecord) Clone() *StockRecord {
	c := *s
	return &c
}
