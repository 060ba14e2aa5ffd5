package inventory

import (
	"fmt"
	"strings"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
)

// Shortage línea que no pudo atenderse.
// Available es lo disponible para reservar o, en liberación/despacho, lo reservado.
type Shortage struct {
	VariantID   int64
	WarehouseID int64
	SKU         string
	ProductName string
	Requested   int64
	Available   int64
}

// InsufficientStockError lista todas las líneas de un pedido sin stock suficiente.
// errors.Is contra domain.ErrInsufficientStock (reserva) o domain.ErrInsufficientReserved.
type InsufficientStockError struct {
	Lines []Shortage
	cause error
}

func newShortageError(cause error, lines []Shortage) *InsufficientStockError {
	return &InsufficientStockError{Lines: lines, cause: cause}
}

func (e *InsufficientStockError) Error() string {
	label := "disponible"
	if e.cause == domain.ErrInsufficientReserved {
		label = "reservado"
	}
	parts := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		name := l.ProductName
		if name == "" {
			name = fmt.Sprintf("variante %d", l.VariantID)
		}
		parts = append(parts, fmt.Sprintf("%s (bodega %d): solicitado %d, %s %d",
			name, l.WarehouseID, l.Requested, label, l.Available))
	}
	return e.cause.Error() + ": " + strings.Join(parts, "; ")
}

func (e *InsufficientStockError) Unwrap() error { return e.cause }
