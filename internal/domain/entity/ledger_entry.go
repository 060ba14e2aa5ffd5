package entity

import (
	"time"

	"github.com/google/uuid"
)

// Tipos de entrada del libro de stock.
const (
	LedgerTypeAdjustment = "adjustment" // corrección manual
	LedgerTypeInbound    = "inbound"    // recepción de mercancía
	LedgerTypeOutbound   = "outbound"   // despacho (sale de reservado y de físico)
	LedgerTypeReserved   = "reserved"   // reserva para pedido
	LedgerTypeReleased   = "released"   // liberación de reserva
)

// LedgerEntry registro inmutable de un cambio de saldo.
// QuantityAfter siempre es el OnHand resultante; ReservedAfter y AvailableAfter completan la foto.
type LedgerEntry struct {
	ID              uuid.UUID
	TransactionID   uuid.UUID // agrupa las entradas escritas por una misma llamada
	VariantID       int64
	WarehouseID     int64
	Type            string
	QuantityChange  int64
	QuantityAfter   int64
	ReservedAfter   int64
	AvailableAfter  int64
	Reason          string
	Notes           string
	ReferenceNumber string
	Actor           string
	CreatedAt       time.Time
}

// IsValidLedgerType valida el tipo de entrada.
func IsValidLedgerType(t string) bool {
	switch t {
	case LedgerTypeAdjustment, LedgerTypeInbound, LedgerTypeOutbound, LedgerTypeReserved, LedgerTypeReleased:
		return true
	}
	return false
}
