package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para POST /api/inventory/adjustments.
type AdjustStockRequest struct {
	VariantID   int64  `json:"variant_id"`
	WarehouseID int64  `json:"warehouse_id"`
	Type        string `json:"type"` // addition | subtraction | set
	Quantity    int64  `json:"quantity"`
	Reason      string `json:"reason"`
	Notes       string `json:"notes,omitempty"`
}

// InboundItemRequest línea de recepción.
type InboundItemRequest struct {
	VariantID   int64            `json:"variant_id"`
	WarehouseID int64            `json:"warehouse_id"`
	Quantity    int64            `json:"quantity"`
	Notes       string           `json:"notes,omitempty"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
}

// InboundRequest body para POST /api/inventory/inbound.
type InboundRequest struct {
	Items     []InboundItemRequest `json:"items"`
	Reference string               `json:"reference,omitempty"`
	Notes     string               `json:"notes,omitempty"`
}

// StockMovementRequest body para reserve, release y fulfill.
type StockMovementRequest struct {
	VariantID   int64  `json:"variant_id"`
	WarehouseID int64  `json:"warehouse_id"`
	Quantity    int64  `json:"quantity"`
	Reason      string `json:"reason,omitempty"`
	Reference   string `json:"reference,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// OrderLineRequest línea de pedido.
type OrderLineRequest struct {
	VariantID   int64 `json:"variant_id"`
	WarehouseID int64 `json:"warehouse_id"`
	Quantity    int64 `json:"quantity"`
}

// OrderStockRequest body para /api/inventory/orders/{reserve,release,fulfill}.
type OrderStockRequest struct {
	Reference string             `json:"reference"`
	Notes     string             `json:"notes,omitempty"`
	Lines     []OrderLineRequest `json:"lines"`
}

// TransferRequest body para POST /api/inventory/transfer.
type TransferRequest struct {
	VariantID       int64  `json:"variant_id"`
	FromWarehouseID int64  `json:"from_warehouse_id"`
	ToWarehouseID   int64  `json:"to_warehouse_id"`
	Quantity        int64  `json:"quantity"`
	Reference       string `json:"reference,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// ReorderLevelRequest body para PUT /api/inventory/reorder-level.
type ReorderLevelRequest struct {
	VariantID    int64 `json:"variant_id"`
	WarehouseID  int64 `json:"warehouse_id"`
	ReorderLevel int64 `json:"reorder_level"`
}

// StockRecordResponse saldo de un par variante+bodega.
type StockRecordResponse struct {
	VariantID    int64           `json:"variant_id"`
	WarehouseID  int64           `json:"warehouse_id"`
	OnHand       int64           `json:"on_hand"`
	Reserved     int64           `json:"reserved"`
	Available    int64           `json:"available"`
	ReorderLevel int64           `json:"reorder_level"`
	AverageCost  decimal.Decimal `json:"average_cost"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// AdjustStockResponse resultado del ajuste.
type AdjustStockResponse struct {
	Record  StockRecordResponse `json:"record"`
	Delta   int64               `json:"delta"`
	EntryID string              `json:"entry_id"`
}

// InboundLineResponse resultado de una línea de recepción.
type InboundLineResponse struct {
	VariantID   int64  `json:"variant_id"`
	WarehouseID int64  `json:"warehouse_id"`
	Quantity    int64  `json:"quantity"`
	OnHand      int64  `json:"on_hand"`
	Reserved    int64  `json:"reserved"`
	EntryID     string `json:"entry_id"`
}

// InboundResponse confirmación de recepción (una línea por ítem, en orden).
type InboundResponse struct {
	Reference string                `json:"reference,omitempty"`
	Lines     []InboundLineResponse `json:"lines"`
}

// MovementResponse resultado de reserve, release o fulfill. Shortage solo en el rechazo.
type MovementResponse struct {
	Success  bool         `json:"success"`
	Message  string       `json:"message"`
	Shortage *ShortageDTO `json:"shortage,omitempty"`
}

// TransferResponse resultado del traslado.
type TransferResponse struct {
	Success       bool                `json:"success"`
	TransactionID string              `json:"transaction_id"`
	From          StockRecordResponse `json:"from"`
	To            StockRecordResponse `json:"to"`
}

// ShortageDTO línea sin stock suficiente.
type ShortageDTO struct {
	VariantID   int64  `json:"variant_id"`
	WarehouseID int64  `json:"warehouse_id"`
	SKU         string `json:"sku,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	Requested   int64  `json:"requested"`
	Available   int64  `json:"available"`
}

// InsufficientStockResponse error 409 con todas las líneas afectadas.
type InsufficientStockResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Lines   []ShortageDTO `json:"lines"`
}

// AvailabilityResponse respuesta de GET /api/inventory/availability.
type AvailabilityResponse struct {
	VariantID   int64  `json:"variant_id"`
	WarehouseID *int64 `json:"warehouse_id,omitempty"`
	Available   int64  `json:"available"`
	Quantity    *int64 `json:"quantity,omitempty"`
	IsAvailable *bool  `json:"is_available,omitempty"`
}

// LedgerEntryResponse entrada del libro.
type LedgerEntryResponse struct {
	ID              string    `json:"id"`
	TransactionID   string    `json:"transaction_id"`
	VariantID       int64     `json:"variant_id"`
	WarehouseID     int64     `json:"warehouse_id"`
	Type            string    `json:"type"`
	QuantityChange  int64     `json:"quantity_change"`
	QuantityAfter   int64     `json:"quantity_after"`
	ReservedAfter   int64     `json:"reserved_after"`
	AvailableAfter  int64     `json:"available_after"`
	Reason          string    `json:"reason"`
	Notes           string    `json:"notes,omitempty"`
	ReferenceNumber string    `json:"reference_number,omitempty"`
	Actor           string    `json:"actor,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// LedgerListResponse página del historial.
type LedgerListResponse struct {
	Items []LedgerEntryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un par bajo su umbral.
type ReplenishmentSuggestionDTO struct {
	VariantID          int64           `json:"variant_id"`
	WarehouseID        int64           `json:"warehouse_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	WarehouseName      string          `json:"warehouse_name"`
	OnHand             int64           `json:"on_hand"`
	Reserved           int64           `json:"reserved"`
	ReorderLevel       int64           `json:"reorder_level"`
	IdealStock         int64           `json:"ideal_stock"`          // ceil(ReorderLevel * 1.5)
	SuggestedOrderQty  int64           `json:"suggested_order_qty"`  // IdealStock - disponible
	UnitCost           decimal.Decimal `json:"unit_cost"`            // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	Priority           int             `json:"priority"`             // 1 = más urgente
}
