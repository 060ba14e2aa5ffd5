package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
	"github.com/jhoicas/warehouse-ledger/pkg/logger"
)

// InventoryHandler maneja las peticiones HTTP del libro de stock (protegido).
type InventoryHandler struct {
	uc            *inventory.StockLedgerUseCase
	replenishment *inventory.ReplenishmentUseCase
	log           *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.StockLedgerUseCase, replenishment *inventory.ReplenishmentUseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, replenishment: replenishment, log: log}
}

// Availability godoc
// @Summary      Cantidad disponible de una variante
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        variant_id    query  int  true   "Variante"
// @Param        warehouse_id  query  int  false  "Bodega (vacío = todas)"
// @Param        quantity      query  int  false  "Si se envía, responde is_available"
// @Success      200  {object}  dto.AvailabilityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/availability [get]
func (h *InventoryHandler) Availability(c *fiber.Ctx) error {
	variantID, err := optionalInt64(c, "variant_id")
	if err != nil || variantID == nil {
		return badParam(c, "variant_id")
	}
	warehouseID, err := optionalInt64(c, "warehouse_id")
	if err != nil {
		return badParam(c, "warehouse_id")
	}
	quantity, err := optionalInt64(c, "quantity")
	if err != nil {
		return badParam(c, "quantity")
	}

	available, err := h.uc.AvailableQuantity(c.Context(), *variantID, warehouseID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	resp := dto.AvailabilityResponse{VariantID: *variantID, WarehouseID: warehouseID, Available: available}
	if quantity != nil {
		if *quantity < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "quantity no puede ser negativa"})
		}
		ok := available >= *quantity
		resp.Quantity = quantity
		resp.IsAvailable = &ok
	}
	return c.JSON(resp)
}

// StockByVariant godoc
// @Summary      Saldos de una variante por bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        variant_id  path  int  true  "Variante"
// @Success      200  {array}   dto.StockRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/{variant_id} [get]
func (h *InventoryHandler) StockByVariant(c *fiber.Ctx) error {
	variantID, err := c.ParamsInt("variant_id")
	if err != nil {
		return badParam(c, "variant_id")
	}
	records, err := h.uc.StockByVariant(c.Context(), int64(variantID))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.StockRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toStockRecordResponse(*r))
	}
	return c.JSON(out)
}

// Ledger godoc
// @Summary      Historial del libro de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        variant_id      query  int     false  "Variante"
// @Param        warehouse_id    query  int     false  "Bodega"
// @Param        type            query  string  false  "adjustment | inbound | outbound | reserved | released"
// @Param        transaction_id  query  string  false  "Transacción (UUID)"
// @Param        from            query  string  false  "RFC3339"
// @Param        to              query  string  false  "RFC3339"
// @Param        limit           query  int     false  "Máximo 500"
// @Param        offset          query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.LedgerListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/ledger [get]
func (h *InventoryHandler) Ledger(c *fiber.Ctx) error {
	var filter repository.LedgerFilter
	var err error
	if filter.VariantID, err = optionalInt64(c, "variant_id"); err != nil {
		return badParam(c, "variant_id")
	}
	if filter.WarehouseID, err = optionalInt64(c, "warehouse_id"); err != nil {
		return badParam(c, "warehouse_id")
	}
	filter.Type = c.Query("type")
	if raw := c.Query("transaction_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "transaction_id debe ser un UUID"})
		}
		filter.TransactionID = &id
	}
	if filter.From, err = optionalTime(c, "from"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
	}
	if filter.To, err = optionalTime(c, "to"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
	}
	filter.Limit = c.QueryInt("limit", 0)
	filter.Offset = c.QueryInt("offset", 0)

	entries, err := h.uc.History(c.Context(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, toLedgerEntryResponse(e))
	}
	limit, offset := inventory.HistoryPage(filter.Limit, filter.Offset)
	return c.JSON(dto.LedgerListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}})
}

// Reserve godoc
// @Summary      Reservar unidades para un pedido
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "variant_id, warehouse_id, quantity"
// @Success      200  {object}  dto.MovementResponse
// @Failure      409  {object}  dto.MovementResponse
// @Router       /api/inventory/reserve [post]
func (h *InventoryHandler) Reserve(c *fiber.Ctx) error {
	return h.movement(c, h.uc.ReserveDetailed, "unidades reservadas", "stock disponible insuficiente")
}

// Release godoc
// @Summary      Liberar unidades reservadas
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "variant_id, warehouse_id, quantity"
// @Success      200  {object}  dto.MovementResponse
// @Failure      409  {object}  dto.MovementResponse
// @Router       /api/inventory/release [post]
func (h *InventoryHandler) Release(c *fiber.Ctx) error {
	return h.movement(c, h.uc.ReleaseDetailed, "reserva liberada", "cantidad reservada insuficiente")
}

// Fulfill godoc
// @Summary      Despachar unidades reservadas
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "variant_id, warehouse_id, quantity"
// @Success      200  {object}  dto.MovementResponse
// @Failure      409  {object}  dto.MovementResponse
// @Router       /api/inventory/fulfill [post]
func (h *InventoryHandler) Fulfill(c *fiber.Ctx) error {
	return h.movement(c, h.uc.FulfillDetailed, "unidades despachadas", "cantidad reservada insuficiente")
}

type movementFunc func(ctx context.Context, in inventory.MovementInput) (inventory.MovementResult, error)

func (h *InventoryHandler) movement(c *fiber.Ctx, fn movementFunc, okMsg, rejectMsg string) error {
	var in dto.StockMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := fn(c.Context(), inventory.MovementInput{
		VariantID:   in.VariantID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		Reason:      in.Reason,
		Reference:   in.Reference,
		Notes:       in.Notes,
		Actor:       GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	if !res.OK {
		out := dto.MovementResponse{Success: false, Message: rejectMsg}
		if s := res.Shortage; s != nil {
			name := s.SKU
			if name == "" {
				name = fmt.Sprintf("variante %d", s.VariantID)
			}
			out.Message = fmt.Sprintf("%s: %s (bodega %d), solicitado %d, hay %d",
				rejectMsg, name, s.WarehouseID, s.Requested, s.Available)
			short := toShortageDTO(*s)
			out.Shortage = &short
		}
		return c.Status(fiber.StatusConflict).JSON(out)
	}
	return c.JSON(dto.MovementResponse{Success: true, Message: okMsg})
}

// ReserveOrder godoc
// @Summary      Reservar todas las líneas de un pedido
// @Description  Todo o nada. Si falta stock responde 409 con todas las líneas afectadas.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OrderStockRequest  true  "reference, lines"
// @Success      200  {object}  dto.MovementResponse
// @Failure      409  {object}  dto.InsufficientStockResponse
// @Router       /api/inventory/orders/reserve [post]
func (h *InventoryHandler) ReserveOrder(c *fiber.Ctx) error {
	return h.order(c, h.uc.ReserveOrder, "pedido reservado")
}

// ReleaseOrder godoc
// @Summary      Liberar las reservas de un pedido cancelado
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OrderStockRequest  true  "reference, lines"
// @Success      200  {object}  dto.MovementResponse
// @Failure      409  {object}  dto.InsufficientStockResponse
// @Router       /api/inventory/orders/release [post]
func (h *InventoryHandler) ReleaseOrder(c *fiber.Ctx) error {
	return h.order(c, h.uc.ReleaseOrder, "reservas del pedido liberadas")
}

// FulfillOrder godoc
// @Summary      Despachar un pedido reservado
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OrderStockRequest  true  "reference, lines"
// @Success      200  {object}  dto.MovementResponse
// @Failure      409  {object}  dto.InsufficientStockResponse
// @Router       /api/inventory/orders/fulfill [post]
func (h *InventoryHandler) FulfillOrder(c *fiber.Ctx) error {
	return h.order(c, h.uc.FulfillOrder, "pedido despachado")
}

type orderFunc func(ctx context.Context, in inventory.OrderInput) error

func (h *InventoryHandler) order(c *fiber.Ctx, fn orderFunc, okMsg string) error {
	var in dto.OrderStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lines := make([]inventory.OrderLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.OrderLine{VariantID: l.VariantID, WarehouseID: l.WarehouseID, Quantity: l.Quantity})
	}
	err := fn(c.Context(), inventory.OrderInput{
		Lines:     lines,
		Reference: in.Reference,
		Notes:     in.Notes,
		Actor:     GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MovementResponse{Success: true, Message: okMsg})
}

// Inbound godoc
// @Summary      Recepción de mercancía
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InboundRequest  true  "items con unit_cost opcional"
// @Success      201  {object}  dto.InboundResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/inbound [post]
func (h *InventoryHandler) Inbound(c *fiber.Ctx) error {
	var in dto.InboundRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	items := make([]inventory.InboundItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, inventory.InboundItem{
			VariantID:   it.VariantID,
			WarehouseID: it.WarehouseID,
			Quantity:    it.Quantity,
			Notes:       it.Notes,
			UnitCost:    it.UnitCost,
		})
	}
	res, err := h.uc.Inbound(c.Context(), inventory.InboundInput{
		Items:     items,
		Reference: in.Reference,
		Notes:     in.Notes,
		Actor:     GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.InboundResponse{Reference: in.Reference, Lines: make([]dto.InboundLineResponse, 0, len(res))}
	for _, l := range res {
		out.Lines = append(out.Lines, dto.InboundLineResponse{
			VariantID:   l.VariantID,
			WarehouseID: l.WarehouseID,
			Quantity:    l.Quantity,
			OnHand:      l.OnHand,
			Reserved:    l.Reserved,
			EntryID:     l.EntryID.String(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Transfer godoc
// @Summary      Traslado entre bodegas
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "variant_id, from_warehouse_id, to_warehouse_id, quantity"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.TransferResponse
// @Router       /api/inventory/transfer [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.Transfer(c.Context(), inventory.TransferInput{
		VariantID:       in.VariantID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Quantity:        in.Quantity,
		Reference:       in.Reference,
		Notes:           in.Notes,
		Actor:           GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.TransferResponse{
		Success: res.OK,
		From:    toStockRecordResponse(res.From),
		To:      toStockRecordResponse(res.To),
	}
	if !res.OK {
		return c.Status(fiber.StatusConflict).JSON(out)
	}
	out.TransactionID = res.TransactionID.String()
	return c.JSON(out)
}

// Adjust godoc
// @Summary      Ajuste manual de stock (solo admin)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "type: addition | subtraction | set"
// @Success      201  {object}  dto.AdjustStockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.Adjust(c.Context(), inventory.AdjustInput{
		VariantID:   in.VariantID,
		WarehouseID: in.WarehouseID,
		Type:        in.Type,
		Quantity:    in.Quantity,
		Reason:      in.Reason,
		Notes:       in.Notes,
		Actor:       GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.AdjustStockResponse{Record: toStockRecordResponse(res.Record), Delta: res.Delta}
	if res.Entry != nil {
		out.EntryID = res.Entry.ID.String()
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// SetReorderLevel godoc
// @Summary      Umbral de stock bajo de un par variante+bodega
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReorderLevelRequest  true  "variant_id, warehouse_id, reorder_level"
// @Success      200  {object}  dto.StockRecordResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/reorder-level [put]
func (h *InventoryHandler) SetReorderLevel(c *fiber.Ctx) error {
	var in dto.ReorderLevelRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	rec, err := h.uc.SetReorderLevel(c.Context(), in.VariantID, in.WarehouseID, in.ReorderLevel)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toStockRecordResponse(*rec))
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Pares por debajo del umbral con la cantidad sugerida, los más urgentes primero.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  int  false  "Filtrar por bodega. Vacío = todas."
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment-list [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	warehouseID, err := optionalInt64(c, "warehouse_id")
	if err != nil {
		return badParam(c, "warehouse_id")
	}
	list, err := h.replenishment.GenerateReplenishmentList(c.Context(), warehouseID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(list)
}

func toStockRecordResponse(r entity.StockRecord) dto.StockRecordResponse {
	return dto.StockRecordResponse{
		VariantID:    r.VariantID,
		WarehouseID:  r.WarehouseID,
		OnHand:       r.OnHand,
		Reserved:     r.Reserved,
		Available:    r.Available(),
		ReorderLevel: r.ReorderLevel,
		AverageCost:  r.AverageCost,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toLedgerEntryResponse(e *entity.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:              e.ID.String(),
		TransactionID:   e.TransactionID.String(),
		VariantID:       e.VariantID,
		WarehouseID:     e.WarehouseID,
		Type:            e.Type,
		QuantityChange:  e.QuantityChange,
		QuantityAfter:   e.QuantityAfter,
		ReservedAfter:   e.ReservedAfter,
		AvailableAfter:  e.AvailableAfter,
		Reason:          e.Reason,
		Notes:           e.Notes,
		ReferenceNumber: e.ReferenceNumber,
		Actor:           e.Actor,
		CreatedAt:       e.CreatedAt,
	}
}

func optionalTime(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
