package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/application/usecase"
	"github.com/jhoicas/warehouse-ledger/pkg/logger"
)

// WarehouseHandler maneja el directorio de bodegas y la resolución por provincia.
type WarehouseHandler struct {
	uc  *usecase.WarehouseUseCase
	log *logger.Logger
}

// NewWarehouseHandler construye el handler.
func NewWarehouseHandler(uc *usecase.WarehouseUseCase, log *logger.Logger) *WarehouseHandler {
	return &WarehouseHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar bodegas
// @Tags         warehouses
// @Security     Bearer
// @Produce      json
// @Param        active  query  bool  false  "Solo activas"
// @Success      200  {object}  dto.WarehouseListResponse
// @Router       /api/warehouses [get]
func (h *WarehouseHandler) List(c *fiber.Ctx) error {
	onlyActive := false
	if raw := c.Query("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "active debe ser true o false"})
		}
		onlyActive = v
	}
	out, err := h.uc.List(c.Context(), onlyActive)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener bodega por ID
// @Tags         warehouses
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "Bodega"
// @Success      200  {object}  dto.WarehouseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/warehouses/{id} [get]
func (h *WarehouseHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badParam(c, "id")
	}
	out, err := h.uc.GetByID(c.Context(), int64(id))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Resolve godoc
// @Summary      Bodega de despacho para una provincia
// @Description  Sin coincidencia o sin región devuelve la bodega por defecto con is_default=true.
// @Tags         warehouses
// @Security     Bearer
// @Produce      json
// @Param        region  query  string  false  "Provincia de envío"
// @Success      200  {object}  dto.ResolveWarehouseResponse
// @Router       /api/warehouses/resolve [get]
func (h *WarehouseHandler) Resolve(c *fiber.Ctx) error {
	out, err := h.uc.Resolve(c.Context(), strings.TrimSpace(c.Query("region")))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
