package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/warehouse-ledger/internal/application/analytics"
	"github.com/jhoicas/warehouse-ledger/pkg/logger"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc  *appanalytics.DashboardUseCase
	log *logger.Logger
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{uc: uc, log: log}
}

// GetStockSummary devuelve totales de stock, valor y el top de stock bajo.
// GET /api/dashboard/stock-summary?warehouse_id=
//
// Sin warehouse_id agrega todas las bodegas.
func (h *DashboardHandler) GetStockSummary(c *fiber.Ctx) error {
	warehouseID, err := optionalInt64(c, "warehouse_id")
	if err != nil {
		return badParam(c, "warehouse_id")
	}
	summary, err := h.uc.GetStockSummary(c.Context(), warehouseID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(summary)
}
