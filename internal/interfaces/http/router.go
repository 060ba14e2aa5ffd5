package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	appanalytics "github.com/jhoicas/warehouse-ledger/internal/application/analytics"
	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/application/usecase"
	"github.com/jhoicas/warehouse-ledger/pkg/jwt"
	"github.com/jhoicas/warehouse-ledger/pkg/logger"
	"github.com/jhoicas/warehouse-ledger/pkg/metrics"
	"github.com/jhoicas/warehouse-ledger/pkg/vnpay"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StockLedgerUC   *inventory.StockLedgerUseCase
	ReplenishmentUC *inventory.ReplenishmentUseCase
	WarehouseUC     *usecase.WarehouseUseCase
	DashboardUC     *appanalytics.DashboardUseCase
	VNPay           *vnpay.Client // nil = pagos desactivados
	Metrics         *metrics.Metrics
	Logger          *logger.Logger
	JWTSecret       string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	if deps.Metrics != nil {
		app.Use(MetricsMiddleware(deps.Metrics))
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	api := app.Group("/api")

	// Retorno del portal de pago (público, verificado por firma)
	paymentHandler := NewPaymentHandler(deps.VNPay, log.Component("payments"))
	api.Get("/payments/vnpay/return", paymentHandler.Return)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleManager, jwt.RoleStaff)
	managers := RequireRole(jwt.RoleAdmin, jwt.RoleManager)

	// Warehouses
	warehouses := protected.Group("/warehouses", anyRole)
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC, log.Component("warehouses"))
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/resolve", warehouseHandler.Resolve)
	warehouses.Get("/:id", warehouseHandler.GetByID)

	// Inventory
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.StockLedgerUC, deps.ReplenishmentUC, log.Component("inventory"))
	invGroup.Get("/availability", anyRole, inventoryHandler.Availability)
	invGroup.Get("/stock/:variant_id", anyRole, inventoryHandler.StockByVariant)
	invGroup.Get("/ledger", anyRole, inventoryHandler.Ledger)
	invGroup.Post("/reserve", anyRole, inventoryHandler.Reserve)
	invGroup.Post("/release", anyRole, inventoryHandler.Release)
	invGroup.Post("/fulfill", anyRole, inventoryHandler.Fulfill)
	invGroup.Post("/orders/reserve", anyRole, inventoryHandler.ReserveOrder)
	invGroup.Post("/orders/release", anyRole, inventoryHandler.ReleaseOrder)
	invGroup.Post("/orders/fulfill", anyRole, inventoryHandler.FulfillOrder)
	invGroup.Post("/inbound", managers, inventoryHandler.Inbound)
	invGroup.Post("/transfer", managers, inventoryHandler.Transfer)
	invGroup.Post("/adjustments", RequireRole(jwt.RoleAdmin), inventoryHandler.Adjust)
	invGroup.Put("/reorder-level", managers, inventoryHandler.SetReorderLevel)
	invGroup.Get("/replenishment-list", managers, inventoryHandler.GetReplenishmentList)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC, log.Component("dashboard"))
	protected.Get("/dashboard/stock-summary", managers, dashboardHandler.GetStockSummary)

	// Payments
	protected.Post("/payments/vnpay/url", anyRole, paymentHandler.CreateURL)
}
