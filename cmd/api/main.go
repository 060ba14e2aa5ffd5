package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appanalytics "github.com/jhoicas/warehouse-ledger/internal/application/analytics"
	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/application/usecase"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
	"github.com/jhoicas/warehouse-ledger/internal/domain/routing"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/warehouse-ledger/internal/interfaces/http"
	"github.com/jhoicas/warehouse-ledger/pkg/config"
	"github.com/jhoicas/warehouse-ledger/pkg/logger"
	"github.com/jhoicas/warehouse-ledger/pkg/metrics"
	"github.com/jhoicas/warehouse-ledger/pkg/vnpay"
)

// storage repositorios de un mismo backend.
type storage struct {
	txRunner   inventory.TxRunner
	stock      repository.StockRecordRepository
	ledger     repository.LedgerRepository
	variants   repository.VariantRepository
	warehouses repository.WarehouseRepository
	analytics  repository.AnalyticsRepository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer store.close()

	m := metrics.New("warehouse_ledger")

	deps := inventory.Deps{
		TxRunner:   store.txRunner,
		Stock:      store.stock,
		Ledger:     store.ledger,
		Variants:   store.variants,
		Warehouses: store.warehouses,
		Metrics:    m,
		Logger:     log.Component("stock_ledger"),
	}
	if cfg.Redis.Enabled() {
		client, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			// sin caché se lee directo del almacenamiento
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no disponible, caché desactivada")
		} else {
			defer client.Close()
			deps.Cache = cache.NewAvailabilityCache(client, cfg.Redis.TTL())
		}
	}
	stockLedgerUC := inventory.NewStockLedgerUseCase(deps)

	table, err := routing.NewTable(append(routing.Provinces(), routing.Aliases()...), cfg.Routing.DefaultWarehouseID)
	if err != nil {
		log.Fatal().Err(err).Msg("tabla de regiones")
	}

	var payments *vnpay.Client
	if cfg.VNPay.TmnCode != "" {
		payments, err = vnpay.New(vnpay.Config{
			TmnCode:    cfg.VNPay.TmnCode,
			HashSecret: cfg.VNPay.HashSecret,
			PayURL:     cfg.VNPay.PayURL,
			ReturnURL:  cfg.VNPay.ReturnURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("configuración VNPAY")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Warehouse Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.App.Storage})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		StockLedgerUC:   stockLedgerUC,
		ReplenishmentUC: inventory.NewReplenishmentUseCase(store.analytics),
		WarehouseUC:     usecase.NewWarehouseUseCase(store.warehouses, table),
		DashboardUC:     appanalytics.NewDashboardUseCase(store.analytics),
		VNPay:           payments,
		Metrics:         m,
		Logger:          log,
		JWTSecret:       cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage abre PostgreSQL o, con STORAGE_DRIVER=memory, un almacenamiento de demo sembrado.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.App.InMemory() {
		s := memory.NewStore(memory.WithLockTimeout(cfg.DB.LockTimeout()))
		memory.SeedDemo(s)
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &storage{
			txRunner:   memory.NewTxRunner(s),
			stock:      s.Stock(),
			ledger:     s.Ledger(),
			variants:   s.Variants(),
			warehouses: s.Warehouses(),
			analytics:  s.Analytics(),
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		txRunner:   postgres.NewTxRunner(pool, cfg.DB.LockTimeout()),
		stock:      postgres.NewStockRecordRepository(pool),
		ledger:     postgres.NewLedgerRepository(pool),
		variants:   postgres.NewVariantRepository(pool),
		warehouses: postgres.NewWarehouseRepository(pool),
		analytics:  postgres.NewAnalyticsRepository(pool),
		close:      pool.Close,
	}, nil
}
