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
	appinventory "github.com/tu-usuario/farmacia-pro/internal/application/inventory"
	"github.com/tu-usuario/farmacia-pro/internal/application/ledger"
	"github.com/tu-usuario/farmacia-pro/internal/application/purchasing"
	"github.com/tu-usuario/farmacia-pro/internal/application/reports"
	"github.com/tu-usuario/farmacia-pro/internal/application/sales"
	"github.com/tu-usuario/farmacia-pro/internal/application/usecase"
	domaininv "github.com/tu-usuario/farmacia-pro/internal/domain/inventory"
	"github.com/tu-usuario/farmacia-pro/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/farmacia-pro/internal/interfaces/http"
	"github.com/tu-usuario/farmacia-pro/pkg/config"
	"github.com/tu-usuario/farmacia-pro/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("dispensing_policy", cfg.Inventory.DispensingPolicy).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	policy := domaininv.ParsePolicy(cfg.Inventory.DispensingPolicy)

	// Repos de lectura sobre el pool; los de escritura los ata el TxRunner
	// a cada transacción.
	productRepo := postgres.NewProductRepository(pool)
	batchRepo := postgres.NewBatchRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	grnRepo := postgres.NewGRNRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	salesReturnRepo := postgres.NewSalesReturnRepository(pool)
	purchaseReturnRepo := postgres.NewPurchaseReturnRepository(pool)
	orderRepo := postgres.NewSalesOrderRepository(pool)
	complianceRepo := postgres.NewComplianceRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)

	txRunner := postgres.NewTxRunner(pool)
	engine := ledger.NewEngine()

	productUC := usecase.NewProductUseCase(productRepo, batchRepo)
	grnUC := purchasing.NewGRNUseCase(txRunner, engine, productRepo, grnRepo)
	purchaseReturnUC := purchasing.NewPurchaseReturnUseCase(txRunner, engine, productRepo, batchRepo, purchaseReturnRepo)
	saleUC := sales.NewSaleUseCase(txRunner, engine, saleRepo, policy)
	salesReturnUC := sales.NewSalesReturnUseCase(txRunner, engine, saleRepo, salesReturnRepo)
	salesOrderUC := sales.NewSalesOrderUseCase(txRunner, saleUC, productRepo, orderRepo)
	movementUC := appinventory.NewMovementUseCase(txRunner, engine, movementRepo)
	reportUC := reports.NewReportUseCase(batchRepo, movementRepo, reportRepo, complianceRepo)

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
		Title:    "Farmacia Pro API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:        productUC,
		GRNUC:            grnUC,
		PurchaseReturnUC: purchaseReturnUC,
		SaleUC:           saleUC,
		SalesReturnUC:    salesReturnUC,
		SalesOrderUC:     salesOrderUC,
		MovementUC:       movementUC,
		ReportUC:         reportUC,
		JWTSecret:        cfg.JWT.Secret,
	})

	httpLog := log.Component("http")
	go func() {
		httpLog.Info().Str("addr", cfg.HTTP.Addr()).Msg("escuchando")
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			httpLog.Error().Err(err).Msg("servidor HTTP finalizado")
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
