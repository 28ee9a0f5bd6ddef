package http

import (
	"github.com/gofiber/fiber/v2"
	appinventory "github.com/tu-usuario/farmacia-pro/internal/application/inventory"
	"github.com/tu-usuario/farmacia-pro/internal/application/purchasing"
	"github.com/tu-usuario/farmacia-pro/internal/application/reports"
	"github.com/tu-usuario/farmacia-pro/internal/application/sales"
	"github.com/tu-usuario/farmacia-pro/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC        *usecase.ProductUseCase
	GRNUC            *purchasing.GRNUseCase
	PurchaseReturnUC *purchasing.PurchaseReturnUseCase
	SaleUC           *sales.SaleUseCase
	SalesReturnUC    *sales.SalesReturnUseCase
	SalesOrderUC     *sales.SalesOrderUseCase
	MovementUC       *appinventory.MovementUseCase
	ReportUC         *reports.ReportUseCase
	JWTSecret        string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catálogo
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
	products.Get("/:id/batches", productHandler.ListBatches)
	products.Delete("/:id/batches/:batchNumber", productHandler.DeleteBatch)

	// Recepciones de mercancía
	grns := protected.Group("/grns")
	grnHandler := NewGRNHandler(deps.GRNUC)
	grns.Post("/", grnHandler.Create)
	grns.Get("/", grnHandler.List)
	grns.Get("/:id", grnHandler.GetByID)

	// Ventas
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)

	// Devoluciones
	salesReturns := protected.Group("/sales-returns")
	salesReturnHandler := NewSalesReturnHandler(deps.SalesReturnUC)
	salesReturns.Post("/", salesReturnHandler.Create)
	salesReturns.Get("/", salesReturnHandler.List)

	purchaseReturns := protected.Group("/purchase-returns")
	purchaseReturnHandler := NewPurchaseReturnHandler(deps.PurchaseReturnUC)
	purchaseReturns.Post("/", purchaseReturnHandler.Create)
	purchaseReturns.Get("/", purchaseReturnHandler.List)

	// Pedidos de venta
	orders := protected.Group("/sales-orders")
	orderHandler := NewSalesOrderHandler(deps.SalesOrderUC)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Post("/:id/fulfill", orderHandler.Fulfill)
	orders.Post("/:id/cancel", orderHandler.Cancel)

	// Movimientos manuales y diario
	movements := protected.Group("/stock-movements")
	movementHandler := NewMovementHandler(deps.MovementUC)
	movements.Post("/", movementHandler.Register)
	movements.Get("/", movementHandler.List)

	// Reportes
	reportsGroup := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC)
	reportsGroup.Get("/stock-ledger/:productID/:batchNumber", reportHandler.StockLedger)
	reportsGroup.Get("/low-stock", reportHandler.LowStock)
	reportsGroup.Get("/expiring-batches", reportHandler.ExpiringBatches)
	reportsGroup.Get("/compliance-register", reportHandler.ComplianceRegister)
}
