package http

import (
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Gestion-api/internal/application/billing"
	"github.com/jhoicas/Gestion-api/internal/application/cancellation"
	"github.com/jhoicas/Gestion-api/internal/application/inventory"
	"github.com/jhoicas/Gestion-api/internal/application/purchasing"
	"github.com/jhoicas/Gestion-api/internal/application/sales"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC       *usecase.ProductUseCase
	StockUC         *inventory.StockUseCase
	PurchaseOrderUC *purchasing.UseCase
	DeliveryNoteUC  *sales.UseCase
	CancellationUC  *cancellation.UseCase
	InvoiceUC       *billing.InvoiceUseCase
	JWTSecret       string
	JWTIssuer       string
}

// AppConfig opciones de la aplicación Fiber. SwaggerFile vacío = sin Swagger UI.
type AppConfig struct {
	Name        string
	SwaggerFile string
}

// NewApp crea la aplicación Fiber con middlewares comunes, health check y rutas.
func NewApp(cfg AppConfig, log *logger.Logger, deps RouterDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: ErrorHandler,
	})
	app.Use(RequestLogger(log))
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	if cfg.SwaggerFile != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.SwaggerFile,
			Path:     "docs",
			Title:    "Gestion API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.Name})
	})

	Router(app, deps)
	return app
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)

	// /stock/movements antes de /stock/:productId
	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.StockUC)
	stock.Get("/", stockHandler.List)
	stock.Get("/movements", stockHandler.Movements)
	stock.Get("/:productId", stockHandler.Get)

	orders := api.Group("/purchase-orders")
	orderHandler := NewPurchaseOrderHandler(deps.PurchaseOrderUC)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Put("/:id", orderHandler.Update)
	orders.Patch("/:id/status", orderHandler.ChangeStatus)
	orders.Delete("/:id", orderHandler.Delete)

	notes := api.Group("/delivery-notes")
	noteHandler := NewDeliveryNoteHandler(deps.DeliveryNoteUC, deps.CancellationUC)
	notes.Post("/", noteHandler.Create)
	notes.Get("/", noteHandler.List)
	notes.Get("/:id", noteHandler.GetByID)
	notes.Put("/:id", noteHandler.Update)
	notes.Patch("/:id/status", noteHandler.ChangeStatus)
	notes.Delete("/:id", noteHandler.Delete)
	notes.Get("/:id/cancellations", noteHandler.Cancellations)

	cancellations := api.Group("/cancellations")
	cancellationHandler := NewCancellationHandler(deps.CancellationUC)
	cancellations.Post("/", cancellationHandler.Create)
	cancellations.Get("/:id", cancellationHandler.GetByID)
	cancellations.Put("/:id", cancellationHandler.Update)
	cancellations.Delete("/:id", cancellationHandler.Delete)
	cancellations.Delete("/:id/items/:itemId", cancellationHandler.DeleteItem)

	invoices := api.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Post("/:id/payments", invoiceHandler.RecordPayment)
	invoices.Delete("/:id/payments/:paymentId", invoiceHandler.DeletePayment)
}
