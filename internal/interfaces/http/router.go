package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/batch-ledger/internal/application/inventory"
	"github.com/jhoicas/batch-ledger/internal/application/reconciliation"
)

// Roles con acceso a las rutas del ledger.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Query       *inventory.QueryUseCase
	Restock     *inventory.RestockUseCase
	Assignments *inventory.AssignmentUseCase
	Sales       *inventory.SaleUseCase
	Engine      *reconciliation.Engine
	JWTSecret   string
	JWTIssuer   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	batchHandler := NewBatchHandler(deps.Query, deps.Restock, deps.Sales)
	batches := protected.Group("/batches")
	batches.Get("/:id/quantity", batchHandler.GetQuantity)
	batches.Get("/:id/available", batchHandler.GetAvailable)
	batches.Get("/:id/ledger", batchHandler.GetLedger)
	batches.Post("/restock", RequireRole(RoleAdmin, RoleBodeguero), batchHandler.Restock)
	batches.Post("/:id/deactivate", RequireRole(RoleAdmin, RoleBodeguero), batchHandler.Deactivate)
	batches.Post("/:id/sales", batchHandler.Sell)

	protected.Get("/products/:id/stock", batchHandler.GetProductStock)

	assignmentHandler := NewAssignmentHandler(deps.Assignments)
	assignments := protected.Group("/assignments")
	assignments.Post("/", assignmentHandler.Reserve)
	assignments.Post("/:id/fulfill", assignmentHandler.Fulfill)
	assignments.Post("/:id/returns", assignmentHandler.Return)
	assignments.Post("/:id/close", assignmentHandler.Close)

	// Mantenimiento (solo admin)
	admin := protected.Group("/admin", RequireRole(RoleAdmin))
	admin.Post("/reconciliation", NewReconciliationHandler(deps.Engine).Run)
}
