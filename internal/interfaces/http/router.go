package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-ledger/internal/application/alerts"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/Inventario-ledger/internal/application/registry"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    *ledger.Service
	Reorder   *inventory.ReorderUseCase
	Alerts    *alerts.Engine
	Registry  *registry.UseCase
	JWTSecret string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; el rol decide qué
// movimientos puede registrar cada usuario.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	staff := RequireRole(RoleAdmin, RoleBodeguero)
	sellers := RequireRole(RoleAdmin, RoleBodeguero, RoleVendedor)
	admin := RequireRole(RoleAdmin)

	// Inventory
	inv := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Reorder)
	inv.Post("/receipts", staff, inventoryHandler.RecordReceipt)
	inv.Post("/sales", sellers, inventoryHandler.RecordSale)
	inv.Post("/usages", staff, inventoryHandler.RecordUsage)
	inv.Post("/adjustments", admin, inventoryHandler.RecordAdjustment)
	inv.Post("/returns", sellers, inventoryHandler.RecordReturn)
	inv.Post("/transfers", staff, inventoryHandler.TransferStock)
	inv.Get("/projections", inventoryHandler.ListProjections)
	inv.Get("/projections/:item/:location", inventoryHandler.GetProjection)
	inv.Get("/projections/:item/:location/history", inventoryHandler.GetHistory)
	inv.Get("/projections/:item/:location/reorder-estimate", inventoryHandler.GetReorderEstimate)
	inv.Post("/projections/:item/:location/rebuild", admin, inventoryHandler.Rebuild)
	inv.Get("/replenishment-list", staff, inventoryHandler.GetReplenishmentList)

	// Alerts
	alertGroup := protected.Group("/alerts")
	alertHandler := NewAlertHandler(deps.Alerts)
	alertGroup.Get("/", alertHandler.List)
	alertGroup.Post("/:id/acknowledge", staff, alertHandler.Acknowledge)
	alertGroup.Post("/:id/dismiss", staff, alertHandler.Dismiss)

	// Registry
	registryHandler := NewRegistryHandler(deps.Registry)
	locations := protected.Group("/locations")
	locations.Get("/", registryHandler.ListLocations)
	locations.Post("/", admin, registryHandler.CreateLocation)
	locations.Post("/:id/deactivate", admin, registryHandler.DeactivateLocation)

	categories := protected.Group("/categories")
	categories.Get("/", registryHandler.ListCategories)
	categories.Post("/", admin, registryHandler.CreateCategory)

	items := protected.Group("/items")
	items.Get("/", registryHandler.ListItems)
	items.Post("/", admin, registryHandler.CreateItem)
	items.Get("/:id", registryHandler.GetItem)
	items.Put("/:id/policy", admin, registryHandler.SetPolicy)

	suppliers := protected.Group("/suppliers")
	suppliers.Post("/", admin, registryHandler.CreateSupplier)
}
