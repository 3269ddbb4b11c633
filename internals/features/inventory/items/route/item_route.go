// file: internals/features/inventory/items/route/item_route.go
package route

import (
	"github.com/gofiber/fiber/v2"

	"schoolku_backend/internals/constants"
	itemController "schoolku_backend/internals/features/inventory/items/controller"
	"schoolku_backend/internals/features/inventory/items/service"
	middlewares "schoolku_backend/internals/middlewares"
	schoolkuMiddleware "schoolku_backend/internals/middlewares/features"
)

// Admin routes: Inventory (/api/a/:school_id/inventory)
func InventoryAdminRoutes(r fiber.Router, svc *service.Service) {
	ctl := itemController.NewItemController(svc)
	finance := schoolkuMiddleware.RequireRoles(constants.FinanceRoles, constants.RoleErrorFinance("pembatalan stok"))

	inv := r.Group("/inventory")
	inv.Get("/items", ctl.ListItems)
	inv.Post("/items", ctl.CreateItem)
	inv.Get("/items/:item_id", ctl.GetItem)
	inv.Get("/items/:item_id/verify", ctl.VerifyItem)
	inv.Post("/items/:item_id/stocks", middlewares.LedgerRateLimiter(), ctl.AddStock)
	inv.Post("/items/:item_id/adjust", middlewares.LedgerRateLimiter(), ctl.Adjust)
	inv.Delete("/stocks/:stock_id", finance, ctl.DeleteStock)

	inv.Post("/issues", middlewares.LedgerRateLimiter(), ctl.Issue)
	inv.Post("/sales", middlewares.LedgerRateLimiter(), ctl.Sell)

	inv.Get("/transactions", ctl.ListTransactions)
	inv.Get("/low-stock", ctl.LowStock)
}
