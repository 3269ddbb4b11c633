// file: internals/route/details/operations_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"

	dashboardRoute "schoolku_backend/internals/features/dashboard/route"
	itemRoute "schoolku_backend/internals/features/inventory/items/route"
	workOrderRoute "schoolku_backend/internals/features/procurement/work_orders/route"
)

/* ===================== ADMIN ===================== */
func OperationsAdminRoutes(r fiber.Router, s *Services) {
	itemRoute.InventoryAdminRoutes(r, s.Inventory)
	workOrderRoute.WorkOrderAdminRoutes(r, s.WorkOrders)
	dashboardRoute.DashboardAdminRoutes(r, s.Dashboard)
}

/* ===================== USER ===================== */
func OperationsUserRoutes(r fiber.Router, s *Services) {
	dashboardRoute.DashboardUserRoutes(r, s.Dashboard)
}
