// file: internals/features/procurement/work_orders/route/work_order_route.go
package route

import (
	"github.com/gofiber/fiber/v2"

	"schoolku_backend/internals/constants"
	woController "schoolku_backend/internals/features/procurement/work_orders/controller"
	"schoolku_backend/internals/features/procurement/work_orders/service"
	middlewares "schoolku_backend/internals/middlewares"
	schoolkuMiddleware "schoolku_backend/internals/middlewares/features"
)

// Admin routes: Work Orders (/api/a/:school_id/work-orders)
func WorkOrderAdminRoutes(r fiber.Router, svc *service.Service) {
	ctl := woController.NewWorkOrderController(svc)
	finance := schoolkuMiddleware.RequireRoles(constants.FinanceRoles, constants.RoleErrorFinance("pembayaran work order"))

	wo := r.Group("/work-orders")
	wo.Get("/", ctl.List)
	wo.Post("/", ctl.Create)
	wo.Get("/open-balance", ctl.OpenBalance)
	wo.Get("/:work_order_id", ctl.Get)
	wo.Post("/:work_order_id/payments", finance, middlewares.LedgerRateLimiter(), ctl.RecordPayment)
	wo.Delete("/:work_order_id/payments/:payment_id", finance, ctl.DeletePayment)
}
