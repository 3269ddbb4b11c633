// file: internals/features/dashboard/route/dashboard_route.go
package route

import (
	"github.com/gofiber/fiber/v2"

	dashboardController "schoolku_backend/internals/features/dashboard/controller"
	"schoolku_backend/internals/features/dashboard/service"
)

func DashboardAdminRoutes(r fiber.Router, svc *service.Service) {
	ctl := dashboardController.NewDashboardController(svc)
	r.Get("/dashboard", ctl.Admin)
}

func DashboardUserRoutes(r fiber.Router, svc *service.Service) {
	ctl := dashboardController.NewDashboardController(svc)
	r.Get("/dashboard", ctl.Student)
}
