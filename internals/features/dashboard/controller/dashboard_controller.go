// file: internals/features/dashboard/controller/dashboard_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"

	"schoolku_backend/internals/features/dashboard/service"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
	"schoolku_backend/internals/helpers/dbtime"
)

type DashboardController struct {
	Svc *service.Service
}

func NewDashboardController(svc *service.Service) *DashboardController {
	return &DashboardController{Svc: svc}
}

// GET /api/a/:school_id/dashboard
func (h *DashboardController) Admin(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	out, err := h.Svc.Admin(c.UserContext(), ac, dbtime.GetSchoolLocation(c))
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

// GET /api/u/:school_id/dashboard?student_id=
func (h *DashboardController) Student(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	requested, err := helper.ParseOptionalUUIDQuery(c, "student_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	out, err := h.Svc.Student(c.UserContext(), ac, requested)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}
