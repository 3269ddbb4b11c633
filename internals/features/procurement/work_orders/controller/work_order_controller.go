// file: internals/features/procurement/work_orders/controller/work_order_controller.go
package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"schoolku_backend/internals/features/procurement/work_orders/dto"
	"schoolku_backend/internals/features/procurement/work_orders/model"
	"schoolku_backend/internals/features/procurement/work_orders/service"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

type WorkOrderController struct {
	Svc       *service.Service
	Validator *validator.Validate
}

func NewWorkOrderController(svc *service.Service) *WorkOrderController {
	return &WorkOrderController{Svc: svc, Validator: validator.New()}
}

func (h *WorkOrderController) parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return helper.Validation("invalid json: %s", err.Error())
	}
	return h.Validator.Struct(out)
}

// POST /work-orders
func (h *WorkOrderController) Create(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.CreateWorkOrderRequest
	if err := h.parseBody(c, &req); err != nil {
		return helper.JsonFromError(c, err)
	}
	out, err := h.Svc.CreateWorkOrder(c.UserContext(), ac, req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "work order berhasil dibuat", out)
}

// GET /work-orders?payment_status=
func (h *WorkOrderController) List(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	p := helper.ResolvePaging(c, helper.DefaultPerPage, helper.MaxPerPage)
	f := dto.ListFilter{Status: model.PaymentStatus(strings.ToLower(strings.TrimSpace(c.Query("payment_status"))))}
	rows, total, err := h.Svc.ListWorkOrders(c.UserContext(), ac, f, p)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "ok", rows, p.Pagination(total))
}

// GET /work-orders/open-balance
func (h *WorkOrderController) OpenBalance(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	out, err := h.Svc.OpenBalance(c.UserContext(), ac)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

// GET /work-orders/:work_order_id
func (h *WorkOrderController) Get(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "work_order_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	out, err := h.Svc.GetWorkOrder(c.UserContext(), ac, id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

// POST /work-orders/:work_order_id/payments
func (h *WorkOrderController) RecordPayment(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "work_order_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.RecordPaymentRequest
	if err := h.parseBody(c, &req); err != nil {
		return helper.JsonFromError(c, err)
	}
	out, err := h.Svc.RecordPayment(c.UserContext(), ac, id, req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "pembayaran dicatat", out)
}

// DELETE /work-orders/:work_order_id/payments/:payment_id
func (h *WorkOrderController) DeletePayment(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "work_order_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	paymentID, err := helper.ParseUUIDParam(c, "payment_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	out, err := h.Svc.DeletePayment(c.UserContext(), ac, id, paymentID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonDeleted(c, "pembayaran dihapus", out)
}
