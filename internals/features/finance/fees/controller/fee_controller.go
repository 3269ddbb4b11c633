// file: internals/features/finance/fees/controller/fee_controller.go
package controller

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"schoolku_backend/internals/features/finance/fees/dto"
	"schoolku_backend/internals/features/finance/fees/repository"
	"schoolku_backend/internals/features/finance/fees/service"
	studentRepo "schoolku_backend/internals/features/school/students/repository"
	studentService "schoolku_backend/internals/features/school/students/service"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

/* =======================================================================
   Controller
======================================================================= */

type FeeController struct {
	Svc       *service.Service
	Students  studentRepo.Directory
	Validator *validator.Validate
}

func NewFeeController(svc *service.Service, students studentRepo.Directory) *FeeController {
	return &FeeController{Svc: svc, Students: students, Validator: validator.New()}
}

func (h *FeeController) parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return helper.Validation("invalid json: %s", err.Error())
	}
	return h.Validator.Struct(out)
}

/* =======================================================================
   Catalog (admin)
======================================================================= */

// POST /fees/types
func (h *FeeController) CreateFeeType(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.CreateFeeTypeRequest
	if err := h.parseBody(c, &req); err != nil {
		return helper.JsonFromError(c, err)
	}
	m, err := h.Svc.CreateFeeType(c.UserContext(), ac, req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "jenis biaya dibuat", m)
}

// GET /fees/types
func (h *FeeController) ListFeeTypes(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	rows, err := h.Svc.ListFeeTypes(c.UserContext(), ac)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// POST /fees/groups
func (h *FeeController) CreateFeeGroup(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.CreateFeeGroupRequest
	if err := h.parseBody(c, &req); err != nil {
		return helper.JsonFromError(c, err)
	}
	m, err := h.Svc.CreateFeeGroup(c.UserContext(), ac, req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "grup biaya dibuat", m)
}

// GET /fees/groups
func (h *FeeController) ListFeeGroups(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	rows, err := h.Svc.ListFeeGroups(c.UserContext(), ac)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// POST /fees/masters
func (h *FeeController) CreateFeeMaster(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.CreateFeeMasterRequest
	if err := h.parseBody(c, &req); err != nil {
		return helper.JsonFromError(c, err)
	}
	m, err := h.Svc.CreateFeeMaster(c.UserContext(), ac, req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "fee master dibuat", m)
}

// GET /fees/masters?class_id=&fee_type_id=
func (h *FeeController) ListFeeMasters(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	classID, err := helper.ParseOptionalUUIDQuery(c, "class_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	feeTypeID, err := helper.ParseOptionalUUIDQuery(c, "fee_type_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	f := repository.FeeMasterFilter{FeeTypeID: feeTypeID}
	if classID != nil {
		f.ClassIDs = append(f.ClassIDs, *classID)
	}
	rows, err := h.Svc.ListFeeMasters(c.UserContext(), ac, f)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// POST /fees/discounts
func (h *FeeController) CreateDiscount(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.CreateFeeDiscountRequest
	if err := h.parseBody(c, &req); err != nil {
		return helper.JsonFromError(c, err)
	}
	m, err := h.Svc.CreateDiscount(c.UserContext(), ac, req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "diskon dibuat", m)
}

// GET /fees/discounts
func (h *FeeController) ListDiscounts(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	rows, err := h.Svc.ListDiscounts(c.UserContext(), ac)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

/* =======================================================================
   Due & collection
======================================================================= */

// GET /fees/students/:student_id/due
func (h *FeeController) GetDueFees(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	studentID, err := helper.ParseUUIDParam(c, "student_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	res, err := h.Svc.ComputeDueFees(c.UserContext(), ac, studentID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", res)
}

// GET /fees/due?student_id= (member: student sendiri / orang tua)
func (h *FeeController) GetMyDueFees(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	requested, err := helper.ParseOptionalUUIDQuery(c, "student_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	st, err := studentService.ResolveMemberStudent(c.UserContext(), h.Students, ac, requested)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	res, err := h.Svc.ComputeDueFees(c.UserContext(), ac, st.SchoolStudentID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", res)
}

// POST /fees/students/:student_id/collect  (header opsional Idempotency-Key)
func (h *FeeController) CollectFees(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	studentID, err := helper.ParseUUIDParam(c, "student_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.CollectFeesRequest
	if err := h.parseBody(c, &req); err != nil {
		return helper.JsonFromError(c, err)
	}
	res, err := h.Svc.CollectFees(c.UserContext(), ac, studentID, req, c.Get("Idempotency-Key"))
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if res.Replayed {
		return helper.JsonOK(c, "transaksi sudah pernah diproses", res)
	}
	return helper.JsonCreated(c, "pembayaran berhasil dicatat", res)
}

/* =======================================================================
   Reports
======================================================================= */

func parseDueFilter(c *fiber.Ctx) (dto.DueReportFilter, error) {
	classID, err := helper.ParseOptionalUUIDQuery(c, "class_id")
	if err != nil {
		return dto.DueReportFilter{}, err
	}
	feeTypeID, err := helper.ParseOptionalUUIDQuery(c, "fee_type_id")
	if err != nil {
		return dto.DueReportFilter{}, err
	}
	return dto.DueReportFilter{
		ClassID:   classID,
		Section:   strings.TrimSpace(c.Query("section")),
		FeeTypeID: feeTypeID,
	}, nil
}

// GET /fees/due-report?class_id=&section=&fee_type_id=&page=&limit=
func (h *FeeController) DueReport(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	f, err := parseDueFilter(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	p := helper.ResolvePaging(c, helper.DefaultPerPage, helper.MaxPerPage)
	rep, total, err := h.Svc.DueReport(c.UserContext(), ac, f, p)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "ok", rep, p.Pagination(int64(total)))
}

// GET /fees/due-report/export → XLSX
func (h *FeeController) ExportDueReport(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	f, err := parseDueFilter(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	rep, err := h.Svc.DueReportAll(c.UserContext(), ac, f)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	book, err := service.ExportDueReport(rep)
	if err != nil {
		return helper.JsonFromError(c, helper.Internal(err))
	}
	defer func() { _ = book.Close() }()

	filename := fmt.Sprintf("due-report-%s.xlsx", time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	if err := book.Write(c); err != nil {
		return helper.JsonFromError(c, helper.Internal(err))
	}
	return nil
}

// GET /fees/collection-report?startDate=&endDate= (alias dateFrom/dateTo)
func (h *FeeController) CollectionReport(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	dr, err := helper.ParseDateRange(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	rep, err := h.Svc.CollectionReport(c.UserContext(), ac, dr)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", rep)
}
