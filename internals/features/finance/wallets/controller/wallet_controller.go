// file: internals/features/finance/wallets/controller/wallet_controller.go
package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"schoolku_backend/internals/features/finance/wallets/dto"
	"schoolku_backend/internals/features/finance/wallets/model"
	"schoolku_backend/internals/features/finance/wallets/service"
	studentRepo "schoolku_backend/internals/features/school/students/repository"
	studentService "schoolku_backend/internals/features/school/students/service"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

const recentTransactions = 5

type WalletController struct {
	Svc       *service.Service
	Recharges *service.RechargeService
	Students  studentRepo.Directory
	Validator *validator.Validate
}

func NewWalletController(svc *service.Service, recharges *service.RechargeService, students studentRepo.Directory) *WalletController {
	return &WalletController{Svc: svc, Recharges: recharges, Students: students, Validator: validator.New()}
}

func (h *WalletController) parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return helper.Validation("invalid json: %s", err.Error())
	}
	return h.Validator.Struct(out)
}

func parseTxFilter(c *fiber.Ctx, studentID *uuid.UUID) (dto.TransactionFilter, error) {
	dr, err := helper.ParseDateRange(c)
	if err != nil {
		return dto.TransactionFilter{}, err
	}
	return dto.TransactionFilter{
		StudentID: studentID,
		Type:      model.TransactionType(strings.ToLower(strings.TrimSpace(c.Query("type")))),
		Category:  strings.ToLower(strings.TrimSpace(c.Query("category"))),
		From:      dr.From,
		Until:     dr.Until,
	}, nil
}

/* =======================================================================
   Admin
======================================================================= */

// GET /wallets/:student_id
func (h *WalletController) GetWallet(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	studentID, err := helper.ParseUUIDParam(c, "student_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	w, err := h.Svc.GetOrCreateWallet(c.UserContext(), ac, studentID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", w)
}

func (h *WalletController) mutation(c *fiber.Ctx, credit bool) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	studentID, err := helper.ParseUUIDParam(c, "student_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.MutationRequest
	if err := h.parseBody(c, &req); err != nil {
		return helper.JsonFromError(c, err)
	}

	var res *dto.MutationResult
	if credit {
		res, err = h.Svc.Credit(c.UserContext(), ac, studentID, req)
	} else {
		res, err = h.Svc.Debit(c.UserContext(), ac, studentID, req)
	}
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "transaksi wallet berhasil", res)
}

// POST /wallets/:student_id/credit
func (h *WalletController) Credit(c *fiber.Ctx) error { return h.mutation(c, true) }

// POST /wallets/:student_id/debit
func (h *WalletController) Debit(c *fiber.Ctx) error { return h.mutation(c, false) }

// PATCH /wallets/:student_id/status
func (h *WalletController) SetStatus(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	studentID, err := helper.ParseUUIDParam(c, "student_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.SetStatusRequest
	if err := h.parseBody(c, &req); err != nil {
		return helper.JsonFromError(c, err)
	}
	w, err := h.Svc.SetStatus(c.UserContext(), ac, studentID, req.Status)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "status wallet diperbarui", w)
}

// GET /wallets/:student_id/transactions
func (h *WalletController) ListStudentTransactions(c *fiber.Ctx) error {
	studentID, err := helper.ParseUUIDParam(c, "student_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return h.listTransactions(c, &studentID)
}

// GET /wallets/transactions (semua siswa)
func (h *WalletController) ListSchoolTransactions(c *fiber.Ctx) error {
	return h.listTransactions(c, nil)
}

func (h *WalletController) listTransactions(c *fiber.Ctx, studentID *uuid.UUID) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	f, err := parseTxFilter(c, studentID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	p := helper.ResolvePaging(c, helper.DefaultPerPage, helper.MaxPerPage)
	rows, total, err := h.Svc.ListTransactions(c.UserContext(), ac, f, p)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "ok", rows, p.Pagination(total))
}

// GET /wallets/:student_id/verify
func (h *WalletController) Verify(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	studentID, err := helper.ParseUUIDParam(c, "student_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	res, err := h.Svc.VerifyWallet(c.UserContext(), ac, studentID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", res)
}

// GET /wallets/summary/categories?startDate=&endDate=
func (h *WalletController) CategorySummary(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	dr, err := helper.ParseDateRange(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	res, err := h.Svc.CategorySummary(c.UserContext(), ac, dr)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", res)
}

// GET /wallets/summary/totals
func (h *WalletController) Totals(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	res, err := h.Svc.Totals(c.UserContext(), ac)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", res)
}

// POST /wallets/:student_id/recharges
func (h *WalletController) CreateRecharge(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	studentID, err := helper.ParseUUIDParam(c, "student_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return h.createRecharge(c, ac, studentID)
}

func (h *WalletController) createRecharge(c *fiber.Ctx, ac helperAuth.AuthContext, studentID uuid.UUID) error {
	var req dto.CreateRechargeRequest
	if err := h.parseBody(c, &req); err != nil {
		return helper.JsonFromError(c, err)
	}
	res, err := h.Recharges.CreateRecharge(c.UserContext(), ac, studentID, req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "recharge dibuat", res)
}

/* =======================================================================
   Member (student / parent)
======================================================================= */

func (h *WalletController) memberStudent(c *fiber.Ctx) (helperAuth.AuthContext, uuid.UUID, error) {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return ac, uuid.Nil, err
	}
	requested, err := helper.ParseOptionalUUIDQuery(c, "student_id")
	if err != nil {
		return ac, uuid.Nil, err
	}
	st, err := studentService.ResolveMemberStudent(c.UserContext(), h.Students, ac, requested)
	if err != nil {
		return ac, uuid.Nil, err
	}
	return ac, st.SchoolStudentID, nil
}

// GET /wallets/me?student_id=
func (h *WalletController) MyWallet(c *fiber.Ctx) error {
	ac, studentID, err := h.memberStudent(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	res, err := h.Svc.Snapshot(c.UserContext(), ac, studentID, recentTransactions)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", res)
}

// GET /wallets/me/transactions?student_id=
func (h *WalletController) MyTransactions(c *fiber.Ctx) error {
	_, studentID, err := h.memberStudent(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return h.listTransactions(c, &studentID)
}

// POST /wallets/me/recharges?student_id=
func (h *WalletController) MyCreateRecharge(c *fiber.Ctx) error {
	ac, studentID, err := h.memberStudent(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return h.createRecharge(c, ac, studentID)
}

// GET /wallets/me/recharges?student_id=
func (h *WalletController) MyRecharges(c *fiber.Ctx) error {
	ac, studentID, err := h.memberStudent(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	rows, err := h.Recharges.ListRecharges(c.UserContext(), ac, studentID, 20)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}
