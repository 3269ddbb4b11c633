// file: internals/features/procurement/work_orders/service/work_order_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"schoolku_backend/internals/configs"
	"schoolku_backend/internals/constants"
	database "schoolku_backend/internals/databases"
	"schoolku_backend/internals/features/procurement/work_orders/dto"
	"schoolku_backend/internals/features/procurement/work_orders/model"
	"schoolku_backend/internals/features/procurement/work_orders/repository"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

const mutationAttempts = 3

type Service struct {
	repo repository.Repository
	now  func() time.Time
	log  *logrus.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo repository.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now, log: configs.GetLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewWorkOrderNumber: WO-YYYYMMDD-<6 hex uppercase>
func NewWorkOrderNumber(now time.Time) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("WO-%s-%s", now.Format("20060102"), strings.ToUpper(hex[:6]))
}

func (s *Service) CreateWorkOrder(ctx context.Context, ac helperAuth.AuthContext, req dto.CreateWorkOrderRequest) (*dto.WorkOrderDetail, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, helper.Validation("title wajib diisi")
	}
	if len(req.Lines) == 0 {
		return nil, helper.Validation("lines wajib diisi")
	}
	if req.TaxAmount.IsNegative() || req.DiscountAmount.IsNegative() {
		return nil, helper.Validation("tax/discount tidak boleh negatif")
	}

	lines := make([]model.WorkOrderLine, 0, len(req.Lines))
	for i, l := range req.Lines {
		if strings.TrimSpace(l.Description) == "" {
			return nil, helper.Validation("lines[%d].description wajib diisi", i)
		}
		if !l.Quantity.IsPositive() {
			return nil, helper.Validation("lines[%d].quantity harus lebih dari 0", i)
		}
		if l.UnitPrice.IsNegative() {
			return nil, helper.Validation("lines[%d].unit_price tidak boleh negatif", i)
		}
		lines = append(lines, model.WorkOrderLine{
			Description: strings.TrimSpace(l.Description),
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice.Round(2),
			Total:       l.Quantity.Mul(l.UnitPrice).Round(2),
		})
	}
	tax, discount := req.TaxAmount.Round(2), req.DiscountAmount.Round(2)
	sub, grand := ComputeTotals(lines, tax, discount)
	rec := Reconcile(grand, nil)

	number := strings.TrimSpace(req.Number)
	if number == "" {
		number = NewWorkOrderNumber(s.now())
	}
	wo := &model.WorkOrderModel{
		WorkOrderID:             uuid.New(),
		WorkOrderSchoolID:       ac.SchoolID,
		WorkOrderNumber:         number,
		WorkOrderTitle:          title,
		WorkOrderVendorName:     req.VendorName,
		WorkOrderNote:           req.Note,
		WorkOrderSubTotal:       sub,
		WorkOrderTaxAmount:      tax,
		WorkOrderDiscountAmount: discount,
		WorkOrderGrandTotal:     grand,
		WorkOrderAdvancePaid:    rec.AdvancePaid,
		WorkOrderBalanceAmount:  rec.BalanceAmount,
		WorkOrderPaymentStatus:  rec.PaymentStatus,
		WorkOrderLifecycle:      constants.LifecycleActive,
		WorkOrderCreatedBy:      ac.ActorID(),
	}
	if err := wo.SetLines(lines); err != nil {
		return nil, errors.Wrap(err, "encode work order lines")
	}
	if err := s.repo.CreateWorkOrder(ctx, wo); err != nil {
		return nil, errors.Wrap(err, "create work order")
	}
	return &dto.WorkOrderDetail{WorkOrder: *wo, Lines: lines, Payments: []model.WorkOrderPaymentModel{}}, nil
}

func (s *Service) GetWorkOrder(ctx context.Context, ac helperAuth.AuthContext, id uuid.UUID) (*dto.WorkOrderDetail, error) {
	wo, err := s.repo.GetWorkOrder(ctx, ac.SchoolID, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, helper.NotFound("work order tidak ditemukan")
		}
		return nil, errors.Wrap(err, "get work order")
	}
	return s.detail(ctx, s.repo, wo)
}

func (s *Service) detail(ctx context.Context, r repository.Repository, wo *model.WorkOrderModel) (*dto.WorkOrderDetail, error) {
	lines, err := wo.Lines()
	if err != nil {
		return nil, errors.Wrap(err, "decode work order lines")
	}
	payments, err := r.ListPayments(ctx, wo.WorkOrderSchoolID, wo.WorkOrderID)
	if err != nil {
		return nil, errors.Wrap(err, "list work order payments")
	}
	return &dto.WorkOrderDetail{WorkOrder: *wo, Lines: lines, Payments: payments}, nil
}

func (s *Service) ListWorkOrders(ctx context.Context, ac helperAuth.AuthContext, f dto.ListFilter, p helper.Paging) ([]model.WorkOrderModel, int64, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, helper.Validation("payment_status harus pending, partial, atau paid")
	}
	rows, total, err := s.repo.ListWorkOrders(ctx, ac.SchoolID, f.Status, p.Offset, p.Limit)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list work orders")
	}
	return rows, total, nil
}

func (s *Service) OpenBalance(ctx context.Context, ac helperAuth.AuthContext) (dto.OpenBalance, error) {
	row, err := s.repo.OpenBalance(ctx, ac.SchoolID)
	if err != nil {
		return dto.OpenBalance{}, errors.Wrap(err, "work order open balance")
	}
	return dto.OpenBalance{OpenWorkOrders: row.Count, Balance: row.Balance}, nil
}

/* ===============================
   Pembayaran
=================================*/

func (s *Service) RecordPayment(ctx context.Context, ac helperAuth.AuthContext, workOrderID uuid.UUID, req dto.RecordPaymentRequest) (*dto.WorkOrderDetail, error) {
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, helper.ErrInvalidAmount
	}
	paidAt := s.now()
	if req.PaidAt != nil && !req.PaidAt.IsZero() {
		paidAt = *req.PaidAt
	}

	return s.mutate(ctx, ac, workOrderID, func(r repository.Repository, wo *model.WorkOrderModel) error {
		p := &model.WorkOrderPaymentModel{
			WorkOrderPaymentID:          uuid.New(),
			WorkOrderPaymentSchoolID:    ac.SchoolID,
			WorkOrderPaymentWorkOrderID: wo.WorkOrderID,
			WorkOrderPaymentAmount:      amount,
			WorkOrderPaymentVendor:      req.Vendor,
			WorkOrderPaymentMode:        req.NormalizedMode(),
			WorkOrderPaymentReference:   req.Reference,
			WorkOrderPaymentPaidAt:      paidAt,
			WorkOrderPaymentRecordedBy:  ac.ActorID(),
		}
		if err := r.CreatePayment(ctx, p); err != nil {
			return errors.Wrap(err, "create work order payment")
		}
		return nil
	})
}

func (s *Service) DeletePayment(ctx context.Context, ac helperAuth.AuthContext, workOrderID, paymentID uuid.UUID) (*dto.WorkOrderDetail, error) {
	return s.mutate(ctx, ac, workOrderID, func(r repository.Repository, wo *model.WorkOrderModel) error {
		if err := r.DeletePayment(ctx, ac.SchoolID, wo.WorkOrderID, paymentID); err != nil {
			if repository.IsNotFound(err) {
				return helper.NotFound("pembayaran tidak ditemukan")
			}
			return errors.Wrap(err, "delete work order payment")
		}
		return nil
	})
}

// mutate: lock work order → ubah pembayaran → hitung ulang dari semua pembayaran.
func (s *Service) mutate(ctx context.Context, ac helperAuth.AuthContext, workOrderID uuid.UUID, change func(repository.Repository, *model.WorkOrderModel) error) (*dto.WorkOrderDetail, error) {
	var out *dto.WorkOrderDetail
	err := database.WithRetry(ctx, mutationAttempts, func() error {
		return s.repo.WithinTx(ctx, func(r repository.Repository) error {
			wo, err := r.LockWorkOrder(ctx, ac.SchoolID, workOrderID)
			if err != nil {
				if repository.IsNotFound(err) {
					return helper.NotFound("work order tidak ditemukan")
				}
				return errors.Wrap(err, "lock work order")
			}
			if err := change(r, wo); err != nil {
				return err
			}

			payments, err := r.ListPayments(ctx, ac.SchoolID, wo.WorkOrderID)
			if err != nil {
				return errors.Wrap(err, "list work order payments")
			}
			amounts := make([]decimal.Decimal, 0, len(payments))
			for _, p := range payments {
				amounts = append(amounts, p.WorkOrderPaymentAmount)
			}
			rec := Reconcile(wo.WorkOrderGrandTotal, amounts)
			if rec.AdvancePaid.GreaterThan(wo.WorkOrderGrandTotal) {
				configs.LogWarn(s.log, "work_orders", "mutate", "overpaid", wo.WorkOrderID.String(),
					fmt.Sprintf("paid=%s grand_total=%s", rec.AdvancePaid.StringFixed(2), wo.WorkOrderGrandTotal.StringFixed(2)))
			}
			wo.WorkOrderAdvancePaid = rec.AdvancePaid
			wo.WorkOrderBalanceAmount = rec.BalanceAmount
			wo.WorkOrderPaymentStatus = rec.PaymentStatus
			if err := r.SaveDerived(ctx, wo); err != nil {
				return errors.Wrap(err, "save work order")
			}
			lines, err := wo.Lines()
			if err != nil {
				return errors.Wrap(err, "decode work order lines")
			}
			out = &dto.WorkOrderDetail{WorkOrder: *wo, Lines: lines, Payments: payments}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
