// file: internals/features/procurement/work_orders/repository/work_order_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolku_backend/internals/constants"
	"schoolku_backend/internals/features/procurement/work_orders/model"
)

type OpenBalanceRow struct {
	Count   int64
	Balance decimal.Decimal
}

type Repository interface {
	WithinTx(ctx context.Context, fn func(Repository) error) error

	CreateWorkOrder(ctx context.Context, m *model.WorkOrderModel) error
	GetWorkOrder(ctx context.Context, schoolID, id uuid.UUID) (*model.WorkOrderModel, error)
	// LockWorkOrder: SELECT ... FOR UPDATE
	LockWorkOrder(ctx context.Context, schoolID, id uuid.UUID) (*model.WorkOrderModel, error)
	// SaveDerived hanya menulis kolom hasil rekonsiliasi.
	SaveDerived(ctx context.Context, m *model.WorkOrderModel) error
	ListWorkOrders(ctx context.Context, schoolID uuid.UUID, status model.PaymentStatus, offset, limit int) ([]model.WorkOrderModel, int64, error)
	OpenBalance(ctx context.Context, schoolID uuid.UUID) (OpenBalanceRow, error)

	CreatePayment(ctx context.Context, p *model.WorkOrderPaymentModel) error
	DeletePayment(ctx context.Context, schoolID, workOrderID, paymentID uuid.UUID) error
	// ListPayments urut paid_at ASC.
	ListPayments(ctx context.Context, schoolID, workOrderID uuid.UUID) ([]model.WorkOrderPaymentModel, error)
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

/* ===============================
   GORM
=================================*/

type gormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) WithinTx(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) CreateWorkOrder(ctx context.Context, m *model.WorkOrderModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormRepository) scope(ctx context.Context, schoolID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("work_order_school_id = ? AND work_order_lifecycle <> ?", schoolID, constants.LifecycleDeleted)
}

func (r *gormRepository) GetWorkOrder(ctx context.Context, schoolID, id uuid.UUID) (*model.WorkOrderModel, error) {
	var m model.WorkOrderModel
	if err := r.scope(ctx, schoolID).Where("work_order_id = ?", id).Take(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormRepository) LockWorkOrder(ctx context.Context, schoolID, id uuid.UUID) (*model.WorkOrderModel, error) {
	var m model.WorkOrderModel
	if err := r.scope(ctx, schoolID).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("work_order_id = ?", id).
		Take(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormRepository) SaveDerived(ctx context.Context, m *model.WorkOrderModel) error {
	return r.db.WithContext(ctx).
		Model(&model.WorkOrderModel{}).
		Where("work_order_id = ? AND work_order_school_id = ?", m.WorkOrderID, m.WorkOrderSchoolID).
		Updates(map[string]any{
			"work_order_advance_paid":   m.WorkOrderAdvancePaid,
			"work_order_balance_amount": m.WorkOrderBalanceAmount,
			"work_order_payment_status": m.WorkOrderPaymentStatus,
			"work_order_updated_at":     time.Now(),
		}).Error
}

func (r *gormRepository) ListWorkOrders(ctx context.Context, schoolID uuid.UUID, status model.PaymentStatus, offset, limit int) ([]model.WorkOrderModel, int64, error) {
	base := func() *gorm.DB {
		q := r.scope(ctx, schoolID).Model(&model.WorkOrderModel{})
		if status != "" {
			q = q.Where("work_order_payment_status = ?", status)
		}
		return q
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.WorkOrderModel
	q := base().Order("work_order_created_at DESC").Order("work_order_id ASC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *gormRepository) OpenBalance(ctx context.Context, schoolID uuid.UUID) (OpenBalanceRow, error) {
	var row OpenBalanceRow
	err := r.scope(ctx, schoolID).
		Model(&model.WorkOrderModel{}).
		Select("COUNT(*) AS count, COALESCE(SUM(work_order_balance_amount), 0) AS balance").
		Where("work_order_payment_status <> ?", model.PaymentPaid).
		Scan(&row).Error
	return row, err
}

func (r *gormRepository) CreatePayment(ctx context.Context, p *model.WorkOrderPaymentModel) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *gormRepository) DeletePayment(ctx context.Context, schoolID, workOrderID, paymentID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("work_order_payment_school_id = ? AND work_order_payment_work_order_id = ? AND work_order_payment_id = ?",
			schoolID, workOrderID, paymentID).
		Delete(&model.WorkOrderPaymentModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormRepository) ListPayments(ctx context.Context, schoolID, workOrderID uuid.UUID) ([]model.WorkOrderPaymentModel, error) {
	var rows []model.WorkOrderPaymentModel
	err := r.db.WithContext(ctx).
		Where("work_order_payment_school_id = ? AND work_order_payment_work_order_id = ?", schoolID, workOrderID).
		Order("work_order_payment_paid_at ASC").
		Order("work_order_payment_created_at ASC").
		Find(&rows).Error
	return rows, err
}
