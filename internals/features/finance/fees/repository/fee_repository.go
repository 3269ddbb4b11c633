// file: internals/features/finance/fees/repository/fee_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"schoolku_backend/internals/constants"
	database "schoolku_backend/internals/databases"
	"schoolku_backend/internals/features/finance/fees/model"
)

type FeeMasterFilter struct {
	ClassIDs  []uuid.UUID
	FeeTypeID *uuid.UUID
}

type CollectionGroupBy string

const (
	GroupByFeeType     CollectionGroupBy = "fee_type"
	GroupByPaymentMode CollectionGroupBy = "payment_mode"
	GroupByDay         CollectionGroupBy = "day"
)

type CollectionGroupRow struct {
	Key      string
	Count    int64
	Paid     decimal.Decimal
	Discount decimal.Decimal
	Fine     decimal.Decimal
}

// Repository akses data fee. Semua method wajib school-scoped; baris milik school
// lain diperlakukan sama dengan tidak ada (gorm.ErrRecordNotFound).
type Repository interface {
	// WithinTx menjalankan fn dalam satu transaksi; error apa pun = rollback semua.
	WithinTx(ctx context.Context, fn func(Repository) error) error
	// LockStudent serialisasi penagihan per siswa (advisory lock level transaksi).
	LockStudent(ctx context.Context, schoolID, studentID uuid.UUID) error

	CreateFeeType(ctx context.Context, m *model.FeeTypeModel) error
	GetFeeType(ctx context.Context, schoolID, id uuid.UUID) (*model.FeeTypeModel, error)
	ListFeeTypes(ctx context.Context, schoolID uuid.UUID) ([]model.FeeTypeModel, error)

	CreateFeeGroup(ctx context.Context, m *model.FeeGroupModel) error
	GetFeeGroup(ctx context.Context, schoolID, id uuid.UUID) (*model.FeeGroupModel, error)
	ListFeeGroups(ctx context.Context, schoolID uuid.UUID) ([]model.FeeGroupModel, error)

	CreateFeeMaster(ctx context.Context, m *model.FeeMasterModel) error
	ListFeeMasters(ctx context.Context, schoolID uuid.UUID, f FeeMasterFilter) ([]model.FeeMasterModel, error)

	CreateDiscount(ctx context.Context, m *model.FeeDiscountModel) error
	ListDiscounts(ctx context.Context, schoolID uuid.UUID) ([]model.FeeDiscountModel, error)
	GetDiscountByCode(ctx context.Context, schoolID uuid.UUID, code string) (*model.FeeDiscountModel, error)

	CreateStudentFee(ctx context.Context, m *model.StudentFeeModel) error
	ListStudentFees(ctx context.Context, schoolID uuid.UUID, studentIDs []uuid.UUID) ([]model.StudentFeeModel, error)
	ListStudentFeesByTransaction(ctx context.Context, schoolID uuid.UUID, transactionID string) ([]model.StudentFeeModel, error)
	SumCollections(ctx context.Context, schoolID uuid.UUID, from, until *time.Time, groupBy CollectionGroupBy) ([]CollectionGroupRow, error)
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

func (r *gormRepository) LockStudent(ctx context.Context, schoolID, studentID uuid.UUID) error {
	return database.AdvisoryXactLock(r.db.WithContext(ctx), "student_fees:"+schoolID.String()+":"+studentID.String())
}

func (r *gormRepository) CreateFeeType(ctx context.Context, m *model.FeeTypeModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormRepository) GetFeeType(ctx context.Context, schoolID, id uuid.UUID) (*model.FeeTypeModel, error) {
	var m model.FeeTypeModel
	if err := r.db.WithContext(ctx).
		Where("fee_type_school_id = ? AND fee_type_id = ? AND fee_type_lifecycle = ?", schoolID, id, constants.LifecycleActive).
		Take(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormRepository) ListFeeTypes(ctx context.Context, schoolID uuid.UUID) ([]model.FeeTypeModel, error) {
	var rows []model.FeeTypeModel
	err := r.db.WithContext(ctx).
		Where("fee_type_school_id = ? AND fee_type_lifecycle = ?", schoolID, constants.LifecycleActive).
		Order("fee_type_name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *gormRepository) CreateFeeGroup(ctx context.Context, m *model.FeeGroupModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormRepository) GetFeeGroup(ctx context.Context, schoolID, id uuid.UUID) (*model.FeeGroupModel, error) {
	var m model.FeeGroupModel
	if err := r.db.WithContext(ctx).
		Where("fee_group_school_id = ? AND fee_group_id = ? AND fee_group_lifecycle = ?", schoolID, id, constants.LifecycleActive).
		Take(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormRepository) ListFeeGroups(ctx context.Context, schoolID uuid.UUID) ([]model.FeeGroupModel, error) {
	var rows []model.FeeGroupModel
	err := r.db.WithContext(ctx).
		Where("fee_group_school_id = ? AND fee_group_lifecycle = ?", schoolID, constants.LifecycleActive).
		Order("fee_group_name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *gormRepository) CreateFeeMaster(ctx context.Context, m *model.FeeMasterModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormRepository) ListFeeMasters(ctx context.Context, schoolID uuid.UUID, f FeeMasterFilter) ([]model.FeeMasterModel, error) {
	q := r.db.WithContext(ctx).
		Where("fee_master_school_id = ? AND fee_master_lifecycle = ?", schoolID, constants.LifecycleActive)
	if len(f.ClassIDs) > 0 {
		q = q.Where("fee_master_class_id IN ?", f.ClassIDs)
	}
	if f.FeeTypeID != nil {
		q = q.Where("fee_master_fee_type_id = ?", *f.FeeTypeID)
	}
	var rows []model.FeeMasterModel
	err := q.Order("fee_master_due_date ASC NULLS LAST, fee_master_fee_type_name ASC, fee_master_id ASC").Find(&rows).Error
	return rows, err
}

func (r *gormRepository) CreateDiscount(ctx context.Context, m *model.FeeDiscountModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormRepository) ListDiscounts(ctx context.Context, schoolID uuid.UUID) ([]model.FeeDiscountModel, error) {
	var rows []model.FeeDiscountModel
	err := r.db.WithContext(ctx).
		Where("fee_discount_school_id = ? AND fee_discount_lifecycle = ?", schoolID, constants.LifecycleActive).
		Order("fee_discount_code ASC").
		Find(&rows).Error
	return rows, err
}

func (r *gormRepository) GetDiscountByCode(ctx context.Context, schoolID uuid.UUID, code string) (*model.FeeDiscountModel, error) {
	var m model.FeeDiscountModel
	if err := r.db.WithContext(ctx).
		Where("fee_discount_school_id = ? AND fee_discount_code = ? AND fee_discount_lifecycle = ?", schoolID, code, constants.LifecycleActive).
		Take(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormRepository) CreateStudentFee(ctx context.Context, m *model.StudentFeeModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormRepository) ListStudentFees(ctx context.Context, schoolID uuid.UUID, studentIDs []uuid.UUID) ([]model.StudentFeeModel, error) {
	if len(studentIDs) == 0 {
		return []model.StudentFeeModel{}, nil
	}
	var rows []model.StudentFeeModel
	err := r.db.WithContext(ctx).
		Where("student_fee_school_id = ? AND student_fee_student_id IN ?", schoolID, studentIDs).
		Order("student_fee_paid_date ASC, student_fee_created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *gormRepository) ListStudentFeesByTransaction(ctx context.Context, schoolID uuid.UUID, transactionID string) ([]model.StudentFeeModel, error) {
	var rows []model.StudentFeeModel
	err := r.db.WithContext(ctx).
		Where("student_fee_school_id = ? AND student_fee_transaction_id = ?", schoolID, transactionID).
		Order("student_fee_created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *gormRepository) SumCollections(ctx context.Context, schoolID uuid.UUID, from, until *time.Time, groupBy CollectionGroupBy) ([]CollectionGroupRow, error) {
	keyExpr := "''"
	switch groupBy {
	case GroupByFeeType:
		keyExpr = "student_fee_fee_type_name"
	case GroupByPaymentMode:
		keyExpr = "student_fee_payment_mode"
	case GroupByDay:
		keyExpr = "to_char(student_fee_paid_date AT TIME ZONE 'UTC', 'YYYY-MM-DD')"
	}

	q := r.db.WithContext(ctx).
		Model(&model.StudentFeeModel{}).
		Select(keyExpr+` AS key,
			COUNT(*) AS count,
			COALESCE(SUM(student_fee_paid_amount), 0) AS paid,
			COALESCE(SUM(student_fee_discount_amount), 0) AS discount,
			COALESCE(SUM(student_fee_fine_amount), 0) AS fine`).
		Where("student_fee_school_id = ? AND student_fee_status = ?", schoolID, model.StudentFeePaid)
	if from != nil {
		q = q.Where("student_fee_paid_date >= ?", *from)
	}
	if until != nil {
		q = q.Where("student_fee_paid_date < ?", *until)
	}
	if keyExpr != "''" {
		q = q.Group(keyExpr).Order("key ASC")
	}

	var rows []CollectionGroupRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
