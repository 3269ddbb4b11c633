// file: internals/features/finance/wallets/repository/wallet_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	database "schoolku_backend/internals/databases"
	"schoolku_backend/internals/features/finance/wallets/dto"
	"schoolku_backend/internals/features/finance/wallets/model"
)

type CategoryRow struct {
	Type     model.TransactionType
	Category string
	Count    int64
	Amount   decimal.Decimal
}

type Totals struct {
	Wallets int64
	Active  int64
	Balance decimal.Decimal
}

// Repository akses data wallet. Method mutasi saldo hanya dipanggil di dalam WithinTx
// setelah LockWallet.
type Repository interface {
	WithinTx(ctx context.Context, fn func(Repository) error) error

	GetWallet(ctx context.Context, schoolID, studentID uuid.UUID) (*model.WalletModel, error)
	// LockWallet: SELECT ... FOR UPDATE
	LockWallet(ctx context.Context, schoolID, studentID uuid.UUID) (*model.WalletModel, error)
	CreateWallet(ctx context.Context, w *model.WalletModel) error
	SaveWallet(ctx context.Context, w *model.WalletModel) error
	WalletTotals(ctx context.Context, schoolID uuid.UUID) (Totals, error)

	CreateTransaction(ctx context.Context, t *model.WalletTransactionModel) error
	// ListTransactions urut date DESC, no DESC (total order yang stabil untuk paging).
	ListTransactions(ctx context.Context, schoolID uuid.UUID, f dto.TransactionFilter, offset, limit int) ([]model.WalletTransactionModel, int64, error)
	// AllTransactions semua transaksi satu wallet urut seq ASC (untuk replay).
	AllTransactions(ctx context.Context, schoolID, walletID uuid.UUID) ([]model.WalletTransactionModel, error)
	CategorySummary(ctx context.Context, schoolID uuid.UUID, from, until *time.Time) ([]CategoryRow, error)

	CreateRecharge(ctx context.Context, r *model.WalletRechargeModel) error
	SaveRecharge(ctx context.Context, r *model.WalletRechargeModel) error
	// LockRechargeByOrderID lintas tenant (dipanggil webhook gateway).
	LockRechargeByOrderID(ctx context.Context, orderID string) (*model.WalletRechargeModel, error)
	ListRecharges(ctx context.Context, schoolID, studentID uuid.UUID, limit int) ([]model.WalletRechargeModel, error)
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

func (r *gormRepository) GetWallet(ctx context.Context, schoolID, studentID uuid.UUID) (*model.WalletModel, error) {
	var w model.WalletModel
	if err := r.db.WithContext(ctx).
		Where("wallet_school_id = ? AND wallet_student_id = ?", schoolID, studentID).
		Take(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *gormRepository) LockWallet(ctx context.Context, schoolID, studentID uuid.UUID) (*model.WalletModel, error) {
	var w model.WalletModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("wallet_school_id = ? AND wallet_student_id = ?", schoolID, studentID).
		Take(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *gormRepository) CreateWallet(ctx context.Context, w *model.WalletModel) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *gormRepository) SaveWallet(ctx context.Context, w *model.WalletModel) error {
	return r.db.WithContext(ctx).
		Model(&model.WalletModel{}).
		Where("wallet_id = ? AND wallet_school_id = ?", w.WalletID, w.WalletSchoolID).
		Updates(map[string]any{
			"wallet_balance":           w.WalletBalance,
			"wallet_status":            w.WalletStatus,
			"wallet_transaction_count": w.WalletTransactionCount,
			"wallet_updated_at":        time.Now(),
		}).Error
}

func (r *gormRepository) WalletTotals(ctx context.Context, schoolID uuid.UUID) (Totals, error) {
	var row struct {
		Wallets int64
		Active  int64
		Balance decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&model.WalletModel{}).
		Select(`COUNT(*) AS wallets,
			COUNT(*) FILTER (WHERE wallet_status = ?) AS active,
			COALESCE(SUM(wallet_balance), 0) AS balance`, model.WalletActive).
		Where("wallet_school_id = ?", schoolID).
		Scan(&row).Error
	return Totals{Wallets: row.Wallets, Active: row.Active, Balance: row.Balance}, err
}

func (r *gormRepository) CreateTransaction(ctx context.Context, t *model.WalletTransactionModel) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *gormRepository) applyTxFilter(q *gorm.DB, schoolID uuid.UUID, f dto.TransactionFilter) *gorm.DB {
	q = q.Where("wallet_transaction_school_id = ?", schoolID)
	if f.StudentID != nil {
		q = q.Where("wallet_transaction_student_id = ?", *f.StudentID)
	}
	if f.Type != "" {
		q = q.Where("wallet_transaction_type = ?", f.Type)
	}
	if f.Category != "" {
		q = q.Where("wallet_transaction_category = ?", f.Category)
	}
	if f.From != nil {
		q = q.Where("wallet_transaction_date >= ?", *f.From)
	}
	if f.Until != nil {
		q = q.Where("wallet_transaction_date < ?", *f.Until)
	}
	return q
}

func (r *gormRepository) ListTransactions(ctx context.Context, schoolID uuid.UUID, f dto.TransactionFilter, offset, limit int) ([]model.WalletTransactionModel, int64, error) {
	var total int64
	base := r.applyTxFilter(r.db.WithContext(ctx).Model(&model.WalletTransactionModel{}), schoolID, f)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.WalletTransactionModel
	q := r.applyTxFilter(r.db.WithContext(ctx), schoolID, f).
		Order("wallet_transaction_date DESC").
		Order("wallet_transaction_no DESC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *gormRepository) AllTransactions(ctx context.Context, schoolID, walletID uuid.UUID) ([]model.WalletTransactionModel, error) {
	var rows []model.WalletTransactionModel
	err := r.db.WithContext(ctx).
		Where("wallet_transaction_school_id = ? AND wallet_transaction_wallet_id = ?", schoolID, walletID).
		Order("wallet_transaction_seq ASC").
		Find(&rows).Error
	return rows, err
}

func (r *gormRepository) CategorySummary(ctx context.Context, schoolID uuid.UUID, from, until *time.Time) ([]CategoryRow, error) {
	q := r.applyTxFilter(r.db.WithContext(ctx).Model(&model.WalletTransactionModel{}), schoolID, dto.TransactionFilter{From: from, Until: until})
	var rows []CategoryRow
	err := q.Select(`wallet_transaction_type AS type,
			wallet_transaction_category AS category,
			COUNT(*) AS count,
			COALESCE(SUM(wallet_transaction_amount), 0) AS amount`).
		Group("wallet_transaction_type, wallet_transaction_category").
		Order("wallet_transaction_type ASC, wallet_transaction_category ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *gormRepository) CreateRecharge(ctx context.Context, m *model.WalletRechargeModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormRepository) SaveRecharge(ctx context.Context, m *model.WalletRechargeModel) error {
	return r.db.WithContext(database.WithoutTenantScope(ctx)).Save(m).Error
}

func (r *gormRepository) LockRechargeByOrderID(ctx context.Context, orderID string) (*model.WalletRechargeModel, error) {
	var m model.WalletRechargeModel
	if err := r.db.WithContext(database.WithoutTenantScope(ctx)).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("wallet_recharge_order_id = ?", orderID).
		Take(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormRepository) ListRecharges(ctx context.Context, schoolID, studentID uuid.UUID, limit int) ([]model.WalletRechargeModel, error) {
	var rows []model.WalletRechargeModel
	q := r.db.WithContext(ctx).
		Where("wallet_recharge_school_id = ? AND wallet_recharge_student_id = ?", schoolID, studentID).
		Order("wallet_recharge_created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	return rows, err
}
