// file: internals/features/inventory/items/repository/item_repository.go
package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolku_backend/internals/constants"
	"schoolku_backend/internals/features/inventory/items/dto"
	"schoolku_backend/internals/features/inventory/items/model"
)

// Repository akses data inventory. Perubahan item_quantity hanya di dalam WithinTx
// setelah LockItems.
type Repository interface {
	WithinTx(ctx context.Context, fn func(Repository) error) error

	CreateItem(ctx context.Context, m *model.ItemModel) error
	GetItem(ctx context.Context, schoolID, itemID uuid.UUID) (*model.ItemModel, error)
	ListItems(ctx context.Context, schoolID uuid.UUID, f dto.ItemFilter, offset, limit int) ([]model.ItemModel, int64, error)
	// LockItems: SELECT ... FOR UPDATE urut item_id ASC. Semua id harus ada.
	LockItems(ctx context.Context, schoolID uuid.UUID, ids []uuid.UUID) ([]model.ItemModel, error)
	SaveItemStock(ctx context.Context, m *model.ItemModel) error
	CountLowStock(ctx context.Context, schoolID uuid.UUID) (int64, error)

	CreateStock(ctx context.Context, m *model.ItemStockModel) error
	// LockStock hanya entry yang belum dihapus.
	LockStock(ctx context.Context, schoolID, stockID uuid.UUID) (*model.ItemStockModel, error)
	SoftDeleteStock(ctx context.Context, m *model.ItemStockModel) error

	CreateTransaction(ctx context.Context, t *model.ItemTransactionModel) error
	// ListTransactions urut date DESC, no DESC.
	ListTransactions(ctx context.Context, schoolID uuid.UUID, f dto.TransactionFilter, offset, limit int) ([]model.ItemTransactionModel, int64, error)
	LedgerSum(ctx context.Context, schoolID, itemID uuid.UUID) (sum int64, count int64, err error)

	CreateIssue(ctx context.Context, m *model.ItemIssueModel) error
	CreateSale(ctx context.Context, m *model.ItemSaleModel) error
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// SortedIDs unik + urut, supaya urutan lock selalu sama di semua request.
func SortedIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
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

func (r *gormRepository) CreateItem(ctx context.Context, m *model.ItemModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormRepository) GetItem(ctx context.Context, schoolID, itemID uuid.UUID) (*model.ItemModel, error) {
	var m model.ItemModel
	if err := r.db.WithContext(ctx).
		Where("item_school_id = ? AND item_id = ? AND item_lifecycle <> ?", schoolID, itemID, constants.LifecycleDeleted).
		Take(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormRepository) applyItemFilter(q *gorm.DB, schoolID uuid.UUID, f dto.ItemFilter) *gorm.DB {
	q = q.Where("item_school_id = ? AND item_lifecycle = ?", schoolID, constants.LifecycleActive)
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(item_name) LIKE ? OR LOWER(COALESCE(item_code, '')) LIKE ?)", like, like)
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		q = q.Where("item_category = ?", c)
	}
	if f.LowStockOnly {
		q = q.Where("item_quantity <= item_reorder_level")
	}
	return q
}

func (r *gormRepository) ListItems(ctx context.Context, schoolID uuid.UUID, f dto.ItemFilter, offset, limit int) ([]model.ItemModel, int64, error) {
	var total int64
	if err := r.applyItemFilter(r.db.WithContext(ctx).Model(&model.ItemModel{}), schoolID, f).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.ItemModel
	q := r.applyItemFilter(r.db.WithContext(ctx), schoolID, f).
		Order("item_name ASC").
		Order("item_id ASC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *gormRepository) LockItems(ctx context.Context, schoolID uuid.UUID, ids []uuid.UUID) ([]model.ItemModel, error) {
	ids = SortedIDs(ids)
	var rows []model.ItemModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_school_id = ? AND item_id IN ? AND item_lifecycle <> ?", schoolID, ids, constants.LifecycleDeleted).
		Order("item_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) != len(ids) {
		return nil, gorm.ErrRecordNotFound
	}
	return rows, nil
}

func (r *gormRepository) SaveItemStock(ctx context.Context, m *model.ItemModel) error {
	return r.db.WithContext(ctx).
		Model(&model.ItemModel{}).
		Where("item_id = ? AND item_school_id = ?", m.ItemID, m.ItemSchoolID).
		Updates(map[string]any{
			"item_quantity":       m.ItemQuantity,
			"item_purchase_price": m.ItemPurchasePrice,
			"item_updated_at":     time.Now(),
		}).Error
}

func (r *gormRepository) CountLowStock(ctx context.Context, schoolID uuid.UUID) (int64, error) {
	var n int64
	err := r.applyItemFilter(r.db.WithContext(ctx).Model(&model.ItemModel{}), schoolID, dto.ItemFilter{LowStockOnly: true}).
		Count(&n).Error
	return n, err
}

func (r *gormRepository) CreateStock(ctx context.Context, m *model.ItemStockModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormRepository) LockStock(ctx context.Context, schoolID, stockID uuid.UUID) (*model.ItemStockModel, error) {
	var m model.ItemStockModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_stock_school_id = ? AND item_stock_id = ?", schoolID, stockID).
		Take(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormRepository) SoftDeleteStock(ctx context.Context, m *model.ItemStockModel) error {
	res := r.db.WithContext(ctx).
		Where("item_stock_school_id = ? AND item_stock_id = ?", m.ItemStockSchoolID, m.ItemStockID).
		Delete(&model.ItemStockModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormRepository) CreateTransaction(ctx context.Context, t *model.ItemTransactionModel) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *gormRepository) applyTxFilter(q *gorm.DB, schoolID uuid.UUID, f dto.TransactionFilter) *gorm.DB {
	q = q.Where("item_transaction_school_id = ?", schoolID)
	if f.ItemID != nil {
		q = q.Where("item_transaction_item_id = ?", *f.ItemID)
	}
	if f.Kind != "" {
		q = q.Where("item_transaction_kind = ?", f.Kind)
	}
	if f.From != nil {
		q = q.Where("item_transaction_date >= ?", *f.From)
	}
	if f.Until != nil {
		q = q.Where("item_transaction_date < ?", *f.Until)
	}
	return q
}

func (r *gormRepository) ListTransactions(ctx context.Context, schoolID uuid.UUID, f dto.TransactionFilter, offset, limit int) ([]model.ItemTransactionModel, int64, error) {
	var total int64
	if err := r.applyTxFilter(r.db.WithContext(ctx).Model(&model.ItemTransactionModel{}), schoolID, f).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.ItemTransactionModel
	q := r.applyTxFilter(r.db.WithContext(ctx), schoolID, f).
		Order("item_transaction_date DESC").
		Order("item_transaction_no DESC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *gormRepository) LedgerSum(ctx context.Context, schoolID, itemID uuid.UUID) (int64, int64, error) {
	var row struct {
		Sum   int64
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.ItemTransactionModel{}).
		Select("COALESCE(SUM(item_transaction_delta), 0) AS sum, COUNT(*) AS count").
		Where("item_transaction_school_id = ? AND item_transaction_item_id = ?", schoolID, itemID).
		Scan(&row).Error
	return row.Sum, row.Count, err
}

func (r *gormRepository) CreateIssue(ctx context.Context, m *model.ItemIssueModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormRepository) CreateSale(ctx context.Context, m *model.ItemSaleModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}
