// file: internals/features/inventory/items/service/item_service.go
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"schoolku_backend/internals/configs"
	"schoolku_backend/internals/constants"
	database "schoolku_backend/internals/databases"
	"schoolku_backend/internals/features/inventory/items/dto"
	"schoolku_backend/internals/features/inventory/items/model"
	"schoolku_backend/internals/features/inventory/items/repository"
	studentRepo "schoolku_backend/internals/features/school/students/repository"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

const (
	mutationAttempts = 3
	defaultUnit      = "pcs"
)

// Service ledger stok barang. item_quantity hanya berubah lewat applyDelta,
// selalu bersama satu baris item_transactions di transaksi yang sama.
type Service struct {
	repo     repository.Repository
	students studentRepo.Directory
	now      func() time.Time
	log      *logrus.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo repository.Repository, students studentRepo.Directory, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		students: students,
		now:      time.Now,
		log:      configs.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

/* ===============================
   Katalog item
=================================*/

func (s *Service) CreateItem(ctx context.Context, ac helperAuth.AuthContext, req dto.CreateItemRequest) (*model.ItemModel, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, helper.Validation("nama item wajib diisi")
	}
	if req.ReorderLevel < 0 {
		return nil, helper.Validation("reorder_level tidak boleh negatif")
	}
	if req.PurchasePrice.IsNegative() || req.SalePrice.IsNegative() {
		return nil, helper.Validation("harga tidak boleh negatif")
	}
	unit := strings.ToLower(strings.TrimSpace(req.Unit))
	if unit == "" {
		unit = defaultUnit
	}

	it := &model.ItemModel{
		ItemSchoolID:      ac.SchoolID,
		ItemName:          name,
		ItemCode:          req.Code,
		ItemUnit:          unit,
		ItemCategory:      req.Category,
		ItemReorderLevel:  req.ReorderLevel,
		ItemPurchasePrice: req.PurchasePrice.Round(2),
		ItemSalePrice:     req.SalePrice.Round(2),
		ItemLifecycle:     constants.LifecycleActive,
	}
	if err := s.repo.CreateItem(ctx, it); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, helper.Conflict("item %q sudah ada", name)
		}
		return nil, errors.Wrap(err, "create item")
	}
	return it, nil
}

func (s *Service) GetItem(ctx context.Context, ac helperAuth.AuthContext, itemID uuid.UUID) (*model.ItemModel, error) {
	it, err := s.repo.GetItem(ctx, ac.SchoolID, itemID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, helper.NotFound("item tidak ditemukan")
		}
		return nil, errors.Wrap(err, "get item")
	}
	return it, nil
}

func (s *Service) ListItems(ctx context.Context, ac helperAuth.AuthContext, f dto.ItemFilter, p helper.Paging) ([]model.ItemModel, int64, error) {
	rows, total, err := s.repo.ListItems(ctx, ac.SchoolID, f, p.Offset, p.Limit)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list items")
	}
	return rows, total, nil
}

// LowStock item dengan quantity <= reorder_level.
func (s *Service) LowStock(ctx context.Context, ac helperAuth.AuthContext, p helper.Paging) ([]model.ItemModel, int64, error) {
	return s.ListItems(ctx, ac, dto.ItemFilter{LowStockOnly: true}, p)
}

func (s *Service) CountLowStock(ctx context.Context, ac helperAuth.AuthContext) (int64, error) {
	n, err := s.repo.CountLowStock(ctx, ac.SchoolID)
	if err != nil {
		return 0, errors.Wrap(err, "count low stock")
	}
	return n, nil
}

func (s *Service) ListTransactions(ctx context.Context, ac helperAuth.AuthContext, f dto.TransactionFilter, p helper.Paging) ([]model.ItemTransactionModel, int64, error) {
	if f.Kind != "" && !f.Kind.Valid() {
		return nil, 0, helper.Validation("kind transaksi tidak valid")
	}
	if f.ItemID != nil {
		if _, err := s.GetItem(ctx, ac, *f.ItemID); err != nil {
			return nil, 0, err
		}
	}
	rows, total, err := s.repo.ListTransactions(ctx, ac.SchoolID, f, p.Offset, p.Limit)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list item transactions")
	}
	return rows, total, nil
}

// VerifyItem cek Σ delta == quantity tersimpan.
func (s *Service) VerifyItem(ctx context.Context, ac helperAuth.AuthContext, itemID uuid.UUID) (*dto.ItemVerification, error) {
	it, err := s.GetItem(ctx, ac, itemID)
	if err != nil {
		return nil, err
	}
	sum, count, err := s.repo.LedgerSum(ctx, ac.SchoolID, itemID)
	if err != nil {
		return nil, errors.Wrap(err, "item ledger sum")
	}
	out := &dto.ItemVerification{
		ItemID:           itemID,
		StoredQuantity:   it.ItemQuantity,
		LedgerQuantity:   sum,
		TransactionCount: count,
		Consistent:       sum == it.ItemQuantity && it.ItemQuantity >= 0,
	}
	if !out.Consistent {
		configs.LogWarn(s.log, "inventory", "VerifyItem", "ledger mismatch", itemID.String(),
			"stored quantity tidak sama dengan jumlah delta")
	}
	return out, nil
}

/* ===============================
   Party
=================================*/

// resolveParty validasi bentuk party; party student wajib ada di sekolah yang sama.
func (s *Service) resolveParty(ctx context.Context, ac helperAuth.AuthContext, p model.Party, role string) (model.Party, error) {
	p = p.Normalize()
	if !p.Valid() {
		return model.Party{}, helper.Validation("%s tidak valid: student/staff wajib id, external wajib name", role)
	}
	if p.Kind == model.PartyStudent {
		if _, err := s.students.GetStudent(ctx, ac.SchoolID, *p.ID); err != nil {
			if studentRepo.IsNotFound(err) {
				return model.Party{}, helper.NotFound("siswa %s tidak ditemukan", role)
			}
			return model.Party{}, errors.Wrap(err, "get student")
		}
	}
	return p, nil
}

func roundPrice(d decimal.Decimal) decimal.Decimal { return d.Round(2) }
