// file: internals/features/inventory/items/service/item_stock_service.go
package service

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"schoolku_backend/internals/configs"
	database "schoolku_backend/internals/databases"
	"schoolku_backend/internals/features/inventory/items/dto"
	"schoolku_backend/internals/features/inventory/items/model"
	"schoolku_backend/internals/features/inventory/items/repository"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

type movement struct {
	kind    model.TransactionKind
	delta   int64
	refType string
	refID   *uuid.UUID
	party   model.Party
	note    *string
	actor   *uuid.UUID
}

// applyDelta: it wajib sudah di-lock di r. Stok negatif ditolak sebelum ada yang ditulis.
func (s *Service) applyDelta(ctx context.Context, r repository.Repository, it *model.ItemModel, mv movement) (*model.ItemTransactionModel, error) {
	prev := it.ItemQuantity
	if mv.delta > 0 && prev > math.MaxInt64-mv.delta {
		return nil, helper.Validation("quantity %s melebihi batas maksimum", it.ItemName)
	}
	next := prev + mv.delta
	if next < 0 {
		return nil, helper.ErrInsufficientStock.WithMessage("stok %s tinggal %d, butuh %d", it.ItemName, prev, -mv.delta)
	}

	tx := &model.ItemTransactionModel{
		ItemTransactionSchoolID:      it.ItemSchoolID,
		ItemTransactionItemID:        it.ItemID,
		ItemTransactionKind:          mv.kind,
		ItemTransactionDelta:         mv.delta,
		ItemTransactionPreviousStock: prev,
		ItemTransactionCurrentStock:  next,
		ItemTransactionReferenceID:   mv.refID,
		ItemTransactionParty:         mv.party,
		ItemTransactionPerformedBy:   mv.actor,
		ItemTransactionNote:          mv.note,
		ItemTransactionDate:          s.now(),
	}
	if mv.refType != "" {
		ref := mv.refType
		tx.ItemTransactionReferenceType = &ref
	}
	if err := r.CreateTransaction(ctx, tx); err != nil {
		return nil, errors.Wrap(err, "create item transaction")
	}

	it.ItemQuantity = next
	if err := r.SaveItemStock(ctx, it); err != nil {
		return nil, errors.Wrap(err, "save item stock")
	}
	return tx, nil
}

func (s *Service) lockOne(ctx context.Context, r repository.Repository, ac helperAuth.AuthContext, itemID uuid.UUID) (*model.ItemModel, error) {
	rows, err := r.LockItems(ctx, ac.SchoolID, []uuid.UUID{itemID})
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, helper.NotFound("item tidak ditemukan")
		}
		return nil, errors.Wrap(err, "lock item")
	}
	return &rows[0], nil
}

/* ===============================
   Pembelian (stock entry)
=================================*/

func (s *Service) AddStock(ctx context.Context, ac helperAuth.AuthContext, itemID uuid.UUID, req dto.AddStockRequest) (*dto.StockResult, error) {
	if req.Quantity <= 0 {
		return nil, helper.ErrInvalidAmount.WithMessage("quantity harus lebih dari 0")
	}
	if req.PurchasePrice.IsNegative() {
		return nil, helper.Validation("purchase_price tidak boleh negatif")
	}
	date := s.now()
	if req.Date != nil && !req.Date.IsZero() {
		date = *req.Date
	}

	var out *dto.StockResult
	err := database.WithRetry(ctx, mutationAttempts, func() error {
		return s.repo.WithinTx(ctx, func(r repository.Repository) error {
			it, err := s.lockOne(ctx, r, ac, itemID)
			if err != nil {
				return err
			}
			stock := &model.ItemStockModel{
				ItemStockID:            uuid.New(),
				ItemStockSchoolID:      ac.SchoolID,
				ItemStockItemID:        it.ItemID,
				ItemStockQuantity:      req.Quantity,
				ItemStockPurchasePrice: roundPrice(req.PurchasePrice),
				ItemStockSupplier:      req.Supplier,
				ItemStockNote:          req.Note,
				ItemStockDate:          date,
				ItemStockCreatedBy:     ac.ActorID(),
			}
			if err := r.CreateStock(ctx, stock); err != nil {
				return errors.Wrap(err, "create item stock")
			}
			// harga beli item = harga entry terakhir
			it.ItemPurchasePrice = stock.ItemStockPurchasePrice
			tx, err := s.applyDelta(ctx, r, it, movement{
				kind:    model.KindPurchase,
				delta:   req.Quantity,
				refType: model.RefItemStock,
				refID:   &stock.ItemStockID,
				note:    req.Note,
				actor:   ac.ActorID(),
			})
			if err != nil {
				return err
			}
			out = &dto.StockResult{Item: *it, Stock: stock, Transaction: *tx}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteStockEntry membatalkan entry pembelian. Kalau stok sudah terpakai
// (quantity < entry) ditolak, tidak ada yang berubah.
func (s *Service) DeleteStockEntry(ctx context.Context, ac helperAuth.AuthContext, stockID uuid.UUID) (*dto.StockResult, error) {
	var out *dto.StockResult
	err := s.repo.WithinTx(ctx, func(r repository.Repository) error {
		stock, err := r.LockStock(ctx, ac.SchoolID, stockID)
		if err != nil {
			if repository.IsNotFound(err) {
				return helper.NotFound("entry stok tidak ditemukan")
			}
			return errors.Wrap(err, "lock item stock")
		}
		it, err := s.lockOne(ctx, r, ac, stock.ItemStockItemID)
		if err != nil {
			return err
		}
		if it.ItemQuantity < stock.ItemStockQuantity {
			configs.LogWarn(s.log, "inventory", "DeleteStockEntry", "stock already consumed", stockID.String(),
				fmt.Sprintf("item=%s quantity=%d entry=%d", it.ItemID, it.ItemQuantity, stock.ItemStockQuantity))
			return helper.ErrInsufficientStock.WithMessage(
				"entry tidak bisa dibatalkan: stok %s tinggal %d, entry %d sudah terpakai",
				it.ItemName, it.ItemQuantity, stock.ItemStockQuantity)
		}
		tx, err := s.applyDelta(ctx, r, it, movement{
			kind:    model.KindPurchaseReversal,
			delta:   -stock.ItemStockQuantity,
			refType: model.RefItemStock,
			refID:   &stock.ItemStockID,
			actor:   ac.ActorID(),
		})
		if err != nil {
			return err
		}
		if err := r.SoftDeleteStock(ctx, stock); err != nil {
			return errors.Wrap(err, "delete item stock")
		}
		out = &dto.StockResult{Item: *it, Stock: stock, Transaction: *tx}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

/* ===============================
   Penyesuaian stok
=================================*/

func (s *Service) StockInOut(ctx context.Context, ac helperAuth.AuthContext, itemID uuid.UUID, req dto.AdjustRequest) (*dto.StockResult, error) {
	if req.Quantity <= 0 {
		return nil, helper.ErrInvalidAmount.WithMessage("quantity harus lebih dari 0")
	}
	mv := movement{note: req.Note, actor: ac.ActorID()}
	switch req.Direction {
	case dto.DirectionIn:
		mv.kind, mv.delta = model.KindStockIn, req.Quantity
	case dto.DirectionOut:
		mv.kind, mv.delta = model.KindStockOut, -req.Quantity
	default:
		return nil, helper.Validation("direction harus in atau out")
	}

	var out *dto.StockResult
	err := database.WithRetry(ctx, mutationAttempts, func() error {
		return s.repo.WithinTx(ctx, func(r repository.Repository) error {
			it, err := s.lockOne(ctx, r, ac, itemID)
			if err != nil {
				return err
			}
			tx, err := s.applyDelta(ctx, r, it, mv)
			if err != nil {
				return err
			}
			out = &dto.StockResult{Item: *it, Transaction: *tx}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

/* ===============================
   Issue & Sale (batch)
=================================*/

type mergedLine struct {
	itemID    uuid.UUID
	quantity  int64
	unitPrice *decimal.Decimal
}

// mergeLines gabung baris dengan item sama (urutan kemunculan pertama dipertahankan).
func mergeLines(lines []dto.LineRequest) ([]mergedLine, error) {
	if len(lines) == 0 {
		return nil, helper.Validation("lines wajib diisi")
	}
	idx := map[uuid.UUID]int{}
	out := make([]mergedLine, 0, len(lines))
	for _, l := range lines {
		if l.ItemID == uuid.Nil {
			return nil, helper.Validation("item_id wajib diisi")
		}
		if l.Quantity <= 0 {
			return nil, helper.ErrInvalidAmount.WithMessage("quantity harus lebih dari 0")
		}
		if l.UnitPrice != nil && l.UnitPrice.IsNegative() {
			return nil, helper.Validation("unit_price tidak boleh negatif")
		}
		i, ok := idx[l.ItemID]
		if !ok {
			idx[l.ItemID] = len(out)
			out = append(out, mergedLine{itemID: l.ItemID, quantity: l.Quantity, unitPrice: l.UnitPrice})
			continue
		}
		m := &out[i]
		switch {
		case l.UnitPrice == nil:
		case m.unitPrice == nil:
			m.unitPrice = l.UnitPrice
		case !m.unitPrice.Equal(*l.UnitPrice):
			return nil, helper.Validation("unit_price berbeda untuk item %s yang sama", l.ItemID)
		}
		if m.quantity > math.MaxInt64-l.Quantity {
			return nil, helper.Validation("total quantity item %s melebihi batas maksimum", l.ItemID)
		}
		m.quantity += l.Quantity
	}
	return out, nil
}

// consume lock semua item (urut id), cek semua cukup, baru kurangi.
// Satu baris kurang = seluruh batch batal.
func (s *Service) consume(ctx context.Context, r repository.Repository, ac helperAuth.AuthContext, lines []mergedLine, kind model.TransactionKind, refType string, refID uuid.UUID, party model.Party, note *string) (map[uuid.UUID]*model.ItemModel, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.itemID)
	}
	locked, err := r.LockItems(ctx, ac.SchoolID, ids)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, helper.NotFound("ada item yang tidak ditemukan")
		}
		return nil, errors.Wrap(err, "lock items")
	}
	byID := make(map[uuid.UUID]*model.ItemModel, len(locked))
	for i := range locked {
		byID[locked[i].ItemID] = &locked[i]
	}

	for _, l := range lines {
		it := byID[l.itemID]
		if it.ItemQuantity < l.quantity {
			return nil, helper.ErrInsufficientStock.WithMessage("stok %s tinggal %d, diminta %d", it.ItemName, it.ItemQuantity, l.quantity)
		}
	}
	for _, l := range lines {
		if _, err := s.applyDelta(ctx, r, byID[l.itemID], movement{
			kind:    kind,
			delta:   -l.quantity,
			refType: refType,
			refID:   &refID,
			party:   party,
			note:    note,
			actor:   ac.ActorID(),
		}); err != nil {
			return nil, err
		}
	}
	return byID, nil
}

func (s *Service) IssueItems(ctx context.Context, ac helperAuth.AuthContext, req dto.IssueRequest) (*model.ItemIssueModel, error) {
	lines, err := mergeLines(req.Lines)
	if err != nil {
		return nil, err
	}
	recipient, err := s.resolveParty(ctx, ac, req.Recipient.ToModel(), "recipient")
	if err != nil {
		return nil, err
	}

	var out *model.ItemIssueModel
	err = database.WithRetry(ctx, mutationAttempts, func() error {
		return s.repo.WithinTx(ctx, func(r repository.Repository) error {
			issueID := uuid.New()
			items, err := s.consume(ctx, r, ac, lines, model.KindIssue, model.RefItemIssue, issueID, recipient, req.Note)
			if err != nil {
				return err
			}
			issue := &model.ItemIssueModel{
				ItemIssueID:        issueID,
				ItemIssueSchoolID:  ac.SchoolID,
				ItemIssueRecipient: recipient,
				ItemIssueNote:      req.Note,
				ItemIssueIssuedBy:  ac.ActorID(),
				ItemIssueDate:      s.now(),
				Lines:              make([]model.ItemIssueLineModel, 0, len(lines)),
			}
			for _, l := range lines {
				issue.Lines = append(issue.Lines, model.ItemIssueLineModel{
					ItemIssueLineID:       uuid.New(),
					ItemIssueLineIssueID:  issueID,
					ItemIssueLineSchoolID: ac.SchoolID,
					ItemIssueLineItemID:   l.itemID,
					ItemIssueLineItemName: items[l.itemID].ItemName,
					ItemIssueLineQuantity: l.quantity,
				})
			}
			if err := r.CreateIssue(ctx, issue); err != nil {
				return errors.Wrap(err, "create item issue")
			}
			out = issue
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) SellItems(ctx context.Context, ac helperAuth.AuthContext, req dto.SaleRequest) (*model.ItemSaleModel, error) {
	lines, err := mergeLines(req.Lines)
	if err != nil {
		return nil, err
	}
	customer, err := s.resolveParty(ctx, ac, req.Customer.ToModel(), "customer")
	if err != nil {
		return nil, err
	}

	var out *model.ItemSaleModel
	err = database.WithRetry(ctx, mutationAttempts, func() error {
		return s.repo.WithinTx(ctx, func(r repository.Repository) error {
			saleID := uuid.New()
			items, err := s.consume(ctx, r, ac, lines, model.KindSale, model.RefItemSale, saleID, customer, req.Note)
			if err != nil {
				return err
			}
			sale := &model.ItemSaleModel{
				ItemSaleID:          saleID,
				ItemSaleSchoolID:    ac.SchoolID,
				ItemSaleCustomer:    customer,
				ItemSaleGrandTotal:  decimal.Zero,
				ItemSalePaymentMode: req.NormalizedPaymentMode(),
				ItemSaleNote:        req.Note,
				ItemSaleSoldBy:      ac.ActorID(),
				ItemSaleDate:        s.now(),
				Lines:               make([]model.ItemSaleLineModel, 0, len(lines)),
			}
			for _, l := range lines {
				it := items[l.itemID]
				price := it.ItemSalePrice
				if l.unitPrice != nil {
					price = *l.unitPrice
				}
				price = roundPrice(price)
				total := price.Mul(decimal.NewFromInt(l.quantity))
				sale.Lines = append(sale.Lines, model.ItemSaleLineModel{
					ItemSaleLineID:        uuid.New(),
					ItemSaleLineSaleID:    saleID,
					ItemSaleLineSchoolID:  ac.SchoolID,
					ItemSaleLineItemID:    l.itemID,
					ItemSaleLineItemName:  it.ItemName,
					ItemSaleLineQuantity:  l.quantity,
					ItemSaleLineUnitPrice: price,
					ItemSaleLineTotal:     total,
				})
				sale.ItemSaleGrandTotal = sale.ItemSaleGrandTotal.Add(total)
			}
			if err := r.CreateSale(ctx, sale); err != nil {
				return errors.Wrap(err, "create item sale")
			}
			out = sale
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
