package service

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolku_backend/internals/constants"
	"schoolku_backend/internals/features/inventory/items/dto"
	"schoolku_backend/internals/features/inventory/items/model"
	"schoolku_backend/internals/features/inventory/items/repository"
	studentModel "schoolku_backend/internals/features/school/students/model"
	studentRepo "schoolku_backend/internals/features/school/students/repository"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

var invNow = time.Date(2026, 7, 14, 7, 30, 0, 0, time.UTC)

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type invFixture struct {
	ctx       context.Context
	repo      *repository.MemoryRepository
	students  *studentRepo.MemoryDirectory
	svc       *Service
	ac        helperAuth.AuthContext
	studentID uuid.UUID
}

func newInvFixture(t *testing.T) *invFixture {
	t.Helper()
	f := &invFixture{
		ctx:       context.Background(),
		repo:      repository.NewMemoryRepository(),
		studentID: uuid.New(),
		ac: helperAuth.AuthContext{
			UserID:   uuid.New(),
			SchoolID: uuid.New(),
			Role:     constants.RoleStaff,
		},
	}
	f.students = studentRepo.NewMemoryDirectory(studentModel.SchoolStudentModel{
		SchoolStudentID:          f.studentID,
		SchoolStudentSchoolID:    f.ac.SchoolID,
		SchoolStudentClassID:     uuid.New(),
		SchoolStudentFullName:    "Siti",
		SchoolStudentAdmissionNo: "ADM-7",
	})
	f.repo.SetClock(func() time.Time { return invNow })
	f.svc = NewService(f.repo, f.students, WithClock(func() time.Time { return invNow }))
	return f
}

func (f *invFixture) item(t *testing.T, name string, qty int64) *model.ItemModel {
	t.Helper()
	it, err := f.svc.CreateItem(f.ctx, f.ac, dto.CreateItemRequest{
		Name:          name,
		ReorderLevel:  5,
		PurchasePrice: price("10000"),
		SalePrice:     price("15000"),
	})
	require.NoError(t, err)
	if qty > 0 {
		_, err = f.svc.AddStock(f.ctx, f.ac, it.ItemID, dto.AddStockRequest{Quantity: qty, PurchasePrice: price("10000")})
		require.NoError(t, err)
	}
	got, err := f.svc.GetItem(f.ctx, f.ac, it.ItemID)
	require.NoError(t, err)
	return got
}

func (f *invFixture) qty(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	it, err := f.svc.GetItem(f.ctx, f.ac, id)
	require.NoError(t, err)
	return it.ItemQuantity
}

func external(name string) dto.PartyRequest {
	return dto.PartyRequest{Kind: model.PartyExternal, Name: &name}
}

func TestInventory_AddStockUpdatesQuantityAndPrice(t *testing.T) {
	f := newInvFixture(t)
	it := f.item(t, "Seragam Putih", 0)

	res, err := f.svc.AddStock(f.ctx, f.ac, it.ItemID, dto.AddStockRequest{Quantity: 10, PurchasePrice: price("12000")})
	require.NoError(t, err)
	assert.Equal(t, int64(10), res.Item.ItemQuantity)
	assert.True(t, res.Item.ItemPurchasePrice.Equal(price("12000")))
	assert.Equal(t, model.KindPurchase, res.Transaction.ItemTransactionKind)
	assert.Equal(t, int64(0), res.Transaction.ItemTransactionPreviousStock)
	assert.Equal(t, int64(10), res.Transaction.ItemTransactionCurrentStock)
	require.NotNil(t, res.Transaction.ItemTransactionReferenceID)
	assert.Equal(t, res.Stock.ItemStockID, *res.Transaction.ItemTransactionReferenceID)

	_, err = f.svc.AddStock(f.ctx, f.ac, it.ItemID, dto.AddStockRequest{Quantity: 0})
	assert.True(t, errors.Is(err, helper.ErrInvalidAmount))

	_, err = f.svc.AddStock(f.ctx, f.ac, uuid.New(), dto.AddStockRequest{Quantity: 1})
	assert.True(t, helper.IsKind(err, helper.KindNotFound))
}

func TestInventory_CreateItemDuplicateName(t *testing.T) {
	f := newInvFixture(t)
	f.item(t, "Buku Tulis", 0)

	_, err := f.svc.CreateItem(f.ctx, f.ac, dto.CreateItemRequest{Name: "Buku Tulis"})
	assert.True(t, helper.IsKind(err, helper.KindConflict))

	_, err = f.svc.CreateItem(f.ctx, f.ac, dto.CreateItemRequest{Name: "  "})
	assert.True(t, helper.IsKind(err, helper.KindValidation))
}

func TestInventory_IssueBatchShortLineChangesNothing(t *testing.T) {
	f := newInvFixture(t)
	a := f.item(t, "Pensil", 10)
	b := f.item(t, "Penghapus", 2)
	_, _, txBefore := f.repo.Counts()

	_, err := f.svc.IssueItems(f.ctx, f.ac, dto.IssueRequest{
		Recipient: external("Kelas 3A"),
		Lines: []dto.LineRequest{
			{ItemID: a.ItemID, Quantity: 4},
			{ItemID: b.ItemID, Quantity: 3},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, helper.ErrInsufficientStock))

	assert.Equal(t, int64(10), f.qty(t, a.ItemID))
	assert.Equal(t, int64(2), f.qty(t, b.ItemID))
	issues, _, txAfter := f.repo.Counts()
	assert.Equal(t, 0, issues)
	assert.Equal(t, txBefore, txAfter)
}

func TestInventory_IssueMergesLinesAndRecordsParty(t *testing.T) {
	f := newInvFixture(t)
	a := f.item(t, "Dasi", 10)

	issue, err := f.svc.IssueItems(f.ctx, f.ac, dto.IssueRequest{
		Recipient: dto.PartyRequest{Kind: model.PartyStudent, ID: &f.studentID},
		Lines: []dto.LineRequest{
			{ItemID: a.ItemID, Quantity: 2},
			{ItemID: a.ItemID, Quantity: 3},
		},
	})
	require.NoError(t, err)
	require.Len(t, issue.Lines, 1)
	assert.Equal(t, int64(5), issue.Lines[0].ItemIssueLineQuantity)
	assert.Equal(t, "Dasi", issue.Lines[0].ItemIssueLineItemName)
	assert.Equal(t, model.PartyStudent, issue.ItemIssueRecipient.Kind)
	assert.Equal(t, int64(5), f.qty(t, a.ItemID))

	rows, _, err := f.svc.ListTransactions(f.ctx, f.ac, dto.TransactionFilter{ItemID: &a.ItemID, Kind: model.KindIssue}, helper.NewPaging("1", "10", 10, 100))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	tx := rows[0]
	assert.Equal(t, int64(-5), tx.ItemTransactionDelta)
	assert.Equal(t, int64(10), tx.ItemTransactionPreviousStock)
	assert.Equal(t, int64(5), tx.ItemTransactionCurrentStock)
	assert.Equal(t, f.studentID, *tx.ItemTransactionParty.ID)
	assert.Equal(t, model.RefItemIssue, *tx.ItemTransactionReferenceType)
	assert.Equal(t, issue.ItemIssueID, *tx.ItemTransactionReferenceID)
}

func TestInventory_PartyValidation(t *testing.T) {
	f := newInvFixture(t)
	a := f.item(t, "Topi", 10)
	unknown := uuid.New()
	blank := "  "

	cases := []struct {
		name  string
		party dto.PartyRequest
		kind  helper.ErrorKind
	}{
		{"student without id", dto.PartyRequest{Kind: model.PartyStudent}, helper.KindValidation},
		{"external without name", dto.PartyRequest{Kind: model.PartyExternal, Name: &blank}, helper.KindValidation},
		{"unknown kind", dto.PartyRequest{Kind: "vendor", Name: &blank}, helper.KindValidation},
		{"student of another school", dto.PartyRequest{Kind: model.PartyStudent, ID: &unknown}, helper.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.IssueItems(f.ctx, f.ac, dto.IssueRequest{
				Recipient: tc.party,
				Lines:     []dto.LineRequest{{ItemID: a.ItemID, Quantity: 1}},
			})
			assert.True(t, helper.IsKind(err, tc.kind), "got %v", err)
		})
	}
	assert.Equal(t, int64(10), f.qty(t, a.ItemID))
}

func TestInventory_SellComputesTotals(t *testing.T) {
	f := newInvFixture(t)
	a := f.item(t, "Buku Paket", 20)
	b := f.item(t, "Sampul", 50)
	custom := price("2500")

	sale, err := f.svc.SellItems(f.ctx, f.ac, dto.SaleRequest{
		Customer: external("Pak Budi"),
		Lines: []dto.LineRequest{
			{ItemID: a.ItemID, Quantity: 2},
			{ItemID: b.ItemID, Quantity: 4, UnitPrice: &custom},
		},
	})
	require.NoError(t, err)
	require.Len(t, sale.Lines, 2)
	assert.True(t, sale.Lines[0].ItemSaleLineUnitPrice.Equal(price("15000")))
	assert.True(t, sale.Lines[0].ItemSaleLineTotal.Equal(price("30000")))
	assert.True(t, sale.Lines[1].ItemSaleLineTotal.Equal(price("10000")))
	assert.True(t, sale.ItemSaleGrandTotal.Equal(price("40000")))
	assert.Equal(t, dto.DefaultPaymentMode, sale.ItemSalePaymentMode)
	assert.Equal(t, int64(18), f.qty(t, a.ItemID))
	assert.Equal(t, int64(46), f.qty(t, b.ItemID))
}

func TestInventory_SellConflictingUnitPrice(t *testing.T) {
	f := newInvFixture(t)
	a := f.item(t, "Kaos Olahraga", 20)
	p1, p2 := price("1000"), price("2000")

	_, err := f.svc.SellItems(f.ctx, f.ac, dto.SaleRequest{
		Customer: external("Umum"),
		Lines: []dto.LineRequest{
			{ItemID: a.ItemID, Quantity: 1, UnitPrice: &p1},
			{ItemID: a.ItemID, Quantity: 1, UnitPrice: &p2},
		},
	})
	assert.True(t, helper.IsKind(err, helper.KindValidation))
	assert.Equal(t, int64(20), f.qty(t, a.ItemID))
}

func TestInventory_MergedQuantityOverflowRejected(t *testing.T) {
	f := newInvFixture(t)
	a := f.item(t, "Map Plastik", 10)
	huge := []dto.LineRequest{
		{ItemID: a.ItemID, Quantity: math.MaxInt64},
		{ItemID: a.ItemID, Quantity: math.MaxInt64},
	}

	_, err := f.svc.IssueItems(f.ctx, f.ac, dto.IssueRequest{Recipient: external("Gudang"), Lines: huge})
	assert.True(t, helper.IsKind(err, helper.KindValidation), "got %v", err)

	_, err = f.svc.SellItems(f.ctx, f.ac, dto.SaleRequest{Customer: external("Umum"), Lines: huge})
	assert.True(t, helper.IsKind(err, helper.KindValidation), "got %v", err)

	assert.Equal(t, int64(10), f.qty(t, a.ItemID))
	issues, sales, _ := f.repo.Counts()
	assert.Equal(t, 0, issues)
	assert.Equal(t, 0, sales)
}

func TestInventory_StockInOverflowRejected(t *testing.T) {
	f := newInvFixture(t)
	a := f.item(t, "Kapur", 10)

	_, err := f.svc.AddStock(f.ctx, f.ac, a.ItemID, dto.AddStockRequest{Quantity: math.MaxInt64, PurchasePrice: price("100")})
	assert.True(t, helper.IsKind(err, helper.KindValidation), "got %v", err)
	assert.False(t, errors.Is(err, helper.ErrInsufficientStock))

	_, err = f.svc.StockInOut(f.ctx, f.ac, a.ItemID, dto.AdjustRequest{Quantity: math.MaxInt64, Direction: dto.DirectionIn})
	assert.True(t, helper.IsKind(err, helper.KindValidation), "got %v", err)
	assert.False(t, errors.Is(err, helper.ErrInsufficientStock))

	assert.Equal(t, int64(10), f.qty(t, a.ItemID))
}

func TestInventory_StockInOut(t *testing.T) {
	f := newInvFixture(t)
	a := f.item(t, "Spidol", 3)

	res, err := f.svc.StockInOut(f.ctx, f.ac, a.ItemID, dto.AdjustRequest{Quantity: 2, Direction: dto.DirectionIn})
	require.NoError(t, err)
	assert.Equal(t, model.KindStockIn, res.Transaction.ItemTransactionKind)
	assert.Equal(t, int64(5), res.Item.ItemQuantity)

	_, err = f.svc.StockInOut(f.ctx, f.ac, a.ItemID, dto.AdjustRequest{Quantity: 6, Direction: dto.DirectionOut})
	assert.True(t, errors.Is(err, helper.ErrInsufficientStock))
	assert.Equal(t, int64(5), f.qty(t, a.ItemID))

	res, err = f.svc.StockInOut(f.ctx, f.ac, a.ItemID, dto.AdjustRequest{Quantity: 5, Direction: dto.DirectionOut})
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Transaction.ItemTransactionPreviousStock)
	assert.Equal(t, int64(0), res.Transaction.ItemTransactionCurrentStock)

	_, err = f.svc.StockInOut(f.ctx, f.ac, a.ItemID, dto.AdjustRequest{Quantity: 1, Direction: "sideways"})
	assert.True(t, helper.IsKind(err, helper.KindValidation))
}

func TestInventory_DeleteStockEntry(t *testing.T) {
	f := newInvFixture(t)
	a := f.item(t, "Map Plastik", 0)
	entry, err := f.svc.AddStock(f.ctx, f.ac, a.ItemID, dto.AddStockRequest{Quantity: 10, PurchasePrice: price("500")})
	require.NoError(t, err)

	t.Run("consumed entry is rejected", func(t *testing.T) {
		_, err := f.svc.StockInOut(f.ctx, f.ac, a.ItemID, dto.AdjustRequest{Quantity: 4, Direction: dto.DirectionOut})
		require.NoError(t, err)

		_, _, before := f.repo.Counts()
		_, err = f.svc.DeleteStockEntry(f.ctx, f.ac, entry.Stock.ItemStockID)
		assert.True(t, errors.Is(err, helper.ErrInsufficientStock))
		_, _, after := f.repo.Counts()
		assert.Equal(t, before, after)
		assert.Equal(t, int64(6), f.qty(t, a.ItemID))
	})

	t.Run("reversal after restock", func(t *testing.T) {
		_, err := f.svc.StockInOut(f.ctx, f.ac, a.ItemID, dto.AdjustRequest{Quantity: 4, Direction: dto.DirectionIn})
		require.NoError(t, err)

		res, err := f.svc.DeleteStockEntry(f.ctx, f.ac, entry.Stock.ItemStockID)
		require.NoError(t, err)
		assert.Equal(t, model.KindPurchaseReversal, res.Transaction.ItemTransactionKind)
		assert.Equal(t, int64(-10), res.Transaction.ItemTransactionDelta)
		assert.Equal(t, int64(0), f.qty(t, a.ItemID))
	})

	t.Run("second reversal is not found", func(t *testing.T) {
		_, err := f.svc.DeleteStockEntry(f.ctx, f.ac, entry.Stock.ItemStockID)
		assert.True(t, helper.IsKind(err, helper.KindNotFound))
	})

	v, err := f.svc.VerifyItem(f.ctx, f.ac, a.ItemID)
	require.NoError(t, err)
	assert.True(t, v.Consistent)
	assert.Equal(t, int64(0), v.LedgerQuantity)
}

func TestInventory_FailedWriteRollsBack(t *testing.T) {
	f := newInvFixture(t)
	a := f.item(t, "Kapur", 10)
	b := f.item(t, "Penggaris", 10)

	// transaksi baris ke-2 gagal → baris pertama juga batal
	f.repo.Faults.FailOn("CreateTransaction", 2, errors.New("disk full"))
	_, err := f.svc.IssueItems(f.ctx, f.ac, dto.IssueRequest{
		Recipient: external("Gudang"),
		Lines:     []dto.LineRequest{{ItemID: a.ItemID, Quantity: 1}, {ItemID: b.ItemID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, int64(10), f.qty(t, a.ItemID))
	assert.Equal(t, int64(10), f.qty(t, b.ItemID))
}

func TestInventory_RandomSequenceNeverNegative(t *testing.T) {
	f := newInvFixture(t)
	items := []*model.ItemModel{f.item(t, "A", 5), f.item(t, "B", 5), f.item(t, "C", 0)}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 300; i++ {
		it := items[rng.Intn(len(items))]
		n := int64(rng.Intn(6) + 1)
		var err error
		switch rng.Intn(4) {
		case 0:
			_, err = f.svc.AddStock(f.ctx, f.ac, it.ItemID, dto.AddStockRequest{Quantity: n})
		case 1:
			_, err = f.svc.StockInOut(f.ctx, f.ac, it.ItemID, dto.AdjustRequest{Quantity: n, Direction: dto.DirectionOut})
		case 2:
			_, err = f.svc.IssueItems(f.ctx, f.ac, dto.IssueRequest{
				Recipient: dto.PartyRequest{Kind: model.PartyStaff, ID: &f.ac.UserID},
				Lines:     []dto.LineRequest{{ItemID: it.ItemID, Quantity: n}, {ItemID: items[0].ItemID, Quantity: 1}},
			})
		default:
			_, err = f.svc.SellItems(f.ctx, f.ac, dto.SaleRequest{
				Customer: external("Umum"),
				Lines:    []dto.LineRequest{{ItemID: it.ItemID, Quantity: n}},
			})
		}
		if err != nil {
			require.True(t, errors.Is(err, helper.ErrInsufficientStock), "op %d: %v", i, err)
		}
		for _, x := range items {
			require.GreaterOrEqual(t, f.qty(t, x.ItemID), int64(0))
		}
	}

	for _, x := range items {
		v, err := f.svc.VerifyItem(f.ctx, f.ac, x.ItemID)
		require.NoError(t, err)
		assert.True(t, v.Consistent, "item %s", x.ItemName)
	}
}

func TestInventory_LowStockAndTenantIsolation(t *testing.T) {
	f := newInvFixture(t)
	f.item(t, "Lem", 2)
	f.item(t, "Gunting", 20)

	rows, total, err := f.svc.LowStock(f.ctx, f.ac, helper.NewPaging("", "", 10, 100))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Lem", rows[0].ItemName)

	n, err := f.svc.CountLowStock(f.ctx, f.ac)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	other := f.ac
	other.SchoolID = uuid.New()
	rows, total, err = f.svc.ListItems(f.ctx, other, dto.ItemFilter{}, helper.NewPaging("", "", 10, 100))
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rows)
}
