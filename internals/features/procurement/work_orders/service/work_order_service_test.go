package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolku_backend/internals/constants"
	"schoolku_backend/internals/features/procurement/work_orders/dto"
	"schoolku_backend/internals/features/procurement/work_orders/model"
	"schoolku_backend/internals/features/procurement/work_orders/repository"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

var woNow = time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type woFixture struct {
	ctx  context.Context
	repo *repository.MemoryRepository
	svc  *Service
	ac   helperAuth.AuthContext
}

func newWoFixture(t *testing.T) *woFixture {
	t.Helper()
	f := &woFixture{
		ctx:  context.Background(),
		repo: repository.NewMemoryRepository(),
		ac:   helperAuth.AuthContext{UserID: uuid.New(), SchoolID: uuid.New(), Role: constants.RoleAccountant},
	}
	f.repo.SetClock(func() time.Time { return woNow })
	f.svc = NewService(f.repo, WithClock(func() time.Time { return woNow }))
	return f
}

// grand total 1000: 2×400 + 300 tax − 100 discount
func (f *woFixture) create(t *testing.T) *dto.WorkOrderDetail {
	t.Helper()
	out, err := f.svc.CreateWorkOrder(f.ctx, f.ac, dto.CreateWorkOrderRequest{
		Title: "Perbaikan atap kelas",
		Lines: []dto.LineRequest{
			{Description: "Genteng", Quantity: dec("2"), UnitPrice: dec("400")},
		},
		TaxAmount:      dec("300"),
		DiscountAmount: dec("100"),
	})
	require.NoError(t, err)
	return out
}

func TestReconcile(t *testing.T) {
	cases := []struct {
		name     string
		grand    string
		payments []string
		paid     string
		balance  string
		status   model.PaymentStatus
	}{
		{"no payments", "1000", nil, "0", "1000", model.PaymentPending},
		{"partial", "1000", []string{"300", "200"}, "500", "500", model.PaymentPartial},
		{"exact", "1000", []string{"600", "400"}, "1000", "0", model.PaymentPaid},
		{"overpaid floors balance", "1000", []string{"1200"}, "1200", "0", model.PaymentPaid},
		{"zero grand total", "0", nil, "0", "0", model.PaymentPaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			amounts := make([]decimal.Decimal, 0, len(tc.payments))
			for _, p := range tc.payments {
				amounts = append(amounts, dec(p))
			}
			r := Reconcile(dec(tc.grand), amounts)
			assert.True(t, r.AdvancePaid.Equal(dec(tc.paid)), "paid %s", r.AdvancePaid)
			assert.True(t, r.BalanceAmount.Equal(dec(tc.balance)), "balance %s", r.BalanceAmount)
			assert.Equal(t, tc.status, r.PaymentStatus)
		})
	}
}

func TestComputeTotals_NeverNegative(t *testing.T) {
	lines := []model.WorkOrderLine{{Total: dec("100")}}
	sub, grand := ComputeTotals(lines, dec("0"), dec("250"))
	assert.True(t, sub.Equal(dec("100")))
	assert.True(t, grand.IsZero())
}

func TestWorkOrder_CreateComputesTotals(t *testing.T) {
	f := newWoFixture(t)
	out := f.create(t)

	wo := out.WorkOrder
	assert.True(t, wo.WorkOrderSubTotal.Equal(dec("800")))
	assert.True(t, wo.WorkOrderGrandTotal.Equal(dec("1000")))
	assert.True(t, wo.WorkOrderBalanceAmount.Equal(dec("1000")))
	assert.Equal(t, model.PaymentPending, wo.WorkOrderPaymentStatus)
	assert.Regexp(t, `^WO-20260202-[0-9A-F]{6}$`, wo.WorkOrderNumber)
	require.Len(t, out.Lines, 1)
	assert.True(t, out.Lines[0].Total.Equal(dec("800")))

	got, err := f.svc.GetWorkOrder(f.ctx, f.ac, wo.WorkOrderID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "Genteng", got.Lines[0].Description)
}

func TestWorkOrder_CreateValidation(t *testing.T) {
	f := newWoFixture(t)
	cases := []dto.CreateWorkOrderRequest{
		{Title: "", Lines: []dto.LineRequest{{Description: "x", Quantity: dec("1"), UnitPrice: dec("1")}}},
		{Title: "a"},
		{Title: "a", Lines: []dto.LineRequest{{Description: "x", Quantity: dec("0"), UnitPrice: dec("1")}}},
		{Title: "a", Lines: []dto.LineRequest{{Description: "x", Quantity: dec("1"), UnitPrice: dec("-1")}}},
		{Title: "a", Lines: []dto.LineRequest{{Description: "x", Quantity: dec("1"), UnitPrice: dec("1")}}, TaxAmount: dec("-5")},
	}
	for i, req := range cases {
		_, err := f.svc.CreateWorkOrder(f.ctx, f.ac, req)
		assert.True(t, helper.IsKind(err, helper.KindValidation), "case %d: %v", i, err)
	}
}

func TestWorkOrder_RecordAndDeletePaymentRederives(t *testing.T) {
	f := newWoFixture(t)
	id := f.create(t).WorkOrder.WorkOrderID

	out, err := f.svc.RecordPayment(f.ctx, f.ac, id, dto.RecordPaymentRequest{Amount: dec("400"), Vendor: strPtr("CV Atap")})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPartial, out.WorkOrder.WorkOrderPaymentStatus)
	assert.True(t, out.WorkOrder.WorkOrderBalanceAmount.Equal(dec("600")))

	later := woNow.Add(time.Hour)
	out, err = f.svc.RecordPayment(f.ctx, f.ac, id, dto.RecordPaymentRequest{Amount: dec("600"), PaidAt: &later})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, out.WorkOrder.WorkOrderPaymentStatus)
	assert.True(t, out.WorkOrder.WorkOrderAdvancePaid.Equal(dec("1000")))
	require.Len(t, out.Payments, 2)
	assert.True(t, out.Payments[1].WorkOrderPaymentAmount.Equal(dec("600")))

	out, err = f.svc.DeletePayment(f.ctx, f.ac, id, out.Payments[1].WorkOrderPaymentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPartial, out.WorkOrder.WorkOrderPaymentStatus)
	assert.True(t, out.WorkOrder.WorkOrderAdvancePaid.Equal(dec("400")))
	assert.True(t, out.WorkOrder.WorkOrderBalanceAmount.Equal(dec("600")))

	got, err := f.svc.GetWorkOrder(f.ctx, f.ac, id)
	require.NoError(t, err)
	assert.Len(t, got.Payments, 1)
	assert.Equal(t, model.PaymentPartial, got.WorkOrder.WorkOrderPaymentStatus)

	_, err = f.svc.DeletePayment(f.ctx, f.ac, id, uuid.New())
	assert.True(t, helper.IsKind(err, helper.KindNotFound))
}

func TestWorkOrder_PaymentRejections(t *testing.T) {
	f := newWoFixture(t)
	id := f.create(t).WorkOrder.WorkOrderID

	_, err := f.svc.RecordPayment(f.ctx, f.ac, id, dto.RecordPaymentRequest{Amount: dec("0")})
	assert.True(t, errors.Is(err, helper.ErrInvalidAmount))

	_, err = f.svc.RecordPayment(f.ctx, f.ac, uuid.New(), dto.RecordPaymentRequest{Amount: dec("10")})
	assert.True(t, helper.IsKind(err, helper.KindNotFound))

	other := f.ac
	other.SchoolID = uuid.New()
	_, err = f.svc.RecordPayment(f.ctx, other, id, dto.RecordPaymentRequest{Amount: dec("10")})
	assert.True(t, helper.IsKind(err, helper.KindNotFound))
}

func TestWorkOrder_FailedSaveLeavesNoPayment(t *testing.T) {
	f := newWoFixture(t)
	id := f.create(t).WorkOrder.WorkOrderID

	f.repo.Faults.FailOn("SaveDerived", 1, errors.New("connection reset"))
	_, err := f.svc.RecordPayment(f.ctx, f.ac, id, dto.RecordPaymentRequest{Amount: dec("100")})
	require.Error(t, err)

	got, err := f.svc.GetWorkOrder(f.ctx, f.ac, id)
	require.NoError(t, err)
	assert.Empty(t, got.Payments)
	assert.Equal(t, model.PaymentPending, got.WorkOrder.WorkOrderPaymentStatus)
}

func TestWorkOrder_ListByStatusAndOpenBalance(t *testing.T) {
	f := newWoFixture(t)
	a := f.create(t).WorkOrder.WorkOrderID
	b := f.create(t).WorkOrder.WorkOrderID
	f.create(t)

	_, err := f.svc.RecordPayment(f.ctx, f.ac, a, dto.RecordPaymentRequest{Amount: dec("1000")})
	require.NoError(t, err)
	_, err = f.svc.RecordPayment(f.ctx, f.ac, b, dto.RecordPaymentRequest{Amount: dec("250")})
	require.NoError(t, err)

	p := helper.NewPaging("", "", 10, 100)
	rows, total, err := f.svc.ListWorkOrders(f.ctx, f.ac, dto.ListFilter{Status: model.PaymentPaid}, p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, a, rows[0].WorkOrderID)

	_, total, err = f.svc.ListWorkOrders(f.ctx, f.ac, dto.ListFilter{}, p)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	_, _, err = f.svc.ListWorkOrders(f.ctx, f.ac, dto.ListFilter{Status: "void"}, p)
	assert.True(t, helper.IsKind(err, helper.KindValidation))

	ob, err := f.svc.OpenBalance(f.ctx, f.ac)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ob.OpenWorkOrders)
	assert.True(t, ob.Balance.Equal(dec("1750")), "balance %s", ob.Balance)
}

func strPtr(s string) *string { return &s }
