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
	"schoolku_backend/internals/features/finance/fees/dto"
	"schoolku_backend/internals/features/finance/fees/model"
	"schoolku_backend/internals/features/finance/fees/repository"
	studentModel "schoolku_backend/internals/features/school/students/model"
	studentRepo "schoolku_backend/internals/features/school/students/repository"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type feeFixture struct {
	ctx      context.Context
	repo     *repository.MemoryRepository
	students *studentRepo.MemoryDirectory
	svc      *Service
	ac       helperAuth.AuthContext
	classID  uuid.UUID
	student  studentModel.SchoolStudentModel
	feeType  *model.FeeTypeModel
}

func newFeeFixture(t *testing.T, opts ...Option) *feeFixture {
	t.Helper()
	f := &feeFixture{
		ctx:      context.Background(),
		repo:     repository.NewMemoryRepository(),
		students: studentRepo.NewMemoryDirectory(),
		classID:  uuid.New(),
		ac: helperAuth.AuthContext{
			UserID:   uuid.New(),
			SchoolID: uuid.New(),
			Role:     constants.RoleAccountant,
		},
	}
	f.repo.SetClock(func() time.Time { return fixedNow })
	f.student = f.addStudent("Budi", "A")

	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	f.svc = NewService(f.repo, f.students, nil, opts...)

	ft, err := f.svc.CreateFeeType(f.ctx, f.ac, dto.CreateFeeTypeRequest{FeeTypeName: "SPP", FeeTypeCode: "spp"})
	require.NoError(t, err)
	f.feeType = ft
	return f
}

func (f *feeFixture) addStudent(name, section string) studentModel.SchoolStudentModel {
	st := studentModel.SchoolStudentModel{
		SchoolStudentID:          uuid.New(),
		SchoolStudentSchoolID:    f.ac.SchoolID,
		SchoolStudentClassID:     f.classID,
		SchoolStudentSection:     section,
		SchoolStudentFullName:    name,
		SchoolStudentAdmissionNo: "ADM-" + name,
	}
	f.students.Put(st)
	return st
}

func (f *feeFixture) addMaster(t *testing.T, amount string, mutate ...func(*dto.CreateFeeMasterRequest)) *model.FeeMasterModel {
	t.Helper()
	req := dto.CreateFeeMasterRequest{
		FeeMasterFeeTypeID: f.feeType.FeeTypeID,
		FeeMasterClassID:   f.classID,
		FeeMasterAmount:    dec(amount),
	}
	for _, m := range mutate {
		m(&req)
	}
	fm, err := f.svc.CreateFeeMaster(f.ctx, f.ac, req)
	require.NoError(t, err)
	return fm
}

func collectReq(items ...dto.CollectFeeItem) dto.CollectFeesRequest {
	return dto.CollectFeesRequest{PaymentMode: "cash", Items: items}
}

func TestComputeDueFees_PartialThenPaid(t *testing.T) {
	f := newFeeFixture(t)
	fm := f.addMaster(t, "1000")

	due, err := f.svc.ComputeDueFees(f.ctx, f.ac, f.student.SchoolStudentID)
	require.NoError(t, err)
	require.Len(t, due.Fees, 1)
	assert.True(t, due.Fees[0].Balance.Equal(dec("1000")))
	assert.Equal(t, dto.DueStatusDue, due.Fees[0].Status)

	_, err = f.svc.CollectFees(f.ctx, f.ac, f.student.SchoolStudentID,
		collectReq(dto.CollectFeeItem{FeeMasterID: fm.FeeMasterID, Amount: dec("400")}), "")
	require.NoError(t, err)

	due, err = f.svc.ComputeDueFees(f.ctx, f.ac, f.student.SchoolStudentID)
	require.NoError(t, err)
	assert.True(t, due.Fees[0].Paid.Equal(dec("400")))
	assert.True(t, due.Fees[0].Balance.Equal(dec("600")))
	assert.Equal(t, dto.DueStatusDue, due.Fees[0].Status)

	_, err = f.svc.CollectFees(f.ctx, f.ac, f.student.SchoolStudentID,
		collectReq(dto.CollectFeeItem{FeeMasterID: fm.FeeMasterID, Amount: dec("600")}), "")
	require.NoError(t, err)

	due, err = f.svc.ComputeDueFees(f.ctx, f.ac, f.student.SchoolStudentID)
	require.NoError(t, err)
	assert.True(t, due.Fees[0].Balance.IsZero())
	assert.Equal(t, dto.DueStatusPaid, due.Fees[0].Status)
	assert.True(t, due.Totals.Balance.IsZero())
}

func TestComputeDueFees_Idempotent(t *testing.T) {
	f := newFeeFixture(t)
	f.addMaster(t, "750")
	f.addMaster(t, "250")

	a, err := f.svc.ComputeDueFees(f.ctx, f.ac, f.student.SchoolStudentID)
	require.NoError(t, err)
	b, err := f.svc.ComputeDueFees(f.ctx, f.ac, f.student.SchoolStudentID)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, a.Totals.Balance.Equal(dec("1000")))
}

func TestComputeDueFees_UnknownStudent(t *testing.T) {
	f := newFeeFixture(t)
	_, err := f.svc.ComputeDueFees(f.ctx, f.ac, uuid.New())
	assert.True(t, helper.IsKind(err, helper.KindNotFound))
}

func TestFineFor(t *testing.T) {
	due := fixedNow.AddDate(0, 0, -5)
	base := model.FeeMasterModel{FeeMasterDueDate: &due, FeeMasterFineAmount: dec("10")}

	cases := []struct {
		name     string
		fineType model.FineType
		balance  string
		want     string
	}{
		{"fixed", model.FineFixed, "500", "10"},
		{"percentage", model.FinePercentage, "500", "50"},
		{"per day", model.FinePerDay, "500", "50"},
		{"none", model.FineNone, "500", "0"},
		{"no balance", model.FineFixed, "0", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := base
			m.FeeMasterFineType = tc.fineType
			got := FineFor(m, dec(tc.balance), fixedNow)
			assert.True(t, got.Equal(dec(tc.want)), "got %s", got)
		})
	}

	t.Run("not yet due", func(t *testing.T) {
		future := fixedNow.AddDate(0, 0, 3)
		m := base
		m.FeeMasterDueDate = &future
		m.FeeMasterFineType = model.FineFixed
		assert.True(t, FineFor(m, dec("500"), fixedNow).IsZero())
	})
}

func TestCollectFees_AtomicOnMidBatchFailure(t *testing.T) {
	f := newFeeFixture(t)
	m1 := f.addMaster(t, "100")
	m2 := f.addMaster(t, "200")
	m3 := f.addMaster(t, "300")

	f.repo.Faults.FailOn("CreateStudentFee", 2, errors.New("disk full"))

	_, err := f.svc.CollectFees(f.ctx, f.ac, f.student.SchoolStudentID, collectReq(
		dto.CollectFeeItem{FeeMasterID: m1.FeeMasterID, Amount: dec("100")},
		dto.CollectFeeItem{FeeMasterID: m2.FeeMasterID, Amount: dec("200")},
		dto.CollectFeeItem{FeeMasterID: m3.FeeMasterID, Amount: dec("300")},
	), "TXN-ATOMIC")
	require.Error(t, err)

	rows, err := f.repo.ListStudentFees(f.ctx, f.ac.SchoolID, []uuid.UUID{f.student.SchoolStudentID})
	require.NoError(t, err)
	assert.Empty(t, rows)

	due, err := f.svc.ComputeDueFees(f.ctx, f.ac, f.student.SchoolStudentID)
	require.NoError(t, err)
	assert.True(t, due.Totals.Balance.Equal(dec("600")))
}

func TestCollectFees_SharedTransactionAndReplay(t *testing.T) {
	f := newFeeFixture(t)
	m1 := f.addMaster(t, "100")
	m2 := f.addMaster(t, "200")
	req := collectReq(
		dto.CollectFeeItem{FeeMasterID: m1.FeeMasterID, Amount: dec("100")},
		dto.CollectFeeItem{FeeMasterID: m2.FeeMasterID, Amount: dec("50")},
	)

	first, err := f.svc.CollectFees(f.ctx, f.ac, f.student.SchoolStudentID, req, "KEY-1")
	require.NoError(t, err)
	assert.False(t, first.Replayed)
	require.Len(t, first.Items, 2)
	for _, it := range first.Items {
		assert.Equal(t, "KEY-1", it.StudentFeeTransactionID)
	}
	assert.True(t, first.TotalPaid.Equal(dec("150")))

	second, err := f.svc.CollectFees(f.ctx, f.ac, f.student.SchoolStudentID, req, "KEY-1")
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.True(t, second.TotalPaid.Equal(dec("150")))

	rows, err := f.repo.ListStudentFees(f.ctx, f.ac.SchoolID, []uuid.UUID{f.student.SchoolStudentID})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestCollectFees_ReplayForOtherStudentConflicts(t *testing.T) {
	f := newFeeFixture(t)
	fm := f.addMaster(t, "100")
	other := f.addStudent("Citra", "A")

	_, err := f.svc.CollectFees(f.ctx, f.ac, f.student.SchoolStudentID,
		collectReq(dto.CollectFeeItem{FeeMasterID: fm.FeeMasterID, Amount: dec("10")}), "KEY-X")
	require.NoError(t, err)

	_, err = f.svc.CollectFees(f.ctx, f.ac, other.SchoolStudentID,
		collectReq(dto.CollectFeeItem{FeeMasterID: fm.FeeMasterID, Amount: dec("10")}), "KEY-X")
	assert.True(t, helper.IsKind(err, helper.KindConflict))
}

func TestCollectFees_GeneratesTransactionID(t *testing.T) {
	f := newFeeFixture(t)
	fm := f.addMaster(t, "100")

	res, err := f.svc.CollectFees(f.ctx, f.ac, f.student.SchoolStudentID,
		collectReq(dto.CollectFeeItem{FeeMasterID: fm.FeeMasterID, Amount: dec("10")}), "")
	require.NoError(t, err)
	assert.Regexp(t, `^TXN-\d+-[0-9A-F]{6}$`, res.TransactionID)
	assert.Equal(t, f.ac.UserID, *res.Items[0].StudentFeeCollectedBy)
}

func TestCollectFees_Rejections(t *testing.T) {
	f := newFeeFixture(t)
	fm := f.addMaster(t, "100")
	otherClass := uuid.New()
	foreign, err := f.svc.CreateFeeMaster(f.ctx, f.ac, dto.CreateFeeMasterRequest{
		FeeMasterFeeTypeID: f.feeType.FeeTypeID,
		FeeMasterClassID:   otherClass,
		FeeMasterAmount:    dec("100"),
	})
	require.NoError(t, err)

	cases := []struct {
		name  string
		items []dto.CollectFeeItem
		check func(error) bool
	}{
		{"empty", nil, func(err error) bool { return helper.IsKind(err, helper.KindValidation) }},
		{"negative", []dto.CollectFeeItem{{FeeMasterID: fm.FeeMasterID, Amount: dec("-1")}},
			func(err error) bool { return errors.Is(err, helper.ErrInvalidAmount) }},
		{"zero", []dto.CollectFeeItem{{FeeMasterID: fm.FeeMasterID, Amount: decimal.Zero}},
			func(err error) bool { return errors.Is(err, helper.ErrInvalidAmount) }},
		{"sub-cent", []dto.CollectFeeItem{{FeeMasterID: fm.FeeMasterID, Amount: dec("0.001")}},
			func(err error) bool { return errors.Is(err, helper.ErrInvalidAmount) }},
		{"overpay", []dto.CollectFeeItem{{FeeMasterID: fm.FeeMasterID, Amount: dec("100.01")}},
			func(err error) bool { return helper.IsKind(err, helper.KindValidation) }},
		{"duplicate master", []dto.CollectFeeItem{
			{FeeMasterID: fm.FeeMasterID, Amount: dec("1")},
			{FeeMasterID: fm.FeeMasterID, Amount: dec("1")},
		}, func(err error) bool { return helper.IsKind(err, helper.KindValidation) }},
		{"other class", []dto.CollectFeeItem{{FeeMasterID: foreign.FeeMasterID, Amount: dec("1")}},
			func(err error) bool { return helper.IsKind(err, helper.KindValidation) }},
		{"unknown discount", []dto.CollectFeeItem{{FeeMasterID: fm.FeeMasterID, Amount: dec("1"), DiscountCode: "NOPE"}},
			func(err error) bool { return helper.IsKind(err, helper.KindValidation) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CollectFees(f.ctx, f.ac, f.student.SchoolStudentID, collectReq(tc.items...), "")
			require.Error(t, err)
			assert.True(t, tc.check(err), "unexpected error: %v", err)
		})
	}

	rows, err := f.repo.ListStudentFees(f.ctx, f.ac.SchoolID, []uuid.UUID{f.student.SchoolStudentID})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCollectFees_AmountRoundedBeforeValidation(t *testing.T) {
	f := newFeeFixture(t)
	fm := f.addMaster(t, "1000")

	_, err := f.svc.CollectFees(f.ctx, f.ac, f.student.SchoolStudentID,
		collectReq(dto.CollectFeeItem{FeeMasterID: fm.FeeMasterID, Amount: dec("0.004")}), "")
	assert.True(t, errors.Is(err, helper.ErrInvalidAmount), "got %v", err)
	rows, err := f.repo.ListStudentFees(f.ctx, f.ac.SchoolID, []uuid.UUID{f.student.SchoolStudentID})
	require.NoError(t, err)
	assert.Empty(t, rows)

	res, err := f.svc.CollectFees(f.ctx, f.ac, f.student.SchoolStudentID,
		collectReq(dto.CollectFeeItem{FeeMasterID: fm.FeeMasterID, Amount: dec("999.996")}), "")
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.True(t, res.Items[0].StudentFeePaidAmount.Equal(dec("1000")))
	assert.True(t, res.Items[0].StudentFeeAmount.Equal(dec("1000")))

	due, err := f.svc.ComputeDueFees(f.ctx, f.ac, f.student.SchoolStudentID)
	require.NoError(t, err)
	assert.Equal(t, dto.DueStatusPaid, due.Fees[0].Status)
}

func TestCollectFees_PaidInFullRejectsMore(t *testing.T) {
	f := newFeeFixture(t)
	fm := f.addMaster(t, "100")
	_, err := f.svc.CollectFees(f.ctx, f.ac, f.student.SchoolStudentID,
		collectReq(dto.CollectFeeItem{FeeMasterID: fm.FeeMasterID, Amount: dec("100")}), "")
	require.NoError(t, err)

	_, err = f.svc.CollectFees(f.ctx, f.ac, f.student.SchoolStudentID,
		collectReq(dto.CollectFeeItem{FeeMasterID: fm.FeeMasterID, Amount: dec("1")}), "")
	assert.True(t, helper.IsKind(err, helper.KindValidation))
}

func TestCollectFees_DiscountCappedAtBalance(t *testing.T) {
	f := newFeeFixture(t)
	fm := f.addMaster(t, "1000")
	_, err := f.svc.CreateDiscount(f.ctx, f.ac, dto.CreateFeeDiscountRequest{
		FeeDiscountName:      "Yatim",
		FeeDiscountCode:      " yatim ",
		FeeDiscountAmount:    dec("300"),
		FeeDiscountFeeTypeID: &f.feeType.FeeTypeID,
	})
	require.NoError(t, err)

	res, err := f.svc.CollectFees(f.ctx, f.ac, f.student.SchoolStudentID,
		collectReq(dto.CollectFeeItem{FeeMasterID: fm.FeeMasterID, Amount: dec("800"), DiscountCode: "YATIM"}), "")
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.True(t, res.Items[0].StudentFeeDiscountAmount.Equal(dec("200")))
	assert.True(t, res.Items[0].StudentFeeAmount.Equal(dec("1000")))

	due, err := f.svc.ComputeDueFees(f.ctx, f.ac, f.student.SchoolStudentID)
	require.NoError(t, err)
	assert.Equal(t, dto.DueStatusPaid, due.Fees[0].Status)
	assert.True(t, due.Fees[0].Discount.Equal(dec("200")))
}

func TestCollectFees_TenantIsolation(t *testing.T) {
	f := newFeeFixture(t)
	fm := f.addMaster(t, "100")

	intruder := f.ac
	intruder.SchoolID = uuid.New()
	_, err := f.svc.CollectFees(f.ctx, intruder, f.student.SchoolStudentID,
		collectReq(dto.CollectFeeItem{FeeMasterID: fm.FeeMasterID, Amount: dec("10")}), "")
	assert.True(t, helper.IsKind(err, helper.KindNotFound))

	_, err = f.svc.ComputeDueFees(f.ctx, intruder, f.student.SchoolStudentID)
	assert.True(t, helper.IsKind(err, helper.KindNotFound))
}

func TestCreateCatalog_Validation(t *testing.T) {
	f := newFeeFixture(t)

	_, err := f.svc.CreateFeeType(f.ctx, f.ac, dto.CreateFeeTypeRequest{FeeTypeName: "SPP"})
	assert.True(t, helper.IsKind(err, helper.KindConflict))

	_, err = f.svc.CreateFeeMaster(f.ctx, f.ac, dto.CreateFeeMasterRequest{
		FeeMasterFeeTypeID: uuid.New(), FeeMasterClassID: f.classID, FeeMasterAmount: dec("10"),
	})
	assert.True(t, helper.IsKind(err, helper.KindValidation))

	_, err = f.svc.CreateFeeMaster(f.ctx, f.ac, dto.CreateFeeMasterRequest{
		FeeMasterFeeTypeID: f.feeType.FeeTypeID, FeeMasterClassID: f.classID, FeeMasterAmount: decimal.Zero,
	})
	assert.True(t, errors.Is(err, helper.ErrInvalidAmount))
}
