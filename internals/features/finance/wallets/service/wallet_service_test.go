package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolku_backend/internals/constants"
	"schoolku_backend/internals/features/finance/wallets/dto"
	"schoolku_backend/internals/features/finance/wallets/model"
	"schoolku_backend/internals/features/finance/wallets/repository"
	studentModel "schoolku_backend/internals/features/school/students/model"
	studentRepo "schoolku_backend/internals/features/school/students/repository"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

var walletNow = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type walletFixture struct {
	ctx       context.Context
	repo      *repository.MemoryRepository
	students  *studentRepo.MemoryDirectory
	svc       *Service
	ac        helperAuth.AuthContext
	studentID uuid.UUID
}

func newWalletFixture(t *testing.T) *walletFixture {
	t.Helper()
	f := &walletFixture{
		ctx:       context.Background(),
		repo:      repository.NewMemoryRepository(),
		studentID: uuid.New(),
		ac: helperAuth.AuthContext{
			UserID:   uuid.New(),
			SchoolID: uuid.New(),
			Role:     constants.RoleAccountant,
		},
	}
	email := "budi@example.com"
	f.students = studentRepo.NewMemoryDirectory(studentModel.SchoolStudentModel{
		SchoolStudentID:          f.studentID,
		SchoolStudentSchoolID:    f.ac.SchoolID,
		SchoolStudentClassID:     uuid.New(),
		SchoolStudentFullName:    "Budi",
		SchoolStudentAdmissionNo: "ADM-1",
		SchoolStudentEmail:       &email,
	})
	f.repo.SetClock(func() time.Time { return walletNow })
	f.svc = NewService(f.repo, f.students, WithClock(func() time.Time { return walletNow }))
	return f
}

func TestWallet_CreditDebitScenario(t *testing.T) {
	f := newWalletFixture(t)

	w, err := f.svc.GetOrCreateWallet(f.ctx, f.ac, f.studentID)
	require.NoError(t, err)
	assert.True(t, w.WalletBalance.IsZero())
	assert.Equal(t, model.WalletActive, w.WalletStatus)

	res, err := f.svc.Credit(f.ctx, f.ac, f.studentID, dto.MutationRequest{Amount: amt("500"), Category: "Deposit"})
	require.NoError(t, err)
	assert.True(t, res.Balance.Equal(amt("500")))
	assert.Equal(t, int64(1), res.Transaction.WalletTransactionSeq)
	assert.Equal(t, "deposit", res.Transaction.WalletTransactionCategory)
	assert.Regexp(t, `^TXN\d+[0-9A-F]{8}$`, res.Transaction.WalletTransactionCode)

	res, err = f.svc.Debit(f.ctx, f.ac, f.studentID, dto.MutationRequest{Amount: amt("200")})
	require.NoError(t, err)
	assert.True(t, res.Balance.Equal(amt("300")))
	assert.True(t, res.Transaction.WalletTransactionBalanceAfter.Equal(amt("300")))

	_, err = f.svc.Debit(f.ctx, f.ac, f.studentID, dto.MutationRequest{Amount: amt("400")})
	assert.True(t, errors.Is(err, helper.ErrInsufficientBalance))

	w, err = f.svc.GetOrCreateWallet(f.ctx, f.ac, f.studentID)
	require.NoError(t, err)
	assert.True(t, w.WalletBalance.Equal(amt("300")))
	assert.Equal(t, int64(2), w.WalletTransactionCount)

	v, err := f.svc.VerifyWallet(f.ctx, f.ac, f.studentID)
	require.NoError(t, err)
	assert.True(t, v.Consistent)
	assert.True(t, v.ReplayedBalance.Equal(amt("300")))
}

func TestWallet_RejectsInvalidAmount(t *testing.T) {
	f := newWalletFixture(t)
	for _, a := range []string{"0", "-5"} {
		_, err := f.svc.Credit(f.ctx, f.ac, f.studentID, dto.MutationRequest{Amount: amt(a)})
		assert.True(t, errors.Is(err, helper.ErrInvalidAmount), a)
		_, err = f.svc.Debit(f.ctx, f.ac, f.studentID, dto.MutationRequest{Amount: amt(a)})
		assert.True(t, errors.Is(err, helper.ErrInvalidAmount), a)
	}
}

func TestWallet_UnknownStudent(t *testing.T) {
	f := newWalletFixture(t)
	_, err := f.svc.Credit(f.ctx, f.ac, uuid.New(), dto.MutationRequest{Amount: amt("10")})
	assert.True(t, helper.IsKind(err, helper.KindNotFound))

	other := f.ac
	other.SchoolID = uuid.New()
	_, err = f.svc.GetOrCreateWallet(f.ctx, other, f.studentID)
	assert.True(t, helper.IsKind(err, helper.KindNotFound))
}

func TestWallet_BlockedRejectsMutations(t *testing.T) {
	f := newWalletFixture(t)
	_, err := f.svc.Credit(f.ctx, f.ac, f.studentID, dto.MutationRequest{Amount: amt("100")})
	require.NoError(t, err)

	w, err := f.svc.SetStatus(f.ctx, f.ac, f.studentID, "Blocked")
	require.NoError(t, err)
	assert.Equal(t, model.WalletBlocked, w.WalletStatus)

	_, err = f.svc.Credit(f.ctx, f.ac, f.studentID, dto.MutationRequest{Amount: amt("10")})
	assert.True(t, errors.Is(err, helper.ErrWalletNotActive))
	_, err = f.svc.Debit(f.ctx, f.ac, f.studentID, dto.MutationRequest{Amount: amt("10")})
	assert.True(t, errors.Is(err, helper.ErrWalletNotActive))

	_, err = f.svc.SetStatus(f.ctx, f.ac, f.studentID, "frozen")
	assert.True(t, helper.IsKind(err, helper.KindValidation))

	_, err = f.svc.SetStatus(f.ctx, f.ac, f.studentID, model.WalletActive)
	require.NoError(t, err)
	res, err := f.svc.Debit(f.ctx, f.ac, f.studentID, dto.MutationRequest{Amount: amt("10")})
	require.NoError(t, err)
	assert.True(t, res.Balance.Equal(amt("90")))
}

func TestWallet_FailedInsertLeavesNoTrace(t *testing.T) {
	f := newWalletFixture(t)
	_, err := f.svc.Credit(f.ctx, f.ac, f.studentID, dto.MutationRequest{Amount: amt("100")})
	require.NoError(t, err)

	f.repo.Faults.FailOn("CreateTransaction", 1, errors.New("connection reset"))
	_, err = f.svc.Debit(f.ctx, f.ac, f.studentID, dto.MutationRequest{Amount: amt("40")})
	require.Error(t, err)

	v, err := f.svc.VerifyWallet(f.ctx, f.ac, f.studentID)
	require.NoError(t, err)
	assert.True(t, v.Consistent)
	assert.True(t, v.StoredBalance.Equal(amt("100")))
	assert.Equal(t, int64(1), v.TransactionCount)
}

// Urutan acak credit/debit: saldo tidak pernah negatif dan replay selalu cocok.
func TestWallet_RandomSequenceKeepsBalanceConsistent(t *testing.T) {
	f := newWalletFixture(t)
	rng := rand.New(rand.NewSource(42))
	expected := decimal.Zero

	for i := 0; i < 300; i++ {
		a := decimal.NewFromInt(int64(rng.Intn(500) + 1)).Div(decimal.NewFromInt(4)).Round(2)
		if rng.Intn(2) == 0 {
			res, err := f.svc.Credit(f.ctx, f.ac, f.studentID, dto.MutationRequest{Amount: a})
			require.NoError(t, err)
			expected = expected.Add(a)
			assert.True(t, res.Balance.Equal(expected))
			continue
		}
		res, err := f.svc.Debit(f.ctx, f.ac, f.studentID, dto.MutationRequest{Amount: a})
		if expected.LessThan(a) {
			assert.True(t, errors.Is(err, helper.ErrInsufficientBalance))
			continue
		}
		require.NoError(t, err)
		expected = expected.Sub(a)
		assert.True(t, res.Balance.Equal(expected))
		assert.False(t, res.Balance.IsNegative())
	}

	v, err := f.svc.VerifyWallet(f.ctx, f.ac, f.studentID)
	require.NoError(t, err)
	assert.True(t, v.Consistent)
	assert.True(t, v.StoredBalance.Equal(expected))
}

func TestWallet_VerifyDetectsDrift(t *testing.T) {
	f := newWalletFixture(t)
	res, err := f.svc.Credit(f.ctx, f.ac, f.studentID, dto.MutationRequest{Amount: amt("100")})
	require.NoError(t, err)

	f.repo.CorruptBalance(res.WalletID, amt("150"))

	v, err := f.svc.VerifyWallet(f.ctx, f.ac, f.studentID)
	require.NoError(t, err)
	assert.False(t, v.Consistent)
	assert.True(t, v.ReplayedBalance.Equal(amt("100")))
}

func TestWallet_ListTransactionsStablePaging(t *testing.T) {
	f := newWalletFixture(t)
	for i := 0; i < 7; i++ {
		_, err := f.svc.Credit(f.ctx, f.ac, f.studentID, dto.MutationRequest{Amount: amt("1")})
		require.NoError(t, err)
	}

	seen := map[string]bool{}
	var lastNo int64 = 1 << 62
	for page := 1; page <= 3; page++ {
		p := helper.Paging{Page: page, PerPage: 3, Offset: (page - 1) * 3, Limit: 3}
		rows, total, err := f.svc.ListTransactions(f.ctx, f.ac, dto.TransactionFilter{StudentID: &f.studentID}, p)
		require.NoError(t, err)
		assert.Equal(t, int64(7), total)
		for _, r := range rows {
			assert.False(t, seen[r.WalletTransactionCode], "duplicate across pages")
			seen[r.WalletTransactionCode] = true
			assert.Less(t, r.WalletTransactionNo, lastNo)
			lastNo = r.WalletTransactionNo
		}
	}
	assert.Len(t, seen, 7)

	_, _, err := f.svc.ListTransactions(f.ctx, f.ac, dto.TransactionFilter{Type: "refund"}, helper.Paging{Limit: 10})
	assert.True(t, helper.IsKind(err, helper.KindValidation))
}

func TestWallet_SummaryAndTotals(t *testing.T) {
	f := newWalletFixture(t)
	_, err := f.svc.Credit(f.ctx, f.ac, f.studentID, dto.MutationRequest{Amount: amt("100"), Category: "deposit"})
	require.NoError(t, err)
	_, err = f.svc.Debit(f.ctx, f.ac, f.studentID, dto.MutationRequest{Amount: amt("30"), Category: "canteen"})
	require.NoError(t, err)
	_, err = f.svc.Debit(f.ctx, f.ac, f.studentID, dto.MutationRequest{Amount: amt("20"), Category: "canteen"})
	require.NoError(t, err)

	sum, err := f.svc.CategorySummary(f.ctx, f.ac, helper.DateRange{})
	require.NoError(t, err)
	require.Len(t, sum.Rows, 2)
	assert.True(t, sum.TotalCredit.Equal(amt("100")))
	assert.True(t, sum.TotalDebit.Equal(amt("50")))

	tot, err := f.svc.Totals(f.ctx, f.ac)
	require.NoError(t, err)
	assert.Equal(t, int64(1), tot.Wallets)
	assert.Equal(t, int64(1), tot.ActiveWallets)
	assert.True(t, tot.TotalBalance.Equal(amt("50")))

	snap, err := f.svc.Snapshot(f.ctx, f.ac, f.studentID, 2)
	require.NoError(t, err)
	require.Len(t, snap.RecentTransactions, 2)
	assert.Equal(t, int64(3), snap.RecentTransactions[0].WalletTransactionSeq)
}
