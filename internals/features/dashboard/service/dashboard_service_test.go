package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolku_backend/internals/constants"
	feeDto "schoolku_backend/internals/features/finance/fees/dto"
	walletDto "schoolku_backend/internals/features/finance/wallets/dto"
	woDto "schoolku_backend/internals/features/procurement/work_orders/dto"
	studentModel "schoolku_backend/internals/features/school/students/model"
	studentRepo "schoolku_backend/internals/features/school/students/repository"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

type fakeFees struct {
	mu             sync.Mutex
	windows        []time.Time
	outstandingErr error
	dueErr         error
}

func (f *fakeFees) CollectionTotals(_ context.Context, _ helperAuth.AuthContext, from, _ *time.Time) (feeDto.CollectionTotals, error) {
	f.mu.Lock()
	f.windows = append(f.windows, *from)
	f.mu.Unlock()
	if from.Day() == 1 && from.Hour() == 0 {
		return feeDto.CollectionTotals{Count: 10, Paid: decimal.NewFromInt(5000)}, nil
	}
	return feeDto.CollectionTotals{Count: 2, Paid: decimal.NewFromInt(700)}, nil
}

func (f *fakeFees) OutstandingTotal(context.Context, helperAuth.AuthContext) (feeDto.DueReportSummary, error) {
	if f.outstandingErr != nil {
		return feeDto.DueReportSummary{}, f.outstandingErr
	}
	return feeDto.DueReportSummary{Students: 3, TotalBalance: decimal.NewFromInt(1200)}, nil
}

func (f *fakeFees) ComputeDueFees(_ context.Context, _ helperAuth.AuthContext, studentID uuid.UUID) (*feeDto.DueFeesResponse, error) {
	if f.dueErr != nil {
		return nil, f.dueErr
	}
	return &feeDto.DueFeesResponse{StudentID: studentID}, nil
}

type fakeWallets struct{ err error }

func (f fakeWallets) Totals(context.Context, helperAuth.AuthContext) (walletDto.WalletTotals, error) {
	if f.err != nil {
		return walletDto.WalletTotals{}, f.err
	}
	return walletDto.WalletTotals{Wallets: 4, ActiveWallets: 3, TotalBalance: decimal.NewFromInt(900)}, nil
}

func (f fakeWallets) Snapshot(_ context.Context, _ helperAuth.AuthContext, _ uuid.UUID, recent int) (*walletDto.WalletSnapshot, error) {
	return &walletDto.WalletSnapshot{}, nil
}

type fakeInventory struct{}

func (fakeInventory) CountLowStock(context.Context, helperAuth.AuthContext) (int64, error) {
	return 2, nil
}

type fakeWorkOrders struct{}

func (fakeWorkOrders) OpenBalance(context.Context, helperAuth.AuthContext) (woDto.OpenBalance, error) {
	return woDto.OpenBalance{OpenWorkOrders: 1, Balance: decimal.NewFromInt(350)}, nil
}

var dashNow = time.Date(2026, 9, 17, 14, 45, 0, 0, time.UTC)

func newDashboard(fees *fakeFees, wallets fakeWallets, dir studentRepo.Directory) *Service {
	return NewService(fees, wallets, fakeInventory{}, fakeWorkOrders{}, dir).
		WithClock(func() time.Time { return dashNow })
}

func TestAdminDashboard_FansOut(t *testing.T) {
	fees := &fakeFees{}
	svc := newDashboard(fees, fakeWallets{}, studentRepo.NewMemoryDirectory())
	ac := helperAuth.AuthContext{UserID: uuid.New(), SchoolID: uuid.New(), Role: constants.RoleAdmin}

	out, err := svc.Admin(context.Background(), ac, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, int64(2), out.CollectedToday.Count)
	assert.Equal(t, int64(10), out.CollectedThisMonth.Count)
	require.True(t, out.OutstandingAvailable)
	assert.True(t, out.Outstanding.TotalBalance.Equal(decimal.NewFromInt(1200)))
	assert.Equal(t, int64(4), out.Wallets.Wallets)
	assert.Equal(t, int64(2), out.LowStockItems)
	assert.True(t, out.WorkOrders.Balance.Equal(decimal.NewFromInt(350)))

	assert.ElementsMatch(t, []time.Time{
		time.Date(2026, 9, 17, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}, fees.windows)
}

func TestAdminDashboard_OutstandingUnavailable(t *testing.T) {
	fees := &fakeFees{outstandingErr: helper.Validation("terlalu banyak siswa")}
	svc := newDashboard(fees, fakeWallets{}, studentRepo.NewMemoryDirectory())
	ac := helperAuth.AuthContext{UserID: uuid.New(), SchoolID: uuid.New(), Role: constants.RoleAdmin}

	out, err := svc.Admin(context.Background(), ac, time.UTC)
	require.NoError(t, err)
	assert.False(t, out.OutstandingAvailable)
	assert.Nil(t, out.Outstanding)
}

func TestAdminDashboard_FirstErrorFails(t *testing.T) {
	boom := errors.New("db down")
	svc := newDashboard(&fakeFees{}, fakeWallets{err: boom}, studentRepo.NewMemoryDirectory())
	ac := helperAuth.AuthContext{UserID: uuid.New(), SchoolID: uuid.New(), Role: constants.RoleAdmin}

	_, err := svc.Admin(context.Background(), ac, time.UTC)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestStudentDashboard_Access(t *testing.T) {
	schoolID := uuid.New()
	studentUser, parentUser := uuid.New(), uuid.New()
	child := studentModel.SchoolStudentModel{
		SchoolStudentID:           uuid.New(),
		SchoolStudentSchoolID:     schoolID,
		SchoolStudentUserID:       &studentUser,
		SchoolStudentParentUserID: &parentUser,
		SchoolStudentClassID:      uuid.New(),
		SchoolStudentFullName:     "Rani",
		SchoolStudentAdmissionNo:  "ADM-9",
	}
	other := studentModel.SchoolStudentModel{
		SchoolStudentID:          uuid.New(),
		SchoolStudentSchoolID:    schoolID,
		SchoolStudentClassID:     uuid.New(),
		SchoolStudentFullName:    "Dodi",
		SchoolStudentAdmissionNo: "ADM-10",
	}
	svc := newDashboard(&fakeFees{}, fakeWallets{}, studentRepo.NewMemoryDirectory(child, other))
	ctx := context.Background()

	asStudent := helperAuth.AuthContext{UserID: studentUser, SchoolID: schoolID, Role: constants.RoleStudent}
	out, err := svc.Student(ctx, asStudent, nil)
	require.NoError(t, err)
	assert.Equal(t, child.SchoolStudentID, out.Student.SchoolStudentID)
	assert.Equal(t, child.SchoolStudentID, out.DueFees.StudentID)

	asParent := helperAuth.AuthContext{UserID: parentUser, SchoolID: schoolID, Role: constants.RoleParent}
	_, err = svc.Student(ctx, asParent, &child.SchoolStudentID)
	require.NoError(t, err)

	_, err = svc.Student(ctx, asParent, &other.SchoolStudentID)
	assert.True(t, helper.IsKind(err, helper.KindForbidden))

	_, err = svc.Student(ctx, asStudent, &other.SchoolStudentID)
	assert.True(t, helper.IsKind(err, helper.KindForbidden))

	asTeacher := helperAuth.AuthContext{UserID: uuid.New(), SchoolID: schoolID, Role: constants.RoleTeacher}
	_, err = svc.Student(ctx, asTeacher, &child.SchoolStudentID)
	assert.True(t, helper.IsKind(err, helper.KindForbidden))
}
