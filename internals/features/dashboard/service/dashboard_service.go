// file: internals/features/dashboard/service/dashboard_service.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"schoolku_backend/internals/configs"
	"schoolku_backend/internals/features/dashboard/dto"
	feeDto "schoolku_backend/internals/features/finance/fees/dto"
	walletDto "schoolku_backend/internals/features/finance/wallets/dto"
	woDto "schoolku_backend/internals/features/procurement/work_orders/dto"
	studentRepo "schoolku_backend/internals/features/school/students/repository"
	studentService "schoolku_backend/internals/features/school/students/service"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
	"schoolku_backend/internals/helpers/dbtime"
)

const recentWalletTransactions = 5

// Sumber data dashboard; diisi service masing-masing fitur.
type FeeSource interface {
	CollectionTotals(ctx context.Context, ac helperAuth.AuthContext, from, until *time.Time) (feeDto.CollectionTotals, error)
	OutstandingTotal(ctx context.Context, ac helperAuth.AuthContext) (feeDto.DueReportSummary, error)
	ComputeDueFees(ctx context.Context, ac helperAuth.AuthContext, studentID uuid.UUID) (*feeDto.DueFeesResponse, error)
}

type WalletSource interface {
	Totals(ctx context.Context, ac helperAuth.AuthContext) (walletDto.WalletTotals, error)
	Snapshot(ctx context.Context, ac helperAuth.AuthContext, studentID uuid.UUID, recent int) (*walletDto.WalletSnapshot, error)
}

type InventorySource interface {
	CountLowStock(ctx context.Context, ac helperAuth.AuthContext) (int64, error)
}

type WorkOrderSource interface {
	OpenBalance(ctx context.Context, ac helperAuth.AuthContext) (woDto.OpenBalance, error)
}

type Service struct {
	Fees       FeeSource
	Wallets    WalletSource
	Inventory  InventorySource
	WorkOrders WorkOrderSource
	Students   studentRepo.Directory
	now        func() time.Time
}

func NewService(fees FeeSource, wallets WalletSource, inventory InventorySource, workOrders WorkOrderSource, students studentRepo.Directory) *Service {
	return &Service{
		Fees:       fees,
		Wallets:    wallets,
		Inventory:  inventory,
		WorkOrders: workOrders,
		Students:   students,
		now:        time.Now,
	}
}

// WithClock untuk test.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Admin: semua angka diambil paralel; error pertama membatalkan sisanya.
// loc menentukan batas "hari ini" / "bulan ini".
func (s *Service) Admin(ctx context.Context, ac helperAuth.AuthContext, loc *time.Location) (*dto.AdminDashboard, error) {
	if loc == nil {
		loc = dbtime.DefaultLocation()
	}
	now := s.now().In(loc)
	today, month := dbtime.StartOfDay(now), dbtime.StartOfMonth(now)
	out := &dto.AdminDashboard{GeneratedAt: now}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.Fees.CollectionTotals(gctx, ac, &today, nil)
		if err != nil {
			return errors.Wrap(err, "collected today")
		}
		out.CollectedToday = t
		return nil
	})
	g.Go(func() error {
		t, err := s.Fees.CollectionTotals(gctx, ac, &month, nil)
		if err != nil {
			return errors.Wrap(err, "collected this month")
		}
		out.CollectedThisMonth = t
		return nil
	})
	g.Go(func() error {
		sum, err := s.Fees.OutstandingTotal(gctx, ac)
		if err != nil {
			// sekolah terlalu besar untuk dihitung on-the-fly → kosongkan saja
			if helper.IsKind(err, helper.KindValidation) {
				configs.LogWarn(configs.GetLogger(), "dashboard", "Admin", "outstanding unavailable", ac.SchoolID.String(), err.Error())
				return nil
			}
			return errors.Wrap(err, "outstanding total")
		}
		out.Outstanding = &sum
		out.OutstandingAvailable = true
		return nil
	})
	g.Go(func() error {
		t, err := s.Wallets.Totals(gctx, ac)
		if err != nil {
			return errors.Wrap(err, "wallet totals")
		}
		out.Wallets = t
		return nil
	})
	g.Go(func() error {
		n, err := s.Inventory.CountLowStock(gctx, ac)
		if err != nil {
			return errors.Wrap(err, "low stock")
		}
		out.LowStockItems = n
		return nil
	})
	g.Go(func() error {
		ob, err := s.WorkOrders.OpenBalance(gctx, ac)
		if err != nil {
			return errors.Wrap(err, "work order balance")
		}
		out.WorkOrders = ob
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Student: siswa melihat dirinya sendiri, orang tua wajib kirim student_id anaknya.
func (s *Service) Student(ctx context.Context, ac helperAuth.AuthContext, requested *uuid.UUID) (*dto.StudentDashboard, error) {
	st, err := studentService.ResolveMemberStudent(ctx, s.Students, ac, requested)
	if err != nil {
		return nil, err
	}
	out := &dto.StudentDashboard{Student: *st}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		due, err := s.Fees.ComputeDueFees(gctx, ac, st.SchoolStudentID)
		if err != nil {
			return err
		}
		out.DueFees = *due
		return nil
	})
	g.Go(func() error {
		snap, err := s.Wallets.Snapshot(gctx, ac, st.SchoolStudentID, recentWalletTransactions)
		if err != nil {
			return err
		}
		out.Wallet = *snap
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
