// file: internals/features/finance/wallets/service/wallet_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"schoolku_backend/internals/configs"
	database "schoolku_backend/internals/databases"
	"schoolku_backend/internals/features/finance/wallets/dto"
	"schoolku_backend/internals/features/finance/wallets/model"
	"schoolku_backend/internals/features/finance/wallets/repository"
	studentRepo "schoolku_backend/internals/features/school/students/repository"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

const mutationAttempts = 3

// Service ledger wallet siswa. Semua mutasi saldo lewat applyLocked di dalam
// satu transaksi dengan baris wallet terkunci.
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

// NewTxCode: TXN<unix-millis><8 hex uppercase>
func NewTxCode(now time.Time) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("TXN%d%s", now.UnixMilli(), strings.ToUpper(hex[:8]))
}

/* ===============================
   Wallet
=================================*/

// GetOrCreateWallet membuat wallet saldo 0 saat pertama diakses.
// Race create diselesaikan oleh unique index (school, student) lalu baca ulang.
func (s *Service) GetOrCreateWallet(ctx context.Context, ac helperAuth.AuthContext, studentID uuid.UUID) (*model.WalletModel, error) {
	if _, err := s.students.GetStudent(ctx, ac.SchoolID, studentID); err != nil {
		if studentRepo.IsNotFound(err) {
			return nil, helper.NotFound("siswa tidak ditemukan")
		}
		return nil, errors.Wrap(err, "get student")
	}

	var wallet *model.WalletModel
	err := database.WithRetry(ctx, mutationAttempts, func() error {
		w, err := s.repo.GetWallet(ctx, ac.SchoolID, studentID)
		if err == nil {
			wallet = w
			return nil
		}
		if !repository.IsNotFound(err) {
			return errors.Wrap(err, "get wallet")
		}
		w = &model.WalletModel{
			WalletSchoolID:  ac.SchoolID,
			WalletStudentID: studentID,
			WalletBalance:   decimal.Zero,
			WalletStatus:    model.WalletActive,
		}
		if err := s.repo.CreateWallet(ctx, w); err != nil {
			// unique violation → retry, baca wallet yang dibuat request lain
			return err
		}
		wallet = w
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "get or create wallet")
	}
	return wallet, nil
}

func (s *Service) Credit(ctx context.Context, ac helperAuth.AuthContext, studentID uuid.UUID, req dto.MutationRequest) (*dto.MutationResult, error) {
	return s.mutate(ctx, ac, studentID, model.TxCredit, req)
}

func (s *Service) Debit(ctx context.Context, ac helperAuth.AuthContext, studentID uuid.UUID, req dto.MutationRequest) (*dto.MutationResult, error) {
	return s.mutate(ctx, ac, studentID, model.TxDebit, req)
}

func (s *Service) mutate(ctx context.Context, ac helperAuth.AuthContext, studentID uuid.UUID, typ model.TransactionType, req dto.MutationRequest) (*dto.MutationResult, error) {
	if !req.Amount.IsPositive() {
		return nil, helper.ErrInvalidAmount
	}
	if _, err := s.GetOrCreateWallet(ctx, ac, studentID); err != nil {
		return nil, err
	}

	var res *dto.MutationResult
	err := database.WithRetry(ctx, mutationAttempts, func() error {
		return s.repo.WithinTx(ctx, func(r repository.Repository) error {
			w, err := r.LockWallet(ctx, ac.SchoolID, studentID)
			if err != nil {
				return errors.Wrap(err, "lock wallet")
			}
			out, err := s.applyLocked(ctx, r, w, typ, req, ac.ActorID())
			if err != nil {
				return err
			}
			res = out
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// applyLocked: w wajib sudah di-lock di transaksi r. Ditolak = tidak ada yang berubah.
func (s *Service) applyLocked(ctx context.Context, r repository.Repository, w *model.WalletModel, typ model.TransactionType, req dto.MutationRequest, performedBy *uuid.UUID) (*dto.MutationResult, error) {
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, helper.ErrInvalidAmount
	}
	if !w.IsActive() {
		return nil, helper.ErrWalletNotActive.WithMessage("wallet berstatus %s", w.WalletStatus)
	}

	newBalance := w.WalletBalance.Add(amount)
	if typ == model.TxDebit {
		if w.WalletBalance.LessThan(amount) {
			return nil, helper.ErrInsufficientBalance.WithMessage("saldo %s tidak cukup untuk debit %s",
				w.WalletBalance.StringFixed(2), amount.StringFixed(2))
		}
		newBalance = w.WalletBalance.Sub(amount)
	}

	now := s.now()
	tx := model.WalletTransactionModel{
		WalletTransactionSchoolID:     w.WalletSchoolID,
		WalletTransactionWalletID:     w.WalletID,
		WalletTransactionStudentID:    w.WalletStudentID,
		WalletTransactionCode:         NewTxCode(now),
		WalletTransactionSeq:          w.WalletTransactionCount + 1,
		WalletTransactionType:         typ,
		WalletTransactionCategory:     req.NormalizedCategory(),
		WalletTransactionAmount:       amount,
		WalletTransactionBalanceAfter: newBalance,
		WalletTransactionPerformedBy:  performedBy,
		WalletTransactionNote:         req.Note,
		WalletTransactionReference:    req.Reference,
		WalletTransactionDate:         now,
	}
	if err := r.CreateTransaction(ctx, &tx); err != nil {
		return nil, errors.Wrap(err, "create wallet transaction")
	}

	w.WalletBalance = newBalance
	w.WalletTransactionCount = tx.WalletTransactionSeq
	if err := r.SaveWallet(ctx, w); err != nil {
		return nil, errors.Wrap(err, "save wallet")
	}

	return &dto.MutationResult{
		WalletID:    w.WalletID,
		StudentID:   w.WalletStudentID,
		Balance:     newBalance,
		Transaction: tx,
	}, nil
}

func (s *Service) SetStatus(ctx context.Context, ac helperAuth.AuthContext, studentID uuid.UUID, status model.WalletStatus) (*model.WalletModel, error) {
	status = model.WalletStatus(strings.ToLower(strings.TrimSpace(string(status))))
	if !status.Valid() {
		return nil, helper.Validation("status wallet tidak valid (active|blocked|closed)")
	}
	if _, err := s.GetOrCreateWallet(ctx, ac, studentID); err != nil {
		return nil, err
	}

	var out *model.WalletModel
	err := s.repo.WithinTx(ctx, func(r repository.Repository) error {
		w, err := r.LockWallet(ctx, ac.SchoolID, studentID)
		if err != nil {
			return errors.Wrap(err, "lock wallet")
		}
		if w.WalletStatus != status {
			s.log.WithFields(logrus.Fields{
				"module":    "wallets",
				"wallet_id": w.WalletID,
				"from":      w.WalletStatus,
				"to":        status,
			}).Info("wallet status changed")
		}
		w.WalletStatus = status
		if err := r.SaveWallet(ctx, w); err != nil {
			return errors.Wrap(err, "save wallet")
		}
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

/* ===============================
   Queries
=================================*/

// ListTransactions f.StudentID nil = semua siswa sekolah (view admin).
func (s *Service) ListTransactions(ctx context.Context, ac helperAuth.AuthContext, f dto.TransactionFilter, p helper.Paging) ([]model.WalletTransactionModel, int64, error) {
	if f.Type != "" && !f.Type.Valid() {
		return nil, 0, helper.Validation("type harus credit atau debit")
	}
	if f.StudentID != nil {
		if _, err := s.GetOrCreateWallet(ctx, ac, *f.StudentID); err != nil {
			return nil, 0, err
		}
	}
	rows, total, err := s.repo.ListTransactions(ctx, ac.SchoolID, f, p.Offset, p.Limit)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list wallet transactions")
	}
	return rows, total, nil
}

// VerifyWallet replay semua transaksi dari 0 dan bandingkan dengan saldo tersimpan.
func (s *Service) VerifyWallet(ctx context.Context, ac helperAuth.AuthContext, studentID uuid.UUID) (*dto.WalletVerification, error) {
	w, err := s.GetOrCreateWallet(ctx, ac, studentID)
	if err != nil {
		return nil, err
	}
	txs, err := s.repo.AllTransactions(ctx, ac.SchoolID, w.WalletID)
	if err != nil {
		return nil, errors.Wrap(err, "all wallet transactions")
	}

	out := &dto.WalletVerification{
		WalletID:         w.WalletID,
		StudentID:        studentID,
		StoredBalance:    w.WalletBalance,
		ReplayedBalance:  decimal.Zero,
		LastBalanceAfter: decimal.Zero,
		TransactionCount: int64(len(txs)),
		Consistent:       true,
	}
	running := decimal.Zero
	for i, t := range txs {
		running = running.Add(t.Signed())
		if t.WalletTransactionSeq != int64(i+1) || !t.WalletTransactionBalanceAfter.Equal(running) || running.IsNegative() {
			if out.FirstMismatchSeq == nil {
				seq := t.WalletTransactionSeq
				out.FirstMismatchSeq = &seq
			}
			out.Consistent = false
		}
		out.LastBalanceAfter = t.WalletTransactionBalanceAfter
	}
	out.ReplayedBalance = running
	if !running.Equal(w.WalletBalance) || !out.LastBalanceAfter.Equal(w.WalletBalance) || w.WalletTransactionCount != int64(len(txs)) {
		out.Consistent = false
	}
	if !out.Consistent {
		configs.LogWarn(s.log, "wallets", "VerifyWallet", "replay mismatch", w.WalletID.String(),
			fmt.Sprintf("stored=%s replayed=%s", w.WalletBalance.StringFixed(2), running.StringFixed(2)))
	}
	return out, nil
}

func (s *Service) CategorySummary(ctx context.Context, ac helperAuth.AuthContext, dr helper.DateRange) (*dto.CategorySummary, error) {
	rows, err := s.repo.CategorySummary(ctx, ac.SchoolID, dr.From, dr.Until)
	if err != nil {
		return nil, errors.Wrap(err, "wallet category summary")
	}
	out := &dto.CategorySummary{
		From:        dr.From,
		Until:       dr.Until,
		Rows:        make([]dto.CategorySummaryRow, 0, len(rows)),
		TotalCredit: decimal.Zero,
		TotalDebit:  decimal.Zero,
	}
	for _, r := range rows {
		out.Rows = append(out.Rows, dto.CategorySummaryRow{Type: r.Type, Category: r.Category, Count: r.Count, Amount: r.Amount})
		if r.Type == model.TxDebit {
			out.TotalDebit = out.TotalDebit.Add(r.Amount)
		} else {
			out.TotalCredit = out.TotalCredit.Add(r.Amount)
		}
	}
	return out, nil
}

func (s *Service) Totals(ctx context.Context, ac helperAuth.AuthContext) (dto.WalletTotals, error) {
	t, err := s.repo.WalletTotals(ctx, ac.SchoolID)
	if err != nil {
		return dto.WalletTotals{}, errors.Wrap(err, "wallet totals")
	}
	return dto.WalletTotals{Wallets: t.Wallets, ActiveWallets: t.Active, TotalBalance: t.Balance}, nil
}

// Snapshot wallet + n transaksi terakhir (dashboard siswa).
func (s *Service) Snapshot(ctx context.Context, ac helperAuth.AuthContext, studentID uuid.UUID, recent int) (*dto.WalletSnapshot, error) {
	w, err := s.GetOrCreateWallet(ctx, ac, studentID)
	if err != nil {
		return nil, err
	}
	rows, _, err := s.repo.ListTransactions(ctx, ac.SchoolID, dto.TransactionFilter{StudentID: &studentID}, 0, recent)
	if err != nil {
		return nil, errors.Wrap(err, "recent wallet transactions")
	}
	return &dto.WalletSnapshot{Wallet: *w, RecentTransactions: rows}, nil
}
