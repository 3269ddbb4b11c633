// file: internals/features/finance/fees/service/fee_collection_service.go
package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"schoolku_backend/internals/configs"
	database "schoolku_backend/internals/databases"
	"schoolku_backend/internals/features/finance/fees/dto"
	"schoolku_backend/internals/features/finance/fees/model"
	"schoolku_backend/internals/features/finance/fees/repository"
	studentModel "schoolku_backend/internals/features/school/students/model"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
	"schoolku_backend/internals/services/notification"
)

const defaultPaymentMode = "cash"

// NewTransactionID: TXN-<unix-millis>-<6 hex uppercase>, dipakai bersama oleh satu batch.
func NewTransactionID(now time.Time) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("TXN-%d-%s", now.UnixMilli(), strings.ToUpper(hex[:6]))
}

func validateCollectItems(items []dto.CollectFeeItem) error {
	if len(items) == 0 {
		return helper.Validation("items wajib diisi minimal 1")
	}
	seen := make(map[uuid.UUID]bool, len(items))
	for i, it := range items {
		if it.FeeMasterID == uuid.Nil {
			return helper.Validation("items[%d].fee_master_id wajib diisi", i)
		}
		if seen[it.FeeMasterID] {
			return helper.Validation("items[%d]: fee_master_id duplikat dalam satu transaksi", i)
		}
		seen[it.FeeMasterID] = true
		if it.Amount.IsNegative() {
			return helper.ErrInvalidAmount.WithMessage("items[%d].amount tidak boleh negatif", i)
		}
		if it.FineAmount != nil && it.FineAmount.IsNegative() {
			return helper.Validation("items[%d].fine_amount tidak boleh negatif", i)
		}
	}
	return nil
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// CollectFees mencatat satu batch pembayaran dalam satu transaksi DB. Semua item
// berbagi transactionId; gagal di item mana pun = tidak ada baris yang tersimpan.
// Mengulang dengan transactionId yang sama mengembalikan batch yang sudah ada.
func (s *Service) CollectFees(ctx context.Context, ac helperAuth.AuthContext, studentID uuid.UUID, req dto.CollectFeesRequest, idempotencyKey string) (*dto.CollectFeesResult, error) {
	if err := validateCollectItems(req.Items); err != nil {
		return nil, err
	}

	now := s.now()
	txnID := firstNonBlank(idempotencyKey, req.TransactionID)
	if txnID == "" {
		txnID = NewTransactionID(now)
	}
	if len(txnID) > 64 {
		return nil, helper.Validation("transaction_id maksimal 64 karakter")
	}

	if s.locker != nil {
		lock, err := s.locker.Obtain(ctx, "lock:fee-collect:"+ac.SchoolID.String()+":"+txnID, s.lockTTL, nil)
		switch {
		case errors.Is(err, redislock.ErrNotObtained):
			return nil, helper.Conflict("transaksi %s sedang diproses", txnID)
		case err != nil:
			// redis bermasalah: lanjut, advisory lock DB tetap menjaga
			configs.LogWarn(s.log, "fees", "CollectFees", "redis lock", txnID, err.Error())
		default:
			defer func() { _ = lock.Release(context.Background()) }()
		}
	}

	student, err := s.loadStudent(ctx, ac.SchoolID, studentID)
	if err != nil {
		return nil, err
	}

	paidDate := now
	if req.PaidDate != nil && !req.PaidDate.IsZero() {
		paidDate = *req.PaidDate
	}

	var result *dto.CollectFeesResult
	err = s.repo.WithinTx(ctx, func(r repository.Repository) error {
		if err := r.LockStudent(ctx, ac.SchoolID, studentID); err != nil {
			return errors.Wrap(err, "lock student")
		}

		existing, err := r.ListStudentFeesByTransaction(ctx, ac.SchoolID, txnID)
		if err != nil {
			return errors.Wrap(err, "find transaction")
		}
		if len(existing) > 0 {
			for _, e := range existing {
				if e.StudentFeeStudentID != studentID {
					return helper.Conflict("transaction_id %s sudah dipakai untuk siswa lain", txnID)
				}
			}
			result = buildCollectResult(txnID, studentID, existing, true)
			return nil
		}

		masters, err := r.ListFeeMasters(ctx, ac.SchoolID, repository.FeeMasterFilter{ClassIDs: []uuid.UUID{student.SchoolStudentClassID}})
		if err != nil {
			return errors.Wrap(err, "list fee masters")
		}
		byID := make(map[uuid.UUID]model.FeeMasterModel, len(masters))
		for _, m := range masters {
			byID[m.FeeMasterID] = m
		}

		history, err := r.ListStudentFees(ctx, ac.SchoolID, []uuid.UUID{studentID})
		if err != nil {
			return errors.Wrap(err, "list student fees")
		}
		settledMap := settledByMaster(history)

		rows := make([]model.StudentFeeModel, 0, len(req.Items))
		for i, it := range req.Items {
			// bulatkan dulu baru divalidasi; yang disimpan = yang dicek
			amount := it.Amount.Round(2)
			fm, ok := byID[it.FeeMasterID]
			if !ok {
				return helper.Validation("items[%d]: fee master tidak berlaku untuk kelas siswa", i)
			}
			st := settledMap[fm.FeeMasterID]
			balance := fm.FeeMasterAmount.Sub(st.paid).Sub(st.discount)
			if !balance.IsPositive() {
				return helper.Validation("items[%d]: tagihan %s sudah lunas", i, fm.FeeMasterFeeTypeName)
			}

			discount := decimal.Zero
			var discountCode *string
			if code := dto.NormalizeDiscountCode(it.DiscountCode); code != "" {
				d, err := r.GetDiscountByCode(ctx, ac.SchoolID, code)
				if err != nil {
					if repository.IsNotFound(err) {
						return helper.Validation("items[%d]: kode diskon %s tidak ditemukan", i, code)
					}
					return errors.Wrap(err, "get discount")
				}
				if !d.AppliesTo(fm.FeeMasterFeeTypeID) {
					return helper.Validation("items[%d]: kode diskon %s tidak berlaku untuk %s", i, code, fm.FeeMasterFeeTypeName)
				}
				remaining := decimal.Max(balance.Sub(amount), decimal.Zero)
				discount = decimal.Min(d.FeeDiscountAmount, remaining).Round(2)
				discountCode = &code
			}

			applied := amount.Add(discount)
			if !applied.IsPositive() {
				return helper.ErrInvalidAmount.WithMessage("items[%d]: amount + diskon harus lebih dari 0", i)
			}
			if applied.GreaterThan(balance) {
				return helper.Validation("items[%d]: pembayaran %s melebihi sisa tagihan %s", i, applied.StringFixed(2), balance.StringFixed(2))
			}

			fine := decimal.Zero
			if it.FineAmount != nil {
				fine = it.FineAmount.Round(2)
			}

			row := model.StudentFeeModel{
				StudentFeeSchoolID:       ac.SchoolID,
				StudentFeeStudentID:      studentID,
				StudentFeeFeeMasterID:    fm.FeeMasterID,
				StudentFeeFeeTypeID:      fm.FeeMasterFeeTypeID,
				StudentFeeFeeTypeName:    fm.FeeMasterFeeTypeName,
				StudentFeeAmount:         applied,
				StudentFeePaidAmount:     amount,
				StudentFeeDiscountCode:   discountCode,
				StudentFeeDiscountAmount: discount,
				StudentFeeFineAmount:     fine,
				StudentFeeStatus:         model.StudentFeePaid,
				StudentFeeTransactionID:  txnID,
				StudentFeePaymentMode:    firstNonBlank(it.PaymentMode, req.PaymentMode, defaultPaymentMode),
				StudentFeeNote:           it.Note,
				StudentFeePaidDate:       paidDate,
				StudentFeeCollectedBy:    ac.ActorID(),
			}
			if err := r.CreateStudentFee(ctx, &row); err != nil {
				return errors.Wrapf(err, "create student fee item %d", i)
			}
			rows = append(rows, row)
		}

		result = buildCollectResult(txnID, studentID, rows, false)
		return nil
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, helper.Conflict("transaction_id %s sudah diproses", txnID)
		}
		return nil, err
	}

	if !result.Replayed {
		notification.Dispatch(s.notifier, receiptMessage(student, result))
	}
	return result, nil
}

func buildCollectResult(txnID string, studentID uuid.UUID, rows []model.StudentFeeModel, replayed bool) *dto.CollectFeesResult {
	res := &dto.CollectFeesResult{
		TransactionID: txnID,
		StudentID:     studentID,
		Items:         rows,
		TotalPaid:     decimal.Zero,
		TotalDiscount: decimal.Zero,
		TotalFine:     decimal.Zero,
		Replayed:      replayed,
	}
	for _, r := range rows {
		res.TotalPaid = res.TotalPaid.Add(r.StudentFeePaidAmount)
		res.TotalDiscount = res.TotalDiscount.Add(r.StudentFeeDiscountAmount)
		res.TotalFine = res.TotalFine.Add(r.StudentFeeFineAmount)
	}
	return res
}

func receiptMessage(st *studentModel.SchoolStudentModel, res *dto.CollectFeesResult) notification.Message {
	msg := notification.Message{
		Subject:  "Kwitansi pembayaran " + res.TransactionID,
		Category: "fee_receipt",
	}
	if st.SchoolStudentEmail == nil || strings.TrimSpace(*st.SchoolStudentEmail) == "" {
		return msg
	}
	msg.To = []mail.Address{{Name: st.SchoolStudentFullName, Address: strings.TrimSpace(*st.SchoolStudentEmail)}}

	var b strings.Builder
	fmt.Fprintf(&b, "Pembayaran atas nama %s (%s)\n", st.SchoolStudentFullName, st.SchoolStudentAdmissionNo)
	fmt.Fprintf(&b, "No. transaksi: %s\n\n", res.TransactionID)
	for _, it := range res.Items {
		fmt.Fprintf(&b, "- %s: %s", it.StudentFeeFeeTypeName, it.StudentFeePaidAmount.StringFixed(2))
		if it.StudentFeeDiscountAmount.IsPositive() {
			fmt.Fprintf(&b, " (diskon %s)", it.StudentFeeDiscountAmount.StringFixed(2))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nTotal dibayar: %s\n", res.TotalPaid.Add(res.TotalFine).StringFixed(2))
	msg.Text = b.String()
	return msg
}
