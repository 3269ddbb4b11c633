// file: internals/features/finance/fees/service/fee_due_service.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"schoolku_backend/internals/features/finance/fees/dto"
	"schoolku_backend/internals/features/finance/fees/model"
	"schoolku_backend/internals/features/finance/fees/repository"
	helperAuth "schoolku_backend/internals/helpers/auth"
	"schoolku_backend/internals/helpers/dbtime"
)

var hundred = decimal.NewFromInt(100)

type settled struct {
	paid     decimal.Decimal
	discount decimal.Decimal
}

// settledByMaster menjumlah pembayaran per fee master (FK, bukan nama jenis biaya).
func settledByMaster(fees []model.StudentFeeModel) map[uuid.UUID]settled {
	out := make(map[uuid.UUID]settled)
	for _, f := range fees {
		if f.StudentFeeStatus == model.StudentFeePending {
			continue
		}
		cur := out[f.StudentFeeFeeMasterID]
		cur.paid = cur.paid.Add(f.StudentFeePaidAmount)
		cur.discount = cur.discount.Add(f.StudentFeeDiscountAmount)
		out[f.StudentFeeFeeMasterID] = cur
	}
	return out
}

// FineFor denda hanya berlaku kalau masih ada sisa tagihan dan tanggal jatuh tempo sudah lewat.
func FineFor(m model.FeeMasterModel, balance decimal.Decimal, now time.Time) decimal.Decimal {
	if m.FeeMasterDueDate == nil || !balance.IsPositive() {
		return decimal.Zero
	}
	days := dbtime.DaysBetween(*m.FeeMasterDueDate, now)
	if days < 1 {
		return decimal.Zero
	}
	switch m.FeeMasterFineType {
	case model.FineFixed:
		return m.FeeMasterFineAmount
	case model.FinePercentage:
		return balance.Mul(m.FeeMasterFineAmount).Div(hundred).Round(2)
	case model.FinePerDay:
		return m.FeeMasterFineAmount.Mul(decimal.NewFromInt(int64(days)))
	default:
		return decimal.Zero
	}
}

// DueLine satu baris tagihan: balance = amount - paid - discount.
func DueLine(m model.FeeMasterModel, s settled, now time.Time) dto.DueFeeLine {
	balance := m.FeeMasterAmount.Sub(s.paid).Sub(s.discount)
	status := dto.DueStatusDue
	if !balance.IsPositive() {
		status = dto.DueStatusPaid
	}
	fine := FineFor(m, balance, now)
	return dto.DueFeeLine{
		FeeMasterID:  m.FeeMasterID,
		FeeGroupID:   m.FeeMasterFeeGroupID,
		FeeTypeID:    m.FeeMasterFeeTypeID,
		FeeTypeName:  m.FeeMasterFeeTypeName,
		DueDate:      m.FeeMasterDueDate,
		Amount:       m.FeeMasterAmount,
		Paid:         s.paid,
		Discount:     s.discount,
		Balance:      balance,
		Fine:         fine,
		TotalPayable: decimal.Max(balance, decimal.Zero).Add(fine),
		Status:       status,
	}
}

func BuildDueLines(masters []model.FeeMasterModel, fees []model.StudentFeeModel, now time.Time) []dto.DueFeeLine {
	byMaster := settledByMaster(fees)
	lines := make([]dto.DueFeeLine, 0, len(masters))
	for _, m := range masters {
		lines = append(lines, DueLine(m, byMaster[m.FeeMasterID], now))
	}
	return lines
}

func sumDueLines(lines []dto.DueFeeLine) dto.DueFeeTotals {
	t := dto.DueFeeTotals{
		Amount: decimal.Zero, Paid: decimal.Zero, Discount: decimal.Zero,
		Balance: decimal.Zero, Fine: decimal.Zero, TotalPayable: decimal.Zero,
	}
	for _, l := range lines {
		t.Amount = t.Amount.Add(l.Amount)
		t.Paid = t.Paid.Add(l.Paid)
		t.Discount = t.Discount.Add(l.Discount)
		t.Balance = t.Balance.Add(decimal.Max(l.Balance, decimal.Zero))
		t.Fine = t.Fine.Add(l.Fine)
		t.TotalPayable = t.TotalPayable.Add(l.TotalPayable)
	}
	return t
}

func applicableDiscounts(all []model.FeeDiscountModel, lines []dto.DueFeeLine) []model.FeeDiscountModel {
	types := make(map[uuid.UUID]bool, len(lines))
	for _, l := range lines {
		types[l.FeeTypeID] = true
	}
	out := make([]model.FeeDiscountModel, 0)
	for _, d := range all {
		if d.FeeDiscountFeeTypeID == nil || types[*d.FeeDiscountFeeTypeID] {
			out = append(out, d)
		}
	}
	return out
}

// ComputeDueFees sisa tagihan per fee master untuk kelas siswa + diskon yang berlaku.
// Tanpa penagihan baru, hasil dua panggilan dengan jam yang sama identik.
func (s *Service) ComputeDueFees(ctx context.Context, ac helperAuth.AuthContext, studentID uuid.UUID) (*dto.DueFeesResponse, error) {
	st, err := s.loadStudent(ctx, ac.SchoolID, studentID)
	if err != nil {
		return nil, err
	}

	masters, err := s.repo.ListFeeMasters(ctx, ac.SchoolID, repository.FeeMasterFilter{ClassIDs: []uuid.UUID{st.SchoolStudentClassID}})
	if err != nil {
		return nil, errors.Wrap(err, "list fee masters")
	}
	fees, err := s.repo.ListStudentFees(ctx, ac.SchoolID, []uuid.UUID{st.SchoolStudentID})
	if err != nil {
		return nil, errors.Wrap(err, "list student fees")
	}
	discounts, err := s.repo.ListDiscounts(ctx, ac.SchoolID)
	if err != nil {
		return nil, errors.Wrap(err, "list discounts")
	}

	lines := BuildDueLines(masters, fees, s.now())
	return &dto.DueFeesResponse{
		StudentID:   st.SchoolStudentID,
		StudentName: st.SchoolStudentFullName,
		ClassID:     st.SchoolStudentClassID,
		Fees:        lines,
		Discounts:   applicableDiscounts(discounts, lines),
		Totals:      sumDueLines(lines),
	}, nil
}
