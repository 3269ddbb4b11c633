// file: internals/features/finance/fees/service/fee_report_service.go
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
	studentModel "schoolku_backend/internals/features/school/students/model"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

// DueReport: semua siswa (terfilter) × fee master kelasnya, dihitung di aplikasi.
// O(siswa × fee master); dibatasi maxReportStudents, di atas itu minta filter lebih sempit.
// Pagination per siswa; summary selalu atas seluruh hasil filter.
func (s *Service) DueReport(ctx context.Context, ac helperAuth.AuthContext, f dto.DueReportFilter, p helper.Paging) (*dto.DueReport, int, error) {
	students, err := s.students.ListStudents(ctx, ac.SchoolID, studentModel.StudentFilter{ClassID: f.ClassID, Section: f.Section})
	if err != nil {
		return nil, 0, errors.Wrap(err, "list students")
	}
	if len(students) > s.maxReportStudents {
		return nil, 0, helper.Validation("laporan mencakup %d siswa (maksimal %d); persempit dengan class_id/section", len(students), s.maxReportStudents)
	}

	all, summary, err := s.buildDueRows(ctx, ac.SchoolID, students, f.FeeTypeID)
	if err != nil {
		return nil, 0, err
	}

	page := helper.Window(students, p)
	inPage := make(map[uuid.UUID]bool, len(page))
	for _, st := range page {
		inPage[st.SchoolStudentID] = true
	}
	rows := make([]dto.DueReportRow, 0)
	for _, r := range all {
		if inPage[r.StudentID] {
			rows = append(rows, r)
		}
	}
	return &dto.DueReport{Rows: rows, Summary: summary}, len(students), nil
}

// DueReportAll dipakai export; batas jumlah siswa tetap berlaku.
func (s *Service) DueReportAll(ctx context.Context, ac helperAuth.AuthContext, f dto.DueReportFilter) (*dto.DueReport, error) {
	rep, _, err := s.DueReport(ctx, ac, f, helper.Paging{Page: 1, PerPage: s.maxReportStudents, Offset: 0, Limit: s.maxReportStudents})
	return rep, err
}

func (s *Service) buildDueRows(ctx context.Context, schoolID uuid.UUID, students []studentModel.SchoolStudentModel, feeTypeID *uuid.UUID) ([]dto.DueReportRow, dto.DueReportSummary, error) {
	summary := dto.DueReportSummary{
		Students:      len(students),
		TotalAmount:   decimal.Zero,
		TotalPaid:     decimal.Zero,
		TotalDiscount: decimal.Zero,
		TotalBalance:  decimal.Zero,
	}
	if len(students) == 0 {
		return []dto.DueReportRow{}, summary, nil
	}

	classSet := map[uuid.UUID]bool{}
	ids := make([]uuid.UUID, 0, len(students))
	for _, st := range students {
		classSet[st.SchoolStudentClassID] = true
		ids = append(ids, st.SchoolStudentID)
	}
	classIDs := make([]uuid.UUID, 0, len(classSet))
	for id := range classSet {
		classIDs = append(classIDs, id)
	}

	masters, err := s.repo.ListFeeMasters(ctx, schoolID, repository.FeeMasterFilter{ClassIDs: classIDs, FeeTypeID: feeTypeID})
	if err != nil {
		return nil, summary, errors.Wrap(err, "list fee masters")
	}
	byClass := make(map[uuid.UUID][]model.FeeMasterModel)
	for _, m := range masters {
		byClass[m.FeeMasterClassID] = append(byClass[m.FeeMasterClassID], m)
	}

	fees, err := s.repo.ListStudentFees(ctx, schoolID, ids)
	if err != nil {
		return nil, summary, errors.Wrap(err, "list student fees")
	}
	feesByStudent := make(map[uuid.UUID][]model.StudentFeeModel)
	for _, f := range fees {
		feesByStudent[f.StudentFeeStudentID] = append(feesByStudent[f.StudentFeeStudentID], f)
	}

	now := s.now()
	rows := make([]dto.DueReportRow, 0, len(students))
	for _, st := range students {
		lines := BuildDueLines(byClass[st.SchoolStudentClassID], feesByStudent[st.SchoolStudentID], now)
		hasDue := false
		for _, l := range lines {
			rows = append(rows, dto.DueReportRow{
				StudentID:   st.SchoolStudentID,
				StudentName: st.SchoolStudentFullName,
				AdmissionNo: st.SchoolStudentAdmissionNo,
				ClassID:     st.SchoolStudentClassID,
				Section:     st.SchoolStudentSection,
				FeeMasterID: l.FeeMasterID,
				FeeTypeName: l.FeeTypeName,
				Amount:      l.Amount,
				Paid:        l.Paid,
				Discount:    l.Discount,
				Balance:     l.Balance,
				Status:      l.Status,
			})
			summary.TotalAmount = summary.TotalAmount.Add(l.Amount)
			summary.TotalPaid = summary.TotalPaid.Add(l.Paid)
			summary.TotalDiscount = summary.TotalDiscount.Add(l.Discount)
			if l.Balance.IsPositive() {
				summary.TotalBalance = summary.TotalBalance.Add(l.Balance)
				hasDue = true
			}
		}
		if hasDue {
			summary.StudentsWithDue++
		}
	}
	return rows, summary, nil
}

// OutstandingTotal total sisa tagihan seluruh sekolah (dashboard). Batas siswa tetap berlaku.
func (s *Service) OutstandingTotal(ctx context.Context, ac helperAuth.AuthContext) (dto.DueReportSummary, error) {
	rep, _, err := s.DueReport(ctx, ac, dto.DueReportFilter{}, helper.Paging{Page: 1, PerPage: 1, Limit: 1})
	if err != nil {
		return dto.DueReportSummary{}, err
	}
	return rep.Summary, nil
}

func toGroups(rows []repository.CollectionGroupRow) []dto.CollectionGroup {
	out := make([]dto.CollectionGroup, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.CollectionGroup{Key: r.Key, Count: r.Count, Paid: r.Paid, Discount: r.Discount, Fine: r.Fine})
	}
	return out
}

// CollectionTotals total penagihan di window [from, until).
func (s *Service) CollectionTotals(ctx context.Context, ac helperAuth.AuthContext, from, until *time.Time) (dto.CollectionTotals, error) {
	rows, err := s.repo.SumCollections(ctx, ac.SchoolID, from, until, "")
	if err != nil {
		return dto.CollectionTotals{}, errors.Wrap(err, "sum collections")
	}
	t := dto.CollectionTotals{Paid: decimal.Zero, Discount: decimal.Zero, Fine: decimal.Zero}
	for _, r := range rows {
		t.Count += r.Count
		t.Paid = t.Paid.Add(r.Paid)
		t.Discount = t.Discount.Add(r.Discount)
		t.Fine = t.Fine.Add(r.Fine)
	}
	return t, nil
}

// CollectionReport agregasi penagihan per jenis biaya, per metode bayar, dan per hari.
func (s *Service) CollectionReport(ctx context.Context, ac helperAuth.AuthContext, dr helper.DateRange) (*dto.CollectionReport, error) {
	byType, err := s.repo.SumCollections(ctx, ac.SchoolID, dr.From, dr.Until, repository.GroupByFeeType)
	if err != nil {
		return nil, errors.Wrap(err, "sum by fee type")
	}
	byMode, err := s.repo.SumCollections(ctx, ac.SchoolID, dr.From, dr.Until, repository.GroupByPaymentMode)
	if err != nil {
		return nil, errors.Wrap(err, "sum by payment mode")
	}
	byDay, err := s.repo.SumCollections(ctx, ac.SchoolID, dr.From, dr.Until, repository.GroupByDay)
	if err != nil {
		return nil, errors.Wrap(err, "sum by day")
	}
	totals, err := s.CollectionTotals(ctx, ac, dr.From, dr.Until)
	if err != nil {
		return nil, err
	}
	return &dto.CollectionReport{
		From:          dr.From,
		Until:         dr.Until,
		ByFeeType:     toGroups(byType),
		ByPaymentMode: toGroups(byMode),
		ByDay:         toGroups(byDay),
		Totals:        totals,
	}, nil
}
