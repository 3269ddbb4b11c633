// file: internals/features/finance/fees/service/due_report_export.go
package service

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"schoolku_backend/internals/features/finance/fees/dto"
)

const dueReportSheet = "Tunggakan"

var dueReportHeaders = []string{
	"No. Induk", "Nama Siswa", "Section", "Jenis Biaya", "Tagihan", "Dibayar", "Diskon", "Sisa", "Status",
}

// ExportDueReport menulis laporan tunggakan ke workbook XLSX (satu sheet + baris total).
func ExportDueReport(rep *dto.DueReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", dueReportSheet); err != nil {
		return nil, err
	}

	for i, h := range dueReportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(dueReportSheet, cell, h); err != nil {
			return nil, err
		}
	}

	row := 2
	for _, r := range rep.Rows {
		values := []any{
			r.AdmissionNo,
			r.StudentName,
			r.Section,
			r.FeeTypeName,
			r.Amount.InexactFloat64(),
			r.Paid.InexactFloat64(),
			r.Discount.InexactFloat64(),
			r.Balance.InexactFloat64(),
			r.Status,
		}
		if err := f.SetSheetRow(dueReportSheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return nil, err
		}
		row++
	}

	totals := []any{
		"TOTAL", fmt.Sprintf("%d siswa", rep.Summary.Students), "", "",
		rep.Summary.TotalAmount.InexactFloat64(),
		rep.Summary.TotalPaid.InexactFloat64(),
		rep.Summary.TotalDiscount.InexactFloat64(),
		rep.Summary.TotalBalance.InexactFloat64(),
		fmt.Sprintf("%d menunggak", rep.Summary.StudentsWithDue),
	}
	if err := f.SetSheetRow(dueReportSheet, fmt.Sprintf("A%d", row), &totals); err != nil {
		return nil, err
	}
	return f, nil
}
