// file: internals/features/finance/fees/dto/fee_collection_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schoolku_backend/internals/features/finance/fees/model"
)

const (
	DueStatusPaid = "Paid"
	DueStatusDue  = "Due"
)

/* ===============================
   Due fees (per siswa)
=================================*/

type DueFeeLine struct {
	FeeMasterID  uuid.UUID       `json:"fee_master_id"`
	FeeGroupID   *uuid.UUID      `json:"fee_group_id,omitempty"`
	FeeTypeID    uuid.UUID       `json:"fee_type_id"`
	FeeTypeName  string          `json:"fee_type_name"`
	DueDate      *time.Time      `json:"due_date,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Paid         decimal.Decimal `json:"paid"`
	Discount     decimal.Decimal `json:"discount"`
	Balance      decimal.Decimal `json:"balance"`
	Fine         decimal.Decimal `json:"fine"`
	TotalPayable decimal.Decimal `json:"total_payable"`
	Status       string          `json:"status"`
}

type DueFeeTotals struct {
	Amount       decimal.Decimal `json:"amount"`
	Paid         decimal.Decimal `json:"paid"`
	Discount     decimal.Decimal `json:"discount"`
	Balance      decimal.Decimal `json:"balance"`
	Fine         decimal.Decimal `json:"fine"`
	TotalPayable decimal.Decimal `json:"total_payable"`
}

type DueFeesResponse struct {
	StudentID   uuid.UUID                `json:"student_id"`
	StudentName string                   `json:"student_name"`
	ClassID     uuid.UUID                `json:"class_id"`
	Fees        []DueFeeLine             `json:"fees"`
	Discounts   []model.FeeDiscountModel `json:"discounts"`
	Totals      DueFeeTotals             `json:"totals"`
}

/* ===============================
   Collect fees
=================================*/

type CollectFeeItem struct {
	FeeMasterID  uuid.UUID        `json:"fee_master_id" validate:"required"`
	Amount       decimal.Decimal  `json:"amount"`
	DiscountCode string           `json:"discount_code" validate:"omitempty,max=40"`
	FineAmount   *decimal.Decimal `json:"fine_amount"`
	PaymentMode  string           `json:"payment_mode" validate:"omitempty,oneof=cash transfer card gateway wallet"`
	Note         *string          `json:"note"`
}

type CollectFeesRequest struct {
	// opsional: dipakai sebagai idempotency key; kosong = di-generate server
	TransactionID string           `json:"transaction_id" validate:"omitempty,max=64"`
	PaymentMode   string           `json:"payment_mode" validate:"omitempty,oneof=cash transfer card gateway wallet"`
	PaidDate      *time.Time       `json:"paid_date"`
	Items         []CollectFeeItem `json:"items" validate:"required,min=1,dive"`
}

type CollectFeesResult struct {
	TransactionID string                  `json:"transaction_id"`
	StudentID     uuid.UUID               `json:"student_id"`
	Items         []model.StudentFeeModel `json:"items"`
	TotalPaid     decimal.Decimal         `json:"total_paid"`
	TotalDiscount decimal.Decimal         `json:"total_discount"`
	TotalFine     decimal.Decimal         `json:"total_fine"`
	Replayed      bool                    `json:"replayed"`
}

/* ===============================
   Reports
=================================*/

type DueReportFilter struct {
	ClassID   *uuid.UUID
	Section   string
	FeeTypeID *uuid.UUID
}

type DueReportRow struct {
	StudentID   uuid.UUID       `json:"student_id"`
	StudentName string          `json:"student_name"`
	AdmissionNo string          `json:"admission_no"`
	ClassID     uuid.UUID       `json:"class_id"`
	Section     string          `json:"section"`
	FeeMasterID uuid.UUID       `json:"fee_master_id"`
	FeeTypeName string          `json:"fee_type_name"`
	Amount      decimal.Decimal `json:"amount"`
	Paid        decimal.Decimal `json:"paid"`
	Discount    decimal.Decimal `json:"discount"`
	Balance     decimal.Decimal `json:"balance"`
	Status      string          `json:"status"`
}

type DueReportSummary struct {
	Students        int             `json:"students"`
	StudentsWithDue int             `json:"students_with_due"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	TotalDiscount   decimal.Decimal `json:"total_discount"`
	TotalBalance    decimal.Decimal `json:"total_balance"`
}

type DueReport struct {
	Rows    []DueReportRow   `json:"rows"`
	Summary DueReportSummary `json:"summary"`
}

type CollectionGroup struct {
	Key      string          `json:"key"`
	Count    int64           `json:"count"`
	Paid     decimal.Decimal `json:"paid"`
	Discount decimal.Decimal `json:"discount"`
	Fine     decimal.Decimal `json:"fine"`
}

type CollectionTotals struct {
	Count    int64           `json:"count"`
	Paid     decimal.Decimal `json:"paid"`
	Discount decimal.Decimal `json:"discount"`
	Fine     decimal.Decimal `json:"fine"`
}

type CollectionReport struct {
	From          *time.Time        `json:"from,omitempty"`
	Until         *time.Time        `json:"until,omitempty"`
	ByFeeType     []CollectionGroup `json:"by_fee_type"`
	ByPaymentMode []CollectionGroup `json:"by_payment_mode"`
	ByDay         []CollectionGroup `json:"by_day"`
	Totals        CollectionTotals  `json:"totals"`
}
