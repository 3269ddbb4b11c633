// file: internals/features/finance/fees/model/student_fee_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type StudentFeeStatus string

const (
	StudentFeePending StudentFeeStatus = "pending"
	StudentFeePartial StudentFeeStatus = "partial"
	StudentFeePaid    StudentFeeStatus = "paid"
)

// StudentFeeModel satu baris per event pembayaran. Tidak pernah di-update selain status/paid_date;
// saldo tagihan selalu dihitung ulang dari seluruh riwayat.
type StudentFeeModel struct {
	StudentFeeID        uuid.UUID `gorm:"column:student_fee_id;type:uuid;default:gen_random_uuid();primaryKey" json:"student_fee_id"`
	StudentFeeSchoolID  uuid.UUID `gorm:"column:student_fee_school_id;type:uuid;not null;index:idx_student_fees_school_student,priority:1;uniqueIndex:uq_student_fees_txn_master,priority:1" json:"student_fee_school_id"`
	StudentFeeStudentID uuid.UUID `gorm:"column:student_fee_student_id;type:uuid;not null;index:idx_student_fees_school_student,priority:2" json:"student_fee_student_id"`

	StudentFeeFeeMasterID uuid.UUID `gorm:"column:student_fee_fee_master_id;type:uuid;not null;index;uniqueIndex:uq_student_fees_txn_master,priority:3" json:"student_fee_fee_master_id"`
	StudentFeeFeeTypeID   uuid.UUID `gorm:"column:student_fee_fee_type_id;type:uuid;not null" json:"student_fee_fee_type_id"`
	StudentFeeFeeTypeName string    `gorm:"column:student_fee_fee_type_name;type:varchar(80);not null" json:"student_fee_fee_type_name"`

	// amount = paid + discount (porsi tagihan yang tertutup oleh event ini)
	StudentFeeAmount         decimal.Decimal `gorm:"column:student_fee_amount;type:numeric(14,2);not null" json:"student_fee_amount"`
	StudentFeePaidAmount     decimal.Decimal `gorm:"column:student_fee_paid_amount;type:numeric(14,2);not null" json:"student_fee_paid_amount"`
	StudentFeeDiscountCode   *string         `gorm:"column:student_fee_discount_code;type:varchar(40)" json:"student_fee_discount_code,omitempty"`
	StudentFeeDiscountAmount decimal.Decimal `gorm:"column:student_fee_discount_amount;type:numeric(14,2);not null;default:0" json:"student_fee_discount_amount"`
	StudentFeeFineAmount     decimal.Decimal `gorm:"column:student_fee_fine_amount;type:numeric(14,2);not null;default:0" json:"student_fee_fine_amount"`

	StudentFeeStatus        StudentFeeStatus `gorm:"column:student_fee_status;type:varchar(20);not null;default:'pending'" json:"student_fee_status"`
	StudentFeeTransactionID string           `gorm:"column:student_fee_transaction_id;type:varchar(64);not null;index;uniqueIndex:uq_student_fees_txn_master,priority:2" json:"student_fee_transaction_id"`
	StudentFeePaymentMode   string           `gorm:"column:student_fee_payment_mode;type:varchar(30);not null;default:'cash'" json:"student_fee_payment_mode"`
	StudentFeeNote          *string          `gorm:"column:student_fee_note;type:text" json:"student_fee_note,omitempty"`

	StudentFeePaidDate    time.Time  `gorm:"column:student_fee_paid_date;type:timestamptz;not null;index" json:"student_fee_paid_date"`
	StudentFeeCollectedBy *uuid.UUID `gorm:"column:student_fee_collected_by;type:uuid" json:"student_fee_collected_by,omitempty"`

	StudentFeeCreatedAt time.Time `gorm:"column:student_fee_created_at;type:timestamptz;not null;autoCreateTime" json:"student_fee_created_at"`
}

func (StudentFeeModel) TableName() string { return "student_fees" }
