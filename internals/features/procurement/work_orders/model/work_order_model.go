// file: internals/features/procurement/work_orders/model/work_order_model.go
package model

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"schoolku_backend/internals/constants"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPartial, PaymentPaid:
		return true
	}
	return false
}

// WorkOrderLine satu baris pekerjaan/barang; disimpan sebagai JSON array.
type WorkOrderLine struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// WorkOrderModel: advance_paid, balance_amount, payment_status selalu hasil Reconcile,
// tidak pernah di-set dari request.
type WorkOrderModel struct {
	WorkOrderID       uuid.UUID `gorm:"column:work_order_id;type:uuid;default:gen_random_uuid();primaryKey" json:"work_order_id"`
	WorkOrderSchoolID uuid.UUID `gorm:"column:work_order_school_id;type:uuid;not null;index:idx_work_orders_school_status,priority:1" json:"work_order_school_id"`

	WorkOrderNumber     string  `gorm:"column:work_order_number;type:varchar(40);not null" json:"work_order_number"`
	WorkOrderTitle      string  `gorm:"column:work_order_title;type:varchar(160);not null" json:"work_order_title"`
	WorkOrderVendorName *string `gorm:"column:work_order_vendor_name;type:varchar(120)" json:"work_order_vendor_name,omitempty"`
	WorkOrderNote       *string `gorm:"column:work_order_note;type:text" json:"work_order_note,omitempty"`

	WorkOrderLineItems datatypes.JSON `gorm:"column:work_order_line_items;type:jsonb;not null;default:'[]'" json:"work_order_line_items"`

	WorkOrderSubTotal       decimal.Decimal `gorm:"column:work_order_sub_total;type:numeric(14,2);not null;default:0" json:"work_order_sub_total"`
	WorkOrderTaxAmount      decimal.Decimal `gorm:"column:work_order_tax_amount;type:numeric(14,2);not null;default:0" json:"work_order_tax_amount"`
	WorkOrderDiscountAmount decimal.Decimal `gorm:"column:work_order_discount_amount;type:numeric(14,2);not null;default:0" json:"work_order_discount_amount"`
	WorkOrderGrandTotal     decimal.Decimal `gorm:"column:work_order_grand_total;type:numeric(14,2);not null;default:0" json:"work_order_grand_total"`

	WorkOrderAdvancePaid   decimal.Decimal `gorm:"column:work_order_advance_paid;type:numeric(14,2);not null;default:0" json:"work_order_advance_paid"`
	WorkOrderBalanceAmount decimal.Decimal `gorm:"column:work_order_balance_amount;type:numeric(14,2);not null;default:0" json:"work_order_balance_amount"`
	WorkOrderPaymentStatus PaymentStatus   `gorm:"column:work_order_payment_status;type:varchar(20);not null;default:'pending';index:idx_work_orders_school_status,priority:2" json:"work_order_payment_status"`

	WorkOrderLifecycle constants.Lifecycle `gorm:"column:work_order_lifecycle;type:varchar(20);not null;default:'active'" json:"work_order_lifecycle"`
	WorkOrderCreatedBy *uuid.UUID          `gorm:"column:work_order_created_by;type:uuid" json:"work_order_created_by,omitempty"`

	WorkOrderCreatedAt time.Time `gorm:"column:work_order_created_at;type:timestamptz;not null;autoCreateTime" json:"work_order_created_at"`
	WorkOrderUpdatedAt time.Time `gorm:"column:work_order_updated_at;type:timestamptz;not null;autoUpdateTime" json:"work_order_updated_at"`
}

func (WorkOrderModel) TableName() string { return "work_orders" }

func (m WorkOrderModel) Lines() ([]WorkOrderLine, error) {
	out := []WorkOrderLine{}
	if len(m.WorkOrderLineItems) == 0 {
		return out, nil
	}
	err := sonic.Unmarshal(m.WorkOrderLineItems, &out)
	return out, err
}

func (m *WorkOrderModel) SetLines(lines []WorkOrderLine) error {
	if lines == nil {
		lines = []WorkOrderLine{}
	}
	b, err := sonic.Marshal(lines)
	if err != nil {
		return err
	}
	m.WorkOrderLineItems = datatypes.JSON(b)
	return nil
}

/* =========================================================
   WORK ORDER PAYMENT
========================================================= */

type WorkOrderPaymentModel struct {
	WorkOrderPaymentID          uuid.UUID `gorm:"column:work_order_payment_id;type:uuid;default:gen_random_uuid();primaryKey" json:"work_order_payment_id"`
	WorkOrderPaymentSchoolID    uuid.UUID `gorm:"column:work_order_payment_school_id;type:uuid;not null" json:"work_order_payment_school_id"`
	WorkOrderPaymentWorkOrderID uuid.UUID `gorm:"column:work_order_payment_work_order_id;type:uuid;not null;index" json:"work_order_payment_work_order_id"`

	WorkOrderPaymentAmount     decimal.Decimal `gorm:"column:work_order_payment_amount;type:numeric(14,2);not null" json:"work_order_payment_amount"`
	WorkOrderPaymentVendor     *string         `gorm:"column:work_order_payment_vendor;type:varchar(120)" json:"work_order_payment_vendor,omitempty"`
	WorkOrderPaymentMode       string          `gorm:"column:work_order_payment_mode;type:varchar(30);not null;default:'cash'" json:"work_order_payment_mode"`
	WorkOrderPaymentReference  *string         `gorm:"column:work_order_payment_reference;type:varchar(80)" json:"work_order_payment_reference,omitempty"`
	WorkOrderPaymentPaidAt     time.Time       `gorm:"column:work_order_payment_paid_at;type:timestamptz;not null" json:"work_order_payment_paid_at"`
	WorkOrderPaymentRecordedBy *uuid.UUID      `gorm:"column:work_order_payment_recorded_by;type:uuid" json:"work_order_payment_recorded_by,omitempty"`

	WorkOrderPaymentCreatedAt time.Time      `gorm:"column:work_order_payment_created_at;type:timestamptz;not null;autoCreateTime" json:"work_order_payment_created_at"`
	WorkOrderPaymentDeletedAt gorm.DeletedAt `gorm:"column:work_order_payment_deleted_at;type:timestamptz;index" json:"-"`
}

func (WorkOrderPaymentModel) TableName() string { return "work_order_payments" }
