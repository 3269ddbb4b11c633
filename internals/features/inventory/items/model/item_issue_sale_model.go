// file: internals/features/inventory/items/model/item_issue_sale_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

/* =========================================================
   ITEM ISSUE (pembagian barang tanpa bayar)
========================================================= */

type ItemIssueModel struct {
	ItemIssueID       uuid.UUID `gorm:"column:item_issue_id;type:uuid;default:gen_random_uuid();primaryKey" json:"item_issue_id"`
	ItemIssueSchoolID uuid.UUID `gorm:"column:item_issue_school_id;type:uuid;not null;index" json:"item_issue_school_id"`

	ItemIssueRecipient Party `gorm:"embedded;embeddedPrefix:item_issue_recipient_" json:"item_issue_recipient"`

	ItemIssueNote     *string    `gorm:"column:item_issue_note;type:text" json:"item_issue_note,omitempty"`
	ItemIssueIssuedBy *uuid.UUID `gorm:"column:item_issue_issued_by;type:uuid" json:"item_issue_issued_by,omitempty"`
	ItemIssueDate     time.Time  `gorm:"column:item_issue_date;type:timestamptz;not null" json:"item_issue_date"`

	Lines []ItemIssueLineModel `gorm:"foreignKey:ItemIssueLineIssueID;references:ItemIssueID" json:"lines"`

	ItemIssueCreatedAt time.Time `gorm:"column:item_issue_created_at;type:timestamptz;not null;autoCreateTime" json:"item_issue_created_at"`
}

func (ItemIssueModel) TableName() string { return "item_issues" }

type ItemIssueLineModel struct {
	ItemIssueLineID       uuid.UUID `gorm:"column:item_issue_line_id;type:uuid;default:gen_random_uuid();primaryKey" json:"item_issue_line_id"`
	ItemIssueLineIssueID  uuid.UUID `gorm:"column:item_issue_line_issue_id;type:uuid;not null;index" json:"item_issue_line_issue_id"`
	ItemIssueLineSchoolID uuid.UUID `gorm:"column:item_issue_line_school_id;type:uuid;not null" json:"item_issue_line_school_id"`
	ItemIssueLineItemID   uuid.UUID `gorm:"column:item_issue_line_item_id;type:uuid;not null" json:"item_issue_line_item_id"`
	ItemIssueLineItemName string    `gorm:"column:item_issue_line_item_name;type:varchar(120);not null" json:"item_issue_line_item_name"`
	ItemIssueLineQuantity int64     `gorm:"column:item_issue_line_quantity;not null" json:"item_issue_line_quantity"`
}

func (ItemIssueLineModel) TableName() string { return "item_issue_lines" }

/* =========================================================
   ITEM SALE (penjualan barang)
========================================================= */

type ItemSaleModel struct {
	ItemSaleID       uuid.UUID `gorm:"column:item_sale_id;type:uuid;default:gen_random_uuid();primaryKey" json:"item_sale_id"`
	ItemSaleSchoolID uuid.UUID `gorm:"column:item_sale_school_id;type:uuid;not null;index" json:"item_sale_school_id"`

	ItemSaleCustomer Party `gorm:"embedded;embeddedPrefix:item_sale_customer_" json:"item_sale_customer"`

	ItemSaleGrandTotal  decimal.Decimal `gorm:"column:item_sale_grand_total;type:numeric(14,2);not null" json:"item_sale_grand_total"`
	ItemSalePaymentMode string          `gorm:"column:item_sale_payment_mode;type:varchar(30);not null;default:'cash'" json:"item_sale_payment_mode"`
	ItemSaleNote        *string         `gorm:"column:item_sale_note;type:text" json:"item_sale_note,omitempty"`
	ItemSaleSoldBy      *uuid.UUID      `gorm:"column:item_sale_sold_by;type:uuid" json:"item_sale_sold_by,omitempty"`
	ItemSaleDate        time.Time       `gorm:"column:item_sale_date;type:timestamptz;not null" json:"item_sale_date"`

	Lines []ItemSaleLineModel `gorm:"foreignKey:ItemSaleLineSaleID;references:ItemSaleID" json:"lines"`

	ItemSaleCreatedAt time.Time `gorm:"column:item_sale_created_at;type:timestamptz;not null;autoCreateTime" json:"item_sale_created_at"`
}

func (ItemSaleModel) TableName() string { return "item_sales" }

type ItemSaleLineModel struct {
	ItemSaleLineID        uuid.UUID       `gorm:"column:item_sale_line_id;type:uuid;default:gen_random_uuid();primaryKey" json:"item_sale_line_id"`
	ItemSaleLineSaleID    uuid.UUID       `gorm:"column:item_sale_line_sale_id;type:uuid;not null;index" json:"item_sale_line_sale_id"`
	ItemSaleLineSchoolID  uuid.UUID       `gorm:"column:item_sale_line_school_id;type:uuid;not null" json:"item_sale_line_school_id"`
	ItemSaleLineItemID    uuid.UUID       `gorm:"column:item_sale_line_item_id;type:uuid;not null" json:"item_sale_line_item_id"`
	ItemSaleLineItemName  string          `gorm:"column:item_sale_line_item_name;type:varchar(120);not null" json:"item_sale_line_item_name"`
	ItemSaleLineQuantity  int64           `gorm:"column:item_sale_line_quantity;not null" json:"item_sale_line_quantity"`
	ItemSaleLineUnitPrice decimal.Decimal `gorm:"column:item_sale_line_unit_price;type:numeric(14,2);not null" json:"item_sale_line_unit_price"`
	ItemSaleLineTotal     decimal.Decimal `gorm:"column:item_sale_line_total;type:numeric(14,2);not null" json:"item_sale_line_total"`
}

func (ItemSaleLineModel) TableName() string { return "item_sale_lines" }
