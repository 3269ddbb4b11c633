// file: internals/features/inventory/items/model/item_transaction_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type TransactionKind string

const (
	KindPurchase         TransactionKind = "purchase"
	KindPurchaseReversal TransactionKind = "purchase_reversal"
	KindIssue            TransactionKind = "issue"
	KindSale             TransactionKind = "sale"
	KindStockIn          TransactionKind = "stock_in"
	KindStockOut         TransactionKind = "stock_out"
)

func (k TransactionKind) Valid() bool {
	switch k {
	case KindPurchase, KindPurchaseReversal, KindIssue, KindSale, KindStockIn, KindStockOut:
		return true
	}
	return false
}

const (
	RefItemStock = "item_stock"
	RefItemIssue = "item_issue"
	RefItemSale  = "item_sale"
)

// ItemTransactionModel append-only; current_stock = previous_stock + delta.
type ItemTransactionModel struct {
	ItemTransactionID       uuid.UUID `gorm:"column:item_transaction_id;type:uuid;default:gen_random_uuid();primaryKey" json:"item_transaction_id"`
	ItemTransactionSchoolID uuid.UUID `gorm:"column:item_transaction_school_id;type:uuid;not null;index:idx_item_tx_school_date,priority:1" json:"item_transaction_school_id"`
	ItemTransactionItemID   uuid.UUID `gorm:"column:item_transaction_item_id;type:uuid;not null;index" json:"item_transaction_item_id"`
	ItemTransactionNo       int64     `gorm:"column:item_transaction_no;type:bigserial;autoIncrement;not null;uniqueIndex" json:"item_transaction_no"`

	ItemTransactionKind          TransactionKind `gorm:"column:item_transaction_kind;type:varchar(30);not null" json:"item_transaction_kind"`
	ItemTransactionDelta         int64           `gorm:"column:item_transaction_delta;not null" json:"item_transaction_delta"`
	ItemTransactionPreviousStock int64           `gorm:"column:item_transaction_previous_stock;not null" json:"item_transaction_previous_stock"`
	ItemTransactionCurrentStock  int64           `gorm:"column:item_transaction_current_stock;not null" json:"item_transaction_current_stock"`

	ItemTransactionReferenceType *string    `gorm:"column:item_transaction_reference_type;type:varchar(30)" json:"item_transaction_reference_type,omitempty"`
	ItemTransactionReferenceID   *uuid.UUID `gorm:"column:item_transaction_reference_id;type:uuid" json:"item_transaction_reference_id,omitempty"`

	ItemTransactionParty Party `gorm:"embedded;embeddedPrefix:item_transaction_party_" json:"item_transaction_party"`

	ItemTransactionPerformedBy *uuid.UUID `gorm:"column:item_transaction_performed_by;type:uuid" json:"item_transaction_performed_by,omitempty"`
	ItemTransactionNote        *string    `gorm:"column:item_transaction_note;type:text" json:"item_transaction_note,omitempty"`
	ItemTransactionDate        time.Time  `gorm:"column:item_transaction_date;type:timestamptz;not null;index:idx_item_tx_school_date,priority:2" json:"item_transaction_date"`
}

func (ItemTransactionModel) TableName() string { return "item_transactions" }
