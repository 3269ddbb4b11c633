// file: internals/features/finance/wallets/model/wallet_transaction_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxCredit TransactionType = "credit"
	TxDebit  TransactionType = "debit"
)

func (t TransactionType) Valid() bool { return t == TxCredit || t == TxDebit }

// WalletTransactionModel append-only. seq = urutan per wallet (1..n),
// no = urutan insert global (bigserial) sebagai tie-breaker sort.
type WalletTransactionModel struct {
	WalletTransactionID        uuid.UUID `gorm:"column:wallet_transaction_id;type:uuid;default:gen_random_uuid();primaryKey" json:"wallet_transaction_id"`
	WalletTransactionSchoolID  uuid.UUID `gorm:"column:wallet_transaction_school_id;type:uuid;not null;uniqueIndex:uq_wallet_tx_school_code,priority:1;index:idx_wallet_tx_school_date,priority:1" json:"wallet_transaction_school_id"`
	WalletTransactionWalletID  uuid.UUID `gorm:"column:wallet_transaction_wallet_id;type:uuid;not null;uniqueIndex:uq_wallet_tx_wallet_seq,priority:1" json:"wallet_transaction_wallet_id"`
	WalletTransactionStudentID uuid.UUID `gorm:"column:wallet_transaction_student_id;type:uuid;not null;index" json:"wallet_transaction_student_id"`

	WalletTransactionCode string `gorm:"column:wallet_transaction_code;type:varchar(40);not null;uniqueIndex:uq_wallet_tx_school_code,priority:2" json:"wallet_transaction_code"`
	WalletTransactionSeq  int64  `gorm:"column:wallet_transaction_seq;not null;uniqueIndex:uq_wallet_tx_wallet_seq,priority:2" json:"wallet_transaction_seq"`
	WalletTransactionNo   int64  `gorm:"column:wallet_transaction_no;type:bigserial;autoIncrement;not null;uniqueIndex" json:"wallet_transaction_no"`

	WalletTransactionType         TransactionType `gorm:"column:wallet_transaction_type;type:varchar(10);not null" json:"wallet_transaction_type"`
	WalletTransactionCategory     string          `gorm:"column:wallet_transaction_category;type:varchar(40);not null;default:'general'" json:"wallet_transaction_category"`
	WalletTransactionAmount       decimal.Decimal `gorm:"column:wallet_transaction_amount;type:numeric(14,2);not null" json:"wallet_transaction_amount"`
	WalletTransactionBalanceAfter decimal.Decimal `gorm:"column:wallet_transaction_balance_after;type:numeric(14,2);not null" json:"wallet_transaction_balance_after"`

	WalletTransactionPerformedBy *uuid.UUID `gorm:"column:wallet_transaction_performed_by;type:uuid" json:"wallet_transaction_performed_by,omitempty"`
	WalletTransactionNote        *string    `gorm:"column:wallet_transaction_note;type:text" json:"wallet_transaction_note,omitempty"`
	WalletTransactionReference   *string    `gorm:"column:wallet_transaction_reference;type:varchar(80)" json:"wallet_transaction_reference,omitempty"`

	WalletTransactionDate      time.Time `gorm:"column:wallet_transaction_date;type:timestamptz;not null;index:idx_wallet_tx_school_date,priority:2" json:"wallet_transaction_date"`
	WalletTransactionCreatedAt time.Time `gorm:"column:wallet_transaction_created_at;type:timestamptz;not null;autoCreateTime" json:"wallet_transaction_created_at"`
}

func (WalletTransactionModel) TableName() string { return "wallet_transactions" }

// Signed: +amount untuk credit, -amount untuk debit.
func (t WalletTransactionModel) Signed() decimal.Decimal {
	if t.WalletTransactionType == TxDebit {
		return t.WalletTransactionAmount.Neg()
	}
	return t.WalletTransactionAmount
}
