// file: internals/features/finance/wallets/model/wallet_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WalletStatus string

const (
	WalletActive  WalletStatus = "active"
	WalletBlocked WalletStatus = "blocked"
	WalletClosed  WalletStatus = "closed"
)

func (s WalletStatus) Valid() bool {
	switch s {
	case WalletActive, WalletBlocked, WalletClosed:
		return true
	}
	return false
}

// WalletModel satu wallet per (school, student).
// wallet_balance selalu == balance_after transaksi terakhir (0 kalau belum ada).
type WalletModel struct {
	WalletID        uuid.UUID `gorm:"column:wallet_id;type:uuid;default:gen_random_uuid();primaryKey" json:"wallet_id"`
	WalletSchoolID  uuid.UUID `gorm:"column:wallet_school_id;type:uuid;not null;uniqueIndex:uq_wallets_school_student,priority:1" json:"wallet_school_id"`
	WalletStudentID uuid.UUID `gorm:"column:wallet_student_id;type:uuid;not null;uniqueIndex:uq_wallets_school_student,priority:2" json:"wallet_student_id"`

	WalletBalance          decimal.Decimal `gorm:"column:wallet_balance;type:numeric(14,2);not null;default:0" json:"wallet_balance"`
	WalletStatus           WalletStatus    `gorm:"column:wallet_status;type:varchar(20);not null;default:'active'" json:"wallet_status"`
	WalletTransactionCount int64           `gorm:"column:wallet_transaction_count;not null;default:0" json:"wallet_transaction_count"`

	WalletCreatedAt time.Time `gorm:"column:wallet_created_at;type:timestamptz;not null;autoCreateTime" json:"wallet_created_at"`
	WalletUpdatedAt time.Time `gorm:"column:wallet_updated_at;type:timestamptz;not null;autoUpdateTime" json:"wallet_updated_at"`
}

func (WalletModel) TableName() string { return "wallets" }

func (w WalletModel) IsActive() bool { return w.WalletStatus == WalletActive }
