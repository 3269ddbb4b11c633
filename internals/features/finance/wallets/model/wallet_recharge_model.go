// file: internals/features/finance/wallets/model/wallet_recharge_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type RechargeStatus string

const (
	RechargePending RechargeStatus = "pending"
	RechargePaid    RechargeStatus = "paid"
	RechargeFailed  RechargeStatus = "failed"
	RechargeExpired RechargeStatus = "expired"
)

/* =========================================================
   WALLET RECHARGE (top-up online via Midtrans Snap)
========================================================= */

type WalletRechargeModel struct {
	WalletRechargeID        uuid.UUID `gorm:"column:wallet_recharge_id;type:uuid;default:gen_random_uuid();primaryKey" json:"wallet_recharge_id"`
	WalletRechargeSchoolID  uuid.UUID `gorm:"column:wallet_recharge_school_id;type:uuid;not null;index:idx_wallet_recharges_student,priority:1" json:"wallet_recharge_school_id"`
	WalletRechargeStudentID uuid.UUID `gorm:"column:wallet_recharge_student_id;type:uuid;not null;index:idx_wallet_recharges_student,priority:2" json:"wallet_recharge_student_id"`
	WalletRechargeWalletID  uuid.UUID `gorm:"column:wallet_recharge_wallet_id;type:uuid;not null" json:"wallet_recharge_wallet_id"`

	// order_id ke gateway; unik global karena webhook tidak membawa school
	WalletRechargeOrderID string          `gorm:"column:wallet_recharge_order_id;type:varchar(64);not null;uniqueIndex" json:"wallet_recharge_order_id"`
	WalletRechargeAmount  decimal.Decimal `gorm:"column:wallet_recharge_amount;type:numeric(14,2);not null" json:"wallet_recharge_amount"`
	WalletRechargeStatus  RechargeStatus  `gorm:"column:wallet_recharge_status;type:varchar(20);not null;default:'pending'" json:"wallet_recharge_status"`

	WalletRechargeSnapToken   *string `gorm:"column:wallet_recharge_snap_token;type:varchar(120)" json:"wallet_recharge_snap_token,omitempty"`
	WalletRechargeRedirectURL *string `gorm:"column:wallet_recharge_redirect_url;type:text" json:"wallet_recharge_redirect_url,omitempty"`

	WalletRechargeGatewayTransactionID *string `gorm:"column:wallet_recharge_gateway_transaction_id;type:varchar(80)" json:"wallet_recharge_gateway_transaction_id,omitempty"`
	WalletRechargePaymentType          *string `gorm:"column:wallet_recharge_payment_type;type:varchar(40)" json:"wallet_recharge_payment_type,omitempty"`
	WalletRechargeWalletTxCode         *string `gorm:"column:wallet_recharge_wallet_tx_code;type:varchar(40)" json:"wallet_recharge_wallet_tx_code,omitempty"`
	WalletRechargeFailureReason        *string `gorm:"column:wallet_recharge_failure_reason;type:text" json:"wallet_recharge_failure_reason,omitempty"`

	// payload notifikasi terakhir dari gateway (audit)
	WalletRechargeLastPayload datatypes.JSON `gorm:"column:wallet_recharge_last_payload;type:jsonb" json:"-"`

	WalletRechargeRequestedBy *uuid.UUID `gorm:"column:wallet_recharge_requested_by;type:uuid" json:"wallet_recharge_requested_by,omitempty"`
	WalletRechargePaidAt      *time.Time `gorm:"column:wallet_recharge_paid_at;type:timestamptz" json:"wallet_recharge_paid_at,omitempty"`

	WalletRechargeCreatedAt time.Time `gorm:"column:wallet_recharge_created_at;type:timestamptz;not null;autoCreateTime" json:"wallet_recharge_created_at"`
	WalletRechargeUpdatedAt time.Time `gorm:"column:wallet_recharge_updated_at;type:timestamptz;not null;autoUpdateTime" json:"wallet_recharge_updated_at"`
}

func (WalletRechargeModel) TableName() string { return "wallet_recharges" }
