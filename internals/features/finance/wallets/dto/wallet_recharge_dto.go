// file: internals/features/finance/wallets/dto/wallet_recharge_dto.go
package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schoolku_backend/internals/features/finance/wallets/model"
)

type CreateRechargeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type RechargeResponse struct {
	RechargeID  uuid.UUID            `json:"recharge_id"`
	OrderID     string               `json:"order_id"`
	Amount      decimal.Decimal      `json:"amount"`
	Status      model.RechargeStatus `json:"status"`
	SnapToken   string               `json:"snap_token"`
	RedirectURL string               `json:"redirect_url"`
}

// MidtransNotification payload HTTP notification Snap; field lain aman diabaikan.
type MidtransNotification struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"` // capture, settlement, pending, deny, cancel, expire, failure
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"` // accept / challenge / deny
	TransactionID     string `json:"transaction_id"`
}

type WebhookResult struct {
	OrderID           string               `json:"order_id"`
	RechargeStatus    model.RechargeStatus `json:"recharge_status"`
	WalletTxCode      *string              `json:"wallet_transaction_code,omitempty"`
	AlreadyApplied    bool                 `json:"already_applied"`
	TransactionStatus string               `json:"transaction_status"`
}
