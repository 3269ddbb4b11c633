// file: internals/features/finance/wallets/dto/wallet_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schoolku_backend/internals/features/finance/wallets/model"
)

const (
	DefaultCategory  = "general"
	RechargeCategory = "recharge"
)

/* ===============================
   REQUEST
=================================*/

// MutationRequest dipakai credit & debit.
type MutationRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category" validate:"omitempty,max=40"`
	Note      *string         `json:"note" validate:"omitempty,max=500"`
	Reference *string         `json:"reference" validate:"omitempty,max=80"`
}

func (r MutationRequest) NormalizedCategory() string {
	c := strings.ToLower(strings.TrimSpace(r.Category))
	if c == "" {
		return DefaultCategory
	}
	return c
}

type SetStatusRequest struct {
	Status model.WalletStatus `json:"status" validate:"required"`
}

// TransactionFilter semua field opsional.
type TransactionFilter struct {
	StudentID *uuid.UUID
	Type      model.TransactionType
	Category  string
	From      *time.Time
	Until     *time.Time
}

/* ===============================
   RESPONSE
=================================*/

type MutationResult struct {
	WalletID    uuid.UUID                    `json:"wallet_id"`
	StudentID   uuid.UUID                    `json:"student_id"`
	Balance     decimal.Decimal              `json:"balance"`
	Transaction model.WalletTransactionModel `json:"transaction"`
}

type WalletVerification struct {
	WalletID         uuid.UUID       `json:"wallet_id"`
	StudentID        uuid.UUID       `json:"student_id"`
	StoredBalance    decimal.Decimal `json:"stored_balance"`
	ReplayedBalance  decimal.Decimal `json:"replayed_balance"`
	LastBalanceAfter decimal.Decimal `json:"last_balance_after"`
	TransactionCount int64           `json:"transaction_count"`
	FirstMismatchSeq *int64          `json:"first_mismatch_seq,omitempty"`
	Consistent       bool            `json:"consistent"`
}

type CategorySummaryRow struct {
	Type     model.TransactionType `json:"type"`
	Category string                `json:"category"`
	Count    int64                 `json:"count"`
	Amount   decimal.Decimal       `json:"amount"`
}

type CategorySummary struct {
	From        *time.Time           `json:"from,omitempty"`
	Until       *time.Time           `json:"until,omitempty"`
	Rows        []CategorySummaryRow `json:"rows"`
	TotalCredit decimal.Decimal      `json:"total_credit"`
	TotalDebit  decimal.Decimal      `json:"total_debit"`
}

type WalletTotals struct {
	Wallets       int64           `json:"wallets"`
	ActiveWallets int64           `json:"active_wallets"`
	TotalBalance  decimal.Decimal `json:"total_balance"`
}

// WalletSnapshot dipakai dashboard siswa.
type WalletSnapshot struct {
	Wallet             model.WalletModel              `json:"wallet"`
	RecentTransactions []model.WalletTransactionModel `json:"recent_transactions"`
}
