// file: internals/features/inventory/items/dto/item_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schoolku_backend/internals/features/inventory/items/model"
)

const (
	DirectionIn  = "in"
	DirectionOut = "out"

	DefaultPaymentMode = "cash"
)

/* ===============================
   REQUEST
=================================*/

type CreateItemRequest struct {
	Name          string          `json:"name" validate:"required,min=2,max=120"`
	Code          *string         `json:"code" validate:"omitempty,max=40"`
	Unit          string          `json:"unit" validate:"omitempty,max=20"`
	Category      *string         `json:"category" validate:"omitempty,max=60"`
	ReorderLevel  int64           `json:"reorder_level" validate:"gte=0"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
}

type AddStockRequest struct {
	Quantity      int64           `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	Supplier      *string         `json:"supplier" validate:"omitempty,max=120"`
	Note          *string         `json:"note" validate:"omitempty,max=500"`
	Date          *time.Time      `json:"date"`
}

type AdjustRequest struct {
	Quantity  int64   `json:"quantity"`
	Direction string  `json:"direction" validate:"required,oneof=in out"`
	Note      *string `json:"note" validate:"omitempty,max=500"`
}

// PartyRequest: kind=student|staff pakai id, kind=external pakai name.
type PartyRequest struct {
	Kind model.PartyKind `json:"kind" validate:"required,oneof=student staff external"`
	ID   *uuid.UUID      `json:"id"`
	Name *string         `json:"name" validate:"omitempty,max=120"`
}

func (p PartyRequest) ToModel() model.Party {
	return model.Party{
		Kind: model.PartyKind(strings.ToLower(strings.TrimSpace(string(p.Kind)))),
		ID:   p.ID,
		Name: p.Name,
	}.Normalize()
}

type LineRequest struct {
	ItemID   uuid.UUID `json:"item_id" validate:"required"`
	Quantity int64     `json:"quantity"`
	// hanya untuk sale; kosong = harga jual item
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

type IssueRequest struct {
	Recipient PartyRequest  `json:"recipient"`
	Lines     []LineRequest `json:"lines" validate:"required,min=1,dive"`
	Note      *string       `json:"note" validate:"omitempty,max=500"`
}

type SaleRequest struct {
	Customer    PartyRequest  `json:"customer"`
	Lines       []LineRequest `json:"lines" validate:"required,min=1,dive"`
	PaymentMode string        `json:"payment_mode" validate:"omitempty,max=30"`
	Note        *string       `json:"note" validate:"omitempty,max=500"`
}

func (r SaleRequest) NormalizedPaymentMode() string {
	m := strings.ToLower(strings.TrimSpace(r.PaymentMode))
	if m == "" {
		return DefaultPaymentMode
	}
	return m
}

type ItemFilter struct {
	Search       string
	Category     string
	LowStockOnly bool
}

type TransactionFilter struct {
	ItemID *uuid.UUID
	Kind   model.TransactionKind
	From   *time.Time
	Until  *time.Time
}

/* ===============================
   RESPONSE
=================================*/

type StockResult struct {
	Item        model.ItemModel            `json:"item"`
	Stock       *model.ItemStockModel      `json:"stock,omitempty"`
	Transaction model.ItemTransactionModel `json:"transaction"`
}

type ItemVerification struct {
	ItemID           uuid.UUID `json:"item_id"`
	StoredQuantity   int64     `json:"stored_quantity"`
	LedgerQuantity   int64     `json:"ledger_quantity"`
	TransactionCount int64     `json:"transaction_count"`
	Consistent       bool      `json:"consistent"`
}
