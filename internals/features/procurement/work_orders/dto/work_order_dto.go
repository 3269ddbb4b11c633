// file: internals/features/procurement/work_orders/dto/work_order_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"schoolku_backend/internals/features/procurement/work_orders/model"
)

type LineRequest struct {
	Description string          `json:"description" validate:"required,max=200"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type CreateWorkOrderRequest struct {
	Number         string          `json:"number" validate:"omitempty,max=40"`
	Title          string          `json:"title" validate:"required,max=160"`
	VendorName     *string         `json:"vendor_name" validate:"omitempty,max=120"`
	Note           *string         `json:"note" validate:"omitempty,max=1000"`
	Lines          []LineRequest   `json:"lines" validate:"required,min=1,dive"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Vendor    *string         `json:"vendor" validate:"omitempty,max=120"`
	Mode      string          `json:"payment_mode" validate:"omitempty,max=30"`
	Reference *string         `json:"reference" validate:"omitempty,max=80"`
	PaidAt    *time.Time      `json:"paid_at"`
}

func (r RecordPaymentRequest) NormalizedMode() string {
	m := strings.ToLower(strings.TrimSpace(r.Mode))
	if m == "" {
		return "cash"
	}
	return m
}

type ListFilter struct {
	Status model.PaymentStatus
}

/* ===============================
   RESPONSE
=================================*/

type WorkOrderDetail struct {
	WorkOrder model.WorkOrderModel          `json:"work_order"`
	Lines     []model.WorkOrderLine         `json:"lines"`
	Payments  []model.WorkOrderPaymentModel `json:"payments"`
}

type OpenBalance struct {
	OpenWorkOrders int64           `json:"open_work_orders"`
	Balance        decimal.Decimal `json:"balance"`
}
