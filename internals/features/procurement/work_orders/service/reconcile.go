// file: internals/features/procurement/work_orders/service/reconcile.go
package service

import (
	"github.com/shopspring/decimal"

	"schoolku_backend/internals/features/procurement/work_orders/model"
)

// Reconciliation hasil hitung ulang dari seluruh pembayaran yang tersisa.
type Reconciliation struct {
	AdvancePaid   decimal.Decimal
	BalanceAmount decimal.Decimal
	PaymentStatus model.PaymentStatus
}

// Reconcile fungsi murni; dipanggil setiap kali daftar pembayaran berubah.
func Reconcile(grandTotal decimal.Decimal, payments []decimal.Decimal) Reconciliation {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p)
	}
	balance := grandTotal.Sub(paid)
	if balance.IsNegative() {
		balance = decimal.Zero
	}

	status := model.PaymentPending
	switch {
	case !balance.IsPositive():
		status = model.PaymentPaid
	case paid.IsPositive():
		status = model.PaymentPartial
	}
	return Reconciliation{AdvancePaid: paid, BalanceAmount: balance, PaymentStatus: status}
}

// ComputeTotals: sub = Σ qty × price, grand = sub + tax − discount (minimal 0).
func ComputeTotals(lines []model.WorkOrderLine, tax, discount decimal.Decimal) (sub, grand decimal.Decimal) {
	sub = decimal.Zero
	for _, l := range lines {
		sub = sub.Add(l.Total)
	}
	grand = sub.Add(tax).Sub(discount)
	if grand.IsNegative() {
		grand = decimal.Zero
	}
	return sub.Round(2), grand.Round(2)
}
