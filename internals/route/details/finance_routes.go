// file: internals/route/details/finance_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"

	feeRoute "schoolku_backend/internals/features/finance/fees/route"
	walletRoute "schoolku_backend/internals/features/finance/wallets/route"
)

func FinanceAdminRoutes(r fiber.Router, s *Services) {
	feeRoute.FeeAdminRoutes(r, s.Fees, s.Students)
	walletRoute.WalletAdminRoutes(r, s.Wallets, s.Recharges, s.Students)
}

func FinanceUserRoutes(r fiber.Router, s *Services) {
	feeRoute.FeeUserRoutes(r, s.Fees, s.Students)
	walletRoute.WalletUserRoutes(r, s.Wallets, s.Recharges, s.Students)
}

// FinanceWebhookRoutes tanpa JWT; keaslian dicek lewat signature gateway.
func FinanceWebhookRoutes(r fiber.Router, s *Services) {
	walletRoute.WalletWebhookRoutes(r, s.Recharges)
}
