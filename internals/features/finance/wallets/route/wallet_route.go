// file: internals/features/finance/wallets/route/wallet_route.go
package route

import (
	"github.com/gofiber/fiber/v2"

	"schoolku_backend/internals/constants"
	walletController "schoolku_backend/internals/features/finance/wallets/controller"
	"schoolku_backend/internals/features/finance/wallets/service"
	studentRepo "schoolku_backend/internals/features/school/students/repository"
	middlewares "schoolku_backend/internals/middlewares"
	schoolkuMiddleware "schoolku_backend/internals/middlewares/features"
)

/*
Admin routes: Wallets (/api/a/:school_id/wallets)
Rute statis (transactions, summary) didaftarkan sebelum /:student_id.
*/
func WalletAdminRoutes(r fiber.Router, svc *service.Service, recharges *service.RechargeService, students studentRepo.Directory) {
	ctl := walletController.NewWalletController(svc, recharges, students)
	finance := schoolkuMiddleware.RequireRoles(constants.FinanceRoles, constants.RoleErrorFinance("mutasi wallet"))

	w := r.Group("/wallets")
	w.Get("/transactions", ctl.ListSchoolTransactions)
	w.Get("/summary/categories", ctl.CategorySummary)
	w.Get("/summary/totals", ctl.Totals)

	w.Get("/:student_id", ctl.GetWallet)
	w.Get("/:student_id/transactions", ctl.ListStudentTransactions)
	w.Get("/:student_id/verify", ctl.Verify)
	w.Post("/:student_id/credit", finance, middlewares.LedgerRateLimiter(), ctl.Credit)
	w.Post("/:student_id/debit", middlewares.LedgerRateLimiter(), ctl.Debit)
	w.Patch("/:student_id/status", finance, ctl.SetStatus)
	w.Post("/:student_id/recharges", ctl.CreateRecharge)
}

// Member routes: /api/u/:school_id/wallets/me
func WalletUserRoutes(r fiber.Router, svc *service.Service, recharges *service.RechargeService, students studentRepo.Directory) {
	ctl := walletController.NewWalletController(svc, recharges, students)

	me := r.Group("/wallets/me")
	me.Get("/", ctl.MyWallet)
	me.Get("/transactions", ctl.MyTransactions)
	me.Get("/recharges", ctl.MyRecharges)
	me.Post("/recharges", middlewares.LedgerRateLimiter(), ctl.MyCreateRecharge)
}

// Public: /api/webhooks/midtrans (tanpa JWT, diverifikasi signature)
func WalletWebhookRoutes(r fiber.Router, recharges *service.RechargeService) {
	ctl := walletController.NewWebhookController(recharges)
	r.Post("/midtrans", ctl.Midtrans)
}
