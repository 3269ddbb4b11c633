// file: internals/features/finance/fees/route/fee_route.go
package route

import (
	"github.com/gofiber/fiber/v2"

	"schoolku_backend/internals/constants"
	feeController "schoolku_backend/internals/features/finance/fees/controller"
	"schoolku_backend/internals/features/finance/fees/service"
	studentRepo "schoolku_backend/internals/features/school/students/repository"
	middlewares "schoolku_backend/internals/middlewares"
	schoolkuMiddleware "schoolku_backend/internals/middlewares/features"
)

/*
Admin routes: Fees
Contoh mount: FeeAdminRoutes(app.Group("/api/a/:school_id", ...), svc, students)
- /api/a/:school_id/fees/types|groups|masters|discounts
- /api/a/:school_id/fees/students/:student_id/due|collect
- /api/a/:school_id/fees/due-report[/export], /fees/collection-report
*/
func FeeAdminRoutes(r fiber.Router, svc *service.Service, students studentRepo.Directory) {
	ctl := feeController.NewFeeController(svc, students)

	fees := r.Group("/fees")

	// katalog: hanya admin/accountant
	catalog := fees.Group("", schoolkuMiddleware.RequireRoles(constants.FinanceRoles, constants.RoleErrorFinance("konfigurasi biaya")))
	catalog.Post("/types", ctl.CreateFeeType)
	catalog.Post("/groups", ctl.CreateFeeGroup)
	catalog.Post("/masters", ctl.CreateFeeMaster)
	catalog.Post("/discounts", ctl.CreateDiscount)

	fees.Get("/types", ctl.ListFeeTypes)
	fees.Get("/groups", ctl.ListFeeGroups)
	fees.Get("/masters", ctl.ListFeeMasters)
	fees.Get("/discounts", ctl.ListDiscounts)

	fees.Get("/students/:student_id/due", ctl.GetDueFees)
	fees.Post("/students/:student_id/collect", middlewares.LedgerRateLimiter(), ctl.CollectFees)

	fees.Get("/due-report", ctl.DueReport)
	fees.Get("/due-report/export", ctl.ExportDueReport)
	fees.Get("/collection-report", ctl.CollectionReport)
}

// Member routes: /api/u/:school_id/fees/due
func FeeUserRoutes(r fiber.Router, svc *service.Service, students studentRepo.Directory) {
	ctl := feeController.NewFeeController(svc, students)
	r.Get("/fees/due", ctl.GetMyDueFees)
}
