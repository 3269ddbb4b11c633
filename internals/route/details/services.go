// file: internals/route/details/services.go
package details

import (
	"gorm.io/gorm"

	"schoolku_backend/internals/configs"
	dashboardService "schoolku_backend/internals/features/dashboard/service"
	feeRepo "schoolku_backend/internals/features/finance/fees/repository"
	feeService "schoolku_backend/internals/features/finance/fees/service"
	walletRepo "schoolku_backend/internals/features/finance/wallets/repository"
	walletService "schoolku_backend/internals/features/finance/wallets/service"
	itemRepo "schoolku_backend/internals/features/inventory/items/repository"
	itemService "schoolku_backend/internals/features/inventory/items/service"
	workOrderRepo "schoolku_backend/internals/features/procurement/work_orders/repository"
	workOrderService "schoolku_backend/internals/features/procurement/work_orders/service"
	studentRepo "schoolku_backend/internals/features/school/students/repository"
	"schoolku_backend/internals/services/notification"
)

// Services satu instance per proses; dashboard & webhook memakai service yang sama
// dengan route admin/user.
type Services struct {
	Students   studentRepo.Directory
	Fees       *feeService.Service
	Wallets    *walletService.Service
	Recharges  *walletService.RechargeService
	Inventory  *itemService.Service
	WorkOrders *workOrderService.Service
	Dashboard  *dashboardService.Service
}

func NewServices(db *gorm.DB) *Services {
	students := studentRepo.NewGormDirectory(db)

	fees := feeService.NewService(
		feeRepo.NewGormRepository(db),
		students,
		notification.NewFromConfig(),
		feeService.WithLocker(configs.GetRedisLock()),
		feeService.WithMaxReportStudents(configs.Conf.GetInt("DUE_REPORT_MAX_STUDENTS")),
		feeService.WithLockTTL(configs.Conf.GetDuration("FEE_COLLECT_LOCK_TTL")),
	)

	wallets := walletService.NewService(walletRepo.NewGormRepository(db), students)
	recharges := walletService.NewRechargeService(wallets, walletService.NewMidtransFromConfig())

	inventory := itemService.NewService(itemRepo.NewGormRepository(db), students)
	workOrders := workOrderService.NewService(workOrderRepo.NewGormRepository(db))

	return &Services{
		Students:   students,
		Fees:       fees,
		Wallets:    wallets,
		Recharges:  recharges,
		Inventory:  inventory,
		WorkOrders: workOrders,
		Dashboard:  dashboardService.NewService(fees, wallets, inventory, workOrders, students),
	}
}
