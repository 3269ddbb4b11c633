// file: internals/databases/migrations/migrate.go
package migrations

import (
	"log"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	feeModel "schoolku_backend/internals/features/finance/fees/model"
	walletModel "schoolku_backend/internals/features/finance/wallets/model"
	itemModel "schoolku_backend/internals/features/inventory/items/model"
	workOrderModel "schoolku_backend/internals/features/procurement/work_orders/model"
	studentModel "schoolku_backend/internals/features/school/students/model"
)

// Models urutan penting: tabel induk dulu (FK line -> header).
func Models() []any {
	return []any{
		&studentModel.SchoolStudentModel{},

		&feeModel.FeeTypeModel{},
		&feeModel.FeeGroupModel{},
		&feeModel.FeeMasterModel{},
		&feeModel.FeeDiscountModel{},
		&feeModel.StudentFeeModel{},

		&walletModel.WalletModel{},
		&walletModel.WalletTransactionModel{},
		&walletModel.WalletRechargeModel{},

		&itemModel.ItemModel{},
		&itemModel.ItemStockModel{},
		&itemModel.ItemTransactionModel{},
		&itemModel.ItemIssueModel{},
		&itemModel.ItemIssueLineModel{},
		&itemModel.ItemSaleModel{},
		&itemModel.ItemSaleLineModel{},

		&workOrderModel.WorkOrderModel{},
		&workOrderModel.WorkOrderPaymentModel{},
	}
}

// AutoMigrate hanya untuk dev/staging; production pakai migrasi SQL terpisah.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("db belum terkoneksi")
	}
	for _, m := range Models() {
		if err := db.AutoMigrate(m); err != nil {
			return errors.Wrapf(err, "automigrate %T", m)
		}
	}
	log.Printf("✅ AutoMigrate selesai (%d tabel)", len(Models()))
	return nil
}
