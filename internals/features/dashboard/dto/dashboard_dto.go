// file: internals/features/dashboard/dto/dashboard_dto.go
package dto

import (
	"time"

	feeDto "schoolku_backend/internals/features/finance/fees/dto"
	walletDto "schoolku_backend/internals/features/finance/wallets/dto"
	woDto "schoolku_backend/internals/features/procurement/work_orders/dto"
	studentModel "schoolku_backend/internals/features/school/students/model"
)

type AdminDashboard struct {
	GeneratedAt time.Time `json:"generated_at"`

	CollectedToday     feeDto.CollectionTotals `json:"collected_today"`
	CollectedThisMonth feeDto.CollectionTotals `json:"collected_this_month"`

	// nil kalau jumlah siswa melebihi batas laporan
	Outstanding          *feeDto.DueReportSummary `json:"outstanding,omitempty"`
	OutstandingAvailable bool                     `json:"outstanding_available"`

	Wallets       walletDto.WalletTotals `json:"wallets"`
	LowStockItems int64                  `json:"low_stock_items"`
	WorkOrders    woDto.OpenBalance      `json:"work_orders"`
}

type StudentDashboard struct {
	Student studentModel.SchoolStudentModel `json:"student"`
	DueFees feeDto.DueFeesResponse          `json:"due_fees"`
	Wallet  walletDto.WalletSnapshot        `json:"wallet"`
}
