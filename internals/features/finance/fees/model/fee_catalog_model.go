// file: internals/features/finance/fees/model/fee_catalog_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schoolku_backend/internals/constants"
)

/* =========================================================
   FEE TYPE (katalog jenis biaya: SPP, Seragam, Buku, ...)
========================================================= */

type FeeTypeModel struct {
	FeeTypeID       uuid.UUID `gorm:"column:fee_type_id;type:uuid;default:gen_random_uuid();primaryKey" json:"fee_type_id"`
	FeeTypeSchoolID uuid.UUID `gorm:"column:fee_type_school_id;type:uuid;not null;uniqueIndex:uq_fee_types_school_name,priority:1" json:"fee_type_school_id"`

	FeeTypeName        string  `gorm:"column:fee_type_name;type:varchar(80);not null;uniqueIndex:uq_fee_types_school_name,priority:2" json:"fee_type_name"`
	FeeTypeCode        string  `gorm:"column:fee_type_code;type:varchar(30)" json:"fee_type_code"`
	FeeTypeDescription *string `gorm:"column:fee_type_description;type:text" json:"fee_type_description,omitempty"`

	FeeTypeLifecycle constants.Lifecycle `gorm:"column:fee_type_lifecycle;type:varchar(20);not null;default:'active'" json:"fee_type_lifecycle"`

	FeeTypeCreatedAt time.Time `gorm:"column:fee_type_created_at;type:timestamptz;not null;autoCreateTime" json:"fee_type_created_at"`
	FeeTypeUpdatedAt time.Time `gorm:"column:fee_type_updated_at;type:timestamptz;not null;autoUpdateTime" json:"fee_type_updated_at"`
}

func (FeeTypeModel) TableName() string { return "fee_types" }

/* =========================================================
   FEE GROUP (pengelompokan: "Biaya Tahunan", "Biaya Bulanan")
========================================================= */

type FeeGroupModel struct {
	FeeGroupID       uuid.UUID `gorm:"column:fee_group_id;type:uuid;default:gen_random_uuid();primaryKey" json:"fee_group_id"`
	FeeGroupSchoolID uuid.UUID `gorm:"column:fee_group_school_id;type:uuid;not null;uniqueIndex:uq_fee_groups_school_name,priority:1" json:"fee_group_school_id"`

	FeeGroupName        string  `gorm:"column:fee_group_name;type:varchar(80);not null;uniqueIndex:uq_fee_groups_school_name,priority:2" json:"fee_group_name"`
	FeeGroupDescription *string `gorm:"column:fee_group_description;type:text" json:"fee_group_description,omitempty"`

	FeeGroupLifecycle constants.Lifecycle `gorm:"column:fee_group_lifecycle;type:varchar(20);not null;default:'active'" json:"fee_group_lifecycle"`

	FeeGroupCreatedAt time.Time `gorm:"column:fee_group_created_at;type:timestamptz;not null;autoCreateTime" json:"fee_group_created_at"`
	FeeGroupUpdatedAt time.Time `gorm:"column:fee_group_updated_at;type:timestamptz;not null;autoUpdateTime" json:"fee_group_updated_at"`
}

func (FeeGroupModel) TableName() string { return "fee_groups" }

/* =========================================================
   FEE MASTER (template: group + type + class → amount, due, denda)
========================================================= */

type FineType string

const (
	FineNone       FineType = "none"
	FineFixed      FineType = "fixed"
	FinePercentage FineType = "percentage"
	FinePerDay     FineType = "per_day"
)

func (f FineType) Valid() bool {
	switch f {
	case FineNone, FineFixed, FinePercentage, FinePerDay:
		return true
	}
	return false
}

type FeeMasterModel struct {
	FeeMasterID       uuid.UUID `gorm:"column:fee_master_id;type:uuid;default:gen_random_uuid();primaryKey" json:"fee_master_id"`
	FeeMasterSchoolID uuid.UUID `gorm:"column:fee_master_school_id;type:uuid;not null;index:idx_fee_masters_school_class,priority:1" json:"fee_master_school_id"`

	FeeMasterFeeGroupID *uuid.UUID `gorm:"column:fee_master_fee_group_id;type:uuid" json:"fee_master_fee_group_id,omitempty"`
	FeeMasterFeeTypeID  uuid.UUID  `gorm:"column:fee_master_fee_type_id;type:uuid;not null;index" json:"fee_master_fee_type_id"`
	// snapshot nama untuk tampilan; pencocokan pembayaran tetap pakai FK
	FeeMasterFeeTypeName string    `gorm:"column:fee_master_fee_type_name;type:varchar(80);not null" json:"fee_master_fee_type_name"`
	FeeMasterClassID     uuid.UUID `gorm:"column:fee_master_class_id;type:uuid;not null;index:idx_fee_masters_school_class,priority:2" json:"fee_master_class_id"`

	FeeMasterAmount  decimal.Decimal `gorm:"column:fee_master_amount;type:numeric(14,2);not null" json:"fee_master_amount"`
	FeeMasterDueDate *time.Time      `gorm:"column:fee_master_due_date;type:date" json:"fee_master_due_date,omitempty"`

	FeeMasterFineType   FineType        `gorm:"column:fee_master_fine_type;type:varchar(20);not null;default:'none'" json:"fee_master_fine_type"`
	FeeMasterFineAmount decimal.Decimal `gorm:"column:fee_master_fine_amount;type:numeric(14,2);not null;default:0" json:"fee_master_fine_amount"`

	FeeMasterLifecycle constants.Lifecycle `gorm:"column:fee_master_lifecycle;type:varchar(20);not null;default:'active'" json:"fee_master_lifecycle"`

	FeeMasterCreatedAt time.Time `gorm:"column:fee_master_created_at;type:timestamptz;not null;autoCreateTime" json:"fee_master_created_at"`
	FeeMasterUpdatedAt time.Time `gorm:"column:fee_master_updated_at;type:timestamptz;not null;autoUpdateTime" json:"fee_master_updated_at"`
}

func (FeeMasterModel) TableName() string { return "fee_masters" }

/* =========================================================
   FEE DISCOUNT (dicari via code saat penagihan)
========================================================= */

type FeeDiscountModel struct {
	FeeDiscountID       uuid.UUID `gorm:"column:fee_discount_id;type:uuid;default:gen_random_uuid();primaryKey" json:"fee_discount_id"`
	FeeDiscountSchoolID uuid.UUID `gorm:"column:fee_discount_school_id;type:uuid;not null;uniqueIndex:uq_fee_discounts_school_code,priority:1" json:"fee_discount_school_id"`

	FeeDiscountName   string          `gorm:"column:fee_discount_name;type:varchar(80);not null" json:"fee_discount_name"`
	FeeDiscountCode   string          `gorm:"column:fee_discount_code;type:varchar(40);not null;uniqueIndex:uq_fee_discounts_school_code,priority:2" json:"fee_discount_code"`
	FeeDiscountAmount decimal.Decimal `gorm:"column:fee_discount_amount;type:numeric(14,2);not null" json:"fee_discount_amount"`
	// nil = berlaku untuk semua jenis biaya
	FeeDiscountFeeTypeID   *uuid.UUID `gorm:"column:fee_discount_fee_type_id;type:uuid" json:"fee_discount_fee_type_id,omitempty"`
	FeeDiscountDescription *string    `gorm:"column:fee_discount_description;type:text" json:"fee_discount_description,omitempty"`

	FeeDiscountLifecycle constants.Lifecycle `gorm:"column:fee_discount_lifecycle;type:varchar(20);not null;default:'active'" json:"fee_discount_lifecycle"`

	FeeDiscountCreatedAt time.Time `gorm:"column:fee_discount_created_at;type:timestamptz;not null;autoCreateTime" json:"fee_discount_created_at"`
	FeeDiscountUpdatedAt time.Time `gorm:"column:fee_discount_updated_at;type:timestamptz;not null;autoUpdateTime" json:"fee_discount_updated_at"`
}

func (FeeDiscountModel) TableName() string { return "fee_discounts" }

// AppliesTo: diskon tanpa fee type berlaku umum.
func (d FeeDiscountModel) AppliesTo(feeTypeID uuid.UUID) bool {
	return d.FeeDiscountFeeTypeID == nil || *d.FeeDiscountFeeTypeID == feeTypeID
}
