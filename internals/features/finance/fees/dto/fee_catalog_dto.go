// file: internals/features/finance/fees/dto/fee_catalog_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schoolku_backend/internals/constants"
	"schoolku_backend/internals/features/finance/fees/model"
)

/* ===============================
   FEE TYPE / GROUP
=================================*/

type CreateFeeTypeRequest struct {
	FeeTypeName        string  `json:"fee_type_name" validate:"required,min=2,max=80"`
	FeeTypeCode        string  `json:"fee_type_code" validate:"omitempty,max=30"`
	FeeTypeDescription *string `json:"fee_type_description"`
}

func (r CreateFeeTypeRequest) ToModel(schoolID uuid.UUID) *model.FeeTypeModel {
	code := strings.ToUpper(strings.TrimSpace(r.FeeTypeCode))
	return &model.FeeTypeModel{
		FeeTypeSchoolID:    schoolID,
		FeeTypeName:        strings.TrimSpace(r.FeeTypeName),
		FeeTypeCode:        code,
		FeeTypeDescription: r.FeeTypeDescription,
		FeeTypeLifecycle:   constants.LifecycleActive,
	}
}

type CreateFeeGroupRequest struct {
	FeeGroupName        string  `json:"fee_group_name" validate:"required,min=2,max=80"`
	FeeGroupDescription *string `json:"fee_group_description"`
}

func (r CreateFeeGroupRequest) ToModel(schoolID uuid.UUID) *model.FeeGroupModel {
	return &model.FeeGroupModel{
		FeeGroupSchoolID:    schoolID,
		FeeGroupName:        strings.TrimSpace(r.FeeGroupName),
		FeeGroupDescription: r.FeeGroupDescription,
		FeeGroupLifecycle:   constants.LifecycleActive,
	}
}

/* ===============================
   FEE MASTER
=================================*/

type CreateFeeMasterRequest struct {
	FeeMasterFeeGroupID *uuid.UUID      `json:"fee_master_fee_group_id"`
	FeeMasterFeeTypeID  uuid.UUID       `json:"fee_master_fee_type_id" validate:"required"`
	FeeMasterClassID    uuid.UUID       `json:"fee_master_class_id" validate:"required"`
	FeeMasterAmount     decimal.Decimal `json:"fee_master_amount"`
	FeeMasterDueDate    *time.Time      `json:"fee_master_due_date"`
	FeeMasterFineType   model.FineType  `json:"fee_master_fine_type" validate:"omitempty,oneof=none fixed percentage per_day"`
	FeeMasterFineAmount decimal.Decimal `json:"fee_master_fine_amount"`
}

func (r CreateFeeMasterRequest) ToModel(schoolID uuid.UUID, feeTypeName string) *model.FeeMasterModel {
	fine := r.FeeMasterFineType
	if fine == "" {
		fine = model.FineNone
	}
	return &model.FeeMasterModel{
		FeeMasterSchoolID:    schoolID,
		FeeMasterFeeGroupID:  r.FeeMasterFeeGroupID,
		FeeMasterFeeTypeID:   r.FeeMasterFeeTypeID,
		FeeMasterFeeTypeName: feeTypeName,
		FeeMasterClassID:     r.FeeMasterClassID,
		FeeMasterAmount:      r.FeeMasterAmount.Round(2),
		FeeMasterDueDate:     r.FeeMasterDueDate,
		FeeMasterFineType:    fine,
		FeeMasterFineAmount:  r.FeeMasterFineAmount.Round(2),
		FeeMasterLifecycle:   constants.LifecycleActive,
	}
}

/* ===============================
   FEE DISCOUNT
=================================*/

type CreateFeeDiscountRequest struct {
	FeeDiscountName        string          `json:"fee_discount_name" validate:"required,min=2,max=80"`
	FeeDiscountCode        string          `json:"fee_discount_code" validate:"required,min=2,max=40"`
	FeeDiscountAmount      decimal.Decimal `json:"fee_discount_amount"`
	FeeDiscountFeeTypeID   *uuid.UUID      `json:"fee_discount_fee_type_id"`
	FeeDiscountDescription *string         `json:"fee_discount_description"`
}

func (r CreateFeeDiscountRequest) ToModel(schoolID uuid.UUID) *model.FeeDiscountModel {
	return &model.FeeDiscountModel{
		FeeDiscountSchoolID:    schoolID,
		FeeDiscountName:        strings.TrimSpace(r.FeeDiscountName),
		FeeDiscountCode:        NormalizeDiscountCode(r.FeeDiscountCode),
		FeeDiscountAmount:      r.FeeDiscountAmount.Round(2),
		FeeDiscountFeeTypeID:   r.FeeDiscountFeeTypeID,
		FeeDiscountDescription: r.FeeDiscountDescription,
		FeeDiscountLifecycle:   constants.LifecycleActive,
	}
}

func NormalizeDiscountCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
