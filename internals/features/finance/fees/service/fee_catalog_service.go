// file: internals/features/finance/fees/service/fee_catalog_service.go
package service

import (
	"context"

	"github.com/pkg/errors"

	database "schoolku_backend/internals/databases"
	"schoolku_backend/internals/features/finance/fees/dto"
	"schoolku_backend/internals/features/finance/fees/model"
	"schoolku_backend/internals/features/finance/fees/repository"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

func (s *Service) CreateFeeType(ctx context.Context, ac helperAuth.AuthContext, req dto.CreateFeeTypeRequest) (*model.FeeTypeModel, error) {
	m := req.ToModel(ac.SchoolID)
	if m.FeeTypeName == "" {
		return nil, helper.Validation("fee_type_name wajib diisi")
	}
	if err := s.repo.CreateFeeType(ctx, m); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, helper.Conflict("jenis biaya %q sudah ada", m.FeeTypeName)
		}
		return nil, errors.Wrap(err, "create fee type")
	}
	return m, nil
}

func (s *Service) ListFeeTypes(ctx context.Context, ac helperAuth.AuthContext) ([]model.FeeTypeModel, error) {
	rows, err := s.repo.ListFeeTypes(ctx, ac.SchoolID)
	return rows, errors.Wrap(err, "list fee types")
}

func (s *Service) CreateFeeGroup(ctx context.Context, ac helperAuth.AuthContext, req dto.CreateFeeGroupRequest) (*model.FeeGroupModel, error) {
	m := req.ToModel(ac.SchoolID)
	if m.FeeGroupName == "" {
		return nil, helper.Validation("fee_group_name wajib diisi")
	}
	if err := s.repo.CreateFeeGroup(ctx, m); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, helper.Conflict("grup biaya %q sudah ada", m.FeeGroupName)
		}
		return nil, errors.Wrap(err, "create fee group")
	}
	return m, nil
}

func (s *Service) ListFeeGroups(ctx context.Context, ac helperAuth.AuthContext) ([]model.FeeGroupModel, error) {
	rows, err := s.repo.ListFeeGroups(ctx, ac.SchoolID)
	return rows, errors.Wrap(err, "list fee groups")
}

func (s *Service) CreateFeeMaster(ctx context.Context, ac helperAuth.AuthContext, req dto.CreateFeeMasterRequest) (*model.FeeMasterModel, error) {
	if !req.FeeMasterAmount.IsPositive() {
		return nil, helper.ErrInvalidAmount.WithMessage("fee_master_amount harus lebih dari 0")
	}
	if req.FeeMasterFineType != "" && !req.FeeMasterFineType.Valid() {
		return nil, helper.Validation("fee_master_fine_type tidak valid")
	}
	if req.FeeMasterFineAmount.IsNegative() {
		return nil, helper.Validation("fee_master_fine_amount tidak boleh negatif")
	}

	ft, err := s.repo.GetFeeType(ctx, ac.SchoolID, req.FeeMasterFeeTypeID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, helper.Validation("fee_master_fee_type_id tidak ditemukan")
		}
		return nil, errors.Wrap(err, "get fee type")
	}
	if req.FeeMasterFeeGroupID != nil {
		if _, err := s.repo.GetFeeGroup(ctx, ac.SchoolID, *req.FeeMasterFeeGroupID); err != nil {
			if repository.IsNotFound(err) {
				return nil, helper.Validation("fee_master_fee_group_id tidak ditemukan")
			}
			return nil, errors.Wrap(err, "get fee group")
		}
	}

	m := req.ToModel(ac.SchoolID, ft.FeeTypeName)
	if err := s.repo.CreateFeeMaster(ctx, m); err != nil {
		return nil, errors.Wrap(err, "create fee master")
	}
	return m, nil
}

func (s *Service) ListFeeMasters(ctx context.Context, ac helperAuth.AuthContext, f repository.FeeMasterFilter) ([]model.FeeMasterModel, error) {
	rows, err := s.repo.ListFeeMasters(ctx, ac.SchoolID, f)
	return rows, errors.Wrap(err, "list fee masters")
}

func (s *Service) CreateDiscount(ctx context.Context, ac helperAuth.AuthContext, req dto.CreateFeeDiscountRequest) (*model.FeeDiscountModel, error) {
	if !req.FeeDiscountAmount.IsPositive() {
		return nil, helper.ErrInvalidAmount.WithMessage("fee_discount_amount harus lebih dari 0")
	}
	if req.FeeDiscountFeeTypeID != nil {
		if _, err := s.repo.GetFeeType(ctx, ac.SchoolID, *req.FeeDiscountFeeTypeID); err != nil {
			if repository.IsNotFound(err) {
				return nil, helper.Validation("fee_discount_fee_type_id tidak ditemukan")
			}
			return nil, errors.Wrap(err, "get fee type")
		}
	}
	m := req.ToModel(ac.SchoolID)
	if m.FeeDiscountCode == "" {
		return nil, helper.Validation("fee_discount_code wajib diisi")
	}
	if err := s.repo.CreateDiscount(ctx, m); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, helper.Conflict("kode diskon %s sudah ada", m.FeeDiscountCode)
		}
		return nil, errors.Wrap(err, "create discount")
	}
	return m, nil
}

func (s *Service) ListDiscounts(ctx context.Context, ac helperAuth.AuthContext) ([]model.FeeDiscountModel, error) {
	rows, err := s.repo.ListDiscounts(ctx, ac.SchoolID)
	return rows, errors.Wrap(err, "list discounts")
}
