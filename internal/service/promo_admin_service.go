package service

import (
	"strings"
	"time"

	"github.com/maplenest/internal/constants"
	"github.com/maplenest/internal/models"
	"github.com/maplenest/internal/repository"

	"github.com/shopspring/decimal"
)

// PromoAdminService 优惠码管理服务
type PromoAdminService struct {
	promoRepo repository.PromoCodeRepository
	usageRepo repository.PromoCodeUsageRepository
}

// NewPromoAdminService 创建优惠码管理服务
func NewPromoAdminService(promoRepo repository.PromoCodeRepository, usageRepo repository.PromoCodeUsageRepository) *PromoAdminService {
	return &PromoAdminService{
		promoRepo: promoRepo,
		usageRepo: usageRepo,
	}
}

// PromoCodeInput 创建/更新优惠码输入
type PromoCodeInput struct {
	Code              string
	DiscountType      string
	DiscountValue     models.Money
	MinOrderAmount    models.Money
	MaxDiscountAmount models.Money
	UsageLimit        int
	UsageLimitPerUser int
	StartsAt          *time.Time
	EndsAt            *time.Time
	IsActive          bool
	ProductIDs        []uint
	UserIDs           []uint
}

// PromoCodeDetail 优惠码详情（含范围关联）
type PromoCodeDetail struct {
	models.PromoCode
	ProductIDs []uint `json:"product_ids"`
	UserIDs    []uint `json:"user_ids"`
}

func validatePromoInput(input PromoCodeInput) error {
	if repository.NormalizeCode(input.Code) == "" {
		return ErrPromoInvalid
	}
	switch strings.ToLower(strings.TrimSpace(input.DiscountType)) {
	case constants.DiscountTypePercentage:
		if input.DiscountValue.Decimal.LessThanOrEqual(decimal.Zero) ||
			input.DiscountValue.Decimal.GreaterThan(decimal.NewFromInt(100)) {
			return ErrPromoInvalid
		}
	case constants.DiscountTypeFixed:
		if input.DiscountValue.Decimal.LessThanOrEqual(decimal.Zero) {
			return ErrPromoInvalid
		}
	default:
		return ErrPromoInvalid
	}
	if input.MinOrderAmount.Decimal.LessThan(decimal.Zero) ||
		input.MaxDiscountAmount.Decimal.LessThan(decimal.Zero) {
		return ErrPromoInvalid
	}
	if input.UsageLimit < 0 || input.UsageLimitPerUser < 0 {
		return ErrPromoInvalid
	}
	if input.StartsAt != nil && input.EndsAt != nil && !input.StartsAt.Before(*input.EndsAt) {
		return ErrPromoInvalid
	}
	return nil
}

// Create 创建优惠码
func (s *PromoAdminService) Create(input PromoCodeInput) (*PromoCodeDetail, error) {
	if err := validatePromoInput(input); err != nil {
		return nil, err
	}
	code := repository.NormalizeCode(input.Code)

	existing, err := s.promoRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPromoCodeExists
	}

	promo := &models.PromoCode{
		Code:              code,
		DiscountType:      strings.ToLower(strings.TrimSpace(input.DiscountType)),
		DiscountValue:     input.DiscountValue,
		MinOrderAmount:    input.MinOrderAmount,
		MaxDiscountAmount: input.MaxDiscountAmount,
		UsageLimit:        input.UsageLimit,
		UsageLimitPerUser: input.UsageLimitPerUser,
		StartsAt:          input.StartsAt,
		EndsAt:            input.EndsAt,
		IsActive:          input.IsActive,
	}
	if err := s.promoRepo.Create(promo); err != nil {
		return nil, err
	}
	if err := s.promoRepo.ReplaceProducts(promo.ID, input.ProductIDs); err != nil {
		return nil, err
	}
	if err := s.promoRepo.ReplaceUsers(promo.ID, input.UserIDs); err != nil {
		return nil, err
	}
	return s.Get(promo.ID)
}

// Update 更新优惠码
func (s *PromoAdminService) Update(id uint, input PromoCodeInput) (*PromoCodeDetail, error) {
	if err := validatePromoInput(input); err != nil {
		return nil, err
	}
	promo, err := s.promoRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, ErrPromoNotFound
	}

	code := repository.NormalizeCode(input.Code)
	if code != promo.Code {
		existing, err := s.promoRepo.GetByCode(code)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != promo.ID {
			return nil, ErrPromoCodeExists
		}
	}
	// 下调总量上限不得低于已使用次数
	if input.UsageLimit > 0 && input.UsageLimit < promo.UsedCount {
		return nil, ErrPromoInvalid
	}

	promo.Code = code
	promo.DiscountType = strings.ToLower(strings.TrimSpace(input.DiscountType))
	promo.DiscountValue = input.DiscountValue
	promo.MinOrderAmount = input.MinOrderAmount
	promo.MaxDiscountAmount = input.MaxDiscountAmount
	promo.UsageLimit = input.UsageLimit
	promo.UsageLimitPerUser = input.UsageLimitPerUser
	promo.StartsAt = input.StartsAt
	promo.EndsAt = input.EndsAt
	promo.IsActive = input.IsActive

	if err := s.promoRepo.Update(promo); err != nil {
		return nil, err
	}
	if err := s.promoRepo.ReplaceProducts(promo.ID, input.ProductIDs); err != nil {
		return nil, err
	}
	if err := s.promoRepo.ReplaceUsers(promo.ID, input.UserIDs); err != nil {
		return nil, err
	}
	return s.Get(promo.ID)
}

// Get 获取优惠码详情
func (s *PromoAdminService) Get(id uint) (*PromoCodeDetail, error) {
	promo, err := s.promoRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, ErrPromoNotFound
	}
	productIDs, err := s.promoRepo.ListProductIDs(promo.ID)
	if err != nil {
		return nil, err
	}
	userIDs, err := s.promoRepo.ListUserIDs(promo.ID)
	if err != nil {
		return nil, err
	}
	return &PromoCodeDetail{
		PromoCode:  *promo,
		ProductIDs: productIDs,
		UserIDs:    userIDs,
	}, nil
}

// List 优惠码列表
func (s *PromoAdminService) List(filter repository.PromoCodeListFilter) ([]models.PromoCode, int64, error) {
	return s.promoRepo.List(filter)
}

// Delete 删除优惠码。已有核销记录的优惠码只允许停用，保留历史。
func (s *PromoAdminService) Delete(id uint) error {
	promo, err := s.promoRepo.GetByID(id)
	if err != nil {
		return err
	}
	if promo == nil {
		return ErrPromoNotFound
	}
	count, err := s.usageRepo.CountByPromoCode(promo.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrPromoRedeemed
	}
	return s.promoRepo.Delete(promo.ID)
}

// Disable 停用优惠码
func (s *PromoAdminService) Disable(id uint) error {
	promo, err := s.promoRepo.GetByID(id)
	if err != nil {
		return err
	}
	if promo == nil {
		return ErrPromoNotFound
	}
	if !promo.IsActive {
		return nil
	}
	promo.IsActive = false
	return s.promoRepo.Update(promo)
}

// ListUsages 核销记录列表
func (s *PromoAdminService) ListUsages(filter repository.PromoCodeUsageListFilter) ([]models.PromoCodeUsage, int64, error) {
	return s.usageRepo.List(filter)
}
