package service

import (
	"strings"
	"time"

	"github.com/maplenest/internal/constants"
	"github.com/maplenest/internal/models"
	"github.com/maplenest/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PromoService 优惠码引擎：校验、试算与核销
type PromoService struct {
	promoRepo          repository.PromoCodeRepository
	usageRepo          repository.PromoCodeUsageRepository
	requireAllProducts bool
}

// NewPromoService 创建优惠码服务
func NewPromoService(promoRepo repository.PromoCodeRepository, usageRepo repository.PromoCodeUsageRepository, requireAllProducts bool) *PromoService {
	return &PromoService{
		promoRepo:          promoRepo,
		usageRepo:          usageRepo,
		requireAllProducts: requireAllProducts,
	}
}

// PromoCartItem 参与校验的购物车条目
type PromoCartItem struct {
	ProductID  uint
	Quantity   int
	TotalPrice models.Money
}

// ValidatePromoInput 优惠码校验输入
type ValidatePromoInput struct {
	Code   string
	UserID uint // 游客为 0
	Items  []PromoCartItem
	Now    time.Time // 零值时取当前时间
}

// PromoValidation 优惠码校验结果
type PromoValidation struct {
	Promo    *models.PromoCode
	Subtotal models.Money
	Discount models.Money
}

// Validate 只读校验优惠码，可重复调用，不产生任何副作用。
// 校验按固定顺序短路：存在性、启用状态、时间窗口、用户白名单、
// 总量上限、每人上限、金额门槛、商品适用范围。
func (s *PromoService) Validate(input ValidatePromoInput) (*PromoValidation, error) {
	trimmed := strings.TrimSpace(input.Code)
	if trimmed == "" {
		return nil, ErrPromoNotFound
	}

	promo, err := s.promoRepo.GetByCode(trimmed)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, ErrPromoNotFound
	}
	if !promo.IsActive {
		return nil, ErrPromoInactive
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}
	if promo.StartsAt != nil && now.Before(*promo.StartsAt) {
		return nil, ErrPromoNotStarted
	}
	if promo.EndsAt != nil && now.After(*promo.EndsAt) {
		return nil, ErrPromoExpired
	}

	allowedUsers, err := s.promoRepo.ListUserIDs(promo.ID)
	if err != nil {
		return nil, err
	}
	if len(allowedUsers) > 0 {
		if input.UserID == 0 || !containsID(allowedUsers, input.UserID) {
			return nil, ErrPromoNotEligibleUser
		}
	}

	if promo.UsageLimit > 0 && promo.UsedCount >= promo.UsageLimit {
		return nil, ErrPromoGlobalLimit
	}

	if promo.UsageLimitPerUser > 0 {
		// 游客无法追踪使用次数，按策略直接拒绝带每人上限的优惠码
		if input.UserID == 0 {
			return nil, ErrPromoNotEligibleUser
		}
		count, err := s.usageRepo.CountByUser(promo.ID, input.UserID)
		if err != nil {
			return nil, err
		}
		if int(count) >= promo.UsageLimitPerUser {
			return nil, ErrPromoUserLimit
		}
	}

	subtotal := decimal.Zero
	for _, item := range input.Items {
		subtotal = subtotal.Add(item.TotalPrice.Decimal)
	}
	if subtotal.Cmp(promo.MinOrderAmount.Decimal) < 0 {
		return nil, ErrPromoBelowMinimum
	}

	if err := s.checkProductScope(promo, input.Items); err != nil {
		return nil, err
	}

	discount, err := ComputeDiscount(promo, subtotal)
	if err != nil {
		return nil, err
	}

	return &PromoValidation{
		Promo:    promo,
		Subtotal: models.NewMoneyFromDecimal(subtotal),
		Discount: discount,
	}, nil
}

// checkProductScope 校验商品适用范围，空集合表示全场适用。
func (s *PromoService) checkProductScope(promo *models.PromoCode, items []PromoCartItem) error {
	scope, err := s.promoRepo.ListProductIDs(promo.ID)
	if err != nil {
		return err
	}
	if len(scope) == 0 {
		return nil
	}

	matched := 0
	for _, item := range items {
		if containsID(scope, item.ProductID) {
			matched++
		}
	}
	if s.requireAllProducts {
		if len(items) == 0 || matched != len(items) {
			return ErrPromoNoEligibleProducts
		}
		return nil
	}
	if matched == 0 {
		return ErrPromoNoEligibleProducts
	}
	return nil
}

// ComputeDiscount 按优惠码规则计算折扣金额，纯计算无副作用。
// percentage 按小计乘百分比，fixed 取固定金额；结果先封顶到小计，
// 再受 max_discount_amount 约束，最终保留 2 位小数。
func ComputeDiscount(promo *models.PromoCode, subtotal decimal.Decimal) (models.Money, error) {
	if promo == nil {
		return models.Money{}, ErrPromoInvalid
	}
	if promo.DiscountValue.Decimal.LessThanOrEqual(decimal.Zero) {
		return models.NewMoneyFromDecimal(decimal.Zero), nil
	}

	var discount decimal.Decimal
	switch strings.ToLower(strings.TrimSpace(promo.DiscountType)) {
	case constants.DiscountTypePercentage:
		percent := promo.DiscountValue.Decimal.Div(decimal.NewFromInt(100))
		discount = subtotal.Mul(percent)
	case constants.DiscountTypeFixed:
		discount = promo.DiscountValue.Decimal
	default:
		return models.Money{}, ErrPromoInvalid
	}

	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if promo.MaxDiscountAmount.Decimal.GreaterThan(decimal.Zero) && discount.GreaterThan(promo.MaxDiscountAmount.Decimal) {
		discount = promo.MaxDiscountAmount.Decimal
	}
	if discount.LessThan(decimal.Zero) {
		discount = decimal.Zero
	}
	return models.NewMoneyFromDecimal(discount), nil
}

// Redeem 在下单事务内核销优惠码。加行锁重读后复核总量与每人上限，
// 并发竞争在此处兜底；通过后写入核销记录并递增 used_count。
func (s *PromoService) Redeem(tx *gorm.DB, promoCodeID, orderID, userID uint, discount models.Money) error {
	if tx == nil || promoCodeID == 0 || orderID == 0 {
		return ErrPromoInvalid
	}

	promoRepo := s.promoRepo.WithTx(tx)
	usageRepo := s.usageRepo.WithTx(tx)

	promo, err := promoRepo.GetByIDForUpdate(promoCodeID)
	if err != nil {
		return err
	}
	if promo == nil {
		return ErrPromoNotFound
	}
	if !promo.IsActive {
		return ErrPromoInactive
	}
	if promo.UsageLimit > 0 && promo.UsedCount >= promo.UsageLimit {
		return ErrPromoGlobalLimit
	}
	if promo.UsageLimitPerUser > 0 {
		if userID == 0 {
			return ErrPromoNotEligibleUser
		}
		count, err := usageRepo.CountByUser(promo.ID, userID)
		if err != nil {
			return err
		}
		if int(count) >= promo.UsageLimitPerUser {
			return ErrPromoUserLimit
		}
	}

	now := time.Now()
	usage := &models.PromoCodeUsage{
		PromoCodeID:    promo.ID,
		UserID:         userID,
		OrderID:        orderID,
		DiscountAmount: discount,
		UsedAt:         now,
		CreatedAt:      now,
	}
	if err := usageRepo.Create(usage); err != nil {
		return err
	}
	return promoRepo.IncrementUsedCount(promo.ID, 1)
}

func containsID(ids []uint, target uint) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
