package repository

import (
	"github.com/maplenest/internal/models"

	"gorm.io/gorm"
)

// PromoCodeUsageRepository 优惠码核销记录数据访问接口（记录只追加）
type PromoCodeUsageRepository interface {
	Create(usage *models.PromoCodeUsage) error
	CountByUser(promoCodeID, userID uint) (int64, error)
	CountByPromoCode(promoCodeID uint) (int64, error)
	ListByOrderID(orderID uint) ([]models.PromoCodeUsage, error)
	List(filter PromoCodeUsageListFilter) ([]models.PromoCodeUsage, int64, error)
	WithTx(tx *gorm.DB) *GormPromoCodeUsageRepository
}

// GormPromoCodeUsageRepository GORM 实现
type GormPromoCodeUsageRepository struct {
	db *gorm.DB
}

// NewPromoCodeUsageRepository 创建优惠码核销记录仓库
func NewPromoCodeUsageRepository(db *gorm.DB) *GormPromoCodeUsageRepository {
	return &GormPromoCodeUsageRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromoCodeUsageRepository) WithTx(tx *gorm.DB) *GormPromoCodeUsageRepository {
	if tx == nil {
		return r
	}
	return &GormPromoCodeUsageRepository{db: tx}
}

// Create 创建核销记录
func (r *GormPromoCodeUsageRepository) Create(usage *models.PromoCodeUsage) error {
	return r.db.Create(usage).Error
}

// CountByUser 获取用户核销次数（游客 userID 为 0 时不计数）
func (r *GormPromoCodeUsageRepository) CountByUser(promoCodeID, userID uint) (int64, error) {
	if userID == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.Model(&models.PromoCodeUsage{}).
		Where("promo_code_id = ? AND user_id = ?", promoCodeID, userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByPromoCode 获取优惠码总核销次数
func (r *GormPromoCodeUsageRepository) CountByPromoCode(promoCodeID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.PromoCodeUsage{}).
		Where("promo_code_id = ?", promoCodeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListByOrderID 获取订单核销记录
func (r *GormPromoCodeUsageRepository) ListByOrderID(orderID uint) ([]models.PromoCodeUsage, error) {
	var usages []models.PromoCodeUsage
	if err := r.db.Where("order_id = ?", orderID).Find(&usages).Error; err != nil {
		return nil, err
	}
	return usages, nil
}

// List 获取核销记录列表
func (r *GormPromoCodeUsageRepository) List(filter PromoCodeUsageListFilter) ([]models.PromoCodeUsage, int64, error) {
	query := r.db.Model(&models.PromoCodeUsage{})
	if filter.PromoCodeID > 0 {
		query = query.Where("promo_code_id = ?", filter.PromoCodeID)
	}
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OrderID > 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var usages []models.PromoCodeUsage
	if err := query.Order("id desc").Find(&usages).Error; err != nil {
		return nil, 0, err
	}
	return usages, total, nil
}
