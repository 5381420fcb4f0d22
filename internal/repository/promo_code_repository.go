package repository

import (
	"errors"
	"strings"

	"github.com/maplenest/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PromoCodeRepository 优惠码数据访问接口
type PromoCodeRepository interface {
	GetByID(id uint) (*models.PromoCode, error)
	GetByCode(code string) (*models.PromoCode, error)
	GetByIDForUpdate(id uint) (*models.PromoCode, error)
	Create(promo *models.PromoCode) error
	Update(promo *models.PromoCode) error
	Delete(id uint) error
	List(filter PromoCodeListFilter) ([]models.PromoCode, int64, error)
	IncrementUsedCount(id uint, delta int) error
	ListProductIDs(promoCodeID uint) ([]uint, error)
	ListUserIDs(promoCodeID uint) ([]uint, error)
	ReplaceProducts(promoCodeID uint, productIDs []uint) error
	ReplaceUsers(promoCodeID uint, userIDs []uint) error
	WithTx(tx *gorm.DB) *GormPromoCodeRepository
}

// PromoCodeListFilter 优惠码列表筛选
type PromoCodeListFilter struct {
	Code      string
	ProductID uint
	UserID    uint
	IsActive  *bool
	Page      int
	PageSize  int
}

// GormPromoCodeRepository GORM 实现
type GormPromoCodeRepository struct {
	db *gorm.DB
}

// NewPromoCodeRepository 创建优惠码仓库
func NewPromoCodeRepository(db *gorm.DB) *GormPromoCodeRepository {
	return &GormPromoCodeRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromoCodeRepository) WithTx(tx *gorm.DB) *GormPromoCodeRepository {
	if tx == nil {
		return r
	}
	return &GormPromoCodeRepository{db: tx}
}

// NormalizeCode 归一化优惠码（去空格并统一大写）
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GetByID 根据ID获取优惠码
func (r *GormPromoCodeRepository) GetByID(id uint) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.db.First(&promo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promo, nil
}

// GetByCode 根据归一化后的优惠码获取记录
func (r *GormPromoCodeRepository) GetByCode(code string) (*models.PromoCode, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, nil
	}
	var promo models.PromoCode
	if err := r.db.Where("code = ?", code).First(&promo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promo, nil
}

// GetByIDForUpdate 根据ID加锁查询优惠码（核销事务内使用）
func (r *GormPromoCodeRepository) GetByIDForUpdate(id uint) (*models.PromoCode, error) {
	if id == 0 {
		return nil, nil
	}
	var promo models.PromoCode
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&promo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promo, nil
}

// Create 创建优惠码
func (r *GormPromoCodeRepository) Create(promo *models.PromoCode) error {
	promo.Code = NormalizeCode(promo.Code)
	return r.db.Create(promo).Error
}

// Update 更新优惠码
func (r *GormPromoCodeRepository) Update(promo *models.PromoCode) error {
	promo.Code = NormalizeCode(promo.Code)
	return r.db.Save(promo).Error
}

// Delete 删除优惠码
func (r *GormPromoCodeRepository) Delete(id uint) error {
	return r.db.Delete(&models.PromoCode{}, id).Error
}

// List 获取优惠码列表
func (r *GormPromoCodeRepository) List(filter PromoCodeListFilter) ([]models.PromoCode, int64, error) {
	var promos []models.PromoCode
	query := r.db.Model(&models.PromoCode{})

	if filter.Code != "" {
		query = query.Where("code = ?", NormalizeCode(filter.Code))
	}
	if filter.ProductID > 0 {
		query = query.Where(
			"EXISTS (SELECT 1 FROM promo_code_products pcp WHERE pcp.promo_code_id = promo_codes.id AND pcp.product_id = ?)",
			filter.ProductID,
		)
	}
	if filter.UserID > 0 {
		query = query.Where(
			"EXISTS (SELECT 1 FROM promo_code_users pcu WHERE pcu.promo_code_id = promo_codes.id AND pcu.user_id = ?)",
			filter.UserID,
		)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("id desc").Find(&promos).Error; err != nil {
		return nil, 0, err
	}
	return promos, total, nil
}

// IncrementUsedCount 增加优惠码使用次数
func (r *GormPromoCodeRepository) IncrementUsedCount(id uint, delta int) error {
	if delta == 0 {
		delta = 1
	}
	return r.db.Model(&models.PromoCode{}).
		Where("id = ?", id).
		UpdateColumn("used_count", gorm.Expr("used_count + ?", delta)).Error
}

// ListProductIDs 获取优惠码适用商品ID列表
func (r *GormPromoCodeRepository) ListProductIDs(promoCodeID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&models.PromoCodeProduct{}).
		Where("promo_code_id = ?", promoCodeID).
		Order("product_id asc").
		Pluck("product_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListUserIDs 获取优惠码用户白名单ID列表
func (r *GormPromoCodeRepository) ListUserIDs(promoCodeID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&models.PromoCodeUser{}).
		Where("promo_code_id = ?", promoCodeID).
		Order("user_id asc").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ReplaceProducts 全量替换优惠码适用商品
func (r *GormPromoCodeRepository) ReplaceProducts(promoCodeID uint, productIDs []uint) error {
	if err := r.db.Where("promo_code_id = ?", promoCodeID).
		Delete(&models.PromoCodeProduct{}).Error; err != nil {
		return err
	}
	if len(productIDs) == 0 {
		return nil
	}
	rows := make([]models.PromoCodeProduct, 0, len(productIDs))
	seen := make(map[uint]struct{}, len(productIDs))
	for _, id := range productIDs {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		rows = append(rows, models.PromoCodeProduct{PromoCodeID: promoCodeID, ProductID: id})
	}
	if len(rows) == 0 {
		return nil
	}
	return r.db.Create(&rows).Error
}

// ReplaceUsers 全量替换优惠码用户白名单
func (r *GormPromoCodeRepository) ReplaceUsers(promoCodeID uint, userIDs []uint) error {
	if err := r.db.Where("promo_code_id = ?", promoCodeID).
		Delete(&models.PromoCodeUser{}).Error; err != nil {
		return err
	}
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]models.PromoCodeUser, 0, len(userIDs))
	seen := make(map[uint]struct{}, len(userIDs))
	for _, id := range userIDs {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		rows = append(rows, models.PromoCodeUser{PromoCodeID: promoCodeID, UserID: id})
	}
	if len(rows) == 0 {
		return nil
	}
	return r.db.Create(&rows).Error
}
