package repository

import (
	"errors"

	"github.com/maplenest/internal/models"

	"gorm.io/gorm"
)

// ProductVariantRepository 商品规格数据访问接口
type ProductVariantRepository interface {
	ListByProductID(productID uint, onlyActive bool) ([]models.ProductVariant, error)
	GetByID(id uint) (*models.ProductVariant, error)
	ListByIDs(ids []uint) ([]models.ProductVariant, error)
	Create(variant *models.ProductVariant) error
	Update(variant *models.ProductVariant) error
	Delete(id uint) error
	CountByCode(productID uint, code string, excludeID *uint) (int64, error)
	ReserveStock(variantID uint, quantity int) (int64, error)
	ReleaseStock(variantID uint, quantity int) (int64, error)
	ConsumeStock(variantID uint, quantity int) (int64, error)
	WithTx(tx *gorm.DB) ProductVariantRepository
}

// GormProductVariantRepository GORM 实现
type GormProductVariantRepository struct {
	db *gorm.DB
}

// NewProductVariantRepository 创建商品规格仓库
func NewProductVariantRepository(db *gorm.DB) *GormProductVariantRepository {
	return &GormProductVariantRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductVariantRepository) WithTx(tx *gorm.DB) ProductVariantRepository {
	if tx == nil {
		return r
	}
	return &GormProductVariantRepository{db: tx}
}

// ListByProductID 获取商品下的规格列表
func (r *GormProductVariantRepository) ListByProductID(productID uint, onlyActive bool) ([]models.ProductVariant, error) {
	query := r.db.Where("product_id = ?", productID)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var variants []models.ProductVariant
	if err := query.Order("sort_order DESC, id ASC").Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// GetByID 根据ID获取规格
func (r *GormProductVariantRepository) GetByID(id uint) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.First(&variant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

// ListByIDs 批量获取规格
func (r *GormProductVariantRepository) ListByIDs(ids []uint) ([]models.ProductVariant, error) {
	if len(ids) == 0 {
		return []models.ProductVariant{}, nil
	}
	var variants []models.ProductVariant
	if err := r.db.Where("id IN ?", ids).Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// Create 创建规格
func (r *GormProductVariantRepository) Create(variant *models.ProductVariant) error {
	return r.db.Create(variant).Error
}

// Update 更新规格
func (r *GormProductVariantRepository) Update(variant *models.ProductVariant) error {
	return r.db.Save(variant).Error
}

// Delete 删除规格
func (r *GormProductVariantRepository) Delete(id uint) error {
	return r.db.Delete(&models.ProductVariant{}, id).Error
}

// CountByCode 统计商品内规格编码数量
func (r *GormProductVariantRepository) CountByCode(productID uint, code string, excludeID *uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.ProductVariant{}).
		Where("product_id = ? AND variant_code = ?", productID, code)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ReserveStock 预占规格库存（stock_total 为 0 表示不限量，直接命中）
func (r *GormProductVariantRepository) ReserveStock(variantID uint, quantity int) (int64, error) {
	if variantID == 0 || quantity <= 0 {
		return 0, errors.New("invalid variant stock reserve params")
	}
	result := r.db.Model(&models.ProductVariant{}).
		Where("id = ? AND (stock_total = 0 OR stock_total - stock_reserved >= ?)", variantID, quantity).
		UpdateColumn("stock_reserved", gorm.Expr("stock_reserved + ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ReleaseStock 释放规格库存占用（订单取消）
func (r *GormProductVariantRepository) ReleaseStock(variantID uint, quantity int) (int64, error) {
	if variantID == 0 || quantity <= 0 {
		return 0, errors.New("invalid variant stock release params")
	}
	result := r.db.Model(&models.ProductVariant{}).
		Where("id = ? AND stock_reserved >= ?", variantID, quantity).
		UpdateColumn("stock_reserved", gorm.Expr("stock_reserved - ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ConsumeStock 消耗规格库存（订单完结，占用转实扣）
func (r *GormProductVariantRepository) ConsumeStock(variantID uint, quantity int) (int64, error) {
	if variantID == 0 || quantity <= 0 {
		return 0, errors.New("invalid variant stock consume params")
	}
	result := r.db.Model(&models.ProductVariant{}).
		Where("id = ? AND stock_total > 0 AND stock_total >= ? AND stock_reserved >= ?", variantID, quantity, quantity).
		Updates(map[string]interface{}{
			"stock_total":    gorm.Expr("stock_total - ?", quantity),
			"stock_reserved": gorm.Expr("stock_reserved - ?", quantity),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
