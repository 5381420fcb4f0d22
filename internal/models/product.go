package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表（家具单品）
type Product struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                      // 主键
	CategoryID      uint           `gorm:"not null;index" json:"category_id"`                         // 分类ID
	Slug            string         `gorm:"uniqueIndex;not null" json:"slug"`                          // 唯一标识
	TitleJSON       JSON           `gorm:"type:json;not null" json:"title"`                           // 多语言标题
	DescriptionJSON JSON           `gorm:"type:json" json:"description"`                              // 多语言描述
	PriceAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"` // 价格金额
	Images          StringArray    `gorm:"type:json" json:"images"`                                   // 图片数组
	Material        string         `gorm:"type:varchar(100)" json:"material"`                         // 材质（橡木/胡桃木/布艺等）
	Dimensions      string         `gorm:"type:varchar(100)" json:"dimensions"`                       // 尺寸（长x宽x高 cm）
	StockTotal      int            `gorm:"not null;default:0" json:"stock_total"`                     // 库存总量（0 表示不启用库存控制）
	StockReserved   int            `gorm:"not null;default:0" json:"stock_reserved"`                  // 已占用库存（下单未完结）
	IsActive        bool           `gorm:"default:true;index" json:"is_active"`                       // 是否上架
	SortOrder       int            `gorm:"default:0;index" json:"sort_order"`                         // 排序权重
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt       time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	// 关联
	Category Category         `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // 分类信息
	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`  // 规格列表
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// StockAvailable 可售库存（库存不启用时返回 -1 表示不限量）
func (p Product) StockAvailable() int {
	if p.StockTotal <= 0 {
		return -1
	}
	available := p.StockTotal - p.StockReserved
	if available < 0 {
		return 0
	}
	return available
}
