package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductVariant 商品规格表（颜色/尺寸/饰面等）
type ProductVariant struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                      // 主键
	ProductID     uint           `gorm:"not null;index" json:"product_id"`                          // 商品ID
	VariantCode   string         `gorm:"type:varchar(100);not null" json:"variant_code"`            // 规格编码（商品内唯一）
	NameJSON      JSON           `gorm:"type:json;not null" json:"name"`                            // 多语言规格名称
	PriceAmount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"` // 规格价格
	StockTotal    int            `gorm:"not null;default:0" json:"stock_total"`                     // 库存总量（0 表示不启用库存控制）
	StockReserved int            `gorm:"not null;default:0" json:"stock_reserved"`                  // 已占用库存
	IsActive      bool           `gorm:"default:true;index" json:"is_active"`                       // 是否可售
	SortOrder     int            `gorm:"default:0;index" json:"sort_order"`                         // 排序权重
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间
}

// TableName 指定表名
func (ProductVariant) TableName() string {
	return "product_variants"
}

// StockAvailable 可售库存（库存不启用时返回 -1 表示不限量）
func (v ProductVariant) StockAvailable() int {
	if v.StockTotal <= 0 {
		return -1
	}
	available := v.StockTotal - v.StockReserved
	if available < 0 {
		return 0
	}
	return available
}
