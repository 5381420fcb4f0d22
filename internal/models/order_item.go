package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem 订单项表
type OrderItem struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                         // 主键
	OrderID         uint           `gorm:"index;not null" json:"order_id"`                               // 订单ID
	ProductID       uint           `gorm:"index;not null" json:"product_id"`                             // 商品ID
	VariantID       *uint          `gorm:"index" json:"variant_id,omitempty"`                            // 规格ID（无规格商品为空）
	TitleJSON       JSON           `gorm:"type:json;not null" json:"title"`                              // 商品标题快照
	VariantNameJSON JSON           `gorm:"type:json" json:"variant_name,omitempty"`                      // 规格名称快照
	Material        string         `gorm:"type:varchar(100)" json:"material,omitempty"`                  // 材质快照
	Dimensions      string         `gorm:"type:varchar(100)" json:"dimensions,omitempty"`                // 尺寸快照
	UnitPrice       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`      // 单价
	Quantity        int            `gorm:"not null" json:"quantity"`                                     // 数量
	TotalPrice      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"`     // 小计
	PromoDiscount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"promo_discount"`  // 优惠码分摊金额
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
