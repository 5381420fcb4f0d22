package models

import (
	"time"

	"gorm.io/gorm"
)

// PromoCode 优惠码
type PromoCode struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                             // 主键
	Code              string         `gorm:"uniqueIndex;not null" json:"code"`                                 // 优惠码（统一大写存储）
	DiscountType      string         `gorm:"type:varchar(20);not null" json:"discount_type"`                   // 折扣类型（percentage/fixed）
	DiscountValue     Money          `gorm:"type:decimal(20,2);not null" json:"discount_value"`                // 折扣数值（百分比或固定金额）
	MinOrderAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_order_amount"`    // 使用门槛
	MaxDiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"max_discount_amount"` // 最大优惠金额（0 表示不封顶）
	UsageLimit        int            `gorm:"not null;default:0" json:"usage_limit"`                            // 总使用上限（0 表示不限制）
	UsedCount         int            `gorm:"not null;default:0" json:"used_count"`                             // 已使用次数
	UsageLimitPerUser int            `gorm:"not null;default:0" json:"usage_limit_per_user"`                   // 每人使用上限（0 表示不限制）
	StartsAt          *time.Time     `gorm:"index" json:"starts_at"`                                           // 生效时间
	EndsAt            *time.Time     `gorm:"index" json:"ends_at"`                                             // 失效时间
	IsActive          bool           `gorm:"not null;default:true" json:"is_active"`                           // 是否启用
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                          // 创建时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                                          // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                                   // 软删除时间

	// 关联
	Products []PromoCodeProduct `gorm:"foreignKey:PromoCodeID" json:"products,omitempty"` // 适用商品（空集合表示全场适用）
	Users    []PromoCodeUser    `gorm:"foreignKey:PromoCodeID" json:"users,omitempty"`    // 用户白名单（空集合表示不限用户）
}

// TableName 指定表名
func (PromoCode) TableName() string {
	return "promo_codes"
}

// PromoCodeProduct 优惠码适用商品关联
type PromoCodeProduct struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                         // 主键
	PromoCodeID uint      `gorm:"not null;uniqueIndex:uniq_promo_product" json:"promo_code_id"` // 优惠码ID
	ProductID   uint      `gorm:"not null;uniqueIndex:uniq_promo_product" json:"product_id"`    // 商品ID
	CreatedAt   time.Time `json:"created_at"`                                                   // 创建时间
}

// TableName 指定表名
func (PromoCodeProduct) TableName() string {
	return "promo_code_products"
}

// PromoCodeUser 优惠码用户白名单关联
type PromoCodeUser struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                      // 主键
	PromoCodeID uint      `gorm:"not null;uniqueIndex:uniq_promo_user" json:"promo_code_id"` // 优惠码ID
	UserID      uint      `gorm:"not null;uniqueIndex:uniq_promo_user" json:"user_id"`       // 用户ID
	CreatedAt   time.Time `json:"created_at"`                                                // 创建时间
}

// TableName 指定表名
func (PromoCodeUser) TableName() string {
	return "promo_code_users"
}
