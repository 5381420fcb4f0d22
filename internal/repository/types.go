package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page         int
	PageSize     int
	CategoryID   uint
	Search       string
	Material     string
	OnlyActive   bool
	OnlyInStock  bool
	WithCategory bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	OrderNo     string
	GuestEmail  string
	PromoCodeID uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// PromoCodeUsageListFilter 查询优惠码核销记录的过滤条件
type PromoCodeUsageListFilter struct {
	Page        int
	PageSize    int
	PromoCodeID uint
	UserID      uint
	OrderID     uint
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
