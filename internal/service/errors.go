package service

import "errors"

// 业务语义错误，handler 层据此映射响应码与多语言文案。
var (
	// 认证与账号
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserDisabled       = errors.New("user disabled")
	ErrPasswordPolicy     = errors.New("password does not meet policy")
	ErrAdminExists        = errors.New("admin already exists")
	ErrAdminNotFound      = errors.New("admin not found")

	// 目录
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryHasItems    = errors.New("category still has products")
	ErrSlugExists          = errors.New("slug already exists")
	ErrProductNotFound     = errors.New("product not found")
	ErrProductInactive     = errors.New("product not available")
	ErrProductPriceInvalid = errors.New("product price invalid")
	ErrVariantNotFound     = errors.New("product variant not found")
	ErrVariantCodeExists   = errors.New("variant code already exists")

	// 订单
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderCreateFailed  = errors.New("order create failed")
	ErrOrderUpdateFailed  = errors.New("order update failed")
	ErrOrderStatusInvalid = errors.New("order status transition invalid")
	ErrOrderItemsInvalid  = errors.New("order items invalid")
	ErrStockInsufficient  = errors.New("insufficient stock")
	ErrGuestEmailRequired = errors.New("guest email required")

	// 邮件
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrInvalidEmail              = errors.New("invalid email address")

	// 优惠码引擎
	ErrPromoInvalid            = errors.New("promo code data invalid")
	ErrPromoCodeExists         = errors.New("promo code already exists")
	ErrPromoNotFound           = errors.New("promo code not found")
	ErrPromoInactive           = errors.New("promo code inactive")
	ErrPromoNotStarted         = errors.New("promo code not started")
	ErrPromoExpired            = errors.New("promo code expired")
	ErrPromoNotEligibleUser    = errors.New("promo code not eligible for user")
	ErrPromoGlobalLimit        = errors.New("promo code global usage limit reached")
	ErrPromoUserLimit          = errors.New("promo code per-user usage limit reached")
	ErrPromoBelowMinimum       = errors.New("order amount below promo code minimum")
	ErrPromoNoEligibleProducts = errors.New("no eligible products for promo code")
	ErrPromoRedeemed           = errors.New("promo code already redeemed, disable only")
)
