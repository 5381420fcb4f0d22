package constants

// 订单状态常量
const (
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusPaid           = "paid"
	OrderStatusShipping       = "shipping"
	OrderStatusDelivered      = "delivered"
	OrderStatusCompleted      = "completed"
	OrderStatusCanceled       = "canceled"
)

// 优惠码折扣类型常量
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 邮箱验证码用途常量
const (
	VerifyPurposeRegister = "register"
	VerifyPurposeReset    = "reset_password"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型常量
const (
	TaskOrderConfirmationEmail = "email:order_confirmation"
	TaskWelcomeEmail           = "email:welcome"
	TaskOrderTimeoutCancel     = "order:timeout_cancel"
)

// 默认币种
const DefaultCurrency = "CNY"
