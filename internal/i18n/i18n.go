package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// 支持的语言常量
const (
	LocaleCN = "zh-CN"
	LocaleTW = "zh-TW"
	LocaleEN = "en-US"
)

// DefaultLocale 默认语言
const DefaultLocale = LocaleCN

// ResolveLocale 解析请求语言（query 参数优先，其次 Accept-Language）
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if locale := Normalize(c.Query("locale")); locale != "" {
		return locale
	}
	if locale := Normalize(c.GetHeader("Accept-Language")); locale != "" {
		return locale
	}
	return DefaultLocale
}

// Normalize 归一化语言标识，未识别返回空串
func Normalize(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return ""
	}
	if idx := strings.IndexAny(value, ",;"); idx >= 0 {
		value = value[:idx]
	}
	switch {
	case strings.HasPrefix(value, "zh-tw"), strings.HasPrefix(value, "zh-hant"), strings.HasPrefix(value, "zh-hk"):
		return LocaleTW
	case strings.HasPrefix(value, "zh"):
		return LocaleCN
	case strings.HasPrefix(value, "en"):
		return LocaleEN
	}
	return ""
}

// T 按语言取文案，缺失时回退默认语言，再缺失返回 key 本身
func T(locale, key string) string {
	normalized := Normalize(locale)
	if normalized == "" {
		normalized = DefaultLocale
	}
	if table, ok := messages[normalized]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 按语言取文案并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

var messages = map[string]map[string]string{
	LocaleCN: {
		"error.bad_request":              "请求参数有误",
		"error.unauthorized":             "未登录或登录已失效",
		"error.forbidden":                "没有权限执行该操作",
		"error.not_found":                "资源不存在",
		"error.internal":                 "服务器开小差了，请稍后重试",
		"error.auth_header_missing":      "缺少认证信息",
		"error.auth_header_invalid":      "认证信息格式有误",
		"error.jwt_secret_missing":       "服务端未配置签名密钥",
		"error.token_invalid":            "登录凭证无效",
		"error.token_revoked":            "登录凭证已失效，请重新登录",
		"error.user_disabled":            "账号已被禁用",
		"error.invalid_credentials":      "邮箱或密码不正确",
		"error.email_exists":             "该邮箱已注册",
		"error.password_policy":          "密码强度不符合要求",
		"error.password_min_length":      "密码长度不能少于 %d 位",
		"error.password_require_upper":   "密码必须包含大写字母",
		"error.password_require_lower":   "密码必须包含小写字母",
		"error.password_require_number":  "密码必须包含数字",
		"error.password_require_special": "密码必须包含特殊字符",
		"error.login_too_many":           "登录尝试过于频繁，请 %d 秒后重试",
		"error.rate_limited":             "请求过于频繁，请 %d 秒后重试",
		"error.rate_limit_unavailable":   "限流服务暂不可用",
		"error.category_not_found":       "分类不存在",
		"error.product_not_found":        "商品不存在",
		"error.product_not_available":    "商品已下架或不可购买",
		"error.variant_not_found":        "商品规格不存在",
		"error.stock_insufficient":       "库存不足",
		"error.invalid_order_item":       "订单商品信息有误",
		"error.guest_email_required":     "游客下单需要填写邮箱",
		"error.order_not_found":          "订单不存在",
		"error.order_create_failed":      "下单失败，请稍后重试",
		"error.order_status_invalid":     "当前订单状态不允许该操作",
		"error.promo_invalid":            "优惠码信息有误",
		"error.promo_not_found":          "优惠码不存在",
		"error.promo_inactive":           "优惠码已停用",
		"error.promo_not_started":        "优惠码尚未开始生效",
		"error.promo_expired":            "优惠码已过期",
		"error.promo_not_eligible_user":  "该优惠码不适用于当前账号",
		"error.promo_global_limit":       "优惠码已被领完",
		"error.promo_user_limit":         "您已达到该优惠码的使用上限",
		"error.promo_below_minimum":      "订单金额未达到优惠码使用门槛",
		"error.promo_no_eligible_products": "购物车中没有该优惠码适用的商品",
		"error.promo_code_exists":        "优惠码已存在",
		"error.promo_create_failed":      "创建优惠码失败",
		"error.promo_update_failed":      "更新优惠码失败",
		"error.promo_delete_failed":      "删除优惠码失败",
		"error.promo_redeemed_locked":    "优惠码已有使用记录，仅允许停用",
		"error.user_not_found":           "用户不存在",
		"error.admin_exists":             "管理员账号已存在",
		"error.admin_not_found":          "管理员不存在",
		"error.email_send_failed":        "邮件发送失败",
		"error.email_invalid":            "邮箱格式不正确",
		"error.register_failed":          "注册失败，请稍后重试",
		"error.login_failed":             "登录失败，请稍后重试",
		"error.password_change_failed":   "修改密码失败",
		"error.profile_update_failed":    "更新个人资料失败",
		"error.user_fetch_failed":        "获取用户信息失败",
		"error.user_update_failed":       "更新用户失败",
		"error.user_status_invalid":      "用户状态不合法",
		"error.user_id_invalid":          "用户标识无效",
		"error.user_id_type_invalid":     "用户标识类型异常",
		"error.admin_id_invalid":         "管理员标识无效",
		"error.admin_id_type_invalid":    "管理员标识类型异常",
		"error.category_fetch_failed":    "获取分类失败",
		"error.category_save_failed":     "保存分类失败",
		"error.category_delete_failed":   "删除分类失败",
		"error.category_has_products":    "分类下仍有商品，无法删除",
		"error.slug_exists":              "标识已被占用",
		"error.product_fetch_failed":     "获取商品失败",
		"error.product_save_failed":      "保存商品失败",
		"error.product_delete_failed":    "删除商品失败",
		"error.product_price_invalid":    "商品价格不合法",
		"error.variant_code_exists":      "规格编码已存在",
		"error.order_fetch_failed":       "获取订单失败",
		"error.order_cancel_failed":      "取消订单失败",
		"error.order_update_failed":      "更新订单失败",
		"error.promo_fetch_failed":       "获取优惠码失败",
		"error.authz_operation_failed":   "权限操作失败",
		"error.role_invalid":             "角色名称不合法",
	},
	LocaleTW: {
		"error.bad_request":              "請求參數有誤",
		"error.unauthorized":             "未登入或登入已失效",
		"error.forbidden":                "沒有權限執行該操作",
		"error.not_found":                "資源不存在",
		"error.internal":                 "伺服器開小差了，請稍後重試",
		"error.auth_header_missing":      "缺少認證資訊",
		"error.auth_header_invalid":      "認證資訊格式有誤",
		"error.jwt_secret_missing":       "服務端未配置簽名密鑰",
		"error.token_invalid":            "登入憑證無效",
		"error.token_revoked":            "登入憑證已失效，請重新登入",
		"error.user_disabled":            "帳號已被停用",
		"error.invalid_credentials":      "郵箱或密碼不正確",
		"error.email_exists":             "該郵箱已註冊",
		"error.password_policy":          "密碼強度不符合要求",
		"error.password_min_length":      "密碼長度不能少於 %d 位",
		"error.password_require_upper":   "密碼必須包含大寫字母",
		"error.password_require_lower":   "密碼必須包含小寫字母",
		"error.password_require_number":  "密碼必須包含數字",
		"error.password_require_special": "密碼必須包含特殊字符",
		"error.login_too_many":           "登入嘗試過於頻繁，請 %d 秒後重試",
		"error.rate_limited":             "請求過於頻繁，請 %d 秒後重試",
		"error.rate_limit_unavailable":   "限流服務暫不可用",
		"error.category_not_found":       "分類不存在",
		"error.product_not_found":        "商品不存在",
		"error.product_not_available":    "商品已下架或不可購買",
		"error.variant_not_found":        "商品規格不存在",
		"error.stock_insufficient":       "庫存不足",
		"error.invalid_order_item":       "訂單商品資訊有誤",
		"error.guest_email_required":     "遊客下單需要填寫郵箱",
		"error.order_not_found":          "訂單不存在",
		"error.order_create_failed":      "下單失敗，請稍後重試",
		"error.order_status_invalid":     "當前訂單狀態不允許該操作",
		"error.promo_invalid":            "優惠碼資訊有誤",
		"error.promo_not_found":          "優惠碼不存在",
		"error.promo_inactive":           "優惠碼已停用",
		"error.promo_not_started":        "優惠碼尚未開始生效",
		"error.promo_expired":            "優惠碼已過期",
		"error.promo_not_eligible_user":  "該優惠碼不適用於當前帳號",
		"error.promo_global_limit":       "優惠碼已被領完",
		"error.promo_user_limit":         "您已達到該優惠碼的使用上限",
		"error.promo_below_minimum":      "訂單金額未達到優惠碼使用門檻",
		"error.promo_no_eligible_products": "購物車中沒有該優惠碼適用的商品",
		"error.promo_code_exists":        "優惠碼已存在",
		"error.promo_create_failed":      "建立優惠碼失敗",
		"error.promo_update_failed":      "更新優惠碼失敗",
		"error.promo_delete_failed":      "刪除優惠碼失敗",
		"error.promo_redeemed_locked":    "優惠碼已有使用記錄，僅允許停用",
		"error.user_not_found":           "用戶不存在",
		"error.admin_exists":             "管理員帳號已存在",
		"error.admin_not_found":          "管理員不存在",
		"error.email_send_failed":        "郵件發送失敗",
		"error.email_invalid":            "郵箱格式不正確",
		"error.register_failed":          "註冊失敗，請稍後重試",
		"error.login_failed":             "登入失敗，請稍後重試",
		"error.password_change_failed":   "修改密碼失敗",
		"error.profile_update_failed":    "更新個人資料失敗",
		"error.user_fetch_failed":        "獲取用戶資訊失敗",
		"error.user_update_failed":       "更新用戶失敗",
		"error.user_status_invalid":      "用戶狀態不合法",
		"error.user_id_invalid":          "用戶標識無效",
		"error.user_id_type_invalid":     "用戶標識類型異常",
		"error.admin_id_invalid":         "管理員標識無效",
		"error.admin_id_type_invalid":    "管理員標識類型異常",
		"error.category_fetch_failed":    "獲取分類失敗",
		"error.category_save_failed":     "保存分類失敗",
		"error.category_delete_failed":   "刪除分類失敗",
		"error.category_has_products":    "分類下仍有商品，無法刪除",
		"error.slug_exists":              "標識已被佔用",
		"error.product_fetch_failed":     "獲取商品失敗",
		"error.product_save_failed":      "保存商品失敗",
		"error.product_delete_failed":    "刪除商品失敗",
		"error.product_price_invalid":    "商品價格不合法",
		"error.variant_code_exists":      "規格編碼已存在",
		"error.order_fetch_failed":       "獲取訂單失敗",
		"error.order_cancel_failed":      "取消訂單失敗",
		"error.order_update_failed":      "更新訂單失敗",
		"error.promo_fetch_failed":       "獲取優惠碼失敗",
		"error.authz_operation_failed":   "權限操作失敗",
		"error.role_invalid":             "角色名稱不合法",
	},
	LocaleEN: {
		"error.bad_request":              "Invalid request parameters",
		"error.unauthorized":             "Not signed in or session expired",
		"error.forbidden":                "You are not allowed to perform this action",
		"error.not_found":                "Resource not found",
		"error.internal":                 "Something went wrong, please try again later",
		"error.auth_header_missing":      "Missing authorization header",
		"error.auth_header_invalid":      "Malformed authorization header",
		"error.jwt_secret_missing":       "Server signing secret is not configured",
		"error.token_invalid":            "Invalid token",
		"error.token_revoked":            "Token revoked, please sign in again",
		"error.user_disabled":            "Account disabled",
		"error.invalid_credentials":      "Incorrect email or password",
		"error.email_exists":             "Email already registered",
		"error.password_policy":          "Password does not meet the policy",
		"error.password_min_length":      "Password must be at least %d characters",
		"error.password_require_upper":   "Password must contain an uppercase letter",
		"error.password_require_lower":   "Password must contain a lowercase letter",
		"error.password_require_number":  "Password must contain a digit",
		"error.password_require_special": "Password must contain a special character",
		"error.login_too_many":           "Too many login attempts, retry in %d seconds",
		"error.rate_limited":             "Too many requests, retry in %d seconds",
		"error.rate_limit_unavailable":   "Rate limiter unavailable",
		"error.category_not_found":       "Category not found",
		"error.product_not_found":        "Product not found",
		"error.product_not_available":    "Product is not available",
		"error.variant_not_found":        "Product variant not found",
		"error.stock_insufficient":       "Insufficient stock",
		"error.invalid_order_item":       "Invalid order items",
		"error.guest_email_required":     "Guest checkout requires an email",
		"error.order_not_found":          "Order not found",
		"error.order_create_failed":      "Failed to place the order, please retry",
		"error.order_status_invalid":     "Operation not allowed in the current order status",
		"error.promo_invalid":            "Invalid promo code data",
		"error.promo_not_found":          "Promo code not found",
		"error.promo_inactive":           "Promo code is disabled",
		"error.promo_not_started":        "Promo code is not active yet",
		"error.promo_expired":            "Promo code has expired",
		"error.promo_not_eligible_user":  "Promo code is not available for this account",
		"error.promo_global_limit":       "Promo code has been fully redeemed",
		"error.promo_user_limit":         "You have reached the usage limit of this promo code",
		"error.promo_below_minimum":      "Order amount is below the promo code minimum",
		"error.promo_no_eligible_products": "No eligible products for this promo code in the cart",
		"error.promo_code_exists":        "Promo code already exists",
		"error.promo_create_failed":      "Failed to create the promo code",
		"error.promo_update_failed":      "Failed to update the promo code",
		"error.promo_delete_failed":      "Failed to delete the promo code",
		"error.promo_redeemed_locked":    "Promo code already has redemptions and can only be disabled",
		"error.user_not_found":           "User not found",
		"error.admin_exists":             "Admin account already exists",
		"error.admin_not_found":          "Admin not found",
		"error.email_send_failed":        "Failed to send the email",
		"error.email_invalid":            "Invalid email address",
		"error.register_failed":          "Registration failed, please retry",
		"error.login_failed":             "Login failed, please retry",
		"error.password_change_failed":   "Failed to change the password",
		"error.profile_update_failed":    "Failed to update the profile",
		"error.user_fetch_failed":        "Failed to fetch user data",
		"error.user_update_failed":       "Failed to update the user",
		"error.user_status_invalid":      "Invalid user status",
		"error.user_id_invalid":          "Invalid user identity",
		"error.user_id_type_invalid":     "Unexpected user identity type",
		"error.admin_id_invalid":         "Invalid admin identity",
		"error.admin_id_type_invalid":    "Unexpected admin identity type",
		"error.category_fetch_failed":    "Failed to fetch categories",
		"error.category_save_failed":     "Failed to save the category",
		"error.category_delete_failed":   "Failed to delete the category",
		"error.category_has_products":    "Category still has products",
		"error.slug_exists":              "Slug already taken",
		"error.product_fetch_failed":     "Failed to fetch products",
		"error.product_save_failed":      "Failed to save the product",
		"error.product_delete_failed":    "Failed to delete the product",
		"error.product_price_invalid":    "Invalid product price",
		"error.variant_code_exists":      "Variant code already exists",
		"error.order_fetch_failed":       "Failed to fetch orders",
		"error.order_cancel_failed":      "Failed to cancel the order",
		"error.order_update_failed":      "Failed to update the order",
		"error.promo_fetch_failed":       "Failed to fetch promo codes",
		"error.authz_operation_failed":   "Authorization operation failed",
		"error.role_invalid":             "Invalid role name",
	},
}
