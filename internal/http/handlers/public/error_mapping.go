package public

import (
	"errors"

	"github.com/maplenest/internal/http/response"
	"github.com/maplenest/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var promoErrorRules = []mappedHandlerError{
	{target: service.ErrPromoNotFound, code: response.CodeBadRequest, key: "error.promo_not_found"},
	{target: service.ErrPromoInactive, code: response.CodeBadRequest, key: "error.promo_inactive"},
	{target: service.ErrPromoNotStarted, code: response.CodeBadRequest, key: "error.promo_not_started"},
	{target: service.ErrPromoExpired, code: response.CodeBadRequest, key: "error.promo_expired"},
	{target: service.ErrPromoNotEligibleUser, code: response.CodeBadRequest, key: "error.promo_not_eligible_user"},
	{target: service.ErrPromoGlobalLimit, code: response.CodeBadRequest, key: "error.promo_global_limit"},
	{target: service.ErrPromoUserLimit, code: response.CodeBadRequest, key: "error.promo_user_limit"},
	{target: service.ErrPromoBelowMinimum, code: response.CodeBadRequest, key: "error.promo_below_minimum"},
	{target: service.ErrPromoNoEligibleProducts, code: response.CodeBadRequest, key: "error.promo_no_eligible_products"},
	{target: service.ErrPromoInvalid, code: response.CodeBadRequest, key: "error.promo_invalid"},
}

var orderItemErrorRules = []mappedHandlerError{
	{target: service.ErrOrderItemsInvalid, code: response.CodeBadRequest, key: "error.invalid_order_item"},
	{target: service.ErrProductNotFound, code: response.CodeBadRequest, key: "error.product_not_found"},
	{target: service.ErrProductInactive, code: response.CodeBadRequest, key: "error.product_not_available"},
	{target: service.ErrVariantNotFound, code: response.CodeBadRequest, key: "error.variant_not_found"},
	{target: service.ErrProductPriceInvalid, code: response.CodeBadRequest, key: "error.product_price_invalid"},
	{target: service.ErrStockInsufficient, code: response.CodeBadRequest, key: "error.stock_insufficient"},
}

var guestOrderExtraErrorRules = []mappedHandlerError{
	{target: service.ErrGuestEmailRequired, code: response.CodeBadRequest, key: "error.guest_email_required"},
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.email_invalid"},
}

func respondOrderPreviewError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(orderItemErrorRules, promoErrorRules), response.CodeInternal, "error.order_create_failed")
}

func respondUserOrderCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(orderItemErrorRules, promoErrorRules), response.CodeInternal, "error.order_create_failed")
}

func respondGuestOrderCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(guestOrderExtraErrorRules, orderItemErrorRules, promoErrorRules), response.CodeInternal, "error.order_create_failed")
}

func respondPromoValidateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(orderItemErrorRules, promoErrorRules), response.CodeInternal, "error.promo_fetch_failed")
}
