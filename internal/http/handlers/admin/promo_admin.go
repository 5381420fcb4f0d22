package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/maplenest/internal/http/response"
	"github.com/maplenest/internal/models"
	"github.com/maplenest/internal/repository"
	"github.com/maplenest/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PromoCodeRequest 创建/更新优惠码请求
type PromoCodeRequest struct {
	Code              string  `json:"code" binding:"required"`
	DiscountType      string  `json:"discount_type" binding:"required"`
	DiscountValue     float64 `json:"discount_value" binding:"required"`
	MinOrderAmount    float64 `json:"min_order_amount"`
	MaxDiscountAmount float64 `json:"max_discount_amount"`
	UsageLimit        int     `json:"usage_limit"`
	UsageLimitPerUser int     `json:"usage_limit_per_user"`
	StartsAt          string  `json:"starts_at"`
	EndsAt            string  `json:"ends_at"`
	IsActive          *bool   `json:"is_active"`
	ProductIDs        []uint  `json:"product_ids"`
	UserIDs           []uint  `json:"user_ids"`
}

func (r PromoCodeRequest) toInput() (service.PromoCodeInput, error) {
	startsAt, err := parseTimeNullable(r.StartsAt)
	if err != nil {
		return service.PromoCodeInput{}, err
	}
	endsAt, err := parseTimeNullable(r.EndsAt)
	if err != nil {
		return service.PromoCodeInput{}, err
	}

	isActive := true
	if r.IsActive != nil {
		isActive = *r.IsActive
	}

	return service.PromoCodeInput{
		Code:              r.Code,
		DiscountType:      r.DiscountType,
		DiscountValue:     models.NewMoneyFromDecimal(decimal.NewFromFloat(r.DiscountValue)),
		MinOrderAmount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(r.MinOrderAmount)),
		MaxDiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(r.MaxDiscountAmount)),
		UsageLimit:        r.UsageLimit,
		UsageLimitPerUser: r.UsageLimitPerUser,
		StartsAt:          startsAt,
		EndsAt:            endsAt,
		IsActive:          isActive,
		ProductIDs:        r.ProductIDs,
		UserIDs:           r.UserIDs,
	}, nil
}

// GetAdminPromoCodes 获取优惠码列表 (Admin)
func (h *Handler) GetAdminPromoCodes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	code := strings.TrimSpace(c.Query("code"))
	var isActive *bool
	if raw := c.Query("is_active"); raw != "" {
		value := raw == "true"
		isActive = &value
	}

	promos, total, err := h.PromoAdminService.List(repository.PromoCodeListFilter{
		Code:     code,
		IsActive: isActive,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.promo_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, promos, pagination)
}

// GetAdminPromoCode 获取优惠码详情 (Admin)
func (h *Handler) GetAdminPromoCode(c *gin.Context) {
	promoID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promoID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	promo, err := h.PromoAdminService.Get(uint(promoID))
	if err != nil {
		if errors.Is(err, service.ErrPromoNotFound) {
			respondError(c, response.CodeNotFound, "error.promo_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.promo_fetch_failed", err)
		return
	}

	response.Success(c, promo)
}

// CreatePromoCode 创建优惠码
func (h *Handler) CreatePromoCode(c *gin.Context) {
	var req PromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	promo, err := h.PromoAdminService.Create(input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPromoInvalid):
			respondError(c, response.CodeBadRequest, "error.promo_invalid", nil)
		case errors.Is(err, service.ErrPromoCodeExists):
			respondError(c, response.CodeBadRequest, "error.promo_code_exists", nil)
		default:
			respondError(c, response.CodeInternal, "error.promo_create_failed", err)
		}
		return
	}

	response.Success(c, promo)
}

// UpdatePromoCode 更新优惠码
func (h *Handler) UpdatePromoCode(c *gin.Context) {
	promoID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promoID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	var req PromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	promo, err := h.PromoAdminService.Update(uint(promoID), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPromoNotFound):
			respondError(c, response.CodeNotFound, "error.promo_not_found", nil)
		case errors.Is(err, service.ErrPromoInvalid):
			respondError(c, response.CodeBadRequest, "error.promo_invalid", nil)
		case errors.Is(err, service.ErrPromoCodeExists):
			respondError(c, response.CodeBadRequest, "error.promo_code_exists", nil)
		default:
			respondError(c, response.CodeInternal, "error.promo_update_failed", err)
		}
		return
	}

	response.Success(c, promo)
}

// DeletePromoCode 删除优惠码。已有核销记录的只允许停用。
func (h *Handler) DeletePromoCode(c *gin.Context) {
	promoID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promoID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.PromoAdminService.Delete(uint(promoID)); err != nil {
		switch {
		case errors.Is(err, service.ErrPromoNotFound):
			respondError(c, response.CodeNotFound, "error.promo_not_found", nil)
		case errors.Is(err, service.ErrPromoRedeemed):
			respondError(c, response.CodeBadRequest, "error.promo_redeemed_locked", nil)
		default:
			respondError(c, response.CodeInternal, "error.promo_delete_failed", err)
		}
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

// DisablePromoCode 停用优惠码
func (h *Handler) DisablePromoCode(c *gin.Context) {
	promoID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promoID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.PromoAdminService.Disable(uint(promoID)); err != nil {
		if errors.Is(err, service.ErrPromoNotFound) {
			respondError(c, response.CodeNotFound, "error.promo_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.promo_update_failed", err)
		return
	}

	response.Success(c, gin.H{"disabled": true})
}

// GetAdminPromoUsages 获取优惠码核销记录 (Admin)
func (h *Handler) GetAdminPromoUsages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	promoCodeID, _ := strconv.ParseUint(c.Query("promo_code_id"), 10, 64)
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	orderID, _ := strconv.ParseUint(c.Query("order_id"), 10, 64)

	usages, total, err := h.PromoAdminService.ListUsages(repository.PromoCodeUsageListFilter{
		Page:        page,
		PageSize:    pageSize,
		PromoCodeID: uint(promoCodeID),
		UserID:      uint(userID),
		OrderID:     uint(orderID),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.promo_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, usages, pagination)
}
