package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/maplenest/internal/http/response"
	"github.com/maplenest/internal/i18n"
	"github.com/maplenest/internal/repository"
	"github.com/maplenest/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderItemRequest 订单项请求
type OrderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	VariantID uint `json:"variant_id"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	Items         []OrderItemRequest `json:"items" binding:"required"`
	PromoCode     string             `json:"promo_code"`
	ShippingName  string             `json:"shipping_name"`
	ShippingPhone string             `json:"shipping_phone"`
	ShippingAddr  string             `json:"shipping_addr"`
}

// CreateGuestOrderRequest 游客创建订单请求
type CreateGuestOrderRequest struct {
	Email         string             `json:"email" binding:"required"`
	Items         []OrderItemRequest `json:"items" binding:"required"`
	PromoCode     string             `json:"promo_code"`
	ShippingName  string             `json:"shipping_name"`
	ShippingPhone string             `json:"shipping_phone"`
	ShippingAddr  string             `json:"shipping_addr"`
}

func buildCreateOrderItems(items []OrderItemRequest) []service.CreateOrderItem {
	result := make([]service.CreateOrderItem, 0, len(items))
	for _, item := range items {
		result = append(result, service.CreateOrderItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}
	return result
}

// PreviewOrder 订单金额预览
func (h *Handler) PreviewOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	preview, err := h.OrderService.Preview(uid, buildCreateOrderItems(req.Items), req.PromoCode)
	if err != nil {
		respondOrderPreviewError(c, err)
		return
	}

	response.Success(c, preview)
}

// CreateOrder 创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		UserID:        uid,
		Items:         buildCreateOrderItems(req.Items),
		PromoCode:     req.PromoCode,
		ShippingName:  req.ShippingName,
		ShippingPhone: req.ShippingPhone,
		ShippingAddr:  req.ShippingAddr,
		ClientIP:      c.ClientIP(),
	})
	if err != nil {
		respondUserOrderCreateError(c, err)
		return
	}

	response.Success(c, order)
}

// CreateGuestOrder 游客创建订单
func (h *Handler) CreateGuestOrder(c *gin.Context) {
	var req CreateGuestOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	order, err := h.OrderService.CreateGuestOrder(service.CreateGuestOrderInput{
		Email:         req.Email,
		Locale:        i18n.ResolveLocale(c),
		Items:         buildCreateOrderItems(req.Items),
		PromoCode:     req.PromoCode,
		ShippingName:  req.ShippingName,
		ShippingPhone: req.ShippingPhone,
		ShippingAddr:  req.ShippingAddr,
		ClientIP:      c.ClientIP(),
	})
	if err != nil {
		respondGuestOrderCreateError(c, err)
		return
	}

	response.Success(c, order)
}

// GetGuestOrder 游客按订单号查询订单，需同时提供下单邮箱
func (h *Handler) GetGuestOrder(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Param("order_no"))
	email := strings.TrimSpace(c.Query("email"))
	if orderNo == "" || email == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	order, err := h.OrderService.GetGuestOrder(orderNo, email)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
			return
		}
		if errors.Is(err, service.ErrInvalidEmail) {
			respondError(c, response.CodeBadRequest, "error.email_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}

	response.Success(c, order)
}

// ListOrders 获取当前用户订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	status := strings.TrimSpace(c.Query("status"))
	orderNo := strings.TrimSpace(c.Query("order_no"))

	orders, total, err := h.OrderService.ListUserOrders(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
		Status:   status,
		OrderNo:  orderNo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, orders, pagination)
}

// GetOrder 获取当前用户订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	order, err := h.OrderService.GetUserOrder(uint(orderID), uid)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}

	response.Success(c, order)
}

// CancelOrder 取消当前用户的待支付订单
func (h *Handler) CancelOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	order, err := h.OrderService.CancelUserOrder(uint(orderID), uid)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
		case errors.Is(err, service.ErrOrderStatusInvalid):
			respondError(c, response.CodeBadRequest, "error.order_status_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.order_cancel_failed", err)
		}
		return
	}

	response.Success(c, order)
}
