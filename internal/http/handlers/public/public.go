package public

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/maplenest/internal/cache"
	"github.com/maplenest/internal/http/response"
	"github.com/maplenest/internal/models"
	"github.com/maplenest/internal/repository"
	"github.com/maplenest/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	publicCategoryCacheKey    = "public:categories"
	publicCategoryCacheTTL    = 60 * time.Second
	publicProductCacheKeyPref = "public:product:"
	publicProductCacheTTL     = 60 * time.Second
)

// GetCategories 获取分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	var cached []models.Category
	if hit, err := cache.GetJSON(c.Request.Context(), publicCategoryCacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	categories, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.category_fetch_failed", err)
		return
	}

	_ = cache.SetJSON(c.Request.Context(), publicCategoryCacheKey, categories, publicCategoryCacheTTL)
	response.Success(c, categories)
}

// GetProducts 获取商品列表
func (h *Handler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	categoryID, _ := strconv.ParseUint(c.Query("category_id"), 10, 64)
	search := strings.TrimSpace(c.Query("search"))
	material := strings.TrimSpace(c.Query("material"))
	inStock := c.Query("in_stock") == "true"

	products, total, err := h.ProductService.ListPublic(repository.ProductListFilter{
		Page:        page,
		PageSize:    pageSize,
		CategoryID:  uint(categoryID),
		Search:      search,
		Material:    material,
		OnlyInStock: inStock,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, products, pagination)
}

// GetProductBySlug 根据 slug 获取商品详情
func (h *Handler) GetProductBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	cacheKey := publicProductCacheKeyPref + slug

	var cached models.Product
	if hit, err := cache.GetJSON(c.Request.Context(), cacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	product, err := h.ProductService.GetPublicBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, response.CodeNotFound, "error.product_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}

	_ = cache.SetJSON(c.Request.Context(), cacheKey, product, publicProductCacheTTL)
	response.Success(c, product)
}

// ValidatePromoCodeRequest 优惠码试算请求
type ValidatePromoCodeRequest struct {
	Code  string             `json:"code" binding:"required"`
	Items []OrderItemRequest `json:"items" binding:"required"`
}

// ValidatePromoCode 校验优惠码并试算折扣（只读，不产生核销）
func (h *Handler) ValidatePromoCode(c *gin.Context) {
	var req ValidatePromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	// 未登录上下文按游客校验，登录用户走订单预览接口。
	var uid uint
	if value, ok := c.Get("user_id"); ok {
		if id, ok := value.(uint); ok {
			uid = id
		}
	}

	preview, err := h.OrderService.Preview(uid, buildCreateOrderItems(req.Items), req.Code)
	if err != nil {
		respondPromoValidateError(c, err)
		return
	}

	response.Success(c, preview)
}
