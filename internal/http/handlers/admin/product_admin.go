package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/maplenest/internal/http/response"
	"github.com/maplenest/internal/repository"
	"github.com/maplenest/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ProductRequest 创建/更新商品请求
type ProductRequest struct {
	CategoryID  uint                   `json:"category_id" binding:"required"`
	Slug        string                 `json:"slug" binding:"required"`
	Title       map[string]interface{} `json:"title" binding:"required"`
	Description map[string]interface{} `json:"description"`
	PriceAmount float64                `json:"price_amount" binding:"required"`
	Images      []string               `json:"images"`
	Material    string                 `json:"material"`
	Dimensions  string                 `json:"dimensions"`
	StockTotal  *int                   `json:"stock_total"`
	IsActive    *bool                  `json:"is_active"`
	SortOrder   int                    `json:"sort_order"`
}

// VariantRequest 创建/更新商品规格请求
type VariantRequest struct {
	VariantCode string                 `json:"variant_code" binding:"required"`
	Name        map[string]interface{} `json:"name" binding:"required"`
	PriceAmount float64                `json:"price_amount" binding:"required"`
	StockTotal  *int                   `json:"stock_total"`
	IsActive    *bool                  `json:"is_active"`
	SortOrder   int                    `json:"sort_order"`
}

func (r ProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		CategoryID:      r.CategoryID,
		Slug:            r.Slug,
		TitleJSON:       r.Title,
		DescriptionJSON: r.Description,
		PriceAmount:     decimal.NewFromFloat(r.PriceAmount),
		Images:          r.Images,
		Material:        r.Material,
		Dimensions:      r.Dimensions,
		StockTotal:      r.StockTotal,
		IsActive:        r.IsActive,
		SortOrder:       r.SortOrder,
	}
}

func (r VariantRequest) toInput() service.VariantInput {
	return service.VariantInput{
		VariantCode: r.VariantCode,
		NameJSON:    r.Name,
		PriceAmount: decimal.NewFromFloat(r.PriceAmount),
		StockTotal:  r.StockTotal,
		IsActive:    r.IsActive,
		SortOrder:   r.SortOrder,
	}
}

func respondProductSaveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		respondError(c, response.CodeNotFound, "error.product_not_found", nil)
	case errors.Is(err, service.ErrCategoryNotFound):
		respondError(c, response.CodeBadRequest, "error.category_not_found", nil)
	case errors.Is(err, service.ErrSlugExists):
		respondError(c, response.CodeBadRequest, "error.slug_exists", nil)
	case errors.Is(err, service.ErrProductPriceInvalid):
		respondError(c, response.CodeBadRequest, "error.product_price_invalid", nil)
	case errors.Is(err, service.ErrStockInsufficient):
		respondError(c, response.CodeBadRequest, "error.stock_insufficient", nil)
	default:
		respondError(c, response.CodeInternal, "error.product_save_failed", err)
	}
}

// GetAdminProducts 获取商品列表 (Admin)
func (h *Handler) GetAdminProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	categoryID, _ := strconv.ParseUint(c.Query("category_id"), 10, 64)
	search := strings.TrimSpace(c.Query("search"))
	material := strings.TrimSpace(c.Query("material"))

	products, total, err := h.ProductService.ListAdmin(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: uint(categoryID),
		Search:     search,
		Material:   material,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, products, pagination)
}

// GetAdminProduct 获取商品详情 (Admin)
func (h *Handler) GetAdminProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	product, err := h.ProductService.GetAdminByID(uint(productID))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, response.CodeNotFound, "error.product_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}

	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	product, err := h.ProductService.Create(req.toInput())
	if err != nil {
		respondProductSaveError(c, err)
		return
	}

	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	product, err := h.ProductService.Update(uint(productID), req.toInput())
	if err != nil {
		respondProductSaveError(c, err)
		return
	}

	response.Success(c, product)
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.ProductService.Delete(uint(productID)); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, response.CodeNotFound, "error.product_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.product_delete_failed", err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

// GetAdminVariants 获取商品规格列表 (Admin)
func (h *Handler) GetAdminVariants(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	variants, err := h.ProductService.ListVariants(uint(productID))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, response.CodeNotFound, "error.product_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}

	response.Success(c, variants)
}

// CreateVariant 创建商品规格
func (h *Handler) CreateVariant(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	var req VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	variant, err := h.ProductService.CreateVariant(uint(productID), req.toInput())
	if err != nil {
		respondVariantSaveError(c, err)
		return
	}

	response.Success(c, variant)
}

// UpdateVariant 更新商品规格
func (h *Handler) UpdateVariant(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	variantID, err := strconv.ParseUint(c.Param("variant_id"), 10, 64)
	if err != nil || variantID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	var req VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	variant, err := h.ProductService.UpdateVariant(uint(productID), uint(variantID), req.toInput())
	if err != nil {
		respondVariantSaveError(c, err)
		return
	}

	response.Success(c, variant)
}

// DeleteVariant 删除商品规格
func (h *Handler) DeleteVariant(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	variantID, err := strconv.ParseUint(c.Param("variant_id"), 10, 64)
	if err != nil || variantID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.ProductService.DeleteVariant(uint(productID), uint(variantID)); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, response.CodeNotFound, "error.product_not_found", nil)
		case errors.Is(err, service.ErrVariantNotFound):
			respondError(c, response.CodeNotFound, "error.variant_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.product_delete_failed", err)
		}
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

func respondVariantSaveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		respondError(c, response.CodeNotFound, "error.product_not_found", nil)
	case errors.Is(err, service.ErrVariantNotFound):
		respondError(c, response.CodeNotFound, "error.variant_not_found", nil)
	case errors.Is(err, service.ErrVariantCodeExists):
		respondError(c, response.CodeBadRequest, "error.variant_code_exists", nil)
	case errors.Is(err, service.ErrProductPriceInvalid):
		respondError(c, response.CodeBadRequest, "error.product_price_invalid", nil)
	case errors.Is(err, service.ErrStockInsufficient):
		respondError(c, response.CodeBadRequest, "error.stock_insufficient", nil)
	default:
		respondError(c, response.CodeInternal, "error.product_save_failed", err)
	}
}
