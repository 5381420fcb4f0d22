package service

import (
	"strings"

	"github.com/maplenest/internal/models"
	"github.com/maplenest/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService 商品业务服务
type ProductService struct {
	repo        repository.ProductRepository
	variantRepo repository.ProductVariantRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, variantRepo repository.ProductVariantRepository) *ProductService {
	return &ProductService{repo: repo, variantRepo: variantRepo}
}

// ProductInput 创建/更新商品输入
type ProductInput struct {
	CategoryID      uint
	Slug            string
	TitleJSON       map[string]interface{}
	DescriptionJSON map[string]interface{}
	PriceAmount     decimal.Decimal
	Images          []string
	Material        string
	Dimensions      string
	StockTotal      *int
	IsActive        *bool
	SortOrder       int
}

// VariantInput 创建/更新商品规格输入
type VariantInput struct {
	VariantCode string
	NameJSON    map[string]interface{}
	PriceAmount decimal.Decimal
	StockTotal  *int
	IsActive    *bool
	SortOrder   int
}

// ListPublic 获取公开商品列表
func (s *ProductService) ListPublic(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.OnlyActive = true
	filter.WithCategory = true
	return s.repo.List(filter)
}

// GetPublicBySlug 获取公开商品详情
func (s *ProductService) GetPublicBySlug(slug string) (*models.Product, error) {
	product, err := s.repo.GetBySlug(slug, true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// ListAdmin 获取后台商品列表
func (s *ProductService) ListAdmin(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.OnlyActive = false
	filter.WithCategory = true
	return s.repo.List(filter)
}

// GetAdminByID 获取后台商品详情
func (s *ProductService) GetAdminByID(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(input ProductInput) (*models.Product, error) {
	priceAmount := input.PriceAmount.Round(2)
	if priceAmount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrProductPriceInvalid
	}
	slug := strings.TrimSpace(input.Slug)
	count, err := s.repo.CountBySlug(slug, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	stockTotal := 0
	if input.StockTotal != nil {
		stockTotal = *input.StockTotal
	}
	if stockTotal < 0 {
		return nil, ErrStockInsufficient
	}

	product := models.Product{
		CategoryID:      input.CategoryID,
		Slug:            slug,
		TitleJSON:       models.JSON(input.TitleJSON),
		DescriptionJSON: models.JSON(input.DescriptionJSON),
		PriceAmount:     models.NewMoneyFromDecimal(priceAmount),
		Images:          models.StringArray(input.Images),
		Material:        strings.TrimSpace(input.Material),
		Dimensions:      strings.TrimSpace(input.Dimensions),
		StockTotal:      stockTotal,
		IsActive:        isActive,
		SortOrder:       input.SortOrder,
	}
	if err := s.repo.Create(&product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Update 更新商品
func (s *ProductService) Update(id uint, input ProductInput) (*models.Product, error) {
	priceAmount := input.PriceAmount.Round(2)
	if priceAmount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrProductPriceInvalid
	}
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	slug := strings.TrimSpace(input.Slug)
	count, err := s.repo.CountBySlug(slug, &id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	product.CategoryID = input.CategoryID
	product.Slug = slug
	product.TitleJSON = models.JSON(input.TitleJSON)
	product.DescriptionJSON = models.JSON(input.DescriptionJSON)
	product.PriceAmount = models.NewMoneyFromDecimal(priceAmount)
	product.Images = models.StringArray(input.Images)
	product.Material = strings.TrimSpace(input.Material)
	product.Dimensions = strings.TrimSpace(input.Dimensions)
	product.SortOrder = input.SortOrder
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.StockTotal != nil {
		stockTotal := *input.StockTotal
		// 下调库存不得低于已占用数量
		if stockTotal < 0 || (stockTotal > 0 && stockTotal < product.StockReserved) {
			return nil, ErrStockInsufficient
		}
		product.StockTotal = stockTotal
	}

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete 删除商品
func (s *ProductService) Delete(id uint) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	return s.repo.Delete(id)
}

// ListVariants 获取商品规格列表
func (s *ProductService) ListVariants(productID uint) ([]models.ProductVariant, error) {
	product, err := s.repo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return s.variantRepo.ListByProductID(productID, false)
}

// CreateVariant 创建商品规格
func (s *ProductService) CreateVariant(productID uint, input VariantInput) (*models.ProductVariant, error) {
	product, err := s.repo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	code := strings.TrimSpace(input.VariantCode)
	priceAmount := input.PriceAmount.Round(2)
	if code == "" {
		return nil, ErrVariantCodeExists
	}
	if priceAmount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrProductPriceInvalid
	}
	count, err := s.variantRepo.CountByCode(productID, code, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrVariantCodeExists
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	stockTotal := 0
	if input.StockTotal != nil {
		stockTotal = *input.StockTotal
	}
	if stockTotal < 0 {
		return nil, ErrStockInsufficient
	}

	variant := models.ProductVariant{
		ProductID:   productID,
		VariantCode: code,
		NameJSON:    models.JSON(input.NameJSON),
		PriceAmount: models.NewMoneyFromDecimal(priceAmount),
		StockTotal:  stockTotal,
		IsActive:    isActive,
		SortOrder:   input.SortOrder,
	}
	if err := s.variantRepo.Create(&variant); err != nil {
		return nil, err
	}
	return &variant, nil
}

// UpdateVariant 更新商品规格
func (s *ProductService) UpdateVariant(productID, variantID uint, input VariantInput) (*models.ProductVariant, error) {
	variant, err := s.variantRepo.GetByID(variantID)
	if err != nil {
		return nil, err
	}
	if variant == nil || variant.ProductID != productID {
		return nil, ErrVariantNotFound
	}

	code := strings.TrimSpace(input.VariantCode)
	priceAmount := input.PriceAmount.Round(2)
	if code == "" {
		return nil, ErrVariantCodeExists
	}
	if priceAmount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrProductPriceInvalid
	}
	count, err := s.variantRepo.CountByCode(productID, code, &variantID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrVariantCodeExists
	}

	variant.VariantCode = code
	variant.NameJSON = models.JSON(input.NameJSON)
	variant.PriceAmount = models.NewMoneyFromDecimal(priceAmount)
	variant.SortOrder = input.SortOrder
	if input.IsActive != nil {
		variant.IsActive = *input.IsActive
	}
	if input.StockTotal != nil {
		stockTotal := *input.StockTotal
		if stockTotal < 0 || (stockTotal > 0 && stockTotal < variant.StockReserved) {
			return nil, ErrStockInsufficient
		}
		variant.StockTotal = stockTotal
	}

	if err := s.variantRepo.Update(variant); err != nil {
		return nil, err
	}
	return variant, nil
}

// DeleteVariant 删除商品规格
func (s *ProductService) DeleteVariant(productID, variantID uint) error {
	variant, err := s.variantRepo.GetByID(variantID)
	if err != nil {
		return err
	}
	if variant == nil || variant.ProductID != productID {
		return ErrVariantNotFound
	}
	return s.variantRepo.Delete(variantID)
}
