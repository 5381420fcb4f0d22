package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/maplenest/internal/models"
	"github.com/maplenest/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newProductTestService(t *testing.T) (*ProductService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}, &models.ProductVariant{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	svc := NewProductService(repository.NewProductRepository(db), repository.NewProductVariantRepository(db))
	return svc, db
}

func productInput(slug string) ProductInput {
	return ProductInput{
		CategoryID:  1,
		Slug:        slug,
		TitleJSON:   map[string]interface{}{"zh-CN": "北欧布艺沙发", "en-US": "Nordic Fabric Sofa"},
		PriceAmount: decimal.NewFromInt(2999),
		Material:    "fabric",
		Dimensions:  "210x90x85cm",
	}
}

func TestProductCreateRejectsInvalidPrice(t *testing.T) {
	svc, _ := newProductTestService(t)

	input := productInput("nordic-sofa")
	input.PriceAmount = decimal.Zero
	if _, err := svc.Create(input); !errors.Is(err, ErrProductPriceInvalid) {
		t.Fatalf("expected ErrProductPriceInvalid, got: %v", err)
	}

	input.PriceAmount = decimal.NewFromInt(-10)
	if _, err := svc.Create(input); !errors.Is(err, ErrProductPriceInvalid) {
		t.Fatalf("expected ErrProductPriceInvalid for negative price, got: %v", err)
	}
}

func TestProductCreateDuplicateSlug(t *testing.T) {
	svc, _ := newProductTestService(t)

	if _, err := svc.Create(productInput("nordic-sofa")); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	input := productInput("  nordic-sofa  ")
	if _, err := svc.Create(input); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists, got: %v", err)
	}
}

func TestProductGetPublicBySlugOnlyActive(t *testing.T) {
	svc, _ := newProductTestService(t)

	inactive := false
	input := productInput("walnut-table")
	input.IsActive = &inactive
	if _, err := svc.Create(input); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.GetPublicBySlug("walnut-table"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound for inactive product, got: %v", err)
	}
	if _, err := svc.GetAdminByID(1); err != nil {
		t.Fatalf("admin should see inactive product: %v", err)
	}
}

func TestProductListPublicFiltersInactive(t *testing.T) {
	svc, _ := newProductTestService(t)

	if _, err := svc.Create(productInput("oak-bed")); err != nil {
		t.Fatalf("create active failed: %v", err)
	}
	inactive := false
	input := productInput("rattan-cabinet")
	input.IsActive = &inactive
	if _, err := svc.Create(input); err != nil {
		t.Fatalf("create inactive failed: %v", err)
	}

	items, total, err := svc.ListPublic(repository.ProductListFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list public failed: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Slug != "oak-bed" {
		t.Fatalf("expected only active product, got total=%d items=%+v", total, items)
	}

	_, adminTotal, err := svc.ListAdmin(repository.ProductListFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list admin failed: %v", err)
	}
	if adminTotal != 2 {
		t.Fatalf("expected admin list total 2, got %d", adminTotal)
	}
}

func TestProductUpdateStockBelowReserved(t *testing.T) {
	svc, db := newProductTestService(t)

	stock := 10
	input := productInput("oak-bed")
	input.StockTotal = &stock
	created, err := svc.Create(input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := db.Model(&models.Product{}).Where("id = ?", created.ID).
		UpdateColumn("stock_reserved", 4).Error; err != nil {
		t.Fatalf("seed reserved stock failed: %v", err)
	}

	lower := 3
	input.StockTotal = &lower
	if _, err := svc.Update(created.ID, input); !errors.Is(err, ErrStockInsufficient) {
		t.Fatalf("expected ErrStockInsufficient, got: %v", err)
	}

	enough := 6
	input.StockTotal = &enough
	updated, err := svc.Update(created.ID, input)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.StockTotal != 6 {
		t.Fatalf("expected stock total 6, got %d", updated.StockTotal)
	}
}

func TestProductVariantDuplicateCode(t *testing.T) {
	svc, _ := newProductTestService(t)

	created, err := svc.Create(productInput("nordic-sofa"))
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	variant := VariantInput{
		VariantCode: "gray-linen",
		NameJSON:    map[string]interface{}{"zh-CN": "灰色亚麻"},
		PriceAmount: decimal.NewFromInt(2999),
	}
	if _, err := svc.CreateVariant(created.ID, variant); err != nil {
		t.Fatalf("create variant failed: %v", err)
	}
	if _, err := svc.CreateVariant(created.ID, variant); !errors.Is(err, ErrVariantCodeExists) {
		t.Fatalf("expected ErrVariantCodeExists, got: %v", err)
	}
}

func TestProductVariantScopedToProduct(t *testing.T) {
	svc, _ := newProductTestService(t)

	first, err := svc.Create(productInput("nordic-sofa"))
	if err != nil {
		t.Fatalf("create first product failed: %v", err)
	}
	second, err := svc.Create(productInput("walnut-table"))
	if err != nil {
		t.Fatalf("create second product failed: %v", err)
	}

	variant, err := svc.CreateVariant(first.ID, VariantInput{
		VariantCode: "green-velvet",
		PriceAmount: decimal.NewFromInt(3299),
	})
	if err != nil {
		t.Fatalf("create variant failed: %v", err)
	}

	// 规格归属校验，跨商品访问按不存在处理
	if _, err := svc.UpdateVariant(second.ID, variant.ID, VariantInput{
		VariantCode: "green-velvet",
		PriceAmount: decimal.NewFromInt(3299),
	}); !errors.Is(err, ErrVariantNotFound) {
		t.Fatalf("expected ErrVariantNotFound, got: %v", err)
	}
	if err := svc.DeleteVariant(second.ID, variant.ID); !errors.Is(err, ErrVariantNotFound) {
		t.Fatalf("expected ErrVariantNotFound on delete, got: %v", err)
	}

	if err := svc.DeleteVariant(first.ID, variant.ID); err != nil {
		t.Fatalf("delete variant failed: %v", err)
	}
	variants, err := svc.ListVariants(first.ID)
	if err != nil {
		t.Fatalf("list variants failed: %v", err)
	}
	if len(variants) != 0 {
		t.Fatalf("expected no variants after delete, got %d", len(variants))
	}
}
