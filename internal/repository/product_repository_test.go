package repository

import (
	"fmt"
	"testing"

	"github.com/maplenest/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupProductRepositoryTest(t *testing.T) (*GormProductRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.ProductVariant{}); err != nil {
		t.Fatalf("migrate product/variant failed: %v", err)
	}
	return NewProductRepository(db), db
}

func createStockedProduct(t *testing.T, repo *GormProductRepository, slug string, total int) *models.Product {
	t.Helper()
	product := &models.Product{
		CategoryID:  1,
		Slug:        slug,
		TitleJSON:   models.JSON{"zh-CN": "测试家具"},
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		StockTotal:  total,
		IsActive:    true,
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestStockReserveReleaseConsumeLifecycle(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)
	product := createStockedProduct(t, repo, "stock-lifecycle", 10)

	affected, err := repo.ReserveStock(product.ID, 3)
	if err != nil {
		t.Fatalf("reserve stock failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("reserve affected want 1 got %d", affected)
	}

	affected, err = repo.ReleaseStock(product.ID, 1)
	if err != nil {
		t.Fatalf("release stock failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("release affected want 1 got %d", affected)
	}

	affected, err = repo.ConsumeStock(product.ID, 2)
	if err != nil {
		t.Fatalf("consume stock failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("consume affected want 1 got %d", affected)
	}

	got, err := repo.GetByID(product.ID)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if got.StockTotal != 8 {
		t.Fatalf("stock total want 8 got %d", got.StockTotal)
	}
	if got.StockReserved != 0 {
		t.Fatalf("stock reserved want 0 got %d", got.StockReserved)
	}
	if got.StockAvailable() != 8 {
		t.Fatalf("stock available want 8 got %d", got.StockAvailable())
	}
}

func TestStockReserveRejectsOverdraft(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)
	product := createStockedProduct(t, repo, "stock-overdraft", 2)

	if _, err := repo.ReserveStock(product.ID, 2); err != nil {
		t.Fatalf("reserve stock failed: %v", err)
	}

	affected, err := repo.ReserveStock(product.ID, 1)
	if err != nil {
		t.Fatalf("reserve over limit failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected no rows affected when stock exhausted, got %d", affected)
	}
}

func TestStockReserveUnlimitedWhenTotalZero(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)
	product := createStockedProduct(t, repo, "stock-unlimited", 0)

	affected, err := repo.ReserveStock(product.ID, 500)
	if err != nil {
		t.Fatalf("reserve stock failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("unlimited stock should always reserve, affected=%d", affected)
	}

	got, err := repo.GetByID(product.ID)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if got.StockAvailable() != -1 {
		t.Fatalf("unlimited stock available want -1 got %d", got.StockAvailable())
	}
}

func TestStockOpsRejectInvalidParams(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)

	if _, err := repo.ReserveStock(0, 1); err == nil {
		t.Fatalf("expected error for zero product id")
	}
	if _, err := repo.ReleaseStock(1, 0); err == nil {
		t.Fatalf("expected error for zero quantity")
	}
	if _, err := repo.ConsumeStock(1, -1); err == nil {
		t.Fatalf("expected error for negative quantity")
	}
}

func TestCountBySlugExcludesID(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)
	product := createStockedProduct(t, repo, "oak-shelf", 5)

	count, err := repo.CountBySlug("oak-shelf", nil)
	if err != nil {
		t.Fatalf("count by slug failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("count want 1 got %d", count)
	}

	count, err = repo.CountBySlug("oak-shelf", &product.ID)
	if err != nil {
		t.Fatalf("count by slug with exclude failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("count with exclude want 0 got %d", count)
	}
}
