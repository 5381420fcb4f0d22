package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/maplenest/internal/constants"
	"github.com/maplenest/internal/models"
	"github.com/maplenest/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newOrderTestService(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.ProductVariant{},
		&models.Order{},
		&models.OrderItem{},
		&models.PromoCode{},
		&models.PromoCodeProduct{},
		&models.PromoCodeUser{},
		&models.PromoCodeUsage{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	// 订单事务走包级 DB 句柄
	prevDB := models.DB
	models.DB = db
	t.Cleanup(func() { models.DB = prevDB })

	promoRepo := repository.NewPromoCodeRepository(db)
	usageRepo := repository.NewPromoCodeUsageRepository(db)
	promoService := NewPromoService(promoRepo, usageRepo, false)

	svc := NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
		repository.NewProductVariantRepository(db),
		promoService,
		nil,
		30,
	)
	return svc, db
}

func mustCreateProduct(t *testing.T, db *gorm.DB, slug string, price float64, stockTotal int) *models.Product {
	t.Helper()
	product := &models.Product{
		CategoryID:  1,
		Slug:        slug,
		TitleJSON:   models.JSON{"en-US": slug},
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(price)),
		StockTotal:  stockTotal,
		IsActive:    true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestPreviewComputesTotals(t *testing.T) {
	svc, db := newOrderTestService(t)
	product := mustCreateProduct(t, db, "oak-table", 1000, 10)
	if err := db.Create(&models.PromoCode{
		Code:          "TEN",
		DiscountType:  "percentage",
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		IsActive:      true,
	}).Error; err != nil {
		t.Fatalf("create promo failed: %v", err)
	}

	preview, err := svc.Preview(0, []CreateOrderItem{{ProductID: product.ID, Quantity: 2}}, "ten")
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if !preview.OriginalAmount.Decimal.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("expected original 2000, got %s", preview.OriginalAmount.Decimal.String())
	}
	if !preview.DiscountAmount.Decimal.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected discount 200, got %s", preview.DiscountAmount.Decimal.String())
	}
	if !preview.TotalAmount.Decimal.Equal(decimal.NewFromInt(1800)) {
		t.Fatalf("expected total 1800, got %s", preview.TotalAmount.Decimal.String())
	}
	if preview.PromoCode != "TEN" {
		t.Fatalf("expected applied code TEN, got %s", preview.PromoCode)
	}
	if len(preview.Items) != 1 || preview.Items[0].Quantity != 2 {
		t.Fatalf("unexpected preview items: %+v", preview.Items)
	}

	// 预览不产生核销
	var usageCount int64
	if err := db.Model(&models.PromoCodeUsage{}).Count(&usageCount).Error; err != nil {
		t.Fatalf("count usages failed: %v", err)
	}
	if usageCount != 0 {
		t.Fatalf("expected no usage records after preview, got %d", usageCount)
	}
}

func TestCreateOrderReservesStock(t *testing.T) {
	svc, db := newOrderTestService(t)
	product := mustCreateProduct(t, db, "fabric-sofa", 2999, 5)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID: 1,
		Items:  []CreateOrderItem{{ProductID: product.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.Status != constants.OrderStatusPendingPayment {
		t.Fatalf("expected pending_payment, got %s", order.Status)
	}
	if order.OrderNo == "" || order.ExpiresAt == nil {
		t.Fatalf("expected order no and expiry set, got %+v", order)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if reloaded.StockReserved != 2 {
		t.Fatalf("expected stock_reserved 2, got %d", reloaded.StockReserved)
	}
}

func TestCreateOrderStockInsufficient(t *testing.T) {
	svc, db := newOrderTestService(t)
	product := mustCreateProduct(t, db, "walnut-desk", 4580, 1)

	_, err := svc.CreateOrder(CreateOrderInput{
		UserID: 1,
		Items:  []CreateOrderItem{{ProductID: product.ID, Quantity: 2}},
	})
	if !errors.Is(err, ErrStockInsufficient) {
		t.Fatalf("expected ErrStockInsufficient, got: %v", err)
	}

	// 事务回滚后不留下订单
	var orderCount int64
	if err := db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if orderCount != 0 {
		t.Fatalf("expected no order rows, got %d", orderCount)
	}
}

func TestCreateOrderUnlimitedStock(t *testing.T) {
	svc, db := newOrderTestService(t)
	product := mustCreateProduct(t, db, "rattan-cabinet", 1280, 0)

	if _, err := svc.CreateOrder(CreateOrderInput{
		UserID: 1,
		Items:  []CreateOrderItem{{ProductID: product.ID, Quantity: 100}},
	}); err != nil {
		t.Fatalf("expected unlimited stock order to succeed, got: %v", err)
	}
}

func TestCreateOrderRedeemsPromo(t *testing.T) {
	svc, db := newOrderTestService(t)
	product := mustCreateProduct(t, db, "oak-bed", 3680, 10)
	promo := &models.PromoCode{
		Code:              "ONCE20",
		DiscountType:      "fixed",
		DiscountValue:     models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		UsageLimitPerUser: 1,
		IsActive:          true,
	}
	if err := db.Create(promo).Error; err != nil {
		t.Fatalf("create promo failed: %v", err)
	}

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:    1,
		Items:     []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		PromoCode: "ONCE20",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.PromoCodeID == nil || *order.PromoCodeID != promo.ID {
		t.Fatalf("expected promo code id recorded, got %+v", order.PromoCodeID)
	}
	if !order.TotalAmount.Decimal.Equal(decimal.NewFromInt(3660)) {
		t.Fatalf("expected total 3660, got %s", order.TotalAmount.Decimal.String())
	}

	var reloaded models.PromoCode
	if err := db.First(&reloaded, promo.ID).Error; err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if reloaded.UsedCount != 1 {
		t.Fatalf("expected used_count 1, got %d", reloaded.UsedCount)
	}
	var usage models.PromoCodeUsage
	if err := db.Where("promo_code_id = ?", promo.ID).First(&usage).Error; err != nil {
		t.Fatalf("load usage failed: %v", err)
	}
	if usage.OrderID != order.ID || usage.UserID != 1 {
		t.Fatalf("unexpected usage record: %+v", usage)
	}

	// 每人一次，二单拒绝
	if _, err := svc.CreateOrder(CreateOrderInput{
		UserID:    1,
		Items:     []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		PromoCode: "ONCE20",
	}); !errors.Is(err, ErrPromoUserLimit) {
		t.Fatalf("expected ErrPromoUserLimit on second order, got: %v", err)
	}
}

func TestCreateGuestOrderRequiresEmail(t *testing.T) {
	svc, db := newOrderTestService(t)
	product := mustCreateProduct(t, db, "linen-chair", 499, 10)

	if _, err := svc.CreateGuestOrder(CreateGuestOrderInput{
		Email: "not-an-email",
		Items: []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	}); !errors.Is(err, ErrGuestEmailRequired) {
		t.Fatalf("expected ErrGuestEmailRequired, got: %v", err)
	}

	order, err := svc.CreateGuestOrder(CreateGuestOrderInput{
		Email: " Guest@Example.COM ",
		Items: []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create guest order failed: %v", err)
	}
	if order.GuestEmail != "guest@example.com" {
		t.Fatalf("expected normalized guest email, got %s", order.GuestEmail)
	}
	if order.UserID != 0 {
		t.Fatalf("expected guest order user id 0, got %d", order.UserID)
	}
}

func TestVariantRequiredWhenProductHasVariants(t *testing.T) {
	svc, db := newOrderTestService(t)
	product := mustCreateProduct(t, db, "nordic-sofa", 2999, 10)
	variant := &models.ProductVariant{
		ProductID:   product.ID,
		VariantCode: "green",
		NameJSON:    models.JSON{"en-US": "Green"},
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(3299)),
		StockTotal:  3,
		IsActive:    true,
	}
	if err := db.Create(variant).Error; err != nil {
		t.Fatalf("create variant failed: %v", err)
	}

	if _, err := svc.CreateOrder(CreateOrderInput{
		UserID: 1,
		Items:  []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	}); !errors.Is(err, ErrOrderItemsInvalid) {
		t.Fatalf("expected ErrOrderItemsInvalid without variant, got: %v", err)
	}

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID: 1,
		Items:  []CreateOrderItem{{ProductID: product.ID, VariantID: variant.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order with variant failed: %v", err)
	}
	if !order.TotalAmount.Decimal.Equal(decimal.NewFromInt(3299)) {
		t.Fatalf("expected variant price used, got %s", order.TotalAmount.Decimal.String())
	}

	var reloaded models.ProductVariant
	if err := db.First(&reloaded, variant.ID).Error; err != nil {
		t.Fatalf("reload variant failed: %v", err)
	}
	if reloaded.StockReserved != 1 {
		t.Fatalf("expected variant stock_reserved 1, got %d", reloaded.StockReserved)
	}
}

func TestCancelUserOrderReleasesStock(t *testing.T) {
	svc, db := newOrderTestService(t)
	product := mustCreateProduct(t, db, "pine-shelf", 899, 4)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID: 2,
		Items:  []CreateOrderItem{{ProductID: product.ID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	canceled, err := svc.CancelUserOrder(order.ID, 2)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if canceled.Status != constants.OrderStatusCanceled {
		t.Fatalf("expected canceled, got %s", canceled.Status)
	}
	if canceled.CanceledAt == nil {
		t.Fatalf("expected canceled_at set")
	}

	var reloaded models.Product
	if err := db.First(&reloaded, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if reloaded.StockReserved != 0 {
		t.Fatalf("expected stock released, got reserved %d", reloaded.StockReserved)
	}

	// 已取消订单不可重复取消
	if _, err := svc.CancelUserOrder(order.ID, 2); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid, got: %v", err)
	}
}

func TestCancelExpiredOrderIdempotent(t *testing.T) {
	svc, db := newOrderTestService(t)
	product := mustCreateProduct(t, db, "elm-bench", 1200, 4)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID: 2,
		Items:  []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if err := svc.CancelExpiredOrder(order.ID); err != nil {
		t.Fatalf("cancel expired failed: %v", err)
	}
	// 重复执行为幂等空操作
	if err := svc.CancelExpiredOrder(order.ID); err != nil {
		t.Fatalf("expected idempotent cancel, got: %v", err)
	}
	if err := svc.CancelExpiredOrder(99999); err != nil {
		t.Fatalf("expected missing order no-op, got: %v", err)
	}
}

func TestUpdateStatusFollowsTransitions(t *testing.T) {
	svc, db := newOrderTestService(t)
	product := mustCreateProduct(t, db, "teak-wardrobe", 5600, 10)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID: 3,
		Items:  []CreateOrderItem{{ProductID: product.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	// 待支付不能直接完成
	if _, err := svc.UpdateStatus(order.ID, constants.OrderStatusCompleted); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid, got: %v", err)
	}

	paid, err := svc.UpdateStatus(order.ID, constants.OrderStatusPaid)
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if paid.PaidAt == nil {
		t.Fatalf("expected paid_at set")
	}

	if _, err := svc.UpdateStatus(order.ID, constants.OrderStatusShipping); err != nil {
		t.Fatalf("mark shipping failed: %v", err)
	}
	if _, err := svc.UpdateStatus(order.ID, constants.OrderStatusDelivered); err != nil {
		t.Fatalf("mark delivered failed: %v", err)
	}
	completed, err := svc.UpdateStatus(order.ID, constants.OrderStatusCompleted)
	if err != nil {
		t.Fatalf("mark completed failed: %v", err)
	}
	if completed.Status != constants.OrderStatusCompleted {
		t.Fatalf("expected completed, got %s", completed.Status)
	}

	// 完结后占用转实扣
	var reloaded models.Product
	if err := db.First(&reloaded, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if reloaded.StockTotal != 8 || reloaded.StockReserved != 0 {
		t.Fatalf("expected stock consumed (total 8, reserved 0), got total %d reserved %d", reloaded.StockTotal, reloaded.StockReserved)
	}
}

func TestGetGuestOrderByNoAndEmail(t *testing.T) {
	svc, db := newOrderTestService(t)
	product := mustCreateProduct(t, db, "ash-stool", 299, 10)

	order, err := svc.CreateGuestOrder(CreateGuestOrderInput{
		Email: "guest@example.com",
		Items: []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create guest order failed: %v", err)
	}

	found, err := svc.GetGuestOrder(order.OrderNo, "guest@example.com")
	if err != nil {
		t.Fatalf("get guest order failed: %v", err)
	}
	if found.ID != order.ID {
		t.Fatalf("unexpected order: %+v", found)
	}

	if _, err := svc.GetGuestOrder(order.OrderNo, "other@example.com"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for wrong email, got: %v", err)
	}
}
