package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/maplenest/internal/models"
	"github.com/maplenest/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newPromoTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.PromoCode{},
		&models.PromoCodeProduct{},
		&models.PromoCodeUser{},
		&models.PromoCodeUsage{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func newPromoTestService(t *testing.T, requireAllProducts bool) (*PromoService, *gorm.DB) {
	t.Helper()
	db := newPromoTestDB(t)
	promoRepo := repository.NewPromoCodeRepository(db)
	usageRepo := repository.NewPromoCodeUsageRepository(db)
	return NewPromoService(promoRepo, usageRepo, requireAllProducts), db
}

func mustCreatePromo(t *testing.T, db *gorm.DB, promo *models.PromoCode) *models.PromoCode {
	t.Helper()
	if err := db.Create(promo).Error; err != nil {
		t.Fatalf("create promo failed: %v", err)
	}
	return promo
}

func cartItem(productID uint, total float64) PromoCartItem {
	return PromoCartItem{
		ProductID:  productID,
		Quantity:   1,
		TotalPrice: models.NewMoneyFromDecimal(decimal.NewFromFloat(total)),
	}
}

func TestValidatePromoNotFound(t *testing.T) {
	svc, _ := newPromoTestService(t, false)

	if _, err := svc.Validate(ValidatePromoInput{Code: "  "}); !errors.Is(err, ErrPromoNotFound) {
		t.Fatalf("expected ErrPromoNotFound for blank code, got: %v", err)
	}
	if _, err := svc.Validate(ValidatePromoInput{Code: "NOPE"}); !errors.Is(err, ErrPromoNotFound) {
		t.Fatalf("expected ErrPromoNotFound for unknown code, got: %v", err)
	}
}

func TestValidatePromoCodeCaseInsensitive(t *testing.T) {
	svc, db := newPromoTestService(t, false)
	mustCreatePromo(t, db, &models.PromoCode{
		Code:          "SAVE10",
		DiscountType:  "percentage",
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		IsActive:      true,
	})

	result, err := svc.Validate(ValidatePromoInput{
		Code:  " save10 ",
		Items: []PromoCartItem{cartItem(1, 100)},
	})
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if result.Promo.Code != "SAVE10" {
		t.Fatalf("unexpected promo code: %s", result.Promo.Code)
	}
	if !result.Discount.Decimal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected discount 10, got %s", result.Discount.Decimal.String())
	}
}

func TestValidatePromoInactive(t *testing.T) {
	svc, db := newPromoTestService(t, false)
	mustCreatePromo(t, db, &models.PromoCode{
		Code:          "PAUSED",
		DiscountType:  "fixed",
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		IsActive:      false,
	})

	if _, err := svc.Validate(ValidatePromoInput{
		Code:  "PAUSED",
		Items: []PromoCartItem{cartItem(1, 100)},
	}); !errors.Is(err, ErrPromoInactive) {
		t.Fatalf("expected ErrPromoInactive, got: %v", err)
	}
}

func TestValidatePromoTimeWindow(t *testing.T) {
	svc, db := newPromoTestService(t, false)
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	mustCreatePromo(t, db, &models.PromoCode{
		Code:          "NOTYET",
		DiscountType:  "fixed",
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		IsActive:      true,
		StartsAt:      &future,
	})
	mustCreatePromo(t, db, &models.PromoCode{
		Code:          "GONE",
		DiscountType:  "fixed",
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		IsActive:      true,
		EndsAt:        &past,
	})

	items := []PromoCartItem{cartItem(1, 100)}
	if _, err := svc.Validate(ValidatePromoInput{Code: "NOTYET", Items: items, Now: now}); !errors.Is(err, ErrPromoNotStarted) {
		t.Fatalf("expected ErrPromoNotStarted, got: %v", err)
	}
	if _, err := svc.Validate(ValidatePromoInput{Code: "GONE", Items: items, Now: now}); !errors.Is(err, ErrPromoExpired) {
		t.Fatalf("expected ErrPromoExpired, got: %v", err)
	}
}

func TestValidatePromoUserAllowList(t *testing.T) {
	svc, db := newPromoTestService(t, false)
	promo := mustCreatePromo(t, db, &models.PromoCode{
		Code:          "VIPONLY",
		DiscountType:  "fixed",
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		IsActive:      true,
	})
	if err := db.Create(&models.PromoCodeUser{PromoCodeID: promo.ID, UserID: 7}).Error; err != nil {
		t.Fatalf("create allow list entry failed: %v", err)
	}

	items := []PromoCartItem{cartItem(1, 100)}
	if _, err := svc.Validate(ValidatePromoInput{Code: "VIPONLY", UserID: 0, Items: items}); !errors.Is(err, ErrPromoNotEligibleUser) {
		t.Fatalf("expected guest rejected, got: %v", err)
	}
	if _, err := svc.Validate(ValidatePromoInput{Code: "VIPONLY", UserID: 8, Items: items}); !errors.Is(err, ErrPromoNotEligibleUser) {
		t.Fatalf("expected non-listed user rejected, got: %v", err)
	}
	if _, err := svc.Validate(ValidatePromoInput{Code: "VIPONLY", UserID: 7, Items: items}); err != nil {
		t.Fatalf("expected listed user accepted, got: %v", err)
	}
}

func TestValidatePromoGlobalLimit(t *testing.T) {
	svc, db := newPromoTestService(t, false)
	mustCreatePromo(t, db, &models.PromoCode{
		Code:          "SOLDOUT",
		DiscountType:  "fixed",
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		UsageLimit:    3,
		UsedCount:     3,
		IsActive:      true,
	})

	if _, err := svc.Validate(ValidatePromoInput{
		Code:  "SOLDOUT",
		Items: []PromoCartItem{cartItem(1, 100)},
	}); !errors.Is(err, ErrPromoGlobalLimit) {
		t.Fatalf("expected ErrPromoGlobalLimit, got: %v", err)
	}
}

func TestValidatePromoPerUserLimit(t *testing.T) {
	svc, db := newPromoTestService(t, false)
	promo := mustCreatePromo(t, db, &models.PromoCode{
		Code:              "ONCE",
		DiscountType:      "fixed",
		DiscountValue:     models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		UsageLimitPerUser: 1,
		IsActive:          true,
	})
	usage := models.PromoCodeUsage{
		PromoCodeID:    promo.ID,
		UserID:         9,
		OrderID:        100,
		DiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		UsedAt:         time.Now(),
	}
	if err := db.Create(&usage).Error; err != nil {
		t.Fatalf("create usage failed: %v", err)
	}

	items := []PromoCartItem{cartItem(1, 100)}
	if _, err := svc.Validate(ValidatePromoInput{Code: "ONCE", UserID: 0, Items: items}); !errors.Is(err, ErrPromoNotEligibleUser) {
		t.Fatalf("expected guest rejected for per-user limited code, got: %v", err)
	}
	if _, err := svc.Validate(ValidatePromoInput{Code: "ONCE", UserID: 9, Items: items}); !errors.Is(err, ErrPromoUserLimit) {
		t.Fatalf("expected ErrPromoUserLimit, got: %v", err)
	}
	if _, err := svc.Validate(ValidatePromoInput{Code: "ONCE", UserID: 10, Items: items}); err != nil {
		t.Fatalf("expected fresh user accepted, got: %v", err)
	}
}

func TestValidatePromoBelowMinimum(t *testing.T) {
	svc, db := newPromoTestService(t, false)
	mustCreatePromo(t, db, &models.PromoCode{
		Code:           "BIGCART",
		DiscountType:   "fixed",
		DiscountValue:  models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		MinOrderAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
		IsActive:       true,
	})

	if _, err := svc.Validate(ValidatePromoInput{
		Code:  "BIGCART",
		Items: []PromoCartItem{cartItem(1, 499.99)},
	}); !errors.Is(err, ErrPromoBelowMinimum) {
		t.Fatalf("expected ErrPromoBelowMinimum, got: %v", err)
	}
	if _, err := svc.Validate(ValidatePromoInput{
		Code:  "BIGCART",
		Items: []PromoCartItem{cartItem(1, 500)},
	}); err != nil {
		t.Fatalf("expected exact threshold accepted, got: %v", err)
	}
}

func TestValidatePromoProductScope(t *testing.T) {
	svc, db := newPromoTestService(t, false)
	promo := mustCreatePromo(t, db, &models.PromoCode{
		Code:          "SOFAONLY",
		DiscountType:  "fixed",
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		IsActive:      true,
	})
	if err := db.Create(&models.PromoCodeProduct{PromoCodeID: promo.ID, ProductID: 1}).Error; err != nil {
		t.Fatalf("create scope entry failed: %v", err)
	}

	if _, err := svc.Validate(ValidatePromoInput{
		Code:  "SOFAONLY",
		Items: []PromoCartItem{cartItem(2, 100)},
	}); !errors.Is(err, ErrPromoNoEligibleProducts) {
		t.Fatalf("expected ErrPromoNoEligibleProducts, got: %v", err)
	}
	// 部分命中即可用
	if _, err := svc.Validate(ValidatePromoInput{
		Code:  "SOFAONLY",
		Items: []PromoCartItem{cartItem(1, 50), cartItem(2, 50)},
	}); err != nil {
		t.Fatalf("expected partial match accepted, got: %v", err)
	}
}

func TestValidatePromoProductScopeRequireAll(t *testing.T) {
	svc, db := newPromoTestService(t, true)
	promo := mustCreatePromo(t, db, &models.PromoCode{
		Code:          "STRICT",
		DiscountType:  "fixed",
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		IsActive:      true,
	})
	if err := db.Create(&models.PromoCodeProduct{PromoCodeID: promo.ID, ProductID: 1}).Error; err != nil {
		t.Fatalf("create scope entry failed: %v", err)
	}

	if _, err := svc.Validate(ValidatePromoInput{
		Code:  "STRICT",
		Items: []PromoCartItem{cartItem(1, 50), cartItem(2, 50)},
	}); !errors.Is(err, ErrPromoNoEligibleProducts) {
		t.Fatalf("expected mixed cart rejected in strict mode, got: %v", err)
	}
	if _, err := svc.Validate(ValidatePromoInput{
		Code:  "STRICT",
		Items: []PromoCartItem{cartItem(1, 100)},
	}); err != nil {
		t.Fatalf("expected fully eligible cart accepted, got: %v", err)
	}
}

func TestComputeDiscount(t *testing.T) {
	cases := []struct {
		name     string
		promo    models.PromoCode
		subtotal decimal.Decimal
		want     string
	}{
		{
			name: "percentage",
			promo: models.PromoCode{
				DiscountType:  "percentage",
				DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			},
			subtotal: decimal.NewFromInt(250),
			want:     "25",
		},
		{
			name: "percentage rounds to cents",
			promo: models.PromoCode{
				DiscountType:  "percentage",
				DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(15)),
			},
			subtotal: decimal.RequireFromString("33.33"),
			want:     "5",
		},
		{
			name: "fixed",
			promo: models.PromoCode{
				DiscountType:  "fixed",
				DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
			},
			subtotal: decimal.NewFromInt(100),
			want:     "30",
		},
		{
			name: "fixed clamped to subtotal",
			promo: models.PromoCode{
				DiscountType:  "fixed",
				DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(200)),
			},
			subtotal: decimal.NewFromInt(120),
			want:     "120",
		},
		{
			name: "percentage capped by max discount",
			promo: models.PromoCode{
				DiscountType:      "percentage",
				DiscountValue:     models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
				MaxDiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(80)),
			},
			subtotal: decimal.NewFromInt(1000),
			want:     "80",
		},
		{
			name: "zero value yields zero",
			promo: models.PromoCode{
				DiscountType:  "percentage",
				DiscountValue: models.NewMoneyFromDecimal(decimal.Zero),
			},
			subtotal: decimal.NewFromInt(1000),
			want:     "0",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputeDiscount(&tc.promo, tc.subtotal)
			if err != nil {
				t.Fatalf("ComputeDiscount error: %v", err)
			}
			if got.Decimal.String() != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got.Decimal.String())
			}
		})
	}
}

func TestComputeDiscountInvalidType(t *testing.T) {
	promo := &models.PromoCode{
		DiscountType:  "bogo",
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
	}
	if _, err := ComputeDiscount(promo, decimal.NewFromInt(100)); !errors.Is(err, ErrPromoInvalid) {
		t.Fatalf("expected ErrPromoInvalid, got: %v", err)
	}
	if _, err := ComputeDiscount(nil, decimal.NewFromInt(100)); !errors.Is(err, ErrPromoInvalid) {
		t.Fatalf("expected ErrPromoInvalid for nil promo, got: %v", err)
	}
}

func TestRedeemWritesUsageAndIncrementsCount(t *testing.T) {
	svc, db := newPromoTestService(t, false)
	promo := mustCreatePromo(t, db, &models.PromoCode{
		Code:          "REDEEM",
		DiscountType:  "fixed",
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		UsageLimit:    2,
		IsActive:      true,
	})

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Redeem(tx, promo.ID, 501, 3, models.NewMoneyFromDecimal(decimal.NewFromInt(20)))
	})
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}

	var reloaded models.PromoCode
	if err := db.First(&reloaded, promo.ID).Error; err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if reloaded.UsedCount != 1 {
		t.Fatalf("expected used_count 1, got %d", reloaded.UsedCount)
	}

	var usages []models.PromoCodeUsage
	if err := db.Where("promo_code_id = ?", promo.ID).Find(&usages).Error; err != nil {
		t.Fatalf("load usages failed: %v", err)
	}
	if len(usages) != 1 {
		t.Fatalf("expected 1 usage record, got %d", len(usages))
	}
	if usages[0].OrderID != 501 || usages[0].UserID != 3 {
		t.Fatalf("unexpected usage record: %+v", usages[0])
	}
}

func TestRedeemRecheckGlobalLimitInsideTx(t *testing.T) {
	svc, db := newPromoTestService(t, false)
	promo := mustCreatePromo(t, db, &models.PromoCode{
		Code:          "LASTONE",
		DiscountType:  "fixed",
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		UsageLimit:    1,
		UsedCount:     1,
		IsActive:      true,
	})

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Redeem(tx, promo.ID, 502, 3, models.NewMoneyFromDecimal(decimal.NewFromInt(20)))
	})
	if !errors.Is(err, ErrPromoGlobalLimit) {
		t.Fatalf("expected ErrPromoGlobalLimit, got: %v", err)
	}

	var count int64
	if err := db.Model(&models.PromoCodeUsage{}).Where("promo_code_id = ?", promo.ID).Count(&count).Error; err != nil {
		t.Fatalf("count usages failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no usage record, got %d", count)
	}
}

func TestRedeemRecheckPerUserLimitInsideTx(t *testing.T) {
	svc, db := newPromoTestService(t, false)
	promo := mustCreatePromo(t, db, &models.PromoCode{
		Code:              "ONETIME",
		DiscountType:      "fixed",
		DiscountValue:     models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		UsageLimitPerUser: 1,
		IsActive:          true,
	})
	usage := models.PromoCodeUsage{
		PromoCodeID:    promo.ID,
		UserID:         3,
		OrderID:        600,
		DiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		UsedAt:         time.Now(),
	}
	if err := db.Create(&usage).Error; err != nil {
		t.Fatalf("create usage failed: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Redeem(tx, promo.ID, 601, 3, models.NewMoneyFromDecimal(decimal.NewFromInt(20)))
	})
	if !errors.Is(err, ErrPromoUserLimit) {
		t.Fatalf("expected ErrPromoUserLimit, got: %v", err)
	}
}

func TestRedeemInvalidArguments(t *testing.T) {
	svc, db := newPromoTestService(t, false)
	if err := svc.Redeem(nil, 1, 1, 1, models.Money{}); !errors.Is(err, ErrPromoInvalid) {
		t.Fatalf("expected ErrPromoInvalid for nil tx, got: %v", err)
	}
	if err := svc.Redeem(db, 0, 1, 1, models.Money{}); !errors.Is(err, ErrPromoInvalid) {
		t.Fatalf("expected ErrPromoInvalid for zero promo id, got: %v", err)
	}
}
