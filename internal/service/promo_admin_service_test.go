package service

import (
	"errors"
	"testing"
	"time"

	"github.com/maplenest/internal/models"
	"github.com/maplenest/internal/repository"

	"github.com/shopspring/decimal"
)

func newPromoAdminTestService(t *testing.T) (*PromoAdminService, *PromoService) {
	t.Helper()
	db := newPromoTestDB(t)
	promoRepo := repository.NewPromoCodeRepository(db)
	usageRepo := repository.NewPromoCodeUsageRepository(db)
	return NewPromoAdminService(promoRepo, usageRepo), NewPromoService(promoRepo, usageRepo, false)
}

func validPromoInput() PromoCodeInput {
	return PromoCodeInput{
		Code:          "spring200",
		DiscountType:  "fixed",
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(200)),
		IsActive:      true,
	}
}

func TestPromoAdminCreateNormalizesCode(t *testing.T) {
	svc, _ := newPromoAdminTestService(t)

	detail, err := svc.Create(validPromoInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if detail.Code != "SPRING200" {
		t.Fatalf("expected uppercase code, got %s", detail.Code)
	}
}

func TestPromoAdminCreateDuplicateCode(t *testing.T) {
	svc, _ := newPromoAdminTestService(t)

	if _, err := svc.Create(validPromoInput()); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	input := validPromoInput()
	input.Code = " SPRING200 "
	if _, err := svc.Create(input); !errors.Is(err, ErrPromoCodeExists) {
		t.Fatalf("expected ErrPromoCodeExists, got: %v", err)
	}
}

func TestPromoAdminValidateInput(t *testing.T) {
	svc, _ := newPromoAdminTestService(t)
	now := time.Now()
	earlier := now.Add(-time.Hour)

	cases := []struct {
		name   string
		mutate func(*PromoCodeInput)
	}{
		{"blank code", func(in *PromoCodeInput) { in.Code = "   " }},
		{"unknown discount type", func(in *PromoCodeInput) { in.DiscountType = "bogo" }},
		{"zero discount value", func(in *PromoCodeInput) { in.DiscountValue = models.Money{} }},
		{"percentage above 100", func(in *PromoCodeInput) {
			in.DiscountType = "percentage"
			in.DiscountValue = models.NewMoneyFromDecimal(decimal.NewFromInt(120))
		}},
		{"negative min order amount", func(in *PromoCodeInput) {
			in.MinOrderAmount = models.NewMoneyFromDecimal(decimal.NewFromInt(-1))
		}},
		{"negative usage limit", func(in *PromoCodeInput) { in.UsageLimit = -1 }},
		{"window ends before start", func(in *PromoCodeInput) {
			in.StartsAt = &now
			in.EndsAt = &earlier
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validPromoInput()
			tc.mutate(&input)
			if _, err := svc.Create(input); !errors.Is(err, ErrPromoInvalid) {
				t.Fatalf("expected ErrPromoInvalid, got: %v", err)
			}
		})
	}
}

func TestPromoAdminUpdateReplacesScope(t *testing.T) {
	svc, _ := newPromoAdminTestService(t)

	input := validPromoInput()
	input.ProductIDs = []uint{1, 2}
	input.UserIDs = []uint{7}
	created, err := svc.Create(input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(created.ProductIDs) != 2 || len(created.UserIDs) != 1 {
		t.Fatalf("unexpected scope after create: %+v", created)
	}

	input.ProductIDs = []uint{3}
	input.UserIDs = nil
	updated, err := svc.Update(created.ID, input)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(updated.ProductIDs) != 1 || updated.ProductIDs[0] != 3 {
		t.Fatalf("expected product scope replaced, got %+v", updated.ProductIDs)
	}
	if len(updated.UserIDs) != 0 {
		t.Fatalf("expected user allow list cleared, got %+v", updated.UserIDs)
	}
}

func TestPromoAdminUpdateLimitBelowUsedCount(t *testing.T) {
	svc, promoSvc := newPromoAdminTestService(t)

	input := validPromoInput()
	input.UsageLimit = 5
	created, err := svc.Create(input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := promoSvc.promoRepo.IncrementUsedCount(created.ID, 3); err != nil {
		t.Fatalf("increment used count failed: %v", err)
	}

	input.UsageLimit = 2
	if _, err := svc.Update(created.ID, input); !errors.Is(err, ErrPromoInvalid) {
		t.Fatalf("expected ErrPromoInvalid when limit below used count, got: %v", err)
	}
}

func TestPromoAdminDeleteBlockedAfterRedemption(t *testing.T) {
	svc, promoSvc := newPromoAdminTestService(t)

	created, err := svc.Create(validPromoInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	usage := &models.PromoCodeUsage{
		PromoCodeID:    created.ID,
		UserID:         1,
		OrderID:        900,
		DiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(200)),
		UsedAt:         time.Now(),
	}
	if err := promoSvc.usageRepo.Create(usage); err != nil {
		t.Fatalf("create usage failed: %v", err)
	}

	if err := svc.Delete(created.ID); !errors.Is(err, ErrPromoRedeemed) {
		t.Fatalf("expected ErrPromoRedeemed, got: %v", err)
	}

	// 已核销只能停用
	if err := svc.Disable(created.ID); err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	detail, err := svc.Get(created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if detail.IsActive {
		t.Fatalf("expected promo disabled")
	}
}

func TestPromoAdminDeleteUnusedPromo(t *testing.T) {
	svc, _ := newPromoAdminTestService(t)

	created, err := svc.Create(validPromoInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(created.ID); !errors.Is(err, ErrPromoNotFound) {
		t.Fatalf("expected ErrPromoNotFound after delete, got: %v", err)
	}
}
