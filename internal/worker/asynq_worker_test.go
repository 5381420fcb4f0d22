package worker

import (
	"fmt"
	"testing"

	"github.com/maplenest/internal/models"
	"github.com/maplenest/internal/provider"
	"github.com/maplenest/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newWorkerTestConsumer(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	consumer := NewConsumer(&provider.Container{
		UserRepo: repository.NewUserRepository(db),
	})
	return consumer, db
}

func TestResolveOrderReceiverGuest(t *testing.T) {
	consumer, _ := newWorkerTestConsumer(t)

	order := &models.Order{
		UserID:      0,
		GuestEmail:  "  guest@example.com  ",
		GuestLocale: " en-US ",
	}
	email, locale := resolveOrderReceiver(consumer, order)
	if email != "guest@example.com" {
		t.Fatalf("expected trimmed guest email, got %q", email)
	}
	if locale != "en-US" {
		t.Fatalf("expected trimmed guest locale, got %q", locale)
	}
}

func TestResolveOrderReceiverUser(t *testing.T) {
	consumer, db := newWorkerTestConsumer(t)

	user := models.User{
		Email:        "member@example.com",
		PasswordHash: "x",
		Locale:       "zh-TW",
		Status:       "active",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	order := &models.Order{ID: 1, UserID: user.ID}
	email, locale := resolveOrderReceiver(consumer, order)
	if email != "member@example.com" {
		t.Fatalf("expected member email, got %q", email)
	}
	if locale != "zh-TW" {
		t.Fatalf("expected member locale, got %q", locale)
	}
}

func TestResolveOrderReceiverMissingUser(t *testing.T) {
	consumer, _ := newWorkerTestConsumer(t)

	order := &models.Order{ID: 2, UserID: 999}
	email, locale := resolveOrderReceiver(consumer, order)
	if email != "" || locale != "" {
		t.Fatalf("expected empty receiver for missing user, got %q %q", email, locale)
	}
}

func TestResolveOrderReceiverNilArgs(t *testing.T) {
	if email, _ := resolveOrderReceiver(nil, &models.Order{}); email != "" {
		t.Fatalf("expected empty receiver for nil consumer, got %q", email)
	}
	consumer, _ := newWorkerTestConsumer(t)
	if email, _ := resolveOrderReceiver(consumer, nil); email != "" {
		t.Fatalf("expected empty receiver for nil order, got %q", email)
	}
}
