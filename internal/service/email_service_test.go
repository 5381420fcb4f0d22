package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/maplenest/internal/config"
	"github.com/maplenest/internal/i18n"
	"github.com/maplenest/internal/models"

	"github.com/shopspring/decimal"
)

func TestBuildOrderConfirmationContent(t *testing.T) {
	tests := []struct {
		name                string
		locale              string
		isGuest             bool
		wantSubjectContains []string
		wantBodyContains    []string
	}{
		{
			name:   "user_zh",
			locale: i18n.LocaleCN,
			wantSubjectContains: []string{
				"订单已创建",
				"MN-TEST-1",
			},
			wantBodyContains: []string{
				"共 2 件商品",
				"1799.00 CNY",
			},
		},
		{
			name:    "guest_en",
			locale:  i18n.LocaleEN,
			isGuest: true,
			wantSubjectContains: []string{
				"Order created",
				"MN-TEST-1",
			},
			wantBodyContains: []string{
				"2 item(s)",
				"You ordered as a guest",
			},
		},
		{
			name:    "guest_tw",
			locale:  i18n.LocaleTW,
			isGuest: true,
			wantSubjectContains: []string{
				"訂單已建立",
			},
			wantBodyContains: []string{
				"遊客身份",
				"1799.00 CNY",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := OrderConfirmationEmailInput{
				OrderNo:        "MN-TEST-1",
				TotalAmount:    models.NewMoneyFromDecimal(decimal.RequireFromString("1799.00")),
				DiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(200)),
				Currency:       "CNY",
				ItemCount:      2,
				IsGuest:        tc.isGuest,
			}
			subject, body := buildOrderConfirmationContent(input, tc.locale)
			for _, want := range tc.wantSubjectContains {
				if !strings.Contains(subject, want) {
					t.Fatalf("subject %q should contain %q", subject, want)
				}
			}
			for _, want := range tc.wantBodyContains {
				if !strings.Contains(body, want) {
					t.Fatalf("body %q should contain %q", body, want)
				}
			}
		})
	}
}

func TestBuildWelcomeContentFallbackName(t *testing.T) {
	subject, body := buildWelcomeContent("  ", i18n.LocaleEN)
	if !strings.Contains(subject, "Welcome to MapleNest") {
		t.Fatalf("unexpected subject: %q", subject)
	}
	if !strings.Contains(body, "Hi there,") {
		t.Fatalf("expected fallback name in body, got: %q", body)
	}

	_, zhBody := buildWelcomeContent("小李", i18n.LocaleCN)
	if !strings.Contains(zhBody, "小李") {
		t.Fatalf("expected display name in body, got: %q", zhBody)
	}
}

func TestSendTextEmailDisabled(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{Enabled: false})
	err := svc.SendWelcomeEmail("user@example.com", "User", i18n.LocaleEN)
	if !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("expected ErrEmailServiceDisabled, got: %v", err)
	}
}

func TestSendTextEmailNotConfigured(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{Enabled: true})
	err := svc.SendWelcomeEmail("user@example.com", "User", i18n.LocaleEN)
	if !errors.Is(err, ErrEmailServiceNotConfigured) {
		t.Fatalf("expected ErrEmailServiceNotConfigured, got: %v", err)
	}
}

func TestSendTextEmailInvalidReceiver(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "noreply@example.com",
	})
	err := svc.SendWelcomeEmail("not-an-address", "User", i18n.LocaleEN)
	if !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got: %v", err)
	}
}

func TestBuildEmailMessageHeaders(t *testing.T) {
	msg := buildEmailMessage("noreply@example.com", "user@example.com", "订单通知", "hello")
	if !strings.Contains(msg, "From: noreply@example.com\r\n") {
		t.Fatalf("missing from header: %q", msg)
	}
	if !strings.Contains(msg, "Content-Type: text/plain; charset=UTF-8\r\n") {
		t.Fatalf("missing content type header: %q", msg)
	}
	if !strings.HasSuffix(msg, "\r\nhello") {
		t.Fatalf("body should follow blank line: %q", msg)
	}
}
