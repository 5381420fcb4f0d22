package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/maplenest/internal/config"
	"github.com/maplenest/internal/i18n"
	"github.com/maplenest/internal/models"
)

// EmailService 邮件发送服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// OrderConfirmationEmailInput 订单确认邮件输入
type OrderConfirmationEmailInput struct {
	OrderNo        string
	TotalAmount    models.Money
	DiscountAmount models.Money
	Currency       string
	ItemCount      int
	IsGuest        bool
}

// SendOrderConfirmationEmail 发送下单确认通知
func (s *EmailService) SendOrderConfirmationEmail(toEmail string, input OrderConfirmationEmailInput, locale string) error {
	subject, body := buildOrderConfirmationContent(input, locale)
	return s.sendTextEmail(toEmail, subject, body)
}

// SendWelcomeEmail 发送注册欢迎邮件
func (s *EmailService) SendWelcomeEmail(toEmail, displayName, locale string) error {
	subject, body := buildWelcomeContent(displayName, locale)
	return s.sendTextEmail(toEmail, subject, body)
}

// SendCustomEmail 发送测试邮件或自定义邮件
func (s *EmailService) SendCustomEmail(toEmail, subject, body string) error {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = "SMTP 配置测试邮件"
	}
	body = strings.TrimSpace(body)
	if body == "" {
		body = "这是一封来自 MapleNest 的 SMTP 测试邮件，说明当前配置可正常发送。"
	}
	return s.sendTextEmail(toEmail, subject, body)
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if s.cfg.UseSSL {
		return sendMailWithSSL(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg))
	}
	if s.cfg.UseTLS {
		return sendMailWithStartTLS(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg))
	}
	return sendMailPlain(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg))
}

func buildOrderConfirmationContent(input OrderConfirmationEmailInput, locale string) (string, string) {
	amount := input.TotalAmount.String()
	currency := strings.TrimSpace(input.Currency)
	switch i18n.Normalize(locale) {
	case i18n.LocaleTW:
		subject := fmt.Sprintf("訂單已建立：%s", input.OrderNo)
		body := fmt.Sprintf("您的訂單 %s 已建立，共 %d 件商品，應付金額 %s %s。\n\n請在有效期內完成支付，逾期訂單將自動取消。",
			input.OrderNo, input.ItemCount, amount, currency)
		if input.IsGuest {
			body += "\n\n您以遊客身份下單，可憑訂單號與下單郵箱查詢訂單狀態。"
		}
		return subject, body
	case i18n.LocaleEN:
		subject := fmt.Sprintf("Order created: %s", input.OrderNo)
		body := fmt.Sprintf("Your order %s has been created with %d item(s). Amount due: %s %s.\n\nPlease complete the payment before it expires, unpaid orders are canceled automatically.",
			input.OrderNo, input.ItemCount, amount, currency)
		if input.IsGuest {
			body += "\n\nYou ordered as a guest. Use the order number and your email to check the order status."
		}
		return subject, body
	default:
		subject := fmt.Sprintf("订单已创建：%s", input.OrderNo)
		body := fmt.Sprintf("您的订单 %s 已创建，共 %d 件商品，应付金额 %s %s。\n\n请在有效期内完成支付，逾期订单将自动取消。",
			input.OrderNo, input.ItemCount, amount, currency)
		if input.IsGuest {
			body += "\n\n您以游客身份下单，可凭订单号与下单邮箱查询订单状态。"
		}
		return subject, body
	}
}

func buildWelcomeContent(displayName, locale string) (string, string) {
	name := strings.TrimSpace(displayName)
	switch i18n.Normalize(locale) {
	case i18n.LocaleTW:
		if name == "" {
			name = "新朋友"
		}
		return "歡迎加入 MapleNest", fmt.Sprintf("%s，您好：\n\n感謝註冊 MapleNest，祝您選購愉快。", name)
	case i18n.LocaleEN:
		if name == "" {
			name = "there"
		}
		return "Welcome to MapleNest", fmt.Sprintf("Hi %s,\n\nThanks for signing up at MapleNest. Happy furnishing!", name)
	default:
		if name == "" {
			name = "新朋友"
		}
		return "欢迎加入 MapleNest", fmt.Sprintf("%s，您好：\n\n感谢注册 MapleNest，祝您选购愉快。", name)
	}
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

func sendMailWithSSL(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailWithStartTLS(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return err
	}

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailPlain(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
