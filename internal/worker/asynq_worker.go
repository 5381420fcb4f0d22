package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/maplenest/internal/logger"
	"github.com/maplenest/internal/models"
	"github.com/maplenest/internal/provider"
	"github.com/maplenest/internal/queue"
	"github.com/maplenest/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderConfirmationEmail, c.handleOrderConfirmationEmail)
	mux.HandleFunc(queue.TaskWelcomeEmail, c.handleWelcomeEmail)
	mux.HandleFunc(queue.TaskOrderTimeoutCancel, c.handleOrderTimeoutCancel)
}

func (c *Consumer) handleOrderConfirmationEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_confirmation_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderConfirmationEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_confirmation_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_confirmation_email_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_confirmation_email_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_confirmation_email_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	receiverEmail, locale := resolveOrderReceiver(c, order)
	if receiverEmail == "" {
		logger.Debugw("worker_order_confirmation_email_skip_empty_receiver", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_order_confirmation_email_skip_email_service_nil", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}
	itemCount := 0
	for _, item := range order.Items {
		itemCount += item.Quantity
	}
	input := service.OrderConfirmationEmailInput{
		OrderNo:        order.OrderNo,
		TotalAmount:    order.TotalAmount,
		DiscountAmount: order.DiscountAmount,
		Currency:       order.Currency,
		ItemCount:      itemCount,
		IsGuest:        order.UserID == 0,
	}
	if err := c.EmailService.SendOrderConfirmationEmail(receiverEmail, input, locale); err != nil {
		logger.Warnw("worker_order_confirmation_email_send_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"receiver_email", receiverEmail,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleWelcomeEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_welcome_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.WelcomeEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_welcome_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 {
		logger.Debugw("worker_welcome_email_skip_invalid_payload", "user_id", payload.UserID)
		return nil
	}
	user, err := c.UserAuthService.GetUserByID(payload.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			logger.Debugw("worker_welcome_email_skip_user_not_found", "user_id", payload.UserID)
			return nil
		}
		logger.Warnw("worker_welcome_email_fetch_user_failed", "user_id", payload.UserID, "error", err)
		return err
	}
	receiverEmail := strings.TrimSpace(user.Email)
	if receiverEmail == "" {
		logger.Debugw("worker_welcome_email_skip_empty_receiver", "user_id", user.ID)
		return nil
	}
	locale := strings.TrimSpace(payload.Locale)
	if locale == "" {
		locale = strings.TrimSpace(user.Locale)
	}
	if c.EmailService == nil {
		logger.Warnw("worker_welcome_email_skip_email_service_nil", "user_id", user.ID)
		return nil
	}
	if err := c.EmailService.SendWelcomeEmail(receiverEmail, user.DisplayName, locale); err != nil {
		logger.Warnw("worker_welcome_email_send_failed", "user_id", user.ID, "receiver_email", receiverEmail, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleOrderTimeoutCancel(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_timeout_cancel_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderTimeoutCancelPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_timeout_cancel_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_timeout_cancel_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.OrderService == nil {
		logger.Warnw("worker_order_timeout_cancel_skip_order_service_nil", "order_id", payload.OrderID)
		return nil
	}
	if err := c.OrderService.CancelExpiredOrder(payload.OrderID); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			logger.Debugw("worker_order_timeout_cancel_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		case errors.Is(err, service.ErrOrderStatusInvalid):
			logger.Debugw("worker_order_timeout_cancel_skip_invalid_status", "order_id", payload.OrderID)
			return nil
		default:
			logger.Warnw("worker_order_timeout_cancel_failed", "order_id", payload.OrderID, "error", err)
			return err
		}
	}
	return nil
}

// resolveOrderReceiver 解析订单通知接收邮箱与语言
func resolveOrderReceiver(c *Consumer, order *models.Order) (string, string) {
	if c == nil || order == nil {
		return "", ""
	}
	if order.UserID == 0 {
		return strings.TrimSpace(order.GuestEmail), strings.TrimSpace(order.GuestLocale)
	}
	user, err := c.UserRepo.GetByID(order.UserID)
	if err != nil {
		logger.Warnw("worker_resolve_order_receiver_failed", "order_id", order.ID, "user_id", order.UserID, "error", err)
		return "", ""
	}
	if user == nil {
		return "", ""
	}
	return strings.TrimSpace(user.Email), strings.TrimSpace(user.Locale)
}
