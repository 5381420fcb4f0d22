package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/maplenest/internal/constants"
	"github.com/maplenest/internal/logger"
	"github.com/maplenest/internal/models"
	"github.com/maplenest/internal/queue"
	"github.com/maplenest/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	variantRepo   repository.ProductVariantRepository
	promoService  *PromoService
	queueClient   *queue.Client
	expireMinutes int
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, variantRepo repository.ProductVariantRepository, promoService *PromoService, queueClient *queue.Client, expireMinutes int) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		variantRepo:   variantRepo,
		promoService:  promoService,
		queueClient:   queueClient,
		expireMinutes: expireMinutes,
	}
}

// CreateOrderItem 创建订单项输入
type CreateOrderItem struct {
	ProductID uint
	VariantID uint // 0 表示无规格
	Quantity  int
}

// CreateOrderInput 会员创建订单输入
type CreateOrderInput struct {
	UserID        uint
	Items         []CreateOrderItem
	PromoCode     string
	ShippingName  string
	ShippingPhone string
	ShippingAddr  string
	ClientIP      string
}

// CreateGuestOrderInput 游客创建订单输入
type CreateGuestOrderInput struct {
	Email         string
	Locale        string
	Items         []CreateOrderItem
	PromoCode     string
	ShippingName  string
	ShippingPhone string
	ShippingAddr  string
	ClientIP      string
}

// OrderPreview 订单金额预览（只读，无副作用）
type OrderPreview struct {
	Currency       string             `json:"currency"`
	Items          []OrderPreviewItem `json:"items"`
	OriginalAmount models.Money       `json:"original_amount"`
	DiscountAmount models.Money       `json:"discount_amount"`
	TotalAmount    models.Money       `json:"total_amount"`
	PromoCode      string             `json:"promo_code,omitempty"`
}

// OrderPreviewItem 预览订单项
type OrderPreviewItem struct {
	ProductID   uint         `json:"product_id"`
	VariantID   uint         `json:"variant_id,omitempty"`
	Title       models.JSON  `json:"title"`
	VariantName models.JSON  `json:"variant_name,omitempty"`
	UnitPrice   models.Money `json:"unit_price"`
	Quantity    int          `json:"quantity"`
	TotalPrice  models.Money `json:"total_price"`
}

var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPendingPayment: {
		constants.OrderStatusPaid:     true,
		constants.OrderStatusCanceled: true,
	},
	constants.OrderStatusPaid: {
		constants.OrderStatusShipping: true,
		constants.OrderStatusCanceled: true,
	},
	constants.OrderStatusShipping: {
		constants.OrderStatusDelivered: true,
	},
	constants.OrderStatusDelivered: {
		constants.OrderStatusCompleted: true,
	},
}

type orderBuildResult struct {
	OrderItems     []models.OrderItem
	PromoItems     []PromoCartItem
	OriginalAmount decimal.Decimal
}

// buildOrderItems 校验商品与规格并生成订单项快照
func (s *OrderService) buildOrderItems(items []CreateOrderItem) (*orderBuildResult, error) {
	if len(items) == 0 {
		return nil, ErrOrderItemsInvalid
	}

	result := &orderBuildResult{OriginalAmount: decimal.Zero}
	for _, item := range items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return nil, ErrOrderItemsInvalid
		}
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, ErrProductNotFound
		}
		if !product.IsActive {
			return nil, ErrProductInactive
		}

		unitPrice := product.PriceAmount
		var variantID *uint
		var variantName models.JSON
		if item.VariantID > 0 {
			variant, err := s.variantRepo.GetByID(item.VariantID)
			if err != nil {
				return nil, err
			}
			if variant == nil || variant.ProductID != product.ID {
				return nil, ErrVariantNotFound
			}
			if !variant.IsActive {
				return nil, ErrProductInactive
			}
			unitPrice = variant.PriceAmount
			id := variant.ID
			variantID = &id
			variantName = variant.NameJSON
		} else if len(product.Variants) > 0 {
			// 有规格的商品必须选择规格
			return nil, ErrOrderItemsInvalid
		}

		totalPrice := models.NewMoneyFromDecimal(unitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))))
		result.OrderItems = append(result.OrderItems, models.OrderItem{
			ProductID:       product.ID,
			VariantID:       variantID,
			TitleJSON:       product.TitleJSON,
			VariantNameJSON: variantName,
			Material:        product.Material,
			Dimensions:      product.Dimensions,
			UnitPrice:       unitPrice,
			Quantity:        item.Quantity,
			TotalPrice:      totalPrice,
		})
		result.PromoItems = append(result.PromoItems, PromoCartItem{
			ProductID:  product.ID,
			Quantity:   item.Quantity,
			TotalPrice: totalPrice,
		})
		result.OriginalAmount = result.OriginalAmount.Add(totalPrice.Decimal)
	}
	return result, nil
}

// Preview 订单金额预览，优惠码校验失败时返回对应业务错误
func (s *OrderService) Preview(userID uint, items []CreateOrderItem, promoCode string) (*OrderPreview, error) {
	built, err := s.buildOrderItems(items)
	if err != nil {
		return nil, err
	}

	discount := decimal.Zero
	appliedCode := ""
	if strings.TrimSpace(promoCode) != "" {
		validation, err := s.promoService.Validate(ValidatePromoInput{
			Code:   promoCode,
			UserID: userID,
			Items:  built.PromoItems,
		})
		if err != nil {
			return nil, err
		}
		discount = validation.Discount.Decimal
		appliedCode = validation.Promo.Code
	}

	preview := &OrderPreview{
		Currency:       constants.DefaultCurrency,
		OriginalAmount: models.NewMoneyFromDecimal(built.OriginalAmount),
		DiscountAmount: models.NewMoneyFromDecimal(discount),
		TotalAmount:    models.NewMoneyFromDecimal(built.OriginalAmount.Sub(discount)),
		PromoCode:      appliedCode,
	}
	for _, item := range built.OrderItems {
		previewItem := OrderPreviewItem{
			ProductID:   item.ProductID,
			Title:       item.TitleJSON,
			VariantName: item.VariantNameJSON,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			TotalPrice:  item.TotalPrice,
		}
		if item.VariantID != nil {
			previewItem.VariantID = *item.VariantID
		}
		preview.Items = append(preview.Items, previewItem)
	}
	return preview, nil
}

// CreateOrder 会员创建订单
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if input.UserID == 0 {
		return nil, ErrOrderItemsInvalid
	}
	return s.createOrder(orderCreateParams{
		UserID:        input.UserID,
		Items:         input.Items,
		PromoCode:     input.PromoCode,
		ShippingName:  input.ShippingName,
		ShippingPhone: input.ShippingPhone,
		ShippingAddr:  input.ShippingAddr,
		ClientIP:      input.ClientIP,
	})
}

// CreateGuestOrder 游客创建订单
func (s *OrderService) CreateGuestOrder(input CreateGuestOrderInput) (*models.Order, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrGuestEmailRequired
	}
	return s.createOrder(orderCreateParams{
		GuestEmail:    email,
		GuestLocale:   strings.TrimSpace(input.Locale),
		Items:         input.Items,
		PromoCode:     input.PromoCode,
		ShippingName:  input.ShippingName,
		ShippingPhone: input.ShippingPhone,
		ShippingAddr:  input.ShippingAddr,
		ClientIP:      input.ClientIP,
	})
}

type orderCreateParams struct {
	UserID        uint
	GuestEmail    string
	GuestLocale   string
	Items         []CreateOrderItem
	PromoCode     string
	ShippingName  string
	ShippingPhone string
	ShippingAddr  string
	ClientIP      string
}

func (s *OrderService) createOrder(params orderCreateParams) (*models.Order, error) {
	built, err := s.buildOrderItems(params.Items)
	if err != nil {
		return nil, err
	}

	discount := decimal.Zero
	var appliedPromo *models.PromoCode
	if strings.TrimSpace(params.PromoCode) != "" {
		validation, err := s.promoService.Validate(ValidatePromoInput{
			Code:   params.PromoCode,
			UserID: params.UserID,
			Items:  built.PromoItems,
		})
		if err != nil {
			return nil, err
		}
		discount = validation.Discount.Decimal
		appliedPromo = validation.Promo
	}

	now := time.Now()
	expireMinutes := s.expireMinutes
	if expireMinutes <= 0 {
		expireMinutes = 30
	}
	expiresAt := now.Add(time.Duration(expireMinutes) * time.Minute)

	order := &models.Order{
		OrderNo:        generateOrderNo(now),
		UserID:         params.UserID,
		GuestEmail:     params.GuestEmail,
		GuestLocale:    params.GuestLocale,
		Status:         constants.OrderStatusPendingPayment,
		Currency:       constants.DefaultCurrency,
		OriginalAmount: models.NewMoneyFromDecimal(built.OriginalAmount),
		DiscountAmount: models.NewMoneyFromDecimal(discount),
		TotalAmount:    models.NewMoneyFromDecimal(built.OriginalAmount.Sub(discount)),
		ShippingName:   params.ShippingName,
		ShippingPhone:  params.ShippingPhone,
		ShippingAddr:   params.ShippingAddr,
		ClientIP:       params.ClientIP,
		ExpiresAt:      &expiresAt,
	}
	if appliedPromo != nil {
		order.PromoCodeID = &appliedPromo.ID
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		variantRepo := s.variantRepo.WithTx(tx)

		if err := orderRepo.Create(order, built.OrderItems); err != nil {
			return err
		}

		for _, item := range built.OrderItems {
			if item.VariantID != nil {
				affected, err := variantRepo.ReserveStock(*item.VariantID, item.Quantity)
				if err != nil {
					return err
				}
				if affected == 0 {
					return ErrStockInsufficient
				}
				continue
			}
			affected, err := productRepo.ReserveStock(item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrStockInsufficient
			}
		}

		if appliedPromo != nil {
			if err := s.promoService.Redeem(tx, appliedPromo.ID, order.ID, params.UserID, models.NewMoneyFromDecimal(discount)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isPromoError(err) || errors.Is(err, ErrStockInsufficient) {
			return nil, err
		}
		logger.Errorw("order_create_failed", "error", err, "user_id", params.UserID)
		return nil, ErrOrderCreateFailed
	}

	if s.queueClient != nil {
		if err := s.queueClient.EnqueueOrderConfirmationEmail(queue.OrderConfirmationEmailPayload{
			OrderID: order.ID,
		}); err != nil {
			logger.Errorw("order_enqueue_confirmation_email_failed", "error", err, "order_id", order.ID)
		}
		if err := s.queueClient.EnqueueOrderTimeoutCancel(queue.OrderTimeoutCancelPayload{
			OrderID: order.ID,
		}, time.Duration(expireMinutes)*time.Minute); err != nil {
			logger.Errorw("order_enqueue_timeout_cancel_failed", "error", err, "order_id", order.ID)
		}
	}

	return order, nil
}

// GetUserOrder 获取用户订单
func (s *OrderService) GetUserOrder(id, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(id, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetGuestOrder 游客根据订单号与邮箱查询订单
func (s *OrderService) GetGuestOrder(orderNo, email string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNoAndGuest(orderNo, email)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListUserOrders 用户订单列表
func (s *OrderService) ListUserOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListByUser(filter)
}

// ListAdminOrders 管理端订单列表
func (s *OrderService) ListAdminOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// GetOrder 管理端订单详情
func (s *OrderService) GetOrder(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// CancelUserOrder 用户取消自己的待支付订单
func (s *OrderService) CancelUserOrder(id, userID uint) (*models.Order, error) {
	order, err := s.GetUserOrder(id, userID)
	if err != nil {
		return nil, err
	}
	if order.Status != constants.OrderStatusPendingPayment {
		return nil, ErrOrderStatusInvalid
	}
	if err := s.cancelOrder(order); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(order.ID)
}

// CancelExpiredOrder 超时取消待支付订单（worker 调用），已非待支付状态时为幂等空操作
func (s *OrderService) CancelExpiredOrder(orderID uint) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil || order.Status != constants.OrderStatusPendingPayment {
		return nil
	}
	return s.cancelOrder(order)
}

// UpdateStatus 管理端更新订单状态，按状态机约束流转
func (s *OrderService) UpdateStatus(id uint, target string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !allowedTransitions[order.Status][target] {
		return nil, ErrOrderStatusInvalid
	}

	now := time.Now()
	switch target {
	case constants.OrderStatusCanceled:
		if err := s.cancelOrder(order); err != nil {
			return nil, err
		}
	case constants.OrderStatusPaid:
		updates := map[string]interface{}{"paid_at": now, "updated_at": now}
		if err := s.orderRepo.UpdateStatus(order.ID, target, updates); err != nil {
			return nil, ErrOrderUpdateFailed
		}
	case constants.OrderStatusCompleted:
		err = models.DB.Transaction(func(tx *gorm.DB) error {
			orderRepo := s.orderRepo.WithTx(tx)
			productRepo := s.productRepo.WithTx(tx)
			variantRepo := s.variantRepo.WithTx(tx)
			if err := orderRepo.UpdateStatus(order.ID, target, map[string]interface{}{"updated_at": now}); err != nil {
				return ErrOrderUpdateFailed
			}
			return consumeStockByItems(productRepo, variantRepo, order.Items)
		})
		if err != nil {
			return nil, err
		}
	default:
		if err := s.orderRepo.UpdateStatus(order.ID, target, map[string]interface{}{"updated_at": now}); err != nil {
			return nil, ErrOrderUpdateFailed
		}
	}

	return s.orderRepo.GetByID(order.ID)
}

// cancelOrder 取消订单并释放库存占用。核销记录保留，不回滚 used_count。
func (s *OrderService) cancelOrder(order *models.Order) error {
	if order == nil {
		return ErrOrderNotFound
	}
	now := time.Now()
	return models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		variantRepo := s.variantRepo.WithTx(tx)

		updates := map[string]interface{}{
			"canceled_at": now,
			"updated_at":  now,
		}
		if err := orderRepo.UpdateStatus(order.ID, constants.OrderStatusCanceled, updates); err != nil {
			return ErrOrderUpdateFailed
		}
		for _, item := range order.Items {
			if item.VariantID != nil {
				if _, err := variantRepo.ReleaseStock(*item.VariantID, item.Quantity); err != nil {
					return err
				}
				continue
			}
			if _, err := productRepo.ReleaseStock(item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

// consumeStockByItems 订单完结时将占用库存转为实扣
func consumeStockByItems(productRepo repository.ProductRepository, variantRepo repository.ProductVariantRepository, items []models.OrderItem) error {
	for _, item := range items {
		if item.VariantID != nil {
			if _, err := variantRepo.ConsumeStock(*item.VariantID, item.Quantity); err != nil {
				return err
			}
			continue
		}
		if _, err := productRepo.ConsumeStock(item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// isPromoError 判断是否为优惠码业务错误
func isPromoError(err error) bool {
	for _, target := range []error{
		ErrPromoInvalid,
		ErrPromoNotFound,
		ErrPromoInactive,
		ErrPromoNotStarted,
		ErrPromoExpired,
		ErrPromoNotEligibleUser,
		ErrPromoGlobalLimit,
		ErrPromoUserLimit,
		ErrPromoBelowMinimum,
		ErrPromoNoEligibleProducts,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// generateOrderNo 生成订单号（时间戳 + 随机后缀）
func generateOrderNo(now time.Time) string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("MN%s%d", now.Format("20060102150405"), now.UnixNano()%100000000)
	}
	return fmt.Sprintf("MN%s%02X%02X%02X%02X", now.Format("20060102150405"), buf[0], buf[1], buf[2], buf[3])
}
