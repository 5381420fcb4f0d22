package provider

import (
	"github.com/maplenest/internal/authz"
	"github.com/maplenest/internal/cache"
	"github.com/maplenest/internal/config"
	"github.com/maplenest/internal/logger"
	"github.com/maplenest/internal/models"
	"github.com/maplenest/internal/queue"
	"github.com/maplenest/internal/repository"
	"github.com/maplenest/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo      repository.AdminRepository
	UserRepo       repository.UserRepository
	CategoryRepo   repository.CategoryRepository
	ProductRepo    repository.ProductRepository
	VariantRepo    repository.ProductVariantRepository
	OrderRepo      repository.OrderRepository
	PromoRepo      repository.PromoCodeRepository
	PromoUsageRepo repository.PromoCodeUsageRepository

	// Services
	AuthzService      *authz.Service
	AuthService       *service.AuthService
	UserAuthService   *service.UserAuthService
	EmailService      *service.EmailService
	CategoryService   *service.CategoryService
	ProductService    *service.ProductService
	OrderService      *service.OrderService
	PromoService      *service.PromoService
	PromoAdminService *service.PromoAdminService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.VariantRepo = repository.NewProductVariantRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PromoRepo = repository.NewPromoCodeRepository(db)
	c.PromoUsageRepo = repository.NewPromoCodeUsageRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.QueueClient)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.VariantRepo)
	c.PromoService = service.NewPromoService(c.PromoRepo, c.PromoUsageRepo, c.Config.Promo.RequireAllProducts)
	c.PromoAdminService = service.NewPromoAdminService(c.PromoRepo, c.PromoUsageRepo)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ProductRepo, c.VariantRepo, c.PromoService, c.QueueClient, c.Config.Order.PaymentExpireMinutes)
}
