package provider

import (
	"github.com/dairydrop/internal/cache"
	"github.com/dairydrop/internal/config"
	"github.com/dairydrop/internal/logger"
	"github.com/dairydrop/internal/models"
	"github.com/dairydrop/internal/queue"
	"github.com/dairydrop/internal/repository"
	"github.com/dairydrop/internal/service"
)

// Container is the dependency injection container.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo         repository.UserRepository
	DeliveryBoyRepo  repository.DeliveryBoyRepository
	CategoryRepo     repository.CategoryRepository
	ProductRepo      repository.ProductRepository
	OrderRepo        repository.OrderRepository
	CartRepo         repository.CartRepository
	PaymentRepo      repository.PaymentRepository
	AssignmentRepo   repository.AssignmentRepository
	SubscriptionRepo repository.SubscriptionRepository
	DashboardRepo    repository.DashboardRepository

	// Services
	AuthService         *service.AuthService
	UserAuthService     *service.UserAuthService
	DeliveryAuthService *service.DeliveryAuthService
	EmailService        *service.EmailService
	CaptchaService      *service.CaptchaService
	SlotService         *service.SlotService
	ProductService      *service.ProductService
	CartService         *service.CartService
	OrderService        *service.OrderService
	AssignmentService   *service.AssignmentService
	PaymentService      *service.PaymentService
	DeliveryBoyService  *service.DeliveryBoyService
	SubscriptionService *service.SubscriptionService
	DashboardService    *service.DashboardService
}

// NewContainer wires repositories and services.
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
	c.UserRepo = repository.NewUserRepository(db)
	c.DeliveryBoyRepo = repository.NewDeliveryBoyRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.AssignmentRepo = repository.NewAssignmentRepository(db)
	c.SubscriptionRepo = repository.NewSubscriptionRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
}

func (c *Container) initServices() {
	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config)
	c.UserAuthService = service.NewUserAuthService(c.UserRepo, c.AuthService, c.EmailService)
	c.DeliveryAuthService = service.NewDeliveryAuthService(c.DeliveryBoyRepo, c.AuthService)
	c.SlotService = service.NewSlotService()
	c.ProductService = service.NewProductService(c.ProductRepo, c.CategoryRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo)
	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.ProductRepo,
		c.UserRepo,
		c.DeliveryBoyRepo,
		c.AssignmentRepo,
		c.CartRepo,
		c.SlotService,
		c.QueueClient,
		c.Config.Order.ShippingFee,
		c.Config.Order.FreeShippingAbove,
	)
	c.AssignmentService = service.NewAssignmentService(c.AssignmentRepo, c.OrderRepo, c.UserRepo, c.DeliveryBoyRepo)
	c.PaymentService = service.NewPaymentService(
		c.PaymentRepo,
		c.OrderRepo,
		c.QueueClient,
		c.Config.Payment.UPIID,
		c.Config.Payment.PayeeName,
		c.Config.Payment.ExpireMinutes,
	)
	c.DeliveryBoyService = service.NewDeliveryBoyService(c.DeliveryBoyRepo, c.AuthService)
	c.SubscriptionService = service.NewSubscriptionService(c.SubscriptionRepo, c.ProductRepo)
	c.DashboardService = service.NewDashboardService(c.DashboardRepo, c.Config.Order.LowStockThreshold)
}
