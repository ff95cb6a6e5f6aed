package router

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dairydrop/internal/cache"
	"github.com/dairydrop/internal/config"
	adminhandlers "github.com/dairydrop/internal/http/handlers/admin"
	deliveryhandlers "github.com/dairydrop/internal/http/handlers/delivery"
	publichandlers "github.com/dairydrop/internal/http/handlers/public"
	"github.com/dairydrop/internal/logger"
	"github.com/dairydrop/internal/provider"
)

// SetupRouter wires every endpoint group: storefront, customer,
// delivery staff and back office.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	deliveryHandler := deliveryhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "dd"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "too many login attempts",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "too many login attempts",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// Static files (uploaded product images)
	r.Static("/uploads", "./uploads")

	apiV1 := r.Group("/api/v1")
	{
		// Storefront, no auth
		public := apiV1.Group("/public")
		{
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:slug", publicHandler.GetProductBySlug)
			public.GET("/categories", publicHandler.GetCategories)
			public.GET("/delivery-slots", publicHandler.GetDeliverySlots)
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
		}

		// Customer auth
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/send-verify-code", publicHandler.SendUserVerifyCode)
			auth.POST("/verify-email", publicHandler.VerifyUserEmail)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// Customer endpoints
		user := apiV1.Group("")
		user.Use(UserAuthMiddleware(c.AuthService, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetCurrentUser)
			user.PUT("/me/profile", publicHandler.UpdateUserProfile)
			user.GET("/cart", publicHandler.GetCart)
			user.POST("/cart/items", publicHandler.AddCartItem)
			user.PUT("/cart/items/:product_id", publicHandler.UpdateCartItem)
			user.DELETE("/cart/items/:product_id", publicHandler.DeleteCartItem)
			user.POST("/orders", publicHandler.CreateOrder)
			user.GET("/orders", publicHandler.ListOrders)
			user.GET("/orders/:id", publicHandler.GetOrder)
			user.POST("/orders/:id/cancel", publicHandler.CancelOrder)
			user.POST("/payments", publicHandler.CreatePayment)
			user.GET("/payments/:payment_id", publicHandler.GetPayment)
			user.POST("/payments/:payment_id/complete", publicHandler.CompletePayment)
			user.POST("/subscriptions", publicHandler.CreateSubscription)
			user.GET("/subscriptions", publicHandler.ListSubscriptions)
			user.POST("/subscriptions/:id/pause", publicHandler.PauseSubscription)
			user.POST("/subscriptions/:id/resume", publicHandler.ResumeSubscription)
			user.POST("/subscriptions/:id/cancel", publicHandler.CancelSubscription)
		}

		// Delivery staff endpoints
		delivery := apiV1.Group("/delivery")
		{
			delivery.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("phone")), deliveryHandler.Login)

			authorized := delivery.Group("")
			authorized.Use(DeliveryAuthMiddleware(c.AuthService, c.DeliveryBoyRepo))
			{
				authorized.GET("/work-queue", deliveryHandler.GetWorkQueue)
				authorized.GET("/roster", deliveryHandler.GetRoster)
				authorized.POST("/orders/:id/delivered", deliveryHandler.MarkDelivered)
			}
		}

		// Back-office endpoints
		admin := apiV1.Group("/admin")
		{
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			authorized := admin.Group("")
			authorized.Use(AdminAuthMiddleware(c.AuthService))
			{
				authorized.GET("/dashboard/overview", adminHandler.GetDashboardOverview)
				authorized.GET("/dashboard/trends", adminHandler.GetDashboardTrends)

				authorized.GET("/products", adminHandler.GetAdminProducts)
				authorized.GET("/products/:id", adminHandler.GetAdminProduct)
				authorized.POST("/products", adminHandler.CreateProduct)
				authorized.PUT("/products/:id", adminHandler.UpdateProduct)
				authorized.PUT("/products/:id/stock", adminHandler.SetProductStock)
				authorized.DELETE("/products/:id", adminHandler.DeleteProduct)

				authorized.GET("/categories", adminHandler.GetAdminCategories)
				authorized.POST("/categories", adminHandler.CreateCategory)
				authorized.PUT("/categories/:id", adminHandler.UpdateCategory)
				authorized.DELETE("/categories/:id", adminHandler.DeleteCategory)

				authorized.GET("/orders", adminHandler.AdminListOrders)
				authorized.GET("/orders/:id", adminHandler.AdminGetOrder)
				authorized.POST("/orders/:id/confirm", adminHandler.ConfirmOrder)
				authorized.POST("/orders/:id/cancel", adminHandler.AdminCancelOrder)
				authorized.PUT("/orders/:id/notes", adminHandler.UpdateOrderNotes)
				authorized.PUT("/orders/:id/priority", adminHandler.SetOrderPriority)
				authorized.PUT("/orders/:id/sequence", adminHandler.SetOrderSequence)

				authorized.GET("/payments", adminHandler.GetAdminPayments)
				authorized.GET("/payments/verification-queue", adminHandler.GetVerificationQueue)
				authorized.POST("/payments/:payment_id/verify", adminHandler.VerifyPayment)
				authorized.POST("/payments/:payment_id/reject", adminHandler.RejectPayment)

				authorized.GET("/users", adminHandler.GetAdminUsers)
				authorized.PUT("/users/:id/status", adminHandler.SetUserStatus)

				authorized.GET("/delivery-boys", adminHandler.GetDeliveryBoys)
				authorized.GET("/delivery-boys/:id", adminHandler.GetDeliveryBoy)
				authorized.POST("/delivery-boys", adminHandler.CreateDeliveryBoy)
				authorized.PUT("/delivery-boys/:id", adminHandler.UpdateDeliveryBoy)
				authorized.PUT("/delivery-boys/:id/active", adminHandler.SetDeliveryBoyActive)

				authorized.GET("/assignments", adminHandler.GetAssignments)
				authorized.GET("/assignments/users/:user_id", adminHandler.GetUserAssignment)
				authorized.POST("/assignments", adminHandler.AssignUser)
				authorized.POST("/assignments/reassign", adminHandler.ReassignUser)
				authorized.POST("/assignments/bulk-transfer", adminHandler.BulkTransferAssignments)
				authorized.PUT("/assignments/:id/sequence", adminHandler.SetAssignmentSequence)
				authorized.DELETE("/assignments/users/:user_id", adminHandler.RemoveAssignment)

				authorized.GET("/subscriptions", adminHandler.GetAdminSubscriptions)
			}
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
