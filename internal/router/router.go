// internal/router/router.go
package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gocommerce/shop-backend/internal/config"
	"github.com/gocommerce/shop-backend/internal/handlers"
	"github.com/gocommerce/shop-backend/internal/middleware"
	"github.com/gocommerce/shop-backend/internal/services"
	"github.com/gocommerce/shop-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	// Initialize services
	notificationService := services.NewNotificationService(cfg)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage service: %w", err)
	}
	checkoutGateway := services.NewStripeGateway(cfg)

	authService := services.NewAuthService(db, cfg, notificationService)
	userService := services.NewUserService(db)
	productService := services.NewProductService(db, storageService)
	mediaService := services.NewMediaService(db, storageService)
	orderService := services.NewOrderService(db, checkoutGateway)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService)
	mediaHandler := handlers.NewMediaHandler(mediaService)
	orderHandler := handlers.NewOrderHandler(orderService, checkoutGateway)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	api := r.Group("/v1/api")

	authRequired := middleware.AuthRequired(db, cfg)
	adminRequired := middleware.AdminRequired()

	// Authentication
	auth := api.Group("/auth")
	{
		auth.POST("/sign-up", middleware.AuthRateLimit(), authHandler.SignUp)
		auth.POST("/login", middleware.AuthRateLimit(), authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/check-auth", authRequired, authHandler.CheckAuth)
		auth.GET("/verify-email/:token", authHandler.VerifyEmail)
		auth.POST("/resend-verify-email", middleware.AuthRateLimit(), authHandler.ResendVerifyEmail)
		auth.POST("/change-password", authRequired, authHandler.ChangePassword)
		auth.POST("/forgot-password", middleware.AuthRateLimit(), authHandler.ForgotPassword)
		auth.POST("/reset-password/:token", middleware.AuthRateLimit(), authHandler.ResetPassword)
	}

	// Users
	user := api.Group("/user")
	user.Use(authRequired)
	{
		user.GET("", adminRequired, userHandler.ListUsers)
		user.GET("/me", userHandler.GetMe)
		user.POST("/me/shipping-address", userHandler.SetShippingAddress)
		user.DELETE("/me/shipping-address", userHandler.DeleteShippingAddress)
		user.GET("/:id", adminRequired, userHandler.GetUser)
		user.PATCH("/:id", userHandler.UpdateUser)
		user.DELETE("/:id", adminRequired, userHandler.DeleteUser)
	}

	// Catalog
	product := api.Group("/product")
	{
		product.GET("", productHandler.ListProducts)
		product.GET("/admin", authRequired, adminRequired, productHandler.ListProductsForAdmin)
		product.GET("/:id", productHandler.GetProduct)
		product.POST("", authRequired, adminRequired, productHandler.CreateProduct)
		product.PATCH("/:id", authRequired, adminRequired, productHandler.UpdateProduct)
		product.DELETE("/:id", authRequired, adminRequired, productHandler.DeleteProduct)

		// Media
		product.POST("/:id/media", authRequired, adminRequired, middleware.UploadRateLimit(), mediaHandler.AddMedia)
		product.DELETE("/:id/media/:mediaId", authRequired, adminRequired, mediaHandler.DeleteMedia)
		product.PATCH("/:id/media/:mediaId/default", authRequired, adminRequired, mediaHandler.SetDefaultMedia)
	}

	// Orders
	order := api.Group("/order")
	{
		// The webhook authenticates by signature, not session cookie.
		order.POST("/checkout/webhook", orderHandler.HandleWebhook)

		order.POST("/checkout/create-checkout-session", authRequired, orderHandler.CreateCheckoutSession)
		order.GET("", authRequired, adminRequired, orderHandler.ListOrders)
		order.GET("/me", authRequired, orderHandler.ListMyOrders)
		order.GET("/:id", authRequired, orderHandler.GetOrder)
		order.PATCH("/:id", authRequired, adminRequired, orderHandler.UpdateOrder)
		order.DELETE("/:id", authRequired, adminRequired, orderHandler.DeleteOrder)
	}

	return r, nil
}
