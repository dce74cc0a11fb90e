// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/devmarket/devmarket-backend/internal/config"
	"github.com/devmarket/devmarket-backend/internal/handlers"
	"github.com/devmarket/devmarket-backend/internal/middleware"
	"github.com/devmarket/devmarket-backend/internal/services"
	"github.com/devmarket/devmarket-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(cfg)
	storageService, _ := services.NewStorageService(cfg)
	paymentService := services.NewPaymentService(cfg)

	authService := services.NewAuthService(db, cfg, notificationService)
	projectService := services.NewProjectService(db)
	orderService := services.NewOrderService(db, paymentService, storageService)
	reviewService := services.NewReviewService(db)
	promoService := services.NewPromoService(db)
	bankingService := services.NewBankingService(db)
	adminService := services.NewAdminService(db, orderService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	projectHandler := handlers.NewProjectHandler(projectService)
	orderHandler := handlers.NewOrderHandler(orderService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	promoHandler := handlers.NewPromoHandler(promoService)
	bankingHandler := handlers.NewBankingHandler(bankingService)
	adminHandler := handlers.NewAdminHandler(adminService)
	uploadHandler := handlers.NewUploadHandler(storageService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		{
			otpGated := auth.Group("")
			otpGated.Use(middleware.AuthRateLimit())
			{
				otpGated.POST("/register", authHandler.Register)
				otpGated.POST("/register/verify", authHandler.VerifyRegistration)
				otpGated.POST("/login", authHandler.Login)
				otpGated.POST("/login/verify", authHandler.VerifyLogin)
				otpGated.POST("/resend-otp", authHandler.ResendOTP)
				otpGated.POST("/forgot-password", authHandler.ForgotPassword)
				otpGated.POST("/reset-password", authHandler.ResetPassword)
			}

			auth.GET("/seller/:id", authHandler.GetSellerProfile)

			protected := auth.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.GET("/me", authHandler.GetProfile)
				protected.PUT("/profile", authHandler.UpdateProfile)
				protected.PUT("/role", authHandler.UpdateRole)
				protected.DELETE("/account", authHandler.DeleteAccount)
			}
		}

		// Project catalog routes
		projects := v1.Group("/projects")
		{
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/featured", projectHandler.GetFeatured)
			projects.GET("/mine", middleware.AuthRequired(), middleware.SellerRequired(), projectHandler.GetMyProjects)
			projects.GET("/:id", middleware.OptionalAuth(), projectHandler.GetProject)
			projects.GET("/:id/similar", projectHandler.GetSimilar)
			projects.GET("/:id/reviews", reviewHandler.GetProjectReviews)

			protected := projects.Group("")
			protected.Use(middleware.AuthRequired(), middleware.SellerRequired())
			{
				protected.POST("", projectHandler.CreateProject)
				protected.PUT("/:id", projectHandler.UpdateProject)
				protected.DELETE("/:id", projectHandler.DeleteProject)
			}
		}

		// Order routes
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("/stats", orderHandler.GetStats)
			orders.GET("/purchases", orderHandler.GetMyPurchases)
			orders.GET("/sales", orderHandler.GetMySales)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.GET("/:id/download", orderHandler.Download)
		}

		// Review routes
		reviews := v1.Group("/reviews")
		reviews.Use(middleware.AuthRequired())
		{
			reviews.POST("", reviewHandler.CreateReview)
			reviews.GET("/mine", reviewHandler.GetMyReviews)
			reviews.PUT("/:id", reviewHandler.UpdateReview)
			reviews.DELETE("/:id", reviewHandler.DeleteReview)
		}

		// Promo code routes
		promos := v1.Group("/promo-codes")
		promos.Use(middleware.AuthRequired())
		{
			promos.POST("/validate", promoHandler.ValidatePromoCode)

			sellerOnly := promos.Group("")
			sellerOnly.Use(middleware.SellerRequired())
			{
				sellerOnly.POST("", promoHandler.CreatePromoCode)
				sellerOnly.GET("/mine", promoHandler.GetMyPromoCodes)
				sellerOnly.DELETE("/:id", promoHandler.DeletePromoCode)
			}
		}

		// Banking details
		banking := v1.Group("/banking")
		banking.Use(middleware.AuthRequired())
		{
			banking.GET("", bankingHandler.GetBankingDetails)
			banking.PUT("", bankingHandler.UpsertBankingDetails)
		}

		// Payments
		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired())
		{
			payments.POST("/intent", paymentHandler.CreateIntent)
		}

		// Uploads
		v1.POST("/upload",
			middleware.AuthRequired(),
			middleware.SellerRequired(),
			middleware.UploadRateLimit(),
			uploadHandler.Upload,
		)

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/stats", adminHandler.GetStats)
			admin.GET("/users", adminHandler.ListUsers)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)
			admin.GET("/orders", adminHandler.ListOrders)
			admin.POST("/orders/:id/refund", adminHandler.RefundOrder)
			admin.GET("/projects", adminHandler.ListProjects)
			admin.DELETE("/projects/:id", adminHandler.DeleteProject)
			admin.POST("/reconcile", adminHandler.Reconcile)
		}
	}

	return r
}
