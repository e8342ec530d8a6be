package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/amorlias/bharatbazaar-api/config"
	"github.com/amorlias/bharatbazaar-api/controllers"
	"github.com/amorlias/bharatbazaar-api/middleware"
	"github.com/amorlias/bharatbazaar-api/services"
)

func main() {
	// Basic logging
	log.Println("Starting BharatBazaar API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Apply versioned schema migrations
	db := config.GetDB()
	if err := config.RunMigrations(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migrations completed successfully")

	// Initialize collaborator services
	if _, err := services.InitS3Service(); err != nil {
		log.Printf("S3 service unavailable: %v", err)
	}
	services.InitCourierService(cfg)
	services.InitRefundService()
	services.InitNotificationPublisher(cfg.RedisAddr)

	// Initialize Gin router
	router := gin.Default()

	// CORS for the storefront and admin frontends
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.CORSOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	authRequired := middleware.EnsureValidToken(cfg)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		// Public catalog
		v1.GET("/products", controllers.ListProducts)
		v1.GET("/products/:id", controllers.GetProduct)
		v1.GET("/products/:id/availability", controllers.GetProductAvailability)
		v1.GET("/categories", controllers.ListCategories)
		v1.GET("/banners", controllers.ListBanners)
		v1.GET("/offers", controllers.ListOffers)

		// Authenticated customer routes
		auth := v1.Group("", authRequired)
		{
			auth.POST("/users", controllers.CreateUser)
			auth.GET("/users/me", controllers.GetMyProfile)
			auth.PUT("/users/me", controllers.UpdateMyProfile)

			auth.POST("/orders", controllers.CreateOrder)
			auth.GET("/orders", controllers.ListMyOrders)
			auth.GET("/orders/:id", controllers.GetOrder)
			auth.GET("/orders/:id/can-cancel", controllers.CheckCancelEligibility)
			auth.POST("/orders/:id/cancel", controllers.CancelOrder)
			auth.GET("/orders/:id/can-return", controllers.CheckReturnEligibility)
			auth.POST("/orders/:id/return", controllers.CreateReturn)
			auth.GET("/returns/:id/tracking", controllers.GetReturnTracking)

			auth.GET("/notifications", controllers.ListNotifications)
			auth.PUT("/notifications/:id/read", controllers.MarkNotificationRead)

			auth.GET("/wishlist", controllers.ListWishlist)
			auth.POST("/wishlist", controllers.AddToWishlist)
			auth.DELETE("/wishlist/:productId", controllers.RemoveFromWishlist)

			auth.POST("/uploads/evidence", controllers.UploadEvidence)
		}

		// Admin routes
		admin := v1.Group("/admin", authRequired, middleware.RequireAdmin())
		{
			admin.GET("/orders", controllers.AdminListOrders)
			admin.PUT("/orders/:id/status", controllers.AdminUpdateOrderStatus)
			admin.POST("/orders/:id/cancel", controllers.CancelOrder)

			admin.GET("/returns", controllers.AdminListReturns)
			admin.PUT("/returns/:id", controllers.AdminUpdateReturn)

			admin.GET("/inventory/report", controllers.AdminInventoryReport)
			admin.GET("/notifications", controllers.AdminListNotifications)

			admin.POST("/products", controllers.AdminCreateProduct)
			admin.PUT("/products/:id", controllers.AdminUpdateProduct)
			admin.DELETE("/products/:id", controllers.AdminDeactivateProduct)
			admin.POST("/categories", controllers.AdminCreateCategory)

			admin.POST("/banners", controllers.AdminCreateBanner)
			admin.DELETE("/banners/:id", controllers.AdminDeleteBanner)

			admin.GET("/offers", controllers.AdminListOffers)
			admin.POST("/offers", controllers.AdminCreateOffer)
			admin.PUT("/offers/:id", controllers.AdminUpdateOffer)
			admin.DELETE("/offers/:id", controllers.AdminDeleteOffer)

			admin.GET("/settings/:type", controllers.AdminGetSetting)
			admin.PUT("/settings/:type", controllers.AdminUpdateSetting)
		}
	}

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "BharatBazaar API is running",
	})
}

// databaseStatus checks database connectivity and returns migration state
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Report applied migrations
	var applied []string
	if err := db.Model(&config.SchemaMigration{}).Order("id ASC").Pluck("id", &applied).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query migrations",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Database connected",
		"migrations": applied,
	})
}
