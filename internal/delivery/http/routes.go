package http

import (
	"github.com/gin-gonic/gin"
	"github.com/woolies-greener/backend/config"
	"github.com/woolies-greener/backend/internal/logger"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(logger.RequestLogger())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/baskets", handler.GetComparison)
		v1.GET("/convert", handler.Convert)

		linkRoutes := v1.Group("/links")
		{
			linkRoutes.GET("/au/:stockcode", handler.AULink)
			linkRoutes.GET("/nz/:sku", handler.NZLink)
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/baskets", handler.ListBaskets)
			admin.POST("/baskets", handler.CreateBasket)
			admin.DELETE("/baskets/:id", handler.DeleteBasket)

			admin.GET("/products", handler.ListProducts)
			admin.POST("/products", handler.CreateProduct)
			admin.GET("/products/:id", handler.GetProduct)
			admin.PUT("/products/:id", handler.UpdateProduct)
			admin.DELETE("/products/:id", handler.DeleteProduct)

			admin.GET("/matching/search", handler.SearchRetailers)
			admin.POST("/matching", handler.CreateMatch)
		}
	}

	return router
}
