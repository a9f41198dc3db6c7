package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tidemart/storefront/internal/api/handlers"
	"github.com/tidemart/storefront/internal/api/middleware"
	"github.com/tidemart/storefront/internal/cart"
	"github.com/tidemart/storefront/internal/checkout"
	"github.com/tidemart/storefront/internal/config"
	"github.com/tidemart/storefront/internal/repository"
)

// NewRouter creates and configures the Gin router
func NewRouter(
	cfg *config.Config,
	repos *repository.Repositories,
	carts cart.Store,
	pipeline *checkout.Pipeline,
	logger *zap.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/v1")
	{
		// Catalog is public
		v1.GET("/products", handlers.HandleListProducts(repos, logger))
		v1.GET("/products/:id", handlers.HandleGetProduct(repos, logger))

		buyerRoutes := v1.Group("")
		buyerRoutes.Use(middleware.AuthMiddleware(repos, logger))
		{
			buyerRoutes.GET("/cart", handlers.HandleGetCart(carts, logger))
			buyerRoutes.POST("/cart/items", handlers.HandleAddCartItem(carts, repos, pipeline, logger))
			buyerRoutes.PATCH("/cart/items/:id", handlers.HandleSetCartItemQuantity(carts, repos, pipeline, logger))
			buyerRoutes.DELETE("/cart/items/:id", handlers.HandleRemoveCartItem(carts, pipeline, logger))
			buyerRoutes.PUT("/cart/selection", handlers.HandleSetSelection(carts, pipeline, logger))

			buyerRoutes.POST("/checkout", handlers.HandleCheckout(pipeline, logger))
			buyerRoutes.GET("/checkout/:digest", handlers.HandleGetAttempt(repos, logger))
			buyerRoutes.POST("/checkout/:digest/reconcile", handlers.HandleRetryReconciliation(pipeline, logger))

			buyerRoutes.GET("/orders", handlers.HandleListOrders(repos, logger))
			buyerRoutes.GET("/orders/:id", handlers.HandleGetOrder(repos, logger))
			buyerRoutes.POST("/orders/:id/cancel", handlers.HandleCancelOrder(repos, logger))
		}
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
