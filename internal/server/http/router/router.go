package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/orderengine/internal/config"
	"github.com/polkiloo/orderengine/internal/server/http/handlers"
	"github.com/polkiloo/orderengine/internal/server/http/middleware"
)

// maxOrderPayload caps an inflated request body.
const maxOrderPayload = 1 << 20

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.EngineFacade, logger *slog.Logger, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest(maxOrderPayload))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	orderHandler := handlers.NewOrderHandler(facade)
	resourceHandler := handlers.NewResourceHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)

	engine.GET("/healthz", healthHandler.Check)

	api := engine.Group("/api")
	api.Use(middleware.CallerRequired())

	orders := api.Group("/orders")
	orders.POST("", orderHandler.Place)
	orders.GET("", orderHandler.List)
	orders.POST("/quote", orderHandler.Quote)
	orders.GET("/:id", orderHandler.Get)
	orders.GET("/:id/history", orderHandler.History)
	orders.POST("/:id/cancel", orderHandler.Cancel)
	orders.POST("/:id/reorder", orderHandler.Reorder)

	api.PUT("/addresses/:id/default", resourceHandler.DefaultAddress)
	api.PUT("/payment-methods/:id/default", resourceHandler.DefaultPaymentMethod)

	// Back office. Customers cannot reach these with X-User-ID alone.
	operator := engine.Group("/api/operator")
	operator.Use(middleware.OperatorRequired(cfg.OperatorToken))
	operator.POST("/orders/:id/status", orderHandler.Transition)

	return engine
}
