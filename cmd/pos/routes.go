package main

import (
	"github.com/gin-gonic/gin"

	"syntra-pos/config"
	"syntra-pos/internal/gateway/handlers"
	"syntra-pos/internal/gateway/middleware"
)

func newRouter(cfg config.Config, s *services) (*gin.Engine, error) {
	rateLimit, err := middleware.RateLimit(cfg.POS.RateLimit)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	r.Use(middleware.CORS())
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(rateLimit)

	cashHandler := handlers.NewCashHTTPHandler(s.cash)
	catalogHandler := handlers.NewCatalogHTTPHandler(s.catalog)
	posHandler := handlers.NewPOSHTTPHandler(s.pos)
	inventoryHandler := handlers.NewInventoryHTTPHandler(s.inventory)
	tablesHandler := handlers.NewTablesHTTPHandler(s.tables)

	r.GET("/health", s.monitor.HealthHandler())
	r.GET("/health/detailed", s.monitor.DetailedHandler())

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth([]byte(cfg.Auth.JWTSecret)))
	{
		cash := protected.Group("/cash")
		{
			cash.POST("/registers/open", cashHandler.OpenRegister)
			cash.POST("/registers/close", cashHandler.CloseRegister)
			cash.GET("/registers/current", cashHandler.CurrentRegister)
			cash.POST("/movements", cashHandler.RecordMovement)
		}

		shifts := protected.Group("/shifts")
		{
			shifts.POST("/open", cashHandler.OpenShift)
			shifts.POST("/close", cashHandler.CloseShift)
			shifts.GET("/current", cashHandler.CurrentShift)
		}

		protected.GET("/catalog", catalogHandler.GetCatalog)
		protected.GET("/payment-methods", catalogHandler.ListPaymentMethods)

		protected.POST("/tables/:id/sessions", tablesHandler.OpenSession)
		protected.POST("/table-sessions/:id/close", tablesHandler.CloseSession)

		orders := protected.Group("/orders")
		{
			orders.POST("", posHandler.CreateOrder)
			orders.GET("", posHandler.ListOrders)
			orders.GET("/:id", posHandler.GetOrder)
			orders.POST("/:id/cancel", posHandler.CancelOrder)
			orders.POST("/:id/payments", posHandler.FinalizePayment)
		}

		inventory := protected.Group("/inventory")
		{
			inventory.GET("/low-stock", inventoryHandler.LowStock)
			inventory.GET("/products/:id/movements", inventoryHandler.ProductMovements)
		}
	}

	return r, nil
}
