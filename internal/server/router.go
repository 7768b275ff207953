// Package server assembles the gin router.
package server

import (
	"github.com/gin-gonic/gin"

	"salesdb/internal/handlers"
)

type RouterConfig struct {
	RevenueHandler *handlers.RevenueHandler
	IngestHandler  *handlers.IngestHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", handlers.HealthCheck)

	revenue := router.Group("/revenue")
	{
		revenue.GET("/total", cfg.RevenueHandler.Total)
		revenue.GET("/by-product", cfg.RevenueHandler.ByProduct)
		revenue.GET("/by-category", cfg.RevenueHandler.ByCategory)
		revenue.GET("/by-region", cfg.RevenueHandler.ByRegion)
		revenue.GET("/trends", cfg.RevenueHandler.Trends)
		revenue.GET("/summary", cfg.RevenueHandler.Summary)
	}
	router.POST("/refresh-data", cfg.IngestHandler.RefreshData)

	return router
}
