package transport

import (
	"net/http"
	"time"

	"github.com/ds124wfegd/item-analyzer/internal/pkg/metrics"
	"github.com/ds124wfegd/item-analyzer/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

const serviceName = "item-analyzer"

func InitRoutes(itemHandler *ItemHandler, healthHandler *HealthHandler, m *metrics.Metrics, analyzeTimeout time.Duration) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(), middleware.Metrics(m))

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	item := router.Group("/item")
	item.POST("/analyze", middleware.Timeout(analyzeTimeout), itemHandler.AnalyzeItem)

	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	return router
}
