package middleware

import (
	"strconv"
	"time"

	"github.com/ds124wfegd/item-analyzer/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
)

func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(route, c.Request.Method, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
