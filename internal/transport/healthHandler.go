package transport

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck probes one optional dependency.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	version string
	checks  map[string]HealthCheck
}

func NewHealthHandler(version string, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{version: version, checks: checks}
}

// Health always answers 200: the publisher and the cache are side channels,
// so a failing one only marks the service degraded.
func (h *HealthHandler) Health(c *gin.Context) {
	body := gin.H{
		"status":  "ok",
		"service": serviceName,
	}
	if h.version != "" {
		body["version"] = h.version
	}

	if len(h.checks) > 0 {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		names := make([]string, 0, len(h.checks))
		for name := range h.checks {
			names = append(names, name)
		}
		sort.Strings(names)

		results := make(gin.H, len(names))
		for _, name := range names {
			if err := h.checks[name](ctx); err != nil {
				logrus.WithError(err).WithField("check", name).Warn("health check failed")
				results[name] = err.Error()
				body["status"] = "degraded"
				continue
			}
			results[name] = "ok"
		}
		body["checks"] = results
	}

	c.JSON(http.StatusOK, body)
}
