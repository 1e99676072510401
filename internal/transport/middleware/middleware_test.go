package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ds124wfegd/item-analyzer/internal/pkg/metrics"
	"github.com/ds124wfegd/item-analyzer/internal/pkg/requestid"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{name: "generated when missing"},
		{name: "kept when provided", incoming: "abc-123", wantSame: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			r := gin.New()
			r.Use(RequestID())
			r.GET("/", func(c *gin.Context) {
				seen = requestid.FromContext(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(requestid.Header, tt.incoming)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get(requestid.Header))
			if tt.wantSame {
				assert.Equal(t, tt.incoming, seen)
			}
		})
	}
}

func TestTimeout(t *testing.T) {
	var deadline time.Time
	var hasDeadline bool
	r := gin.New()
	r.Use(Timeout(time.Second))
	r.GET("/", func(c *gin.Context) {
		deadline, hasDeadline = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
}

func TestTimeoutDisabled(t *testing.T) {
	var ctx context.Context
	r := gin.New()
	r.Use(Timeout(0))
	r.GET("/", func(c *gin.Context) {
		ctx = c.Request.Context()
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	_, ok := ctx.Deadline()
	assert.False(t, ok)
}

func TestMetricsAndLogger(t *testing.T) {
	m := metrics.New()
	r := gin.New()
	r.Use(Logger(), Metrics(m))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `route="/health"`)
	assert.Contains(t, body, `route="unmatched"`)
}
