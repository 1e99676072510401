package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecorded(t *testing.T) {
	m := New()

	m.ObserveRequest("/item/analyze", http.MethodPost, "200", 10*time.Millisecond)
	m.ObserveRequest("/item/analyze", http.MethodPost, "400", time.Millisecond)
	m.ObserveAnalysis("success", 2)
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)
	m.ObserveStage("compose", time.Now())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/item/analyze", http.MethodPost, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.analyses.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "item_analyzer_analyses_total")
	assert.Contains(t, rec.Body.String(), "item_analyzer_stage_duration_seconds")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRequest("/", http.MethodGet, "200", time.Second)
		m.ObserveStage("extract", time.Now())
		m.ObserveAnalysis("error", 1)
		m.ObserveCache(true)
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
