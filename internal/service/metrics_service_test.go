package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceExposesCollectors(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveHTTPRequest(http.MethodGet, "/api/v1/statistics/professors/:id", http.StatusOK, 20*time.Millisecond)
	metrics.ObserveDBQuery("evaluation_stats_professor", 4*time.Millisecond)
	metrics.ObserveSubmission(SubmissionDuplicate)
	metrics.ObserveAccessDenied("career")
	metrics.RecordCacheLookup(true)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `evaluation_submissions_total{outcome="duplicate"} 1`)
	assert.Contains(t, body, `report_access_denied_total{scope="career"} 1`)
	assert.Contains(t, body, `question_cache_hit_ratio 1`)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.RequestsTotal)
	assert.InDelta(t, 20.0, snapshot.AverageRequestDurationMs, 0.001)
	assert.Equal(t, uint64(1), snapshot.DBQueryCount)
	assert.Positive(t, snapshot.Goroutines)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var metrics *MetricsService
	metrics.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	metrics.RecordCacheLookup(false)
	metrics.ObserveSubmission(SubmissionAccepted)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, metrics.Snapshot().GeneratedAt.IsZero())
}
