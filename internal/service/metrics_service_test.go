package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/activities", http.StatusOK, 20*time.Millisecond)
	m.SetActiveActivities(7)
	m.RecordJoin()
	m.RecordLeave()

	snap := m.Snapshot()
	assert.Equal(t, 7, snap.ActiveActivities)
	assert.Equal(t, uint64(1), snap.ActivityJoins)
	assert.InDelta(t, 0.5, snap.CacheHitRatio, 0.0001)
	assert.Equal(t, uint64(1), snap.RequestsTotal)
	assert.InDelta(t, 20.0, snap.AverageRequestDurationMs, 0.0001)
}

func TestMetricsServiceHandlerExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.SetActiveActivities(3)
	m.RecordJoin()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "activities_active 3")
	assert.Contains(t, rec.Body.String(), `activity_participation_total{action="join"} 1`)
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	m.RecordJoin()
	m.SetActiveActivities(1)
	assert.Zero(t, m.Snapshot().ActiveActivities)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsServiceTimesDBQueries(t *testing.T) {
	m := NewMetricsService()
	done := m.TimeDBQuery("activities.list")
	done()

	assert.Equal(t, uint64(1), m.Snapshot().DBQueryCount)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `db_query_duration_seconds_count{query="activities.list"} 1`)

	var nilMetrics *MetricsService
	nilMetrics.TimeDBQuery("activities.get")()
}
