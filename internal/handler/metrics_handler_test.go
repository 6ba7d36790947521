package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sport-meetup-api/internal/service"
)

func TestMetricsHandlerReady(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	handler := NewMetricsHandler(service.NewMetricsService(), map[string]ReadinessCheck{"database": ok})
	c, rec := newContext(http.MethodGet, "/ready", "", "")
	handler.Ready(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)

	handler = NewMetricsHandler(service.NewMetricsService(), map[string]ReadinessCheck{"database": ok, "cache": down})
	c, rec = newContext(http.MethodGet, "/ready", "", "")
	handler.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestMetricsHandlerHealthAndPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.SetActiveActivities(7)
	handler := NewMetricsHandler(metrics, nil)

	c, rec := newContext(http.MethodGet, "/health", "", "")
	handler.Health(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"active_activities":7`)

	c, rec = newContext(http.MethodGet, "/metrics", "", "")
	handler.Prometheus(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "activities_active 7")
}
