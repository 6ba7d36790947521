// Package monitor runs periodic background checks over stored activities.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/sport-meetup-api/internal/models"
	"github.com/noah-isme/sport-meetup-api/pkg/recurrence"
)

type activityLister interface {
	List(ctx context.Context, filter models.ActivityFilter, now time.Time) ([]models.Activity, error)
}

type activeGauge interface {
	SetActiveActivities(n int)
}

// ActiveActivities keeps the active-activity gauge in step with the store.
type ActiveActivities struct {
	activities activityLister
	gauge      activeGauge
	logger     *zap.Logger
	now        func() time.Time
	cron       *cron.Cron
}

// NewActiveActivities constructs the monitor.
func NewActiveActivities(activities activityLister, gauge activeGauge, logger *zap.Logger) *ActiveActivities {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActiveActivities{activities: activities, gauge: gauge, logger: logger, now: time.Now}
}

// Refresh counts activities with an occurrence still ahead and publishes the result.
func (m *ActiveActivities) Refresh(ctx context.Context) (int, error) {
	now := m.now().UTC()
	candidates, err := m.activities.List(ctx, models.ActivityFilter{}, now)
	if err != nil {
		return 0, fmt.Errorf("list activities: %w", err)
	}
	active := 0
	for _, a := range candidates {
		if recurrence.IsActive(a.Schedule(), now) {
			active++
		}
	}
	m.gauge.SetActiveActivities(active)
	return active, nil
}

// Start refreshes once and then on every tick of schedule, a standard cron
// expression or descriptor such as "@every 5m".
func (m *ActiveActivities) Start(ctx context.Context, schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { m.run(ctx) }); err != nil {
		return fmt.Errorf("schedule active activity monitor: %w", err)
	}
	m.cron = c
	m.run(ctx)
	c.Start()
	m.logger.Info("active activity monitor started", zap.String("schedule", schedule))
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (m *ActiveActivities) Stop() {
	if m.cron == nil {
		return
	}
	<-m.cron.Stop().Done()
}

func (m *ActiveActivities) run(ctx context.Context) {
	count, err := m.Refresh(ctx)
	if err != nil {
		m.logger.Warn("active activity refresh failed", zap.Error(err))
		return
	}
	m.logger.Debug("active activities refreshed", zap.Int("count", count))
}
