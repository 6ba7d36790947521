package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sport-meetup-api/internal/models"
)

var now = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type listerStub struct {
	items []models.Activity
	err   error
	calls int
}

func (l *listerStub) List(context.Context, models.ActivityFilter, time.Time) ([]models.Activity, error) {
	l.calls++
	return l.items, l.err
}

type gaugeStub struct {
	value int
	set   bool
}

func (g *gaugeStub) SetActiveActivities(n int) {
	g.value = n
	g.set = true
}

func weekly(end time.Time) models.Activity {
	freq := "weekly"
	return models.Activity{Date: time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC), IsRecurring: true, RecurrenceType: &freq, RecurrenceEndDate: &end}
}

func TestRefreshCountsActiveActivities(t *testing.T) {
	lister := &listerStub{items: []models.Activity{
		{Date: now.Add(time.Hour)},
		{Date: now.Add(-time.Hour)},
		weekly(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
		weekly(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
	}}
	gauge := &gaugeStub{}
	m := NewActiveActivities(lister, gauge, nil)
	m.now = func() time.Time { return now }

	count, err := m.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, gauge.value)
}

func TestRefreshKeepsGaugeOnError(t *testing.T) {
	gauge := &gaugeStub{}
	m := NewActiveActivities(&listerStub{err: errors.New("db down")}, gauge, nil)

	_, err := m.Refresh(context.Background())
	assert.Error(t, err)
	assert.False(t, gauge.set)
}

func TestStartRunsImmediatelyAndRejectsBadSpec(t *testing.T) {
	lister := &listerStub{}
	m := NewActiveActivities(lister, &gaugeStub{}, nil)

	require.NoError(t, m.Start(context.Background(), "@every 1h"))
	m.Stop()
	assert.Equal(t, 1, lister.calls)

	assert.Error(t, NewActiveActivities(lister, &gaugeStub{}, nil).Start(context.Background(), "not a cron expression"))
}
