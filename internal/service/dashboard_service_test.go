package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sport-meetup-api/internal/models"
)

type participatingRepo struct {
	*stubActivityRepo
	participating []models.Activity
}

func (r *participatingRepo) ListByParticipant(ctx context.Context, userID string) ([]models.Activity, error) {
	return r.participating, nil
}

func TestDashboardServiceHomeSplitsSections(t *testing.T) {
	var activities []models.Activity
	for i := 0; i < 10; i++ {
		activities = append(activities, oneOff(fmt.Sprintf("a%02d", i), testNow.Add(time.Duration(i+1)*time.Hour)))
	}
	activities = append(activities, oneOff("gone", testNow.Add(-time.Hour)))
	repo := newStubActivityRepo(activities...)
	participants := newStubParticipantRepo()
	participants.add("a03", "viewer")
	participants.add("a07", "viewer")

	svc := NewDashboardService(repo, participants, nil, DashboardServiceConfig{HomeSectionSize: 6})
	resp, err := svc.Home(context.Background(), "viewer", testNow)
	require.NoError(t, err)

	require.Len(t, resp.Joined, 2)
	assert.Equal(t, "a03", resp.Joined[0].ID)
	assert.Equal(t, "a07", resp.Joined[1].ID)
	require.Len(t, resp.Available, 6)
	assert.Equal(t, "a00", resp.Available[0].ID)
	assert.Equal(t, 30, repo.listFilter.Limit)

	anonymous, err := svc.Home(context.Background(), "", testNow)
	require.NoError(t, err)
	assert.Empty(t, anonymous.Joined)
	assert.Len(t, anonymous.Available, 6)
}

func TestDashboardServiceMineUsesSeriesActivity(t *testing.T) {
	running := series("running", time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC), "weekly", timePtr(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	running.OrganizerID = "me"
	finished := oneOff("finished", testNow.AddDate(0, 0, -3))
	finished.OrganizerID = "me"
	upcoming := oneOff("upcoming", testNow.AddDate(0, 0, 2))
	upcoming.OrganizerID = "me"
	attending := oneOff("attending", testNow.AddDate(0, 0, 1))

	repo := &participatingRepo{
		stubActivityRepo: newStubActivityRepo(running, finished, upcoming),
		participating:    []models.Activity{attending},
	}
	svc := NewDashboardService(repo, newStubParticipantRepo(), nil, DashboardServiceConfig{})

	resp, err := svc.Mine(context.Background(), "me", testNow)
	require.NoError(t, err)

	require.Len(t, resp.Organized.Upcoming, 2)
	assert.Equal(t, "upcoming", resp.Organized.Upcoming[0].ID)
	assert.Equal(t, "running", resp.Organized.Upcoming[1].ID)
	assert.Equal(t, time.Date(2024, 3, 18, 18, 0, 0, 0, time.UTC), resp.Organized.Upcoming[1].NextOccurrence)
	require.Len(t, resp.Organized.Past, 1)
	assert.Equal(t, "finished", resp.Organized.Past[0].ID)
	require.Len(t, resp.Participating.Upcoming, 1)
	assert.Empty(t, resp.Participating.Past)

	assert.Equal(t, 2, resp.Stats.UpcomingOrganized)
	assert.Equal(t, 1, resp.Stats.UpcomingParticipating)
	assert.Equal(t, 1, resp.Stats.Past)
	assert.Equal(t, 4, resp.Stats.Total)
}
