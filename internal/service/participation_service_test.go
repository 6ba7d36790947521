package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sport-meetup-api/pkg/errors"
)

func TestParticipationServiceJoin(t *testing.T) {
	activity := oneOff("a1", testNow.Add(time.Hour))
	activity.MaxParticipants = 2
	repo := newStubActivityRepo(activity)
	participants := newStubParticipantRepo()
	participants.add("a1", "org")
	metrics := NewMetricsService()
	svc := NewParticipationService(repo, participants, nil, nil, metrics, nil)
	ctx := context.Background()

	resp, err := svc.Join(ctx, "a1", "u1")
	require.NoError(t, err)
	assert.True(t, resp.Joined)
	assert.Equal(t, 2, resp.ParticipantCount)
	assert.Zero(t, resp.SpotsLeft)
	assert.Equal(t, uint64(1), metrics.Snapshot().ActivityJoins)
	assert.Equal(t, uint64(2), metrics.Snapshot().DBQueryCount)

	_, err = svc.Join(ctx, "a1", "u1")
	assert.ErrorIs(t, err, appErrors.ErrAlreadyJoined)
	assert.NotSame(t, appErrors.ErrAlreadyJoined, err)

	_, err = svc.Join(ctx, "a1", "u2")
	assert.ErrorIs(t, err, appErrors.ErrActivityFull)
	assert.NotSame(t, appErrors.ErrActivityFull, err)

	_, err = svc.Join(ctx, "missing", "u2")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestParticipationServiceLeave(t *testing.T) {
	repo := newStubActivityRepo(oneOff("a1", testNow.Add(time.Hour)))
	participants := newStubParticipantRepo()
	participants.add("a1", "org")
	participants.add("a1", "u1")
	queue := &recordingQueue{}
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	svc := NewParticipationService(repo, participants, cache, queue, nil, nil)
	ctx := context.Background()

	_, err := svc.Leave(ctx, "a1", "org")
	assert.ErrorIs(t, err, appErrors.ErrOrganizerCannotLeave)
	assert.NotSame(t, appErrors.ErrOrganizerCannotLeave, err)

	resp, err := svc.Leave(ctx, "a1", "u1")
	require.NoError(t, err)
	assert.False(t, resp.Joined)
	assert.Equal(t, 1, resp.ParticipantCount)
	assert.Equal(t, 3, resp.SpotsLeft)
	assert.Len(t, queue.jobs, 1)

	_, err = svc.Leave(ctx, "a1", "u1")
	assert.ErrorIs(t, err, appErrors.ErrNotParticipant)
	assert.NotSame(t, appErrors.ErrNotParticipant, err)
}

func TestParticipationErrorsDoNotShareSentinels(t *testing.T) {
	repo := newStubActivityRepo(oneOff("a1", testNow.Add(time.Hour)))
	participants := newStubParticipantRepo()
	participants.add("a1", "org")
	svc := NewParticipationService(repo, participants, nil, nil, nil, nil)

	_, err := svc.Leave(context.Background(), "a1", "org")
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	appErr.Message = "changed by caller"

	assert.Equal(t, "organizer cannot leave their own activity", appErrors.ErrOrganizerCannotLeave.Message)
}
