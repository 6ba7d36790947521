package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/sport-meetup-api/internal/dto"
	"github.com/noah-isme/sport-meetup-api/internal/models"
	appErrors "github.com/noah-isme/sport-meetup-api/pkg/errors"
	"github.com/noah-isme/sport-meetup-api/pkg/jobs"
)

type activityLoader interface {
	GetByID(ctx context.Context, id string) (*models.Activity, error)
}

// ParticipationService handles joining and leaving activities.
type ParticipationService struct {
	activities   activityLoader
	participants participantRepository
	cache        *CacheService
	queue        jobEnqueuer
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewParticipationService constructs a ParticipationService.
func NewParticipationService(activities activityLoader, participants participantRepository, cache *CacheService, queue jobEnqueuer, metrics *MetricsService, logger *zap.Logger) *ParticipationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParticipationService{activities: activities, participants: participants, cache: cache, queue: queue, metrics: metrics, logger: logger}
}

// Join adds the user to the activity's confirmed roster.
func (s *ParticipationService) Join(ctx context.Context, activityID, userID string) (*dto.ParticipationResponse, error) {
	activity, err := s.load(ctx, activityID)
	if err != nil {
		return nil, err
	}

	joined, err := s.isMember(ctx, activityID, userID)
	if err != nil {
		return nil, err
	}
	if joined {
		return nil, appErrors.Clone(appErrors.ErrAlreadyJoined, "")
	}

	count, err := s.participants.CountConfirmed(ctx, activityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count participants")
	}
	if count >= activity.MaxParticipants {
		return nil, appErrors.Clone(appErrors.ErrActivityFull, "")
	}

	done := s.metrics.TimeDBQuery("participants.create")
	inserted, err := s.participants.Create(ctx, &models.Participant{
		ActivityID: activityID,
		UserID:     userID,
		Status:     models.ParticipantConfirmed,
	}, activity.MaxParticipants)
	done()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to join activity")
	}
	if !inserted {
		// lost a race: either the same user joined concurrently or the last spot went
		if joined, _ := s.isMember(ctx, activityID, userID); joined {
			return nil, appErrors.Clone(appErrors.ErrAlreadyJoined, "")
		}
		return nil, appErrors.Clone(appErrors.ErrActivityFull, "")
	}

	s.metrics.RecordJoin()
	s.logger.Info("participant joined", zap.String("activity_id", activityID), zap.String("user_id", userID))
	s.invalidate()
	return s.state(ctx, activity, true)
}

// Leave removes the user from the roster. Organizers cannot leave their own activity.
func (s *ParticipationService) Leave(ctx context.Context, activityID, userID string) (*dto.ParticipationResponse, error) {
	activity, err := s.load(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if activity.OrganizerID == userID {
		return nil, appErrors.Clone(appErrors.ErrOrganizerCannotLeave, "")
	}

	if err := s.participants.Delete(ctx, activityID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotParticipant, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to leave activity")
	}

	s.metrics.RecordLeave()
	s.logger.Info("participant left", zap.String("activity_id", activityID), zap.String("user_id", userID))
	s.invalidate()
	return s.state(ctx, activity, false)
}

func (s *ParticipationService) load(ctx context.Context, id string) (*models.Activity, error) {
	done := s.metrics.TimeDBQuery("activities.get")
	activity, err := s.activities.GetByID(ctx, id)
	done()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}
	return activity, nil
}

func (s *ParticipationService) isMember(ctx context.Context, activityID, userID string) (bool, error) {
	_, err := s.participants.Find(ctx, activityID, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
}

func (s *ParticipationService) state(ctx context.Context, activity *models.Activity, joined bool) (*dto.ParticipationResponse, error) {
	count, err := s.participants.CountConfirmed(ctx, activity.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count participants")
	}
	spots := activity.MaxParticipants - count
	if spots < 0 {
		spots = 0
	}
	return &dto.ParticipationResponse{ActivityID: activity.ID, Joined: joined, ParticipantCount: count, SpotsLeft: spots}, nil
}

func (s *ParticipationService) invalidate() {
	if s.queue == nil || !s.cache.Enabled() {
		return
	}
	if err := s.queue.Enqueue(jobs.Job{Type: JobInvalidateListings, Payload: ListingCachePattern}); err != nil {
		s.logger.Warn("failed to enqueue listing invalidation", zap.Error(err))
	}
}
