package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sport-meetup-api/internal/dto"
	"github.com/noah-isme/sport-meetup-api/internal/models"
	appErrors "github.com/noah-isme/sport-meetup-api/pkg/errors"
	"github.com/noah-isme/sport-meetup-api/pkg/recurrence"
)

type dashboardActivityRepository interface {
	List(ctx context.Context, filter models.ActivityFilter, now time.Time) ([]models.Activity, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]models.Activity, error)
	ListByParticipant(ctx context.Context, userID string) ([]models.Activity, error)
	CountConfirmed(ctx context.Context, ids []string) (map[string]int, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	HomeCandidateLimit int
	HomeSectionSize    int
}

// DashboardService composes the home page and the personal dashboard.
type DashboardService struct {
	activities dashboardActivityRepository
	members    membershipLister
	logger     *zap.Logger
	cfg        DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(activities dashboardActivityRepository, members membershipLister, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.HomeCandidateLimit <= 0 {
		cfg.HomeCandidateLimit = 30
	}
	if cfg.HomeSectionSize <= 0 {
		cfg.HomeSectionSize = 6
	}
	return &DashboardService{activities: activities, members: members, logger: logger, cfg: cfg}
}

// Home returns the soonest active activities split by whether the viewer has joined them.
func (s *DashboardService) Home(ctx context.Context, userID string, now time.Time) (*dto.HomeResponse, error) {
	candidates, err := s.activities.List(ctx, models.ActivityFilter{Limit: s.cfg.HomeCandidateLimit}, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activities")
	}

	summaries, err := summarizeAll(ctx, s.activities, s.members, rankActive(candidates, now), userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.HomeResponse{Joined: []dto.ActivitySummary{}, Available: []dto.ActivitySummary{}}
	for _, summary := range summaries {
		if summary.IsJoined {
			if len(resp.Joined) < s.cfg.HomeSectionSize {
				resp.Joined = append(resp.Joined, summary)
			}
			continue
		}
		if len(resp.Available) < s.cfg.HomeSectionSize {
			resp.Available = append(resp.Available, summary)
		}
	}
	return resp, nil
}

// Mine returns the activities the user organises or attends. An activity is
// upcoming while the series still has an occurrence ahead, so a running
// series whose anchor has passed stays upcoming.
func (s *DashboardService) Mine(ctx context.Context, userID string, now time.Time) (*dto.DashboardResponse, error) {
	organized, err := s.activities.ListByOrganizer(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load organized activities")
	}
	participating, err := s.activities.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load joined activities")
	}

	organizedTimeline, err := s.timeline(ctx, organized, userID, now)
	if err != nil {
		return nil, err
	}
	participatingTimeline, err := s.timeline(ctx, participating, userID, now)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardResponse{
		Stats: dto.DashboardStats{
			UpcomingOrganized:     len(organizedTimeline.Upcoming),
			UpcomingParticipating: len(participatingTimeline.Upcoming),
			Past:                  len(organizedTimeline.Past) + len(participatingTimeline.Past),
			Total:                 len(organized) + len(participating),
		},
		Organized:     organizedTimeline,
		Participating: participatingTimeline,
	}, nil
}

func (s *DashboardService) timeline(ctx context.Context, activities []models.Activity, userID string, now time.Time) (dto.ActivityTimeline, error) {
	var upcoming, past []scheduled
	for _, a := range activities {
		schedule := a.Schedule()
		item := scheduled{activity: a, next: recurrence.NextOccurrence(schedule, now)}
		if recurrence.IsActive(schedule, now) {
			upcoming = append(upcoming, item)
		} else {
			past = append(past, item)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].next.Before(upcoming[j].next) })
	sort.SliceStable(past, func(i, j int) bool { return past[i].activity.Date.After(past[j].activity.Date) })

	upcomingSummaries, err := summarizeAll(ctx, s.activities, s.members, upcoming, userID)
	if err != nil {
		return dto.ActivityTimeline{}, err
	}
	pastSummaries, err := summarizeAll(ctx, s.activities, s.members, past, userID)
	if err != nil {
		return dto.ActivityTimeline{}, err
	}
	return dto.ActivityTimeline{Upcoming: upcomingSummaries, Past: pastSummaries}, nil
}
