package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sport-meetup-api/internal/dto"
	"github.com/noah-isme/sport-meetup-api/internal/models"
	appErrors "github.com/noah-isme/sport-meetup-api/pkg/errors"
	"github.com/noah-isme/sport-meetup-api/pkg/jobs"
	"github.com/noah-isme/sport-meetup-api/pkg/recurrence"
)

// JobInvalidateListings is the queue job type that clears cached listings.
const JobInvalidateListings = "listing.invalidate"

// ListingCachePattern matches every cached listing page.
const ListingCachePattern = "activities:*"

const listingCacheNamespace = "activities:list"

type activityRepository interface {
	List(ctx context.Context, filter models.ActivityFilter, now time.Time) ([]models.Activity, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]models.Activity, error)
	ListByParticipant(ctx context.Context, userID string) ([]models.Activity, error)
	GetByID(ctx context.Context, id string) (*models.Activity, error)
	Create(ctx context.Context, activity *models.Activity) error
	Update(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id string) error
	CountConfirmed(ctx context.Context, ids []string) (map[string]int, error)
}

type participantRepository interface {
	Find(ctx context.Context, activityID, userID string) (*models.Participant, error)
	CountConfirmed(ctx context.Context, activityID string) (int, error)
	Create(ctx context.Context, participant *models.Participant, capacity int) (bool, error)
	Delete(ctx context.Context, activityID, userID string) error
	ListConfirmed(ctx context.Context, activityID string) ([]models.ParticipantDetail, error)
	ListUserActivityIDs(ctx context.Context, userID string) ([]string, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// ActivityServiceConfig tunes listing behaviour.
type ActivityServiceConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	CandidateLimit  int
	CacheTTL        time.Duration
	APIPrefix       string
}

// ActivityService implements browsing and management of activities.
type ActivityService struct {
	activities   activityRepository
	participants participantRepository
	cache        *CacheService
	queue        jobEnqueuer
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          ActivityServiceConfig
}

// ActivityServiceParams groups constructor dependencies.
type ActivityServiceParams struct {
	Activities   activityRepository
	Participants participantRepository
	Cache        *CacheService
	Queue        jobEnqueuer
	Metrics      *MetricsService
	Validator    *validator.Validate
	Logger       *zap.Logger
	Config       ActivityServiceConfig
}

// NewActivityService constructs the activity service.
func NewActivityService(params ActivityServiceParams) *ActivityService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Validator == nil {
		params.Validator = validator.New()
	}
	cfg := params.Config
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}
	svc := &ActivityService{
		activities:   params.Activities,
		participants: params.Participants,
		cache:        params.Cache,
		queue:        params.Queue,
		metrics:      params.Metrics,
		validator:    params.Validator,
		logger:       params.Logger,
		cfg:          cfg,
	}
	svc.validator.RegisterValidation("skill", func(fl validator.FieldLevel) bool {
		return models.SkillLevel(strings.ToLower(fl.Field().String())).Valid()
	})
	svc.validator.RegisterValidation("recurrence", func(fl validator.FieldLevel) bool {
		return recurrence.Frequency(strings.ToLower(fl.Field().String())).Valid()
	})
	return svc
}

type listingCacheEntry struct {
	Items []dto.ActivitySummary `json:"items"`
	Total int                   `json:"total"`
}

// List returns active activities ordered by their next occurrence. The bool
// reports whether the page came from cache.
func (s *ActivityService) List(ctx context.Context, filter models.ActivityFilter, userID string, now time.Time) ([]dto.ActivitySummary, *models.Pagination, bool, error) {
	filter = s.normalizeFilter(filter)

	cacheable := userID == "" && s.cache.Enabled()
	var key string
	if cacheable {
		key = Key(listingCacheNamespace, struct {
			Filter models.ActivityFilter
			Minute time.Time
		}{filter, now.UTC().Truncate(time.Minute)})
		var cached listingCacheEntry
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached.Items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: cached.Total}, true, nil
		}
	}

	done := s.metrics.TimeDBQuery("activities.list")
	candidates, err := s.activities.List(ctx, models.ActivityFilter{
		Sport:       filter.Sport,
		Skill:       filter.Skill,
		Location:    filter.Location,
		OrganizerID: filter.OrganizerID,
		Limit:       s.cfg.CandidateLimit,
	}, now)
	done()
	if err != nil {
		return nil, nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activities")
	}

	ranked := withinDays(rankActive(candidates, now), filter.DateFrom, filter.DateTo)
	start, end := paginate(len(ranked), filter.Page, filter.PageSize)
	page := ranked[start:end]

	items, err := s.summaries(ctx, page, userID)
	if err != nil {
		return nil, nil, false, err
	}

	if cacheable {
		_ = s.cache.Set(ctx, key, listingCacheEntry{Items: items, Total: len(ranked)}, s.cfg.CacheTTL)
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: len(ranked)}, false, nil
}

// Get returns the detail view of an activity evaluated at now.
func (s *ActivityService) Get(ctx context.Context, id, userID string, now time.Time) (*dto.ActivityDetail, error) {
	activity, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	roster, err := s.participants.ListConfirmed(ctx, activity.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load participants")
	}

	schedule := activity.Schedule()
	resolution := recurrence.Resolve(schedule, now)

	joined := map[string]bool{}
	participants := make([]dto.ParticipantView, 0, len(roster))
	var organizer *dto.ParticipantView
	for _, p := range roster {
		view := dto.ParticipantView{UserID: p.UserID, Name: p.DisplayName(), AvatarURL: p.AvatarURL, JoinedAt: p.JoinedAt}
		if p.UserID == userID {
			joined[activity.ID] = true
		}
		if p.UserID == activity.OrganizerID {
			v := view
			organizer = &v
		}
		participants = append(participants, view)
	}

	upcoming := []time.Time{}
	if activity.IsRecurring {
		upcoming = recurrence.UpcomingOccurrences(schedule, now, recurrence.DefaultUpcomingLimit)
	}

	return &dto.ActivityDetail{
		ActivitySummary:     summarize(*activity, resolution.Date, len(roster), userID, joined),
		Status:              resolution.Kind.String(),
		IsPast:              !recurrence.IsActive(schedule, now),
		IsSeriesEnded:       resolution.Kind == recurrence.KindEnded,
		UpcomingOccurrences: upcoming,
		Organizer:           organizer,
		Participants:        participants,
		Links:               s.links(activity.ID),
	}, nil
}

// Create validates and stores a new activity owned by organizerID.
func (s *ActivityService) Create(ctx context.Context, organizerID string, req dto.CreateActivityRequest, now time.Time) (*dto.ActivityDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}

	activity := &models.Activity{
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		SportType:       strings.TrimSpace(req.SportType),
		Location:        strings.TrimSpace(req.Location),
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		Date:            req.Date,
		MaxParticipants: req.MaxParticipants,
		SkillLevel:      models.SkillLevel(strings.ToLower(req.SkillLevel)),
		OrganizerID:     organizerID,
	}
	if err := applyRecurrence(activity, req.IsRecurring, req.RecurrenceType, req.RecurrenceEndDate); err != nil {
		return nil, err
	}

	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create activity")
	}
	s.logger.Info("activity created", zap.String("activity_id", activity.ID), zap.String("organizer_id", organizerID), zap.Bool("recurring", activity.IsRecurring))
	s.invalidateListings()

	return s.Get(ctx, activity.ID, organizerID, now)
}

// Update applies a partial update. Only the organizer may edit an activity.
func (s *ActivityService) Update(ctx context.Context, id, userID string, req dto.UpdateActivityRequest, now time.Time) (*dto.ActivityDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}

	activity, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if activity.OrganizerID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the organizer can edit this activity")
	}

	if req.Title != nil {
		activity.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		activity.Description = strings.TrimSpace(*req.Description)
	}
	if req.SportType != nil {
		activity.SportType = strings.TrimSpace(*req.SportType)
	}
	if req.Location != nil {
		activity.Location = strings.TrimSpace(*req.Location)
	}
	if req.Latitude != nil {
		activity.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		activity.Longitude = req.Longitude
	}
	if req.Date != nil {
		activity.Date = *req.Date
	}
	if req.MaxParticipants != nil {
		activity.MaxParticipants = *req.MaxParticipants
	}
	if req.SkillLevel != nil {
		activity.SkillLevel = models.SkillLevel(strings.ToLower(*req.SkillLevel))
	}

	isRecurring := activity.IsRecurring
	if req.IsRecurring != nil {
		isRecurring = *req.IsRecurring
	}
	freq := ""
	if activity.RecurrenceType != nil {
		freq = *activity.RecurrenceType
	}
	if req.RecurrenceType != nil {
		freq = *req.RecurrenceType
	}
	endDate := activity.RecurrenceEndDate
	if req.RecurrenceEndDate != nil {
		endDate = req.RecurrenceEndDate
	}
	if err := applyRecurrence(activity, isRecurring, freq, endDate); err != nil {
		return nil, err
	}

	if err := s.activities.Update(ctx, activity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update activity")
	}
	s.logger.Info("activity updated", zap.String("activity_id", activity.ID))
	s.invalidateListings()

	return s.Get(ctx, activity.ID, userID, now)
}

// Delete removes an activity and its roster. Only the organizer may delete.
func (s *ActivityService) Delete(ctx context.Context, id, userID string) error {
	activity, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if activity.OrganizerID != userID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the organizer can delete this activity")
	}
	if err := s.activities.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete activity")
	}
	s.logger.Info("activity deleted", zap.String("activity_id", id))
	s.invalidateListings()
	return nil
}

// InvalidateListings is the queue handler for JobInvalidateListings.
func (s *ActivityService) InvalidateListings(ctx context.Context, job jobs.Job) error {
	pattern, _ := job.Payload.(string)
	if pattern == "" {
		pattern = ListingCachePattern
	}
	return s.cache.Invalidate(ctx, pattern)
}

func (s *ActivityService) invalidateListings() {
	if s.queue == nil || !s.cache.Enabled() {
		return
	}
	if err := s.queue.Enqueue(jobs.Job{Type: JobInvalidateListings, Payload: ListingCachePattern}); err != nil {
		s.logger.Warn("failed to enqueue listing invalidation", zap.Error(err))
	}
}

func (s *ActivityService) load(ctx context.Context, id string) (*models.Activity, error) {
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

func (s *ActivityService) summaries(ctx context.Context, items []scheduled, userID string) ([]dto.ActivitySummary, error) {
	return summarizeAll(ctx, s.activities, s.participants, items, userID)
}

func (s *ActivityService) normalizeFilter(filter models.ActivityFilter) models.ActivityFilter {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = s.cfg.DefaultPageSize
	}
	if filter.PageSize > s.cfg.MaxPageSize {
		filter.PageSize = s.cfg.MaxPageSize
	}
	filter.Sport = strings.TrimSpace(filter.Sport)
	filter.Location = strings.TrimSpace(filter.Location)
	return filter
}

func (s *ActivityService) links(id string) dto.CalendarLinks {
	base := fmt.Sprintf("%s/activities/%s", strings.TrimSuffix(s.cfg.APIPrefix, "/"), id)
	return dto.CalendarLinks{
		ICS:            base + "/calendar.ics",
		GoogleCalendar: base + "/calendar/google",
		ScheduleCSV:    base + "/schedule.csv",
		SchedulePDF:    base + "/schedule.pdf",
	}
}

// applyRecurrence sets the recurrence fields consistently. A one-off activity
// carries none of them; a series needs a known frequency and an end date after
// its anchor.
func applyRecurrence(activity *models.Activity, isRecurring bool, freq string, endDate *time.Time) error {
	if !isRecurring {
		activity.IsRecurring = false
		activity.RecurrenceType = nil
		activity.RecurrenceEndDate = nil
		activity.RecurrenceDay = nil
		return nil
	}
	f := recurrence.Frequency(strings.ToLower(strings.TrimSpace(freq)))
	if !f.Valid() || endDate == nil {
		return appErrors.Clone(appErrors.ErrValidation, "recurring activities require recurrence type and end date")
	}
	if !endDate.After(activity.Date) {
		return appErrors.Clone(appErrors.ErrValidation, "recurrence end date must be after the start date")
	}
	value := string(f)
	weekday := int(activity.Date.Weekday())
	end := *endDate
	activity.IsRecurring = true
	activity.RecurrenceType = &value
	activity.RecurrenceEndDate = &end
	activity.RecurrenceDay = &weekday
	return nil
}
