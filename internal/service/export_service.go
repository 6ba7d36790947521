package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/noah-isme/sport-meetup-api/internal/models"
	appErrors "github.com/noah-isme/sport-meetup-api/pkg/errors"
	"github.com/noah-isme/sport-meetup-api/pkg/export"
	"github.com/noah-isme/sport-meetup-api/pkg/recurrence"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string, summary ...string) ([]byte, error)
}

type icsRenderer interface {
	Render(ev export.CalendarEvent) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	EventDuration time.Duration
	UpcomingLimit int
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders calendar entries and schedules for a single activity.
// Calendar formats carry the recurrence rule; schedules list concrete dates.
type ExportService struct {
	activities activityLoader
	ics        icsRenderer
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
	cfg        ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(activities activityLoader, ics icsRenderer, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger, cfg ExportConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.EventDuration <= 0 {
		cfg.EventDuration = export.DefaultEventMinutes * time.Minute
	}
	if cfg.UpcomingLimit <= 0 {
		cfg.UpcomingLimit = 10
	}
	return &ExportService{activities: activities, ics: ics, csv: csv, pdf: pdf, logger: logger, cfg: cfg}
}

// ICS renders the activity as an iCalendar file.
func (s *ExportService) ICS(ctx context.Context, id string) (*ExportFile, error) {
	activity, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	body, err := s.ics.Render(s.event(activity))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render calendar")
	}
	return &ExportFile{Filename: slug(activity.Title) + ".ics", ContentType: "text/calendar; charset=utf-8", Body: body}, nil
}

// GoogleCalendarURL returns a Google Calendar template link for the activity.
func (s *ExportService) GoogleCalendarURL(ctx context.Context, id string) (string, error) {
	activity, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	return export.GoogleCalendarURL(s.event(activity)), nil
}

// ScheduleCSV tabulates upcoming occurrences as CSV.
func (s *ExportService) ScheduleCSV(ctx context.Context, id string, now time.Time) (*ExportFile, error) {
	activity, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	body, err := s.csv.Render(s.schedule(activity, now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule")
	}
	return &ExportFile{Filename: slug(activity.Title) + "-schedule.csv", ContentType: "text/csv", Body: body}, nil
}

// SchedulePDF tabulates upcoming occurrences as a PDF document.
func (s *ExportService) SchedulePDF(ctx context.Context, id string, now time.Time) (*ExportFile, error) {
	activity, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := []string{
		fmt.Sprintf("%s at %s", activity.SportType, activity.Location),
	}
	if label := activity.RecurrenceLabel(); label != "" {
		line := "Repeats: " + label
		if activity.RecurrenceEndDate != nil {
			line += " until " + activity.RecurrenceEndDate.Format("2006-01-02")
		}
		summary = append(summary, line)
	}
	body, err := s.pdf.Render(s.schedule(activity, now), activity.Title, summary...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule")
	}
	return &ExportFile{Filename: slug(activity.Title) + "-schedule.pdf", ContentType: "application/pdf", Body: body}, nil
}

func (s *ExportService) load(ctx context.Context, id string) (*models.Activity, error) {
	activity, err := s.activities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}
	return activity, nil
}

func (s *ExportService) minutes() int {
	return int(s.cfg.EventDuration / time.Minute)
}

// event anchors the calendar entry on the stored start date so the rule
// expands to the full series in the client's calendar.
func (s *ExportService) event(a *models.Activity) export.CalendarEvent {
	schedule := a.Schedule()
	return export.CalendarEvent{
		ID:                a.ID,
		Title:             a.Title,
		Description:       a.Description,
		Location:          a.Location,
		Start:             a.Date,
		End:               export.EventEnd(a.Date, s.minutes()),
		IsRecurring:       a.IsRecurring,
		RecurrenceType:    schedule.Type,
		RecurrenceEndDate: a.RecurrenceEndDate,
	}
}

func (s *ExportService) schedule(a *models.Activity, now time.Time) export.Dataset {
	var occurrences []time.Time
	if a.IsRecurring {
		occurrences = recurrence.UpcomingOccurrences(a.Schedule(), now, s.cfg.UpcomingLimit)
	} else if a.Date.After(now) {
		occurrences = []time.Time{a.Date}
	}
	return export.ScheduleDataset(occurrences, s.minutes())
}

func slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "activity"
	}
	return out
}
