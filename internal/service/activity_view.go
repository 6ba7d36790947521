package service

import (
	"context"
	"sort"
	"time"

	"github.com/noah-isme/sport-meetup-api/internal/dto"
	"github.com/noah-isme/sport-meetup-api/internal/models"
	appErrors "github.com/noah-isme/sport-meetup-api/pkg/errors"
	"github.com/noah-isme/sport-meetup-api/pkg/recurrence"
)

type rosterCounter interface {
	CountConfirmed(ctx context.Context, ids []string) (map[string]int, error)
}

type membershipLister interface {
	ListUserActivityIDs(ctx context.Context, userID string) ([]string, error)
}

// scheduled pairs an activity with its next occurrence as seen at one instant.
type scheduled struct {
	activity models.Activity
	next     time.Time
}

// rankActive drops activities without a future occurrence and orders the rest
// by next occurrence. Ties keep the id order so pages stay stable.
func rankActive(activities []models.Activity, now time.Time) []scheduled {
	ranked := make([]scheduled, 0, len(activities))
	for _, a := range activities {
		s := a.Schedule()
		if !recurrence.IsActive(s, now) {
			continue
		}
		ranked = append(ranked, scheduled{activity: a, next: recurrence.NextOccurrence(s, now)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].next.Equal(ranked[j].next) {
			return ranked[i].activity.ID < ranked[j].activity.ID
		}
		return ranked[i].next.Before(ranked[j].next)
	})
	return ranked
}

// withinDays keeps items whose next occurrence falls between the start of
// from's day and the end of to's day.
func withinDays(items []scheduled, from, to *time.Time) []scheduled {
	if from == nil && to == nil {
		return items
	}
	var lower, upper time.Time
	if from != nil {
		lower = startOfDay(*from)
	}
	if to != nil {
		upper = startOfDay(*to).AddDate(0, 0, 1).Add(-time.Millisecond)
	}
	filtered := items[:0:0]
	for _, item := range items {
		if from != nil && item.next.Before(lower) {
			continue
		}
		if to != nil && item.next.After(upper) {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func summarize(a models.Activity, next time.Time, count int, userID string, joined map[string]bool) dto.ActivitySummary {
	spots := a.MaxParticipants - count
	if spots < 0 {
		spots = 0
	}
	summary := dto.ActivitySummary{
		ID:                a.ID,
		Title:             a.Title,
		Description:       a.Description,
		SportType:         a.SportType,
		Location:          a.Location,
		Latitude:          a.Latitude,
		Longitude:         a.Longitude,
		Date:              a.Date,
		NextOccurrence:    next,
		SkillLevel:        string(a.SkillLevel),
		IsRecurring:       a.IsRecurring,
		RecurrenceLabel:   a.RecurrenceLabel(),
		RecurrenceEndDate: a.RecurrenceEndDate,
		OrganizerID:       a.OrganizerID,
		MaxParticipants:   a.MaxParticipants,
		ParticipantCount:  count,
		SpotsLeft:         spots,
		IsFull:            count >= a.MaxParticipants,
	}
	if a.IsRecurring && a.RecurrenceType != nil {
		summary.RecurrenceType = *a.RecurrenceType
	}
	if userID != "" {
		summary.IsJoined = joined[a.ID]
		summary.IsOrganizer = a.OrganizerID == userID
	}
	return summary
}

func paginate(total, page, size int) (start, end int) {
	start = (page - 1) * size
	if start > total {
		start = total
	}
	end = start + size
	if end > total {
		end = total
	}
	return start, end
}

// summarizeAll decorates scheduled activities with roster counts and viewer flags.
func summarizeAll(ctx context.Context, counter rosterCounter, members membershipLister, items []scheduled, userID string) ([]dto.ActivitySummary, error) {
	result := make([]dto.ActivitySummary, 0, len(items))
	if len(items) == 0 {
		return result, nil
	}
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.activity.ID
	}

	counts, err := counter.CountConfirmed(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count participants")
	}
	joined := map[string]bool{}
	if userID != "" {
		memberOf, err := members.ListUserActivityIDs(ctx, userID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load memberships")
		}
		joined = toSet(memberOf)
	}

	for _, item := range items {
		result = append(result, summarize(item.activity, item.next, counts[item.activity.ID], userID, joined))
	}
	return result, nil
}
