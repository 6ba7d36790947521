package export

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/noah-isme/sport-meetup-api/pkg/recurrence"
)

// DefaultEventMinutes is the event length used when an activity has no explicit duration.
const DefaultEventMinutes = 60

const utcStamp = "20060102T150405Z"

// CalendarEvent is the exportable shape of an activity.
type CalendarEvent struct {
	ID                string
	Title             string
	Description       string
	Location          string
	Start             time.Time
	End               time.Time
	IsRecurring       bool
	RecurrenceType    recurrence.Frequency
	RecurrenceEndDate *time.Time
}

// EventEnd returns start plus the given duration in minutes, falling back to
// DefaultEventMinutes when minutes is not positive.
func EventEnd(start time.Time, minutes int) time.Time {
	if minutes <= 0 {
		minutes = DefaultEventMinutes
	}
	return start.Add(time.Duration(minutes) * time.Minute)
}

// BuildRRule encodes a recurrence frequency as an RFC 5545 rule body without
// the "RRULE:" prefix. Unrecognised frequencies produce an empty string.
func BuildRRule(freq recurrence.Frequency, until *time.Time) string {
	var rule string
	switch freq {
	case recurrence.Daily:
		rule = "FREQ=DAILY"
	case recurrence.Weekly:
		rule = "FREQ=WEEKLY"
	case recurrence.Biweekly:
		rule = "FREQ=WEEKLY;INTERVAL=2"
	case recurrence.Monthly:
		rule = "FREQ=MONTHLY"
	default:
		return ""
	}
	if until != nil {
		rule += ";UNTIL=" + until.UTC().Format(utcStamp)
	}
	return rule
}

// Rule returns the event's RRULE body, or an empty string for one-off events.
func (ev CalendarEvent) Rule() string {
	if !ev.IsRecurring {
		return ""
	}
	return BuildRRule(ev.RecurrenceType, ev.RecurrenceEndDate)
}

func (ev CalendarEvent) end() time.Time {
	if ev.End.IsZero() || !ev.End.After(ev.Start) {
		return EventEnd(ev.Start, DefaultEventMinutes)
	}
	return ev.End
}

// GoogleCalendarURL builds a "create event" link for Google Calendar. The
// recurrence is passed as a rule so the calendar expands it on its side.
func GoogleCalendarURL(ev CalendarEvent) string {
	params := []string{
		"action=TEMPLATE",
		"text=" + url.QueryEscape(ev.Title),
		fmt.Sprintf("dates=%s/%s", ev.Start.UTC().Format(utcStamp), ev.end().UTC().Format(utcStamp)),
		"details=" + url.QueryEscape(ev.Description),
		"location=" + url.QueryEscape(ev.Location),
	}
	if rule := ev.Rule(); rule != "" {
		params = append(params, "recur="+url.QueryEscape("RRULE:"+rule))
	}
	return "https://calendar.google.com/calendar/render?" + strings.Join(params, "&")
}
