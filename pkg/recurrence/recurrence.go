// Package recurrence computes occurrences of repeating activities from a single
// stored anchor record. Every function is pure: the caller supplies the instant
// treated as "now" so that one request evaluates all activities against the
// same clock reading.
package recurrence

import "time"

// Frequency identifies the step between two occurrences of a series.
type Frequency string

const (
	Daily    Frequency = "daily"
	Weekly   Frequency = "weekly"
	Biweekly Frequency = "biweekly"
	Monthly  Frequency = "monthly"
)

// DefaultUpcomingLimit is the lookahead shown on activity detail pages.
const DefaultUpcomingLimit = 5

// Frequencies lists the recognised frequencies in display order.
var Frequencies = []Frequency{Daily, Weekly, Biweekly, Monthly}

// Valid reports whether f is one of the recognised frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Biweekly, Monthly:
		return true
	default:
		return false
	}
}

// Label returns the human readable name of the frequency.
func (f Frequency) Label() string {
	return FormatType(string(f))
}

// days returns the fixed day step, or 0 for calendar-month stepping.
func (f Frequency) days() int {
	switch f {
	case Daily:
		return 1
	case Weekly:
		return 7
	case Biweekly:
		return 14
	default:
		return 0
	}
}

// Schedule holds the recurrence-relevant fields of an activity.
type Schedule struct {
	Date        time.Time
	IsRecurring bool
	Type        Frequency
	EndDate     *time.Time
}

// Kind tells why NextOccurrence produced its value.
type Kind int

const (
	// KindAnchor means the schedule is not recurring, or its frequency is unrecognised.
	KindAnchor Kind = iota
	// KindNotStarted means the anchor itself is still in the future.
	KindNotStarted
	// KindNext means a later occurrence was computed from the anchor.
	KindNext
	// KindEnded means no occurrence remains inside the end date bound.
	KindEnded
)

func (k Kind) String() string {
	switch k {
	case KindAnchor:
		return "anchor"
	case KindNotStarted:
		return "not_started"
	case KindNext:
		return "next"
	case KindEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Resolution is the tagged form of NextOccurrence. Date always equals the value
// NextOccurrence returns for the same input, which is the anchor for KindEnded.
type Resolution struct {
	Kind Kind
	Date time.Time
}

func (s Schedule) recurring() bool {
	return s.IsRecurring && s.Type.Valid()
}

func (s Schedule) pastEnd(t time.Time) bool {
	return s.EndDate != nil && t.After(*s.EndDate)
}

// step advances t by one period. Monthly steps chain from the previous
// occurrence and rely on time.AddDate normalisation, so Jan 31 steps to Mar 3
// (Mar 2 in leap years) and the series continues from there.
func (s Schedule) step(t time.Time) time.Time {
	if s.Type == Monthly {
		return t.AddDate(0, 1, 0)
	}
	return t.AddDate(0, 0, s.Type.days())
}

// firstAfter returns the first occurrence strictly after now. Fixed-day series
// jump to the last whole step before now; monthly series walk from the anchor.
func (s Schedule) firstAfter(now time.Time) time.Time {
	current := s.Date
	if days := s.Type.days(); days > 0 && now.After(s.Date) {
		k := int(now.Sub(s.Date) / (time.Duration(days) * 24 * time.Hour))
		for k > 0 && s.Date.AddDate(0, 0, k*days).After(now) {
			k--
		}
		current = s.Date.AddDate(0, 0, k*days)
	}
	for !current.After(now) {
		current = s.step(current)
	}
	return current
}

// Resolve classifies the schedule relative to now and returns the next occurrence.
func Resolve(s Schedule, now time.Time) Resolution {
	if !s.recurring() {
		return Resolution{Kind: KindAnchor, Date: s.Date}
	}
	if s.pastEnd(now) {
		return Resolution{Kind: KindEnded, Date: s.Date}
	}
	if s.Date.After(now) {
		return Resolution{Kind: KindNotStarted, Date: s.Date}
	}
	next := s.firstAfter(now)
	if s.pastEnd(next) {
		return Resolution{Kind: KindEnded, Date: s.Date}
	}
	return Resolution{Kind: KindNext, Date: next}
}

// NextOccurrence returns the first occurrence strictly after now. The anchor
// date is returned unchanged when the schedule is not recurring, has not
// started yet, or has ended; use Resolve to tell these cases apart.
func NextOccurrence(s Schedule, now time.Time) time.Time {
	return Resolve(s, now).Date
}

// UpcomingOccurrences returns at most limit occurrences strictly after now in
// ascending order. A non-recurring schedule yields its anchor date alone.
func UpcomingOccurrences(s Schedule, now time.Time, limit int) []time.Time {
	if limit <= 0 {
		return []time.Time{}
	}
	if !s.recurring() {
		return []time.Time{s.Date}
	}

	res := Resolve(s, now)
	if res.Kind == KindEnded {
		// every occurrence after now lies past the end date
		return []time.Time{}
	}

	occurrences := make([]time.Time, 0, limit)
	for current := res.Date; len(occurrences) < limit && !s.pastEnd(current); current = s.step(current) {
		occurrences = append(occurrences, current)
	}
	return occurrences
}

// IsActive reports whether the schedule still has an occurrence after now that
// lies within its end date.
func IsActive(s Schedule, now time.Time) bool {
	if !s.IsRecurring {
		return s.Date.After(now)
	}
	next := NextOccurrence(s, now)
	if s.pastEnd(next) {
		return false
	}
	return next.After(now)
}

// FormatType returns the display label for a recurrence type, or an empty
// string when the type is not recognised.
func FormatType(t string) string {
	switch Frequency(t) {
	case Daily:
		return "Daily"
	case Weekly:
		return "Weekly"
	case Biweekly:
		return "Every 2 weeks"
	case Monthly:
		return "Monthly"
	default:
		return ""
	}
}
