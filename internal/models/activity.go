package models

import (
	"strings"
	"time"

	"github.com/noah-isme/sport-meetup-api/pkg/recurrence"
)

// SkillLevel grades the experience expected from participants.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillAll          SkillLevel = "all"
)

// Valid reports whether the level is one of the supported values.
func (l SkillLevel) Valid() bool {
	switch l {
	case SkillBeginner, SkillIntermediate, SkillAdvanced, SkillAll:
		return true
	default:
		return false
	}
}

// ParseSkillFilter normalises a listing filter value. "All Levels" and "all"
// disable the filter.
func ParseSkillFilter(raw string) (SkillLevel, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" || value == "all levels" || value == string(SkillAll) {
		return "", false
	}
	return SkillLevel(value), true
}

// SportTypes enumerates the sports offered in forms and filters.
var SportTypes = []string{
	"Running",
	"Cycling",
	"Swimming",
	"Tennis",
	"Basketball",
	"Soccer",
	"Gym",
	"Bodybuilding",
	"Hiking",
	"Yoga",
	"Golf",
	"Volleyball",
	"Badminton",
	"Other",
}

// Activity is a single stored activity. Recurring activities are stored once;
// their occurrences are derived from Date.
type Activity struct {
	ID                string     `db:"id" json:"id"`
	Title             string     `db:"title" json:"title"`
	Description       string     `db:"description" json:"description"`
	SportType         string     `db:"sport_type" json:"sport_type"`
	Location          string     `db:"location" json:"location"`
	Latitude          *float64   `db:"latitude" json:"latitude,omitempty"`
	Longitude         *float64   `db:"longitude" json:"longitude,omitempty"`
	Date              time.Time  `db:"date" json:"date"`
	MaxParticipants   int        `db:"max_participants" json:"max_participants"`
	SkillLevel        SkillLevel `db:"skill_level" json:"skill_level"`
	IsRecurring       bool       `db:"is_recurring" json:"is_recurring"`
	RecurrenceType    *string    `db:"recurrence_type" json:"recurrence_type,omitempty"`
	RecurrenceEndDate *time.Time `db:"recurrence_end_date" json:"recurrence_end_date,omitempty"`
	RecurrenceDay     *int       `db:"recurrence_day" json:"recurrence_day,omitempty"`
	OrganizerID       string     `db:"organizer_id" json:"organizer_id"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// Schedule projects the activity onto the fields the recurrence engine reads.
func (a Activity) Schedule() recurrence.Schedule {
	s := recurrence.Schedule{
		Date:        a.Date,
		IsRecurring: a.IsRecurring,
		EndDate:     a.RecurrenceEndDate,
	}
	if a.RecurrenceType != nil {
		s.Type = recurrence.Frequency(*a.RecurrenceType)
	}
	return s
}

// RecurrenceLabel returns the display label for the recurrence type.
func (a Activity) RecurrenceLabel() string {
	if !a.IsRecurring || a.RecurrenceType == nil {
		return ""
	}
	return recurrence.FormatType(*a.RecurrenceType)
}

// ActivityFilter narrows down activity listings. Sport, skill and location are
// applied by the store; the date range applies to computed next occurrences.
type ActivityFilter struct {
	Sport       string
	Skill       string
	Location    string
	OrganizerID string
	DateFrom    *time.Time
	DateTo      *time.Time
	Limit       int
	Page        int
	PageSize    int
}
