package dto

import "time"

// ActivitySummary is the listing card view of an activity evaluated at request time.
type ActivitySummary struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	SportType         string     `json:"sportType"`
	Location          string     `json:"location"`
	Latitude          *float64   `json:"latitude,omitempty"`
	Longitude         *float64   `json:"longitude,omitempty"`
	Date              time.Time  `json:"date"`
	NextOccurrence    time.Time  `json:"nextOccurrence"`
	SkillLevel        string     `json:"skillLevel"`
	IsRecurring       bool       `json:"isRecurring"`
	RecurrenceType    string     `json:"recurrenceType,omitempty"`
	RecurrenceLabel   string     `json:"recurrenceLabel,omitempty"`
	RecurrenceEndDate *time.Time `json:"recurrenceEndDate,omitempty"`
	OrganizerID       string     `json:"organizerId"`
	MaxParticipants   int        `json:"maxParticipants"`
	ParticipantCount  int        `json:"participantCount"`
	SpotsLeft         int        `json:"spotsLeft"`
	IsFull            bool       `json:"isFull"`
	IsJoined          bool       `json:"isJoined"`
	IsOrganizer       bool       `json:"isOrganizer"`
}

// ActivityDetail extends the summary with schedule and roster information.
type ActivityDetail struct {
	ActivitySummary
	Status              string            `json:"status"`
	IsPast              bool              `json:"isPast"`
	IsSeriesEnded       bool              `json:"isSeriesEnded"`
	UpcomingOccurrences []time.Time       `json:"upcomingOccurrences"`
	Organizer           *ParticipantView  `json:"organizer,omitempty"`
	Participants        []ParticipantView `json:"participants"`
	Links               CalendarLinks     `json:"links"`
}

// ParticipantView is a roster entry.
type ParticipantView struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
	JoinedAt  time.Time `json:"joinedAt,omitempty"`
}

// CalendarLinks points at the export endpoints of an activity.
type CalendarLinks struct {
	ICS            string `json:"ics"`
	GoogleCalendar string `json:"googleCalendar"`
	ScheduleCSV    string `json:"scheduleCsv,omitempty"`
	SchedulePDF    string `json:"schedulePdf,omitempty"`
}

// ActivityList is a page of listing results.
type ActivityList struct {
	Items []ActivitySummary `json:"items"`
	Total int               `json:"total"`
}

// CreateActivityRequest describes payload for creating an activity.
type CreateActivityRequest struct {
	Title             string     `json:"title" validate:"required,max=200"`
	Description       string     `json:"description" validate:"required,max=5000"`
	SportType         string     `json:"sportType" validate:"required,max=50"`
	Location          string     `json:"location" validate:"required,max=255"`
	Latitude          *float64   `json:"latitude" validate:"omitempty,latitude"`
	Longitude         *float64   `json:"longitude" validate:"omitempty,longitude"`
	Date              time.Time  `json:"date" validate:"required"`
	MaxParticipants   int        `json:"maxParticipants" validate:"required,min=1,max=1000"`
	SkillLevel        string     `json:"skillLevel" validate:"required,skill"`
	IsRecurring       bool       `json:"isRecurring"`
	RecurrenceType    string     `json:"recurrenceType" validate:"omitempty,recurrence"`
	RecurrenceEndDate *time.Time `json:"recurrenceEndDate"`
}

// UpdateActivityRequest carries a partial update. Nil fields are left unchanged.
type UpdateActivityRequest struct {
	Title             *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description       *string    `json:"description" validate:"omitempty,max=5000"`
	SportType         *string    `json:"sportType" validate:"omitempty,min=1,max=50"`
	Location          *string    `json:"location" validate:"omitempty,min=1,max=255"`
	Latitude          *float64   `json:"latitude" validate:"omitempty,latitude"`
	Longitude         *float64   `json:"longitude" validate:"omitempty,longitude"`
	Date              *time.Time `json:"date"`
	MaxParticipants   *int       `json:"maxParticipants" validate:"omitempty,min=1,max=1000"`
	SkillLevel        *string    `json:"skillLevel" validate:"omitempty,skill"`
	IsRecurring       *bool      `json:"isRecurring"`
	RecurrenceType    *string    `json:"recurrenceType" validate:"omitempty,recurrence"`
	RecurrenceEndDate *time.Time `json:"recurrenceEndDate"`
}

// ParticipationResponse reports the roster state after a join or leave.
type ParticipationResponse struct {
	ActivityID       string `json:"activityId"`
	Joined           bool   `json:"joined"`
	ParticipantCount int    `json:"participantCount"`
	SpotsLeft        int    `json:"spotsLeft"`
}
