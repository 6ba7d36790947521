package models

import "time"

// ParticipantStatus tracks a participant's place in an activity.
type ParticipantStatus string

const (
	ParticipantConfirmed ParticipantStatus = "confirmed"
	ParticipantPending   ParticipantStatus = "pending"
	ParticipantCancelled ParticipantStatus = "cancelled"
)

// Participant links a user to an activity.
type Participant struct {
	ID         string            `db:"id" json:"id"`
	ActivityID string            `db:"activity_id" json:"activity_id"`
	UserID     string            `db:"user_id" json:"user_id"`
	Status     ParticipantStatus `db:"status" json:"status"`
	JoinedAt   time.Time         `db:"joined_at" json:"joined_at"`
}

// ParticipantDetail joins participant rows with user profile fields.
type ParticipantDetail struct {
	Participant
	Email     string  `db:"email" json:"email"`
	FirstName *string `db:"first_name" json:"first_name,omitempty"`
	LastName  *string `db:"last_name" json:"last_name,omitempty"`
	AvatarURL *string `db:"avatar_url" json:"avatar_url,omitempty"`
}

// DisplayName joins first and last name, falling back to the email address.
func (p ParticipantDetail) DisplayName() string {
	return displayName(p.FirstName, p.LastName, p.Email)
}

// ActivityCount pairs an activity with its confirmed participant count.
type ActivityCount struct {
	ActivityID string `db:"activity_id"`
	Count      int    `db:"count"`
}
