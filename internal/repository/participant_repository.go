package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sport-meetup-api/internal/models"
)

// ParticipantRepository manages activity membership rows.
type ParticipantRepository struct {
	db *sqlx.DB
}

// NewParticipantRepository constructs a ParticipantRepository.
func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Find returns the membership of a user in an activity.
func (r *ParticipantRepository) Find(ctx context.Context, activityID, userID string) (*models.Participant, error) {
	const query = `SELECT id, activity_id, user_id, status, joined_at FROM participants WHERE activity_id = $1 AND user_id = $2 LIMIT 1`
	var participant models.Participant
	if err := r.db.GetContext(ctx, &participant, query, activityID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find participant: %w", err)
	}
	return &participant, nil
}

// CountConfirmed returns the number of confirmed participants of an activity.
func (r *ParticipantRepository) CountConfirmed(ctx context.Context, activityID string) (int, error) {
	const query = `SELECT COUNT(*) FROM participants WHERE activity_id = $1 AND status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, activityID, models.ParticipantConfirmed); err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return count, nil
}

// Create inserts a membership only while the activity has fewer than capacity
// confirmed participants. It reports false when nothing was inserted, either
// because the activity is full or because the user already has a row.
func (r *ParticipantRepository) Create(ctx context.Context, participant *models.Participant, capacity int) (bool, error) {
	if participant.ID == "" {
		participant.ID = uuid.NewString()
	}
	if participant.Status == "" {
		participant.Status = models.ParticipantConfirmed
	}
	if participant.JoinedAt.IsZero() {
		participant.JoinedAt = time.Now().UTC()
	}
	const query = `INSERT INTO participants (id, activity_id, user_id, status, joined_at)
        SELECT $1, $2, $3, $4, $5
        WHERE (SELECT COUNT(*) FROM participants WHERE activity_id = $2 AND status = $6) < $7
        ON CONFLICT (activity_id, user_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query,
		participant.ID, participant.ActivityID, participant.UserID, participant.Status, participant.JoinedAt,
		models.ParticipantConfirmed, capacity)
	if err != nil {
		return false, fmt.Errorf("create participant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create participant rows: %w", err)
	}
	return affected > 0, nil
}

// Delete removes a membership. sql.ErrNoRows signals there was none.
func (r *ParticipantRepository) Delete(ctx context.Context, activityID, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM participants WHERE activity_id = $1 AND user_id = $2`, activityID, userID)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListConfirmed returns confirmed participants with their profile fields, in join order.
func (r *ParticipantRepository) ListConfirmed(ctx context.Context, activityID string) ([]models.ParticipantDetail, error) {
	const query = `SELECT p.id, p.activity_id, p.user_id, p.status, p.joined_at, u.email, u.first_name, u.last_name, u.avatar_url
        FROM participants p JOIN users u ON u.id = p.user_id
        WHERE p.activity_id = $1 AND p.status = $2 ORDER BY p.joined_at ASC`
	var participants []models.ParticipantDetail
	if err := r.db.SelectContext(ctx, &participants, query, activityID, models.ParticipantConfirmed); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}

// ListUserActivityIDs returns the ids of activities the user has confirmed for.
func (r *ParticipantRepository) ListUserActivityIDs(ctx context.Context, userID string) ([]string, error) {
	const query = `SELECT activity_id FROM participants WHERE user_id = $1 AND status = $2`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, userID, models.ParticipantConfirmed); err != nil {
		return nil, fmt.Errorf("list user activity ids: %w", err)
	}
	return ids, nil
}
