package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sport-meetup-api/internal/models"
)

const activityColumns = `a.id, a.title, a.description, a.sport_type, a.location, a.latitude, a.longitude, a.date,
        a.max_participants, a.skill_level, a.is_recurring, a.recurrence_type, a.recurrence_end_date, a.recurrence_day,
        a.organizer_id, a.created_at, a.updated_at`

// visibleCondition keeps one-off activities that have not started and
// recurring series that have not passed their end date. It over-selects:
// recurring rows are checked precisely against their next occurrence later.
const visibleCondition = `((a.is_recurring = false AND a.date > $1) OR (a.is_recurring = true AND (a.recurrence_end_date IS NULL OR a.recurrence_end_date > $1)))`

// ActivityRepository manages persistence for activities.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// List returns candidate activities visible at now, narrowed by the store-level
// filters. Rows come back ordered by anchor date; callers reorder by next occurrence.
func (r *ActivityRepository) List(ctx context.Context, filter models.ActivityFilter, now time.Time) ([]models.Activity, error) {
	args := []interface{}{now}
	conditions := []string{visibleCondition}

	if sport := strings.TrimSpace(filter.Sport); sport != "" {
		conditions = append(conditions, fmt.Sprintf("a.sport_type = $%d", len(args)+1))
		args = append(args, sport)
	}
	if skill, ok := models.ParseSkillFilter(filter.Skill); ok {
		conditions = append(conditions, fmt.Sprintf("a.skill_level = $%d", len(args)+1))
		args = append(args, string(skill))
	}
	if location := strings.TrimSpace(filter.Location); location != "" {
		conditions = append(conditions, fmt.Sprintf("a.location ILIKE $%d", len(args)+1))
		args = append(args, "%"+location+"%")
	}
	if filter.OrganizerID != "" {
		conditions = append(conditions, fmt.Sprintf("a.organizer_id = $%d", len(args)+1))
		args = append(args, filter.OrganizerID)
	}

	query := fmt.Sprintf(`SELECT %s
        FROM activities a WHERE %s ORDER BY a.date ASC, a.id ASC`, activityColumns, strings.Join(conditions, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query, args...); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

// ListByOrganizer returns every activity organised by the user, past or not.
func (r *ActivityRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]models.Activity, error) {
	query := `SELECT ` + activityColumns + `
        FROM activities a WHERE a.organizer_id = $1 ORDER BY a.date ASC`
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query, organizerID); err != nil {
		return nil, fmt.Errorf("list activities by organizer: %w", err)
	}
	return activities, nil
}

// ListByParticipant returns activities the user has confirmed for, excluding
// ones they organise.
func (r *ActivityRepository) ListByParticipant(ctx context.Context, userID string) ([]models.Activity, error) {
	query := `SELECT ` + activityColumns + `
        FROM activities a JOIN participants p ON p.activity_id = a.id
        WHERE p.user_id = $1 AND p.status = $2 AND a.organizer_id <> $1 ORDER BY a.date ASC`
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query, userID, models.ParticipantConfirmed); err != nil {
		return nil, fmt.Errorf("list activities by participant: %w", err)
	}
	return activities, nil
}

// GetByID fetches a single activity. sql.ErrNoRows is returned unwrapped.
func (r *ActivityRepository) GetByID(ctx context.Context, id string) (*models.Activity, error) {
	query := `SELECT ` + activityColumns + `
        FROM activities a WHERE a.id = $1`
	var activity models.Activity
	if err := r.db.GetContext(ctx, &activity, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return &activity, nil
}

// Create inserts the activity and registers the organizer as a confirmed
// participant in one transaction.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = now
	}
	activity.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create activity: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertActivity = `INSERT INTO activities (id, title, description, sport_type, location, latitude, longitude, date,
        max_participants, skill_level, is_recurring, recurrence_type, recurrence_end_date, recurrence_day, organizer_id, created_at, updated_at)
        VALUES (:id, :title, :description, :sport_type, :location, :latitude, :longitude, :date,
        :max_participants, :skill_level, :is_recurring, :recurrence_type, :recurrence_end_date, :recurrence_day, :organizer_id, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertActivity, activity); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}

	organizer := models.Participant{
		ID:         uuid.NewString(),
		ActivityID: activity.ID,
		UserID:     activity.OrganizerID,
		Status:     models.ParticipantConfirmed,
		JoinedAt:   now,
	}
	const insertParticipant = `INSERT INTO participants (id, activity_id, user_id, status, joined_at)
        VALUES (:id, :activity_id, :user_id, :status, :joined_at)`
	if _, err := tx.NamedExecContext(ctx, insertParticipant, organizer); err != nil {
		return fmt.Errorf("add organizer participant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create activity: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of an activity.
func (r *ActivityRepository) Update(ctx context.Context, activity *models.Activity) error {
	activity.UpdatedAt = time.Now().UTC()
	const query = `UPDATE activities SET title = :title, description = :description, sport_type = :sport_type, location = :location,
        latitude = :latitude, longitude = :longitude, date = :date, max_participants = :max_participants, skill_level = :skill_level,
        is_recurring = :is_recurring, recurrence_type = :recurrence_type, recurrence_end_date = :recurrence_end_date,
        recurrence_day = :recurrence_day, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, activity)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the activity and its participants in a single transaction.
func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete activity: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM participants WHERE activity_id = $1`, id); err != nil {
		return fmt.Errorf("delete participants: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete activity: %w", err)
	}
	return nil
}

// CountConfirmed returns confirmed participant counts keyed by activity id.
// Activities without participants are absent from the map.
func (r *ActivityRepository) CountConfirmed(ctx context.Context, ids []string) (map[string]int, error) {
	counts := make(map[string]int, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	const query = `SELECT activity_id, COUNT(*) AS count FROM participants
        WHERE activity_id = ANY($1) AND status = $2 GROUP BY activity_id`
	var rows []models.ActivityCount
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids), models.ParticipantConfirmed); err != nil {
		return nil, fmt.Errorf("count participants: %w", err)
	}
	for _, row := range rows {
		counts[row.ActivityID] = row.Count
	}
	return counts, nil
}
