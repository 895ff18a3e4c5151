package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DomainRecordRepository inserts speculative domain records created by the
// calendar interpreter. Every insert tags the row source "inferred" and
// links it back to the calendar event it came from.
type DomainRecordRepository interface {
	InsertTransaction(ctx context.Context, db DBTX, userID uuid.UUID, calendarEventID int64, amount float64, description string, occurredAt time.Time) (int64, error)
	InsertMeal(ctx context.Context, db DBTX, userID uuid.UUID, calendarEventID int64, mealType string, durationMinutes int, occurredAt time.Time) (int64, error)
	InsertWorkout(ctx context.Context, db DBTX, userID uuid.UUID, calendarEventID int64, workoutType string, durationMinutes int, location string, occurredAt time.Time) (int64, error)
	InsertHabitLog(ctx context.Context, db DBTX, userID uuid.UUID, calendarEventID int64, habitName string, occurredAt time.Time) (int64, error)
	InsertPracticeSession(ctx context.Context, db DBTX, userID uuid.UUID, calendarEventID int64, skillName string, durationMinutes int, occurredAt time.Time) (int64, error)
	InsertWorkSession(ctx context.Context, db DBTX, userID uuid.UUID, calendarEventID int64, description string, durationMinutes int, occurredAt time.Time) (int64, error)
	InsertInteraction(ctx context.Context, db DBTX, userID uuid.UUID, calendarEventID int64, personName, interactionType string, occurredAt time.Time) (int64, error)
}

type domainRecordRepository struct{}

func NewDomainRecordRepository() DomainRecordRepository {
	return &domainRecordRepository{}
}

func (r *domainRecordRepository) InsertTransaction(ctx context.Context, db DBTX, userID uuid.UUID, calendarEventID int64, amount float64, description string, occurredAt time.Time) (int64, error) {
	query := `
		INSERT INTO transactions (user_id, calendar_event_id, amount, description, source, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, 'inferred', $5, now())
		RETURNING id`
	var id int64
	err := db.QueryRowContext(ctx, query, userID, calendarEventID, amount, description, occurredAt).Scan(&id)
	return id, err
}

func (r *domainRecordRepository) InsertMeal(ctx context.Context, db DBTX, userID uuid.UUID, calendarEventID int64, mealType string, durationMinutes int, occurredAt time.Time) (int64, error) {
	query := `
		INSERT INTO nutrition_logs (user_id, calendar_event_id, meal_type, duration_minutes, source, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, 'inferred', $5, now())
		RETURNING id`
	var id int64
	err := db.QueryRowContext(ctx, query, userID, calendarEventID, mealType, durationMinutes, occurredAt).Scan(&id)
	return id, err
}

func (r *domainRecordRepository) InsertWorkout(ctx context.Context, db DBTX, userID uuid.UUID, calendarEventID int64, workoutType string, durationMinutes int, location string, occurredAt time.Time) (int64, error) {
	query := `
		INSERT INTO workouts (user_id, calendar_event_id, workout_type, duration_minutes, location, source, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, 'inferred', $6, now())
		RETURNING id`
	var id int64
	err := db.QueryRowContext(ctx, query, userID, calendarEventID, workoutType, durationMinutes, location, occurredAt).Scan(&id)
	return id, err
}

func (r *domainRecordRepository) InsertHabitLog(ctx context.Context, db DBTX, userID uuid.UUID, calendarEventID int64, habitName string, occurredAt time.Time) (int64, error) {
	query := `
		INSERT INTO habit_logs (user_id, calendar_event_id, habit_name, source, occurred_at, created_at)
		VALUES ($1, $2, $3, 'inferred', $4, now())
		RETURNING id`
	var id int64
	err := db.QueryRowContext(ctx, query, userID, calendarEventID, habitName, occurredAt).Scan(&id)
	return id, err
}

func (r *domainRecordRepository) InsertPracticeSession(ctx context.Context, db DBTX, userID uuid.UUID, calendarEventID int64, skillName string, durationMinutes int, occurredAt time.Time) (int64, error) {
	query := `
		INSERT INTO practice_sessions (user_id, calendar_event_id, skill_name, duration_minutes, source, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, 'inferred', $5, now())
		RETURNING id`
	var id int64
	err := db.QueryRowContext(ctx, query, userID, calendarEventID, skillName, durationMinutes, occurredAt).Scan(&id)
	return id, err
}

func (r *domainRecordRepository) InsertWorkSession(ctx context.Context, db DBTX, userID uuid.UUID, calendarEventID int64, description string, durationMinutes int, occurredAt time.Time) (int64, error) {
	query := `
		INSERT INTO work_sessions (user_id, calendar_event_id, description, duration_minutes, source, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, 'inferred', $5, now())
		RETURNING id`
	var id int64
	err := db.QueryRowContext(ctx, query, userID, calendarEventID, description, durationMinutes, occurredAt).Scan(&id)
	return id, err
}

func (r *domainRecordRepository) InsertInteraction(ctx context.Context, db DBTX, userID uuid.UUID, calendarEventID int64, personName, interactionType string, occurredAt time.Time) (int64, error) {
	query := `
		INSERT INTO interactions (user_id, calendar_event_id, person_name, interaction_type, source, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, 'inferred', $5, now())
		RETURNING id`
	var id int64
	err := db.QueryRowContext(ctx, query, userID, calendarEventID, personName, interactionType, occurredAt).Scan(&id)
	return id, err
}
