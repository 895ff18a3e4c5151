package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"lifeos/internal/domain/calendar"
	lifeos_errors "lifeos/pkg/errors"
)

type calendarRepository struct {
	db DBTX
}

func NewCalendarRepository(db DBTX) CalendarRepository {
	return &calendarRepository{db: db}
}

const calendarColumns = "id, user_id, title, description, location, start_time, end_time, created_at, updated_at"

func (r *calendarRepository) Create(ctx context.Context, tx DBTX, e *calendar.Event) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = e.CreatedAt
	return execDB.QueryRowContext(ctx, `
        INSERT INTO calendar_events (user_id, title, description, location, start_time, end_time, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id
    `,
		e.UserID,
		e.Title,
		e.Description,
		e.Location,
		e.StartTime,
		e.EndTime,
		e.CreatedAt,
		e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *calendarRepository) Update(ctx context.Context, tx DBTX, e calendar.Event) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	result, err := execDB.ExecContext(ctx, `
        UPDATE calendar_events
        SET title = $2, description = $3, location = $4, start_time = $5, end_time = $6, updated_at = now()
        WHERE id = $1 AND user_id = $7
    `, e.ID, e.Title, e.Description, e.Location, e.StartTime, e.EndTime, e.UserID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return lifeos_errors.ErrNotFound
	}
	return nil
}

func (r *calendarRepository) GetByID(ctx context.Context, id int64) (calendar.Event, error) {
	var e calendar.Event
	err := r.db.QueryRowContext(ctx, `
        SELECT `+calendarColumns+` FROM calendar_events WHERE id = $1
    `, id).Scan(
		&e.ID,
		&e.UserID,
		&e.Title,
		&e.Description,
		&e.Location,
		&e.StartTime,
		&e.EndTime,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return calendar.Event{}, lifeos_errors.ErrNotFound
	}
	return e, err
}

func (r *calendarRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]calendar.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT `+calendarColumns+` FROM calendar_events
        WHERE user_id = $1
        ORDER BY start_time DESC
        LIMIT $2
    `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []calendar.Event
	for rows.Next() {
		var e calendar.Event
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.Title,
			&e.Description,
			&e.Location,
			&e.StartTime,
			&e.EndTime,
			&e.CreatedAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
