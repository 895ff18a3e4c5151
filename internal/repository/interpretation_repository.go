package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"lifeos/internal/domain/interpretation"
	lifeos_errors "lifeos/pkg/errors"
)

type interpretationRepository struct {
	db DBTX
}

func NewInterpretationRepository(db DBTX) InterpretationRepository {
	return &interpretationRepository{db: db}
}

const interpretationColumns = "id, calendar_event_id, user_id, domain, record_type, confidence_score, status, classification_data, record_id, created_at, updated_at"

func (r *interpretationRepository) Create(ctx context.Context, tx DBTX, it *interpretation.Interpretation) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	data := []byte("{}")
	if it.ClassificationData != nil {
		raw, err := json.Marshal(it.ClassificationData)
		if err != nil {
			return err
		}
		data = raw
	}
	now := time.Now()
	if it.CreatedAt.IsZero() {
		it.CreatedAt = now
	}
	it.UpdatedAt = it.CreatedAt
	return execDB.QueryRowContext(ctx, `
        INSERT INTO calendar_event_interpretations
            (calendar_event_id, user_id, domain, record_type, confidence_score, status, classification_data, record_id, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id
    `,
		it.CalendarEventID,
		it.UserID,
		it.Domain,
		it.RecordType,
		it.ConfidenceScore,
		it.Status,
		data,
		it.RecordID,
		it.CreatedAt,
		it.UpdatedAt,
	).Scan(&it.ID)
}

func (r *interpretationRepository) GetByID(ctx context.Context, id int64) (interpretation.Interpretation, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT `+interpretationColumns+` FROM calendar_event_interpretations WHERE id = $1
    `, id)
	it, err := scanInterpretation(row)
	if err == sql.ErrNoRows {
		return interpretation.Interpretation{}, lifeos_errors.ErrNotFound
	}
	return it, err
}

func (r *interpretationRepository) ListByCalendarEvent(ctx context.Context, calendarEventID int64) ([]interpretation.Interpretation, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT `+interpretationColumns+` FROM calendar_event_interpretations
        WHERE calendar_event_id = $1
        ORDER BY confidence_score DESC, id
    `, calendarEventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInterpretations(rows)
}

func (r *interpretationRepository) ListPendingByUser(ctx context.Context, userID uuid.UUID, limit int) ([]interpretation.Interpretation, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT `+interpretationColumns+` FROM calendar_event_interpretations
        WHERE user_id = $1 AND status = $2
        ORDER BY created_at DESC
        LIMIT $3
    `, userID, interpretation.StatusInferred, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInterpretations(rows)
}

func (r *interpretationRepository) DeleteInferredByCalendarEvent(ctx context.Context, tx DBTX, calendarEventID int64) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	_, err := execDB.ExecContext(ctx, `
        DELETE FROM calendar_event_interpretations
        WHERE calendar_event_id = $1 AND status = $2
    `, calendarEventID, interpretation.StatusInferred)
	return err
}

func (r *interpretationRepository) SetRecordID(ctx context.Context, id int64, recordID int64) error {
	_, err := r.db.ExecContext(ctx, `
        UPDATE calendar_event_interpretations
        SET record_id = $2, updated_at = now()
        WHERE id = $1
    `, id, recordID)
	return err
}

func (r *interpretationRepository) UpdateReview(ctx context.Context, id int64, status interpretation.Status, recordID *int64) error {
	_, err := r.db.ExecContext(ctx, `
        UPDATE calendar_event_interpretations
        SET status = $2, record_id = COALESCE($3, record_id), updated_at = now()
        WHERE id = $1
    `, id, status, recordID)
	return err
}

func scanInterpretation(row rowScanner) (interpretation.Interpretation, error) {
	var it interpretation.Interpretation
	var data []byte
	err := row.Scan(
		&it.ID,
		&it.CalendarEventID,
		&it.UserID,
		&it.Domain,
		&it.RecordType,
		&it.ConfidenceScore,
		&it.Status,
		&data,
		&it.RecordID,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		return it, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &it.ClassificationData); err != nil {
			return it, err
		}
	}
	return it, nil
}

func scanInterpretations(rows *sql.Rows) ([]interpretation.Interpretation, error) {
	var items []interpretation.Interpretation
	for rows.Next() {
		it, err := scanInterpretation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
