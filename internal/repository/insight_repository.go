package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"lifeos/internal/domain/insight"
)

type insightRepository struct {
	db DBTX
}

func NewInsightRepository(db DBTX) InsightRepository {
	return &insightRepository{db: db}
}

func (r *insightRepository) CreateBatch(ctx context.Context, records []*insight.Record) error {
	return WithTx(ctx, r.db, func(tx DBTX) error {
		for _, rec := range records {
			data := []byte("{}")
			if rec.Data != nil {
				raw, err := json.Marshal(rec.Data)
				if err != nil {
					return err
				}
				data = raw
			}
			if rec.CreatedAt.IsZero() {
				rec.CreatedAt = time.Now()
			}
			err := tx.QueryRowContext(ctx, `
                INSERT INTO insights (user_id, event_id, event_type, kind, message, severity, data, created_at)
                VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
                RETURNING id
            `,
				rec.UserID,
				rec.EventID,
				rec.EventType,
				rec.Kind,
				rec.Message,
				rec.Severity,
				data,
				rec.CreatedAt,
			).Scan(&rec.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *insightRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]insight.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, user_id, event_id, event_type, kind, message, severity, data, created_at
        FROM insights
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []insight.Record
	for rows.Next() {
		var rec insight.Record
		var data []byte
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.EventID,
			&rec.EventType,
			&rec.Kind,
			&rec.Message,
			&rec.Severity,
			&data,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &rec.Data); err != nil {
				return nil, err
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
