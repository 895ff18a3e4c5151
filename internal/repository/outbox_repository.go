package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lifeos/internal/domain/outbox"
	lifeos_errors "lifeos/pkg/errors"
)

type outboxRepository struct {
	db DBTX
}

func NewOutboxRepository(db DBTX) OutboxRepository {
	return &outboxRepository{db: db}
}

const outboxColumns = "id, user_id, event_type, payload, status, attempts, available_at, last_error, created_at"

func (r *outboxRepository) Enqueue(ctx context.Context, tx DBTX, msg *outbox.Message) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	if msg.Status == "" {
		msg.Status = outbox.StatusPending
	}
	if msg.AvailableAt.IsZero() {
		msg.AvailableAt = time.Now()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	return execDB.QueryRowContext(ctx, `
        INSERT INTO outbox_messages (user_id, event_type, payload, status, attempts, available_at, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id
    `,
		msg.UserID,
		msg.EventType,
		msg.Payload,
		msg.Status,
		msg.Attempts,
		msg.AvailableAt,
		msg.CreatedAt,
	).Scan(&msg.ID)
}

// DequeueBatch claims a batch in a single statement. The inner select uses
// FOR UPDATE SKIP LOCKED so concurrent dispatchers partition the queue
// instead of blocking or double-claiming.
func (r *outboxRepository) DequeueBatch(ctx context.Context, limit int) ([]outbox.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
        UPDATE outbox_messages
        SET status = $1, attempts = attempts + 1
        WHERE id IN (
            SELECT id FROM outbox_messages
            WHERE status IN ($2, $3) AND available_at <= now()
            ORDER BY available_at, id
            LIMIT $4
            FOR UPDATE SKIP LOCKED
        )
        RETURNING `+outboxColumns+`
    `, outbox.StatusSending, outbox.StatusPending, outbox.StatusRetry, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOutboxMessages(rows)
}

func (r *outboxRepository) MarkSent(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, outbox.StatusSent)
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
        UPDATE outbox_messages
        SET status = $1, last_error = NULL
        WHERE id IN (%s) AND status = '%s'
    `, buildPlaceholders(2, len(ids)), outbox.StatusSending), args...)
	return err
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id int64, lastError string, availableAt time.Time, maxAttempts int) error {
	_, err := r.db.ExecContext(ctx, `
        UPDATE outbox_messages
        SET status = CASE WHEN attempts >= $2 THEN $3 ELSE $4 END,
            available_at = GREATEST(available_at, $5),
            last_error = $6
        WHERE id = $1 AND status = $7
    `, id, maxAttempts, outbox.StatusDead, outbox.StatusRetry, availableAt, lastError, outbox.StatusSending)
	return err
}

func (r *outboxRepository) GetByID(ctx context.Context, id int64) (outbox.Message, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT `+outboxColumns+` FROM outbox_messages WHERE id = $1
    `, id)
	msg, err := scanOutboxMessage(row)
	if err == sql.ErrNoRows {
		return outbox.Message{}, lifeos_errors.ErrNotFound
	}
	return msg, err
}

func (r *outboxRepository) RecentByType(ctx context.Context, userID uuid.UUID, eventType string, since time.Time, limit int) ([]outbox.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT `+outboxColumns+` FROM outbox_messages
        WHERE user_id = $1 AND event_type = $2 AND status = $3 AND created_at >= $4
        ORDER BY created_at DESC
        LIMIT $5
    `, userID, eventType, outbox.StatusSent, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOutboxMessages(rows)
}

func (r *outboxRepository) ListInferenceEvents(ctx context.Context, domain string, limit int) ([]outbox.Message, error) {
	pattern := "%.inferred"
	if domain != "" {
		pattern = domain + ".%.inferred"
	}
	rows, err := r.db.QueryContext(ctx, `
        SELECT `+outboxColumns+` FROM outbox_messages
        WHERE event_type LIKE $1
        ORDER BY created_at DESC
        LIMIT $2
    `, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOutboxMessages(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOutboxMessage(row rowScanner) (outbox.Message, error) {
	var msg outbox.Message
	err := row.Scan(
		&msg.ID,
		&msg.UserID,
		&msg.EventType,
		&msg.Payload,
		&msg.Status,
		&msg.Attempts,
		&msg.AvailableAt,
		&msg.LastError,
		&msg.CreatedAt,
	)
	return msg, err
}

func scanOutboxMessages(rows *sql.Rows) ([]outbox.Message, error) {
	var messages []outbox.Message
	for rows.Next() {
		msg, err := scanOutboxMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
