package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lifeos/internal/domain/calendar"
	"lifeos/internal/domain/insight"
	"lifeos/internal/domain/interpretation"
	"lifeos/internal/domain/outbox"
	"lifeos/internal/domain/user"
)

// OutboxRepository owns the outbox table. Enqueue takes the caller's
// transaction so the event insert commits (or rolls back) together with the
// domain write; everything else belongs to the dispatcher.
type OutboxRepository interface {
	Enqueue(ctx context.Context, tx DBTX, msg *outbox.Message) error

	// DequeueBatch claims up to limit dispatchable messages (status
	// pending/retry, available_at <= now), marks them sending and
	// increments attempts. Rows locked by a concurrent dispatcher are
	// skipped, never waited on.
	DequeueBatch(ctx context.Context, limit int) ([]outbox.Message, error)

	// MarkSent transitions sending -> sent. Idempotent: already
	// transitioned ids are left alone.
	MarkSent(ctx context.Context, ids []int64) error

	// MarkFailed transitions the message to retry, or to dead once
	// attempts has reached maxAttempts. availableAt never moves the
	// message earlier than it already was.
	MarkFailed(ctx context.Context, id int64, lastError string, availableAt time.Time, maxAttempts int) error

	GetByID(ctx context.Context, id int64) (outbox.Message, error)

	// RecentByType returns a user's recent delivered (sent) messages of
	// one event type, most recent first. The rule engine's lookback
	// queries go through here; limit keeps them bounded, and undelivered
	// or dead rows never count as history.
	RecentByType(ctx context.Context, userID uuid.UUID, eventType string, since time.Time, limit int) ([]outbox.Message, error)

	// ListInferenceEvents returns recent `.inferred` messages, optionally
	// restricted to one domain prefix.
	ListInferenceEvents(ctx context.Context, domain string, limit int) ([]outbox.Message, error)
}

type InsightRepository interface {
	// CreateBatch persists all insights for one delivered event in a
	// single transaction. Callers must not pass an empty batch.
	CreateBatch(ctx context.Context, records []*insight.Record) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]insight.Record, error)
}

type InterpretationRepository interface {
	Create(ctx context.Context, tx DBTX, it *interpretation.Interpretation) error
	GetByID(ctx context.Context, id int64) (interpretation.Interpretation, error)
	ListByCalendarEvent(ctx context.Context, calendarEventID int64) ([]interpretation.Interpretation, error)
	ListPendingByUser(ctx context.Context, userID uuid.UUID, limit int) ([]interpretation.Interpretation, error)

	// DeleteInferredByCalendarEvent removes inferred-status rows only;
	// reviewed rows survive re-interpretation.
	DeleteInferredByCalendarEvent(ctx context.Context, tx DBTX, calendarEventID int64) error

	SetRecordID(ctx context.Context, id int64, recordID int64) error
	UpdateReview(ctx context.Context, id int64, status interpretation.Status, recordID *int64) error
}

type CalendarRepository interface {
	Create(ctx context.Context, tx DBTX, e *calendar.Event) error
	Update(ctx context.Context, tx DBTX, e calendar.Event) error
	GetByID(ctx context.Context, id int64) (calendar.Event, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]calendar.Event, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}
