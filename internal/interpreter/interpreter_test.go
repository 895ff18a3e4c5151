package interpreter

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeos/internal/domain/calendar"
	"lifeos/internal/domain/interpretation"
	"lifeos/internal/domain/outbox"
	"lifeos/internal/events"
	"lifeos/internal/inference"
	"lifeos/internal/insights"
	"lifeos/internal/repository"
	lifeos_errors "lifeos/pkg/errors"
	"lifeos/pkg/logger"
)

// stubDBTX satisfies repository.DBTX; WithTx passes it straight through and
// the in-memory fakes never touch it.
type stubDBTX struct{}

func (stubDBTX) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (stubDBTX) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (stubDBTX) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

type fakeCalendarRepo struct {
	events map[int64]calendar.Event
}

func (f *fakeCalendarRepo) Create(ctx context.Context, tx repository.DBTX, e *calendar.Event) error {
	return nil
}

func (f *fakeCalendarRepo) Update(ctx context.Context, tx repository.DBTX, e calendar.Event) error {
	return nil
}

func (f *fakeCalendarRepo) GetByID(ctx context.Context, id int64) (calendar.Event, error) {
	if e, ok := f.events[id]; ok {
		return e, nil
	}
	return calendar.Event{}, lifeos_errors.ErrNotFound
}

func (f *fakeCalendarRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]calendar.Event, error) {
	return nil, nil
}

type fakeInterpRepo struct {
	nextID int64
	rows   map[int64]*interpretation.Interpretation
}

func newFakeInterpRepo() *fakeInterpRepo {
	return &fakeInterpRepo{rows: make(map[int64]*interpretation.Interpretation)}
}

func (f *fakeInterpRepo) Create(ctx context.Context, tx repository.DBTX, it *interpretation.Interpretation) error {
	f.nextID++
	it.ID = f.nextID
	it.CreatedAt = time.Now()
	copied := *it
	f.rows[it.ID] = &copied
	return nil
}

func (f *fakeInterpRepo) GetByID(ctx context.Context, id int64) (interpretation.Interpretation, error) {
	if it, ok := f.rows[id]; ok {
		return *it, nil
	}
	return interpretation.Interpretation{}, lifeos_errors.ErrNotFound
}

func (f *fakeInterpRepo) ListByCalendarEvent(ctx context.Context, calendarEventID int64) ([]interpretation.Interpretation, error) {
	var out []interpretation.Interpretation
	for _, it := range f.rows {
		if it.CalendarEventID == calendarEventID {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (f *fakeInterpRepo) ListPendingByUser(ctx context.Context, userID uuid.UUID, limit int) ([]interpretation.Interpretation, error) {
	var out []interpretation.Interpretation
	for _, it := range f.rows {
		if it.UserID == userID && it.Status == interpretation.StatusInferred {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (f *fakeInterpRepo) DeleteInferredByCalendarEvent(ctx context.Context, tx repository.DBTX, calendarEventID int64) error {
	for id, it := range f.rows {
		if it.CalendarEventID == calendarEventID && it.Status == interpretation.StatusInferred {
			delete(f.rows, id)
		}
	}
	return nil
}

func (f *fakeInterpRepo) SetRecordID(ctx context.Context, id int64, recordID int64) error {
	it, ok := f.rows[id]
	if !ok {
		return lifeos_errors.ErrNotFound
	}
	it.RecordID = &recordID
	return nil
}

func (f *fakeInterpRepo) UpdateReview(ctx context.Context, id int64, status interpretation.Status, recordID *int64) error {
	it, ok := f.rows[id]
	if !ok {
		return lifeos_errors.ErrNotFound
	}
	it.Status = status
	if recordID != nil {
		it.RecordID = recordID
	}
	return nil
}

type stubOutboxRepo struct {
	enqueued []*outbox.Message
}

func (s *stubOutboxRepo) Enqueue(ctx context.Context, tx repository.DBTX, msg *outbox.Message) error {
	msg.ID = int64(len(s.enqueued) + 1)
	s.enqueued = append(s.enqueued, msg)
	return nil
}

func (s *stubOutboxRepo) DequeueBatch(ctx context.Context, limit int) ([]outbox.Message, error) {
	return nil, nil
}

func (s *stubOutboxRepo) MarkSent(ctx context.Context, ids []int64) error { return nil }

func (s *stubOutboxRepo) MarkFailed(ctx context.Context, id int64, lastError string, availableAt time.Time, maxAttempts int) error {
	return nil
}

func (s *stubOutboxRepo) GetByID(ctx context.Context, id int64) (outbox.Message, error) {
	return outbox.Message{}, lifeos_errors.ErrNotFound
}

func (s *stubOutboxRepo) RecentByType(ctx context.Context, userID uuid.UUID, eventType string, since time.Time, limit int) ([]outbox.Message, error) {
	return nil, nil
}

func (s *stubOutboxRepo) ListInferenceEvents(ctx context.Context, domain string, limit int) ([]outbox.Message, error) {
	return nil, nil
}

func (s *stubOutboxRepo) byType(eventType string) []*outbox.Message {
	var out []*outbox.Message
	for _, msg := range s.enqueued {
		if msg.EventType == eventType {
			out = append(out, msg)
		}
	}
	return out
}

type fakeHealthWriter struct {
	nextID int64
	err    error
	calls  int
}

func (f *fakeHealthWriter) LogInferredMeal(ctx context.Context, userID uuid.UUID, calendarEventID int64, mealType string, durationMinutes int, occurredAt time.Time) (int64, error) {
	f.calls++
	return f.nextID, f.err
}

func (f *fakeHealthWriter) LogInferredWorkout(ctx context.Context, userID uuid.UUID, calendarEventID int64, workoutType string, durationMinutes int, location string, occurredAt time.Time) (int64, error) {
	f.calls++
	return f.nextID, f.err
}

type interpFixture struct {
	interp    *Interpreter
	calendar  *fakeCalendarRepo
	interps   *fakeInterpRepo
	outbox    *stubOutboxRepo
	health    *fakeHealthWriter
	telemetry *insights.Telemetry
}

func newInterpFixture() *interpFixture {
	calendarRepo := &fakeCalendarRepo{events: make(map[int64]calendar.Event)}
	interpRepo := newFakeInterpRepo()
	outboxRepo := &stubOutboxRepo{}
	health := &fakeHealthWriter{nextID: 101}
	telemetry := insights.NewTelemetry()
	emitter := inference.NewEmitter(outboxRepo, telemetry)
	adapters := NewAdapterRegistry(nil, health, nil, nil, nil, nil)

	return &interpFixture{
		interp: NewInterpreter(
			stubDBTX{}, calendarRepo, interpRepo, outboxRepo,
			NewClassifier(), adapters, emitter, logger.NewNop(),
		),
		calendar:  calendarRepo,
		interps:   interpRepo,
		outbox:    outboxRepo,
		health:    health,
		telemetry: telemetry,
	}
}

func gymEvent(userID uuid.UUID) calendar.Event {
	start := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	return calendar.Event{
		ID:        1,
		UserID:    userID,
		Title:     "Gym workout",
		Location:  "Anytime Fitness",
		StartTime: start,
		EndTime:   &end,
	}
}

func TestInterpretEventPersistsAndAutoCreates(t *testing.T) {
	fx := newInterpFixture()
	userID := uuid.New()

	created, err := fx.interp.InterpretEvent(context.Background(), gymEvent(userID))
	require.NoError(t, err)
	require.Len(t, created, 1)

	it := created[0]
	assert.Equal(t, "health", it.Domain)
	assert.Equal(t, "workout", it.RecordType)
	assert.Equal(t, interpretation.StatusInferred, it.Status)
	require.NotNil(t, it.RecordID) // 0.9 clears the auto-create bar
	assert.Equal(t, int64(101), *it.RecordID)

	stored, err := fx.interps.GetByID(context.Background(), it.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RecordID)
	assert.Equal(t, int64(101), *stored.RecordID)

	require.Len(t, fx.outbox.byType(events.EventTypeInterpretationCreated), 1)
	inferenceMsgs := fx.outbox.byType(events.EventTypeWorkoutInferred)
	require.Len(t, inferenceMsgs, 1)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(inferenceMsgs[0].Payload, &envelope))
	assert.Equal(t, "inferred", envelope["status"])
	assert.Equal(t, "rules-v1", envelope["model_version"])
	assert.Equal(t, float64(101), envelope["workout_id"])

	// No review yet, so neither flag has a value.
	assert.Nil(t, envelope["is_false_positive"])
	assert.Nil(t, envelope["is_false_negative"])
}

func TestReinterpretationPreservesReviewedRows(t *testing.T) {
	fx := newInterpFixture()
	userID := uuid.New()
	event := gymEvent(userID)

	confirmed := &interpretation.Interpretation{
		CalendarEventID: event.ID,
		UserID:          userID,
		Domain:          "health",
		RecordType:      "meal",
		ConfidenceScore: 0.7,
		Status:          interpretation.StatusConfirmed,
	}
	require.NoError(t, fx.interps.Create(context.Background(), nil, confirmed))
	stale := &interpretation.Interpretation{
		CalendarEventID: event.ID,
		UserID:          userID,
		Domain:          "habits",
		RecordType:      "habit_log",
		ConfidenceScore: 0.6,
		Status:          interpretation.StatusInferred,
	}
	require.NoError(t, fx.interps.Create(context.Background(), nil, stale))

	_, err := fx.interp.InterpretEvent(context.Background(), event)
	require.NoError(t, err)

	rows, err := fx.interps.ListByCalendarEvent(context.Background(), event.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	var statuses []interpretation.Status
	for _, row := range rows {
		statuses = append(statuses, row.Status)
	}
	assert.Contains(t, statuses, interpretation.StatusConfirmed)

	_, err = fx.interps.GetByID(context.Background(), stale.ID)
	assert.ErrorIs(t, err, lifeos_errors.ErrNotFound)
}

func TestAdapterFailureLeavesInterpretationWithoutRecord(t *testing.T) {
	fx := newInterpFixture()
	fx.health.err = errors.New("domain table unavailable")

	created, err := fx.interp.InterpretEvent(context.Background(), gymEvent(uuid.New()))
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Nil(t, created[0].RecordID)
	assert.Equal(t, 1, fx.health.calls)
}

func TestHandleCalendarEventLoadsAndInterprets(t *testing.T) {
	fx := newInterpFixture()
	userID := uuid.New()
	fx.calendar.events[1] = gymEvent(userID)

	bus := events.NewBus()
	fx.interp.Register(bus)

	err := bus.Publish(context.Background(), events.EventRecord{
		EventType: events.EventTypeCalendarEventCreated,
		Payload:   map[string]any{"calendar_event_id": float64(1), "title": "Gym workout"},
	})
	require.NoError(t, err)

	pending, err := fx.interp.ListPending(context.Background(), userID, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func seedInferred(t *testing.T, fx *interpFixture, userID uuid.UUID) *interpretation.Interpretation {
	t.Helper()
	it := &interpretation.Interpretation{
		CalendarEventID: 1,
		UserID:          userID,
		Domain:          "health",
		RecordType:      "workout",
		ConfidenceScore: 0.9,
		Status:          interpretation.StatusInferred,
	}
	require.NoError(t, fx.interps.Create(context.Background(), nil, it))
	return it
}

func TestReviewRejectsInvalidStatus(t *testing.T) {
	fx := newInterpFixture()
	userID := uuid.New()
	it := seedInferred(t, fx, userID)

	_, err := fx.interp.UpdateInterpretationStatus(context.Background(), userID, it.ID, interpretation.StatusInferred, nil)
	assert.ErrorIs(t, err, lifeos_errors.ErrInvalidStatus)
}

func TestReviewScopedToOwner(t *testing.T) {
	fx := newInterpFixture()
	it := seedInferred(t, fx, uuid.New())

	_, err := fx.interp.UpdateInterpretationStatus(context.Background(), uuid.New(), it.ID, interpretation.StatusConfirmed, nil)
	assert.ErrorIs(t, err, lifeos_errors.ErrNotFound)
}

func TestConfirmWithRecordEmitsEventAndCountsFalseNegative(t *testing.T) {
	fx := newInterpFixture()
	userID := uuid.New()
	it := seedInferred(t, fx, userID)

	recordID := int64(42)
	reviewed, err := fx.interp.UpdateInterpretationStatus(context.Background(), userID, it.ID, interpretation.StatusConfirmed, &recordID)
	require.NoError(t, err)
	assert.Equal(t, interpretation.StatusConfirmed, reviewed.Status)
	require.NotNil(t, reviewed.RecordID)
	assert.Equal(t, int64(42), *reviewed.RecordID)

	require.Len(t, fx.outbox.byType(events.EventTypeInterpretationConfirmed), 1)
	assert.Empty(t, fx.outbox.byType(events.EventTypeInterpretationRejected))

	// Classifier missed a real record: the confirm attached one.
	snap := fx.telemetry.Snapshot()
	assert.Equal(t, int64(1), snap.FalseNegatives)
	assert.Equal(t, int64(1), snap.PerDomainFalseNegatives["health"])
	assert.Equal(t, int64(0), snap.FalsePositives)

	// Reviewed events carry both flags as literal booleans, never null.
	inferenceMsgs := fx.outbox.byType(events.EventTypeWorkoutInferred)
	require.Len(t, inferenceMsgs, 1)
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(inferenceMsgs[0].Payload, &envelope))
	assert.Equal(t, true, envelope["is_false_negative"])
	assert.Equal(t, false, envelope["is_false_positive"])
}

func TestRejectCountsFalsePositive(t *testing.T) {
	fx := newInterpFixture()
	userID := uuid.New()
	it := seedInferred(t, fx, userID)

	_, err := fx.interp.UpdateInterpretationStatus(context.Background(), userID, it.ID, interpretation.StatusRejected, nil)
	require.NoError(t, err)

	require.Len(t, fx.outbox.byType(events.EventTypeInterpretationRejected), 1)
	snap := fx.telemetry.Snapshot()
	assert.Equal(t, int64(1), snap.FalsePositives)
	assert.Equal(t, int64(1), snap.PerModelFalsePositives[ModelVersion])

	inferenceMsgs := fx.outbox.byType(events.EventTypeWorkoutInferred)
	require.Len(t, inferenceMsgs, 1)
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(inferenceMsgs[0].Payload, &envelope))
	assert.Equal(t, true, envelope["is_false_positive"])
	assert.Equal(t, false, envelope["is_false_negative"])
}

func TestAmbiguousEmitsRejectedEventWithAmbiguousStatus(t *testing.T) {
	fx := newInterpFixture()
	userID := uuid.New()
	it := seedInferred(t, fx, userID)

	_, err := fx.interp.UpdateInterpretationStatus(context.Background(), userID, it.ID, interpretation.StatusAmbiguous, nil)
	require.NoError(t, err)

	rejected := fx.outbox.byType(events.EventTypeInterpretationRejected)
	require.Len(t, rejected, 1)

	var payload events.InterpretationPayload
	require.NoError(t, json.Unmarshal(rejected[0].Payload, &payload))
	assert.Equal(t, "ambiguous", payload.Status)

	assert.Equal(t, int64(1), fx.telemetry.Snapshot().FalsePositives)
}

func TestIgnoredReviewIsSilent(t *testing.T) {
	fx := newInterpFixture()
	userID := uuid.New()
	it := seedInferred(t, fx, userID)

	reviewed, err := fx.interp.UpdateInterpretationStatus(context.Background(), userID, it.ID, interpretation.StatusIgnored, nil)
	require.NoError(t, err)
	assert.Equal(t, interpretation.StatusIgnored, reviewed.Status)

	assert.Empty(t, fx.outbox.byType(events.EventTypeInterpretationConfirmed))
	assert.Empty(t, fx.outbox.byType(events.EventTypeInterpretationRejected))

	snap := fx.telemetry.Snapshot()
	assert.Equal(t, int64(0), snap.FalsePositives)
	assert.Equal(t, int64(0), snap.FalseNegatives)
}
