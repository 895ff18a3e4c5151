package insights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeos/internal/domain/insight"
	"lifeos/internal/events"
	"lifeos/pkg/logger"
)

type fakeInsightRepo struct {
	batches [][]*insight.Record
}

func (f *fakeInsightRepo) CreateBatch(ctx context.Context, records []*insight.Record) error {
	f.batches = append(f.batches, records)
	return nil
}

func (f *fakeInsightRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]insight.Record, error) {
	return nil, nil
}

func (f *fakeInsightRepo) all() []*insight.Record {
	var out []*insight.Record
	for _, batch := range f.batches {
		out = append(out, batch...)
	}
	return out
}

// fakeHistory returns canned events per event type, ignoring the window.
type fakeHistory struct {
	byType map[string][]events.EventRecord
	err    error
}

func (f *fakeHistory) RecentEvents(ctx context.Context, userID uuid.UUID, eventType string, since time.Time, limit int) ([]events.EventRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	recent := f.byType[eventType]
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent, nil
}

func newTestEngine(repo *fakeInsightRepo, hist History) (*Engine, *Telemetry) {
	telemetry := NewTelemetry()
	return NewEngine(repo, hist, telemetry, logger.NewNop()), telemetry
}

func userEvent(eventType string, payload map[string]any) events.EventRecord {
	return events.EventRecord{
		ID:        1,
		EventType: eventType,
		Payload:   payload,
		UserID:    uuid.NullUUID{UUID: uuid.New(), Valid: true},
		CreatedAt: time.Now(),
	}
}

func TestLargeTransactionProducesWarning(t *testing.T) {
	repo := &fakeInsightRepo{}
	engine, _ := newTestEngine(repo, &fakeHistory{})

	evt := userEvent(events.EventTypeTransactionCreated, map[string]any{
		"transaction_id": float64(10),
		"amount":         -750.0,
		"description":    "rent",
	})
	require.NoError(t, engine.HandleEvent(context.Background(), evt))

	records := repo.all()
	require.Len(t, records, 1)
	assert.Equal(t, "finance_large_transaction", records[0].Kind)
	assert.Equal(t, insight.SeverityWarning, records[0].Severity)
	require.NotNil(t, records[0].EventID)
	assert.Equal(t, evt.ID, *records[0].EventID)
}

func TestSmallTransactionWritesNothing(t *testing.T) {
	repo := &fakeInsightRepo{}
	engine, telemetry := newTestEngine(repo, &fakeHistory{})

	evt := userEvent(events.EventTypeTransactionCreated, map[string]any{
		"amount": 12.5,
	})
	require.NoError(t, engine.HandleEvent(context.Background(), evt))

	assert.Empty(t, repo.batches)
	snap := telemetry.Snapshot()
	assert.Equal(t, int64(1), snap.EventsProcessed)
	assert.Equal(t, int64(0), snap.EventsWithInsights)
}

func TestSpendAfterShortSleepCorrelation(t *testing.T) {
	repo := &fakeInsightRepo{}
	hist := &fakeHistory{byType: map[string][]events.EventRecord{
		events.EventTypeMetricUpdated: {
			{Payload: map[string]any{"metric": "sleep_hours", "value": 4.5}},
		},
	}}
	engine, _ := newTestEngine(repo, hist)

	evt := userEvent(events.EventTypeTransactionCreated, map[string]any{
		"amount":      149.0,
		"description": "late night shopping",
	})
	require.NoError(t, engine.HandleEvent(context.Background(), evt))

	records := repo.all()
	require.Len(t, records, 1)
	assert.Equal(t, "finance_sleep_spend", records[0].Kind)
	assert.Equal(t, insight.SeverityWarning, records[0].Severity)
	assert.Equal(t, 4.5, records[0].Data["sleep_hours"])
}

func TestTaskCompletionDuringHabitStreak(t *testing.T) {
	repo := &fakeInsightRepo{}
	hist := &fakeHistory{byType: map[string][]events.EventRecord{
		events.EventTypeHabitLogged: {
			{Payload: map[string]any{"habit_id": float64(1), "streak": float64(3)}},
			{Payload: map[string]any{"habit_id": float64(2), "streak": float64(6)}},
		},
	}}
	engine, _ := newTestEngine(repo, hist)

	evt := userEvent(events.EventTypeTaskCompleted, map[string]any{
		"task_id": float64(5),
	})
	require.NoError(t, engine.HandleEvent(context.Background(), evt))

	records := repo.all()
	require.Len(t, records, 1)
	assert.Equal(t, "habit_project_synergy", records[0].Kind)
	assert.Equal(t, 6, records[0].Data["max_streak"])
}

func TestPracticeAfterLowMoodJournal(t *testing.T) {
	repo := &fakeInsightRepo{}
	hist := &fakeHistory{byType: map[string][]events.EventRecord{
		events.EventTypeJournalEntryCreated: {
			{Payload: map[string]any{"entry_id": float64(9), "mood": "Tired"}},
		},
	}}
	engine, _ := newTestEngine(repo, hist)

	evt := userEvent(events.EventTypePracticeLogged, map[string]any{
		"skill_id":         float64(2),
		"skill_name":       "guitar",
		"duration_minutes": float64(30),
	})
	require.NoError(t, engine.HandleEvent(context.Background(), evt))

	records := repo.all()
	require.Len(t, records, 1)
	assert.Equal(t, "skill_mood_uplift", records[0].Kind)
	assert.Equal(t, "tired", records[0].Data["mood"])
}

func TestRuleErrorDoesNotSinkSiblingRules(t *testing.T) {
	repo := &fakeInsightRepo{}
	// History failure breaks the cross-domain rule but not the single-event
	// rule on the same type.
	hist := &fakeHistory{err: errors.New("history unavailable")}
	engine, _ := newTestEngine(repo, hist)

	evt := userEvent(events.EventTypeTransactionCreated, map[string]any{
		"amount": 900.0,
	})
	require.NoError(t, engine.HandleEvent(context.Background(), evt))

	records := repo.all()
	require.Len(t, records, 1)
	assert.Equal(t, "finance_large_transaction", records[0].Kind)
}

func TestEventWithoutUserWritesNothing(t *testing.T) {
	repo := &fakeInsightRepo{}
	engine, _ := newTestEngine(repo, &fakeHistory{})

	evt := events.EventRecord{
		ID:        3,
		EventType: events.EventTypeTransactionCreated,
		Payload:   map[string]any{"amount": 900.0},
		CreatedAt: time.Now(),
	}
	require.NoError(t, engine.HandleEvent(context.Background(), evt))
	assert.Empty(t, repo.batches)
}

func TestProductiveDayNeedsThreeCompletions(t *testing.T) {
	repo := &fakeInsightRepo{}
	hist := &fakeHistory{byType: map[string][]events.EventRecord{
		events.EventTypeTaskCompleted: {
			{Payload: map[string]any{"task_id": float64(1)}},
			{Payload: map[string]any{"task_id": float64(2)}},
			{Payload: map[string]any{"task_id": float64(3)}},
		},
	}}
	engine, _ := newTestEngine(repo, hist)

	evt := userEvent(events.EventTypeTaskCompleted, map[string]any{
		"task_id": float64(4),
	})
	require.NoError(t, engine.HandleEvent(context.Background(), evt))

	kinds := make([]string, 0)
	for _, rec := range repo.all() {
		kinds = append(kinds, rec.Kind)
	}
	assert.Contains(t, kinds, "projects_productive_day")
}

func TestEngineRegisterSubscribesWhitelistOnly(t *testing.T) {
	repo := &fakeInsightRepo{}
	engine, _ := newTestEngine(repo, &fakeHistory{})
	bus := events.NewBus()
	engine.Register(bus)

	// Calendar events are interpreter territory, not rule input.
	err := bus.Publish(context.Background(), events.EventRecord{
		EventType: events.EventTypeCalendarEventCreated,
		Payload:   map[string]any{"calendar_event_id": float64(1)},
	})
	require.NoError(t, err)
	assert.Empty(t, repo.batches)
}
