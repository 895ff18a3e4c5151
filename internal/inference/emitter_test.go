package inference

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeos/internal/domain/outbox"
	"lifeos/internal/events"
	"lifeos/internal/insights"
	"lifeos/internal/repository"
)

type captureOutboxRepo struct {
	enqueued []*outbox.Message
	history  []outbox.Message
}

func (c *captureOutboxRepo) Enqueue(ctx context.Context, tx repository.DBTX, msg *outbox.Message) error {
	msg.ID = int64(len(c.enqueued) + 1)
	c.enqueued = append(c.enqueued, msg)
	return nil
}

func (c *captureOutboxRepo) DequeueBatch(ctx context.Context, limit int) ([]outbox.Message, error) {
	return nil, nil
}

func (c *captureOutboxRepo) MarkSent(ctx context.Context, ids []int64) error { return nil }

func (c *captureOutboxRepo) MarkFailed(ctx context.Context, id int64, lastError string, availableAt time.Time, maxAttempts int) error {
	return nil
}

func (c *captureOutboxRepo) GetByID(ctx context.Context, id int64) (outbox.Message, error) {
	return outbox.Message{}, nil
}

func (c *captureOutboxRepo) RecentByType(ctx context.Context, userID uuid.UUID, eventType string, since time.Time, limit int) ([]outbox.Message, error) {
	return nil, nil
}

func (c *captureOutboxRepo) ListInferenceEvents(ctx context.Context, domain string, limit int) ([]outbox.Message, error) {
	return c.history, nil
}

func decodeEnvelope(t *testing.T, msg *outbox.Message) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(msg.Payload, &envelope))
	return envelope
}

func TestEmitUnknownPairIsSilentNoOp(t *testing.T) {
	repo := &captureOutboxRepo{}
	telemetry := insights.NewTelemetry()
	emitter := NewEmitter(repo, telemetry)

	err := emitter.EmitInferenceEvent(context.Background(), nil, EmitInput{
		Domain:     "weather",
		RecordType: "forecast",
		UserID:     uuid.New(),
		Status:     "inferred",
	})
	require.NoError(t, err)
	assert.Empty(t, repo.enqueued)
	assert.Equal(t, int64(0), telemetry.Snapshot().FalsePositives)
}

func TestEmitWorkoutUsesWireAliases(t *testing.T) {
	repo := &captureOutboxRepo{}
	emitter := NewEmitter(repo, insights.NewTelemetry())

	recordID := int64(17)
	userID := uuid.New()
	err := emitter.EmitInferenceEvent(context.Background(), nil, EmitInput{
		Domain:          "health",
		RecordType:      "workout",
		UserID:          userID,
		CalendarEventID: 3,
		Confidence:      0.9,
		InferredData: map[string]any{
			"workout_type":     "gym",
			"duration_minutes": 60,
			"location":         "Anytime Fitness",
		},
		RecordID:     &recordID,
		Status:       "inferred",
		ModelVersion: "rules-v1",
	})
	require.NoError(t, err)
	require.Len(t, repo.enqueued, 1)

	msg := repo.enqueued[0]
	assert.Equal(t, events.EventTypeWorkoutInferred, msg.EventType)
	assert.Equal(t, userID, msg.UserID.UUID)

	envelope := decodeEnvelope(t, msg)
	assert.Equal(t, "health.workout.inferred", envelope["event_name"])
	assert.Equal(t, 0.9, envelope["confidence_score"])
	assert.Equal(t, "rules-v1", envelope["model_version"])
	assert.Equal(t, float64(17), envelope["workout_id"])
	assert.Equal(t, "1", envelope["payload_version"])

	inferred, ok := envelope["inferred_structure"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "gym", inferred["workout_type"])
	assert.Equal(t, float64(60), inferred["duration_minutes"])
	assert.Equal(t, "Anytime Fitness", inferred["location"])

	// The unaliased names never appear on the wire.
	_, hasConfidence := envelope["confidence"]
	assert.False(t, hasConfidence)
	_, hasInferred := envelope["inferred"]
	assert.False(t, hasInferred)
}

func TestEmitFalsePositiveBooksTelemetry(t *testing.T) {
	repo := &captureOutboxRepo{}
	telemetry := insights.NewTelemetry()
	emitter := NewEmitter(repo, telemetry)

	fp := true
	err := emitter.EmitInferenceEvent(context.Background(), nil, EmitInput{
		Domain:          "health",
		RecordType:      "meal",
		UserID:          uuid.New(),
		Status:          "rejected",
		ModelVersion:    "rules-v1",
		IsFalsePositive: &fp,
	})
	require.NoError(t, err)

	snap := telemetry.Snapshot()
	assert.Equal(t, int64(1), snap.FalsePositives)
	assert.Equal(t, int64(1), snap.PerDomainFalsePositives["health"])
	assert.Equal(t, int64(1), snap.PerModelFalsePositives["rules-v1"])
	assert.Equal(t, int64(0), snap.FalseNegatives)
}

func TestFetchFlaggedInferenceEventsFiltersUnflagged(t *testing.T) {
	flaggedPayload, err := json.Marshal(map[string]any{
		"event_name":        "finance.transaction.inferred",
		"model_version":     "rules-v1",
		"confidence_score":  0.6,
		"is_false_positive": true,
	})
	require.NoError(t, err)
	cleanPayload, err := json.Marshal(map[string]any{
		"event_name":       "finance.transaction.inferred",
		"confidence_score": 0.8,
	})
	require.NoError(t, err)

	repo := &captureOutboxRepo{history: []outbox.Message{
		{ID: 1, EventType: events.EventTypeTransactionInferred, Payload: flaggedPayload},
		{ID: 2, EventType: events.EventTypeTransactionInferred, Payload: cleanPayload},
	}}
	emitter := NewEmitter(repo, insights.NewTelemetry())

	flagged, err := emitter.FetchFlaggedInferenceEvents(context.Background(), "finance", 50)
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.Equal(t, int64(1), flagged[0].MessageID)
	assert.Equal(t, "finance", flagged[0].Domain)
	assert.Equal(t, "rules-v1", flagged[0].ModelVersion)
	assert.True(t, flagged[0].IsFalsePositive)
	assert.False(t, flagged[0].IsFalseNegative)
}
