package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversInRegistrationOrder(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.Subscribe(EventTypeHabitLogged, func(ctx context.Context, evt EventRecord) error {
		order = append(order, "first")
		return nil
	})
	bus.Subscribe(EventTypeHabitLogged, func(ctx context.Context, evt EventRecord) error {
		order = append(order, "second")
		return nil
	})

	err := bus.Publish(context.Background(), EventRecord{
		EventType: EventTypeHabitLogged,
		Payload:   map[string]any{"habit_id": float64(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestBusExactTypeMatchOnly(t *testing.T) {
	bus := NewBus()

	called := false
	bus.Subscribe(EventTypeTransactionCreated, func(ctx context.Context, evt EventRecord) error {
		called = true
		return nil
	})

	err := bus.Publish(context.Background(), EventRecord{
		EventType: EventTypeTaskCompleted,
		Payload:   map[string]any{"task_id": float64(1)},
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestBusFirstErrorAbortsRemainingHandlers(t *testing.T) {
	bus := NewBus()
	boom := errors.New("boom")

	var secondCalled bool
	bus.Subscribe(EventTypeMetricUpdated, func(ctx context.Context, evt EventRecord) error {
		return boom
	})
	bus.Subscribe(EventTypeMetricUpdated, func(ctx context.Context, evt EventRecord) error {
		secondCalled = true
		return nil
	})

	err := bus.Publish(context.Background(), EventRecord{
		EventType: EventTypeMetricUpdated,
		Payload:   map[string]any{"metric": "sleep_hours", "value": 5.0},
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, secondCalled)
}

func TestBusPublishWithoutSubscribersIsNoOp(t *testing.T) {
	bus := NewBus()
	err := bus.Publish(context.Background(), EventRecord{
		EventType: EventTypePracticeLogged,
		Payload:   map[string]any{"skill_id": float64(3)},
	})
	assert.NoError(t, err)
}

func TestBusRejectsMissingRequiredFields(t *testing.T) {
	bus := NewBus()
	bus.Subscribe(EventTypeTransactionCreated, func(ctx context.Context, evt EventRecord) error {
		t.Fatal("handler must not run for invalid payload")
		return nil
	})

	err := bus.Publish(context.Background(), EventRecord{
		EventType: EventTypeTransactionCreated,
		Payload:   map[string]any{"description": "no amount"},
	})
	assert.Error(t, err)
}

func TestValidatePayloadUnknownTypePasses(t *testing.T) {
	assert.NoError(t, ValidatePayload("some.unknown.event", map[string]any{}))
}
