package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"lifeos/internal/domain/outbox"
	"lifeos/internal/events"
)

// Adapter delivers a claimed outbox message to its consumers.
type Adapter interface {
	Deliver(ctx context.Context, msg outbox.Message) error
}

// BusAdapter turns outbox messages into bus events. It remembers every
// message id it has delivered for the lifetime of the process, so invoking
// dispatch repeatedly cannot double-deliver within this process. The set is
// lost on restart; cross-restart dedup is the consumer's problem
// (at-least-once overall).
type BusAdapter struct {
	bus *events.Bus

	mu        sync.Mutex
	delivered map[int64]struct{}
}

func NewBusAdapter(bus *events.Bus) *BusAdapter {
	return &BusAdapter{
		bus:       bus,
		delivered: make(map[int64]struct{}),
	}
}

func (a *BusAdapter) Deliver(ctx context.Context, msg outbox.Message) error {
	a.mu.Lock()
	_, seen := a.delivered[msg.ID]
	a.mu.Unlock()
	if seen {
		return nil
	}

	payload := map[string]any{}
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("outbox message %d: malformed payload: %w", msg.ID, err)
		}
	}
	// Message primary key rides inside the payload for consumer-side dedup.
	payload["event_id"] = msg.ID
	payload["external_id"] = msg.ID

	evt := events.EventRecord{
		ID:        msg.ID,
		EventType: msg.EventType,
		Payload:   payload,
		UserID:    msg.UserID,
		CreatedAt: msg.CreatedAt,
	}
	if err := a.bus.Publish(ctx, evt); err != nil {
		return err
	}

	a.mu.Lock()
	a.delivered[msg.ID] = struct{}{}
	a.mu.Unlock()
	return nil
}
