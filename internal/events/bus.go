package events

import (
	"context"
	"sync"
)

// Handler consumes a delivered event. A handler error propagates to the
// publisher; the bus performs no isolation.
type Handler func(ctx context.Context, evt EventRecord) error

// Bus is an in-process publish/subscribe fan-out keyed by exact event-type
// string. Delivery is synchronous and follows subscriber registration
// order. The bus is explicitly constructed and injected; there is no
// package-level instance.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Subscribe registers a handler for an exact event-type string. There is no
// wildcard matching.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish invokes every handler registered for evt.EventType in
// registration order. The first handler error aborts the remaining
// handlers and is returned. Publishing a type with no subscribers is a
// successful no-op.
func (b *Bus) Publish(ctx context.Context, evt EventRecord) error {
	if err := ValidatePayload(evt.EventType, evt.Payload); err != nil {
		return err
	}

	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[evt.EventType]...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, evt); err != nil {
			return err
		}
	}
	return nil
}
