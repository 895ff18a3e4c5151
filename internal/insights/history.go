package insights

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"lifeos/internal/events"
	"lifeos/internal/repository"
)

// outboxHistory serves rule lookback queries from the outbox table, which
// already holds every event the system has emitted.
type outboxHistory struct {
	repo repository.OutboxRepository
}

func NewOutboxHistory(repo repository.OutboxRepository) History {
	return &outboxHistory{repo: repo}
}

func (h *outboxHistory) RecentEvents(ctx context.Context, userID uuid.UUID, eventType string, since time.Time, limit int) ([]events.EventRecord, error) {
	messages, err := h.repo.RecentByType(ctx, userID, eventType, since, limit)
	if err != nil {
		return nil, err
	}
	records := make([]events.EventRecord, 0, len(messages))
	for _, msg := range messages {
		payload := map[string]any{}
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				continue
			}
		}
		records = append(records, events.EventRecord{
			ID:        msg.ID,
			EventType: msg.EventType,
			Payload:   payload,
			UserID:    msg.UserID,
			CreatedAt: msg.CreatedAt,
		})
	}
	return records, nil
}
