package events

import (
	"time"

	"github.com/google/uuid"
)

// EventRecord is the bus envelope built from a delivered outbox message.
// It is transient; the outbox row remains the durable record. The outbox
// message primary key travels both as ID and inside the payload (event_id /
// external_id) so consumers can deduplicate.
type EventRecord struct {
	ID        int64          `json:"id"`
	EventType string         `json:"event_type"`
	Payload   map[string]any `json:"payload"`
	UserID    uuid.NullUUID  `json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`
}
