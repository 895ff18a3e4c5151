package outbox

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the delivery state of an outbox message
type Status string

const (
	StatusPending Status = "pending"
	StatusSending Status = "sending"
	StatusSent    Status = "sent"
	StatusRetry   Status = "retry"
	StatusFailed  Status = "failed"
	StatusDead    Status = "dead"
)

// MaxDispatchAttempts is the cap after which a failing message is parked as
// dead and requires manual replay.
const MaxDispatchAttempts = 5

// Message stores a domain event waiting to be delivered to the bus.
// Domain services only ever insert; the dispatcher owns every status
// transition after that.
type Message struct {
	ID          int64         `json:"id"`
	UserID      uuid.NullUUID `json:"user_id"`
	EventType   string        `json:"event_type"`
	Payload     []byte        `json:"payload"`
	Status      Status        `json:"status"`
	Attempts    int           `json:"attempts"`
	AvailableAt time.Time     `json:"available_at"`
	LastError   *string       `json:"last_error,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Dispatchable reports whether the message is visible to a dispatcher at
// the given instant.
func (m *Message) Dispatchable(now time.Time) bool {
	if m.Status != StatusPending && m.Status != StatusRetry {
		return false
	}
	return !m.AvailableAt.After(now)
}
