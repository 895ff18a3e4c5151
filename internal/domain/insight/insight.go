package insight

import (
	"time"

	"github.com/google/uuid"
)

// Severity of an insight
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Record is a derived cross-domain observation produced by the rule engine.
// Records are insert-only; nothing mutates them after creation.
type Record struct {
	ID        int64          `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	EventID   *int64         `json:"event_id,omitempty"`
	EventType string         `json:"event_type"`
	Kind      string         `json:"kind"`
	Message   string         `json:"message"`
	Severity  Severity       `json:"severity"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
