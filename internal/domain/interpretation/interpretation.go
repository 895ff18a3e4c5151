package interpretation

import (
	"time"

	"github.com/google/uuid"
)

// Status of a calendar event interpretation
type Status string

const (
	StatusInferred  Status = "inferred"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusIgnored   Status = "ignored"
	StatusAmbiguous Status = "ambiguous"
)

// ValidReviewStatus reports whether s is a status a human review may
// transition an interpretation into.
func ValidReviewStatus(s Status) bool {
	switch s {
	case StatusConfirmed, StatusRejected, StatusIgnored, StatusAmbiguous:
		return true
	}
	return false
}

// Interpretation is a candidate domain record inferred from a free-text
// calendar event. Re-running classification replaces inferred rows only;
// reviewed rows are never touched.
type Interpretation struct {
	ID                 int64          `json:"id"`
	CalendarEventID    int64          `json:"calendar_event_id"`
	UserID             uuid.UUID      `json:"user_id"`
	Domain             string         `json:"domain"`
	RecordType         string         `json:"record_type"`
	ConfidenceScore    float64        `json:"confidence_score"`
	Status             Status         `json:"status"`
	ClassificationData map[string]any `json:"classification_data,omitempty"`
	RecordID           *int64         `json:"record_id,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}
