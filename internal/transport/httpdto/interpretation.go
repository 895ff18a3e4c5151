package httpdto

import "time"

// ReviewInterpretationRequest is used for PATCH /api/calendar/interpretations/:id
type ReviewInterpretationRequest struct {
	Status   string `json:"status" binding:"required"`
	RecordID *int64 `json:"record_id,omitempty"`
}

// InterpretationDTO represents a calendar event interpretation in API
// responses
type InterpretationDTO struct {
	ID                 int64          `json:"id"`
	CalendarEventID    int64          `json:"calendar_event_id"`
	Domain             string         `json:"domain"`
	RecordType         string         `json:"record_type"`
	ConfidenceScore    float64        `json:"confidence_score"`
	Status             string         `json:"status"`
	ClassificationData map[string]any `json:"classification_data,omitempty"`
	RecordID           *int64         `json:"record_id,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}
