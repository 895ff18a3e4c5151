package events

import (
	"encoding/json"
	"fmt"
)

// Typed payload shapes for the events the core consumes. Payloads travel as
// JSON maps through the outbox; these structs are the schema side of that
// tagged union, decoded on demand by consumers.

type TransactionCreatedPayload struct {
	TransactionID int64   `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
}

type HabitLoggedPayload struct {
	HabitID   int64  `json:"habit_id"`
	HabitName string `json:"habit_name"`
	Streak    int    `json:"streak"`
}

type MetricUpdatedPayload struct {
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
}

type PracticeLoggedPayload struct {
	SkillID         int64  `json:"skill_id"`
	SkillName       string `json:"skill_name"`
	DurationMinutes int    `json:"duration_minutes"`
}

type TaskCompletedPayload struct {
	TaskID    int64  `json:"task_id"`
	ProjectID int64  `json:"project_id"`
	Title     string `json:"title"`
}

type JournalEntryCreatedPayload struct {
	EntryID int64  `json:"entry_id"`
	Mood    string `json:"mood"`
}

type CalendarEventPayload struct {
	CalendarEventID int64 `json:"calendar_event_id"`
}

type InterpretationPayload struct {
	InterpretationID int64   `json:"interpretation_id"`
	CalendarEventID  int64   `json:"calendar_event_id"`
	Domain           string  `json:"domain"`
	RecordType       string  `json:"record_type"`
	ConfidenceScore  float64 `json:"confidence_score"`
	Status           string  `json:"status"`
}

// requiredFields lists the payload keys an event type must carry. Types not
// listed here (inference events among them, which carry their own versioned
// envelope) pass validation untouched.
var requiredFields = map[string][]string{
	EventTypeTransactionCreated:   {"amount"},
	EventTypeHabitLogged:          {"habit_id"},
	EventTypeMetricUpdated:        {"metric", "value"},
	EventTypePracticeLogged:       {"skill_id"},
	EventTypeTaskCompleted:        {"task_id"},
	EventTypeJournalEntryCreated:  {"entry_id"},
	EventTypeCalendarEventCreated: {"calendar_event_id"},
	EventTypeCalendarEventUpdated: {"calendar_event_id"},
}

// ValidatePayload checks the payload of a known event type carries its
// required fields. Called at the bus boundary so malformed events fail
// loudly at delivery instead of deep inside a subscriber.
func ValidatePayload(eventType string, payload map[string]any) error {
	fields, ok := requiredFields[eventType]
	if !ok {
		return nil
	}
	for _, field := range fields {
		if _, present := payload[field]; !present {
			return fmt.Errorf("event %s: missing payload field %q", eventType, field)
		}
	}
	return nil
}

// DecodePayload converts a payload map into a typed payload struct via a
// JSON round trip.
func DecodePayload(payload map[string]any, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
