package inference

import (
	"lifeos/internal/events"
)

// Typed inferred structures, one per supported (domain, record_type) pair.
// Field names line up with the classifier's extracted_data keys so a JSON
// round trip fills them.

type InferredTransaction struct {
	Amount      float64 `json:"amount,omitempty"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
}

type InferredMeal struct {
	MealType        string `json:"meal_type,omitempty"`
	Description     string `json:"description,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

type InferredWorkout struct {
	WorkoutType     string `json:"workout_type,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	Location        string `json:"location,omitempty"`
}

type InferredHabitLog struct {
	HabitName string `json:"habit_name,omitempty"`
	Note      string `json:"note,omitempty"`
}

type InferredPractice struct {
	SkillName       string `json:"skill_name,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

type InferredWorkSession struct {
	Description     string `json:"description,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

type InferredInteraction struct {
	PersonName      string `json:"person_name,omitempty"`
	InteractionType string `json:"interaction_type,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

// Schema declares how an inference event for one (domain, record_type)
// pair is emitted: its outbox event name, the name of the domain-specific
// secondary id field, and a constructor for the typed inferred structure.
type Schema struct {
	EventName      string
	IDField        string
	PayloadVersion string
	NewInferred    func(extracted map[string]any) (any, error)
}

func typedInferred[T any](extracted map[string]any) (any, error) {
	var out T
	if err := events.DecodePayload(extracted, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// schemas is the static map of supported inference targets. A pair absent
// here is silently not emitted.
var schemas = map[string]Schema{
	schemaKey("finance", "transaction"): {
		EventName:      events.EventTypeTransactionInferred,
		IDField:        "transaction_id",
		PayloadVersion: "1",
		NewInferred:    typedInferred[InferredTransaction],
	},
	schemaKey("health", "meal"): {
		EventName:      events.EventTypeMealInferred,
		IDField:        "nutrition_id",
		PayloadVersion: "1",
		NewInferred:    typedInferred[InferredMeal],
	},
	schemaKey("health", "workout"): {
		EventName:      events.EventTypeWorkoutInferred,
		IDField:        "workout_id",
		PayloadVersion: "1",
		NewInferred:    typedInferred[InferredWorkout],
	},
	schemaKey("habits", "habit_log"): {
		EventName:      events.EventTypeHabitLogInferred,
		IDField:        "log_id",
		PayloadVersion: "1",
		NewInferred:    typedInferred[InferredHabitLog],
	},
	schemaKey("skills", "practice"): {
		EventName:      events.EventTypePracticeInferred,
		IDField:        "session_id",
		PayloadVersion: "1",
		NewInferred:    typedInferred[InferredPractice],
	},
	schemaKey("projects", "work_session"): {
		EventName:      events.EventTypeWorkSessionInferred,
		IDField:        "session_id",
		PayloadVersion: "1",
		NewInferred:    typedInferred[InferredWorkSession],
	},
	schemaKey("relationships", "interaction"): {
		EventName:      events.EventTypeInteractionInferred,
		IDField:        "interaction_id",
		PayloadVersion: "1",
		NewInferred:    typedInferred[InferredInteraction],
	},
}

func schemaKey(domain, recordType string) string {
	return domain + "/" + recordType
}

// SchemaFor looks up the typed schema for a (domain, record_type) pair.
func SchemaFor(domain, recordType string) (Schema, bool) {
	s, ok := schemas[schemaKey(domain, recordType)]
	return s, ok
}
