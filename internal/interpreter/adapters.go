package interpreter

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AdapterInput is what a domain adapter gets to build its speculative
// record from.
type AdapterInput struct {
	UserID          uuid.UUID
	CalendarEventID int64
	ConfidenceScore float64
	ExtractedData   map[string]any
	EventStartTime  time.Time
}

// DomainAdapter creates a speculative domain record from a high-confidence
// interpretation and returns the new record's id.
type DomainAdapter interface {
	CreateInferredRecord(ctx context.Context, in AdapterInput) (int64, error)
}

// Per-domain writer contracts. The services package implements these; tests
// substitute fakes.

type FinanceWriter interface {
	CreateInferredTransaction(ctx context.Context, userID uuid.UUID, calendarEventID int64, amount float64, description string, occurredAt time.Time) (int64, error)
}

type HealthWriter interface {
	LogInferredMeal(ctx context.Context, userID uuid.UUID, calendarEventID int64, mealType string, durationMinutes int, occurredAt time.Time) (int64, error)
	LogInferredWorkout(ctx context.Context, userID uuid.UUID, calendarEventID int64, workoutType string, durationMinutes int, location string, occurredAt time.Time) (int64, error)
}

type HabitsWriter interface {
	LogInferredHabit(ctx context.Context, userID uuid.UUID, calendarEventID int64, habitName string, occurredAt time.Time) (int64, error)
}

type SkillsWriter interface {
	LogInferredPractice(ctx context.Context, userID uuid.UUID, calendarEventID int64, skillName string, durationMinutes int, occurredAt time.Time) (int64, error)
}

type ProjectsWriter interface {
	LogInferredWorkSession(ctx context.Context, userID uuid.UUID, calendarEventID int64, description string, durationMinutes int, occurredAt time.Time) (int64, error)
}

type RelationshipsWriter interface {
	LogInferredInteraction(ctx context.Context, userID uuid.UUID, calendarEventID int64, personName, interactionType string, occurredAt time.Time) (int64, error)
}

// AdapterRegistry maps (domain, record_type) to the adapter that can create
// records for it. A missing entry means the pair has no auto-create path.
type AdapterRegistry struct {
	adapters map[string]DomainAdapter
}

func NewAdapterRegistry(finance FinanceWriter, health HealthWriter, habits HabitsWriter, skills SkillsWriter, projects ProjectsWriter, relationships RelationshipsWriter) *AdapterRegistry {
	r := &AdapterRegistry{adapters: make(map[string]DomainAdapter)}
	if finance != nil {
		r.register("finance", "transaction", transactionAdapter{finance})
	}
	if health != nil {
		r.register("health", "meal", mealAdapter{health})
		r.register("health", "workout", workoutAdapter{health})
	}
	if habits != nil {
		r.register("habits", "habit_log", habitAdapter{habits})
	}
	if skills != nil {
		r.register("skills", "practice", practiceAdapter{skills})
	}
	if projects != nil {
		r.register("projects", "work_session", workSessionAdapter{projects})
	}
	if relationships != nil {
		r.register("relationships", "interaction", interactionAdapter{relationships})
	}
	return r
}

func (r *AdapterRegistry) register(domain, recordType string, adapter DomainAdapter) {
	r.adapters[adapterKey(domain, recordType)] = adapter
}

func (r *AdapterRegistry) Lookup(domain, recordType string) (DomainAdapter, bool) {
	adapter, ok := r.adapters[adapterKey(domain, recordType)]
	return adapter, ok
}

func adapterKey(domain, recordType string) string {
	return domain + "/" + recordType
}

type transactionAdapter struct {
	svc FinanceWriter
}

func (a transactionAdapter) CreateInferredRecord(ctx context.Context, in AdapterInput) (int64, error) {
	return a.svc.CreateInferredTransaction(ctx, in.UserID, in.CalendarEventID, extractFloat(in.ExtractedData, "amount"), extractString(in.ExtractedData, "matched_keyword"), in.EventStartTime)
}

type mealAdapter struct {
	svc HealthWriter
}

func (a mealAdapter) CreateInferredRecord(ctx context.Context, in AdapterInput) (int64, error) {
	mealType := extractString(in.ExtractedData, "matched_keyword")
	if mealType == "" {
		mealType = "meal"
	}
	return a.svc.LogInferredMeal(ctx, in.UserID, in.CalendarEventID, mealType, extractInt(in.ExtractedData, "duration_minutes"), in.EventStartTime)
}

type workoutAdapter struct {
	svc HealthWriter
}

func (a workoutAdapter) CreateInferredRecord(ctx context.Context, in AdapterInput) (int64, error) {
	workoutType := extractString(in.ExtractedData, "matched_keyword")
	if workoutType == "" {
		workoutType = "workout"
	}
	return a.svc.LogInferredWorkout(ctx, in.UserID, in.CalendarEventID, workoutType, extractInt(in.ExtractedData, "duration_minutes"), extractString(in.ExtractedData, "location"), in.EventStartTime)
}

type habitAdapter struct {
	svc HabitsWriter
}

func (a habitAdapter) CreateInferredRecord(ctx context.Context, in AdapterInput) (int64, error) {
	return a.svc.LogInferredHabit(ctx, in.UserID, in.CalendarEventID, extractString(in.ExtractedData, "matched_keyword"), in.EventStartTime)
}

type practiceAdapter struct {
	svc SkillsWriter
}

func (a practiceAdapter) CreateInferredRecord(ctx context.Context, in AdapterInput) (int64, error) {
	return a.svc.LogInferredPractice(ctx, in.UserID, in.CalendarEventID, extractString(in.ExtractedData, "matched_keyword"), extractInt(in.ExtractedData, "duration_minutes"), in.EventStartTime)
}

type workSessionAdapter struct {
	svc ProjectsWriter
}

func (a workSessionAdapter) CreateInferredRecord(ctx context.Context, in AdapterInput) (int64, error) {
	return a.svc.LogInferredWorkSession(ctx, in.UserID, in.CalendarEventID, extractString(in.ExtractedData, "matched_keyword"), extractInt(in.ExtractedData, "duration_minutes"), in.EventStartTime)
}

type interactionAdapter struct {
	svc RelationshipsWriter
}

func (a interactionAdapter) CreateInferredRecord(ctx context.Context, in AdapterInput) (int64, error) {
	return a.svc.LogInferredInteraction(ctx, in.UserID, in.CalendarEventID, extractString(in.ExtractedData, "person_name"), extractString(in.ExtractedData, "matched_keyword"), in.EventStartTime)
}

func extractString(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

// extractInt tolerates both int (fresh classification) and float64 (a JSON
// round trip).
func extractInt(data map[string]any, key string) int {
	switch v := data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func extractFloat(data map[string]any, key string) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}
