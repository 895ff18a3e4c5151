package events

// Event type constants, format: domain.entity.action

// Domain write events
const (
	EventTypeTransactionCreated  = "finance.transaction.created"
	EventTypeJournalPosted       = "finance.journal.posted"
	EventTypeHabitLogged         = "habits.habit.logged"
	EventTypeMetricUpdated       = "health.metric.updated"
	EventTypePracticeLogged      = "skills.practice.logged"
	EventTypeTaskCompleted       = "projects.task.completed"
	EventTypeJournalEntryCreated = "journal.entry.created"
)

// Calendar events
const (
	EventTypeCalendarEventCreated = "calendar.event.created"
	EventTypeCalendarEventUpdated = "calendar.event.updated"

	EventTypeInterpretationCreated   = "calendar.interpretation.created"
	EventTypeInterpretationConfirmed = "calendar.interpretation.confirmed"
	EventTypeInterpretationRejected  = "calendar.interpretation.rejected"
)

// Inference events, one per supported (domain, record_type) pair
const (
	EventTypeTransactionInferred = "finance.transaction.inferred"
	EventTypeMealInferred        = "health.meal.inferred"
	EventTypeWorkoutInferred     = "health.workout.inferred"
	EventTypeHabitLogInferred    = "habits.habit_log.inferred"
	EventTypePracticeInferred    = "skills.practice.inferred"
	EventTypeWorkSessionInferred = "projects.work_session.inferred"
	EventTypeInteractionInferred = "relationships.interaction.inferred"
)
