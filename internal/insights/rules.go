package insights

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"lifeos/internal/domain/insight"
	"lifeos/internal/events"
)

// History gives rules bounded access to a user's recent events for
// cross-domain correlation. Results come back most recent first.
type History interface {
	RecentEvents(ctx context.Context, userID uuid.UUID, eventType string, since time.Time, limit int) ([]events.EventRecord, error)
}

// Candidate is the output of a rule function before persistence.
type Candidate struct {
	Kind     string
	Message  string
	Severity insight.Severity
	Data     map[string]any
}

// Rule is a pure function over one delivered event. Its only side channel
// is the bounded history lookback.
type Rule struct {
	Name       string
	EventTypes []string
	Evaluate   func(ctx context.Context, evt events.EventRecord, hist History) ([]Candidate, error)
}

func (r Rule) matches(eventType string) bool {
	for _, t := range r.EventTypes {
		if t == eventType {
			return true
		}
	}
	return false
}

// lookbackLimit caps every history query so per-event latency stays bounded
// regardless of how much history a user has.
const lookbackLimit = 10

// IngestedEventTypes is the whitelist of event types the engine subscribes
// to. Events outside this list never reach the rules.
var IngestedEventTypes = []string{
	events.EventTypeTransactionCreated,
	events.EventTypeJournalPosted,
	events.EventTypeHabitLogged,
	events.EventTypeMetricUpdated,
	events.EventTypePracticeLogged,
	events.EventTypeTaskCompleted,
}

// defaultRules returns the fixed ordered rule list: one rule per domain,
// then the cross-domain set.
func defaultRules() []Rule {
	return []Rule{
		{
			Name:       "finance_large_transaction",
			EventTypes: []string{events.EventTypeTransactionCreated},
			Evaluate:   financeLargeTransaction,
		},
		{
			Name:       "habits_streak_milestone",
			EventTypes: []string{events.EventTypeHabitLogged},
			Evaluate:   habitsStreakMilestone,
		},
		{
			Name:       "health_low_sleep",
			EventTypes: []string{events.EventTypeMetricUpdated},
			Evaluate:   healthLowSleep,
		},
		{
			Name:       "skills_long_practice",
			EventTypes: []string{events.EventTypePracticeLogged},
			Evaluate:   skillsLongPractice,
		},
		{
			Name:       "projects_productive_day",
			EventTypes: []string{events.EventTypeTaskCompleted},
			Evaluate:   projectsProductiveDay,
		},
		{
			Name:       "finance_sleep_spend",
			EventTypes: []string{events.EventTypeTransactionCreated},
			Evaluate:   financeSleepSpend,
		},
		{
			Name:       "habit_project_synergy",
			EventTypes: []string{events.EventTypeTaskCompleted},
			Evaluate:   habitProjectSynergy,
		},
		{
			Name:       "skill_mood_uplift",
			EventTypes: []string{events.EventTypePracticeLogged},
			Evaluate:   skillMoodUplift,
		},
	}
}

func financeLargeTransaction(_ context.Context, evt events.EventRecord, _ History) ([]Candidate, error) {
	var p events.TransactionCreatedPayload
	if err := events.DecodePayload(evt.Payload, &p); err != nil {
		return nil, err
	}
	if math.Abs(p.Amount) < 500 {
		return nil, nil
	}
	return []Candidate{{
		Kind:     "finance_large_transaction",
		Message:  fmt.Sprintf("Large transaction of %.2f recorded", p.Amount),
		Severity: insight.SeverityWarning,
		Data:     map[string]any{"amount": p.Amount, "description": p.Description},
	}}, nil
}

func habitsStreakMilestone(_ context.Context, evt events.EventRecord, _ History) ([]Candidate, error) {
	var p events.HabitLoggedPayload
	if err := events.DecodePayload(evt.Payload, &p); err != nil {
		return nil, err
	}
	if p.Streak == 0 || p.Streak%7 != 0 {
		return nil, nil
	}
	return []Candidate{{
		Kind:     "habits_streak_milestone",
		Message:  fmt.Sprintf("%d-day streak on %s", p.Streak, p.HabitName),
		Severity: insight.SeverityInfo,
		Data:     map[string]any{"habit_id": p.HabitID, "streak": p.Streak},
	}}, nil
}

func healthLowSleep(_ context.Context, evt events.EventRecord, _ History) ([]Candidate, error) {
	var p events.MetricUpdatedPayload
	if err := events.DecodePayload(evt.Payload, &p); err != nil {
		return nil, err
	}
	if p.Metric != "sleep_hours" || p.Value >= 6.0 {
		return nil, nil
	}
	return []Candidate{{
		Kind:     "health_low_sleep",
		Message:  fmt.Sprintf("Only %.1f hours of sleep logged", p.Value),
		Severity: insight.SeverityWarning,
		Data:     map[string]any{"sleep_hours": p.Value},
	}}, nil
}

func skillsLongPractice(_ context.Context, evt events.EventRecord, _ History) ([]Candidate, error) {
	var p events.PracticeLoggedPayload
	if err := events.DecodePayload(evt.Payload, &p); err != nil {
		return nil, err
	}
	if p.DurationMinutes < 60 {
		return nil, nil
	}
	return []Candidate{{
		Kind:     "skills_long_practice",
		Message:  fmt.Sprintf("%d minutes of %s practice in one session", p.DurationMinutes, p.SkillName),
		Severity: insight.SeverityInfo,
		Data:     map[string]any{"skill_id": p.SkillID, "duration_minutes": p.DurationMinutes},
	}}, nil
}

func projectsProductiveDay(ctx context.Context, evt events.EventRecord, hist History) ([]Candidate, error) {
	if !evt.UserID.Valid {
		return nil, nil
	}
	since := evt.CreatedAt.Add(-24 * time.Hour)
	recent, err := hist.RecentEvents(ctx, evt.UserID.UUID, events.EventTypeTaskCompleted, since, lookbackLimit)
	if err != nil {
		return nil, err
	}
	if len(recent) < 3 {
		return nil, nil
	}
	return []Candidate{{
		Kind:     "projects_productive_day",
		Message:  fmt.Sprintf("%d tasks completed in the last 24 hours", len(recent)),
		Severity: insight.SeverityInfo,
		Data:     map[string]any{"completed_count": len(recent)},
	}}, nil
}

// financeSleepSpend flags a large transaction that follows short sleep: a
// spend of 100 or more within 3 days of a sleep_hours metric under 6.0.
func financeSleepSpend(ctx context.Context, evt events.EventRecord, hist History) ([]Candidate, error) {
	if !evt.UserID.Valid {
		return nil, nil
	}
	var p events.TransactionCreatedPayload
	if err := events.DecodePayload(evt.Payload, &p); err != nil {
		return nil, err
	}
	if math.Abs(p.Amount) < 100 {
		return nil, nil
	}
	since := evt.CreatedAt.Add(-3 * 24 * time.Hour)
	recent, err := hist.RecentEvents(ctx, evt.UserID.UUID, events.EventTypeMetricUpdated, since, lookbackLimit)
	if err != nil {
		return nil, err
	}
	for _, past := range recent {
		var m events.MetricUpdatedPayload
		if err := events.DecodePayload(past.Payload, &m); err != nil {
			continue
		}
		if m.Metric == "sleep_hours" && m.Value < 6.0 {
			return []Candidate{{
				Kind:     "finance_sleep_spend",
				Message:  fmt.Sprintf("Spent %.2f within days of sleeping %.1f hours", math.Abs(p.Amount), m.Value),
				Severity: insight.SeverityWarning,
				Data:     map[string]any{"amount": p.Amount, "sleep_hours": m.Value},
			}}, nil
		}
	}
	return nil, nil
}

// habitProjectSynergy links a completed task to an active habit streak:
// any habit logged in the last 7 days with streak >= 5.
func habitProjectSynergy(ctx context.Context, evt events.EventRecord, hist History) ([]Candidate, error) {
	if !evt.UserID.Valid {
		return nil, nil
	}
	since := evt.CreatedAt.Add(-7 * 24 * time.Hour)
	recent, err := hist.RecentEvents(ctx, evt.UserID.UUID, events.EventTypeHabitLogged, since, lookbackLimit)
	if err != nil {
		return nil, err
	}
	maxStreak := 0
	for _, past := range recent {
		var h events.HabitLoggedPayload
		if err := events.DecodePayload(past.Payload, &h); err != nil {
			continue
		}
		if h.Streak > maxStreak {
			maxStreak = h.Streak
		}
	}
	if maxStreak < 5 {
		return nil, nil
	}
	return []Candidate{{
		Kind:     "habit_project_synergy",
		Message:  fmt.Sprintf("Task completed while holding a %d-day habit streak", maxStreak),
		Severity: insight.SeverityInfo,
		Data:     map[string]any{"max_streak": maxStreak},
	}}, nil
}

// skillMoodUplift notes practice sessions that follow low-mood journal
// entries within 3 days.
func skillMoodUplift(ctx context.Context, evt events.EventRecord, hist History) ([]Candidate, error) {
	if !evt.UserID.Valid {
		return nil, nil
	}
	since := evt.CreatedAt.Add(-3 * 24 * time.Hour)
	recent, err := hist.RecentEvents(ctx, evt.UserID.UUID, events.EventTypeJournalEntryCreated, since, lookbackLimit)
	if err != nil {
		return nil, err
	}
	for _, past := range recent {
		var j events.JournalEntryCreatedPayload
		if err := events.DecodePayload(past.Payload, &j); err != nil {
			continue
		}
		switch strings.ToLower(j.Mood) {
		case "tired", "sad", "stressed":
			return []Candidate{{
				Kind:     "skill_mood_uplift",
				Message:  fmt.Sprintf("Practice logged after feeling %s", strings.ToLower(j.Mood)),
				Severity: insight.SeverityInfo,
				Data:     map[string]any{"mood": strings.ToLower(j.Mood)},
			}}, nil
		}
	}
	return nil, nil
}
