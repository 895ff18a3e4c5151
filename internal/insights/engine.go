package insights

import (
	"context"
	"time"

	"lifeos/internal/domain/insight"
	"lifeos/internal/events"
	"lifeos/internal/repository"
	"lifeos/pkg/logger"
)

// Engine runs the fixed rule list against every whitelisted event the bus
// delivers and persists whatever the rules produce. It is explicitly
// constructed and injected at the composition root; tests build a fresh one
// per case.
type Engine struct {
	insights  repository.InsightRepository
	history   History
	telemetry *Telemetry
	logger    *logger.Logger
	rules     []Rule
}

func NewEngine(insightRepo repository.InsightRepository, history History, telemetry *Telemetry, l *logger.Logger) *Engine {
	return &Engine{
		insights:  insightRepo,
		history:   history,
		telemetry: telemetry,
		logger:    l,
		rules:     defaultRules(),
	}
}

// Register subscribes the single ingestion handler to every whitelisted
// event type.
func (e *Engine) Register(bus *events.Bus) {
	for _, eventType := range IngestedEventTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}
}

// HandleEvent evaluates every matching rule against the event. Rule errors
// are isolated: a failing rule is logged and its siblings still run. All
// candidates from all rules are persisted in one batch; an event that
// produced nothing writes nothing.
func (e *Engine) HandleEvent(ctx context.Context, evt events.EventRecord) error {
	var records []*insight.Record
	for _, rule := range e.rules {
		if !rule.matches(evt.EventType) {
			continue
		}
		start := time.Now()
		candidates, err := rule.Evaluate(ctx, evt, e.history)
		e.telemetry.RecordRule(rule.Name, len(candidates), time.Since(start))
		if err != nil {
			e.logger.Errorf("insights: rule %s failed for event %d (%s): %s", rule.Name, evt.ID, evt.EventType, err)
			continue
		}
		for _, c := range candidates {
			if !evt.UserID.Valid {
				continue
			}
			eventID := evt.ID
			records = append(records, &insight.Record{
				UserID:    evt.UserID.UUID,
				EventID:   &eventID,
				EventType: evt.EventType,
				Kind:      c.Kind,
				Message:   c.Message,
				Severity:  c.Severity,
				Data:      c.Data,
			})
		}
	}

	e.telemetry.RecordEvent(evt.EventType, len(records))
	if len(records) == 0 {
		return nil
	}
	return e.insights.CreateBatch(ctx, records)
}
