package inference

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"lifeos/internal/domain/outbox"
	"lifeos/internal/insights"
	"lifeos/internal/repository"
)

// EmitInput carries everything an inference event needs. RecordID is the
// speculative domain record the interpreter created, when it exists.
type EmitInput struct {
	Domain           string
	RecordType       string
	UserID           uuid.UUID
	CalendarEventID  int64
	Confidence       float64
	InferredData     map[string]any
	RecordID         *int64
	Status           string
	ModelVersion     string
	LabelConfidences map[string]float64
	Context          map[string]any
	IsFalsePositive  *bool
	IsFalseNegative  *bool
}

// FlaggedEvent is one inference event whose reviewer marked it a false
// positive or false negative; the retraining-feedback query returns these.
type FlaggedEvent struct {
	MessageID       int64          `json:"message_id"`
	EventName       string         `json:"event_name"`
	Domain          string         `json:"domain"`
	ModelVersion    string         `json:"model_version"`
	Confidence      float64        `json:"confidence_score"`
	IsFalsePositive bool           `json:"is_false_positive"`
	IsFalseNegative bool           `json:"is_false_negative"`
	Payload         map[string]any `json:"payload"`
}

// Emitter serializes typed inference events into the outbox and books their
// review flags into telemetry.
type Emitter struct {
	outboxRepo repository.OutboxRepository
	telemetry  *insights.Telemetry
}

func NewEmitter(outboxRepo repository.OutboxRepository, telemetry *insights.Telemetry) *Emitter {
	return &Emitter{outboxRepo: outboxRepo, telemetry: telemetry}
}

// EmitInferenceEvent enqueues one typed inference event. An unsupported
// (domain, record_type) pair is a silent no-op: nothing is enqueued and no
// telemetry is recorded.
func (e *Emitter) EmitInferenceEvent(ctx context.Context, tx repository.DBTX, in EmitInput) error {
	schema, ok := SchemaFor(in.Domain, in.RecordType)
	if !ok {
		return nil
	}

	inferred, err := schema.NewInferred(in.InferredData)
	if err != nil {
		return err
	}

	// Wire aliases: confidence -> confidence_score, inferred ->
	// inferred_structure.
	envelope := map[string]any{
		"event_name":         schema.EventName,
		"user_id":            in.UserID,
		"calendar_event_id":  in.CalendarEventID,
		"status":             in.Status,
		"payload_version":    schema.PayloadVersion,
		"model_version":      in.ModelVersion,
		"confidence_score":   in.Confidence,
		"label_confidences":  in.LabelConfidences,
		"context":            in.Context,
		"is_false_positive":  in.IsFalsePositive,
		"is_false_negative":  in.IsFalseNegative,
		"inferred_structure": inferred,
	}
	envelope[schema.IDField] = in.RecordID

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	msg := &outbox.Message{
		UserID:    uuid.NullUUID{UUID: in.UserID, Valid: true},
		EventType: schema.EventName,
		Payload:   payload,
	}
	if err := e.outboxRepo.Enqueue(ctx, tx, msg); err != nil {
		return err
	}

	e.telemetry.RecordInference(
		eventDomain(schema.EventName),
		in.ModelVersion,
		in.IsFalsePositive != nil && *in.IsFalsePositive,
		in.IsFalseNegative != nil && *in.IsFalseNegative,
	)
	return nil
}

// FetchFlaggedInferenceEvents scans outbox history for inference events a
// reviewer flagged as false positive or false negative, optionally scoped
// to one domain.
func (e *Emitter) FetchFlaggedInferenceEvents(ctx context.Context, domain string, limit int) ([]FlaggedEvent, error) {
	messages, err := e.outboxRepo.ListInferenceEvents(ctx, domain, limit)
	if err != nil {
		return nil, err
	}

	var flagged []FlaggedEvent
	for _, msg := range messages {
		var payload map[string]any
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			continue
		}
		fp := payloadFlag(payload, "is_false_positive")
		fn := payloadFlag(payload, "is_false_negative")
		if !fp && !fn {
			continue
		}
		modelVersion, _ := payload["model_version"].(string)
		confidence, _ := payload["confidence_score"].(float64)
		flagged = append(flagged, FlaggedEvent{
			MessageID:       msg.ID,
			EventName:       msg.EventType,
			Domain:          eventDomain(msg.EventType),
			ModelVersion:    modelVersion,
			Confidence:      confidence,
			IsFalsePositive: fp,
			IsFalseNegative: fn,
			Payload:         payload,
		})
	}
	return flagged, nil
}

func payloadFlag(payload map[string]any, key string) bool {
	v, ok := payload[key].(bool)
	return ok && v
}

// eventDomain is the first dot-separated segment of an event type.
func eventDomain(eventType string) string {
	if i := strings.Index(eventType, "."); i > 0 {
		return eventType[:i]
	}
	return eventType
}
