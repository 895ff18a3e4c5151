package interpreter

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"lifeos/internal/domain/calendar"
	"lifeos/internal/domain/interpretation"
	"lifeos/internal/domain/outbox"
	"lifeos/internal/events"
	"lifeos/internal/inference"
	"lifeos/internal/repository"
	lifeos_errors "lifeos/pkg/errors"
	"lifeos/pkg/logger"
)

// ModelVersion tags inference events with the classifier revision that
// produced them.
const ModelVersion = "rules-v1"

// Interpreter turns free-text calendar events into candidate domain
// records: classify, persist interpretations, auto-create speculative
// records above the threshold, and emit typed inference events.
type Interpreter struct {
	db           repository.DBTX
	calendarRepo repository.CalendarRepository
	interpRepo   repository.InterpretationRepository
	outboxRepo   repository.OutboxRepository
	classifier   *Classifier
	adapters     *AdapterRegistry
	emitter      *inference.Emitter
	logger       *logger.Logger
}

func NewInterpreter(
	db repository.DBTX,
	calendarRepo repository.CalendarRepository,
	interpRepo repository.InterpretationRepository,
	outboxRepo repository.OutboxRepository,
	classifier *Classifier,
	adapters *AdapterRegistry,
	emitter *inference.Emitter,
	log *logger.Logger,
) *Interpreter {
	return &Interpreter{
		db:           db,
		calendarRepo: calendarRepo,
		interpRepo:   interpRepo,
		outboxRepo:   outboxRepo,
		classifier:   classifier,
		adapters:     adapters,
		emitter:      emitter,
		logger:       log,
	}
}

// Register subscribes the interpreter to calendar change events.
func (i *Interpreter) Register(bus *events.Bus) {
	bus.Subscribe(events.EventTypeCalendarEventCreated, i.handleCalendarEvent)
	bus.Subscribe(events.EventTypeCalendarEventUpdated, i.handleCalendarEvent)
}

func (i *Interpreter) handleCalendarEvent(ctx context.Context, evt events.EventRecord) error {
	var payload events.CalendarEventPayload
	if err := events.DecodePayload(evt.Payload, &payload); err != nil {
		return err
	}
	event, err := i.calendarRepo.GetByID(ctx, payload.CalendarEventID)
	if err != nil {
		return err
	}
	_, err = i.InterpretEvent(ctx, event)
	return err
}

// InterpretEvent replaces the event's inferred interpretations with fresh
// classification results. Reviewed interpretations survive. Results at or
// above the auto-create threshold get a speculative domain record; adapter
// failures are logged, never fatal. Every persisted interpretation also
// emits a typed inference event with status "inferred".
func (i *Interpreter) InterpretEvent(ctx context.Context, event calendar.Event) ([]interpretation.Interpretation, error) {
	results := i.classifier.ClassifyEvent(event)

	created := make([]*interpretation.Interpretation, 0, len(results))
	err := repository.WithTx(ctx, i.db, func(tx repository.DBTX) error {
		if err := i.interpRepo.DeleteInferredByCalendarEvent(ctx, tx, event.ID); err != nil {
			return err
		}
		for _, result := range results {
			it := &interpretation.Interpretation{
				CalendarEventID:    event.ID,
				UserID:             event.UserID,
				Domain:             result.Domain,
				RecordType:         result.RecordType,
				ConfidenceScore:    result.Confidence,
				Status:             interpretation.StatusInferred,
				ClassificationData: result.ExtractedData,
			}
			if err := i.interpRepo.Create(ctx, tx, it); err != nil {
				return err
			}
			if err := i.enqueueInterpretationEvent(ctx, tx, events.EventTypeInterpretationCreated, *it); err != nil {
				return err
			}
			created = append(created, it)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]interpretation.Interpretation, 0, len(created))
	for _, it := range created {
		if it.ConfidenceScore >= AutoCreateThreshold {
			i.autoCreateRecord(ctx, event, it)
		}
		if err := i.emitter.EmitInferenceEvent(ctx, i.db, inference.EmitInput{
			Domain:          it.Domain,
			RecordType:      it.RecordType,
			UserID:          it.UserID,
			CalendarEventID: it.CalendarEventID,
			Confidence:      it.ConfidenceScore,
			InferredData:    it.ClassificationData,
			RecordID:        it.RecordID,
			Status:          string(interpretation.StatusInferred),
			ModelVersion:    ModelVersion,
		}); err != nil {
			i.logger.Errorf("interpreter: inference event for interpretation %d: %v", it.ID, err)
		}
		out = append(out, *it)
	}
	return out, nil
}

// autoCreateRecord calls the domain adapter for a high-confidence
// interpretation. A missing adapter or adapter error leaves the
// interpretation without a record; review can still attach one later.
func (i *Interpreter) autoCreateRecord(ctx context.Context, event calendar.Event, it *interpretation.Interpretation) {
	adapter, ok := i.adapters.Lookup(it.Domain, it.RecordType)
	if !ok {
		return
	}
	recordID, err := adapter.CreateInferredRecord(ctx, AdapterInput{
		UserID:          it.UserID,
		CalendarEventID: it.CalendarEventID,
		ConfidenceScore: it.ConfidenceScore,
		ExtractedData:   it.ClassificationData,
		EventStartTime:  event.StartTime,
	})
	if err != nil {
		i.logger.Warnf("interpreter: auto-create %s/%s for calendar event %d: %v", it.Domain, it.RecordType, it.CalendarEventID, err)
		return
	}
	if err := i.interpRepo.SetRecordID(ctx, it.ID, recordID); err != nil {
		i.logger.Errorf("interpreter: attach record %d to interpretation %d: %v", recordID, it.ID, err)
		return
	}
	it.RecordID = &recordID
}

// UpdateInterpretationStatus applies a human review decision. The
// interpretation must belong to userID. Confirmed and rejected decisions
// emit review events through the outbox; ignored is silent. Rejected and
// ambiguous reviews count as false positives; a confirm that attaches or
// changes the linked record counts as a false negative.
func (i *Interpreter) UpdateInterpretationStatus(ctx context.Context, userID uuid.UUID, id int64, status interpretation.Status, recordID *int64) (interpretation.Interpretation, error) {
	if !interpretation.ValidReviewStatus(status) {
		return interpretation.Interpretation{}, lifeos_errors.ErrInvalidStatus
	}

	it, err := i.interpRepo.GetByID(ctx, id)
	if err != nil {
		return interpretation.Interpretation{}, err
	}
	if it.UserID != userID {
		return interpretation.Interpretation{}, lifeos_errors.ErrNotFound
	}

	prevRecordID := it.RecordID
	if err := i.interpRepo.UpdateReview(ctx, id, status, recordID); err != nil {
		return interpretation.Interpretation{}, err
	}
	it.Status = status
	if recordID != nil {
		it.RecordID = recordID
	}

	switch status {
	case interpretation.StatusConfirmed:
		err = i.enqueueInterpretationEvent(ctx, i.db, events.EventTypeInterpretationConfirmed, it)
	case interpretation.StatusRejected, interpretation.StatusAmbiguous:
		err = i.enqueueInterpretationEvent(ctx, i.db, events.EventTypeInterpretationRejected, it)
	}
	if err != nil {
		return interpretation.Interpretation{}, err
	}

	isFP := status == interpretation.StatusRejected || status == interpretation.StatusAmbiguous
	isFN := status == interpretation.StatusConfirmed && recordID != nil &&
		(prevRecordID == nil || *prevRecordID != *recordID)

	// Both flags carry a literal boolean on every review; nil is reserved
	// for creation-time events where no review has happened yet.
	emit := inference.EmitInput{
		Domain:          it.Domain,
		RecordType:      it.RecordType,
		UserID:          it.UserID,
		CalendarEventID: it.CalendarEventID,
		Confidence:      it.ConfidenceScore,
		InferredData:    it.ClassificationData,
		RecordID:        it.RecordID,
		Status:          string(status),
		ModelVersion:    ModelVersion,
		IsFalsePositive: &isFP,
		IsFalseNegative: &isFN,
	}
	if err := i.emitter.EmitInferenceEvent(ctx, i.db, emit); err != nil {
		i.logger.Errorf("interpreter: inference event for review of %d: %v", it.ID, err)
	}
	return it, nil
}

// ListPending returns a user's interpretations still awaiting review.
func (i *Interpreter) ListPending(ctx context.Context, userID uuid.UUID, limit int) ([]interpretation.Interpretation, error) {
	return i.interpRepo.ListPendingByUser(ctx, userID, limit)
}

func (i *Interpreter) enqueueInterpretationEvent(ctx context.Context, tx repository.DBTX, eventType string, it interpretation.Interpretation) error {
	payload, err := json.Marshal(events.InterpretationPayload{
		InterpretationID: it.ID,
		CalendarEventID:  it.CalendarEventID,
		Domain:           it.Domain,
		RecordType:       it.RecordType,
		ConfidenceScore:  it.ConfidenceScore,
		Status:           string(it.Status),
	})
	if err != nil {
		return err
	}
	return i.outboxRepo.Enqueue(ctx, tx, &outbox.Message{
		UserID:    uuid.NullUUID{UUID: it.UserID, Valid: true},
		EventType: eventType,
		Payload:   payload,
	})
}
