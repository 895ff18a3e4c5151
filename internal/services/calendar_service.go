package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"lifeos/internal/domain/calendar"
	"lifeos/internal/events"
	"lifeos/internal/repository"
	lifeos_errors "lifeos/pkg/errors"
)

// CalendarService owns calendar event writes. Every create and update
// enqueues the matching calendar event in the same transaction, which is
// what feeds the interpreter downstream.
type CalendarService struct {
	db           repository.DBTX
	calendarRepo repository.CalendarRepository
	outboxRepo   repository.OutboxRepository
}

func NewCalendarService(db repository.DBTX, calendarRepo repository.CalendarRepository, outboxRepo repository.OutboxRepository) *CalendarService {
	return &CalendarService{db: db, calendarRepo: calendarRepo, outboxRepo: outboxRepo}
}

type CalendarEventInput struct {
	Title       string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     *time.Time
}

func validateCalendarEvent(in CalendarEventInput) error {
	if strings.TrimSpace(in.Title) == "" || in.StartTime.IsZero() {
		return lifeos_errors.ErrInvalidInput
	}
	if in.EndTime != nil && in.EndTime.Before(in.StartTime) {
		return lifeos_errors.ErrInvalidInput
	}
	return nil
}

func (s *CalendarService) CreateEvent(ctx context.Context, userID uuid.UUID, in CalendarEventInput) (calendar.Event, error) {
	if err := validateCalendarEvent(in); err != nil {
		return calendar.Event{}, err
	}

	event := &calendar.Event{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
	}
	err := repository.WithTx(ctx, s.db, func(tx repository.DBTX) error {
		if err := s.calendarRepo.Create(ctx, tx, event); err != nil {
			return err
		}
		return EnqueueEvent(ctx, s.outboxRepo, tx, events.EventTypeCalendarEventCreated, userID, events.CalendarEventPayload{CalendarEventID: event.ID})
	})
	if err != nil {
		return calendar.Event{}, err
	}
	return *event, nil
}

func (s *CalendarService) UpdateEvent(ctx context.Context, userID uuid.UUID, eventID int64, in CalendarEventInput) (calendar.Event, error) {
	if err := validateCalendarEvent(in); err != nil {
		return calendar.Event{}, err
	}

	event, err := s.calendarRepo.GetByID(ctx, eventID)
	if err != nil {
		return calendar.Event{}, err
	}
	if event.UserID != userID {
		return calendar.Event{}, lifeos_errors.ErrNotFound
	}

	event.Title = in.Title
	event.Description = in.Description
	event.Location = in.Location
	event.StartTime = in.StartTime
	event.EndTime = in.EndTime

	err = repository.WithTx(ctx, s.db, func(tx repository.DBTX) error {
		if err := s.calendarRepo.Update(ctx, tx, event); err != nil {
			return err
		}
		return EnqueueEvent(ctx, s.outboxRepo, tx, events.EventTypeCalendarEventUpdated, userID, events.CalendarEventPayload{CalendarEventID: event.ID})
	})
	if err != nil {
		return calendar.Event{}, err
	}
	return event, nil
}

func (s *CalendarService) GetEvent(ctx context.Context, userID uuid.UUID, eventID int64) (calendar.Event, error) {
	event, err := s.calendarRepo.GetByID(ctx, eventID)
	if err != nil {
		return calendar.Event{}, err
	}
	if event.UserID != userID {
		return calendar.Event{}, lifeos_errors.ErrNotFound
	}
	return event, nil
}

func (s *CalendarService) ListEvents(ctx context.Context, userID uuid.UUID, limit int) ([]calendar.Event, error) {
	return s.calendarRepo.ListByUser(ctx, userID, limit)
}
