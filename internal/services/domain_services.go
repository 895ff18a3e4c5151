package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lifeos/internal/repository"
)

// DomainRecordService creates speculative domain records on behalf of the
// calendar interpreter. It satisfies the interpreter's per-domain writer
// contracts with one thin method per record type.
type DomainRecordService struct {
	db   repository.DBTX
	repo repository.DomainRecordRepository
}

func NewDomainRecordService(db repository.DBTX, repo repository.DomainRecordRepository) *DomainRecordService {
	return &DomainRecordService{db: db, repo: repo}
}

func (s *DomainRecordService) CreateInferredTransaction(ctx context.Context, userID uuid.UUID, calendarEventID int64, amount float64, description string, occurredAt time.Time) (int64, error) {
	return s.repo.InsertTransaction(ctx, s.db, userID, calendarEventID, amount, description, occurredAt)
}

func (s *DomainRecordService) LogInferredMeal(ctx context.Context, userID uuid.UUID, calendarEventID int64, mealType string, durationMinutes int, occurredAt time.Time) (int64, error) {
	return s.repo.InsertMeal(ctx, s.db, userID, calendarEventID, mealType, durationMinutes, occurredAt)
}

func (s *DomainRecordService) LogInferredWorkout(ctx context.Context, userID uuid.UUID, calendarEventID int64, workoutType string, durationMinutes int, location string, occurredAt time.Time) (int64, error) {
	return s.repo.InsertWorkout(ctx, s.db, userID, calendarEventID, workoutType, durationMinutes, location, occurredAt)
}

func (s *DomainRecordService) LogInferredHabit(ctx context.Context, userID uuid.UUID, calendarEventID int64, habitName string, occurredAt time.Time) (int64, error) {
	return s.repo.InsertHabitLog(ctx, s.db, userID, calendarEventID, habitName, occurredAt)
}

func (s *DomainRecordService) LogInferredPractice(ctx context.Context, userID uuid.UUID, calendarEventID int64, skillName string, durationMinutes int, occurredAt time.Time) (int64, error) {
	return s.repo.InsertPracticeSession(ctx, s.db, userID, calendarEventID, skillName, durationMinutes, occurredAt)
}

func (s *DomainRecordService) LogInferredWorkSession(ctx context.Context, userID uuid.UUID, calendarEventID int64, description string, durationMinutes int, occurredAt time.Time) (int64, error) {
	return s.repo.InsertWorkSession(ctx, s.db, userID, calendarEventID, description, durationMinutes, occurredAt)
}

func (s *DomainRecordService) LogInferredInteraction(ctx context.Context, userID uuid.UUID, calendarEventID int64, personName, interactionType string, occurredAt time.Time) (int64, error) {
	return s.repo.InsertInteraction(ctx, s.db, userID, calendarEventID, personName, interactionType, occurredAt)
}
