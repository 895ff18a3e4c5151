package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"lifeos/internal/domain/outbox"
	"lifeos/internal/repository"
)

// EnqueueEvent serializes payload and writes it to the outbox on the
// caller's transaction, so the event commits together with the domain
// write.
func EnqueueEvent(ctx context.Context, repo repository.OutboxRepository, tx repository.DBTX, eventType string, userID uuid.UUID, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return repo.Enqueue(ctx, tx, &outbox.Message{
		UserID:    uuid.NullUUID{UUID: userID, Valid: true},
		EventType: eventType,
		Payload:   raw,
	})
}
