package outbox

import (
	"context"
	"time"

	"lifeos/internal/domain/outbox"
	"lifeos/internal/repository"
	"lifeos/pkg/logger"
)

// Dispatcher drains the outbox: claim a batch, deliver each message through
// the adapter, then mark sent or failed. It holds no state of its own;
// mutual exclusion between concurrent dispatcher processes comes entirely
// from the row locks taken at dequeue.
type Dispatcher struct {
	repo         repository.OutboxRepository
	adapter      Adapter
	logger       *logger.Logger
	clock        func() time.Time
	batchSize    int
	retryBackoff time.Duration
	maxAttempts  int
}

func NewDispatcher(repo repository.OutboxRepository, adapter Adapter, l *logger.Logger, batchSize int, retryBackoff time.Duration, maxAttempts int) *Dispatcher {
	return &Dispatcher{
		repo:         repo,
		adapter:      adapter,
		logger:       l,
		clock:        time.Now,
		batchSize:    batchSize,
		retryBackoff: retryBackoff,
		maxAttempts:  maxAttempts,
	}
}

func DefaultDispatcher(repo repository.OutboxRepository, adapter Adapter, l *logger.Logger) *Dispatcher {
	return NewDispatcher(repo, adapter, l, 50, 5*time.Minute, outbox.MaxDispatchAttempts)
}

// DispatchReady processes one batch of dispatchable messages. Delivery
// failures are isolated per message; a failing message is rescheduled (or
// parked dead after the attempt cap) and the rest of the batch proceeds.
// Returns the number of messages delivered.
func (d *Dispatcher) DispatchReady(ctx context.Context) (int, error) {
	batch, err := d.repo.DequeueBatch(ctx, d.batchSize)
	if err != nil {
		return 0, err
	}
	if len(batch) == 0 {
		return 0, nil
	}

	var sentIDs []int64
	for _, msg := range batch {
		if err := d.adapter.Deliver(ctx, msg); err != nil {
			availableAt := d.clock().Add(d.retryBackoff)
			if markErr := d.repo.MarkFailed(ctx, msg.ID, err.Error(), availableAt, d.maxAttempts); markErr != nil {
				d.logger.Errorf("outbox: failed to mark message %d failed: %s", msg.ID, markErr)
			}
			d.logger.Warnf("outbox: delivery of message %d (%s) failed on attempt %d: %s", msg.ID, msg.EventType, msg.Attempts, err)
			continue
		}
		sentIDs = append(sentIDs, msg.ID)
	}

	if err := d.repo.MarkSent(ctx, sentIDs); err != nil {
		return len(sentIDs), err
	}
	return len(sentIDs), nil
}
