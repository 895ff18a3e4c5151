package outbox

import (
	"context"
	"time"

	"lifeos/pkg/logger"
)

// Runner invokes the dispatcher on a fixed interval until the context is
// cancelled. Production deployments may instead drive DispatchReady from an
// external scheduler; the dispatcher itself does not care.
type Runner struct {
	dispatcher *Dispatcher
	interval   time.Duration
	logger     *logger.Logger
}

func NewRunner(dispatcher *Dispatcher, interval time.Duration, l *logger.Logger) *Runner {
	return &Runner{dispatcher: dispatcher, interval: interval, logger: l}
}

func (r *Runner) Start(ctx context.Context) {
	go r.run(ctx)
}

func (r *Runner) run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Per-message failures are handled inside the dispatcher;
			// an error here means the batch itself could not be claimed.
			if _, err := r.dispatcher.DispatchReady(ctx); err != nil {
				r.logger.Errorf("outbox runner: dispatch batch: %v", err)
			}
		}
	}
}
