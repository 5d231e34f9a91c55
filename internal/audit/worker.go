package audit

import (
	"context"
	"log/slog"
)

const batchSize = 100

// Worker drains the buffer into a sink. Publishing is best effort: a failed
// envelope is logged and skipped, the persisted record remains authoritative.
type Worker struct {
	sink   Sink
	inbox  *Buffer
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox *Buffer, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.inbox.Ready():
			w.drain(ctx)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	for {
		batch := w.inbox.DequeueBatch(batchSize)
		if len(batch) == 0 {
			return
		}
		for _, env := range batch {
			if err := w.sink.Publish(ctx, env); err != nil {
				w.logger.WarnContext(ctx, "audit publish failed",
					"kind", env.Kind,
					"instance_id", env.Key(),
					"error", err,
				)
			}
		}
	}
}
