package queue

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Handler processes one task; a returned error is logged but never retried
// past the bounds the caller configures — that policy lives in the pipeline
// package, not here.
type Handler func(ctx context.Context, t Task) error

// Worker repeatedly consumes tasks and runs them through handle one at a
// time, per spec's "worker process/goroutine owns its inputs exclusively."
type Worker struct {
	queue   *Queue
	handle  Handler
	log     zerolog.Logger
	timeout time.Duration
}

func NewWorker(q *Queue, handle Handler, log zerolog.Logger) *Worker {
	return &Worker{queue: q, handle: handle, log: log, timeout: 5 * time.Second}
}

// Run blocks consuming tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		task, err := w.queue.Consume(ctx, w.timeout)
		if err != nil {
			if errors.Is(err, ErrShutdown) || ctx.Err() != nil {
				return nil
			}
			w.log.Error().Err(err).Msg("consuming task")
			continue
		}
		if task == nil {
			continue // timed out waiting, poll again
		}
		taskLog := w.log.With().Str("task_id", task.ID).Logger()
		if err := w.handle(ctx, *task); err != nil {
			taskLog.Error().Err(err).Msg("task failed")
			continue
		}
		taskLog.Info().Msg("task completed")
	}
}
