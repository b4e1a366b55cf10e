package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-pipeline/internal/extractors"
	"github.com/insightdelivered/statement-pipeline/internal/queue"
	"github.com/insightdelivered/statement-pipeline/internal/storage"
)

// Handler adapts a queue.Task into one retried Process run, matching
// queue.Handler's signature so it can be passed straight to
// queue.NewWorker. It checks out one pgx connection for the lifetime of
// the task (spec's single-session discipline) rather than sharing a
// process-wide connection across tasks.
func Handler(store *storage.Store, registry *extractors.Registry, pdf PDFAccessor, decryptor Decryptor, log zerolog.Logger) queue.Handler {
	return func(ctx context.Context, t queue.Task) error {
		conn, err := store.AcquireTask(ctx)
		if err != nil {
			return &TransientStorageError{Err: err}
		}
		defer conn.Release()

		o := New(conn, registry, pdf, decryptor, log)
		in := Input{
			StagedPath: t.StagedPath,
			Filename:   t.Filename,
			FromEmail:  t.FromEmail,
			ToEmail:    t.ToEmail,
		}
		summary, err := RunWithRetry(ctx, o, in)
		if err != nil {
			return err
		}
		if summary.ResolvedPath != t.StagedPath {
			CleanupStaged(summary.ResolvedPath)
		}
		CleanupStaged(t.StagedPath)
		return nil
	}
}
