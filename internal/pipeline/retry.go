package pipeline

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"
)

// RunWithRetry retries Process only for TransientStorageError — a dropped
// connection or pool exhaustion — bounded to 3 attempts with exponential
// backoff and jitter. Every other error (bad rows, unknown recipient,
// unsupported bank) is terminal and returned immediately.
func RunWithRetry(ctx context.Context, o *Orchestrator, in Input) (*Summary, error) {
	var summary *Summary
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2)

	operation := func() error {
		s, err := o.Process(ctx, in)
		if err == nil {
			summary = s
			return nil
		}
		var transient *TransientStorageError
		if errors.As(err, &transient) {
			return err // retryable
		}
		return backoff.Permanent(err)
	}

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}
	return summary, nil
}
