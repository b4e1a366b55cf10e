// Package queue is the system's task-submission boundary. The HTTP upload
// path submits a task handle and returns immediately; a Worker elsewhere
// consumes tasks and drives the pipeline orchestrator. Grounded on the
// opaque "submit task / get handle" contract of
// tasks/bank_statement_upload.py's Celery `.delay()` call, re-expressed over
// a Redis list since Go has no Celery broker in the example pack —
// github.com/redis/go-redis/v9 is the queue library seen across the pack's
// finance-domain repos (GabiHert-finance-tracker-backend, aliuyar1234-
// austrian-business-infrastructure, mulutu-paymatch, txplain-txplain).
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const listKey = "statement_pipeline:tasks"

// Task is the payload a Submit call enqueues: everything the orchestrator
// needs to process one uploaded statement.
type Task struct {
	ID          string    `json:"id"`
	StagedPath  string    `json:"staged_path"`
	Filename    string    `json:"filename"`
	Subject     string    `json:"subject"`
	FromEmail   string    `json:"from_email"`
	ToEmail     string    `json:"to_email"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Queue wraps a Redis list as the submit/consume primitive.
type Queue struct {
	client *redis.Client
}

func New(redisURL string) (*Queue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return &Queue{client: redis.NewClient(opts)}, nil
}

func (q *Queue) Close() error {
	return q.client.Close()
}

func (q *Queue) Healthy(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Submit enqueues a task and returns its id immediately; it never blocks on
// processing. Mirrors Celery's `task_obj.id` handle semantics with a
// google/uuid v4.
func (q *Queue) Submit(ctx context.Context, t Task) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	payload, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("marshalling task: %w", err)
	}
	if err := q.client.LPush(ctx, listKey, payload).Err(); err != nil {
		return "", fmt.Errorf("enqueuing task: %w", err)
	}
	return t.ID, nil
}

// ErrShutdown is returned by Consume when the context is cancelled while
// waiting for work.
var ErrShutdown = errors.New("queue: shutting down")

// Consume blocks for up to timeout waiting for one task, or returns
// ErrShutdown if ctx is done first. A zero timeout blocks indefinitely.
func (q *Queue) Consume(ctx context.Context, timeout time.Duration) (*Task, error) {
	res, err := q.client.BRPop(ctx, timeout, listKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil // timed out, nothing to do
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrShutdown
		}
		return nil, fmt.Errorf("consuming task: %w", err)
	}
	// res[0] is the list key, res[1] is the payload.
	var t Task
	if err := json.Unmarshal([]byte(res[1]), &t); err != nil {
		return nil, fmt.Errorf("unmarshalling task: %w", err)
	}
	return &t, nil
}
