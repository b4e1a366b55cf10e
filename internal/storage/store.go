// Package storage is the system's only collaborator with Postgres:
// connection pooling, schema migration, bank account/credential lookups,
// and the chunked upsert writer. Grounded on
// core/database.py's pooled-connection discipline, re-expressed over
// github.com/jackc/pgx/v5's pgxpool rather than psycopg_pool.
package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a pgx connection pool. One Store is created at startup and
// shared; each pipeline task checks out its own connection for the task's
// lifetime per the single-session discipline the orchestrator requires.
type Store struct {
	pool *pgxpool.Pool
}

func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Healthy reports whether the pool can currently reach Postgres, for the
// liveness probe.
func (s *Store) Healthy(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// AcquireTask checks out one connection for the lifetime of a pipeline task,
// per spec's "one connection per task" discipline. Callers must Release it
// when the task completes.
func (s *Store) AcquireTask(ctx context.Context) (*TaskConn, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring task connection: %w", err)
	}
	return &TaskConn{conn: conn}, nil
}

// TaskConn is the single connection a pipeline task threads through every
// storage call it makes, so get-or-create, rule fetch, and upsert all run
// against the same session.
type TaskConn struct {
	conn *pgxpool.Conn
}

func (t *TaskConn) Release() {
	t.conn.Release()
}
