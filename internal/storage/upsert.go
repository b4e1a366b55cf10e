package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/insightdelivered/statement-pipeline/internal/models"
)

// DefaultChunkSize is the batch size the upsert writer targets absent an
// explicit override, grounded on
// model_actions/transactions.py::bulk_insert_transactions's 30-50 row
// chunks.
const DefaultChunkSize = 40

// ErrMissingDate is the pre-validation failure recorded for a row whose
// date never resolved — the one condition the writer rejects before ever
// reaching Postgres, since every other field tolerates a null.
var ErrMissingDate = errors.New("storage: transaction has no date")

// RowError records one row's failure within a chunk without aborting the
// rest of the run.
type RowError struct {
	Index       int
	ReferenceID string
	Err         error
}

// UpsertResult summarizes a full UpsertTransactions run across every chunk.
type UpsertResult struct {
	Inserted int
	Failed   int
	Errors   []RowError
}

// execer is the subset of pgx.Tx/pgxpool.Conn the upsert writer needs.
// Narrowing to this interface lets tests exercise the chunk/fallback logic
// against a fake without a live Postgres.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// UpsertTransactions attempts a single batched INSERT per chunk; a chunk
// whose batched statement fails falls back to row-by-row inserts for that
// chunk, accumulating per-row errors without aborting the run. Conflict
// target is (user_id, reference_id) where reference_id is not null — a
// second insert for the same reference updates the categorized fields
// rather than duplicating the row, per the idempotence requirement.
func (t *TaskConn) UpsertTransactions(ctx context.Context, txs []*models.Transaction, chunkSize int) (UpsertResult, error) {
	return upsertAll(ctx, t.conn, txs, chunkSize)
}

func upsertAll(ctx context.Context, ex execer, txs []*models.Transaction, chunkSize int) (UpsertResult, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	var result UpsertResult
	for start := 0; start < len(txs); start += chunkSize {
		end := start + chunkSize
		if end > len(txs) {
			end = len(txs)
		}
		inserted, errs := upsertChunk(ctx, ex, txs[start:end], start)
		result.Inserted += inserted
		result.Errors = append(result.Errors, errs...)
		result.Failed += len(errs)
	}
	return result, nil
}

func upsertChunk(ctx context.Context, ex execer, chunk []*models.Transaction, baseIndex int) (int, []RowError) {
	var errs []RowError
	valid := make([]*models.Transaction, 0, len(chunk))
	validIndex := make([]int, 0, len(chunk))
	for i, tx := range chunk {
		if tx.Date.IsZero() {
			errs = append(errs, RowError{Index: baseIndex + i, ReferenceID: refOf(tx), Err: ErrMissingDate})
			continue
		}
		valid = append(valid, tx)
		validIndex = append(validIndex, baseIndex+i)
	}
	if len(valid) == 0 {
		return 0, errs
	}

	sql, args := buildBatchInsert(valid)
	if _, err := ex.Exec(ctx, sql, args...); err == nil {
		return len(valid), errs
	}

	// Batched statement failed — fall back to row-by-row so the chunk's
	// good rows still land.
	inserted := 0
	for i, tx := range valid {
		sql, args := buildRowInsert(tx)
		if _, err := ex.Exec(ctx, sql, args...); err != nil {
			errs = append(errs, RowError{Index: validIndex[i], ReferenceID: refOf(tx), Err: err})
			continue
		}
		inserted++
	}
	return inserted, errs
}

func refOf(tx *models.Transaction) string {
	if tx.ReferenceID != nil {
		return *tx.ReferenceID
	}
	return ""
}

const upsertConflictClause = `
	ON CONFLICT (user_id, reference_id) WHERE reference_id IS NOT NULL DO UPDATE SET
		description = EXCLUDED.description,
		entity_name = EXCLUDED.entity_name,
		amount = EXCLUDED.amount,
		currency = EXCLUDED.currency,
		direction = EXCLUDED.direction,
		payment_method = EXCLUDED.payment_method,
		category_id = EXCLUDED.category_id,
		tag_id = EXCLUDED.tag_id,
		type_id = EXCLUDED.type_id,
		payment_method_id = EXCLUDED.payment_method_id,
		goal_id = EXCLUDED.goal_id,
		updated_at = now()`

const insertColumns = `user_id, bank_account_id, transaction_date, description, entity_name, amount, currency, direction, payment_method, reference_id, category_id, tag_id, type_id, payment_method_id, goal_id`

func buildRowInsert(tx *models.Transaction) (string, []any) {
	sql := fmt.Sprintf(`INSERT INTO transactions (%s) VALUES (%s)%s`,
		insertColumns, placeholders(1, rowArity), upsertConflictClause)
	return sql, rowArgs(tx)
}

func buildBatchInsert(txs []*models.Transaction) (string, []any) {
	var tuples []string
	var args []any
	for i, tx := range txs {
		tuples = append(tuples, "("+placeholders(i*rowArity+1, rowArity)+")")
		args = append(args, rowArgs(tx)...)
	}
	sql := fmt.Sprintf(`INSERT INTO transactions (%s) VALUES %s%s`,
		insertColumns, strings.Join(tuples, ", "), upsertConflictClause)
	return sql, args
}

const rowArity = 15

func placeholders(from, count int) string {
	ph := make([]string, count)
	for i := 0; i < count; i++ {
		ph[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ph, ", ")
}

func rowArgs(tx *models.Transaction) []any {
	return []any{
		tx.UserID, tx.BankAccountID, tx.Date, tx.Description, tx.EntityName,
		tx.Amount, tx.Currency, string(tx.Direction), tx.PaymentMethod, tx.ReferenceID,
		tx.CategoryID, tx.TagID, tx.TypeID, tx.PaymentMethodID, tx.GoalID,
	}
}
