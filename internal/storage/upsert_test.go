package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/insightdelivered/statement-pipeline/internal/models"
)

// fakeExecer lets the chunk/fallback logic be exercised without a live
// Postgres connection. failBatches forces every multi-row statement to
// fail, triggering the per-row fallback; failRefs fails any single-row
// statement whose reference id matches. calls counts every statement run.
type fakeExecer struct {
	failBatches bool
	failRefs    map[string]bool
	calls       int
}

func (f *fakeExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls++
	isBatch := strings.Count(sql, "($") > 1
	if isBatch && f.failBatches {
		return pgconn.CommandTag{}, errors.New("simulated batch failure")
	}
	if !isBatch && len(f.failRefs) > 0 {
		// reference_id is the 10th positional arg (index 9).
		if ref, ok := args[9].(*string); ok && ref != nil && f.failRefs[*ref] {
			return pgconn.CommandTag{}, errors.New("simulated row failure")
		}
	}
	return pgconn.CommandTag{}, nil
}

func mkTx(i int, ref string, withDate bool) *models.Transaction {
	tx := &models.Transaction{
		UserID:        1,
		BankAccountID: 1,
		Description:   "test row",
		Amount:        decimal.NewFromInt(int64(100 + i)),
		Currency:      "INR",
		Direction:     models.DirectionDebit,
	}
	if withDate {
		tx.Date = time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	}
	if ref != "" {
		r := ref
		tx.ReferenceID = &r
	}
	return tx
}

func TestUpsertBatchSucceedsWithoutFallback(t *testing.T) {
	var txs []*models.Transaction
	for i := 0; i < 5; i++ {
		txs = append(txs, mkTx(i, "", true))
	}
	ex := &fakeExecer{}
	result, err := upsertAll(context.Background(), ex, txs, 40)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Inserted != 5 || result.Failed != 0 {
		t.Errorf("expected 5 inserted, 0 failed, got %+v", result)
	}
}

func TestUpsertFallbackOnBadRow(t *testing.T) {
	// Scenario: a batch of 30 records where record index 7 has an invalid
	// date. Expected: 29 inserted, 1 error at index 7.
	var txs []*models.Transaction
	for i := 0; i < 30; i++ {
		txs = append(txs, mkTx(i, "", i != 7))
	}
	ex := &fakeExecer{}
	result, err := upsertAll(context.Background(), ex, txs, 40)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Inserted != 29 {
		t.Errorf("expected 29 inserted, got %d", result.Inserted)
	}
	if result.Failed != 1 || len(result.Errors) != 1 {
		t.Fatalf("expected exactly 1 error, got %+v", result.Errors)
	}
	if result.Errors[0].Index != 7 {
		t.Errorf("expected failure at index 7, got %d", result.Errors[0].Index)
	}
	if !errors.Is(result.Errors[0].Err, ErrMissingDate) {
		t.Errorf("expected ErrMissingDate, got %v", result.Errors[0].Err)
	}
}

func TestUpsertFallsBackRowByRowOnBatchFailure(t *testing.T) {
	txs := []*models.Transaction{
		mkTx(0, "ref-a", true),
		mkTx(1, "ref-b", true),
		mkTx(2, "ref-c", true),
	}
	ex := &fakeExecer{failBatches: true, failRefs: map[string]bool{"ref-b": true}}
	result, err := upsertAll(context.Background(), ex, txs, 40)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Inserted != 2 {
		t.Errorf("expected 2 inserted after fallback, got %d", result.Inserted)
	}
	if result.Failed != 1 || result.Errors[0].ReferenceID != "ref-b" {
		t.Errorf("expected ref-b to fail, got %+v", result.Errors)
	}
}

func TestUpsertChunksRespectChunkSize(t *testing.T) {
	var txs []*models.Transaction
	for i := 0; i < 85; i++ {
		txs = append(txs, mkTx(i, "", true))
	}
	ex := &fakeExecer{}
	result, err := upsertAll(context.Background(), ex, txs, 40)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Inserted != 85 {
		t.Errorf("expected all 85 rows inserted across 3 chunks, got %d", result.Inserted)
	}
	if ex.calls != 3 {
		t.Errorf("expected 3 chunk statements (40+40+5), got %d", ex.calls)
	}
}
