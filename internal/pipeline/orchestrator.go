// Package pipeline is the orchestrator (C8): the single place that walks a
// staged statement through user lookup, decryption, bank detection, row
// extraction, rule application, and the upsert handoff. Grounded on
// tasks/bank_statement_upload.py::process_bank_pdf.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/insightdelivered/statement-pipeline/internal/extractors"
	"github.com/insightdelivered/statement-pipeline/internal/models"
	"github.com/insightdelivered/statement-pipeline/internal/ruledsl/ast"
	"github.com/insightdelivered/statement-pipeline/internal/ruledsl/eval"
	"github.com/insightdelivered/statement-pipeline/internal/ruledsl/parser"
	"github.com/insightdelivered/statement-pipeline/internal/rows"
	"github.com/insightdelivered/statement-pipeline/internal/storage"
	"github.com/rs/zerolog"
)

// Store is the subset of storage.TaskConn the orchestrator needs — narrowed
// to an interface so a task's ten steps can be tested without Postgres.
type Store interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindStatementCredential(ctx context.Context, userID int64, senderEmail, filename string) (*models.StatementCredential, error)
	GetOrCreateBankAccount(ctx context.Context, userID int64, details models.AccountDetails) (*models.BankAccount, error)
	FetchActiveRules(ctx context.Context, userID, bankAccountID int64) ([]*models.Rule, error)
	UpsertTransactions(ctx context.Context, txs []*models.Transaction, chunkSize int) (storage.UpsertResult, error)
}

// Decryptor decodes a stored encrypted_password column back into plaintext.
type Decryptor interface {
	DecryptString(token string) (string, error)
}

// Input is everything one pipeline task carries in from the queue.
type Input struct {
	StagedPath  string
	Filename    string
	FromEmail   string
	ToEmail     string // recipient, resolved against users.email
}

// Summary is the per-task result the orchestrator returns, per spec.md
// §4.8 step 10.
type Summary struct {
	Inserted       int
	Failed         int
	Errors         []storage.RowError
	AccountDetails models.AccountDetails
	Transactions   []*models.Transaction
	ResolvedPath   string // the unlocked path actually read, for cleanup
}

type Orchestrator struct {
	store     Store
	registry  *extractors.Registry
	pdf       PDFAccessor
	decryptor Decryptor
	log       zerolog.Logger
	chunkSize int
}

func New(store Store, registry *extractors.Registry, pdf PDFAccessor, decryptor Decryptor, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{store: store, registry: registry, pdf: pdf, decryptor: decryptor, log: log, chunkSize: storage.DefaultChunkSize}
}

func (o *Orchestrator) Process(ctx context.Context, in Input) (*Summary, error) {
	// Step 1: resolve the recipient.
	user, err := o.store.FindUserByEmail(ctx, in.ToEmail)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownRecipient, err)
	}
	if !user.IsActive {
		return nil, ErrUnknownRecipient
	}

	// Step 2: decrypt if needed.
	path, err := o.unlockIfNeeded(ctx, user.ID, in)
	if err != nil {
		return nil, err
	}

	// Step 3: bank detection from header text.
	pages, err := o.pdf.ExtractPages(path)
	if err != nil {
		return nil, fmt.Errorf("extracting pdf text: %w", err)
	}
	ext, err := resolveExtractor(o.registry, in.FromEmail, pages)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedBank, err)
	}

	// Step 4: account header parse + get-or-create.
	details, err := ext.ParseAccountDetails(headerText(pages))
	if err != nil {
		return nil, fmt.Errorf("parsing account details: %w", err)
	}
	account, err := o.store.GetOrCreateBankAccount(ctx, user.ID, details)
	if err != nil {
		return nil, fmt.Errorf("resolving bank account: %w", err)
	}

	// Step 5: row reconstruction + parse_rows.
	tables := rows.FromPageText(pages)
	logicalRows := rows.Reconstruct(tables)
	txs, err := ext.ParseRows(logicalRows)
	if err != nil {
		return nil, fmt.Errorf("parsing rows: %w", err)
	}
	if len(txs) == 0 && len(tables) > 0 {
		return nil, ErrNoTransactions
	}

	// Step 6: fetch active rules scoped to this account (or global).
	ruleRows, err := o.store.FetchActiveRules(ctx, user.ID, account.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching rules: %w", err)
	}

	// Step 7: parse rule text; bad rules are logged and skipped, never fatal.
	var parsed []*ast.CategorizationRule
	for _, r := range ruleRows {
		rule, perr := parser.Parse(r.DSLText)
		if perr != nil {
			o.log.Warn().Err(perr).Int64("rule_id", r.ID).Msg("skipping unparseable rule")
			continue
		}
		rule.Priority = r.Priority
		rule.IsActive = r.IsActive
		parsed = append(parsed, rule)
	}
	categorizer := eval.NewCategorizer(parsed)

	// Step 8: categorize the batch.
	enriched := categorizer.CategorizeBatch(txs)

	// Step 9: attach identifiers, normalize empty reference_id to null.
	for _, tx := range enriched {
		tx.UserID = user.ID
		tx.BankAccountID = account.ID
		if tx.ReferenceID != nil && strings.TrimSpace(*tx.ReferenceID) == "" {
			tx.ReferenceID = nil
		}
	}

	// Step 10: hand off to the upsert writer.
	result, err := o.store.UpsertTransactions(ctx, enriched, o.chunkSize)
	if err != nil {
		return nil, &TransientStorageError{Err: err}
	}

	return &Summary{
		Inserted:       result.Inserted,
		Failed:         result.Failed,
		Errors:         result.Errors,
		AccountDetails: details,
		Transactions:   enriched,
		ResolvedPath:   path,
	}, nil
}

func (o *Orchestrator) unlockIfNeeded(ctx context.Context, userID int64, in Input) (string, error) {
	encrypted, err := o.pdf.IsEncrypted(in.StagedPath)
	if err != nil {
		return "", fmt.Errorf("checking pdf encryption: %w", err)
	}
	if !encrypted {
		return in.StagedPath, nil
	}

	cred, err := o.store.FindStatementCredential(ctx, userID, in.FromEmail, in.Filename)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPasswordMissing, err)
	}
	password, err := o.decryptor.DecryptString(cred.EncryptedPassword)
	if err != nil {
		return "", fmt.Errorf("%w: decoding stored credential: %v", ErrBadPassword, err)
	}
	unlocked, err := o.pdf.Unlock(in.StagedPath, password)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadPassword, err)
	}
	return unlocked, nil
}

// CleanupStaged removes a staged upload. Callers invoke this once a task
// has fully succeeded (including any retries) — not from inside Process,
// since a transient storage failure should leave the staged file in place
// for the next retry to re-read.
func CleanupStaged(path string) {
	_ = os.Remove(path)
}
