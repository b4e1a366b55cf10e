package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/insightdelivered/statement-pipeline/internal/extractors"
	"github.com/insightdelivered/statement-pipeline/internal/models"
	"github.com/insightdelivered/statement-pipeline/internal/rows"
	"github.com/insightdelivered/statement-pipeline/internal/storage"
	"github.com/rs/zerolog"
)

type fakeStore struct {
	user          *models.User
	userErr       error
	account       *models.BankAccount
	rules         []*models.Rule
	upserted      []*models.Transaction
	upsertResult  storage.UpsertResult
	upsertErr     error
	credential    *models.StatementCredential
	credentialErr error
}

func (f *fakeStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.user, f.userErr
}

func (f *fakeStore) FindStatementCredential(ctx context.Context, userID int64, senderEmail, filename string) (*models.StatementCredential, error) {
	return f.credential, f.credentialErr
}

func (f *fakeStore) GetOrCreateBankAccount(ctx context.Context, userID int64, details models.AccountDetails) (*models.BankAccount, error) {
	return f.account, nil
}

func (f *fakeStore) FetchActiveRules(ctx context.Context, userID, bankAccountID int64) ([]*models.Rule, error) {
	return f.rules, nil
}

func (f *fakeStore) UpsertTransactions(ctx context.Context, txs []*models.Transaction, chunkSize int) (storage.UpsertResult, error) {
	f.upserted = txs
	return f.upsertResult, f.upsertErr
}

type fakePDF struct {
	encrypted bool
	pages     []string
}

func (f fakePDF) IsEncrypted(path string) (bool, error)         { return f.encrypted, nil }
func (f fakePDF) Unlock(path, password string) (string, error)  { return path + ".unlocked", nil }
func (f fakePDF) ExtractPages(path string) ([]string, error)    { return f.pages, nil }

type fakeDecryptor struct{}

func (fakeDecryptor) DecryptString(token string) (string, error) { return "secret", nil }

type fakeExtractor struct{}

func (fakeExtractor) BankName() models.BankName { return "TEST" }
func (fakeExtractor) Detect(headerText string) bool { return true }
func (fakeExtractor) ParseAccountDetails(headerText string) (models.AccountDetails, error) {
	return models.AccountDetails{Number: "ACC123", Type: models.AccountSavings}, nil
}
func (fakeExtractor) ParseRows(logicalRows []rows.LogicalRow) ([]*models.Transaction, error) {
	emptyRef := ""
	return []*models.Transaction{
		{
			Description: "test row",
			Direction:   models.DirectionDebit,
			Currency:    "INR",
			ReferenceID: &emptyRef,
		},
	}, nil
}

func newTestRegistry() *extractors.Registry {
	r := extractors.NewRegistry()
	r.Register(fakeExtractor{})
	return r
}

func TestProcessHappyPathAttachesIdentifiersAndAppliesRules(t *testing.T) {
	store := &fakeStore{
		user:    &models.User{ID: 1, Email: "user@example.com", IsActive: true},
		account: &models.BankAccount{ID: 55, UserID: 1, Number: "ACC123", Type: models.AccountSavings},
		rules: []*models.Rule{
			{ID: 1, DSLText: `rule "r1" where description:con:"test" assign category_id:7 priority 10;`, Priority: 10, IsActive: true},
		},
		upsertResult: storage.UpsertResult{Inserted: 1},
	}
	pdf := fakePDF{pages: []string{"Date  Narration  Amount\nheader"}}
	o := New(store, newTestRegistry(), pdf, fakeDecryptor{}, zerolog.Nop())

	summary, err := o.Process(context.Background(), Input{
		StagedPath: "/staging/a.pdf",
		Filename:   "a.pdf",
		FromEmail:  "statements@sbi.co.in",
		ToEmail:    "user@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summary.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(summary.Transactions))
	}
	tx := summary.Transactions[0]
	if tx.UserID != 1 || tx.BankAccountID != 55 {
		t.Errorf("expected identifiers attached, got user=%d account=%d", tx.UserID, tx.BankAccountID)
	}
	if tx.ReferenceID != nil {
		t.Errorf("expected empty reference_id normalized to nil, got %v", *tx.ReferenceID)
	}
	if tx.CategoryID == nil || *tx.CategoryID != 7 {
		t.Errorf("expected category_id assigned by rule, got %v", tx.CategoryID)
	}
	if len(store.upserted) != 1 {
		t.Errorf("expected 1 transaction handed to upsert writer, got %d", len(store.upserted))
	}
}

func TestProcessUnknownRecipient(t *testing.T) {
	store := &fakeStore{userErr: errors.New("no rows")}
	pdf := fakePDF{}
	o := New(store, newTestRegistry(), pdf, fakeDecryptor{}, zerolog.Nop())

	_, err := o.Process(context.Background(), Input{ToEmail: "ghost@example.com"})
	if !errors.Is(err, ErrUnknownRecipient) {
		t.Errorf("expected ErrUnknownRecipient, got %v", err)
	}
}

func TestProcessDeactivatedRecipientIsUnknown(t *testing.T) {
	store := &fakeStore{user: &models.User{ID: 2, Email: "x@example.com", IsActive: false}}
	pdf := fakePDF{}
	o := New(store, newTestRegistry(), pdf, fakeDecryptor{}, zerolog.Nop())

	_, err := o.Process(context.Background(), Input{ToEmail: "x@example.com"})
	if !errors.Is(err, ErrUnknownRecipient) {
		t.Errorf("expected ErrUnknownRecipient for deactivated user, got %v", err)
	}
}

func TestProcessSkipsUnparseableRuleWithoutFailingTask(t *testing.T) {
	store := &fakeStore{
		user:         &models.User{ID: 1, Email: "user@example.com", IsActive: true},
		account:      &models.BankAccount{ID: 55, UserID: 1, Number: "ACC123"},
		rules:        []*models.Rule{{ID: 9, DSLText: `not valid dsl ###`, Priority: 1, IsActive: true}},
		upsertResult: storage.UpsertResult{Inserted: 1},
	}
	pdf := fakePDF{pages: []string{"Date  Narration  Amount\nheader"}}
	o := New(store, newTestRegistry(), pdf, fakeDecryptor{}, zerolog.Nop())

	summary, err := o.Process(context.Background(), Input{ToEmail: "user@example.com"})
	if err != nil {
		t.Fatalf("a bad rule must not fail the task: %v", err)
	}
	if summary.Transactions[0].CategoryID != nil {
		t.Errorf("expected no category assigned since the only rule failed to parse")
	}
}
