// Package models defines the persistent record shapes shared across the
// pipeline: transactions, bank accounts, statement credentials, and rules.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the sign of a transaction. Always set once a row has been
// extracted — distinct from the optional TypeID a rule may assign.
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// BankName enumerates the banks with a registered Extractor.
type BankName string

const (
	BankUnion BankName = "UNION"
	BankKotak BankName = "KOTAK"
	BankSBI   BankName = "SBI"
	BankHDFC  BankName = "HDFC"
)

// AccountType mirrors the source's AccountType enum.
type AccountType string

const (
	AccountSavings AccountType = "SAVINGS"
	AccountCurrent AccountType = "CURRENT"
	AccountSalary  AccountType = "SALARY"
	AccountNRE     AccountType = "NRE"
	AccountNRO     AccountType = "NRO"
	AccountFD      AccountType = "FD"
	AccountRD      AccountType = "RD"
)

// Transaction is the central record produced by extraction and enriched by
// the rule engine before being upserted.
type Transaction struct {
	ID            int64     `json:"id,omitempty"`
	UserID        int64     `json:"user_id"`
	BankAccountID int64     `json:"bank_account_id"`
	Date          time.Time `json:"transaction_date"`
	Description   string    `json:"description"`
	EntityName    *string   `json:"entity_name,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Direction     Direction       `json:"direction"`
	PaymentMethod *string         `json:"payment_method,omitempty"`
	ReferenceID   *string         `json:"reference_id,omitempty"`

	// Rule-assignable fields. All optional; rules may write any of these,
	// and unrecognized assignment keys are carried in Extra.
	CategoryID      *int64 `json:"category_id,omitempty"`
	TagID           *int64 `json:"tag_id,omitempty"`
	TypeID          *int64 `json:"type_id,omitempty"`
	PaymentMethodID *int64 `json:"payment_method_id,omitempty"`
	GoalID          *int64 `json:"goal_id,omitempty"`

	// Extra carries rule assignments to fields not named above, per the
	// DSL's requirement that any identifier is a legal assignment target.
	Extra map[string]ScalarValue `json:"-"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// ScalarValue is the tagged union a rule assignment can write: Int, String,
// or Decimal. It keeps dynamic assignment fields statically representable.
type ScalarValue struct {
	Kind ScalarKind
	Int  int64
	Str  string
	Dec  decimal.Decimal
}

type ScalarKind int

const (
	ScalarInt ScalarKind = iota
	ScalarString
	ScalarDecimal
)

func IntValue(v int64) ScalarValue     { return ScalarValue{Kind: ScalarInt, Int: v} }
func StringValue(v string) ScalarValue { return ScalarValue{Kind: ScalarString, Str: v} }
func DecimalValue(v decimal.Decimal) ScalarValue {
	return ScalarValue{Kind: ScalarDecimal, Dec: v}
}

// BankAccount is created on-demand during processing via get-or-create
// keyed on Number.
type BankAccount struct {
	ID       int64       `json:"id,omitempty"`
	UserID   int64       `json:"user_id"`
	Number   string      `json:"number"`
	IFSCCode *string     `json:"ifsc_code,omitempty"`
	Type     AccountType `json:"type,omitempty"`
}

// StatementCredential is looked up by a suffix match on filename (last 8
// characters) to tolerate date-stamped variants of the same sender.
type StatementCredential struct {
	UserID            int64  `json:"user_id"`
	SenderEmail       string `json:"sender_email"`
	FilenamePattern   string `json:"filename_pattern"`
	EncryptedPassword string `json:"-"`
	IsActive          bool   `json:"is_active"`
}

// Rule is a stored rule-engine entry; DSLText is parsed into a
// CategorizationRule per task invocation — there is no long-lived AST cache.
type Rule struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"user_id"`
	DSLText       string `json:"dsl_text"`
	Priority      int    `json:"priority"`
	IsActive      bool   `json:"is_active"`
	BankAccountID *int64 `json:"bank_account_id,omitempty"`
}

// AccountDetails is what ParseAccountDetails extracts from statement header
// text before the BankAccount row exists.
type AccountDetails struct {
	Number   string
	IFSCCode string
	Type     AccountType
}

// User is the recipient a staged statement is processed on behalf of.
type User struct {
	ID       int64
	Email    string
	IsActive bool
}
