// Package extractors implements the bank extractor registry: per-bank
// detection, account-header parsing, and row-to-transaction mapping.
//
// Grounded on the source project's pdf_normalizer/parsers/base_parser.py
// (BankStatementParser ABC) and pdf_normalizer/banks/*.py, translated from
// inheritance to an explicit capability-set interface registered in a
// table, per the spec's redesign note.
package extractors

import (
	"errors"
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-pipeline/internal/models"
	"github.com/insightdelivered/statement-pipeline/internal/rows"
)

var ErrUnsupportedBank = errors.New("extractors: unsupported bank statement")

// Extractor is the capability set every registered bank must implement.
type Extractor interface {
	BankName() models.BankName
	Detect(headerText string) bool
	ParseAccountDetails(headerText string) (models.AccountDetails, error)
	ParseRows(logicalRows []rows.LogicalRow) ([]*models.Transaction, error)
}

// Registry resolves an Extractor by sender-domain hint first, then content
// detection in registration order — the spec's pinned resolution of the
// bank-detection-order open question.
type Registry struct {
	byName       map[models.BankName]Extractor
	order        []Extractor
	domainHints  []domainHint
}

type domainHint struct {
	bank    models.BankName
	pattern *regexp.Regexp
}

// bankEmailPatterns mirrors the source's BANK_EMAIL_PATTERNS table: a
// sender-domain regex per bank used to shortcut content detection.
var bankEmailPatterns = map[models.BankName]string{
	models.BankSBI:   `sbi\.co\.in|@sbi\.`,
	models.BankKotak: `kotak\.com|kkbk`,
	models.BankUnion: `unionbankofindia\.co\.in|ubin`,
	models.BankHDFC:  `hdfcbank\.com`,
}

func NewRegistry() *Registry {
	r := &Registry{byName: make(map[models.BankName]Extractor)}
	for bank, pattern := range bankEmailPatterns {
		r.domainHints = append(r.domainHints, domainHint{bank: bank, pattern: regexp.MustCompile(`(?i)` + pattern)})
	}
	return r
}

// Register adds an extractor in insertion order; order determines content
// detection fallback precedence.
func (r *Registry) Register(e Extractor) {
	r.byName[e.BankName()] = e
	r.order = append(r.order, e)
}

// Resolve picks an extractor for senderEmail/headerText: an explicit
// sender-domain hint wins outright; otherwise each registered Detect is
// tried in insertion order.
func (r *Registry) Resolve(senderEmail, headerText string) (Extractor, error) {
	lowerSender := strings.ToLower(senderEmail)
	for _, hint := range r.domainHints {
		if hint.pattern.MatchString(lowerSender) {
			if e, ok := r.byName[hint.bank]; ok {
				return e, nil
			}
		}
	}
	for _, e := range r.order {
		if e.Detect(headerText) {
			return e, nil
		}
	}
	return nil, ErrUnsupportedBank
}
