// Package normalize implements the value normalizers: date parsing, amount
// parsing, payment-method extraction, entity-name extraction, and
// credit/debit direction determination, from raw extracted strings.
//
// Grounded on the source project's pdf_normalizer/values_extract.py,
// translated from Python's dateutil/regex usage into Go's time and
// regexp packages, and from Decimal-returning-string semantics into
// shopspring/decimal.
package normalize

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-pipeline/internal/models"
)

var ErrInvalidDate = errors.New("normalize: invalid date")
var ErrUnparseableAmount = errors.New("normalize: unparseable amount")

// dayFirstLayouts are tried in order; mirrors dateutil.parser.parse's
// dayfirst=True behavior for the formats seen across the example banks.
var dayFirstLayouts = []string{
	"02/01/2006",
	"02/01/06",
	"02-01-2006",
	"02-01-06",
	"2 Jan, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2-Jan-2006",
	"2-Jan-06",
}

// ParseDate tolerantly parses a day-first date string, returning a time.Time
// truncated to the calendar day. Empty or unparseable input is
// ErrInvalidDate.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

var nonAmountChars = regexp.MustCompile(`[^0-9.]`)

// ParseAmount strips all non-digit-or-decimal-point characters and parses
// the remainder as a non-negative decimal. An empty result after stripping
// yields ErrUnparseableAmount, matching the "empty result → null" rule.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := nonAmountChars.ReplaceAllString(s, "")
	cleaned = strings.Trim(cleaned, ".")
	if cleaned == "" {
		return decimal.Zero, ErrUnparseableAmount
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, ErrUnparseableAmount
	}
	return d.Abs(), nil
}

// paymentMethodRule is one entry of the ordered payment-method table.
type paymentMethodRule struct {
	method  string
	pattern *regexp.Regexp
}

// paymentMethodRules is the exact ordered table required by the spec;
// order matters because the first match wins.
var paymentMethodRules = []paymentMethodRule{
	{"UPI", regexp.MustCompile(`^UPI`)},
	{"NEFT", regexp.MustCompile(`^NEFT`)},
	{"IMPS", regexp.MustCompile(`^IMPS`)},
	{"RTGS", regexp.MustCompile(`^RTGS`)},
	{"NACH", regexp.MustCompile(`^NACH`)},
	{"RTNCHG", regexp.MustCompile(`^RTNCHG`)},
	{"ACH", regexp.MustCompile(`^ACH`)},
	{"CHEQUE", regexp.MustCompile(`^(CHQ|CHEQUE|CLG)`)},
	{"ATM", regexp.MustCompile(`\b(ATW|ATL)\b`)},
	{"CARD", regexp.MustCompile(`(VISA|MASTERCARD|RUPAY|DEBIT CARD|CREDIT CARD|POS)`)},
	{"NETBANKING", regexp.MustCompile(`(INB|NETBANKING|NET BANKING)`)},
	{"MOBILE_BANKING", regexp.MustCompile(`\bMB\b`)},
}

// ExtractPaymentMethod applies the ordered regex table against the
// upper-cased description. Returns "" if nothing matches.
func ExtractPaymentMethod(description string) string {
	upper := strings.ToUpper(description)
	for _, rule := range paymentMethodRules {
		if rule.pattern.MatchString(upper) {
			return rule.method
		}
	}
	return ""
}

var (
	upiSlashes = regexp.MustCompile(`/`)
	neftDash   = regexp.MustCompile(`^(NEFT|IMPS|RTGS)-[^-]+-([^-]+)`)
)

// ExtractEntityName dispatches by narration prefix, per the exact rules in
// the spec's value-normalizer table.
func ExtractEntityName(description string) string {
	upper := strings.ToUpper(strings.TrimSpace(description))

	switch {
	case strings.HasPrefix(upper, "UPI"):
		parts := upiSlashes.Split(description, -1)
		if len(parts) > 3 {
			return strings.TrimSpace(parts[3])
		}
		if len(parts) > 1 {
			return strings.TrimSpace(parts[1])
		}
		return ""

	case strings.HasPrefix(upper, "NEFT"), strings.HasPrefix(upper, "IMPS"), strings.HasPrefix(upper, "RTGS"):
		if m := neftDash.FindStringSubmatch(description); m != nil {
			return strings.TrimSpace(m[2])
		}
		return ""

	case strings.HasPrefix(upper, "NACH"), strings.HasPrefix(upper, "ACH"):
		parts := strings.Split(description, "/")
		if len(parts) == 0 {
			return ""
		}
		return strings.TrimSpace(parts[len(parts)-1])

	case strings.HasPrefix(upper, "RTNCHG"):
		parts := strings.Split(description, "/")
		if len(parts) >= 2 {
			return strings.TrimSpace(parts[len(parts)-2])
		}
		return ""

	default:
		return ""
	}
}

var crDrPattern = regexp.MustCompile(`(?i)\b(Cr|Dr)\b`)

// DetermineDirection looks for a whole-word Cr/Dr marker in the narration.
// Returns false as the second value if no marker is present, leaving the
// caller to decide from column presence instead.
func DetermineDirection(description string) (models.Direction, bool) {
	m := crDrPattern.FindStringSubmatch(description)
	if m == nil {
		return "", false
	}
	if strings.EqualFold(m[1], "Cr") {
		return models.DirectionCredit, true
	}
	return models.DirectionDebit, true
}
