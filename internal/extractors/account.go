package extractors

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-pipeline/internal/models"
)

var (
	accountNumberRe = regexp.MustCompile(`(?i)(?:ACCOUNT|A/?C|ACCT)\s*(?:NO\.?|NUMBER|#)?\s*[:\-]?\s*(\d{9,18})`)
	accountTypeRe   = regexp.MustCompile(`(?i)(SAVINGS?|CURRENT|SALARY|NRE|NRO|FIXED DEPOSIT|FD|RD|RECURRING)\s*ACCOUNT|ACCOUNT\s*TYPE\s*[:\-]?\s*(SAVINGS?|CURRENT|SALARY|NRE|NRO)`)
)

// parseGenericAccountDetails extracts account number, IFSC (via the
// per-bank ifscPattern), and account type from raw header text — the
// shared regex shape used across UNION, SBI and HDFC in the source
// project's pdf_normalizer/banks/*.py.
func parseGenericAccountDetails(text string, ifscPattern string) models.AccountDetails {
	var details models.AccountDetails

	if m := accountNumberRe.FindStringSubmatch(text); m != nil {
		details.Number = m[1]
	}
	if ifscPattern != "" {
		if m := regexp.MustCompile(`(?i)` + ifscPattern).FindString(text); m != "" {
			details.IFSCCode = strings.ToUpper(m)
		}
	}
	if m := accountTypeRe.FindStringSubmatch(text); m != nil {
		raw := strings.ToUpper(firstNonEmpty(m[1], m[2]))
		details.Type = normalizeAccountType(raw)
	}
	return details
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func normalizeAccountType(raw string) models.AccountType {
	raw = strings.TrimSpace(strings.ToUpper(raw))
	switch {
	case strings.HasPrefix(raw, "SAVING"):
		return models.AccountSavings
	case strings.HasPrefix(raw, "CURRENT"):
		return models.AccountCurrent
	case strings.HasPrefix(raw, "SALARY"):
		return models.AccountSalary
	case raw == "NRE":
		return models.AccountNRE
	case raw == "NRO":
		return models.AccountNRO
	case strings.Contains(raw, "FIXED") || raw == "FD":
		return models.AccountFD
	case strings.Contains(raw, "RECURRING") || raw == "RD":
		return models.AccountRD
	default:
		return ""
	}
}
