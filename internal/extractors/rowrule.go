package extractors

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-pipeline/internal/normalize"
	"github.com/insightdelivered/statement-pipeline/internal/rows"
)

// dateShape mirrors base_parsing_rules.py::DateAmountRule — a row matches
// if its first or second cell looks like a date of at least 6 characters.
var dateShape = regexp.MustCompile(`\d{1,2}[-/\s][A-Za-z0-9]{2,4},?[-/\s]\d{2,4}`)

// matchDateCell returns the index (0 or 1) of the first cell that looks
// like a date, or false if neither does.
func matchDateCell(row rows.LogicalRow) (int, bool) {
	for i := 0; i < len(row) && i < 2; i++ {
		cell := strings.TrimSpace(row[i])
		if len(cell) >= 6 && dateShape.MatchString(cell) {
			return i, true
		}
	}
	return 0, false
}

// crDrRef extracts a reference id following a UPI/CR/ or UPI/DR/ marker,
// per the source project's SBI-style reference extraction.
var crDrRef = regexp.MustCompile(`(?i)UPI/(CR|DR)/(\d+)`)

func extractReferenceID(description string) *string {
	if m := crDrRef.FindStringSubmatch(description); m != nil {
		ref := m[2]
		return &ref
	}
	return nil
}

// lastNonEmptyAmount scans a row's cells from fromIdx onward and returns
// the first non-empty one that parses as an amount. In the usual layout
// that is the amount (or debit/credit) cell ahead of the trailing balance;
// it also recovers wrapped rows whose amount cell is empty at its expected
// position but present further along. A row whose only parsable cell from
// fromIdx onward is the balance yields the balance.
func lastNonEmptyAmount(row rows.LogicalRow, fromIdx int) (string, bool) {
	for i := fromIdx; i < len(row); i++ {
		cell := strings.TrimSpace(row[i])
		if cell == "" {
			continue
		}
		if _, err := normalize.ParseAmount(cell); err == nil {
			return cell, true
		}
	}
	return "", false
}
