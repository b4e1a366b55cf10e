// Package rows implements the tabular row reconstructor: given a PDF
// accessor's detected tables (rectangular cell grids), it locates the
// transaction table via its date-bearing header and merges wrapped
// continuation rows into logical records.
//
// Grounded on the source project's
// pdf_normalizer/utils.py::extract_table_rows, generalized from a
// single-table-per-call shape into one that walks every detected table on
// the document and concatenates the surviving logical rows in document
// order.
package rows

import (
	"regexp"
	"strings"
)

// Table is one detected table as a rectangular grid of raw cell text.
type Table [][]string

// dateShape matches DD[-/]MM[-/]YY(YY)? and the month-name form banks like
// Kotak use ("14 Dec 2025", "20 Nov, 2025") — the data-row test from the
// reconstruction algorithm. Kept in step with extractors/rowrule.go's
// matchDateCell so a table never gets filtered to zero rows before it
// reaches a bank extractor that would have accepted its date cells. It
// deliberately does not validate calendar correctness — that's parse_date's
// job downstream.
var dateShape = regexp.MustCompile(`^\d{1,2}[-/]\d{1,2}[-/]\d{2}(\d{2})?$|^\d{1,2}[-/\s][A-Za-z]{3,9}[-/\s,]+\d{2,4}$`)

// Reconstruct walks every table, keeps only those with a recognizable date
// header in their first three rows, and emits the merged logical rows in
// document order.
func Reconstruct(tables []Table) []LogicalRow {
	var out []LogicalRow
	for _, t := range tables {
		out = append(out, reconstructTable(t)...)
	}
	return out
}

// LogicalRow is a flat, trimmed cell list — the merged result of one data
// row plus all following continuation rows until the next data row.
type LogicalRow []string

func reconstructTable(table Table) []LogicalRow {
	dateCol, ok := findDateHeader(table)
	if !ok {
		return nil
	}

	var out []LogicalRow
	var pending LogicalRow

	// Rows after the header row that contained the date column.
	for _, raw := range table[headerRowIndex(table, dateCol)+1:] {
		row := cleanRow(raw)
		if isBlankRow(row) {
			continue
		}

		if dateCol < len(row) && dateShape.MatchString(strings.TrimSpace(row[dateCol])) {
			if pending != nil {
				out = append(out, pending)
			}
			pending = row
			continue
		}

		// Continuation row: merge non-empty cells into the pending row.
		if pending == nil {
			continue
		}
		pending = mergeRows(pending, row)
	}

	if pending != nil {
		out = append(out, pending)
	}
	return out
}

// findDateHeader inspects the first three rows of a table for a cell whose
// lowercased text contains "date", returning its column index.
func findDateHeader(table Table) (int, bool) {
	limit := 3
	if len(table) < limit {
		limit = len(table)
	}
	for r := 0; r < limit; r++ {
		for c, cell := range table[r] {
			if strings.Contains(strings.ToLower(cell), "date") {
				return c, true
			}
		}
	}
	return 0, false
}

// headerRowIndex finds which of the first three rows actually held the date
// header cell so traversal starts immediately after it.
func headerRowIndex(table Table, dateCol int) int {
	limit := 3
	if len(table) < limit {
		limit = len(table)
	}
	for r := 0; r < limit; r++ {
		if dateCol < len(table[r]) && strings.Contains(strings.ToLower(table[r][dateCol]), "date") {
			return r
		}
	}
	return 0
}

func cleanRow(raw []string) LogicalRow {
	row := make(LogicalRow, len(raw))
	for i, cell := range raw {
		cell = strings.ReplaceAll(cell, "\n", " ")
		row[i] = strings.TrimSpace(cell)
	}
	return row
}

func isBlankRow(row LogicalRow) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

// mergeRows appends each non-empty cell of cont to the matching column of
// pending with a single space separator, widening pending if cont has more
// columns.
func mergeRows(pending, cont LogicalRow) LogicalRow {
	if len(cont) > len(pending) {
		widened := make(LogicalRow, len(cont))
		copy(widened, pending)
		pending = widened
	}
	for i, cell := range cont {
		if cell == "" {
			continue
		}
		if pending[i] == "" {
			pending[i] = cell
		} else {
			pending[i] = pending[i] + " " + cell
		}
	}
	return pending
}
