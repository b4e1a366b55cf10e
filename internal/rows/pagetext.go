package rows

import "strings"

// columnGapSplitter turns tabs into two spaces, the column separator
// convention the PDF accessor emits when it inserts a wide gap between text
// items (see internal/extractor's extractByContent, which inserts "  "
// wherever the horizontal gap between words exceeds its tolerance).
// splitColumns then splits on two spaces, so any run of two or more spaces
// separates cells, turning a page's text lines back into cell grids without
// re-walking PDF coordinates here.
var columnGapSplitter = strings.NewReplacer("\t", "  ")

// FromPageText converts extracted page text into one Table per page by
// splitting each line on column-gap whitespace. Lines that don't split into
// more than one cell are kept as single-cell rows so non-tabular content
// (headers, footers) flows through reconstructTable's date-header filter
// and gets discarded there rather than here.
func FromPageText(pages []string) []Table {
	var tables []Table
	for _, page := range pages {
		var t Table
		for _, line := range strings.Split(page, "\n") {
			line = columnGapSplitter.Replace(line)
			if strings.TrimSpace(line) == "" {
				continue
			}
			t = append(t, splitColumns(line))
		}
		if len(t) > 0 {
			tables = append(tables, t)
		}
	}
	return tables
}

func splitColumns(line string) []string {
	fields := strings.Split(line, "  ")
	var cells []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			cells = append(cells, f)
		}
	}
	if len(cells) == 0 {
		cells = append(cells, "")
	}
	return cells
}
