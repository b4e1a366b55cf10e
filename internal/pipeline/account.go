package pipeline

import (
	"strings"

	"github.com/insightdelivered/statement-pipeline/internal/extractors"
)

// headerText joins the first three pages of extracted text — enough for
// bank detection and account-header parsing without scanning the whole
// document, per spec's "read header text from the first three pages."
func headerText(pages []string) string {
	limit := 3
	if len(pages) < limit {
		limit = len(pages)
	}
	return strings.Join(pages[:limit], "\n")
}

// resolveExtractor mirrors spec.md §4.8 step 3: sender-domain hint first,
// content detection as fallback.
func resolveExtractor(registry *extractors.Registry, senderEmail string, pages []string) (extractors.Extractor, error) {
	return registry.Resolve(senderEmail, headerText(pages))
}
