package services

import (
	"strings"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

// ExtractKeyTerms counts taxonomy keywords in text, case-insensitively.
// Keywords that never occur are omitted, as are categories with no hits.
func ExtractKeyTerms(text string) map[domain.Category]map[string]int {
	lower := strings.ToLower(text)
	terms := make(map[domain.Category]map[string]int)

	for _, ck := range domain.Taxonomy() {
		for _, kw := range ck.Keywords {
			n := strings.Count(lower, kw)
			if n == 0 {
				continue
			}
			if terms[ck.Category] == nil {
				terms[ck.Category] = make(map[string]int)
			}
			terms[ck.Category][kw] = n
		}
	}
	return terms
}
