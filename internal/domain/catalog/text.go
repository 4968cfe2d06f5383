// Package catalog is the query engine shared by every catalog listing:
// relevance scoring, filtering, ordering and paging over in-memory slices.
//
// Everything here is synchronous and free of I/O. Callers load a consistent
// snapshot from a store, resolve it into views, and pass it through
// Filter, Sort and Paginate in that order.
package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// matcher holds a case-folded query. The zero value matches nothing.
type matcher struct {
	folded string
}

func newMatcher(query string) matcher {
	q := strings.TrimSpace(query)
	if q == "" {
		return matcher{}
	}

	return matcher{folded: fold(q)}
}

func (m matcher) empty() bool {
	return m.folded == ""
}

// in reports whether the query is a case-insensitive substring of s.
func (m matcher) in(s string) bool {
	if m.folded == "" || s == "" {
		return false
	}

	return strings.Contains(fold(s), m.folded)
}

// fold applies full Unicode case folding. Casers carry state, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// newCollator returns an English collator for locale-aware ordering.
// Collators are not safe for concurrent use; create one per sort.
func newCollator() *collate.Collator {
	return collate.New(language.English)
}
