package catalog

import "github.com/jsamuelsen/quote-catalog/internal/domain"

// Relevance weights.
const (
	weightText     = 3
	weightAuthor   = 2
	weightCategory = 1
	weightTag      = 1
)

// Score rates how well v matches query. An empty query scores 0 for every quote.
func Score(v domain.QuoteView, query string) int {
	return newMatcher(query).score(v)
}

func (m matcher) score(v domain.QuoteView) int {
	if m.empty() {
		return 0
	}

	score := 0
	if m.in(v.Text) {
		score += weightText
	}

	if m.in(v.AuthorName) {
		score += weightAuthor
	}

	if m.in(v.CategoryName) {
		score += weightCategory
	}

	for _, tag := range v.Tags {
		if m.in(tag) {
			score += weightTag
		}
	}

	return score
}
