package catalog

import "github.com/jsamuelsen/quote-catalog/internal/domain"

// DefaultSuggestionLimit caps the number of search suggestions.
const DefaultSuggestionLimit = 5

// SuggestionKind identifies what a suggestion links to.
type SuggestionKind string

const (
	SuggestionAuthor SuggestionKind = "author"
	SuggestionTopic  SuggestionKind = "topic"
)

// Suggestion is a search-as-you-type hint.
type Suggestion struct {
	Kind SuggestionKind
	ID   int64
	Name string
}

// Suggest returns authors then topics whose name contains query, capped at limit.
// An empty query suggests nothing.
func Suggest(authors []domain.Author, topics []domain.Topic, query string, limit int) []Suggestion {
	m := newMatcher(query)
	if m.empty() || limit < 1 {
		return []Suggestion{}
	}

	out := make([]Suggestion, 0, limit)
	for _, a := range authors {
		if len(out) == limit {
			return out
		}

		if m.in(a.Name) {
			out = append(out, Suggestion{Kind: SuggestionAuthor, ID: a.ID, Name: a.Name})
		}
	}

	for _, t := range topics {
		if len(out) == limit {
			return out
		}

		if m.in(t.Name) {
			out = append(out, Suggestion{Kind: SuggestionTopic, ID: t.ID, Name: t.Name})
		}
	}

	return out
}
