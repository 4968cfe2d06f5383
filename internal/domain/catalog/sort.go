package catalog

import (
	"cmp"
	"slices"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
)

// SortKey selects a quote ordering.
type SortKey string

// Quote orderings.
const (
	SortRelevance    SortKey = "relevance"
	SortPopular      SortKey = "popular"
	SortRecent       SortKey = "recent"
	SortAlphabetical SortKey = "alphabetical"
)

// DefaultSortKey is used when a caller supplies no ordering.
const DefaultSortKey = SortRelevance

// SortKeys lists the accepted quote orderings.
func SortKeys() []string {
	return []string{string(SortRelevance), string(SortPopular), string(SortRecent), string(SortAlphabetical)}
}

// ParseSortKey validates a wire value. An empty string selects DefaultSortKey.
func ParseSortKey(raw string) (SortKey, error) {
	if raw == "" {
		return DefaultSortKey, nil
	}

	key := SortKey(raw)
	switch key {
	case SortRelevance, SortPopular, SortRecent, SortAlphabetical:
		return key, nil
	default:
		return "", domain.NewInvalidSortKeyError(raw, SortKeys()...)
	}
}

// Sort returns a stably ordered copy of views. Ties keep their input order.
// The input slice is not modified. Relevance uses query; with no query every
// score is zero and the input order is kept.
func Sort(views []domain.QuoteView, key SortKey, query string) ([]domain.QuoteView, error) {
	switch key {
	case SortRelevance:
		return byRelevance(views, query), nil
	case SortPopular:
		return sortedCopy(views, func(a, b domain.QuoteView) int {
			return cmp.Compare(b.Likes, a.Likes)
		}), nil
	case SortRecent:
		return sortedCopy(views, func(a, b domain.QuoteView) int {
			return b.DateAdded.Compare(a.DateAdded)
		}), nil
	case SortAlphabetical:
		col := newCollator()
		return sortedCopy(views, func(a, b domain.QuoteView) int {
			return col.CompareString(a.Text, b.Text)
		}), nil
	default:
		return nil, domain.NewInvalidSortKeyError(string(key), SortKeys()...)
	}
}

type scored struct {
	view  domain.QuoteView
	score int
}

// byRelevance scores each view once, then orders by descending score.
func byRelevance(views []domain.QuoteView, query string) []domain.QuoteView {
	m := newMatcher(query)

	ranked := make([]scored, len(views))
	for i, v := range views {
		ranked[i] = scored{view: v, score: m.score(v)}
	}

	slices.SortStableFunc(ranked, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	out := make([]domain.QuoteView, len(ranked))
	for i, r := range ranked {
		out[i] = r.view
	}

	return out
}

func sortedCopy[T any](items []T, cmpFn func(a, b T) int) []T {
	out := append(make([]T, 0, len(items)), items...)
	slices.SortStableFunc(out, cmpFn)

	return out
}
