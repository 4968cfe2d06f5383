package catalog

import (
	"cmp"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
)

// AuthorView pairs an author with the number of quotes in the store attributed
// to them. QuoteCount is derived; Author.TotalQuotes is the editorial figure.
type AuthorView struct {
	domain.Author

	QuoteCount int
}

// TopicView pairs a topic with its derived quote count.
type TopicView struct {
	domain.Topic

	QuoteCount int
}

// Author orderings.
const (
	AuthorSortName       SortKey = "name"
	AuthorSortProfession SortKey = "profession"
	AuthorSortQuotes     SortKey = "quotes"
)

// Topic orderings.
const (
	TopicSortPopular SortKey = "popular"
	TopicSortName    SortKey = "name"
	TopicSortNewest  SortKey = "newest"
)

// AuthorViews attaches derived quote counts to authors, preserving order.
func AuthorViews(authors []domain.Author, quotes []domain.Quote) []AuthorView {
	counts := make(map[int64]int, len(authors))
	for _, q := range quotes {
		counts[q.AuthorID]++
	}

	out := make([]AuthorView, len(authors))
	for i, a := range authors {
		out[i] = AuthorView{Author: a, QuoteCount: counts[a.ID]}
	}

	return out
}

// TopicViews attaches derived quote counts to topics, preserving order.
func TopicViews(topics []domain.Topic, quotes []domain.Quote) []TopicView {
	counts := make(map[int64]int, len(topics))
	for _, q := range quotes {
		counts[q.CategoryID]++
	}

	out := make([]TopicView, len(topics))
	for i, t := range topics {
		out[i] = TopicView{Topic: t, QuoteCount: counts[t.ID]}
	}

	return out
}

// FilterAuthors keeps authors whose name or profession contains query.
func FilterAuthors(views []AuthorView, query string) []AuthorView {
	m := newMatcher(query)

	out := make([]AuthorView, 0, len(views))
	for _, v := range views {
		if m.empty() || m.in(v.Name) || m.in(v.Profession) {
			out = append(out, v)
		}
	}

	return out
}

// ParseAuthorSortKey validates an author ordering. Empty selects name.
func ParseAuthorSortKey(raw string) (SortKey, error) {
	switch key := SortKey(raw); key {
	case "":
		return AuthorSortName, nil
	case AuthorSortName, AuthorSortProfession, AuthorSortQuotes:
		return key, nil
	default:
		return "", domain.NewInvalidSortKeyError(raw,
			string(AuthorSortName), string(AuthorSortProfession), string(AuthorSortQuotes))
	}
}

// SortAuthors returns a stably ordered copy of views.
func SortAuthors(views []AuthorView, key SortKey) ([]AuthorView, error) {
	switch key {
	case AuthorSortName:
		col := newCollator()
		return sortedCopy(views, func(a, b AuthorView) int {
			return col.CompareString(a.Name, b.Name)
		}), nil
	case AuthorSortProfession:
		col := newCollator()
		return sortedCopy(views, func(a, b AuthorView) int {
			return col.CompareString(a.Profession, b.Profession)
		}), nil
	case AuthorSortQuotes:
		return sortedCopy(views, func(a, b AuthorView) int {
			return cmp.Compare(b.TotalQuotes, a.TotalQuotes)
		}), nil
	default:
		return nil, domain.NewInvalidSortKeyError(string(key),
			string(AuthorSortName), string(AuthorSortProfession), string(AuthorSortQuotes))
	}
}

// FilterTopics keeps topics whose name or description contains query,
// optionally only featured ones.
func FilterTopics(views []TopicView, query string, onlyFeatured bool) []TopicView {
	m := newMatcher(query)

	out := make([]TopicView, 0, len(views))
	for _, v := range views {
		if onlyFeatured && !v.Featured {
			continue
		}

		if m.empty() || m.in(v.Name) || m.in(v.Description) {
			out = append(out, v)
		}
	}

	return out
}

// ParseTopicSortKey validates a topic ordering. Empty selects popular.
func ParseTopicSortKey(raw string) (SortKey, error) {
	switch key := SortKey(raw); key {
	case "":
		return TopicSortPopular, nil
	case TopicSortPopular, TopicSortName, TopicSortNewest:
		return key, nil
	default:
		return "", domain.NewInvalidSortKeyError(raw,
			string(TopicSortPopular), string(TopicSortName), string(TopicSortNewest))
	}
}

// SortTopics returns a stably ordered copy of views. Newest orders by id, descending.
func SortTopics(views []TopicView, key SortKey) ([]TopicView, error) {
	switch key {
	case TopicSortPopular:
		return sortedCopy(views, func(a, b TopicView) int {
			return cmp.Compare(b.TotalQuotes, a.TotalQuotes)
		}), nil
	case TopicSortName:
		col := newCollator()
		return sortedCopy(views, func(a, b TopicView) int {
			return col.CompareString(a.Name, b.Name)
		}), nil
	case TopicSortNewest:
		return sortedCopy(views, func(a, b TopicView) int {
			return cmp.Compare(b.ID, a.ID)
		}), nil
	default:
		return nil, domain.NewInvalidSortKeyError(string(key),
			string(TopicSortPopular), string(TopicSortName), string(TopicSortNewest))
	}
}

// RelatedAuthors returns up to limit authors other than id, in input order.
func RelatedAuthors(views []AuthorView, id int64, limit int) []AuthorView {
	return takeExcept(views, limit, func(v AuthorView) bool { return v.ID == id })
}

// RelatedTopics returns up to limit topics other than id, in input order.
func RelatedTopics(views []TopicView, id int64, limit int) []TopicView {
	return takeExcept(views, limit, func(v TopicView) bool { return v.ID == id })
}

func takeExcept[T any](items []T, limit int, skip func(T) bool) []T {
	if limit < 1 {
		return []T{}
	}

	out := make([]T, 0, min(limit, len(items)))
	for _, item := range items {
		if len(out) >= limit {
			break
		}

		if !skip(item) {
			out = append(out, item)
		}
	}

	return out
}
