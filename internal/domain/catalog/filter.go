package catalog

import (
	"slices"
	"time"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
)

// Default thresholds for the recent and popular predicates.
const (
	DefaultPopularThreshold = 1000
	DefaultRecentWindow     = 30 * 24 * time.Hour
)

// Criteria is a set of ANDed predicates. Zero-valued fields are no-ops.
type Criteria struct {
	Query        string
	AuthorID     int64 // 0 means any author
	CategoryID   int64 // 0 means any topic
	OnlyRecent   bool
	OnlyPopular  bool
	OnlyFeatured bool
}

// IsZero reports whether c filters nothing.
func (c Criteria) IsZero() bool {
	return c == Criteria{}
}

// Engine carries the thresholds used by the recent and popular predicates.
type Engine struct {
	// PopularThreshold is exclusive: a quote is popular when Likes > PopularThreshold.
	PopularThreshold int64

	// RecentWindow is measured back from the start of the current UTC day.
	RecentWindow time.Duration
}

// DefaultEngine returns an engine with the catalog's standard thresholds.
func DefaultEngine() Engine {
	return Engine{
		PopularThreshold: DefaultPopularThreshold,
		RecentWindow:     DefaultRecentWindow,
	}
}

// Filter keeps the views matching every predicate in c, preserving input order.
// It never fails; no match yields an empty, non-nil slice.
func Filter(views []domain.QuoteView, c Criteria, now time.Time) []domain.QuoteView {
	return DefaultEngine().Filter(views, c, now)
}

// Filter keeps the views matching every predicate in c, preserving input order.
func (e Engine) Filter(views []domain.QuoteView, c Criteria, now time.Time) []domain.QuoteView {
	if c.IsZero() {
		return append(make([]domain.QuoteView, 0, len(views)), views...)
	}

	m := newMatcher(c.Query)
	cutoff := domain.Day(now).Add(-e.RecentWindow)

	out := make([]domain.QuoteView, 0, len(views))
	for _, v := range views {
		if !m.empty() && !m.matches(v) {
			continue
		}

		if c.AuthorID != 0 && v.AuthorID != c.AuthorID {
			continue
		}

		if c.CategoryID != 0 && v.CategoryID != c.CategoryID {
			continue
		}

		if c.OnlyRecent && v.DateAdded.Before(cutoff) {
			continue
		}

		if c.OnlyPopular && v.Likes <= e.PopularThreshold {
			continue
		}

		if c.OnlyFeatured && !v.Featured {
			continue
		}

		out = append(out, v)
	}

	return out
}

// matches reports whether the query appears in the text, either name, or any tag.
func (m matcher) matches(v domain.QuoteView) bool {
	if m.in(v.Text) || m.in(v.AuthorName) || m.in(v.CategoryName) {
		return true
	}

	return slices.ContainsFunc(v.Tags, m.in)
}
