package domain

import (
	"net/url"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxQuoteTextLength is the longest quote text accepted, counted in runes.
const MaxQuoteTextLength = 500

// Quote is a catalog quotation attributed to an author and filed under one topic.
// Display names are not stored here; they are resolved from the referenced
// Author and Topic whenever a QuoteView is built.
type Quote struct {
	ID                 int64
	Text               string
	AuthorID           int64
	CategoryID         int64
	Tags               []string
	BackgroundImageURL string
	DateAdded          time.Time
	Featured           bool

	// Engagement counters. Never negative.
	Likes     int64
	Shares    int64
	Bookmarks int64
}

// QuoteInput is the payload for creating or updating a quote.
type QuoteInput struct {
	Text               string
	AuthorID           int64
	CategoryID         int64
	Tags               []string
	BackgroundImageURL string
	Featured           bool
}

// Validate checks the content rules of a quote payload.
// Referential checks (author and topic exist) belong to the store.
func (in QuoteInput) Validate() error {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return NewValidationError("text", "is required")
	}

	if n := utf8.RuneCountInString(text); n > MaxQuoteTextLength {
		return NewValidationErrorWithValue("text", "must be at most 500 characters", n)
	}

	if in.AuthorID <= 0 {
		return NewValidationError("authorId", "is required")
	}

	if in.CategoryID <= 0 {
		return NewValidationError("categoryId", "is required")
	}

	if err := ValidateImageURL("backgroundImageUrl", in.BackgroundImageURL); err != nil {
		return err
	}

	return nil
}

// Normalized returns a copy with trimmed text and a deduplicated tag set.
func (in QuoteInput) Normalized() QuoteInput {
	in.Text = strings.TrimSpace(in.Text)
	in.BackgroundImageURL = strings.TrimSpace(in.BackgroundImageURL)
	in.Tags = NormalizeTags(in.Tags)

	return in
}

// NewQuote builds a quote from a validated payload. Counters start at zero.
func NewQuote(id int64, in QuoteInput, added time.Time) Quote {
	in = in.Normalized()

	return Quote{
		ID:                 id,
		Text:               in.Text,
		AuthorID:           in.AuthorID,
		CategoryID:         in.CategoryID,
		Tags:               in.Tags,
		BackgroundImageURL: in.BackgroundImageURL,
		DateAdded:          Day(added),
		Featured:           in.Featured,
	}
}

// Apply overwrites the editable fields of q with in, keeping id, date and counters.
func (q Quote) Apply(in QuoteInput) Quote {
	in = in.Normalized()
	q.Text = in.Text
	q.AuthorID = in.AuthorID
	q.CategoryID = in.CategoryID
	q.Tags = in.Tags
	q.BackgroundImageURL = in.BackgroundImageURL
	q.Featured = in.Featured

	return q
}

// Clone returns a deep copy safe to hand out of a store.
func (q Quote) Clone() Quote {
	q.Tags = slices.Clone(q.Tags)
	return q
}

// QuoteView is a quote with author and category names resolved for display.
type QuoteView struct {
	Quote

	AuthorName   string
	CategoryName string
}

// NormalizeTags trims tags, drops empties and removes duplicates, keeping first occurrence.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))

	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}

		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		out = append(out, tag)
	}

	if len(out) == 0 {
		return nil
	}

	return out
}

// ValidateImageURL accepts an empty value or an absolute http(s) URL.
func ValidateImageURL(field, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return NewValidationErrorWithValue(field, "must be a valid http(s) URL", raw)
	}

	return nil
}

// Day truncates t to midnight UTC, the granularity of DateAdded and daily picks.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
