package dto

import (
	"time"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
	"github.com/jsamuelsen/quote-catalog/internal/domain/catalog"
)

// QuoteResponse is a quote with its author and category names resolved.
type QuoteResponse struct {
	ID                 int64    `json:"id"`
	Text               string   `json:"text"`
	AuthorID           int64    `json:"authorId"`
	AuthorName         string   `json:"authorName"`
	CategoryID         int64    `json:"categoryId"`
	CategoryName       string   `json:"categoryName"`
	Tags               []string `json:"tags"`
	BackgroundImageURL string   `json:"backgroundImageUrl,omitempty"`
	DateAdded          string   `json:"dateAdded"`
	Featured           bool     `json:"featured"`
	Likes              int64    `json:"likes"`
	Shares             int64    `json:"shares"`
	Bookmarks          int64    `json:"bookmarks"`
}

// FromQuoteView converts a resolved quote.
func FromQuoteView(v domain.QuoteView) QuoteResponse {
	tags := v.Tags
	if tags == nil {
		tags = []string{}
	}

	return QuoteResponse{
		ID:                 v.ID,
		Text:               v.Text,
		AuthorID:           v.AuthorID,
		AuthorName:         v.AuthorName,
		CategoryID:         v.CategoryID,
		CategoryName:       v.CategoryName,
		Tags:               tags,
		BackgroundImageURL: v.BackgroundImageURL,
		DateAdded:          formatDate(v.DateAdded),
		Featured:           v.Featured,
		Likes:              v.Likes,
		Shares:             v.Shares,
		Bookmarks:          v.Bookmarks,
	}
}

// AuthorResponse is an author as shown in the directory.
type AuthorResponse struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Profession    string   `json:"profession,omitempty"`
	Bio           string   `json:"bio,omitempty"`
	BirthDate     string   `json:"birthDate,omitempty"`
	DeathDate     string   `json:"deathDate,omitempty"`
	Living        bool     `json:"living"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	TotalQuotes   int64    `json:"totalQuotes"`
	PopularQuotes []string `json:"popularQuotes,omitempty"`
	QuoteCount    int      `json:"quoteCount"`
}

// FromAuthor converts an author without a derived quote count.
func FromAuthor(a domain.Author) AuthorResponse {
	resp := AuthorResponse{
		ID:            a.ID,
		Name:          a.Name,
		Profession:    a.Profession,
		Bio:           a.Bio,
		BirthDate:     formatDate(a.BirthDate),
		Living:        a.Living(),
		ImageURL:      a.ImageURL,
		TotalQuotes:   a.TotalQuotes,
		PopularQuotes: a.PopularQuotes,
	}

	if a.DeathDate != nil {
		resp.DeathDate = formatDate(*a.DeathDate)
	}

	return resp
}

// FromAuthorView converts an author with its derived quote count.
func FromAuthorView(v catalog.AuthorView) AuthorResponse {
	resp := FromAuthor(v.Author)
	resp.QuoteCount = v.QuoteCount

	return resp
}

// TopicResponse is a topic as shown in the directory.
type TopicResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
	TotalQuotes int64  `json:"totalQuotes"`
	Featured    bool   `json:"featured"`
	QuoteCount  int    `json:"quoteCount"`
}

// FromTopic converts a topic without a derived quote count.
func FromTopic(t domain.Topic) TopicResponse {
	return TopicResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Color:       t.Color,
		Icon:        t.Icon,
		TotalQuotes: t.TotalQuotes,
		Featured:    t.Featured,
	}
}

// FromTopicView converts a topic with its derived quote count.
func FromTopicView(v catalog.TopicView) TopicResponse {
	resp := FromTopic(v.Topic)
	resp.QuoteCount = v.QuoteCount

	return resp
}

// AuthorDetailResponse is an author page: the author, a page of their quotes
// and other authors to explore.
type AuthorDetailResponse struct {
	Author  AuthorResponse              `json:"author"`
	Quotes  PageResponse[QuoteResponse] `json:"quotes"`
	Related []AuthorResponse            `json:"related"`
}

// TopicDetailResponse is a topic page.
type TopicDetailResponse struct {
	Topic   TopicResponse               `json:"topic"`
	Quotes  PageResponse[QuoteResponse] `json:"quotes"`
	Related []TopicResponse             `json:"related"`
}

// SuggestionResponse is one search-as-you-type hint.
type SuggestionResponse struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FromSuggestion converts a suggestion.
func FromSuggestion(s catalog.Suggestion) SuggestionResponse {
	return SuggestionResponse{Kind: string(s.Kind), ID: s.ID, Name: s.Name}
}

// HomeResponse is the landing page content.
type HomeResponse struct {
	FeaturedQuotes []QuoteResponse  `json:"featuredQuotes"`
	FeaturedTopics []TopicResponse  `json:"featuredTopics"`
	Authors        []AuthorResponse `json:"authors"`
}

// EngagementResponse is the outcome of a like or bookmark toggle.
type EngagementResponse struct {
	QuoteID    int64 `json:"quoteId"`
	Liked      bool  `json:"liked"`
	Bookmarked bool  `json:"bookmarked"`
	Likes      int64 `json:"likes"`
	Shares     int64 `json:"shares"`
	Bookmarks  int64 `json:"bookmarks"`
}

// NewEngagementResponse combines a session's state with the quote counters.
func NewEngagementResponse(state domain.EngagementState, q domain.Quote) EngagementResponse {
	return EngagementResponse{
		QuoteID:    q.ID,
		Liked:      state.Liked,
		Bookmarked: state.Bookmarked,
		Likes:      q.Likes,
		Shares:     q.Shares,
		Bookmarks:  q.Bookmarks,
	}
}

// ShareResponse carries the share-sheet text for a quote.
type ShareResponse struct {
	Quote QuoteResponse `json:"quote"`
	Text  string        `json:"text"`
}

// FavoritesResponse lists the quotes a session liked and bookmarked.
type FavoritesResponse struct {
	Liked      []int64 `json:"liked"`
	Bookmarked []int64 `json:"bookmarked"`
}

// DailyQuoteResponse is the quote pinned to one UTC day.
type DailyQuoteResponse struct {
	Day   string        `json:"day"`
	Quote QuoteResponse `json:"quote"`
}

// NewDailyQuoteResponse converts a pinned quote.
func NewDailyQuoteResponse(day time.Time, v domain.QuoteView) DailyQuoteResponse {
	return DailyQuoteResponse{Day: formatDate(day), Quote: FromQuoteView(v)}
}

// DashboardResponse is the admin overview.
type DashboardResponse struct {
	TotalQuotes    int              `json:"totalQuotes"`
	TotalAuthors   int              `json:"totalAuthors"`
	TotalTopics    int              `json:"totalTopics"`
	TotalLikes     int64            `json:"totalLikes"`
	TotalShares    int64            `json:"totalShares"`
	TotalBookmarks int64            `json:"totalBookmarks"`
	TopQuotes      []QuoteResponse  `json:"topQuotes"`
	TopAuthors     []AuthorResponse `json:"topAuthors"`
}

// ImportRowError reports one record that was skipped or failed.
type ImportRowError struct {
	Kind    string `json:"kind"`
	Row     int    `json:"row"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// ImportReportResponse summarizes an import.
type ImportReportResponse struct {
	Imported   int              `json:"imported"`
	Skipped    int              `json:"skipped"`
	Failed     int              `json:"failed"`
	DryRun     bool             `json:"dryRun"`
	RolledBack bool             `json:"rolledBack"`
	Errors     []ImportRowError `json:"errors"`
}

// FromImportReport converts an import report.
func FromImportReport(r domain.ImportReport) ImportReportResponse {
	return ImportReportResponse{
		Imported:   r.Imported,
		Skipped:    r.Skipped,
		Failed:     r.Failed,
		DryRun:     r.DryRun,
		RolledBack: r.RolledBack,
		Errors: MapSlice(r.Errors, func(e domain.RowError) ImportRowError {
			return ImportRowError{Kind: string(e.Kind), Row: e.Row, Reason: e.Reason, Message: e.String()}
		}),
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format(domain.DateLayout)
}
