package dto

import (
	"strings"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
	"github.com/jsamuelsen/quote-catalog/internal/domain/catalog"
)

// Quote list filters accepted by the filter query parameter.
const (
	FilterRecent   = "recent"
	FilterPopular  = "popular"
	FilterFeatured = "featured"
)

// QuoteSearchRequest binds GET /quotes.
type QuoteSearchRequest struct {
	PageRequest

	Query    string `form:"q" validate:"max=200"`
	Author   int64  `form:"author" validate:"omitempty,gte=1"`
	Category int64  `form:"category" validate:"omitempty,gte=1"`
	Filter   string `form:"filter" validate:"omitempty,oneof=recent popular featured"`
	Sort     string `form:"sort" validate:"max=32"`
}

// Criteria converts the request into engine predicates.
func (r QuoteSearchRequest) Criteria() catalog.Criteria {
	return catalog.Criteria{
		Query:        strings.TrimSpace(r.Query),
		AuthorID:     r.Author,
		CategoryID:   r.Category,
		OnlyRecent:   r.Filter == FilterRecent,
		OnlyPopular:  r.Filter == FilterPopular,
		OnlyFeatured: r.Filter == FilterFeatured,
	}
}

// AdminQuoteListRequest binds GET /admin/quotes.
type AdminQuoteListRequest struct {
	PageRequest

	Query    string `form:"q" validate:"max=200"`
	Author   int64  `form:"author" validate:"omitempty,gte=1"`
	Category int64  `form:"category" validate:"omitempty,gte=1"`
}

// AuthorListRequest binds GET /authors.
type AuthorListRequest struct {
	PageRequest

	Query string `form:"q" validate:"max=200"`
	Sort  string `form:"sort" validate:"max=32"`
}

// TopicListRequest binds GET /topics.
type TopicListRequest struct {
	PageRequest

	Query    string `form:"q" validate:"max=200"`
	Featured bool   `form:"featured"`
	Sort     string `form:"sort" validate:"max=32"`
}

// SuggestRequest binds GET /suggestions.
type SuggestRequest struct {
	Query string `form:"q" validate:"max=100"`
}

// RecentDailyRequest binds GET /quotes/daily/recent.
type RecentDailyRequest struct {
	Days int `form:"days" validate:"omitempty,gte=1,lte=31"`
}

// TransferRequest binds the query of the import and export endpoints.
type TransferRequest struct {
	Format string `form:"format" validate:"omitempty,oneof=csv json"`
	DryRun bool   `form:"dryRun"`
	Atomic bool   `form:"atomic"`
}

// QuoteRequest is the body of quote create and update.
type QuoteRequest struct {
	Text               string   `json:"text" validate:"required,notblank,max=500"`
	AuthorID           int64    `json:"authorId" validate:"required,gte=1"`
	CategoryID         int64    `json:"categoryId" validate:"required,gte=1"`
	Tags               []string `json:"tags" validate:"omitempty,max=20,dive,notblank,max=50"`
	BackgroundImageURL string   `json:"backgroundImageUrl" validate:"omitempty,imageurl"`
	Featured           bool     `json:"featured"`
}

// ToInput converts the request into the domain payload.
func (r QuoteRequest) ToInput() domain.QuoteInput {
	return domain.QuoteInput{
		Text:               r.Text,
		AuthorID:           r.AuthorID,
		CategoryID:         r.CategoryID,
		Tags:               r.Tags,
		BackgroundImageURL: r.BackgroundImageURL,
		Featured:           r.Featured,
	}
}

// AuthorRequest is the body of author create and update.
type AuthorRequest struct {
	Name          string   `json:"name" validate:"required,notblank,max=200"`
	Profession    string   `json:"profession" validate:"max=200"`
	Bio           string   `json:"bio" validate:"max=5000"`
	BirthDate     string   `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	DeathDate     string   `json:"deathDate" validate:"omitempty,datetime=2006-01-02"`
	ImageURL      string   `json:"imageUrl" validate:"omitempty,imageurl"`
	TotalQuotes   int64    `json:"totalQuotes" validate:"gte=0"`
	PopularQuotes []string `json:"popularQuotes" validate:"omitempty,max=20"`
}

// ToInput converts the request into the domain payload.
func (r AuthorRequest) ToInput() (domain.AuthorInput, error) {
	birth, err := domain.ParseDate(r.BirthDate)
	if err != nil {
		return domain.AuthorInput{}, domain.NewValidationErrorWithValue("birthDate", "must be a YYYY-MM-DD date", r.BirthDate)
	}

	in := domain.AuthorInput{
		Name:          r.Name,
		Profession:    r.Profession,
		Bio:           r.Bio,
		BirthDate:     birth,
		ImageURL:      r.ImageURL,
		TotalQuotes:   r.TotalQuotes,
		PopularQuotes: r.PopularQuotes,
	}

	if r.DeathDate != "" {
		death, err := domain.ParseDate(r.DeathDate)
		if err != nil {
			return domain.AuthorInput{}, domain.NewValidationErrorWithValue("deathDate", "must be a YYYY-MM-DD date", r.DeathDate)
		}

		in.DeathDate = &death
	}

	return in, nil
}

// TopicRequest is the body of topic create and update.
type TopicRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=100"`
	Description string `json:"description" validate:"max=1000"`
	Color       string `json:"color" validate:"max=50"`
	Icon        string `json:"icon" validate:"max=50"`
	TotalQuotes int64  `json:"totalQuotes" validate:"gte=0"`
	Featured    bool   `json:"featured"`
}

// ToInput converts the request into the domain payload.
func (r TopicRequest) ToInput() domain.TopicInput {
	return domain.TopicInput{
		Name:        r.Name,
		Description: r.Description,
		Color:       r.Color,
		Icon:        r.Icon,
		TotalQuotes: r.TotalQuotes,
		Featured:    r.Featured,
	}
}
