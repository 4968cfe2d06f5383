package domain

import (
	"slices"
	"strings"
	"time"
)

// Author is a person quotes are attributed to.
//
// TotalQuotes is an editorial figure maintained by catalog editors. It is not
// derived from the quotes in the store; see catalog.AuthorView for the derived count.
type Author struct {
	ID            int64
	Name          string
	Profession    string
	Bio           string
	BirthDate     time.Time
	DeathDate     *time.Time // nil while the author is living
	ImageURL      string
	TotalQuotes   int64
	PopularQuotes []string
}

// Living reports whether the author has no recorded death date.
func (a Author) Living() bool {
	return a.DeathDate == nil
}

// Clone returns a deep copy safe to hand out of a store.
func (a Author) Clone() Author {
	a.PopularQuotes = slices.Clone(a.PopularQuotes)
	if a.DeathDate != nil {
		d := *a.DeathDate
		a.DeathDate = &d
	}

	return a
}

// AuthorInput is the payload for creating or updating an author.
type AuthorInput struct {
	Name          string
	Profession    string
	Bio           string
	BirthDate     time.Time
	DeathDate     *time.Time
	ImageURL      string
	TotalQuotes   int64
	PopularQuotes []string
}

// Validate checks the content rules of an author payload.
func (in AuthorInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewValidationError("name", "is required")
	}

	if in.TotalQuotes < 0 {
		return NewValidationErrorWithValue("totalQuotes", "must not be negative", in.TotalQuotes)
	}

	if in.DeathDate != nil && !in.BirthDate.IsZero() && in.DeathDate.Before(in.BirthDate) {
		return NewValidationError("deathDate", "must not be before birthDate")
	}

	return ValidateImageURL("imageUrl", in.ImageURL)
}

// NewAuthor builds an author from a validated payload.
func NewAuthor(id int64, in AuthorInput) Author {
	return Author{ID: id}.Apply(in)
}

// Apply overwrites the editable fields of a with in.
func (a Author) Apply(in AuthorInput) Author {
	a.Name = strings.TrimSpace(in.Name)
	a.Profession = strings.TrimSpace(in.Profession)
	a.Bio = strings.TrimSpace(in.Bio)
	a.BirthDate = in.BirthDate
	a.DeathDate = in.DeathDate
	a.ImageURL = strings.TrimSpace(in.ImageURL)
	a.TotalQuotes = in.TotalQuotes
	a.PopularQuotes = slices.Clone(in.PopularQuotes)

	return a.Clone()
}
