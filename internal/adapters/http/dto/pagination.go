package dto

import "github.com/jsamuelsen/quote-catalog/internal/domain/catalog"

// MaxPageSize is the maximum allowed items per page.
const MaxPageSize = 100

// PageRequest represents page-number pagination parameters from the request.
type PageRequest struct {
	// Page is the 1-based page number. Missing or below 1 means the first page.
	Page int `form:"page" validate:"omitempty,gte=1"`

	// PageSize is the number of items per page (1-100). Zero uses the
	// configured catalog page size.
	PageSize int `form:"pageSize" validate:"omitempty,gte=1,lte=100"`
}

// PageResponse is the generic page envelope.
type PageResponse[T any] struct {
	// Items is the array of items for this page.
	Items []T `json:"items"`

	// Page is the 1-based page number that was served.
	Page int `json:"page"`

	// PageSize is the number of items per page.
	PageSize int `json:"pageSize"`

	// TotalItems counts matches across all pages.
	TotalItems int `json:"totalItems"`

	// TotalPages is zero when nothing matched.
	TotalPages int `json:"totalPages"`
}

// NewPageResponse converts an engine page, mapping every item with fn.
// Items is never null in the JSON output.
func NewPageResponse[T, U any](p catalog.Page[T], fn func(T) U) PageResponse[U] {
	mapped := catalog.MapPage(p, fn)

	return PageResponse[U]{
		Items:      mapped.Items,
		Page:       mapped.Page,
		PageSize:   mapped.PageSize,
		TotalItems: mapped.TotalItems,
		TotalPages: mapped.TotalPages,
	}
}

// MapSlice converts every element with fn. The result is never nil.
func MapSlice[T, U any](in []T, fn func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, item := range in {
		out = append(out, fn(item))
	}

	return out
}
