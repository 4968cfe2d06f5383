package catalog

// DefaultPageSize is the page size used by every catalog listing.
const DefaultPageSize = 12

// Page is one slice of an ordered collection.
type Page[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
}

// HasNext reports whether a later page exists.
func (p Page[T]) HasNext() bool {
	return p.Page < p.TotalPages
}

// HasPrev reports whether an earlier, non-empty page exists.
func (p Page[T]) HasPrev() bool {
	return p.Page > 1 && p.TotalPages > 0
}

// Paginate returns page number page (1-based) of items in pages of size.
// A page past the end is empty and still reports the real TotalPages.
// size and page below 1 are treated as 1.
func Paginate[T any](items []T, size, page int) Page[T] {
	if size < 1 {
		size = 1
	}

	if page < 1 {
		page = 1
	}

	total := len(items)
	p := Page[T]{
		Items:      []T{},
		Page:       page,
		PageSize:   size,
		TotalItems: total,
	}

	if total > 0 {
		p.TotalPages = (total-1)/size + 1
	}

	if page > p.TotalPages {
		return p
	}

	start := (page - 1) * size
	end := min(start+size, total)
	p.Items = append(p.Items, items[start:end]...)

	return p
}

// MapPage converts the items of p, keeping its paging metadata.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := Page[U]{
		Items:      make([]U, len(p.Items)),
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
	}

	for i, item := range p.Items {
		out.Items[i] = fn(item)
	}

	return out
}

// ClampPage limits page to [1, totalPages]. With no pages it returns 1.
func ClampPage(page, totalPages int) int {
	if totalPages < 1 || page < 1 {
		return 1
	}

	return min(page, totalPages)
}
