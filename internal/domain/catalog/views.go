package catalog

import "github.com/jsamuelsen/quote-catalog/internal/domain"

// Index resolves author and topic names by id.
type Index struct {
	authors map[int64]domain.Author
	topics  map[int64]domain.Topic
}

// NewIndex builds a lookup over a snapshot of authors and topics.
func NewIndex(authors []domain.Author, topics []domain.Topic) *Index {
	idx := &Index{
		authors: make(map[int64]domain.Author, len(authors)),
		topics:  make(map[int64]domain.Topic, len(topics)),
	}

	for _, a := range authors {
		idx.authors[a.ID] = a
	}

	for _, t := range topics {
		idx.topics[t.ID] = t
	}

	return idx
}

// Author returns the author with id, if present.
func (idx *Index) Author(id int64) (domain.Author, bool) {
	a, ok := idx.authors[id]
	return a, ok
}

// Topic returns the topic with id, if present.
func (idx *Index) Topic(id int64) (domain.Topic, bool) {
	t, ok := idx.topics[id]
	return t, ok
}

// View resolves the display names of q. Missing references leave the name empty.
func (idx *Index) View(q domain.Quote) domain.QuoteView {
	return domain.QuoteView{
		Quote:        q,
		AuthorName:   idx.authors[q.AuthorID].Name,
		CategoryName: idx.topics[q.CategoryID].Name,
	}
}

// Views resolves every quote, preserving order.
func (idx *Index) Views(quotes []domain.Quote) []domain.QuoteView {
	out := make([]domain.QuoteView, len(quotes))
	for i, q := range quotes {
		out[i] = idx.View(q)
	}

	return out
}
