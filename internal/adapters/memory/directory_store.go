package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
)

// ListAuthors implements ports.AuthorStore.
func (s *CatalogStore) ListAuthors(ctx context.Context) ([]domain.Author, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Author, len(s.authorSeq))
	for i, id := range s.authorSeq {
		out[i] = s.authors[id].Clone()
	}

	return out, nil
}

// GetAuthor implements ports.AuthorStore.
func (s *CatalogStore) GetAuthor(ctx context.Context, id int64) (domain.Author, error) {
	if err := ctx.Err(); err != nil {
		return domain.Author{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.authors[id]
	if !ok {
		return domain.Author{}, domain.NewNotFoundError("author", domain.FormatID(id))
	}

	return a.Clone(), nil
}

// AddAuthor implements ports.AuthorStore.
func (s *CatalogStore) AddAuthor(ctx context.Context, in domain.AuthorInput) (domain.Author, error) {
	if err := ctx.Err(); err != nil {
		return domain.Author{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastAuthorID++
	a := domain.NewAuthor(s.lastAuthorID, in)
	s.authors[a.ID] = a
	s.authorSeq = append(s.authorSeq, a.ID)

	return a.Clone(), nil
}

// UpdateAuthor implements ports.AuthorStore.
func (s *CatalogStore) UpdateAuthor(ctx context.Context, id int64, in domain.AuthorInput) (domain.Author, error) {
	if err := ctx.Err(); err != nil {
		return domain.Author{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.authors[id]
	if !ok {
		return domain.Author{}, domain.NewNotFoundError("author", domain.FormatID(id))
	}

	a = a.Apply(in)
	s.authors[id] = a

	return a.Clone(), nil
}

// DeleteAuthor implements ports.AuthorStore.
func (s *CatalogStore) DeleteAuthor(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.authors[id]; !ok {
		return domain.NewNotFoundError("author", domain.FormatID(id))
	}

	if n := s.referenced(func(q domain.Quote) bool { return q.AuthorID == id }); n > 0 {
		return domain.NewConflictErrorWithDetails("author", "still referenced by quotes", fmt.Sprintf("%d quotes", n))
	}

	delete(s.authors, id)
	s.authorSeq = slices.DeleteFunc(s.authorSeq, func(v int64) bool { return v == id })

	return nil
}

// ListTopics implements ports.TopicStore.
func (s *CatalogStore) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Topic, len(s.topicSeq))
	for i, id := range s.topicSeq {
		out[i] = s.topics[id]
	}

	return out, nil
}

// GetTopic implements ports.TopicStore.
func (s *CatalogStore) GetTopic(ctx context.Context, id int64) (domain.Topic, error) {
	if err := ctx.Err(); err != nil {
		return domain.Topic{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.topics[id]
	if !ok {
		return domain.Topic{}, domain.NewNotFoundError("topic", domain.FormatID(id))
	}

	return t, nil
}

// AddTopic implements ports.TopicStore.
func (s *CatalogStore) AddTopic(ctx context.Context, in domain.TopicInput) (domain.Topic, error) {
	if err := ctx.Err(); err != nil {
		return domain.Topic{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastTopicID++
	t := domain.NewTopic(s.lastTopicID, in)
	s.topics[t.ID] = t
	s.topicSeq = append(s.topicSeq, t.ID)

	return t, nil
}

// UpdateTopic implements ports.TopicStore.
func (s *CatalogStore) UpdateTopic(ctx context.Context, id int64, in domain.TopicInput) (domain.Topic, error) {
	if err := ctx.Err(); err != nil {
		return domain.Topic{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.topics[id]
	if !ok {
		return domain.Topic{}, domain.NewNotFoundError("topic", domain.FormatID(id))
	}

	t = t.Apply(in)
	s.topics[id] = t

	return t, nil
}

// DeleteTopic implements ports.TopicStore.
func (s *CatalogStore) DeleteTopic(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.topics[id]; !ok {
		return domain.NewNotFoundError("topic", domain.FormatID(id))
	}

	if n := s.referenced(func(q domain.Quote) bool { return q.CategoryID == id }); n > 0 {
		return domain.NewConflictErrorWithDetails("topic", "still referenced by quotes", fmt.Sprintf("%d quotes", n))
	}

	delete(s.topics, id)
	s.topicSeq = slices.DeleteFunc(s.topicSeq, func(v int64) bool { return v == id })

	return nil
}
