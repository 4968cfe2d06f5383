package app

import (
	"context"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

// authorsProvider loads every author once per import.
type authorsProvider struct {
	store ports.AuthorStore
}

func (p authorsProvider) Key() string { return "authors" }

func (p authorsProvider) Fetch(ctx context.Context) ([]domain.Author, error) {
	return p.store.ListAuthors(ctx)
}

// topicsProvider loads every topic once per import.
type topicsProvider struct {
	store ports.TopicStore
}

func (p topicsProvider) Key() string { return "topics" }

func (p topicsProvider) Fetch(ctx context.Context) ([]domain.Topic, error) {
	return p.store.ListTopics(ctx)
}

// createAuthor adds an author; Rollback deletes it again.
type createAuthor struct {
	store   ports.AuthorStore
	in      domain.AuthorInput
	created domain.Author
}

func (a *createAuthor) Execute(ctx context.Context) error {
	created, err := a.store.AddAuthor(ctx, a.in)
	if err != nil {
		return err
	}

	a.created = created

	return nil
}

func (a *createAuthor) Rollback(ctx context.Context) error {
	return a.store.DeleteAuthor(ctx, a.created.ID)
}

func (a *createAuthor) Description() string {
	return "create author " + a.in.Name
}

// createTopic adds a topic; Rollback deletes it again.
type createTopic struct {
	store   ports.TopicStore
	in      domain.TopicInput
	created domain.Topic
}

func (a *createTopic) Execute(ctx context.Context) error {
	created, err := a.store.AddTopic(ctx, a.in)
	if err != nil {
		return err
	}

	a.created = created

	return nil
}

func (a *createTopic) Rollback(ctx context.Context) error {
	return a.store.DeleteTopic(ctx, a.created.ID)
}

func (a *createTopic) Description() string {
	return "create topic " + a.in.Name
}

// createQuote adds a quote; Rollback deletes it again.
type createQuote struct {
	store   ports.QuoteWriter
	in      domain.QuoteInput
	created domain.Quote
}

func (a *createQuote) Execute(ctx context.Context) error {
	created, err := a.store.AddQuote(ctx, a.in)
	if err != nil {
		return err
	}

	a.created = created

	return nil
}

func (a *createQuote) Rollback(ctx context.Context) error {
	return a.store.DeleteQuote(ctx, a.created.ID)
}

func (a *createQuote) Description() string {
	return "create quote by author " + domain.FormatID(a.in.AuthorID)
}
