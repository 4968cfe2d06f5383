package domain

import "strings"

// Topic is a category quotes are filed under.
// TotalQuotes is editorial, like Author.TotalQuotes.
type Topic struct {
	ID          int64
	Name        string
	Description string
	Color       string
	Icon        string
	TotalQuotes int64
	Featured    bool
}

// TopicInput is the payload for creating or updating a topic.
type TopicInput struct {
	Name        string
	Description string
	Color       string
	Icon        string
	TotalQuotes int64
	Featured    bool
}

// Validate checks the content rules of a topic payload.
func (in TopicInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewValidationError("name", "is required")
	}

	if in.TotalQuotes < 0 {
		return NewValidationErrorWithValue("totalQuotes", "must not be negative", in.TotalQuotes)
	}

	return nil
}

// NewTopic builds a topic from a validated payload.
func NewTopic(id int64, in TopicInput) Topic {
	return Topic{ID: id}.Apply(in)
}

// Apply overwrites the editable fields of t with in.
func (t Topic) Apply(in TopicInput) Topic {
	t.Name = strings.TrimSpace(in.Name)
	t.Description = strings.TrimSpace(in.Description)
	t.Color = strings.TrimSpace(in.Color)
	t.Icon = in.Icon
	t.TotalQuotes = in.TotalQuotes
	t.Featured = in.Featured

	return t
}
