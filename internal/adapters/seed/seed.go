// Package seed provides the starter catalog restored into empty stores.
package seed

import (
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

//go:embed catalog.yaml
var catalogYAML []byte

type document struct {
	Authors []authorDoc `yaml:"authors"`
	Topics  []topicDoc  `yaml:"topics"`
	Quotes  []quoteDoc  `yaml:"quotes"`
}

type authorDoc struct {
	ID            int64    `yaml:"id"`
	Name          string   `yaml:"name"`
	Profession    string   `yaml:"profession"`
	Bio           string   `yaml:"bio"`
	Birth         string   `yaml:"birth"`
	Death         string   `yaml:"death"`
	Image         string   `yaml:"image"`
	TotalQuotes   int64    `yaml:"total_quotes"`
	PopularQuotes []string `yaml:"popular_quotes"`
}

type topicDoc struct {
	ID          int64  `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Color       string `yaml:"color"`
	Icon        string `yaml:"icon"`
	TotalQuotes int64  `yaml:"total_quotes"`
	Featured    bool   `yaml:"featured"`
}

type quoteDoc struct {
	ID              int64    `yaml:"id"`
	Text            string   `yaml:"text"`
	AuthorID        int64    `yaml:"author_id"`
	CategoryID      int64    `yaml:"category_id"`
	BackgroundImage string   `yaml:"background_image"`
	Tags            []string `yaml:"tags"`
	Featured        bool     `yaml:"featured"`
	DateAdded       string   `yaml:"date_added"`
	Likes           int64    `yaml:"likes"`
	Shares          int64    `yaml:"shares"`
	Bookmarks       int64    `yaml:"bookmarks"`
}

// Snapshot returns the embedded starter catalog.
func Snapshot() (ports.Snapshot, error) {
	return Parse(catalogYAML)
}

// Load reads a catalog document from r.
func Load(r io.Reader) (ports.Snapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return ports.Snapshot{}, fmt.Errorf("reading seed: %w", err)
	}

	return Parse(raw)
}

// Parse decodes a catalog document and validates it as a snapshot.
func Parse(raw []byte) (ports.Snapshot, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return ports.Snapshot{}, fmt.Errorf("decoding seed: %w", err)
	}

	snap, err := doc.snapshot()
	if err != nil {
		return ports.Snapshot{}, err
	}

	if err := snap.Validate(); err != nil {
		return ports.Snapshot{}, fmt.Errorf("invalid seed: %w", err)
	}

	return snap, nil
}

func (d document) snapshot() (ports.Snapshot, error) {
	snap := ports.Snapshot{
		Authors: make([]domain.Author, 0, len(d.Authors)),
		Topics:  make([]domain.Topic, 0, len(d.Topics)),
		Quotes:  make([]domain.Quote, 0, len(d.Quotes)),
	}

	for _, a := range d.Authors {
		in := domain.AuthorInput{
			Name:          a.Name,
			Profession:    a.Profession,
			Bio:           a.Bio,
			ImageURL:      a.Image,
			TotalQuotes:   a.TotalQuotes,
			PopularQuotes: a.PopularQuotes,
		}

		var err error
		if in.BirthDate, err = domain.ParseDate(a.Birth); err != nil {
			return ports.Snapshot{}, fmt.Errorf("author %d birth: %w", a.ID, err)
		}

		if a.Death != "" {
			death, err := domain.ParseDate(a.Death)
			if err != nil {
				return ports.Snapshot{}, fmt.Errorf("author %d death: %w", a.ID, err)
			}

			in.DeathDate = &death
		}

		if err := in.Validate(); err != nil {
			return ports.Snapshot{}, fmt.Errorf("author %d: %w", a.ID, err)
		}

		snap.Authors = append(snap.Authors, domain.NewAuthor(a.ID, in))
	}

	for _, t := range d.Topics {
		in := domain.TopicInput{
			Name:        t.Name,
			Description: t.Description,
			Color:       t.Color,
			Icon:        t.Icon,
			TotalQuotes: t.TotalQuotes,
			Featured:    t.Featured,
		}

		if err := in.Validate(); err != nil {
			return ports.Snapshot{}, fmt.Errorf("topic %d: %w", t.ID, err)
		}

		snap.Topics = append(snap.Topics, domain.NewTopic(t.ID, in))
	}

	for _, q := range d.Quotes {
		in := domain.QuoteInput{
			Text:               q.Text,
			AuthorID:           q.AuthorID,
			CategoryID:         q.CategoryID,
			BackgroundImageURL: q.BackgroundImage,
			Tags:               q.Tags,
			Featured:           q.Featured,
		}

		if err := in.Validate(); err != nil {
			return ports.Snapshot{}, fmt.Errorf("quote %d: %w", q.ID, err)
		}

		added, err := domain.ParseDate(q.DateAdded)
		if err != nil {
			return ports.Snapshot{}, fmt.Errorf("quote %d date_added: %w", q.ID, err)
		}

		quote := domain.NewQuote(q.ID, in, added)
		quote.Likes, quote.Shares, quote.Bookmarks = q.Likes, q.Shares, q.Bookmarks
		snap.Quotes = append(snap.Quotes, quote)
	}

	return snap, nil
}
