package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
)

type importFile struct {
	Quotes  []quoteIn  `json:"quotes"`
	Authors []authorIn `json:"authors"`
	Topics  []topicIn  `json:"topics"`
}

type quoteIn struct {
	Text            string   `json:"text"`
	Author          string   `json:"author"`
	Category        string   `json:"category"`
	Featured        bool     `json:"featured"`
	Tags            []string `json:"tags"`
	BackgroundImage string   `json:"backgroundImage"`
}

type authorIn struct {
	Name       string `json:"name"`
	Profession string `json:"profession"`
	Bio        string `json:"bio"`
	Birth      string `json:"birth"`
	Death      string `json:"death"`
	Image      string `json:"image"`
}

type topicIn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

type exportFile struct {
	Quotes  []quoteOut  `json:"quotes"`
	Authors []authorOut `json:"authors"`
	Topics  []topicOut  `json:"topics"`
}

type quoteOut struct {
	ID              int64    `json:"id"`
	Text            string   `json:"text"`
	Author          string   `json:"author"`
	Category        string   `json:"category"`
	Featured        bool     `json:"featured"`
	Tags            []string `json:"tags"`
	BackgroundImage string   `json:"backgroundImage,omitempty"`
	DateAdded       string   `json:"dateAdded"`
	Likes           int64    `json:"likes"`
	Shares          int64    `json:"shares"`
	Bookmarks       int64    `json:"bookmarks"`
}

type authorOut struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Profession  string `json:"profession,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Birth       string `json:"birth,omitempty"`
	Death       string `json:"death,omitempty"`
	Image       string `json:"image,omitempty"`
	TotalQuotes int64  `json:"totalQuotes"`
}

type topicOut struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
	TotalQuotes int64  `json:"totalQuotes"`
	Featured    bool   `json:"featured"`
}

func decodeJSON(r io.Reader) (domain.ImportBatch, error) {
	var file importFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.ImportBatch{}, domain.NewValidationError("file", "is empty")
		}

		return domain.ImportBatch{}, domain.NewValidationError("file", "invalid JSON: "+err.Error())
	}

	batch := domain.ImportBatch{
		Authors: make([]domain.AuthorRecord, 0, len(file.Authors)),
		Topics:  make([]domain.TopicRecord, 0, len(file.Topics)),
		Quotes:  make([]domain.QuoteRecord, 0, len(file.Quotes)),
	}

	for i, a := range file.Authors {
		batch.Authors = append(batch.Authors, domain.AuthorRecord{
			Row:        i + 1,
			Name:       a.Name,
			Profession: a.Profession,
			Bio:        a.Bio,
			Birth:      a.Birth,
			Death:      a.Death,
			Image:      a.Image,
		})
	}

	for i, t := range file.Topics {
		batch.Topics = append(batch.Topics, domain.TopicRecord{
			Row:         i + 1,
			Name:        t.Name,
			Description: t.Description,
			Color:       t.Color,
			Icon:        t.Icon,
		})
	}

	for i, q := range file.Quotes {
		batch.Quotes = append(batch.Quotes, domain.QuoteRecord{
			Row:             i + 1,
			Text:            q.Text,
			Author:          q.Author,
			Category:        q.Category,
			Featured:        q.Featured,
			Tags:            q.Tags,
			BackgroundImage: q.BackgroundImage,
		})
	}

	return batch, nil
}

func encodeJSON(w io.Writer, data domain.ExportData) error {
	file := exportFile{
		Quotes:  make([]quoteOut, 0, len(data.Quotes)),
		Authors: make([]authorOut, 0, len(data.Authors)),
		Topics:  make([]topicOut, 0, len(data.Topics)),
	}

	for _, q := range data.Quotes {
		tags := q.Tags
		if tags == nil {
			tags = []string{}
		}

		file.Quotes = append(file.Quotes, quoteOut{
			ID:              q.ID,
			Text:            q.Text,
			Author:          q.AuthorName,
			Category:        q.CategoryName,
			Featured:        q.Featured,
			Tags:            tags,
			BackgroundImage: q.BackgroundImageURL,
			DateAdded:       formatDate(q.DateAdded),
			Likes:           q.Likes,
			Shares:          q.Shares,
			Bookmarks:       q.Bookmarks,
		})
	}

	for _, a := range data.Authors {
		out := authorOut{
			ID:          a.ID,
			Name:        a.Name,
			Profession:  a.Profession,
			Bio:         a.Bio,
			Birth:       formatDate(a.BirthDate),
			Image:       a.ImageURL,
			TotalQuotes: a.TotalQuotes,
		}

		if a.DeathDate != nil {
			out.Death = formatDate(*a.DeathDate)
		}

		file.Authors = append(file.Authors, out)
	}

	for _, t := range data.Topics {
		file.Topics = append(file.Topics, topicOut{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Color:       t.Color,
			Icon:        t.Icon,
			TotalQuotes: t.TotalQuotes,
			Featured:    t.Featured,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}

	return nil
}
