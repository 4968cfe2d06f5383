package transfer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
)

var exportHeader = []string{"ID", "Text", "Author", "Category", "Featured", "Likes", "Shares"}

// column indexes of a CSV import, located by header name.
type columns struct {
	text, author, category, featured, tags, image int
}

func readColumns(header []string) (columns, error) {
	c := columns{text: -1, author: -1, category: -1, featured: -1, tags: -1, image: -1}

	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case "text":
			c.text = i
		case "author":
			c.author = i
		case "category":
			c.category = i
		case "featured":
			c.featured = i
		case "tags":
			c.tags = i
		case "background_image", "backgroundimage":
			c.image = i
		}
	}

	if c.text < 0 || c.author < 0 || c.category < 0 {
		return columns{}, domain.NewValidationError("file", "CSV header must include Text, Author and Category")
	}

	return c, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[i])
}

func decodeCSV(r io.Reader) (domain.ImportBatch, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return domain.ImportBatch{}, domain.NewValidationError("file", "is empty")
	}

	if err != nil {
		return domain.ImportBatch{}, domain.NewValidationError("file", "unreadable CSV header: "+err.Error())
	}

	cols, err := readColumns(header)
	if err != nil {
		return domain.ImportBatch{}, err
	}

	var batch domain.ImportBatch

	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return domain.ImportBatch{}, fmt.Errorf("reading CSV: %w", err)
			}

			batch.Quotes = append(batch.Quotes, domain.QuoteRecord{Row: row, Problem: "Invalid format"})

			continue
		}

		q := domain.QuoteRecord{
			Row:             row,
			Text:            field(record, cols.text),
			Author:          field(record, cols.author),
			Category:        field(record, cols.category),
			Tags:            splitTags(field(record, cols.tags)),
			BackgroundImage: field(record, cols.image),
		}

		if raw := field(record, cols.featured); raw != "" {
			featured, err := strconv.ParseBool(raw)
			if err != nil {
				q.Problem = fmt.Sprintf("Invalid featured value %q", raw)
			}

			q.Featured = featured
		}

		batch.Quotes = append(batch.Quotes, q)
	}

	return batch, nil
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}

	return strings.Split(raw, ",")
}

func encodeCSV(w io.Writer, data domain.ExportData) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, q := range data.Quotes {
		if err := cw.Write([]string{
			strconv.FormatInt(q.ID, 10),
			q.Text,
			q.AuthorName,
			q.CategoryName,
			strconv.FormatBool(q.Featured),
			strconv.FormatInt(q.Likes, 10),
			strconv.FormatInt(q.Shares, 10),
		}); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}
