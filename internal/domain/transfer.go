package domain

import (
	"fmt"
	"strings"
	"time"
)

// MaxImportRecords caps the number of records accepted by one import.
const MaxImportRecords = 1000

// DateLayout is the calendar date format used by seed files and imports.
const DateLayout = "2006-01-02"

// ParseDate parses a DateLayout date. An empty string yields the zero time.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}

	return time.Parse(DateLayout, raw)
}

// RecordKind names the section of an import a record came from.
type RecordKind string

const (
	RecordQuote  RecordKind = "quote"
	RecordAuthor RecordKind = "author"
	RecordTopic  RecordKind = "topic"
)

// QuoteRecord is one imported quote. Author and category are given by name.
// Problem carries a decode failure for the row, reported during import.
type QuoteRecord struct {
	Row             int
	Text            string
	Author          string
	Category        string
	Featured        bool
	Tags            []string
	BackgroundImage string
	Problem         string
}

// AuthorRecord is one imported author. Dates use DateLayout.
type AuthorRecord struct {
	Row        int
	Name       string
	Profession string
	Bio        string
	Birth      string
	Death      string
	Image      string
}

// TopicRecord is one imported topic.
type TopicRecord struct {
	Row         int
	Name        string
	Description string
	Color       string
	Icon        string
}

// ImportBatch is a decoded import file.
type ImportBatch struct {
	Authors []AuthorRecord
	Topics  []TopicRecord
	Quotes  []QuoteRecord
}

// Len returns the number of records across all sections.
func (b ImportBatch) Len() int {
	return len(b.Authors) + len(b.Topics) + len(b.Quotes)
}

// RowError describes why one record was not imported.
type RowError struct {
	Kind   RecordKind `json:"kind"`
	Row    int        `json:"row"`
	Reason string     `json:"reason"`
}

func (e RowError) String() string {
	switch e.Kind {
	case RecordAuthor:
		return fmt.Sprintf("Author row %d: %s", e.Row, e.Reason)
	case RecordTopic:
		return fmt.Sprintf("Topic row %d: %s", e.Row, e.Reason)
	default:
		return fmt.Sprintf("Row %d: %s", e.Row, e.Reason)
	}
}

// ImportReport summarizes an import run.
type ImportReport struct {
	Imported int
	Skipped  int
	Failed   int
	Errors   []RowError
	DryRun   bool
	// RolledBack is set when an atomic import undid its writes after a failure.
	RolledBack bool
}

// ExportData is everything an export writes, with quote names resolved.
type ExportData struct {
	Quotes  []QuoteView
	Authors []Author
	Topics  []Topic
}
