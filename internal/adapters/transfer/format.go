// Package transfer encodes and decodes catalog import and export files.
//
// CSV and JSON are supported. Imports name authors and categories rather than
// referencing ids, so a file exported from one catalog can be loaded into another.
package transfer

import (
	"io"
	"strings"
	"time"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
)

// Format is a transfer file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name. Empty means JSON.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatJSON, nil
	case FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", domain.NewValidationErrorWithValue("format", "must be one of csv, json", raw)
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}

	return "application/json; charset=utf-8"
}

// Filename returns the download name for an export in f.
func (f Format) Filename() string {
	return "quote_catalog." + string(f)
}

// Decode reads an import file.
func Decode(f Format, r io.Reader) (domain.ImportBatch, error) {
	if f == FormatCSV {
		return decodeCSV(r)
	}

	return decodeJSON(r)
}

// Encode writes an export file.
func Encode(f Format, w io.Writer, data domain.ExportData) error {
	if f == FormatCSV {
		return encodeCSV(w, data)
	}

	return encodeJSON(w, data)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format(domain.DateLayout)
}
