package output

import (
	"context"
	"encoding/json"
	"io"

	"github.com/ccollicutt/chatstat/pkg/parser"
)

// JSONFormatter formats reports as JSON.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format renders the report as JSON.
func (f *JSONFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if f.opts.Quiet {
		// Quiet mode: just summary
		return encoder.Encode(report.Summary)
	}

	return encoder.Encode(report)
}

// FormatRecords renders records as a JSON array.
func (f *JSONFormatter) FormatRecords(ctx context.Context, records []parser.Record, w io.Writer) error {
	if records == nil {
		records = make([]parser.Record, 0)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}

// FormatAuthors renders the author list as a JSON array.
func (f *JSONFormatter) FormatAuthors(ctx context.Context, authors []string, w io.Writer) error {
	if authors == nil {
		authors = make([]string, 0)
	}
	return json.NewEncoder(w).Encode(authors)
}
