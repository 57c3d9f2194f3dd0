package output

import (
	"context"
	"io"

	"github.com/ccollicutt/chatstat/pkg/parser"
)

// Formatter renders analysis results in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// FormatRecords renders a record table, one record per entry.
	FormatRecords(ctx context.Context, records []parser.Record, w io.Writer) error

	// FormatAuthors renders the selectable author list.
	FormatAuthors(ctx context.Context, authors []string, w io.Writer) error

	// Name returns the format name (text, json).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose adds the daily, hourly and weekday breakdowns and issue details.
	Verbose bool

	// Quiet enables minimal summary-only output.
	Quiet bool

	// Width truncates record messages to this many terminal cells; 0 disables.
	Width int
}
