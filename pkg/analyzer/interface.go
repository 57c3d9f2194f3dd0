package analyzer

import (
	"context"

	"github.com/ccollicutt/chatstat/pkg/parser"
)

// Collector computes one group of statistics from a record table.
// Each collector owns its state; the analyzer runs collectors concurrently,
// each over its own pass of the same read-only table.
type Collector interface {
	// Name returns the collector name for error reporting.
	Name() string

	// Process handles a single record, updating internal state.
	Process(ctx context.Context, rec *parser.Record) error

	// Finalize writes the collector's results into stats.
	// Called once, after every record has been processed.
	Finalize(ctx context.Context, stats *Stats) error
}
