// Package output provides formatting and output generation for chat statistics.
package output

import (
	"time"

	"github.com/google/uuid"

	"github.com/ccollicutt/chatstat/pkg/analyzer"
	"github.com/ccollicutt/chatstat/pkg/parser"
)

// Report is the complete analysis output.
type Report struct {
	// ID uniquely identifies this report, for webhook receivers and logs.
	ID string `json:"id"`

	// Summary provides headline counts.
	Summary Summary `json:"summary"`

	// Stats holds every computed statistic.
	Stats *analyzer.Stats `json:"stats"`

	// Issues lists the segments dropped during parsing.
	Issues []parser.ParseIssue `json:"parse_issues"`

	// Metadata provides context about the analysis.
	Metadata Metadata `json:"metadata"`
}

// Summary provides headline counts.
type Summary struct {
	Author      string `json:"author"`
	Messages    int    `json:"messages"`
	Words       int    `json:"words"`
	Media       int    `json:"media"`
	Links       int    `json:"links"`
	Emoji       int    `json:"emoji"`
	ParseIssues int    `json:"parse_issues"`
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// Source is the analyzed file or upload name.
	Source string `json:"source,omitempty"`

	// ConfigFile is the path to the configuration file used, if any.
	ConfigFile string `json:"config_file,omitempty"`

	// Authors is the selectable author list, all-authors label first.
	Authors []string `json:"authors"`

	// Segments is the number of delimiter segments found in the source.
	Segments int `json:"segments"`

	// Records is the number of records in the selection.
	Records int `json:"records"`

	// First and Last bound the selection; nil when it is empty.
	First *time.Time `json:"first,omitempty"`
	Last  *time.Time `json:"last,omitempty"`

	// AnalyzedAt is when the analysis was performed.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Duration is how long the analysis took.
	Duration time.Duration `json:"duration"`
}

// NewReport creates a Report from analysis results.
func NewReport(result *analyzer.AnalysisResult, source, configFile string) *Report {
	md := result.Metadata
	stats := result.Stats

	report := &Report{
		ID:     uuid.NewString(),
		Stats:  stats,
		Issues: md.Issues,
		Metadata: Metadata{
			Source:     source,
			ConfigFile: configFile,
			Authors:    md.Authors,
			Segments:   md.Segments,
			Records:    md.Records,
			AnalyzedAt: md.EndTime,
			Duration:   md.EndTime.Sub(md.StartTime),
		},
		Summary: Summary{
			Author:      md.Author,
			Messages:    stats.Messages,
			Words:       stats.Words,
			Media:       stats.Media,
			Links:       stats.Links,
			Emoji:       stats.EmojiTotal,
			ParseIssues: len(md.Issues),
		},
	}

	if report.Issues == nil {
		report.Issues = make([]parser.ParseIssue, 0)
	}
	if !md.First.IsZero() {
		first, last := md.First, md.Last
		report.Metadata.First = &first
		report.Metadata.Last = &last
	}

	return report
}

// HasIssues returns true if any segment was dropped during parsing.
func (r *Report) HasIssues() bool {
	return r.Summary.ParseIssues > 0
}
