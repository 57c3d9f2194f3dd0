// Package analyzer computes descriptive statistics over parsed chat records.
package analyzer

import (
	"time"

	"github.com/ccollicutt/chatstat/pkg/parser"
)

// DefaultAllAuthorsLabel is the synthetic author option meaning "every record".
const DefaultAllAuthorsLabel = "Overall"

// DefaultTopN is how many words and emoji are reported when no limit is set.
const DefaultTopN = 10

// TermCount is a ranked term (word, emoji or author) with its frequency.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// DateCount is the number of messages on one calendar day.
type DateCount struct {
	// Date is formatted as 2006-01-02.
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// MonthCount is the number of messages in one calendar month.
type MonthCount struct {
	// Period is formatted as 2006-01.
	Period string `json:"period"`
	Year   int    `json:"year"`
	Month  string `json:"month"`
	Count  int    `json:"count"`
}

// WeekdayCount is the number of messages sent on one day of the week.
type WeekdayCount struct {
	Weekday string `json:"weekday"`
	Count   int    `json:"count"`
}

// Stats holds every statistic computed for one author selection.
// Slices are never nil; an empty selection yields empty slices and zero counts.
type Stats struct {
	Messages      int `json:"messages"`
	Words         int `json:"words"`
	Media         int `json:"media"`
	Links         int `json:"links"`
	Notifications int `json:"notifications"`

	Daily   []DateCount    `json:"daily"`
	Monthly []MonthCount   `json:"monthly"`
	Hourly  []int          `json:"hourly"`
	Weekly  []WeekdayCount `json:"weekly"`

	// Authors is the per-author message count, busiest first.
	Authors []TermCount `json:"authors"`

	TopWords []TermCount `json:"top_words"`
	TopEmoji []TermCount `json:"top_emoji"`

	// EmojiTotal counts every emoji character, including ones outside TopEmoji.
	EmojiTotal int `json:"emoji_total"`

	// Emoji is the sequence of emoji characters in record order.
	Emoji []string `json:"-"`
}

// AnalysisResult contains the complete analysis output.
type AnalysisResult struct {
	Stats *Stats

	// Metadata provides context about the analysis.
	Metadata AnalysisMetadata
}

// AnalysisMetadata provides context about the analysis run.
type AnalysisMetadata struct {
	// Author is the selected author, or the all-authors label.
	Author string

	// Authors is the option list: the all-authors label followed by every participant.
	Authors []string

	// Records is the number of records in the selection.
	Records int

	// Segments is the number of delimiter segments in the source.
	Segments int

	// Issues lists the segments dropped during parsing.
	Issues []parser.ParseIssue

	// First and Last bound the selection's timestamps; zero for an empty selection.
	First time.Time
	Last  time.Time

	// StartTime is when analysis began.
	StartTime time.Time

	// EndTime is when analysis completed.
	EndTime time.Time
}

// HasIssues returns true if any segment was dropped during parsing.
func (r *AnalysisResult) HasIssues() bool {
	return len(r.Metadata.Issues) > 0
}
