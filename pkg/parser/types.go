// Package parser turns exported chat text into an ordered table of typed records.
package parser

import "time"

// DefaultNotificationAuthor is the sentinel author assigned to system notifications.
const DefaultNotificationAuthor = "group_notification"

// RawSegment is a delimiter match paired with the text that follows it.
type RawSegment struct {
	// TimestampText is the matched delimiter, brackets included.
	TimestampText string

	// Body is the text between this delimiter and the next one (or end of input).
	Body string

	// Offset is the byte offset of the delimiter in the source text.
	Offset int
}

// Kind categorizes a record for reporting.
type Kind string

const (
	KindText   Kind = "text"
	KindMedia  Kind = "media"
	KindLink   Kind = "link"
	KindSystem Kind = "system"
)

// Record is a single parsed chat message.
// Records are built once by the parser and never modified afterwards.
type Record struct {
	// Timestamp is the naive wall-clock time of the message, stored in UTC.
	Timestamp time.Time `json:"timestamp"`

	// Author is the participant name, or the notification sentinel.
	Author string `json:"author"`

	// Message is the body with the author prefix removed.
	Message string `json:"message"`

	Year   int    `json:"year"`
	Month  string `json:"month"`
	Day    int    `json:"day"`
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`

	// Kind is derived from the author and message using the table's options.
	Kind Kind `json:"kind"`

	// Offset is the byte offset of the record's delimiter in the source text.
	Offset int `json:"-"`
}

// ParseIssue describes a segment that was excluded from the table.
type ParseIssue struct {
	TimestampText string `json:"timestamp_text"`
	Offset        int    `json:"offset"`
	Reason        string `json:"reason"`
}
