package parser

import (
	"sort"
	"time"
)

// Table is the ordered, read-only result of parsing one chat export.
// It is safe for concurrent readers.
type Table struct {
	records  []Record
	issues   []ParseIssue
	segments int
	sentinel string
}

// NewTable builds a table directly from records, in the given order.
// Derived fields are recomputed from each record's timestamp; Kind is kept as given.
func NewTable(records []Record, sentinel string) *Table {
	if sentinel == "" {
		sentinel = DefaultNotificationAuthor
	}
	t := &Table{
		records:  make([]Record, len(records)),
		segments: len(records),
		sentinel: sentinel,
	}
	for i, r := range records {
		r.Year, r.Month, r.Day, r.Hour, r.Minute = deriveFields(r.Timestamp)
		t.records[i] = r
	}
	return t
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// At returns a copy of the i-th record. Like a slice index, it panics
// unless 0 <= i < Len().
func (t *Table) At(i int) Record {
	return t.records[i]
}

// Records returns a copy of all records in source order.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Issues returns the segments excluded from the table.
func (t *Table) Issues() []ParseIssue {
	out := make([]ParseIssue, len(t.issues))
	copy(out, t.issues)
	return out
}

// Segments returns how many delimiter segments the source contained.
// For a table returned by Parse, Segments() == Len() + len(Issues()).
func (t *Table) Segments() int {
	return t.segments
}

// Sentinel returns the author used for notifications.
func (t *Table) Sentinel() string {
	return t.sentinel
}

// Authors returns the distinct participant names, sorted, without the sentinel.
func (t *Table) Authors() []string {
	seen := make(map[string]bool)
	authors := make([]string, 0)
	for _, r := range t.records {
		if r.Author == t.sentinel || seen[r.Author] {
			continue
		}
		seen[r.Author] = true
		authors = append(authors, r.Author)
	}
	sort.Strings(authors)
	return authors
}

// Filter returns a new table holding only the records written by author.
// Parse issues are carried over unchanged.
func (t *Table) Filter(author string) *Table {
	out := &Table{
		records:  make([]Record, 0),
		issues:   t.issues,
		segments: t.segments,
		sentinel: t.sentinel,
	}
	for _, r := range t.records {
		if r.Author == author {
			out.records = append(out.records, r)
		}
	}
	return out
}

// Span returns the first and last timestamps, or zero times for an empty table.
func (t *Table) Span() (first, last time.Time) {
	for i, r := range t.records {
		if i == 0 || r.Timestamp.Before(first) {
			first = r.Timestamp
		}
		if i == 0 || r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}
	return first, last
}

func deriveFields(ts time.Time) (year int, month string, day, hour, minute int) {
	return ts.Year(), ts.Month().String(), ts.Day(), ts.Hour(), ts.Minute()
}
