package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// TimestampLayout is the Go layout of a delimiter once its meridiem separator
// has been normalized to a plain space. Day comes before month.
const TimestampLayout = "[02/01/06, 3:04:05 PM]"

// DefaultYearBase is the first year of the two-digit year window (2000-2099).
const DefaultYearBase = 2000

// ErrTimestamp is matched by every *TimestampError.
var ErrTimestamp = errors.New("invalid timestamp")

var (
	meridiemRe = regexp.MustCompile(`[ \x{202F}\x{00A0}]?([AP]M)\]$`)
	hourRe     = regexp.MustCompile(`, (\d{1,2}):`)
)

// TimestampError reports a delimiter that matched the pattern but is not a
// valid calendar time (e.g. "[31/02/24, 1:00:00 PM]").
type TimestampError struct {
	Text   string
	Offset int
	Err    error
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("parsing timestamp %q at offset %d: %v", e.Text, e.Offset, e.Err)
}

func (e *TimestampError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrTimestamp) succeed for any TimestampError.
func (e *TimestampError) Is(target error) bool {
	return target == ErrTimestamp
}

// TimestampNormalizer parses delimiter text into wall-clock times.
type TimestampNormalizer struct {
	yearBase int
}

// NewTimestampNormalizer creates a normalizer mapping two-digit years into
// [yearBase, yearBase+99]. A non-positive yearBase uses DefaultYearBase.
func NewTimestampNormalizer(yearBase int) *TimestampNormalizer {
	if yearBase <= 0 {
		yearBase = DefaultYearBase
	}
	return &TimestampNormalizer{yearBase: yearBase}
}

// Parse converts delimiter text such as "[15/01/24, 9:05:00 PM]" to a time in UTC.
// The returned time carries no zone semantics; UTC only keeps it from shifting.
func (n *TimestampNormalizer) Parse(text string) (time.Time, error) {
	normalized := meridiemRe.ReplaceAllString(text, " $1]")

	ts, err := time.Parse(TimestampLayout, normalized)
	if err != nil {
		return time.Time{}, &TimestampError{Text: text, Err: err}
	}

	// The "3" layout element accepts hour 0, which a 12-hour clock never shows.
	if m := hourRe.FindStringSubmatch(text); m != nil {
		if h, _ := strconv.Atoi(m[1]); h == 0 {
			return time.Time{}, &TimestampError{
				Text: text,
				Err:  fmt.Errorf("hour %q out of range for a 12-hour clock", m[1]),
			}
		}
	}

	year := n.windowYear(ts.Year() % 100)
	out := time.Date(year, ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(), 0, time.UTC)
	if out.Day() != ts.Day() {
		// Feb 29 moved into a non-leap year of the window.
		return time.Time{}, &TimestampError{
			Text: text,
			Err:  fmt.Errorf("day %d out of range for %s %d", ts.Day(), ts.Month(), year),
		}
	}

	return out, nil
}

func (n *TimestampNormalizer) windowYear(yy int) int {
	year := n.yearBase - n.yearBase%100 + yy
	if year < n.yearBase {
		year += 100
	}
	return year
}
