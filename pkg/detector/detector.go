// Package detector inspects a chat export and reports which message header
// convention it uses, and whether the parser can read it.
package detector

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ccollicutt/chatstat/pkg/parser"
)

// DefaultSampleSize is the number of non-empty lines to sample.
const DefaultSampleSize = 1000

// Meridiem separator names as reported in DetectionResult.Separators.
const (
	SeparatorSpace         = "space"
	SeparatorNarrowNoBreak = "narrow no-break space"
	SeparatorNoBreak       = "no-break space"
	SeparatorNone          = "none"
)

const (
	ambiguousOrderNote       = "Every sampled date has day and month <= 12, so the DD/MM/YY order cannot be confirmed from the sample."
	monthFirstNote           = "Dates look month-first (MM/DD/YY). The parser reads DD/MM/YY, so these timestamps will be misread or dropped."
	mixedOrderNote           = "Dates have fields above 12 in both positions; the export mixes date orders or is corrupt."
	unsupportedAmbiguousNote = "This format has date ordering ambiguity (MM/DD vs DD/MM). It is not read by the parser; re-export with bracketed 12-hour timestamps."
)

var (
	dateFieldsRe = regexp.MustCompile(`^\[(\d{2})/(\d{2})/`)
	separatorRe  = regexp.MustCompile(`:\d{2}([ \x{202F}\x{00A0}]?)(?:AM|PM)\]$`)
)

// Detector analyzes chat exports to identify their header format.
type Detector struct {
	formats    []*HeaderFormat
	sampleSize int
	yearBase   int
}

// DetectionResult contains the results of format detection.
type DetectionResult struct {
	Matches       []FormatMatch // Sorted by confidence, highest first
	SampledLines  int           // Total non-empty lines sampled
	ParsedLines   int           // Header lines matched by the best format
	PreambleLines int           // Non-empty lines before the first header of any format
	AmbiguityNote string        // Warning about date order, if any

	// The fields below describe headers in the supported format only.
	InvalidTimestamps int            // Headers that match but are not a calendar time
	DayFirst          bool           // Some header has a first date field above 12
	MonthFirst        bool           // Some header has a second date field above 12
	Separators        map[string]int // Meridiem separator name to occurrence count
}

// FormatMatch represents a detected format with confidence score.
type FormatMatch struct {
	Format     *HeaderFormat
	Confidence float64   // Matched lines / sampled lines
	MatchCount int       // Number of lines matching the header pattern
	SampleLine string    // First matching line
	ParsedTime time.Time // First successfully parsed timestamp
}

// Option configures the detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample.
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithYearBase sets the two-digit year window used to parse supported headers.
func WithYearBase(year int) Option {
	return func(d *Detector) {
		d.yearBase = year
	}
}

// New creates a new format detector.
func New(opts ...Option) *Detector {
	d := &Detector{
		formats:    DefaultFormats(),
		sampleSize: DefaultSampleSize,
		yearBase:   parser.DefaultYearBase,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile analyzes an export file and returns detected formats.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	// #nosec G304 - path is provided by user via CLI
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chat export: %w", err)
	}
	defer file.Close()

	return d.DetectFromReader(ctx, file)
}

// DetectFromReader samples r, decoding UTF-16 exports by their byte order mark.
func (d *Detector) DetectFromReader(ctx context.Context, r io.Reader) (*DetectionResult, error) {
	lines, err := d.sample(ctx, parser.NewReader(r))
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines analyzes a slice of export lines.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{
		Separators: make(map[string]int),
	}

	normalizer := parser.NewTimestampNormalizer(d.yearBase)

	type formatStats struct {
		format     *HeaderFormat
		matchCount int
		sampleLine string
		parsedTime time.Time
	}
	stats := make(map[string]*formatStats)

	seenHeader := false
	for _, line := range lines {
		line = strings.TrimLeft(line, " \t\u200e\u200f\ufeff")
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			continue
		}
		result.SampledLines++

		for _, format := range d.formats {
			matches := format.Pattern.FindStringSubmatch(line)
			if len(matches) < 2 {
				continue
			}
			tsStr := matches[1]

			var parsedTime time.Time
			if format.Supported {
				d.inspectSupported(tsStr, result)
				t, err := normalizer.Parse(tsStr)
				if err != nil {
					result.InvalidTimestamps++
				} else {
					parsedTime = t
				}
			} else {
				t, ok := parseTimestamp(tsStr, format.Layout)
				if !ok {
					continue
				}
				parsedTime = t
			}

			seenHeader = true
			s := stats[format.Name]
			if s == nil {
				s = &formatStats{format: format, sampleLine: line}
				stats[format.Name] = s
			}
			if s.parsedTime.IsZero() {
				s.parsedTime = parsedTime
			}
			s.matchCount++
		}

		if !seenHeader {
			result.PreambleLines++
		}
	}

	if result.SampledLines == 0 {
		return result
	}

	for _, s := range stats {
		result.Matches = append(result.Matches, FormatMatch{
			Format:     s.format,
			Confidence: float64(s.matchCount) / float64(result.SampledLines),
			MatchCount: s.matchCount,
			SampleLine: s.sampleLine,
			ParsedTime: s.parsedTime,
		})
	}

	// Sort by match count descending; the supported format wins ties.
	sort.Slice(result.Matches, func(i, j int) bool {
		mi, mj := result.Matches[i], result.Matches[j]
		if mi.MatchCount != mj.MatchCount {
			return mi.MatchCount > mj.MatchCount
		}
		if mi.Format.Supported != mj.Format.Supported {
			return mi.Format.Supported
		}
		return mi.Format.Name < mj.Format.Name
	})

	if best := result.BestMatch(); best != nil {
		result.ParsedLines = best.MatchCount
		result.AmbiguityNote = d.ambiguityNote(best.Format, result)
	}

	return result
}

func (d *Detector) inspectSupported(tsStr string, result *DetectionResult) {
	if m := dateFieldsRe.FindStringSubmatch(tsStr); m != nil {
		first, _ := strconv.Atoi(m[1])
		second, _ := strconv.Atoi(m[2])
		if first > 12 {
			result.DayFirst = true
		}
		if second > 12 {
			result.MonthFirst = true
		}
	}

	if m := separatorRe.FindStringSubmatch(tsStr); m != nil {
		result.Separators[separatorName(m[1])]++
	}
}

func (d *Detector) ambiguityNote(format *HeaderFormat, result *DetectionResult) string {
	if !format.Supported {
		if format.Ambiguous {
			return unsupportedAmbiguousNote
		}
		return ""
	}

	switch {
	case result.DayFirst && result.MonthFirst:
		return mixedOrderNote
	case result.MonthFirst:
		return monthFirstNote
	case result.DayFirst:
		return ""
	default:
		return ambiguousOrderNote
	}
}

func separatorName(sep string) string {
	switch sep {
	case " ":
		return SeparatorSpace
	case "\u202f":
		return SeparatorNarrowNoBreak
	case "\u00a0":
		return SeparatorNoBreak
	default:
		return SeparatorNone
	}
}

// parseTimestamp parses a header timestamp of an unsupported format.
// Unicode meridiem separators and lowercase meridiems are normalized first.
func parseTimestamp(tsStr, layout string) (time.Time, bool) {
	tsStr = strings.NewReplacer("\u202f", " ", "\u00a0", " ", "am", "AM", "pm", "PM").Replace(tsStr)
	if strings.HasSuffix(layout, "PM") && !strings.HasSuffix(tsStr, " AM") && !strings.HasSuffix(tsStr, " PM") {
		tsStr = tsStr[:len(tsStr)-2] + " " + tsStr[len(tsStr)-2:]
	}
	t, err := time.Parse(layout, tsStr)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// sample reads up to sampleSize non-empty lines.
// Uses simple head sampling for efficiency.
func (d *Detector) sample(ctx context.Context, r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() && len(lines) < d.sampleSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := scanner.Text()
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading chat export: %w", err)
	}

	return lines, nil
}

// BestMatch returns the highest confidence match, or nil if none found.
func (r *DetectionResult) BestMatch() *FormatMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one format matched.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}

// Supported returns true if the best match is a format the parser reads.
func (r *DetectionResult) Supported() bool {
	best := r.BestMatch()
	return best != nil && best.Format.Supported
}
