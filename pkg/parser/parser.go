package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/ccollicutt/chatstat/internal/logging"
)

// FailurePolicy decides what happens to a segment whose timestamp cannot be parsed.
type FailurePolicy string

const (
	// PolicyDrop excludes the segment and records a ParseIssue.
	PolicyDrop FailurePolicy = "drop"

	// PolicyAbort fails the whole parse with a *TimestampError.
	PolicyAbort FailurePolicy = "abort"
)

// Options configures a Parser.
type Options struct {
	// NotificationAuthor is the sentinel author for system notifications.
	NotificationAuthor string

	// MatchMode selects where the author prefix may appear.
	MatchMode MatchMode

	// FailurePolicy applies to every timestamp failure in a parse.
	FailurePolicy FailurePolicy

	// YearBase is the first year of the two-digit year window.
	YearBase int

	// MediaPlaceholder is the exact message text exports use for omitted media.
	MediaPlaceholder string

	// LinkMarker is the substring that marks a message as a shared link.
	LinkMarker string
}

// DefaultOptions returns the options matching a standard WhatsApp export.
func DefaultOptions() Options {
	return Options{
		NotificationAuthor: DefaultNotificationAuthor,
		MatchMode:          MatchAnchored,
		FailurePolicy:      PolicyDrop,
		YearBase:           DefaultYearBase,
		MediaPlaceholder:   "<Media omitted>",
		LinkMarker:         "http",
	}
}

// Parser builds record tables from chat export text.
type Parser struct {
	opts       Options
	classifier *Classifier
	normalizer *TimestampNormalizer
}

// New creates a parser. Zero-valued options fall back to DefaultOptions.
func New(opts Options) *Parser {
	def := DefaultOptions()
	if opts.NotificationAuthor == "" {
		opts.NotificationAuthor = def.NotificationAuthor
	}
	if opts.MatchMode == "" {
		opts.MatchMode = def.MatchMode
	}
	if opts.FailurePolicy == "" {
		opts.FailurePolicy = def.FailurePolicy
	}
	if opts.YearBase <= 0 {
		opts.YearBase = def.YearBase
	}

	return &Parser{
		opts:       opts,
		classifier: NewClassifier(opts.MatchMode, opts.NotificationAuthor),
		normalizer: NewTimestampNormalizer(opts.YearBase),
	}
}

// Options returns the parser's effective options.
func (p *Parser) Options() Options {
	return p.opts
}

// Parse segments, classifies and normalizes text into a table.
// Text with no delimiters produces an empty table and no error.
func (p *Parser) Parse(text string) (*Table, error) {
	return p.parse(context.Background(), text)
}

func (p *Parser) parse(ctx context.Context, text string) (*Table, error) {
	segments := Segment(text)

	t := &Table{
		records:  make([]Record, 0, len(segments)),
		issues:   make([]ParseIssue, 0),
		segments: len(segments),
		sentinel: p.opts.NotificationAuthor,
	}

	for _, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ts, err := p.normalizer.Parse(seg.TimestampText)
		if err != nil {
			if te, ok := err.(*TimestampError); ok {
				te.Offset = seg.Offset
			}
			if p.opts.FailurePolicy == PolicyAbort {
				return nil, fmt.Errorf("aborting parse: %w", err)
			}
			l := logging.Ctx(ctx)
			l.Warn().
				Err(err).
				Int("offset", seg.Offset).
				Msg("dropping segment with invalid timestamp")
			t.issues = append(t.issues, ParseIssue{
				TimestampText: seg.TimestampText,
				Offset:        seg.Offset,
				Reason:        err.Error(),
			})
			continue
		}

		author, message := p.classifier.Classify(seg.Body)
		rec := Record{
			Timestamp: ts,
			Author:    author,
			Message:   message,
			Kind:      p.kindOf(author, message),
			Offset:    seg.Offset,
		}
		rec.Year, rec.Month, rec.Day, rec.Hour, rec.Minute = deriveFields(ts)
		t.records = append(t.records, rec)
	}

	return t, nil
}

func (p *Parser) kindOf(author, message string) Kind {
	switch {
	case author == p.opts.NotificationAuthor:
		return KindSystem
	case p.opts.MediaPlaceholder != "" && message == p.opts.MediaPlaceholder:
		return KindMedia
	case p.opts.LinkMarker != "" && strings.Contains(message, p.opts.LinkMarker):
		return KindLink
	default:
		return KindText
	}
}
