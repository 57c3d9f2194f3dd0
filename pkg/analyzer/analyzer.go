package analyzer

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ccollicutt/chatstat/pkg/lexicon"
	"github.com/ccollicutt/chatstat/pkg/parser"
)

// cancelCheckInterval is how many records a collector processes between
// context checks.
const cancelCheckInterval = 512

// Analyzer computes statistics for one author selection of a record table.
type Analyzer struct {
	author           string
	allAuthorsLabel  string
	topN             int
	stopwords        *lexicon.Stopwords
	emoji            *lexicon.EmojiSet
	mediaPlaceholder string
	linkMarker       string
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithAuthor limits analysis to one author. The all-authors label, or an
// empty name, selects every record.
func WithAuthor(author string) AnalyzerOption {
	return func(a *Analyzer) {
		a.author = author
	}
}

// WithAllAuthorsLabel sets the synthetic option meaning "every record".
func WithAllAuthorsLabel(label string) AnalyzerOption {
	return func(a *Analyzer) {
		if label != "" {
			a.allAuthorsLabel = label
		}
	}
}

// WithTopN sets how many words and emoji are ranked.
func WithTopN(n int) AnalyzerOption {
	return func(a *Analyzer) {
		a.topN = n
	}
}

// WithLexicon uses the stopwords and emoji table of lex.
func WithLexicon(lex *lexicon.Lexicon) AnalyzerOption {
	return func(a *Analyzer) {
		if lex != nil {
			a.stopwords = lex.Stopwords
			a.emoji = lex.Emoji
		}
	}
}

// WithStopwords replaces the stopword set.
func WithStopwords(s *lexicon.Stopwords) AnalyzerOption {
	return func(a *Analyzer) {
		a.stopwords = s
	}
}

// WithEmojiSet replaces the emoji table.
func WithEmojiSet(e *lexicon.EmojiSet) AnalyzerOption {
	return func(a *Analyzer) {
		a.emoji = e
	}
}

// WithMediaPlaceholder sets the message text counted as shared media.
func WithMediaPlaceholder(s string) AnalyzerOption {
	return func(a *Analyzer) {
		a.mediaPlaceholder = s
	}
}

// WithLinkMarker sets the substring counted as a shared link.
func WithLinkMarker(s string) AnalyzerOption {
	return func(a *Analyzer) {
		a.linkMarker = s
	}
}

// NewAnalyzer creates a new analyzer. Without options it analyzes every
// record with the built-in lexicon and the standard export placeholders.
func NewAnalyzer(opts ...AnalyzerOption) (*Analyzer, error) {
	def := parser.DefaultOptions()
	a := &Analyzer{
		allAuthorsLabel:  DefaultAllAuthorsLabel,
		topN:             DefaultTopN,
		mediaPlaceholder: def.MediaPlaceholder,
		linkMarker:       def.LinkMarker,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.topN < 0 {
		return nil, fmt.Errorf("top_n must be non-negative, got %d", a.topN)
	}
	if a.stopwords == nil {
		a.stopwords = lexicon.DefaultStopwords()
	}
	if a.emoji == nil {
		a.emoji = lexicon.DefaultEmojiSet()
	}

	return a, nil
}

// AllAuthorsLabel returns the synthetic all-authors option.
func (a *Analyzer) AllAuthorsLabel() string {
	return a.allAuthorsLabel
}

// Authors returns the selectable options: the all-authors label followed by
// the table's participants in sorted order.
func (a *Analyzer) Authors(t *parser.Table) []string {
	participants := t.Authors()
	out := make([]string, 0, len(participants)+1)
	out = append(out, a.allAuthorsLabel)
	return append(out, participants...)
}

// Select applies the author filter. The all-authors label returns t itself,
// notifications included; any other name returns only that author's records.
func (a *Analyzer) Select(t *parser.Table, author string) *parser.Table {
	if author == "" || author == a.allAuthorsLabel {
		return t
	}
	return t.Filter(author)
}

// Analyze computes statistics for the configured author selection.
func (a *Analyzer) Analyze(ctx context.Context, t *parser.Table) (*AnalysisResult, error) {
	author := a.author
	if author == "" {
		author = a.allAuthorsLabel
	}

	selected := a.Select(t, author)
	first, last := selected.Span()

	result := &AnalysisResult{
		Metadata: AnalysisMetadata{
			Author:    author,
			Authors:   a.Authors(t),
			Records:   selected.Len(),
			Segments:  t.Segments(),
			Issues:    t.Issues(),
			First:     first,
			Last:      last,
			StartTime: time.Now(),
		},
	}

	stats, err := a.run(ctx, selected, a.collectors(t.Sentinel()))
	if err != nil {
		return nil, err
	}
	result.Stats = stats
	result.Metadata.EndTime = time.Now()

	return result, nil
}

func (a *Analyzer) collectors(sentinel string) []Collector {
	return []Collector{
		NewCountsCollector(a.mediaPlaceholder, a.linkMarker, sentinel),
		NewTimelineCollector(),
		NewWordsCollector(a.stopwords, a.topN),
		NewEmojiCollector(a.emoji, a.topN),
		NewAuthorsCollector(sentinel),
	}
}

// run feeds every record to each collector on its own goroutine, then
// finalizes the collectors in order once all passes are done.
func (a *Analyzer) run(ctx context.Context, t *parser.Table, collectors []Collector) (*Stats, error) {
	g, gctx := errgroup.WithContext(ctx)

	for _, c := range collectors {
		c := c
		g.Go(func() error {
			for i := 0; i < t.Len(); i++ {
				if i%cancelCheckInterval == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				rec := t.At(i)
				if err := c.Process(gctx, &rec); err != nil {
					return fmt.Errorf("processing record with collector %q: %w", c.Name(), err)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &Stats{}
	for _, c := range collectors {
		if err := c.Finalize(ctx, stats); err != nil {
			return nil, fmt.Errorf("finalizing collector %q: %w", c.Name(), err)
		}
	}
	return stats, nil
}
