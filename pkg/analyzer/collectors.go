package analyzer

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/ccollicutt/chatstat/pkg/lexicon"
	"github.com/ccollicutt/chatstat/pkg/parser"
)

// CountsCollector tallies messages, words, media and links.
type CountsCollector struct {
	mediaPlaceholder string
	linkMarker       string
	sentinel         string

	messages, words, media, links, notifications int
}

// NewCountsCollector creates a counts collector.
// An empty placeholder or marker disables that count.
func NewCountsCollector(mediaPlaceholder, linkMarker, sentinel string) *CountsCollector {
	return &CountsCollector{
		mediaPlaceholder: mediaPlaceholder,
		linkMarker:       linkMarker,
		sentinel:         sentinel,
	}
}

// Name returns the collector name.
func (c *CountsCollector) Name() string { return "counts" }

// Process handles a single record.
func (c *CountsCollector) Process(ctx context.Context, rec *parser.Record) error {
	c.messages++
	c.words += CountWords(rec.Message)
	if c.mediaPlaceholder != "" && rec.Message == c.mediaPlaceholder {
		c.media++
	}
	if c.linkMarker != "" && strings.Contains(rec.Message, c.linkMarker) {
		c.links++
	}
	if rec.Author == c.sentinel {
		c.notifications++
	}
	return nil
}

// Finalize writes the totals.
func (c *CountsCollector) Finalize(ctx context.Context, stats *Stats) error {
	stats.Messages = c.messages
	stats.Words = c.words
	stats.Media = c.media
	stats.Links = c.links
	stats.Notifications = c.notifications
	return nil
}

type monthKey struct {
	year  int
	month time.Month
}

// TimelineCollector buckets messages by day, month, hour and weekday.
type TimelineCollector struct {
	daily   map[string]int
	monthly map[monthKey]int
	hourly  [24]int
	weekly  [7]int
}

// NewTimelineCollector creates a timeline collector.
func NewTimelineCollector() *TimelineCollector {
	return &TimelineCollector{
		daily:   make(map[string]int),
		monthly: make(map[monthKey]int),
	}
}

// Name returns the collector name.
func (c *TimelineCollector) Name() string { return "timeline" }

// Process handles a single record.
func (c *TimelineCollector) Process(ctx context.Context, rec *parser.Record) error {
	ts := rec.Timestamp
	c.daily[ts.Format("2006-01-02")]++
	c.monthly[monthKey{ts.Year(), ts.Month()}]++
	c.hourly[rec.Hour]++
	c.weekly[ts.Weekday()]++
	return nil
}

// Finalize writes the buckets in ascending time order.
func (c *TimelineCollector) Finalize(ctx context.Context, stats *Stats) error {
	stats.Daily = make([]DateCount, 0, len(c.daily))
	for date, n := range c.daily {
		stats.Daily = append(stats.Daily, DateCount{Date: date, Count: n})
	}
	sort.Slice(stats.Daily, func(i, j int) bool {
		return stats.Daily[i].Date < stats.Daily[j].Date
	})

	keys := make([]monthKey, 0, len(c.monthly))
	for k := range c.monthly {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})
	stats.Monthly = make([]MonthCount, 0, len(keys))
	for _, k := range keys {
		stats.Monthly = append(stats.Monthly, MonthCount{
			Period: time.Date(k.year, k.month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
			Year:   k.year,
			Month:  k.month.String(),
			Count:  c.monthly[k],
		})
	}

	stats.Hourly = make([]int, len(c.hourly))
	copy(stats.Hourly, c.hourly[:])

	stats.Weekly = make([]WeekdayCount, 0, len(c.weekly))
	for d, n := range c.weekly {
		stats.Weekly = append(stats.Weekly, WeekdayCount{Weekday: time.Weekday(d).String(), Count: n})
	}
	return nil
}

// WordsCollector counts non-stopword words.
type WordsCollector struct {
	stop   *lexicon.Stopwords
	topN   int
	counts map[string]int
}

// NewWordsCollector creates a word frequency collector keeping the top n words.
func NewWordsCollector(stop *lexicon.Stopwords, n int) *WordsCollector {
	return &WordsCollector{stop: stop, topN: n, counts: make(map[string]int)}
}

// Name returns the collector name.
func (c *WordsCollector) Name() string { return "words" }

// Process handles a single record.
func (c *WordsCollector) Process(ctx context.Context, rec *parser.Record) error {
	for _, w := range Words(rec.Message) {
		if !c.stop.Contains(w) {
			c.counts[w]++
		}
	}
	return nil
}

// Finalize writes the ranked words.
func (c *WordsCollector) Finalize(ctx context.Context, stats *Stats) error {
	stats.TopWords = rank(c.counts, c.topN)
	return nil
}

// EmojiCollector extracts emoji characters.
type EmojiCollector struct {
	set      *lexicon.EmojiSet
	topN     int
	sequence []string
	counts   map[string]int
}

// NewEmojiCollector creates an emoji collector keeping the top n emoji.
func NewEmojiCollector(set *lexicon.EmojiSet, n int) *EmojiCollector {
	return &EmojiCollector{
		set:      set,
		topN:     n,
		sequence: make([]string, 0),
		counts:   make(map[string]int),
	}
}

// Name returns the collector name.
func (c *EmojiCollector) Name() string { return "emoji" }

// Process handles a single record.
func (c *EmojiCollector) Process(ctx context.Context, rec *parser.Record) error {
	for _, e := range c.set.Extract(rec.Message) {
		c.sequence = append(c.sequence, e)
		c.counts[e]++
	}
	return nil
}

// Finalize writes the emoji sequence and ranking.
func (c *EmojiCollector) Finalize(ctx context.Context, stats *Stats) error {
	stats.Emoji = c.sequence
	stats.EmojiTotal = len(c.sequence)
	stats.TopEmoji = rank(c.counts, c.topN)
	return nil
}

// AuthorsCollector counts messages per participant, notifications excluded.
type AuthorsCollector struct {
	sentinel string
	counts   map[string]int
}

// NewAuthorsCollector creates a per-author collector.
func NewAuthorsCollector(sentinel string) *AuthorsCollector {
	return &AuthorsCollector{sentinel: sentinel, counts: make(map[string]int)}
}

// Name returns the collector name.
func (c *AuthorsCollector) Name() string { return "authors" }

// Process handles a single record.
func (c *AuthorsCollector) Process(ctx context.Context, rec *parser.Record) error {
	if rec.Author != c.sentinel {
		c.counts[rec.Author]++
	}
	return nil
}

// Finalize writes the busiest authors first.
func (c *AuthorsCollector) Finalize(ctx context.Context, stats *Stats) error {
	stats.Authors = rank(c.counts, 0)
	return nil
}
