package output

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/ccollicutt/chatstat/pkg/analyzer"
	"github.com/ccollicutt/chatstat/pkg/parser"
)

// recordTimeLayout is how record timestamps are printed.
const recordTimeLayout = "2006-01-02 15:04:05"

// TextFormatter formats reports as human-readable text.
// Styling is applied only when the writer is a color-capable terminal.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

type textStyles struct {
	header  lipgloss.Style
	section lipgloss.Style
	label   lipgloss.Style
	dim     lipgloss.Style
	warn    lipgloss.Style
}

func newTextStyles(w io.Writer) textStyles {
	r := lipgloss.NewRenderer(w)
	return textStyles{
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		section: r.NewStyle().Bold(true),
		label:   r.NewStyle().Foreground(lipgloss.Color("10")),
		dim:     r.NewStyle().Foreground(lipgloss.Color("240")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	s := report.Summary
	_, err := fmt.Fprintf(w, "chatstat: %s: %d messages, %d words, %d media, %d links, %d emoji, %d parse issues\n",
		s.Author, s.Messages, s.Words, s.Media, s.Links, s.Emoji, s.ParseIssues)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	st := newTextStyles(w)
	s := report.Summary
	stats := report.Stats

	fmt.Fprintln(w, st.header.Render("=== Chat Analysis: "+s.Author+" ==="))
	fmt.Fprintln(w)

	if report.Metadata.First != nil {
		fmt.Fprintf(w, "%s %s .. %s\n", st.label.Render("Period:  "),
			report.Metadata.First.Format("2006-01-02 15:04"),
			report.Metadata.Last.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(w, "%s %d\n", st.label.Render("Messages:"), s.Messages)
	fmt.Fprintf(w, "%s %d\n", st.label.Render("Words:   "), s.Words)
	fmt.Fprintf(w, "%s %d\n", st.label.Render("Media:   "), s.Media)
	fmt.Fprintf(w, "%s %d\n", st.label.Render("Links:   "), s.Links)
	fmt.Fprintf(w, "%s %d\n", st.label.Render("Emoji:   "), s.Emoji)
	fmt.Fprintln(w)

	if stats != nil {
		f.formatStats(stats, st, w)
	}

	if f.opts.Verbose && len(report.Issues) > 0 {
		fmt.Fprintln(w, st.section.Render("Parse issues"))
		for _, issue := range report.Issues {
			fmt.Fprintf(w, "  - %s at byte %d: %s\n", issue.TimestampText, issue.Offset, issue.Reason)
		}
		fmt.Fprintln(w)
	}

	// Summary
	fmt.Fprintln(w, "---")
	summary := fmt.Sprintf("Summary: %d records from %d segments, %d parse issue(s)",
		report.Metadata.Records, report.Metadata.Segments, s.ParseIssues)
	if s.ParseIssues > 0 {
		summary = st.warn.Render(summary)
	}
	fmt.Fprintln(w, summary)

	if f.opts.Verbose {
		fmt.Fprintf(w, "Report ID: %s\n", report.ID)
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}

	return nil
}

func (f *TextFormatter) formatStats(stats *analyzer.Stats, st textStyles, w io.Writer) {
	if len(stats.Monthly) > 0 {
		rows := make([]analyzer.TermCount, 0, len(stats.Monthly))
		for _, m := range stats.Monthly {
			rows = append(rows, analyzer.TermCount{Term: fmt.Sprintf("%s %d", m.Month, m.Year), Count: m.Count})
		}
		f.formatSection("Monthly timeline", rows, st, w)
	}

	if f.opts.Verbose {
		if len(stats.Daily) > 0 {
			rows := make([]analyzer.TermCount, 0, len(stats.Daily))
			for _, d := range stats.Daily {
				rows = append(rows, analyzer.TermCount{Term: d.Date, Count: d.Count})
			}
			f.formatSection("Daily timeline", rows, st, w)
		}

		if stats.Messages > 0 {
			rows := make([]analyzer.TermCount, 0, len(stats.Hourly))
			for h, n := range stats.Hourly {
				if n > 0 {
					rows = append(rows, analyzer.TermCount{Term: fmt.Sprintf("%02d:00", h), Count: n})
				}
			}
			f.formatSection("Hourly activity", rows, st, w)

			rows = make([]analyzer.TermCount, 0, len(stats.Weekly))
			for _, d := range stats.Weekly {
				rows = append(rows, analyzer.TermCount{Term: d.Weekday, Count: d.Count})
			}
			f.formatSection("Weekday activity", rows, st, w)
		}
	}

	if len(stats.Authors) > 1 {
		f.formatSection("Most active authors", stats.Authors, st, w)
	}

	if len(stats.TopWords) > 0 {
		f.formatSection("Most common words", stats.TopWords, st, w)
	}

	if len(stats.TopEmoji) > 0 {
		f.formatSection("Most common emoji", stats.TopEmoji, st, w)
	} else {
		fmt.Fprintln(w, st.dim.Render("No emojis found."))
		fmt.Fprintln(w)
	}
}

// formatSection prints a titled two-column list. Terms are padded by
// display width so wide characters such as emoji stay aligned.
func (f *TextFormatter) formatSection(title string, rows []analyzer.TermCount, st textStyles, w io.Writer) {
	fmt.Fprintln(w, st.section.Render(title))

	width := 0
	for _, r := range rows {
		width = max(width, runewidth.StringWidth(r.Term))
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %s  %d\n", runewidth.FillRight(r.Term, width), r.Count)
	}
	fmt.Fprintln(w)
}

// FormatRecords renders records as aligned lines.
func (f *TextFormatter) FormatRecords(ctx context.Context, records []parser.Record, w io.Writer) error {
	authorWidth := 0
	for _, r := range records {
		authorWidth = max(authorWidth, runewidth.StringWidth(r.Author))
	}

	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		message := strings.ReplaceAll(r.Message, "\n", " / ")
		if f.opts.Width > 0 {
			message = runewidth.Truncate(message, f.opts.Width, "...")
		}
		if _, err := fmt.Fprintf(w, "%s  %s  %-6s %s\n",
			r.Timestamp.Format(recordTimeLayout),
			runewidth.FillRight(r.Author, authorWidth),
			r.Kind,
			message); err != nil {
			return err
		}
	}
	return nil
}

// FormatAuthors renders one author per line.
func (f *TextFormatter) FormatAuthors(ctx context.Context, authors []string, w io.Writer) error {
	for _, a := range authors {
		if _, err := fmt.Fprintln(w, a); err != nil {
			return err
		}
	}
	return nil
}
