package output

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ccollicutt/chatstat/pkg/analyzer"
	"github.com/ccollicutt/chatstat/pkg/parser"
)

func TestNewTextFormatter(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	if f == nil {
		t.Fatal("NewTextFormatter() returned nil")
	}
	if f.Name() != "text" {
		t.Errorf("Name() = %q, want %q", f.Name(), "text")
	}
}

func TestTextFormatter_Format(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	report := createTestReport(t)

	var buf bytes.Buffer
	err := f.Format(context.Background(), report, &buf)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"Chat Analysis: Overall",
		"Messages: 5",
		"Media:    1",
		"Links:    1",
		"Monthly timeline",
		"January 2024",
		"Most active authors",
		"Most common words",
		"Most common emoji",
		"1 parse issue(s)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q", want)
		}
	}

	// Verbose-only sections
	if strings.Contains(output, "Daily timeline") || strings.Contains(output, "Report ID") {
		t.Error("non-verbose output contains verbose sections")
	}

	// A buffer is not a terminal, so no escape sequences are written.
	if strings.Contains(output, "\x1b[") {
		t.Error("Output contains ANSI escapes")
	}
}

func TestTextFormatter_Format_Verbose(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Verbose: true})
	report := createTestReport(t)

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"Daily timeline",
		"2024-01-15",
		"Hourly activity",
		"21:00",
		"Weekday activity",
		"Monday",
		"Parse issues",
		"[31/02/24, 8:21:00 AM]",
		"Report ID: " + report.ID,
		"Duration:",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Verbose output missing %q", want)
		}
	}
}

func TestTextFormatter_Format_Quiet(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Quiet: true})
	report := createTestReport(t)

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if strings.Count(output, "\n") != 1 {
		t.Errorf("Quiet output should be one line, got %q", output)
	}
	if !strings.Contains(output, "Overall: 5 messages") {
		t.Errorf("Quiet output = %q", output)
	}
}

func TestTextFormatter_Format_NoEmoji(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	report := createTestReport(t, analyzer.WithAuthor("Nobody"))

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No emojis found.") {
		t.Error("Output missing empty emoji notice")
	}
}

func TestTextFormatter_FormatRecords(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Width: 10})
	records := createTestTable(t).Records()

	var buf bytes.Buffer
	if err := f.FormatRecords(context.Background(), records, &buf); err != nil {
		t.Fatalf("FormatRecords() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != len(records) {
		t.Fatalf("got %d lines, want %d", len(lines), len(records))
	}
	if !strings.HasPrefix(lines[1], "2024-01-15 21:05:00  Alice") {
		t.Errorf("line 1 = %q", lines[1])
	}
	if !strings.Contains(lines[3], "media") {
		t.Errorf("line 3 = %q, want media kind", lines[3])
	}
	if !strings.HasSuffix(lines[4], "...") {
		t.Errorf("line 4 = %q, want truncated message", lines[4])
	}
}

func TestTextFormatter_FormatRecords_Multiline(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	records := []parser.Record{{Author: "Bob", Message: "first\nsecond", Kind: parser.KindText}}

	var buf bytes.Buffer
	if err := f.FormatRecords(context.Background(), records, &buf); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 1 || !strings.Contains(buf.String(), "first / second") {
		t.Errorf("FormatRecords() = %q", buf.String())
	}
}

func TestTextFormatter_FormatAuthors(t *testing.T) {
	var buf bytes.Buffer
	err := NewTextFormatter(FormatOptions{}).FormatAuthors(context.Background(), []string{"Overall", "Alice", "Bob"}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if buf.String() != "Overall\nAlice\nBob\n" {
		t.Errorf("FormatAuthors() = %q", buf.String())
	}
}
