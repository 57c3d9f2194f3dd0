package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatstat/pkg/output"
	"github.com/ccollicutt/chatstat/pkg/parser"
)

const testExport = "[15/01/24, 9:00:00 PM] Messages and calls are end-to-end encrypted.\n" +
	"[15/01/24, 9:05:00 PM] Alice: I love cats \U0001F600\n" +
	"[15/01/24, 9:06:00 PM] Bob: I love dogs\nand birds\n" +
	"[16/01/24, 8:20:00 AM] Alice: <Media omitted>\n" +
	"[31/02/24, 10:00:00 AM] Bob: impossible date\n" +
	"[03/02/24, 11:59:59 PM] Carol: see https://example.com\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create %s: %v", name, err)
	}
	return path
}

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestNewAnalyzeCommand(t *testing.T) {
	cmd := NewAnalyzeCommand(&GlobalOptions{})

	if cmd.Use != "analyze <export-file>" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	// Check flags exist
	flags := []string{"output", "author", "top", "verbose", "quiet", "strict", "webhook-url", "webhook-token", "webhook-trigger"}
	for _, flag := range flags {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Missing flag: %s", flag)
		}
	}
}

func TestNewValidateCommand(t *testing.T) {
	cmd := NewValidateCommand()

	if cmd.Use != "validate <config-file>" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	if !strings.Contains(cmd.Long, "Validate") {
		t.Error("Missing description in Long")
	}
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand()

	if cmd.Use != "version" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	out, err := execute(t, cmd)
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if out != "chatstat "+Version+"\n" {
		t.Errorf("version output = %q", out)
	}
}

func TestRunValidate_Success(t *testing.T) {
	configPath := writeFile(t, "config.yaml", `top_n: 5
timestamp_policy: abort
author_match: search
year_base: 1990
webhooks:
  - name: ops
    url: https://example.com/hook
`)

	out, err := execute(t, NewValidateCommand(), configPath)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	for _, want := range []string{"Configuration valid!", "abort", "search", "1990-2089", "[on_issues] ops"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunValidate_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "invalid: yaml: content"},
		{"bad policy", "timestamp_policy: retry\n"},
		{"missing stopwords file", "stopwords_file: /nonexistent/stopwords.txt\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeFile(t, "config.yaml", tt.content)
			if _, err := execute(t, NewValidateCommand(), configPath); err == nil {
				t.Error("Expected error for invalid config")
			}
		})
	}
}

func TestRunValidate_MissingFile(t *testing.T) {
	if _, err := execute(t, NewValidateCommand(), "/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestRunAnalyze_MissingFile(t *testing.T) {
	_, err := execute(t, NewAnalyzeCommand(&GlobalOptions{}), "/nonexistent/chat.txt")
	if err == nil {
		t.Error("Expected error for missing export")
	}
}

func TestRunAnalyze_Text(t *testing.T) {
	ExitCode = 0
	exportPath := writeFile(t, "chat.txt", testExport)

	out, err := execute(t, NewAnalyzeCommand(&GlobalOptions{}), exportPath)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	for _, want := range []string{"=== Chat Analysis: Overall ===", "Messages: 5"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0 without --strict", ExitCode)
	}
}

func TestRunAnalyze_Quiet(t *testing.T) {
	exportPath := writeFile(t, "chat.txt", testExport)

	out, err := execute(t, NewAnalyzeCommand(&GlobalOptions{}), "-q", exportPath)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	want := "chatstat: Overall: 5 messages"
	if !strings.HasPrefix(out, want) {
		t.Errorf("output = %q, want prefix %q", out, want)
	}
	if !strings.Contains(out, "1 media, 1 links") || !strings.Contains(out, "1 parse issues") {
		t.Errorf("output = %q, want media, link and issue counts", out)
	}
}

func TestRunAnalyze_JSONAuthor(t *testing.T) {
	exportPath := writeFile(t, "chat.txt", testExport)

	out, err := execute(t, NewAnalyzeCommand(&GlobalOptions{}), "-o", "json", "--author", "Alice", "--top", "1", exportPath)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	var report output.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if report.Summary.Author != "Alice" || report.Summary.Messages != 2 {
		t.Errorf("summary = %+v, want Alice with 2 messages", report.Summary)
	}
	if report.Summary.Media != 1 {
		t.Errorf("media = %d, want 1", report.Summary.Media)
	}
	if report.Metadata.Source != exportPath {
		t.Errorf("source = %q, want %q", report.Metadata.Source, exportPath)
	}
	if len(report.Stats.TopWords) > 1 {
		t.Errorf("top words = %v, want at most 1", report.Stats.TopWords)
	}
}

func TestRunAnalyze_Strict(t *testing.T) {
	ExitCode = 0
	t.Cleanup(func() { ExitCode = 0 })
	exportPath := writeFile(t, "chat.txt", testExport)

	if _, err := execute(t, NewAnalyzeCommand(&GlobalOptions{}), "--strict", "-q", exportPath); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1 with dropped segments and --strict", ExitCode)
	}
}

func TestRunAnalyze_AbortPolicy(t *testing.T) {
	exportPath := writeFile(t, "chat.txt", testExport)
	configPath := writeFile(t, "config.yaml", "timestamp_policy: abort\n")

	_, err := execute(t, NewAnalyzeCommand(&GlobalOptions{ConfigPath: configPath}), exportPath)
	if err == nil {
		t.Fatal("Expected error with abort policy and an invalid timestamp")
	}
	if !strings.Contains(err.Error(), "31/02/24") {
		t.Errorf("error = %v, want the offending timestamp", err)
	}
}

func TestRunAnalyze_InvalidOutput(t *testing.T) {
	exportPath := writeFile(t, "chat.txt", testExport)

	_, err := execute(t, NewAnalyzeCommand(&GlobalOptions{}), "-o", "xml", exportPath)
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Errorf("error = %v, want unknown output format", err)
	}
}

func TestRunRecords(t *testing.T) {
	exportPath := writeFile(t, "chat.txt", testExport)

	out, err := execute(t, NewRecordsCommand(&GlobalOptions{}), exportPath)
	if err != nil {
		t.Fatalf("records failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "group_notification") || !strings.Contains(lines[0], "system") {
		t.Errorf("line 0 = %q, want the notification record", lines[0])
	}
	if !strings.Contains(lines[2], "I love dogs / and birds") {
		t.Errorf("line 2 = %q, want joined multi-line message", lines[2])
	}
	if !strings.HasPrefix(lines[4], "2024-02-03 23:59:59") {
		t.Errorf("line 4 = %q, want 24-hour timestamp", lines[4])
	}
}

func TestRunRecords_Filters(t *testing.T) {
	exportPath := writeFile(t, "chat.txt", testExport)

	tests := []struct {
		name  string
		args  []string
		count int
		kind  parser.Kind
	}{
		{"author", []string{"--author", "Alice"}, 2, ""},
		{"kind", []string{"--kind", "media"}, 1, parser.KindMedia},
		{"author and kind", []string{"-a", "Carol", "--kind", "link"}, 1, parser.KindLink},
		{"all authors label", []string{"-a", "Overall"}, 5, ""},
		{"unknown author", []string{"-a", "Mallory"}, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"-o", "json"}, tt.args...)
			out, err := execute(t, NewRecordsCommand(&GlobalOptions{}), append(args, exportPath)...)
			if err != nil {
				t.Fatalf("records failed: %v", err)
			}

			var records []parser.Record
			if err := json.Unmarshal([]byte(out), &records); err != nil {
				t.Fatalf("invalid JSON: %v\n%s", err, out)
			}
			if len(records) != tt.count {
				t.Errorf("got %d records, want %d", len(records), tt.count)
			}
			for _, r := range records {
				if tt.kind != "" && r.Kind != tt.kind {
					t.Errorf("record kind = %q, want %q", r.Kind, tt.kind)
				}
			}
		})
	}
}

func TestRunRecords_InvalidKind(t *testing.T) {
	exportPath := writeFile(t, "chat.txt", testExport)

	_, err := execute(t, NewRecordsCommand(&GlobalOptions{}), "--kind", "video", exportPath)
	if err == nil || !strings.Contains(err.Error(), "unknown kind") {
		t.Errorf("error = %v, want unknown kind", err)
	}
}

func TestRunRecords_Width(t *testing.T) {
	exportPath := writeFile(t, "chat.txt", testExport)

	out, err := execute(t, NewRecordsCommand(&GlobalOptions{}), "--width", "8", "-a", "Carol", exportPath)
	if err != nil {
		t.Fatalf("records failed: %v", err)
	}
	if strings.Contains(out, "example.com") || !strings.Contains(out, "...") {
		t.Errorf("output = %q, want truncated message", out)
	}
}

func TestRunAuthors(t *testing.T) {
	exportPath := writeFile(t, "chat.txt", testExport)

	out, err := execute(t, NewAuthorsCommand(&GlobalOptions{}), exportPath)
	if err != nil {
		t.Fatalf("authors failed: %v", err)
	}
	if out != "Overall\nAlice\nBob\nCarol\n" {
		t.Errorf("authors output = %q", out)
	}

	out, err = execute(t, NewAuthorsCommand(&GlobalOptions{}), "-o", "json", exportPath)
	if err != nil {
		t.Fatalf("authors failed: %v", err)
	}
	var authors []string
	if err := json.Unmarshal([]byte(out), &authors); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(authors) != 4 || authors[0] != "Overall" {
		t.Errorf("authors = %v", authors)
	}
}

func TestRunAuthors_ConfigLabel(t *testing.T) {
	exportPath := writeFile(t, "chat.txt", testExport)
	configPath := writeFile(t, "config.yaml", "all_authors_label: Everyone\n")

	out, err := execute(t, NewAuthorsCommand(&GlobalOptions{ConfigPath: configPath}), exportPath)
	if err != nil {
		t.Fatalf("authors failed: %v", err)
	}
	if !strings.HasPrefix(out, "Everyone\n") {
		t.Errorf("authors output = %q, want Everyone first", out)
	}
}

func TestRunExplore_NotTerminal(t *testing.T) {
	exportPath := writeFile(t, "chat.txt", testExport)

	_, err := execute(t, NewExploreCommand(&GlobalOptions{}), exportPath)
	if err != ErrNotTerminal {
		t.Errorf("error = %v, want ErrNotTerminal", err)
	}
}

func TestNewServeCommand(t *testing.T) {
	cmd := NewServeCommand(&GlobalOptions{})

	if cmd.Flags().Lookup("addr") == nil {
		t.Error("Missing flag: addr")
	}
	if err := cmd.Args(cmd, []string{"extra"}); err == nil {
		t.Error("serve should take no arguments")
	}
}

func TestCreateFormatter(t *testing.T) {
	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{"text", "text", false},
		{"json", "json", false},
		{"yaml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f, err := createFormatter(tt.format, output.FormatOptions{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("createFormatter(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if err == nil && f.Name() != tt.want {
				t.Errorf("createFormatter(%q).Name() = %q, want %q", tt.format, f.Name(), tt.want)
			}
		})
	}
}

func TestLoadConfig_LogLevelOverride(t *testing.T) {
	configPath := writeFile(t, "config.yaml", "log:\n  level: error\n")

	cmd := NewAuthorsCommand(&GlobalOptions{})
	var errBuf bytes.Buffer
	cmd.SetErr(&errBuf)

	cfg, err := loadConfig(cmd, &GlobalOptions{ConfigPath: configPath, LogLevel: "debug"}, false)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("cfg.Log.Level = %q, want error", cfg.Log.Level)
	}

	e := &env{cfg: cfg}
	exportPath := writeFile(t, "chat.txt", "no headers here\n")
	if _, err := e.parseExport(context.Background(), exportPath); err != nil {
		t.Fatalf("parseExport() error = %v", err)
	}
	logs := errBuf.String()
	if !strings.Contains(logs, `"level":"debug"`) {
		t.Errorf("expected debug logs with --log-level debug, got %q", logs)
	}
	if !strings.Contains(logs, "no message headers found") {
		t.Errorf("expected warning for export without headers, got %q", logs)
	}
}
