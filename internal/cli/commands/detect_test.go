package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccollicutt/chatstat/pkg/config"
	"github.com/ccollicutt/chatstat/pkg/detector"
)

func detectLines(t *testing.T, content string) *detector.DetectionResult {
	t.Helper()
	return detector.New().DetectFromLines(strings.Split(strings.TrimSpace(content), "\n"))
}

const dashedExport = "15/01/24, 21:05 - Alice: hi\n15/01/24, 21:06 - Bob: hello\n"

func TestGenerateStarterConfig(t *testing.T) {
	result := detectLines(t, testExport)

	content := generateStarterConfig("/exports/chat.txt", result, 2000)

	checks := []string{
		"/exports/chat.txt",
		"Bracketed 12-hour (DD/MM/YY)",
		`notification_author: "group_notification"`,
		`all_authors_label: "Overall"`,
		"timestamp_policy: drop",
		"author_match: anchored",
		"year_base: 2000",
		"shutdown_timeout: 10s",
	}

	for _, check := range checks {
		if !strings.Contains(content, check) {
			t.Errorf("Config missing %q:\n%s", check, content)
		}
	}
}

func TestGenerateStarterConfig_CleanExportAborts(t *testing.T) {
	result := detectLines(t, "[15/01/24, 9:05:00 PM] Alice: hi\n[16/01/24, 9:06:00 PM] Bob: hello\n")

	content := generateStarterConfig("chat.txt", result, 2000)
	if !strings.Contains(content, "timestamp_policy: abort") {
		t.Errorf("expected abort policy for an export without invalid timestamps:\n%s", content)
	}
}

func TestWriteStarterConfig_Success(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "chatstat.yaml")
	result := detectLines(t, testExport)

	var out bytes.Buffer
	if err := writeStarterConfig(&out, result, "chat.txt", configPath, 1990); err != nil {
		t.Fatalf("writeStarterConfig failed: %v", err)
	}
	if !strings.Contains(out.String(), "Wrote starter config") {
		t.Errorf("output = %q", out.String())
	}

	// The generated file must load as a valid config
	cfg, err := config.Load(context.Background(), configPath)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if cfg.YearBase != 1990 {
		t.Errorf("YearBase = %d, want 1990", cfg.YearBase)
	}
	if cfg.TimestampPolicy != "drop" {
		t.Errorf("TimestampPolicy = %q, want drop", cfg.TimestampPolicy)
	}
	if cfg.Server.ShutdownTimeout != config.DefaultShutdownTimeout {
		t.Errorf("ShutdownTimeout = %v, want %v", cfg.Server.ShutdownTimeout, config.DefaultShutdownTimeout)
	}
}

func TestWriteStarterConfig_NoOverwrite(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "existing.yaml")

	// Create existing file
	if err := os.WriteFile(configPath, []byte("existing content"), 0644); err != nil {
		t.Fatalf("Failed to create existing file: %v", err)
	}

	err := writeStarterConfig(&bytes.Buffer{}, detectLines(t, testExport), "chat.txt", configPath, 2000)
	if err == nil {
		t.Fatal("Expected error when file exists, got nil")
	}
	if !strings.Contains(err.Error(), "will not overwrite") {
		t.Errorf("Expected 'will not overwrite' error, got: %v", err)
	}

	// Verify original content unchanged
	content, _ := os.ReadFile(configPath)
	if string(content) != "existing content" {
		t.Error("Existing file was modified")
	}
}

func TestWriteStarterConfig_Unsupported(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no match", "just some text\nmore text\n"},
		{"dashed format", dashedExport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "chatstat.yaml")
			err := writeStarterConfig(&bytes.Buffer{}, detectLines(t, tt.content), "chat.txt", configPath, 2000)
			if err == nil {
				t.Fatal("Expected error without a supported format, got nil")
			}
			if !strings.Contains(err.Error(), "no supported header format") {
				t.Errorf("Expected 'no supported header format' error, got: %v", err)
			}
			if _, err := os.Stat(configPath); !os.IsNotExist(err) {
				t.Error("config file should not be written")
			}
		})
	}
}

func TestDetectOptions_Defaults(t *testing.T) {
	cmd := NewDetectCommand(&GlobalOptions{})

	output, _ := cmd.Flags().GetString("output")
	if output != "text" {
		t.Errorf("Expected default output 'text', got %q", output)
	}

	sample, _ := cmd.Flags().GetInt("sample")
	if sample != detector.DefaultSampleSize {
		t.Errorf("Expected default sample %d, got %d", detector.DefaultSampleSize, sample)
	}

	writeConfig, _ := cmd.Flags().GetString("write-config")
	if writeConfig != "" {
		t.Errorf("Expected default write-config '', got %q", writeConfig)
	}
}

func TestOutputDetectText_NoMatch(t *testing.T) {
	var buf bytes.Buffer
	result := detectLines(t, "hello\nworld\n")

	if err := outputDetectText(&buf, result, "chat.txt", &DetectOptions{}); err != nil {
		t.Fatalf("outputDetectText() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No message header format detected.") {
		t.Errorf("output missing no-match message:\n%s", buf.String())
	}
}

func TestOutputDetectText_Supported(t *testing.T) {
	var buf bytes.Buffer
	result := detectLines(t, testExport)

	if err := outputDetectText(&buf, result, "chat.txt", &DetectOptions{}); err != nil {
		t.Fatalf("outputDetectText() error = %v", err)
	}

	for _, want := range []string{
		"Detected Format: Bracketed 12-hour (DD/MM/YY)",
		"Supported: yes",
		"AM/PM separators: space (6)",
		"Invalid timestamps: 1",
		"Parsed as: 2024-01-15 21:00:00",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
	if strings.Contains(buf.String(), "Note:") {
		t.Errorf("day-first export should carry no date order note:\n%s", buf.String())
	}
}

func TestOutputDetectText_UnsupportedShowAll(t *testing.T) {
	var buf bytes.Buffer
	result := detectLines(t, dashedExport)

	if err := outputDetectText(&buf, result, "chat.txt", &DetectOptions{ShowAll: true}); err != nil {
		t.Fatalf("outputDetectText() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Detected Format: Dashed 24-hour") {
		t.Errorf("output missing dashed format:\n%s", out)
	}
	if !strings.Contains(out, "Supported: no") {
		t.Errorf("output missing unsupported verdict:\n%s", out)
	}
}

func TestOutputDetectJSON(t *testing.T) {
	var buf bytes.Buffer
	result := detectLines(t, testExport)

	if err := outputDetectJSON(&buf, result, "chat.txt", &DetectOptions{}); err != nil {
		t.Fatalf("outputDetectJSON() error = %v", err)
	}

	var out JSONOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.File != "chat.txt" || !out.Supported || !out.DayFirst || out.MonthFirst {
		t.Errorf("output = %+v", out)
	}
	if out.InvalidTimestamps != 1 {
		t.Errorf("InvalidTimestamps = %d, want 1", out.InvalidTimestamps)
	}
	if len(out.Matches) != 1 || !out.Matches[0].Supported {
		t.Errorf("Matches = %+v, want only the supported best match", out.Matches)
	}
}

func TestRunDetect_MissingFile(t *testing.T) {
	_, err := execute(t, NewDetectCommand(&GlobalOptions{}), "/nonexistent/chat.txt")
	if err == nil || !strings.Contains(err.Error(), "export file not found") {
		t.Errorf("error = %v, want export file not found", err)
	}
}

func TestRunDetect_Success(t *testing.T) {
	exportPath := writeFile(t, "chat.txt", testExport)

	out, err := execute(t, NewDetectCommand(&GlobalOptions{}), exportPath)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if !strings.Contains(out, "=== Header Format Detection ===") || !strings.Contains(out, "Supported: yes") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRunDetect_JSONOutput(t *testing.T) {
	exportPath := writeFile(t, "chat.txt", testExport)

	out, err := execute(t, NewDetectCommand(&GlobalOptions{}), "-o", "json", exportPath)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	var parsed JSONOutput
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if parsed.File != exportPath {
		t.Errorf("File = %q, want %q", parsed.File, exportPath)
	}
}

func TestRunDetect_InvalidOutput(t *testing.T) {
	exportPath := writeFile(t, "chat.txt", testExport)

	if _, err := execute(t, NewDetectCommand(&GlobalOptions{}), "-o", "xml", exportPath); err == nil {
		t.Error("Expected error for unknown output format")
	}
}

func TestRunDetect_WriteConfig(t *testing.T) {
	exportPath := writeFile(t, "chat.txt", testExport)
	configPath := filepath.Join(t.TempDir(), "chatstat.yaml")

	out, err := execute(t, NewDetectCommand(&GlobalOptions{}), "--write-config", configPath, exportPath)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if !strings.Contains(out, "Wrote starter config to: "+configPath) {
		t.Errorf("output missing write confirmation:\n%s", out)
	}

	// The written config drives analysis
	if _, err := execute(t, NewAuthorsCommand(&GlobalOptions{ConfigPath: configPath}), exportPath); err != nil {
		t.Errorf("generated config rejected by authors: %v", err)
	}
}
