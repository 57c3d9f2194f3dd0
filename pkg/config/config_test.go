package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ccollicutt/chatstat/pkg/analyzer"
	"github.com/ccollicutt/chatstat/pkg/parser"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
notification_author: system
all_authors_label: Everyone
media_placeholder: "image omitted"
link_marker: "www."
top_n: 5
timestamp_policy: abort
author_match: search
year_base: 1990
log:
  level: debug
  pretty: true
server:
  addr: "127.0.0.1:9000"
  max_upload_bytes: 1048576
`
	path := writeTempFile(t, "config.yaml", content)
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.NotificationAuthor != "system" {
		t.Errorf("NotificationAuthor = %q, want %q", cfg.NotificationAuthor, "system")
	}
	if cfg.AllAuthorsLabel != "Everyone" {
		t.Errorf("AllAuthorsLabel = %q, want %q", cfg.AllAuthorsLabel, "Everyone")
	}
	if cfg.TopN != 5 {
		t.Errorf("TopN = %d, want 5", cfg.TopN)
	}
	if cfg.TimestampPolicy != "abort" || cfg.AuthorMatch != "search" || cfg.YearBase != 1990 {
		t.Errorf("parser settings = %q %q %d", cfg.TimestampPolicy, cfg.AuthorMatch, cfg.YearBase)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.Pretty {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.MaxUploadBytes != 1048576 {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Server.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("ShutdownTimeout = %v, want default", cfg.Server.ShutdownTimeout)
	}
}

func TestLoad_PartialConfigKeepsDefaults(t *testing.T) {
	path := writeTempFile(t, "config.yaml", "top_n: 3\n")
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TopN != 3 {
		t.Errorf("TopN = %d, want 3", cfg.TopN)
	}
	if cfg.NotificationAuthor != parser.DefaultNotificationAuthor {
		t.Errorf("NotificationAuthor = %q, want default", cfg.NotificationAuthor)
	}
	if cfg.MediaPlaceholder != DefaultMediaPlaceholder {
		t.Errorf("MediaPlaceholder = %q, want default", cfg.MediaPlaceholder)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(context.Background(), "/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	content := `invalid: yaml: content: [`
	path := writeTempFile(t, "invalid.yaml", content)
	_, err := Load(context.Background(), path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML")
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	path := writeTempFile(t, "config.yaml", "timestamp_policy: keep\n")
	_, err := Load(context.Background(), path)
	if err == nil {
		t.Error("Load() expected error for invalid timestamp_policy")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(context.Background(), "")
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.TopN != analyzer.DefaultTopN {
		t.Errorf("TopN = %d, want default", cfg.TopN)
	}

	path := writeTempFile(t, "config.yaml", "top_n: 7\n")
	cfg, err = LoadOrDefault(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadOrDefault(path) error = %v", err)
	}
	if cfg.TopN != 7 {
		t.Errorf("TopN = %d, want 7", cfg.TopN)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvStopwordsFile, "/etc/chatstat/stop.txt")
	t.Setenv(EnvEmojiFile, "/etc/chatstat/emoji.txt")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvServerAddr, ":9999")

	path := writeTempFile(t, "config.yaml", "stopwords_file: ./stop.txt\nlog:\n  level: debug\n")
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.StopwordsFile != "/etc/chatstat/stop.txt" {
		t.Errorf("StopwordsFile = %q", cfg.StopwordsFile)
	}
	if cfg.EmojiFile != "/etc/chatstat/emoji.txt" {
		t.Errorf("EmojiFile = %q", cfg.EmojiFile)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Server.Addr = %q, want :9999", cfg.Server.Addr)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate(DefaultConfig()) error = %v", err)
	}
	if cfg.AllAuthorsLabel != "Overall" {
		t.Errorf("AllAuthorsLabel = %q, want Overall", cfg.AllAuthorsLabel)
	}
	if cfg.TimestampPolicy != "drop" || cfg.AuthorMatch != "anchored" || cfg.YearBase != 2000 {
		t.Errorf("parser defaults = %q %q %d", cfg.TimestampPolicy, cfg.AuthorMatch, cfg.YearBase)
	}
	if cfg.Server.MaxUploadBytes != DefaultMaxUploadBytes {
		t.Errorf("MaxUploadBytes = %d", cfg.Server.MaxUploadBytes)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty notification author", func(c *Config) { c.NotificationAuthor = " " }},
		{"empty all authors label", func(c *Config) { c.AllAuthorsLabel = "" }},
		{"label equals sentinel", func(c *Config) { c.AllAuthorsLabel = c.NotificationAuthor }},
		{"negative top_n", func(c *Config) { c.TopN = -1 }},
		{"invalid timestamp policy", func(c *Config) { c.TimestampPolicy = "retain" }},
		{"invalid author match", func(c *Config) { c.AuthorMatch = "fuzzy" }},
		{"zero year base", func(c *Config) { c.YearBase = 0 }},
		{"huge year base", func(c *Config) { c.YearBase = 9950 }},
		{"invalid log level", func(c *Config) { c.Log.Level = "loud" }},
		{"empty server addr", func(c *Config) { c.Server.Addr = "" }},
		{"zero upload limit", func(c *Config) { c.Server.MaxUploadBytes = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("Validate() expected error")
			}
		})
	}
}

func TestValidate_TopNZeroAllowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TopN = 0
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate_LogLevelDefault(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = ""
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
}

func TestConfig_ParserOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AuthorMatch = "search"
	cfg.TimestampPolicy = "abort"
	cfg.YearBase = 1950

	opts := cfg.ParserOptions()
	if opts.MatchMode != parser.MatchSearch || opts.FailurePolicy != parser.PolicyAbort || opts.YearBase != 1950 {
		t.Errorf("ParserOptions() = %+v", opts)
	}
	if opts.MediaPlaceholder != DefaultMediaPlaceholder || opts.LinkMarker != DefaultLinkMarker {
		t.Errorf("ParserOptions() markers = %q %q", opts.MediaPlaceholder, opts.LinkMarker)
	}
}

func TestConfig_Lexicon(t *testing.T) {
	dir := t.TempDir()
	stop := filepath.Join(dir, "stop.txt")
	if err := os.WriteFile(stop, []byte("zebra\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.StopwordsFile = stop
	lex, err := cfg.Lexicon()
	if err != nil {
		t.Fatalf("Lexicon() error = %v", err)
	}
	if !lex.Stopwords.Contains("zebra") || lex.Stopwords.Contains("the") {
		t.Error("Lexicon() did not use the configured stopwords file")
	}

	cfg.EmojiFile = filepath.Join(dir, "missing.txt")
	if _, err := cfg.Lexicon(); err == nil {
		t.Error("Lexicon() expected error for missing emoji file")
	}
}

func TestConfig_AnalyzerOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllAuthorsLabel = "All"
	lex, err := cfg.Lexicon()
	if err != nil {
		t.Fatal(err)
	}

	a, err := analyzer.NewAnalyzer(cfg.AnalyzerOptions(lex)...)
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}
	if a.AllAuthorsLabel() != "All" {
		t.Errorf("AllAuthorsLabel() = %q, want All", a.AllAuthorsLabel())
	}
}

// ============================================================================
// Webhook Validation Tests
// ============================================================================

func configWithWebhooks(webhooks ...WebhookConfig) *Config {
	cfg := DefaultConfig()
	cfg.Webhooks = webhooks
	return cfg
}

func TestValidate_Webhook_Valid(t *testing.T) {
	cfg := configWithWebhooks(WebhookConfig{
		Name:    "test-webhook",
		URL:     "https://example.com/webhook",
		Trigger: WebhookTriggerOnIssues,
		Timeout: 10 * time.Second,
	})
	err := Validate(cfg)
	if err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate_Webhook_ValidHTTP(t *testing.T) {
	cfg := configWithWebhooks(WebhookConfig{URL: "http://localhost:8080/webhook"})
	err := Validate(cfg)
	if err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate_Webhook_MissingURL(t *testing.T) {
	cfg := configWithWebhooks(WebhookConfig{Name: "no-url", Trigger: WebhookTriggerOnIssues})
	err := Validate(cfg)
	if err == nil {
		t.Error("Validate() expected error for missing URL")
	}
}

func TestValidate_Webhook_InvalidScheme(t *testing.T) {
	cfg := configWithWebhooks(WebhookConfig{URL: "ftp://example.com/webhook"})
	err := Validate(cfg)
	if err == nil {
		t.Error("Validate() expected error for non-http scheme")
	}
}

func TestValidate_Webhook_MissingHost(t *testing.T) {
	cfg := configWithWebhooks(WebhookConfig{URL: "https:///webhook"})
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for missing host")
	}
}

func TestValidate_Webhook_InvalidTrigger(t *testing.T) {
	cfg := configWithWebhooks(WebhookConfig{URL: "https://example.com/webhook", Trigger: "invalid_trigger"})
	err := Validate(cfg)
	if err == nil {
		t.Error("Validate() expected error for invalid trigger")
	}
}

func TestValidate_Webhook_AllTriggers(t *testing.T) {
	triggers := []WebhookTrigger{
		WebhookTriggerOnIssues,
		WebhookTriggerAlways,
		WebhookTriggerNever,
	}

	for _, trigger := range triggers {
		cfg := configWithWebhooks(WebhookConfig{URL: "https://example.com/webhook", Trigger: trigger})
		err := Validate(cfg)
		if err != nil {
			t.Errorf("Validate() with trigger %q error = %v", trigger, err)
		}
	}
}

func TestValidate_Webhook_Defaults(t *testing.T) {
	cfg := configWithWebhooks(WebhookConfig{URL: "https://example.com/webhook"})
	err := Validate(cfg)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Webhooks[0].Trigger != WebhookTriggerOnIssues {
		t.Errorf("Default trigger = %v, want %v", cfg.Webhooks[0].Trigger, WebhookTriggerOnIssues)
	}
	if cfg.Webhooks[0].Timeout != DefaultWebhookTimeout {
		t.Errorf("Default timeout = %v, want %v", cfg.Webhooks[0].Timeout, DefaultWebhookTimeout)
	}
}

func TestValidate_Webhook_TokenExpansion(t *testing.T) {
	t.Setenv("TEST_CHAT_WEBHOOK_TOKEN", "secret-value")
	cfg := configWithWebhooks(WebhookConfig{URL: "https://example.com/webhook", Token: "${TEST_CHAT_WEBHOOK_TOKEN}"})
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Webhooks[0].Token != "secret-value" {
		t.Errorf("Token = %q, want expanded value", cfg.Webhooks[0].Token)
	}
}

func TestExpandEnvVar(t *testing.T) {
	t.Setenv("TEST_WEBHOOK_TOKEN", "secret-value")

	tests := []struct {
		input string
		want  string
	}{
		{"${TEST_WEBHOOK_TOKEN}", "secret-value"},
		{"$TEST_WEBHOOK_TOKEN", "secret-value"},
		{"plain-value", "plain-value"},
		{"", ""},
		{"${NONEXISTENT_VAR}", ""},
	}

	for _, tt := range tests {
		got := expandEnvVar(tt.input)
		if got != tt.want {
			t.Errorf("expandEnvVar(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLoad_WithWebhooks(t *testing.T) {
	content := `
webhooks:
  - name: test-webhook
    url: "https://example.com/webhook"
    trigger: on_issues
    timeout: 30s
  - url: "https://backup.example.com/webhook"
    trigger: always
`
	path := writeTempFile(t, "config-with-webhooks.yaml", content)
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Webhooks) != 2 {
		t.Fatalf("Webhooks = %d, want 2", len(cfg.Webhooks))
	}
	if cfg.Webhooks[0].Name != "test-webhook" {
		t.Errorf("Webhook[0].Name = %q, want %q", cfg.Webhooks[0].Name, "test-webhook")
	}
	if cfg.Webhooks[0].Timeout != 30*time.Second {
		t.Errorf("Webhook[0].Timeout = %v, want 30s", cfg.Webhooks[0].Timeout)
	}
	if cfg.Webhooks[1].Trigger != WebhookTriggerAlways {
		t.Errorf("Webhook[1].Trigger = %v, want %v", cfg.Webhooks[1].Trigger, WebhookTriggerAlways)
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}
