package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/chatstat/pkg/analyzer"
	"github.com/ccollicutt/chatstat/pkg/lexicon"
	"github.com/ccollicutt/chatstat/pkg/parser"
)

// maxYearBase keeps the two-digit year window inside four-digit years.
const maxYearBase = 9900

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path, or returns the validated defaults with
// environment overrides when path is empty.
func LoadOrDefault(ctx context.Context, path string) (*Config, error) {
	if path != "" {
		return Load(ctx, path)
	}

	cfg := DefaultConfig()
	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate checks a configuration for errors and fills webhook defaults.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.NotificationAuthor) == "" {
		return errors.New("notification_author: must not be empty")
	}

	if strings.TrimSpace(cfg.AllAuthorsLabel) == "" {
		return errors.New("all_authors_label: must not be empty")
	}

	if cfg.AllAuthorsLabel == cfg.NotificationAuthor {
		return fmt.Errorf("all_authors_label: must differ from notification_author (%q)", cfg.NotificationAuthor)
	}

	if cfg.TopN < 0 {
		return fmt.Errorf("top_n: must be >= 0, got %d", cfg.TopN)
	}

	switch parser.FailurePolicy(cfg.TimestampPolicy) {
	case parser.PolicyDrop, parser.PolicyAbort:
	default:
		return fmt.Errorf("timestamp_policy: invalid value %q (must be drop or abort)", cfg.TimestampPolicy)
	}

	switch parser.MatchMode(cfg.AuthorMatch) {
	case parser.MatchAnchored, parser.MatchSearch:
	default:
		return fmt.Errorf("author_match: invalid value %q (must be anchored or search)", cfg.AuthorMatch)
	}

	if cfg.YearBase < 1 || cfg.YearBase > maxYearBase {
		return fmt.Errorf("year_base: must be between 1 and %d, got %d", maxYearBase, cfg.YearBase)
	}

	if err := validateLog(&cfg.Log); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	// Webhooks are optional, but validate if present
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func validateLog(lc *LogConfig) error {
	if lc.Level == "" {
		lc.Level = DefaultLogLevel
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(lc.Level)); err != nil {
		return fmt.Errorf("invalid level %q: %w", lc.Level, err)
	}
	return nil
}

func validateServer(sc *ServerConfig) error {
	if sc.Addr == "" {
		return errors.New("addr is required")
	}
	if sc.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be > 0, got %d", sc.MaxUploadBytes)
	}
	if sc.ShutdownTimeout <= 0 {
		sc.ShutdownTimeout = DefaultShutdownTimeout
	}
	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	// Validate URL format
	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	// Expand environment variables in token
	wh.Token = expandEnvVar(wh.Token)

	// Validate trigger if specified
	if wh.Trigger != "" {
		switch wh.Trigger {
		case WebhookTriggerOnIssues, WebhookTriggerAlways, WebhookTriggerNever:
			// Valid
		default:
			return fmt.Errorf("invalid trigger %q (must be on_issues, always, or never)", wh.Trigger)
		}
	} else {
		wh.Trigger = WebhookTriggerOnIssues
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	// Handle ${VAR} format
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		varName := s[2 : len(s)-1]
		return os.Getenv(varName)
	}

	// Handle $VAR format (no braces)
	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		varName := s[1:]
		return os.Getenv(varName)
	}

	return s
}

// ParserOptions returns the parser settings described by the config.
func (c *Config) ParserOptions() parser.Options {
	return parser.Options{
		NotificationAuthor: c.NotificationAuthor,
		MatchMode:          parser.MatchMode(c.AuthorMatch),
		FailurePolicy:      parser.FailurePolicy(c.TimestampPolicy),
		YearBase:           c.YearBase,
		MediaPlaceholder:   c.MediaPlaceholder,
		LinkMarker:         c.LinkMarker,
	}
}

// Lexicon loads the stopword list and emoji table the config points at.
func (c *Config) Lexicon() (*lexicon.Lexicon, error) {
	lex, err := lexicon.Load(c.StopwordsFile, c.EmojiFile)
	if err != nil {
		return nil, fmt.Errorf("loading lexicon: %w", err)
	}
	return lex, nil
}

// AnalyzerOptions returns analyzer options for the config and lexicon.
// Per-request choices such as the author are appended by the caller.
func (c *Config) AnalyzerOptions(lex *lexicon.Lexicon) []analyzer.AnalyzerOption {
	return []analyzer.AnalyzerOption{
		analyzer.WithAllAuthorsLabel(c.AllAuthorsLabel),
		analyzer.WithTopN(c.TopN),
		analyzer.WithLexicon(lex),
		analyzer.WithMediaPlaceholder(c.MediaPlaceholder),
		analyzer.WithLinkMarker(c.LinkMarker),
	}
}
