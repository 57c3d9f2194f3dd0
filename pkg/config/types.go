// Package config provides configuration loading and validation for chatstat.
package config

import (
	"time"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// NotificationAuthor is the sentinel author given to system notifications.
	NotificationAuthor string `yaml:"notification_author"`

	// AllAuthorsLabel is the synthetic author option that selects every record.
	AllAuthorsLabel string `yaml:"all_authors_label"`

	// MediaPlaceholder is the message text exports use for omitted media.
	MediaPlaceholder string `yaml:"media_placeholder"`

	// LinkMarker is the substring that marks a message as a shared link.
	LinkMarker string `yaml:"link_marker"`

	// TopN is how many words and emoji are ranked.
	TopN int `yaml:"top_n"`

	// TimestampPolicy is drop or abort.
	TimestampPolicy string `yaml:"timestamp_policy"`

	// AuthorMatch is anchored or search.
	AuthorMatch string `yaml:"author_match"`

	// YearBase is the first year of the two-digit year window.
	YearBase int `yaml:"year_base"`

	// StopwordsFile replaces the built-in stopword list when set.
	StopwordsFile string `yaml:"stopwords_file,omitempty"`

	// EmojiFile replaces the built-in emoji table when set.
	EmojiFile string `yaml:"emoji_file,omitempty"`

	Log      LogConfig       `yaml:"log"`
	Server   ServerConfig    `yaml:"server"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	// Level is a zerolog level name: trace, debug, info, warn, error.
	Level string `yaml:"level"`

	// Pretty forces human-readable console output instead of JSON.
	Pretty bool `yaml:"pretty"`
}

// ServerConfig controls the HTTP upload endpoint.
type ServerConfig struct {
	Addr string `yaml:"addr"`

	// MaxUploadBytes caps the size of an uploaded export.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnIssues fires only when parse issues were recorded (default).
	WebhookTriggerOnIssues WebhookTrigger = "on_issues"
	// WebhookTriggerAlways fires after every analysis.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending analysis results.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_issues" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
