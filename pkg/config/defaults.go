package config

import (
	"os"
	"time"

	"github.com/ccollicutt/chatstat/pkg/analyzer"
	"github.com/ccollicutt/chatstat/pkg/parser"
)

// Default values for configuration.
const (
	DefaultMediaPlaceholder = "<Media omitted>"
	DefaultLinkMarker       = "http"
	DefaultLogLevel         = "info"
	DefaultServerAddr       = ":8080"
	DefaultMaxUploadBytes   = 32 << 20
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultWebhookTimeout   = 10 * time.Second
)

// Environment variable names.
const (
	EnvStopwordsFile = "CHATSTAT_STOPWORDS_FILE"
	EnvEmojiFile     = "CHATSTAT_EMOJI_FILE"
	EnvLogLevel      = "CHATSTAT_LOG_LEVEL"
	EnvServerAddr    = "CHATSTAT_SERVER_ADDR"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		NotificationAuthor: parser.DefaultNotificationAuthor,
		AllAuthorsLabel:    analyzer.DefaultAllAuthorsLabel,
		MediaPlaceholder:   DefaultMediaPlaceholder,
		LinkMarker:         DefaultLinkMarker,
		TopN:               analyzer.DefaultTopN,
		TimestampPolicy:    string(parser.PolicyDrop),
		AuthorMatch:        string(parser.MatchAnchored),
		YearBase:           parser.DefaultYearBase,
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
		Server: ServerConfig{
			Addr:            DefaultServerAddr,
			MaxUploadBytes:  DefaultMaxUploadBytes,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if path := os.Getenv(EnvStopwordsFile); path != "" {
		c.StopwordsFile = path
	}
	if path := os.Getenv(EnvEmojiFile); path != "" {
		c.EmojiFile = path
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
	if addr := os.Getenv(EnvServerAddr); addr != "" {
		c.Server.Addr = addr
	}
}
