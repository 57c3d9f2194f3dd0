package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatstat/pkg/analyzer"
	"github.com/ccollicutt/chatstat/pkg/config"
	"github.com/ccollicutt/chatstat/pkg/detector"
	"github.com/ccollicutt/chatstat/pkg/parser"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	SampleSize  int
	ShowAll     bool
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand(global *GlobalOptions) *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <export-file>",
		Short: "Detect the message header format of a chat export",
		Long: `Sample a chat export and report which message header format it uses.

Only bracketed 12-hour headers such as "[15/01/24, 9:05:00 PM]" are parsed.
Other common export layouts are recognized so that detect can explain why
an export yields no messages.

Also reports:
  - Whether the dates are provably day-first
  - The separator between seconds and AM/PM
  - Lines before the first header
  - Headers whose date is not a real calendar time

Optionally generates a starter config file with --write-config.

Example:
  chatstat detect chat.txt
  chatstat detect --all chat.txt
  chatstat detect --write-config chatstat.yaml chat.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, global, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", detector.DefaultSampleSize, "Number of lines to sample")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show all detected formats, not just the best match")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, global *GlobalOptions, opts *DetectOptions) error {
	exportFile := args[0]
	ctx := commandContext(cmd)

	if opts.Output != "text" && opts.Output != "json" {
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}

	cfg, err := loadConfig(cmd, global, true)
	if err != nil {
		return err
	}

	// Check file exists
	if _, err := os.Stat(exportFile); os.IsNotExist(err) {
		return fmt.Errorf("export file not found: %s", exportFile)
	}

	d := detector.New(
		detector.WithSampleSize(opts.SampleSize),
		detector.WithYearBase(cfg.YearBase),
	)

	result, err := d.DetectFromFile(ctx, exportFile)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	w := cmd.OutOrStdout()

	// Write config file if requested
	if opts.WriteConfig != "" {
		if err := writeStarterConfig(w, result, exportFile, opts.WriteConfig, cfg.YearBase); err != nil {
			return err
		}
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(w, result, exportFile, opts)
	default:
		return outputDetectText(w, result, exportFile, opts)
	}
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, exportFile string, opts *DetectOptions) error {
	fmt.Fprintln(w, "=== Header Format Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", exportFile)
	fmt.Fprintf(w, "Lines sampled: %d\n", result.SampledLines)
	fmt.Fprintf(w, "Lines with headers: %d\n", result.ParsedLines)
	if result.PreambleLines > 0 {
		fmt.Fprintf(w, "Lines before first header: %d\n", result.PreambleLines)
	}
	fmt.Fprintln(w)

	if !result.HasMatch() {
		fmt.Fprintln(w, "No message header format detected.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: chatstat reads exports whose lines start like")
		fmt.Fprintln(w, "  [15/01/24, 9:05:00 PM] Alice: hello")
		fmt.Fprintln(w, "Check the first few lines of the file manually.")
		return nil
	}

	best := result.BestMatch()
	fmt.Fprintf(w, "Detected Format: %s\n", best.Format.Name)
	fmt.Fprintf(w, "Confidence: %.1f%% (%d/%d lines matched)\n",
		best.Confidence*100, best.MatchCount, result.SampledLines)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Sample match:\n  %s\n", best.SampleLine)
	if !best.ParsedTime.IsZero() {
		fmt.Fprintf(w, "Parsed as: %s\n", best.ParsedTime.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(w)

	if result.Supported() {
		fmt.Fprintln(w, "Supported: yes")
		if len(result.Separators) > 0 {
			fmt.Fprintf(w, "AM/PM separators: %s\n", formatSeparators(result.Separators))
		}
		if result.InvalidTimestamps > 0 {
			fmt.Fprintf(w, "Invalid timestamps: %d (dropped or fatal depending on timestamp_policy)\n",
				result.InvalidTimestamps)
		}
	} else {
		fmt.Fprintln(w, "Supported: no")
		fmt.Fprintln(w, "chatstat will find no messages in this export.")
	}
	fmt.Fprintln(w)

	if result.AmbiguityNote != "" {
		fmt.Fprintf(w, "Note: %s\n", result.AmbiguityNote)
		fmt.Fprintln(w)
	}

	// Show alternatives if requested
	if opts.ShowAll && len(result.Matches) > 1 {
		fmt.Fprintln(w, "--- Alternative formats detected ---")
		for i, m := range result.Matches[1:] {
			fmt.Fprintf(w, "%d. %s (%.1f%% confidence)\n", i+2, m.Format.Name, m.Confidence*100)
			fmt.Fprintf(w, "   pattern: '%s'\n", m.Format.PatternStr)
			fmt.Fprintf(w, "   layout: \"%s\"\n", m.Format.Layout)
		}
		fmt.Fprintln(w)
	}

	return nil
}

func formatSeparators(seps map[string]int) string {
	names := make([]string, 0, len(seps))
	for name := range seps {
		names = append(names, name)
	}
	sort.Strings(names)

	s := ""
	for i, name := range names {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s (%d)", name, seps[name])
	}
	return s
}

// JSONMatch represents a format match in JSON output.
type JSONMatch struct {
	Name       string  `json:"name"`
	Pattern    string  `json:"pattern"`
	Layout     string  `json:"layout"`
	Confidence float64 `json:"confidence"`
	MatchCount int     `json:"match_count"`
	SampleLine string  `json:"sample_line"`
	Supported  bool    `json:"supported"`
	Ambiguous  bool    `json:"ambiguous,omitempty"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File              string         `json:"file"`
	Matches           []JSONMatch    `json:"matches"`
	SampledLines      int            `json:"sampled_lines"`
	ParsedLines       int            `json:"parsed_lines"`
	PreambleLines     int            `json:"preamble_lines"`
	Supported         bool           `json:"supported"`
	DayFirst          bool           `json:"day_first"`
	MonthFirst        bool           `json:"month_first"`
	InvalidTimestamps int            `json:"invalid_timestamps"`
	Separators        map[string]int `json:"separators,omitempty"`
	AmbiguityNote     string         `json:"ambiguity_note,omitempty"`
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, exportFile string, opts *DetectOptions) error {
	out := JSONOutput{
		File:              exportFile,
		SampledLines:      result.SampledLines,
		ParsedLines:       result.ParsedLines,
		PreambleLines:     result.PreambleLines,
		Supported:         result.Supported(),
		DayFirst:          result.DayFirst,
		MonthFirst:        result.MonthFirst,
		InvalidTimestamps: result.InvalidTimestamps,
		Separators:        result.Separators,
		AmbiguityNote:     result.AmbiguityNote,
		Matches:           make([]JSONMatch, 0),
	}

	matches := result.Matches
	if !opts.ShowAll && len(matches) > 1 {
		matches = matches[:1] // Only show best match
	}

	for _, m := range matches {
		out.Matches = append(out.Matches, JSONMatch{
			Name:       m.Format.Name,
			Pattern:    m.Format.PatternStr,
			Layout:     m.Format.Layout,
			Confidence: m.Confidence,
			MatchCount: m.MatchCount,
			SampleLine: m.SampleLine,
			Supported:  m.Format.Supported,
			Ambiguous:  m.Format.Ambiguous,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// writeStarterConfig generates a starter config file for the export.
func writeStarterConfig(w io.Writer, result *detector.DetectionResult, exportFile, configPath string, yearBase int) error {
	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	if !result.Supported() {
		return fmt.Errorf("cannot generate config: no supported header format detected")
	}

	content := generateStarterConfig(exportFile, result, yearBase)

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return nil
}

// generateStarterConfig creates a YAML config template.
func generateStarterConfig(exportFile string, result *detector.DetectionResult, yearBase int) string {
	absExport := exportFile
	if abs, err := filepath.Abs(exportFile); err == nil {
		absExport = abs
	}

	best := result.BestMatch()

	// Invalid headers in the sample make abort a poor default
	policy := parser.PolicyAbort
	if result.InvalidTimestamps > 0 || result.MonthFirst {
		policy = parser.PolicyDrop
	}

	return fmt.Sprintf(`# chatstat configuration
# Generated by: chatstat detect
# Export: %s
# Detected format: %s (%.0f%% confidence)

# Author given to lines with no "Name: " prefix (joins, encryption notices).
notification_author: %q

# Option that selects every record in the author list.
all_authors_label: %q

media_placeholder: %q
link_marker: %q
top_n: %d

# drop: skip headers that are not a real calendar time; abort: fail the parse.
timestamp_policy: %s

# anchored: the author must start the message; search: first "X: " anywhere.
author_match: %s

# Two-digit years YY map to year_base..year_base+99.
year_base: %d

# stopwords_file: /path/to/stopwords.txt
# emoji_file: /path/to/emoji.txt

log:
  level: %s
  pretty: false

server:
  addr: %q
  max_upload_bytes: %d
  shutdown_timeout: %s

# webhooks:
#   - name: ops
#     url: https://example.com/hooks/chatstat
#     token: ${CHATSTAT_WEBHOOK_TOKEN}
#     trigger: on_issues
`, absExport, best.Format.Name, best.Confidence*100,
		parser.DefaultNotificationAuthor,
		analyzer.DefaultAllAuthorsLabel,
		config.DefaultMediaPlaceholder,
		config.DefaultLinkMarker,
		analyzer.DefaultTopN,
		policy,
		parser.MatchAnchored,
		yearBase,
		config.DefaultLogLevel,
		config.DefaultServerAddr,
		config.DefaultMaxUploadBytes,
		time.Duration(config.DefaultShutdownTimeout))
}
