package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatstat/pkg/analyzer"
	"github.com/ccollicutt/chatstat/pkg/config"
	"github.com/ccollicutt/chatstat/pkg/detector"
	"github.com/ccollicutt/chatstat/pkg/parser"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand(global *GlobalOptions) *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose [export-file]",
		Short: "Diagnose common configuration and export issues",
		Long: `Diagnose common configuration and export issues.

This command checks:
- Config file syntax and structure (with --config)
- Stopword and emoji files
- Export file existence and header format
- A dry-run parse: records, authors and dropped segments
- Webhook configuration

Example:
  chatstat diagnose chat.txt
  chatstat --config chatstat.yaml diagnose -v chat.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exportFile := ""
			if len(args) > 0 {
				exportFile = args[0]
			}
			return runDiagnose(cmd, global, exportFile, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(cmd *cobra.Command, global *GlobalOptions, exportFile string, opts *DiagnoseOptions) error {
	ctx := commandContext(cmd)
	w := cmd.OutOrStdout()
	results := []DiagnosticResult{}

	configPath := global.configPath()

	// 1. Config file, or defaults
	cfg := config.DefaultConfig()
	if configPath != "" {
		result := checkConfigExists(configPath)
		results = append(results, result)
		if result.Status == "error" {
			printDiagnostics(w, results, opts)
			return nil
		}

		var parsed *config.Config
		parsed, result = checkConfigParseable(ctx, configPath)
		results = append(results, result)
		if result.Status == "error" {
			printDiagnostics(w, results, opts)
			return nil
		}
		cfg = parsed
	} else if opts.Verbose {
		results = append(results, DiagnosticResult{
			Check:   "Config",
			Status:  "ok",
			Message: "No config file given; using defaults",
		})
	}
	initLogging(cmd, global, cfg, true)

	// 2. Lexicon files
	results = append(results, checkLexicon(cfg))

	// 3. Export file, header format and a dry-run parse
	if exportFile != "" {
		result := checkExportExists(exportFile)
		results = append(results, result)
		if result.Status != "error" {
			results = append(results, checkHeaderFormat(ctx, cfg, exportFile, opts)...)
			results = append(results, checkParse(ctx, cfg, exportFile, opts))
		}
	}

	// 4. Webhooks
	results = append(results, checkWebhooks(ctx, cfg, opts)...)

	printDiagnostics(w, results, opts)
	return nil
}

func checkConfigExists(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Config File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = fmt.Sprintf("Config file not found: %s", path)
		result.Suggests = []string{
			"Check the file path is correct",
			"Use 'chatstat detect --write-config chatstat.yaml <export-file>' to generate a starter config",
		}
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access config file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	return result
}

func checkConfigParseable(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config Syntax",
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to parse config: %v", err)
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		return nil, result
	}

	result.Status = "ok"
	result.Message = "Config file parsed successfully"
	result.Details = []string{
		fmt.Sprintf("Timestamp policy: %s", cfg.TimestampPolicy),
		fmt.Sprintf("Author match: %s", cfg.AuthorMatch),
		fmt.Sprintf("Year base: %d", cfg.YearBase),
		fmt.Sprintf("Webhooks: %d", len(cfg.Webhooks)),
	}
	return cfg, result
}

func checkLexicon(cfg *config.Config) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Lexicon",
	}

	lex, err := cfg.Lexicon()
	if err != nil {
		result.Status = "error"
		result.Message = err.Error()
		result.Suggests = []string{
			"Check stopwords_file and emoji_file in the config",
			"Unset them to use the built-in tables",
		}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("%d stopwords, %d emoji code points", lex.Stopwords.Len(), lex.Emoji.Len())
	if cfg.StopwordsFile != "" {
		result.Details = append(result.Details, fmt.Sprintf("Stopwords: %s", cfg.StopwordsFile))
	}
	if cfg.EmojiFile != "" {
		result.Details = append(result.Details, fmt.Sprintf("Emoji: %s", cfg.EmojiFile))
	}
	return result
}

func checkExportExists(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Export File",
	}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		result.Status = "error"
		result.Message = "File does not exist"
		result.Suggests = []string{"Check if the export file path is correct"}
	case err != nil:
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access file: %v", err)
		result.Suggests = []string{"Check file permissions"}
	case info.IsDir():
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		result.Suggests = []string{"Unzip the export and point at the .txt file inside"}
	case info.Size() == 0:
		result.Status = "warning"
		result.Message = "File is empty (0 bytes)"
	default:
		result.Status = "ok"
		result.Message = fmt.Sprintf("File exists (%d bytes)", info.Size())
	}
	return result
}

func checkHeaderFormat(ctx context.Context, cfg *config.Config, exportFile string, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	result := DiagnosticResult{
		Check: "Header Format",
	}

	d := detector.New(detector.WithYearBase(cfg.YearBase))
	det, err := d.DetectFromFile(ctx, exportFile)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot read file: %v", err)
		return append(results, result)
	}

	switch {
	case !det.HasMatch():
		result.Status = "error"
		result.Message = "No message headers found"
		result.Suggests = []string{
			"Lines should start like [15/01/24, 9:05:00 PM]",
			"Use 'chatstat detect " + exportFile + "' for details",
		}
	case !det.Supported():
		best := det.BestMatch()
		result.Status = "error"
		result.Message = fmt.Sprintf("Unsupported header format: %s", best.Format.Name)
		result.Details = []string{"Sample line:", truncate(best.SampleLine, 80)}
		result.Suggests = []string{"Re-export the chat with bracketed 12-hour timestamps"}
	default:
		best := det.BestMatch()
		result.Status = "ok"
		result.Message = fmt.Sprintf("%s (%d/%d sampled lines)", best.Format.Name, best.MatchCount, det.SampledLines)
		if opts.Verbose {
			result.Details = []string{"Sample match:", truncate(best.SampleLine, 80)}
		}
	}
	results = append(results, result)

	if det.AmbiguityNote != "" {
		results = append(results, DiagnosticResult{
			Check:   "Date Order",
			Status:  "warning",
			Message: det.AmbiguityNote,
		})
	}

	if det.PreambleLines > 0 {
		results = append(results, DiagnosticResult{
			Check:   "Preamble",
			Status:  "warning",
			Message: fmt.Sprintf("%d line(s) before the first header are ignored", det.PreambleLines),
		})
	}

	return results
}

func checkParse(ctx context.Context, cfg *config.Config, exportFile string, opts *DiagnoseOptions) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Parse",
	}

	table, err := parser.New(cfg.ParserOptions()).ParseFile(ctx, exportFile)
	if err != nil {
		result.Status = "error"
		result.Message = err.Error()
		var tsErr *parser.TimestampError
		if errors.As(err, &tsErr) {
			result.Suggests = []string{"Set timestamp_policy: drop to skip invalid headers"}
		}
		return result
	}

	a, err := analyzer.NewAnalyzer(analyzer.WithAllAuthorsLabel(cfg.AllAuthorsLabel))
	if err != nil {
		result.Status = "error"
		result.Message = err.Error()
		return result
	}
	authors := a.Authors(table)

	issues := table.Issues()
	result.Message = fmt.Sprintf("%d records, %d authors", table.Len(), len(authors)-1)
	switch {
	case table.Len() == 0:
		result.Status = "warning"
		result.Message = "No records parsed"
	case len(issues) > 0:
		result.Status = "warning"
		result.Message += fmt.Sprintf(", %d segment(s) dropped", len(issues))
		for i, issue := range issues {
			if i == 5 && !opts.Verbose {
				result.Details = append(result.Details, fmt.Sprintf("... and %d more", len(issues)-i))
				break
			}
			result.Details = append(result.Details, fmt.Sprintf("offset %d: %s (%s)", issue.Offset, issue.TimestampText, issue.Reason))
		}
	default:
		result.Status = "ok"
		if opts.Verbose {
			result.Details = authors[1:]
		}
	}
	return result
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintln(w, "=== chatstat Diagnostics ===")
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		// Status icon
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	// Summary
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Fprintln(w, "\nFix the errors above before running analysis.")
	} else if warnCount > 0 {
		fmt.Fprintln(w, "\nUsable, but check the warnings.")
	} else {
		fmt.Fprintln(w, "\nEverything looks good!")
	}
}

func checkWebhooks(ctx context.Context, cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Webhooks) == 0 {
		// Webhooks are optional, just note they're not configured
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Webhooks",
				Status:  "ok",
				Message: "No webhooks configured (optional)",
			})
		}
		return results
	}

	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		result := DiagnosticResult{
			Check: fmt.Sprintf("Webhook: %s", name),
		}

		issues := []string{}
		warnings := []string{}

		// Check URL
		if wh.URL == "" {
			issues = append(issues, "Missing url")
		} else {
			u, err := url.Parse(wh.URL)
			if err != nil {
				issues = append(issues, fmt.Sprintf("Invalid URL: %v", err))
			} else if u.Scheme != "http" && u.Scheme != "https" {
				issues = append(issues, fmt.Sprintf("URL scheme must be http or https, got %q", u.Scheme))
			} else if u.Host == "" {
				issues = append(issues, "URL must have a host")
			}
		}

		// Check if token looks like an unexpanded env var
		if strings.HasPrefix(wh.Token, "$") {
			warnings = append(warnings, fmt.Sprintf("Token appears to be an unresolved env var: %s", wh.Token))
		}

		if len(issues) > 0 {
			result.Status = "error"
			result.Message = fmt.Sprintf("%d configuration issue(s)", len(issues))
			result.Details = issues
		} else if len(warnings) > 0 {
			result.Status = "warning"
			result.Message = fmt.Sprintf("%d warning(s)", len(warnings))
			result.Details = warnings
		} else {
			result.Status = "ok"
			result.Message = fmt.Sprintf("Trigger: %s", wh.Trigger)
			if opts.Verbose {
				result.Details = []string{
					fmt.Sprintf("URL: %s", wh.URL),
					fmt.Sprintf("Timeout: %s", wh.Timeout),
				}
				if wh.Token != "" {
					result.Details = append(result.Details, "Token: configured")
				}
			}
		}

		results = append(results, result)
	}

	// Optionally test webhook connectivity
	if opts.Verbose {
		for _, wh := range cfg.Webhooks {
			if wh.URL == "" {
				continue
			}

			name := wh.Name
			if name == "" {
				name = wh.URL
			}

			result := checkWebhookConnectivity(ctx, wh)
			result.Check = fmt.Sprintf("Webhook Connectivity: %s", name)
			results = append(results, result)
		}
	}

	return results
}

func checkWebhookConnectivity(ctx context.Context, wh config.WebhookConfig) DiagnosticResult {
	result := DiagnosticResult{}

	// Just do a HEAD request to check if the endpoint is reachable
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, wh.URL, nil)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot create request: %v", err)
		return result
	}

	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check if the webhook URL is correct",
			"Verify network connectivity",
		}
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = "ok"
		result.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	} else {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Reachable but returned status %d", resp.StatusCode)
		result.Suggests = []string{
			"The endpoint may require POST method (will work during actual webhook send)",
			"Check authentication if using a token",
		}
	}

	return result
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
