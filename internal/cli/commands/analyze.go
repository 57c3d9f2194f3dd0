package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatstat/internal/logging"
	"github.com/ccollicutt/chatstat/pkg/analyzer"
	"github.com/ccollicutt/chatstat/pkg/config"
	"github.com/ccollicutt/chatstat/pkg/output"
	"github.com/ccollicutt/chatstat/pkg/webhook"
)

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	Output  string
	Author  string
	Top     int
	Verbose bool
	Quiet   bool
	Strict  bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(global *GlobalOptions) *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <export-file>",
		Short: "Compute statistics for a chat export",
		Long: `Parse a chat export and report statistics for one author or the whole chat.

Reports:
  - Message, word, media, link and emoji totals
  - Daily, monthly, hourly and weekday activity
  - Most active authors
  - Most common words (stopwords removed) and emoji

Exit codes:
  0 - Analysis completed
  1 - Segments were dropped for invalid timestamps (only with --strict)
  2 - Configuration or runtime error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, global, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVarP(&opts.Author, "author", "a", "", "Analyze one author only (default: all authors)")
	cmd.Flags().IntVar(&opts.Top, "top", -1, "Number of words and emoji to rank (default: top_n from config)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Include daily, hourly and weekday breakdowns")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Exit 1 when segments are dropped for invalid timestamps")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_issues", "When to fire webhook (on_issues|always|never)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, global *GlobalOptions, opts *AnalyzeOptions) error {
	exportPath := args[0]
	ctx := commandContext(cmd)

	// Fail on a bad --output before doing any work
	formatter, err := createFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	e, err := loadEnv(cmd, global)
	if err != nil {
		return err
	}

	table, err := e.parseExport(ctx, exportPath)
	if err != nil {
		return err
	}

	analyzerOpts := e.cfg.AnalyzerOptions(e.lex)
	analyzerOpts = append(analyzerOpts, analyzer.WithAuthor(opts.Author))
	if opts.Top >= 0 {
		analyzerOpts = append(analyzerOpts, analyzer.WithTopN(opts.Top))
	}

	a, err := analyzer.NewAnalyzer(analyzerOpts...)
	if err != nil {
		return fmt.Errorf("creating analyzer: %w", err)
	}

	if opts.Author != "" && opts.Author != a.AllAuthorsLabel() && table.Filter(opts.Author).Len() == 0 {
		l := logging.L()
		l.Warn().Str(logging.FieldAuthor, opts.Author).Msg("author has no messages in this export")
	}

	// Run analysis
	result, err := a.Analyze(ctx, table)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	report := output.NewReport(result, exportPath, global.configPath())

	// Output report
	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	// Send webhooks (errors logged but don't fail analysis)
	sendWebhooks(ctx, e.cfg, opts, report)

	// Set exit code based on results
	if opts.Strict && report.HasIssues() {
		ExitCode = 1
	}

	return nil
}

func (g *GlobalOptions) configPath() string {
	if g == nil {
		return ""
	}
	return g.ConfigPath
}

// sendWebhooks sends the report to all configured webhooks.
// Errors are logged but don't fail the analysis.
func sendWebhooks(ctx context.Context, cfg *config.Config, opts *AnalyzeOptions, report *output.Report) {
	// Collect webhooks from config and CLI
	webhooks := collectWebhooks(cfg, opts)

	if len(webhooks) == 0 {
		return
	}

	client := webhook.NewClient()
	l := logging.L()

	for _, wh := range webhooks {
		// Check trigger condition
		if !shouldFireWebhook(wh.Trigger, report.HasIssues()) {
			continue
		}

		// Send webhook
		resp := client.Send(ctx, report, webhook.SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})

		// Log result
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		if resp.Success() {
			l.Info().
				Str(logging.FieldWebhook, name).
				Int(logging.FieldStatus, resp.StatusCode).
				Dur(logging.FieldDuration, resp.Duration).
				Msg("webhook sent")
		} else {
			l.Error().
				Err(resp.Error).
				Str(logging.FieldWebhook, name).
				Msg("webhook failed")
		}
	}
}

// collectWebhooks merges config file webhooks with CLI webhook.
func collectWebhooks(cfg *config.Config, opts *AnalyzeOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)

	// Add config file webhooks
	webhooks = append(webhooks, cfg.Webhooks...)

	// Add CLI webhook if specified
	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnIssues
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}

// shouldFireWebhook determines if a webhook should fire based on trigger and issues.
func shouldFireWebhook(trigger config.WebhookTrigger, hasIssues bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	case config.WebhookTriggerOnIssues:
		return hasIssues
	default:
		// Default to on_issues
		return hasIssues
	}
}
