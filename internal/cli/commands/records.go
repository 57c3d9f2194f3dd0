package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatstat/pkg/analyzer"
	"github.com/ccollicutt/chatstat/pkg/output"
	"github.com/ccollicutt/chatstat/pkg/parser"
)

// RecordsOptions holds command-line options for the records command.
type RecordsOptions struct {
	Output string
	Author string
	Kind   string
	Width  int
}

// NewRecordsCommand creates the records command.
func NewRecordsCommand(global *GlobalOptions) *cobra.Command {
	opts := &RecordsOptions{}

	cmd := &cobra.Command{
		Use:   "records <export-file>",
		Short: "Print the parsed record table",
		Long: `Parse a chat export and print one record per message: timestamp, author,
kind (text, media, link, system) and message text.

Multi-line messages are joined with " / " in text output. Text output is
truncated to the terminal width unless --width is given (0 disables).

Example:
  chatstat records chat.txt
  chatstat records --author Alice --kind media chat.txt
  chatstat records -o json chat.txt > records.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecords(cmd, args, global, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVarP(&opts.Author, "author", "a", "", "Only records from this author")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "Only records of this kind (text|media|link|system)")
	cmd.Flags().IntVarP(&opts.Width, "width", "w", -1, "Truncate messages to this width (default: terminal width)")

	return cmd
}

func runRecords(cmd *cobra.Command, args []string, global *GlobalOptions, opts *RecordsOptions) error {
	exportPath := args[0]
	ctx := commandContext(cmd)

	kind, err := parseKind(opts.Kind)
	if err != nil {
		return err
	}

	width := opts.Width
	if width < 0 {
		width = terminalWidth(cmd.OutOrStdout())
	}

	formatter, err := createFormatter(opts.Output, output.FormatOptions{Width: width})
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

	a, err := analyzer.NewAnalyzer(e.cfg.AnalyzerOptions(e.lex)...)
	if err != nil {
		return fmt.Errorf("creating analyzer: %w", err)
	}

	records := a.Select(table, opts.Author).Records()
	if kind != "" {
		filtered := make([]parser.Record, 0, len(records))
		for _, r := range records {
			if r.Kind == kind {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	if err := formatter.FormatRecords(ctx, records, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	return nil
}

func parseKind(s string) (parser.Kind, error) {
	switch k := parser.Kind(s); k {
	case "", parser.KindText, parser.KindMedia, parser.KindLink, parser.KindSystem:
		return k, nil
	default:
		return "", fmt.Errorf("unknown kind %q (use text, media, link or system)", s)
	}
}
