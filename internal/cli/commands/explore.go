package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatstat/internal/tui"
	"github.com/ccollicutt/chatstat/pkg/analyzer"
	"github.com/ccollicutt/chatstat/pkg/output"
)

// ErrNotTerminal is returned when explore is run without a terminal.
var ErrNotTerminal = errors.New("explore needs an interactive terminal; use analyze instead")

// NewExploreCommand creates the explore command.
func NewExploreCommand(global *GlobalOptions) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "explore <export-file>",
		Short: "Browse per-author statistics interactively",
		Long: `Open a terminal UI listing the authors of a chat export next to the
selected author's statistics.

Keys:
  up/down     select an author
  type        filter the author list
  tab         toggle daily, hourly and weekday detail
  C-u/C-d     scroll statistics
  Enter       quit and print the selected author's report
  Esc         quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			if !isTerminal(cmd.OutOrStdout()) {
				return ErrNotTerminal
			}

			e, err := loadEnv(cmd, global)
			if err != nil {
				return err
			}

			table, err := e.parseExport(ctx, args[0])
			if err != nil {
				return err
			}

			opts := e.cfg.AnalyzerOptions(e.lex)
			if top >= 0 {
				opts = append(opts, analyzer.WithTopN(top))
			}

			author, err := tui.Run(ctx, table, opts...)
			if err != nil {
				return err
			}
			if author == "" {
				return nil
			}

			a, err := analyzer.NewAnalyzer(append(opts, analyzer.WithAuthor(author))...)
			if err != nil {
				return fmt.Errorf("creating analyzer: %w", err)
			}
			result, err := a.Analyze(ctx, table)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			report := output.NewReport(result, args[0], global.configPath())
			return output.NewTextFormatter(output.FormatOptions{}).Format(ctx, report, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&top, "top", -1, "Number of words and emoji to rank (default: top_n from config)")

	return cmd
}
