package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatstat/pkg/analyzer"
	"github.com/ccollicutt/chatstat/pkg/output"
)

// NewAuthorsCommand creates the authors command.
func NewAuthorsCommand(global *GlobalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "authors <export-file>",
		Short: "List the authors found in a chat export",
		Long: `List the selectable authors of a chat export, sorted by name.

The all-authors option comes first. System notifications are never listed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			formatter, err := createFormatter(format, output.FormatOptions{})
			if err != nil {
				return err
			}

			e, err := loadEnv(cmd, global)
			if err != nil {
				return err
			}

			table, err := e.parseExport(ctx, args[0])
			if err != nil {
				return err
			}

			a, err := analyzer.NewAnalyzer(e.cfg.AnalyzerOptions(e.lex)...)
			if err != nil {
				return fmt.Errorf("creating analyzer: %w", err)
			}

			return formatter.FormatAuthors(ctx, a.Authors(table), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "text", "Output format (text|json)")

	return cmd
}
