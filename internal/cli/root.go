// Package cli provides the command-line interface for chatstat.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatstat/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	global := &commands.GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "chatstat",
		Short: "Statistics for exported chat transcripts",
		Long: `chatstat parses exported chat transcripts and reports who talks, when,
and about what.

It reports:
  - Messages, words, media, links and emoji per author or overall
  - Daily, monthly, hourly and weekday activity
  - Most active authors
  - Most common words (stopwords removed) and emoji

Exports must use bracketed 12-hour headers:
  [15/01/24, 9:05:00 PM] Alice: hello

Run 'chatstat detect <export-file>' if an export yields no messages.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&global.ConfigPath, "config", "c", "", "Config file (default: built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&global.LogLevel, "log-level", "", "Log level: trace, debug, info, warn, error (default: from config)")

	// Add subcommands
	rootCmd.AddCommand(commands.NewAnalyzeCommand(global))
	rootCmd.AddCommand(commands.NewRecordsCommand(global))
	rootCmd.AddCommand(commands.NewAuthorsCommand(global))
	rootCmd.AddCommand(commands.NewExploreCommand(global))
	rootCmd.AddCommand(commands.NewServeCommand(global))
	rootCmd.AddCommand(commands.NewDetectCommand(global))
	rootCmd.AddCommand(commands.NewDiagnoseCommand(global))
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
