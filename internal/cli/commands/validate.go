package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatstat/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a chatstat configuration file without parsing an export.

Checks:
  - YAML syntax
  - Timestamp policy, author match mode and year base
  - Log level and server settings
  - Webhook URLs and triggers
  - Stopword and emoji files load`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := commandContext(cmd)
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	// Load and validate config
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	lex, err := cfg.Lexicon()
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// Report what we found
	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Notification author: %s\n", cfg.NotificationAuthor)
	fmt.Fprintf(w, "  All-authors label:   %s\n", cfg.AllAuthorsLabel)
	fmt.Fprintf(w, "  Timestamp policy:    %s\n", cfg.TimestampPolicy)
	fmt.Fprintf(w, "  Author match:        %s\n", cfg.AuthorMatch)
	fmt.Fprintf(w, "  Years:               %d-%d\n", cfg.YearBase, cfg.YearBase+99)
	fmt.Fprintf(w, "  Top N:               %d\n", cfg.TopN)
	fmt.Fprintf(w, "  Stopwords:           %d\n", lex.Stopwords.Len())
	fmt.Fprintf(w, "  Emoji code points:   %d\n", lex.Emoji.Len())
	fmt.Fprintf(w, "  Server address:      %s\n", cfg.Server.Addr)

	if len(cfg.Webhooks) > 0 {
		fmt.Fprintf(w, "\nWebhooks:\n")
		for i, wh := range cfg.Webhooks {
			name := wh.Name
			if name == "" {
				name = wh.URL
			}
			fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, wh.Trigger, name)
		}
	}

	return nil
}
