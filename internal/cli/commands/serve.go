package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/chatstat/internal/logging"
	"github.com/ccollicutt/chatstat/pkg/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand(global *GlobalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyzer over HTTP",
		Long: `Start an HTTP server that analyzes uploaded chat exports.

Endpoints:
  GET  /health
  POST /api/v1/analyze?author=&top=   export as multipart field "file" or raw body
  POST /api/v1/authors
  POST /api/v1/detect

Logs are JSON on stderr. The server shuts down gracefully on SIGINT or SIGTERM.

Example:
  chatstat serve --addr :8080
  curl -F file=@chat.txt localhost:8080/api/v1/analyze?author=Alice`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, global, false)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			lex, err := cfg.Lexicon()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(cfg, lex, logging.L()).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr from config)")

	return cmd
}
