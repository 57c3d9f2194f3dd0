package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ccollicutt/chatstat/internal/logging"
	"github.com/ccollicutt/chatstat/pkg/config"
	"github.com/ccollicutt/chatstat/pkg/lexicon"
	"github.com/ccollicutt/chatstat/pkg/output"
	"github.com/ccollicutt/chatstat/pkg/parser"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// GlobalOptions holds the flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	LogLevel   string
}

// env is what a command needs to parse and analyze an export.
type env struct {
	cfg *config.Config
	lex *lexicon.Lexicon
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadEnv loads the optional config file, initializes logging and loads the
// lexicon it points at.
func loadEnv(cmd *cobra.Command, global *GlobalOptions) (*env, error) {
	cfg, err := loadConfig(cmd, global, true)
	if err != nil {
		return nil, err
	}

	lex, err := cfg.Lexicon()
	if err != nil {
		return nil, err
	}

	l := logging.L()
	l.Debug().
		Int("stopwords", lex.Stopwords.Len()).
		Str(logging.FieldCommand, cmd.Name()).
		Msg("lexicon loaded")

	return &env{cfg: cfg, lex: lex}, nil
}

// loadConfig loads the config and initializes logging. Console logs are
// used when console is set and stderr is a terminal, or when the config
// asks for them.
func loadConfig(cmd *cobra.Command, global *GlobalOptions, console bool) (*config.Config, error) {
	if global == nil {
		global = &GlobalOptions{}
	}

	cfg, err := config.LoadOrDefault(commandContext(cmd), global.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	initLogging(cmd, global, cfg, console)
	return cfg, nil
}

// initLogging points the global logger at the command's stderr. The
// --log-level flag wins over the config.
func initLogging(cmd *cobra.Command, global *GlobalOptions, cfg *config.Config, console bool) {
	level := cfg.Log.Level
	if global != nil && global.LogLevel != "" {
		level = global.LogLevel
	}

	errOut := cmd.ErrOrStderr()
	logging.Init(logging.Config{
		Level:  level,
		Pretty: cfg.Log.Pretty || (console && isTerminal(errOut)),
		Out:    errOut,
	})
}

// parseExport parses path with the configured parser options.
func (e *env) parseExport(ctx context.Context, path string) (*parser.Table, error) {
	table, err := parser.New(e.cfg.ParserOptions()).ParseFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	l := logging.L()
	l.Debug().
		Str(logging.FieldSource, path).
		Int(logging.FieldSegments, table.Segments()).
		Int(logging.FieldRecords, table.Len()).
		Int(logging.FieldIssues, len(table.Issues())).
		Msg("export parsed")

	if table.Segments() == 0 {
		l.Warn().Str(logging.FieldSource, path).Msg("no message headers found; is this a chat export?")
	}

	return table, nil
}

func createFormatter(format string, opts output.FormatOptions) (output.Formatter, error) {
	switch format {
	case "text":
		return output.NewTextFormatter(opts), nil
	case "json":
		return output.NewJSONFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text or json)", format)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or 0 when w is not a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
