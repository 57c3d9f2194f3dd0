package tui

import (
	"bytes"
	"context"
	"slices"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ccollicutt/chatstat/pkg/analyzer"
	"github.com/ccollicutt/chatstat/pkg/output"
	"github.com/ccollicutt/chatstat/pkg/parser"
)

// statsRenderedMsg is sent when an async analysis completes.
type statsRenderedMsg struct {
	author  string
	verbose bool
	content string
	err     error
}

// analyzeCmd returns a tea.Cmd that analyzes one author selection and
// renders it with the text formatter.
func analyzeCmd(ctx context.Context, table *parser.Table, opts []analyzer.AnalyzerOption, author string, verbose bool) tea.Cmd {
	return func() tea.Msg {
		msg := statsRenderedMsg{author: author, verbose: verbose}

		a, err := analyzer.NewAnalyzer(append(slices.Clone(opts), analyzer.WithAuthor(author))...)
		if err != nil {
			msg.err = err
			return msg
		}
		result, err := a.Analyze(ctx, table)
		if err != nil {
			msg.err = err
			return msg
		}

		var buf bytes.Buffer
		f := output.NewTextFormatter(output.FormatOptions{Verbose: verbose})
		if err := f.Format(ctx, output.NewReport(result, "", ""), &buf); err != nil {
			msg.err = err
			return msg
		}
		msg.content = buf.String()
		return msg
	}
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	return viewport.New(width, height)
}
