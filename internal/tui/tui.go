// Package tui implements the interactive explorer: an author list on the
// left and the selected author's statistics on the right.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ccollicutt/chatstat/pkg/analyzer"
	"github.com/ccollicutt/chatstat/pkg/parser"
)

type model struct {
	ctx      context.Context
	table    *parser.Table
	opts     []analyzer.AnalyzerOption
	allLabel string

	authors []string // every option, all-authors label first
	visible []string // authors matching the filter
	counts  map[string]int
	filter  string

	cursor      int
	listOffset  int
	filterInput textinput.Model
	stats       viewport.Model
	content     string
	statsKey    string // "author:verbose" currently shown
	verbose     bool
	width       int
	height      int
	ready       bool
	quitting    bool
	selected    string
}

func newModel(ctx context.Context, table *parser.Table, opts []analyzer.AnalyzerOption) (model, error) {
	a, err := analyzer.NewAnalyzer(opts...)
	if err != nil {
		return model{}, err
	}

	ti := textinput.New()
	ti.Placeholder = "Filter authors..."
	ti.Focus()
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.TextStyle = styleInput
	ti.CharLimit = 128

	authors := a.Authors(table)
	counts := make(map[string]int, len(authors))
	counts[a.AllAuthorsLabel()] = table.Len()
	for i := 0; i < table.Len(); i++ {
		rec := table.At(i)
		if rec.Author != table.Sentinel() {
			counts[rec.Author]++
		}
	}

	m := model{
		ctx:         ctx,
		table:       table,
		opts:        opts,
		allLabel:    a.AllAuthorsLabel(),
		authors:     authors,
		counts:      counts,
		filterInput: ti,
		stats:       newViewport(0, 0),
	}
	m.applyFilter()
	return m, nil
}

// Run starts the explorer and blocks until it exits. It returns the author
// chosen with Enter, or "" if the user quit.
func Run(ctx context.Context, table *parser.Table, opts ...analyzer.AnalyzerOption) (string, error) {
	m, err := newModel(ctx, table, opts)
	if err != nil {
		return "", fmt.Errorf("tui: %w", err)
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("tui: %w", err)
	}

	return finalModel.(model).selected, nil
}

// Init triggers the first analysis.
func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadCurrentStats())
}

// Update handles messages.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.stats = newViewport(m.statsWidth(), m.panelHeight())
		m.stats.SetContent(m.content)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Enter):
			if author, ok := m.current(); ok {
				m.selected = author
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentStats())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.visible)-1 {
				m.cursor++
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentStats())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.Verbose):
			m.verbose = !m.verbose
			return m, m.loadCurrentStats()

		case key.Matches(msg, keys.StatsUp):
			m.stats.LineUp(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.StatsDn):
			m.stats.LineDown(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PageUp):
			m.stats.LineUp(m.panelHeight())
			return m, nil

		case key.Matches(msg, keys.PageDown):
			m.stats.LineDown(m.panelHeight())
			return m, nil
		}

		// Pass remaining keys to the filter input
		var tiCmd tea.Cmd
		m.filterInput, tiCmd = m.filterInput.Update(msg)
		cmds = append(cmds, tiCmd)

		if v := m.filterInput.Value(); v != m.filter {
			m.filter = v
			m.applyFilter()
			cmds = append(cmds, m.loadCurrentStats())
		}
		return m, tea.Batch(cmds...)

	case statsRenderedMsg:
		// Drop results for a selection the user already moved away from
		author, ok := m.current()
		if !ok || author != msg.author || m.verbose != msg.verbose {
			return m, nil
		}
		if msg.err != nil {
			m.content = "Error: " + msg.err.Error()
		} else {
			m.content = msg.content
		}
		m.stats.SetContent(m.content)
		m.stats.GotoTop()
		m.statsKey = statsKey(msg.author, msg.verbose)
		return m, nil
	}

	return m, tea.Batch(cmds...)
}

// View renders the full TUI.
func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	listW := m.listWidth()
	statsW := m.statsWidth()
	panelH := m.panelHeight()

	inputRow := m.filterInput.View()

	listPanel := stylePanelBorder.
		Width(listW).
		Height(panelH).
		Render(m.renderList(listW, panelH))

	m.stats.Width = statsW
	m.stats.Height = panelH
	statsPanel := styleActiveBorder.
		Width(statsW).
		Height(panelH).
		Render(m.stats.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, statsPanel)

	return lipgloss.JoinVertical(lipgloss.Left, inputRow, panels, m.statusBar())
}

// helper methods

func (m model) current() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return "", false
	}
	return m.visible[m.cursor], true
}

func (m model) loadCurrentStats() tea.Cmd {
	author, ok := m.current()
	if !ok {
		return nil
	}
	if statsKey(author, m.verbose) == m.statsKey {
		return nil
	}
	return analyzeCmd(m.ctx, m.table, m.opts, author, m.verbose)
}

func statsKey(author string, verbose bool) string {
	return fmt.Sprintf("%s:%t", author, verbose)
}

func (m model) listWidth() int {
	if m.width <= 0 {
		return 30
	}
	// 30% for the list, minus border padding
	w := m.width*30/100 - 4
	if w < 16 {
		w = 16
	}
	return w
}

func (m model) statsWidth() int {
	if m.width <= 0 {
		return 70
	}
	// 70% for stats, minus border padding
	w := m.width*70/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	// Subtract input row (1) + status bar (1) + borders (4)
	h := m.height - 6
	if h < 5 {
		h = 5
	}
	return h
}

func (m model) statusBar() string {
	parts := []string{
		fmt.Sprintf("%d of %d authors", len(m.visible), len(m.authors)-1),
		"up/dn select",
		"tab detail",
		"C-u/C-d scroll",
		"Enter print report",
		"Esc quit",
	}
	return styleStatusBar.Render(strings.Join(parts, " | "))
}
