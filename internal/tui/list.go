package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// renderList renders the left panel: the filtered author list with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.visible) == 0 {
		return lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No authors")
	}

	var lines []string
	for i, author := range m.visible {
		if i < m.listOffset {
			continue
		}
		if len(lines) >= height {
			break
		}
		lines = append(lines, m.formatAuthorLine(author, width, i == m.cursor))
	}

	// Pad remaining lines
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// formatAuthorLine formats one entry as "[>] name  count", truncating the
// name by display width so emoji in names do not break the layout.
func (m model) formatAuthorLine(author string, width int, selected bool) string {
	count := fmt.Sprintf("%d", m.counts[author])
	nameMax := width - 2 - len(count) - 1
	if nameMax < 0 {
		nameMax = 0
	}
	name := author
	if runewidth.StringWidth(name) > nameMax {
		name = runewidth.Truncate(name, nameMax, "...")
	}
	name = runewidth.FillRight(name, nameMax)

	switch {
	case selected:
		name = styleListSelected.Render(name)
	case author == m.allLabel:
		name = styleListAll.Render(name)
	default:
		name = styleListNormal.Render(name)
	}

	prefix := "  "
	if selected {
		prefix = styleListSelected.Render("> ")
	}
	return prefix + name + " " + styleListCount.Render(count)
}

// applyFilter recomputes the visible authors for the current filter text.
// The all-authors option is always kept.
func (m *model) applyFilter() {
	needle := strings.ToLower(strings.TrimSpace(m.filter))
	visible := make([]string, 0, len(m.authors))
	for _, a := range m.authors {
		if needle == "" || a == m.allLabel || strings.Contains(strings.ToLower(a), needle) {
			visible = append(visible, a)
		}
	}
	m.visible = visible
	m.cursor = 0
	m.listOffset = 0
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	if listHeight < 1 {
		listHeight = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+listHeight {
		m.listOffset = m.cursor - listHeight + 1
	}
}
