package browse

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const helpText = "n/p next/prev  g/G first/last  <line>enter seek  j/k scroll  q quit"

// View renders the header, the source pane and the status bar.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.source.View(),
		m.statusView(),
	)
}

func (m Model) headerView() string {
	title := headerStyle.Render(fmt.Sprintf("%s (%s)", filepath.Base(m.path), m.language.DisplayName()))
	node, ok := m.Current()
	if !ok {
		return title
	}
	start, end := node.LineSpan()
	label := nodeLabelStyle.Render(node.Label())
	position := dimStyle.Render(fmt.Sprintf("%d/%d  lines %d-%d", m.nav.Index()+1, m.nav.Len(), start+1, end+1))
	return title + "  " + label + "  " + position
}

func (m Model) statusView() string {
	left := m.status
	if left == "" {
		left = helpText
	}
	right := fmt.Sprintf("%3.f%%", m.source.ScrollPercent()*100)
	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 0 {
		padding = 0
	}
	return statusStyle.Render(left + strings.Repeat(" ", padding) + right)
}
