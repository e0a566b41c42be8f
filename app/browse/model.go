package browse

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lexcodex/treejumper/framework/ast"
)

// Run opens the browser on an already parsed buffer.
func Run(ctx context.Context, model Model) error {
	if model.nav == nil {
		return fmt.Errorf("navigator is required")
	}
	program := tea.NewProgram(
		model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)
	_, err := program.Run()
	return err
}

// Model shows one source file with the construct under the cursor
// highlighted. The navigator drives every jump.
type Model struct {
	path     string
	language ast.Language
	lines    []string
	nav      *ast.Navigator

	source viewport.Model
	width  int
	height int
	ready  bool

	// pending collects digits typed before enter to seek to a line.
	pending string
	status  string
}

// New builds a browser model. source is split into display lines; nav
// must have been built from the same content.
func New(path string, lang ast.Language, source []byte, nav *ast.Navigator) Model {
	text := strings.ReplaceAll(string(source), "\t", "    ")
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	m := Model{
		path:     path,
		language: lang,
		lines:    lines,
		nav:      nav,
	}
	if nav != nil && nav.Len() == 0 {
		m.status = "no navigable constructs"
	}
	return m
}

// Current returns the node under the navigator cursor.
func (m Model) Current() (ast.Node, bool) {
	if m.nav == nil {
		return ast.Node{}, false
	}
	return m.nav.Current()
}

// Status is the last message shown in the status bar.
func (m Model) Status() string {
	return m.status
}

// Pending returns the line number typed so far.
func (m Model) Pending() string {
	return m.pending
}

// Init fulfills the Bubble Tea Model interface.
func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) refresh() Model {
	if !m.ready {
		return m
	}
	m.source.SetContent(m.renderSource())
	if node, ok := m.Current(); ok {
		start, _ := node.LineSpan()
		offset := start - m.source.Height/3
		if offset < 0 {
			offset = 0
		}
		m.source.SetYOffset(offset)
	}
	return m
}

func (m Model) renderSource() string {
	node, hasNode := m.Current()
	start, end := -1, -1
	if hasNode {
		start, end = node.LineSpan()
	}
	width := len(fmt.Sprintf("%d", len(m.lines)))
	var b strings.Builder
	for i, line := range m.lines {
		gutter := fmt.Sprintf("%*d ", width, i+1)
		if i >= start && i <= end {
			b.WriteString(activeGutterStyle.Render(gutter))
			b.WriteString(highlightStyle.Render(line))
		} else {
			b.WriteString(gutterStyle.Render(gutter))
			b.WriteString(textStyle.Render(line))
		}
		if i < len(m.lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
