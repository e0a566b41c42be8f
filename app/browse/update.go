package browse

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lexcodex/treejumper/framework/ast"
)

const (
	headerHeight    = 1
	statusBarHeight = 1
)

// Update applies incoming Bubble Tea messages to the Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	sourceHeight := max(1, msg.Height-headerHeight-statusBarHeight)
	if !m.ready {
		m.source = viewport.New(msg.Width, sourceHeight)
		m.ready = true
	} else {
		m.source.Width = msg.Width
		m.source.Height = sourceHeight
	}
	return m.refresh(), nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc":
		m.pending = ""
		m.status = ""
		return m, nil
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.pending += msg.String()
		m.status = "line " + m.pending
		return m, nil
	case "backspace":
		if m.pending != "" {
			m.pending = m.pending[:len(m.pending)-1]
		}
		return m, nil
	case "enter", ":":
		return m.seekPending()
	case "n", "tab", "l":
		return m.move(m.nav.Next, "last construct")
	case "p", "shift+tab", "h":
		return m.move(m.nav.Previous, "first construct")
	case "g", "home":
		return m.move(m.nav.First, "no constructs")
	case "G", "end":
		return m.move(m.nav.Last, "no constructs")
	case "up", "down", "k", "j", "pgup", "pgdown":
		if !m.ready {
			return m, nil
		}
		var cmd tea.Cmd
		m.source, cmd = m.source.Update(msg)
		return m, cmd
	}
	return m, nil
}

// move runs a navigator step and reports absence in the status bar. The
// cursor is untouched when the step finds nothing.
func (m Model) move(step func() (ast.Node, bool), absent string) (tea.Model, tea.Cmd) {
	m.pending = ""
	if m.nav == nil {
		return m, nil
	}
	if _, ok := step(); !ok {
		m.status = absent
		return m, nil
	}
	m.status = ""
	return m.refresh(), nil
}

func (m Model) seekPending() (tea.Model, tea.Cmd) {
	if m.pending == "" || m.nav == nil {
		return m, nil
	}
	line, err := strconv.Atoi(m.pending)
	m.pending = ""
	if err != nil || line < 1 {
		m.status = "invalid line"
		return m, nil
	}
	if _, ok := m.nav.Seek(line - 1); !ok {
		m.status = fmt.Sprintf("nothing at or after line %d", line)
		return m, nil
	}
	m.status = ""
	return m.refresh(), nil
}
