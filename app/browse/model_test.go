package browse

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/treejumper/framework/ast"
)

const source = `class Greeter:
    def hello(self):
        return "hi"

def main():
    Greeter().hello()
`

func testModel(t *testing.T) Model {
	t.Helper()
	nav := ast.NewNavigator([]ast.Node{
		ast.MustNode("class_definition", "Greeter", ast.Span{StartRow: 0, EndRow: 2, EndCol: 19}),
		ast.MustNode("function_definition", "hello", ast.Span{StartRow: 1, StartCol: 4, EndRow: 2, EndCol: 19}),
		ast.MustNode("function_definition", "main", ast.Span{StartRow: 4, EndRow: 5, EndCol: 21}),
	})
	m := New("greeter.py", ast.LanguagePython, []byte(source), nav)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	return updated.(Model)
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func currentName(t *testing.T, m Model) string {
	t.Helper()
	node, ok := m.Current()
	require.True(t, ok)
	name, _ := node.Name()
	return name
}

func TestBrowseNextAndPrevious(t *testing.T) {
	m := testModel(t)
	require.Equal(t, "Greeter", currentName(t, m))

	m = press(t, m, "n")
	require.Equal(t, "hello", currentName(t, m))
	m = press(t, m, "tab")
	require.Equal(t, "main", currentName(t, m))

	m = press(t, m, "n")
	require.Equal(t, "main", currentName(t, m))
	require.Equal(t, "last construct", m.Status())

	m = press(t, m, "p", "p")
	require.Equal(t, "Greeter", currentName(t, m))
	require.Empty(t, m.Status())
	m = press(t, m, "p")
	require.Equal(t, "first construct", m.Status())
}

func TestBrowseFirstLast(t *testing.T) {
	m := press(t, testModel(t), "G")
	require.Equal(t, "main", currentName(t, m))
	m = press(t, m, "g")
	require.Equal(t, "Greeter", currentName(t, m))
}

func TestBrowseSeekTypedLine(t *testing.T) {
	m := press(t, testModel(t), "3")
	require.Equal(t, "3", m.Pending())
	m = press(t, m, "enter")
	require.Equal(t, "hello", currentName(t, m))
	require.Empty(t, m.Pending())

	m = press(t, m, "4", "enter")
	require.Equal(t, "main", currentName(t, m))

	m = press(t, m, "9", "9", "enter")
	require.Equal(t, "main", currentName(t, m))
	require.Contains(t, m.Status(), "line 99")

	m = press(t, m, "1", "esc")
	require.Empty(t, m.Pending())
}

func TestBrowseViewHighlightsCurrentNode(t *testing.T) {
	m := press(t, testModel(t), "G")
	view := m.View()
	require.Contains(t, view, "greeter.py (Python)")
	require.Contains(t, view, "function_definition main")
	require.Contains(t, view, "3/3")
	require.True(t, strings.Contains(view, "Greeter().hello()"))
}

func TestBrowseEmptyFile(t *testing.T) {
	m := New("empty.rs", ast.LanguageRust, nil, ast.NewNavigator(nil))
	require.Equal(t, "no navigable constructs", m.Status())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 5})
	m = updated.(Model)
	m = press(t, m, "n", "G", "1", "enter")
	_, ok := m.Current()
	require.False(t, ok)
	require.NotPanics(t, func() { _ = m.View() })
}

func TestBrowseQuit(t *testing.T) {
	_, cmd := testModel(t).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}
