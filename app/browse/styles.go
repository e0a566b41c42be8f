package browse

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("39")
	colorSecondary = lipgloss.Color("86")
	colorWarning   = lipgloss.Color("220")
	colorDim       = lipgloss.Color("241")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	nodeLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSecondary)

	gutterStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	activeGutterStyle = lipgloss.NewStyle().
				Foreground(colorWarning)

	highlightStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236"))

	textStyle = lipgloss.NewStyle()

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)
)
