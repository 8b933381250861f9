package tui

import "github.com/charmbracelet/lipgloss"

const (
	tipsWidth    = 28
	headerHeight = 1
	footerHeight = 1
)

var (
	background = lipgloss.Color("#121212")
	surface    = lipgloss.Color("#1e1e1e")
	// White at 60% opacity over the background.
	dimWhite = lipgloss.Color("#a0a0a0")
	accent   = lipgloss.Color("39")
)

var (
	appStyle = lipgloss.NewStyle().
			Background(background)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	textStyle = lipgloss.NewStyle().
			Foreground(dimWhite)

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff"))

	tipsPaneStyle = lipgloss.NewStyle().
			Width(tipsWidth).
			MarginRight(1)

	idStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	tipLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	cardStyle = lipgloss.NewStyle().
			Background(surface).
			Padding(0, 1).
			MarginBottom(1)
)
