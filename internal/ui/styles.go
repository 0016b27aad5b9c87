package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#7AA2F7")
	colorAccent  = lipgloss.Color("#9ECE6A")
	colorText    = lipgloss.Color("#C0CAF5")
	colorTextDim = lipgloss.Color("#565F89")
	colorError   = lipgloss.Color("#F7768E")

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorTextDim).
			Padding(0, 1)
	sidebarFocusedStyle = sidebarStyle.BorderForeground(colorPrimary)

	headerStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	userLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	botLabelStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	textStyle       = lipgloss.NewStyle().Foreground(colorText)
	dimStyle        = lipgloss.NewStyle().Foreground(colorTextDim)
	errorStyle      = lipgloss.NewStyle().Foreground(colorError)
	selectedStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	cursorStyle     = lipgloss.NewStyle().Reverse(true)
	chartStyle      = lipgloss.NewStyle().Foreground(colorText).PaddingLeft(2)
	chipStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorTextDim).Padding(0, 1)
	chipActiveStyle = chipStyle.BorderForeground(colorAccent).Foreground(colorAccent)
	inputStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorTextDim)
	inputFocusStyle = inputStyle.BorderForeground(colorPrimary)
)
