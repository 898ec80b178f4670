package styles

import "github.com/charmbracelet/lipgloss"

var (
	INFO_MESSAGE    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Render
	SUCCESS_MESSAGE = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true).Render
	WARNING_MESSAGE = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render
	ERROR_MESSAGE   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true).Render
)
