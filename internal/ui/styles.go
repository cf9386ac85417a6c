package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	labelStyle = lipgloss.NewStyle().Faint(true)
)

// RenderTitle styles a heading.
func RenderTitle(s string) string { return titleStyle.Render(s) }

// RenderNote styles an informational line.
func RenderNote(s string) string { return noteStyle.Render(s) }

// RenderOK styles a success line.
func RenderOK(s string) string { return okStyle.Render(s) }

// RenderWarn styles a warning line.
func RenderWarn(s string) string { return warnStyle.Render(s) }

// RenderLabel styles a field label in tables and summaries.
func RenderLabel(s string) string { return labelStyle.Render(s) }
