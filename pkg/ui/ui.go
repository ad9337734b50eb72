// Package ui holds the terminal styles used for status output.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.Color("42")
	colorWarning = lipgloss.Color("220")
	colorError   = lipgloss.Color("196")
	colorDim     = lipgloss.Color("241")
	colorPrimary = lipgloss.Color("39")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
)

func Success(s string) string { return successStyle.Render(s) }
func Warning(s string) string { return warningStyle.Render(s) }
func Error(s string) string   { return errorStyle.Render(s) }
func Dim(s string) string     { return dimStyle.Render(s) }
func Header(s string) string  { return headerStyle.Render(s) }

// Status renders "Enabled" or "Disabled".
func Status(enabled bool) string {
	if enabled {
		return successStyle.Render("Enabled")
	}
	return dimStyle.Render("Disabled")
}

// SiteRow renders one line of `list` output.
func SiteRow(name string, enabled bool) string {
	return fmt.Sprintf("%-32s %s", name, Status(enabled))
}
