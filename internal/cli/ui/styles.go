// Package ui holds the lipgloss styles and rendering helpers shared by the
// CLI commands.
package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Styles defines all lipgloss styles used in the CLI.
var Styles = struct {
	Bold      lipgloss.Style
	Title     lipgloss.Style
	Dim       lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Prompt    lipgloss.Style
	Assistant lipgloss.Style
}{
	Bold:      lipgloss.NewStyle().Bold(true),
	Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
	Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
	Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	Prompt:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
	Assistant: lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
}

// PrintError prints a styled error line to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintln(os.Stderr, Styles.Error.Render("✗ "+fmt.Sprintf(format, args...)))
}

// PrintSuccess prints a styled confirmation line.
func PrintSuccess(format string, args ...any) {
	fmt.Println(Styles.Success.Render("✓ " + fmt.Sprintf(format, args...)))
}

// PrintInfo prints a dimmed informational line.
func PrintInfo(format string, args ...any) {
	fmt.Println(Styles.Dim.Render(fmt.Sprintf(format, args...)))
}
