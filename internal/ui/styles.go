// Package ui holds terminal styling and rendering for bindery output.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Color palette: plain text for content, one accent for paths and ids,
// muted gray for secondary info. Status is conveyed by unicode symbols,
// not color.
var (
	// Accent style for file paths, entity ids, highlights.
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("#7DD3A0"))

	// Muted style for secondary info and hints.
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for emphasis and headers.
	Bold = lipgloss.NewStyle().Bold(true)
)

// Unicode symbols for status indicators.
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
)

// Successf formats a success line with a checkmark.
func Successf(format string, args ...interface{}) string {
	return SymbolSuccess + " " + fmt.Sprintf(format, args...)
}

// Errorf formats an error line with an X.
func Errorf(format string, args ...interface{}) string {
	return SymbolError + " " + fmt.Sprintf(format, args...)
}

// Warningf formats a warning line.
func Warningf(format string, args ...interface{}) string {
	return SymbolWarning + " " + fmt.Sprintf(format, args...)
}

// EntityRef renders an accent-styled "Type:id" reference.
func EntityRef(entityType, id string) string {
	return Accent.Render(entityType + ":" + id)
}

// FilePath renders an accent-styled file path.
func FilePath(path string) string {
	return Accent.Render(path)
}

// Hint renders muted hint text.
func Hint(msg string) string {
	return Muted.Render(msg)
}

// CountSummary renders "(N errors, M warnings)" with correct plurals.
func CountSummary(errors, warnings int) string {
	p := func(n int, word string) string {
		if n == 1 {
			return fmt.Sprintf("%d %s", n, word)
		}
		return fmt.Sprintf("%d %ss", n, word)
	}
	switch {
	case errors > 0 && warnings > 0:
		return fmt.Sprintf("(%s, %s)", p(errors, "error"), p(warnings, "warning"))
	case errors > 0:
		return "(" + p(errors, "error") + ")"
	default:
		return "(" + p(warnings, "warning") + ")"
	}
}
