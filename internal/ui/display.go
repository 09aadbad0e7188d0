package ui

import (
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
)

// DefaultTermWidth is the fallback terminal width when detection fails.
const DefaultTermWidth = 100

// TermWidth returns the current terminal width, or the fallback when
// stdout is not a terminal.
func TermWidth() int {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) {
		return DefaultTermWidth
	}
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		return w
	}
	return DefaultTermWidth
}

// IsTTY reports whether stdout is attached to a terminal.
func IsTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}
