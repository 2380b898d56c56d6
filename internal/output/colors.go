// Package output centralizes the terminal styling of the CLI: one
// color scheme for highlighted results, disabled wholesale when the
// user asks for plain output or stdout is not a terminal.
package output

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorScheme holds the styles for the distinct elements the CLI
// prints.
type ColorScheme struct {
	Section *color.Color
	Key     *color.Color
	Value   *color.Color
	Success *color.Color
	Failure *color.Color
	Warn    *color.Color
}

// DefaultColorScheme returns the standard styles.
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Section: color.New(color.FgCyan, color.Bold),
		Key:     color.New(color.FgBlue),
		Value:   color.New(color.FgWhite),
		Success: color.New(color.FgGreen, color.Bold),
		Failure: color.New(color.FgRed, color.Bold),
		Warn:    color.New(color.FgYellow),
	}
}

// NoColorScheme returns the same scheme with every style disabled, so
// callers never branch on color availability.
func NoColorScheme() *ColorScheme {
	s := DefaultColorScheme()
	s.Section.DisableColor()
	s.Key.DisableColor()
	s.Value.DisableColor()
	s.Success.DisableColor()
	s.Failure.DisableColor()
	s.Warn.DisableColor()
	return s
}

// SchemeFor picks the scheme for a run: colors only when they were not
// switched off and stdout is a terminal.
func SchemeFor(noColor bool) *ColorScheme {
	if noColor || !stdoutIsTerminal() {
		return NoColorScheme()
	}
	return DefaultColorScheme()
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
