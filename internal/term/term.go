// Package term owns the console color palette and TTY detection.
//
// The palette lives in package variables read by logging (level tags) and
// display (banner). [Configure] fills them once at startup; with colors off
// every variable is "", so concatenating them is harmless.
package term

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/backmassage/texmtlx/internal/config"
)

// Palette entries. Red marks failures, Green successes, Yellow warnings,
// Blue info, Cyan debug, Magenta the banner. NC resets.
var (
	Red     string
	Green   string
	Yellow  string
	Blue    string
	Cyan    string
	Magenta string
	NC      string
)

// ansi pairs each palette variable with its bold bright SGR sequence.
var ansi = []struct {
	dst *string
	seq string
}{
	{&Red, "\033[1;91m"},
	{&Green, "\033[1;92m"},
	{&Yellow, "\033[1;93m"},
	{&Blue, "\033[1;94m"},
	{&Cyan, "\033[1;96m"},
	{&Magenta, "\033[1;95m"},
	{&NC, "\033[0m"},
}

// Configure decides whether stdout gets colors under mode and fills or
// clears the palette accordingly. It returns the decision.
func Configure(mode config.ColorMode) bool {
	on := wantColor(mode, IsTerminal(os.Stdout), os.Getenv)
	for _, c := range ansi {
		*c.dst = ""
		if on {
			*c.dst = c.seq
		}
	}
	return on
}

// Enabled reports whether the palette is filled.
func Enabled() bool { return NC != "" }

// wantColor applies the mode: always and never are absolute; auto needs a
// TTY, an empty NO_COLOR (https://no-color.org) and a TERM other than dumb.
func wantColor(mode config.ColorMode, tty bool, getenv func(string) string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if !tty || getenv("NO_COLOR") != "" {
		return false
	}
	return !strings.EqualFold(getenv("TERM"), "dumb")
}

// IsTerminal reports whether f is a TTY. Cygwin and MSYS pseudo terminals
// count.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
