// Package colors provides terminal color support for lineage output.
//
// Colors are enabled only when stdout is a terminal, honouring NO_COLOR and
// FORCE_COLOR. The color.ui setting can switch them off with SetColorEnabled.
package colors

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ANSI color codes
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorGray     = "\033[90m"
	BrightRed     = "\033[91m"
	BrightGreen   = "\033[92m"
	BrightYellow  = "\033[93m"
	BrightBlue    = "\033[94m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
)

var colorEnabled = shouldUseColor(os.Stdout.Fd())

func shouldUseColor(fd uintptr) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	if strings.ToLower(os.Getenv("TERM")) == "dumb" {
		return false
	}
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// SetColorEnabled allows manual control of color output
func SetColorEnabled(enabled bool) {
	colorEnabled = enabled
}

// IsColorEnabled returns whether colors are currently enabled
func IsColorEnabled() bool {
	return colorEnabled
}

func colorize(text, color string) string {
	if !colorEnabled {
		return text
	}
	return color + text + ColorReset
}

func Red(text string) string     { return colorize(text, BrightRed) }
func Green(text string) string   { return colorize(text, BrightGreen) }
func Blue(text string) string    { return colorize(text, BrightBlue) }
func Yellow(text string) string  { return colorize(text, BrightYellow) }
func Cyan(text string) string    { return colorize(text, BrightCyan) }
func Magenta(text string) string { return colorize(text, BrightMagenta) }
func Gray(text string) string    { return colorize(text, ColorGray) }
func Bold(text string) string    { return colorize(text, ColorBold) }
func Dim(text string) string     { return colorize(text, ColorDim) }

func ErrorText(text string) string   { return Red(text) }
func SuccessText(text string) string { return Green(text) }
func InfoText(text string) string    { return Cyan(text) }
func WarningText(text string) string { return Yellow(text) }

// CommitID renders a commit identifier the way log headers show it.
func CommitID(id string) string {
	return colorize(id, ColorBold+BrightYellow)
}

// Decorations renders the tips pointing at a commit, e.g. "(HEAD -> main, topic)".
// head names the current tip and is listed first.
func Decorations(head string, names []string) string {
	if head == "" && len(names) == 0 {
		return ""
	}
	parts := make([]string, 0, len(names)+1)
	if head != "" {
		parts = append(parts, colorize("HEAD -> ", BrightCyan)+colorize(head, ColorBold+BrightGreen))
	}
	for _, n := range names {
		if n == head {
			continue
		}
		parts = append(parts, Green(n))
	}
	return Yellow("(") + strings.Join(parts, Yellow(", ")) + Yellow(")")
}
