// Package ui prints user-facing messages for the management commands. The
// indirection path never uses it except to report a fatal error.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

var writer io.Writer = os.Stderr

// SetWriter overrides the output writer. nil restores stderr.
func SetWriter(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	writer = w
}

var color = detectColor(os.Stderr)

func detectColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetColorEnabled overrides color detection (for testing).
func SetColorEnabled(enabled bool) {
	color = enabled
}

func paint(code, s string) string {
	if !color {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

// Bold returns s in bold.
func Bold(s string) string { return paint("1", s) }

// OKTag returns a green check mark.
func OKTag() string { return paint("32", "✓") }

// Warnf prints a formatted warning.
func Warnf(format string, args ...any) {
	fmt.Fprintf(writer, "%s %s\n", paint("33", "Warning:"), fmt.Sprintf(format, args...))
}

// Errorf prints a formatted error.
func Errorf(format string, args ...any) {
	fmt.Fprintf(writer, "%s %s\n", paint("31", "Error:"), fmt.Sprintf(format, args...))
}

// Infof prints a formatted message with no prefix.
func Infof(format string, args ...any) {
	fmt.Fprintf(writer, format+"\n", args...)
}
