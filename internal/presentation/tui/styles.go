package tui

import (
	"github.com/muesli/termenv"
)

// Status colors an informational status line for terminal output.
func Status(msg string) string {
	p := termenv.ColorProfile()
	return termenv.String(msg).Foreground(p.Color("#818cf8")).String()
}

// Success colors a confirmation line.
func Success(msg string) string {
	p := termenv.ColorProfile()
	return termenv.String(msg).Foreground(p.Color("#34d399")).String()
}

// ErrorLine colors an error line.
func ErrorLine(msg string) string {
	p := termenv.ColorProfile()
	return termenv.String(msg).Foreground(p.Color("#fb7185")).Bold().String()
}
