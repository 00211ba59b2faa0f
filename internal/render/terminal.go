package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// DefaultWidth is the wrap width used when the terminal width is unknown
const DefaultWidth = 80

// Terminal renders markdown for a terminal in the given style ("dark", "light" or "auto").
// On renderer errors the raw text is returned.
func Terminal(text, style string, width int) string {
	r, err := NewTerminalRenderer(style, width)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// NewTerminalRenderer builds a glamour renderer for repeated use
func NewTerminalRenderer(style string, width int) (*glamour.TermRenderer, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	styleOpt := glamour.WithAutoStyle()
	switch style {
	case "dark", "light", "notty", "ascii":
		styleOpt = glamour.WithStandardStyle(style)
	}
	return glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
}
