package deckapp

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	defaultTextColor = "#000"
	headingSize      = 24
)

// Typography is the one text primitive of the deck. Size and line height
// are in points; the terminal cannot scale glyphs, so large sizes and heavy
// weights render bold instead.
type Typography struct {
	Size       int
	Color      string
	Weight     string
	LineHeight int
}

func (t Typography) Style() lipgloss.Style {
	style := lipgloss.NewStyle()

	color := strings.TrimSpace(t.Color)
	if color == "" {
		color = defaultTextColor
	}
	// Black is the default ink and maps to the terminal foreground.
	if color != defaultTextColor && color != "#000000" {
		style = style.Foreground(lipgloss.Color(color))
	}

	if t.bold() {
		style = style.Bold(true)
	}
	return style
}

func (t Typography) Render(text string) string {
	out := t.Style().Render(text)
	if t.LineHeight > 0 && t.Size > 0 && t.LineHeight > t.Size {
		out += "\n"
	}
	return out
}

func (t Typography) bold() bool {
	if t.Size >= headingSize {
		return true
	}
	weight := strings.ToLower(strings.TrimSpace(t.Weight))
	if weight == "bold" {
		return true
	}
	n, err := strconv.Atoi(weight)
	if err != nil {
		return false
	}
	return n >= 600
}
