package deckapp

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/ivankudzin/swipedeck/internal/services/card"
	"github.com/ivankudzin/swipedeck/internal/services/deck"
)

const (
	minCardWidth  = 20
	maxCardWidth  = 48
	minCardHeight = 7
	maxCardHeight = 16
	// Terminal cells are roughly twice as tall as they are wide.
	cellAspect = 2.0
	// The backdrop hides the cards underneath until it has faded halfway.
	backdropFade = 0.5
)

type theme struct {
	card      lipgloss.Style
	name      Typography
	meta      lipgloss.Style
	like      lipgloss.Style
	nope      lipgloss.Style
	status    lipgloss.Style
	errorLine lipgloss.Style
	empty     Typography
	hint      Typography
}

func defaultTheme() theme {
	return theme{
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#d6dae0")).
			Padding(1, 2),
		name:      Typography{Size: 24, Weight: "bold"},
		meta:      lipgloss.NewStyle().Faint(true),
		like:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A")),
		nope:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e53935")),
		status:    lipgloss.NewStyle().Faint(true),
		errorLine: lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")),
		empty:     Typography{Size: 24, Weight: "600", LineHeight: 32},
		hint:      Typography{Size: 14, Color: "#888888"},
	}
}

func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	state := m.s.controller.State()
	bodyHeight := m.height - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	var body string
	switch {
	case state.Loaded() == 0 && m.s.fetching:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading profiles")
	case state.Exhausted():
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center,
			m.theme.empty.Render("Try again later")+m.theme.hint.Render("No more profiles right now"))
	default:
		body = strings.Join(m.renderDeck(state, bodyHeight), "\n")
	}

	return body + "\n" + m.statusLine(state)
}

func (m Model) renderDeck(state deck.State, height int) []string {
	canvas := make([]string, height)
	cardW, cardH := m.cardSize(height)
	baseX := (m.width - cardW) / 2
	baseY := (height - cardH) / 2

	view := state.View()
	top, hasTop := view.Top()
	backdrop := 1.0
	if hasTop {
		backdrop = m.s.cards[top.Slot].Opacity()
	}

	// Only the top card and the one right under it can ever be seen.
	visible := view.Cards
	if len(visible) > 2 {
		visible = visible[len(visible)-2:]
	}

	for _, sv := range visible {
		c := m.s.cards[sv.Slot]
		user, ok := c.User()
		if !ok {
			continue
		}

		faint := !sv.IsTop && backdrop > backdropFade
		lines := m.renderCard(user.FirstName, user.Image, user.ID, c, cardW, cardH, sv.IsTop, faint)
		pos := c.Position()
		lines, offset := skew(lines, c.Rotation())
		x := baseX + offset + int(math.Round(pos.X))
		y := baseY + int(math.Round(pos.Y/cellAspect))
		canvas = overlay(canvas, lines, x, y, m.width)
	}
	return canvas
}

func (m Model) renderCard(name, image string, id int64, c *card.Card, w, h int, isTop, faint bool) []string {
	innerW := w - 6
	if innerW < 1 {
		innerW = 1
	}

	var b strings.Builder
	b.WriteString(m.theme.name.Render(ansi.Truncate(name, innerW, "…")))
	b.WriteString("\n")
	b.WriteString(m.theme.meta.Render(ansi.Truncate(image, innerW, "…")))
	b.WriteString("\n")
	b.WriteString(m.theme.meta.Render(fmt.Sprintf("#%d", id)))

	if isTop {
		dx := c.Position().X
		threshold := float64(w) / 4
		switch {
		case dx > threshold:
			b.WriteString("\n\n" + m.theme.like.Render("LIKE"))
		case dx < -threshold:
			b.WriteString("\n\n" + m.theme.nope.Render("NOPE"))
		}
	}

	style := m.theme.card.Width(w - 2).Height(h - 2)
	if faint {
		style = style.Faint(true)
	}
	return strings.Split(style.Render(b.String()), "\n")
}

func (m Model) cardSize(height int) (int, int) {
	w := clamp(m.width-8, minCardWidth, maxCardWidth)
	h := clamp(height-4, minCardHeight, maxCardHeight)
	return w, h
}

func (m Model) statusLine(state deck.State) string {
	parts := []string{"←/h nope", "→/l like", "drag to swipe", "q quit"}
	if state.TotalKnown {
		parts = append([]string{fmt.Sprintf("%d/%d", state.Consumed, state.Total)}, parts...)
	}
	if m.s.fetching && state.Loaded() > 0 {
		parts = append(parts, m.spinner.View()+" loading")
	}
	line := m.theme.status.Render(strings.Join(parts, " · "))
	if m.s.lastErr != nil {
		line += "  " + m.theme.errorLine.Render("load failed, r to retry: "+m.s.lastErr.Error())
	}
	return ansi.Truncate(line, m.width, "…")
}

// skew shifts rows around the middle one to suggest a rotation in radians.
// The returned offset moves the block so the middle row stays in place.
func skew(lines []string, rotation float64) ([]string, int) {
	if rotation == 0 || len(lines) == 0 {
		return lines, 0
	}
	slope := math.Tan(rotation) * cellAspect
	mid := float64(len(lines)-1) / 2

	minShift := 0
	shifts := make([]int, len(lines))
	for i := range lines {
		shifts[i] = int(math.Round(slope * (mid - float64(i))))
		if shifts[i] < minShift {
			minShift = shifts[i]
		}
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = strings.Repeat(" ", shifts[i]-minShift) + line
	}
	return out, minShift
}

// overlay draws layer over base with its top-left corner at (x, y), cropping
// whatever falls outside width.
func overlay(base, layer []string, x, y, width int) []string {
	for i, line := range layer {
		row := y + i
		if row < 0 || row >= len(base) {
			continue
		}

		lineW := ansi.StringWidth(line)
		visible := line
		start := x
		if start < 0 {
			visible = cutLeft(line, -start)
			lineW += start
			start = 0
		}
		if lineW <= 0 || start >= width {
			continue
		}

		under := padRight(base[row], width)
		left := ansi.Cut(under, 0, start)
		right := ""
		if start+lineW < width {
			right = ansi.Cut(under, start+lineW, width)
		}
		base[row] = ansi.Truncate(left+visible+right, width, "")
	}
	return base
}

func cutLeft(s string, n int) string {
	w := ansi.StringWidth(s)
	if n >= w {
		return ""
	}
	return ansi.Cut(s, n, w)
}

func padRight(s string, width int) string {
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
