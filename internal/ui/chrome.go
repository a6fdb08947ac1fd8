package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sprintboard/internal/theme"
)

// Chrome is the fixed frame every screen renders inside: a one-line
// header with a right-aligned context label and a one-line key-hint bar.
type Chrome struct {
	Width  int
	Height int
}

// NewChrome creates the frame for the given terminal dimensions.
func NewChrome(width, height int) Chrome {
	return Chrome{Width: width, Height: height}
}

// ContentWidth returns the full available width.
func (c Chrome) ContentWidth() int {
	return c.Width
}

// ContentHeight returns the rows left for the screen between the header
// and the key-hint bar.
func (c Chrome) ContentHeight() int {
	return c.Height - 2
}

// Render composes the full terminal view: header, screen content, and
// the key-hint bar.
func (c Chrome) Render(title, contextLabel, content, hints string) string {
	header := c.bar(
		theme.HeaderStyle,
		theme.HeaderStyle.Render(title),
		theme.HeaderStyle.Align(lipgloss.Right).Render(contextLabel),
	)
	hintBar := c.bar(theme.StatusBarStyle, theme.StatusBarStyle.Render(hints), "")

	return lipgloss.JoinVertical(lipgloss.Left, header, content, hintBar)
}

// bar pads the gap between a left and right segment so the bar's
// background spans the whole terminal width.
func (c Chrome) bar(style lipgloss.Style, left, right string) string {
	gap := c.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	filler := style.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(style.GetBackground()).
			Render(""),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}
