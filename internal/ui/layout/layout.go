// Package layout renders the chrome around the chat transcript: a title bar,
// a key-hint footer and the too-small notice.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/pysis/internal/ui/theme"
)

const (
	MinWidth  = 40
	MinHeight = 12
)

var (
	bar = lipgloss.NewStyle().
		Background(theme.BgCard).
		Padding(0, 1)
	brand    = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	titleFg  = lipgloss.NewStyle().Foreground(theme.Text)
	statusFg = lipgloss.NewStyle().Foreground(theme.Accent)
	keyFg    = lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	descFg   = lipgloss.NewStyle().Foreground(theme.TextDim)
	rule     = lipgloss.NewStyle().Foreground(theme.Border)
)

// KeyHint is one "key description" pair of the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the learner to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("¡Terminal muy pequeña!\n\nAmplíala al menos a\n%d x %d\n\nActual: %d x %d",
		MinWidth, MinHeight, width, height)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, titleFg.Render(msg))
}

// RenderHeader renders "PySis" on the left, title in the middle and status
// on the right, followed by a horizontal rule.
func RenderHeader(title, status string, width int) string {
	inner := max(width-bar.GetHorizontalPadding(), 0)
	left := brand.Render("PySis")
	right := statusFg.Render(status)

	side := max(lipgloss.Width(left), lipgloss.Width(right))
	middle := lipgloss.PlaceHorizontal(max(inner-2*side, 0), lipgloss.Center, titleFg.Render(title))
	line := lipgloss.PlaceHorizontal(side, lipgloss.Left, left) +
		middle +
		lipgloss.PlaceHorizontal(side, lipgloss.Right, right)

	return bar.Width(width).Render(line) + "\n" + rule.Render(strings.Repeat("─", max(width, 0)))
}

// RenderFooter renders the key hints separated by dots.
func RenderFooter(hints []KeyHint, width int) string {
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = keyFg.Render(h.Key) + " " + descFg.Render(h.Description)
	}
	return bar.Width(width).Render(strings.Join(parts, descFg.Render(" · ")))
}

// RenderFrame stacks header, content and footer, padding the content to
// fill the remaining height.
func RenderFrame(header, content, footer string, width, height int) string {
	h := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := lipgloss.NewStyle().Width(width).Height(h).MaxHeight(h).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
