package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/pysis/internal/ui/theme"
)

// ScoreBar displays an evaluation score (0-100) as a horizontal bar.
type ScoreBar struct {
	Label string
	Score float64
	Width int
}

// NewScoreBar creates a new score bar.
func NewScoreBar(label string, score float64, width int) ScoreBar {
	return ScoreBar{
		Label: label,
		Score: score,
		Width: width,
	}
}

// Filled returns how many cells of a bar of barWidth the score fills.
func (b ScoreBar) Filled(barWidth int) int {
	filled := int(float64(barWidth) * b.Score / 100)
	return min(max(filled, 0), barWidth)
}

// View renders the score bar.
func (b ScoreBar) View() string {
	var result string

	if b.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(b.Label) + "  "
	}

	scoreText := fmt.Sprintf("  %6.2f%%", b.Score)
	barWidth := b.Width - lipgloss.Width(result) - len(scoreText)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := b.Filled(barWidth)
	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled)) +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(scoreText)

	return result
}
