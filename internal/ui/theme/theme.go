// Package theme holds the terminal palette, taken from the Python logo, and
// the shared text styles.
package theme

import "charm.land/lipgloss/v2"

var (
	Primary = lipgloss.Color("#3776AB")
	Accent  = lipgloss.Color("#FFD43B")
	Text    = lipgloss.Color("#F8FAFC")
	TextDim = lipgloss.Color("#94A3B8")
	BgCard  = lipgloss.Color("#1E293B")
	BgCode  = lipgloss.Color("#0F172A")
	Border  = lipgloss.Color("#334155")
)

var (
	Body = lipgloss.NewStyle().Foreground(Text)
	Hint = lipgloss.NewStyle().Foreground(TextDim).Italic(true)

	// Speaker labels in the chat transcript.
	LearnerName = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	TutorName   = lipgloss.NewStyle().Foreground(Primary).Bold(true)

	// Inline <code> and <pre> spans of tutor replies.
	Code = lipgloss.NewStyle().Foreground(Accent).Background(BgCode)

	ProgressFilled = lipgloss.NewStyle().Background(Primary)
	ProgressEmpty  = lipgloss.NewStyle().Background(Border)
)
