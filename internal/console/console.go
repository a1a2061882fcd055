// Package console is a terminal chat client for the core conversation
// service. It plays the part of a Telegram chat: every line the learner
// types goes to the core service and the reply is rendered in the
// transcript.
package console

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pysis/internal/ui/components"
	"github.com/abhisek/pysis/internal/ui/layout"
	"github.com/abhisek/pysis/internal/ui/theme"
)

// Asker obtains the reply for a learner message.
type Asker interface {
	Ask(ctx context.Context, chatID int64, userName, question string) string
}

type speaker int

const (
	learnerSpeaker speaker = iota
	tutorSpeaker
)

type message struct {
	from speaker
	text string
}

// replyMsg carries the core service's answer back into the update loop.
type replyMsg struct {
	text string
}

var footerHints = []layout.KeyHint{
	{Key: "Enter", Description: "Enviar"},
	{Key: "PgUp/PgDn", Description: "Desplazar"},
	{Key: "Ctrl+C", Description: "Salir"},
}

// Model is the root Bubble Tea model of the chat client.
type Model struct {
	ctx      context.Context
	asker    Asker
	chatID   int64
	userName string

	input    components.TextInput
	viewport viewport.Model
	spinner  spinner.Model

	messages []message
	waiting  bool
	width    int
	height   int
}

// New creates a chat model that talks to asker as chatID.
func New(ctx context.Context, asker Asker, chatID int64, userName string) Model {
	return Model{
		ctx:      ctx,
		asker:    asker,
		chatID:   chatID,
		userName: userName,
		input:    components.NewTextInput("Escribe tu mensaje..."),
		viewport: viewport.New(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(theme.Hint)),
	}
}

func (m Model) Init() tea.Cmd {
	return m.input.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m.submit()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case replyMsg:
		m.waiting = false
		m.messages = append(m.messages, message{from: tutorSpeaker, text: msg.text})
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.waiting {
		return m, nil
	}
	text := m.input.Take()
	if text == "" {
		return m, nil
	}
	m.waiting = true
	m.messages = append(m.messages, message{from: learnerSpeaker, text: text})
	m.refresh()

	ctx, asker, chatID, userName := m.ctx, m.asker, m.chatID, m.userName
	ask := func() tea.Msg {
		return replyMsg{text: asker.Ask(ctx, chatID, userName, text)}
	}
	return m, tea.Batch(ask, m.spinner.Tick)
}

func (m *Model) resize() {
	header := layout.RenderHeader("", "", m.width)
	footer := layout.RenderFooter(footerHints, m.width)
	// One line for the input, one for spacing.
	h := m.height - lipgloss.Height(header) - lipgloss.Height(footer) - 2
	m.viewport.SetWidth(m.width)
	m.viewport.SetHeight(max(h, 1))
	m.input.SetWidth(max(m.width-4, 1))
	m.refresh()
}

// refresh re-renders the transcript into the viewport and keeps the newest
// message visible.
func (m *Model) refresh() {
	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
}

func (m Model) transcript() string {
	wrap := lipgloss.NewStyle().Width(max(m.width-2, 20))
	var blocks []string
	for _, msg := range m.messages {
		var name, body string
		switch msg.from {
		case learnerSpeaker:
			name = theme.LearnerName.Render(m.displayName())
			body = theme.Body.Render(msg.text)
		case tutorSpeaker:
			name = theme.TutorName.Render("PySis")
			body = Render(msg.text)
		}
		blocks = append(blocks, name+"\n"+wrap.Render(body))
	}
	if m.waiting {
		blocks = append(blocks, m.spinner.View()+" "+theme.Hint.Render("PySis está escribiendo..."))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) displayName() string {
	if m.userName == "" {
		return "Tú"
	}
	return m.userName
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	header := layout.RenderHeader("Lección de Python", fmt.Sprintf("chat %d", m.chatID), m.width)
	footer := layout.RenderFooter(footerHints, m.width)
	content := m.viewport.View() + "\n\n" + m.input.View()

	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the chat client and blocks until the learner quits.
func Run(ctx context.Context, asker Asker, chatID int64, userName string) error {
	p := tea.NewProgram(New(ctx, asker, chatID, userName), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run chat: %w", err)
	}
	return nil
}
