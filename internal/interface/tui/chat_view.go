package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cbroglie/mustache"
	"github.com/muesli/reflow/wordwrap"

	"deskchat/internal/core/models"
)

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		req, ok := m.transcript.BeginSend(m.composer.Value())
		if !ok {
			return m, nil
		}
		m.composer.Reset()
		m.refreshViewport()
		return m, tea.Batch(submitQuestion(m.client, req), m.spinner.Tick)

	case "ctrl+n":
		m.transcript.NewChat()
		m.refreshViewport()
		return m, nil

	case "ctrl+h":
		m.mode = historyView
		m.rebuildList()
		if m.panel.NeedsRefresh(m.transcript.SessionID()) {
			m.historyLoading = true
			return m, tea.Batch(loadSessions(m.client, m.user.Email), m.spinner.Tick)
		}
		return m, nil

	case "ctrl+y":
		if answer, ok := m.transcript.LastAnswer(); ok {
			return m, copyAnswer(answer)
		}
		return m, nil

	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m Model) viewChat() string {
	var b strings.Builder

	title := m.transcript.Title()
	if title == "" {
		title = "New chat"
	}
	header := fmt.Sprintf("%s  %s  %s",
		titleStyle.Render(title),
		timestampStyle.Render(fmt.Sprintf("%d/%d", m.transcript.ConversationCount(), models.MaxConversations)),
		timestampStyle.Render(m.user.Email))
	b.WriteString(header + "\n")

	b.WriteString(m.viewport.View() + "\n")

	if m.transcript.Typing() {
		b.WriteString(m.spinner.View() + typingStyle.Render(" assistant is typing...") + "\n")
	} else {
		b.WriteString("\n")
	}

	b.WriteString(m.composer.View() + "\n")

	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice) + "\n")
	}
	b.WriteString(helpStyle.Render("enter send • ctrl+h history • ctrl+n new chat • ctrl+y copy answer • ctrl+c quit"))
	return b.String()
}

// refreshViewport re-renders the transcript into the scroll region and
// pins it to the newest message.
func (m *Model) refreshViewport() {
	if !m.ready || m.transcript == nil {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	if m.transcript.ShowWelcome() {
		banner, err := mustache.Render(m.cfg.WelcomeTemplate, map[string]string{"email": m.user.Email})
		if err != nil {
			banner = "Hi! How can I help you today?"
		}
		return welcomeStyle.Render(banner)
	}

	wrapWidth := m.width - 10
	if wrapWidth < 40 {
		wrapWidth = 40
	}

	var b strings.Builder
	for _, msg := range m.transcript.Messages() {
		label := botStyle.Render("▸ BOT")
		if msg.Sender == models.SenderUser {
			label = userStyle.Render("▸ YOU")
		}
		b.WriteString(fmt.Sprintf("%s %s\n", label, timestampStyle.Render(msg.Timestamp.Format("15:04"))))
		b.WriteString(wordwrap.String(msg.Text, wrapWidth) + "\n\n")
	}
	return b.String()
}
