package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/textinput"
)

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		user, err := m.users.Login(m.emailInput.Value())
		if err != nil {
			m.loginErr = err.Error()
			return m, nil
		}
		m.loginErr = ""
		m.startSession(user)
		m.layout()
		return m, tea.Batch(textinput.Blink, loadSessions(m.client, m.user.Email))

	case "esc":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.emailInput, cmd = m.emailInput.Update(msg)
	return m, cmd
}

func (m Model) viewLogin() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("  deskchat") + "\n\n")
	b.WriteString("  Sign in with your work email to start chatting.\n\n")
	b.WriteString("  " + m.emailInput.View() + "\n\n")
	if m.loginErr != "" {
		b.WriteString("  " + errorStyle.Render(m.loginErr) + "\n\n")
	}
	b.WriteString("  " + helpStyle.Render("enter sign in • esc quit"))
	return b.String()
}
