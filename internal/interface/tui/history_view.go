package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"deskchat/internal/core/chat"
	"deskchat/internal/core/models"
)

// sessionListItem adapts a stored session to the list widget.
type sessionListItem struct {
	session models.Session
	width   int
}

func (i sessionListItem) Title() string {
	title := chat.TruncateTitle(i.session.Title, i.width)
	if title == "" {
		title = i.session.SessionID
	}
	return title
}

func (i sessionListItem) Description() string {
	return fmt.Sprintf("%s • %d/%d turns",
		chat.FormatDate(i.session.LastUpdated, time.Now()),
		i.session.ConversationCount,
		models.MaxConversations)
}

func (i sessionListItem) FilterValue() string {
	return i.session.Title
}

func createSessionList(width, height int) list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), width, height)
	l.Title = "Conversations"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	return l
}

// rebuildList re-derives the list items from the panel's session list.
func (m *Model) rebuildList() {
	sessions := m.panel.Sessions()
	items := make([]list.Item, len(sessions))
	for i, s := range sessions {
		items[i] = sessionListItem{session: s, width: m.cfg.TitleWidth}
	}
	m.list.SetItems(items)
}

func (m Model) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+h", "q":
		m.mode = chatView
		return m, nil

	case "enter":
		item, ok := m.list.SelectedItem().(sessionListItem)
		if !ok {
			return m, nil
		}
		req, ok := m.transcript.BeginSelect(item.session.SessionID)
		if !ok {
			return m, nil
		}
		m.mode = chatView
		m.refreshViewport()
		return m, tea.Batch(loadConversation(m.client, req), m.spinner.Tick)

	case "n":
		m.transcript.NewChat()
		m.mode = chatView
		m.refreshViewport()
		return m, nil

	case "d":
		item, ok := m.list.SelectedItem().(sessionListItem)
		if !ok {
			return m, nil
		}
		return m, deleteSession(m.client, m.user.Email, item.session.SessionID)

	case "r":
		m.historyLoading = true
		return m, tea.Batch(loadSessions(m.client, m.user.Email), m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) viewHistory() string {
	if m.historyLoading && len(m.list.Items()) == 0 {
		return m.spinner.View() + " Loading conversations..."
	}
	if len(m.list.Items()) == 0 {
		return emptyStyle.Render("No conversations yet\nStart a new chat to begin") + "\n\n" +
			helpStyle.Render("n new chat • r refresh • esc back")
	}
	view := m.list.View() + "\n"
	if m.notice != "" {
		view += noticeStyle.Render(m.notice) + "\n"
	}
	view += helpStyle.Render("enter open • d delete • n new chat • r refresh • esc back")
	return view
}
