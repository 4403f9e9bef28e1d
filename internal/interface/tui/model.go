package tui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"deskchat/internal/core/api"
	"deskchat/internal/core/auth"
	"deskchat/internal/core/cache"
	"deskchat/internal/core/chat"
	"deskchat/internal/core/config"
)

type viewMode int

const (
	loginView viewMode = iota
	chatView
	historyView
)

// Options wires the core collaborators into the UI.
type Options struct {
	Client   *api.Client
	Users    *auth.Manager
	Store    *cache.Store
	Config   *config.Config
	User     auth.User
	LoggedIn bool
}

type Model struct {
	client *api.Client
	users  *auth.Manager
	store  *cache.Store
	cfg    *config.Config

	mode   viewMode
	width  int
	height int
	ready  bool

	user       auth.User
	emailInput textinput.Model
	loginErr   string

	// Per-user chat state, built at sign-in and discarded at sign-out
	transcript *chat.Transcript
	panel      *chat.Panel

	composer textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	list           list.Model
	historyLoading bool

	notice string
}

func New(opts Options) Model {
	email := textinput.New()
	email.Placeholder = "you@company.com"
	email.CharLimit = 120
	email.Width = 40

	composer := textinput.New()
	composer.Placeholder = "Ask a question..."
	composer.CharLimit = 2000

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = spinnerStyle

	m := Model{
		client:     opts.Client,
		users:      opts.Users,
		store:      opts.Store,
		cfg:        opts.Config,
		emailInput: email,
		composer:   composer,
		spinner:    sp,
		list:       createSessionList(0, 0),
		mode:       loginView,
	}

	if opts.LoggedIn {
		m.startSession(opts.User)
	} else {
		m.emailInput.Focus()
	}
	return m
}

// startSession builds the per-user chat state after sign-in.
func (m *Model) startSession(user auth.User) {
	m.user = user
	m.transcript = chat.NewTranscript(user.Email)
	m.panel = chat.NewPanel(user.Email, m.store)
	m.panel.LoadCached()
	m.mode = chatView
	m.emailInput.Blur()
	m.composer.Focus()
}

func (m Model) Init() tea.Cmd {
	if m.mode == chatView {
		return tea.Batch(textinput.Blink, loadSessions(m.client, m.user.Email))
	}
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.notice = "" // any keypress clears the transient notice
		switch m.mode {
		case loginView:
			return m.updateLogin(msg)
		case chatView:
			return m.updateChat(msg)
		case historyView:
			return m.updateHistory(msg)
		}

	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case sendFinishedMsg:
		applied := m.transcript.FinishSend(msg.token, msg.answer, msg.err)
		if applied && msg.err == nil && msg.answer != nil && msg.answer.ShouldCreateNewChat {
			m.notice = "Session limit reached. Starting a new chat."
		}
		m.refreshViewport()
		// A first send creates the session server-side; pick it up.
		if m.panel.NeedsRefresh(m.transcript.SessionID()) {
			return m, loadSessions(m.client, m.user.Email)
		}
		return m, nil

	case conversationLoadedMsg:
		if err := m.transcript.FinishSelect(msg.token, msg.sessionID, msg.history, msg.err); err != nil {
			m.notice = "Failed to load conversation history"
		}
		m.refreshViewport()
		return m, nil

	case sessionsLoadedMsg:
		m.historyLoading = false
		if msg.err != nil {
			m.notice = "Failed to load conversations"
			return m, nil
		}
		m.panel.SetSessions(msg.sessions)
		m.rebuildList()
		return m, nil

	case sessionDeletedMsg:
		if msg.err != nil {
			m.notice = "Failed to delete conversation"
			return m, nil
		}
		wasActive := m.transcript.SessionID() == msg.sessionID
		m.panel.Remove(msg.sessionID)
		if wasActive {
			m.transcript.NewChat()
			m.refreshViewport()
		}
		m.rebuildList()
		m.notice = "Conversation deleted"
		return m, nil

	case noticeMsg:
		m.notice = msg.text
		return m, nil
	}

	// Forward everything else (cursor blink etc.) to the focused input.
	var cmd tea.Cmd
	switch m.mode {
	case loginView:
		m.emailInput, cmd = m.emailInput.Update(msg)
	case chatView:
		m.composer, cmd = m.composer.Update(msg)
	}
	return m, cmd
}

func (m Model) busy() bool {
	if m.historyLoading {
		return true
	}
	return m.transcript != nil && m.transcript.Typing()
}

func (m *Model) layout() {
	m.ready = m.width > 0 && m.height > 0
	if !m.ready {
		return
	}
	m.viewport = viewport.New(m.width, m.height-6)
	m.composer.Width = m.width - 4
	m.list.SetSize(m.width, m.height-2)
	m.refreshViewport()
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	switch m.mode {
	case loginView:
		return m.viewLogin()
	case chatView:
		return m.viewChat()
	case historyView:
		return m.viewHistory()
	}
	return ""
}
