package tui

import (
	"context"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"deskchat/internal/core/api"
	"deskchat/internal/core/chat"
	"deskchat/internal/core/models"
)

type sendFinishedMsg struct {
	token  uint64
	answer *api.Answer
	err    error
}

type conversationLoadedMsg struct {
	token     uint64
	sessionID string
	history   *api.History
	err       error
}

type sessionsLoadedMsg struct {
	sessions []models.Session
	err      error
}

type sessionDeletedMsg struct {
	sessionID string
	err       error
}

type noticeMsg struct {
	text string
}

// Each command carries the request token back with its completion so
// the transcript can drop results that arrive after it moved on.

func submitQuestion(client *api.Client, req chat.SendRequest) tea.Cmd {
	return func() tea.Msg {
		ans, err := client.SubmitQuestion(context.Background(), req.Question, req.UserEmail, req.SessionID, req.Title)
		return sendFinishedMsg{token: req.Token, answer: ans, err: err}
	}
}

func loadConversation(client *api.Client, req chat.SelectRequest) tea.Cmd {
	return func() tea.Msg {
		history, err := client.GetHistory(context.Background(), req.UserEmail, req.SessionID)
		return conversationLoadedMsg{token: req.Token, sessionID: req.SessionID, history: history, err: err}
	}
}

func loadSessions(client *api.Client, userEmail string) tea.Cmd {
	return func() tea.Msg {
		sessions, err := client.ListSessions(context.Background(), userEmail)
		return sessionsLoadedMsg{sessions: sessions, err: err}
	}
}

func deleteSession(client *api.Client, userEmail, sessionID string) tea.Cmd {
	return func() tea.Msg {
		err := client.DeleteSession(context.Background(), userEmail, sessionID)
		return sessionDeletedMsg{sessionID: sessionID, err: err}
	}
}

func copyAnswer(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return noticeMsg{text: "Clipboard unavailable"}
		}
		return noticeMsg{text: "Answer copied to clipboard"}
	}
}
