package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"deskchat/internal/core/models"
)

// Endpoint paths on the conversation API.
const (
	askEndpoint      = "/ask-question"
	sessionsEndpoint = "/get-sessions"
	historyEndpoint  = "/get-conversation-history"
	deleteEndpoint   = "/delete-session"
)

// actionCreateNewChat is the capacity-rollover signal: the session hit
// its conversation cap and the client must start a new one.
const actionCreateNewChat = "create_new_chat"

const limitReachedMessage = "Maximum conversations reached for this session. Please create a new chat."

// Every failure crossing this boundary is one of these human-readable
// errors. Callers render the message as-is and never branch on the
// taxonomy, with the single exception of ErrHistoryNotFound.
var (
	ErrConnectivity    = errors.New("I'm having trouble connecting to the server. Please check your internet connection and try again.")
	ErrService         = errors.New("The chatbot service is temporarily unavailable. Please try again in a moment.")
	ErrNoAnswer        = errors.New("No valid response received from the chatbot")
	ErrHistoryNotFound = errors.New("Conversation history not found for the specified session")
)

// Client talks to the remote conversation API. It owns no chat state;
// session identity lives with the transcript and is only confirmed or
// replaced by what the server returns.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
	}
}

// Answer is the outcome of one submitted question.
type Answer struct {
	Answer              string
	SessionID           string
	ConversationCount   int
	MaxConversations    int
	ShouldCreateNewChat bool
}

// History is a session's stored conversation, oldest turn first.
type History struct {
	Turns             []models.ConversationTurn
	LastUpdated       time.Time
	ConversationCount int
	SessionTitle      string
}

type askRequest struct {
	Question     string `json:"question"`
	UserEmail    string `json:"user_email"`
	SessionID    string `json:"session_id,omitempty"`
	SessionTitle string `json:"session_title,omitempty"`
}

type askResponse struct {
	Answer            string `json:"answer"`
	Response          string `json:"response"`
	Message           string `json:"message"`
	Error             string `json:"error"`
	SessionID         string `json:"session_id"`
	ConversationCount int    `json:"conversation_count"`
	MaxConversations  int    `json:"max_conversations"`
	Action            string `json:"action"`
	CurrentSessionID  string `json:"current_session_id"`
}

// SubmitQuestion posts one question to the API. The returned SessionID
// is authoritative and replaces any locally held identifier. sessionID
// may be empty for a new-session attempt; title is only sent on a
// session's first turn.
func (c *Client) SubmitQuestion(ctx context.Context, question, userEmail, sessionID, title string) (*Answer, error) {
	req := askRequest{
		Question:     strings.TrimSpace(question),
		UserEmail:    userEmail,
		SessionID:    sessionID,
		SessionTitle: title,
	}

	var data askResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&data).
		Post(askEndpoint)
	if err != nil {
		slog.Error("ask-question request failed", "error", err)
		return nil, ErrConnectivity
	}
	if res.IsError() {
		slog.Error("ask-question returned error status", "status", res.StatusCode())
		return nil, ErrService
	}

	// Session maxed out. Report the rollover with both counters pinned
	// to the cap, whatever the server literally said.
	if data.Action == actionCreateNewChat {
		answer := data.Message
		if answer == "" {
			answer = limitReachedMessage
		}
		id := data.CurrentSessionID
		if id == "" {
			id = sessionID
		}
		return &Answer{
			Answer:              answer,
			SessionID:           id,
			ConversationCount:   models.MaxConversations,
			MaxConversations:    models.MaxConversations,
			ShouldCreateNewChat: true,
		}, nil
	}

	// The backend has shipped the answer under a few field names over
	// time; accept any of them.
	text := data.Answer
	if text == "" {
		text = data.Response
	}
	if text == "" {
		text = data.Message
	}
	if text == "" {
		slog.Error("ask-question response carried no answer text", "session_id", data.SessionID)
		return nil, ErrNoAnswer
	}

	id := data.SessionID
	if id == "" {
		id = sessionID
	}
	if id == "" {
		id = uuid.NewString()
	}

	count := data.ConversationCount
	if count == 0 {
		count = 1
	}
	max := data.MaxConversations
	if max == 0 {
		max = models.MaxConversations
	}
	if count > max {
		count = max
	}

	return &Answer{
		Answer:            text,
		SessionID:         id,
		ConversationCount: count,
		MaxConversations:  max,
	}, nil
}

type sessionsRequest struct {
	UserEmail string `json:"user_email"`
}

type sessionsResponse struct {
	Sessions []struct {
		SessionID         string `json:"session_id"`
		SessionTitle      string `json:"session_title"`
		LastUpdated       string `json:"last_updated"`
		ConversationCount int    `json:"conversation_count"`
	} `json:"sessions"`
	TotalSessions int `json:"total_sessions"`
}

// ListSessions returns the user's sessions in the order the server
// sends them (most recently updated first).
func (c *Client) ListSessions(ctx context.Context, userEmail string) ([]models.Session, error) {
	var data sessionsResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(sessionsRequest{UserEmail: userEmail}).
		SetResult(&data).
		Post(sessionsEndpoint)
	if err != nil {
		slog.Error("get-sessions request failed", "error", err)
		return nil, ErrConnectivity
	}
	if res.IsError() {
		slog.Error("get-sessions returned error status", "status", res.StatusCode())
		return nil, ErrService
	}

	sessions := make([]models.Session, 0, len(data.Sessions))
	for _, s := range data.Sessions {
		sessions = append(sessions, models.Session{
			SessionID:         s.SessionID,
			Title:             s.SessionTitle,
			LastUpdated:       parseTimestamp(s.LastUpdated),
			ConversationCount: s.ConversationCount,
		})
	}
	return sessions, nil
}

type historyRequest struct {
	UserEmail string `json:"user_email"`
	SessionID string `json:"session_id"`
}

type historyResponse struct {
	Conversations []struct {
		Question  string `json:"question"`
		Answer    string `json:"answer"`
		Timestamp string `json:"timestamp"`
	} `json:"conversations"`
	LastUpdated       string `json:"last_updated"`
	ConversationCount int    `json:"conversation_count"`
	SessionTitle      string `json:"session_title"`
}

// GetHistory fetches a session's stored conversation. A 404 maps to
// ErrHistoryNotFound, distinct from generic service failure.
func (c *Client) GetHistory(ctx context.Context, userEmail, sessionID string) (*History, error) {
	var data historyResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(historyRequest{UserEmail: userEmail, SessionID: sessionID}).
		SetResult(&data).
		Post(historyEndpoint)
	if err != nil {
		slog.Error("get-conversation-history request failed", "error", err)
		return nil, ErrConnectivity
	}
	if res.StatusCode() == http.StatusNotFound {
		return nil, ErrHistoryNotFound
	}
	if res.IsError() {
		slog.Error("get-conversation-history returned error status", "status", res.StatusCode())
		return nil, ErrService
	}

	turns := make([]models.ConversationTurn, 0, len(data.Conversations))
	for _, conv := range data.Conversations {
		turns = append(turns, models.ConversationTurn{
			Question:  conv.Question,
			Answer:    conv.Answer,
			Timestamp: parseTimestamp(conv.Timestamp),
		})
	}

	return &History{
		Turns:             turns,
		LastUpdated:       parseTimestamp(data.LastUpdated),
		ConversationCount: data.ConversationCount,
		SessionTitle:      data.SessionTitle,
	}, nil
}

type deleteRequest struct {
	UserEmail string `json:"user_email"`
	SessionID string `json:"session_id"`
}

// DeleteSession removes a stored session server-side.
func (c *Client) DeleteSession(ctx context.Context, userEmail, sessionID string) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(deleteRequest{UserEmail: userEmail, SessionID: sessionID}).
		Post(deleteEndpoint)
	if err != nil {
		slog.Error("delete-session request failed", "error", err)
		return ErrConnectivity
	}
	if res.IsError() {
		slog.Error("delete-session returned error status", "status", res.StatusCode())
		return ErrService
	}
	return nil
}

// Timestamp layouts the backend has been seen emitting.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
