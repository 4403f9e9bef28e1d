package models

import (
	"errors"
	"time"
)

// MaxConversations is the cap on question/answer turns per session.
// Reaching it closes the session; the client must start a new chat
// rather than append a further turn.
const MaxConversations = 15

// Session is a bounded, server-identified sequence of question/answer
// turns for one user. The server-assigned SessionID is authoritative;
// any locally generated candidate is replaced on first confirmation.
type Session struct {
	SessionID         string
	Title             string
	LastUpdated       time.Time
	ConversationCount int
}

// Validate checks if the session has required fields
func (s *Session) Validate() error {
	if s.SessionID == "" {
		return errors.New("session_id is required")
	}
	return nil
}

// ConversationTurn is the server's unit of history: one question/answer
// pair. Hydration expands each turn into a user Message followed by a
// bot Message, both carrying the turn's timestamp.
type ConversationTurn struct {
	Question  string
	Answer    string
	Timestamp time.Time
}
