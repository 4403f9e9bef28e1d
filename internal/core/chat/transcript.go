package chat

import (
	"fmt"

	"deskchat/internal/core/api"
	"deskchat/internal/core/models"
)

// Transcript owns the in-memory message list and the send/hydrate state
// machine: Welcome (empty, no session) -> Active (messages present),
// with Typing as a sub-state while a send or hydration is in flight.
//
// All mutation happens on the UI event loop. Network completions
// re-enter through FinishSend/FinishSelect carrying the request token
// they were issued with; a token older than the current one means the
// transcript has moved on (new chat or session switch) and the
// completion is dropped. That guard is the only "cancellation" there
// is -- in-flight requests are never aborted, just ignored.
type Transcript struct {
	userEmail string

	messages []models.Message
	welcome  bool
	typing   bool

	sessionID         string
	title             string
	conversationCount int

	token uint64
}

// NewTranscript creates an empty transcript scoped to one authenticated
// user. Sign-out discards the instance wholesale.
func NewTranscript(userEmail string) *Transcript {
	return &Transcript{
		userEmail: userEmail,
		welcome:   true,
	}
}

// SendRequest carries everything a network call needs to submit one
// question, plus the token its completion must present.
type SendRequest struct {
	Token     uint64
	Question  string
	UserEmail string
	SessionID string // empty on a new-session attempt
	Title     string // non-empty only on a session's first turn
}

// SelectRequest carries a history fetch for one session.
type SelectRequest struct {
	Token     uint64
	UserEmail string
	SessionID string
}

// BeginSend starts a send. It is a no-op (returns false) for blank
// text, while another send is in flight, or without an authenticated
// user. Otherwise it appends the user message optimistically, enters
// Typing, and hands back the request for the caller to run.
func (t *Transcript) BeginSend(text string) (SendRequest, bool) {
	if isBlank(text) || t.typing || t.userEmail == "" {
		return SendRequest{}, false
	}

	t.welcome = false
	t.messages = append(t.messages, models.NewMessage(text, models.SenderUser))
	t.typing = true
	t.token++

	var title string
	if t.sessionID == "" || t.conversationCount == 0 {
		title = DeriveTitle(text)
		t.title = title
	}

	return SendRequest{
		Token:     t.token,
		Question:  text,
		UserEmail: t.userEmail,
		SessionID: t.sessionID,
		Title:     title,
	}, true
}

// FinishSend applies a completed send. Errors become a bot-authored
// message rather than surfacing to the UI shell; a capacity rollover
// performs the new-chat transition instead of appending a reply.
// Reports whether the completion applied; a stale token is dropped and
// callers must not react to its contents.
func (t *Transcript) FinishSend(token uint64, ans *api.Answer, err error) bool {
	if token != t.token {
		return false // stale completion, transcript has moved on
	}
	t.typing = false

	if err != nil {
		t.messages = append(t.messages, models.NewMessage(err.Error(), models.SenderBot))
		return true
	}

	if ans.ShouldCreateNewChat {
		t.NewChat()
		return true
	}

	// The server-confirmed identifier is authoritative.
	t.sessionID = ans.SessionID
	t.conversationCount = ans.ConversationCount
	t.messages = append(t.messages, models.NewMessage(ans.Answer, models.SenderBot))
	return true
}

// NewChat resets to the Welcome state: no messages, no session
// identity, counter unset. Safe to call from any state; an in-flight
// send becomes stale and its completion is discarded.
func (t *Transcript) NewChat() {
	t.messages = nil
	t.welcome = true
	t.typing = false
	t.sessionID = ""
	t.title = ""
	t.conversationCount = 0
	t.token++
}

// BeginSelect starts hydrating the transcript from a stored session.
// Selecting while a send is in flight is allowed; the pending send's
// completion is invalidated here so it cannot clobber the hydrated
// transcript.
func (t *Transcript) BeginSelect(sessionID string) (SelectRequest, bool) {
	if sessionID == "" || t.userEmail == "" {
		return SelectRequest{}, false
	}

	t.typing = true
	t.token++

	return SelectRequest{
		Token:     t.token,
		UserEmail: t.userEmail,
		SessionID: sessionID,
	}, true
}

// FinishSelect replaces the transcript with the fetched history: each
// turn expands to a user message then a bot message, both stamped with
// the turn's original timestamp. On failure the prior transcript stays
// intact and the error is returned for the caller to surface as a
// transient notification.
func (t *Transcript) FinishSelect(token uint64, sessionID string, h *api.History, err error) error {
	if token != t.token {
		return nil // stale completion
	}
	t.typing = false

	if err != nil {
		return err
	}

	messages := make([]models.Message, 0, len(h.Turns)*2)
	for i, turn := range h.Turns {
		messages = append(messages, models.Message{
			ID:        fmt.Sprintf("%s-q-%d", sessionID, i),
			Text:      turn.Question,
			Sender:    models.SenderUser,
			Timestamp: turn.Timestamp,
		})
		messages = append(messages, models.Message{
			ID:        fmt.Sprintf("%s-a-%d", sessionID, i),
			Text:      turn.Answer,
			Sender:    models.SenderBot,
			Timestamp: turn.Timestamp,
		})
	}

	t.messages = messages
	t.welcome = false
	t.sessionID = sessionID
	t.title = h.SessionTitle
	t.conversationCount = h.ConversationCount
	return nil
}

// Messages returns a copy of the transcript, oldest first.
func (t *Transcript) Messages() []models.Message {
	out := make([]models.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// LastAnswer returns the text of the most recent bot message.
func (t *Transcript) LastAnswer() (string, bool) {
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Sender == models.SenderBot {
			return t.messages[i].Text, true
		}
	}
	return "", false
}

// Typing reports whether a send or hydration is in flight. At most one
// send may be outstanding; BeginSend enforces that through this flag.
func (t *Transcript) Typing() bool { return t.typing }

// ShowWelcome reports whether the empty-state greeting should render.
func (t *Transcript) ShowWelcome() bool { return t.welcome }

// SessionID returns the current session identifier, empty for an
// uncommitted new-session draft.
func (t *Transcript) SessionID() string { return t.sessionID }

// Title returns the current session title, empty before the first send.
func (t *Transcript) Title() string { return t.title }

// ConversationCount returns the server-confirmed turn counter.
func (t *Transcript) ConversationCount() int { return t.conversationCount }

// UserEmail returns the user this transcript is scoped to.
func (t *Transcript) UserEmail() string { return t.userEmail }

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
