package chat

import (
	"testing"
	"time"

	"deskchat/internal/core/api"
	"deskchat/internal/core/models"
)

const testUser = "casey@example.com"

func TestBeginSendRejections(t *testing.T) {
	t.Run("blank text", func(t *testing.T) {
		tr := NewTranscript(testUser)
		if _, ok := tr.BeginSend("   \n\t"); ok {
			t.Error("BeginSend accepted blank text")
		}
		if len(tr.Messages()) != 0 {
			t.Error("blank send left messages behind")
		}
	})

	t.Run("send already in flight", func(t *testing.T) {
		tr := NewTranscript(testUser)
		if _, ok := tr.BeginSend("first"); !ok {
			t.Fatal("first BeginSend rejected")
		}
		if _, ok := tr.BeginSend("second"); ok {
			t.Error("BeginSend accepted a concurrent send while typing")
		}
	})

	t.Run("no authenticated user", func(t *testing.T) {
		tr := NewTranscript("")
		if _, ok := tr.BeginSend("hi"); ok {
			t.Error("BeginSend accepted without a user")
		}
	})
}

func TestSendSuccess(t *testing.T) {
	tr := NewTranscript(testUser)

	req, ok := tr.BeginSend("What is the refund policy for annual plans please")
	if !ok {
		t.Fatal("BeginSend rejected")
	}
	if !tr.Typing() {
		t.Error("Typing = false during in-flight send")
	}
	if tr.ShowWelcome() {
		t.Error("welcome still showing after send started")
	}
	if req.SessionID != "" {
		t.Errorf("SessionID = %q on new-session attempt, want empty", req.SessionID)
	}
	if req.Title != "What is the refund policy for" {
		t.Errorf("Title = %q, want first six words", req.Title)
	}

	tr.FinishSend(req.Token, &api.Answer{
		Answer:            "Refunds take 5 business days.",
		SessionID:         "srv-1",
		ConversationCount: 1,
		MaxConversations:  models.MaxConversations,
	}, nil)

	if tr.Typing() {
		t.Error("Typing = true after completion")
	}
	msgs := tr.Messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want user + bot", len(msgs))
	}
	if msgs[0].Sender != models.SenderUser || msgs[1].Sender != models.SenderBot {
		t.Errorf("message order wrong: %v, %v", msgs[0].Sender, msgs[1].Sender)
	}
	if msgs[1].Text != "Refunds take 5 business days." {
		t.Errorf("bot text = %q", msgs[1].Text)
	}
	if tr.SessionID() != "srv-1" {
		t.Errorf("SessionID = %q, want server-confirmed value", tr.SessionID())
	}
	if tr.ConversationCount() != 1 {
		t.Errorf("ConversationCount = %d, want 1", tr.ConversationCount())
	}
}

func TestTitleOnlySentOnFirstTurn(t *testing.T) {
	tr := NewTranscript(testUser)

	req, _ := tr.BeginSend("first question here")
	if req.Title == "" {
		t.Error("first turn carried no title")
	}
	tr.FinishSend(req.Token, &api.Answer{Answer: "a", SessionID: "s", ConversationCount: 1, MaxConversations: 15}, nil)

	req, ok := tr.BeginSend("second question")
	if !ok {
		t.Fatal("second BeginSend rejected")
	}
	if req.Title != "" {
		t.Errorf("second turn carried title %q, want none", req.Title)
	}
	if req.SessionID != "s" {
		t.Errorf("second turn SessionID = %q, want established session", req.SessionID)
	}
}

func TestSendFailureRendersAsBotMessage(t *testing.T) {
	tr := NewTranscript(testUser)

	req, _ := tr.BeginSend("hi")
	tr.FinishSend(req.Token, nil, api.ErrConnectivity)

	if tr.Typing() {
		t.Error("Typing = true after failed send")
	}
	msgs := tr.Messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want exactly user + error reply", len(msgs))
	}
	if msgs[0].Sender != models.SenderUser || msgs[0].Text != "hi" {
		t.Errorf("optimistic user message missing: %+v", msgs[0])
	}
	if msgs[1].Sender != models.SenderBot || msgs[1].Text != api.ErrConnectivity.Error() {
		t.Errorf("error reply = %+v, want connectivity text as bot message", msgs[1])
	}
}

func TestCapacityRolloverForcesNewChat(t *testing.T) {
	tr := NewTranscript(testUser)

	req, _ := tr.BeginSend("one more question")
	tr.FinishSend(req.Token, &api.Answer{
		Answer:              "Maximum conversations reached for this session. Please create a new chat.",
		SessionID:           "srv-1",
		ConversationCount:   models.MaxConversations,
		MaxConversations:    models.MaxConversations,
		ShouldCreateNewChat: true,
	}, nil)

	if !tr.ShowWelcome() {
		t.Error("rollover did not return to welcome state")
	}
	if len(tr.Messages()) != 0 {
		t.Error("rollover left messages behind instead of starting fresh")
	}
	if tr.SessionID() != "" || tr.ConversationCount() != 0 {
		t.Errorf("session identity survived rollover: %q / %d", tr.SessionID(), tr.ConversationCount())
	}
}

func TestNewChatIdempotent(t *testing.T) {
	tr := NewTranscript(testUser)
	req, _ := tr.BeginSend("hello")
	tr.FinishSend(req.Token, &api.Answer{Answer: "hi", SessionID: "s", ConversationCount: 1, MaxConversations: 15}, nil)

	tr.NewChat()
	first := snapshot(tr)
	tr.NewChat()
	second := snapshot(tr)

	if first != second {
		t.Errorf("NewChat not idempotent: %+v vs %+v", first, second)
	}
	if !tr.ShowWelcome() || len(tr.Messages()) != 0 {
		t.Error("NewChat did not produce the empty welcome state")
	}
}

type transcriptSnapshot struct {
	messageCount int
	welcome      bool
	typing       bool
	sessionID    string
	count        int
}

func snapshot(tr *Transcript) transcriptSnapshot {
	return transcriptSnapshot{
		messageCount: len(tr.Messages()),
		welcome:      tr.ShowWelcome(),
		typing:       tr.Typing(),
		sessionID:    tr.SessionID(),
		count:        tr.ConversationCount(),
	}
}

func TestHydrationRoundTrip(t *testing.T) {
	tr := NewTranscript(testUser)
	t0 := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	req, ok := tr.BeginSelect("sess-b")
	if !ok {
		t.Fatal("BeginSelect rejected")
	}
	if !tr.Typing() {
		t.Error("loading state not entered during hydration")
	}

	err := tr.FinishSelect(req.Token, "sess-b", &api.History{
		Turns:             []models.ConversationTurn{{Question: "hi", Answer: "hello", Timestamp: t0}},
		ConversationCount: 1,
		SessionTitle:      "hi",
	}, nil)
	if err != nil {
		t.Fatalf("FinishSelect error = %v", err)
	}

	msgs := tr.Messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want exactly 2", len(msgs))
	}
	if msgs[0].Sender != models.SenderUser || msgs[0].Text != "hi" {
		t.Errorf("first message = %+v, want user %q", msgs[0], "hi")
	}
	if msgs[1].Sender != models.SenderBot || msgs[1].Text != "hello" {
		t.Errorf("second message = %+v, want bot %q", msgs[1], "hello")
	}
	if !msgs[0].Timestamp.Equal(t0) || !msgs[1].Timestamp.Equal(t0) {
		t.Error("hydrated messages lost the turn's original timestamp")
	}
	if tr.SessionID() != "sess-b" || tr.ConversationCount() != 1 || tr.Title() != "hi" {
		t.Errorf("session summary not adopted: %q %d %q", tr.SessionID(), tr.ConversationCount(), tr.Title())
	}
	if tr.ShowWelcome() || tr.Typing() {
		t.Error("hydration left welcome/typing flags set")
	}
}

func TestStaleResponseSuppression(t *testing.T) {
	tr := NewTranscript(testUser)
	t0 := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	// A send for session A is in flight...
	sendReq, ok := tr.BeginSend("question for A")
	if !ok {
		t.Fatal("BeginSend rejected")
	}

	// ...when the user selects session B and its hydration completes.
	selReq, ok := tr.BeginSelect("sess-b")
	if !ok {
		t.Fatal("BeginSelect rejected while typing; selection must preempt")
	}
	if err := tr.FinishSelect(selReq.Token, "sess-b", &api.History{
		Turns:             []models.ConversationTurn{{Question: "hi", Answer: "hello", Timestamp: t0}},
		ConversationCount: 1,
		SessionTitle:      "hi",
	}, nil); err != nil {
		t.Fatalf("FinishSelect error = %v", err)
	}

	// A's response lands late. It must not touch the transcript.
	tr.FinishSend(sendReq.Token, &api.Answer{
		Answer:            "late answer for A",
		SessionID:         "sess-a",
		ConversationCount: 7,
		MaxConversations:  15,
	}, nil)

	msgs := tr.Messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want B's hydrated pair only", len(msgs))
	}
	for _, m := range msgs {
		if m.Text == "late answer for A" {
			t.Error("stale send completion appended to the hydrated transcript")
		}
	}
	if tr.SessionID() != "sess-b" {
		t.Errorf("SessionID = %q, want sess-b untouched by stale completion", tr.SessionID())
	}
	if tr.ConversationCount() != 1 {
		t.Errorf("ConversationCount = %d, want B's value", tr.ConversationCount())
	}
}

func TestStaleSendAfterNewChat(t *testing.T) {
	tr := NewTranscript(testUser)

	req, _ := tr.BeginSend("hello")
	tr.NewChat()
	tr.FinishSend(req.Token, &api.Answer{Answer: "late", SessionID: "s", ConversationCount: 1, MaxConversations: 15}, nil)

	if len(tr.Messages()) != 0 {
		t.Error("stale completion resurrected a cleared transcript")
	}
	if !tr.ShowWelcome() {
		t.Error("welcome state lost to a stale completion")
	}
}

// A stale completion must report as dropped so the interface layer
// does not react to it, in particular a late rollover reply for an
// abandoned session must not announce a session-limit notice over an
// unrelated transcript.
func TestFinishSendReportsStaleDrop(t *testing.T) {
	tr := NewTranscript(testUser)

	req, _ := tr.BeginSend("hello")
	tr.NewChat()

	applied := tr.FinishSend(req.Token, &api.Answer{
		Answer:              "Maximum conversations reached for this session. Please create a new chat.",
		SessionID:           "abandoned",
		ConversationCount:   models.MaxConversations,
		MaxConversations:    models.MaxConversations,
		ShouldCreateNewChat: true,
	}, nil)
	if applied {
		t.Error("FinishSend reported a stale rollover completion as applied")
	}

	req, _ = tr.BeginSend("hello again")
	if !tr.FinishSend(req.Token, &api.Answer{Answer: "hi", SessionID: "s", ConversationCount: 1, MaxConversations: 15}, nil) {
		t.Error("FinishSend reported a current completion as dropped")
	}
}

func TestFinishSelectFailureLeavesTranscript(t *testing.T) {
	tr := NewTranscript(testUser)
	req, _ := tr.BeginSend("hello")
	tr.FinishSend(req.Token, &api.Answer{Answer: "hi", SessionID: "sess-a", ConversationCount: 1, MaxConversations: 15}, nil)

	selReq, _ := tr.BeginSelect("sess-b")
	err := tr.FinishSelect(selReq.Token, "sess-b", nil, api.ErrHistoryNotFound)
	if err == nil {
		t.Fatal("FinishSelect swallowed the error")
	}

	if tr.Typing() {
		t.Error("loading state not exited after failed hydration")
	}
	if len(tr.Messages()) != 2 {
		t.Error("failed hydration disturbed the prior transcript")
	}
	if tr.SessionID() != "sess-a" {
		t.Errorf("SessionID = %q, want prior session kept", tr.SessionID())
	}
}

func TestLastAnswer(t *testing.T) {
	tr := NewTranscript(testUser)
	if _, ok := tr.LastAnswer(); ok {
		t.Error("LastAnswer found something in an empty transcript")
	}

	req, _ := tr.BeginSend("hello")
	tr.FinishSend(req.Token, &api.Answer{Answer: "hi there", SessionID: "s", ConversationCount: 1, MaxConversations: 15}, nil)

	got, ok := tr.LastAnswer()
	if !ok || got != "hi there" {
		t.Errorf("LastAnswer() = %q, %v", got, ok)
	}
}
