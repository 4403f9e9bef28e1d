package models

import (
	"time"

	"github.com/google/uuid"
)

// Sender identifies who authored a transcript message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is a single transcript entry. Messages are immutable once
// created and live only in memory; starting a new chat or switching
// sessions discards them.
type Message struct {
	ID        string
	Text      string
	Sender    Sender
	Timestamp time.Time
}

// NewMessage creates a Message with a generated ID, stamped now.
func NewMessage(text string, sender Sender) Message {
	return Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    sender,
		Timestamp: time.Now(),
	}
}
