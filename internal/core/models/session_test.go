package models

import (
	"testing"
	"time"
)

func TestSessionValidation(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		wantErr bool
	}{
		{
			name: "valid session",
			session: Session{
				SessionID:         "abc-123",
				Title:             "What is the refund policy",
				LastUpdated:       time.Now(),
				ConversationCount: 3,
			},
			wantErr: false,
		},
		{
			name: "missing session ID",
			session: Session{
				Title: "Untitled",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.session.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewMessage(t *testing.T) {
	m := NewMessage("hello", SenderUser)
	if m.ID == "" {
		t.Error("NewMessage() did not assign an ID")
	}
	if m.Text != "hello" {
		t.Errorf("NewMessage() text = %q, want %q", m.Text, "hello")
	}
	if m.Sender != SenderUser {
		t.Errorf("NewMessage() sender = %q, want %q", m.Sender, SenderUser)
	}
	if m.Timestamp.IsZero() {
		t.Error("NewMessage() did not stamp a timestamp")
	}

	other := NewMessage("hello", SenderUser)
	if other.ID == m.ID {
		t.Error("NewMessage() reused an ID")
	}
}
