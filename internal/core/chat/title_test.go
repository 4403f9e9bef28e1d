package chat

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "first six words",
			input: "What is the refund policy for annual plans please",
			want:  "What is the refund policy for",
		},
		{
			name:  "short question passes through",
			input: "Hello there",
			want:  "Hello there",
		},
		{
			name:  "extra whitespace collapses",
			input: "  What   is\tthe   plan  ",
			want:  "What is the plan",
		},
		{
			name:  "long words truncate to 47 plus ellipsis",
			input: "Supercalifragilistic expialidocious antidisestablishmentarianism floccinaucinihilipilification",
			want:  "Supercalifragilistic expialidocious antidisest" + "a...",
		},
		{
			// 21 runes but 63 bytes; the character count is what matters.
			name:  "multibyte question under the rune limit passes through",
			input: "这是一个关于退款政策的很长的问题请尽快回答",
			want:  "这是一个关于退款政策的很长的问题请尽快回答",
		},
		{
			name:  "multibyte question truncates on rune count",
			input: strings.Repeat("问", 60),
			want:  strings.Repeat("问", 47) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveTitle(tt.input)
			if got != tt.want {
				t.Errorf("DeriveTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("DeriveTitle(%q) produced invalid UTF-8: %q", tt.input, got)
			}
		})
	}
}

func TestDeriveTitleLengthBound(t *testing.T) {
	long := strings.Repeat("abcdefghij ", 6) // six 10-char words, 65 chars joined
	got := DeriveTitle(long)
	if len(got) != titleTruncateAt+3 {
		t.Errorf("len = %d, want %d", len(got), titleTruncateAt+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated title %q missing ellipsis", got)
	}
}

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		max   int
		want  string
	}{
		{"short stays", "Refund policy", 30, "Refund policy"},
		{"exact stays", strings.Repeat("x", 30), 30, strings.Repeat("x", 30)},
		{"long truncates", strings.Repeat("x", 31), 30, strings.Repeat("x", 30) + "..."},
		{"zero budget falls back to default", strings.Repeat("x", 31), 0, strings.Repeat("x", 30) + "..."},
		{"narrow panel", "A fairly long conversation title", 25, "A fairly long conversatio..."},
		{"multibyte cut lands on a rune boundary", strings.Repeat("答", 31), 30, strings.Repeat("答", 30) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateTitle(tt.title, tt.max)
			if got != tt.want {
				t.Errorf("TruncateTitle(%q, %d) = %q, want %q", tt.title, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("TruncateTitle(%q, %d) produced invalid UTF-8: %q", tt.title, tt.max, got)
			}
		})
	}
}
