package chat

import "strings"

const (
	titleWordLimit  = 6
	titleMaxLength  = 50
	titleTruncateAt = 47
)

// DeriveTitle builds a session title from the first user message: the
// first six whitespace-separated words, truncated with an ellipsis when
// the joined result runs past 50 characters. Sent to the server only on
// a session's first turn. Lengths are counted in runes so a multibyte
// question is never cut mid-character.
func DeriveTitle(question string) string {
	words := strings.Fields(question)
	if len(words) > titleWordLimit {
		words = words[:titleWordLimit]
	}
	title := strings.Join(words, " ")
	runes := []rune(title)
	if len(runes) > titleMaxLength {
		return string(runes[:titleTruncateAt]) + "..."
	}
	return title
}

// TruncateTitle trims a title to the panel's display budget, counted in
// runes. This is a presentation rule, independent of the 50-character
// storage rule in DeriveTitle.
func TruncateTitle(title string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = 30
	}
	runes := []rune(title)
	if len(runes) <= maxLength {
		return title
	}
	return string(runes[:maxLength]) + "..."
}
