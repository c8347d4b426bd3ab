package usecases

import (
	"strings"
)

// DefaultPreamble opens every system prompt unless overridden by settings.
const DefaultPreamble = "You are a world class agent that is great at answering my questions concisely and to the point."

const (
	conciseClause     = "Be concise and straight to the point when answering."
	contentClause     = "I am going to ask you questions about the above content. Be concise and straight to the point."
	highlightedFocus  = "But specifically, I am going to ask you about the following part of the content:"
	highlightedClause = "I'm going to ask you questions about the above content."
)

// BuildSystemPrompt assembles the single system message for a conversation.
// Blank content or highlighted text counts as absent.
func BuildSystemPrompt(preamble, content, highlighted string) string {
	if strings.TrimSpace(preamble) == "" {
		preamble = DefaultPreamble
	}
	hasContent := strings.TrimSpace(content) != ""
	hasHighlighted := strings.TrimSpace(highlighted) != ""

	var b strings.Builder
	b.WriteString(strings.TrimSpace(preamble))
	b.WriteString("\n")

	switch {
	case hasContent:
		b.WriteString(content)
		b.WriteString("\n")
		b.WriteString(contentClause)
		if hasHighlighted {
			b.WriteString(" ")
			b.WriteString(highlightedFocus)
			b.WriteString("\n")
			b.WriteString(highlighted)
		}
	case hasHighlighted:
		b.WriteString(highlighted)
		b.WriteString("\n")
		b.WriteString(highlightedClause)
		b.WriteString(" ")
		b.WriteString(conciseClause)
	default:
		b.WriteString(conciseClause)
	}
	return b.String()
}

// clipText trims text to at most limit runes. A non-positive limit disables clipping.
func clipText(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
