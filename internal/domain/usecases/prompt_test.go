package usecases

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSystemPrompt_Bare(t *testing.T) {
	got := BuildSystemPrompt("", "", "")
	assert.Equal(t, DefaultPreamble+"\n"+conciseClause, got)
	assert.NotContains(t, got, "above content")
	assert.NotContains(t, got, "specifically")
}

func TestBuildSystemPrompt_ContentAndHighlighted(t *testing.T) {
	got := BuildSystemPrompt("", "X", "Y")
	assert.Contains(t, got, "\nX\n")
	assert.True(t, strings.HasSuffix(got, "\nY"), "highlighted text should close the prompt: %q", got)
	assert.Contains(t, got, contentClause)
	assert.Contains(t, got, highlightedFocus)
	assert.True(t, strings.Index(got, "X") < strings.Index(got, highlightedFocus))
}

func TestBuildSystemPrompt_ContentOnly(t *testing.T) {
	got := BuildSystemPrompt("", "page body", "")
	assert.Contains(t, got, "page body")
	assert.Contains(t, got, contentClause)
	assert.NotContains(t, got, highlightedFocus)
}

func TestBuildSystemPrompt_HighlightedOnly(t *testing.T) {
	got := BuildSystemPrompt("", "  ", "selected words")
	assert.Contains(t, got, "selected words\n"+highlightedClause)
	assert.Contains(t, got, conciseClause)
	assert.NotContains(t, got, highlightedFocus)
}

func TestBuildSystemPrompt_Preamble(t *testing.T) {
	got := BuildSystemPrompt("You are a pirate.", "", "")
	assert.True(t, strings.HasPrefix(got, "You are a pirate.\n"))
	assert.NotContains(t, got, DefaultPreamble)
}

func TestClipText(t *testing.T) {
	assert.Equal(t, "hello", clipText("hello", 0))
	assert.Equal(t, "hel", clipText("hello", 3))
	assert.Equal(t, "héé", clipText("hééllo", 3))
	assert.Equal(t, "hi", clipText("hi", 10))
}
