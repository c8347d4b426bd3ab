// Package llm provides streaming chat-completion adapters (OpenAI and Ollama)
// implementing ports.ChatStreamer.
package llm

import (
	"context"
	"fmt"

	"github.com/0xcro3dile/boost-go/internal/domain/ports"
)

// APIError is returned when a completion endpoint answers with a non-2xx status.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 4 << 10

// send delivers tok unless ctx is done first.
func send(ctx context.Context, ch chan<- ports.StreamToken, tok ports.StreamToken) bool {
	select {
	case ch <- tok:
		return true
	case <-ctx.Done():
		return false
	}
}
