package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func sseChunk(content string) string {
	return fmt.Sprintf("data: {\"choices\":[{\"delta\":{\"content\":%q},\"finish_reason\":null}]}\n\n", content)
}

func TestOpenAIStreamer_StreamCompletion(t *testing.T) {
	var got openAIRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, ": keep-alive\n\n")
		io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n")
		for _, c := range []string{"Hel", "lo", " world"} {
			io.WriteString(w, sseChunk(c))
		}
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	adapter := NewOpenAIStreamer(server.URL+"/v1/", "sk-test", "gpt-4o-mini", zaptest.NewLogger(t))
	ch, err := adapter.StreamCompletion(context.Background(), chatRequest())
	require.NoError(t, err)

	text, err := collect(t, ch)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", text)

	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.True(t, got.Stream)
	assert.Equal(t, chatRequest().Messages, got.Messages)
}

func TestOpenAIStreamer_MissingKey(t *testing.T) {
	adapter := NewOpenAIStreamer("http://127.0.0.1:1", "", "", nil)
	_, err := adapter.StreamCompletion(context.Background(), chatRequest())
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	adapter.SetAPIKey("sk-later")
	assert.Equal(t, "sk-later", adapter.key())
}

func TestOpenAIStreamer_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"Incorrect API key provided"}}`)
	}))
	defer server.Close()

	_, err := NewOpenAIStreamer(server.URL, "sk-bad", "", nil).StreamCompletion(context.Background(), chatRequest())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "openai", apiErr.Provider)
	assert.Contains(t, err.Error(), "Incorrect API key")
}

func TestOpenAIStreamer_ErrorEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sseChunk("partial"))
		io.WriteString(w, "data: {\"error\":{\"message\":\"server overloaded\"}}\n\n")
	}))
	defer server.Close()

	ch, err := NewOpenAIStreamer(server.URL, "sk-test", "", nil).StreamCompletion(context.Background(), chatRequest())
	require.NoError(t, err)

	text, err := collect(t, ch)
	assert.Equal(t, "partial", text)
	assert.ErrorContains(t, err, "server overloaded")
}

func TestOpenAIStreamer_TruncatedStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sseChunk("cut"))
	}))
	defer server.Close()

	ch, err := NewOpenAIStreamer(server.URL, "sk-test", "", nil).StreamCompletion(context.Background(), chatRequest())
	require.NoError(t, err)

	text, err := collect(t, ch)
	assert.Equal(t, "cut", text)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestOpenAIStreamer_CancelStopsDelivery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sseChunk("first"))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := NewOpenAIStreamer(server.URL, "sk-test", "", nil).StreamCompletion(ctx, chatRequest())
	require.NoError(t, err)

	select {
	case tok := <-ch:
		assert.Equal(t, "first", tok.Content)
	case <-time.After(5 * time.Second):
		t.Fatal("no token before cancel")
	}
	cancel()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case tok, ok := <-ch:
			if !ok {
				return
			}
			assert.Empty(t, tok.Content, "no content after cancel")
		case <-deadline:
			t.Fatal("stream did not close after cancel")
		}
	}
}
