package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/0xcro3dile/boost-go/internal/domain/entities"
	"github.com/0xcro3dile/boost-go/internal/domain/ports"
)

// ErrMissingAPIKey is returned when no OpenAI key has been configured.
var ErrMissingAPIKey = errors.New("openai api key not configured")

// OpenAIStreamer implements ports.ChatStreamer against the chat completions API.
type OpenAIStreamer struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger

	mu     sync.RWMutex
	apiKey string
}

// NewOpenAIStreamer creates an OpenAI adapter. baseURL defaults to the public API.
func NewOpenAIStreamer(baseURL, apiKey, model string, logger *zap.Logger) *OpenAIStreamer {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIStreamer{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 300 * time.Second},
		logger:  logger,
	}
}

// SetAPIKey replaces the credential used by later requests.
func (a *OpenAIStreamer) SetAPIKey(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.apiKey = key
}

func (a *OpenAIStreamer) key() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.apiKey
}

// Name identifies the backend.
func (a *OpenAIStreamer) Name() string {
	return "openai"
}

type openAIRequest struct {
	Model    string                 `json:"model"`
	Messages []entities.ChatMessage `json:"messages"`
	Stream   bool                   `json:"stream"`
}

type openAIChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// StreamCompletion opens a server-sent-events stream. Errors before the first
// byte are returned directly; later ones arrive as the final token.
func (a *OpenAIStreamer) StreamCompletion(ctx context.Context, chatReq entities.ChatRequest) (<-chan ports.StreamToken, error) {
	key := a.key()
	if key == "" {
		return nil, ErrMissingAPIKey
	}
	model := chatReq.Model
	if model == "" {
		model = a.model
	}

	jsonData, err := json.Marshal(openAIRequest{Model: model, Messages: chatReq.Messages, Stream: true})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling OpenAI: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{Provider: a.Name(), StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	a.logger.Debug("Completion stream opened", zap.String("model", model), zap.Int("messages", len(chatReq.Messages)))

	ch := make(chan ports.StreamToken, 100)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "" {
				continue
			}
			if data == "[DONE]" {
				send(ctx, ch, ports.StreamToken{Done: true})
				return
			}

			var chunk openAIChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				a.logger.Debug("Skipping malformed stream chunk", zap.Error(err))
				continue
			}
			if chunk.Error != nil {
				send(ctx, ch, ports.StreamToken{Done: true, Error: fmt.Errorf("stream error: %s", chunk.Error.Message)})
				return
			}
			for _, choice := range chunk.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				if !send(ctx, ch, ports.StreamToken{Content: choice.Delta.Content}) {
					return
				}
			}
		}

		err := scanner.Err()
		if ctx.Err() != nil {
			err = ctx.Err()
		} else if err == nil {
			err = io.ErrUnexpectedEOF
		}
		send(ctx, ch, ports.StreamToken{Done: true, Error: fmt.Errorf("reading stream: %w", err)})
	}()

	return ch, nil
}
