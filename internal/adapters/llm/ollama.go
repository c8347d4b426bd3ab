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
	"time"

	"go.uber.org/zap"

	"github.com/0xcro3dile/boost-go/internal/domain/entities"
	"github.com/0xcro3dile/boost-go/internal/domain/ports"
)

// OllamaStreamer implements ports.ChatStreamer using the Ollama chat API.
type OllamaStreamer struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// NewOllamaStreamer creates a new Ollama adapter.
func NewOllamaStreamer(baseURL, model string, logger *zap.Logger) *OllamaStreamer {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OllamaStreamer{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		logger:  logger,
		client: &http.Client{
			Timeout: 300 * time.Second, // Longer timeout for streaming
		},
	}
}

// Name identifies the backend.
func (a *OllamaStreamer) Name() string {
	return "ollama"
}

// ollamaChatRequest is the Ollama chat API request.
type ollamaChatRequest struct {
	Model    string                 `json:"model"`
	Messages []entities.ChatMessage `json:"messages"`
	Stream   bool                   `json:"stream"`
}

// ollamaChatResponse is one line of the Ollama chat API response.
type ollamaChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error"`
}

// StreamCompletion produces a streaming response via Ollama's newline-delimited JSON API.
func (a *OllamaStreamer) StreamCompletion(ctx context.Context, chatReq entities.ChatRequest) (<-chan ports.StreamToken, error) {
	model := chatReq.Model
	if model == "" {
		model = a.model
	}

	jsonData, err := json.Marshal(ollamaChatRequest{Model: model, Messages: chatReq.Messages, Stream: true})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/chat", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling Ollama: %w", err)
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
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var chunk ollamaChatResponse
			if err := json.Unmarshal(line, &chunk); err != nil {
				continue // Skip malformed lines
			}
			if chunk.Error != "" {
				send(ctx, ch, ports.StreamToken{Done: true, Error: errors.New(chunk.Error)})
				return
			}

			if !send(ctx, ch, ports.StreamToken{Content: chunk.Message.Content, Done: chunk.Done}) {
				return
			}
			if chunk.Done {
				return
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
