package http

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

	"github.com/0xcro3dile/boost-go/internal/domain/entities"
)

// Client talks to a running boost server.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for addr ("127.0.0.1:7878" or a full URL).
func NewClient(addr string) *Client {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return &Client{
		baseURL: strings.TrimRight(addr, "/"),
		client:  &http.Client{Timeout: 300 * time.Second},
	}
}

// Show triggers the panel and returns the captured snapshot.
func (c *Client) Show(ctx context.Context, withContext bool) (entities.ContextualSnapshot, error) {
	var snap entities.ContextualSnapshot
	err := c.doJSON(ctx, http.MethodPost, "/api/show", ShowRequest{WithContext: &withContext}, &snap)
	return snap, err
}

// Context returns the current snapshot.
func (c *Client) Context(ctx context.Context) (entities.ContextualSnapshot, error) {
	var snap entities.ContextualSnapshot
	err := c.doJSON(ctx, http.MethodGet, "/api/context", nil, &snap)
	return snap, err
}

// Cancel stops the active stream and reports whether one was running.
func (c *Client) Cancel(ctx context.Context) (bool, error) {
	var resp struct {
		Cancelled bool `json:"cancelled"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/cancel", nil, &resp)
	return resp.Cancelled, err
}

// Screenshot captures the display under the cursor and returns the image path.
func (c *Client) Screenshot(ctx context.Context) (string, error) {
	var resp struct {
		Path string `json:"path"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/screenshot", nil, &resp)
	return resp.Path, err
}

// Ask submits question and calls onDelta for every streamed chunk. It returns
// the final assistant text; a cancelled stream returns its partial text and
// a failed one returns an error alongside it.
func (c *Client) Ask(ctx context.Context, question string, onDelta func(string)) (string, error) {
	body, err := json.Marshal(AskRequest{Question: question})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ask", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling boost: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", decodeError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		data, ok := strings.CutPrefix(scanner.Text(), "data: ")
		if !ok {
			continue
		}
		var ev struct {
			entities.ChatEvent
			Content string `json:"content"`
		}
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return "", fmt.Errorf("decoding event: %w", err)
		}
		switch ev.Type {
		case entities.EventDelta:
			if onDelta != nil {
				onDelta(ev.Delta)
			}
		case entities.EventError:
			return ev.Content, errors.New(ev.Error)
		default:
			return ev.Content, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stream: %w", err)
	}
	return "", io.ErrUnexpectedEOF
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling boost: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<10)).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("boost returned status %d: %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("boost returned status %d", resp.StatusCode)
}
