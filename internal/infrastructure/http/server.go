// Package http provides the local control server.
// Hotkey daemons and the CLI drive the panel through it.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/0xcro3dile/boost-go/internal/domain/entities"
	"github.com/0xcro3dile/boost-go/internal/domain/ports"
	"github.com/0xcro3dile/boost-go/internal/domain/usecases"
)

// eventBuffer sizes the per-request conversation subscription.
const eventBuffer = 256

// SettingChangedFunc is called after a setting has been written through the API.
type SettingChangedFunc func(ctx context.Context, key, value string)

// Server is the HTTP server for the panel API.
type Server struct {
	panel     *usecases.PanelUseCase
	settings  ports.SettingsStore
	onSetting SettingChangedFunc
	logger    *zap.Logger
	addr      string
}

// NewServer creates a new HTTP server. settings may be nil.
func NewServer(panel *usecases.PanelUseCase, settings ports.SettingsStore, addr string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		panel:    panel,
		settings: settings,
		logger:   logger,
		addr:     addr,
	}
}

// OnSettingChanged registers fn to apply settings written via PUT /api/settings.
func (s *Server) OnSettingChanged(fn SettingChangedFunc) {
	s.onSetting = fn
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/show", s.handleShow)
	mux.HandleFunc("GET /api/context", s.handleContext)
	mux.HandleFunc("GET /api/conversation", s.handleConversation)
	mux.HandleFunc("POST /api/ask", s.handleAsk) // SSE streaming
	mux.HandleFunc("POST /api/cancel", s.handleCancel)
	mux.HandleFunc("POST /api/screenshot", s.handleScreenshot)
	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", s.handlePutSettings)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	return corsMiddleware(s.loggingMiddleware(mux))
}

// Start runs the HTTP server until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 300 * time.Second, // Longer for streaming
	}

	s.logger.Info("Boost server starting", zap.String("addr", s.addr))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ShowRequest is the body of POST /api/show.
type ShowRequest struct {
	WithContext *bool `json:"with_context,omitempty"`
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	withContext := true
	var req ShowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	if req.WithContext != nil {
		withContext = *req.WithContext
	}
	writeJSON(w, http.StatusOK, s.panel.Show(r.Context(), withContext))
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.panel.Context())
}

// ConversationView is the body of GET /api/conversation.
type ConversationView struct {
	State        entities.ChatState `json:"state"`
	SystemPrompt string             `json:"system_prompt,omitempty"`
	History      []entities.Message `json:"history"`
	LastError    string             `json:"last_error,omitempty"`
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	conv := s.panel.Conversation()
	view := ConversationView{
		State:   conv.State(),
		History: conv.History(),
	}
	if prompt, ok := conv.SystemPrompt(); ok {
		view.SystemPrompt = prompt.Content
	}
	if err := conv.LastError(); err != nil {
		view.LastError = err.Error()
	}
	writeJSON(w, http.StatusOK, view)
}

// AskRequest is the body of POST /api/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// handleAsk submits a user turn and streams the reply as server-sent events.
// Each event carries a ChatEvent; the terminal one also carries the full text.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	conv := s.panel.Conversation()
	events, unsubscribe := conv.Subscribe(eventBuffer)
	defer unsubscribe()

	asst, err := conv.Submit(r.Context(), req.Question)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, usecases.ErrEmptyMessage) || errors.Is(err, usecases.ErrNothingToAsk) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			// The stream belongs to the conversation and keeps running.
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.MessageID != asst.ID {
				continue
			}
			if !ev.Terminal() {
				sendSSE(w, flusher, ev)
				continue
			}
			sendSSE(w, flusher, struct {
				entities.ChatEvent
				Content string `json:"content"`
			}{ev, messageContent(conv.History(), asst.ID)})
			return
		}
	}
}

func messageContent(history []entities.Message, id string) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].ID == id {
			return history[i].Content
		}
	}
	return ""
}

func sendSSE(w http.ResponseWriter, flusher http.Flusher, data any) {
	jsonData, _ := json.Marshal(data)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": s.panel.Conversation().Cancel()})
}

func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	path, err := s.panel.Screenshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		writeError(w, http.StatusNotImplemented, errors.New("settings store not configured"))
		return
	}
	all, err := s.settings.All(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if key, ok := all[ports.SettingAPIKey]; ok {
		all[ports.SettingAPIKey] = MaskSecret(key)
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		writeError(w, http.StatusNotImplemented, errors.New("settings store not configured"))
		return
	}
	var updates map[string]string
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	if len(updates) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("no settings given"))
		return
	}
	for key, value := range updates {
		if err := s.settings.Set(r.Context(), key, value); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if s.onSetting != nil {
			s.onSetting(r.Context(), key, value)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// MaskSecret keeps the last four characters of a credential.
func MaskSecret(v string) string {
	if len(v) <= 4 {
		return strings.Repeat("*", len(v))
	}
	return strings.Repeat("*", len(v)-4) + v[len(v)-4:]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}

// corsMiddleware only admits browser requests from loopback origins, since the
// API exposes captured screen content.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			if !loopbackOrigin(origin) {
				http.Error(w, "Forbidden origin", http.StatusForbidden)
				return
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == "OPTIONS" {
			return
		}
		next.ServeHTTP(w, r)
	})
}

func loopbackOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
