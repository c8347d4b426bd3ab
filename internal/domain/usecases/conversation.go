package usecases

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/0xcro3dile/boost-go/internal/domain/entities"
	"github.com/0xcro3dile/boost-go/internal/domain/ports"
)

var (
	// ErrEmptyMessage is returned when a blank user turn is submitted.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrNothingToAsk is returned when the history does not end with a user turn.
	ErrNothingToAsk = errors.New("no pending user message")
)

// ConversationOptions configures a Conversation.
type ConversationOptions struct {
	Model string
	// Preamble replaces DefaultPreamble when non-empty.
	Preamble string
	// StreamTimeout bounds a single completion. Zero means no limit.
	StreamTimeout time.Duration
}

// Conversation owns the message history, the lifecycle state and the system
// prompt. It is the only writer of assistant message bodies.
//
// Calling Ask while a stream is active cancels that stream, waits for it to
// stop and keeps its partial text before starting the new one.
type Conversation struct {
	llm    ports.ChatStreamer
	logger *zap.Logger

	// askMu serializes transitions that start or tear down streams.
	askMu sync.Mutex

	mu           sync.Mutex
	model        string
	preamble     string
	timeout      time.Duration
	history      []entities.Message
	systemPrompt *entities.Message
	state        entities.ChatState
	active       *activeStream
	lastErr      error
	subscribers  map[int]chan entities.ChatEvent
	nextSubID    int
}

type activeStream struct {
	ctx       context.Context
	cancel    context.CancelFunc
	messageID string
	index     int
	done      chan struct{}
}

// NewConversation creates an idle conversation.
func NewConversation(llm ports.ChatStreamer, opts ConversationOptions, logger *zap.Logger) *Conversation {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Conversation{
		llm:         llm,
		logger:      logger,
		model:       opts.Model,
		preamble:    opts.Preamble,
		timeout:     opts.StreamTimeout,
		state:       entities.ChatIdle,
		subscribers: make(map[int]chan entities.ChatEvent),
	}
	c.setSystemPromptLocked("", "")
	return c
}

// Setup clears history and rebuilds the system prompt from captured context.
// An active stream is cancelled first.
func (c *Conversation) Setup(content, highlighted string) {
	c.askMu.Lock()
	defer c.askMu.Unlock()
	c.stopActive()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = nil
	c.lastErr = nil
	c.setSystemPromptLocked(content, highlighted)
}

// UpdateContext rebuilds the system prompt but keeps the history. Used when
// captured content arrives after the panel was already shown.
func (c *Conversation) UpdateContext(content, highlighted string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setSystemPromptLocked(content, highlighted)
}

// SetPreamble changes the system-prompt override for subsequent setups.
func (c *Conversation) SetPreamble(preamble string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preamble = preamble
}

// SetModel changes the model used by subsequent asks.
func (c *Conversation) SetModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = model
}

func (c *Conversation) setSystemPromptLocked(content, highlighted string) {
	msg := entities.NewMessage(entities.RoleSystem, BuildSystemPrompt(c.preamble, content, highlighted))
	c.systemPrompt = &msg
}

// Submit appends a user turn and asks for a reply. Blank text is rejected
// before any state changes.
func (c *Conversation) Submit(ctx context.Context, text string) (entities.Message, error) {
	if strings.TrimSpace(text) == "" {
		return entities.Message{}, ErrEmptyMessage
	}

	c.askMu.Lock()
	defer c.askMu.Unlock()
	c.stopActive()

	c.mu.Lock()
	c.history = append(c.history, entities.NewMessage(entities.RoleUser, text))
	c.mu.Unlock()

	return c.askLocked(ctx)
}

// Ask sends the history to the completion API and streams the reply into a
// new assistant message, which is returned immediately.
func (c *Conversation) Ask(ctx context.Context) (entities.Message, error) {
	c.askMu.Lock()
	defer c.askMu.Unlock()
	c.stopActive()
	return c.askLocked(ctx)
}

func (c *Conversation) askLocked(ctx context.Context) (entities.Message, error) {
	c.mu.Lock()
	if len(c.history) == 0 || c.history[len(c.history)-1].Role != entities.RoleUser {
		c.mu.Unlock()
		return entities.Message{}, ErrNothingToAsk
	}

	req := entities.ChatRequest{Model: c.model, Messages: c.requestMessagesLocked()}

	asst := entities.NewMessage(entities.RoleAssistant, "")
	c.history = append(c.history, asst)

	// The stream outlives the caller's request; only values are inherited.
	base := context.WithoutCancel(ctx)
	var streamCtx context.Context
	var cancel context.CancelFunc
	if c.timeout > 0 {
		streamCtx, cancel = context.WithTimeout(base, c.timeout)
	} else {
		streamCtx, cancel = context.WithCancel(base)
	}
	s := &activeStream{
		ctx:       streamCtx,
		cancel:    cancel,
		messageID: asst.ID,
		index:     len(c.history) - 1,
		done:      make(chan struct{}),
	}
	c.active = s
	c.state = entities.ChatStreaming
	c.lastErr = nil
	c.mu.Unlock()

	c.logger.Debug("Starting completion stream",
		zap.String("backend", c.llm.Name()),
		zap.String("model", req.Model),
		zap.Int("messages", len(req.Messages)))

	go c.run(s, req)
	return asst, nil
}

// requestMessagesLocked maps the system prompt and history to the wire format.
func (c *Conversation) requestMessagesLocked() []entities.ChatMessage {
	msgs := make([]entities.ChatMessage, 0, len(c.history)+1)
	if c.systemPrompt != nil {
		msgs = append(msgs, entities.ChatMessage{Role: string(entities.RoleSystem), Content: c.systemPrompt.Content})
	}
	for _, m := range c.history {
		msgs = append(msgs, entities.ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	return msgs
}

func (c *Conversation) run(s *activeStream, req entities.ChatRequest) {
	defer close(s.done)

	tokens, err := c.llm.StreamCompletion(s.ctx, req)
	if err != nil {
		c.finish(s, err)
		return
	}

	var streamErr error
loop:
	for {
		select {
		case <-s.ctx.Done():
			break loop
		case tok, ok := <-tokens:
			if !ok {
				break loop
			}
			if tok.Content != "" {
				c.applyDelta(s, tok.Content)
			}
			if tok.Error != nil {
				streamErr = tok.Error
				break loop
			}
			if tok.Done {
				break loop
			}
		}
	}
	c.finish(s, streamErr)
}

func (c *Conversation) applyDelta(s *activeStream, delta string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Cancel happens under mu, so nothing lands after it.
	if s.ctx.Err() != nil || c.active != s {
		return
	}
	if s.index >= len(c.history) || c.history[s.index].ID != s.messageID {
		return
	}
	c.history[s.index].Content += delta
	c.emitLocked(entities.ChatEvent{Type: entities.EventDelta, MessageID: s.messageID, Delta: delta})
}

func (c *Conversation) finish(s *activeStream, streamErr error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer s.cancel()

	cancelled := errors.Is(s.ctx.Err(), context.Canceled) &&
		(streamErr == nil || errors.Is(streamErr, context.Canceled))
	if streamErr == nil && !cancelled && s.ctx.Err() != nil {
		streamErr = s.ctx.Err()
	}

	if c.active == s {
		c.active = nil
		c.state = entities.ChatIdle
	}

	switch {
	case cancelled:
		c.logger.Debug("Completion stream cancelled", zap.String("message_id", s.messageID))
		c.emitLocked(entities.ChatEvent{Type: entities.EventCancelled, MessageID: s.messageID})
	case streamErr != nil:
		c.lastErr = streamErr
		c.logger.Warn("Completion stream failed", zap.String("message_id", s.messageID), zap.Error(streamErr))
		c.emitLocked(entities.ChatEvent{Type: entities.EventError, MessageID: s.messageID, Error: streamErr.Error()})
	default:
		c.logger.Debug("Completion stream finished", zap.String("message_id", s.messageID))
		c.emitLocked(entities.ChatEvent{Type: entities.EventDone, MessageID: s.messageID})
	}
}

// Cancel stops the active stream, keeping whatever text already arrived.
// It returns once the conversation is idle again and reports whether a
// stream was active.
func (c *Conversation) Cancel() bool {
	c.askMu.Lock()
	defer c.askMu.Unlock()
	return c.stopActive()
}

// stopActive cancels the active stream and waits until its goroutine exits.
func (c *Conversation) stopActive() bool {
	c.mu.Lock()
	s := c.active
	if s != nil {
		s.cancel()
	}
	c.mu.Unlock()
	if s == nil {
		return false
	}
	<-s.done
	return true
}

// Wait blocks until no stream is active or ctx is done.
func (c *Conversation) Wait(ctx context.Context) error {
	c.mu.Lock()
	s := c.active
	c.mu.Unlock()
	if s == nil {
		return nil
	}
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the lifecycle tag.
func (c *Conversation) State() entities.ChatState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// History returns a copy of the visible transcript. The system prompt is not part of it.
func (c *Conversation) History() []entities.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]entities.Message, len(c.history))
	copy(out, c.history)
	return out
}

// SystemPrompt returns the current system message.
func (c *Conversation) SystemPrompt() (entities.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.systemPrompt == nil {
		return entities.Message{}, false
	}
	return *c.systemPrompt, true
}

// LastError returns the failure of the most recent stream, if any.
func (c *Conversation) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Subscribe registers an observer. Events are dropped for subscribers whose
// buffer is full. The returned func unsubscribes and closes the channel.
func (c *Conversation) Subscribe(buffer int) (<-chan entities.ChatEvent, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan entities.ChatEvent, buffer)

	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = ch
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, id)
			c.mu.Unlock()
			close(ch)
		})
	}
}

func (c *Conversation) emitLocked(ev entities.ChatEvent) {
	for id, ch := range c.subscribers {
		select {
		case ch <- ev:
			continue
		default:
		}
		if !ev.Terminal() {
			c.logger.Debug("Dropping chat event for slow subscriber", zap.Int("subscriber", id), zap.String("type", string(ev.Type)))
			continue
		}
		// Terminal events must arrive: evict the oldest buffered event.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- ev:
		default:
		}
	}
}
