package entities

import "github.com/google/uuid"

// Role tags the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one conversation turn. User messages never change after creation;
// assistant messages only grow while their stream is active.
type Message struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewMessage creates a message with a fresh identity.
func NewMessage(role Role, content string) Message {
	return Message{ID: uuid.NewString(), Role: role, Content: content}
}

// ChatState is the conversation lifecycle tag.
type ChatState string

const (
	ChatIdle      ChatState = "idle"
	ChatStreaming ChatState = "streaming"
)

// ChatMessage is the provider-agnostic wire form of a message.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is an ordered, role-tagged message list plus a model identifier.
type ChatRequest struct {
	Model    string
	Messages []ChatMessage
}

// ChatEventType enumerates conversation notifications.
type ChatEventType string

const (
	EventDelta     ChatEventType = "delta"
	EventDone      ChatEventType = "done"
	EventError     ChatEventType = "error"
	EventCancelled ChatEventType = "cancelled"
)

// ChatEvent notifies observers about a streaming assistant message.
type ChatEvent struct {
	Type      ChatEventType `json:"type"`
	MessageID string        `json:"message_id"`
	Delta     string        `json:"delta,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Terminal reports whether no further events follow for this message.
func (e ChatEvent) Terminal() bool {
	return e.Type != EventDelta
}
