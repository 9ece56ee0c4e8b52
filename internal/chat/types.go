package chat

import "time"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single ordered conversation entry.
type Message struct {
	ID        string            `json:"id"`
	Role      Role              `json:"role"`
	Content   string            `json:"content"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// wireMessage is the role/content pair sent to the chat endpoint. Client-side
// fields like IDs and timestamps never go over the wire.
type wireMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the request body for the streaming chat endpoint.
type ChatRequest struct {
	Messages     []wireMessage `json:"messages"`
	Model        string        `json:"model,omitempty"`
	SystemPrompt string        `json:"systemPrompt,omitempty"`
	MaxTokens    int           `json:"maxTokens,omitempty"`
	Temperature  float64       `json:"temperature,omitempty"`
	Stream       bool          `json:"stream"`
}

// Options tune the upstream model for a conversation. Zero values are
// omitted from requests and the server applies its defaults.
type Options struct {
	Model        string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
}
