/*
Package ai produces assistant responses for the chat endpoint.

Responses are always delivered as a stream of text chunks so the HTTP handler
can flush tokens to the browser as they arrive. When no upstream API key is
configured, a local responder keeps the endpoint functional in limited mode.
*/
package ai

import "context"

// Message is one turn of conversation history sent to the engine.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes one completion request.
type Request struct {
	Messages     []Message
	Model        string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
}

// Engine generates a streamed completion. Implementations send chunks on the
// emit callback in order and return when the response is complete. A non-nil
// error means the stream ended abnormally; chunks already emitted stand.
type Engine interface {
	StreamCompletion(ctx context.Context, req Request, emit func(chunk string) error) error

	// Models lists the model identifiers this engine can serve.
	Models() []string
}
