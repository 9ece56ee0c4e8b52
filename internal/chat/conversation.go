package chat

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"roboveda/internal/pkg/errs"
	"roboveda/internal/pkg/logx"
	"roboveda/internal/pkg/randx"
	"roboveda/internal/transport"
)

// ChatPath is the streaming completion endpoint.
const ChatPath = "/api/ai/chat"

// Streamer opens a line-delimited event stream. *transport.Client satisfies
// it; tests may substitute their own.
type Streamer interface {
	OpenStream(ctx context.Context, method, path string, body any) (*transport.LineStream, error)
}

// Snapshot is an immutable view of a conversation.
type Snapshot struct {
	Messages        []Message
	CurrentResponse string
	IsStreaming     bool
	Error           string
}

// Conversation owns an ordered message log and at most one in-flight
// streaming response. Starting a new stream cancels the previous one; the
// cancellation handle is replaced, never duplicated.
type Conversation struct {
	client Streamer
	opts   Options
	logger zerolog.Logger

	mu        sync.Mutex
	messages  []Message
	current   string
	streaming bool
	errMsg    string
	cancel    context.CancelFunc
	gen       uint64

	subs    map[int]func(Snapshot)
	nextSub int
}

// NewConversation builds an empty conversation over the given stream client.
func NewConversation(client Streamer, opts Options) *Conversation {
	return &Conversation{
		client: client,
		opts:   opts,
		logger: logx.Component("Conversation"),
		subs:   make(map[int]func(Snapshot)),
	}
}

// Snapshot returns the current state.
func (c *Conversation) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers a listener invoked after every commit. The returned
// function removes the listener.
func (c *Conversation) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Conversation) snapshotLocked() Snapshot {
	return Snapshot{
		Messages:        append([]Message(nil), c.messages...),
		CurrentResponse: c.current,
		IsStreaming:     c.streaming,
		Error:           c.errMsg,
	}
}

func (c *Conversation) notify() {
	c.mu.Lock()
	snap := c.snapshotLocked()
	listeners := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// SendMessage appends a user message and starts streaming the assistant
// reply. The user message is committed before any network activity. Blank
// content is a no-op. A call made while a previous stream is in flight
// cancels that stream first; the superseded turn appends no assistant
// message. Stream failures surface through the snapshot error field, never
// as a return value.
func (c *Conversation) SendMessage(ctx context.Context, content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}

	c.mu.Lock()
	c.messages = append(c.messages, Message{
		ID:        randx.MessageID(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	})

	// Cancel-then-replace: exactly one stream may be live.
	if c.cancel != nil {
		c.cancel()
	}
	streamCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.gen++
	gen := c.gen
	c.streaming = true
	c.current = ""
	c.errMsg = ""
	req := c.requestLocked()
	c.mu.Unlock()
	c.notify()

	go c.stream(streamCtx, gen, req)
}

// requestLocked builds the wire request from the full message history.
func (c *Conversation) requestLocked() ChatRequest {
	wire := make([]wireMessage, 0, len(c.messages))
	for _, m := range c.messages {
		wire = append(wire, wireMessage{Role: m.Role, Content: m.Content})
	}
	return ChatRequest{
		Messages:     wire,
		Model:        c.opts.Model,
		SystemPrompt: c.opts.SystemPrompt,
		MaxTokens:    c.opts.MaxTokens,
		Temperature:  c.opts.Temperature,
		Stream:       true,
	}
}

// stream consumes one response stream. Every commit is guarded by the
// generation captured at start, so a superseded stream can never write over
// its successor's state.
func (c *Conversation) stream(ctx context.Context, gen uint64, req ChatRequest) {
	ls, err := c.client.OpenStream(ctx, http.MethodPost, ChatPath, req)
	if err != nil {
		c.finish(gen, "", err)
		return
	}
	defer ls.Close()

	var sb strings.Builder
	for {
		chunk, err := ls.Next()
		if err == io.EOF {
			c.finish(gen, sb.String(), nil)
			return
		}
		if err != nil {
			c.finish(gen, sb.String(), err)
			return
		}

		sb.WriteString(chunk)
		if !c.commitPartial(gen, sb.String()) {
			return
		}
	}
}

// commitPartial publishes the accumulator. Returns false when the turn has
// been superseded.
func (c *Conversation) commitPartial(gen uint64, partial string) bool {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return false
	}
	c.current = partial
	c.mu.Unlock()
	c.notify()
	return true
}

// finish settles a turn. Clean completion appends the accumulated text as an
// assistant message. Cancellation abandons the accumulator silently; other
// failures set the visible error and leave prior messages intact. The
// accumulator is cleared on every path.
func (c *Conversation) finish(gen uint64, accumulated string, err error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.streaming = false
	c.current = ""
	// Release the turn's context so it detaches from its parent; a settled
	// turn must not hold a live cancellation handle.
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	switch {
	case err == nil:
		if accumulated != "" {
			c.messages = append(c.messages, Message{
				ID:        randx.MessageID(),
				Role:      RoleAssistant,
				Content:   accumulated,
				Timestamp: time.Now(),
			})
		}
	case errs.IsCancelled(err):
		// Expected when stopped or superseded. Not an error state.
	default:
		c.errMsg = errorMessage(err)
		c.logger.Warn().Err(err).Msg("Streaming request failed.")
	}
	c.mu.Unlock()
	c.notify()
}

// StopStreaming cancels the in-flight stream, if any. The partial response
// is discarded; no assistant message is appended for the stopped turn.
func (c *Conversation) StopStreaming() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// ClearMessages cancels any in-flight stream and empties the log.
func (c *Conversation) ClearMessages() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	c.messages = nil
	c.current = ""
	c.streaming = false
	c.errMsg = ""
	c.mu.Unlock()
	c.notify()
}

// RegenerateLastResponse truncates the log to just before the most recent
// user message and re-sends that content. No-op when the log has fewer than
// two messages or holds no user message.
func (c *Conversation) RegenerateLastResponse(ctx context.Context) {
	c.mu.Lock()
	if len(c.messages) < 2 {
		c.mu.Unlock()
		return
	}

	idx := -1
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == RoleUser {
			idx = i
			break
		}
	}
	if idx == -1 {
		c.mu.Unlock()
		return
	}

	content := c.messages[idx].Content
	c.messages = c.messages[:idx]
	c.mu.Unlock()
	c.notify()

	c.SendMessage(ctx, content)
}

func errorMessage(err error) string {
	var ce *errs.CustomError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return err.Error()
}
