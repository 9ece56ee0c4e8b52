package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roboveda/internal/transport"
)

const waitFor = 3 * time.Second

// streamServer serves the chat endpoint, delegating each request to fn with
// the decoded request and a chunk writer.
func streamServer(t *testing.T, fn func(r *http.Request, req ChatRequest, write func(chunk string), done func())) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req ChatRequest
		require.NoError(t, json.Unmarshal(body, &req))

		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)

		write := func(chunk string) {
			payload, _ := json.Marshal(map[string]string{"content": chunk})
			fmt.Fprintf(w, "data: %s\n", payload)
			flusher.Flush()
		}
		done := func() {
			fmt.Fprint(w, "data: [DONE]\n")
			flusher.Flush()
		}

		fn(r, req, write, done)
	}))
}

func lastUserMessage(req ChatRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == RoleUser {
			return req.Messages[i].Content
		}
	}
	return ""
}

func newTestConversation(serverURL string) *Conversation {
	return NewConversation(transport.NewClient(serverURL), Options{Model: "gpt-4"})
}

func waitSnapshot(t *testing.T, c *Conversation, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	var snap Snapshot
	require.Eventually(t, func() bool {
		snap = c.Snapshot()
		return cond(snap)
	}, waitFor, 5*time.Millisecond)
	return snap
}

func TestSendMessageAppendsUserMessageImmediately(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	srv := streamServer(t, func(r *http.Request, _ ChatRequest, write func(string), done func()) {
		close(started)
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		write("ok")
		done()
	})
	defer srv.Close()
	defer close(release)

	c := newTestConversation(srv.URL)
	c.SendMessage(context.Background(), "hello there")

	// The user message is committed before the response arrives.
	snap := c.Snapshot()
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, RoleUser, snap.Messages[0].Role)
	assert.Equal(t, "hello there", snap.Messages[0].Content)
	assert.True(t, snap.IsStreaming)
	<-started
}

func TestStreamAccumulatesIntoOneAssistantMessage(t *testing.T) {
	srv := streamServer(t, func(_ *http.Request, _ ChatRequest, write func(string), done func()) {
		write("He")
		write("llo")
		done()
	})
	defer srv.Close()

	c := newTestConversation(srv.URL)
	c.SendMessage(context.Background(), "hi")

	snap := waitSnapshot(t, c, func(s Snapshot) bool {
		return !s.IsStreaming && len(s.Messages) == 2
	})
	assert.Equal(t, RoleAssistant, snap.Messages[1].Role)
	assert.Equal(t, "Hello", snap.Messages[1].Content)
	assert.Empty(t, snap.CurrentResponse)
	assert.Empty(t, snap.Error)
}

func TestBlankContentIsNoop(t *testing.T) {
	c := newTestConversation("http://localhost:1")

	c.SendMessage(context.Background(), "   ")

	snap := c.Snapshot()
	assert.Empty(t, snap.Messages)
	assert.False(t, snap.IsStreaming)
}

func TestSingleFlightSupersedingCall(t *testing.T) {
	srv := streamServer(t, func(r *http.Request, req ChatRequest, write func(string), done func()) {
		if lastUserMessage(req) == "a" {
			// Hold the first stream open until it is cancelled by the
			// superseding call.
			<-r.Context().Done()
			return
		}
		write("B")
		done()
	})
	defer srv.Close()

	c := newTestConversation(srv.URL)
	c.SendMessage(context.Background(), "a")
	c.SendMessage(context.Background(), "b")

	snap := waitSnapshot(t, c, func(s Snapshot) bool {
		return !s.IsStreaming && len(s.Messages) == 3
	})

	// Exactly one assistant message, belonging to the second turn.
	assert.Equal(t, "a", snap.Messages[0].Content)
	assert.Equal(t, "b", snap.Messages[1].Content)
	assert.Equal(t, RoleAssistant, snap.Messages[2].Role)
	assert.Equal(t, "B", snap.Messages[2].Content)
	assert.Empty(t, snap.Error)

	// The abandoned first stream must never append a fourth message.
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, c.Snapshot().Messages, 3)
}

func TestStopStreamingAbandonsPartialResponse(t *testing.T) {
	srv := streamServer(t, func(r *http.Request, _ ChatRequest, write func(string), _ func()) {
		write("part")
		<-r.Context().Done()
	})
	defer srv.Close()

	c := newTestConversation(srv.URL)
	c.SendMessage(context.Background(), "hi")

	waitSnapshot(t, c, func(s Snapshot) bool {
		return s.CurrentResponse == "part"
	})

	c.StopStreaming()

	snap := waitSnapshot(t, c, func(s Snapshot) bool {
		return !s.IsStreaming
	})
	assert.Len(t, snap.Messages, 1)
	assert.Empty(t, snap.CurrentResponse)
	// Cancellation is expected, not an error state.
	assert.Empty(t, snap.Error)
}

func TestErrorChunkSurfacesAsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "data: {\"error\":\"model exploded\"}\n")
	}))
	defer srv.Close()

	c := newTestConversation(srv.URL)
	c.SendMessage(context.Background(), "hi")

	snap := waitSnapshot(t, c, func(s Snapshot) bool {
		return !s.IsStreaming && s.Error != ""
	})
	// Prior messages stay intact and no assistant message is appended.
	assert.Len(t, snap.Messages, 1)
	assert.Empty(t, snap.CurrentResponse)
}

func TestRequestFailureSetsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"code":5101,"message":"AI service unavailable."}`)
	}))
	defer srv.Close()

	c := newTestConversation(srv.URL)
	c.SendMessage(context.Background(), "hi")

	snap := waitSnapshot(t, c, func(s Snapshot) bool {
		return !s.IsStreaming && s.Error != ""
	})
	assert.Equal(t, "AI service unavailable.", snap.Error)
	assert.Len(t, snap.Messages, 1)
}

func TestClearMessagesCancelsAndEmpties(t *testing.T) {
	srv := streamServer(t, func(r *http.Request, _ ChatRequest, write func(string), _ func()) {
		write("part")
		<-r.Context().Done()
	})
	defer srv.Close()

	c := newTestConversation(srv.URL)
	c.SendMessage(context.Background(), "hi")
	waitSnapshot(t, c, func(s Snapshot) bool { return s.CurrentResponse == "part" })

	c.ClearMessages()

	snap := c.Snapshot()
	assert.Empty(t, snap.Messages)
	assert.Empty(t, snap.CurrentResponse)
	assert.False(t, snap.IsStreaming)
	assert.Empty(t, snap.Error)
}

func TestRegenerateLastResponse(t *testing.T) {
	var turns atomic.Int64
	srv := streamServer(t, func(_ *http.Request, _ ChatRequest, write func(string), done func()) {
		write(fmt.Sprintf("answer %d", turns.Add(1)))
		done()
	})
	defer srv.Close()

	c := newTestConversation(srv.URL)
	c.SendMessage(context.Background(), "question")
	waitSnapshot(t, c, func(s Snapshot) bool { return len(s.Messages) == 2 })

	c.RegenerateLastResponse(context.Background())

	snap := waitSnapshot(t, c, func(s Snapshot) bool {
		return !s.IsStreaming && len(s.Messages) == 2 && s.Messages[1].Content == "answer 2"
	})
	assert.Equal(t, "question", snap.Messages[0].Content)
	assert.Equal(t, RoleAssistant, snap.Messages[1].Role)
}

// recordingStreamer serves a fixed two-chunk stream and records the context
// of the most recent call.
type recordingStreamer struct {
	mu  sync.Mutex
	ctx context.Context
}

func (s *recordingStreamer) OpenStream(ctx context.Context, _, _ string, _ any) (*transport.LineStream, error) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	return transport.NewLineStream(io.NopCloser(strings.NewReader(
		"data: {\"content\":\"done\"}\ndata: [DONE]\n"))), nil
}

func (s *recordingStreamer) lastContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

func TestSettledTurnReleasesItsContext(t *testing.T) {
	streamer := &recordingStreamer{}
	c := NewConversation(streamer, Options{})

	parent, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.SendMessage(parent, "hi")

	waitSnapshot(t, c, func(s Snapshot) bool {
		return !s.IsStreaming && len(s.Messages) == 2
	})

	// The turn's context must be cancelled once the turn settles so it
	// detaches from the still-live parent.
	require.Eventually(t, func() bool {
		turnCtx := streamer.lastContext()
		return turnCtx != nil && turnCtx.Err() != nil
	}, waitFor, 5*time.Millisecond)
	assert.NoError(t, parent.Err())
}

func TestRegenerateNoopWithoutPriorExchange(t *testing.T) {
	c := newTestConversation("http://localhost:1")

	c.RegenerateLastResponse(context.Background())
	assert.Empty(t, c.Snapshot().Messages)
}
