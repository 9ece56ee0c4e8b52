package ai

import (
	"context"
	"strings"
	"time"
)

// LocalEngine is the limited-mode responder used when no upstream API key is
// configured. It streams a canned reply word by word so clients exercise the
// same incremental rendering path as with a real model.
type LocalEngine struct {
	// ChunkDelay spaces out emitted words. Zero means no delay; tests use
	// that to run instantly.
	ChunkDelay time.Duration
}

const localModelName = "roboveda-local"

func (e *LocalEngine) Models() []string {
	return []string{localModelName}
}

func (e *LocalEngine) StreamCompletion(ctx context.Context, req Request, emit func(string) error) error {
	reply := localReply(lastUserContent(req.Messages))

	words := strings.Fields(reply)
	for i, word := range words {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk := word
		if i < len(words)-1 {
			chunk += " "
		}
		if err := emit(chunk); err != nil {
			return err
		}
		if e.ChunkDelay > 0 {
			select {
			case <-time.After(e.ChunkDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

func lastUserContent(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}

func localReply(prompt string) string {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi"):
		return "Hello! I am the RoboVeda assistant running in limited mode. Connect an AI provider to unlock full responses."
	case strings.Contains(lower, "drone") || strings.Contains(lower, "robot") || strings.Contains(lower, "rover"):
		return "Device control is available from the devices panel. In limited mode I can only describe commands, not reason about them."
	case prompt == "":
		return "I did not receive a prompt. Ask me about your devices or wallet to get started."
	default:
		return "I am running in limited mode without an upstream AI provider, so I can only give canned responses. Set AI_API_KEY to enable real completions."
	}
}
