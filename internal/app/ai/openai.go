package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultModel       = "gpt-4"
	defaultTemperature = 0.7
	defaultMaxTokens   = 1000
)

// OpenAIEngine proxies completions to an OpenAI-compatible chat API and
// re-streams the deltas.
type OpenAIEngine struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOpenAIEngine builds an engine for the given upstream. baseURL points at
// the API root (for example https://api.openai.com/v1); model is the default
// used when a request names none.
func NewOpenAIEngine(apiKey, baseURL, model string) *OpenAIEngine {
	if model == "" {
		model = defaultModel
	}
	return &OpenAIEngine{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		// No client timeout: streams stay open as long as the upstream
		// produces tokens. The request context bounds the call instead.
		httpClient: &http.Client{Timeout: 0},
	}
}

func (e *OpenAIEngine) Models() []string {
	models := []string{e.model}
	for _, m := range []string{"gpt-4", "gpt-3.5-turbo"} {
		if m != e.model {
			models = append(models, m)
		}
	}
	return models
}

type upstreamRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

type upstreamDelta struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (e *OpenAIEngine) StreamCompletion(ctx context.Context, req Request, emit func(string) error) error {
	messages := req.Messages
	if req.SystemPrompt != "" {
		messages = append([]Message{{Role: "system", Content: req.SystemPrompt}}, messages...)
	}

	model := req.Model
	if model == "" {
		model = e.model
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	body, err := json.Marshal(upstreamRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Stream:      true,
	})
	if err != nil {
		return fmt.Errorf("encode upstream request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build upstream request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+e.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("upstream returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	return e.relay(resp.Body, emit)
}

// relay reads the upstream SSE stream and forwards each content delta.
func (e *OpenAIEngine) relay(body io.Reader, emit func(string) error) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			return nil
		}

		var delta upstreamDelta
		if err := json.Unmarshal([]byte(payload), &delta); err != nil {
			// Unparseable keep-alive or vendor extension; skip it.
			continue
		}
		if len(delta.Choices) == 0 || delta.Choices[0].Delta.Content == "" {
			continue
		}
		if err := emit(delta.Choices[0].Delta.Content); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read upstream stream: %w", err)
	}
	// Upstream closed without the done sentinel. Treat what arrived as the
	// full response rather than failing the turn.
	return nil
}
