package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"roboveda/internal/app/ai"
	"roboveda/internal/pkg/auth/jwt"
	"roboveda/internal/pkg/errs"
	"roboveda/internal/pkg/logx"
	"roboveda/internal/pkg/req"
	"roboveda/internal/pkg/resp"
)

type ChatInput struct {
	Messages     []ai.Message `json:"messages"`
	Model        string       `json:"model"`
	SystemPrompt string       `json:"systemPrompt"`
	MaxTokens    int          `json:"maxTokens"`
	Temperature  float64      `json:"temperature"`
	Stream       bool         `json:"stream"`
}

// streamChunk is one line of the chat stream body. Exactly one of the two
// fields is set.
type streamChunk struct {
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HandleChat serves assistant completions. With stream:true the response is
// newline-delimited "data: {json}" chunks ending in "data: [DONE]"; each
// chunk is flushed as it is produced. Without streaming the full completion
// is returned in the standard envelope.
func HandleChat(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input ChatInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if len(input.Messages) == 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		engineReq := ai.Request{
			Messages:     input.Messages,
			Model:        input.Model,
			SystemPrompt: input.SystemPrompt,
			MaxTokens:    input.MaxTokens,
			Temperature:  input.Temperature,
		}

		if !input.Stream {
			var sb strings.Builder
			err := deps.AI.StreamCompletion(r.Context(), engineReq, func(chunk string) error {
				sb.WriteString(chunk)
				return nil
			})
			if err != nil {
				logx.Error(err, "chat completion failed", "user_id", identity.ID)
				resp.RespondError(w, r, errs.NewError(errs.ErrAIUnavailable))
				return
			}
			resp.RespondSuccess(w, r, map[string]any{"message": sb.String()})
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		writeChunk := func(c streamChunk) {
			payload, err := json.Marshal(c)
			if err != nil {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}

		err := deps.AI.StreamCompletion(r.Context(), engineReq, func(chunk string) error {
			writeChunk(streamChunk{Content: chunk})
			return nil
		})
		if err != nil {
			// Headers are gone; the failure rides the stream as a chunk.
			if r.Context().Err() == nil {
				logx.Error(err, "chat stream failed", "user_id", identity.ID)
				writeChunk(streamChunk{Error: "AI service error"})
			}
			return
		}

		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}
}

// HandleListModels reports the models the configured engine serves and
// whether a real upstream is available.
func HandleListModels(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		available := deps.Config.AIAPIKey != ""
		models := deps.AI.Models()

		out := make([]map[string]any, 0, len(models))
		for _, m := range models {
			out = append(out, map[string]any{
				"id":        m,
				"available": available || m == "roboveda-local",
			})
		}

		resp.RespondSuccess(w, r, map[string]any{"models": out})
	}
}
