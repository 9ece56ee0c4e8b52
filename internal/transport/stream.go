package transport

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"roboveda/internal/pkg/errs"
)

const (
	// EventPrefix marks a payload-carrying line in the chat stream.
	EventPrefix = "data: "

	// DoneSentinel terminates the stream normally.
	DoneSentinel = "[DONE]"

	// maxLineSize bounds a single stream line (1 MB).
	maxLineSize = 1 << 20
)

// Chunk is one structured payload of the chat stream. A chunk carries either
// incremental content or an error; an error abandons the stream.
type Chunk struct {
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// LineStream decodes a line-delimited event stream incrementally. Lines
// prefixed with EventPrefix carry payload; the DoneSentinel ends the stream;
// any other non-empty line is kept as raw fallback text when it does not
// parse as a structured chunk, so unknown framing degrades to visible text
// instead of an error.
type LineStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	closed  bool
}

// NewLineStream wraps a response body. The caller owns the stream and must
// Close it on success, error, and cancellation alike.
func NewLineStream(body io.ReadCloser) *LineStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	return &LineStream{
		body:    body,
		scanner: scanner,
	}
}

// Next returns the next content token. It returns io.EOF on a clean end
// (the sentinel or the underlying stream closing), a cancellation/timeout
// CustomError when the context governing the body fires, and a generic error
// when the server reports one mid-stream.
func (s *LineStream) Next() (string, error) {
	for {
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return "", errs.FromContext(err)
			}
			return "", io.EOF
		}

		line := strings.TrimRight(s.scanner.Text(), "\r")
		if line == "" {
			continue
		}

		payload := line
		if strings.HasPrefix(line, EventPrefix) {
			payload = line[len(EventPrefix):]
			if payload == DoneSentinel {
				return "", io.EOF
			}
		}

		var chunk Chunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			// Forward-compatibility fallback: unknown framing is surfaced
			// as raw text, not treated as a failure.
			return payload, nil
		}

		if chunk.Error != "" {
			return "", &errs.CustomError{Code: errs.ErrAIUnavailable, Message: chunk.Error}
		}

		if chunk.Content == "" {
			continue
		}
		return chunk.Content, nil
	}
}

// Close releases the underlying reader and connection. Safe to call twice.
func (s *LineStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
