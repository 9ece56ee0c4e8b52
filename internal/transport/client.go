/*
Package transport provides the client-side HTTP primitives shared by the state
stores: JSON request execution with a fixed wall-clock timeout and context
cancellation, plus a line-delimited event stream reader.

Every network call is a suspension point for the stores. The transport maps
failures onto the errs taxonomy so callers can branch on kind: deadline expiry
becomes ErrTimeout, cancellation becomes ErrCancelled, anything else before a
response arrives becomes ErrNetwork, and non-2xx responses carry the server's
business code when the body parses as the standard envelope.
*/
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"roboveda/internal/pkg/errs"
)

const (
	// DefaultTimeout is the wall-clock budget for a single request/response
	// exchange. Streaming requests are exempt; they live until cancelled.
	DefaultTimeout = 30 * time.Second

	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
)

// Client executes JSON requests against the backend API. It owns a cookie jar
// so the HTTP-only session cookie set by login/signup rides along on later
// calls without the stores ever touching it.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides the per-request wall-clock timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient substitutes the underlying http.Client (tests use this to
// share a jar with httptest servers).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient returns a Client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Jar: jar},
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		c.httpClient.Jar = jar
	}
	return c
}

// DoJSON performs a request with a JSON body and decodes a JSON response into
// result (which may be nil). The returned error is always a *errs.CustomError.
func (c *Client) DoJSON(ctx context.Context, method, path string, body, result any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.open(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.FromContext(err)
	}

	if resp.StatusCode >= 400 {
		return ParseAPIError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return errs.NewError(errs.ErrInvalidJSONFormat)
		}
	}

	return nil
}

// OpenStream performs a request whose response is consumed incrementally.
// No wall-clock timeout applies; the caller's context governs the lifetime.
// On a non-2xx status the body is drained, closed, and converted to an error.
// The caller must Close the returned stream on every path.
func (c *Client) OpenStream(ctx context.Context, method, path string, body any) (*LineStream, error) {
	resp, err := c.open(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()
		return nil, ParseAPIError(resp.StatusCode, respBody)
	}

	return NewLineStream(resp.Body), nil
}

// open builds and executes the request, classifying transport failures.
func (c *Client) open(ctx context.Context, method, path string, body any) (*http.Response, error) {
	reqURL, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, errs.NewError(errs.ErrInvalidParams)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}
	if body != nil {
		req.Header.Set(headerContentType, contentTypeJSON)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.FromContext(err)
	}
	return resp, nil
}

// ParseAPIError converts a non-2xx response into a *errs.CustomError.
// The standard envelope {code, message} is preferred; anything else falls
// back to a generic error carrying the HTTP status.
func ParseAPIError(statusCode int, body []byte) *errs.CustomError {
	var envelope struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}

	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Code != 0 {
		return &errs.CustomError{
			Code:    envelope.Code,
			Message: envelope.Message,
			Status:  statusCode,
		}
	}

	// Some collaborators answer with a bare {message} body.
	var simple struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &simple); err == nil && simple.Message != "" {
		return &errs.CustomError{
			Code:    errs.ErrNetwork,
			Message: simple.Message,
			Status:  statusCode,
		}
	}

	return &errs.CustomError{
		Code:    errs.ErrNetwork,
		Message: http.StatusText(statusCode),
		Status:  statusCode,
	}
}
