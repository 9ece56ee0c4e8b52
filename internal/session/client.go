package session

import (
	"context"
	"net/http"

	"roboveda/internal/transport"
)

// API is the session backend consumed by the Store. The reference backend in
// internal/handler implements the server side of this contract.
type API interface {
	// Login exchanges credentials for the account identity. The backend sets
	// the HTTP-only session cookie as part of the response.
	Login(ctx context.Context, email, password string) (*User, error)

	// Signup registers a new account and signs it in.
	Signup(ctx context.Context, email, password, username string) (*User, error)

	// Session returns the identity bound to the current cookie, or nil when
	// no valid session exists.
	Session(ctx context.Context) (*User, error)

	// Logout invalidates the server-side session.
	Logout(ctx context.Context) error
}

// Client talks to the session endpoints over the shared transport.
type Client struct {
	http *transport.Client
}

// NewClient returns a session API client.
func NewClient(t *transport.Client) *Client {
	return &Client{http: t}
}

type credentialsInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
}

// userEnvelope mirrors the backend's standard success envelope.
type userEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		User *User `json:"user"`
	} `json:"data"`
}

// Login implements API.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var envelope userEnvelope
	input := credentialsInput{Email: email, Password: password}

	if err := c.http.DoJSON(ctx, http.MethodPost, "/api/auth/login", input, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data.User, nil
}

// Signup implements API.
func (c *Client) Signup(ctx context.Context, email, password, username string) (*User, error) {
	var envelope userEnvelope
	input := credentialsInput{Email: email, Password: password, Username: username}

	if err := c.http.DoJSON(ctx, http.MethodPost, "/api/auth/signup", input, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data.User, nil
}

// Session implements API. A 200 response with a null user means no session.
func (c *Client) Session(ctx context.Context) (*User, error) {
	var envelope userEnvelope

	if err := c.http.DoJSON(ctx, http.MethodGet, "/api/auth/session", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data.User, nil
}

// Logout implements API.
func (c *Client) Logout(ctx context.Context) error {
	return c.http.DoJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}
