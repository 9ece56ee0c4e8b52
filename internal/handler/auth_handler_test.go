package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roboveda/internal/app/ai"
	"roboveda/internal/app/devices"
	"roboveda/internal/app/users"
	"roboveda/internal/configs"
	"roboveda/internal/pkg/errs"
)

// envelope mirrors the standard response body.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, opts ...func(*AppDeps)) (*httptest.Server, *http.Client) {
	t.Helper()

	deps := &AppDeps{
		Config: &configs.AppConfig{
			Environment: "development",
			Port:        8080,
			JWTSecret:   "test-secret",
		},
		Users:       users.NewMemoryStore(),
		Devices:     devices.NewRegistry(),
		AI:          &ai.LocalEngine{},
		LimitedMode: true,
	}
	for _, opt := range opts {
		opt(deps)
	}

	srv := httptest.NewServer(Router(deps))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return srv, &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func signup(t *testing.T, client *http.Client, baseURL, email, username string) envelope {
	t.Helper()
	resp, env := doJSON(t, client, http.MethodPost, baseURL+"/api/auth/signup", map[string]string{
		"email":    email,
		"password": "Password1",
		"username": username,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Zero(t, env.Code)
	return env
}

func TestSignupLoginSessionLogoutFlow(t *testing.T) {
	srv, client := newTestServer(t)

	env := signup(t, client, srv.URL, "alice@example.com", "alice_1")
	var data struct {
		User userView `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "alice@example.com", data.User.Email)
	assert.Equal(t, "system", data.User.Preferences.Theme)
	assert.True(t, data.User.Preferences.Notifications)

	// The signup response set the session cookie; the probe succeeds.
	resp, env := doJSON(t, client, http.MethodGet, srv.URL+"/api/auth/session", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "alice_1", data.User.Username)

	resp, env = doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, env.Code)

	// The cookie is gone; the probe now reports no session.
	resp, env = doJSON(t, client, http.MethodGet, srv.URL+"/api/auth/session", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, errs.ErrUnauthorized, env.Code)
}

func TestSignupValidation(t *testing.T) {
	srv, client := newTestServer(t)

	cases := []struct {
		name     string
		body     map[string]string
		wantCode int
	}{
		{
			name:     "malformed email",
			body:     map[string]string{"email": "nope", "password": "Password1", "username": "bob_1"},
			wantCode: errs.ErrInvalidEmail,
		},
		{
			name:     "password too short",
			body:     map[string]string{"email": "bob@example.com", "password": "Pw1", "username": "bob_1"},
			wantCode: errs.ErrInvalidPassword,
		},
		{
			name:     "password missing digit",
			body:     map[string]string{"email": "bob@example.com", "password": "Passwords", "username": "bob_1"},
			wantCode: errs.ErrInvalidPassword,
		},
		{
			name:     "username with capitals",
			body:     map[string]string{"email": "bob@example.com", "password": "Password1", "username": "Bob"},
			wantCode: errs.ErrInvalidUsername,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, env := doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/signup", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tc.wantCode, env.Code)
		})
	}
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	srv, client := newTestServer(t)
	signup(t, client, srv.URL, "alice@example.com", "alice_1")

	resp, env := doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/signup", map[string]string{
		"email":    "alice@example.com",
		"password": "Password1",
		"username": "alice_2",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, errs.ErrUserAlreadyExists, env.Code)
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv, client := newTestServer(t)
	signup(t, client, srv.URL, "alice@example.com", "alice_1")

	resp, env := doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "WrongPass1",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, errs.ErrInvalidCredentials, env.Code)

	// Unknown email answers identically.
	resp, env = doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "Password1",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, errs.ErrInvalidCredentials, env.Code)
}

func TestUpdatePreferencesMerges(t *testing.T) {
	srv, client := newTestServer(t)
	signup(t, client, srv.URL, "alice@example.com", "alice_1")

	resp, env := doJSON(t, client, http.MethodPatch, srv.URL+"/api/user/preferences", map[string]any{
		"theme": "dark",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		User userView `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "dark", data.User.Preferences.Theme)
	// Untouched fields keep their defaults.
	assert.True(t, data.User.Preferences.Notifications)
	assert.Equal(t, "en", data.User.Preferences.Language)
}

func TestUpdateProfileRequiresAuth(t *testing.T) {
	srv, client := newTestServer(t)

	resp, env := doJSON(t, client, http.MethodPatch, srv.URL+"/api/user/profile", map[string]string{
		"username": "ghost_1",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, errs.ErrUnauthorized, env.Code)
}

func TestChatStreamEndpoint(t *testing.T) {
	srv, client := newTestServer(t)
	signup(t, client, srv.URL, "alice@example.com", "alice_1")

	body, err := json.Marshal(map[string]any{
		"messages": []map[string]string{{"role": "user", "content": "hello"}},
		"stream":   true,
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/ai/chat", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(raw)

	assert.Contains(t, text, `data: {"content":`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(text), "data: [DONE]"))
}

func TestChatRejectsEmptyHistory(t *testing.T) {
	srv, client := newTestServer(t)
	signup(t, client, srv.URL, "alice@example.com", "alice_1")

	resp, env := doJSON(t, client, http.MethodPost, srv.URL+"/api/ai/chat", map[string]any{
		"messages": []map[string]string{},
		"stream":   true,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, errs.ErrInvalidParams, env.Code)
}

func TestDeviceCommandValidation(t *testing.T) {
	srv, client := newTestServer(t)
	signup(t, client, srv.URL, "alice@example.com", "alice_1")

	resp, env := doJSON(t, client, http.MethodPost, srv.URL+"/api/devices/", map[string]string{
		"name": "scout",
		"type": "drone",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created struct {
		Device        devices.Device `json:"device"`
		ValidCommands []string       `json:"validCommands"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Contains(t, created.ValidCommands, "takeoff")

	cmdURL := fmt.Sprintf("%s/api/devices/%s/command", srv.URL, created.Device.ID)
	resp, env = doJSON(t, client, http.MethodPost, cmdURL, map[string]any{"command": "grab"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, errs.ErrCommandInvalid, env.Code)

	resp, env = doJSON(t, client, http.MethodPost, cmdURL, map[string]any{"command": "takeoff"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, env.Code)
}

func TestHealthReportsLimitedMode(t *testing.T) {
	srv, client := newTestServer(t)

	resp, env := doJSON(t, client, http.MethodGet, srv.URL+"/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		Status      string `json:"status"`
		LimitedMode bool   `json:"limitedMode"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "ok", data.Status)
	assert.True(t, data.LimitedMode)
}
