package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roboveda/internal/pkg/errs"
)

func TestDoJSONSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"code":0,"message":"success","data":{"value":"pong"}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	var out struct {
		Data struct {
			Value string `json:"value"`
		} `json:"data"`
	}
	err := c.DoJSON(context.Background(), http.MethodPost, "/ping", map[string]string{"q": "x"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "pong", out.Data.Value)
}

func TestDoJSONTimeoutKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithTimeout(30*time.Millisecond))
	err := c.DoJSON(context.Background(), http.MethodGet, "/slow", nil, nil)
	require.Error(t, err)
	assert.True(t, errs.IsTimeout(err))
	assert.False(t, errs.IsCancelled(err))
}

func TestDoJSONCancelledKind(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	c := NewClient(srv.URL)
	err := c.DoJSON(ctx, http.MethodGet, "/held", nil, nil)
	require.Error(t, err)
	assert.True(t, errs.IsCancelled(err))
	assert.False(t, errs.IsTimeout(err))
}

func TestDoJSONNetworkKind(t *testing.T) {
	// Nothing listens on this port.
	c := NewClient("http://127.0.0.1:1")
	err := c.DoJSON(context.Background(), http.MethodGet, "/", nil, nil)
	require.Error(t, err)
	assert.Equal(t, errs.ErrNetwork, errs.CodeOf(err))
}

func TestDoJSONParsesEnvelopeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"code":3002,"message":"Incorrect email or password."}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.DoJSON(context.Background(), http.MethodPost, "/login", map[string]string{}, nil)
	require.Error(t, err)

	assert.Equal(t, errs.ErrInvalidCredentials, errs.CodeOf(err))
	var ce *errs.CustomError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, http.StatusUnauthorized, ce.Status)
	assert.Equal(t, "Incorrect email or password.", ce.Message)
}

func TestDoJSONFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.DoJSON(context.Background(), http.MethodGet, "/", nil, nil)
	require.Error(t, err)

	var ce *errs.CustomError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errs.ErrNetwork, ce.Code)
	assert.Equal(t, http.StatusBadGateway, ce.Status)
}

func TestCookieJarCarriesSessionAcrossRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			http.SetCookie(w, &http.Cookie{Name: "roboveda_session", Value: "tok", Path: "/"})
			fmt.Fprint(w, `{}`)
		case "/session":
			cookie, err := r.Cookie("roboveda_session")
			if err != nil || cookie.Value != "tok" {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"code":3001,"message":"Sign in required."}`)
				return
			}
			fmt.Fprint(w, `{}`)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	require.NoError(t, c.DoJSON(context.Background(), http.MethodPost, "/login", nil, nil))
	require.NoError(t, c.DoJSON(context.Background(), http.MethodGet, "/session", nil, nil))
}

func TestOpenStreamNonOKConvertsToError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"code":5101,"message":"AI service unavailable."}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	stream, err := c.OpenStream(context.Background(), http.MethodPost, "/chat", map[string]any{})
	require.Error(t, err)
	assert.Nil(t, stream)
	assert.Equal(t, errs.ErrAIUnavailable, errs.CodeOf(err))
}
