package apiclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/DataRockMyWorld/workshopctl/internal/config"
	"github.com/DataRockMyWorld/workshopctl/internal/session"
	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogin(t *testing.T) {
	var auth string
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		var body loginRequest
		b, _ := io.ReadAll(r.Body)
		_ = sonic.Unmarshal(b, &body)
		if body.Email != "admin@test.com" || body.Password != "testpass123" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "No active account found with the given credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"access": "a1", "refresh": "r1"})
	})
	c, _, _ := newTestClient(t, mux, session.Record{Access: "stale"})

	tokens, err := c.Login(context.Background(), "admin@test.com", "testpass123")
	require.NoError(t, err)
	assert.Equal(t, session.Tokens{Access: "a1", Refresh: "r1"}, tokens)
	assert.Empty(t, auth)

	_, err = c.Login(context.Background(), "admin@test.com", "wrong")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "No active account found with the given credentials", ErrorMessage(err))
}

func TestLogin_MissingAccess(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"refresh": "r1"})
	})
	c, _, _ := newTestClient(t, h, session.Record{})

	_, err := c.Login(context.Background(), "a@b.c", "x")
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/refresh/", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"access": "a2"})
	})
	c, _, _ := newTestClient(t, h, session.Record{})

	tokens, err := c.RefreshToken(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "a2", tokens.Access)
	assert.Empty(t, tokens.Refresh)

	_, err = c.RefreshToken(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoRefreshToken)
}

func TestLogout(t *testing.T) {
	var calls atomic.Int32
	var sent string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var body refreshRequest
		b, _ := io.ReadAll(r.Body)
		_ = sonic.Unmarshal(b, &body)
		sent = body.Refresh
		w.WriteHeader(http.StatusResetContent)
	})
	c, _, _ := newTestClient(t, h, session.Record{})

	c.Logout(context.Background(), "")
	assert.Zero(t, calls.Load(), "no refresh token, no request")

	c.Logout(context.Background(), "r1")
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "r1", sent)
}

func TestLogout_SwallowsFailures(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	cfg := config.Defaults()
	cfg.API.BaseURL = base
	c := New(&cfg, session.New(session.NewMemoryStore()), zap.NewNop())

	assert.NotPanics(t, func() { c.Logout(context.Background(), "r1") })
}
