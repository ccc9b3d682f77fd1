package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DataRockMyWorld/workshopctl/internal/config"
	"github.com/DataRockMyWorld/workshopctl/internal/session"
	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, h http.Handler, rec session.Record) (*Client, *session.Session, *session.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(ctx, rec))
	sess := session.New(store)
	require.NoError(t, sess.Load(ctx))

	cfg := config.Defaults()
	cfg.API.BaseURL = srv.URL
	return New(&cfg, sess, zap.NewNop(), WithHTTPClient(srv.Client())), sess, store
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	b, _ := sonic.Marshal(v)
	_, _ = w.Write(b)
}

func TestBuildURL(t *testing.T) {
	cfg := config.Defaults()
	cfg.API.BaseURL = "http://api.test/"
	c := New(&cfg, session.New(session.NewMemoryStore()), nil)

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "empty path", path: "", expected: "http://api.test/api/v1"},
		{name: "leading slash", path: "/customers/", expected: "http://api.test/api/v1/customers/"},
		{name: "no leading slash", path: "customers/1/", expected: "http://api.test/api/v1/customers/1/"},
		{name: "many leading slashes", path: "///me/", expected: "http://api.test/api/v1/me/"},
		{name: "query string kept", path: "service_request/?page=2", expected: "http://api.test/api/v1/service_request/?page=2"},
		{name: "auth path unprefixed", path: "/auth/login/", expected: "http://api.test/auth/login/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.buildURL(tt.path))
		})
	}
}

func TestDo_EmptyBodies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/service_request/7/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/api/v1/broken/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>not json</html>")
	})
	c, _, _ := newTestClient(t, mux, session.Record{Access: "a1", Refresh: "r1"})

	resp, err := c.Do(context.Background(), "service_request/7/", WithMethod(http.MethodDelete))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status)
	assert.Equal(t, map[string]any{}, resp.Data)

	resp, err = c.Do(context.Background(), "broken/")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, resp.Data)

	var out struct {
		ID int `json:"id"`
	}
	require.NoError(t, resp.Decode(&out))
	assert.Zero(t, out.ID)
}

func TestDo_Headers(t *testing.T) {
	var got http.Header
	var gotBody []byte
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		writeJSON(w, http.StatusOK, map[string]any{"id": 1})
	})
	c, _, _ := newTestClient(t, h, session.Record{Access: "a1", Refresh: "r1"})
	ctx := context.Background()

	t.Run("json body", func(t *testing.T) {
		_, err := c.Do(ctx, "customers/", WithMethod(http.MethodPost), WithJSON(map[string]string{"name": "Ama"}))
		require.NoError(t, err)
		assert.Equal(t, "application/json", got.Get("Content-Type"))
		assert.Equal(t, "Bearer a1", got.Get("Authorization"))
		assert.NotEmpty(t, got.Get("X-Request-ID"))
		assert.JSONEq(t, `{"name":"Ama"}`, string(gotBody))
	})

	t.Run("get has no content type", func(t *testing.T) {
		_, err := c.Do(ctx, "customers/")
		require.NoError(t, err)
		assert.Empty(t, got.Get("Content-Type"))
		assert.Empty(t, gotBody)
	})

	t.Run("multipart keeps its own type", func(t *testing.T) {
		_, err := c.Do(ctx, "products/import/", WithMethod(http.MethodPost), WithBody([]byte("--b--"), "multipart/form-data; boundary=b"))
		require.NoError(t, err)
		assert.Equal(t, "multipart/form-data; boundary=b", got.Get("Content-Type"))
	})

	t.Run("caller headers win", func(t *testing.T) {
		_, err := c.Do(ctx, "customers/",
			WithMethod(http.MethodPatch),
			WithJSON(map[string]string{}),
			WithHeader("Authorization", "Bearer other"),
			WithHeader("Content-Type", "application/merge-patch+json"))
		require.NoError(t, err)
		assert.Equal(t, "Bearer other", got.Get("Authorization"))
		assert.Equal(t, "application/merge-patch+json", got.Get("Content-Type"))
	})
}

func TestDo_NoTokenNoAuthorization(t *testing.T) {
	var auth string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, []any{})
	})
	c, _, _ := newTestClient(t, h, session.Record{})

	_, err := c.Do(context.Background(), "promotions/active/")
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestDo_RefreshAndRetry(t *testing.T) {
	var refreshCalls, meCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/me/", func(w http.ResponseWriter, r *http.Request) {
		meCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer a2" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Given token not valid for any token type"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"email": "admin@test.com"})
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		var body refreshRequest
		b, _ := io.ReadAll(r.Body)
		_ = sonic.Unmarshal(b, &body)
		if body.Refresh != "r1" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Token is blacklisted"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"access": "a2", "refresh": "r2"})
	})
	c, sess, store := newTestClient(t, mux, session.Record{Access: "a1", Refresh: "r1"})

	resp, err := c.Do(context.Background(), "me/")
	require.NoError(t, err)
	assert.Equal(t, "admin@test.com", resp.Data.(map[string]any)["email"])
	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, int32(2), meCalls.Load())

	assert.Equal(t, "a2", sess.Access())
	assert.Equal(t, "r2", sess.Refresh())
	rec, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a2", rec.Access)
	assert.Equal(t, "r2", rec.Refresh)
}

func TestDo_RetriesOnlyOnce(t *testing.T) {
	var refreshCalls, meCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/me/", func(w http.ResponseWriter, r *http.Request) {
		meCalls.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Authentication credentials were not provided."})
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"access": "a2"})
	})
	c, sess, _ := newTestClient(t, mux, session.Record{Access: "a1", Refresh: "r1"})

	_, err := c.Do(context.Background(), "me/")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.False(t, errors.Is(err, ErrSessionEnded))
	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, int32(2), meCalls.Load())

	// the retried 401 leaves the session alone
	assert.Equal(t, session.Authenticated, sess.State())
	assert.Equal(t, "a2", sess.Access())
	assert.Equal(t, "r1", sess.Refresh())
}

func TestDo_RefreshFailureEndsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/customers/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Given token not valid for any token type"})
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Token is invalid or expired"})
	})
	c, sess, store := newTestClient(t, mux, session.Record{Access: "a1", Refresh: "r1", Email: "admin@test.com"})

	_, err := c.Do(context.Background(), "customers/")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionEnded)
	assert.Equal(t, MsgSessionExpired, ErrorMessage(err))

	assert.Equal(t, session.LoggedOut, sess.State())
	assert.Equal(t, session.ReasonRefreshFailed, sess.EndReason())
	assert.Empty(t, sess.Access())
	assert.Empty(t, sess.Refresh())

	rec, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, session.Record{}, rec)
}

func TestDo_NoRefreshTokenEndsSession(t *testing.T) {
	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/me/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Token expired"})
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
	})
	c, sess, _ := newTestClient(t, mux, session.Record{Access: "a1"})

	_, err := c.Do(context.Background(), "me/")
	assert.ErrorIs(t, err, ErrSessionEnded)
	assert.Zero(t, refreshCalls.Load())
	assert.Equal(t, session.ReasonNoRefreshToken, sess.EndReason())
}

func TestDo_AuthPathNeverRefreshes(t *testing.T) {
	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/verify/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Token is invalid or expired"})
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
	})
	c, sess, _ := newTestClient(t, mux, session.Record{Access: "a1", Refresh: "r1"})

	_, err := c.Do(context.Background(), "/auth/verify/", WithMethod(http.MethodPost))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionEnded)
	assert.Zero(t, refreshCalls.Load())
	assert.Equal(t, session.Authenticated, sess.State())
}

func TestDo_ConcurrentRefreshIsShared(t *testing.T) {
	const callers = 8
	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/service_request/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer a2" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Token expired"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"count": 0, "results": []any{}})
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		time.Sleep(100 * time.Millisecond)
		writeJSON(w, http.StatusOK, map[string]any{"access": "a2", "refresh": "r2"})
	})
	c, sess, _ := newTestClient(t, mux, session.Record{Access: "a1", Refresh: "r1"})

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Do(context.Background(), "service_request/")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, "a2", sess.Access())
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	cfg := config.Defaults()
	cfg.API.BaseURL = base
	c := New(&cfg, session.New(session.NewMemoryStore()), zap.NewNop())

	_, err := c.Do(context.Background(), "me/")
	require.Error(t, err)
	assert.Equal(t, MsgNetwork, ErrorMessage(err))
}

func TestDo_ArrayErrorBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/service_request/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, []string{"Vehicle is required for service jobs."})
	})
	c, _, _ := newTestClient(t, mux, session.Record{Access: "a1", Refresh: "r1"})

	_, err := c.Do(context.Background(), "service_request/", WithMethod(http.MethodPost), WithJSON(map[string]any{}))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Empty(t, apiErr.Body)
	assert.Equal(t, []any{"Vehicle is required for service jobs."}, apiErr.Data)
}
