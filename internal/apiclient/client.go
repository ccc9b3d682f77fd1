// Package apiclient is the authenticated client for the workshop REST API. Requests carry the
// session's bearer token; a 401 triggers one refresh and one retry, and a failed refresh ends
// the session.
package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DataRockMyWorld/workshopctl/internal/config"
	"github.com/DataRockMyWorld/workshopctl/internal/session"
	"github.com/DataRockMyWorld/workshopctl/internal/telemetry"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const authPathPrefix = "/auth"

type Client struct {
	BaseURL    string
	Prefix     string
	HTTPClient *http.Client
	Session    *session.Session
	Logger     *zap.Logger

	tracer   trace.Tracer
	refreshG singleflight.Group
}

type Option func(*Client)

// WithHTTPClient replaces the instrumented default client, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

func WithBaseURL(base string) Option {
	return func(c *Client) { c.BaseURL = strings.TrimRight(base, "/") }
}

func New(cfg *config.Config, sess *session.Session, log *zap.Logger, opts ...Option) *Client {
	timeout := time.Duration(cfg.API.TimeoutSec) * time.Second
	c := &Client{
		BaseURL: strings.TrimRight(cfg.API.BaseURL, "/"),
		Prefix:  "/" + strings.Trim(cfg.API.Prefix, "/"),
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Session: sess,
		Logger:  log,
		tracer:  otel.Tracer("workshopctl/apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// Response is a successful (2xx) reply.
type Response struct {
	Status int
	Header http.Header
	// Data is the decoded JSON body. 204 and unparseable bodies decode to an empty object.
	Data any
	Raw  []byte
}

// NewResponse wraps a raw reply body the way Do does.
func NewResponse(status int, header http.Header, raw []byte) *Response {
	r := &Response{Status: status, Header: header, Raw: raw}
	if status == http.StatusNoContent || len(raw) == 0 {
		r.Data = map[string]any{}
		return r
	}
	var data any
	if err := sonic.Unmarshal(raw, &data); err != nil {
		r.Data = map[string]any{}
		return r
	}
	r.Data = data
	return r
}

func (r *Response) ok() bool {
	return r.Status >= 200 && r.Status < 300
}

// Decode unmarshals the body into v. An empty payload decodes as {}.
func (r *Response) Decode(v any) error {
	raw := r.Raw
	if m, ok := r.Data.(map[string]any); ok && len(m) == 0 {
		raw = []byte("{}")
	}
	if err := sonic.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// Do issues an authenticated request. path is relative to the API prefix unless it starts
// with /auth. Non-2xx replies come back as *APIError.
func (c *Client) Do(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	req := newRequest(opts)
	if req.err != nil {
		return nil, req.err
	}
	return c.do(ctx, path, req)
}

func (c *Client) do(ctx context.Context, path string, req *request) (*Response, error) {
	sentWith := c.Session.Access()
	resp, err := c.send(ctx, path, req, sentWith)
	if err != nil {
		return nil, err
	}
	if resp.ok() {
		return resp, nil
	}

	apiErr := newAPIError(resp.Status, resp.Raw, resp.Data)
	if resp.Status == http.StatusUnauthorized && !isAuthPath(path) && req.attempt == AttemptInitial {
		err := c.refreshFor(ctx, sentWith)
		if err == nil {
			return c.do(ctx, path, req.retry())
		}
		reason := session.ReasonRefreshFailed
		if errors.Is(err, ErrNoRefreshToken) {
			reason = session.ReasonNoRefreshToken
		}
		c.Logger.Info("token refresh failed, ending session",
			zap.String("path", path),
			zap.String("reason", string(reason)),
			zap.Error(err))
		if endErr := c.Session.End(ctx, reason); endErr != nil {
			c.Logger.Warn("end session", zap.Error(endErr))
		}
		telemetry.RecordSessionEnd(ctx, string(reason))
		apiErr.SessionEnded = true
	}

	c.Logger.Error("api request failed",
		zap.String("method", req.method),
		zap.String("path", path),
		zap.Int("status_code", resp.Status),
		zap.Stringer("attempt", req.attempt))
	return nil, apiErr
}

func (c *Client) send(ctx context.Context, path string, req *request, access string) (*Response, error) {
	var body io.Reader
	hasBody := req.method != http.MethodGet && req.body != nil
	if hasBody {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.buildURL(path), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if hasBody {
		ct := req.contentType
		if ct == "" {
			ct = "application/json"
		}
		httpReq.Header.Set("Content-Type", ct)
	}
	if access != "" {
		httpReq.Header.Set("Authorization", "Bearer "+access)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	for k, vs := range req.header {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return NewResponse(resp.StatusCode, resp.Header, respBody), nil
}

// refreshFor renews the access token after a 401 on a request sent with sentWith. If another
// caller already rotated the token in the meantime, the current one is reused. Concurrent
// refreshes with the same refresh token share one call.
func (c *Client) refreshFor(ctx context.Context, sentWith string) error {
	if cur := c.Session.Access(); cur != "" && cur != sentWith {
		return nil
	}
	token := c.Session.Refresh()
	if token == "" {
		return ErrNoRefreshToken
	}

	_, err, shared := c.refreshG.Do(token, func() (any, error) {
		// one caller's cancellation must not fail the others waiting on this call
		rctx := context.WithoutCancel(ctx)
		rctx, span := c.tracer.Start(rctx, "apiclient.refresh")
		defer span.End()

		tokens, err := c.RefreshToken(rctx, token)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if err := c.Session.Rotate(rctx, tokens.Access, tokens.Refresh); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		span.SetAttributes(attribute.Bool("refresh.rotated", tokens.Refresh != ""))
		return nil, nil
	})
	telemetry.RecordTokenRefresh(ctx, err == nil, shared)
	if err != nil {
		return err
	}
	c.Logger.Info("access token refreshed", zap.Bool("shared", shared))
	return nil
}

func (c *Client) buildURL(path string) string {
	if isAuthPath(path) {
		return c.BaseURL + path
	}
	clean := strings.TrimLeft(path, "/")
	if clean == "" {
		return c.BaseURL + c.Prefix
	}
	return c.BaseURL + c.Prefix + "/" + clean
}

func isAuthPath(path string) bool {
	return strings.HasPrefix(path, authPathPrefix)
}
