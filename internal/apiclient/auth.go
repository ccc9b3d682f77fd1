package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/DataRockMyWorld/workshopctl/internal/session"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

const (
	loginPath   = "/auth/login/"
	refreshPath = "/auth/refresh/"
	logoutPath  = "/auth/logout/"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// Login exchanges credentials for a token pair. It bypasses the refresh path entirely.
func (c *Client) Login(ctx context.Context, email, password string) (session.Tokens, error) {
	resp, err := c.postAuth(ctx, loginPath, loginRequest{Email: email, Password: password})
	if err != nil {
		return session.Tokens{}, err
	}
	var tokens session.Tokens
	if err := resp.Decode(&tokens); err != nil {
		return session.Tokens{}, err
	}
	if tokens.Access == "" {
		return session.Tokens{}, errors.New("login response has no access token")
	}
	return tokens, nil
}

// RefreshToken trades a refresh token for a new access token and, with rotation enabled on the
// server, a new refresh token.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (session.Tokens, error) {
	if refresh == "" {
		return session.Tokens{}, ErrNoRefreshToken
	}
	resp, err := c.postAuth(ctx, refreshPath, refreshRequest{Refresh: refresh})
	if err != nil {
		return session.Tokens{}, err
	}
	var tokens session.Tokens
	if err := resp.Decode(&tokens); err != nil {
		return session.Tokens{}, err
	}
	if tokens.Access == "" {
		return session.Tokens{}, errors.New("refresh response has no access token")
	}
	return tokens, nil
}

// Logout asks the server to blacklist refresh. Without a token it does nothing, and failures
// are only logged: the local sign-out proceeds either way.
func (c *Client) Logout(ctx context.Context, refresh string) {
	if refresh == "" {
		return
	}
	if _, err := c.postAuth(ctx, logoutPath, refreshRequest{Refresh: refresh}); err != nil {
		c.Logger.Debug("logout request failed", zap.Error(err))
	}
}

func (c *Client) postAuth(ctx context.Context, path string, payload any) (*Response, error) {
	b, err := sonic.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(path), bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	r := NewResponse(resp.StatusCode, resp.Header, respBody)
	if !r.ok() {
		return nil, newAPIError(r.Status, r.Raw, r.Data)
	}
	return r, nil
}
