package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
)

func apiErrorFrom(status int, raw string) *APIError {
	var data any
	if raw != "" {
		_ = sonic.UnmarshalString(raw, &data)
	}
	return newAPIError(status, []byte(raw), data)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil", err: nil, expected: MsgGeneric},
		{
			name:     "transport failure",
			err:      &url.Error{Op: "Get", URL: "http://localhost:8000/api/v1/me/", Err: errors.New("dial tcp: connection refused")},
			expected: MsgNetwork,
		},
		{name: "network wording", err: errors.New("Failed to fetch"), expected: MsgNetwork},
		{name: "plain error", err: errors.New("login response has no access token"), expected: "login response has no access token"},
		{name: "cancelled", err: fmt.Errorf("do request: %w", context.Canceled), expected: MsgCancelled},
		{name: "detail list", err: apiErrorFrom(400, `{"detail":["Mechanic is already assigned."]}`), expected: "Mechanic is already assigned."},
		{name: "detail list with empty first", err: apiErrorFrom(400, `{"detail":[""]}`), expected: "Invalid request."},
		{name: "simplejwt token wording", err: apiErrorFrom(401, `{"detail":"Given token not valid for any token type"}`), expected: MsgSessionExpired},
		{name: "token expired wording", err: apiErrorFrom(403, `{"detail":"Token is invalid or expired"}`), expected: MsgSessionExpired},
		{name: "invalid before token", err: apiErrorFrom(400, `{"detail":"Invalid token."}`), expected: MsgSessionExpired},
		{name: "plain detail", err: apiErrorFrom(404, `{"detail":"No ServiceRequest matches the given query."}`), expected: "No ServiceRequest matches the given query."},
		{name: "login failure detail", err: apiErrorFrom(401, `{"detail":"No active account found with the given credentials"}`), expected: "No active account found with the given credentials"},
		{name: "server error", err: apiErrorFrom(502, ""), expected: MsgServer},
		{name: "server error with field list", err: apiErrorFrom(500, `{"error":["boom"]}`), expected: MsgServer},
		{name: "bad request", err: apiErrorFrom(400, `{"phone":["This field is required."]}`), expected: "Invalid request."},
		{name: "unauthorized", err: apiErrorFrom(401, `{}`), expected: MsgSessionExpired},
		{name: "forbidden", err: apiErrorFrom(403, `{}`), expected: "You don't have permission to do that."},
		{name: "not found", err: apiErrorFrom(404, ""), expected: "Not found."},
		{name: "validation", err: apiErrorFrom(422, `{}`), expected: "Validation error."},
		{name: "throttled", err: apiErrorFrom(429, `{}`), expected: "Too many attempts. Please try again in a minute."},
		{name: "field list", err: apiErrorFrom(409, `{"phone":["This field is required."],"name":["Too long."]}`), expected: "phone: This field is required."},
		{name: "field lists in document order", err: apiErrorFrom(409, `{"zeta":["first"],"alpha":["second"]}`), expected: "zeta: first"},
		{name: "skips non-list fields", err: apiErrorFrom(409, `{"code":"dup","vin":["Already registered."]}`), expected: "vin: Already registered."},
		{name: "non-string detail", err: apiErrorFrom(409, `{"detail":5}`), expected: "5"},
		{name: "object detail", err: apiErrorFrom(409, `{"detail":{"code":"x"}}`), expected: `{"code":"x"}`},
		{name: "empty body", err: apiErrorFrom(418, `{}`), expected: "Request failed (418)."},
		{name: "no status", err: &APIError{Body: map[string]any{}}, expected: MsgGeneric},
		{name: "wrapped api error", err: fmt.Errorf("list customers: %w", apiErrorFrom(404, "")), expected: "Not found."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := ErrorMessage(tt.err)
			assert.Equal(t, tt.expected, msg)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestAPIError_Is(t *testing.T) {
	err := apiErrorFrom(401, `{"detail":"Token expired"}`)
	assert.False(t, errors.Is(err, ErrSessionEnded))

	err.SessionEnded = true
	assert.True(t, errors.Is(err, ErrSessionEnded))
	assert.True(t, errors.Is(fmt.Errorf("get me: %w", err), ErrSessionEnded))
	assert.Contains(t, err.Error(), "401")
}

func TestAPIError_Fields(t *testing.T) {
	err := apiErrorFrom(400, `{"b":1,"a":2,"c":3}`)
	assert.Equal(t, []string{"b", "a", "c"}, err.Fields())

	// without the raw body the order falls back to sorted keys
	err = &APIError{Status: 400, Body: map[string]any{"b": 1, "a": 2}}
	assert.Equal(t, []string{"a", "b"}, err.Fields())
}

func TestAPIError_KeepsNonObjectBody(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantData any
		wantMsg  string
	}{
		{name: "array body", raw: `["Site is closed today."]`, wantData: []any{"Site is closed today."}, wantMsg: "Invalid request."},
		{name: "string body", raw: `"nope"`, wantData: "nope", wantMsg: "Invalid request."},
		{name: "object body", raw: `{"detail":"bad"}`, wantData: map[string]any{"detail": "bad"}, wantMsg: "bad"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := apiErrorFrom(400, tt.raw)
			assert.Equal(t, tt.wantData, err.Data)
			assert.Equal(t, tt.wantMsg, ErrorMessage(err))
		})
	}
}
