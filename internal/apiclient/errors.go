package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"sort"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"
)

var (
	// ErrSessionEnded matches an *APIError whose 401 ended the session (refresh failed or
	// there was nothing to refresh with).
	ErrSessionEnded   = errors.New("session ended")
	ErrNoRefreshToken = errors.New("no refresh token")
)

const (
	MsgGeneric        = "Something went wrong."
	MsgNetwork        = "Network error. Check your connection and that the API is running."
	MsgSessionExpired = "Session expired. Please sign in again."
	MsgServer         = "Server error. Please try again later."
	MsgCancelled      = "Request cancelled."
)

var statusMessages = map[int]string{
	400: "Invalid request.",
	401: MsgSessionExpired,
	403: "You don't have permission to do that.",
	404: "Not found.",
	422: "Validation error.",
	429: "Too many attempts. Please try again in a minute.",
}

var (
	tokenExpiryPattern = regexp.MustCompile(`(?i)token.*(invalid|expired|not valid)|(invalid|expired|not valid).*token`)
	networkPattern     = regexp.MustCompile(`(?i)fetch|network|connection refused|no such host`)
)

// APIError is a non-2xx response. Body is the parsed JSON object, empty when the reply was
// not an object; Data keeps whatever was decoded, arrays and scalars included.
type APIError struct {
	Status int
	Body   map[string]any
	Data   any
	// SessionEnded is set when this 401 ended the session.
	SessionEnded bool

	raw []byte
}

func newAPIError(status int, raw []byte, data any) *APIError {
	body, _ := data.(map[string]any)
	if body == nil {
		body = map[string]any{}
	}
	return &APIError{Status: status, Body: body, Data: data, raw: raw}
}

func (e *APIError) Error() string {
	if d, ok := e.Body["detail"].(string); ok && d != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, d)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

func (e *APIError) Is(target error) bool {
	return target == ErrSessionEnded && e.SessionEnded
}

// Detail returns the DRF "detail" member, which may be a string, a list or absent.
func (e *APIError) Detail() any {
	return e.Body["detail"]
}

// Fields lists the body's top-level keys in document order when the raw body is known.
func (e *APIError) Fields() []string {
	if len(e.raw) > 0 && gjson.ValidBytes(e.raw) {
		var keys []string
		gjson.ParseBytes(e.raw).ForEach(func(key, _ gjson.Result) bool {
			if _, ok := e.Body[key.String()]; ok {
				keys = append(keys, key.String())
			}
			return true
		})
		if len(keys) == len(e.Body) {
			return keys
		}
	}
	keys := make([]string, 0, len(e.Body))
	for k := range e.Body {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ErrorMessage turns any error returned by this package into a single display string.
// It never returns an empty string.
func ErrorMessage(err error) string {
	if err == nil {
		return MsgGeneric
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		if errors.Is(err, context.Canceled) {
			return MsgCancelled
		}
		if isNetworkError(err) {
			return MsgNetwork
		}
		if msg := err.Error(); msg != "" {
			return msg
		}
		return MsgGeneric
	}
	return apiErr.message()
}

func (e *APIError) message() string {
	d, hasDetail := e.Body["detail"]

	if list, ok := d.([]any); ok && len(list) > 0 && truthy(list[0]) {
		return stringify(list[0])
	}
	if s, ok := d.(string); ok && s != "" {
		if tokenExpiryPattern.MatchString(s) {
			return MsgSessionExpired
		}
		return s
	}

	if e.Status >= 500 {
		return MsgServer
	}
	if msg, ok := statusMessages[e.Status]; ok {
		return msg
	}

	for _, field := range e.Fields() {
		if field == "status" {
			continue
		}
		if list, ok := e.Body[field].([]any); ok && len(list) > 0 && truthy(list[0]) {
			return field + ": " + stringify(list[0])
		}
	}

	if hasDetail && d != nil {
		if s := stringify(d); s != "" {
			return s
		}
	}

	if e.Status != 0 {
		return fmt.Sprintf("Request failed (%d).", e.Status)
	}
	return MsgGeneric
}

func isNetworkError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return networkPattern.MatchString(err.Error())
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	}
	return true
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		// lists render as their comma-joined members
		out := ""
		for i, item := range t {
			if i > 0 {
				out += ","
			}
			out += stringify(item)
		}
		return out
	}
	b, err := sonic.MarshalString(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return b
}
