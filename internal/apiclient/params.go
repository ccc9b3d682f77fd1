package apiclient

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildParams converts a filter map to query values, skipping nil, nil pointers and empty strings.
func BuildParams(params map[string]any) url.Values {
	out := url.Values{}
	for k, v := range params {
		s, ok := paramString(v)
		if !ok {
			continue
		}
		out.Set(k, s)
	}
	return out
}

// WithParams appends encoded values to path, or returns path unchanged when there are none.
func WithParams(path string, values url.Values) string {
	qs := values.Encode()
	if qs == "" {
		return path
	}
	if strings.Contains(path, "?") {
		return path + "&" + qs
	}
	return path + "?" + qs
}

func paramString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, t != ""
	case *string:
		if t == nil || *t == "" {
			return "", false
		}
		return *t, true
	case *int:
		if t == nil {
			return "", false
		}
		return fmt.Sprint(*t), true
	case *int64:
		if t == nil {
			return "", false
		}
		return fmt.Sprint(*t), true
	case *bool:
		if t == nil {
			return "", false
		}
		return fmt.Sprint(*t), true
	}
	return fmt.Sprint(v), true
}
