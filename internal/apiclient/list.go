package apiclient

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Page is one page of a list endpoint.
type Page struct {
	Results []any
	Count   int
}

// ToList accepts either a bare JSON array or a pagination envelope and returns the items.
// Anything else yields an empty, non-nil slice.
func ToList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		if results, ok := t["results"].([]any); ok {
			return results
		}
	}
	return []any{}
}

// ToPaginated is ToList plus the total count: the envelope's count when present, otherwise
// the number of items (a bare array is a single page).
func ToPaginated(v any) Page {
	switch t := v.(type) {
	case []any:
		return Page{Results: t, Count: len(t)}
	case map[string]any:
		results, ok := t["results"].([]any)
		if !ok {
			break
		}
		count := len(results)
		if c, ok := t["count"].(float64); ok {
			count = int(c)
		}
		return Page{Results: results, Count: count}
	}
	return Page{Results: []any{}, Count: 0}
}

// DecodeList decodes the items of a list response into T.
func DecodeList[T any](r *Response) ([]T, int, error) {
	page := ToPaginated(r.Data)
	raw, err := sonic.Marshal(page.Results)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal results: %w", err)
	}
	out := make([]T, 0, len(page.Results))
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, 0, fmt.Errorf("unmarshal results: %w", err)
	}
	return out, page.Count, nil
}
