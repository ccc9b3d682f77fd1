package model

// Page is one page of a DRF list endpoint. Count is the total across all pages.
type Page[T any] struct {
	Results []T `json:"results"`
	Count   int `json:"count"`
}

// PageSize is the server's PageNumberPagination size.
const PageSize = 25

// Pages returns how many pages Count spans.
func (p Page[T]) Pages() int {
	if p.Count <= 0 {
		return 1
	}
	return (p.Count + PageSize - 1) / PageSize
}
