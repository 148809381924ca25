// internal/core/domain/page.go
package domain

// Page is the paginated envelope shared by list endpoints
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// HasNext reports whether the server signalled a following page
func (p *Page[T]) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}
