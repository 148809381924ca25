// internal/adapters/api/errors.go
package api

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
)

// APIError is a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Detail     string
	// Fields holds per-field validation messages, if the backend sent any
	Fields map[string][]string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
	}
	if msg := e.FirstFieldError(); msg != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap maps well-known statuses onto domain sentinels
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnauthorized:
		return domain.ErrNotAuthenticated
	}
	return nil
}

// FirstFieldError formats the first field error as "field: message".
// Fields are visited in name order.
func (e *APIError) FirstFieldError() string {
	if len(e.Fields) == 0 {
		return ""
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if msgs := e.Fields[name]; len(msgs) > 0 {
			return name + ": " + msgs[0]
		}
	}
	return ""
}

// DecodeError is returned when a 2xx body does not have the expected shape
type DecodeError struct {
	Endpoint string
	Body     string
	Err      error
}

const bodySnippetLen = 256

func newDecodeError(endpoint string, body []byte, err error) *DecodeError {
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > bodySnippetLen {
		snippet = snippet[:bodySnippetLen] + "..."
	}
	return &DecodeError{Endpoint: endpoint, Body: snippet, Err: err}
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unexpected response from %s: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
