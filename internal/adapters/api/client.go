// internal/adapters/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/ports"
	"github.com/ammerola/poultry-storefront/internal/pkg/logger"
	"github.com/ammerola/poultry-storefront/internal/pkg/metrics"
)

const maxResponseBytes = 32 << 20

// Options configure the backend client
type Options struct {
	BaseURL         string
	Timeout         time.Duration
	RateLimit       float64
	RateBurst       int
	RequestIDHeader string
	HTTPClient      *http.Client
}

// TokenFunc adapts a function to ports.TokenSource
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Client talks to the storefront REST backend
type Client struct {
	baseURL         string
	http            *http.Client
	tokens          ports.TokenSource
	limiter         *rate.Limiter
	requestIDHeader string
	logger          *slog.Logger
}

var (
	_ ports.CatalogAPI = (*Client)(nil)
	_ ports.OrderAPI   = (*Client)(nil)
	_ ports.ReportAPI  = (*Client)(nil)
	_ ports.StatsAPI   = (*Client)(nil)
	_ ports.AuthAPI    = (*Client)(nil)
)

// NewClient creates a backend client. tokens may be nil for anonymous use.
func NewClient(opts Options, tokens ports.TokenSource, logger *slog.Logger) (*Client, error) {
	if _, err := url.ParseRequestURI(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", opts.BaseURL, err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.RateBurst
	if burst <= 0 {
		burst = 1
	}

	header := opts.RequestIDHeader
	if header == "" {
		header = "X-Request-ID"
	}

	if tokens == nil {
		tokens = TokenFunc(func() string { return "" })
	}

	return &Client{
		baseURL:         opts.BaseURL,
		http:            httpClient,
		tokens:          tokens,
		limiter:         rate.NewLimiter(limit, burst),
		requestIDHeader: header,
		logger:          logger.With(slog.String("component", "api_client")),
	}, nil
}

var apiSuffix = regexp.MustCompile(`/api/?$`)

// Endpoint joins base and path. When base already ends in /api, a leading
// /api/ on path is dropped so the prefix is not doubled.
func Endpoint(base, path string) string {
	if apiSuffix.MatchString(base) && strings.HasPrefix(path, "/api/") {
		path = path[len("/api"):]
	}
	return strings.TrimRight(base, "/") + path
}

// send performs a request and returns the body of a 2xx response
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := Endpoint(c.baseURL, path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// control API requests carry their id through to the backend
	requestID := logger.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set(c.requestIDHeader, requestID)
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.APIRequestDuration.WithLabelValues(method, "error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	duration := time.Since(start)
	metrics.APIRequestDuration.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Observe(duration.Seconds())

	c.logger.DebugContext(ctx, "api request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", duration),
		slog.String("request_id", requestID))

	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseAPIError(resp.StatusCode, data)
	}
	return data, nil
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		apiErr.Detail = strings.TrimSpace(string(body))
		if len(apiErr.Detail) > bodySnippetLen {
			apiErr.Detail = apiErr.Detail[:bodySnippetLen]
		}
		return apiErr
	}

	for name, raw := range fields {
		var msg string
		if err := json.Unmarshal(raw, &msg); err == nil {
			if name == "detail" || name == "error" {
				apiErr.Detail = msg
				continue
			}
			addField(apiErr, name, msg)
			continue
		}
		var msgs []string
		if err := json.Unmarshal(raw, &msgs); err == nil {
			for _, m := range msgs {
				addField(apiErr, name, m)
			}
		}
	}
	return apiErr
}

func addField(e *APIError, name, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[name] = append(e.Fields[name], msg)
}

// doJSON decodes a 2xx response into out
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	data, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return newDecodeError(path, data, err)
	}
	return nil
}

// decodePage decodes a paginated envelope and validates each record
func decodePage[T any](ctx context.Context, c *Client, path string, query url.Values, validate func(*T) error) (*domain.Page[T], error) {
	data, err := c.send(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}

	var page domain.Page[T]
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, newDecodeError(path, data, err)
	}
	if page.Results == nil {
		return nil, newDecodeError(path, data, errors.New("missing results"))
	}
	for i := range page.Results {
		if err := validate(&page.Results[i]); err != nil {
			return nil, newDecodeError(path, data, fmt.Errorf("result %d: %w", i, err))
		}
	}
	return &page, nil
}
