// internal/adapters/feed/websocket.go
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ammerola/poultry-storefront/internal/core/ports"
)

const (
	ordersPath       = "/ws/orders/"
	defaultHandshake = 10 * time.Second
)

var _ ports.EventSource = (*WebSocketSource)(nil)

// WebSocketSource opens the backend's order socket
type WebSocketSource struct {
	url    string
	dialer *websocket.Dialer
	logger *slog.Logger
}

// WebSocketURL derives the order socket address from the API base URL:
// https becomes wss, anything else ws, on the same host.
func WebSocketURL(apiBase string) (string, error) {
	u, err := url.Parse(apiBase)
	if err != nil {
		return "", fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid api base url %q: missing host", apiBase)
	}

	scheme := "ws"
	if strings.EqualFold(u.Scheme, "https") || strings.EqualFold(u.Scheme, "wss") {
		scheme = "wss"
	}
	return (&url.URL{Scheme: scheme, Host: u.Host, Path: ordersPath}).String(), nil
}

// NewWebSocketSource creates a source dialing the socket that belongs to apiBase
func NewWebSocketSource(apiBase string, handshake time.Duration, logger *slog.Logger) (*WebSocketSource, error) {
	wsURL, err := WebSocketURL(apiBase)
	if err != nil {
		return nil, err
	}
	if handshake <= 0 {
		handshake = defaultHandshake
	}
	return &WebSocketSource{
		url: wsURL,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshake,
		},
		logger: logger.With(slog.String("component", "ws_feed")),
	}, nil
}

func (s *WebSocketSource) URL() string { return s.url }

// Subscribe dials the socket. The token travels both as a bearer header and
// as the token query parameter, since browsers cannot set headers on sockets
// and the backend reads either.
func (s *WebSocketSource) Subscribe(ctx context.Context, creds ports.Credentials) (ports.Subscription, error) {
	if creds.Token == "" {
		return nil, errors.New("websocket feed requires a token")
	}

	u, err := url.Parse(s.url)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("token", creds.Token)
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+creds.Token)

	conn, resp, err := s.dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to open order socket: %s: %w", resp.Status, err)
		}
		return nil, fmt.Errorf("failed to open order socket: %w", err)
	}

	st := newStream(conn.Close)
	close(st.opened)
	go s.read(conn, st)

	s.logger.InfoContext(ctx, "order socket open", slog.String("url", s.url))
	return st, nil
}

func (s *WebSocketSource) read(conn *websocket.Conn, st *stream) {
	defer close(st.events)
	for {
		kind, frame, err := conn.ReadMessage()
		if err != nil {
			if !st.closed() && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("order socket closed", slog.String("error", err.Error()))
			}
			return
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}
		if !st.send(frame) {
			return
		}
	}
}
