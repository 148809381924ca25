// internal/core/services/session.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/ports"
)

// RegistrationError carries the message shown for a rejected sign-up
type RegistrationError struct {
	Message string
	Err     error
}

func (e *RegistrationError) Error() string { return e.Message }

func (e *RegistrationError) Unwrap() error { return e.Err }

// fieldErrorer is implemented by backend validation errors
type fieldErrorer interface {
	FirstFieldError() string
}

// Session owns the access token and signed-in user
type Session struct {
	auth    ports.AuthAPI
	storage ports.StorageAdapter
	logger  *slog.Logger

	mu        sync.Mutex
	token     string
	user      *domain.User
	listeners []func(SessionState)
}

var (
	_ ports.TokenSource   = (*Session)(nil)
	_ ports.SessionReader = (*Session)(nil)
)

// NewSession restores the session from storage
func NewSession(auth ports.AuthAPI, storage ports.StorageAdapter, logger *slog.Logger) *Session {
	s := &Session{
		auth:    auth,
		storage: storage,
		logger:  logger.With(slog.String("service", "session")),
	}
	s.hydrate()
	return s
}

func (s *Session) hydrate() {
	if token, ok, err := s.storage.Get(ports.StorageKeyAccessToken); err == nil && ok {
		s.token = token
	}

	raw, ok, err := s.storage.Get(ports.StorageKeyUser)
	if err != nil || !ok || raw == "" || raw == "undefined" || raw == "null" {
		return
	}
	user, err := domain.NormalizeUser(json.RawMessage(raw))
	if err != nil {
		s.logger.Warn("discarding malformed stored user", slog.String("error", err.Error()))
		return
	}
	s.user = user
}

// Token implements ports.TokenSource
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// CurrentUser returns a copy of the signed-in user, or nil
func (s *Session) CurrentUser() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() SessionState {
	st := SessionState{Token: s.token}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

// OnChange registers fn to run after every login and logout
func (s *Session) OnChange(fn func(SessionState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Session) notify() {
	s.mu.Lock()
	st := s.stateLocked()
	listeners := append([]func(SessionState){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(st)
	}
}

// Login signs in and persists the token and normalized user
func (s *Session) Login(ctx context.Context, username, password string) (*domain.User, error) {
	res, err := s.auth.Login(ctx, username, password)
	if err != nil {
		s.logger.DebugContext(ctx, "login failed",
			slog.String("username", username),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("login failed: %w", err)
	}

	user, err := domain.NormalizeUser(res.User)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	userJSON, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}

	if err := s.storage.Set(ports.StorageKeyAccessToken, res.Access); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}
	if err := s.storage.Set(ports.StorageKeyUser, string(userJSON)); err != nil {
		return nil, fmt.Errorf("failed to persist user: %w", err)
	}

	s.mu.Lock()
	s.token = res.Access
	s.user = user
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "signed in",
		slog.Int64("user_id", user.ID),
		slog.String("role", string(user.Role)))
	s.notify()

	u := *user
	return &u, nil
}

// Logout clears the session from memory and storage
func (s *Session) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	err := errors.Join(
		s.storage.Remove(ports.StorageKeyAccessToken),
		s.storage.Remove(ports.StorageKeyUser),
	)
	s.notify()
	if err != nil {
		return fmt.Errorf("failed to clear stored session: %w", err)
	}
	return nil
}

// Register creates an account. A rejected sign-up reports the first field
// error as "field: message".
func (s *Session) Register(ctx context.Context, req ports.RegisterRequest) error {
	err := s.auth.Register(ctx, req)
	if err == nil {
		return nil
	}

	var fe fieldErrorer
	if errors.As(err, &fe) {
		if msg := fe.FirstFieldError(); msg != "" {
			return &RegistrationError{Message: msg, Err: err}
		}
	}
	return &RegistrationError{Message: err.Error(), Err: err}
}
