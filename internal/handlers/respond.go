// internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ammerola/poultry-storefront/internal/adapters/api"
	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/services"
	"github.com/ammerola/poultry-storefront/internal/pkg/logger"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx control API response
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// base carries the response helpers shared by every handler
type base struct {
	logger *slog.Logger
}

func (b base) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		b.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (b base) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	b.respondJSON(w, status, ErrorResponse{
		Error:     message,
		RequestID: logger.RequestID(r.Context()),
	})
}

// respondServiceError maps engine and backend errors onto HTTP statuses
func (b base) respondServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	b.logger.Log(r.Context(), level, op+" failed", slog.String("error", err.Error()))

	b.respondError(w, r, status, err.Error())
}

func statusFor(err error) int {
	var apiErr *api.APIError
	var regErr *services.RegistrationError
	var decodeErr *api.DecodeError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidStock),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidReport),
		errors.Is(err, domain.ErrInvalidProduct),
		errors.Is(err, domain.ErrEmptyCart),
		errors.As(err, &regErr):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrStockSaving),
		errors.Is(err, services.ErrReportNotReady):
		return http.StatusConflict
	case errors.Is(err, services.ErrNoArchive),
		errors.Is(err, services.ErrNoQueue):
		return http.StatusServiceUnavailable
	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	case errors.As(err, &decodeErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// decodeJSON reads a bounded JSON body into dst
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}
