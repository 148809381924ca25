// internal/handlers/session.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ammerola/poultry-storefront/internal/core/ports"
	"github.com/ammerola/poultry-storefront/internal/core/services"
)

// SessionHandler signs the local shell in and out and keeps its preferences
type SessionHandler struct {
	base
	session *services.Session
	prefs   *services.Preferences
}

func NewSessionHandler(session *services.Session, prefs *services.Preferences, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		base:    base{logger: logger.With(slog.String("handler", "session"))},
		session: session,
		prefs:   prefs,
	}
}

// LoginRequest holds the sign-in credentials
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse describes who is signed in
type SessionResponse struct {
	Authenticated bool                  `json:"authenticated"`
	State         services.SessionState `json:"state"`
}

// PreferencesResponse carries the UI preferences
type PreferencesResponse struct {
	Mode services.ColorMode `json:"mode"`
}

// GetSession handles GET /session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.render())
}

// Login handles POST /session
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		h.respondError(w, r, http.StatusBadRequest, "username and password are required")
		return
	}

	if _, err := h.session.Login(r.Context(), req.Username, req.Password); err != nil {
		h.respondServiceError(w, r, "login", err)
		return
	}
	h.respondJSON(w, http.StatusOK, h.render())
}

// Logout handles DELETE /session
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Logout(); err != nil {
		h.logger.WarnContext(r.Context(), "session not cleared from storage",
			slog.String("error", err.Error()))
	}
	w.WriteHeader(http.StatusNoContent)
}

// Register handles POST /session/register
func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req ports.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.session.Register(r.Context(), req); err != nil {
		h.respondServiceError(w, r, "register", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// GetPreferences handles GET /preferences
func (h *SessionHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, PreferencesResponse{Mode: h.prefs.Mode()})
}

// ToggleMode handles POST /preferences/mode
func (h *SessionHandler) ToggleMode(w http.ResponseWriter, r *http.Request) {
	mode, err := h.prefs.Toggle()
	if err != nil {
		h.respondServiceError(w, r, "toggle color mode", err)
		return
	}
	h.respondJSON(w, http.StatusOK, PreferencesResponse{Mode: mode})
}

func (h *SessionHandler) render() SessionResponse {
	st := h.session.State()
	return SessionResponse{Authenticated: st.Authenticated(), State: st}
}
