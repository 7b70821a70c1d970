package handlers

import (
	"errors"
	"net/http"
	"time"

	"pickem-app/interfaces"
	"pickem-app/logging"
	"pickem-app/middleware"
	"pickem-app/services"
)

// AuthHandler completes logins handed over by the identity provider and
// serves the caller's own account
type AuthHandler struct {
	authService *services.AuthService
	userService interfaces.UserService
	secure      bool
	logger      *logging.Logger
}

// NewAuthHandler creates a new auth handler. secure marks the session
// cookie HTTPS-only.
func NewAuthHandler(authService *services.AuthService, userService interfaces.UserService, secure bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		secure:      secure,
		logger:      logging.WithPrefix("auth_handler"),
	}
}

// loginRequest carries the assertion signed by the identity-provider front end
type loginRequest struct {
	Assertion string `json:"assertion"`
}

type displayNameRequest struct {
	DisplayName string `json:"display_name" validate:"max=200"`
}

// Login handles POST /api/auth/login. Only identities vouched for by a valid
// signed assertion get a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.authService.LoginWithAssertion(r.Context(), req.Assertion)
	if errors.Is(err, services.ErrUnverifiedIdentity) {
		writeError(w, http.StatusUnauthorized, "identity assertion rejected", "")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.setAuthCookie(w, result.Token)
	writeJSON(w, http.StatusOK, result)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.GetUserFromContext(r))
}

// SetDisplayName handles PUT /api/me/display-name; an empty name clears the
// override
func (h *AuthHandler) SetDisplayName(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	var req displayNameRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.userService.SetDisplayName(r.Context(), user.UserID, req.DisplayName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.logger.Infof("User %s set display name to %q", updated.UserID, updated.DisplayName)
	writeJSON(w, http.StatusOK, updated)
}

func (h *AuthHandler) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
