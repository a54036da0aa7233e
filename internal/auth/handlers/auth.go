package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"warmap-server/internal/auth"
	"warmap-server/internal/middleware"
	"warmap-server/internal/shared/config"
	"warmap-server/internal/shared/cookies"
	"warmap-server/internal/shared/errors"
	"warmap-server/internal/shared/response"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

type tokenRequest struct {
	Secret string `json:"secret"`
}

// Token exchanges the shared admin secret for a signed session cookie. This
// gates the destructive endpoints (reset, clear, import); read endpoints stay
// open.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "auth_token")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	adminSecret := config.GlobalConfig.Auth.AdminSecret
	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(adminSecret)) != 1 {
		logger.Warn("Admin secret mismatch", "remote_addr", r.RemoteAddr)
		response.Error(w, r, logger, errors.Unauthorized("invalid admin secret"))
		return
	}

	token, err := auth.GenerateToken(auth.RoleAdmin)
	if err != nil {
		response.Error(w, r, logger, errors.WrapInternal("failed to generate token", err))
		return
	}

	cookies.SetAuthCookie(w, token)
	logger.Info("Admin session issued", "remote_addr", r.RemoteAddr)
	response.Success(w, http.StatusOK, map[string]string{"role": auth.RoleAdmin})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "auth_logout")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	cookies.ClearAuthCookie(w)
	response.Success(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Me reports the current session's role; the JWT middleware has already
// rejected anonymous callers.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "auth_me")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"role": claims.Role})
}
