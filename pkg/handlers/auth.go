package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/trackdesk-inc/trackdesk-engine/pkg/auth"
	"github.com/trackdesk-inc/trackdesk-engine/pkg/services"
)

// TokenRequest is the login payload.
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries the issued token pair.
type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RefreshRequest carries a refresh token to exchange for a new access token.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse carries the re-issued access token.
type RefreshResponse struct {
	Access string `json:"access"`
}

// AuthHandler handles credential exchange endpoints.
type AuthHandler struct {
	users  services.UserService
	tokens auth.TokenService
	logger *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(users services.UserService, tokens auth.TokenService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, logger: logger}
}

// RegisterRoutes registers the auth handler's routes on the given mux. Both
// endpoints are anonymous.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/token", h.Token)
	mux.HandleFunc("POST /api/token/refresh", h.Refresh)
}

// Token handles POST /api/token.
// Exchanges username and password for an access+refresh pair.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}

	pair, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, TokenResponse{Access: pair.Access, Refresh: pair.Refresh}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Refresh handles POST /api/token/refresh.
// Validates the refresh token and issues a fresh access token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}

	claims, err := h.tokens.Validate(req.Refresh, auth.TokenTypeRefresh)
	if err != nil {
		if writeErr := ErrorResponse(w, http.StatusUnauthorized, "invalid_token", "Token is invalid or expired"); writeErr != nil {
			h.logger.Error("Failed to write error response", zap.Error(writeErr))
		}
		return
	}

	access, err := h.tokens.IssueAccess(claims)
	if err != nil {
		h.logger.Error("Failed to issue access token", zap.Error(err))
		if writeErr := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Internal server error"); writeErr != nil {
			h.logger.Error("Failed to write error response", zap.Error(writeErr))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, RefreshResponse{Access: access}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
