package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/trackdesk-inc/trackdesk-engine/pkg/audit"
)

// Request parsing errors.
var (
	ErrMissingAuthorization = errors.New("missing authorization")
	ErrInvalidAuthFormat    = errors.New("invalid authorization header format")
)

// Middleware provides HTTP authentication middleware.
// It is thin and delegates token validation to TokenService.
type Middleware struct {
	tokens  TokenService
	logger  *zap.Logger
	auditor *audit.SecurityAuditor
}

// NewMiddleware creates a new auth middleware with the given TokenService.
func NewMiddleware(tokens TokenService, logger *zap.Logger) *Middleware {
	return &Middleware{
		tokens:  tokens,
		logger:  logger,
		auditor: audit.NewSecurityAuditor(logger),
	}
}

// RequireAuth validates the Bearer access token and sets claims and the raw
// token in context for downstream handlers. Requests without a valid access
// token get a 401.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := extractBearer(r)
		if err != nil {
			m.logger.Debug("No credential in request",
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method))
			m.unauthorized(w, "Authentication required")
			return
		}

		claims, err := m.tokens.Validate(tokenString, TokenTypeAccess)
		if err != nil {
			m.logger.Debug("Token validation failed",
				zap.Error(err),
				zap.String("path", r.URL.Path))
			m.auditor.LogAuthFailure("invalid token", r.URL.Path, r.RemoteAddr)
			m.unauthorized(w, "Authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		ctx = context.WithValue(ctx, TokenKey, tokenString)
		next(w, r.WithContext(ctx))
	}
}

// extractBearer pulls the token out of the Authorization header.
func extractBearer(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingAuthorization
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", ErrInvalidAuthFormat
	}
	return parts[1], nil
}

// unauthorized returns a 401 response with JSON error body.
func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}
