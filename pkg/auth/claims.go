// Package auth provides JWT-based authentication for trackdesk-engine.
// Access and refresh tokens are issued and verified locally (HS256).
package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
	// TokenKey is the context key for storing the raw JWT token string.
	TokenKey contextKey = "token"
)

// Token type constants. The refresh endpoint only accepts refresh tokens and
// every other endpoint only accepts access tokens.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims represents the JWT claims carried by trackdesk tokens.
// Subject holds the user ID.
type Claims struct {
	jwt.RegisteredClaims
	Username    string `json:"username,omitempty"`
	IsSuperuser bool   `json:"is_superuser,omitempty"`
	TokenType   string `json:"token_type"`
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// GetToken retrieves the raw JWT token string from the request context.
// Returns empty string and false if token is not present.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}
