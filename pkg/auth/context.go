package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// GetUserIDFromContext extracts the user ID from JWT claims in the context.
// Returns uuid.Nil if not authenticated or claims are missing.
func GetUserIDFromContext(ctx context.Context) uuid.UUID {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return uuid.Nil
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil
	}
	return userID
}

// RequireUserIDFromContext extracts the user ID from context and returns an
// error if not found. Use this when the operation requires an authenticated
// caller.
func RequireUserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	userID := GetUserIDFromContext(ctx)
	if userID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// IsSuperuserFromContext reports whether the authenticated caller is a
// superuser. Returns false when unauthenticated.
func IsSuperuserFromContext(ctx context.Context) bool {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return false
	}
	return claims.IsSuperuser
}
