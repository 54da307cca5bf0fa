// Package handlers wires the HTTP surface to the service layer.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/trackdesk-inc/trackdesk-engine/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteServiceError maps a service-layer error onto the HTTP surface.
// Validation errors become a 400 with the per-field messages as the body;
// the domain sentinels become their status codes; anything else is a 500.
func WriteServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var writeErr error
	switch {
	case isValidation(err):
		ve, _ := apperrors.AsValidationError(err)
		writeErr = WriteJSON(w, http.StatusBadRequest, ve.Fields)
	case errors.Is(err, apperrors.ErrNotFound):
		writeErr = ErrorResponse(w, http.StatusNotFound, "not_found", "Not found.")
	case errors.Is(err, apperrors.ErrForbidden):
		writeErr = ErrorResponse(w, http.StatusForbidden, "forbidden", "You do not have permission to perform this action.")
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		writeErr = ErrorResponse(w, http.StatusUnauthorized, "invalid_credentials", "No account found with the given credentials.")
	default:
		logger.Error("Request failed", zap.Error(err))
		writeErr = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
	if writeErr != nil {
		logger.Error("Failed to write error response", zap.Error(writeErr))
	}
}

func isValidation(err error) bool {
	_, ok := apperrors.AsValidationError(err)
	return ok
}

// DecodeJSON decodes the request body into dst. On malformed input it writes
// a 400 and returns false. A field of the wrong JSON type (a string where a
// boolean belongs, say) counts as malformed.
func DecodeJSON(w http.ResponseWriter, r *http.Request, logger *zap.Logger, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if writeErr := ErrorResponse(w, http.StatusBadRequest, "invalid_body", "Request body is not valid JSON for this endpoint"); writeErr != nil {
			logger.Error("Failed to write error response", zap.Error(writeErr))
		}
		return false
	}
	return true
}
