// Package handlers contains the HTTP layer for hourbook.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hourbook/hourbook/pkg/apperrors"
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

// WriteServiceError maps a service error onto the HTTP response. Validation
// errors carry their per-field messages; everything unrecognized becomes a
// 500 with the fallback message and gets logged.
func WriteServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	var v *apperrors.ValidationError
	if errors.As(err, &v) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":   "validation_failed",
			"message": v.Error(),
			"fields":  v.Fields,
		})
		return
	}

	var status int
	var code, message string
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, code, message = http.StatusNotFound, "not_found", "Resource not found"
	case errors.Is(err, apperrors.ErrForbidden):
		status, code, message = http.StatusForbidden, "forbidden", "Not authorized for this operation"
	case errors.Is(err, apperrors.ErrAuthRejected):
		status, code, message = http.StatusUnauthorized, "auth_rejected", "Invalid credentials"
	case errors.Is(err, apperrors.ErrAccountDisabled):
		status, code, message = http.StatusForbidden, "account_disabled", "Account is disabled"
	case errors.Is(err, apperrors.ErrEmailInUse):
		status, code, message = http.StatusConflict, "email_in_use", "Email is already registered"
	case errors.Is(err, apperrors.ErrWeakPassword):
		status, code, message = http.StatusBadRequest, "weak_password", "Password does not meet the minimum requirements"
	case errors.Is(err, apperrors.ErrTimeout):
		status, code, message = http.StatusServiceUnavailable, "timeout", "The data store did not respond in time"
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		status, code, message = http.StatusServiceUnavailable, "store_unavailable", "The data store is unavailable"
	default:
		logger.Error(fallback, zap.Error(err))
		status, code, message = http.StatusInternalServerError, "internal_error", fallback
	}

	if err := ErrorResponse(w, status, code, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// DecodeJSON decodes the request body into dst, rejecting unknown garbage
// with a 400. Returns false if a response has already been written.
func DecodeJSON(w http.ResponseWriter, r *http.Request, logger *zap.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if werr := ErrorResponse(w, http.StatusBadRequest, "invalid_body", "Invalid JSON request body"); werr != nil {
			logger.Error("Failed to write error response", zap.Error(werr))
		}
		return false
	}
	return true
}
