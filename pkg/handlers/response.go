package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ezz-ae/entrestate-engine/pkg/apperrors"
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

// writeServiceError maps the error taxonomy onto HTTP statuses:
// validation faults are the caller's to fix (400), entitlement
// violations get their own kind so UIs can offer an upgrade path (403),
// upstream unavailability is retryable (503), anything else is a 500.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case apperrors.IsValidation(err):
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_failed", err.Error())
	case apperrors.IsEntitlement(err):
		_ = ErrorResponse(w, http.StatusForbidden, "entitlement_violation", err.Error())
	case apperrors.IsUnavailable(err):
		_ = ErrorResponse(w, http.StatusServiceUnavailable, "service_unavailable", err.Error())
	default:
		logger.Error("request failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
