package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"keepnotes/internal/contextutil"
	"keepnotes/internal/service"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Response is the envelope every JSON endpoint returns.
//
// swagger:model Response
type Response struct {
	// "success" or "error"
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, statusCode int, message string, data any) {
	writeJSON(ctx, w, statusCode, Response{Status: statusSuccess, Message: message, Data: data})
}

func writeError(ctx context.Context, w http.ResponseWriter, statusCode int, message string, detail any) {
	writeJSON(ctx, w, statusCode, Response{Status: statusError, Message: message, Error: detail})
}

// handleServiceError maps service errors to HTTP status codes and responses.
func handleServiceError(ctx context.Context, w http.ResponseWriter, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		logger.WarnContext(ctx, "validation failed", "field", validationErr.Field, "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Validation error", map[string]string{
			"field":   validationErr.Field,
			"message": validationErr.Message,
		})
	case errors.Is(err, service.ErrInvalidInput):
		logger.WarnContext(ctx, "invalid input", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid input", err.Error())
	case errors.Is(err, service.ErrNotFound):
		logger.WarnContext(ctx, "resource not found", "error", err)
		writeError(ctx, w, http.StatusNotFound, "Resource not found", nil)
	case errors.Is(err, service.ErrConflict):
		logger.WarnContext(ctx, "conflict", "error", err)
		writeError(ctx, w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, service.ErrStoreUnavailable):
		logger.ErrorContext(ctx, "store unavailable", "error", err)
		writeError(ctx, w, http.StatusServiceUnavailable, "Store unavailable", nil)
	default:
		logger.ErrorContext(ctx, "service error", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, defaultMsg, nil)
	}
}

// decodeJSON decodes the request body into v and writes a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ctx := r.Context()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	return true
}

// Index answers the root path.
func Index(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, "keepnotes API is running", nil)
}
