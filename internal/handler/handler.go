// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/timeledger/timeledger/internal/handler/dto"
	"github.com/timeledger/timeledger/internal/middleware"
	"github.com/timeledger/timeledger/internal/service"
)

// Handler serves the router's fallback responses.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes the standard error envelope.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:  message,
		Code:   code,
		Status: status,
		Path:   r.URL.Path,
	})
}

// decodeJSON decodes the request body into v, writing the error response
// itself when decoding fails.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
		return false
	}
	writeError(w, r, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
	return false
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code, fallback := classify(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeError(w, r, status, code, fallback)
		return
	}
	writeError(w, r, status, code, service.Message(err, fallback))
}

func classify(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, service.ErrInvalidTimezone):
		return http.StatusBadRequest, "INVALID_TIMEZONE", "Invalid timezone"
	case errors.Is(err, service.ErrInvalidDateRange):
		return http.StatusBadRequest, "INVALID_DATE_RANGE", "endDate must be on or after startDate"
	case errors.Is(err, service.ErrInvalidDate):
		return http.StatusBadRequest, "INVALID_DATE", "Invalid date"
	case errors.Is(err, service.ErrInvalidTimeRange):
		return http.StatusBadRequest, "INVALID_TIME_RANGE", "endTime must be after startTime"
	case errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrInvalidTitle),
		errors.Is(err, service.ErrDescriptionLength),
		errors.Is(err, service.ErrInvalidScope),
		errors.Is(err, service.ErrInvalidTier):
		return http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"
	case errors.Is(err, service.ErrProjectNotFound):
		return http.StatusNotFound, "PROJECT_NOT_FOUND", "Project not found"
	case errors.Is(err, service.ErrTimeEntryNotFound):
		return http.StatusNotFound, "TIME_ENTRY_NOT_FOUND", "Time entry not found"
	case errors.Is(err, service.ErrAPIKeyNotFound):
		return http.StatusNotFound, "KEY_NOT_FOUND", "API key not found"
	case errors.Is(err, service.ErrProjectNameExists):
		return http.StatusConflict, "PROJECT_NAME_TAKEN", "Project name already exists"
	case errors.Is(err, service.ErrProjectInUse):
		return http.StatusConflict, "PROJECT_IN_USE", "Project has time entries"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
	}
}
