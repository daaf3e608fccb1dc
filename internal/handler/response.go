package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON / writeError so the wire format is
// the same everywhere. Errors always look like:
//
//	{"error": "validation_error", "message": "email is required"}
//
// and a 500 never carries driver messages, SQL or file paths.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/matchboard/internal/apperror"
)

// ErrorResponse is the error body returned by every endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable kind, e.g. "validation_error"
	Message string `json:"message"` // human-readable description
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON sets the header and status, then encodes data.
// Headers are frozen once the body starts, so the order matters.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a service error to an HTTP status.
//
//	apperror.ErrValidation -> 400 with the validation message
//	anything else          -> 500 with a generic message
//
// Not-found and conflict errors are 500s too: a lookup that misses on
// GET /users is a server-side failure for the client, and conflicts never
// leave the service (a lost insert race answers with the stored row).
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && errors.Is(err, apperror.ErrValidation) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: appErr.Message,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// writeTooLarge answers 413 for bodies over the configured limit.
func writeTooLarge(w http.ResponseWriter) {
	writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
		Error:   "payload_too_large",
		Message: "request body is too large",
	})
}

// isTooLarge reports whether err came from an http.MaxBytesReader limit.
func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
