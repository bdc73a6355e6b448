package handler

// Every error response has the same shape:
//
//	{"error": "user already exists with email demo@samewave.com", "code": "conflict"}
//
// error is for people, code is for programs. Clients branch on code, since
// validation and conflict share status 400.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/samewave/internal/apperror"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeJSON sets headers and status before the body; anything set after the
// first Write is ignored by net/http.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP status. errors.Is walks the
// wrap chain, so a service's fmt.Errorf("...: %w", appErr) still matches.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status, code := statusFor(err)
		if status != http.StatusInternalServerError {
			writeJSON(w, status, ErrorResponse{Error: appErr.Message, Code: code})
			return
		}
	}

	// Internal details (paths, SQL) never reach the client.
	slog.Error("request failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: "An internal error occurred",
		Code:  "internal_error",
	})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusBadRequest, "conflict"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decodeJSON reads a request body into v. Bodies over 1 MiB are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperror.ValidationFailed("body", "Invalid JSON body")
	}
	return nil
}
