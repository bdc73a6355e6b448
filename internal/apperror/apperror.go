// Package apperror defines the error taxonomy shared by the store, the
// gateway and the client.
//
// Every failure the application reasons about wraps one of the sentinels
// below. Callers check the kind with errors.Is and pull the human message out
// with errors.As:
//
//	var appErr *apperror.AppError
//	if errors.As(err, &appErr) { ... appErr.Message ... }
//	if errors.Is(err, apperror.ErrNotFound) { ... }
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("upstream unavailable")
	ErrMalformed    = errors.New("malformed local state")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New builds an AppError of the given kind with a free-form message.
// The API client uses it to rebuild errors from HTTP responses.
func New(kind error, message string) *AppError {
	return &AppError{
		Err:     kind,
		Message: message,
	}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a uniqueness violation, e.g. a second account with the
// same email.
func Conflict(resource, field, value string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists with %s %s", resource, field, value),
		Field:   field,
	}
}

// Unauthorized reports a credential mismatch or a missing identity.
// HTTP handlers map this to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Unavailable reports that a remote collaborator (the entity store, a music
// catalog) could not be reached or answered with a server error.
func Unavailable(service string, cause error) *AppError {
	msg := service + " unavailable"
	if cause != nil {
		msg = fmt.Sprintf("%s unavailable: %v", service, cause)
	}
	return &AppError{
		Err:     ErrUnavailable,
		Message: msg,
	}
}

// Malformed reports a locally stored value that could not be decoded.
func Malformed(key string, cause error) *AppError {
	return &AppError{
		Err:     ErrMalformed,
		Message: fmt.Sprintf("malformed value under %s: %v", key, cause),
		Field:   key,
	}
}
