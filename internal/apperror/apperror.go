// Package apperror defines the domain error kinds shared by the service,
// repository and handler layers.
//
// Services return *AppError values wrapping one of the sentinels below.
// The HTTP layer maps the sentinel to a status code with errors.Is, and
// shows AppError.Message to the caller. Nothing in this package knows
// about HTTP.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrGeneration   = errors.New("generation failed")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // human-readable message, safe to return to clients
	Field   string // optional: request field that caused the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// NotFoundOrDenied is returned when a resource is missing OR owned by
// someone else. The message never includes the id and is identical for
// both cases, so a caller cannot test for the existence of other users'
// data.
func NotFoundOrDenied(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found or access denied", resource),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized is used for failed logins. Bad or missing bearer tokens are
// rejected earlier by auth.RequireAuth and never reach a service.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// GenerationFailed signals that the generation gateway could not assemble
// a result at all. Individual provider failures never produce it.
func GenerationFailed(message string, cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrGeneration, cause),
		Message: message,
	}
}
