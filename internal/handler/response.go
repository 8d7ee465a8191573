package handler

// Response helpers shared by every handler.
//
// Every error from the API has the same shape:
//
//	{"error": "not_found", "message": "session not found or access denied", "success": false}
//
// so a client can parse failures the same way regardless of status code.

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/YadavAkhileshh/CrackBano/internal/apperror"
)

// ErrorResponse is the body of every non-2xx answer.
//
// Detail and Stack are only filled for 500s outside production.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Success bool   `json:"success"`
	Detail  string `json:"detail,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// maxBodyBytes caps request bodies. A generated batch of 20 long answers
// fits comfortably.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers are already sent; all we can do is log
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// decodeJSON reads a JSON body into dst. Malformed bodies become a
// validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperror.ValidationFailed("body", fmt.Sprintf("request body must be %d bytes or fewer", maxBodyBytes))
		}
		return apperror.ValidationFailed("body", "invalid JSON in request body")
	}
	return nil
}

// Errors turns service errors into HTTP answers.
type Errors struct {
	logger *slog.Logger
	// debug adds the error chain and a stack trace to 500 bodies.
	debug bool
}

// NewErrors returns an error writer. Pass debug=true outside production.
func NewErrors(logger *slog.Logger, debug bool) *Errors {
	return &Errors{logger: logger, debug: debug}
}

// Write maps err to a status code with errors.Is and sends the standard
// body. Anything that is not an *apperror.AppError is a 500 whose message
// never reveals the cause.
func (e *Errors) Write(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.AppError
	status, code := statusFor(err)

	resp := ErrorResponse{Error: code}
	if status != http.StatusInternalServerError {
		resp.Message = http.StatusText(status)
		if errors.As(err, &appErr) {
			resp.Message = appErr.Message
			resp.Field = appErr.Field
		}
		writeJSON(w, status, resp)
		return
	}

	e.logger.Error("request failed",
		slog.String("requestID", chimw.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)

	resp.Message = "An internal error occurred"
	if appErr != nil && errors.Is(err, apperror.ErrGeneration) {
		resp.Message = appErr.Message
	}
	if e.debug {
		resp.Detail = err.Error()
		resp.Stack = string(debug.Stack())
	}
	writeJSON(w, status, resp)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperror.ErrGeneration):
		return http.StatusInternalServerError, "generation_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// NotFound answers routes that do not exist.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "Route not found"})
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method_not_allowed", Message: http.StatusText(http.StatusMethodNotAllowed)})
}
