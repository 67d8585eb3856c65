// Package apperror defines the error taxonomy shared by services and handlers.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure in API responses
type Code string

const (
	CodeNotFound         Code = "NOT_FOUND"
	CodeAccessDenied     Code = "ACCESS_DENIED"
	CodeAlreadyResponded Code = "ALREADY_RESPONDED"
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeInvalidInput     Code = "INVALID_INPUT"
	CodeSubmissionFailed Code = "SUBMISSION_FAILED"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeInternal         Code = "INTERNAL_SERVER_ERROR"
)

// AppError is a classified error carrying a user-facing message
type AppError struct {
	Code    Code
	Message string
	Details []string
	Cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any AppError with the same code
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is comparisons
var (
	ErrNotFound = &AppError{
		Code:    CodeNotFound,
		Message: "La encuesta no existe o fue eliminada.",
	}

	// ErrAccessDenied never names the emails on the allow-list
	ErrAccessDenied = &AppError{
		Code:    CodeAccessDenied,
		Message: "Acceso denegado: este correo no está autorizado para responder esta encuesta.",
	}

	ErrAlreadyResponded = &AppError{
		Code:    CodeAlreadyResponded,
		Message: "Ya has respondido esta encuesta.",
	}

	ErrValidationFailed = &AppError{
		Code:    CodeValidationFailed,
		Message: "Hay respuestas obligatorias sin completar o con valores inválidos.",
	}

	ErrSubmissionFailed = &AppError{
		Code:    CodeSubmissionFailed,
		Message: "No se pudo enviar la respuesta. Inténtalo de nuevo.",
	}

	ErrPermissionDenied = &AppError{
		Code:    CodePermissionDenied,
		Message: "Permiso denegado por la base de datos: revisa los roles del usuario de almacenamiento y la configuración de acceso.",
	}

	ErrUnauthorized = &AppError{
		Code:    CodeUnauthorized,
		Message: "No autorizado.",
	}
)

// New creates an AppError
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap attaches a cause to a copy of a sentinel
func Wrap(sentinel *AppError, cause error) *AppError {
	return &AppError{
		Code:    sentinel.Code,
		Message: sentinel.Message,
		Details: sentinel.Details,
		Cause:   cause,
	}
}

// WithDetails copies a sentinel and attaches details such as offending field ids
func WithDetails(sentinel *AppError, details ...string) *AppError {
	return &AppError{
		Code:    sentinel.Code,
		Message: sentinel.Message,
		Details: details,
	}
}

// InvalidInput builds a bad-request error with a custom message
func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// As extracts the AppError from an error chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of err, or CodeInternal for unclassified errors
func CodeOf(err error) Code {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return CodeInternal
}

// HTTPStatus maps an error to the status code handlers respond with
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAccessDenied, CodePermissionDenied:
		return http.StatusForbidden
	case CodeAlreadyResponded:
		return http.StatusConflict
	case CodeValidationFailed, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeSubmissionFailed:
		return http.StatusBadGateway
	case CodeUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
