// Package apperrors defines the error taxonomy shared by services, workers and handlers.
// Callers classify errors with errors.Is against the sentinels below.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrUnauthorized           = errors.New("not authorized")
	ErrValidation             = errors.New("validation failed")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrExternalService        = errors.New("external service failure")
)

func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

func Unauthorized(entity string) error {
	return fmt.Errorf("%w to access this %s", ErrUnauthorized, entity)
}

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func InvalidTransition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidStateTransition, fmt.Sprintf(format, args...))
}

// ExternalServiceError carries the upstream status and body for diagnostics.
// StatusCode is zero when the service was unreachable.
type ExternalServiceError struct {
	Service    string
	StatusCode int
	Body       string
	Err        error
}

func (e *ExternalServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s failed: %d - %s", e.Service, e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Service, e.Body)
}

func (e *ExternalServiceError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrExternalService, e.Err}
	}
	return []error{ErrExternalService}
}

// HTTPStatus maps an error to the status code returned to API callers.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidStateTransition):
		return http.StatusConflict
	case errors.Is(err, ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
