package apperrors

import (
	"errors"
	"net/http"
)

// Sentinel errors for every failure class the API surfaces. Services wrap
// these with %w and context; handlers map them to HTTP status codes via
// HTTPStatus. Anything unrecognized is treated as an internal error.
var (
	ErrUnauthenticated        = errors.New("unauthenticated")
	ErrForbidden              = errors.New("forbidden")
	ErrNotFound               = errors.New("not found")
	ErrInvalidInput           = errors.New("invalid input")
	ErrLimitExceeded          = errors.New("plan limit exceeded")
	ErrDuplicateApplication   = errors.New("duplicate application")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrUpstreamFailure        = errors.New("upstream provider failure")
)

// HTTPStatus maps an error to the HTTP status code the API responds with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrLimitExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrDuplicateApplication):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidStateTransition):
		return http.StatusConflict
	case errors.Is(err, ErrUpstreamFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
