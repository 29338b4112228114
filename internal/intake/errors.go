package intake

import (
	"errors"
	"net/http"
)

var (
	// ErrMissingContent indicates a submission without request text.
	ErrMissingContent = errors.New("request content is required")

	// ErrMissingTenant indicates a submission without a tenant identifier.
	ErrMissingTenant = errors.New("tenant_id is required")

	// ErrQueueFull indicates the intake queue is at capacity.
	ErrQueueFull = errors.New("intake queue is full")
)

// MapHTTPStatus translates intake errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingContent), errors.Is(err, ErrMissingTenant):
		return http.StatusBadRequest
	case errors.Is(err, ErrQueueFull):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
