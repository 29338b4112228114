package audit

import (
	"errors"
	"net/http"
)

// Domain errors for audit operations.
var (
	ErrNotFound      = errors.New("audit entry not found")
	ErrDuplicate     = errors.New("audit entry already exists")
	ErrMissingTenant = errors.New("tenant_id is required")
)

// MapHTTPStatus maps audit domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMissingTenant):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
