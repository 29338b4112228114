package approvals

import (
	"errors"
	"net/http"
)

// Domain errors for approval operations. Each maps to a distinct reason code
// so the approval UI can explain rejections; none of them are retried.
var (
	ErrNotFound            = errors.New("approval request not found")
	ErrDuplicate           = errors.New("approval request already exists")
	ErrAlreadyProcessed    = errors.New("approval request already has a decision")
	ErrExpired             = errors.New("approval request has expired")
	ErrInvalidConfirmation = errors.New("biometric confirmation rejected")
)

// MapHTTPStatus maps approval domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyProcessed):
		return http.StatusConflict
	case errors.Is(err, ErrExpired):
		return http.StatusGone
	case errors.Is(err, ErrInvalidConfirmation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
