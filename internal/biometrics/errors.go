package biometrics

import "errors"

// Rejection reason codes. Each maps to a distinct client-facing message so
// the approval UI can explain exactly why a confirmation was refused.
var (
	ErrMissingFields      = errors.New("confirmation is missing required fields")
	ErrNotSuccessful      = errors.New("confirmation did not report success")
	ErrMalformedHash      = errors.New("confirmation hash is not a 64-character hex string")
	ErrDegenerateHash     = errors.New("confirmation hash matches a known placeholder pattern")
	ErrStale              = errors.New("confirmation is older than the freshness window")
	ErrFutureTimestamp    = errors.New("confirmation timestamp is ahead of the validation time")
	ErrInsufficientMethod = errors.New("confirmation method is too weak for this risk tier")
	ErrSecondaryRequired  = errors.New("a secondary approver confirmation is required for this risk tier")
)
