// Package biometrics validates proof-of-presence artifacts supplied by an
// external authentication collaborator. Validation is pure: the confirmation
// is never mutated, and every rejection carries a specific reason code.
package biometrics

import "time"

// Confirmation is the opaque proof artifact attached to an approval decision.
type Confirmation struct {
	Success          bool      `json:"success"`
	Method           string    `json:"method"`
	Timestamp        time.Time `json:"timestamp"`
	VerificationHash string    `json:"verification_hash"`
	DeviceID         string    `json:"device_id"`
	Platform         string    `json:"platform"`
}

// Strength ranks biometric methods. Higher risk tiers demand stronger
// methods before a decision is accepted.
type Strength int

// Method strength ladder, weakest to strongest.
const (
	StrengthNone Strength = iota
	StrengthWeak
	StrengthStandard
	StrengthSecure
)

var methodStrengths = map[string]Strength{
	"passcode":    StrengthWeak,
	"pattern":     StrengthWeak,
	"fingerprint": StrengthStandard,
	"touchid":     StrengthStandard,
	"faceid":      StrengthSecure,
	"iris":        StrengthSecure,
	"webauthn":    StrengthSecure,
}

// MethodStrength returns the strength class for a method identifier.
// Unknown methods rank as StrengthNone and fail any tier requirement.
func MethodStrength(method string) Strength {
	if s, ok := methodStrengths[method]; ok {
		return s
	}
	return StrengthNone
}
