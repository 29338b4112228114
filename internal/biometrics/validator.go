package biometrics

import (
	"regexp"
	"strings"
	"time"

	"github.com/opsgate/opsgate/internal/risk"
)

// MaxAge is the freshness window: confirmations older than this relative to
// validation time are rejected.
const MaxAge = 5 * time.Minute

// MaxClockSkew is how far ahead of validation time a confirmation timestamp
// may sit. Anything further in the future is rejected as misdated.
const MaxClockSkew = 30 * time.Second

var hashPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Validator checks confirmations against format, freshness, and risk-tier
// requirements. Validation fails closed: there is no bypass mode.
type Validator struct {
	// RequireDualApproval demands an independent secondary confirmation
	// for critical-tier decisions.
	RequireDualApproval bool
}

// Validate checks a confirmation for a decision at the given risk score.
// secondary is the optional second approver's confirmation; it is only
// consulted when the tier demands one. Returns nil when the confirmation is
// acceptable, otherwise one of the package's reason-coded errors.
func (v Validator) Validate(conf *Confirmation, secondary *Confirmation, riskScore int, now time.Time) error {
	if err := v.validateOne(conf, riskScore, now); err != nil {
		return err
	}

	if v.RequireDualApproval && risk.TierFor(riskScore) == risk.TierCritical {
		if secondary == nil {
			return ErrSecondaryRequired
		}
		if err := v.validateOne(secondary, riskScore, now); err != nil {
			return err
		}
		if secondary.DeviceID == conf.DeviceID {
			return ErrSecondaryRequired
		}
	}

	return nil
}

func (v Validator) validateOne(conf *Confirmation, riskScore int, now time.Time) error {
	if conf == nil || conf.Method == "" || conf.VerificationHash == "" || conf.DeviceID == "" || conf.Timestamp.IsZero() {
		return ErrMissingFields
	}

	if !conf.Success {
		return ErrNotSuccessful
	}

	if !hashPattern.MatchString(strings.ToLower(conf.VerificationHash)) {
		return ErrMalformedHash
	}

	if degenerate(conf.VerificationHash) {
		return ErrDegenerateHash
	}

	if conf.Timestamp.After(now.Add(MaxClockSkew)) {
		return ErrFutureTimestamp
	}

	if now.Sub(conf.Timestamp) > MaxAge {
		return ErrStale
	}

	if MethodStrength(conf.Method) < requiredStrength(riskScore) {
		return ErrInsufficientMethod
	}

	return nil
}

// requiredStrength maps a risk score to the minimum acceptable method class.
// High and critical tiers both demand the secure class.
func requiredStrength(riskScore int) Strength {
	switch risk.TierFor(riskScore) {
	case risk.TierCritical, risk.TierHigh:
		return StrengthSecure
	case risk.TierMedium:
		return StrengthStandard
	default:
		return StrengthWeak
	}
}

// degenerate detects forged or placeholder hashes: a valid verification hash
// never repeats a single character across its full length.
func degenerate(hash string) bool {
	hash = strings.ToLower(hash)
	for i := 1; i < len(hash); i++ {
		if hash[i] != hash[0] {
			return false
		}
	}
	return true
}
