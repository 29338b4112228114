// Package risk buckets 0–100 risk scores into tiers. Tiers govern approval
// expiration windows and the minimum biometric confirmation strength.
package risk

// Tier is a named risk bucket.
type Tier string

// Risk tiers, lowest to highest.
const (
	TierLow      Tier = "low"
	TierMedium   Tier = "medium"
	TierHigh     Tier = "high"
	TierCritical Tier = "critical"
)

// Score boundaries between tiers. HighThreshold doubles as the score at or
// above which classification results always require approval.
const (
	MediumThreshold   = 40
	HighThreshold     = 70
	CriticalThreshold = 90
)

// TierFor returns the tier for a risk score. Out-of-range scores clamp to
// the nearest tier.
func TierFor(score int) Tier {
	switch {
	case score >= CriticalThreshold:
		return TierCritical
	case score >= HighThreshold:
		return TierHigh
	case score >= MediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}
