package classifier

import "time"

// Reconciliation thresholds. A lone provider must clear a higher confidence
// bar than two agreeing providers.
const (
	singleProviderConfidence = 0.8
	consensusMinConfidence   = 0.7
	consensusMaxRiskSpread   = 20

	// ApprovalRiskThreshold is the risk score at or above which a result
	// always requires approval, regardless of what any provider said.
	ApprovalRiskThreshold = 70
)

// reconcile folds one or two provider proposals into a single Result.
// Any path that cannot establish sufficient confidence falls through to the
// human-review fail-safe.
func reconcile(req Request, primary, secondary *Proposal, providers []string) *Result {
	switch {
	case primary == nil:
		return humanReview(req, providers, "classification providers unavailable")

	case secondary == nil:
		if primary.Confidence > singleProviderConfidence {
			return accept(req, *primary, primary.RiskScore, false, providers)
		}
		return humanReview(req, providers, "primary confidence below acceptance threshold")

	default:
		if !agree(*primary, *secondary) {
			return humanReview(req, providers, "providers disagree on classification")
		}

		merged := *primary
		merged.Confidence = min(primary.Confidence, secondary.Confidence)
		return accept(req, merged, max(primary.RiskScore, secondary.RiskScore), true, providers)
	}
}

// agree reports whether two proposals satisfy the consensus criteria:
// same action, risk scores within the allowed spread, both confident.
func agree(a, b Proposal) bool {
	if a.Action != b.Action {
		return false
	}
	if abs(a.RiskScore-b.RiskScore) > consensusMaxRiskSpread {
		return false
	}
	return a.Confidence > consensusMinConfidence && b.Confidence > consensusMinConfidence
}

func accept(req Request, p Proposal, risk int, consensus bool, providers []string) *Result {
	return &Result{
		RequestID:         req.ID,
		Action:            p.Action,
		Confidence:        p.Confidence,
		RiskScore:         risk,
		Parameters:        p.Parameters,
		Principals:        p.Principals,
		Resources:         p.Resources,
		Summary:           p.Summary,
		RequiresApproval:  p.RequiresApproval || risk >= ApprovalRiskThreshold || p.Action == ActionHumanReview,
		ConsensusAchieved: consensus,
		Providers:         providers,
		ClassifiedAt:      time.Now(),
	}
}

// humanReview is the deliberate fail-safe, not an error path: maximum risk,
// mandatory approval, no automatic execution.
func humanReview(req Request, providers []string, reason string) *Result {
	return &Result{
		RequestID:         req.ID,
		Action:            ActionHumanReview,
		Confidence:        0,
		RiskScore:         100,
		Summary:           "Escalated to manual review: " + reason,
		RequiresApproval:  true,
		ConsensusAchieved: false,
		Providers:         providers,
		ClassifiedAt:      time.Now(),
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
