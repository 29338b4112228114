// Package classifier implements the classification orchestrator: it turns a
// free-text administrative request into a scored, typed action proposal by
// calling one or two classification providers and reconciling their outputs.
// Disagreement, low confidence, or provider failure never produces an error
// result — it degrades to a mandatory human-review proposal instead.
package classifier

import (
	"time"

	"github.com/google/uuid"
)

// ActionType identifies the kind of administrative change a classification
// proposes.
type ActionType string

// Action types the classifier may propose. ActionHumanReview is the reserved
// fail-safe: it is never executed automatically and always requires approval.
const (
	ActionPasswordReset  ActionType = "password_reset"
	ActionAccountUnlock  ActionType = "account_unlock"
	ActionAccountDisable ActionType = "account_disable"
	ActionGroupChange    ActionType = "access_group_change"
	ActionLicenseChange  ActionType = "license_change"
	ActionHumanReview    ActionType = "human_review"
)

// Request is the immutable classification input handed to the orchestrator
// by an ingestion collaborator. It is never mutated after creation.
type Request struct {
	ID          uuid.UUID         `json:"id"`
	Content     string            `json:"content"`
	Source      string            `json:"source"`
	TenantID    string            `json:"tenant_id"`
	ClientLabel string            `json:"client_label"`
	Context     map[string]string `json:"context,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Proposal is a single provider's raw classification output.
type Proposal struct {
	Action           ActionType        `json:"action"`
	Confidence       float64           `json:"confidence"`
	RiskScore        int               `json:"risk_score"`
	Parameters       map[string]string `json:"parameters,omitempty"`
	Principals       []string          `json:"principals,omitempty"`
	Resources        []string          `json:"resources,omitempty"`
	Summary          string            `json:"summary"`
	RequiresApproval bool              `json:"requires_approval"`
}

// Result is the reconciled classification for a request. Produced once,
// immutable thereafter.
type Result struct {
	RequestID         uuid.UUID         `json:"request_id"`
	Action            ActionType        `json:"action"`
	Confidence        float64           `json:"confidence"`
	RiskScore         int               `json:"risk_score"`
	Parameters        map[string]string `json:"parameters,omitempty"`
	Principals        []string          `json:"principals,omitempty"`
	Resources         []string          `json:"resources,omitempty"`
	Summary           string            `json:"summary"`
	RequiresApproval  bool              `json:"requires_approval"`
	ConsensusAchieved bool              `json:"consensus_achieved"`
	Providers         []string          `json:"providers"`
	ClassifiedAt      time.Time         `json:"classified_at"`
}
