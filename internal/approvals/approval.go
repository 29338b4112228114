// Package approvals implements the approval request lifecycle: creation from
// a classification result, the time-boxed pending state, validated decision
// transitions with compare-and-set concurrency control, and the background
// expiration sweep. Approval rows are never hard-deleted; terminal states are
// retained indefinitely for audit.
package approvals

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/opsgate/opsgate/internal/biometrics"
	"github.com/opsgate/opsgate/internal/classifier"
	"github.com/opsgate/opsgate/internal/risk"
)

// Status is the lifecycle state of an approval request.
type Status string

// Lifecycle states. Pending is the only initial state. Approved may resolve
// to PartiallyExecuted once per-action results are known; every other
// transition out of a non-pending state is rejected.
const (
	StatusPending           Status = "pending"
	StatusApproved          Status = "approved"
	StatusRejected          Status = "rejected"
	StatusExpired           Status = "expired"
	StatusPartiallyExecuted Status = "partially_executed"
)

// Decided reports whether a status no longer accepts external decisions.
func (s Status) Decided() bool {
	return s != StatusPending
}

// ProposedAction is one discrete change awaiting approval. The endpoint,
// verb, and body are pre-built at classification time so execution never
// re-derives them. Immutable once attached to an approval.
type ProposedAction struct {
	Type           classifier.ActionType `json:"type"`
	TargetResource string                `json:"target_resource"`
	CurrentState   map[string]string     `json:"current_state,omitempty"`
	ProposedState  map[string]string     `json:"proposed_state,omitempty"`
	Endpoint       string                `json:"endpoint"`
	Verb           string                `json:"verb"`
	Body           json.RawMessage       `json:"body,omitempty"`
	Description    string                `json:"description"`
	Impact         string                `json:"impact"`
}

// ExecutionResult is the outcome of executing one proposed action.
// Appended by the executor; immutable once written.
type ExecutionResult struct {
	TargetResource string        `json:"target_resource"`
	Success        bool          `json:"success"`
	Message        string        `json:"message"`
	StatusCode     int           `json:"status_code"`
	ExecutedAt     time.Time     `json:"executed_at"`
	Duration       time.Duration `json:"duration"`
}

// Approval is the central entity: a risk-scored, time-boxed request for a
// human decision over an ordered list of proposed actions.
type Approval struct {
	ID           uuid.UUID                `json:"id"`
	TenantID     string                   `json:"tenant_id"`
	ClientLabel  string                   `json:"client_label"`
	Action       classifier.ActionType    `json:"action"`
	RiskScore    int                      `json:"risk_score"`
	Summary      string                   `json:"summary"`
	Actions      []ProposedAction         `json:"actions"`
	Status       Status                   `json:"status"`
	CreatedAt    time.Time                `json:"created_at"`
	ExpiresAt    time.Time                `json:"expires_at"`
	DecidedAt    *time.Time               `json:"decided_at,omitempty"`
	Approver     *string                  `json:"approver,omitempty"`
	Confirmation *biometrics.Confirmation `json:"confirmation,omitempty"`
	Notes        *string                  `json:"notes,omitempty"`
	Results      []ExecutionResult        `json:"results,omitempty"`
}

// Tier returns the approval's risk tier.
func (a *Approval) Tier() risk.Tier {
	return risk.TierFor(a.RiskScore)
}

// DecisionCommand carries an approval UI decision submission.
type DecisionCommand struct {
	Approved              bool                     `json:"approved"`
	Approver              string                   `json:"approver,omitempty"`
	Confirmation          *biometrics.Confirmation `json:"confirmation"`
	SecondaryConfirmation *biometrics.Confirmation `json:"secondary_confirmation,omitempty"`
	Notes                 *string                  `json:"notes,omitempty"`
}

// DecisionResult is returned to the approval UI after a decision resolves.
type DecisionResult struct {
	RequestID uuid.UUID         `json:"request_id"`
	Status    Status            `json:"status"`
	Results   []ExecutionResult `json:"results,omitempty"`
	DecidedAt time.Time         `json:"decided_at"`
}

// Windows maps risk tiers to pending-state expiration windows: higher risk,
// shorter window.
type Windows struct {
	Low      time.Duration
	Medium   time.Duration
	High     time.Duration
	Critical time.Duration
}

// DefaultWindows returns the standard tier expiration windows.
func DefaultWindows() Windows {
	return Windows{
		Low:      30 * time.Minute,
		Medium:   20 * time.Minute,
		High:     15 * time.Minute,
		Critical: 10 * time.Minute,
	}
}

// For returns the expiration window for a tier.
func (w Windows) For(t risk.Tier) time.Duration {
	switch t {
	case risk.TierCritical:
		return w.Critical
	case risk.TierHigh:
		return w.High
	case risk.TierMedium:
		return w.Medium
	default:
		return w.Low
	}
}
