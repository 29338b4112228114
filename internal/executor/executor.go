package executor

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/opsgate/opsgate/internal/approvals"
	"github.com/opsgate/opsgate/internal/audit"
	"github.com/opsgate/opsgate/pkg/retry"
)

// Executor runs approved actions against the management API. It implements
// approvals.Executor.
type Executor struct {
	client Client
	ledger audit.System
	policy retry.Policy
	logger *slog.Logger
}

// New creates an Executor.
func New(client Client, ledger audit.System, policy retry.Policy, logger *slog.Logger) *Executor {
	if policy.MaxAttempts == 0 {
		policy = retry.DefaultPolicy()
	}

	return &Executor{
		client: client,
		ledger: ledger,
		policy: policy,
		logger: logger.With("system", "executor"),
	}
}

// Execute runs each proposed action in order. Transient failures retry with
// backoff; permanent failures are recorded and the loop moves to the next
// action. Every action produces exactly one ExecutionResult and one audit
// entry, regardless of outcome; an outcome that could not be recorded in the
// ledger is never reported as a success.
func (e *Executor) Execute(ctx context.Context, a *approvals.Approval) ([]approvals.ExecutionResult, bool) {
	results := make([]approvals.ExecutionResult, 0, len(a.Actions))
	allSucceeded := true

	for i := range a.Actions {
		result := e.executeAction(ctx, a, &a.Actions[i])
		results = append(results, result)

		if !result.Success {
			allSucceeded = false
		}
	}

	return results, allSucceeded
}

func (e *Executor) executeAction(ctx context.Context, a *approvals.Approval, action *approvals.ProposedAction) approvals.ExecutionResult {
	start := time.Now()

	resp, err := retry.Do(ctx, e.policy, func(ctx context.Context) (Response, error) {
		return e.client.Do(ctx, a.TenantID, action.Endpoint, action.Verb, action.Body)
	}, IsTransient)

	result := approvals.ExecutionResult{
		TargetResource: action.TargetResource,
		Success:        err == nil,
		Message:        resp.Message,
		StatusCode:     resp.StatusCode,
		ExecutedAt:     start.UTC(),
		Duration:       time.Since(start),
	}

	if err != nil {
		result.Message = err.Error()
		e.logger.Warn(
			"action execution failed",
			"approval_id", a.ID,
			"action", action.Type,
			"target", action.TargetResource,
			"error", err,
		)
	} else {
		e.logger.Info(
			"action executed",
			"approval_id", a.ID,
			"action", action.Type,
			"target", action.TargetResource,
			"status_code", resp.StatusCode,
			"duration", result.Duration,
		)
	}

	if err := e.audit(ctx, a, action, result); err != nil && result.Success {
		result.Success = false
		result.Message = "executed but not recorded: " + err.Error()
	}
	return result
}

func (e *Executor) audit(ctx context.Context, a *approvals.Approval, action *approvals.ProposedAction, result approvals.ExecutionResult) error {
	detail, err := json.Marshal(map[string]any{
		"endpoint":    action.Endpoint,
		"verb":        action.Verb,
		"status_code": result.StatusCode,
		"message":     result.Message,
		"duration_ms": result.Duration.Milliseconds(),
	})
	if err != nil {
		detail = nil
	}

	entry := &audit.Entry{
		EntityID:   action.TargetResource,
		TenantID:   a.TenantID,
		Action:     "executed " + string(action.Type),
		Actor:      audit.SystemActor,
		ApprovalID: &a.ID,
		Success:    result.Success,
		Detail:     detail,
		RiskScore:  a.RiskScore,
	}

	if a.Confirmation != nil {
		entry.ConfirmationHash = &a.Confirmation.VerificationHash
	}

	if err := e.ledger.Record(ctx, entry); err != nil {
		e.logger.Error("audit record failed", "approval_id", a.ID, "target", action.TargetResource, "error", err)
		return err
	}
	return nil
}
