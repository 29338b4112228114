package approvals

import (
	"context"

	"github.com/google/uuid"

	"github.com/opsgate/opsgate/internal/classifier"
	"github.com/opsgate/opsgate/pkg/lifecycle"
	"github.com/opsgate/opsgate/pkg/pagination"
)

// Executor applies approved actions against the external management API.
// Implemented by the executor package; accepted as an interface so the state
// machine never depends on transport details.
type Executor interface {
	// Execute runs each action in order, isolating failures, and returns
	// one result per action plus whether every action succeeded.
	Execute(ctx context.Context, approval *Approval) ([]ExecutionResult, bool)
}

// System defines the public contract for the approval state machine.
type System interface {
	Handler() *Handler

	// Start registers the expiration sweep loop with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error

	// Create builds a pending approval from a classification result that
	// requires approval, with an expiration window sized to its risk tier.
	Create(ctx context.Context, req classifier.Request, result *classifier.Result, actions []ProposedAction) (*Approval, error)

	Find(ctx context.Context, id uuid.UUID) (*Approval, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Approval], error)

	// ListPending returns a tenant's actionable approvals: pending and not
	// yet past expiration, even if the sweeper has not caught up.
	ListPending(ctx context.Context, tenantID string) ([]Approval, error)

	// SubmitDecision resolves a pending approval. Exactly one concurrent
	// submission for the same id can win; all others observe
	// ErrAlreadyProcessed.
	SubmitDecision(ctx context.Context, id uuid.UUID, cmd DecisionCommand) (*DecisionResult, error)

	// ExpireOverdue transitions pending approvals past expiration to
	// Expired. Returns how many were transitioned.
	ExpireOverdue(ctx context.Context) (int, error)
}
