package approvals

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/opsgate/opsgate/internal/audit"
	"github.com/opsgate/opsgate/internal/biometrics"
	"github.com/opsgate/opsgate/internal/classifier"
	"github.com/opsgate/opsgate/internal/notify"
	"github.com/opsgate/opsgate/pkg/lifecycle"
	"github.com/opsgate/opsgate/pkg/pagination"
)

type repo struct {
	store      Store
	validator  biometrics.Validator
	executor   Executor
	ledger     audit.System
	notifier   notify.Notifier
	windows    Windows
	sweep      time.Duration
	now        func() time.Time
	logger     *slog.Logger
	pagination pagination.Config
}

// Options tunes state machine behavior.
type Options struct {
	Windows             Windows
	SweepInterval       time.Duration
	RequireDualApproval bool
}

// New creates an approval system backed by PostgreSQL.
func New(
	db *sql.DB,
	executor Executor,
	ledger audit.System,
	notifier notify.Notifier,
	opts Options,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return newRepo(NewStore(db), executor, ledger, notifier, opts, logger, pagination)
}

// newRepo wires the state machine over any Store; tests supply in-memory
// stores here.
func newRepo(
	store Store,
	executor Executor,
	ledger audit.System,
	notifier notify.Notifier,
	opts Options,
	logger *slog.Logger,
	pagination pagination.Config,
) *repo {
	if opts.Windows == (Windows{}) {
		opts.Windows = DefaultWindows()
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}

	return &repo{
		store:      store,
		validator:  biometrics.Validator{RequireDualApproval: opts.RequireDualApproval},
		executor:   executor,
		ledger:     ledger,
		notifier:   notifier,
		windows:    opts.Windows,
		sweep:      opts.SweepInterval,
		now:        time.Now,
		logger:     logger.With("system", "approvals"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Create(
	ctx context.Context,
	req classifier.Request,
	result *classifier.Result,
	actions []ProposedAction,
) (*Approval, error) {
	if !result.RequiresApproval {
		return nil, fmt.Errorf("classification %s does not require approval", result.RequestID)
	}

	now := r.now().UTC()
	a := &Approval{
		ID:          result.RequestID,
		TenantID:    req.TenantID,
		ClientLabel: req.ClientLabel,
		Action:      result.Action,
		RiskScore:   result.RiskScore,
		Summary:     result.Summary,
		Actions:     actions,
		Status:      StatusPending,
		CreatedAt:   now,
	}
	a.ExpiresAt = now.Add(r.windows.For(a.Tier()))

	if err := r.store.Insert(ctx, a); err != nil {
		return nil, fmt.Errorf("create approval: %w", err)
	}

	if err := r.audit(ctx, a, audit.SystemActor, "approval request created", true, nil); err != nil {
		return nil, err
	}
	r.notify(ctx, a)

	r.logger.Info(
		"approval created",
		"approval_id", a.ID,
		"tenant_id", a.TenantID,
		"risk_score", a.RiskScore,
		"tier", a.Tier(),
		"expires_at", a.ExpiresAt,
	)

	return a, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Approval, error) {
	return r.store.Find(ctx, id)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Approval], error) {
	page.Normalize(r.pagination)
	return r.store.Page(ctx, page, filters)
}

func (r *repo) ListPending(ctx context.Context, tenantID string) ([]Approval, error) {
	return r.store.FindPending(ctx, tenantID, r.now().UTC())
}

// SubmitDecision resolves a pending approval through the transition contract:
// existence, idempotency, expiry, confirmation validity, then the decision
// itself. The pending→decided step is a compare-and-set, so of two racing
// submissions exactly one wins and the other observes ErrAlreadyProcessed.
func (r *repo) SubmitDecision(ctx context.Context, id uuid.UUID, cmd DecisionCommand) (*DecisionResult, error) {
	a, err := r.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if a.Status.Decided() {
		r.audit(ctx, a, cmd.Approver, "decision rejected: already processed", false, map[string]any{"status": string(a.Status)})
		return nil, ErrAlreadyProcessed
	}

	now := r.now().UTC()
	if now.After(a.ExpiresAt) {
		if err := r.expire(ctx, a); err != nil {
			return nil, err
		}
		return nil, ErrExpired
	}

	if err := r.validator.Validate(cmd.Confirmation, cmd.SecondaryConfirmation, a.RiskScore, now); err != nil {
		r.audit(ctx, a, cmd.Approver, "decision rejected: invalid confirmation", false, map[string]any{"reason": err.Error()})
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfirmation, err)
	}

	if !cmd.Approved {
		return r.reject(ctx, a, cmd, now)
	}

	return r.approve(ctx, a, cmd, now)
}

func (r *repo) reject(ctx context.Context, a *Approval, cmd DecisionCommand, now time.Time) (*DecisionResult, error) {
	change := Change{
		To:           StatusRejected,
		DecidedAt:    &now,
		Approver:     &cmd.Approver,
		Confirmation: cmd.Confirmation,
		Notes:        cmd.Notes,
	}

	if err := r.store.Transition(ctx, a.ID, StatusPending, change); err != nil {
		if errors.Is(err, ErrAlreadyProcessed) {
			r.audit(ctx, a, cmd.Approver, "decision rejected: already processed", false, nil)
		}
		return nil, err
	}

	a.Status = StatusRejected
	if err := r.audit(ctx, a, cmd.Approver, "approval rejected", true, nil); err != nil {
		return nil, err
	}
	r.notify(ctx, a)

	r.logger.Info("approval rejected", "approval_id", a.ID, "approver", cmd.Approver)

	return &DecisionResult{
		RequestID: a.ID,
		Status:    StatusRejected,
		DecidedAt: now,
	}, nil
}

func (r *repo) approve(ctx context.Context, a *Approval, cmd DecisionCommand, now time.Time) (*DecisionResult, error) {
	// Claim the row before executing anything: the CAS is what guarantees a
	// losing concurrent submission never reaches the executor.
	claim := Change{
		To:           StatusApproved,
		DecidedAt:    &now,
		Approver:     &cmd.Approver,
		Confirmation: cmd.Confirmation,
		Notes:        cmd.Notes,
	}
	if err := r.store.Transition(ctx, a.ID, StatusPending, claim); err != nil {
		if errors.Is(err, ErrAlreadyProcessed) {
			r.audit(ctx, a, cmd.Approver, "decision rejected: already processed", false, nil)
		}
		return nil, err
	}

	a.Status = StatusApproved
	a.Approver = &cmd.Approver

	results, allSucceeded := r.executor.Execute(ctx, a)

	status := StatusApproved
	if !allSucceeded {
		status = StatusPartiallyExecuted
	}

	resolve := Change{To: status, Results: results}
	if err := r.store.Transition(ctx, a.ID, StatusApproved, resolve); err != nil {
		return nil, fmt.Errorf("record execution results: %w", err)
	}

	a.Status = status
	a.Results = results

	description := "approval executed"
	if status == StatusPartiallyExecuted {
		description = "approval partially executed"
	}
	if err := r.audit(ctx, a, cmd.Approver, description, allSucceeded, map[string]any{"actions": len(results)}); err != nil {
		return nil, err
	}
	r.notify(ctx, a)

	r.logger.Info(
		"approval resolved",
		"approval_id", a.ID,
		"approver", cmd.Approver,
		"status", status,
		"actions", len(results),
	)

	return &DecisionResult{
		RequestID: a.ID,
		Status:    status,
		Results:   results,
		DecidedAt: now,
	}, nil
}

func (r *repo) ExpireOverdue(ctx context.Context) (int, error) {
	overdue, err := r.store.FindOverdue(ctx, r.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("find overdue approvals: %w", err)
	}

	expired := 0
	for i := range overdue {
		if err := r.expire(ctx, &overdue[i]); err != nil {
			// A concurrent decision beat the sweep; that is the decision's
			// win, not a sweep failure.
			if errors.Is(err, ErrAlreadyProcessed) {
				continue
			}
			return expired, err
		}
		expired++
	}

	return expired, nil
}

func (r *repo) expire(ctx context.Context, a *Approval) error {
	now := r.now().UTC()
	change := Change{To: StatusExpired, DecidedAt: &now}

	if err := r.store.Transition(ctx, a.ID, StatusPending, change); err != nil {
		return err
	}

	a.Status = StatusExpired
	if err := r.audit(ctx, a, audit.SystemActor, "approval expired", true, nil); err != nil {
		return err
	}
	r.notify(ctx, a)

	r.logger.Info("approval expired", "approval_id", a.ID, "tenant_id", a.TenantID)
	return nil
}

// Start registers the expiration sweep loop with the lifecycle coordinator.
func (r *repo) Start(lc *lifecycle.Coordinator) error {
	r.logger.Info("starting expiration sweep", "interval", r.sweep)

	lc.OnShutdown(func() {
		ticker := time.NewTicker(r.sweep)
		defer ticker.Stop()

		for {
			select {
			case <-lc.Context().Done():
				r.logger.Info("expiration sweep stopped")
				return
			case <-ticker.C:
				if n, err := r.ExpireOverdue(lc.Context()); err != nil {
					r.logger.Error("expiration sweep failed", "error", err)
				} else if n > 0 {
					r.logger.Info("expiration sweep complete", "expired", n)
				}
			}
		}
	})

	return nil
}

// audit appends one ledger entry for a lifecycle event. Lifecycle outcomes
// must be in the ledger before the operation reports success, so callers on
// those paths propagate the error; rejection-of-the-caller paths record
// best-effort since the operation already fails.
func (r *repo) audit(ctx context.Context, a *Approval, actor, action string, success bool, detail map[string]any) error {
	entry := &audit.Entry{
		EntityID:   a.ID.String(),
		TenantID:   a.TenantID,
		Action:     action,
		Actor:      actor,
		ApprovalID: &a.ID,
		Success:    success,
		RiskScore:  a.RiskScore,
	}

	if a.Confirmation != nil {
		entry.ConfirmationHash = &a.Confirmation.VerificationHash
	}

	if detail != nil {
		if raw, err := json.Marshal(detail); err == nil {
			entry.Detail = raw
		}
	}

	if err := r.ledger.Record(ctx, entry); err != nil {
		r.logger.Error("audit record failed", "approval_id", a.ID, "action", action, "error", err)
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

func (r *repo) notify(ctx context.Context, a *Approval) {
	if r.notifier == nil {
		return
	}

	r.notifier.Notify(ctx, notify.Event{
		RequestID:   a.ID,
		TenantID:    a.TenantID,
		ClientLabel: a.ClientLabel,
		RiskScore:   a.RiskScore,
		Status:      string(a.Status),
		Description: a.Summary,
		ExpiresAt:   a.ExpiresAt,
	})
}
