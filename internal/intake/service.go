package intake

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/opsgate/opsgate/internal/approvals"
	"github.com/opsgate/opsgate/internal/audit"
	"github.com/opsgate/opsgate/internal/classifier"
	"github.com/opsgate/opsgate/pkg/lifecycle"
)

// Planner converts a classification result into concrete proposed actions.
type Planner func(*classifier.Result) []approvals.ProposedAction

// Options tunes intake queue and worker pool sizing.
type Options struct {
	QueueSize int
	Workers   int
}

type service struct {
	classify  Classifier
	approvals approvals.System
	executor  approvals.Executor
	ledger    audit.System
	plan      Planner
	queue     chan classifier.Request
	workers   int
	now       func() time.Time
	logger    *slog.Logger
}

// New creates an intake system that classifies queued requests and routes
// them to the approval state machine or directly to the executor.
func New(
	cls Classifier,
	approvalSys approvals.System,
	executor approvals.Executor,
	ledger audit.System,
	plan Planner,
	opts Options,
	logger *slog.Logger,
) System {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}

	return &service{
		classify:  cls,
		approvals: approvalSys,
		executor:  executor,
		ledger:    ledger,
		plan:      plan,
		queue:     make(chan classifier.Request, opts.QueueSize),
		workers:   opts.Workers,
		now:       time.Now,
		logger:    logger.With("system", "intake"),
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger)
}

// Start registers the worker pool with the lifecycle coordinator. Workers
// drain the queue until shutdown; queued requests left behind at shutdown
// are dropped, which is safe because nothing has been recorded as classified
// for them yet.
func (s *service) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting intake workers", "workers", s.workers, "queue_size", cap(s.queue))

	lc.OnShutdown(func() {
		g, ctx := errgroup.WithContext(lc.Context())
		for range s.workers {
			g.Go(func() error {
				for {
					select {
					case <-ctx.Done():
						return nil
					case req := <-s.queue:
						s.process(ctx, req)
					}
				}
			})
		}

		_ = g.Wait()
		s.logger.Info("intake workers stopped")
	})

	return nil
}

func (s *service) Submit(ctx context.Context, cmd SubmitCommand) (*Receipt, error) {
	if cmd.Content == "" {
		return nil, ErrMissingContent
	}
	if cmd.TenantID == "" {
		return nil, ErrMissingTenant
	}

	req := classifier.Request{
		ID:          uuid.New(),
		Content:     cmd.Content,
		Source:      cmd.Source,
		TenantID:    cmd.TenantID,
		ClientLabel: cmd.ClientLabel,
		Context:     cmd.Context,
		CreatedAt:   s.now().UTC(),
	}

	select {
	case s.queue <- req:
	default:
		return nil, ErrQueueFull
	}

	s.audit(ctx, req, "request received", true, map[string]any{"source": req.Source})
	s.logger.Info("request accepted", "request_id", req.ID, "tenant_id", req.TenantID, "source", req.Source)

	return &Receipt{RequestID: req.ID, AcceptedAt: req.CreatedAt}, nil
}

// process drives one request through classification and routing. It never
// returns an error: every failure path lands in the audit ledger, and
// classification failure degrades to a mandatory review approval.
func (s *service) process(ctx context.Context, req classifier.Request) {
	result, err := s.classify.Classify(ctx, req)
	if err != nil {
		s.logger.Error("classification failed", "request_id", req.ID, "error", err)
		s.audit(ctx, req, "classification failed", false, map[string]any{"reason": err.Error()})
		result = fallbackResult(req, s.now().UTC())
	}

	s.audit(ctx, req, "request classified", true, map[string]any{
		"action":     result.Action,
		"confidence": result.Confidence,
		"risk_score": result.RiskScore,
		"consensus":  result.ConsensusAchieved,
	})

	actions := s.plan(result)

	if result.RequiresApproval {
		if _, err := s.approvals.Create(ctx, req, result, actions); err != nil {
			s.logger.Error("approval creation failed", "request_id", req.ID, "error", err)
			s.audit(ctx, req, "approval creation failed", false, map[string]any{"reason": err.Error()})
		}
		return
	}

	s.autoExecute(ctx, req, result, actions)
}

// autoExecute runs low-risk actions without human involvement. The synthetic
// approval carries the classification context so executor audit entries stay
// uniform with the approved path.
func (s *service) autoExecute(ctx context.Context, req classifier.Request, result *classifier.Result, actions []approvals.ProposedAction) {
	now := s.now().UTC()
	approver := audit.SystemActor

	a := &approvals.Approval{
		ID:          result.RequestID,
		TenantID:    req.TenantID,
		ClientLabel: req.ClientLabel,
		Action:      result.Action,
		RiskScore:   result.RiskScore,
		Summary:     result.Summary,
		Actions:     actions,
		Status:      approvals.StatusApproved,
		CreatedAt:   now,
		DecidedAt:   &now,
		Approver:    &approver,
	}

	results, allSucceeded := s.executor.Execute(ctx, a)

	s.audit(ctx, req, "request auto-executed", allSucceeded, map[string]any{
		"action":  result.Action,
		"actions": len(results),
	})

	s.logger.Info(
		"request auto-executed",
		"request_id", req.ID,
		"tenant_id", req.TenantID,
		"action", result.Action,
		"succeeded", allSucceeded,
	)
}

// fallbackResult covers orchestrator errors the provider-level fail-safe
// could not absorb. Same shape as a reconciliation escalation: maximum risk,
// approval mandatory, nothing executable.
func fallbackResult(req classifier.Request, now time.Time) *classifier.Result {
	return &classifier.Result{
		RequestID:        req.ID,
		Action:           classifier.ActionHumanReview,
		Confidence:       0,
		RiskScore:        100,
		Summary:          "Escalated to manual review: classification unavailable",
		RequiresApproval: true,
		ClassifiedAt:     now,
	}
}

// audit appends an intake narration entry, best-effort: workers have no
// caller to report to, and the durable record of decisions and executions is
// written by the approvals and executor systems.
func (s *service) audit(ctx context.Context, req classifier.Request, action string, success bool, detail map[string]any) {
	entry := &audit.Entry{
		EntityID: req.ID.String(),
		TenantID: req.TenantID,
		Action:   action,
		Actor:    audit.SystemActor,
		Success:  success,
	}

	if detail != nil {
		if raw, err := json.Marshal(detail); err == nil {
			entry.Detail = raw
		}
	}

	if err := s.ledger.Record(ctx, entry); err != nil {
		s.logger.Error("audit record failed", "request_id", req.ID, "error", err)
	}
}
