package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/opsgate/opsgate/pkg/retry"
)

// State keys for the classification graph.
const (
	KeyRequest   = "classification_request"
	KeySecondary = "secondary_proposal"
	KeyPrimary   = "primary_proposal"
	KeyResult    = "classification_result"
)

// Orchestrator drives the classification pipeline: primary provider, optional
// secondary cross-validation, and consensus reconciliation.
type Orchestrator struct {
	primary   Provider
	secondary Provider
	policy    retry.Policy
	timeout   time.Duration
	logger    *slog.Logger
}

// Options tunes orchestrator behavior beyond provider selection.
type Options struct {
	Retry   retry.Policy
	Timeout time.Duration
}

// New creates an Orchestrator. secondary may be nil, which disables
// cross-validation and applies the single-provider confidence bar.
func New(primary, secondary Provider, opts Options, logger *slog.Logger) *Orchestrator {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.DefaultPolicy()
	}

	return &Orchestrator{
		primary:   primary,
		secondary: secondary,
		policy:    opts.Retry,
		timeout:   opts.Timeout,
		logger:    logger.With("workflow", "classify"),
	}
}

// Classify executes the classification graph for a single request. Provider
// failures never surface as errors: an exhausted or permanently failed
// provider degrades the result toward the human-review fail-safe.
func (o *Orchestrator) Classify(ctx context.Context, req Request) (*Result, error) {
	graph, err := o.buildGraph()
	if err != nil {
		return nil, fmt.Errorf("%w: build graph: %w", ErrClassifyFailed, err)
	}

	initial := state.New(nil)
	initial = initial.Set(KeyRequest, req)

	final, err := graph.Execute(ctx, initial)
	if err != nil {
		return nil, fmt.Errorf("%w: execute graph: %w", ErrClassifyFailed, err)
	}

	val, ok := final.Get(KeyResult)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s in final state", ErrClassifyFailed, KeyResult)
	}

	result, ok := val.(Result)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not Result", ErrClassifyFailed, KeyResult)
	}

	return &result, nil
}

func (o *Orchestrator) buildGraph() (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("opsgate-classify")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode("classify", o.classifyNode()); err != nil {
		return nil, err
	}
	if err := graph.AddNode("validate", o.validateNode()); err != nil {
		return nil, err
	}
	if err := graph.AddNode("reconcile", o.reconcileNode()); err != nil {
		return nil, err
	}

	// classify → validate when cross-validation is possible
	if err := graph.AddEdge("classify", "validate", o.needsValidation); err != nil {
		return nil, err
	}

	// classify → reconcile when it is not
	if err := graph.AddEdge("classify", "reconcile", state.Not(o.needsValidation)); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("validate", "reconcile", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("classify"); err != nil {
		return nil, err
	}
	if err := graph.SetExitPoint("reconcile"); err != nil {
		return nil, err
	}

	return graph, nil
}

func (o *Orchestrator) classifyNode() state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		req, err := extractRequest(s)
		if err != nil {
			return s, fmt.Errorf("classify: %w", err)
		}

		proposal := o.callProvider(ctx, o.primary, req, nil)
		if proposal != nil {
			s = s.Set(KeyPrimary, *proposal)
			o.logger.InfoContext(
				ctx, "primary classification complete",
				"request_id", req.ID,
				"action", proposal.Action,
				"confidence", proposal.Confidence,
				"risk_score", proposal.RiskScore,
			)
		}

		return s, nil
	})
}

func (o *Orchestrator) validateNode() state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		req, err := extractRequest(s)
		if err != nil {
			return s, fmt.Errorf("validate: %w", err)
		}

		primary := extractProposal(s, KeyPrimary)
		proposal := o.callProvider(ctx, o.secondary, req, primary)
		if proposal != nil {
			s = s.Set(KeySecondary, *proposal)
			o.logger.InfoContext(
				ctx, "secondary validation complete",
				"request_id", req.ID,
				"action", proposal.Action,
				"confidence", proposal.Confidence,
			)
		}

		return s, nil
	})
}

func (o *Orchestrator) reconcileNode() state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		req, err := extractRequest(s)
		if err != nil {
			return s, fmt.Errorf("reconcile: %w", err)
		}

		result := reconcile(
			req,
			extractProposal(s, KeyPrimary),
			extractProposal(s, KeySecondary),
			o.providerNames(),
		)

		o.logger.InfoContext(
			ctx, "classification reconciled",
			"request_id", req.ID,
			"action", result.Action,
			"risk_score", result.RiskScore,
			"requires_approval", result.RequiresApproval,
			"consensus", result.ConsensusAchieved,
		)

		s = s.Set(KeyResult, *result)
		return s, nil
	})
}

// callProvider wraps a provider call in bounded-timeout retry. Returns nil
// when the provider ultimately fails; reconciliation treats a nil proposal
// as an absent provider.
func (o *Orchestrator) callProvider(ctx context.Context, p Provider, req Request, prior *Proposal) *Proposal {
	proposal, err := retry.Do(ctx, o.policy, func(ctx context.Context) (Proposal, error) {
		callCtx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()
		return p.Classify(callCtx, req, prior)
	}, IsTransient)

	if err != nil {
		o.logger.WarnContext(
			ctx, "provider classification failed",
			"provider", p.Name(),
			"request_id", req.ID,
			"error", err,
		)
		return nil
	}

	return &proposal
}

func (o *Orchestrator) needsValidation(s state.State) bool {
	if o.secondary == nil {
		return false
	}
	return extractProposal(s, KeyPrimary) != nil
}

func (o *Orchestrator) providerNames() []string {
	names := []string{o.primary.Name()}
	if o.secondary != nil {
		names = append(names, o.secondary.Name())
	}
	return names
}

func extractRequest(s state.State) (Request, error) {
	val, ok := s.Get(KeyRequest)
	if !ok {
		return Request{}, fmt.Errorf("%w: missing %s in state", ErrClassifyFailed, KeyRequest)
	}

	req, ok := val.(Request)
	if !ok {
		return Request{}, fmt.Errorf("%w: %s is not Request", ErrClassifyFailed, KeyRequest)
	}

	return req, nil
}

func extractProposal(s state.State, key string) *Proposal {
	val, ok := s.Get(key)
	if !ok {
		return nil
	}

	p, ok := val.(Proposal)
	if !ok {
		return nil
	}

	return &p
}
