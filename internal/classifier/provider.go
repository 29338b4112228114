package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/opsgate/opsgate/pkg/formatting"
)

// Provider classifies a request into a Proposal. The secondary provider
// receives the primary's proposal as prior context for cross-validation.
type Provider interface {
	Name() string
	Classify(ctx context.Context, req Request, prior *Proposal) (Proposal, error)
}

type agentProvider struct {
	name string
	cfg  gaconfig.AgentConfig
}

// NewAgentProvider creates a Provider backed by a go-agents chat agent.
func NewAgentProvider(name string, cfg gaconfig.AgentConfig) Provider {
	return &agentProvider{name: name, cfg: cfg}
}

func (p *agentProvider) Name() string {
	return p.name
}

func (p *agentProvider) Classify(ctx context.Context, req Request, prior *Proposal) (Proposal, error) {
	var proposal Proposal

	a, err := agent.New(&p.cfg)
	if err != nil {
		return proposal, fmt.Errorf("%w: create agent: %w", ErrProviderPermanent, err)
	}

	prompt, err := composePrompt(req, prior)
	if err != nil {
		return proposal, fmt.Errorf("%w: %w", ErrProviderPermanent, err)
	}

	resp, err := a.Chat(ctx, prompt)
	if err != nil {
		return proposal, classifyFailure(err)
	}

	proposal, err = formatting.Parse[Proposal](resp.Content())
	if err != nil {
		return proposal, fmt.Errorf("%w: parse response: %w", ErrProviderPermanent, err)
	}

	if err := validateProposal(proposal); err != nil {
		return proposal, fmt.Errorf("%w: %w", ErrProviderPermanent, err)
	}

	return proposal, nil
}

// classifyFailure sorts a raw provider error into the transient/permanent
// taxonomy. Rate limiting and upstream availability retry; everything else
// (bad credentials, malformed requests) surfaces immediately.
func classifyFailure(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrProviderTransient, err)
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "rate limit", "too many requests", "timeout", "502", "503", "504", "overloaded"} {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %w", ErrProviderTransient, err)
		}
	}

	return fmt.Errorf("%w: %w", ErrProviderPermanent, err)
}

// IsTransient reports whether an error is a retryable provider failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrProviderTransient)
}

func validateProposal(p Proposal) error {
	if p.Action == "" {
		return fmt.Errorf("proposal missing action")
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("proposal confidence %f out of range", p.Confidence)
	}
	if p.RiskScore < 0 || p.RiskScore > 100 {
		return fmt.Errorf("proposal risk score %d out of range", p.RiskScore)
	}
	return nil
}
