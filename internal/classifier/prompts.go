package classifier

import (
	"encoding/json"
	"fmt"
	"strings"
)

const classifyInstructions = `You are a delegated-administration request classifier.
Read the request below and propose exactly one administrative action.

Respond with a single JSON object and nothing else:
{
  "action": one of "password_reset", "account_unlock", "account_disable",
            "access_group_change", "license_change", "human_review",
  "confidence": 0.0-1.0,
  "risk_score": 0-100,
  "parameters": {string: string},
  "principals": [affected user identifiers],
  "resources": [affected resource identifiers],
  "summary": one-sentence business impact statement,
  "requires_approval": boolean
}

Use "human_review" whenever the request is ambiguous, destructive beyond the
listed actions, or outside routine administration.`

const validateInstructions = `You are the second, independent validator of a
delegated-administration classification. Re-classify the request from scratch,
then compare with the primary proposal included below. Do not defer to the
primary: report your own action, confidence, and risk.

Respond with the same single JSON object schema as the primary.`

// composePrompt builds the provider prompt. When prior is non-nil the prompt
// is the cross-validation form and includes the primary's proposal.
func composePrompt(req Request, prior *Proposal) (string, error) {
	var b strings.Builder

	if prior == nil {
		b.WriteString(classifyInstructions)
	} else {
		b.WriteString(validateInstructions)
	}

	b.WriteString("\n\nRequest source: ")
	b.WriteString(req.Source)
	b.WriteString("\nTenant: ")
	b.WriteString(req.TenantID)

	if len(req.Context) > 0 {
		ctxJSON, err := json.Marshal(req.Context)
		if err != nil {
			return "", fmt.Errorf("marshal request context: %w", err)
		}
		b.WriteString("\nContext: ")
		b.Write(ctxJSON)
	}

	b.WriteString("\n\nRequest content:\n")
	b.WriteString(req.Content)

	if prior != nil {
		priorJSON, err := json.Marshal(prior)
		if err != nil {
			return "", fmt.Errorf("marshal primary proposal: %w", err)
		}
		b.WriteString("\n\nPrimary proposal:\n")
		b.Write(priorJSON)
	}

	return b.String(), nil
}
