package executor

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/opsgate/opsgate/internal/approvals"
	"github.com/opsgate/opsgate/internal/classifier"
)

// Plan translates a classification result into concrete proposed actions,
// one per affected principal, with the management API endpoint, verb, and
// body pre-built so execution never re-derives them. A human_review result
// plans no actions: it exists only to be looked at.
func Plan(result *classifier.Result) []approvals.ProposedAction {
	if result.Action == classifier.ActionHumanReview {
		return nil
	}

	actions := make([]approvals.ProposedAction, 0, len(result.Principals))
	for _, principal := range result.Principals {
		if action, ok := planAction(result, principal); ok {
			actions = append(actions, action)
		}
	}

	return actions
}

func planAction(result *classifier.Result, principal string) (approvals.ProposedAction, bool) {
	var (
		endpoint string
		verb     = http.MethodPost
		body     map[string]string
		proposed map[string]string
	)

	switch result.Action {
	case classifier.ActionPasswordReset:
		endpoint = fmt.Sprintf("/users/%s/password-reset", principal)
		body = map[string]string{"notify": "email"}
		proposed = map[string]string{"credential": "reset"}

	case classifier.ActionAccountUnlock:
		endpoint = fmt.Sprintf("/users/%s/unlock", principal)
		proposed = map[string]string{"locked": "false"}

	case classifier.ActionAccountDisable:
		endpoint = fmt.Sprintf("/users/%s/disable", principal)
		proposed = map[string]string{"enabled": "false"}

	case classifier.ActionGroupChange:
		group := result.Parameters["group"]
		if group == "" && len(result.Resources) > 0 {
			group = result.Resources[0]
		}
		if group == "" {
			return approvals.ProposedAction{}, false
		}
		endpoint = fmt.Sprintf("/groups/%s/members", group)
		body = map[string]string{
			"member":    principal,
			"operation": operationOrDefault(result.Parameters, "add"),
		}
		proposed = map[string]string{"group": group}

	case classifier.ActionLicenseChange:
		sku := result.Parameters["license_sku"]
		if sku == "" {
			return approvals.ProposedAction{}, false
		}
		endpoint = fmt.Sprintf("/users/%s/licenses", principal)
		body = map[string]string{
			"sku":       sku,
			"operation": operationOrDefault(result.Parameters, "assign"),
		}
		proposed = map[string]string{"license": sku}

	default:
		return approvals.ProposedAction{}, false
	}

	var raw json.RawMessage
	if body != nil {
		raw, _ = json.Marshal(body)
	}

	return approvals.ProposedAction{
		Type:           result.Action,
		TargetResource: principal,
		CurrentState:   result.Parameters,
		ProposedState:  proposed,
		Endpoint:       endpoint,
		Verb:           verb,
		Body:           raw,
		Description:    fmt.Sprintf("%s for %s", result.Action, principal),
		Impact:         result.Summary,
	}, true
}

func operationOrDefault(params map[string]string, fallback string) string {
	if op := params["operation"]; op != "" {
		return op
	}
	return fallback
}
