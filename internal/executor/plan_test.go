package executor_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/opsgate/opsgate/internal/classifier"
	"github.com/opsgate/opsgate/internal/executor"
)

func classification(action classifier.ActionType, principals []string, params map[string]string) *classifier.Result {
	return &classifier.Result{
		RequestID:  uuid.New(),
		Action:     action,
		Confidence: 0.9,
		RiskScore:  50,
		Principals: principals,
		Parameters: params,
		Summary:    "test classification",
	}
}

func TestPlanPasswordReset(t *testing.T) {
	result := classification(classifier.ActionPasswordReset, []string{"alice", "bob"}, nil)

	actions := executor.Plan(result)

	if len(actions) != 2 {
		t.Fatalf("actions = %d, want one per principal", len(actions))
	}
	if actions[0].Endpoint != "/users/alice/password-reset" {
		t.Errorf("endpoint = %s", actions[0].Endpoint)
	}
	if actions[0].Verb != "POST" {
		t.Errorf("verb = %s, want POST", actions[0].Verb)
	}
	if actions[1].TargetResource != "bob" {
		t.Errorf("target = %s, want bob", actions[1].TargetResource)
	}
}

func TestPlanGroupChange(t *testing.T) {
	result := classification(
		classifier.ActionGroupChange,
		[]string{"alice"},
		map[string]string{"group": "finance-admins", "operation": "remove"},
	)

	actions := executor.Plan(result)

	if len(actions) != 1 {
		t.Fatalf("actions = %d, want 1", len(actions))
	}
	if actions[0].Endpoint != "/groups/finance-admins/members" {
		t.Errorf("endpoint = %s", actions[0].Endpoint)
	}

	var body map[string]string
	if err := json.Unmarshal(actions[0].Body, &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body["member"] != "alice" || body["operation"] != "remove" {
		t.Errorf("body = %v", body)
	}
}

func TestPlanGroupChangeFallsBackToResource(t *testing.T) {
	result := classification(classifier.ActionGroupChange, []string{"alice"}, nil)
	result.Resources = []string{"hr-readers"}

	actions := executor.Plan(result)

	if len(actions) != 1 {
		t.Fatalf("actions = %d, want 1", len(actions))
	}
	if actions[0].Endpoint != "/groups/hr-readers/members" {
		t.Errorf("endpoint = %s", actions[0].Endpoint)
	}
}

func TestPlanGroupChangeWithoutGroupSkips(t *testing.T) {
	result := classification(classifier.ActionGroupChange, []string{"alice"}, nil)

	if actions := executor.Plan(result); len(actions) != 0 {
		t.Errorf("actions = %d, want 0 when no group is identified", len(actions))
	}
}

func TestPlanLicenseChange(t *testing.T) {
	result := classification(
		classifier.ActionLicenseChange,
		[]string{"alice"},
		map[string]string{"license_sku": "E5"},
	)

	actions := executor.Plan(result)

	if len(actions) != 1 {
		t.Fatalf("actions = %d, want 1", len(actions))
	}

	var body map[string]string
	if err := json.Unmarshal(actions[0].Body, &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body["sku"] != "E5" {
		t.Errorf("sku = %s, want E5", body["sku"])
	}
	if body["operation"] != "assign" {
		t.Errorf("operation = %s, want assign default", body["operation"])
	}
}

func TestPlanHumanReviewHasNoActions(t *testing.T) {
	result := classification(classifier.ActionHumanReview, []string{"alice"}, nil)

	if actions := executor.Plan(result); actions != nil {
		t.Errorf("actions = %v, want nil: manual review executes nothing", actions)
	}
}
